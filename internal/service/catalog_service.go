package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/course-scheduler-api/internal/models"
	appErrors "github.com/noah-isme/course-scheduler-api/pkg/errors"
)

type catalogCourseRepository interface {
	List(ctx context.Context, filter models.CourseFilter) ([]models.Course, error)
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

type catalogClassroomRepository interface {
	List(ctx context.Context) ([]models.Classroom, error)
}

type catalogSemesterRepository interface {
	FindActive(ctx context.Context) (*models.Semester, error)
	List(ctx context.Context) ([]models.Semester, error)
}

type catalogSpecializationRepository interface {
	List(ctx context.Context) ([]models.Specialization, error)
	ListRoomTypes(ctx context.Context) ([]models.RoomType, error)
}

// CatalogService serves the read-only reference data the timetable is built from.
type CatalogService struct {
	courses         catalogCourseRepository
	classrooms      catalogClassroomRepository
	semesters       catalogSemesterRepository
	specializations catalogSpecializationRepository
	logger          *zap.Logger
}

// NewCatalogService constructs CatalogService.
func NewCatalogService(courses catalogCourseRepository, classrooms catalogClassroomRepository, semesters catalogSemesterRepository, specializations catalogSpecializationRepository, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{
		courses:         courses,
		classrooms:      classrooms,
		semesters:       semesters,
		specializations: specializations,
		logger:          logger,
	}
}

// ListCourses returns courses, optionally narrowed to one semester order or a name/code search.
func (s *CatalogService) ListCourses(ctx context.Context, filter models.CourseFilter) ([]models.Course, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	if filter.SemesterOrder != nil && *filter.SemesterOrder < 1 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "semester order must be positive")
	}
	courses, err := s.courses.List(ctx, filter)
	if err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to list courses")
	}
	return emptyIfNil(courses), nil
}

// GetCourse fetches a course by id.
func (s *CatalogService) GetCourse(ctx context.Context, id string) (*models.Course, error) {
	course, err := s.courses.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to load course")
	}
	return course, nil
}

func (s *CatalogService) ListClassrooms(ctx context.Context) ([]models.Classroom, error) {
	rooms, err := s.classrooms.List(ctx)
	if err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to list classrooms")
	}
	return emptyIfNil(rooms), nil
}

func (s *CatalogService) ListSpecializations(ctx context.Context) ([]models.Specialization, error) {
	items, err := s.specializations.List(ctx)
	if err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to list specializations")
	}
	return emptyIfNil(items), nil
}

func (s *CatalogService) ListRoomTypes(ctx context.Context) ([]models.RoomType, error) {
	items, err := s.specializations.ListRoomTypes(ctx)
	if err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to list room types")
	}
	return emptyIfNil(items), nil
}

// ActiveSemester returns the semester currently being scheduled.
func (s *CatalogService) ActiveSemester(ctx context.Context) (*models.Semester, error) {
	semester, err := s.semesters.FindActive(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no active semester found")
		}
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to load active semester")
	}
	return semester, nil
}

func (s *CatalogService) ListSemesters(ctx context.Context) ([]models.Semester, error) {
	semesters, err := s.semesters.List(ctx)
	if err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to list semesters")
	}
	return emptyIfNil(semesters), nil
}
