package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/noah-isme/course-scheduler-api/internal/dto"
	"github.com/noah-isme/course-scheduler-api/internal/models"
	"github.com/noah-isme/course-scheduler-api/internal/scheduler"
	appErrors "github.com/noah-isme/course-scheduler-api/pkg/errors"
	"github.com/noah-isme/course-scheduler-api/pkg/export"
	"github.com/noah-isme/course-scheduler-api/pkg/jobs"
)

// JobUtilizationRefresh recomputes the cached utilization report after a timetable change.
const JobUtilizationRefresh = "utilization.refresh"

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type scheduleEngine interface {
	Generate(in scheduler.Input) (*scheduler.Result, error)
}

type generatorCourseReader interface {
	ListBySemesterOrder(ctx context.Context, order int) ([]models.Course, error)
}

type generatorSpecializationReader interface {
	List(ctx context.Context) ([]models.Specialization, error)
}

type generatorTeacherReader interface {
	List(ctx context.Context) ([]models.Teacher, error)
}

type generatorRoomReader interface {
	List(ctx context.Context) ([]models.Classroom, error)
}

type generatorStudentReader interface {
	ListAll(ctx context.Context) ([]models.Student, error)
}

type generatorHistoryReader interface {
	List(ctx context.Context) ([]models.StudentCourseHistory, error)
}

type sectionStore interface {
	DeleteBySemester(ctx context.Context, exec sqlx.ExtContext, semesterID string) (int64, error)
	BulkCreate(ctx context.Context, exec sqlx.ExtContext, sections []models.CourseSection) error
	ListDetailsBySemester(ctx context.Context, semesterID string) ([]models.CourseSectionDetail, error)
}

type enrollmentPurger interface {
	DeleteBySemester(ctx context.Context, exec sqlx.ExtContext, semesterID string) (int64, error)
}

type jobEnqueuer interface {
	Enqueue(job jobs.Job) (string, error)
}

type scheduleRenderer interface {
	ContentType() string
	Extension() string
	Render(doc export.Document) ([]byte, error)
}

// ScheduleGeneratorService runs the timetable engine and persists its sessions as course sections.
type ScheduleGeneratorService struct {
	engine          scheduleEngine
	semesters       activeSemesterReader
	courses         generatorCourseReader
	specializations generatorSpecializationReader
	teachers        generatorTeacherReader
	rooms           generatorRoomReader
	students        generatorStudentReader
	histories       generatorHistoryReader
	sections        sectionStore
	enrollments     enrollmentPurger
	tx              txProvider
	cache           *CacheService
	queue           jobEnqueuer
	metrics         *MetricsService
	renderers       map[dto.ExportFormat]scheduleRenderer
	logger          *zap.Logger
	now             func() time.Time
}

// ScheduleGeneratorDeps groups the collaborators of the generator.
type ScheduleGeneratorDeps struct {
	Engine          scheduleEngine
	Semesters       activeSemesterReader
	Courses         generatorCourseReader
	Specializations generatorSpecializationReader
	Teachers        generatorTeacherReader
	Rooms           generatorRoomReader
	Students        generatorStudentReader
	Histories       generatorHistoryReader
	Sections        sectionStore
	Enrollments     enrollmentPurger
	Tx              txProvider
	Cache           *CacheService
	Queue           jobEnqueuer
	Metrics         *MetricsService
}

// NewScheduleGeneratorService wires scheduler dependencies.
func NewScheduleGeneratorService(deps ScheduleGeneratorDeps, logger *zap.Logger) *ScheduleGeneratorService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleGeneratorService{
		engine:          deps.Engine,
		semesters:       deps.Semesters,
		courses:         deps.Courses,
		specializations: deps.Specializations,
		teachers:        deps.Teachers,
		rooms:           deps.Rooms,
		students:        deps.Students,
		histories:       deps.Histories,
		sections:        deps.Sections,
		enrollments:     deps.Enrollments,
		tx:              deps.Tx,
		cache:           deps.Cache,
		queue:           deps.Queue,
		metrics:         deps.Metrics,
		renderers: map[dto.ExportFormat]scheduleRenderer{
			dto.ExportCSV: export.NewCSVExporter(),
			dto.ExportPDF: export.NewPDFExporter(),
		},
		logger: logger,
		now:    time.Now,
	}
}

// Generate builds a fresh timetable for the active semester and atomically replaces the stored one.
func (s *ScheduleGeneratorService) Generate(ctx context.Context) (*dto.GenerateScheduleResponse, error) {
	start := time.Now()
	resp, err := s.generate(ctx)
	if err != nil {
		outcome := GenerationOutcomeError
		switch appErrors.FromError(err).Code {
		case appErrors.ErrPreconditionFailed.Code, appErrors.ErrSchedulingConfig.Code:
			outcome = GenerationOutcomeRejected
		}
		s.metrics.ObserveGeneration(outcome, time.Since(start), 0, 0, nil)
		return nil, err
	}

	statuses := lo.CountValuesBy(resp.Courses, func(c scheduler.CourseOutcome) string { return string(c.Status) })
	s.metrics.ObserveGeneration(GenerationOutcomeSuccess, time.Since(start), len(resp.Events), resp.UnscheduledHours, statuses)
	return resp, nil
}

func (s *ScheduleGeneratorService) generate(ctx context.Context) (*dto.GenerateScheduleResponse, error) {
	semester, err := s.activeSemester(ctx)
	if err != nil {
		return nil, err
	}

	input, err := s.loadInput(ctx, semester)
	if err != nil {
		return nil, err
	}

	result, err := s.engine.Generate(input)
	if err != nil {
		return nil, mapEngineError(err)
	}

	sections := make([]models.CourseSection, 0, len(result.Sessions))
	for _, session := range result.Sessions {
		sections = append(sections, session.Section(uuid.NewString()))
	}

	if err := s.replaceSections(ctx, semester.ID, sections); err != nil {
		return nil, err
	}

	events, err := scheduler.NewProjector(input.Courses, input.Teachers, input.Rooms).ProjectAll(sections)
	if err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to project schedule")
	}

	jobID := s.afterChange(ctx, semester.ID, false)

	s.logger.Info("schedule generated",
		zap.String("semester_id", semester.ID),
		zap.Int("sessions", len(sections)),
		zap.Int("warnings", len(result.Warnings)),
		zap.Int("unscheduled_hours", result.UnscheduledHours()),
		zap.Int64("seed", result.Seed),
	)

	return &dto.GenerateScheduleResponse{
		Semester:         *semester,
		Events:           events,
		Courses:          emptyIfNil(result.Courses),
		Warnings:         emptyIfNil(result.Warnings),
		Ledger:           dto.LedgerCells(result.Ledger),
		WeeksInTerm:      result.WeeksInTerm,
		UnscheduledHours: result.UnscheduledHours(),
		Seed:             result.Seed,
		RefreshJobID:     jobID,
		GeneratedAt:      s.now().UTC(),
	}, nil
}

func (s *ScheduleGeneratorService) loadInput(ctx context.Context, semester *models.Semester) (scheduler.Input, error) {
	input := scheduler.Input{Semester: semester}
	var err error

	if input.Courses, err = s.courses.ListBySemesterOrder(ctx, semester.OrderInYear); err != nil {
		return input, wrapLoadError(err, "courses")
	}
	if input.Specializations, err = s.specializations.List(ctx); err != nil {
		return input, wrapLoadError(err, "specializations")
	}
	if input.Teachers, err = s.teachers.List(ctx); err != nil {
		return input, wrapLoadError(err, "teachers")
	}
	if input.Rooms, err = s.rooms.List(ctx); err != nil {
		return input, wrapLoadError(err, "classrooms")
	}
	if input.Students, err = s.students.ListAll(ctx); err != nil {
		return input, wrapLoadError(err, "students")
	}
	if input.Histories, err = s.histories.List(ctx); err != nil {
		return input, wrapLoadError(err, "course history")
	}
	return input, nil
}

func (s *ScheduleGeneratorService) replaceSections(ctx context.Context, semesterID string, sections []models.CourseSection) (err error) {
	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return appErrors.WrapAs(err, appErrors.ErrInternal, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = s.enrollments.DeleteBySemester(ctx, tx, semesterID); err != nil {
		return appErrors.WrapAs(err, appErrors.ErrInternal, "failed to clear enrollments")
	}
	if _, err = s.sections.DeleteBySemester(ctx, tx, semesterID); err != nil {
		return appErrors.WrapAs(err, appErrors.ErrInternal, "failed to clear course sections")
	}
	if err = s.sections.BulkCreate(ctx, tx, sections); err != nil {
		return appErrors.WrapAs(err, appErrors.ErrInternal, "failed to store course sections")
	}
	if err = tx.Commit(); err != nil {
		return appErrors.WrapAs(err, appErrors.ErrInternal, "failed to commit schedule transaction")
	}
	return nil
}

// afterChange drops cached reports and schedules a rebuild of the semester's. A
// generation only stales its own semester's report; a reset drops every semester's,
// since enrollments behind older reports may have been purged with it. Failures are logged only.
func (s *ScheduleGeneratorService) afterChange(ctx context.Context, semesterID string, everySemester bool) string {
	var err error
	if everySemester {
		err = s.cache.Invalidate(ctx, UtilizationCacheKey("*"))
	} else {
		err = s.cache.Delete(ctx, UtilizationCacheKey(semesterID))
	}
	if err != nil {
		s.logger.Warn("failed to invalidate utilization cache", zap.String("semester_id", semesterID), zap.Error(err))
	}
	if s.queue == nil {
		return ""
	}
	jobID, err := s.queue.Enqueue(jobs.Job{Type: JobUtilizationRefresh, Payload: semesterID})
	if err != nil {
		s.logger.Warn("failed to enqueue utilization refresh", zap.String("semester_id", semesterID), zap.Error(err))
		return ""
	}
	return jobID
}

// GetSchedule returns the stored timetable of the active semester.
func (s *ScheduleGeneratorService) GetSchedule(ctx context.Context) ([]scheduler.ScheduleEvent, error) {
	_, events, err := s.currentSchedule(ctx)
	return events, err
}

func (s *ScheduleGeneratorService) currentSchedule(ctx context.Context) (*models.Semester, []scheduler.ScheduleEvent, error) {
	semester, err := s.activeSemester(ctx)
	if err != nil {
		return nil, nil, err
	}
	details, err := s.sections.ListDetailsBySemester(ctx, semester.ID)
	if err != nil {
		return nil, nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to load course sections")
	}
	events := lo.Map(details, func(d models.CourseSectionDetail, _ int) scheduler.ScheduleEvent {
		return scheduler.ScheduleEvent{
			ID:          d.ID,
			DayOfWeek:   d.DayOfWeek,
			StartTime:   d.StartTime,
			EndTime:     d.EndTime,
			CourseCode:  d.CourseCode,
			CourseName:  d.CourseName,
			TeacherName: d.TeacherName(),
			RoomName:    d.RoomName,
		}
	})
	return semester, events, nil
}

// Reset deletes the active semester's sections and their enrollments.
func (s *ScheduleGeneratorService) Reset(ctx context.Context) (resp *dto.ResetScheduleResponse, err error) {
	semester, err := s.activeSemester(ctx)
	if err != nil {
		return nil, err
	}

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	resp = &dto.ResetScheduleResponse{SemesterID: semester.ID}
	if resp.EnrollmentsDeleted, err = s.enrollments.DeleteBySemester(ctx, tx, semester.ID); err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to clear enrollments")
	}
	if resp.SectionsDeleted, err = s.sections.DeleteBySemester(ctx, tx, semester.ID); err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to clear course sections")
	}
	if err = tx.Commit(); err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to commit reset transaction")
	}

	s.afterChange(ctx, semester.ID, true)
	s.logger.Info("schedule reset",
		zap.String("semester_id", semester.ID),
		zap.Int64("sections", resp.SectionsDeleted),
		zap.Int64("enrollments", resp.EnrollmentsDeleted),
	)
	return resp, nil
}

// Export renders the active semester's timetable in the requested format.
func (s *ScheduleGeneratorService) Export(ctx context.Context, format dto.ExportFormat) (*dto.ExportFile, error) {
	renderer, ok := s.renderers[dto.ExportFormat(strings.ToLower(string(format)))]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}

	semester, events, err := s.currentSchedule(ctx)
	if err != nil {
		return nil, err
	}

	doc := export.Document{
		Title:       "Timetable: " + semester.Name,
		GeneratedAt: s.now().UTC(),
		Rows: lo.Map(events, func(e scheduler.ScheduleEvent, _ int) export.ScheduleRow {
			return export.ScheduleRow{
				Day:        e.DayOfWeek,
				StartTime:  e.StartTime,
				EndTime:    e.EndTime,
				CourseCode: e.CourseCode,
				CourseName: e.CourseName,
				Teacher:    e.TeacherName,
				Room:       e.RoomName,
			}
		}),
	}
	content, err := renderer.Render(doc)
	if err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to render schedule export")
	}

	return &dto.ExportFile{
		Filename:    fmt.Sprintf("schedule-%s.%s", semester.ID, renderer.Extension()),
		ContentType: renderer.ContentType(),
		Content:     content,
	}, nil
}

func (s *ScheduleGeneratorService) activeSemester(ctx context.Context) (*models.Semester, error) {
	semester, err := s.semesters.FindActive(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.WrapAs(scheduler.ErrNoActiveTerm, appErrors.ErrPreconditionFailed, scheduler.ErrNoActiveTerm.Error())
		}
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to load active semester")
	}
	return semester, nil
}

func mapEngineError(err error) error {
	var cfgErr *scheduler.ConfigurationError
	switch {
	case errors.As(err, &cfgErr):
		return appErrors.WrapAs(err, appErrors.ErrSchedulingConfig, cfgErr.Error())
	case errors.Is(err, scheduler.ErrNoActiveTerm), errors.Is(err, scheduler.ErrMissingTermDates):
		return appErrors.WrapAs(err, appErrors.ErrPreconditionFailed, err.Error())
	default:
		return appErrors.WrapAs(err, appErrors.ErrInternal, "schedule generation failed")
	}
}

func wrapLoadError(err error, what string) error {
	return appErrors.WrapAs(err, appErrors.ErrInternal, "failed to load "+what)
}

func emptyIfNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
