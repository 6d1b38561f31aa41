package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-scheduler-api/internal/models"
	"github.com/noah-isme/course-scheduler-api/internal/service"
	appErrors "github.com/noah-isme/course-scheduler-api/pkg/errors"
	"github.com/noah-isme/course-scheduler-api/pkg/response"
)

type catalogReader interface {
	ListCourses(ctx context.Context, filter models.CourseFilter) ([]models.Course, error)
	GetCourse(ctx context.Context, id string) (*models.Course, error)
	ListClassrooms(ctx context.Context) ([]models.Classroom, error)
	ListSpecializations(ctx context.Context) ([]models.Specialization, error)
	ListRoomTypes(ctx context.Context) ([]models.RoomType, error)
	ActiveSemester(ctx context.Context) (*models.Semester, error)
	ListSemesters(ctx context.Context) ([]models.Semester, error)
}

type teacherReader interface {
	List(ctx context.Context) ([]models.Teacher, error)
	Get(ctx context.Context, id string) (*models.Teacher, error)
}

// CatalogHandler exposes the reference data the timetable is built from.
type CatalogHandler struct {
	catalog  catalogReader
	teachers teacherReader
}

// NewCatalogHandler constructs CatalogHandler.
func NewCatalogHandler(catalog *service.CatalogService, teachers *service.TeacherService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, teachers: teachers}
}

// ListCourses godoc
// @Summary List courses
// @Tags Catalog
// @Produce json
// @Param semesterOrder query int false "Semester order within the year"
// @Param search query string false "Search by code or name"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /courses [get]
func (h *CatalogHandler) ListCourses(c *gin.Context) {
	var filter models.CourseFilter
	filter.Search = strings.TrimSpace(c.Query("search"))
	if raw := c.Query("semesterOrder"); raw != "" {
		order, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "semesterOrder must be a number"))
			return
		}
		filter.SemesterOrder = &order
	}

	courses, err := h.catalog.ListCourses(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, courses)
}

// GetCourse godoc
// @Summary Get course detail
// @Tags Catalog
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/{id} [get]
func (h *CatalogHandler) GetCourse(c *gin.Context) {
	course, err := h.catalog.GetCourse(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, course)
}

// ListTeachers godoc
// @Summary List teachers
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /teachers [get]
func (h *CatalogHandler) ListTeachers(c *gin.Context) {
	teachers, err := h.teachers.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, teachers)
}

// GetTeacher godoc
// @Summary Get teacher detail
// @Tags Catalog
// @Produce json
// @Param id path string true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /teachers/{id} [get]
func (h *CatalogHandler) GetTeacher(c *gin.Context) {
	teacher, err := h.teachers.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, teacher)
}

// ListClassrooms godoc
// @Summary List classrooms
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /classrooms [get]
func (h *CatalogHandler) ListClassrooms(c *gin.Context) {
	rooms, err := h.catalog.ListClassrooms(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, rooms)
}

// ListSpecializations godoc
// @Summary List specializations with their required room types
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /specializations [get]
func (h *CatalogHandler) ListSpecializations(c *gin.Context) {
	specs, err := h.catalog.ListSpecializations(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	types, err := h.catalog.ListRoomTypes(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, specs, map[string]interface{}{"room_types": types})
}

// ActiveSemester godoc
// @Summary Get the active semester
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /semesters/active [get]
func (h *CatalogHandler) ActiveSemester(c *gin.Context) {
	semester, err := h.catalog.ActiveSemester(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, semester)
}

// ListSemesters godoc
// @Summary List semesters
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /semesters [get]
func (h *CatalogHandler) ListSemesters(c *gin.Context) {
	semesters, err := h.catalog.ListSemesters(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, semesters)
}
