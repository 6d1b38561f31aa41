package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-scheduler-api/internal/dto"
	"github.com/noah-isme/course-scheduler-api/internal/models"
	"github.com/noah-isme/course-scheduler-api/internal/scheduler"
	"github.com/noah-isme/course-scheduler-api/internal/service"
	appErrors "github.com/noah-isme/course-scheduler-api/pkg/errors"
	"github.com/noah-isme/course-scheduler-api/pkg/response"
)

type enrollmentManager interface {
	Schedule(ctx context.Context, studentID string) ([]scheduler.ScheduleEvent, error)
	EligibleSections(ctx context.Context, studentID string) ([]dto.EligibleSection, error)
	ValidateConflict(ctx context.Context, studentID string, req dto.ConflictRequest) (*dto.ValidationResponse, error)
	ValidatePrerequisite(ctx context.Context, studentID string, req dto.PrerequisiteRequest) (*dto.ValidationResponse, error)
	Enroll(ctx context.Context, studentID string, req dto.EnrollRequest) (*models.StudentSectionEnrollment, error)
	EligibleDates(ctx context.Context, sectionID string) ([]string, error)
	History(ctx context.Context, studentID string) ([]models.AcademicHistoryEntry, error)
	CurrentEnrollments(ctx context.Context, studentID string) ([]dto.EnrollmentView, error)
	Progress(ctx context.Context, studentID string) (*dto.StudentProgress, error)
}

// EnrollmentHandler exposes student enrollment endpoints.
type EnrollmentHandler struct {
	enrollments enrollmentManager
}

// NewEnrollmentHandler constructs EnrollmentHandler.
func NewEnrollmentHandler(enrollments *service.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments}
}

// Schedule godoc
// @Summary Student's enrolled sessions as timetable events
// @Tags Enrollments
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /students/{id}/schedule [get]
func (h *EnrollmentHandler) Schedule(c *gin.Context) {
	events, err := h.enrollments.Schedule(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, events)
}

// EligibleSections godoc
// @Summary Sections of the active semester the student may enroll in
// @Tags Enrollments
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Security BearerAuth
// @Router /students/{id}/eligible-sections [get]
func (h *EnrollmentHandler) EligibleSections(c *gin.Context) {
	sections, err := h.enrollments.EligibleSections(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, sections)
}

// ValidateConflict godoc
// @Summary Check a section against the student's sessions on a date
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body dto.ConflictRequest true "Section and date"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /students/{id}/validate-conflict [post]
func (h *EnrollmentHandler) ValidateConflict(c *gin.Context) {
	var req dto.ConflictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	res, err := h.enrollments.ValidateConflict(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}

// ValidatePrerequisite godoc
// @Summary Check whether the student passed a course's prerequisite
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body dto.PrerequisiteRequest true "Course"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /students/{id}/validate-prereq [post]
func (h *EnrollmentHandler) ValidatePrerequisite(c *gin.Context) {
	var req dto.PrerequisiteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	res, err := h.enrollments.ValidatePrerequisite(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}

// Enroll godoc
// @Summary Enroll a student into a section on a date
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body dto.EnrollRequest true "Enrollment payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /students/{id}/enroll [post]
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	var req dto.EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	enrollment, err := h.enrollments.Enroll(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, enrollment)
}

// EligibleDates godoc
// @Summary Dates of the section's weekday that still have free seats
// @Tags Enrollments
// @Produce json
// @Param sectionId path string true "Course section ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/course-sections/{sectionId}/eligible-dates [get]
func (h *EnrollmentHandler) EligibleDates(c *gin.Context) {
	dates, err := h.enrollments.EligibleDates(c.Request.Context(), c.Param("sectionId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dates)
}

// History godoc
// @Summary Student's academic history by semester
// @Tags Enrollments
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /students/{id}/history [get]
func (h *EnrollmentHandler) History(c *gin.Context) {
	history, err := h.enrollments.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, history)
}

// CurrentEnrollments godoc
// @Summary Student's enrollments in the active semester
// @Tags Enrollments
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /students/{id}/enrollments/current [get]
func (h *EnrollmentHandler) CurrentEnrollments(c *gin.Context) {
	views, err := h.enrollments.CurrentEnrollments(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, views)
}

// Progress godoc
// @Summary Student's credit and GPA progress
// @Tags Enrollments
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /students/{id}/progress [get]
func (h *EnrollmentHandler) Progress(c *gin.Context) {
	progress, err := h.enrollments.Progress(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, progress)
}
