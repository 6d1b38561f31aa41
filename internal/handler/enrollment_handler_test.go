package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-scheduler-api/internal/dto"
	"github.com/noah-isme/course-scheduler-api/internal/models"
	"github.com/noah-isme/course-scheduler-api/internal/scheduler"
	appErrors "github.com/noah-isme/course-scheduler-api/pkg/errors"
)

type enrollmentManagerMock struct {
	studentID string
	enrolled  dto.EnrollRequest
	enrollErr error
}

func (m *enrollmentManagerMock) Schedule(ctx context.Context, studentID string) ([]scheduler.ScheduleEvent, error) {
	m.studentID = studentID
	return []scheduler.ScheduleEvent{}, nil
}

func (m *enrollmentManagerMock) EligibleSections(ctx context.Context, studentID string) ([]dto.EligibleSection, error) {
	m.studentID = studentID
	return []dto.EligibleSection{{ID: "sec-1", Capacity: 10}}, nil
}

func (m *enrollmentManagerMock) ValidateConflict(ctx context.Context, studentID string, req dto.ConflictRequest) (*dto.ValidationResponse, error) {
	return &dto.ValidationResponse{OK: false, Errors: []string{"Time conflict with Algebra (MONDAY 09:00-11:00)"}}, nil
}

func (m *enrollmentManagerMock) ValidatePrerequisite(ctx context.Context, studentID string, req dto.PrerequisiteRequest) (*dto.ValidationResponse, error) {
	return &dto.ValidationResponse{OK: true, Errors: []string{}}, nil
}

func (m *enrollmentManagerMock) Enroll(ctx context.Context, studentID string, req dto.EnrollRequest) (*models.StudentSectionEnrollment, error) {
	m.studentID = studentID
	m.enrolled = req
	if m.enrollErr != nil {
		return nil, m.enrollErr
	}
	return &models.StudentSectionEnrollment{ID: "enr-1", StudentID: studentID, CourseSectionID: req.SectionID}, nil
}

func (m *enrollmentManagerMock) EligibleDates(ctx context.Context, sectionID string) ([]string, error) {
	if sectionID != "sec-1" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "Course section not found")
	}
	return []string{"2025-01-06", "2025-01-13"}, nil
}

func (m *enrollmentManagerMock) History(ctx context.Context, studentID string) ([]models.AcademicHistoryEntry, error) {
	return []models.AcademicHistoryEntry{}, nil
}

func (m *enrollmentManagerMock) CurrentEnrollments(ctx context.Context, studentID string) ([]dto.EnrollmentView, error) {
	return []dto.EnrollmentView{}, nil
}

func (m *enrollmentManagerMock) Progress(ctx context.Context, studentID string) (*dto.StudentProgress, error) {
	return &dto.StudentProgress{StudentID: studentID, CreditsRequired: 30}, nil
}

func newEnrollmentRouter(mock *enrollmentManagerMock) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := &EnrollmentHandler{enrollments: mock}
	router := gin.New()
	router.GET("/students/course-sections/:sectionId/eligible-dates", h.EligibleDates)
	router.GET("/students/:id/schedule", h.Schedule)
	router.GET("/students/:id/eligible-sections", h.EligibleSections)
	router.GET("/students/:id/progress", h.Progress)
	router.POST("/students/:id/validate-conflict", h.ValidateConflict)
	router.POST("/students/:id/enroll", h.Enroll)
	return router
}

func TestEnrollmentHandlerEnroll(t *testing.T) {
	mock := &enrollmentManagerMock{}
	router := newEnrollmentRouter(mock)

	req := httptest.NewRequest(http.MethodPost, "/students/stu-1/enroll", strings.NewReader(`{"section_id":"sec-1","enrolled_date":"2025-01-06"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "stu-1", mock.studentID)
	assert.Equal(t, "sec-1", mock.enrolled.SectionID)
	assert.Equal(t, "2025-01-06", mock.enrolled.EnrolledDate)
}

func TestEnrollmentHandlerEnrollRejected(t *testing.T) {
	mock := &enrollmentManagerMock{enrollErr: appErrors.Clone(appErrors.ErrEnrollmentRejected, "Already enrolled in this section")}
	router := newEnrollmentRouter(mock)

	req := httptest.NewRequest(http.MethodPost, "/students/stu-1/enroll", strings.NewReader(`{"section_id":"sec-1","enrolled_date":"2025-01-06"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "Already enrolled in this section")
}

func TestEnrollmentHandlerMalformedPayload(t *testing.T) {
	router := newEnrollmentRouter(&enrollmentManagerMock{})

	req := httptest.NewRequest(http.MethodPost, "/students/stu-1/validate-conflict", strings.NewReader(`{"section_id":`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEnrollmentHandlerValidateConflict(t *testing.T) {
	router := newEnrollmentRouter(&enrollmentManagerMock{})

	req := httptest.NewRequest(http.MethodPost, "/students/stu-1/validate-conflict", strings.NewReader(`{"section_id":"sec-2","enrolled_date":"2025-01-06"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Time conflict with Algebra")
}

func TestEnrollmentHandlerEligibleDatesRoute(t *testing.T) {
	router := newEnrollmentRouter(&enrollmentManagerMock{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/students/course-sections/sec-1/eligible-dates", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":["2025-01-06","2025-01-13"]}`, w.Body.String())

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/students/course-sections/missing/eligible-dates", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEnrollmentHandlerReadEndpoints(t *testing.T) {
	mock := &enrollmentManagerMock{}
	router := newEnrollmentRouter(mock)

	for _, path := range []string{"/students/stu-9/schedule", "/students/stu-9/eligible-sections", "/students/stu-9/progress"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
	assert.Equal(t, "stu-9", mock.studentID)
}
