package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/course-scheduler-api/internal/dto"
	"github.com/noah-isme/course-scheduler-api/internal/models"
	appErrors "github.com/noah-isme/course-scheduler-api/pkg/errors"
)

type mockStudentReader struct {
	students map[string]*models.Student
}

func (m *mockStudentReader) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if student, ok := m.students[id]; ok {
		return student, nil
	}
	return nil, sql.ErrNoRows
}

type mockSemesterReader struct {
	active    *models.Semester
	semesters map[string]*models.Semester
}

func (m *mockSemesterReader) FindActive(ctx context.Context) (*models.Semester, error) {
	if m.active == nil {
		return nil, sql.ErrNoRows
	}
	return m.active, nil
}

func (m *mockSemesterReader) FindByID(ctx context.Context, id string) (*models.Semester, error) {
	if semester, ok := m.semesters[id]; ok {
		return semester, nil
	}
	return nil, sql.ErrNoRows
}

type mockSectionReader struct {
	details []models.CourseSectionDetail
	err     error
}

func (m *mockSectionReader) ListDetailsBySemester(ctx context.Context, semesterID string) ([]models.CourseSectionDetail, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []models.CourseSectionDetail
	for _, d := range m.details {
		if d.SemesterID == semesterID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *mockSectionReader) FindDetailByID(ctx context.Context, id string) (*models.CourseSectionDetail, error) {
	for i := range m.details {
		if m.details[i].ID == id {
			return &m.details[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

type mockEnrollmentStore struct {
	enrollments []models.StudentSectionEnrollment
	created     []models.StudentSectionEnrollment
	createErr   error
	lockErr     error
	lockedWith  sqlx.ExtContext
	createdWith sqlx.ExtContext
}

func (m *mockEnrollmentStore) LockForBooking(ctx context.Context, exec sqlx.ExtContext, studentID, sectionID string) error {
	m.lockedWith = exec
	return m.lockErr
}

func (m *mockEnrollmentStore) ListByStudent(ctx context.Context, studentID string) ([]models.StudentSectionEnrollment, error) {
	var out []models.StudentSectionEnrollment
	for _, e := range m.enrollments {
		if e.StudentID == studentID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockEnrollmentStore) ListByStudentAndSemester(ctx context.Context, studentID, semesterID string) ([]models.StudentSectionEnrollment, error) {
	var out []models.StudentSectionEnrollment
	for _, e := range m.enrollments {
		if e.StudentID == studentID && e.SemesterID == semesterID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockEnrollmentStore) ExistsForSection(ctx context.Context, exec sqlx.ExtContext, studentID, sectionID string) (bool, error) {
	for _, e := range m.enrollments {
		if e.StudentID == studentID && e.CourseSectionID == sectionID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockEnrollmentStore) CountBySectionAndDate(ctx context.Context, exec sqlx.ExtContext, sectionID string, date time.Time) (int, error) {
	count := 0
	for _, e := range m.enrollments {
		if e.CourseSectionID == sectionID && sameDate(e.EnrolledDate, date) {
			count++
		}
	}
	return count, nil
}

func (m *mockEnrollmentStore) CountByStudentAndSemester(ctx context.Context, exec sqlx.ExtContext, studentID, semesterID string) (int, error) {
	list, _ := m.ListByStudentAndSemester(ctx, studentID, semesterID)
	return len(list), nil
}

func (m *mockEnrollmentStore) CountBySection(ctx context.Context, sectionID string) (int, error) {
	count := 0
	for _, e := range m.enrollments {
		if e.CourseSectionID == sectionID {
			count++
		}
	}
	return count, nil
}

func (m *mockEnrollmentStore) Create(ctx context.Context, exec sqlx.ExtContext, enrollment *models.StudentSectionEnrollment) error {
	m.createdWith = exec
	if m.createErr != nil {
		return m.createErr
	}
	enrollment.ID = "enr-new"
	m.created = append(m.created, *enrollment)
	m.enrollments = append(m.enrollments, *enrollment)
	return nil
}

type mockHistoryReader struct {
	records []models.StudentCourseHistory
	entries []models.AcademicHistoryEntry
}

func (m *mockHistoryReader) ListByStudent(ctx context.Context, studentID string) ([]models.StudentCourseHistory, error) {
	var out []models.StudentCourseHistory
	for _, h := range m.records {
		if h.StudentID == studentID {
			out = append(out, h)
		}
	}
	return out, nil
}

func (m *mockHistoryReader) ListAcademicHistory(ctx context.Context, studentID string) ([]models.AcademicHistoryEntry, error) {
	return m.entries, nil
}

type mockCourseReader struct {
	courses map[string]*models.Course
}

func (m *mockCourseReader) FindByID(ctx context.Context, id string) (*models.Course, error) {
	if course, ok := m.courses[id]; ok {
		return course, nil
	}
	return nil, sql.ErrNoRows
}

type enrollmentFixture struct {
	service     *EnrollmentService
	mock        sqlmock.Sqlmock
	enrollments *mockEnrollmentStore
	history     *mockHistoryReader
	sections    *mockSectionReader
}

func strRef(v string) *string { return &v }

func dateOf(raw string) time.Time {
	t, _ := time.Parse("2006-01-02", raw)
	return t
}

func sectionDetail(id, courseID, courseName, day, start, end string) models.CourseSectionDetail {
	return models.CourseSectionDetail{
		CourseSection: models.CourseSection{
			ID: id, CourseID: courseID, TeacherID: "t1", ClassroomID: "r1", SemesterID: "sem-1",
			DayOfWeek: day, StartTime: start, EndTime: end,
		},
		CourseCode:       courseID,
		CourseName:       courseName,
		CourseType:       string(models.CourseTypeCore),
		GradeLevelMin:    9,
		GradeLevelMax:    12,
		TeacherFirstName: "Grace",
		TeacherLastName:  "Hopper",
		RoomName:         "Lab 1",
		RoomCapacity:     2,
	}
}

func newEnrollmentFixture(t *testing.T) *enrollmentFixture {
	t.Helper()
	start, end := dateOf("2025-01-06"), dateOf("2025-01-31")
	semester := &models.Semester{ID: "sem-1", Name: "Spring", StartDate: &start, EndDate: &end, IsActive: true}

	sections := &mockSectionReader{details: []models.CourseSectionDetail{
		sectionDetail("sec-math", "math", "Algebra", "MONDAY", "09:00", "11:00"),
		sectionDetail("sec-bio", "bio", "Biology", "MONDAY", "10:00", "11:00"),
		sectionDetail("sec-art", "art", "Art", "TUESDAY", "13:00", "14:00"),
		sectionDetail("sec-chem", "chem", "Chemistry", "FRIDAY", "09:00", "10:00"),
		sectionDetail("sec-pe", "pe", "Sports", "MONDAY", "14:00", "15:00"),
	}}
	sections.details[3].PrerequisiteID = strRef("bio")
	sections.details[4].GradeLevelMin = 11

	enrollments := &mockEnrollmentStore{}
	history := &mockHistoryReader{}
	tx, mock := newTxProviderMock(t)
	svc := NewEnrollmentService(
		&mockStudentReader{students: map[string]*models.Student{
			"stu-1": {ID: "stu-1", FirstName: "Ada", LastName: "Lovelace", Email: "ada@school.test", GradeLevel: 10},
		}},
		&mockSemesterReader{active: semester, semesters: map[string]*models.Semester{"sem-1": semester}},
		sections,
		enrollments,
		history,
		&mockCourseReader{courses: map[string]*models.Course{
			"chem": {ID: "chem", PrerequisiteID: strRef("bio")},
			"art":  {ID: "art"},
		}},
		tx,
		nil,
		validator.New(),
		zap.NewNop(),
		EnrollmentConfig{},
	)
	return &enrollmentFixture{service: svc, mock: mock, enrollments: enrollments, history: history, sections: sections}
}

func TestEnrollmentServiceEnrollSuccess(t *testing.T) {
	fx := newEnrollmentFixture(t)
	fx.mock.ExpectBegin()
	fx.mock.ExpectCommit()

	enrollment, err := fx.service.Enroll(context.Background(), "stu-1", dto.EnrollRequest{SectionID: "sec-math", EnrolledDate: "2025-01-06"})
	require.NoError(t, err)
	assert.Equal(t, "sem-1", enrollment.SemesterID)
	assert.Len(t, fx.enrollments.created, 1)
	require.NoError(t, fx.mock.ExpectationsWereMet())
}

func TestEnrollmentServiceEnrollLocksAndInsertsInOneTransaction(t *testing.T) {
	fx := newEnrollmentFixture(t)
	fx.mock.ExpectBegin()
	fx.mock.ExpectCommit()

	_, err := fx.service.Enroll(context.Background(), "stu-1", dto.EnrollRequest{SectionID: "sec-math", EnrolledDate: "2025-01-06"})
	require.NoError(t, err)

	tx, ok := fx.enrollments.lockedWith.(*sqlx.Tx)
	require.True(t, ok, "seat checks must run inside a transaction")
	assert.Same(t, tx, fx.enrollments.createdWith)
	require.NoError(t, fx.mock.ExpectationsWereMet())
}

func TestEnrollmentServiceEnrollRollsBackWhenLockFails(t *testing.T) {
	fx := newEnrollmentFixture(t)
	fx.enrollments.lockErr = errors.New("lock timeout")
	fx.mock.ExpectBegin()
	fx.mock.ExpectRollback()

	_, err := fx.service.Enroll(context.Background(), "stu-1", dto.EnrollRequest{SectionID: "sec-math", EnrolledDate: "2025-01-06"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
	assert.Empty(t, fx.enrollments.created)
	require.NoError(t, fx.mock.ExpectationsWereMet())
}

func TestEnrollmentServiceCapacityAgreesAcrossOperations(t *testing.T) {
	fx := newEnrollmentFixture(t)
	fx.enrollments.enrollments = []models.StudentSectionEnrollment{
		{StudentID: "a", CourseSectionID: "sec-art", SemesterID: "sem-1", EnrolledDate: dateOf("2025-01-07")},
		{StudentID: "b", CourseSectionID: "sec-art", SemesterID: "sem-1", EnrolledDate: dateOf("2025-01-07")},
	}

	sections, err := fx.service.EligibleSections(context.Background(), "stu-1")
	require.NoError(t, err)
	art, found := lo.Find(sections, func(e dto.EligibleSection) bool { return e.ID == "sec-art" })
	require.True(t, found)
	assert.Equal(t, 2, art.Capacity)

	dates, err := fx.service.EligibleDates(context.Background(), "sec-art")
	require.NoError(t, err)
	assert.NotContains(t, dates, "2025-01-07")

	fx.mock.ExpectBegin()
	fx.mock.ExpectRollback()
	_, err = fx.service.Enroll(context.Background(), "stu-1", dto.EnrollRequest{SectionID: "sec-art", EnrolledDate: "2025-01-07"})
	assert.Equal(t, "Room is full for this section & date 2025-01-07", appErrors.FromError(err).Message)
	require.NoError(t, fx.mock.ExpectationsWereMet())
}

func TestEnrollmentServiceSeatLimitFallsBackToConfig(t *testing.T) {
	fx := newEnrollmentFixture(t)
	for i := range fx.sections.details {
		fx.sections.details[i].RoomCapacity = 0
	}

	sections, err := fx.service.EligibleSections(context.Background(), "stu-1")
	require.NoError(t, err)
	require.NotEmpty(t, sections)
	for _, section := range sections {
		assert.Equal(t, 10, section.Capacity)
	}
}

func TestEnrollmentServiceEnrollRulesInOrder(t *testing.T) {
	cases := []struct {
		name    string
		setup   func(fx *enrollmentFixture)
		student string
		req     dto.EnrollRequest
		code    string
		message string
		locked  bool
	}{
		{
			name:    "unknown section",
			student: "stu-1",
			req:     dto.EnrollRequest{SectionID: "missing", EnrolledDate: "2025-01-06"},
			code:    appErrors.ErrNotFound.Code,
			message: "Course section not found",
		},
		{
			name:    "unknown student",
			student: "ghost",
			req:     dto.EnrollRequest{SectionID: "sec-math", EnrolledDate: "2025-01-06"},
			code:    appErrors.ErrNotFound.Code,
			message: "Student not found",
		},
		{
			name: "duplicate",
			setup: func(fx *enrollmentFixture) {
				fx.enrollments.enrollments = append(fx.enrollments.enrollments, models.StudentSectionEnrollment{StudentID: "stu-1", CourseSectionID: "sec-math", SemesterID: "sem-1", EnrolledDate: dateOf("2025-01-13")})
			},
			student: "stu-1",
			req:     dto.EnrollRequest{SectionID: "sec-math", EnrolledDate: "2025-01-06"},
			code:    appErrors.ErrEnrollmentRejected.Code,
			message: "Already enrolled in this section",
			locked:  true,
		},
		{
			name: "room full",
			setup: func(fx *enrollmentFixture) {
				for _, id := range []string{"a", "b"} {
					fx.enrollments.enrollments = append(fx.enrollments.enrollments, models.StudentSectionEnrollment{StudentID: id, CourseSectionID: "sec-math", SemesterID: "sem-1", EnrolledDate: dateOf("2025-01-06")})
				}
			},
			student: "stu-1",
			req:     dto.EnrollRequest{SectionID: "sec-math", EnrolledDate: "2025-01-06"},
			code:    appErrors.ErrEnrollmentRejected.Code,
			message: "Room is full for this section & date 2025-01-06",
			locked:  true,
		},
		{
			name: "semester cap",
			setup: func(fx *enrollmentFixture) {
				for i := 0; i < MaxCoursesPerSemester; i++ {
					fx.enrollments.enrollments = append(fx.enrollments.enrollments, models.StudentSectionEnrollment{StudentID: "stu-1", CourseSectionID: "other", SemesterID: "sem-1", EnrolledDate: dateOf("2025-01-07")})
				}
			},
			student: "stu-1",
			req:     dto.EnrollRequest{SectionID: "sec-math", EnrolledDate: "2025-01-06"},
			code:    appErrors.ErrEnrollmentRejected.Code,
			message: "Maximum of 5 courses per semester reached.",
			locked:  true,
		},
		{
			name: "time conflict",
			setup: func(fx *enrollmentFixture) {
				fx.enrollments.enrollments = append(fx.enrollments.enrollments, models.StudentSectionEnrollment{StudentID: "stu-1", CourseSectionID: "sec-bio", SemesterID: "sem-1", EnrolledDate: dateOf("2025-01-06")})
			},
			student: "stu-1",
			req:     dto.EnrollRequest{SectionID: "sec-math", EnrolledDate: "2025-01-06"},
			code:    appErrors.ErrEnrollmentRejected.Code,
			message: "Time conflict with Biology (MONDAY 10:00-11:00)",
			locked:  true,
		},
		{
			name:    "bad date",
			student: "stu-1",
			req:     dto.EnrollRequest{SectionID: "sec-math", EnrolledDate: "06/01/2025"},
			code:    appErrors.ErrValidation.Code,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fx := newEnrollmentFixture(t)
			if tc.setup != nil {
				tc.setup(fx)
			}
			if tc.locked {
				fx.mock.ExpectBegin()
				fx.mock.ExpectRollback()
			}
			_, err := fx.service.Enroll(context.Background(), tc.student, tc.req)
			require.Error(t, err)
			appErr := appErrors.FromError(err)
			assert.Equal(t, tc.code, appErr.Code)
			if tc.message != "" {
				assert.Equal(t, tc.message, appErr.Message)
			}
			assert.Empty(t, fx.enrollments.created)
			require.NoError(t, fx.mock.ExpectationsWereMet())
		})
	}
}

func TestEnrollmentServiceValidateConflictIgnoresOtherDates(t *testing.T) {
	fx := newEnrollmentFixture(t)
	fx.enrollments.enrollments = []models.StudentSectionEnrollment{
		{StudentID: "stu-1", CourseSectionID: "sec-bio", SemesterID: "sem-1", EnrolledDate: dateOf("2025-01-13")},
	}

	res, err := fx.service.ValidateConflict(context.Background(), "stu-1", dto.ConflictRequest{SectionID: "sec-math", EnrolledDate: "2025-01-06"})
	require.NoError(t, err)
	assert.True(t, res.OK)
	assert.Empty(t, res.Errors)

	res, err = fx.service.ValidateConflict(context.Background(), "stu-1", dto.ConflictRequest{SectionID: "sec-math", EnrolledDate: "2025-01-13"})
	require.NoError(t, err)
	assert.False(t, res.OK)
	assert.Equal(t, []string{"Time conflict with Biology (MONDAY 10:00-11:00)"}, res.Errors)
}

func TestEnrollmentServiceEligibleSections(t *testing.T) {
	fx := newEnrollmentFixture(t)
	fx.history.records = []models.StudentCourseHistory{
		{StudentID: "stu-1", CourseID: "art", Status: "PASSED"},
	}
	fx.enrollments.enrollments = []models.StudentSectionEnrollment{
		{StudentID: "other", CourseSectionID: "sec-math", SemesterID: "sem-1", EnrolledDate: dateOf("2025-01-06")},
		{StudentID: "stu-1", CourseSectionID: "sec-bio", SemesterID: "sem-1", EnrolledDate: dateOf("2025-01-06")},
	}

	sections, err := fx.service.EligibleSections(context.Background(), "stu-1")
	require.NoError(t, err)
	// art passed, bio booked, chem lacks bio pass, pe is above grade level.
	require.Len(t, sections, 1)
	assert.Equal(t, "sec-math", sections[0].ID)
	assert.Equal(t, 1, sections[0].Enrolled)
	assert.Equal(t, 2, sections[0].Capacity)
	assert.Equal(t, "Grace Hopper", sections[0].TeacherName)
}

func TestEnrollmentServiceEligibleSectionsSortedByDayThenStart(t *testing.T) {
	fx := newEnrollmentFixture(t)
	fx.history.records = []models.StudentCourseHistory{{StudentID: "stu-1", CourseID: "bio", Status: "passed"}}

	sections, err := fx.service.EligibleSections(context.Background(), "stu-1")
	require.NoError(t, err)
	ids := make([]string, 0, len(sections))
	for _, s := range sections {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []string{"sec-math", "sec-art", "sec-chem"}, ids)
}

func TestEnrollmentServiceEligibleSectionsWithoutActiveSemester(t *testing.T) {
	fx := newEnrollmentFixture(t)
	fx.service.semesters = &mockSemesterReader{}

	_, err := fx.service.EligibleSections(context.Background(), "stu-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}

func TestEnrollmentServiceValidatePrerequisite(t *testing.T) {
	fx := newEnrollmentFixture(t)

	res, err := fx.service.ValidatePrerequisite(context.Background(), "stu-1", dto.PrerequisiteRequest{CourseID: "chem"})
	require.NoError(t, err)
	assert.False(t, res.OK)
	assert.Equal(t, []string{"Prerequisite not completed"}, res.Errors)

	fx.history.records = []models.StudentCourseHistory{{StudentID: "stu-1", CourseID: "bio", Status: "passed"}}
	res, err = fx.service.ValidatePrerequisite(context.Background(), "stu-1", dto.PrerequisiteRequest{CourseID: "chem"})
	require.NoError(t, err)
	assert.True(t, res.OK)

	res, err = fx.service.ValidatePrerequisite(context.Background(), "stu-1", dto.PrerequisiteRequest{CourseID: "art"})
	require.NoError(t, err)
	assert.True(t, res.OK)

	_, err = fx.service.ValidatePrerequisite(context.Background(), "stu-1", dto.PrerequisiteRequest{CourseID: "missing"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestEnrollmentServiceEligibleDates(t *testing.T) {
	fx := newEnrollmentFixture(t)
	fx.enrollments.enrollments = []models.StudentSectionEnrollment{
		{StudentID: "a", CourseSectionID: "sec-math", SemesterID: "sem-1", EnrolledDate: dateOf("2025-01-13")},
		{StudentID: "b", CourseSectionID: "sec-math", SemesterID: "sem-1", EnrolledDate: dateOf("2025-01-13")},
		{StudentID: "c", CourseSectionID: "sec-math", SemesterID: "sem-1", EnrolledDate: dateOf("2025-01-20")},
	}

	dates, err := fx.service.EligibleDates(context.Background(), "sec-math")
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-01-06", "2025-01-20", "2025-01-27"}, dates)
}

func TestEnrollmentServiceScheduleAndCurrent(t *testing.T) {
	fx := newEnrollmentFixture(t)
	fx.enrollments.enrollments = []models.StudentSectionEnrollment{
		{ID: "e1", StudentID: "stu-1", CourseSectionID: "sec-chem", SemesterID: "sem-1", EnrolledDate: dateOf("2025-01-10")},
		{ID: "e2", StudentID: "stu-1", CourseSectionID: "sec-art", SemesterID: "sem-1", EnrolledDate: dateOf("2025-01-07")},
	}

	events, err := fx.service.Schedule(context.Background(), "stu-1")
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.NotNil(t, events[0].EnrolledDate)
	assert.Equal(t, "2025-01-10", *events[0].EnrolledDate)
	assert.Equal(t, "Chemistry", events[0].CourseName)

	current, err := fx.service.CurrentEnrollments(context.Background(), "stu-1")
	require.NoError(t, err)
	require.Len(t, current, 2)
	assert.Equal(t, "TUESDAY", current[0].DayOfWeek)
	assert.Equal(t, "FRIDAY", current[1].DayOfWeek)
}

func TestEnrollmentServiceProgress(t *testing.T) {
	fx := newEnrollmentFixture(t)
	fx.history.entries = []models.AcademicHistoryEntry{
		{CourseName: "Algebra", CourseType: "CORE", Credits: 4, Status: "passed"},
		{CourseName: "Art", CourseType: "ELECTIVE", Credits: 2, Status: "PASSED"},
		{CourseName: "Biology", CourseType: "CORE", Credits: 3, Status: "failed"},
		{CourseName: "Drama", CourseType: "ELECTIVE", Credits: 2, Status: "in_progress"},
	}
	for i := 0; i < 5; i++ {
		fx.enrollments.enrollments = append(fx.enrollments.enrollments, models.StudentSectionEnrollment{StudentID: "stu-1", SemesterID: "sem-1"})
	}

	progress, err := fx.service.Progress(context.Background(), "stu-1")
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", progress.StudentName)
	assert.Equal(t, 6, progress.CreditsEarned)
	assert.Equal(t, 24, progress.CreditsRemaining)
	assert.InDelta(t, 20.0, progress.CompletionPercentage, 0.001)
	assert.InDelta(t, 4.0*2/3, progress.GPA, 0.001)
	assert.Equal(t, 1, progress.CoreCompleted)
	assert.Equal(t, 1, progress.ElectiveCompleted)
	assert.Equal(t, 5, progress.PlannedThisSemester)
	assert.True(t, progress.MaxCoursesReached)
}

func TestEnrollmentServiceProgressUnknownStudent(t *testing.T) {
	fx := newEnrollmentFixture(t)

	_, err := fx.service.Progress(context.Background(), "ghost")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
