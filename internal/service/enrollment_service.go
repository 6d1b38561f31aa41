package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/noah-isme/course-scheduler-api/internal/dto"
	"github.com/noah-isme/course-scheduler-api/internal/models"
	"github.com/noah-isme/course-scheduler-api/internal/scheduler"
	appErrors "github.com/noah-isme/course-scheduler-api/pkg/errors"
)

const (
	// MaxCoursesPerSemester caps a student's bookings in one semester.
	MaxCoursesPerSemester = 5
	// CreditsRequired is the credit total needed to graduate.
	CreditsRequired = 30

	dateLayout = "2006-01-02"
)

type enrollmentStudentReader interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

type enrollmentSemesterReader interface {
	FindActive(ctx context.Context) (*models.Semester, error)
	FindByID(ctx context.Context, id string) (*models.Semester, error)
}

type enrollmentSectionReader interface {
	ListDetailsBySemester(ctx context.Context, semesterID string) ([]models.CourseSectionDetail, error)
	FindDetailByID(ctx context.Context, id string) (*models.CourseSectionDetail, error)
}

type enrollmentStore interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.StudentSectionEnrollment, error)
	ListByStudentAndSemester(ctx context.Context, studentID, semesterID string) ([]models.StudentSectionEnrollment, error)
	LockForBooking(ctx context.Context, exec sqlx.ExtContext, studentID, sectionID string) error
	ExistsForSection(ctx context.Context, exec sqlx.ExtContext, studentID, sectionID string) (bool, error)
	CountBySectionAndDate(ctx context.Context, exec sqlx.ExtContext, sectionID string, date time.Time) (int, error)
	CountByStudentAndSemester(ctx context.Context, exec sqlx.ExtContext, studentID, semesterID string) (int, error)
	CountBySection(ctx context.Context, sectionID string) (int, error)
	Create(ctx context.Context, exec sqlx.ExtContext, enrollment *models.StudentSectionEnrollment) error
}

type enrollmentHistoryReader interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.StudentCourseHistory, error)
	ListAcademicHistory(ctx context.Context, studentID string) ([]models.AcademicHistoryEntry, error)
}

type enrollmentCourseReader interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

// EnrollmentConfig tunes enrollment behaviour.
type EnrollmentConfig struct {
	// SectionCapacity is the seat limit of a section whose classroom has no capacity recorded.
	SectionCapacity int
}

// EnrollmentService books students into generated sections and reports their progress.
type EnrollmentService struct {
	students    enrollmentStudentReader
	semesters   enrollmentSemesterReader
	sections    enrollmentSectionReader
	enrollments enrollmentStore
	histories   enrollmentHistoryReader
	courses     enrollmentCourseReader
	tx          txProvider
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
	cfg         EnrollmentConfig
}

// NewEnrollmentService constructs EnrollmentService.
func NewEnrollmentService(
	students enrollmentStudentReader,
	semesters enrollmentSemesterReader,
	sections enrollmentSectionReader,
	enrollments enrollmentStore,
	histories enrollmentHistoryReader,
	courses enrollmentCourseReader,
	tx txProvider,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg EnrollmentConfig,
) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SectionCapacity <= 0 {
		cfg.SectionCapacity = scheduler.DefaultRoomCapacity
	}
	return &EnrollmentService{
		students:    students,
		semesters:   semesters,
		sections:    sections,
		enrollments: enrollments,
		histories:   histories,
		courses:     courses,
		tx:          tx,
		metrics:     metrics,
		validator:   validate,
		logger:      logger,
		cfg:         cfg,
	}
}

// Schedule lists every section the student booked, with the booked date.
func (s *EnrollmentService) Schedule(ctx context.Context, studentID string) ([]scheduler.ScheduleEvent, error) {
	enrollments, err := s.enrollments.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to load enrollments")
	}
	index, err := s.sectionIndex(ctx, lo.Uniq(lo.Map(enrollments, func(e models.StudentSectionEnrollment, _ int) string { return e.SemesterID }))...)
	if err != nil {
		return nil, err
	}

	events := make([]scheduler.ScheduleEvent, 0, len(enrollments))
	for _, enrollment := range enrollments {
		section, ok := index[enrollment.CourseSectionID]
		if !ok {
			continue
		}
		date := enrollment.EnrolledDate.Format(dateLayout)
		events = append(events, scheduler.ScheduleEvent{
			ID:           section.ID,
			DayOfWeek:    section.DayOfWeek,
			StartTime:    section.StartTime,
			EndTime:      section.EndTime,
			CourseCode:   section.CourseCode,
			CourseName:   section.CourseName,
			TeacherName:  section.TeacherName(),
			RoomName:     section.RoomName,
			EnrolledDate: &date,
		})
	}
	return events, nil
}

// EligibleSections lists active-semester sections the student may still book.
func (s *EnrollmentService) EligibleSections(ctx context.Context, studentID string) ([]dto.EligibleSection, error) {
	student, err := s.findStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	semester, err := s.activeSemester(ctx)
	if err != nil {
		return nil, err
	}

	sections, err := s.sections.ListDetailsBySemester(ctx, semester.ID)
	if err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to load course sections")
	}
	history, err := s.histories.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to load course history")
	}
	current, err := s.enrollments.ListByStudentAndSemester(ctx, studentID, semester.ID)
	if err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to load enrollments")
	}

	passed := lo.SliceToMap(lo.Filter(history, func(h models.StudentCourseHistory, _ int) bool { return h.Passed() }),
		func(h models.StudentCourseHistory) (string, struct{}) { return h.CourseID, struct{}{} })
	sectionCourse := lo.SliceToMap(sections, func(d models.CourseSectionDetail) (string, string) { return d.ID, d.CourseID })
	enrolledCourses := make(map[string]struct{}, len(current))
	for _, enrollment := range current {
		if courseID, ok := sectionCourse[enrollment.CourseSectionID]; ok {
			enrolledCourses[courseID] = struct{}{}
		}
	}

	eligible := make([]dto.EligibleSection, 0, len(sections))
	for _, section := range sections {
		if _, done := passed[section.CourseID]; done {
			continue
		}
		if _, booked := enrolledCourses[section.CourseID]; booked {
			continue
		}
		if student.GradeLevel < section.GradeLevelMin || student.GradeLevel > section.GradeLevelMax {
			continue
		}
		if section.PrerequisiteID != nil {
			if _, ok := passed[*section.PrerequisiteID]; !ok {
				continue
			}
		}
		count, err := s.enrollments.CountBySection(ctx, section.ID)
		if err != nil {
			return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to count enrollments")
		}
		eligible = append(eligible, dto.EligibleSection{
			ID:          section.ID,
			CourseID:    section.CourseID,
			CourseName:  section.CourseName,
			TeacherName: section.TeacherName(),
			RoomName:    section.RoomName,
			DayOfWeek:   section.DayOfWeek,
			StartTime:   section.StartTime,
			EndTime:     section.EndTime,
			Capacity:    s.seatLimit(section),
			Enrolled:    count,
			CourseType:  section.CourseType,
		})
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		di, dj := dayRank(eligible[i].DayOfWeek), dayRank(eligible[j].DayOfWeek)
		if di != dj {
			return di < dj
		}
		return eligible[i].StartTime < eligible[j].StartTime
	})
	return eligible, nil
}

// ValidateConflict reports bookings on the same date whose times overlap the section.
func (s *EnrollmentService) ValidateConflict(ctx context.Context, studentID string, req dto.ConflictRequest) (*dto.ValidationResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrValidation, "invalid conflict payload")
	}
	date, _ := time.Parse(dateLayout, req.EnrolledDate)

	target, err := s.findSection(ctx, req.SectionID, "Section not found")
	if err != nil {
		return nil, err
	}
	return s.conflicts(ctx, studentID, target, date)
}

func (s *EnrollmentService) conflicts(ctx context.Context, studentID string, target *models.CourseSectionDetail, date time.Time) (*dto.ValidationResponse, error) {
	existing, err := s.enrollments.ListByStudentAndSemester(ctx, studentID, target.SemesterID)
	if err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to load enrollments")
	}
	index, err := s.sectionIndex(ctx, target.SemesterID)
	if err != nil {
		return nil, err
	}
	targetBlock, err := scheduler.ParseBlock(target.DayOfWeek, target.StartTime, target.EndTime)
	if err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "section has an invalid time range")
	}

	messages := make([]string, 0)
	for _, enrollment := range existing {
		if !sameDate(enrollment.EnrolledDate, date) {
			continue
		}
		booked, ok := index[enrollment.CourseSectionID]
		if !ok {
			continue
		}
		block, err := scheduler.ParseBlock(booked.DayOfWeek, booked.StartTime, booked.EndTime)
		if err != nil || !scheduler.Overlaps(block, targetBlock) {
			continue
		}
		messages = append(messages, fmt.Sprintf("Time conflict with %s (%s %s-%s)", booked.CourseName, booked.DayOfWeek, booked.StartTime, booked.EndTime))
	}
	return &dto.ValidationResponse{OK: len(messages) == 0, Errors: messages}, nil
}

// ValidatePrerequisite reports whether the student passed the course's prerequisite.
func (s *EnrollmentService) ValidatePrerequisite(ctx context.Context, studentID string, req dto.PrerequisiteRequest) (*dto.ValidationResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrValidation, "invalid prerequisite payload")
	}
	course, err := s.courses.FindByID(ctx, req.CourseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Course not found")
		}
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to load course")
	}
	if course.PrerequisiteID == nil {
		return &dto.ValidationResponse{OK: true, Errors: []string{}}, nil
	}

	history, err := s.histories.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to load course history")
	}
	ok := lo.ContainsBy(history, func(h models.StudentCourseHistory) bool {
		return h.CourseID == *course.PrerequisiteID && h.Passed()
	})
	if !ok {
		return &dto.ValidationResponse{OK: false, Errors: []string{"Prerequisite not completed"}}, nil
	}
	return &dto.ValidationResponse{OK: true, Errors: []string{}}, nil
}

// Enroll books the student into a section on a date after checking every rule in order.
func (s *EnrollmentService) Enroll(ctx context.Context, studentID string, req dto.EnrollRequest) (*models.StudentSectionEnrollment, error) {
	enrollment, err := s.enroll(ctx, studentID, req)
	if err != nil {
		result := "error"
		if errors.Is(err, appErrors.ErrEnrollmentRejected) {
			result = "rejected"
		}
		s.metrics.RecordEnrollment(result)
		return nil, err
	}
	s.metrics.RecordEnrollment("accepted")
	s.logger.Info("student enrolled",
		zap.String("student_id", studentID),
		zap.String("section_id", req.SectionID),
		zap.String("enrolled_date", req.EnrolledDate),
	)
	return enrollment, nil
}

func (s *EnrollmentService) enroll(ctx context.Context, studentID string, req dto.EnrollRequest) (enrollment *models.StudentSectionEnrollment, err error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrValidation, "invalid enrollment payload")
	}
	date, _ := time.Parse(dateLayout, req.EnrolledDate)

	section, err := s.findSection(ctx, req.SectionID, "Course section not found")
	if err != nil {
		return nil, err
	}
	if _, err := s.findStudent(ctx, studentID); err != nil {
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

	if err = s.enrollments.LockForBooking(ctx, tx, studentID, section.ID); err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to lock course section")
	}

	exists, err := s.enrollments.ExistsForSection(ctx, tx, studentID, section.ID)
	if err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to check enrollment")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrEnrollmentRejected, "Already enrolled in this section")
	}

	booked, err := s.enrollments.CountBySectionAndDate(ctx, tx, section.ID, date)
	if err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to count enrollments")
	}
	if booked >= s.seatLimit(*section) {
		return nil, appErrors.Clone(appErrors.ErrEnrollmentRejected, "Room is full for this section & date "+req.EnrolledDate)
	}

	planned, err := s.enrollments.CountByStudentAndSemester(ctx, tx, studentID, section.SemesterID)
	if err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to count enrollments")
	}
	if planned >= MaxCoursesPerSemester {
		return nil, appErrors.Clone(appErrors.ErrEnrollmentRejected, fmt.Sprintf("Maximum of %d courses per semester reached.", MaxCoursesPerSemester))
	}

	// The student row is locked, so no booking of theirs can commit between this read and the insert.
	verdict, err := s.conflicts(ctx, studentID, section, date)
	if err != nil {
		return nil, err
	}
	if !verdict.OK {
		return nil, appErrors.Clone(appErrors.ErrEnrollmentRejected, verdict.Errors[0]).WithDetails(verdict.Errors...)
	}

	enrollment = &models.StudentSectionEnrollment{
		StudentID:       studentID,
		CourseSectionID: section.ID,
		SemesterID:      section.SemesterID,
		EnrolledDate:    date,
	}
	if err = s.enrollments.Create(ctx, tx, enrollment); err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to create enrollment")
	}
	if err = tx.Commit(); err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to commit enrollment")
	}
	return enrollment, nil
}

// seatLimit is the classroom's capacity, or the configured default when the room has none.
func (s *EnrollmentService) seatLimit(section models.CourseSectionDetail) int {
	if section.RoomCapacity > 0 {
		return section.RoomCapacity
	}
	return s.cfg.SectionCapacity
}

// EligibleDates lists semester dates on the section's weekday that still have free seats.
func (s *EnrollmentService) EligibleDates(ctx context.Context, sectionID string) ([]string, error) {
	section, err := s.findSection(ctx, sectionID, "Section not found")
	if err != nil {
		return nil, err
	}
	semester, err := s.semesters.FindByID(ctx, section.SemesterID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Semester not found")
		}
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to load semester")
	}
	if semester.StartDate == nil || semester.EndDate == nil {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, scheduler.ErrMissingTermDates.Error())
	}
	weekday, ok := scheduler.ParseWeekday(section.DayOfWeek)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrInternal, "section has an unknown weekday")
	}

	start := truncateDay(*semester.StartDate)
	end := truncateDay(*semester.EndDate)
	dates := make([]string, 0)
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		if day.Weekday() != weekday {
			continue
		}
		count, err := s.enrollments.CountBySectionAndDate(ctx, nil, section.ID, day)
		if err != nil {
			return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to count enrollments")
		}
		if count < s.seatLimit(*section) {
			dates = append(dates, day.Format(dateLayout))
		}
	}
	return dates, nil
}

// History returns the student's completed courses, oldest semester first.
func (s *EnrollmentService) History(ctx context.Context, studentID string) ([]models.AcademicHistoryEntry, error) {
	entries, err := s.histories.ListAcademicHistory(ctx, studentID)
	if err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to load academic history")
	}
	if entries == nil {
		entries = []models.AcademicHistoryEntry{}
	}
	return entries, nil
}

// CurrentEnrollments lists the student's bookings in the active semester by weekday and start time.
func (s *EnrollmentService) CurrentEnrollments(ctx context.Context, studentID string) ([]dto.EnrollmentView, error) {
	semester, err := s.activeSemester(ctx)
	if err != nil {
		return nil, err
	}
	enrollments, err := s.enrollments.ListByStudentAndSemester(ctx, studentID, semester.ID)
	if err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to load enrollments")
	}
	index, err := s.sectionIndex(ctx, semester.ID)
	if err != nil {
		return nil, err
	}

	views := make([]dto.EnrollmentView, 0, len(enrollments))
	for _, enrollment := range enrollments {
		section, ok := index[enrollment.CourseSectionID]
		if !ok {
			continue
		}
		views = append(views, dto.EnrollmentView{
			ID:           enrollment.ID,
			SectionID:    section.ID,
			DayOfWeek:    section.DayOfWeek,
			StartTime:    section.StartTime,
			EndTime:      section.EndTime,
			CourseName:   section.CourseName,
			TeacherName:  section.TeacherName(),
			RoomName:     section.RoomName,
			EnrolledDate: enrollment.EnrolledDate.Format(dateLayout),
		})
	}
	sort.SliceStable(views, func(i, j int) bool {
		di, dj := dayRank(views[i].DayOfWeek), dayRank(views[j].DayOfWeek)
		if di != dj {
			return di < dj
		}
		return views[i].StartTime < views[j].StartTime
	})
	return views, nil
}

// Progress summarises credits, pass/fail GPA and the semester booking cap.
func (s *EnrollmentService) Progress(ctx context.Context, studentID string) (*dto.StudentProgress, error) {
	student, err := s.findStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	history, err := s.histories.ListAcademicHistory(ctx, studentID)
	if err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to load academic history")
	}
	enrollments, err := s.enrollments.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to load enrollments")
	}

	isPassed := func(e models.AcademicHistoryEntry) bool {
		return (models.StudentCourseHistory{Status: models.HistoryStatus(e.Status)}).Passed()
	}
	isGraded := func(e models.AcademicHistoryEntry) bool {
		record := models.StudentCourseHistory{Status: models.HistoryStatus(e.Status)}
		return record.Passed() || record.Failed()
	}

	passed := lo.Filter(history, func(e models.AcademicHistoryEntry, _ int) bool { return isPassed(e) })
	graded := lo.Filter(history, func(e models.AcademicHistoryEntry, _ int) bool { return isGraded(e) })
	earned := lo.SumBy(passed, func(e models.AcademicHistoryEntry) int { return e.Credits })

	var gpa float64
	if len(graded) > 0 {
		gpa = 4.0 * float64(len(passed)) / float64(len(graded))
	}

	return &dto.StudentProgress{
		StudentID:            student.ID,
		StudentName:          student.FullName(),
		Email:                student.Email,
		GradeLevel:           student.GradeLevel,
		GPA:                  gpa,
		CreditsEarned:        earned,
		CreditsRequired:      CreditsRequired,
		CreditsRemaining:     int(math.Max(0, float64(CreditsRequired-earned))),
		CompletionPercentage: float64(earned) / CreditsRequired * 100,
		CoreCompleted:        lo.CountBy(passed, func(e models.AcademicHistoryEntry) bool { return e.CourseType == string(models.CourseTypeCore) }),
		ElectiveCompleted:    lo.CountBy(passed, func(e models.AcademicHistoryEntry) bool { return e.CourseType == string(models.CourseTypeElective) }),
		PlannedThisSemester:  len(enrollments),
		MaxCoursesReached:    len(enrollments) >= MaxCoursesPerSemester,
	}, nil
}

func (s *EnrollmentService) sectionIndex(ctx context.Context, semesterIDs ...string) (map[string]models.CourseSectionDetail, error) {
	index := make(map[string]models.CourseSectionDetail)
	for _, semesterID := range semesterIDs {
		details, err := s.sections.ListDetailsBySemester(ctx, semesterID)
		if err != nil {
			return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to load course sections")
		}
		for _, detail := range details {
			index[detail.ID] = detail
		}
	}
	return index, nil
}

func (s *EnrollmentService) findStudent(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.students.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Student not found")
		}
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to load student")
	}
	return student, nil
}

func (s *EnrollmentService) findSection(ctx context.Context, id, notFound string) (*models.CourseSectionDetail, error) {
	section, err := s.sections.FindDetailByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, notFound)
		}
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to load course section")
	}
	return section, nil
}

func (s *EnrollmentService) activeSemester(ctx context.Context) (*models.Semester, error) {
	semester, err := s.semesters.FindActive(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, scheduler.ErrNoActiveTerm.Error())
		}
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to load active semester")
	}
	return semester, nil
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
