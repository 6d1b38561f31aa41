package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-scheduler-api/internal/models"
)

const enrollmentColumns = "id, student_id, course_section_id, semester_id, enrolled_date"

// EnrollmentRepository manages student section bookings.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs an EnrollmentRepository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

func (r *EnrollmentRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// DeleteBySemester removes every enrollment of the semester.
func (r *EnrollmentRepository) DeleteBySemester(ctx context.Context, exec sqlx.ExtContext, semesterID string) (int64, error) {
	result, err := r.exec(exec).ExecContext(ctx, `DELETE FROM student_section_enrollments WHERE semester_id = $1`, semesterID)
	if err != nil {
		return 0, fmt.Errorf("delete enrollments: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete enrollments rows: %w", err)
	}
	return affected, nil
}

// ListByStudent returns all of a student's enrollments ordered by date.
func (r *EnrollmentRepository) ListByStudent(ctx context.Context, studentID string) ([]models.StudentSectionEnrollment, error) {
	query := fmt.Sprintf("SELECT %s FROM student_section_enrollments WHERE student_id = $1 ORDER BY enrolled_date", enrollmentColumns)
	var enrollments []models.StudentSectionEnrollment
	if err := r.db.SelectContext(ctx, &enrollments, query, studentID); err != nil {
		return nil, fmt.Errorf("list student enrollments: %w", err)
	}
	return enrollments, nil
}

// ListByStudentAndSemester returns a student's enrollments within one semester.
func (r *EnrollmentRepository) ListByStudentAndSemester(ctx context.Context, studentID, semesterID string) ([]models.StudentSectionEnrollment, error) {
	query := fmt.Sprintf("SELECT %s FROM student_section_enrollments WHERE student_id = $1 AND semester_id = $2 ORDER BY enrolled_date", enrollmentColumns)
	var enrollments []models.StudentSectionEnrollment
	if err := r.db.SelectContext(ctx, &enrollments, query, studentID, semesterID); err != nil {
		return nil, fmt.Errorf("list semester enrollments: %w", err)
	}
	return enrollments, nil
}

// LockForBooking row-locks the section and the student for the rest of exec's
// transaction, so seat counts and the semester cap cannot change underneath a booking.
func (r *EnrollmentRepository) LockForBooking(ctx context.Context, exec sqlx.ExtContext, studentID, sectionID string) error {
	const query = `
SELECT cs.id FROM course_sections cs, students s
WHERE cs.id = $1 AND s.id = $2
FOR UPDATE`
	var locked string
	if err := sqlx.GetContext(ctx, r.exec(exec), &locked, query, sectionID, studentID); err != nil {
		return fmt.Errorf("lock section %s for student %s: %w", sectionID, studentID, err)
	}
	return nil
}

// ExistsForSection reports whether the student already booked the section on any date.
func (r *EnrollmentRepository) ExistsForSection(ctx context.Context, exec sqlx.ExtContext, studentID, sectionID string) (bool, error) {
	const query = `SELECT 1 FROM student_section_enrollments WHERE student_id = $1 AND course_section_id = $2 LIMIT 1`
	var exists int
	if err := sqlx.GetContext(ctx, r.exec(exec), &exists, query, studentID, sectionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check enrollment: %w", err)
	}
	return true, nil
}

// CountBySectionAndDate counts bookings of the section on the date.
func (r *EnrollmentRepository) CountBySectionAndDate(ctx context.Context, exec sqlx.ExtContext, sectionID string, date time.Time) (int, error) {
	const query = `SELECT COUNT(*) FROM student_section_enrollments WHERE course_section_id = $1 AND enrolled_date = $2`
	var count int
	if err := sqlx.GetContext(ctx, r.exec(exec), &count, query, sectionID, date); err != nil {
		return 0, fmt.Errorf("count section enrollments: %w", err)
	}
	return count, nil
}

// CountByStudentAndSemester counts a student's bookings in a semester.
func (r *EnrollmentRepository) CountByStudentAndSemester(ctx context.Context, exec sqlx.ExtContext, studentID, semesterID string) (int, error) {
	const query = `SELECT COUNT(*) FROM student_section_enrollments WHERE student_id = $1 AND semester_id = $2`
	var count int
	if err := sqlx.GetContext(ctx, r.exec(exec), &count, query, studentID, semesterID); err != nil {
		return 0, fmt.Errorf("count student enrollments: %w", err)
	}
	return count, nil
}

// CountBySection counts every booking of the section across dates.
func (r *EnrollmentRepository) CountBySection(ctx context.Context, sectionID string) (int, error) {
	const query = `SELECT COUNT(*) FROM student_section_enrollments WHERE course_section_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, sectionID); err != nil {
		return 0, fmt.Errorf("count section enrollments: %w", err)
	}
	return count, nil
}

// Create inserts an enrollment.
func (r *EnrollmentRepository) Create(ctx context.Context, exec sqlx.ExtContext, enrollment *models.StudentSectionEnrollment) error {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	const query = `
INSERT INTO student_section_enrollments (id, student_id, course_section_id, semester_id, enrolled_date)
VALUES (:id, :student_id, :course_section_id, :semester_id, :enrolled_date)`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, enrollment); err != nil {
		return fmt.Errorf("create enrollment: %w", err)
	}
	return nil
}
