package models

import (
	"strings"
	"time"
)

// HistoryStatus is the outcome recorded for a completed course.
type HistoryStatus string

const (
	HistoryPassed HistoryStatus = "passed"
	HistoryFailed HistoryStatus = "failed"
)

// Student represents an enrolled learner.
type Student struct {
	ID                     string    `db:"id" json:"id"`
	FirstName              string    `db:"first_name" json:"first_name"`
	LastName               string    `db:"last_name" json:"last_name"`
	Email                  string    `db:"email" json:"email"`
	PasswordHash           *string   `db:"password_hash" json:"-"`
	GradeLevel             int       `db:"grade_level" json:"grade_level"`
	EnrollmentYear         int       `db:"enrollment_year" json:"enrollment_year"`
	ExpectedGraduationYear int       `db:"expected_graduation_year" json:"expected_graduation_year"`
	CreatedAt              time.Time `db:"created_at" json:"created_at"`
	UpdatedAt              time.Time `db:"updated_at" json:"updated_at"`
}

// FullName joins first and last name.
func (s Student) FullName() string {
	return joinName(s.FirstName, s.LastName)
}

// StudentFilter narrows student listings.
type StudentFilter struct {
	GradeLevel *int
	Search     string
	Page       int
	PageSize   int
}

// StudentCourseHistory records a student's outcome for a course.
type StudentCourseHistory struct {
	ID         string        `db:"id" json:"id"`
	StudentID  string        `db:"student_id" json:"student_id"`
	CourseID   string        `db:"course_id" json:"course_id"`
	SemesterID string        `db:"semester_id" json:"semester_id"`
	Status     HistoryStatus `db:"status" json:"status"`
}

// Passed reports whether the record is a pass, ignoring case.
func (h StudentCourseHistory) Passed() bool {
	return strings.EqualFold(string(h.Status), string(HistoryPassed))
}

// Failed reports whether the record is a fail, ignoring case.
func (h StudentCourseHistory) Failed() bool {
	return strings.EqualFold(string(h.Status), string(HistoryFailed))
}

func joinName(first, last string) string {
	return strings.TrimSpace(first + " " + last)
}
