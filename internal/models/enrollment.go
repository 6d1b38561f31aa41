package models

import "time"

// StudentSectionEnrollment books a student into a section on a given date.
type StudentSectionEnrollment struct {
	ID              string    `db:"id" json:"id"`
	StudentID       string    `db:"student_id" json:"student_id"`
	CourseSectionID string    `db:"course_section_id" json:"course_section_id"`
	SemesterID      string    `db:"semester_id" json:"semester_id"`
	EnrolledDate    time.Time `db:"enrolled_date" json:"enrolled_date"`
}

// AcademicHistoryEntry is a history row joined with course and semester names.
type AcademicHistoryEntry struct {
	SemesterName  string     `db:"semester_name" json:"semester_name"`
	SemesterStart *time.Time `db:"semester_start" json:"-"`
	CourseName    string     `db:"course_name" json:"course_name"`
	CourseType    string     `db:"course_type" json:"course_type"`
	Credits       int        `db:"credits" json:"credits"`
	Status        string     `db:"status" json:"status"`
}
