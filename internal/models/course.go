package models

import "time"

// CourseType distinguishes mandatory from optional courses.
type CourseType string

const (
	CourseTypeCore     CourseType = "CORE"
	CourseTypeElective CourseType = "ELECTIVE"
)

// Course is an offering that needs weekly contact hours in a term.
type Course struct {
	ID               string     `db:"id" json:"id"`
	Code             string     `db:"code" json:"code"`
	Name             string     `db:"name" json:"name"`
	Credits          int        `db:"credits" json:"credits"`
	HoursPerWeek     int        `db:"hours_per_week" json:"hours_per_week"`
	PrerequisiteID   *string    `db:"prerequisite_id" json:"prerequisite_id,omitempty"`
	SpecializationID *string    `db:"specialization_id" json:"specialization_id,omitempty"`
	SemesterOrder    int        `db:"semester_order" json:"semester_order"`
	GradeLevelMin    int        `db:"grade_level_min" json:"grade_level_min"`
	GradeLevelMax    int        `db:"grade_level_max" json:"grade_level_max"`
	CourseType       CourseType `db:"course_type" json:"course_type"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}

// CourseFilter captures supported filters for listing courses.
type CourseFilter struct {
	SemesterOrder *int
	Search        string
}
