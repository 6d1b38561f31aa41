package models

import "time"

// CourseSection is one placed weekly session of a course.
type CourseSection struct {
	ID          string    `db:"id" json:"id"`
	CourseID    string    `db:"course_id" json:"course_id"`
	TeacherID   string    `db:"teacher_id" json:"teacher_id"`
	ClassroomID string    `db:"classroom_id" json:"classroom_id"`
	SemesterID  string    `db:"semester_id" json:"semester_id"`
	DayOfWeek   string    `db:"day_of_week" json:"day_of_week"`
	StartTime   string    `db:"start_time" json:"start_time"`
	EndTime     string    `db:"end_time" json:"end_time"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// CourseSectionDetail joins a section with the names needed for display.
type CourseSectionDetail struct {
	CourseSection
	CourseCode       string  `db:"course_code" json:"course_code"`
	CourseName       string  `db:"course_name" json:"course_name"`
	CourseType       string  `db:"course_type" json:"course_type"`
	Credits          int     `db:"credits" json:"credits"`
	GradeLevelMin    int     `db:"grade_level_min" json:"grade_level_min"`
	GradeLevelMax    int     `db:"grade_level_max" json:"grade_level_max"`
	PrerequisiteID   *string `db:"prerequisite_id" json:"prerequisite_id,omitempty"`
	TeacherFirstName string  `db:"teacher_first_name" json:"-"`
	TeacherLastName  string  `db:"teacher_last_name" json:"-"`
	RoomName         string  `db:"room_name" json:"room_name"`
	RoomCapacity     int     `db:"room_capacity" json:"room_capacity"`
}

// TeacherName joins the teacher's first and last name.
func (d CourseSectionDetail) TeacherName() string {
	return joinName(d.TeacherFirstName, d.TeacherLastName)
}
