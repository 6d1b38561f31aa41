package dto

// EnrollRequest books the student into a section on one date.
type EnrollRequest struct {
	SectionID    string `json:"section_id" validate:"required"`
	EnrolledDate string `json:"enrolled_date" validate:"required,datetime=2006-01-02"`
}

// ConflictRequest asks whether a booking would clash with existing ones.
type ConflictRequest struct {
	SectionID    string `json:"section_id" validate:"required"`
	EnrolledDate string `json:"enrolled_date" validate:"required,datetime=2006-01-02"`
}

// PrerequisiteRequest asks whether a student may take a course.
type PrerequisiteRequest struct {
	CourseID string `json:"course_id" validate:"required"`
}

// ValidationResponse carries a verdict and the reasons for a rejection.
type ValidationResponse struct {
	OK     bool     `json:"ok"`
	Errors []string `json:"errors"`
}

// EligibleSection is a section the student may still book.
type EligibleSection struct {
	ID          string `json:"id"`
	CourseID    string `json:"course_id"`
	CourseName  string `json:"course_name"`
	TeacherName string `json:"teacher_name"`
	RoomName    string `json:"room_name"`
	DayOfWeek   string `json:"day_of_week"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Capacity    int    `json:"capacity"`
	Enrolled    int    `json:"enrolled"`
	CourseType  string `json:"course_type"`
}

// EnrollmentView is a current-semester booking.
type EnrollmentView struct {
	ID           string `json:"id"`
	SectionID    string `json:"section_id"`
	DayOfWeek    string `json:"day_of_week"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
	CourseName   string `json:"course_name"`
	TeacherName  string `json:"teacher_name"`
	RoomName     string `json:"room_name"`
	EnrolledDate string `json:"enrolled_date"`
}

// StudentProgress summarises credits and standing.
type StudentProgress struct {
	StudentID            string  `json:"student_id"`
	StudentName          string  `json:"student_name"`
	Email                string  `json:"email"`
	GradeLevel           int     `json:"grade_level"`
	GPA                  float64 `json:"gpa"`
	CreditsEarned        int     `json:"credits_earned"`
	CreditsRequired      int     `json:"credits_required"`
	CreditsRemaining     int     `json:"credits_remaining"`
	CompletionPercentage float64 `json:"completion_percentage"`
	CoreCompleted        int     `json:"core_courses_completed"`
	ElectiveCompleted    int     `json:"elective_courses_completed"`
	PlannedThisSemester  int     `json:"planned_this_semester"`
	MaxCoursesReached    bool    `json:"max_courses_reached"`
}
