package export

import "time"

// ScheduleRow is one timetable line in an export.
type ScheduleRow struct {
	Day        string `csv:"day"`
	StartTime  string `csv:"start_time"`
	EndTime    string `csv:"end_time"`
	CourseCode string `csv:"course_code"`
	CourseName string `csv:"course_name"`
	Teacher    string `csv:"teacher"`
	Room       string `csv:"room"`
}

// Document is a titled set of rows ready to render.
type Document struct {
	Title       string
	GeneratedAt time.Time
	Rows        []ScheduleRow
}

var pdfHeaders = []string{"Day", "Start", "End", "Code", "Course", "Teacher", "Room"}

func (r ScheduleRow) cells() []string {
	return []string{r.Day, r.StartTime, r.EndTime, r.CourseCode, r.CourseName, r.Teacher, r.Room}
}
