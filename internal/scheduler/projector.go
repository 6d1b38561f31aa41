package scheduler

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/noah-isme/course-scheduler-api/internal/models"
)

// ScheduleEvent is the externally visible form of a placed session.
type ScheduleEvent struct {
	ID           string  `json:"id"`
	DayOfWeek    string  `json:"day_of_week"`
	StartTime    string  `json:"start_time"`
	EndTime      string  `json:"end_time"`
	CourseCode   string  `json:"course_code"`
	CourseName   string  `json:"course_name"`
	TeacherName  string  `json:"teacher_name"`
	RoomName     string  `json:"room_name"`
	EnrolledDate *string `json:"enrolled_date,omitempty"`
}

// Projector maps sections to events through id lookups.
type Projector struct {
	courses  map[string]models.Course
	teachers map[string]models.Teacher
	rooms    map[string]models.Classroom
}

func NewProjector(courses []models.Course, teachers []models.Teacher, rooms []models.Classroom) *Projector {
	return &Projector{
		courses:  lo.KeyBy(courses, func(c models.Course) string { return c.ID }),
		teachers: lo.KeyBy(teachers, func(t models.Teacher) string { return t.ID }),
		rooms:    lo.KeyBy(rooms, func(r models.Classroom) string { return r.ID }),
	}
}

func (p *Projector) Project(session Session, id string) (ScheduleEvent, error) {
	return p.ProjectSection(session.Section(id))
}

func (p *Projector) ProjectSection(section models.CourseSection) (ScheduleEvent, error) {
	course, ok := p.courses[section.CourseID]
	if !ok {
		return ScheduleEvent{}, fmt.Errorf("%w: course %s", ErrIncompleteReference, section.CourseID)
	}
	teacher, ok := p.teachers[section.TeacherID]
	if !ok {
		return ScheduleEvent{}, fmt.Errorf("%w: teacher %s", ErrIncompleteReference, section.TeacherID)
	}
	room, ok := p.rooms[section.ClassroomID]
	if !ok {
		return ScheduleEvent{}, fmt.Errorf("%w: classroom %s", ErrIncompleteReference, section.ClassroomID)
	}
	return ScheduleEvent{
		ID:          section.ID,
		DayOfWeek:   section.DayOfWeek,
		StartTime:   section.StartTime,
		EndTime:     section.EndTime,
		CourseCode:  course.Code,
		CourseName:  course.Name,
		TeacherName: teacher.FullName(),
		RoomName:    room.Name,
	}, nil
}

// ProjectAll projects sections in order and stops at the first broken reference.
func (p *Projector) ProjectAll(sections []models.CourseSection) ([]ScheduleEvent, error) {
	events := make([]ScheduleEvent, 0, len(sections))
	for _, section := range sections {
		event, err := p.ProjectSection(section)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, nil
}
