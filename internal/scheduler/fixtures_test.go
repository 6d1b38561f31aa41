package scheduler

import (
	"fmt"
	"time"

	"github.com/noah-isme/course-scheduler-api/internal/models"
)

func strPtr(v string) *string { return &v }

func semesterFixture(days int) *models.Semester {
	start := time.Date(2025, time.January, 6, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, days)
	return &models.Semester{ID: "sem-1", Name: "Spring", OrderInYear: 1, StartDate: &start, EndDate: &end, IsActive: true}
}

type fixture struct {
	input Input
}

func newFixture() *fixture {
	return &fixture{input: Input{Semester: semesterFixture(42)}}
}

func (f *fixture) specialization(id, roomType string) *fixture {
	spec := models.Specialization{ID: id, Name: id}
	if roomType != "" {
		spec.RoomTypeID = strPtr(roomType)
	}
	f.input.Specializations = append(f.input.Specializations, spec)
	return f
}

func (f *fixture) teachers(spec string, n int) *fixture {
	for i := 0; i < n; i++ {
		f.input.Teachers = append(f.input.Teachers, models.Teacher{
			ID:               fmt.Sprintf("%s-teacher-%d", spec, i),
			FirstName:        "T",
			LastName:         fmt.Sprint(i),
			SpecializationID: strPtr(spec),
		})
	}
	return f
}

func (f *fixture) rooms(roomType string, n int) *fixture {
	for i := 0; i < n; i++ {
		f.input.Rooms = append(f.input.Rooms, models.Classroom{
			ID:         fmt.Sprintf("%s-room-%d", roomType, i),
			Name:       fmt.Sprintf("Room %s %d", roomType, i),
			Capacity:   30,
			RoomTypeID: strPtr(roomType),
		})
	}
	return f
}

func (f *fixture) courses(spec string, n, hours int) *fixture {
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("%s-course-%d", spec, i)
		f.input.Courses = append(f.input.Courses, models.Course{
			ID:               id,
			Code:             id,
			Name:             id,
			HoursPerWeek:     hours,
			SpecializationID: strPtr(spec),
			GradeLevelMin:    9,
			GradeLevelMax:    12,
		})
	}
	return f
}
