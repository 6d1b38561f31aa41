package scheduler

import (
	"sort"

	"github.com/samber/lo"

	"github.com/noah-isme/course-scheduler-api/internal/models"
)

// ResourcePool indexes teachers by specialization and rooms by room type.
type ResourcePool struct {
	teachers map[string][]models.Teacher
	rooms    map[string][]models.Classroom
}

// CoursePool is the set of resources compatible with one course.
type CoursePool struct {
	Teachers []models.Teacher
	Rooms    []models.Classroom
}

// NewResourcePool groups the records. Teachers without a specialization and rooms
// without a room type are left out. Groups are ordered by id.
func NewResourcePool(teachers []models.Teacher, rooms []models.Classroom) *ResourcePool {
	teacherGroups := lo.GroupBy(
		lo.Filter(teachers, func(t models.Teacher, _ int) bool { return t.SpecializationID != nil }),
		func(t models.Teacher) string { return *t.SpecializationID },
	)
	for _, group := range teacherGroups {
		sort.SliceStable(group, func(i, j int) bool { return group[i].ID < group[j].ID })
	}

	roomGroups := lo.GroupBy(
		lo.Filter(rooms, func(r models.Classroom, _ int) bool { return r.RoomTypeID != nil }),
		func(r models.Classroom) string { return *r.RoomTypeID },
	)
	for _, group := range roomGroups {
		sort.SliceStable(group, func(i, j int) bool { return group[i].ID < group[j].ID })
	}

	return &ResourcePool{teachers: teacherGroups, rooms: roomGroups}
}

func (p *ResourcePool) Teachers(specializationID string) []models.Teacher {
	return p.teachers[specializationID]
}

func (p *ResourcePool) Rooms(roomTypeID string) []models.Classroom {
	return p.rooms[roomTypeID]
}

// ForCourse resolves the course's specialization to its teacher and room pools.
// When either side is empty it returns ok=false with the reason.
func (p *ResourcePool) ForCourse(course models.Course, specs map[string]models.Specialization) (CoursePool, WarningCode, bool) {
	if course.SpecializationID == nil {
		return CoursePool{}, WarningNoSpecialization, false
	}
	spec, found := specs[*course.SpecializationID]
	if !found {
		return CoursePool{}, WarningNoSpecialization, false
	}

	pool := CoursePool{Teachers: p.Teachers(spec.ID)}
	if spec.RoomTypeID != nil {
		pool.Rooms = p.Rooms(*spec.RoomTypeID)
	}
	if len(pool.Teachers) == 0 || len(pool.Rooms) == 0 {
		return CoursePool{}, WarningNoResourcePool, false
	}
	return pool, "", true
}
