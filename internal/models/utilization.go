package models

import "time"

// ResourceUsage is the committed hours for one teacher or room.
type ResourceUsage struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Used    float64 `json:"used"`
	Max     float64 `json:"max"`
	Percent float64 `json:"percent"`
}

// DayUsage is the committed hours for one weekday.
type DayUsage struct {
	Day     string  `json:"day"`
	Used    float64 `json:"used"`
	Percent float64 `json:"percent"`
}

// TimeSlotUsage is the committed hours starting at one slot.
type TimeSlotUsage struct {
	Slot    string  `json:"slot"`
	Used    float64 `json:"used"`
	Percent float64 `json:"percent"`
}

// UtilizationSummary aggregates the usage lists.
type UtilizationSummary struct {
	AvgTeacherUtil  float64 `json:"avg_teacher_util"`
	AvgRoomUtil     float64 `json:"avg_room_util"`
	AvgDayLoad      float64 `json:"avg_day_load"`
	AvgSlotLoad     float64 `json:"avg_slot_load"`
	MostLoadedDay   string  `json:"most_loaded_day"`
	LeastLoadedDay  string  `json:"least_loaded_day"`
	MostLoadedSlot  string  `json:"most_loaded_slot"`
	LeastLoadedSlot string  `json:"least_loaded_slot"`
}

// Utilization reports how the current timetable consumes teachers, rooms and the week grid.
type Utilization struct {
	Summary       UtilizationSummary `json:"summary"`
	TeacherUsage  []ResourceUsage    `json:"teacher_usage"`
	RoomUsage     []ResourceUsage    `json:"room_usage"`
	DayUsage      []DayUsage         `json:"day_usage"`
	TimeSlotUsage []TimeSlotUsage    `json:"time_slot_usage"`
	GeneratedAt   time.Time          `json:"generated_at"`
}
