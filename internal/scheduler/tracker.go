package scheduler

import (
	"sort"
	"time"
)

type roomSlot struct {
	room string
	day  time.Weekday
	hour int
}

// AvailabilityTracker records teacher and room occupancy at hour granularity.
type AvailabilityTracker struct {
	maxConsecutive int

	teacherHours map[string]map[time.Weekday]map[int]bool
	daily        map[string]map[time.Weekday]int
	weekly       map[string]int
	roomBusy     map[roomSlot]bool
}

func NewAvailabilityTracker(maxConsecutive int) *AvailabilityTracker {
	return &AvailabilityTracker{
		maxConsecutive: maxConsecutive,
		teacherHours:   make(map[string]map[time.Weekday]map[int]bool),
		daily:          make(map[string]map[time.Weekday]int),
		weekly:         make(map[string]int),
		roomBusy:       make(map[roomSlot]bool),
	}
}

func (t *AvailabilityTracker) IsTeacherBusy(teacherID string, day time.Weekday, hour int) bool {
	return t.teacherHours[teacherID][day][hour]
}

func (t *AvailabilityTracker) IsRoomBusy(roomID string, day time.Weekday, hour int) bool {
	return t.roomBusy[roomSlot{room: roomID, day: day, hour: hour}]
}

func (t *AvailabilityTracker) DailyHours(teacherID string, day time.Weekday) int {
	return t.daily[teacherID][day]
}

func (t *AvailabilityTracker) WeeklyHours(teacherID string) int {
	return t.weekly[teacherID]
}

// WouldExceedConsecutive merges the teacher's occupied hours on day with the
// proposed block and reports whether the longest contiguous run passes the cap.
func (t *AvailabilityTracker) WouldExceedConsecutive(teacherID string, day time.Weekday, start, duration int) bool {
	occupied := t.teacherHours[teacherID][day]
	hours := make([]int, 0, len(occupied)+duration)
	for hour := range occupied {
		hours = append(hours, hour)
	}
	for i := 0; i < duration; i++ {
		if !occupied[start+i] {
			hours = append(hours, start+i)
		}
	}
	return longestRun(hours) > t.maxConsecutive
}

// MarkPlaced books one hour. Callers invoke it once per hour of a block.
func (t *AvailabilityTracker) MarkPlaced(teacherID, roomID string, day time.Weekday, hour int) {
	if t.teacherHours[teacherID] == nil {
		t.teacherHours[teacherID] = make(map[time.Weekday]map[int]bool)
		t.daily[teacherID] = make(map[time.Weekday]int)
	}
	if t.teacherHours[teacherID][day] == nil {
		t.teacherHours[teacherID][day] = make(map[int]bool)
	}
	t.teacherHours[teacherID][day][hour] = true
	t.daily[teacherID][day]++
	t.weekly[teacherID]++
	t.roomBusy[roomSlot{room: roomID, day: day, hour: hour}] = true
}

func longestRun(hours []int) int {
	if len(hours) == 0 {
		return 0
	}
	sort.Ints(hours)
	longest, current := 1, 1
	for i := 1; i < len(hours); i++ {
		if hours[i] == hours[i-1]+1 {
			current++
			if current > longest {
				longest = current
			}
		} else {
			current = 1
		}
	}
	return longest
}
