package scheduler

import (
	"fmt"
	"strings"
	"time"
)

// Cell is one (weekday, start hour) position of the weekly grid.
type Cell struct {
	Day  time.Weekday
	Hour int
}

func (c Cell) String() string {
	return fmt.Sprintf("%s %s", DayName(c.Day), FormatHour(c.Hour))
}

var weekdayNames = map[string]time.Weekday{
	"MONDAY":    time.Monday,
	"TUESDAY":   time.Tuesday,
	"WEDNESDAY": time.Wednesday,
	"THURSDAY":  time.Thursday,
	"FRIDAY":    time.Friday,
	"SATURDAY":  time.Saturday,
	"SUNDAY":    time.Sunday,
}

// DayName renders a weekday the way sections are stored, e.g. "MONDAY".
func DayName(day time.Weekday) string {
	return strings.ToUpper(day.String())
}

// ParseWeekday accepts names like "monday" or "MONDAY".
func ParseWeekday(name string) (time.Weekday, bool) {
	day, ok := weekdayNames[strings.ToUpper(strings.TrimSpace(name))]
	return day, ok
}

// FormatHour renders an hour as "HH:00".
func FormatHour(hour int) string {
	return fmt.Sprintf("%02d:00", hour)
}

// weekdayOrder sorts Monday first and Sunday last.
func weekdayOrder(day time.Weekday) int {
	if day == time.Sunday {
		return 7
	}
	return int(day)
}
