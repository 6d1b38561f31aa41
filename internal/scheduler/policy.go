package scheduler

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultRoomCapacity        = 10
	DefaultMaxDailyHours       = 4
	DefaultMaxConsecutiveHours = 2
)

// Policy holds the placement constants for a generation run.
type Policy struct {
	RoomCapacity        int
	MaxDailyHours       int
	MaxConsecutiveHours int
	Weekdays            []time.Weekday
	// Slots are ascending start hours. A missing hour between two slots is a break.
	Slots []int
}

// DefaultPolicy is the Monday-Friday, seven-slot week with a lunch gap at noon.
func DefaultPolicy() Policy {
	return Policy{
		RoomCapacity:        DefaultRoomCapacity,
		MaxDailyHours:       DefaultMaxDailyHours,
		MaxConsecutiveHours: DefaultMaxConsecutiveHours,
		Weekdays: []time.Weekday{
			time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday,
		},
		Slots: []int{9, 10, 11, 13, 14, 15, 16},
	}
}

// Validate rejects policies the engine cannot run with.
func (p Policy) Validate() error {
	if p.RoomCapacity <= 0 {
		return fmt.Errorf("room capacity must be positive, got %d", p.RoomCapacity)
	}
	if p.MaxDailyHours <= 0 {
		return fmt.Errorf("max daily hours must be positive, got %d", p.MaxDailyHours)
	}
	if p.MaxConsecutiveHours <= 0 {
		return fmt.Errorf("max consecutive hours must be positive, got %d", p.MaxConsecutiveHours)
	}
	if len(p.Weekdays) == 0 {
		return fmt.Errorf("at least one weekday is required")
	}
	seen := make(map[time.Weekday]bool, len(p.Weekdays))
	for _, day := range p.Weekdays {
		if seen[day] {
			return fmt.Errorf("duplicate weekday %s", day)
		}
		seen[day] = true
	}
	if len(p.Slots) == 0 {
		return fmt.Errorf("at least one slot is required")
	}
	for i, hour := range p.Slots {
		if hour < 0 || hour > 23 {
			return fmt.Errorf("slot hour %d out of range", hour)
		}
		if i > 0 && hour <= p.Slots[i-1] {
			return fmt.Errorf("slots must be strictly ascending")
		}
	}
	return nil
}

// CanExtend reports whether a block starting at hour may run into the next hour:
// the following slot must exist and be contiguous.
func (p Policy) CanExtend(hour int) bool {
	for i, slot := range p.Slots {
		if slot != hour {
			continue
		}
		return i+1 < len(p.Slots) && p.Slots[i+1] == hour+1
	}
	return false
}

// Cells enumerates the grid in weekday-major order.
func (p Policy) Cells() []Cell {
	cells := make([]Cell, 0, len(p.Weekdays)*len(p.Slots))
	for _, day := range p.Weekdays {
		for _, hour := range p.Slots {
			cells = append(cells, Cell{Day: day, Hour: hour})
		}
	}
	return cells
}

type policyFile struct {
	RoomCapacity        int      `yaml:"roomCapacity"`
	MaxDailyHours       int      `yaml:"maxDailyHours"`
	MaxConsecutiveHours int      `yaml:"maxConsecutiveHours"`
	Weekdays            []string `yaml:"weekdays"`
	Slots               []int    `yaml:"slots"`
}

// LoadPolicy reads a YAML policy file. Omitted fields keep their defaults.
// An empty path returns DefaultPolicy.
func LoadPolicy(path string) (Policy, error) {
	policy := DefaultPolicy()
	if strings.TrimSpace(path) == "" {
		return policy, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("read policy file: %w", err)
	}
	return ParsePolicy(data)
}

// ParsePolicy decodes YAML policy content on top of DefaultPolicy.
func ParsePolicy(data []byte) (Policy, error) {
	policy := DefaultPolicy()
	var raw policyFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Policy{}, fmt.Errorf("parse policy file: %w", err)
	}
	if raw.RoomCapacity != 0 {
		policy.RoomCapacity = raw.RoomCapacity
	}
	if raw.MaxDailyHours != 0 {
		policy.MaxDailyHours = raw.MaxDailyHours
	}
	if raw.MaxConsecutiveHours != 0 {
		policy.MaxConsecutiveHours = raw.MaxConsecutiveHours
	}
	if len(raw.Weekdays) > 0 {
		days := make([]time.Weekday, 0, len(raw.Weekdays))
		for _, name := range raw.Weekdays {
			day, ok := ParseWeekday(name)
			if !ok {
				return Policy{}, fmt.Errorf("unknown weekday %q", name)
			}
			days = append(days, day)
		}
		sort.Slice(days, func(i, j int) bool { return weekdayOrder(days[i]) < weekdayOrder(days[j]) })
		policy.Weekdays = days
	}
	if len(raw.Slots) > 0 {
		policy.Slots = append([]int(nil), raw.Slots...)
	}
	if err := policy.Validate(); err != nil {
		return Policy{}, fmt.Errorf("invalid policy: %w", err)
	}
	return policy, nil
}
