package scheduler

import (
	"fmt"
	"strings"
	"time"
)

// Block is a weekly time interval in minutes since midnight, half-open [Start, End).
type Block struct {
	Day   string
	Start int
	End   int
}

// Overlaps reports whether two blocks fall on the same day and intersect.
// Sessions and enrollment conflict checks both go through this.
func Overlaps(a, b Block) bool {
	if !strings.EqualFold(a.Day, b.Day) {
		return false
	}
	return a.Start < b.End && b.Start < a.End
}

// ParseBlock builds a block from a day name and "HH:MM" or "HH:MM:SS" times.
func ParseBlock(day, start, end string) (Block, error) {
	startMin, err := parseClock(start)
	if err != nil {
		return Block{}, err
	}
	endMin, err := parseClock(end)
	if err != nil {
		return Block{}, err
	}
	if endMin <= startMin {
		return Block{}, fmt.Errorf("block end %s is not after start %s", end, start)
	}
	return Block{Day: strings.ToUpper(strings.TrimSpace(day)), Start: startMin, End: endMin}, nil
}

func parseClock(value string) (int, error) {
	value = strings.TrimSpace(value)
	for _, layout := range []string{"15:04", "15:04:05"} {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.Hour()*60 + parsed.Minute(), nil
		}
	}
	return 0, fmt.Errorf("invalid time %q", value)
}
