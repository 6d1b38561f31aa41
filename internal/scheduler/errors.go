package scheduler

import (
	"errors"
	"fmt"
)

var (
	ErrNoActiveTerm            = errors.New("no active semester found")
	ErrMissingTermDates        = errors.New("semester start and end dates must be set")
	ErrInsufficientWeeklyHours = errors.New("weekly hours below required sections")
	ErrIncompleteReference     = errors.New("session references unknown record")
)

// ConfigurationError names the course whose weekly hours cannot cover its section minimum.
type ConfigurationError struct {
	CourseID   string
	CourseName string
	Required   int
	Have       int
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("hoursPerWeek needs to be increased for course %s: %d sections needed, %d hours configured",
		e.CourseName, e.Required, e.Have)
}

func (e *ConfigurationError) Unwrap() error {
	return ErrInsufficientWeeklyHours
}
