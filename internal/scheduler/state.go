package scheduler

import (
	"time"

	"github.com/noah-isme/course-scheduler-api/internal/models"
)

// Session is one allocated weekly block.
type Session struct {
	CourseID   string
	TeacherID  string
	RoomID     string
	SemesterID string
	Day        time.Weekday
	StartHour  int
	Duration   int
}

// EndHour is the hour the session finishes, exclusive.
func (s Session) EndHour() int {
	return s.StartHour + s.Duration
}

// StartTime formats the start hour as HH:MM.
func (s Session) StartTime() string {
	return FormatHour(s.StartHour)
}

// EndTime formats the end hour as HH:MM.
func (s Session) EndTime() string {
	return FormatHour(s.EndHour())
}

// Block returns the session's weekly interval for overlap checks.
func (s Session) Block() Block {
	return Block{Day: DayName(s.Day), Start: s.StartHour * 60, End: s.EndHour() * 60}
}

// Section converts the session into its persisted form.
func (s Session) Section(id string) models.CourseSection {
	return models.CourseSection{
		ID:          id,
		CourseID:    s.CourseID,
		TeacherID:   s.TeacherID,
		ClassroomID: s.RoomID,
		SemesterID:  s.SemesterID,
		DayOfWeek:   DayName(s.Day),
		StartTime:   s.StartTime(),
		EndTime:     s.EndTime(),
	}
}

// AllocationState is the mutable bookkeeping of a single run.
type AllocationState struct {
	Ledger  *SlotLedger
	Tracker *AvailabilityTracker

	roomUsage map[string]int
	sessions  []Session
}

func NewAllocationState(policy Policy) *AllocationState {
	return &AllocationState{
		Ledger:    NewSlotLedger(policy),
		Tracker:   NewAvailabilityTracker(policy.MaxConsecutiveHours),
		roomUsage: make(map[string]int),
	}
}

// RoomUsage counts sessions already placed in the room this run.
func (s *AllocationState) RoomUsage(roomID string) int {
	return s.roomUsage[roomID]
}

func (s *AllocationState) Sessions() []Session {
	return s.sessions
}

func (s *AllocationState) record(session Session) {
	for h := 0; h < session.Duration; h++ {
		s.Tracker.MarkPlaced(session.TeacherID, session.RoomID, session.Day, session.StartHour+h)
	}
	s.Ledger.Credit(Cell{Day: session.Day, Hour: session.StartHour}, session.Duration)
	s.roomUsage[session.RoomID]++
	s.sessions = append(s.sessions, session)
}
