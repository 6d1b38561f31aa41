package dto

import (
	"time"

	"github.com/noah-isme/course-scheduler-api/internal/models"
	"github.com/noah-isme/course-scheduler-api/internal/scheduler"
)

// ExportFormat selects the schedule export renderer.
type ExportFormat string

const (
	ExportCSV ExportFormat = "csv"
	ExportPDF ExportFormat = "pdf"
)

// LedgerCell reports committed hours for one grid cell.
type LedgerCell struct {
	Day   string `json:"day"`
	Slot  string `json:"slot"`
	Hours int    `json:"hours"`
}

// GenerateScheduleResponse is returned by a generation run.
type GenerateScheduleResponse struct {
	Semester         models.Semester           `json:"semester"`
	Events           []scheduler.ScheduleEvent `json:"events"`
	Courses          []scheduler.CourseOutcome `json:"courses"`
	Warnings         []scheduler.Warning       `json:"warnings"`
	Ledger           []LedgerCell              `json:"ledger"`
	WeeksInTerm      int                       `json:"weeks_in_term"`
	UnscheduledHours int                       `json:"unscheduled_hours"`
	Seed             int64                     `json:"seed"`
	RefreshJobID     string                    `json:"refresh_job_id,omitempty"`
	GeneratedAt      time.Time                 `json:"generated_at"`
}

// ResetScheduleResponse reports what a reset removed.
type ResetScheduleResponse struct {
	SemesterID         string `json:"semester_id"`
	SectionsDeleted    int64  `json:"sections_deleted"`
	EnrollmentsDeleted int64  `json:"enrollments_deleted"`
}

// ExportFile is a rendered schedule download.
type ExportFile struct {
	Filename    string
	ContentType string
	Content     []byte
}

// LedgerCells converts an engine snapshot to its wire form.
func LedgerCells(snapshot []scheduler.CellLoad) []LedgerCell {
	cells := make([]LedgerCell, 0, len(snapshot))
	for _, entry := range snapshot {
		cells = append(cells, LedgerCell{
			Day:   scheduler.DayName(entry.Day),
			Slot:  scheduler.FormatHour(entry.Hour),
			Hours: entry.Hours,
		})
	}
	return cells
}
