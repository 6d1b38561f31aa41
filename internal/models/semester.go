package models

import "time"

// Semester models one term of an academic year.
type Semester struct {
	ID          string     `db:"id" json:"id"`
	Name        string     `db:"name" json:"name"`
	Year        int        `db:"year" json:"year"`
	OrderInYear int        `db:"order_in_year" json:"order_in_year"`
	StartDate   *time.Time `db:"start_date" json:"start_date,omitempty"`
	EndDate     *time.Time `db:"end_date" json:"end_date,omitempty"`
	IsActive    bool       `db:"is_active" json:"is_active"`
}
