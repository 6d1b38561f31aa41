package models

import "time"

// Teacher represents an instructor record.
type Teacher struct {
	ID               string    `db:"id" json:"id"`
	FirstName        string    `db:"first_name" json:"first_name"`
	LastName         string    `db:"last_name" json:"last_name"`
	Email            string    `db:"email" json:"email"`
	PasswordHash     *string   `db:"password_hash" json:"-"`
	SpecializationID *string   `db:"specialization_id" json:"specialization_id,omitempty"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// FullName joins first and last name.
func (t Teacher) FullName() string {
	return joinName(t.FirstName, t.LastName)
}
