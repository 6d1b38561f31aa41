package models

import "time"

// Classroom is a physical room sessions can be placed in.
type Classroom struct {
	ID         string    `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	Capacity   int       `db:"capacity" json:"capacity"`
	Equipment  *string   `db:"equipment" json:"equipment,omitempty"`
	RoomTypeID *string   `db:"room_type_id" json:"room_type_id,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}
