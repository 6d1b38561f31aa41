package models

// RoomType classifies classrooms (lab, lecture hall, studio...).
type RoomType struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// Specialization links a subject area to the room type it must be taught in.
type Specialization struct {
	ID         string  `db:"id" json:"id"`
	Name       string  `db:"name" json:"name"`
	RoomTypeID *string `db:"room_type_id" json:"room_type_id,omitempty"`
}
