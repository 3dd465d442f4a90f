package models

import "time"

// RoomType separates lecture classrooms from laboratories.
type RoomType string

const (
	RoomClassroom RoomType = "classroom"
	RoomLab       RoomType = "lab"
)

// Room is a bookable teaching space.
type Room struct {
	ID          string    `db:"id" json:"id"`
	RoomNumber  string    `db:"room_number" json:"roomNumber"`
	RoomType    RoomType  `db:"room_type" json:"roomType"`
	Capacity    int       `db:"capacity" json:"capacity"`
	IsAvailable bool      `db:"is_available" json:"isAvailable"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

// RoomFilter restricts the room pool fetched for generation.
type RoomFilter struct {
	OnlyAvailable bool
	IDs           []string
}
