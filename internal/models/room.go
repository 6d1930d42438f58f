package models

import "time"

// RoomStatus captures the availability of a room.
type RoomStatus string

const (
	RoomStatusAvailable   RoomStatus = "available"
	RoomStatusOccupied    RoomStatus = "occupied"
	RoomStatusMaintenance RoomStatus = "maintenance"
)

// RoomType distinguishes generic classrooms from labs and specialized rooms.
type RoomType string

const (
	RoomTypeClassroom   RoomType = "classroom"
	RoomTypeLab         RoomType = "lab"
	RoomTypeSpecialized RoomType = "specialized"
)

// Room represents a schedulable physical resource.
type Room struct {
	ID        string     `db:"id" json:"id"`
	Name      string     `db:"name" json:"name"`
	Type      RoomType   `db:"type" json:"type"`
	Capacity  int        `db:"capacity" json:"capacity"`
	Status    RoomStatus `db:"status" json:"status"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}
