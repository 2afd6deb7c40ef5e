package domain

import "time"

type RoomStatus string

const (
	RoomAvailable RoomStatus = "available"
	RoomOccupied  RoomStatus = "occupied"
)

func ParseRoomStatus(s string) (RoomStatus, bool) {
	switch RoomStatus(s) {
	case RoomAvailable, RoomOccupied:
		return RoomStatus(s), true
	default:
		return "", false
	}
}

type Room struct {
	ID         int64      `json:"id"`
	RoomNumber string     `json:"room_number"`
	Status     RoomStatus `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// RoomUpsert is one queued room write inside a reconciliation cycle.
type RoomUpsert struct {
	RoomNumber string
	Status     RoomStatus
}
