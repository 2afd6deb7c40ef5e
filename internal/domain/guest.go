package domain

import (
	"fmt"
	"time"

	"github.com/diagnosis/luxstay-hotel/internal/guestname"
)

// Source marks who created a credential or session: the app itself (login,
// check-in) or the periodic sync against the hotel source database.
type Source string

const (
	SourceApp       Source = "app"
	SourceHotelSync Source = "hotel_sync"
)

type CredentialStatus string

const (
	CredentialActive   CredentialStatus = "active"
	CredentialInactive CredentialStatus = "inactive"
)

// GuestCredential is a password hash for one (canonical guest name, room)
// pair. The database enforces at most one active credential per pair.
type GuestCredential struct {
	ID           int64            `json:"id"`
	Source       Source           `json:"source"`
	GuestName    string           `json:"guest_name"`
	RoomNumber   string           `json:"room_number"`
	PasswordHash string           `json:"-"`
	Status       CredentialStatus `json:"status"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// CredentialUpsert is one queued credential write inside a reconciliation cycle.
type CredentialUpsert struct {
	Source       Source
	GuestName    string
	RoomNumber   string
	PasswordHash string
}

// GuestSession is a bearer session for guest-scoped requests. Sessions created
// by the sync carry a deterministic id and a SyncedAt timestamp; sessions from
// direct login carry a random id.
type GuestSession struct {
	ID         int64      `json:"-"`
	SessionID  string     `json:"session_id"`
	Source     Source     `json:"source"`
	GuestName  string     `json:"guest_name"`
	RoomNumber string     `json:"room_number"`
	ExpiresAt  time.Time  `json:"expires_at"`
	SyncedAt   *time.Time `json:"synced_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// SessionUpsert is one queued session write inside a reconciliation cycle.
type SessionUpsert struct {
	SessionID  string
	Source     Source
	GuestName  string
	RoomNumber string
	ExpiresAt  time.Time
	SyncedAt   time.Time
}

// GuestLoginRequest is the name + room + password login body.
type GuestLoginRequest struct {
	GuestName  string `json:"guest_name"`
	RoomNumber string `json:"room_number"`
	Password   string `json:"password"`
}

func (r *GuestLoginRequest) Normalize() {
	r.GuestName = guestname.Normalize(r.GuestName)
	r.RoomNumber = guestname.NormalizeRoomNumber(r.RoomNumber)
}

func (r *GuestLoginRequest) Validate() error {
	if r.GuestName == "" {
		return fmt.Errorf("guest_name is required")
	}
	if r.RoomNumber == "" {
		return fmt.Errorf("room_number is required")
	}
	if r.Password == "" {
		return fmt.Errorf("password is required")
	}
	return nil
}

// RoomLoginRequest is the QR flow: room + last name + password.
type RoomLoginRequest struct {
	RoomNumber string `json:"room_number"`
	LastName   string `json:"last_name"`
	Password   string `json:"password"`
}

func (r *RoomLoginRequest) Normalize() {
	r.RoomNumber = guestname.NormalizeRoomNumber(r.RoomNumber)
	r.LastName = guestname.NormalizeLastName(r.LastName)
}

func (r *RoomLoginRequest) Validate() error {
	if r.RoomNumber == "" {
		return fmt.Errorf("room_number is required")
	}
	if r.LastName == "" {
		return fmt.Errorf("last_name is required")
	}
	if r.Password == "" {
		return fmt.Errorf("password is required")
	}
	return nil
}

// GuestSessionResponse is returned on successful guest login.
type GuestSessionResponse struct {
	SessionID  string    `json:"session_id"`
	GuestName  string    `json:"guest_name"`
	RoomNumber string    `json:"room_number"`
	ExpiresAt  time.Time `json:"expires_at"`
}
