package domain

import (
	"fmt"
	"time"

	"github.com/diagnosis/luxstay-hotel/internal/guestname"
	"github.com/diagnosis/luxstay-hotel/internal/utils"
)

type StayStatus string

const (
	StayActive     StayStatus = "active"
	StayCheckedOut StayStatus = "checked_out"
)

// ActiveStay records a front-desk check-in. Partial unique indexes guarantee
// at most one active stay per room and per phone number.
type ActiveStay struct {
	ID         int64      `json:"id"`
	GuestName  string     `json:"guest_name"`
	Phone      string     `json:"phone"`
	RoomNumber string     `json:"room_number"`
	Status     StayStatus `json:"status"`
	CheckInAt  time.Time  `json:"check_in_at"`
	CheckOutAt *time.Time `json:"check_out_at,omitempty"`
}

type CheckInRequest struct {
	GuestName  string `json:"guest_name"`
	Phone      string `json:"phone"`
	RoomNumber string `json:"room_number"`
}

func (r *CheckInRequest) Normalize() {
	r.GuestName = guestname.Normalize(r.GuestName)
	r.Phone = utils.NormalizePhone(r.Phone)
	r.RoomNumber = guestname.NormalizeRoomNumber(r.RoomNumber)
}

func (r *CheckInRequest) Validate() error {
	if r.GuestName == "" {
		return fmt.Errorf("guest_name is required")
	}
	if !utils.IsValidPhone(r.Phone) {
		return fmt.Errorf("phone is invalid")
	}
	if r.RoomNumber == "" {
		return fmt.Errorf("room_number is required")
	}
	return nil
}

// CheckInResponse includes the scheme password issued for the stay so the
// front desk can hand it to the guest. It is shown once and stored only hashed.
type CheckInResponse struct {
	Stay          ActiveStay `json:"stay"`
	GuestPassword string     `json:"guest_password"`
}
