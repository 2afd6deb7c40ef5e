package domain

import (
	"fmt"
	"time"

	"github.com/diagnosis/luxstay-hotel/internal/utils"
)

type HousekeepingStatus string

const (
	HousekeepingOpen     HousekeepingStatus = "open"
	HousekeepingResolved HousekeepingStatus = "resolved"
)

type HousekeepingRequest struct {
	ID         int64              `json:"id"`
	RoomNumber string             `json:"room_number"`
	GuestName  string             `json:"guest_name"`
	Category   string             `json:"category"`
	Notes      string             `json:"notes"`
	Status     HousekeepingStatus `json:"status"`
	CreatedAt  time.Time          `json:"created_at"`
	ResolvedAt *time.Time         `json:"resolved_at,omitempty"`
}

var housekeepingCategories = map[string]bool{
	"cleaning":    true,
	"towels":      true,
	"amenities":   true,
	"laundry":     true,
	"maintenance": true,
	"other":       true,
}

type HousekeepingCreateRequest struct {
	Category string `json:"category"`
	Notes    string `json:"notes"`
}

func (r *HousekeepingCreateRequest) Normalize() {
	r.Category = utils.NormalizeStatus(r.Category)
	r.Notes = utils.NormalizeString(r.Notes)
}

func (r *HousekeepingCreateRequest) Validate() error {
	if !housekeepingCategories[r.Category] {
		return fmt.Errorf("category is invalid")
	}
	return nil
}
