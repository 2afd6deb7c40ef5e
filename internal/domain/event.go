package domain

import (
	"fmt"
	"time"

	"github.com/diagnosis/luxstay-hotel/internal/utils"
)

// Event is a hotel happening or info notice shown to guests.
type Event struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Location    string     `json:"location"`
	StartsAt    *time.Time `json:"starts_at,omitempty"`
	EndsAt      *time.Time `json:"ends_at,omitempty"`
	Published   bool       `json:"published"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type EventRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Location    string     `json:"location"`
	StartsAt    *time.Time `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at"`
	Published   *bool      `json:"published"`
}

func (r *EventRequest) Normalize() {
	r.Title = utils.NormalizeString(r.Title)
	r.Description = utils.NormalizeString(r.Description)
	r.Location = utils.NormalizeString(r.Location)
}

func (r *EventRequest) Validate() error {
	if r.Title == "" {
		return fmt.Errorf("title is required")
	}
	if r.StartsAt != nil && r.EndsAt != nil && r.EndsAt.Before(*r.StartsAt) {
		return fmt.Errorf("ends_at must not be before starts_at")
	}
	return nil
}
