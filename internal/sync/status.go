package sync

import (
	"sync"
	"time"
)

type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
)

// Status is the operator-facing record of the last reconciliation cycle. It
// lives in memory only; a restart forgets it.
type Status struct {
	State          State      `json:"state"`
	Cycle          uint64     `json:"cycle"`
	LastStartedAt  *time.Time `json:"last_started_at,omitempty"`
	LastFinishedAt *time.Time `json:"last_finished_at,omitempty"`
	LastSuccess    bool       `json:"last_success"`
	LastError      string     `json:"last_error,omitempty"`

	RoomsUpserted    int `json:"rooms_upserted"`
	RoomsDeleted     int `json:"rooms_deleted"`
	SessionsUpserted int `json:"sessions_upserted"`
	SessionsDeleted  int `json:"sessions_deleted"`
	SessionsExpired  int `json:"sessions_expired"`
	CredentialsSaved int `json:"credentials_saved"`
	GuestsSkipped    int `json:"guests_skipped"`
}

type statusHolder struct {
	mu     sync.Mutex
	status Status
}

func (h *statusHolder) begin(cycle uint64, at time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.status.State = StateRunning
	h.status.Cycle = cycle
	h.status.LastStartedAt = &at
}

func (h *statusHolder) finish(outcome Status, at time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()
	cycle, started := h.status.Cycle, h.status.LastStartedAt
	h.status = outcome
	h.status.State = StateIdle
	h.status.Cycle = cycle
	h.status.LastStartedAt = started
	h.status.LastFinishedAt = &at
}

func (h *statusHolder) get() Status {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.status
}
