// Package sync mirrors room occupancy from the externally-owned hotel
// database into this service's rooms, guest_sessions and guest_credentials
// tables. Every cycle is a full, idempotent re-derivation from the source:
// running it twice over unchanged data performs no writes beyond refreshing
// session expiries, and never rehashes a credential whose password already
// verifies.
package sync

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/diagnosis/luxstay-hotel/internal/domain"
	"github.com/diagnosis/luxstay-hotel/internal/guestname"
	"github.com/diagnosis/luxstay-hotel/internal/platform/password"
	"github.com/diagnosis/luxstay-hotel/internal/platform/token"
	"github.com/diagnosis/luxstay-hotel/internal/repo/postgres"
	"github.com/diagnosis/luxstay-hotel/internal/repo/source"
	"github.com/diagnosis/luxstay-hotel/pkg/events"
	"github.com/diagnosis/luxstay-hotel/pkg/logger"
)

var (
	// ErrCycleRunning reports a trigger that arrived while a cycle held the
	// guard. ErrSourceUnavailable reports a cycle skipped at the ping.
	ErrCycleRunning      = errors.New("sync cycle already running")
	ErrSourceUnavailable = errors.New("source database unreachable")
)

type Reconciler struct {
	source      source.Repo
	rooms       postgres.RoomsRepo
	sessions    postgres.SessionsRepo
	credentials postgres.CredentialsRepo
	bus         events.Publisher

	interval   time.Duration
	sessionTTL time.Duration

	// running guards against overlapping cycles: a trigger while a cycle is
	// in flight is a silent no-op, never queued.
	running atomic.Bool
	cycles  atomic.Uint64
	holder  statusHolder
}

func NewReconciler(
	src source.Repo,
	rooms postgres.RoomsRepo,
	sessions postgres.SessionsRepo,
	credentials postgres.CredentialsRepo,
	bus events.Publisher,
	interval, sessionTTL time.Duration,
) *Reconciler {
	return &Reconciler{
		source:      src,
		rooms:       rooms,
		sessions:    sessions,
		credentials: credentials,
		bus:         bus,
		interval:    interval,
		sessionTTL:  sessionTTL,
	}
}

// Run blocks, executing one cycle immediately and then one per interval until
// ctx is canceled.
func (r *Reconciler) Run(ctx context.Context) {
	logger.Info("Starting hotel sync", "interval", r.interval.String(), "session_ttl", r.sessionTTL.String())
	r.RunCycle(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Stopping hotel sync")
			return
		case <-ticker.C:
			r.RunCycle(ctx)
		}
	}
}

// Status returns a copy of the last cycle's outcome.
func (r *Reconciler) Status() Status {
	s := r.holder.get()
	if r.running.Load() {
		s.State = StateRunning
	}
	return s
}

// RunCycle executes one reconciliation cycle. A skipped cycle is reported as
// ErrCycleRunning or ErrSourceUnavailable so callers can tell the two apart.
// A cycle that ran but failed internally returns nil: the failure is logged
// and recorded in Status, and the next tick must always get a clean start.
func (r *Reconciler) RunCycle(ctx context.Context) error {
	if !r.running.CompareAndSwap(false, true) {
		logger.Debug("Sync cycle already running, skipping trigger")
		return ErrCycleRunning
	}
	defer r.running.Store(false)

	if err := r.source.Ping(ctx); err != nil {
		logger.Warn("Source database unreachable, skipping sync cycle", "error", err)
		return fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}

	cycle := r.cycles.Add(1)
	ctx = context.WithValue(ctx, logger.SyncCycleKey, cycle)
	started := time.Now()
	r.holder.begin(cycle, started)

	outcome, err := r.cycle(ctx)
	finished := time.Now()
	if err != nil {
		outcome.LastSuccess = false
		outcome.LastError = err.Error()
		logger.ErrorContext(ctx, "Sync cycle failed", "error", err, "elapsed_ms", finished.Sub(started).Milliseconds())
	} else {
		outcome.LastSuccess = true
		logger.InfoContext(ctx, "Sync cycle completed",
			"rooms_upserted", outcome.RoomsUpserted,
			"rooms_deleted", outcome.RoomsDeleted,
			"sessions_upserted", outcome.SessionsUpserted,
			"sessions_deleted", outcome.SessionsDeleted,
			"sessions_expired", outcome.SessionsExpired,
			"credentials_saved", outcome.CredentialsSaved,
			"guests_skipped", outcome.GuestsSkipped,
			"elapsed_ms", finished.Sub(started).Milliseconds(),
		)
	}
	r.holder.finish(outcome, finished)

	if r.bus != nil {
		event := events.SyncCycleCompletedEvent{
			Cycle:            cycle,
			Success:          err == nil,
			RoomsUpserted:    outcome.RoomsUpserted,
			RoomsDeleted:     outcome.RoomsDeleted,
			SessionsUpserted: outcome.SessionsUpserted,
			SessionsDeleted:  outcome.SessionsDeleted,
			CredentialsSaved: outcome.CredentialsSaved,
			FinishedAt:       finished,
		}
		if pubErr := r.bus.Publish(ctx, events.SyncCycleCompleted, event); pubErr != nil {
			logger.WarnContext(ctx, "Failed to publish sync event", "error", pubErr)
		}
	}
	return nil
}

func (r *Reconciler) cycle(ctx context.Context) (Status, error) {
	var out Status

	srcRooms, err := r.source.ListRooms(ctx)
	if err != nil {
		return out, fmt.Errorf("read source rooms: %w", err)
	}

	// One prefetch of our own sync credentials instead of a query per guest.
	existing, err := r.credentials.ListActiveBySource(ctx, domain.SourceHotelSync)
	if err != nil {
		return out, fmt.Errorf("prefetch sync credentials: %w", err)
	}
	credByKey := make(map[string]string, len(existing))
	for _, c := range existing {
		credByKey[credKey(c.RoomNumber, c.GuestName)] = c.PasswordHash
	}

	var (
		roomUpserts      []domain.RoomUpsert
		activeRooms      []string
		sessionUpserts   []domain.SessionUpsert
		activeSessionIDs []string
		credUpserts      []domain.CredentialUpsert
	)
	now := time.Now()

	for _, sr := range srcRooms {
		roomNumber := guestname.NormalizeRoomNumber(sr.Room)
		if roomNumber == "" {
			continue
		}

		// Occupancy is derived from labels that survive normalization: a room
		// whose guest list holds only blank labels is vacant, not occupied
		// with zero credentials.
		status := domain.RoomAvailable
		if hasRegisteredGuest(sr.Guests) {
			status = domain.RoomOccupied
		}
		roomUpserts = append(roomUpserts, domain.RoomUpsert{RoomNumber: roomNumber, Status: status})
		activeRooms = append(activeRooms, roomNumber)

		for _, label := range sr.Guests {
			if guestname.NormalizeWhitespace(label) == "" {
				out.GuestsSkipped++
				continue
			}
			name := guestname.Normalize(label)
			if name == "" {
				out.GuestsSkipped++
				continue
			}

			// Stable id from the raw label, so the same (room, label) pair
			// maps to the same session row on every cycle.
			sessionID := token.SyncSessionID(roomNumber, label)
			sessionUpserts = append(sessionUpserts, domain.SessionUpsert{
				SessionID:  sessionID,
				Source:     domain.SourceHotelSync,
				GuestName:  name,
				RoomNumber: roomNumber,
				ExpiresAt:  now.Add(r.sessionTTL),
				SyncedAt:   now,
			})
			activeSessionIDs = append(activeSessionIDs, sessionID)

			scheme := guestname.SchemePassword(roomNumber, name)
			if hash, ok := credByKey[credKey(roomNumber, name)]; ok && password.Verify(scheme, hash) {
				// Existing hash still matches the scheme password; skip the
				// rehash and the write.
				continue
			}
			newHash, err := password.Hash(scheme)
			if err != nil {
				return out, fmt.Errorf("hash credential for room %s: %w", roomNumber, err)
			}
			credUpserts = append(credUpserts, domain.CredentialUpsert{
				Source:       domain.SourceHotelSync,
				GuestName:    name,
				RoomNumber:   roomNumber,
				PasswordHash: newHash,
			})
		}
	}

	// Upserts must land before their deletion sweep: reversing the order
	// would delete and recreate rows every cycle, or lose one for good.
	if out.RoomsUpserted, err = r.rooms.BulkUpsert(ctx, roomUpserts); err != nil {
		return out, fmt.Errorf("upsert rooms: %w", err)
	}
	deletedRooms, err := r.rooms.DeleteNotIn(ctx, activeRooms)
	if err != nil {
		return out, fmt.Errorf("sweep rooms: %w", err)
	}
	out.RoomsDeleted = int(deletedRooms)

	if out.SessionsUpserted, err = r.sessions.BulkUpsert(ctx, sessionUpserts); err != nil {
		return out, fmt.Errorf("upsert sessions: %w", err)
	}
	deletedSessions, err := r.sessions.DeleteSyncedNotIn(ctx, activeSessionIDs)
	if err != nil {
		return out, fmt.Errorf("sweep synced sessions: %w", err)
	}
	out.SessionsDeleted = int(deletedSessions)

	expired, err := r.sessions.DeleteExpired(ctx)
	if err != nil {
		return out, fmt.Errorf("sweep expired sessions: %w", err)
	}
	out.SessionsExpired = int(expired)

	// Credentials are refreshed but never deleted here: a guest who vanishes
	// from the source keeps their credential, it just stops being updated.
	if out.CredentialsSaved, err = r.credentials.BulkUpsert(ctx, credUpserts); err != nil {
		return out, fmt.Errorf("upsert credentials: %w", err)
	}

	return out, nil
}

func credKey(roomNumber, guestName string) string {
	return roomNumber + "|" + guestName
}

func hasRegisteredGuest(labels []string) bool {
	for _, label := range labels {
		if guestname.NormalizeWhitespace(label) != "" {
			return true
		}
	}
	return false
}
