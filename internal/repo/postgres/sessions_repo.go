package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/diagnosis/luxstay-hotel/internal/domain"
)

type SessionsRepo interface {
	Create(ctx context.Context, s *domain.GuestSession) error
	// GetBySessionID returns only unexpired sessions; an expired row is
	// indistinguishable from a missing one.
	GetBySessionID(ctx context.Context, sessionID string) (*domain.GuestSession, error)
	ExtendExpiry(ctx context.Context, sessionID string, expiresAt time.Time) error
	BulkUpsert(ctx context.Context, upserts []domain.SessionUpsert) (int, error)
	// DeleteSyncedNotIn removes sync-sourced sessions whose id was not produced
	// this cycle. App-originated sessions are never touched here.
	DeleteSyncedNotIn(ctx context.Context, activeIDs []string) (int64, error)
	DeleteExpired(ctx context.Context) (int64, error)
	DeleteByGuestRoom(ctx context.Context, guestName, roomNumber string, source domain.Source) (int64, error)
}

type SessionsRepoImpl struct{ pool *pgxpool.Pool }

func NewSessionsRepo(pool *pgxpool.Pool) *SessionsRepoImpl { return &SessionsRepoImpl{pool: pool} }

const sessionCols = `id, session_id, source, guest_name, room_number, expires_at, synced_at, created_at`

func (r *SessionsRepoImpl) Create(ctx context.Context, s *domain.GuestSession) error {
	const q = `
		INSERT INTO guest_sessions (session_id, source, guest_name, room_number, expires_at, synced_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return r.pool.QueryRow(ctx, q,
		s.SessionID, s.Source, s.GuestName, s.RoomNumber, s.ExpiresAt, s.SyncedAt,
	).Scan(&s.ID, &s.CreatedAt)
}

func (r *SessionsRepoImpl) GetBySessionID(ctx context.Context, sessionID string) (*domain.GuestSession, error) {
	const q = `SELECT ` + sessionCols + ` FROM guest_sessions
		WHERE session_id = $1 AND expires_at > now()`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var s domain.GuestSession
	err := r.pool.QueryRow(ctx, q, sessionID).Scan(
		&s.ID, &s.SessionID, &s.Source, &s.GuestName, &s.RoomNumber, &s.ExpiresAt, &s.SyncedAt, &s.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return &s, err
}

func (r *SessionsRepoImpl) ExtendExpiry(ctx context.Context, sessionID string, expiresAt time.Time) error {
	const q = `UPDATE guest_sessions SET expires_at = $2 WHERE session_id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, q, sessionID, expiresAt)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *SessionsRepoImpl) BulkUpsert(ctx context.Context, upserts []domain.SessionUpsert) (int, error) {
	if len(upserts) == 0 {
		return 0, nil
	}
	const q = `
		INSERT INTO guest_sessions (session_id, source, guest_name, room_number, expires_at, synced_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (session_id) DO UPDATE SET
			guest_name = EXCLUDED.guest_name,
			room_number = EXCLUDED.room_number,
			expires_at = EXCLUDED.expires_at,
			synced_at = EXCLUDED.synced_at`

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	batch := &pgx.Batch{}
	for _, u := range upserts {
		batch.Queue(q, u.SessionID, u.Source, u.GuestName, u.RoomNumber, u.ExpiresAt, u.SyncedAt)
	}
	return len(upserts), r.pool.SendBatch(ctx, batch).Close()
}

func (r *SessionsRepoImpl) DeleteSyncedNotIn(ctx context.Context, activeIDs []string) (int64, error) {
	const q = `DELETE FROM guest_sessions
		WHERE source = $1 AND NOT (session_id = ANY($2))`
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if activeIDs == nil {
		activeIDs = []string{}
	}
	result, err := r.pool.Exec(ctx, q, domain.SourceHotelSync, activeIDs)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

func (r *SessionsRepoImpl) DeleteExpired(ctx context.Context) (int64, error) {
	const q = `DELETE FROM guest_sessions WHERE expires_at < now()`
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, q)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

func (r *SessionsRepoImpl) DeleteByGuestRoom(ctx context.Context, guestName, roomNumber string, source domain.Source) (int64, error) {
	const q = `DELETE FROM guest_sessions
		WHERE guest_name = $1 AND room_number = $2 AND source = $3`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, q, guestName, roomNumber, source)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
