package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/diagnosis/luxstay-hotel/internal/domain"
)

type CredentialsRepo interface {
	FindActive(ctx context.Context, guestName, roomNumber string) (*domain.GuestCredential, error)
	ListActiveByRoom(ctx context.Context, roomNumber string) ([]domain.GuestCredential, error)
	// ListActiveBySource is the per-cycle prefetch: the sync loads all of its
	// own active credentials once instead of querying per guest.
	ListActiveBySource(ctx context.Context, source domain.Source) ([]domain.GuestCredential, error)
	Upsert(ctx context.Context, u domain.CredentialUpsert) error
	BulkUpsert(ctx context.Context, upserts []domain.CredentialUpsert) (int, error)
	Deactivate(ctx context.Context, guestName, roomNumber string, source domain.Source) (int64, error)
}

type CredentialsRepoImpl struct{ pool *pgxpool.Pool }

func NewCredentialsRepo(pool *pgxpool.Pool) *CredentialsRepoImpl {
	return &CredentialsRepoImpl{pool: pool}
}

const credCols = `id, source, guest_name, room_number, password_hash, status, created_at, updated_at`

// The conflict target names the partial unique index, so a racing writer for
// the same active (guest, room) pair becomes an update instead of an error.
const credUpsertSQL = `
	INSERT INTO guest_credentials (source, guest_name, room_number, password_hash, status)
	VALUES ($1, $2, $3, $4, 'active')
	ON CONFLICT (guest_name, room_number) WHERE status = 'active' DO UPDATE SET
		source = EXCLUDED.source,
		password_hash = EXCLUDED.password_hash,
		updated_at = now()`

func (r *CredentialsRepoImpl) FindActive(ctx context.Context, guestName, roomNumber string) (*domain.GuestCredential, error) {
	const q = `SELECT ` + credCols + ` FROM guest_credentials
		WHERE guest_name = $1 AND room_number = $2 AND status = 'active'`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var c domain.GuestCredential
	err := r.pool.QueryRow(ctx, q, guestName, roomNumber).Scan(
		&c.ID, &c.Source, &c.GuestName, &c.RoomNumber, &c.PasswordHash, &c.Status, &c.CreatedAt, &c.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return &c, err
}

func (r *CredentialsRepoImpl) ListActiveByRoom(ctx context.Context, roomNumber string) ([]domain.GuestCredential, error) {
	const q = `SELECT ` + credCols + ` FROM guest_credentials
		WHERE room_number = $1 AND status = 'active'
		ORDER BY guest_name`
	return r.listActive(ctx, q, roomNumber)
}

func (r *CredentialsRepoImpl) ListActiveBySource(ctx context.Context, source domain.Source) ([]domain.GuestCredential, error) {
	const q = `SELECT ` + credCols + ` FROM guest_credentials
		WHERE source = $1 AND status = 'active'`
	return r.listActive(ctx, q, source)
}

func (r *CredentialsRepoImpl) listActive(ctx context.Context, q string, arg any) ([]domain.GuestCredential, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var creds []domain.GuestCredential
	for rows.Next() {
		var c domain.GuestCredential
		if err := rows.Scan(
			&c.ID, &c.Source, &c.GuestName, &c.RoomNumber, &c.PasswordHash, &c.Status, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, err
		}
		creds = append(creds, c)
	}
	return creds, rows.Err()
}

func (r *CredentialsRepoImpl) Upsert(ctx context.Context, u domain.CredentialUpsert) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.pool.Exec(ctx, credUpsertSQL, u.Source, u.GuestName, u.RoomNumber, u.PasswordHash)
	return err
}

func (r *CredentialsRepoImpl) BulkUpsert(ctx context.Context, upserts []domain.CredentialUpsert) (int, error) {
	if len(upserts) == 0 {
		return 0, nil
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	batch := &pgx.Batch{}
	for _, u := range upserts {
		batch.Queue(credUpsertSQL, u.Source, u.GuestName, u.RoomNumber, u.PasswordHash)
	}
	return len(upserts), r.pool.SendBatch(ctx, batch).Close()
}

func (r *CredentialsRepoImpl) Deactivate(ctx context.Context, guestName, roomNumber string, source domain.Source) (int64, error) {
	const q = `UPDATE guest_credentials SET status = 'inactive', updated_at = now()
		WHERE guest_name = $1 AND room_number = $2 AND source = $3 AND status = 'active'`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, q, guestName, roomNumber, source)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
