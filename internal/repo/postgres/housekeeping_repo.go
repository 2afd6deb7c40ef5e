package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/diagnosis/luxstay-hotel/internal/domain"
)

type HousekeepingRepo interface {
	Create(ctx context.Context, req *domain.HousekeepingRequest) (*domain.HousekeepingRequest, error)
	List(ctx context.Context, status domain.HousekeepingStatus, limit, offset int) ([]domain.HousekeepingRequest, error)
	Resolve(ctx context.Context, id int64) (*domain.HousekeepingRequest, error)
	CountOpen(ctx context.Context) (int, error)
}

type HousekeepingRepoImpl struct{ pool *pgxpool.Pool }

func NewHousekeepingRepo(pool *pgxpool.Pool) *HousekeepingRepoImpl {
	return &HousekeepingRepoImpl{pool: pool}
}

const hkCols = `id, room_number, guest_name, category, notes, status, created_at, resolved_at`

func (r *HousekeepingRepoImpl) Create(ctx context.Context, req *domain.HousekeepingRequest) (*domain.HousekeepingRequest, error) {
	const q = `
		INSERT INTO housekeeping_requests (room_number, guest_name, category, notes, status)
		VALUES ($1, $2, $3, $4, 'open')
		RETURNING ` + hkCols
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var hk domain.HousekeepingRequest
	err := r.pool.QueryRow(ctx, q, req.RoomNumber, req.GuestName, req.Category, req.Notes).Scan(
		&hk.ID, &hk.RoomNumber, &hk.GuestName, &hk.Category, &hk.Notes, &hk.Status, &hk.CreatedAt, &hk.ResolvedAt,
	)
	if err != nil {
		return nil, err
	}
	return &hk, nil
}

func (r *HousekeepingRepoImpl) List(ctx context.Context, status domain.HousekeepingStatus, limit, offset int) ([]domain.HousekeepingRequest, error) {
	const q = `SELECT ` + hkCols + ` FROM housekeeping_requests
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, string(status), clampLimit(limit), clampOffset(offset))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.HousekeepingRequest
	for rows.Next() {
		var hk domain.HousekeepingRequest
		if err := rows.Scan(
			&hk.ID, &hk.RoomNumber, &hk.GuestName, &hk.Category, &hk.Notes, &hk.Status, &hk.CreatedAt, &hk.ResolvedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, hk)
	}
	return out, rows.Err()
}

func (r *HousekeepingRepoImpl) Resolve(ctx context.Context, id int64) (*domain.HousekeepingRequest, error) {
	const q = `
		UPDATE housekeeping_requests SET status = 'resolved', resolved_at = now()
		WHERE id = $1 AND status = 'open'
		RETURNING ` + hkCols
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var hk domain.HousekeepingRequest
	err := r.pool.QueryRow(ctx, q, id).Scan(
		&hk.ID, &hk.RoomNumber, &hk.GuestName, &hk.Category, &hk.Notes, &hk.Status, &hk.CreatedAt, &hk.ResolvedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return &hk, err
}

func (r *HousekeepingRepoImpl) CountOpen(ctx context.Context) (int, error) {
	const q = `SELECT count(*) FROM housekeeping_requests WHERE status = 'open'`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var n int
	err := r.pool.QueryRow(ctx, q).Scan(&n)
	return n, err
}
