package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/diagnosis/luxstay-hotel/internal/domain"
)

type RoomsRepo interface {
	GetByNumber(ctx context.Context, roomNumber string) (*domain.Room, error)
	List(ctx context.Context) ([]domain.Room, error)
	SetStatus(ctx context.Context, roomNumber string, status domain.RoomStatus) error
	// BulkUpsert applies all queued room writes in one batch and returns the
	// number of statements executed.
	BulkUpsert(ctx context.Context, upserts []domain.RoomUpsert) (int, error)
	// DeleteNotIn removes every room whose number is absent from active. The
	// source database is authoritative for the set of rooms that exist.
	DeleteNotIn(ctx context.Context, active []string) (int64, error)
	Counts(ctx context.Context) (total, occupied int, err error)
}

type RoomsRepoImpl struct{ pool *pgxpool.Pool }

func NewRoomsRepo(pool *pgxpool.Pool) *RoomsRepoImpl { return &RoomsRepoImpl{pool: pool} }

const roomCols = `id, room_number, status, created_at, updated_at`

func (r *RoomsRepoImpl) GetByNumber(ctx context.Context, roomNumber string) (*domain.Room, error) {
	const q = `SELECT ` + roomCols + ` FROM rooms WHERE room_number = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var rm domain.Room
	err := r.pool.QueryRow(ctx, q, roomNumber).Scan(
		&rm.ID, &rm.RoomNumber, &rm.Status, &rm.CreatedAt, &rm.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return &rm, err
}

func (r *RoomsRepoImpl) List(ctx context.Context) ([]domain.Room, error) {
	const q = `SELECT ` + roomCols + ` FROM rooms ORDER BY room_number`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rooms []domain.Room
	for rows.Next() {
		var rm domain.Room
		if err := rows.Scan(&rm.ID, &rm.RoomNumber, &rm.Status, &rm.CreatedAt, &rm.UpdatedAt); err != nil {
			return nil, err
		}
		rooms = append(rooms, rm)
	}
	return rooms, rows.Err()
}

func (r *RoomsRepoImpl) SetStatus(ctx context.Context, roomNumber string, status domain.RoomStatus) error {
	const q = `UPDATE rooms SET status = $2, updated_at = now() WHERE room_number = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, q, roomNumber, status)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *RoomsRepoImpl) BulkUpsert(ctx context.Context, upserts []domain.RoomUpsert) (int, error) {
	if len(upserts) == 0 {
		return 0, nil
	}
	// The conflict branch only fires on a real status change, so a cycle over
	// unchanged data leaves every room row untouched.
	const q = `
		INSERT INTO rooms (room_number, status)
		VALUES ($1, $2)
		ON CONFLICT (room_number) DO UPDATE SET
			status = EXCLUDED.status,
			updated_at = now()
		WHERE rooms.status IS DISTINCT FROM EXCLUDED.status`

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	batch := &pgx.Batch{}
	for _, u := range upserts {
		batch.Queue(q, u.RoomNumber, u.Status)
	}
	return len(upserts), r.pool.SendBatch(ctx, batch).Close()
}

func (r *RoomsRepoImpl) DeleteNotIn(ctx context.Context, active []string) (int64, error) {
	const q = `DELETE FROM rooms WHERE NOT (room_number = ANY($1))`
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if active == nil {
		active = []string{}
	}
	result, err := r.pool.Exec(ctx, q, active)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

func (r *RoomsRepoImpl) Counts(ctx context.Context) (int, int, error) {
	const q = `SELECT count(*), count(*) FILTER (WHERE status = 'occupied') FROM rooms`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var total, occupied int
	err := r.pool.QueryRow(ctx, q).Scan(&total, &occupied)
	return total, occupied, err
}
