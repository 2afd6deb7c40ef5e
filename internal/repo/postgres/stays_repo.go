package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/diagnosis/luxstay-hotel/internal/domain"
)

// ErrStayConflict is returned when the partial unique indexes reject a
// check-in: the room or the phone already has an active stay. The index, not
// the application, decides the winner of a concurrent check-in.
var ErrStayConflict = errors.New("room or guest already has an active stay")

type StaysRepo interface {
	CheckIn(ctx context.Context, guestName, phone, roomNumber string) (*domain.ActiveStay, error)
	FindActiveByRoom(ctx context.Context, roomNumber string) (*domain.ActiveStay, error)
	CheckOut(ctx context.Context, id int64) (*domain.ActiveStay, error)
	List(ctx context.Context, status domain.StayStatus, limit, offset int) ([]domain.ActiveStay, error)
	CountActive(ctx context.Context) (int, error)
}

type StaysRepoImpl struct{ pool *pgxpool.Pool }

func NewStaysRepo(pool *pgxpool.Pool) *StaysRepoImpl { return &StaysRepoImpl{pool: pool} }

const stayCols = `id, guest_name, phone, room_number, status, check_in_at, check_out_at`

func (r *StaysRepoImpl) CheckIn(ctx context.Context, guestName, phone, roomNumber string) (*domain.ActiveStay, error) {
	const q = `
		INSERT INTO active_stays (guest_name, phone, room_number, status)
		VALUES ($1, $2, $3, 'active')
		RETURNING ` + stayCols
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var s domain.ActiveStay
	err := r.pool.QueryRow(ctx, q, guestName, phone, roomNumber).Scan(
		&s.ID, &s.GuestName, &s.Phone, &s.RoomNumber, &s.Status, &s.CheckInAt, &s.CheckOutAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return nil, ErrStayConflict
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *StaysRepoImpl) FindActiveByRoom(ctx context.Context, roomNumber string) (*domain.ActiveStay, error) {
	const q = `SELECT ` + stayCols + ` FROM active_stays
		WHERE room_number = $1 AND status = 'active'`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var s domain.ActiveStay
	err := r.pool.QueryRow(ctx, q, roomNumber).Scan(
		&s.ID, &s.GuestName, &s.Phone, &s.RoomNumber, &s.Status, &s.CheckInAt, &s.CheckOutAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return &s, err
}

func (r *StaysRepoImpl) CheckOut(ctx context.Context, id int64) (*domain.ActiveStay, error) {
	const q = `
		UPDATE active_stays SET status = 'checked_out', check_out_at = now()
		WHERE id = $1 AND status = 'active'
		RETURNING ` + stayCols
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var s domain.ActiveStay
	err := r.pool.QueryRow(ctx, q, id).Scan(
		&s.ID, &s.GuestName, &s.Phone, &s.RoomNumber, &s.Status, &s.CheckInAt, &s.CheckOutAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return &s, err
}

func (r *StaysRepoImpl) List(ctx context.Context, status domain.StayStatus, limit, offset int) ([]domain.ActiveStay, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	const q = `SELECT ` + stayCols + ` FROM active_stays
		WHERE ($1 = '' OR status = $1)
		ORDER BY check_in_at DESC
		LIMIT $2 OFFSET $3`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, string(status), limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stays []domain.ActiveStay
	for rows.Next() {
		var s domain.ActiveStay
		if err := rows.Scan(
			&s.ID, &s.GuestName, &s.Phone, &s.RoomNumber, &s.Status, &s.CheckInAt, &s.CheckOutAt,
		); err != nil {
			return nil, err
		}
		stays = append(stays, s)
	}
	return stays, rows.Err()
}

func (r *StaysRepoImpl) CountActive(ctx context.Context) (int, error) {
	const q = `SELECT count(*) FROM active_stays WHERE status = 'active'`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var n int
	err := r.pool.QueryRow(ctx, q).Scan(&n)
	return n, err
}
