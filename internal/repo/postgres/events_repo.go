package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/diagnosis/luxstay-hotel/internal/domain"
)

type EventsRepo interface {
	Create(ctx context.Context, req *domain.EventRequest) (*domain.Event, error)
	GetByID(ctx context.Context, id int64) (*domain.Event, error)
	List(ctx context.Context, publishedOnly bool) ([]domain.Event, error)
	Update(ctx context.Context, id int64, req *domain.EventRequest) (*domain.Event, error)
	Delete(ctx context.Context, id int64) error
}

type EventsRepoImpl struct{ pool *pgxpool.Pool }

func NewEventsRepo(pool *pgxpool.Pool) *EventsRepoImpl { return &EventsRepoImpl{pool: pool} }

const eventCols = `id, title, description, location, starts_at, ends_at, published, created_at, updated_at`

func (r *EventsRepoImpl) Create(ctx context.Context, req *domain.EventRequest) (*domain.Event, error) {
	const q = `
		INSERT INTO events (title, description, location, starts_at, ends_at, published)
		VALUES ($1, $2, $3, $4, $5, COALESCE($6, false))
		RETURNING ` + eventCols
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var e domain.Event
	err := r.pool.QueryRow(ctx, q, req.Title, req.Description, req.Location, req.StartsAt, req.EndsAt, req.Published).Scan(
		&e.ID, &e.Title, &e.Description, &e.Location, &e.StartsAt, &e.EndsAt, &e.Published, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *EventsRepoImpl) GetByID(ctx context.Context, id int64) (*domain.Event, error) {
	const q = `SELECT ` + eventCols + ` FROM events WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var e domain.Event
	err := r.pool.QueryRow(ctx, q, id).Scan(
		&e.ID, &e.Title, &e.Description, &e.Location, &e.StartsAt, &e.EndsAt, &e.Published, &e.CreatedAt, &e.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return &e, err
}

func (r *EventsRepoImpl) List(ctx context.Context, publishedOnly bool) ([]domain.Event, error) {
	const q = `SELECT ` + eventCols + ` FROM events
		WHERE NOT $1 OR published
		ORDER BY starts_at NULLS LAST, created_at DESC`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, publishedOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Event
	for rows.Next() {
		var e domain.Event
		if err := rows.Scan(
			&e.ID, &e.Title, &e.Description, &e.Location, &e.StartsAt, &e.EndsAt, &e.Published, &e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *EventsRepoImpl) Update(ctx context.Context, id int64, req *domain.EventRequest) (*domain.Event, error) {
	const q = `
		UPDATE events
		SET
			title = $2,
			description = $3,
			location = $4,
			starts_at = $5,
			ends_at = $6,
			published = COALESCE($7, published),
			updated_at = now()
		WHERE id = $1
		RETURNING ` + eventCols
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var e domain.Event
	err := r.pool.QueryRow(ctx, q, id, req.Title, req.Description, req.Location, req.StartsAt, req.EndsAt, req.Published).Scan(
		&e.ID, &e.Title, &e.Description, &e.Location, &e.StartsAt, &e.EndsAt, &e.Published, &e.CreatedAt, &e.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return &e, err
}

func (r *EventsRepoImpl) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM events WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
