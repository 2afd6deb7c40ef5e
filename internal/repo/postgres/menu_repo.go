package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/diagnosis/luxstay-hotel/internal/domain"
)

type MenuRepo interface {
	Create(ctx context.Context, req *domain.MenuItemRequest) (*domain.MenuItem, error)
	GetByID(ctx context.Context, id int64) (*domain.MenuItem, error)
	GetByIDs(ctx context.Context, ids []int64) ([]domain.MenuItem, error)
	List(ctx context.Context, availableOnly bool) ([]domain.MenuItem, error)
	Update(ctx context.Context, id int64, req *domain.MenuItemRequest) (*domain.MenuItem, error)
	Delete(ctx context.Context, id int64) error
}

type MenuRepoImpl struct{ pool *pgxpool.Pool }

func NewMenuRepo(pool *pgxpool.Pool) *MenuRepoImpl { return &MenuRepoImpl{pool: pool} }

const menuCols = `id, name, description, category, price_cents, available, created_at, updated_at`

func (r *MenuRepoImpl) Create(ctx context.Context, req *domain.MenuItemRequest) (*domain.MenuItem, error) {
	const q = `
		INSERT INTO menu_items (name, description, category, price_cents, available)
		VALUES ($1, $2, $3, $4, COALESCE($5, true))
		RETURNING ` + menuCols
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var m domain.MenuItem
	err := r.pool.QueryRow(ctx, q, req.Name, req.Description, req.Category, req.PriceCents, req.Available).Scan(
		&m.ID, &m.Name, &m.Description, &m.Category, &m.PriceCents, &m.Available, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MenuRepoImpl) GetByID(ctx context.Context, id int64) (*domain.MenuItem, error) {
	const q = `SELECT ` + menuCols + ` FROM menu_items WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var m domain.MenuItem
	err := r.pool.QueryRow(ctx, q, id).Scan(
		&m.ID, &m.Name, &m.Description, &m.Category, &m.PriceCents, &m.Available, &m.CreatedAt, &m.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return &m, err
}

func (r *MenuRepoImpl) GetByIDs(ctx context.Context, ids []int64) ([]domain.MenuItem, error) {
	const q = `SELECT ` + menuCols + ` FROM menu_items WHERE id = ANY($1)`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMenuItems(rows)
}

func (r *MenuRepoImpl) List(ctx context.Context, availableOnly bool) ([]domain.MenuItem, error) {
	const q = `SELECT ` + menuCols + ` FROM menu_items
		WHERE NOT $1 OR available
		ORDER BY category, name`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, availableOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMenuItems(rows)
}

func (r *MenuRepoImpl) Update(ctx context.Context, id int64, req *domain.MenuItemRequest) (*domain.MenuItem, error) {
	const q = `
		UPDATE menu_items
		SET
			name = $2,
			description = $3,
			category = $4,
			price_cents = $5,
			available = COALESCE($6, available),
			updated_at = now()
		WHERE id = $1
		RETURNING ` + menuCols
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var m domain.MenuItem
	err := r.pool.QueryRow(ctx, q, id, req.Name, req.Description, req.Category, req.PriceCents, req.Available).Scan(
		&m.ID, &m.Name, &m.Description, &m.Category, &m.PriceCents, &m.Available, &m.CreatedAt, &m.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return &m, err
}

func (r *MenuRepoImpl) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM menu_items WHERE id = $1`
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

func scanMenuItems(rows pgx.Rows) ([]domain.MenuItem, error) {
	var items []domain.MenuItem
	for rows.Next() {
		var m domain.MenuItem
		if err := rows.Scan(
			&m.ID, &m.Name, &m.Description, &m.Category, &m.PriceCents, &m.Available, &m.CreatedAt, &m.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}
