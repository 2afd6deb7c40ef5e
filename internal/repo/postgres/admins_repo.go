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

// ErrEmailTaken is returned when the unique email index rejects a create.
var ErrEmailTaken = errors.New("admin with this email already exists")

type AdminsRepo interface {
	Create(ctx context.Context, req *domain.AdminCreateRequest, passwordHash string) (*domain.Admin, error)
	FindByEmail(ctx context.Context, email string) (*domain.Admin, error)
	FindByID(ctx context.Context, id int64) (*domain.Admin, error)
	List(ctx context.Context, limit, offset int) ([]domain.Admin, error)
	Update(ctx context.Context, id int64, req *domain.AdminUpdateRequest) (*domain.Admin, error)
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)
}

type AdminsRepoImpl struct{ pool *pgxpool.Pool }

func NewAdminsRepo(pool *pgxpool.Pool) *AdminsRepoImpl { return &AdminsRepoImpl{pool: pool} }

const adminCols = `id, email, name, role, password_hash, created_at, updated_at`

func (r *AdminsRepoImpl) Create(ctx context.Context, req *domain.AdminCreateRequest, passwordHash string) (*domain.Admin, error) {
	const q = `
		INSERT INTO admins (email, name, role, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + adminCols
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var a domain.Admin
	err := r.pool.QueryRow(ctx, q, req.Email, req.Name, req.Role, passwordHash).Scan(
		&a.ID, &a.Email, &a.Name, &a.Role, &a.PasswordHash, &a.CreatedAt, &a.UpdatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AdminsRepoImpl) FindByEmail(ctx context.Context, email string) (*domain.Admin, error) {
	const q = `SELECT ` + adminCols + ` FROM admins WHERE email = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var a domain.Admin
	err := r.pool.QueryRow(ctx, q, email).Scan(
		&a.ID, &a.Email, &a.Name, &a.Role, &a.PasswordHash, &a.CreatedAt, &a.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return &a, err
}

func (r *AdminsRepoImpl) FindByID(ctx context.Context, id int64) (*domain.Admin, error) {
	const q = `SELECT ` + adminCols + ` FROM admins WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var a domain.Admin
	err := r.pool.QueryRow(ctx, q, id).Scan(
		&a.ID, &a.Email, &a.Name, &a.Role, &a.PasswordHash, &a.CreatedAt, &a.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return &a, err
}

func (r *AdminsRepoImpl) List(ctx context.Context, limit, offset int) ([]domain.Admin, error) {
	const q = `SELECT ` + adminCols + ` FROM admins
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, clampLimit(limit), clampOffset(offset))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var admins []domain.Admin
	for rows.Next() {
		var a domain.Admin
		if err := rows.Scan(
			&a.ID, &a.Email, &a.Name, &a.Role, &a.PasswordHash, &a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, err
		}
		admins = append(admins, a)
	}
	return admins, rows.Err()
}

func (r *AdminsRepoImpl) Update(ctx context.Context, id int64, req *domain.AdminUpdateRequest) (*domain.Admin, error) {
	const q = `
		UPDATE admins
		SET
			name = COALESCE($2, name),
			role = COALESCE($3, role),
			updated_at = now()
		WHERE id = $1
		RETURNING ` + adminCols
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var a domain.Admin
	err := r.pool.QueryRow(ctx, q, id, req.Name, req.Role).Scan(
		&a.ID, &a.Email, &a.Name, &a.Role, &a.PasswordHash, &a.CreatedAt, &a.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return &a, err
}

func (r *AdminsRepoImpl) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM admins WHERE id = $1`
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

func (r *AdminsRepoImpl) Count(ctx context.Context) (int, error) {
	const q = `SELECT count(*) FROM admins`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var n int
	err := r.pool.QueryRow(ctx, q).Scan(&n)
	return n, err
}
