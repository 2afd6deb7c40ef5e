// Package source reads the externally-owned hotel occupancy table. It is
// strictly read-only: nothing in this service ever writes to the source
// database.
package source

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Room is one row of the source table: a room identifier (numeric or text on
// the hotel side, read as text here) and the guest labels registered to it.
type Room struct {
	Room   string
	Guests []string
}

type Repo interface {
	Ping(ctx context.Context) error
	ListRooms(ctx context.Context) ([]Room, error)
}

type RepoImpl struct {
	pool  *pgxpool.Pool
	table string
}

// NewRepo builds a reader over the configured table. The table name comes
// from configuration, so it is sanitized as an identifier once here rather
// than interpolated per query.
func NewRepo(pool *pgxpool.Pool, table string) *RepoImpl {
	return &RepoImpl{pool: pool, table: pgx.Identifier{table}.Sanitize()}
}

func (r *RepoImpl) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return r.pool.Ping(ctx)
}

func (r *RepoImpl) ListRooms(ctx context.Context) ([]Room, error) {
	q := `SELECT room::text, guests FROM ` + r.table
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Room
	for rows.Next() {
		var room Room
		if err := rows.Scan(&room.Room, &room.Guests); err != nil {
			return nil, err
		}
		out = append(out, room)
	}
	return out, rows.Err()
}
