package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/diagnosis/luxstay-hotel/internal/domain"
)

type OrdersRepo interface {
	// Create inserts the order and its line items in one transaction.
	Create(ctx context.Context, order *domain.Order) (*domain.Order, error)
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	ListByRoom(ctx context.Context, roomNumber string, limit, offset int) ([]domain.Order, error)
	List(ctx context.Context, status domain.OrderStatus, limit, offset int) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) (*domain.Order, error)
	// RevenueByDay aggregates delivered-order totals for reporting.
	RevenueByDay(ctx context.Context, since time.Time) ([]domain.RevenueRow, error)
}

type OrdersRepoImpl struct{ pool *pgxpool.Pool }

func NewOrdersRepo(pool *pgxpool.Pool) *OrdersRepoImpl { return &OrdersRepoImpl{pool: pool} }

const orderCols = `id, order_number, room_number, guest_name, status, notes, total_cents, created_at, updated_at`

func (r *OrdersRepoImpl) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	const insertOrder = `
		INSERT INTO orders (order_number, room_number, guest_name, status, notes, total_cents)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`
	if err := tx.QueryRow(ctx, insertOrder,
		order.OrderNumber, order.RoomNumber, order.GuestName, order.Status, order.Notes, order.TotalCents,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt); err != nil {
		return nil, err
	}

	const insertItem = `
		INSERT INTO order_items (order_id, menu_item_id, name, price_cents, quantity)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	for i := range order.Items {
		it := &order.Items[i]
		if err := tx.QueryRow(ctx, insertItem,
			order.ID, it.MenuItemID, it.Name, it.PriceCents, it.Quantity,
		).Scan(&it.ID); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *OrdersRepoImpl) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	const q = `SELECT ` + orderCols + ` FROM orders WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var o domain.Order
	err := r.pool.QueryRow(ctx, q, id).Scan(
		&o.ID, &o.OrderNumber, &o.RoomNumber, &o.GuestName, &o.Status, &o.Notes, &o.TotalCents, &o.CreatedAt, &o.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrdersRepoImpl) ListByRoom(ctx context.Context, roomNumber string, limit, offset int) ([]domain.Order, error) {
	const q = `SELECT ` + orderCols + ` FROM orders
		WHERE room_number = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`
	return r.list(ctx, q, roomNumber, clampLimit(limit), clampOffset(offset))
}

func (r *OrdersRepoImpl) List(ctx context.Context, status domain.OrderStatus, limit, offset int) ([]domain.Order, error) {
	const q = `SELECT ` + orderCols + ` FROM orders
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`
	return r.list(ctx, q, string(status), clampLimit(limit), clampOffset(offset))
}

func (r *OrdersRepoImpl) list(ctx context.Context, q string, args ...any) ([]domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(
			&o.ID, &o.OrderNumber, &o.RoomNumber, &o.GuestName, &o.Status, &o.Notes, &o.TotalCents, &o.CreatedAt, &o.UpdatedAt,
		); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range orders {
		if err := r.loadItems(ctx, &orders[i]); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (r *OrdersRepoImpl) loadItems(ctx context.Context, o *domain.Order) error {
	const q = `SELECT id, menu_item_id, name, price_cents, quantity
		FROM order_items WHERE order_id = $1 ORDER BY id`
	rows, err := r.pool.Query(ctx, q, o.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.ID, &it.MenuItemID, &it.Name, &it.PriceCents, &it.Quantity); err != nil {
			return err
		}
		o.Items = append(o.Items, it)
	}
	return rows.Err()
}

func (r *OrdersRepoImpl) UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) (*domain.Order, error) {
	const q = `
		UPDATE orders SET status = $2, updated_at = now()
		WHERE id = $1
		RETURNING ` + orderCols
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var o domain.Order
	err := r.pool.QueryRow(ctx, q, id, status).Scan(
		&o.ID, &o.OrderNumber, &o.RoomNumber, &o.GuestName, &o.Status, &o.Notes, &o.TotalCents, &o.CreatedAt, &o.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return &o, err
}

func (r *OrdersRepoImpl) RevenueByDay(ctx context.Context, since time.Time) ([]domain.RevenueRow, error) {
	const q = `
		SELECT date_trunc('day', created_at)::date AS day,
		       count(*) AS orders,
		       COALESCE(sum(total_cents), 0) AS revenue_cents
		FROM orders
		WHERE status = 'delivered' AND created_at >= $1
		GROUP BY day
		ORDER BY day DESC`
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.RevenueRow
	for rows.Next() {
		var row domain.RevenueRow
		if err := rows.Scan(&row.Day, &row.Orders, &row.RevenueCents); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return 20
	}
	return limit
}

func clampOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
