package domain

import (
	"fmt"
	"time"

	"github.com/diagnosis/luxstay-hotel/internal/utils"
)

type MenuItem struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	PriceCents  int64     `json:"price_cents"`
	Available   bool      `json:"available"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type MenuItemRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	PriceCents  int64  `json:"price_cents"`
	Available   *bool  `json:"available"`
}

func (r *MenuItemRequest) Normalize() {
	r.Name = utils.NormalizeString(r.Name)
	r.Description = utils.NormalizeString(r.Description)
	r.Category = utils.NormalizeString(r.Category)
}

func (r *MenuItemRequest) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("name is required")
	}
	if r.PriceCents < 0 {
		return fmt.Errorf("price_cents must not be negative")
	}
	return nil
}

type OrderStatus string

const (
	OrderPlaced    OrderStatus = "placed"
	OrderPreparing OrderStatus = "preparing"
	OrderDelivered OrderStatus = "delivered"
	OrderCanceled  OrderStatus = "canceled"
)

func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch OrderStatus(s) {
	case OrderPlaced, OrderPreparing, OrderDelivered, OrderCanceled:
		return OrderStatus(s), true
	default:
		return "", false
	}
}

// Order is a room-service order charged to the room's folio.
type Order struct {
	ID          int64       `json:"id"`
	OrderNumber string      `json:"order_number"`
	RoomNumber  string      `json:"room_number"`
	GuestName   string      `json:"guest_name"`
	Status      OrderStatus `json:"status"`
	Notes       string      `json:"notes"`
	TotalCents  int64       `json:"total_cents"`
	Items       []OrderItem `json:"items"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

type OrderItem struct {
	ID         int64  `json:"id"`
	MenuItemID int64  `json:"menu_item_id"`
	Name       string `json:"name"`
	PriceCents int64  `json:"price_cents"`
	Quantity   int    `json:"quantity"`
}

type OrderItemRequest struct {
	MenuItemID int64 `json:"menu_item_id"`
	Quantity   int   `json:"quantity"`
}

type OrderRequest struct {
	Notes string             `json:"notes"`
	Items []OrderItemRequest `json:"items"`
}

func (r *OrderRequest) Normalize() {
	r.Notes = utils.NormalizeString(r.Notes)
}

func (r *OrderRequest) Validate() error {
	if len(r.Items) == 0 {
		return fmt.Errorf("at least one item is required")
	}
	for _, it := range r.Items {
		if it.MenuItemID <= 0 {
			return fmt.Errorf("menu_item_id is required")
		}
		if it.Quantity <= 0 || it.Quantity > 50 {
			return fmt.Errorf("quantity must be between 1 and 50")
		}
	}
	return nil
}
