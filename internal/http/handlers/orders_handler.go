package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/diagnosis/luxstay-hotel/internal/domain"
	"github.com/diagnosis/luxstay-hotel/internal/http/middleware"
	"github.com/diagnosis/luxstay-hotel/internal/http/response"
	"github.com/diagnosis/luxstay-hotel/internal/platform/token"
	"github.com/diagnosis/luxstay-hotel/internal/repo/postgres"
	"github.com/diagnosis/luxstay-hotel/pkg/events"
	"github.com/diagnosis/luxstay-hotel/pkg/logger"
)

// OrdersHandler takes room-service orders from guests and lets staff move
// them through the kitchen pipeline. Prices are resolved server side from the
// menu at order time, never trusted from the request.
type OrdersHandler struct {
	Orders postgres.OrdersRepo
	Menu   postgres.MenuRepo
	Bus    events.Publisher
}

func NewOrdersHandler(orders postgres.OrdersRepo, menu postgres.MenuRepo, bus events.Publisher) *OrdersHandler {
	return &OrdersHandler{Orders: orders, Menu: menu, Bus: bus}
}

// GuestRoutes are mounted behind the guest session middleware; the session
// pins the room and name on every order.
func (h *OrdersHandler) GuestRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.place)
	r.Get("/", h.listMine)
	r.Get("/{id}", h.getMine)
	return r
}

func (h *OrdersHandler) StaffRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.list)
	r.Patch("/{id}/status", h.updateStatus)
	return r
}

func (h *OrdersHandler) place(w http.ResponseWriter, r *http.Request) {
	session := middleware.GuestSession(r)
	if session == nil {
		response.Unauthorized(w, "guest session required")
		return
	}

	var req domain.OrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	ids := make([]int64, 0, len(req.Items))
	for _, it := range req.Items {
		ids = append(ids, it.MenuItemID)
	}
	menuItems, err := h.Menu.GetByIDs(r.Context(), ids)
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to load menu items", "error", err)
		response.InternalError(w, "Failed to place order")
		return
	}
	byID := make(map[int64]domain.MenuItem, len(menuItems))
	for _, mi := range menuItems {
		byID[mi.ID] = mi
	}

	order := &domain.Order{
		OrderNumber: token.NewOrderNumber(),
		RoomNumber:  session.RoomNumber,
		GuestName:   session.GuestName,
		Status:      domain.OrderPlaced,
		Notes:       req.Notes,
	}
	for _, it := range req.Items {
		mi, ok := byID[it.MenuItemID]
		if !ok || !mi.Available {
			response.BadRequest(w, "menu item is not available")
			return
		}
		order.Items = append(order.Items, domain.OrderItem{
			MenuItemID: mi.ID,
			Name:       mi.Name,
			PriceCents: mi.PriceCents,
			Quantity:   it.Quantity,
		})
		order.TotalCents += mi.PriceCents * int64(it.Quantity)
	}

	created, err := h.Orders.Create(r.Context(), order)
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to create order", "error", err)
		response.InternalError(w, "Failed to place order")
		return
	}

	if h.Bus != nil {
		if err := h.Bus.Publish(r.Context(), events.OrderCreated, events.OrderCreatedEvent{
			OrderID:     created.ID,
			OrderNumber: created.OrderNumber,
			RoomNumber:  created.RoomNumber,
			GuestName:   created.GuestName,
			TotalCents:  created.TotalCents,
			CreatedAt:   created.CreatedAt,
		}); err != nil {
			logger.WarnContext(r.Context(), "Failed to publish order event", "error", err)
		}
	}

	response.JSON(w, http.StatusCreated, created)
}

func (h *OrdersHandler) listMine(w http.ResponseWriter, r *http.Request) {
	session := middleware.GuestSession(r)
	if session == nil {
		response.Unauthorized(w, "guest session required")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	orders, err := h.Orders.ListByRoom(r.Context(), session.RoomNumber, limit, offset)
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to list orders", "error", err)
		response.InternalError(w, "Failed to list orders")
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{"orders": orders, "count": len(orders)})
}

func (h *OrdersHandler) getMine(w http.ResponseWriter, r *http.Request) {
	session := middleware.GuestSession(r)
	if session == nil {
		response.Unauthorized(w, "guest session required")
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "invalid order id")
		return
	}

	order, err := h.Orders.GetByID(r.Context(), id)
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to load order", "error", err)
		response.InternalError(w, "Failed to load order")
		return
	}
	// A guest only ever sees their own room's orders.
	if order == nil || order.RoomNumber != session.RoomNumber {
		response.NotFound(w, "order not found")
		return
	}
	response.JSON(w, http.StatusOK, order)
}

func (h *OrdersHandler) list(w http.ResponseWriter, r *http.Request) {
	status := domain.OrderStatus(r.URL.Query().Get("status"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	orders, err := h.Orders.List(r.Context(), status, limit, offset)
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to list orders", "error", err)
		response.InternalError(w, "Failed to list orders")
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{"orders": orders, "count": len(orders)})
}

func (h *OrdersHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "invalid order id")
		return
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}
	status, ok := domain.ParseOrderStatus(body.Status)
	if !ok {
		response.BadRequest(w, "status must be one of placed, preparing, delivered, canceled")
		return
	}

	order, err := h.Orders.UpdateStatus(r.Context(), id, status)
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to update order status", "error", err)
		response.InternalError(w, "Failed to update order")
		return
	}
	if order == nil {
		response.NotFound(w, "order not found")
		return
	}

	if h.Bus != nil {
		if err := h.Bus.Publish(r.Context(), events.OrderStatusChanged, events.OrderStatusChangedEvent{
			OrderID:     order.ID,
			OrderNumber: order.OrderNumber,
			Status:      string(order.Status),
			UpdatedAt:   order.UpdatedAt,
		}); err != nil {
			logger.WarnContext(r.Context(), "Failed to publish order status event", "error", err)
		}
	}

	response.JSON(w, http.StatusOK, order)
}
