package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/diagnosis/luxstay-hotel/internal/domain"
	"github.com/diagnosis/luxstay-hotel/internal/http/response"
	"github.com/diagnosis/luxstay-hotel/internal/repo/postgres"
	"github.com/diagnosis/luxstay-hotel/pkg/logger"
)

type ReportsHandler struct {
	Rooms        postgres.RoomsRepo
	Stays        postgres.StaysRepo
	Orders       postgres.OrdersRepo
	Housekeeping postgres.HousekeepingRepo
}

func NewReportsHandler(rooms postgres.RoomsRepo, stays postgres.StaysRepo, orders postgres.OrdersRepo, housekeeping postgres.HousekeepingRepo) *ReportsHandler {
	return &ReportsHandler{Rooms: rooms, Stays: stays, Orders: orders, Housekeeping: housekeeping}
}

func (h *ReportsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/occupancy", h.occupancy)
	r.Get("/revenue", h.revenue)
	return r
}

func (h *ReportsHandler) occupancy(w http.ResponseWriter, r *http.Request) {
	total, occupied, err := h.Rooms.Counts(r.Context())
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to count rooms", "error", err)
		response.InternalError(w, "Failed to build report")
		return
	}
	activeStays, err := h.Stays.CountActive(r.Context())
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to count stays", "error", err)
		response.InternalError(w, "Failed to build report")
		return
	}
	openRequests, err := h.Housekeeping.CountOpen(r.Context())
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to count housekeeping requests", "error", err)
		response.InternalError(w, "Failed to build report")
		return
	}

	summary := domain.OccupancySummary{
		TotalRooms:    total,
		OccupiedRooms: occupied,
		ActiveStays:   activeStays,
		OpenRequests:  openRequests,
	}
	if total > 0 {
		summary.OccupancyRate = float64(occupied) / float64(total)
	}
	response.JSON(w, http.StatusOK, summary)
}

func (h *ReportsHandler) revenue(w http.ResponseWriter, r *http.Request) {
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))
	if days <= 0 || days > 365 {
		days = 30
	}
	since := time.Now().AddDate(0, 0, -days)

	rows, err := h.Orders.RevenueByDay(r.Context(), since)
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to aggregate revenue", "error", err)
		response.InternalError(w, "Failed to build report")
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{"since": since, "days": rows})
}
