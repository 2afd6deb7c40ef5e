package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/diagnosis/luxstay-hotel/internal/domain"
	"github.com/diagnosis/luxstay-hotel/internal/http/middleware"
	"github.com/diagnosis/luxstay-hotel/internal/http/response"
	"github.com/diagnosis/luxstay-hotel/internal/repo/postgres"
	"github.com/diagnosis/luxstay-hotel/pkg/events"
	"github.com/diagnosis/luxstay-hotel/pkg/logger"
)

// HousekeepingHandler stores guest requests and publishes them; the notify
// consumer picks the event up and mails the staff inbox.
type HousekeepingHandler struct {
	Housekeeping postgres.HousekeepingRepo
	Bus          events.Publisher
}

func NewHousekeepingHandler(repo postgres.HousekeepingRepo, bus events.Publisher) *HousekeepingHandler {
	return &HousekeepingHandler{Housekeeping: repo, Bus: bus}
}

func (h *HousekeepingHandler) GuestRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.create)
	return r
}

func (h *HousekeepingHandler) StaffRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.list)
	r.Post("/{id}/resolve", h.resolve)
	return r
}

func (h *HousekeepingHandler) create(w http.ResponseWriter, r *http.Request) {
	session := middleware.GuestSession(r)
	if session == nil {
		response.Unauthorized(w, "guest session required")
		return
	}

	var req domain.HousekeepingCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	created, err := h.Housekeeping.Create(r.Context(), &domain.HousekeepingRequest{
		RoomNumber: session.RoomNumber,
		GuestName:  session.GuestName,
		Category:   req.Category,
		Notes:      req.Notes,
		Status:     domain.HousekeepingOpen,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to create housekeeping request", "error", err)
		response.InternalError(w, "Failed to create request")
		return
	}

	// Publishing is best effort; the request is already stored.
	if h.Bus != nil {
		if err := h.Bus.Publish(r.Context(), events.HousekeepingRequested, events.HousekeepingRequestedEvent{
			RequestID:  created.ID,
			RoomNumber: created.RoomNumber,
			Category:   created.Category,
			Notes:      created.Notes,
			CreatedAt:  created.CreatedAt,
		}); err != nil {
			logger.WarnContext(r.Context(), "Failed to publish housekeeping event", "error", err)
		}
	}

	response.JSON(w, http.StatusCreated, created)
}

func (h *HousekeepingHandler) list(w http.ResponseWriter, r *http.Request) {
	status := domain.HousekeepingStatus(r.URL.Query().Get("status"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	requests, err := h.Housekeeping.List(r.Context(), status, limit, offset)
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to list housekeeping requests", "error", err)
		response.InternalError(w, "Failed to list requests")
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{"requests": requests, "count": len(requests)})
}

func (h *HousekeepingHandler) resolve(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "invalid request id")
		return
	}

	req, err := h.Housekeeping.Resolve(r.Context(), id)
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to resolve housekeeping request", "error", err)
		response.InternalError(w, "Failed to resolve request")
		return
	}
	if req == nil {
		response.NotFound(w, "no open request with that id")
		return
	}
	response.JSON(w, http.StatusOK, req)
}
