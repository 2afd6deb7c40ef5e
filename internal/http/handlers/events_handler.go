package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"

	"github.com/diagnosis/luxstay-hotel/internal/domain"
	"github.com/diagnosis/luxstay-hotel/internal/http/response"
	"github.com/diagnosis/luxstay-hotel/internal/repo/postgres"
	"github.com/diagnosis/luxstay-hotel/pkg/logger"
)

// EventsHandler serves the hotel events board. Guests see published entries,
// staff manage the full list.
type EventsHandler struct {
	Events postgres.EventsRepo
}

func NewEventsHandler(events postgres.EventsRepo) *EventsHandler {
	return &EventsHandler{Events: events}
}

func (h *EventsHandler) GuestRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.listPublished)
	return r
}

func (h *EventsHandler) StaffRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.listAll)
	r.Post("/", h.create)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	return r
}

func (h *EventsHandler) listPublished(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, true)
}

func (h *EventsHandler) listAll(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, false)
}

func (h *EventsHandler) list(w http.ResponseWriter, r *http.Request, publishedOnly bool) {
	items, err := h.Events.List(r.Context(), publishedOnly)
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to list events", "error", err)
		response.InternalError(w, "Failed to list events")
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{"events": items, "count": len(items)})
}

func (h *EventsHandler) create(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeEvent(w, r)
	if !ok {
		return
	}

	event, err := h.Events.Create(r.Context(), req)
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to create event", "error", err)
		response.InternalError(w, "Failed to create event")
		return
	}
	response.JSON(w, http.StatusCreated, event)
}

func (h *EventsHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "invalid event id")
		return
	}
	req, ok := decodeEvent(w, r)
	if !ok {
		return
	}

	event, err := h.Events.Update(r.Context(), id, req)
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to update event", "error", err)
		response.InternalError(w, "Failed to update event")
		return
	}
	if event == nil {
		response.NotFound(w, "event not found")
		return
	}
	response.JSON(w, http.StatusOK, event)
}

func (h *EventsHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "invalid event id")
		return
	}

	if err := h.Events.Delete(r.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.NotFound(w, "event not found")
			return
		}
		logger.ErrorContext(r.Context(), "Failed to delete event", "error", err)
		response.InternalError(w, "Failed to delete event")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decodeEvent(w http.ResponseWriter, r *http.Request) (*domain.EventRequest, bool) {
	var req domain.EventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return nil, false
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		response.BadRequest(w, err.Error())
		return nil, false
	}
	return &req, true
}
