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

// MenuHandler serves the room-service menu. Guests read it, staff manage it.
type MenuHandler struct {
	Menu postgres.MenuRepo
}

func NewMenuHandler(menu postgres.MenuRepo) *MenuHandler {
	return &MenuHandler{Menu: menu}
}

// GuestRoutes exposes only available items.
func (h *MenuHandler) GuestRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.listAvailable)
	return r
}

func (h *MenuHandler) StaffRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.listAll)
	r.Post("/", h.create)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	return r
}

func (h *MenuHandler) listAvailable(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, true)
}

func (h *MenuHandler) listAll(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, false)
}

func (h *MenuHandler) list(w http.ResponseWriter, r *http.Request, availableOnly bool) {
	items, err := h.Menu.List(r.Context(), availableOnly)
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to list menu items", "error", err)
		response.InternalError(w, "Failed to list menu items")
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{"items": items, "count": len(items)})
}

func (h *MenuHandler) create(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeMenuItem(w, r)
	if !ok {
		return
	}

	item, err := h.Menu.Create(r.Context(), req)
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to create menu item", "error", err)
		response.InternalError(w, "Failed to create menu item")
		return
	}
	response.JSON(w, http.StatusCreated, item)
}

func (h *MenuHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "invalid menu item id")
		return
	}
	req, ok := decodeMenuItem(w, r)
	if !ok {
		return
	}

	item, err := h.Menu.Update(r.Context(), id, req)
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to update menu item", "error", err)
		response.InternalError(w, "Failed to update menu item")
		return
	}
	if item == nil {
		response.NotFound(w, "menu item not found")
		return
	}
	response.JSON(w, http.StatusOK, item)
}

func (h *MenuHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "invalid menu item id")
		return
	}

	if err := h.Menu.Delete(r.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.NotFound(w, "menu item not found")
			return
		}
		logger.ErrorContext(r.Context(), "Failed to delete menu item", "error", err)
		response.InternalError(w, "Failed to delete menu item")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decodeMenuItem(w http.ResponseWriter, r *http.Request) (*domain.MenuItemRequest, bool) {
	var req domain.MenuItemRequest
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
