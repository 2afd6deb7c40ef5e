package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/diagnosis/luxstay-hotel/internal/domain"
	"github.com/diagnosis/luxstay-hotel/internal/guestname"
	"github.com/diagnosis/luxstay-hotel/internal/http/response"
	"github.com/diagnosis/luxstay-hotel/internal/repo/postgres"
	"github.com/diagnosis/luxstay-hotel/pkg/logger"
)

type RoomsHandler struct {
	Rooms       postgres.RoomsRepo
	Credentials postgres.CredentialsRepo
}

func NewRoomsHandler(rooms postgres.RoomsRepo, credentials postgres.CredentialsRepo) *RoomsHandler {
	return &RoomsHandler{Rooms: rooms, Credentials: credentials}
}

func (h *RoomsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.list)
	r.Get("/{roomNumber}", h.get)
	return r
}

func (h *RoomsHandler) list(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.Rooms.List(r.Context())
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to list rooms", "error", err)
		response.InternalError(w, "Failed to list rooms")
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{"rooms": rooms, "count": len(rooms)})
}

type roomDetail struct {
	domain.Room
	Guests []string `json:"guests"`
}

func (h *RoomsHandler) get(w http.ResponseWriter, r *http.Request) {
	roomNumber := guestname.NormalizeRoomNumber(chi.URLParam(r, "roomNumber"))

	room, err := h.Rooms.GetByNumber(r.Context(), roomNumber)
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to look up room", "error", err)
		response.InternalError(w, "Failed to look up room")
		return
	}
	if room == nil {
		response.NotFound(w, "room not found")
		return
	}

	creds, err := h.Credentials.ListActiveByRoom(r.Context(), roomNumber)
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to list room guests", "error", err)
		response.InternalError(w, "Failed to look up room")
		return
	}
	guests := make([]string, 0, len(creds))
	for _, c := range creds {
		guests = append(guests, c.GuestName)
	}

	response.JSON(w, http.StatusOK, roomDetail{Room: *room, Guests: guests})
}
