package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/diagnosis/luxstay-hotel/internal/domain"
	"github.com/diagnosis/luxstay-hotel/internal/guestname"
	"github.com/diagnosis/luxstay-hotel/internal/http/response"
	"github.com/diagnosis/luxstay-hotel/internal/platform/password"
	"github.com/diagnosis/luxstay-hotel/internal/repo/postgres"
	"github.com/diagnosis/luxstay-hotel/pkg/events"
	"github.com/diagnosis/luxstay-hotel/pkg/logger"
)

// StaysHandler covers the front-desk flow: check a guest in, hand them the
// generated room password, and check them out again. Check-in and check-out
// keep the room row, the credential and the guest sessions consistent.
type StaysHandler struct {
	Stays       postgres.StaysRepo
	Rooms       postgres.RoomsRepo
	Credentials postgres.CredentialsRepo
	Sessions    postgres.SessionsRepo
	Bus         events.Publisher
}

func NewStaysHandler(stays postgres.StaysRepo, rooms postgres.RoomsRepo, credentials postgres.CredentialsRepo, sessions postgres.SessionsRepo, bus events.Publisher) *StaysHandler {
	return &StaysHandler{Stays: stays, Rooms: rooms, Credentials: credentials, Sessions: sessions, Bus: bus}
}

func (h *StaysHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.checkIn)
	r.Get("/", h.list)
	r.Post("/{id}/checkout", h.checkOut)
	return r
}

func (h *StaysHandler) checkIn(w http.ResponseWriter, r *http.Request) {
	var in domain.CheckInRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}
	in.Normalize()
	if err := in.Validate(); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	room, err := h.Rooms.GetByNumber(r.Context(), in.RoomNumber)
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to look up room", "error", err)
		response.InternalError(w, "Failed to check room")
		return
	}
	if room == nil {
		response.NotFound(w, "room not found")
		return
	}

	stay, err := h.Stays.CheckIn(r.Context(), in.GuestName, in.Phone, in.RoomNumber)
	if err != nil {
		if errors.Is(err, postgres.ErrStayConflict) {
			response.WriteError(w, http.StatusConflict, "room or phone already has an active stay", response.CodeStayExists)
			return
		}
		logger.ErrorContext(r.Context(), "Failed to check in", "error", err)
		response.InternalError(w, "Failed to check in")
		return
	}

	// Issue the room_lastname password alongside the stay. Only the hash is
	// stored; the plaintext appears once in this response.
	plaintext := guestname.SchemePassword(in.RoomNumber, in.GuestName)
	hash, err := password.Hash(plaintext)
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to hash guest password", "error", err)
		response.InternalError(w, "Failed to issue credentials")
		return
	}
	err = h.Credentials.Upsert(r.Context(), domain.CredentialUpsert{
		Source:       domain.SourceApp,
		GuestName:    in.GuestName,
		RoomNumber:   in.RoomNumber,
		PasswordHash: hash,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to save guest credential", "error", err)
		response.InternalError(w, "Failed to issue credentials")
		return
	}

	if err := h.Rooms.SetStatus(r.Context(), in.RoomNumber, domain.RoomOccupied); err != nil {
		logger.ErrorContext(r.Context(), "Failed to mark room occupied", "error", err)
	}

	if h.Bus != nil {
		if err := h.Bus.Publish(r.Context(), events.GuestCheckedIn, events.StayEvent{
			StayID:     stay.ID,
			GuestName:  stay.GuestName,
			RoomNumber: stay.RoomNumber,
			At:         stay.CheckInAt,
		}); err != nil {
			logger.WarnContext(r.Context(), "Failed to publish check-in event", "error", err)
		}
	}

	response.JSON(w, http.StatusCreated, domain.CheckInResponse{Stay: *stay, GuestPassword: plaintext})
}

func (h *StaysHandler) checkOut(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "invalid stay id")
		return
	}

	stay, err := h.Stays.CheckOut(r.Context(), id)
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to check out", "error", err)
		response.InternalError(w, "Failed to check out")
		return
	}
	if stay == nil {
		response.NotFound(w, "no active stay with that id")
		return
	}

	// The stay is closed; revoke what the guest was holding. The credential
	// row survives as inactive history, the sessions are simply dropped.
	if _, err := h.Credentials.Deactivate(r.Context(), stay.GuestName, stay.RoomNumber, domain.SourceApp); err != nil {
		logger.ErrorContext(r.Context(), "Failed to deactivate credential", "error", err)
	}
	if _, err := h.Sessions.DeleteByGuestRoom(r.Context(), stay.GuestName, stay.RoomNumber, domain.SourceApp); err != nil {
		logger.ErrorContext(r.Context(), "Failed to delete guest sessions", "error", err)
	}

	remaining, err := h.Credentials.ListActiveByRoom(r.Context(), stay.RoomNumber)
	if err == nil && len(remaining) == 0 {
		if err := h.Rooms.SetStatus(r.Context(), stay.RoomNumber, domain.RoomAvailable); err != nil {
			logger.ErrorContext(r.Context(), "Failed to mark room available", "error", err)
		}
	}

	if h.Bus != nil {
		at := time.Now()
		if stay.CheckOutAt != nil {
			at = *stay.CheckOutAt
		}
		if err := h.Bus.Publish(r.Context(), events.GuestCheckedOut, events.StayEvent{
			StayID:     stay.ID,
			GuestName:  stay.GuestName,
			RoomNumber: stay.RoomNumber,
			At:         at,
		}); err != nil {
			logger.WarnContext(r.Context(), "Failed to publish check-out event", "error", err)
		}
	}

	response.JSON(w, http.StatusOK, stay)
}

func (h *StaysHandler) list(w http.ResponseWriter, r *http.Request) {
	status := domain.StayStatus(r.URL.Query().Get("status"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	stays, err := h.Stays.List(r.Context(), status, limit, offset)
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to list stays", "error", err)
		response.InternalError(w, "Failed to list stays")
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{"stays": stays, "count": len(stays)})
}
