package handlers

import (
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/diagnosis/luxstay-hotel/internal/domain"
	"github.com/diagnosis/luxstay-hotel/internal/guestname"
	"github.com/diagnosis/luxstay-hotel/internal/http/response"
	"github.com/diagnosis/luxstay-hotel/internal/platform/password"
	"github.com/diagnosis/luxstay-hotel/internal/platform/token"
	"github.com/diagnosis/luxstay-hotel/internal/repo/postgres"
	"github.com/diagnosis/luxstay-hotel/pkg/logger"
)

// GuestAuthHandler owns the three guest entry points: full-name login, the
// QR room + last-name login, and session validation. Both credential paths
// end in the same one-way verification against the stored hash.
type GuestAuthHandler struct {
	Rooms       postgres.RoomsRepo
	Credentials postgres.CredentialsRepo
	Sessions    postgres.SessionsRepo
	SessionTTL  time.Duration
}

func NewGuestAuthHandler(rooms postgres.RoomsRepo, credentials postgres.CredentialsRepo, sessions postgres.SessionsRepo, sessionTTL time.Duration) *GuestAuthHandler {
	return &GuestAuthHandler{Rooms: rooms, Credentials: credentials, Sessions: sessions, SessionTTL: sessionTTL}
}

func (h *GuestAuthHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/login", h.login)
	r.Post("/login/qr", h.loginQR)
	r.Post("/session", h.session)
	return r
}

func (h *GuestAuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var in domain.GuestLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}
	rawPassword := in.Password
	in.Normalize()
	if err := in.Validate(); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	if !h.roomOccupied(w, r, in.RoomNumber) {
		return
	}

	cred, err := h.Credentials.FindActive(r.Context(), in.GuestName, in.RoomNumber)
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to look up credential", "error", err)
		response.InternalError(w, "Failed to check credentials")
		return
	}
	if cred == nil {
		response.Unauthorized(w, "invalid guest or room")
		return
	}

	if !verifyAny(guestname.PasswordCandidates(rawPassword), cred.PasswordHash) {
		response.Unauthorized(w, "invalid password")
		return
	}

	h.mintSession(w, r, cred.GuestName, in.RoomNumber)
}

func (h *GuestAuthHandler) loginQR(w http.ResponseWriter, r *http.Request) {
	var in domain.RoomLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}
	rawPassword := in.Password
	in.Normalize()
	if err := in.Validate(); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	if !h.roomOccupied(w, r, in.RoomNumber) {
		return
	}

	creds, err := h.Credentials.ListActiveByRoom(r.Context(), in.RoomNumber)
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to list room credentials", "error", err)
		response.InternalError(w, "Failed to check credentials")
		return
	}

	var matches []domain.GuestCredential
	for _, c := range creds {
		if guestname.LastName(c.GuestName) == in.LastName {
			matches = append(matches, c)
		}
	}
	if len(matches) == 0 {
		response.Unauthorized(w, "invalid guest or room")
		return
	}
	// Several guests in the room can share a surname; pick the smallest
	// canonical name so repeated logins always resolve to the same one.
	sort.Slice(matches, func(i, j int) bool { return matches[i].GuestName < matches[j].GuestName })
	cred := matches[0]

	candidates := guestname.LoginPasswordCandidates(rawPassword)

	// The hash alone is not enough here: the entered password must also match
	// the documented room_lastname scheme, or a stale hash minted under an
	// older scheme could keep accepting a password that no longer follows
	// the contract.
	expected := guestname.SchemePassword(in.RoomNumber, cred.GuestName)
	schemeMatch := false
	for _, c := range candidates {
		if c == expected {
			schemeMatch = true
			break
		}
	}
	if !schemeMatch || !verifyAny(candidates, cred.PasswordHash) {
		response.Unauthorized(w, "invalid password")
		return
	}

	h.mintSession(w, r, cred.GuestName, in.RoomNumber)
}

func (h *GuestAuthHandler) session(w http.ResponseWriter, r *http.Request) {
	tok := bearerSessionID(r)
	if tok == "" {
		response.Unauthorized(w, "session token is required")
		return
	}

	session, err := h.Sessions.GetBySessionID(r.Context(), tok)
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to look up session", "error", err)
		response.InternalError(w, "Failed to check session")
		return
	}
	if session == nil {
		response.Unauthorized(w, "invalid or expired session")
		return
	}

	expiresAt := time.Now().Add(h.SessionTTL)
	if err := h.Sessions.ExtendExpiry(r.Context(), session.SessionID, expiresAt); err != nil {
		logger.WarnContext(r.Context(), "Failed to extend session expiry", "error", err)
		expiresAt = session.ExpiresAt
	}

	response.JSON(w, http.StatusOK, domain.GuestSessionResponse{
		SessionID:  session.SessionID,
		GuestName:  session.GuestName,
		RoomNumber: session.RoomNumber,
		ExpiresAt:  expiresAt,
	})
}

// roomOccupied writes the 403 itself when the room is missing or vacant. A
// missing room reads the same as a vacant one so the response never reveals
// which rooms exist.
func (h *GuestAuthHandler) roomOccupied(w http.ResponseWriter, r *http.Request, roomNumber string) bool {
	room, err := h.Rooms.GetByNumber(r.Context(), roomNumber)
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to look up room", "error", err)
		response.InternalError(w, "Failed to check room")
		return false
	}
	if room == nil || room.Status != domain.RoomOccupied {
		response.WriteError(w, http.StatusForbidden, "no guest registered for this room", response.CodeRoomNotReady)
		return false
	}
	return true
}

func (h *GuestAuthHandler) mintSession(w http.ResponseWriter, r *http.Request, guestName, roomNumber string) {
	sessionID, err := token.NewSessionID()
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to generate session id", "error", err)
		response.InternalError(w, "Failed to create session")
		return
	}

	session := &domain.GuestSession{
		SessionID:  sessionID,
		Source:     domain.SourceApp,
		GuestName:  guestName,
		RoomNumber: roomNumber,
		ExpiresAt:  time.Now().Add(h.SessionTTL),
	}
	if err := h.Sessions.Create(r.Context(), session); err != nil {
		logger.ErrorContext(r.Context(), "Failed to persist session", "error", err)
		response.InternalError(w, "Failed to create session")
		return
	}

	response.JSON(w, http.StatusOK, domain.GuestSessionResponse{
		SessionID:  session.SessionID,
		GuestName:  session.GuestName,
		RoomNumber: session.RoomNumber,
		ExpiresAt:  session.ExpiresAt,
	})
}

func verifyAny(candidates []string, hash string) bool {
	for _, c := range candidates {
		if password.Verify(c, hash) {
			return true
		}
	}
	return false
}

func bearerSessionID(r *http.Request) string {
	if tok := r.URL.Query().Get("session_token"); tok != "" {
		return tok
	}
	if authz := r.Header.Get("Authorization"); len(authz) > 7 && authz[:7] == "Bearer " {
		return authz[7:]
	}
	return ""
}
