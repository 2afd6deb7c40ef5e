package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/diagnosis/luxstay-hotel/internal/domain"
	"github.com/diagnosis/luxstay-hotel/internal/http/middleware"
	"github.com/diagnosis/luxstay-hotel/internal/http/response"
	"github.com/diagnosis/luxstay-hotel/internal/repo/postgres"
	"github.com/diagnosis/luxstay-hotel/pkg/auth"
	"github.com/diagnosis/luxstay-hotel/pkg/logger"
)

// AdminsHandler manages staff accounts and the staff login. Staff passwords
// use bcrypt; guest passwords live in a separate table with their own scheme.
type AdminsHandler struct {
	Admins    postgres.AdminsRepo
	JWTSecret string
	TokenTTL  int64 // seconds
}

func NewAdminsHandler(admins postgres.AdminsRepo, jwtSecret string, tokenTTLSeconds int64) *AdminsHandler {
	return &AdminsHandler{Admins: admins, JWTSecret: jwtSecret, TokenTTL: tokenTTLSeconds}
}

func (h *AdminsHandler) LoginRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/login", h.login)
	return r
}

// Routes are mounted behind RequireJWT; mutating endpoints additionally
// require the admin role at the router.
func (h *AdminsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/me", h.me)
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	return r
}

func (h *AdminsHandler) login(w http.ResponseWriter, r *http.Request) {
	var req domain.AdminLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	admin, err := h.Admins.FindByEmail(r.Context(), req.Email)
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to look up admin", "error", err)
		response.InternalError(w, "Failed to log in")
		return
	}
	if admin == nil || bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)) != nil {
		response.Unauthorized(w, "invalid email or password")
		return
	}

	ttl := time.Duration(h.TokenTTL) * time.Second
	tok, err := auth.NewAdminToken(admin.ID, admin.Email, string(admin.Role), h.JWTSecret, ttl)
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to sign token", "error", err)
		response.InternalError(w, "Failed to log in")
		return
	}

	response.JSON(w, http.StatusOK, domain.AdminLoginResponse{Token: tok, ExpiresIn: h.TokenTTL, Admin: *admin})
}

func (h *AdminsHandler) me(w http.ResponseWriter, r *http.Request) {
	claims := middleware.Claims(r)
	if claims == nil {
		response.Unauthorized(w, "authentication required")
		return
	}
	admin, err := h.Admins.FindByID(r.Context(), claims.Sub)
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to load admin", "error", err)
		response.InternalError(w, "Failed to load account")
		return
	}
	if admin == nil {
		response.NotFound(w, "account not found")
		return
	}
	response.JSON(w, http.StatusOK, admin)
}

func (h *AdminsHandler) list(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	admins, err := h.Admins.List(r.Context(), limit, offset)
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to list admins", "error", err)
		response.InternalError(w, "Failed to list accounts")
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{"admins": admins, "count": len(admins)})
}

func (h *AdminsHandler) create(w http.ResponseWriter, r *http.Request) {
	var req domain.AdminCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to hash password", "error", err)
		response.InternalError(w, "Failed to create account")
		return
	}

	admin, err := h.Admins.Create(r.Context(), &req, string(hash))
	if err != nil {
		if errors.Is(err, postgres.ErrEmailTaken) {
			response.WriteError(w, http.StatusConflict, "email is already registered", response.CodeEmailExists)
			return
		}
		logger.ErrorContext(r.Context(), "Failed to create admin", "error", err)
		response.InternalError(w, "Failed to create account")
		return
	}
	response.JSON(w, http.StatusCreated, admin)
}

func (h *AdminsHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "invalid account id")
		return
	}

	var req domain.AdminUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}
	if req.Role != nil {
		if _, ok := domain.ParseAdminRole(*req.Role); !ok {
			response.BadRequest(w, "role must be admin or staff")
			return
		}
	}

	admin, err := h.Admins.Update(r.Context(), id, &req)
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to update admin", "error", err)
		response.InternalError(w, "Failed to update account")
		return
	}
	if admin == nil {
		response.NotFound(w, "account not found")
		return
	}
	response.JSON(w, http.StatusOK, admin)
}

func (h *AdminsHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "invalid account id")
		return
	}

	claims := middleware.Claims(r)
	if claims != nil && claims.Sub == id {
		response.BadRequest(w, "cannot delete your own account")
		return
	}

	if err := h.Admins.Delete(r.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.NotFound(w, "account not found")
			return
		}
		logger.ErrorContext(r.Context(), "Failed to delete admin", "error", err)
		response.InternalError(w, "Failed to delete account")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
