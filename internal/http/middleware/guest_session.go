package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/diagnosis/luxstay-hotel/internal/domain"
	"github.com/diagnosis/luxstay-hotel/internal/http/response"
	"github.com/diagnosis/luxstay-hotel/internal/repo/postgres"
)

const CtxGuestSession ctxKey = "guest_session"

// RequireGuestSession authenticates guest requests with the opaque bearer
// session id minted at login. Expired or unknown ids read as unauthorized;
// the lookup itself filters out expired rows.
func RequireGuestSession(sessions postgres.SessionsRepo) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok := bearerToken(r)
			if tok == "" {
				response.Unauthorized(w, "session token is required")
				return
			}

			session, err := sessions.GetBySessionID(r.Context(), tok)
			if err != nil {
				response.InternalError(w, "Failed to check session")
				return
			}
			if session == nil {
				response.Unauthorized(w, "invalid or expired session")
				return
			}

			ctx := context.WithValue(r.Context(), CtxGuestSession, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GuestSession(r *http.Request) *domain.GuestSession {
	v := r.Context().Value(CtxGuestSession)
	if v == nil {
		return nil
	}
	if s, ok := v.(*domain.GuestSession); ok {
		return s
	}
	return nil
}

func bearerToken(r *http.Request) string {
	if tok := r.URL.Query().Get("session_token"); tok != "" {
		return tok
	}
	if authz := r.Header.Get("Authorization"); strings.HasPrefix(authz, "Bearer ") {
		return strings.TrimPrefix(authz, "Bearer ")
	}
	return ""
}
