package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/diagnosis/luxstay-hotel/internal/domain"
	"github.com/diagnosis/luxstay-hotel/internal/http/handlers"
	"github.com/diagnosis/luxstay-hotel/internal/platform/password"
)

// ---------- Mocks ----------

type mockRoomsRepo struct {
	byNumber map[string]domain.Room
}

func (m *mockRoomsRepo) GetByNumber(_ context.Context, roomNumber string) (*domain.Room, error) {
	if r, ok := m.byNumber[roomNumber]; ok {
		return &r, nil
	}
	return nil, nil
}

func (m *mockRoomsRepo) List(_ context.Context) ([]domain.Room, error) { return nil, nil }

func (m *mockRoomsRepo) SetStatus(_ context.Context, _ string, _ domain.RoomStatus) error {
	return nil
}

func (m *mockRoomsRepo) BulkUpsert(_ context.Context, upserts []domain.RoomUpsert) (int, error) {
	return len(upserts), nil
}

func (m *mockRoomsRepo) DeleteNotIn(_ context.Context, _ []string) (int64, error) { return 0, nil }

func (m *mockRoomsRepo) Counts(_ context.Context) (int, int, error) { return 0, 0, nil }

type mockCredentialsRepo struct {
	creds []domain.GuestCredential
}

func (m *mockCredentialsRepo) FindActive(_ context.Context, guestName, roomNumber string) (*domain.GuestCredential, error) {
	for _, c := range m.creds {
		if c.GuestName == guestName && c.RoomNumber == roomNumber && c.Status == domain.CredentialActive {
			return &c, nil
		}
	}
	return nil, nil
}

func (m *mockCredentialsRepo) ListActiveByRoom(_ context.Context, roomNumber string) ([]domain.GuestCredential, error) {
	var out []domain.GuestCredential
	for _, c := range m.creds {
		if c.RoomNumber == roomNumber && c.Status == domain.CredentialActive {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockCredentialsRepo) ListActiveBySource(_ context.Context, _ domain.Source) ([]domain.GuestCredential, error) {
	return nil, nil
}

func (m *mockCredentialsRepo) Upsert(_ context.Context, _ domain.CredentialUpsert) error { return nil }

func (m *mockCredentialsRepo) BulkUpsert(_ context.Context, upserts []domain.CredentialUpsert) (int, error) {
	return len(upserts), nil
}

func (m *mockCredentialsRepo) Deactivate(_ context.Context, _, _ string, _ domain.Source) (int64, error) {
	return 0, nil
}

type mockSessionsRepo struct {
	created     []domain.GuestSession
	bySessionID map[string]domain.GuestSession
}

func newMockSessionsRepo() *mockSessionsRepo {
	return &mockSessionsRepo{bySessionID: make(map[string]domain.GuestSession)}
}

func (m *mockSessionsRepo) Create(_ context.Context, s *domain.GuestSession) error {
	m.created = append(m.created, *s)
	m.bySessionID[s.SessionID] = *s
	return nil
}

func (m *mockSessionsRepo) GetBySessionID(_ context.Context, sessionID string) (*domain.GuestSession, error) {
	if s, ok := m.bySessionID[sessionID]; ok && s.ExpiresAt.After(time.Now()) {
		return &s, nil
	}
	return nil, nil
}

func (m *mockSessionsRepo) ExtendExpiry(_ context.Context, sessionID string, expiresAt time.Time) error {
	s, ok := m.bySessionID[sessionID]
	if !ok {
		return nil
	}
	s.ExpiresAt = expiresAt
	m.bySessionID[sessionID] = s
	return nil
}

func (m *mockSessionsRepo) BulkUpsert(_ context.Context, upserts []domain.SessionUpsert) (int, error) {
	return len(upserts), nil
}

func (m *mockSessionsRepo) DeleteSyncedNotIn(_ context.Context, _ []string) (int64, error) {
	return 0, nil
}

func (m *mockSessionsRepo) DeleteExpired(_ context.Context) (int64, error) { return 0, nil }

func (m *mockSessionsRepo) DeleteByGuestRoom(_ context.Context, _, _ string, _ domain.Source) (int64, error) {
	return 0, nil
}

// ---------- Helpers ----------

func mustHash(t *testing.T, plaintext string) string {
	t.Helper()
	h, err := password.Hash(plaintext)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return h
}

func activeCred(name, room, hash string) domain.GuestCredential {
	return domain.GuestCredential{
		Source:       domain.SourceHotelSync,
		GuestName:    name,
		RoomNumber:   room,
		PasswordHash: hash,
		Status:       domain.CredentialActive,
	}
}

func occupiedRooms(numbers ...string) *mockRoomsRepo {
	m := &mockRoomsRepo{byNumber: make(map[string]domain.Room)}
	for _, n := range numbers {
		m.byNumber[n] = domain.Room{RoomNumber: n, Status: domain.RoomOccupied}
	}
	return m
}

func postJSON(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// ---------- Tests ----------

func TestGuestLogin(t *testing.T) {
	hash := mustHash(t, "101_agrawal")

	newHandler := func() (*handlers.GuestAuthHandler, *mockSessionsRepo) {
		sessions := newMockSessionsRepo()
		h := handlers.NewGuestAuthHandler(
			occupiedRooms("101"),
			&mockCredentialsRepo{creds: []domain.GuestCredential{activeCred("MR. AGRAWAL", "101", hash)}},
			sessions,
			time.Hour,
		)
		return h, sessions
	}

	t.Run("exact password", func(t *testing.T) {
		h, sessions := newHandler()
		rec := postJSON(t, h.Routes(), "/login", map[string]string{
			"guest_name": "AGRAWAL MR. 25357", "room_number": "101", "password": "101_agrawal",
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
		}
		var resp domain.GuestSessionResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp.GuestName != "MR. AGRAWAL" || resp.RoomNumber != "101" {
			t.Errorf("response = %+v", resp)
		}
		if len(sessions.created) != 1 || sessions.created[0].Source != domain.SourceApp {
			t.Errorf("sessions created = %+v, want one app session", sessions.created)
		}
	})

	t.Run("spaces fold to underscores", func(t *testing.T) {
		h, _ := newHandler()
		rec := postJSON(t, h.Routes(), "/login", map[string]string{
			"guest_name": "mr. agrawal", "room_number": "101", "password": "  101  AGRAWAL ",
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("legacy case-preserved password", func(t *testing.T) {
		legacyHash := mustHash(t, "101_AGRAWAL")
		sessions := newMockSessionsRepo()
		h := handlers.NewGuestAuthHandler(
			occupiedRooms("101"),
			&mockCredentialsRepo{creds: []domain.GuestCredential{activeCred("MR. AGRAWAL", "101", legacyHash)}},
			sessions,
			time.Hour,
		)
		rec := postJSON(t, h.Routes(), "/login", map[string]string{
			"guest_name": "MR. AGRAWAL", "room_number": "101", "password": "101_AGRAWAL",
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		h, _ := newHandler()
		rec := postJSON(t, h.Routes(), "/login", map[string]string{
			"guest_name": "MR. AGRAWAL", "room_number": "101", "password": "101_kumar",
		})
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("unknown guest", func(t *testing.T) {
		h, _ := newHandler()
		rec := postJSON(t, h.Routes(), "/login", map[string]string{
			"guest_name": "MR. KUMAR", "room_number": "101", "password": "101_kumar",
		})
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("vacant room", func(t *testing.T) {
		sessions := newMockSessionsRepo()
		rooms := &mockRoomsRepo{byNumber: map[string]domain.Room{
			"101": {RoomNumber: "101", Status: domain.RoomAvailable},
		}}
		h := handlers.NewGuestAuthHandler(rooms, &mockCredentialsRepo{}, sessions, time.Hour)
		rec := postJSON(t, h.Routes(), "/login", map[string]string{
			"guest_name": "MR. AGRAWAL", "room_number": "101", "password": "101_agrawal",
		})
		if rec.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want 403", rec.Code)
		}
	})

	t.Run("missing fields", func(t *testing.T) {
		h, _ := newHandler()
		rec := postJSON(t, h.Routes(), "/login", map[string]string{"room_number": "101"})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})
}

func TestGuestLoginQR(t *testing.T) {
	agrawalHash := mustHash(t, "101_agrawal")

	t.Run("last name resolves the guest", func(t *testing.T) {
		sessions := newMockSessionsRepo()
		h := handlers.NewGuestAuthHandler(
			occupiedRooms("101"),
			&mockCredentialsRepo{creds: []domain.GuestCredential{activeCred("MR. AGRAWAL", "101", agrawalHash)}},
			sessions,
			time.Hour,
		)
		rec := postJSON(t, h.Routes(), "/login/qr", map[string]string{
			"room_number": "101", "last_name": "agrawal", "password": "101 agrawal",
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
		}
		var resp domain.GuestSessionResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp.GuestName != "MR. AGRAWAL" {
			t.Errorf("guest = %q, want MR. AGRAWAL", resp.GuestName)
		}
	})

	t.Run("duplicate last names pick the smallest canonical name", func(t *testing.T) {
		// Both guests share the surname and therefore the same scheme
		// password; the resolved identity must be deterministic.
		sharedHash := mustHash(t, "101_agrawal")
		sessions := newMockSessionsRepo()
		h := handlers.NewGuestAuthHandler(
			occupiedRooms("101"),
			&mockCredentialsRepo{creds: []domain.GuestCredential{
				activeCred("MS. RITA AGRAWAL", "101", sharedHash),
				activeCred("MR. AGRAWAL", "101", sharedHash),
			}},
			sessions,
			time.Hour,
		)
		rec := postJSON(t, h.Routes(), "/login/qr", map[string]string{
			"room_number": "101", "last_name": "AGRAWAL", "password": "101_agrawal",
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
		}
		var resp domain.GuestSessionResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp.GuestName != "MR. AGRAWAL" {
			t.Errorf("guest = %q, want MR. AGRAWAL (lexicographically first)", resp.GuestName)
		}
	})

	t.Run("password outside the scheme is rejected even when the hash matches", func(t *testing.T) {
		staleHash := mustHash(t, "oldpassword")
		sessions := newMockSessionsRepo()
		h := handlers.NewGuestAuthHandler(
			occupiedRooms("101"),
			&mockCredentialsRepo{creds: []domain.GuestCredential{activeCred("MR. AGRAWAL", "101", staleHash)}},
			sessions,
			time.Hour,
		)
		rec := postJSON(t, h.Routes(), "/login/qr", map[string]string{
			"room_number": "101", "last_name": "AGRAWAL", "password": "oldpassword",
		})
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("no guest with that last name", func(t *testing.T) {
		sessions := newMockSessionsRepo()
		h := handlers.NewGuestAuthHandler(
			occupiedRooms("101"),
			&mockCredentialsRepo{creds: []domain.GuestCredential{activeCred("MR. AGRAWAL", "101", agrawalHash)}},
			sessions,
			time.Hour,
		)
		rec := postJSON(t, h.Routes(), "/login/qr", map[string]string{
			"room_number": "101", "last_name": "KUMAR", "password": "101_kumar",
		})
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
	})
}

func TestGuestSessionRefresh(t *testing.T) {
	sessions := newMockSessionsRepo()
	sessions.bySessionID["abc123"] = domain.GuestSession{
		SessionID:  "abc123",
		Source:     domain.SourceApp,
		GuestName:  "MR. AGRAWAL",
		RoomNumber: "101",
		ExpiresAt:  time.Now().Add(time.Minute),
	}
	h := handlers.NewGuestAuthHandler(occupiedRooms("101"), &mockCredentialsRepo{}, sessions, time.Hour)

	t.Run("valid session extends expiry", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/session", nil)
		req.Header.Set("Authorization", "Bearer abc123")
		rec := httptest.NewRecorder()
		h.Routes().ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
		}
		if got := sessions.bySessionID["abc123"].ExpiresAt; time.Until(got) < 50*time.Minute {
			t.Errorf("expiry %v was not extended", got)
		}
	})

	t.Run("unknown session", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/session", nil)
		req.Header.Set("Authorization", "Bearer nope")
		rec := httptest.NewRecorder()
		h.Routes().ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("missing token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/session", nil)
		rec := httptest.NewRecorder()
		h.Routes().ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
	})
}
