package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/diagnosis/luxstay-hotel/internal/domain"
	"github.com/diagnosis/luxstay-hotel/internal/http/handlers"
	"github.com/diagnosis/luxstay-hotel/internal/repo/source"
	syncer "github.com/diagnosis/luxstay-hotel/internal/sync"
)

type mockSourceRepo struct {
	rooms    []source.Room
	pingErr  error
	listGate chan struct{} // when set, ListRooms blocks until closed
}

func (m *mockSourceRepo) Ping(_ context.Context) error { return m.pingErr }

func (m *mockSourceRepo) ListRooms(_ context.Context) ([]source.Room, error) {
	if m.listGate != nil {
		<-m.listGate
	}
	return m.rooms, nil
}

func newSyncHandler(src *mockSourceRepo) *handlers.SyncHandler {
	r := syncer.NewReconciler(
		src,
		&mockRoomsRepo{byNumber: make(map[string]domain.Room)},
		newMockSessionsRepo(),
		&mockCredentialsRepo{},
		nil,
		time.Minute, time.Hour,
	)
	return handlers.NewSyncHandler(r)
}

func TestSyncRunEndpoint(t *testing.T) {
	t.Run("manual trigger runs a cycle", func(t *testing.T) {
		h := newSyncHandler(&mockSourceRepo{rooms: []source.Room{{Room: "101"}}})

		req := httptest.NewRequest(http.MethodPost, "/run", nil)
		rec := httptest.NewRecorder()
		h.Routes().ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("unreachable source is 503 not 409", func(t *testing.T) {
		h := newSyncHandler(&mockSourceRepo{pingErr: errors.New("connection refused")})

		req := httptest.NewRequest(http.MethodPost, "/run", nil)
		rec := httptest.NewRecorder()
		h.Routes().ServeHTTP(rec, req)

		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("status = %d, want 503, body = %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("trigger during a running cycle is 409", func(t *testing.T) {
		gate := make(chan struct{})
		src := &mockSourceRepo{listGate: gate, rooms: []source.Room{{Room: "101"}}}
		h := newSyncHandler(src)

		finished := make(chan struct{})
		go func() {
			req := httptest.NewRequest(http.MethodPost, "/run", nil)
			h.Routes().ServeHTTP(httptest.NewRecorder(), req)
			close(finished)
		}()

		// Wait until the first request is inside the gated ListRooms.
		deadline := time.After(2 * time.Second)
		for h.Reconciler.Status().State != syncer.StateRunning {
			select {
			case <-deadline:
				t.Fatal("first cycle never started")
			default:
				time.Sleep(time.Millisecond)
			}
		}

		req := httptest.NewRequest(http.MethodPost, "/run", nil)
		rec := httptest.NewRecorder()
		h.Routes().ServeHTTP(rec, req)

		if rec.Code != http.StatusConflict {
			t.Errorf("status = %d, want 409", rec.Code)
		}

		close(gate)
		<-finished
	})
}

func TestSyncStatusEndpoint(t *testing.T) {
	h := newSyncHandler(&mockSourceRepo{})

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}
