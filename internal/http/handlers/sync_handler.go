package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/diagnosis/luxstay-hotel/internal/http/response"
	syncer "github.com/diagnosis/luxstay-hotel/internal/sync"
)

// SyncHandler exposes the reconciler to staff: read its status or kick off a
// cycle outside the regular interval.
type SyncHandler struct {
	Reconciler *syncer.Reconciler
}

func NewSyncHandler(r *syncer.Reconciler) *SyncHandler {
	return &SyncHandler{Reconciler: r}
}

func (h *SyncHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/status", h.status)
	r.Post("/run", h.run)
	return r
}

func (h *SyncHandler) status(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, h.Reconciler.Status())
}

func (h *SyncHandler) run(w http.ResponseWriter, r *http.Request) {
	err := h.Reconciler.RunCycle(r.Context())
	switch {
	case errors.Is(err, syncer.ErrCycleRunning):
		// Another cycle holds the guard; report the live status instead.
		response.JSON(w, http.StatusConflict, h.Reconciler.Status())
	case errors.Is(err, syncer.ErrSourceUnavailable):
		response.WriteError(w, http.StatusServiceUnavailable, "source database unreachable", response.CodeSourceUnavailable)
	default:
		response.JSON(w, http.StatusOK, h.Reconciler.Status())
	}
}
