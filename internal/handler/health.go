package handler

import (
	"net/http"

	"github.com/dedsec995/chat-backend/internal/events"
	"github.com/dedsec995/chat-backend/internal/store"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	store      *store.SQLiteStore
	natsClient *events.Client
}

// NewHealthHandler creates a new health handler. natsClient may be nil when
// mirroring is disabled.
func NewHealthHandler(st *store.SQLiteStore, natsClient *events.Client) *HealthHandler {
	return &HealthHandler{
		store:      st,
		natsClient: natsClient,
	}
}

// Root handles GET /
func (h *HealthHandler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Hello From Dedsec995!!",
	})
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"reason": "store unreachable",
		})
		return
	}

	if h.natsClient != nil && !h.natsClient.IsConnected() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"reason": "NATS not connected",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}
