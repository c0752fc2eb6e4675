package api

import (
	"context"
	"net/http"
	"time"

	respond "github.com/homeboard/homeboard/internal/api/respond"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	HealthPing(ctx context.Context) error
}

// HealthHandler handles health check endpoints
type HealthHandler struct {
	store Pinger
}

func NewHealthHandler(store Pinger) *HealthHandler { return &HealthHandler{store: store} }

// CheckHealth handles GET /api/health
// Always returns 200; body reports the service status.
func (h *HealthHandler) CheckHealth(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// CheckStoreHealth handles GET /api/health/db
func (h *HealthHandler) CheckStoreHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.HealthPing(ctx); err != nil {
		respond.WriteJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":  "unhealthy",
			"message": err.Error(),
		})
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"status": "healthy"})
}
