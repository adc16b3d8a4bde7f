package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// Pinger checks a backing store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports readiness of the credential store.
type HealthHandler struct {
	*Handler
	store Pinger
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(base *Handler, store Pinger) *HealthHandler {
	return &HealthHandler{Handler: base, store: store}
}

// RegisterRoutes registers the readiness route. Liveness is chi's Heartbeat.
func (h *HealthHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/health", h.Ready)
}

// Ready answers 200 when the credential store responds.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	st := h.session.State()
	if err := h.store.Ping(ctx); err != nil {
		JSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "unavailable",
			"store":  err.Error(),
		})
		return
	}
	JSON(w, http.StatusOK, map[string]any{
		"status":          "ok",
		"isAuthenticated": st.IsAuthenticated,
		"isLoading":       st.IsLoading,
	})
}
