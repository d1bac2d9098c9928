package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// Pinger is satisfied by *db.Postgres.
type Pinger interface {
	Health(ctx context.Context) error
}

// HealthHandler reports database readiness.
type HealthHandler struct {
	DB Pinger
}

func (h HealthHandler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.handleHealth)
}

func (h HealthHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status, code, db := "ok", http.StatusOK, "up"
	if err := h.DB.Health(ctx); err != nil {
		status, code, db = "degraded", http.StatusServiceUnavailable, "down"
	}
	writeRawJSON(w, code, map[string]string{
		"status":    status,
		"database":  db,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
