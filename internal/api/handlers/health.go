package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/wonny/esgpulse/pkg/database"
)

// HealthHandler reports service health. db is optional.
type HealthHandler struct {
	service string
	db      *database.DB
}

// NewHealthHandler creates a health handler
func NewHealthHandler(service string, db *database.DB) *HealthHandler {
	return &HealthHandler{service: service, db: db}
}

// Check returns server health status
// GET /health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	body := map[string]interface{}{
		"status":  "ok",
		"service": h.service,
	}

	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status, err := h.db.HealthCheck(ctx)
		body["database"] = status
		if err != nil {
			body["status"] = "degraded"
			respondJSON(w, http.StatusServiceUnavailable, body)
			return
		}
	}

	respondJSON(w, http.StatusOK, body)
}
