package handler

import (
	"context"
	"net/http"
	"time"
)

// HealthCheck is the liveness probe. It always answers 200 with an empty body.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeOK(w)
}

// Ready answers 503 while the database is unreachable.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	// Use a short timeout for health checks
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.health.Ping(ctx); err != nil {
		h.log.Warn("readiness check failed", "error", err)
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
