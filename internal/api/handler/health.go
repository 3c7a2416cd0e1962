package handler

import (
	"net/http"
	"time"

	"github.com/swirlhq/aio-assistant/internal/api/response"
	"github.com/swirlhq/aio-assistant/internal/domain"
)

// HealthCheck returns a simple liveness response.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]string{
		"status": "ok",
	})
}

// ReadyCheck reports readiness including store connectivity.
func ReadyCheck(repo domain.ContextRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := repo.Ping(r.Context()); err != nil {
			response.JSON(w, http.StatusServiceUnavailable, map[string]string{
				"status":    "unhealthy",
				"database":  "disconnected",
				"error":     err.Error(),
				"timestamp": time.Now().UTC().Format(time.RFC3339),
			})
			return
		}

		response.OK(w, map[string]string{
			"status":    "healthy",
			"database":  "connected",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
}
