package handlers

import (
	"context"
	"net/http"
	"time"
)

const serviceName = "socialvibe-api"

// HealthChecker is satisfied by the Postgres and Redis wrappers.
type HealthChecker interface {
	Health(ctx context.Context) error
}

type HealthHandler struct {
	postgres HealthChecker
	redis    HealthChecker
}

func NewHealthHandler(postgres, redis HealthChecker) *HealthHandler {
	return &HealthHandler{postgres: postgres, redis: redis}
}

type HealthResponse struct {
	Status    string            `json:"status"`
	Service   string            `json:"service"`
	Checks    map[string]string `json:"checks"`
	Timestamp string            `json:"timestamp"`
}

// Health reports per-dependency state. Any failing dependency turns the
// overall status unhealthy and the response into a 503.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	response := HealthResponse{
		Status:    "healthy",
		Service:   serviceName,
		Checks:    make(map[string]string),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	status := http.StatusOK

	for name, dep := range map[string]HealthChecker{
		"postgres": h.postgres,
		"redis":    h.redis,
	} {
		if err := dep.Health(ctx); err != nil {
			response.Status = "unhealthy"
			response.Checks[name] = "down: " + err.Error()
			status = http.StatusServiceUnavailable
		} else {
			response.Checks[name] = "ok"
		}
	}

	writeJSON(w, status, response)
}

// Ready gates traffic: the API can only serve requests with both stores up.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if h.postgres.Health(ctx) != nil || h.redis.Health(ctx) != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"ready": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ready": true})
}

func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"alive": true})
}
