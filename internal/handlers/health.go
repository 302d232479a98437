package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	logpkg "github.com/benvon/smart-decide/internal/logger"
)

const healthCheckTimeout = 5 * time.Second

// Pinger is a dependency that can report its reachability
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthChecker handles health check requests
type HealthChecker struct {
	redis             Pinger
	enrichmentEnabled func() bool
}

// HealthOption configures a HealthChecker
type HealthOption func(*HealthChecker)

// WithRedis adds the rate-limit store to extended checks
func WithRedis(p Pinger) HealthOption {
	return func(h *HealthChecker) { h.redis = p }
}

// WithEnrichmentStatus reports whether enrichment is configured. It never affects overall status.
func WithEnrichmentStatus(enabled func() bool) HealthOption {
	return func(h *HealthChecker) { h.enrichmentEnabled = enabled }
}

// NewHealthChecker creates a new health checker
func NewHealthChecker(opts ...HealthOption) *HealthChecker {
	h := &HealthChecker{}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// HealthCheck handles the /healthz endpoint
func (h *HealthChecker) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	statusCode := http.StatusOK

	if r.URL.Query().Get("mode") == "extended" {
		checks := make(map[string]string)

		switch {
		case h.redis == nil:
			checks["redis"] = "not_configured"
		default:
			if err := h.ping(r.Context(), h.redis); err != nil {
				response.Status = "unhealthy"
				checks["redis"] = "unhealthy: " + logpkg.SanitizeError(err)
			} else {
				checks["redis"] = "healthy"
			}
		}

		// Enrichment is best-effort, so its state is informational only
		if h.enrichmentEnabled != nil && h.enrichmentEnabled() {
			checks["enrichment"] = "enabled"
		} else {
			checks["enrichment"] = "disabled"
		}

		response.Checks = checks
		if response.Status == "unhealthy" {
			statusCode = http.StatusServiceUnavailable
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(response) // Headers already sent
}

func (h *HealthChecker) ping(ctx context.Context, p Pinger) error {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()
	return p.Ping(ctx)
}
