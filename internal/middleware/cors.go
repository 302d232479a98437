package middleware

import (
	"net/http"
	"strings"

	"github.com/rs/cors"
	"go.uber.org/zap"
)

// DefaultCORSOrigin is used when no origin is configured
const DefaultCORSOrigin = "http://localhost:3000"

// CORS creates middleware that answers preflight requests and sets CORS headers for allowed origins
func CORS(allowedOrigins []string, logger *zap.Logger) func(http.Handler) http.Handler {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{DefaultCORSOrigin}
	}
	if logger != nil {
		logger.Info("cors_configured", zap.Strings("allowed_origins", allowedOrigins))
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: false,
		MaxAge:           86400, // Cache preflight for 24 hours
	})
	return c.Handler
}

// CORSFromEnv parses FRONTEND_URL (comma-separated origins) into CORS middleware
func CORSFromEnv(frontendURL string, logger *zap.Logger) func(http.Handler) http.Handler {
	var origins []string
	seen := make(map[string]bool)
	for _, origin := range strings.Split(frontendURL, ",") {
		trimmed := strings.TrimSpace(origin)
		if trimmed == "" || seen[trimmed] {
			continue
		}
		seen[trimmed] = true
		origins = append(origins, trimmed)
	}
	return CORS(origins, logger)
}
