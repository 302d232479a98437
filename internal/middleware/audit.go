package middleware

import (
	"net/http"

	logpkg "github.com/benvon/smart-decide/internal/logger"
	"github.com/benvon/smart-decide/internal/request"
	"go.uber.org/zap"
)

// Audit logs abuse-related responses: rate limit violations and oversized or malformed bodies
func Audit(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			var event string
			switch wrapped.statusCode {
			case http.StatusTooManyRequests:
				event = "rate_limit_violation"
			case http.StatusRequestEntityTooLarge:
				event = "oversized_request"
			case http.StatusUnsupportedMediaType:
				event = "unsupported_media_type"
			default:
				return
			}

			logger.Warn(event,
				zap.String("method", r.Method),
				zap.String("path", logpkg.SanitizePath(r.URL.Path)),
				zap.String("ip", logpkg.SanitizeString(request.ClientIP(r), logpkg.MaxGeneralStringLength)),
				zap.String("request_id", request.RequestIDFromContext(r.Context())),
			)
		})
	}
}
