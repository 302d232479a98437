package request

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const requestIDContextKey contextKey = "request_id"

// RequestIDHeader carries the correlation ID in and out of the service
const RequestIDHeader = "X-Request-ID"

// RequestIDContextKey returns the context key used for the request ID. Exposed for tests that inject other values.
func RequestIDContextKey() contextKey { return requestIDContextKey }

// ClientIP extracts the client IP from the request, respecting X-Forwarded-For and X-Real-IP.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		if len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	return r.RemoteAddr
}

// WithRequestID returns a context carrying the request ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDContextKey, id)
}

// RequestIDFromContext returns the request ID, or "" if missing or of the wrong type.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDContextKey).(string)
	return id
}
