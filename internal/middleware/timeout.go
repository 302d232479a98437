package middleware

import (
	"context"
	"net/http"
	"time"
)

const (
	// DefaultRequestTimeout is the default request timeout
	DefaultRequestTimeout = 30 * time.Second
	// enrichmentHeadroom is the time left for the engine and encoding once enrichment gives up
	enrichmentHeadroom = 2 * time.Second

	timeoutBody = `{"success":false,"error":"Service Unavailable","message":"Request timed out"}`
)

// RequestTimeoutFor returns a request timeout that always outlasts the enrichment timeout,
// so an enrichment timeout degrades to the base answer instead of a 503
func RequestTimeoutFor(enrichmentTimeout time.Duration) time.Duration {
	if enrichmentTimeout <= 0 {
		return DefaultRequestTimeout
	}
	if t := enrichmentTimeout + enrichmentHeadroom; t > DefaultRequestTimeout {
		return t
	}
	return DefaultRequestTimeout
}

// Timeout creates a middleware that enforces a timeout on request handlers
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			handler := http.TimeoutHandler(next, timeout, timeoutBody)
			handler.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
