package middleware

import (
	"net/http"
	"strconv"

	logpkg "github.com/benvon/smart-decide/internal/logger"
	"github.com/benvon/smart-decide/internal/request"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"
	"go.uber.org/zap"
)

const (
	// DefaultRateLimit is applied when no rate is configured
	DefaultRateLimit = "10-S"
	rateLimitPrefix  = "smart-decide:ratelimit"
)

// NewRateLimitStore returns a Redis backed store when a client is given and an in-process store otherwise
func NewRateLimitStore(redisClient *redis.Client) (limiter.Store, error) {
	if redisClient == nil {
		return memory.NewStoreWithOptions(limiter.StoreOptions{Prefix: rateLimitPrefix}), nil
	}
	return redisstore.NewStoreWithOptions(redisClient, limiter.StoreOptions{Prefix: rateLimitPrefix})
}

// RateLimit returns middleware limiting each client IP to rate (ulule format, e.g. "10-S").
// Store errors fail open so a Redis outage never blocks decisions.
func RateLimit(store limiter.Store, rate string, logger *zap.Logger) (func(http.Handler) http.Handler, error) {
	if rate == "" {
		rate = DefaultRateLimit
	}
	parsed, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	instance := limiter.New(store, parsed)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := request.ClientIP(r)
			lctx, err := instance.Get(r.Context(), key)
			if err != nil {
				logger.Warn("rate_limit_store_error",
					zap.String("error", logpkg.SanitizeError(err)),
					zap.String("path", logpkg.SanitizePath(r.URL.Path)),
				)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(lctx.Limit, 10))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(lctx.Remaining, 10))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(lctx.Reset, 10))

			if lctx.Reached {
				respondErrorJSON(w, r, http.StatusTooManyRequests, "Too Many Requests", "Rate limit exceeded, retry later", logger)
				return
			}

			next.ServeHTTP(w, r)
		})
	}, nil
}
