package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ulule/limiter/v3"
)

const (
	// DefaultAITimeout bounds one enrichment call
	DefaultAITimeout = 8 * time.Second
	// MaxAITimeout is the largest enrichment timeout accepted from the environment
	MaxAITimeout = 30 * time.Second
	// DefaultRateLimit is the ulule formatted rate applied to decision routes
	DefaultRateLimit = "10-S"
)

// Config holds application configuration
type Config struct {
	ServerPort      string
	FrontendURL     string
	EnableHSTS      bool
	OpenAIKey       string
	AIProvider      string
	AIModel         string
	AIBaseURL       string
	AITimeout       time.Duration
	RateLimit       string
	RedisURL        string
	ServerDebugMode bool
	OTELEnabled     bool
	OTELEndpoint    string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	aiTimeout, err := getEnvDuration("AI_TIMEOUT", DefaultAITimeout)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		FrontendURL:     getEnv("FRONTEND_URL", "http://localhost:3000"),
		EnableHSTS:      getEnvBool("ENABLE_HSTS", false),
		OpenAIKey:       getEnv("OPENAI_API_KEY", ""),
		AIProvider:      getEnv("AI_PROVIDER", "openai"),
		AIModel:         getEnv("AI_MODEL", getEnv("OPENAI_MODEL", "gpt-4o-mini")),
		AIBaseURL:       getEnv("AI_BASE_URL", "https://api.openai.com/v1"),
		AITimeout:       aiTimeout,
		RateLimit:       getEnv("RATE_LIMIT", DefaultRateLimit),
		RedisURL:        getEnv("REDIS_URL", ""),
		ServerDebugMode: getEnvBool("SERVER_DEBUG_MODE", false),
		OTELEnabled:     getEnvBool("OTEL_ENABLED", false),
		OTELEndpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail later at startup
func (c *Config) Validate() error {
	if c.AITimeout <= 0 || c.AITimeout > MaxAITimeout {
		return fmt.Errorf("AI_TIMEOUT must be greater than 0 and at most %s, got %s", MaxAITimeout, c.AITimeout)
	}
	if _, err := limiter.NewRateFromFormatted(c.RateLimit); err != nil {
		return fmt.Errorf("RATE_LIMIT %q is invalid: %w", c.RateLimit, err)
	}
	if c.ServerPort == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}
	return nil
}

// AllowedOrigins splits FrontendURL into the CORS origin list
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, origin := range strings.Split(c.FrontendURL, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

// EnrichmentEnabled reports whether an enrichment credential is configured
func (c *Config) EnrichmentEnabled() bool {
	return c.OpenAIKey != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s is not a valid duration: %w", key, err)
	}
	return d, nil
}
