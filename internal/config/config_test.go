package config

import (
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

var envMutex sync.Mutex

// All config-related env vars that might be modified
var allConfigEnvVars = []string{
	"SERVER_PORT",
	"FRONTEND_URL",
	"ENABLE_HSTS",
	"OPENAI_API_KEY",
	"AI_PROVIDER",
	"AI_MODEL",
	"OPENAI_MODEL",
	"AI_BASE_URL",
	"AI_TIMEOUT",
	"RATE_LIMIT",
	"REDIS_URL",
	"SERVER_DEBUG_MODE",
	"OTEL_ENABLED",
	"OTEL_EXPORTER_OTLP_ENDPOINT",
}

// withEnv sets exactly envVars (unsetting every other config var) while fn runs.
// Load reads the process environment, so the whole body holds envMutex.
func withEnv(t *testing.T, envVars map[string]string, fn func()) {
	t.Helper()

	envMutex.Lock()
	defer envMutex.Unlock()

	originalEnv := make(map[string]string)
	for _, key := range allConfigEnvVars {
		originalEnv[key] = os.Getenv(key)
		_ = os.Unsetenv(key) // Ignore error in test setup
	}
	for key, value := range envVars {
		_ = os.Setenv(key, value) // Ignore error in test setup
	}

	defer func() {
		for key, value := range originalEnv {
			if value != "" {
				_ = os.Setenv(key, value) // Ignore error in test cleanup
			} else {
				_ = os.Unsetenv(key) // Ignore error in test cleanup
			}
		}
	}()

	fn()
}

func TestLoad(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		envVars     map[string]string
		expectError bool
		validate    func(*testing.T, *Config)
	}{
		{
			name:    "default values",
			envVars: map[string]string{},
			validate: func(t *testing.T, cfg *Config) {
				if cfg.ServerPort != "8080" {
					t.Errorf("Expected default ServerPort to be '8080', got '%s'", cfg.ServerPort)
				}
				if cfg.FrontendURL != "http://localhost:3000" {
					t.Errorf("Expected default FrontendURL to be 'http://localhost:3000', got '%s'", cfg.FrontendURL)
				}
				if cfg.AIModel != "gpt-4o-mini" {
					t.Errorf("Expected default AIModel to be 'gpt-4o-mini', got '%s'", cfg.AIModel)
				}
				if cfg.AITimeout != DefaultAITimeout {
					t.Errorf("Expected default AITimeout to be %s, got %s", DefaultAITimeout, cfg.AITimeout)
				}
				if cfg.RateLimit != DefaultRateLimit {
					t.Errorf("Expected default RateLimit to be %q, got %q", DefaultRateLimit, cfg.RateLimit)
				}
				if cfg.RedisURL != "" {
					t.Errorf("Expected RedisURL to default to empty, got '%s'", cfg.RedisURL)
				}
				if cfg.EnrichmentEnabled() {
					t.Error("Expected enrichment disabled without OPENAI_API_KEY")
				}
			},
		},
		{
			name: "explicit values",
			envVars: map[string]string{
				"SERVER_PORT":    "9090",
				"OPENAI_API_KEY": "sk-test-key",
				"AI_TIMEOUT":     "2500ms",
				"RATE_LIMIT":     "100-M",
				"REDIS_URL":      "redis://localhost:6379/1",
				"ENABLE_HSTS":    "true",
			},
			validate: func(t *testing.T, cfg *Config) {
				if cfg.ServerPort != "9090" {
					t.Errorf("Expected ServerPort to be '9090', got '%s'", cfg.ServerPort)
				}
				if cfg.AITimeout != 2500*time.Millisecond {
					t.Errorf("Expected AITimeout 2.5s, got %s", cfg.AITimeout)
				}
				if !cfg.EnrichmentEnabled() {
					t.Error("Expected enrichment enabled with OPENAI_API_KEY")
				}
				if !cfg.EnableHSTS {
					t.Error("Expected EnableHSTS true")
				}
			},
		},
		{
			name:    "OPENAI_MODEL fallback",
			envVars: map[string]string{"OPENAI_MODEL": "gpt-4.1-mini"},
			validate: func(t *testing.T, cfg *Config) {
				if cfg.AIModel != "gpt-4.1-mini" {
					t.Errorf("Expected AIModel 'gpt-4.1-mini', got '%s'", cfg.AIModel)
				}
			},
		},
		{
			name:    "AI_MODEL wins over OPENAI_MODEL",
			envVars: map[string]string{"OPENAI_MODEL": "gpt-4.1-mini", "AI_MODEL": "gpt-4o"},
			validate: func(t *testing.T, cfg *Config) {
				if cfg.AIModel != "gpt-4o" {
					t.Errorf("Expected AIModel 'gpt-4o', got '%s'", cfg.AIModel)
				}
			},
		},
		{
			name:        "malformed timeout",
			envVars:     map[string]string{"AI_TIMEOUT": "soon"},
			expectError: true,
		},
		{
			name:        "timeout above limit",
			envVars:     map[string]string{"AI_TIMEOUT": "31s"},
			expectError: true,
		},
		{
			name:        "negative timeout",
			envVars:     map[string]string{"AI_TIMEOUT": "-1s"},
			expectError: true,
		},
		{
			name:        "malformed rate",
			envVars:     map[string]string{"RATE_LIMIT": "lots"},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var (
				cfg *Config
				err error
			)
			withEnv(t, tt.envVars, func() {
				cfg, err = Load()
			})

			if tt.expectError {
				if err == nil {
					t.Error("Expected error but got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if cfg == nil {
				t.Fatal("Config is nil")
			}
			if tt.validate != nil {
				tt.validate(t, cfg)
			}
		})
	}
}

func TestConfig_AllowedOrigins(t *testing.T) {
	t.Parallel()

	cfg := &Config{FrontendURL: " https://a.example.com ,https://b.example.com,, "}
	want := []string{"https://a.example.com", "https://b.example.com"}
	if diff := cmp.Diff(want, cfg.AllowedOrigins()); diff != "" {
		t.Errorf("AllowedOrigins() mismatch (-want +got):\n%s", diff)
	}
}

func TestGetEnvBool(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		value        string
		defaultValue bool
		want         bool
	}{
		{name: "true", value: "true", want: true},
		{name: "1", value: "1", want: true},
		{name: "yes", value: "yes", want: true},
		{name: "false", value: "false", defaultValue: true, want: false},
		{name: "unset uses default", value: "", defaultValue: true, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var got bool
			withEnv(t, map[string]string{"ENABLE_HSTS": tt.value}, func() {
				got = getEnvBool("ENABLE_HSTS", tt.defaultValue)
			})
			if got != tt.want {
				t.Errorf("getEnvBool(%q, %v) = %v, want %v", tt.value, tt.defaultValue, got, tt.want)
			}
		})
	}
}
