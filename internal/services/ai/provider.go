package ai

import (
	"context"
	"time"

	"github.com/benvon/smart-decide/internal/models"
	"go.uber.org/zap"
)

// RationaleProvider rewrites the presentation of a recommendation through an external text-generation service
type RationaleProvider interface {
	// RewriteRecommendation sends the request context and base recommendation to the service and
	// returns the raw text completion, which is expected to hold a single JSON object
	RewriteRecommendation(ctx context.Context, req models.DecisionContext, base models.Recommendation) (string, error)
}

// ProviderConfig is the explicit configuration handed to provider factories
type ProviderConfig struct {
	APIKey    string
	BaseURL   string
	Model     string
	Timeout   time.Duration
	Logger    *zap.Logger
	DebugMode bool
}

// ProviderFactory creates a rationale provider from its configuration
type ProviderFactory func(cfg ProviderConfig) (RationaleProvider, error)

// ProviderRegistry stores available providers by name
type ProviderRegistry struct {
	providers map[string]ProviderFactory
}

// NewProviderRegistry creates an empty provider registry
func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{
		providers: make(map[string]ProviderFactory),
	}
}

// DefaultRegistry returns a registry with the built-in providers registered
func DefaultRegistry() *ProviderRegistry {
	registry := NewProviderRegistry()
	RegisterOpenAI(registry)
	return registry
}

// Register registers a provider factory
func (r *ProviderRegistry) Register(name string, factory ProviderFactory) {
	r.providers[name] = factory
}

// GetProvider builds the named provider
func (r *ProviderRegistry) GetProvider(name string, cfg ProviderConfig) (RationaleProvider, error) {
	factory, ok := r.providers[name]
	if !ok {
		return nil, &ErrProviderNotFound{Name: name}
	}

	return factory(cfg)
}

// ErrProviderNotFound is returned when a provider is not registered
type ErrProviderNotFound struct {
	Name string
}

func (e *ErrProviderNotFound) Error() string {
	return "AI provider not found: " + e.Name
}
