package ai

import (
	"context"
	"errors"
	"time"

	"github.com/benvon/smart-decide/internal/models"
	"github.com/benvon/smart-decide/internal/request"
	"go.uber.org/zap"
)

// EnrichmentConfig is the configuration injected into the enricher at construction
type EnrichmentConfig struct {
	Provider  string
	APIKey    string
	Model     string
	BaseURL   string
	Timeout   time.Duration
	DebugMode bool
}

// Enricher rewrites the explanation of a recommendation on a best-effort basis.
// It never changes the selected task and never returns an error: every failure
// yields the base recommendation unchanged.
type Enricher struct {
	provider RationaleProvider
	timeout  time.Duration
	logger   *zap.Logger
}

// NewEnricher creates an enricher around a provider. A nil provider makes Enrich a pass-through.
func NewEnricher(provider RationaleProvider, timeout time.Duration, logger *zap.Logger) *Enricher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Enricher{provider: provider, timeout: timeout, logger: logger}
}

// NewEnricherFromConfig resolves the configured provider through the default registry.
// Missing credentials or an unknown provider leave enrichment disabled.
func NewEnricherFromConfig(cfg EnrichmentConfig, logger *zap.Logger) *Enricher {
	return newEnricherFromRegistry(DefaultRegistry(), cfg, logger)
}

func newEnricherFromRegistry(registry *ProviderRegistry, cfg EnrichmentConfig, logger *zap.Logger) *Enricher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.APIKey == "" {
		logger.Info("rationale_enrichment_disabled", zap.String("reason", "api key not configured"))
		return NewEnricher(nil, cfg.Timeout, logger)
	}

	name := cfg.Provider
	if name == "" {
		name = "openai"
	}
	provider, err := registry.GetProvider(name, ProviderConfig{
		APIKey:    cfg.APIKey,
		BaseURL:   cfg.BaseURL,
		Model:     cfg.Model,
		Timeout:   cfg.Timeout,
		Logger:    logger,
		DebugMode: cfg.DebugMode,
	})
	if err != nil {
		logger.Warn("rationale_enrichment_disabled",
			zap.String("provider", name),
			zap.Error(err),
		)
		return NewEnricher(nil, cfg.Timeout, logger)
	}

	logger.Info("rationale_enrichment_enabled",
		zap.String("provider", name),
		zap.String("api_key", SanitizeAPIKey(cfg.APIKey)),
		zap.Duration("timeout", cfg.Timeout),
	)
	return NewEnricher(provider, cfg.Timeout, logger)
}

// Enabled reports whether a provider is configured
func (e *Enricher) Enabled() bool {
	return e != nil && e.provider != nil
}

// Enrich returns base with its rationale, alternatives and confidence possibly rewritten
func (e *Enricher) Enrich(ctx context.Context, req models.DecisionContext, base models.Recommendation) models.Recommendation {
	return e.enrich(ctx, req, base).recommendation
}

// outcome records whether the external rewrite was used or the base was kept
type outcome struct {
	recommendation models.Recommendation
	enriched       bool
	err            error
	rejected       []string
}

func fallback(base models.Recommendation, err error) outcome {
	return outcome{recommendation: base, err: err}
}

func (e *Enricher) enrich(ctx context.Context, req models.DecisionContext, base models.Recommendation) outcome {
	if !e.Enabled() {
		return fallback(base, ErrProviderDisabled)
	}

	res := e.rewrite(ctx, req, base)
	switch {
	case res.err != nil:
		e.logger.Warn("rationale_enrichment_fallback",
			zap.String("reason", FailureKind(res.err)),
			zap.Error(res.err),
			zap.String("request_id", request.RequestIDFromContext(ctx)),
		)
	case len(res.rejected) > 0:
		e.logger.Info("rationale_enrichment_partial",
			zap.Strings("kept_base_fields", res.rejected),
			zap.String("request_id", request.RequestIDFromContext(ctx)),
		)
	}
	return res
}

func (e *Enricher) rewrite(ctx context.Context, req models.DecisionContext, base models.Recommendation) (res outcome) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("rationale_enrichment_panic", zap.Any("error", r))
			res = fallback(base, errors.New("provider panicked"))
		}
	}()

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	content, err := e.provider.RewriteRecommendation(callCtx, req, base)
	if err != nil {
		return fallback(base, err)
	}

	payload, err := parseRewrite(content)
	if err != nil {
		return fallback(base, err)
	}

	rec, rejected := payload.apply(base)
	return outcome{recommendation: rec, enriched: true, rejected: rejected}
}
