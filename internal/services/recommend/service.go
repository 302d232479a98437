// Package recommend runs one decision: the deterministic engine first, then best-effort enrichment.
package recommend

import (
	"context"

	"github.com/benvon/smart-decide/internal/decision"
	"github.com/benvon/smart-decide/internal/models"
	"github.com/benvon/smart-decide/internal/request"
	"github.com/benvon/smart-decide/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Enricher rewrites the explanation of a base recommendation. Implementations must not fail:
// on any problem they return base unchanged.
type Enricher interface {
	Enrich(ctx context.Context, req models.DecisionContext, base models.Recommendation) models.Recommendation
	Enabled() bool
}

// Service produces recommendations
type Service struct {
	engine   *decision.Engine
	enricher Enricher
	tracer   trace.Tracer
	logger   *zap.Logger
}

// Option configures a Service
type Option func(*Service)

// WithEnricher sets the enrichment stage. Without it the engine output is returned as is.
func WithEnricher(e Enricher) Option {
	return func(s *Service) { s.enricher = e }
}

// WithTracer overrides the tracer used for decision spans
func WithTracer(t trace.Tracer) Option {
	return func(s *Service) { s.tracer = t }
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService creates a recommendation service around engine
func NewService(engine *decision.Engine, opts ...Option) *Service {
	if engine == nil {
		engine = decision.NewEngine()
	}
	s := &Service{
		engine: engine,
		tracer: telemetry.Tracer(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EnrichmentEnabled reports whether an enrichment stage is configured
func (s *Service) EnrichmentEnabled() bool {
	return s.enricher != nil && s.enricher.Enabled()
}

// Recommend ranks the tasks in req and returns the winner with its explanation.
// The only error is decision.ErrNoTasks.
func (s *Service) Recommend(ctx context.Context, req models.DecisionContext) (models.Recommendation, error) {
	base, err := s.decide(ctx, req)
	if err != nil {
		return models.Recommendation{}, err
	}

	s.logger.Info("decision_computed",
		zap.Int("task_count", len(req.Tasks)),
		zap.String("confidence", string(base.Confidence)),
		zap.Bool("enrichment_enabled", s.EnrichmentEnabled()),
		zap.String("request_id", request.RequestIDFromContext(ctx)),
	)

	if !s.EnrichmentEnabled() {
		return base, nil
	}
	return s.enrich(ctx, req, base), nil
}

func (s *Service) decide(ctx context.Context, req models.DecisionContext) (models.Recommendation, error) {
	_, span := s.tracer.Start(ctx, "decision.engine",
		trace.WithAttributes(attribute.Int("decision.task_count", len(req.Tasks))),
	)
	defer span.End()

	base, err := s.engine.Decide(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return models.Recommendation{}, err
	}
	span.SetAttributes(attribute.String("decision.confidence", string(base.Confidence)))
	return base, nil
}

func (s *Service) enrich(ctx context.Context, req models.DecisionContext, base models.Recommendation) models.Recommendation {
	ctx, span := s.tracer.Start(ctx, "decision.enrich")
	defer span.End()

	rec := s.enricher.Enrich(ctx, req, base)
	// The selected task is never the enricher's to change.
	rec.SelectedTaskTitle = base.SelectedTaskTitle
	return rec
}
