package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/benvon/smart-decide/internal/models"
	"github.com/benvon/smart-decide/internal/request"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"go.uber.org/zap"
)

const (
	// DefaultOpenAIModel is the default model to use
	DefaultOpenAIModel = "gpt-4o-mini"
	// DefaultOpenAIBaseURL is the default OpenAI API base URL
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	// DefaultTimeout bounds a single enrichment call; a person is waiting on the response
	DefaultTimeout = 8 * time.Second
	// RewriteTemperature keeps rewrites close to the base text
	RewriteTemperature = 0.2

	systemInstruction = "You rewrite task recommendations. Output strictly valid JSON: a single object with exactly the keys " +
		`"rationale" (string), "alternatives" (array of {"title": string, "why": string}) and "confidence" ("low", "medium" or "high"). ` +
		"No other keys, no prose outside the object."
)

// OpenAIProvider implements RationaleProvider using OpenAI chat completions
type OpenAIProvider struct {
	client    openai.Client
	model     string
	logger    *zap.Logger
	debugMode bool
}

// NewOpenAIProvider creates a provider from explicit configuration
func NewOpenAIProvider(cfg ProviderConfig) *OpenAIProvider {
	model := cfg.Model
	if model == "" {
		model = DefaultOpenAIModel
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	httpClient := &http.Client{
		Timeout: timeout,
	}

	// Retries would let one call outlive the timeout.
	client := openai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(baseURL),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(0),
	)

	return &OpenAIProvider{
		client:    client,
		model:     model,
		logger:    cfg.Logger,
		debugMode: cfg.DebugMode,
	}
}

// Model returns the configured model name
func (p *OpenAIProvider) Model() string {
	return p.model
}

// RewriteRecommendation asks the model to rephrase the rationale, alternatives and confidence
func (p *OpenAIProvider) RewriteRecommendation(ctx context.Context, req models.DecisionContext, base models.Recommendation) (string, error) {
	prompt, err := buildRewritePrompt(req, base)
	if err != nil {
		return "", err
	}

	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(systemInstruction),
		openai.UserMessage(prompt),
	}
	params := openai.ChatCompletionNewParams{
		Model:       shared.ChatModel(p.model),
		Messages:    messages,
		Temperature: openai.Float(RewriteTemperature),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	}

	requestID := request.RequestIDFromContext(ctx)
	if p.logger != nil && p.debugMode {
		p.logger.Debug("llm_api_request",
			zap.String("operation", "rewrite_recommendation"),
			zap.String("model", p.model),
			zap.Int("prompt_length", len(prompt)),
			zap.Int("message_count", len(messages)),
			zap.String("prompt_preview", SanitizePrompt(prompt, true)),
			zap.String("request_id", requestID),
		)
	}

	start := time.Now()
	resp, err := p.client.Chat.Completions.New(ctx, params)
	latency := time.Since(start)
	if err != nil {
		if p.logger != nil && p.debugMode {
			p.logger.Debug("llm_api_error",
				zap.String("operation", "rewrite_recommendation"),
				zap.String("model", p.model),
				zap.Error(err),
				zap.String("request_id", requestID),
				zap.Int64("latency_ms", latency.Milliseconds()),
			)
		}
		if apiErr := ExtractAPIError(err); apiErr != nil {
			return "", fmt.Errorf("failed to rewrite recommendation: %w", apiErr)
		}
		return "", fmt.Errorf("failed to rewrite recommendation: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrNoChoicesInResponse
	}
	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", ErrEmptyContent
	}

	if p.logger != nil && p.debugMode {
		p.logger.Debug("llm_api_response",
			zap.String("operation", "rewrite_recommendation"),
			zap.String("model", p.model),
			zap.Int("response_length", len(content)),
			zap.String("response_preview", SanitizeResponse(content, true)),
			zap.String("request_id", requestID),
			zap.Int64("latency_ms", latency.Milliseconds()),
		)
	}

	return content, nil
}

// buildRewritePrompt embeds the request and the base recommendation as labelled lines
func buildRewritePrompt(req models.DecisionContext, base models.Recommendation) (string, error) {
	tasksJSON, err := json.Marshal(req.Tasks)
	if err != nil {
		return "", fmt.Errorf("failed to encode tasks: %w", err)
	}
	alternativesJSON, err := json.Marshal(base.Alternatives)
	if err != nil {
		return "", fmt.Errorf("failed to encode alternatives: %w", err)
	}

	lines := []string{
		"You are an assistant that rewrites decision recommendations clearly and briefly.",
		"Rules: do NOT change which task is recommended, do NOT invent facts.",
		"Return JSON with keys: rationale (string), alternatives (array of {title, why}), confidence (low|medium|high).",
		fmt.Sprintf("Goal: %s", req.Goal),
		fmt.Sprintf("Time minutes: %d", req.TimeMinutes),
		fmt.Sprintf("Energy: %d/5", req.Energy),
		fmt.Sprintf("Tasks: %s", tasksJSON),
		fmt.Sprintf("Selected: %s", base.SelectedTaskTitle),
		fmt.Sprintf("Base rationale: %s", base.Rationale),
		fmt.Sprintf("Base alternatives: %s", alternativesJSON),
		fmt.Sprintf("Confidence: %s", base.Confidence),
	}
	return strings.Join(lines, "\n"), nil
}

// RegisterOpenAI registers the OpenAI provider with the registry
func RegisterOpenAI(registry *ProviderRegistry) {
	registry.Register("openai", func(cfg ProviderConfig) (RationaleProvider, error) {
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("openai api_key is required")
		}
		return NewOpenAIProvider(cfg), nil
	})
}
