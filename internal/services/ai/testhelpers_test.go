package ai

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/benvon/smart-decide/internal/models"
)

// completionBody renders a chat completion response carrying content in its first choice
func completionBody(t *testing.T, content string) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 1700000000,
		"model":   DefaultOpenAIModel,
		"choices": []map[string]any{
			{
				"index":         0,
				"finish_reason": "stop",
				"message": map[string]any{
					"role":    "assistant",
					"content": content,
				},
			},
		},
		"usage": map[string]any{"prompt_tokens": 10, "completion_tokens": 10, "total_tokens": 20},
	})
	if err != nil {
		t.Fatalf("Failed to encode completion: %v", err)
	}
	return body
}

// newFakeServer starts a chat completions endpoint backed by handler
func newFakeServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

// respondWithContent answers every request with a completion whose text is content
func respondWithContent(t *testing.T, content string) http.HandlerFunc {
	body := completionBody(t, content)
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body) // Ignore error in test
	}
}

// newTestProvider points an OpenAI provider at srv
func newTestProvider(srv *httptest.Server, timeout time.Duration) *OpenAIProvider {
	return NewOpenAIProvider(ProviderConfig{
		APIKey:  "sk-test-key",
		BaseURL: srv.URL + "/v1/",
		Model:   "test-model",
		Timeout: timeout,
	})
}

func sampleRequest() models.DecisionContext {
	return models.DecisionContext{
		Goal:        "Finish the most important thing",
		TimeMinutes: 45,
		Energy:      3,
		Tasks: []models.TaskCandidate{
			{Title: "Finish slides", Impact: 5, Effort: 3, Anxiety: 2},
			{Title: "Reply to emails", Impact: 4, Effort: 2, Anxiety: 2, Deadline: "2024-03-16"},
			{Title: "Plan next 30 min", Impact: 3, Effort: 1, Anxiety: 1},
		},
	}
}

func sampleBase() models.Recommendation {
	return models.Recommendation{
		SelectedTaskTitle: "Plan next 30 min",
		Rationale:         `Pick "Plan next 30 min" because it scores highest for your goal: high impact relative to effort given current energy level 3/5.`,
		Confidence:        models.ConfidenceLow,
		Alternatives: []models.Alternative{
			{Title: "Finish slides", Why: "High impact, but may cost more energy/time."},
			{Title: "Reply to emails", Why: "High impact, but may cost more energy/time."},
		},
	}
}
