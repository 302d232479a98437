package ai

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/benvon/smart-decide/internal/decision"
	"github.com/benvon/smart-decide/internal/models"
)

// rewritePayload holds the fields read from a completion. Each field is kept raw so it can be
// checked on its own; anything else in the object, such as a selected title, is ignored.
type rewritePayload struct {
	Rationale    json.RawMessage `json:"rationale"`
	Alternatives json.RawMessage `json:"alternatives"`
	Confidence   json.RawMessage `json:"confidence"`
}

// parseRewrite decodes the completion text into a payload. The text must be a JSON object,
// optionally surrounded by other text.
func parseRewrite(content string) (rewritePayload, error) {
	raw := []byte(strings.TrimSpace(content))
	if len(raw) > 0 && raw[0] == '[' {
		return rewritePayload{}, ErrInvalidPayload
	}
	if len(raw) > 0 && raw[0] != '{' {
		start := bytes.IndexByte(raw, '{')
		end := bytes.LastIndexByte(raw, '}')
		if start == -1 || end <= start {
			return rewritePayload{}, ErrInvalidPayload
		}
		raw = raw[start : end+1]
	}
	if len(raw) == 0 || raw[0] != '{' {
		return rewritePayload{}, ErrInvalidPayload
	}

	var payload rewritePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return rewritePayload{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return payload, nil
}

// apply returns base with every field that passed validation replaced. The selected title always
// comes from base. rejected lists the fields that kept their base value.
func (p rewritePayload) apply(base models.Recommendation) (rec models.Recommendation, rejected []string) {
	rec = base

	if rationale, ok := validRationale(p.Rationale); ok {
		rec.Rationale = rationale
	} else {
		rejected = append(rejected, "rationale")
	}

	if alternatives, ok := validAlternatives(p.Alternatives); ok {
		rec.Alternatives = alternatives
	} else {
		rejected = append(rejected, "alternatives")
	}

	if confidence, ok := validConfidence(p.Confidence); ok {
		rec.Confidence = confidence
	} else {
		rejected = append(rejected, "confidence")
	}

	rec.SelectedTaskTitle = base.SelectedTaskTitle
	return rec, rejected
}

func validRationale(raw json.RawMessage) (string, bool) {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

func validAlternatives(raw json.RawMessage) ([]models.Alternative, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, false
	}

	var alternatives []models.Alternative
	if err := json.Unmarshal(trimmed, &alternatives); err != nil {
		return nil, false
	}
	if len(alternatives) > decision.MaxAlternatives {
		return nil, false
	}

	out := make([]models.Alternative, 0, len(alternatives))
	for _, alt := range alternatives {
		title := strings.TrimSpace(alt.Title)
		why := strings.TrimSpace(alt.Why)
		if title == "" || why == "" {
			return nil, false
		}
		out = append(out, models.Alternative{Title: title, Why: why})
	}
	return out, true
}

func validConfidence(raw json.RawMessage) (models.Confidence, bool) {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return "", false
	}
	c := models.Confidence(s)
	return c, c.Valid()
}
