package ai

import (
	"strings"
	"testing"
)

func TestBuildRewritePrompt(t *testing.T) {
	t.Parallel()

	prompt, err := buildRewritePrompt(sampleRequest(), sampleBase())
	if err != nil {
		t.Fatalf("buildRewritePrompt() error = %v", err)
	}

	wantLines := []string{
		"Goal: Finish the most important thing",
		"Time minutes: 45",
		"Energy: 3/5",
		`"title":"Reply to emails"`,
		`"deadline":"2024-03-16"`,
		"Selected: Plan next 30 min",
		"Base rationale: Pick \"Plan next 30 min\"",
		`Base alternatives: [{"title":"Finish slides"`,
		"Confidence: low",
		"do NOT change which task is recommended",
	}
	for _, want := range wantLines {
		if !strings.Contains(prompt, want) {
			t.Errorf("Expected prompt to contain %q\nprompt:\n%s", want, prompt)
		}
	}
}

func TestSanitizeAPIKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{in: "", want: ""},
		{in: "short", want: RedactedValue},
		{in: "sk-abcdefghijkl", want: "sk-a" + RedactedValue + "ijkl"},
	}
	for _, tt := range tests {
		if got := SanitizeAPIKey(tt.in); got != tt.want {
			t.Errorf("SanitizeAPIKey(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestSanitizePrompt_Truncates(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("a", MaxPreviewLength*2)
	got := SanitizePrompt(long, false)
	if len(got) > MaxPreviewLength+len("...") {
		t.Errorf("Expected preview capped near %d, got length %d", MaxPreviewLength, len(got))
	}
	if SanitizeResponse("", true) != "" {
		t.Error("Expected empty preview for empty input")
	}
}
