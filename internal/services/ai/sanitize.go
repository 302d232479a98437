package ai

import (
	logpkg "github.com/benvon/smart-decide/internal/logger"
)

const (
	// MaxPreviewLength is the maximum length for preview strings in logs
	MaxPreviewLength = 200
	// RedactedValue is the value used to replace sensitive data
	RedactedValue = "[REDACTED]"
)

// SanitizeAPIKey sanitizes an API key for logging
func SanitizeAPIKey(apiKey string) string {
	if apiKey == "" {
		return ""
	}
	if len(apiKey) <= 8 {
		return RedactedValue
	}
	// Show first 4 and last 4 characters, redact the middle
	return apiKey[:4] + RedactedValue + apiKey[len(apiKey)-4:]
}

// SanitizePrompt creates a safe preview of a prompt for logging.
// fullLog raises the cap to the debug content limit but still strips control characters.
func SanitizePrompt(prompt string, fullLog bool) string {
	return preview(prompt, fullLog)
}

// SanitizeResponse creates a safe preview of a completion for logging
func SanitizeResponse(response string, fullLog bool) string {
	return preview(response, fullLog)
}

func preview(s string, fullLog bool) string {
	if s == "" {
		return ""
	}
	maxLen := MaxPreviewLength
	if fullLog {
		maxLen = logpkg.MaxDebugContentLength
	}
	return logpkg.SanitizeString(s, maxLen)
}
