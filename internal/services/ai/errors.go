package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/openai/openai-go/v3"
)

var (
	// ErrNoChoicesInResponse is returned when the completion has no choices
	ErrNoChoicesInResponse = errors.New("no choices in response")
	// ErrEmptyContent is returned when the first choice carries no text
	ErrEmptyContent = errors.New("empty completion content")
	// ErrProviderDisabled is returned when enrichment has no configured provider
	ErrProviderDisabled = errors.New("rationale provider not configured")
	// ErrInvalidPayload is returned when the completion text is not a JSON object
	ErrInvalidPayload = errors.New("completion is not a JSON object")
)

// APIError represents an error from the provider API
type APIError struct {
	Message     string
	Type        string
	Code        string
	StatusCode  int
	IsPermanent bool // quota errors; rate limits are transient
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (status %d, type %s): %s", e.StatusCode, e.Type, e.Message)
}

// IsRateLimitError checks if an error is a rate limit error
func IsRateLimitError(err error) bool {
	if err == nil {
		return false
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests && !apiErr.IsPermanent
	}

	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "too many requests")
}

// IsQuotaError checks if an error is a quota exhaustion error
func IsQuotaError(err error) bool {
	if err == nil {
		return false
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.IsPermanent || apiErr.Code == "insufficient_quota"
	}

	errStr := err.Error()
	return strings.Contains(errStr, "insufficient_quota") ||
		strings.Contains(errStr, "quota") ||
		strings.Contains(errStr, "billing")
}

// ExtractAPIError extracts API error details from an SDK error.
// Returns nil when err carries no HTTP status information.
func ExtractAPIError(err error) *APIError {
	if err == nil {
		return nil
	}

	var sdkErr *openai.Error
	if errors.As(err, &sdkErr) {
		return &APIError{
			Message:     sdkErr.Message,
			Type:        sdkErr.Type,
			Code:        sdkErr.Code,
			StatusCode:  sdkErr.StatusCode,
			IsPermanent: sdkErr.Code == "insufficient_quota",
		}
	}

	// Some transports only surface the status in the message, with the body appended as JSON.
	errStr := err.Error()
	if !strings.Contains(errStr, "429") {
		return nil
	}

	apiErr := &APIError{
		StatusCode: http.StatusTooManyRequests,
		Message:    errStr,
		Type:       "rate_limit_error",
	}
	if jsonStart := strings.Index(errStr, "{"); jsonStart != -1 {
		jsonStr := errStr[jsonStart:]
		if jsonEnd := strings.LastIndex(jsonStr, "}"); jsonEnd != -1 {
			var errorData struct {
				Message string `json:"message"`
				Type    string `json:"type"`
				Code    string `json:"code"`
			}
			if json.Unmarshal([]byte(jsonStr[:jsonEnd+1]), &errorData) == nil {
				apiErr.Message = errorData.Message
				apiErr.Type = errorData.Type
				apiErr.Code = errorData.Code
				apiErr.IsPermanent = errorData.Code == "insufficient_quota"
			}
		}
	}

	return apiErr
}

// FailureKind names the class of an enrichment failure for logging
func FailureKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrProviderDisabled):
		return "disabled"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, ErrInvalidPayload):
		return "invalid_payload"
	case errors.Is(err, ErrNoChoicesInResponse), errors.Is(err, ErrEmptyContent):
		return "empty_response"
	case IsQuotaError(err):
		return "quota_exceeded"
	case IsRateLimitError(err):
		return "rate_limited"
	}

	if apiErr := ExtractAPIError(err); apiErr != nil {
		return fmt.Sprintf("http_%d", apiErr.StatusCode)
	}
	return "provider_error"
}
