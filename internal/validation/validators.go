package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"unicode"

	"github.com/benvon/smart-decide/internal/models"
	"github.com/go-playground/validator/v10"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	// Report fields by their JSON names so messages match the request body.
	Validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if err := Validate.RegisterValidation("iso_date", validateISODate); err != nil {
		panic(fmt.Sprintf("failed to register iso_date validator: %v", err))
	}
	if err := Validate.RegisterValidation("confidence", validateConfidence); err != nil {
		panic(fmt.Sprintf("failed to register confidence validator: %v", err))
	}
}

// Error is a validation failure keyed by JSON field path, e.g. "tasks[1].impact"
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+" "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// validateISODate accepts YYYY-MM-DD or an RFC 3339 timestamp
func validateISODate(fl validator.FieldLevel) bool {
	_, ok := models.ParseDeadline(fl.Field().String())
	return ok
}

// validateConfidence validates that a string is a valid Confidence enum value
func validateConfidence(fl validator.FieldLevel) bool {
	return models.Confidence(fl.Field().String()).Valid()
}

// SanitizeText sanitizes text input by trimming whitespace and removing control characters
func SanitizeText(text string) string {
	text = strings.TrimSpace(text)

	// Remove control characters except newline and tab
	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return strings.TrimSpace(sanitized.String())
}

// ValidateDecisionContext sanitizes the free-text fields of req in place and checks every bound
func ValidateDecisionContext(req *models.DecisionContext) error {
	if req == nil {
		return &Error{Fields: map[string]string{"body": "is required"}}
	}

	req.Goal = SanitizeText(req.Goal)
	for i := range req.Tasks {
		req.Tasks[i].Title = SanitizeText(req.Tasks[i].Title)
		req.Tasks[i].Deadline = strings.TrimSpace(req.Tasks[i].Deadline)
	}

	return fromValidator(Validate.Struct(req))
}

// ValidateRecommendation checks the output contract of a recommendation
func ValidateRecommendation(rec models.Recommendation) error {
	return fromValidator(Validate.Struct(rec))
}

func fromValidator(err error) error {
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	fields := make(map[string]string, len(validationErrors))
	for _, fe := range validationErrors {
		fields[fieldPath(fe)] = message(fe)
	}
	return &Error{Fields: fields}
}

// fieldPath drops the root struct name from the validator namespace
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return boundMessage(fe, "at least")
	case "max":
		return boundMessage(fe, "at most")
	case "iso_date":
		return "must be an ISO 8601 date (YYYY-MM-DD) or RFC 3339 timestamp"
	case "confidence":
		return "must be one of low, medium, high"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

func boundMessage(fe validator.FieldError, relation string) string {
	switch fe.Kind() {
	case reflect.String:
		return fmt.Sprintf("must be %s %s characters", relation, fe.Param())
	case reflect.Slice, reflect.Array:
		noun := "items"
		if fe.Param() == "1" {
			noun = "item"
		}
		return fmt.Sprintf("must contain %s %s %s", relation, fe.Param(), noun)
	default:
		return fmt.Sprintf("must be %s %s", relation, fe.Param())
	}
}
