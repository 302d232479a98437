package models

import (
	"strings"
	"time"
)

// Confidence is how decisively the selected task beat the runner-up
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Valid reports whether c is one of the enumerated confidence labels
func (c Confidence) Valid() bool {
	switch c {
	case ConfidenceLow, ConfidenceMedium, ConfidenceHigh:
		return true
	default:
		return false
	}
}

// DeadlineDateLayout is the calendar-date form accepted for task deadlines
const DeadlineDateLayout = "2006-01-02"

// TaskCandidate is one option under consideration
type TaskCandidate struct {
	Title    string `json:"title" yaml:"title" validate:"required,max=140"`
	Impact   int    `json:"impact" yaml:"impact" validate:"required,min=1,max=5"`
	Effort   int    `json:"effort" yaml:"effort" validate:"required,min=1,max=5"`
	Anxiety  int    `json:"anxiety" yaml:"anxiety" validate:"required,min=1,max=5"`
	Deadline string `json:"deadline,omitempty" yaml:"deadline,omitempty" validate:"omitempty,iso_date"`
}

// HasDeadline reports whether a deadline was supplied
func (t TaskCandidate) HasDeadline() bool {
	return strings.TrimSpace(t.Deadline) != ""
}

// DeadlineTime parses the deadline. Date-only values are anchored at midnight UTC.
// The second return value is false when no deadline is set or it cannot be parsed.
func (t TaskCandidate) DeadlineTime() (time.Time, bool) {
	return ParseDeadline(t.Deadline)
}

// ParseDeadline parses an ISO 8601 calendar date or an RFC 3339 timestamp
func ParseDeadline(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	if d, err := time.Parse(DeadlineDateLayout, value); err == nil {
		return d, true
	}
	if d, err := time.Parse(time.RFC3339, value); err == nil {
		return d, true
	}
	return time.Time{}, false
}

// DecisionContext is a decision request: the goal, the time and energy available, and the candidates
type DecisionContext struct {
	Goal        string          `json:"goal" yaml:"goal" validate:"required,max=240"`
	TimeMinutes int             `json:"time_minutes" yaml:"time_minutes" validate:"required,min=5,max=600"`
	Energy      int             `json:"energy" yaml:"energy" validate:"required,min=1,max=5"`
	Tasks       []TaskCandidate `json:"tasks" yaml:"tasks" validate:"required,min=1,max=20,dive"`
}

// Alternative is a runner-up option with a short justification
type Alternative struct {
	Title string `json:"title" validate:"required"`
	Why   string `json:"why" validate:"required"`
}

// Recommendation is the result of one decision
type Recommendation struct {
	SelectedTaskTitle string        `json:"selectedTaskTitle" validate:"required"`
	Rationale         string        `json:"rationale" validate:"required"`
	Confidence        Confidence    `json:"confidence" validate:"confidence"`
	Alternatives      []Alternative `json:"alternatives" validate:"max=2,dive"`
}
