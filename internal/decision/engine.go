// Package decision ranks candidate tasks and derives a recommendation from the ranking.
//
// The engine is deterministic for a fixed clock: it performs no I/O and keeps no state between calls,
// so one Engine may serve concurrent requests.
package decision

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/benvon/smart-decide/internal/models"
)

const (
	// HighConfidenceGap is the score gap above which confidence is high
	HighConfidenceGap = 2.0
	// MediumConfidenceGap is the score gap above which confidence is medium
	MediumConfidenceGap = 0.8
	// NoRunnerUpGap stands in for the gap when there is only one candidate
	NoRunnerUpGap = 999.0

	// MaxAlternatives is the number of runner-ups reported
	MaxAlternatives = 2
	// HighImpactThreshold is the impact from which an alternative is described as high impact
	HighImpactThreshold = 4

	highImpactWhy = "High impact, but may cost more energy/time."
	lowLiftWhy    = "Lower lift, good if your energy drops."
)

// ErrNoTasks is returned when a decision is requested without any candidate
var ErrNoTasks = errors.New("decision requires at least one task")

// Clock returns the current moment
type Clock func() time.Time

// Engine scores and ranks candidate tasks
type Engine struct {
	now Clock
}

// Option configures an Engine
type Option func(*Engine)

// WithClock sets the time source used for deadline proximity
func WithClock(now Clock) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine creates an engine that uses the wall clock unless WithClock is given
func NewEngine(opts ...Option) *Engine {
	e := &Engine{now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ScoredTask is a candidate together with its score
type ScoredTask struct {
	Task      models.TaskCandidate `json:"task"`
	Score     float64              `json:"score"`
	Breakdown Breakdown            `json:"breakdown"`
}

// Rank scores every candidate and orders them by score, highest first.
// Candidates with equal scores keep their input order.
func (e *Engine) Rank(req models.DecisionContext) []ScoredTask {
	now := e.now()

	scored := make([]ScoredTask, 0, len(req.Tasks))
	for _, task := range req.Tasks {
		b := ScoreTask(task, req, now)
		scored = append(scored, ScoredTask{Task: task, Score: b.Total(), Breakdown: b})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	return scored
}

// Decide selects the best candidate and explains the choice
func (e *Engine) Decide(req models.DecisionContext) (models.Recommendation, error) {
	if len(req.Tasks) == 0 {
		return models.Recommendation{}, ErrNoTasks
	}

	ranked := e.Rank(req)
	best := ranked[0]

	gap := NoRunnerUpGap
	if len(ranked) > 1 {
		gap = best.Score - ranked[1].Score
	}

	return models.Recommendation{
		SelectedTaskTitle: best.Task.Title,
		Rationale:         buildRationale(best.Task, req.Energy),
		Confidence:        ClassifyConfidence(gap),
		Alternatives:      buildAlternatives(ranked[1:]),
	}, nil
}

// ClassifyConfidence maps the gap between the best and second-best score to a label
func ClassifyConfidence(gap float64) models.Confidence {
	switch {
	case gap > HighConfidenceGap:
		return models.ConfidenceHigh
	case gap > MediumConfidenceGap:
		return models.ConfidenceMedium
	default:
		return models.ConfidenceLow
	}
}

func buildRationale(task models.TaskCandidate, energy int) string {
	rationale := fmt.Sprintf("Pick \"%s\" because it scores highest for your goal: high impact relative to effort given current energy level %d/5", task.Title, energy)
	if task.HasDeadline() {
		return rationale + " and it has a relevant deadline."
	}
	return rationale + "."
}

func buildAlternatives(rest []ScoredTask) []models.Alternative {
	if len(rest) > MaxAlternatives {
		rest = rest[:MaxAlternatives]
	}

	alternatives := make([]models.Alternative, 0, len(rest))
	for _, st := range rest {
		why := lowLiftWhy
		if st.Task.Impact >= HighImpactThreshold {
			why = highImpactWhy
		}
		alternatives = append(alternatives, models.Alternative{Title: st.Task.Title, Why: why})
	}
	return alternatives
}
