package decision

import (
	"time"

	"github.com/benvon/smart-decide/internal/models"
)

const (
	// ImpactWeight is the score contributed by each point of impact
	ImpactWeight = 2.2
	// EffortWeight is the penalty per point of effort before the energy factor is applied
	EffortWeight = 1.7
	// AnxietyWeight is the penalty per point of anxiety
	AnxietyWeight = 0.6

	// ShortTimeMinutes is the time budget under which high-effort tasks are penalised
	ShortTimeMinutes = 30
	// HighEffortThreshold is the effort from which the short-time penalty applies
	HighEffortThreshold = 4
	// TimeFitPenalty is the flat penalty for a high-effort task in a short time budget
	TimeFitPenalty = 1.2
)

// Breakdown holds the individual terms of a task score
type Breakdown struct {
	Impact         float64 `json:"impact"`
	EffortPenalty  float64 `json:"effort_penalty"`
	AnxietyPenalty float64 `json:"anxiety_penalty"`
	DeadlineBonus  float64 `json:"deadline_bonus"`
	TimePenalty    float64 `json:"time_penalty"`
}

// Total combines the terms into the final score
func (b Breakdown) Total() float64 {
	return b.Impact + b.DeadlineBonus - b.EffortPenalty - b.AnxietyPenalty - b.TimePenalty
}

// EnergyFactor scales the effort penalty: effort weighs more when energy is low.
func EnergyFactor(energy int) float64 {
	switch {
	case energy <= 2:
		return 1.4
	case energy == 3:
		return 1.15
	default:
		return 1.0
	}
}

// DeadlineBonus returns the step bonus for a deadline at the given distance from now.
// Past deadlines earn nothing; each bucket includes its upper bound.
func DeadlineBonus(daysUntil float64) float64 {
	switch {
	case daysUntil < 0:
		return 0
	case daysUntil <= 1:
		return 2.0
	case daysUntil <= 3:
		return 1.2
	case daysUntil <= 7:
		return 0.6
	default:
		return 0
	}
}

// DaysUntil returns the fractional number of days from now to deadline
func DaysUntil(deadline, now time.Time) float64 {
	return deadline.Sub(now).Hours() / 24
}

// ScoreTask computes the score terms for one candidate at the given moment
func ScoreTask(task models.TaskCandidate, req models.DecisionContext, now time.Time) Breakdown {
	b := Breakdown{
		Impact:         float64(task.Impact) * ImpactWeight,
		EffortPenalty:  float64(task.Effort) * EffortWeight * EnergyFactor(req.Energy),
		AnxietyPenalty: float64(task.Anxiety) * AnxietyWeight,
	}

	// Unparseable deadlines are treated as absent.
	if deadline, ok := task.DeadlineTime(); ok {
		b.DeadlineBonus = DeadlineBonus(DaysUntil(deadline, now))
	}

	if req.TimeMinutes < ShortTimeMinutes && task.Effort >= HighEffortThreshold {
		b.TimePenalty = TimeFitPenalty
	}

	return b
}
