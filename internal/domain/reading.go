// Package domain holds the core Diabetree types and business rules.
// The progression engine turns an append-only stream of glucose readings
// into a growth stage, achievements, daily missions, and a coin balance.
package domain

import "time"

// Reading is a single glucose measurement. Immutable once created;
// deletable individually or in bulk. Owned by the reading store — the
// engine only reads and classifies.
type Reading struct {
	ID              string    `json:"id"`
	Value           float64   `json:"value"` // mg/dL, must be > 0
	Timestamp       time.Time `json:"timestamp"`
	MealContext     string    `json:"meal_context,omitempty"`
	ActivityContext string    `json:"activity_context,omitempty"`
	Notes           string    `json:"notes,omitempty"`
}

// TargetRange is the per-profile healthy glucose range, inclusive on
// both ends.
type TargetRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// DefaultTargetRange is the clinical default (70–180 mg/dL).
func DefaultTargetRange() TargetRange {
	return TargetRange{Min: 70, Max: 180}
}

// Classification tags a reading relative to the target range.
type Classification string

const (
	ClassLow      Classification = "low"
	ClassInTarget Classification = "in_target"
	ClassHigh     Classification = "high"
)

// Classify returns the classification of a value against the range.
// Boundary values are inclusive.
func Classify(value float64, r TargetRange) Classification {
	switch {
	case value < r.Min:
		return ClassLow
	case value > r.Max:
		return ClassHigh
	default:
		return ClassInTarget
	}
}

// InTarget reports whether the reading value lies within the range.
func (r Reading) InTarget(tr TargetRange) bool {
	return Classify(r.Value, tr) == ClassInTarget
}

// DayKey returns the UTC calendar date of the reading as "YYYY-MM-DD".
// All calendar arithmetic in the engine is done in UTC.
func (r Reading) DayKey() string {
	return r.Timestamp.UTC().Format("2006-01-02")
}

// MalformedReading records a reading excluded from evaluation because
// its data is unusable (non-positive value or zero timestamp). One bad
// record must not block the evaluation of the rest.
type MalformedReading struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}
