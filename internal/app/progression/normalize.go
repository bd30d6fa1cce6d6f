// Package progression implements the Diabetree progression engine:
// reading normalization, stage calculation, achievements, and daily
// missions. Everything in this package is a pure function of its inputs
// — persistence and notification are the orchestrator's job.
package progression

import (
	"sort"
	"time"

	"github.com/diabetree-app/diabetree/internal/domain"
)

// Defaults for the normalization pass.
const (
	DefaultWindow  = 7 * 24 * time.Hour
	DefaultSpacing = 5 * time.Minute
)

// SplitMalformed separates usable readings from ones with unusable data
// (non-positive value or zero timestamp). A malformed reading is excluded
// from all calculation but reported rather than aborting the evaluation.
func SplitMalformed(readings []domain.Reading) ([]domain.Reading, []domain.MalformedReading) {
	ok := make([]domain.Reading, 0, len(readings))
	var bad []domain.MalformedReading
	for _, r := range readings {
		switch {
		case r.Timestamp.IsZero():
			bad = append(bad, domain.MalformedReading{ID: r.ID, Reason: "missing timestamp"})
		case r.Value <= 0:
			bad = append(bad, domain.MalformedReading{ID: r.ID, Reason: "non-positive value"})
		default:
			ok = append(ok, r)
		}
	}
	return ok, bad
}

// UniqueRecent returns the ordered, deduplicated subsequence of readings
// inside the lookback window: filter to timestamp >= now−window, sort
// ascending, then greedily keep a reading only if it is at least spacing
// after the last kept one. Ties keep the earliest of a cluster, so a
// burst of near-simultaneous readings counts exactly once.
func UniqueRecent(readings []domain.Reading, now time.Time, window, spacing time.Duration) []domain.Reading {
	cutoff := now.Add(-window)

	recent := make([]domain.Reading, 0, len(readings))
	for _, r := range readings {
		if !r.Timestamp.Before(cutoff) {
			recent = append(recent, r)
		}
	}

	sort.Slice(recent, func(i, j int) bool {
		return recent[i].Timestamp.Before(recent[j].Timestamp)
	})

	var unique []domain.Reading
	var lastKept time.Time
	for _, r := range recent {
		if len(unique) == 0 || !r.Timestamp.Before(lastKept.Add(spacing)) {
			unique = append(unique, r)
			lastKept = r.Timestamp
		}
	}
	return unique
}

// ReadingsOnDay filters readings to the given UTC calendar date
// ("YYYY-MM-DD"). Used to feed daily mission predicates.
func ReadingsOnDay(readings []domain.Reading, day string) []domain.Reading {
	var out []domain.Reading
	for _, r := range readings {
		if r.DayKey() == day {
			out = append(out, r)
		}
	}
	return out
}
