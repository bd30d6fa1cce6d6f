package domain

import "time"

// ─── Collaborator Interfaces ────────────────────────────────────────────────
// These interfaces define the engine's boundaries. Infrastructure
// implements them; the evaluation engine depends only on them.

// ReadingStore is the append-only measurement log, addressed by owner.
type ReadingStore interface {
	// InsertReading appends a reading for the owner.
	InsertReading(owner string, r Reading) error

	// ListReadings returns every reading the owner has ever recorded,
	// ordered most recent first.
	ListReadings(owner string) ([]Reading, error)

	// ListReadingsSince returns readings with timestamp >= since.
	ListReadingsSince(owner string, since time.Time) ([]Reading, error)

	// DeleteReading removes one reading. Returns ErrReadingNotFound if
	// the id does not exist for the owner.
	DeleteReading(owner, id string) error

	// DeleteAllReadings removes every reading for the owner.
	DeleteAllReadings(owner string) (int64, error)
}

// StateStore is the durable key-value persistence for progression state.
// Each piece is independently loadable; a whole evaluation's output is
// committed as one unit.
type StateStore interface {
	// LoadProgress returns the owner's progress state, or the defaults
	// if none has been persisted yet.
	LoadProgress(owner string) (ProgressState, error)

	// IsMissionRewarded reports whether the (missionID, date) composite
	// key has already been rewarded.
	IsMissionRewarded(owner, missionID, date string) (bool, error)

	// CommitEvaluation persists the snapshot atomically — stage, balance,
	// mission state, newly unlocked achievements, and the rewarded
	// mission key all land together or not at all.
	CommitEvaluation(owner string, snap EvaluationSnapshot) error

	// OwnedCollectibles returns the owner's collectible ids. The default
	// collectible is always included.
	OwnedCollectibles(owner string) ([]string, error)

	// EquipCollectible sets the equipped collectible id.
	EquipCollectible(owner, id string) error

	// ResetProgress clears progression state back to defaults. Readings
	// are a separate collaborator's concern and are left untouched.
	ResetProgress(owner string) error
}

// NotificationSink is the side channel the engine reports transitions
// through. Fire-and-forget: the engine never consumes a return value.
type NotificationSink interface {
	Notify(owner string, t Transition)
}

// NopSink discards all notifications. Useful in tests and headless runs.
type NopSink struct{}

// Notify implements NotificationSink.
func (NopSink) Notify(string, Transition) {}
