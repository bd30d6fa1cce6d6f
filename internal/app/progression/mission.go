package progression

import (
	"fmt"

	"github.com/diabetree-app/diabetree/internal/domain"
)

// MissionRotator selects one daily objective per UTC calendar day from a
// fixed, ordered catalog and evaluates its completion. Rotation advances
// circularly by catalog index; the reward for any mission is a fixed
// coin amount granted at most once per (mission, date) pair.
type MissionRotator struct {
	catalog     []domain.DailyMissionDef
	rewardCoins int64
}

// NewMissionRotator validates the catalog and returns a rotator.
func NewMissionRotator(catalog []domain.DailyMissionDef, rewardCoins int64) (*MissionRotator, error) {
	if len(catalog) == 0 {
		return nil, domain.ErrEmptyCatalog
	}
	seen := make(map[string]bool, len(catalog))
	for _, def := range catalog {
		if seen[def.ID] {
			return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateCatalogID, def.ID)
		}
		seen[def.ID] = true
		if def.Predicate == nil {
			return nil, fmt.Errorf("mission %s has no predicate", def.ID)
		}
	}
	return &MissionRotator{catalog: catalog, rewardCoins: rewardCoins}, nil
}

// Rotate computes the mission state for today. On a new calendar day the
// next catalog entry (circular, defaulting to index 0 when nothing is
// persisted) becomes current and is evaluated; on the same day the
// current mission is re-evaluated, so an incomplete mission can flip to
// complete as readings arrive. Completion never flips back within a day.
func (m *MissionRotator) Rotate(prev domain.DailyMissionState, todays []domain.Reading, today string) domain.DailyMissionState {
	if prev.LastCheckedDate != today {
		def := m.catalog[m.nextIndex(prev.CurrentMissionID)]
		return domain.DailyMissionState{
			CurrentMissionID: def.ID,
			IsCompleted:      def.Predicate(todays),
			LastCheckedDate:  today,
		}
	}

	state := prev
	if !state.IsCompleted {
		if def := m.ByID(state.CurrentMissionID); def != nil {
			state.IsCompleted = def.Predicate(todays)
		}
	}
	return state
}

// RewardCoins returns the fixed per-mission reward.
func (m *MissionRotator) RewardCoins() int64 { return m.rewardCoins }

// ByID returns the catalog entry with the given id, or nil.
func (m *MissionRotator) ByID(id string) *domain.DailyMissionDef {
	for i := range m.catalog {
		if m.catalog[i].ID == id {
			return &m.catalog[i]
		}
	}
	return nil
}

// Catalog returns the mission definitions in rotation order.
func (m *MissionRotator) Catalog() []domain.DailyMissionDef { return m.catalog }

// nextIndex returns the catalog index after the given mission id.
// Unknown or empty ids (first run, or a retired mission) start at 0.
func (m *MissionRotator) nextIndex(prevID string) int {
	for i, def := range m.catalog {
		if def.ID == prevID {
			return (i + 1) % len(m.catalog)
		}
	}
	return 0
}

// ─── Default Catalog ────────────────────────────────────────────────────────

// DefaultMissionReward is the fixed coin reward for completing the
// daily mission.
const DefaultMissionReward int64 = 5

// DefaultMissions returns the built-in rotation. Predicates receive only
// the current UTC day's readings. The target range for the healthy-levels
// mission is fixed at construction.
func DefaultMissions(tr domain.TargetRange) []domain.DailyMissionDef {
	return []domain.DailyMissionDef{
		{
			ID: "daily_first_reading", Name: "First Reading of the Day",
			Description: "Record at least 1 glucose reading today.",
			Predicate: func(todays []domain.Reading) bool {
				return len(todays) >= 1
			},
		},
		{
			ID: "daily_healthy_levels", Name: "Healthy Levels Today",
			Description: "Record all glucose readings within healthy levels today.",
			Predicate: func(todays []domain.Reading) bool {
				if len(todays) == 0 {
					return false
				}
				for _, r := range todays {
					if !r.InTarget(tr) {
						return false
					}
				}
				return true
			},
		},
		{
			ID: "daily_three_readings", Name: "Three Readings",
			Description: "Record at least 3 glucose readings today.",
			Predicate: func(todays []domain.Reading) bool {
				return len(todays) >= 3
			},
		},
		{
			ID: "daily_night_reading", Name: "Night Reading",
			Description: "Record a glucose reading between 10 PM and 6 AM.",
			Predicate: func(todays []domain.Reading) bool {
				for _, r := range todays {
					if isNightHour(r) {
						return true
					}
				}
				return false
			},
		},
	}
}

// isNightHour reports whether the reading falls in the 22:00–06:00 UTC
// night window.
func isNightHour(r domain.Reading) bool {
	h := r.Timestamp.UTC().Hour()
	return h >= 22 || h < 6
}
