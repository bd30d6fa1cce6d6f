package progression

import (
	"fmt"
	"time"

	"github.com/diabetree-app/diabetree/internal/domain"
)

// AchievementEvaluator evaluates an injectable badge catalog against the
// full reading history. Unlocks are monotone: an already-unlocked id is
// skipped forever, so re-evaluation on every call is safe.
type AchievementEvaluator struct {
	catalog []domain.AchievementDef
}

// NewAchievementEvaluator validates the catalog (non-empty, unique ids,
// every predicate set) and returns an evaluator. The catalog evolved ad
// hoc in earlier versions — validation here keeps retired or duplicated
// entries from slipping back in.
func NewAchievementEvaluator(catalog []domain.AchievementDef) (*AchievementEvaluator, error) {
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
			return nil, fmt.Errorf("achievement %s has no predicate", def.ID)
		}
	}
	return &AchievementEvaluator{catalog: catalog}, nil
}

// Evaluate checks every not-yet-unlocked achievement in catalog order and
// returns the newly unlocked definitions. The unlocked set is never
// shrunk and an id is never re-rewarded.
func (e *AchievementEvaluator) Evaluate(all []domain.Reading, unlocked map[string]bool, ctx domain.StatsContext) []domain.AchievementDef {
	var newly []domain.AchievementDef
	for _, def := range e.catalog {
		if unlocked[def.ID] {
			continue
		}
		if def.Predicate(all, ctx) {
			newly = append(newly, def)
		}
	}
	return newly
}

// Catalog returns the definitions (for display surfaces).
func (e *AchievementEvaluator) Catalog() []domain.AchievementDef {
	return e.catalog
}

// ─── Default Catalog ────────────────────────────────────────────────────────

// DefaultAchievements returns the built-in badge catalog. Predicates see
// all readings ever recorded plus the stats context (target range,
// lifetime max stage, owned collectibles).
func DefaultAchievements() []domain.AchievementDef {
	return []domain.AchievementDef{
		{
			ID: "first_reading", Name: "First Step",
			Description: "Record your first glucose reading.",
			RewardCoins: 10,
			Predicate: func(all []domain.Reading, _ domain.StatsContext) bool {
				return len(all) >= 1
			},
		},
		{
			ID: "readings_10", Name: "Getting Consistent",
			Description: "Record 10 glucose readings.",
			RewardCoins: 15,
			Predicate: func(all []domain.Reading, _ domain.StatsContext) bool {
				return len(all) >= 10
			},
		},
		{
			ID: "readings_50", Name: "Dedicated Tracker",
			Description: "Record 50 glucose readings.",
			RewardCoins: 30,
			Predicate: func(all []domain.Reading, _ domain.StatsContext) bool {
				return len(all) >= 50
			},
		},
		{
			ID: "readings_200", Name: "Data Devotee",
			Description: "Record 200 glucose readings.",
			RewardCoins: 75,
			Predicate: func(all []domain.Reading, _ domain.StatsContext) bool {
				return len(all) >= 200
			},
		},
		{
			ID: "healthy_week", Name: "Healthy Week",
			Description: "Record an in-target reading on 7 consecutive days.",
			RewardCoins: 50,
			Predicate: func(all []domain.Reading, ctx domain.StatsContext) bool {
				return hasConsecutiveInTargetDays(all, ctx.Range, 7)
			},
		},
		{
			ID: "perfect_day", Name: "Perfect Day",
			Description: "Record at least 3 readings in one day, all in target.",
			RewardCoins: 20,
			Predicate: func(all []domain.Reading, ctx domain.StatsContext) bool {
				return hasPerfectDay(all, ctx.Range, 3)
			},
		},
		{
			ID: "stage_2", Name: "Sapling",
			Description: "Grow your tree to stage 2.",
			RewardCoins: 10,
			Predicate: func(_ []domain.Reading, ctx domain.StatsContext) bool {
				return ctx.MaxStageReached >= 2
			},
		},
		{
			ID: "stage_3", Name: "Strong Tree",
			Description: "Grow your tree to stage 3.",
			RewardCoins: 25,
			Predicate: func(_ []domain.Reading, ctx domain.StatsContext) bool {
				return ctx.MaxStageReached >= 3
			},
		},
		{
			ID: "full_bloom", Name: "Full Bloom",
			Description: "Grow your tree to its final stage.",
			RewardCoins: 60,
			Predicate: func(_ []domain.Reading, ctx domain.StatsContext) bool {
				return ctx.MaxStageReached >= domain.MaxStage
			},
		},
		{
			ID: "collector", Name: "Collector",
			Description: "Own a second tree from the shop.",
			RewardCoins: 25,
			Predicate: func(_ []domain.Reading, ctx domain.StatsContext) bool {
				return len(ctx.OwnedCollectibleIDs) >= 2
			},
		},
		{
			ID: "night_owl", Name: "Night Owl",
			Description: "Record a reading between 10 PM and 6 AM.",
			RewardCoins: 10,
			Predicate: func(all []domain.Reading, _ domain.StatsContext) bool {
				for _, r := range all {
					if isNightHour(r) {
						return true
					}
				}
				return false
			},
		},
	}
}

// hasConsecutiveInTargetDays reports whether some run of n consecutive
// UTC days each contains at least one in-target reading.
func hasConsecutiveInTargetDays(all []domain.Reading, tr domain.TargetRange, n int) bool {
	days := make(map[string]bool)
	for _, r := range all {
		if r.InTarget(tr) {
			days[r.DayKey()] = true
		}
	}
	for day := range days {
		t, err := time.Parse("2006-01-02", day)
		if err != nil {
			continue
		}
		run := 1
		for run < n && days[t.AddDate(0, 0, run).Format("2006-01-02")] {
			run++
		}
		if run >= n {
			return true
		}
	}
	return false
}

// hasPerfectDay reports whether any UTC day has >= minReadings readings
// with every one of them in target.
func hasPerfectDay(all []domain.Reading, tr domain.TargetRange, minReadings int) bool {
	counts := make(map[string]int)
	allIn := make(map[string]bool)
	for _, r := range all {
		day := r.DayKey()
		counts[day]++
		if _, seen := allIn[day]; !seen {
			allIn[day] = true
		}
		if !r.InTarget(tr) {
			allIn[day] = false
		}
	}
	for day, c := range counts {
		if c >= minReadings && allIn[day] {
			return true
		}
	}
	return false
}
