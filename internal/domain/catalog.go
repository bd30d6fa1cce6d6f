package domain

import "time"

// ─── Achievement Catalog Types ──────────────────────────────────────────────

// StatsContext is the auxiliary state fed to achievement predicates
// alongside the full reading history.
type StatsContext struct {
	Range               TargetRange
	MaxStageReached     int
	OwnedCollectibleIDs []string
}

// AchievementDef defines one badge. The catalog is injectable, versioned
// configuration — entries can be added or retired without touching the
// evaluator. Predicates must be pure and independent of catalog order.
type AchievementDef struct {
	ID          string                             `json:"id"`
	Name        string                             `json:"name"`
	Description string                             `json:"description"`
	RewardCoins int64                              `json:"reward_coins"`
	Predicate   func([]Reading, StatsContext) bool `json:"-"`
}

// UnlockedAchievement records when a badge was earned.
type UnlockedAchievement struct {
	ID         string    `json:"id"`
	UnlockedAt time.Time `json:"unlocked_at"`
}

// ─── Daily Mission Catalog Types ────────────────────────────────────────────

// DailyMissionDef defines one rotating daily objective. The catalog is
// static and ordered; rotation advances by catalog index, not id value.
// Predicates receive only the current UTC day's readings.
type DailyMissionDef struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Predicate   func([]Reading) bool `json:"-"`
}

// ─── Collectibles ───────────────────────────────────────────────────────────

// DefaultCollectibleID is the tree every owner starts with and falls
// back to when an equipped tree is no longer valid.
const DefaultCollectibleID = "normal_tree"

// Collectible is one purchasable tree skin. Price 0 means free.
type Collectible struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

// Collectibles is the static shop catalog.
func Collectibles() []Collectible {
	return []Collectible{
		{ID: DefaultCollectibleID, Name: "Normal Tree", Price: 0},
		{ID: "oak", Name: "Oak Tree", Price: 100},
		{ID: "willow", Name: "Willow Tree", Price: 150},
		{ID: "pine", Name: "Pine Tree", Price: 150},
		{ID: "cherry", Name: "Cherry Tree", Price: 200},
		{ID: "apple", Name: "Apple Tree", Price: 220},
	}
}

// CollectibleByID looks up a catalog entry. Returns nil if unknown.
func CollectibleByID(id string) *Collectible {
	for _, c := range Collectibles() {
		if c.ID == id {
			return &c
		}
	}
	return nil
}
