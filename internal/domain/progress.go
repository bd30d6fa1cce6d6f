package domain

// ─── Stage Types ────────────────────────────────────────────────────────────

// Stage bounds. The tree grows from seedling (1) to fully grown (4).
const (
	MinStage = 1
	MaxStage = 4
)

// StageThresholds are the cumulative in-target reading counts required
// for each stage. Stage 1 requires 0, stage 2 requires 7, stage 3
// requires 17, stage 4 requires 37 unique in-target readings within the
// lookback window. Index i holds the threshold for stage i+1.
var StageThresholds = [MaxStage]int{0, 7, 17, 37}

// ─── Progress State ─────────────────────────────────────────────────────────

// DailyMissionState is the persisted rotation state. Regenerated once
// per UTC calendar day; the mission id advances circularly through the
// catalog.
type DailyMissionState struct {
	CurrentMissionID string `json:"current_mission_id"`
	IsCompleted      bool   `json:"is_completed"`
	LastCheckedDate  string `json:"last_checked_date"` // "YYYY-MM-DD", UTC
}

// ProgressState is the single persisted progression record per owner.
// Mutated only by the evaluation engine; committed as one unit.
type ProgressState struct {
	Stage                  int               `json:"stage"` // in [MinStage, MaxStage]
	StageProgress          float64           `json:"stage_progress"`
	CoinBalance            int64             `json:"coin_balance"` // never negative
	UnlockedAchievementIDs map[string]bool   `json:"unlocked_achievement_ids"`
	DailyMission           DailyMissionState `json:"daily_mission"`
	EquippedCollectibleID  string            `json:"equipped_collectible_id"`
	MaxStageReached        int               `json:"max_stage_reached"` // lifetime best, never regresses
}

// DefaultProgressState returns the state created on first evaluation.
func DefaultProgressState() ProgressState {
	return ProgressState{
		Stage:                  MinStage,
		CoinBalance:            0,
		UnlockedAchievementIDs: map[string]bool{},
		EquippedCollectibleID:  DefaultCollectibleID,
		MaxStageReached:        MinStage,
	}
}

// ─── Transitions ────────────────────────────────────────────────────────────

// TransitionType tags the kind of state transition an evaluation produced.
type TransitionType string

const (
	TransitionLevelUp             TransitionType = "level_up"
	TransitionLevelDown           TransitionType = "level_down"
	TransitionAchievementUnlocked TransitionType = "achievement_unlocked"
	TransitionMissionCompleted    TransitionType = "daily_mission_completed"
	TransitionInsufficientFunds   TransitionType = "insufficient_funds"
)

// Transition is a tagged variant describing one state change. Only the
// fields relevant to the type are set.
type Transition struct {
	Type TransitionType `json:"type"`

	// LevelUp / LevelDown
	FromStage int `json:"from_stage,omitempty"`
	ToStage   int `json:"to_stage,omitempty"`

	// AchievementUnlocked / MissionCompleted
	AchievementID string `json:"achievement_id,omitempty"`
	MissionID     string `json:"mission_id,omitempty"`
	RewardCoins   int64  `json:"reward_coins,omitempty"`

	// InsufficientFunds
	Requested int64 `json:"requested,omitempty"`
	Available int64 `json:"available,omitempty"`
}

// EvaluationResult is the snapshot returned by the engine: the committed
// progress state, every transition that occurred (in order), and any
// readings excluded as malformed.
type EvaluationResult struct {
	Progress    ProgressState      `json:"progress"`
	Transitions []Transition       `json:"transitions,omitempty"`
	Malformed   []MalformedReading `json:"malformed,omitempty"`
}

// EvaluationSnapshot is the merged new state one evaluation produces.
// The state store commits it atomically — all of it lands or none of it.
type EvaluationSnapshot struct {
	Progress        ProgressState
	NewlyUnlocked   []string           // achievement ids to record
	RewardedMission *MissionRewardKey  // at most one per evaluation
}

// MissionRewardKey is the composite key guaranteeing at-most-one reward
// per mission occurrence.
type MissionRewardKey struct {
	MissionID string `json:"mission_id"`
	Date      string `json:"date"` // "YYYY-MM-DD", UTC
}
