package engine_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/diabetree-app/diabetree/internal/app/engine"
	"github.com/diabetree-app/diabetree/internal/app/progression"
	"github.com/diabetree-app/diabetree/internal/app/wallet"
	"github.com/diabetree-app/diabetree/internal/domain"
	"github.com/diabetree-app/diabetree/internal/infra/sqlite"
)

const owner = "default"

// testDB creates a temporary SQLite database for testing.
func testDB(t *testing.T) *sqlite.DB {
	t.Helper()
	dir := t.TempDir()
	db, err := sqlite.Open(dir)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// newTestEngine wires an engine over a fresh database with the default
// catalogs and parameters.
func newTestEngine(t *testing.T) (*engine.Engine, *sqlite.DB, *wallet.Service) {
	t.Helper()
	db := testDB(t)
	params := engine.DefaultParams()

	achievements, err := progression.NewAchievementEvaluator(progression.DefaultAchievements())
	if err != nil {
		t.Fatalf("achievement catalog: %v", err)
	}
	missions, err := progression.NewMissionRotator(
		progression.DefaultMissions(params.Range), progression.DefaultMissionReward)
	if err != nil {
		t.Fatalf("mission catalog: %v", err)
	}

	w := wallet.NewService(db)
	eng := engine.New(db, db, w, nil, achievements, missions, params, nil)
	return eng, db, w
}

func insertInTarget(t *testing.T, db *sqlite.DB, id string, ts time.Time) {
	t.Helper()
	if err := db.InsertReading(owner, domain.Reading{ID: id, Value: 110, Timestamp: ts}); err != nil {
		t.Fatalf("insert %s: %v", id, err)
	}
}

func rewardSum(transitions []domain.Transition) int64 {
	var total int64
	for _, tr := range transitions {
		total += tr.RewardCoins
	}
	return total
}

func hasTransition(transitions []domain.Transition, typ domain.TransitionType) bool {
	for _, tr := range transitions {
		if tr.Type == typ {
			return true
		}
	}
	return false
}

func TestEvaluate_FirstReading(t *testing.T) {
	eng, db, _ := newTestEngine(t)
	noon := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	insertInTarget(t, db, "r1", noon)

	result, err := eng.EvaluateAt(owner, noon.Add(time.Minute))
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}

	if result.Progress.Stage != 1 {
		t.Errorf("one reading: expected stage 1, got %d", result.Progress.Stage)
	}
	if !result.Progress.UnlockedAchievementIDs["first_reading"] {
		t.Error("first_reading should unlock")
	}
	if !result.Progress.DailyMission.IsCompleted {
		t.Error("daily_first_reading should complete with one reading")
	}
	if !hasTransition(result.Transitions, domain.TransitionMissionCompleted) {
		t.Error("expected a mission-completed transition")
	}

	// Balance equals exactly the rewards granted this evaluation.
	if result.Progress.CoinBalance != rewardSum(result.Transitions) {
		t.Errorf("balance %d does not match granted rewards %d",
			result.Progress.CoinBalance, rewardSum(result.Transitions))
	}
	// first_reading (10) + daily mission (5)
	if result.Progress.CoinBalance != 15 {
		t.Errorf("expected 15 coins, got %d", result.Progress.CoinBalance)
	}
}

func TestEvaluate_Idempotent(t *testing.T) {
	eng, db, _ := newTestEngine(t)
	noon := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	insertInTarget(t, db, "r1", noon)

	first, err := eng.EvaluateAt(owner, noon.Add(time.Minute))
	if err != nil {
		t.Fatalf("first evaluate: %v", err)
	}
	second, err := eng.EvaluateAt(owner, noon.Add(2*time.Minute))
	if err != nil {
		t.Fatalf("second evaluate: %v", err)
	}

	if len(second.Transitions) != 0 {
		t.Errorf("re-evaluation produced transitions: %v", second.Transitions)
	}
	if second.Progress.CoinBalance != first.Progress.CoinBalance {
		t.Errorf("balance drifted: %d -> %d", first.Progress.CoinBalance, second.Progress.CoinBalance)
	}
	if second.Progress.Stage != first.Progress.Stage {
		t.Errorf("stage drifted: %d -> %d", first.Progress.Stage, second.Progress.Stage)
	}
}

func TestEvaluate_MissionRewardedOncePerDay(t *testing.T) {
	eng, db, _ := newTestEngine(t)
	noon := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	insertInTarget(t, db, "r1", noon)

	first, err := eng.EvaluateAt(owner, noon)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	want := first.Progress.CoinBalance

	for i := 0; i < 50; i++ {
		result, err := eng.EvaluateAt(owner, noon.Add(time.Duration(i+1)*time.Minute))
		if err != nil {
			t.Fatalf("evaluate %d: %v", i, err)
		}
		if result.Progress.CoinBalance != want {
			t.Fatalf("evaluation %d paid the mission again: %d != %d",
				i, result.Progress.CoinBalance, want)
		}
	}
}

func TestEvaluate_LevelUpThenDown(t *testing.T) {
	eng, db, _ := newTestEngine(t)
	noon := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)

	// 7 unique in-target readings crosses the stage 2 threshold.
	for i := 0; i < 7; i++ {
		insertInTarget(t, db, fmt.Sprintf("r%d", i), noon.Add(time.Duration(i)*10*time.Minute))
	}

	up, err := eng.EvaluateAt(owner, noon.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if up.Progress.Stage != 2 {
		t.Fatalf("expected stage 2, got %d", up.Progress.Stage)
	}
	if !hasTransition(up.Transitions, domain.TransitionLevelUp) {
		t.Error("expected a level-up transition")
	}
	if !up.Progress.UnlockedAchievementIDs["stage_2"] {
		t.Error("stage_2 achievement should unlock with the level up")
	}

	// Nine days later the readings have left the window: stage regresses,
	// but the lifetime max and the unlocked achievements do not.
	down, err := eng.EvaluateAt(owner, noon.AddDate(0, 0, 9))
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if down.Progress.Stage != 1 {
		t.Errorf("expected regression to stage 1, got %d", down.Progress.Stage)
	}
	if !hasTransition(down.Transitions, domain.TransitionLevelDown) {
		t.Error("expected a level-down transition")
	}
	if down.Progress.MaxStageReached != 2 {
		t.Errorf("lifetime max must not regress, got %d", down.Progress.MaxStageReached)
	}
	if !down.Progress.UnlockedAchievementIDs["stage_2"] {
		t.Error("achievements must never be revoked")
	}
	if down.Progress.CoinBalance != up.Progress.CoinBalance {
		t.Errorf("regression must not change the balance: %d -> %d",
			up.Progress.CoinBalance, down.Progress.CoinBalance)
	}
}

func TestEvaluate_MalformedExcludedNotFatal(t *testing.T) {
	eng, db, _ := newTestEngine(t)
	noon := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)

	insertInTarget(t, db, "good", noon)
	if err := db.InsertReading(owner, domain.Reading{ID: "bad", Value: -1, Timestamp: noon.Add(time.Hour)}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	result, err := eng.EvaluateAt(owner, noon.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("malformed reading aborted evaluation: %v", err)
	}
	if len(result.Malformed) != 1 || result.Malformed[0].ID != "bad" {
		t.Errorf("expected one malformed report for 'bad', got %v", result.Malformed)
	}
	if !result.Progress.UnlockedAchievementIDs["first_reading"] {
		t.Error("usable reading should still drive achievements")
	}
}

func TestPurchase_Flow(t *testing.T) {
	eng, db, w := newTestEngine(t)

	if _, err := w.Credit(owner, 120); err != nil {
		t.Fatalf("credit: %v", err)
	}

	balance, err := eng.Purchase(owner, "oak", 100)
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if balance != 20 {
		t.Errorf("expected balance 20, got %d", balance)
	}

	if _, err := eng.Purchase(owner, "oak", 100); !errors.Is(err, domain.ErrCollectibleOwned) {
		t.Errorf("re-purchase: expected ErrCollectibleOwned, got %v", err)
	}

	balance, err = eng.Purchase(owner, "apple", 220)
	if !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	if balance != 20 {
		t.Errorf("failed purchase changed balance: %d", balance)
	}

	if _, err := eng.Purchase(owner, "money_tree", 1); !errors.Is(err, domain.ErrUnknownCollectible) {
		t.Errorf("expected ErrUnknownCollectible, got %v", err)
	}

	owned, err := db.OwnedCollectibles(owner)
	if err != nil {
		t.Fatalf("owned: %v", err)
	}
	if len(owned) != 2 {
		t.Errorf("expected default + oak, got %v", owned)
	}
}

func TestPurchase_UnlocksCollectorOnNextEvaluation(t *testing.T) {
	eng, _, w := newTestEngine(t)

	if _, err := w.Credit(owner, 100); err != nil {
		t.Fatalf("credit: %v", err)
	}
	if _, err := eng.Purchase(owner, "oak", 100); err != nil {
		t.Fatalf("purchase: %v", err)
	}

	result, err := eng.EvaluateAt(owner, time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if !result.Progress.UnlockedAchievementIDs["collector"] {
		t.Error("owning a second tree should unlock collector")
	}
}

func TestEquip(t *testing.T) {
	eng, db, w := newTestEngine(t)

	if err := eng.Equip(owner, "oak"); !errors.Is(err, domain.ErrCollectibleNotOwned) {
		t.Errorf("equip unowned: expected ErrCollectibleNotOwned, got %v", err)
	}
	if err := eng.Equip(owner, "money_tree"); !errors.Is(err, domain.ErrUnknownCollectible) {
		t.Errorf("equip unknown: expected ErrUnknownCollectible, got %v", err)
	}

	if _, err := w.Credit(owner, 100); err != nil {
		t.Fatalf("credit: %v", err)
	}
	if _, err := eng.Purchase(owner, "oak", 100); err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if err := eng.Equip(owner, "oak"); err != nil {
		t.Fatalf("equip owned: %v", err)
	}

	p, err := db.LoadProgress(owner)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if p.EquippedCollectibleID != "oak" {
		t.Errorf("expected oak equipped, got %q", p.EquippedCollectibleID)
	}
}

func TestReset_RebuildsFromReadings(t *testing.T) {
	eng, db, _ := newTestEngine(t)
	noon := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	insertInTarget(t, db, "r1", noon)

	before, err := eng.EvaluateAt(owner, noon)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if before.Progress.CoinBalance == 0 {
		t.Fatal("setup: expected rewards before reset")
	}

	if err := eng.Reset(owner); err != nil {
		t.Fatalf("reset: %v", err)
	}

	p, err := db.LoadProgress(owner)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if p.CoinBalance != 0 || len(p.UnlockedAchievementIDs) != 0 {
		t.Errorf("reset left state behind: %+v", p)
	}

	// Readings survive, so re-evaluation re-earns from the same history.
	after, err := eng.EvaluateAt(owner, noon.Add(time.Hour))
	if err != nil {
		t.Fatalf("re-evaluate: %v", err)
	}
	if !after.Progress.UnlockedAchievementIDs["first_reading"] {
		t.Error("achievements should rebuild from kept readings")
	}
}
