package progression_test

import (
	"testing"
	"time"

	"github.com/diabetree-app/diabetree/internal/app/progression"
	"github.com/diabetree-app/diabetree/internal/domain"
)

var testRange = domain.DefaultTargetRange()

// reading builds an in-target reading at the given time.
func reading(ts time.Time) domain.Reading {
	return domain.Reading{ID: ts.Format(time.RFC3339Nano), Value: 110, Timestamp: ts}
}

// readingValue builds a reading with a specific glucose value.
func readingValue(ts time.Time, value float64) domain.Reading {
	r := reading(ts)
	r.Value = value
	return r
}

// ═══════════════════════════════════════════════════════════════════════════
// Normalization Tests
// ═══════════════════════════════════════════════════════════════════════════

func TestSplitMalformed(t *testing.T) {
	now := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	in := []domain.Reading{
		reading(now),
		{ID: "no-ts", Value: 120},
		{ID: "zero-value", Value: 0, Timestamp: now},
		{ID: "negative", Value: -4, Timestamp: now},
	}

	ok, bad := progression.SplitMalformed(in)
	if len(ok) != 1 {
		t.Fatalf("expected 1 usable reading, got %d", len(ok))
	}
	if len(bad) != 3 {
		t.Fatalf("expected 3 malformed readings, got %d", len(bad))
	}
	if bad[0].ID != "no-ts" || bad[0].Reason == "" {
		t.Errorf("malformed entry should carry id and reason, got %+v", bad[0])
	}
}

func TestUniqueRecent_ClusterCountsOnce(t *testing.T) {
	now := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	base := now.Add(-1 * time.Hour)

	// Three readings within one 5-minute cluster, then one clear of it.
	in := []domain.Reading{
		reading(base),
		reading(base.Add(1 * time.Minute)),
		reading(base.Add(4 * time.Minute)),
		reading(base.Add(10 * time.Minute)),
	}

	unique := progression.UniqueRecent(in, now, progression.DefaultWindow, progression.DefaultSpacing)
	if len(unique) != 2 {
		t.Fatalf("expected 2 unique readings, got %d", len(unique))
	}
	if !unique[0].Timestamp.Equal(base) {
		t.Errorf("cluster should keep its earliest reading, got %v", unique[0].Timestamp)
	}
}

func TestUniqueRecent_ExactSpacingKept(t *testing.T) {
	now := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	base := now.Add(-1 * time.Hour)

	in := []domain.Reading{
		reading(base),
		reading(base.Add(progression.DefaultSpacing)), // exactly 5 min later
	}

	unique := progression.UniqueRecent(in, now, progression.DefaultWindow, progression.DefaultSpacing)
	if len(unique) != 2 {
		t.Fatalf("reading exactly spacing apart should be kept, got %d unique", len(unique))
	}
}

func TestUniqueRecent_WindowExcludesOld(t *testing.T) {
	now := time.Date(2025, 8, 10, 12, 0, 0, 0, time.UTC)
	in := []domain.Reading{
		reading(now.Add(-8 * 24 * time.Hour)), // outside 7-day window
		reading(now.Add(-6 * 24 * time.Hour)),
		reading(now.Add(-progression.DefaultWindow)), // exactly on the cutoff
	}

	unique := progression.UniqueRecent(in, now, progression.DefaultWindow, progression.DefaultSpacing)
	if len(unique) != 2 {
		t.Fatalf("expected 2 readings inside the window, got %d", len(unique))
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Stage Tests
// ═══════════════════════════════════════════════════════════════════════════

func TestStageForCount_Boundaries(t *testing.T) {
	cases := []struct {
		count int
		stage int
	}{
		{0, 1}, {6, 1},
		{7, 2}, {16, 2},
		{17, 3}, {36, 3},
		{37, 4}, {100, 4},
	}
	for _, c := range cases {
		if got := progression.StageForCount(c.count); got != c.stage {
			t.Errorf("count %d: expected stage %d, got %d", c.count, c.stage, got)
		}
	}
}

func TestCalculateStage_ProgressFraction(t *testing.T) {
	now := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)

	mk := func(n int) []domain.Reading {
		out := make([]domain.Reading, n)
		for i := 0; i < n; i++ {
			out[i] = reading(now.Add(time.Duration(i) * time.Hour))
		}
		return out
	}

	cases := []struct {
		count    int
		stage    int
		progress float64
	}{
		{0, 1, 0},
		{7, 2, 0},
		{8, 2, 0.1},
		{16, 2, 0.9},
		{17, 3, 0},
		{37, 4, 1}, // final stage always reports fully grown
	}
	for _, c := range cases {
		res := progression.CalculateStage(mk(c.count), testRange)
		if res.Stage != c.stage {
			t.Errorf("count %d: expected stage %d, got %d", c.count, c.stage, res.Stage)
		}
		if diff := res.Progress - c.progress; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("count %d: expected progress %.2f, got %.4f", c.count, c.progress, res.Progress)
		}
	}
}

func TestCalculateStage_OnlyInTargetCounts(t *testing.T) {
	now := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	var in []domain.Reading
	for i := 0; i < 7; i++ {
		in = append(in, reading(now.Add(time.Duration(i)*time.Hour)))
	}
	in = append(in,
		readingValue(now.Add(8*time.Hour), 250), // high
		readingValue(now.Add(9*time.Hour), 55),  // low
	)

	res := progression.CalculateStage(in, testRange)
	if res.OnTargetCount != 7 {
		t.Errorf("expected 7 in-target, got %d", res.OnTargetCount)
	}
	if res.Stage != 2 {
		t.Errorf("expected stage 2, got %d", res.Stage)
	}
}

func TestClassify_InclusiveBounds(t *testing.T) {
	if domain.Classify(70, testRange) != domain.ClassInTarget {
		t.Error("70 should be in target (inclusive lower bound)")
	}
	if domain.Classify(180, testRange) != domain.ClassInTarget {
		t.Error("180 should be in target (inclusive upper bound)")
	}
	if domain.Classify(69.9, testRange) != domain.ClassLow {
		t.Error("69.9 should be low")
	}
	if domain.Classify(180.1, testRange) != domain.ClassHigh {
		t.Error("180.1 should be high")
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Achievement Tests
// ═══════════════════════════════════════════════════════════════════════════

func newEvaluator(t *testing.T) *progression.AchievementEvaluator {
	t.Helper()
	ev, err := progression.NewAchievementEvaluator(progression.DefaultAchievements())
	if err != nil {
		t.Fatalf("build evaluator: %v", err)
	}
	return ev
}

func TestAchievements_FirstReading(t *testing.T) {
	ev := newEvaluator(t)
	now := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)

	newly := ev.Evaluate([]domain.Reading{reading(now)}, nil, domain.StatsContext{Range: testRange})
	ids := make(map[string]bool)
	for _, def := range newly {
		ids[def.ID] = true
	}
	if !ids["first_reading"] {
		t.Error("first_reading should unlock with one reading")
	}
	if ids["readings_10"] {
		t.Error("readings_10 should not unlock with one reading")
	}
}

func TestAchievements_AlreadyUnlockedSkipped(t *testing.T) {
	ev := newEvaluator(t)
	now := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	all := []domain.Reading{reading(now)}

	unlocked := map[string]bool{"first_reading": true}
	for _, def := range ev.Evaluate(all, unlocked, domain.StatsContext{Range: testRange}) {
		if def.ID == "first_reading" {
			t.Fatal("already-unlocked achievement must never re-fire")
		}
	}
}

func TestAchievements_HealthyWeek(t *testing.T) {
	ev := newEvaluator(t)
	base := time.Date(2025, 8, 1, 9, 0, 0, 0, time.UTC)

	var all []domain.Reading
	for i := 0; i < 6; i++ {
		all = append(all, reading(base.AddDate(0, 0, i)))
	}

	if unlockedIDs(ev.Evaluate(all, nil, domain.StatsContext{Range: testRange}))["healthy_week"] {
		t.Error("6 consecutive days must not unlock healthy_week")
	}

	all = append(all, reading(base.AddDate(0, 0, 6)))
	if !unlockedIDs(ev.Evaluate(all, nil, domain.StatsContext{Range: testRange}))["healthy_week"] {
		t.Error("7 consecutive days should unlock healthy_week")
	}
}

func TestAchievements_HealthyWeekGapBreaksRun(t *testing.T) {
	ev := newEvaluator(t)
	base := time.Date(2025, 8, 1, 9, 0, 0, 0, time.UTC)

	var all []domain.Reading
	for i := 0; i < 8; i++ {
		if i == 3 {
			continue // missed day
		}
		all = append(all, reading(base.AddDate(0, 0, i)))
	}

	if unlockedIDs(ev.Evaluate(all, nil, domain.StatsContext{Range: testRange}))["healthy_week"] {
		t.Error("a gap in the run must not unlock healthy_week")
	}
}

func TestAchievements_PerfectDay(t *testing.T) {
	ev := newEvaluator(t)
	day := time.Date(2025, 8, 1, 8, 0, 0, 0, time.UTC)

	all := []domain.Reading{
		reading(day),
		reading(day.Add(4 * time.Hour)),
		readingValue(day.Add(8*time.Hour), 240), // one high reading spoils the day
	}
	if unlockedIDs(ev.Evaluate(all, nil, domain.StatsContext{Range: testRange}))["perfect_day"] {
		t.Error("day with a high reading must not be perfect")
	}

	all[2] = reading(day.Add(8 * time.Hour))
	if !unlockedIDs(ev.Evaluate(all, nil, domain.StatsContext{Range: testRange}))["perfect_day"] {
		t.Error("3 in-target readings in one day should unlock perfect_day")
	}
}

func TestAchievements_StageAndCollector(t *testing.T) {
	ev := newEvaluator(t)

	ctx := domain.StatsContext{
		Range:               testRange,
		MaxStageReached:     4,
		OwnedCollectibleIDs: []string{"normal_tree", "oak"},
	}
	ids := unlockedIDs(ev.Evaluate(nil, nil, ctx))
	for _, want := range []string{"stage_2", "stage_3", "full_bloom", "collector"} {
		if !ids[want] {
			t.Errorf("expected %s to unlock, got %v", want, ids)
		}
	}
}

func TestAchievements_NightOwl(t *testing.T) {
	ev := newEvaluator(t)
	night := time.Date(2025, 8, 1, 23, 30, 0, 0, time.UTC)

	ids := unlockedIDs(ev.Evaluate([]domain.Reading{reading(night)}, nil, domain.StatsContext{Range: testRange}))
	if !ids["night_owl"] {
		t.Error("23:30 UTC reading should unlock night_owl")
	}
}

func TestNewAchievementEvaluator_RejectsBadCatalog(t *testing.T) {
	if _, err := progression.NewAchievementEvaluator(nil); err == nil {
		t.Error("empty catalog should be rejected")
	}

	dup := []domain.AchievementDef{
		{ID: "x", Predicate: func([]domain.Reading, domain.StatsContext) bool { return false }},
		{ID: "x", Predicate: func([]domain.Reading, domain.StatsContext) bool { return false }},
	}
	if _, err := progression.NewAchievementEvaluator(dup); err == nil {
		t.Error("duplicate ids should be rejected")
	}
}

func unlockedIDs(defs []domain.AchievementDef) map[string]bool {
	ids := make(map[string]bool, len(defs))
	for _, def := range defs {
		ids[def.ID] = true
	}
	return ids
}

// ═══════════════════════════════════════════════════════════════════════════
// Daily Mission Tests
// ═══════════════════════════════════════════════════════════════════════════

func newRotator(t *testing.T) *progression.MissionRotator {
	t.Helper()
	rot, err := progression.NewMissionRotator(progression.DefaultMissions(testRange), progression.DefaultMissionReward)
	if err != nil {
		t.Fatalf("build rotator: %v", err)
	}
	return rot
}

func TestMission_FirstRunStartsAtCatalogHead(t *testing.T) {
	rot := newRotator(t)

	state := rot.Rotate(domain.DailyMissionState{}, nil, "2025-08-01")
	if state.CurrentMissionID != "daily_first_reading" {
		t.Errorf("expected catalog head, got %s", state.CurrentMissionID)
	}
	if state.IsCompleted {
		t.Error("no readings today, mission must not be complete")
	}
	if state.LastCheckedDate != "2025-08-01" {
		t.Errorf("expected date stamp, got %q", state.LastCheckedDate)
	}
}

func TestMission_NewDayAdvancesCircularly(t *testing.T) {
	rot := newRotator(t)
	catalog := rot.Catalog()

	state := domain.DailyMissionState{
		CurrentMissionID: catalog[len(catalog)-1].ID,
		LastCheckedDate:  "2025-08-01",
	}
	next := rot.Rotate(state, nil, "2025-08-02")
	if next.CurrentMissionID != catalog[0].ID {
		t.Errorf("rotation should wrap to catalog head, got %s", next.CurrentMissionID)
	}
}

func TestMission_SameDayCompletesOnNewReadings(t *testing.T) {
	rot := newRotator(t)
	day := "2025-08-01"

	state := rot.Rotate(domain.DailyMissionState{}, nil, day)
	if state.IsCompleted {
		t.Fatal("should start incomplete")
	}

	noon := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	state = rot.Rotate(state, []domain.Reading{reading(noon)}, day)
	if !state.IsCompleted {
		t.Error("first reading of the day should complete the mission")
	}
}

func TestMission_CompletionNeverFlipsBack(t *testing.T) {
	rot := newRotator(t)
	day := "2025-08-01"
	noon := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)

	state := rot.Rotate(domain.DailyMissionState{}, []domain.Reading{reading(noon)}, day)
	if !state.IsCompleted {
		t.Fatal("setup: mission should be complete")
	}

	// Re-evaluating with an empty day must not undo completion.
	state = rot.Rotate(state, nil, day)
	if !state.IsCompleted {
		t.Error("completed mission flipped back to incomplete")
	}
}

func TestMission_RetiredIDRestartsRotation(t *testing.T) {
	rot := newRotator(t)

	state := domain.DailyMissionState{
		CurrentMissionID: "mission_removed_from_catalog",
		LastCheckedDate:  "2025-08-01",
	}
	next := rot.Rotate(state, nil, "2025-08-02")
	if next.CurrentMissionID != rot.Catalog()[0].ID {
		t.Errorf("unknown previous mission should restart at head, got %s", next.CurrentMissionID)
	}
}

func TestMission_HealthyLevelsRequiresAllInTarget(t *testing.T) {
	rot := newRotator(t)
	def := rot.ByID("daily_healthy_levels")
	if def == nil {
		t.Fatal("daily_healthy_levels missing from catalog")
	}

	noon := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	if def.Predicate(nil) {
		t.Error("zero readings must not satisfy healthy levels")
	}
	if !def.Predicate([]domain.Reading{reading(noon)}) {
		t.Error("all in-target readings should satisfy healthy levels")
	}
	if def.Predicate([]domain.Reading{reading(noon), readingValue(noon.Add(time.Hour), 300)}) {
		t.Error("a high reading must fail healthy levels")
	}
}
