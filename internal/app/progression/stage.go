package progression

import "github.com/diabetree-app/diabetree/internal/domain"

// StageResult is the output of one stage calculation.
type StageResult struct {
	Stage         int     `json:"stage"`
	Progress      float64 `json:"progress"` // within-stage fraction, [0,1]
	OnTargetCount int     `json:"on_target_count"`
}

// CalculateStage maps the windowed in-target count to a growth stage and
// a within-stage progress fraction. The stage is a pure function of the
// count — recomputing it every evaluation is idempotent, and it can be
// lower than a previously persisted stage as old readings fall out of the
// window. Stage reflects recent behavior; lifetime bests are the
// achievement evaluator's concern.
func CalculateStage(unique []domain.Reading, tr domain.TargetRange) StageResult {
	count := 0
	for _, r := range unique {
		if r.InTarget(tr) {
			count++
		}
	}
	stage := StageForCount(count)
	return StageResult{
		Stage:         stage,
		Progress:      progressWithin(stage, count),
		OnTargetCount: count,
	}
}

// StageForCount returns the highest stage whose threshold the count
// satisfies, clamped to [MinStage, MaxStage].
func StageForCount(count int) int {
	stage := domain.MinStage
	for s := domain.MinStage; s <= domain.MaxStage; s++ {
		if count >= domain.StageThresholds[s-1] {
			stage = s
		}
	}
	return stage
}

// progressWithin returns the fraction of the current stage completed.
// Stage 4 has no next threshold and reports 1 (fully grown).
func progressWithin(stage, count int) float64 {
	if stage >= domain.MaxStage {
		return 1
	}
	cur := domain.StageThresholds[stage-1]
	next := domain.StageThresholds[stage]
	frac := float64(count-cur) / float64(next-cur)
	if frac < 0 {
		return 0
	}
	if frac > 1 {
		return 1
	}
	return frac
}
