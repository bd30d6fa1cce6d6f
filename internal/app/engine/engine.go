// Package engine implements the evaluation orchestrator — the single
// entry point the host calls whenever it wants a fresh progression
// snapshot. One Evaluate call is one critical section: load state, run
// the pure progression passes, apply reward credits, commit everything
// atomically, then emit notifications.
package engine

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/diabetree-app/diabetree/internal/app/progression"
	"github.com/diabetree-app/diabetree/internal/app/wallet"
	"github.com/diabetree-app/diabetree/internal/domain"
	"github.com/diabetree-app/diabetree/internal/infra/metrics"
)

// Params are the evaluation knobs, per profile.
type Params struct {
	Range   domain.TargetRange
	Window  time.Duration // lookback for the stage calculation
	Spacing time.Duration // minimum gap between unique readings
}

// DefaultParams returns the standard configuration.
func DefaultParams() Params {
	return Params{
		Range:   domain.DefaultTargetRange(),
		Window:  progression.DefaultWindow,
		Spacing: progression.DefaultSpacing,
	}
}

// Engine composes the progression components over the injected
// collaborators. Safe for repeated, rapid invocation: the single-flight
// mutex serializes overlapping calls so two evaluations can never read
// the same stale reward state.
type Engine struct {
	readings     domain.ReadingStore
	state        domain.StateStore
	wallet       *wallet.Service
	sink         domain.NotificationSink
	achievements *progression.AchievementEvaluator
	missions     *progression.MissionRotator
	params       Params

	mu  *sync.Mutex
	now func() time.Time
}

// New wires an engine. The mutex is an explicit dependency so a host
// embedding several surfaces over one database can share the guard;
// passing nil gives the engine its own.
func New(
	readings domain.ReadingStore,
	state domain.StateStore,
	w *wallet.Service,
	sink domain.NotificationSink,
	achievements *progression.AchievementEvaluator,
	missions *progression.MissionRotator,
	params Params,
	mu *sync.Mutex,
) *Engine {
	if mu == nil {
		mu = &sync.Mutex{}
	}
	if sink == nil {
		sink = domain.NopSink{}
	}
	return &Engine{
		readings:     readings,
		state:        state,
		wallet:       w,
		sink:         sink,
		achievements: achievements,
		missions:     missions,
		params:       params,
		mu:           mu,
		now:          time.Now,
	}
}

// Evaluate recomputes the owner's full progression state from the
// reading stream and persisted state, commits it, and reports every
// transition. Idempotent: with no new readings, a second call yields an
// identical state and zero transitions.
func (e *Engine) Evaluate(owner string) (domain.EvaluationResult, error) {
	return e.EvaluateAt(owner, e.now())
}

// EvaluateAt is Evaluate with an explicit clock, for testability.
func (e *Engine) EvaluateAt(owner string, now time.Time) (domain.EvaluationResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var result domain.EvaluationResult

	// (1) Load persisted state and the full reading stream.
	prev, err := e.state.LoadProgress(owner)
	if err != nil {
		metrics.EvaluationErrors.Inc()
		return result, domain.DataErr("load progress", err)
	}
	all, err := e.readings.ListReadings(owner)
	if err != nil {
		metrics.EvaluationErrors.Inc()
		return result, domain.DataErr("list readings", err)
	}

	// (2) Normalize: drop malformed records, then window + dedup.
	usable, malformed := progression.SplitMalformed(all)
	unique := progression.UniqueRecent(usable, now, e.params.Window, e.params.Spacing)

	var transitions []domain.Transition
	var delta wallet.Delta

	// (3) Stage: pure function of the windowed in-target count. May be
	// lower than the persisted stage as old readings leave the window.
	stageRes := progression.CalculateStage(unique, e.params.Range)
	switch {
	case stageRes.Stage > prev.Stage:
		transitions = append(transitions, domain.Transition{
			Type: domain.TransitionLevelUp, FromStage: prev.Stage, ToStage: stageRes.Stage,
		})
	case stageRes.Stage < prev.Stage:
		transitions = append(transitions, domain.Transition{
			Type: domain.TransitionLevelDown, FromStage: prev.Stage, ToStage: stageRes.Stage,
		})
	}
	maxStage := prev.MaxStageReached
	if stageRes.Stage > maxStage {
		maxStage = stageRes.Stage
	}

	// (4) Achievements: all-time data, monotone unlock set.
	owned, err := e.state.OwnedCollectibles(owner)
	if err != nil {
		metrics.EvaluationErrors.Inc()
		return result, domain.DataErr("owned collectibles", err)
	}
	ctx := domain.StatsContext{
		Range:               e.params.Range,
		MaxStageReached:     maxStage,
		OwnedCollectibleIDs: owned,
	}
	newly := e.achievements.Evaluate(usable, prev.UnlockedAchievementIDs, ctx)

	unlocked := make(map[string]bool, len(prev.UnlockedAchievementIDs)+len(newly))
	for id := range prev.UnlockedAchievementIDs {
		unlocked[id] = true
	}
	newlyIDs := make([]string, 0, len(newly))
	for _, def := range newly {
		unlocked[def.ID] = true
		newlyIDs = append(newlyIDs, def.ID)
		delta.Add(def.RewardCoins)
		transitions = append(transitions, domain.Transition{
			Type:          domain.TransitionAchievementUnlocked,
			AchievementID: def.ID,
			RewardCoins:   def.RewardCoins,
		})
	}

	// (5) Daily mission: rotate or re-check, reward at most once per
	// (mission, date) pair.
	today := now.UTC().Format("2006-01-02")
	missionState := e.missions.Rotate(prev.DailyMission, progression.ReadingsOnDay(usable, today), today)

	var rewardedKey *domain.MissionRewardKey
	if missionState.IsCompleted {
		alreadyRewarded, err := e.state.IsMissionRewarded(owner, missionState.CurrentMissionID, today)
		if err != nil {
			metrics.EvaluationErrors.Inc()
			return result, domain.DataErr("check mission reward", err)
		}
		if !alreadyRewarded {
			reward := e.missions.RewardCoins()
			delta.Add(reward)
			rewardedKey = &domain.MissionRewardKey{MissionID: missionState.CurrentMissionID, Date: today}
			transitions = append(transitions, domain.Transition{
				Type:        domain.TransitionMissionCompleted,
				MissionID:   missionState.CurrentMissionID,
				RewardCoins: reward,
			})
		}
	}

	// (6) Apply all pending credits as one balance write.
	next := domain.ProgressState{
		Stage:                  stageRes.Stage,
		StageProgress:          stageRes.Progress,
		CoinBalance:            prev.CoinBalance + delta.Total(),
		UnlockedAchievementIDs: unlocked,
		DailyMission:           missionState,
		EquippedCollectibleID:  prev.EquippedCollectibleID,
		MaxStageReached:        maxStage,
	}

	// (7) Commit atomically. If this fails the whole evaluation failed:
	// no notifications for rewards that were never durably recorded.
	snap := domain.EvaluationSnapshot{
		Progress:        next,
		NewlyUnlocked:   newlyIDs,
		RewardedMission: rewardedKey,
	}
	if err := e.state.CommitEvaluation(owner, snap); err != nil {
		metrics.EvaluationErrors.Inc()
		return result, domain.DataErr("commit evaluation", err)
	}

	metrics.Evaluations.Inc()
	metrics.CoinsCredited.Add(float64(delta.Total()))
	metrics.CoinBalance.Set(float64(next.CoinBalance))
	metrics.MalformedReadings.Add(float64(len(malformed)))

	// (8) Report transitions — after commit, never before.
	for _, t := range transitions {
		metrics.Transitions.WithLabelValues(string(t.Type)).Inc()
		e.sink.Notify(owner, t)
	}

	result.Progress = next
	result.Transitions = transitions
	result.Malformed = malformed
	return result, nil
}

// Purchase spends coins on a shop collectible. The balance check, the
// debit, and recording ownership are one atomic step. Insufficient funds
// is an expected outcome, reported as a transition and returned as
// domain.ErrInsufficientFunds.
func (e *Engine) Purchase(owner, itemID string, price int64) (int64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	item := domain.CollectibleByID(itemID)
	if item == nil {
		return 0, fmt.Errorf("%w: %s", domain.ErrUnknownCollectible, itemID)
	}

	owned, err := e.state.OwnedCollectibles(owner)
	if err != nil {
		return 0, domain.DataErr("owned collectibles", err)
	}
	for _, id := range owned {
		if id == itemID {
			return 0, fmt.Errorf("%w: %s", domain.ErrCollectibleOwned, itemID)
		}
	}

	balance, err := e.wallet.PurchaseCollectible(owner, itemID, price)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientFunds) {
			t := domain.Transition{
				Type:      domain.TransitionInsufficientFunds,
				Requested: price,
				Available: balance,
			}
			metrics.Transitions.WithLabelValues(string(t.Type)).Inc()
			e.sink.Notify(owner, t)
		}
		return balance, err
	}
	return balance, nil
}

// Equip sets the displayed tree. The collectible must be owned.
func (e *Engine) Equip(owner, itemID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if domain.CollectibleByID(itemID) == nil {
		return fmt.Errorf("%w: %s", domain.ErrUnknownCollectible, itemID)
	}
	owned, err := e.state.OwnedCollectibles(owner)
	if err != nil {
		return domain.DataErr("owned collectibles", err)
	}
	for _, id := range owned {
		if id == itemID {
			return e.state.EquipCollectible(owner, itemID)
		}
	}
	return fmt.Errorf("%w: %s", domain.ErrCollectibleNotOwned, itemID)
}

// Reset clears progression state back to defaults. Readings are not
// touched — deleting them is the reading store's own operation.
func (e *Engine) Reset(owner string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.ResetProgress(owner)
}
