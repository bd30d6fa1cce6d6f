package cli

import (
	"fmt"
	"strings"

	"github.com/diabetree-app/diabetree/internal/daemon"
	"github.com/diabetree-app/diabetree/internal/domain"
)

// newDaemon opens the configured runtime for a one-shot CLI command.
func newDaemon() (*daemon.Daemon, error) {
	return daemon.New(rootCmd.Version)
}

// stageName maps a growth stage to its display name.
func stageName(stage int) string {
	switch stage {
	case 1:
		return "Seedling"
	case 2:
		return "Sprout"
	case 3:
		return "Young Tree"
	case 4:
		return "Full Bloom"
	default:
		return fmt.Sprintf("Stage %d", stage)
	}
}

// progressBar renders a 20-char bar for a 0..1 fraction.
func progressBar(fraction float64) string {
	const width = 20
	filled := int(fraction * width)
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}

// printTransitions reports what an evaluation changed.
func printTransitions(transitions []domain.Transition) {
	for _, t := range transitions {
		switch t.Type {
		case domain.TransitionLevelUp:
			fmt.Printf("  Your tree grew! Stage %d -> %d (%s)\n", t.FromStage, t.ToStage, stageName(t.ToStage))
		case domain.TransitionLevelDown:
			fmt.Printf("  Your tree shrank. Stage %d -> %d (%s)\n", t.FromStage, t.ToStage, stageName(t.ToStage))
		case domain.TransitionAchievementUnlocked:
			fmt.Printf("  Achievement unlocked: %s (+%d coins)\n", t.AchievementID, t.RewardCoins)
		case domain.TransitionMissionCompleted:
			fmt.Printf("  Daily mission complete: %s (+%d coins)\n", t.MissionID, t.RewardCoins)
		case domain.TransitionInsufficientFunds:
			fmt.Printf("  Not enough coins: need %d, have %d\n", t.Requested, t.Available)
		}
	}
}
