package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(progressCmd)
}

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Evaluate and show your tree's current state",
	RunE:  runProgress,
}

func runProgress(cmd *cobra.Command, args []string) error {
	d, err := newDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	result, err := d.Engine.Evaluate(d.Config.Profile.Owner)
	if err != nil {
		return err
	}
	p := result.Progress

	fmt.Printf("Stage %d — %s\n", p.Stage, stageName(p.Stage))
	fmt.Printf("Progress %s %.0f%%\n", progressBar(p.StageProgress), p.StageProgress*100)
	fmt.Printf("Coins: %d\n", p.CoinBalance)
	fmt.Printf("Achievements: %d unlocked\n", len(p.UnlockedAchievementIDs))
	if p.DailyMission.CurrentMissionID != "" {
		status := "in progress"
		if p.DailyMission.IsCompleted {
			status = "complete"
		}
		fmt.Printf("Today's mission: %s (%s)\n", p.DailyMission.CurrentMissionID, status)
	}
	if p.EquippedCollectibleID != "" {
		fmt.Printf("Equipped tree: %s\n", p.EquippedCollectibleID)
	}
	if len(result.Malformed) > 0 {
		fmt.Printf("Warning: %d malformed readings excluded\n", len(result.Malformed))
	}
	printTransitions(result.Transitions)
	return nil
}
