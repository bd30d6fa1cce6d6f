package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/diabetree-app/diabetree/internal/app/progression"
	"github.com/diabetree-app/diabetree/internal/domain"
)

func init() {
	rootCmd.AddCommand(missionCmd)
}

var missionCmd = &cobra.Command{
	Use:   "mission",
	Short: "Show today's daily mission",
	RunE:  runMission,
}

func runMission(cmd *cobra.Command, args []string) error {
	d, err := newDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	result, err := d.Engine.Evaluate(d.Config.Profile.Owner)
	if err != nil {
		return err
	}
	state := result.Progress.DailyMission

	tr := domain.TargetRange{Min: d.Config.Profile.TargetMin, Max: d.Config.Profile.TargetMax}
	var def *domain.DailyMissionDef
	for _, m := range progression.DefaultMissions(tr) {
		if m.ID == state.CurrentMissionID {
			def = &m
			break
		}
	}

	if def == nil {
		fmt.Println("No mission assigned yet. Record a reading first.")
		return nil
	}

	status := "in progress"
	if state.IsCompleted {
		status = "complete"
	}
	fmt.Printf("%s — %s\n", def.Name, def.Description)
	fmt.Printf("Status: %s (reward %d coins)\n", status, progression.DefaultMissionReward)
	return nil
}
