package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/diabetree-app/diabetree/internal/app/progression"
)

func init() {
	rootCmd.AddCommand(achievementsCmd)
}

var achievementsCmd = &cobra.Command{
	Use:   "achievements",
	Short: "List achievements and unlock status",
	RunE:  runAchievements,
}

func runAchievements(cmd *cobra.Command, args []string) error {
	d, err := newDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	unlocked, err := d.DB.ListUnlockedAchievements(d.Config.Profile.Owner)
	if err != nil {
		return err
	}
	unlockedAt := make(map[string]string, len(unlocked))
	for _, u := range unlocked {
		unlockedAt[u.ID] = u.UnlockedAt.Format("2006-01-02")
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ACHIEVEMENT\tREWARD\tSTATUS")
	for _, def := range progression.DefaultAchievements() {
		status := "locked"
		if day, ok := unlockedAt[def.ID]; ok {
			status = "unlocked " + day
		}
		fmt.Fprintf(w, "%s\t%d coins\t%s\n", def.Name, def.RewardCoins, status)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\n%d of %d unlocked\n", len(unlocked), len(progression.DefaultAchievements()))
	return nil
}
