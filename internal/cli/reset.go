package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	resetCmd.Flags().BoolVar(&resetYes, "yes", false, "Skip confirmation")
	rootCmd.AddCommand(resetCmd)
}

var resetYes bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset progression state (readings are kept)",
	Long: `Reset stage, coins, achievements, missions, and collectibles back to
defaults. Readings are kept, so the next evaluation rebuilds stage and
achievements from the same history.`,
	RunE: runReset,
}

func runReset(cmd *cobra.Command, args []string) error {
	if !resetYes {
		fmt.Print("Reset all progression state? [y/N] ")
		var answer string
		fmt.Scanln(&answer)
		if answer != "y" && answer != "Y" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	d, err := newDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	if err := d.Engine.Reset(d.Config.Profile.Owner); err != nil {
		return err
	}
	fmt.Println("Progression reset.")
	return nil
}
