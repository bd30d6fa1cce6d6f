package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rmCmd.Flags().BoolVar(&rmAll, "all", false, "Delete every reading")
	rootCmd.AddCommand(rmCmd)
}

var rmAll bool

var rmCmd = &cobra.Command{
	Use:   "rm [reading-id]",
	Short: "Delete a reading (or all readings with --all)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRm,
}

func runRm(cmd *cobra.Command, args []string) error {
	d, err := newDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	owner := d.Config.Profile.Owner

	if rmAll {
		n, err := d.DB.DeleteAllReadings(owner)
		if err != nil {
			return err
		}
		fmt.Printf("Deleted %d readings\n", n)
		return nil
	}

	if len(args) == 0 {
		return fmt.Errorf("provide a reading id or --all")
	}
	if err := d.DB.DeleteReading(owner, args[0]); err != nil {
		return err
	}
	fmt.Printf("Deleted %s\n", args[0])
	return nil
}
