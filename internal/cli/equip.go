package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(equipCmd)
}

var equipCmd = &cobra.Command{
	Use:   "equip <collectible-id>",
	Short: "Display an owned collectible tree",
	Args:  cobra.ExactArgs(1),
	RunE:  runEquip,
}

func runEquip(cmd *cobra.Command, args []string) error {
	d, err := newDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	if err := d.Engine.Equip(d.Config.Profile.Owner, args[0]); err != nil {
		return err
	}
	fmt.Printf("Equipped %s\n", args[0])
	return nil
}
