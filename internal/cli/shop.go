package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/diabetree-app/diabetree/internal/domain"
)

func init() {
	rootCmd.AddCommand(shopCmd)
}

var shopCmd = &cobra.Command{
	Use:   "shop",
	Short: "Browse collectible trees",
	RunE:  runShop,
}

func runShop(cmd *cobra.Command, args []string) error {
	d, err := newDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	owner := d.Config.Profile.Owner
	owned, err := d.DB.OwnedCollectibles(owner)
	if err != nil {
		return err
	}
	ownedSet := make(map[string]bool, len(owned))
	for _, id := range owned {
		ownedSet[id] = true
	}
	balance, err := d.Wallet.Balance(owner)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tPRICE\tSTATUS")
	for _, c := range domain.Collectibles() {
		status := ""
		if ownedSet[c.ID] {
			status = "owned"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", c.ID, c.Name, c.Price, status)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\nBalance: %d coins\n", balance)
	return nil
}
