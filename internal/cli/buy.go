package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/diabetree-app/diabetree/internal/domain"
)

func init() {
	rootCmd.AddCommand(buyCmd)
}

var buyCmd = &cobra.Command{
	Use:   "buy <collectible-id>",
	Short: "Buy a collectible tree with coins",
	Args:  cobra.ExactArgs(1),
	RunE:  runBuy,
}

func runBuy(cmd *cobra.Command, args []string) error {
	d, err := newDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	item := domain.CollectibleByID(args[0])
	if item == nil {
		return fmt.Errorf("%w: %s", domain.ErrUnknownCollectible, args[0])
	}

	balance, err := d.Engine.Purchase(d.Config.Profile.Owner, item.ID, item.Price)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientFunds) {
			return fmt.Errorf("not enough coins: %s costs %d, you have %d", item.Name, item.Price, balance)
		}
		return err
	}

	fmt.Printf("Bought %s for %d coins. Balance: %d\n", item.Name, item.Price, balance)
	return nil
}
