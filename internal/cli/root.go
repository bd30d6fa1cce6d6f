// Package cli implements the Diabetree command-line interface using
// Cobra. Each subcommand maps to one engine capability (add, progress,
// shop, etc.).
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "diabetree",
	Short: "Diabetree — grow a tree by tracking your glucose",
	Long: `Diabetree is a progression and rewards engine for diabetes tracking.
Log glucose readings and watch your tree grow through four stages,
unlock achievements, complete daily missions, and spend coins on
collectible trees.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called from main.go.
func Execute(version string) {
	rootCmd.Version = version

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
