package cli

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/diabetree-app/diabetree/internal/domain"
)

func init() {
	readingsCmd.Flags().StringVar(&readingsSince, "since", "", "Only readings at or after this RFC3339 time")
	rootCmd.AddCommand(readingsCmd)
}

var readingsSince string

var readingsCmd = &cobra.Command{
	Use:     "readings",
	Aliases: []string{"ls"},
	Short:   "List recorded glucose readings",
	RunE:    runReadings,
}

func runReadings(cmd *cobra.Command, args []string) error {
	d, err := newDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	owner := d.Config.Profile.Owner
	var readings []domain.Reading
	if readingsSince != "" {
		since, err := time.Parse(time.RFC3339, readingsSince)
		if err != nil {
			return fmt.Errorf("parse --since: %w", err)
		}
		readings, err = d.DB.ListReadingsSince(owner, since)
		if err != nil {
			return err
		}
	} else {
		readings, err = d.DB.ListReadings(owner)
		if err != nil {
			return err
		}
	}

	if len(readings) == 0 {
		fmt.Println("No readings yet. Run 'diabetree add <mg/dL>' to get started.")
		return nil
	}

	tr := domain.TargetRange{Min: d.Config.Profile.TargetMin, Max: d.Config.Profile.TargetMax}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tVALUE\tSTATUS\tMEAL\tID")
	for _, r := range readings {
		fmt.Fprintf(w, "%s\t%.0f\t%s\t%s\t%s\n",
			r.Timestamp.Format("2006-01-02 15:04"),
			r.Value,
			classLabel(domain.Classify(r.Value, tr)),
			r.MealContext,
			r.ID,
		)
	}
	return w.Flush()
}
