package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/diabetree-app/diabetree/internal/domain"
)

func init() {
	addCmd.Flags().StringVar(&addAt, "at", "", "Reading time, RFC3339 (default: now)")
	addCmd.Flags().StringVar(&addMeal, "meal", "", "Meal context (e.g. before-breakfast)")
	addCmd.Flags().StringVar(&addActivity, "activity", "", "Activity context")
	addCmd.Flags().StringVar(&addNotes, "notes", "", "Free-form notes")
	rootCmd.AddCommand(addCmd)
}

var (
	addAt       string
	addMeal     string
	addActivity string
	addNotes    string
)

var addCmd = &cobra.Command{
	Use:   "add <mg/dL>",
	Short: "Record a glucose reading and update your tree",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdd,
}

func runAdd(cmd *cobra.Command, args []string) error {
	value, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("invalid glucose value %q", args[0])
	}
	if value <= 0 {
		return domain.ErrInvalidValue
	}

	ts := time.Now().UTC()
	if addAt != "" {
		ts, err = time.Parse(time.RFC3339, addAt)
		if err != nil {
			return fmt.Errorf("parse --at: %w", err)
		}
		ts = ts.UTC()
	}

	d, err := newDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	reading := domain.Reading{
		ID:              uuid.NewString(),
		Value:           value,
		Timestamp:       ts,
		MealContext:     addMeal,
		ActivityContext: addActivity,
		Notes:           addNotes,
	}
	owner := d.Config.Profile.Owner
	if err := d.DB.InsertReading(owner, reading); err != nil {
		return err
	}

	result, err := d.Engine.Evaluate(owner)
	if err != nil {
		return err
	}

	tr := domain.TargetRange{Min: d.Config.Profile.TargetMin, Max: d.Config.Profile.TargetMax}
	fmt.Printf("Recorded %.0f mg/dL (%s)\n", value, classLabel(domain.Classify(value, tr)))
	printTransitions(result.Transitions)
	return nil
}

func classLabel(c domain.Classification) string {
	switch c {
	case domain.ClassLow:
		return "low"
	case domain.ClassHigh:
		return "high"
	default:
		return "in target"
	}
}
