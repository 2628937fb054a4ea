// ABOUTME: CLI command for deleting health records.
// ABOUTME: Shows the record being removed before deleting it by ID.
package main

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/woofdog/healthrec/internal/models"
)

var deleteCmd = &cobra.Command{
	Use:     "delete <kind> <id>",
	Aliases: []string{"del", "rm"},
	Short:   "Delete a health record",
	Long: `Delete a health record by its kind and ID.

The ID is shown in the first column of 'healthrec list' output.

EXAMPLES:

  healthrec delete weight 1756710000
  healthrec rm glucose 1756713600

CAUTION:

  This permanently deletes the record. There is no undo.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid record ID: %s", args[1])
		}

		switch args[0] {
		case "weight":
			rec := table.BodyWeightByID(id)
			if rec == nil {
				return fmt.Errorf("weight record not found: %d", id)
			}
			if !table.DeleteBodyWeight(id) {
				return deleteFailure()
			}
			color.Yellow("✗ Deleted weight")
			fmt.Printf("  %s %.1f kg\n",
				models.TimeFromDate(rec.Date).Format("2006-01-02 15:04"), rec.Weight)
		case "bp":
			rec := table.BloodPressureByID(id)
			if rec == nil {
				return fmt.Errorf("blood pressure record not found: %d", id)
			}
			if !table.DeleteBloodPressure(id) {
				return deleteFailure()
			}
			color.Yellow("✗ Deleted blood pressure")
			fmt.Printf("  %s %d/%d mmHg\n",
				models.TimeFromDate(rec.Date).Format("2006-01-02 15:04"),
				rec.Systolic, rec.Diastolic)
		case "glucose":
			rec := table.BloodGlucoseByID(id)
			if rec == nil {
				return fmt.Errorf("glucose record not found: %d", id)
			}
			if !table.DeleteBloodGlucose(id) {
				return deleteFailure()
			}
			color.Yellow("✗ Deleted glucose")
			fmt.Printf("  %s %.1f (%s)\n",
				models.TimeFromDate(rec.Date).Format("2006-01-02 15:04"),
				rec.Glucose, rec.Meal)
		default:
			return fmt.Errorf("unknown record kind: %s (want weight, bp, or glucose)", args[0])
		}
		return nil
	},
}

func deleteFailure() error {
	if table.ReadOnly() {
		return fmt.Errorf("database is read-only")
	}
	return fmt.Errorf("failed to delete record")
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
