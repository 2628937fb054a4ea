// ABOUTME: CLI command showing database metadata and record counts.
// ABOUTME: Also updates the free-form database description.
package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var infoSetDescription string

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show database information",
	Long: `Show the database file, its mode, description, last modification
time, and record counts.

Use --set-description to change the free-form description stored in the
database.

EXAMPLES:

  healthrec info
  healthrec info --set-description "Alice's records"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("set-description") {
			if !table.SetDescription(infoSetDescription) {
				if table.ReadOnly() {
					return fmt.Errorf("database is read-only")
				}
				return fmt.Errorf("failed to update description")
			}
			color.Green("✓ Description updated")
		}

		mode := "read-write"
		if table.ReadOnly() {
			mode = "read-only"
		}
		fmt.Printf("File:          %s\n", table.FileName())
		fmt.Printf("Mode:          %s\n", mode)

		if desc, ok := table.Description(); ok && desc != "" {
			fmt.Printf("Description:   %s\n", desc)
		}
		if lm, ok := table.LastModified(); ok {
			stamp := "never"
			if lm > 0 {
				stamp = time.Unix(lm, 0).Format("2006-01-02 15:04:05")
			}
			fmt.Printf("Last modified: %s\n", stamp)
		}

		if n, ok := table.BodyWeightCount(); ok {
			fmt.Printf("Weight records:   %d\n", n)
		}
		if n, ok := table.BloodPressureCount(); ok {
			fmt.Printf("Pressure records: %d\n", n)
		}
		if n, ok := table.BloodGlucoseCount(); ok {
			fmt.Printf("Glucose records:  %d\n", n)
		}
		return nil
	},
}

func init() {
	infoCmd.Flags().StringVar(&infoSetDescription, "set-description", "", "set the database description")
	rootCmd.AddCommand(infoCmd)
}
