// ABOUTME: CLI command classifying a candidate database file.
// ABOUTME: Probes without opening the file for editing.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/woofdog/healthrec/internal/storage"
)

var checkCmd = &cobra.Command{
	Use:   "check <file>",
	Short: "Check whether a file is a usable database",
	Long: `Check whether a file is a database this build can use. The file is
opened read-only and never modified.

POSSIBLE RESULTS:

  read-write   current format, fully usable
  read-only    older format; opening it for editing migrates it in place
  invalid      not a recognized database, or written by a newer release

EXAMPLES:

  healthrec check ~/backups/health.db`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch avail := storage.Check(args[0]); avail {
		case storage.AvailReadWrite:
			color.Green("✓ %s: %s", args[0], avail)
		case storage.AvailReadOnly:
			color.Yellow("⚠ %s: %s", args[0], avail)
		default:
			return fmt.Errorf("%s: not a recognized database", args[0])
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
