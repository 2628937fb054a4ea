// ABOUTME: CLI command for listing health records.
// ABOUTME: Supports date range filtering per record kind.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/woofdog/healthrec/internal/models"
)

var (
	listFrom string
	listTo   string
)

var listCmd = &cobra.Command{
	Use:     "list <kind>",
	Aliases: []string{"ls", "l"},
	Short:   "List health records",
	Long: `List health records of one kind, oldest first.

OUTPUT FORMAT:

  Each line shows: ID  MEASURED-AT  VALUES  (COMMENT)

  The ID is what delete and modify operations take.

FILTERING:

  --from and --to take dates or timestamps and bound the measurement
  time inclusively. A date-only --to covers the whole day.

EXAMPLES:

  healthrec list weight                          # All weight entries
  healthrec list bp --from 2026-01-01            # This year's pressure
  healthrec list glucose --from 2026-08-01 --to 2026-08-31`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"weight", "bp", "glucose"},
	RunE: func(cmd *cobra.Command, args []string) error {
		from, to, err := listBounds()
		if err != nil {
			return err
		}

		switch args[0] {
		case "weight":
			return listWeights(from, to)
		case "bp":
			return listPressures(from, to)
		case "glucose":
			return listGlucoses(from, to)
		default:
			return fmt.Errorf("unknown record kind: %s (want weight, bp, or glucose)", args[0])
		}
	},
}

// listBounds converts the --from/--to flags into an inclusive packed date
// range covering everything by default.
func listBounds() (int64, int64, error) {
	from := int64(0)
	to := models.EncodeDateTime(9999, 12, 31, 23, 59, 59)

	if listFrom != "" {
		t, err := parseTime(listFrom)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid --from: %s", listFrom)
		}
		from = models.DateFromTime(t)
	}
	if listTo != "" {
		t, err := parseTime(listTo)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid --to: %s", listTo)
		}
		to = models.DateFromTime(t)
		if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
			to = models.EncodeDateTime(t.Year(), int(t.Month()), t.Day(), 23, 59, 59)
		}
	}
	return from, to, nil
}

func listWeights(from, to int64) error {
	records := table.BodyWeightRange(from, to)
	if records == nil {
		return fmt.Errorf("failed to read records")
	}
	if len(records) == 0 {
		fmt.Println("No records found.")
		return nil
	}

	faint := color.New(color.Faint)
	for _, r := range records {
		extra := ""
		if r.Fat > 0 {
			extra += fmt.Sprintf("  fat %.1f%%", r.Fat)
		}
		if r.WC > 0 {
			extra += fmt.Sprintf("  wc %.1f cm", r.WC)
		}
		fmt.Printf("%s %s %6.1f kg%s%s\n",
			faint.Sprint(r.ID),
			faint.Sprint(models.TimeFromDate(r.Date).Format("2006-01-02 15:04")),
			r.Weight, extra, comment(r.Comment))
	}
	return nil
}

func listPressures(from, to int64) error {
	records := table.BloodPressureRange(from, to)
	if records == nil {
		return fmt.Errorf("failed to read records")
	}
	if len(records) == 0 {
		fmt.Println("No records found.")
		return nil
	}

	faint := color.New(color.Faint)
	for _, r := range records {
		pulse := ""
		if r.Pulse > 0 {
			pulse = fmt.Sprintf("  pulse %d", r.Pulse)
		}
		fmt.Printf("%s %s %d/%d mmHg%s%s\n",
			faint.Sprint(r.ID),
			faint.Sprint(models.TimeFromDate(r.Date).Format("2006-01-02 15:04")),
			r.Systolic, r.Diastolic, pulse, comment(r.Comment))
	}
	return nil
}

func listGlucoses(from, to int64) error {
	records := table.BloodGlucoseRange(from, to)
	if records == nil {
		return fmt.Errorf("failed to read records")
	}
	if len(records) == 0 {
		fmt.Println("No records found.")
		return nil
	}

	faint := color.New(color.Faint)
	for _, r := range records {
		fmt.Printf("%s %s %5.1f (%s)%s\n",
			faint.Sprint(r.ID),
			faint.Sprint(models.TimeFromDate(r.Date).Format("2006-01-02 15:04")),
			r.Glucose, r.Meal, comment(r.Comment))
	}
	return nil
}

func comment(s string) string {
	if s == "" {
		return ""
	}
	return color.New(color.Faint).Sprintf(" (%s)", truncate(s, 30))
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func init() {
	listCmd.Flags().StringVar(&listFrom, "from", "", "earliest measurement time")
	listCmd.Flags().StringVar(&listTo, "to", "", "latest measurement time")
	rootCmd.AddCommand(listCmd)
}
