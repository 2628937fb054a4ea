// ABOUTME: CLI commands for adding health records.
// ABOUTME: Handles weight, blood pressure, and blood glucose entry.
package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/woofdog/healthrec/internal/models"
)

var (
	addAt      string
	addComment string

	addFat       float64
	addIntFat    float64
	addBMI       float64
	addWC        float64
	addBone      float64
	addMuscle    float64
	addWater     float64
	addMetabolic int
	addAge       int

	addMeal string
)

var addCmd = &cobra.Command{
	Use:     "add",
	Aliases: []string{"a"},
	Short:   "Add a health record",
	Long: `Add a health record. The record keeps two times: when it was
created (its ID) and when the measurement was taken (--at, default now).

Examples:
  healthrec add weight 82.5 --fat 18.2 --wc 84
  healthrec add bp 120 80 65
  healthrec add glucose 5.4 --meal before --at "2026-08-30 07:15"`,
}

var addWeightCmd = &cobra.Command{
	Use:   "weight <kg>",
	Short: "Add a body weight record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		weight, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("invalid weight: %s", args[0])
		}

		rec := models.NewBodyWeight()
		rec.Weight = weight
		rec.Fat = addFat
		rec.IntFat = addIntFat
		rec.BMI = addBMI
		rec.WC = addWC
		rec.Bone = addBone
		rec.Muscle = addMuscle
		rec.Water = addWater
		rec.Metabolic = addMetabolic
		rec.Age = addAge
		rec.Comment = addComment
		if err := applyMeasuredAt(&rec.Date); err != nil {
			return err
		}

		if !table.AddBodyWeight(rec) {
			return addFailure()
		}

		color.Green("✓ Added weight")
		fmt.Printf("  %s %s %.1f kg\n",
			color.New(color.Faint).Sprint(rec.ID),
			models.TimeFromDate(rec.Date).Format("2006-01-02 15:04"),
			rec.Weight)
		return nil
	},
}

var addBPCmd = &cobra.Command{
	Use:   "bp <systolic> <diastolic> [pulse]",
	Short: "Add a blood pressure record",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		systolic, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid systolic value: %s", args[0])
		}
		diastolic, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid diastolic value: %s", args[1])
		}
		pulse := 0
		if len(args) == 3 {
			if pulse, err = strconv.Atoi(args[2]); err != nil {
				return fmt.Errorf("invalid pulse value: %s", args[2])
			}
		}

		rec := models.NewBloodPressure()
		rec.Systolic = systolic
		rec.Diastolic = diastolic
		rec.Pulse = pulse
		rec.Comment = addComment
		if err := applyMeasuredAt(&rec.Date); err != nil {
			return err
		}

		if !table.AddBloodPressure(rec) {
			return addFailure()
		}

		color.Green("✓ Added blood pressure")
		fmt.Printf("  %s %s %d/%d mmHg\n",
			color.New(color.Faint).Sprint(rec.ID),
			models.TimeFromDate(rec.Date).Format("2006-01-02 15:04"),
			rec.Systolic, rec.Diastolic)
		return nil
	},
}

var addGlucoseCmd = &cobra.Command{
	Use:   "glucose <value>",
	Short: "Add a blood glucose record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		value, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("invalid glucose value: %s", args[0])
		}
		meal, err := parseMeal(addMeal)
		if err != nil {
			return err
		}

		rec := models.NewBloodGlucose()
		rec.Glucose = value
		rec.Meal = meal
		rec.Comment = addComment
		if err := applyMeasuredAt(&rec.Date); err != nil {
			return err
		}

		if !table.AddBloodGlucose(rec) {
			return addFailure()
		}

		color.Green("✓ Added glucose")
		fmt.Printf("  %s %s %.1f (%s)\n",
			color.New(color.Faint).Sprint(rec.ID),
			models.TimeFromDate(rec.Date).Format("2006-01-02 15:04"),
			rec.Glucose, rec.Meal)
		return nil
	},
}

// applyMeasuredAt overwrites the record's measurement date when --at was
// given.
func applyMeasuredAt(date *int64) error {
	if addAt == "" {
		return nil
	}
	t, err := parseTime(addAt)
	if err != nil {
		return fmt.Errorf("invalid timestamp: %s", addAt)
	}
	*date = models.DateFromTime(t)
	return nil
}

func parseMeal(s string) (models.Meal, error) {
	switch s {
	case "", "normal":
		return models.MealNormal, nil
	case "before":
		return models.MealBefore, nil
	case "after":
		return models.MealAfter, nil
	default:
		return 0, fmt.Errorf("unknown meal timing: %s (want normal, before, or after)", s)
	}
}

func addFailure() error {
	if table.ReadOnly() {
		return fmt.Errorf("database is read-only")
	}
	return fmt.Errorf("a record created in the same second already exists; try again")
}

func parseTime(s string) (time.Time, error) {
	formats := []string{
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		"2006-01-02T15:04",
		"2006-01-02",
		time.RFC3339,
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time format")
}

func init() {
	addCmd.PersistentFlags().StringVar(&addAt, "at", "", "measurement time (YYYY-MM-DD HH:MM)")
	addCmd.PersistentFlags().StringVar(&addComment, "comment", "", "comment for the record")

	addWeightCmd.Flags().Float64Var(&addFat, "fat", 0, "body fat percentage")
	addWeightCmd.Flags().Float64Var(&addIntFat, "int-fat", 0, "internal fat level")
	addWeightCmd.Flags().Float64Var(&addBMI, "bmi", 0, "body mass index")
	addWeightCmd.Flags().Float64Var(&addWC, "wc", 0, "waist circumference in cm")
	addWeightCmd.Flags().Float64Var(&addBone, "bone", 0, "bone mass in kg")
	addWeightCmd.Flags().Float64Var(&addMuscle, "muscle", 0, "muscle percentage")
	addWeightCmd.Flags().Float64Var(&addWater, "water", 0, "body water percentage")
	addWeightCmd.Flags().IntVar(&addMetabolic, "metabolic", 0, "basal metabolic rate")
	addWeightCmd.Flags().IntVar(&addAge, "age", 0, "body age")

	addGlucoseCmd.Flags().StringVar(&addMeal, "meal", "normal", "meal timing: normal, before, after")

	addCmd.AddCommand(addWeightCmd, addBPCmd, addGlucoseCmd)
	rootCmd.AddCommand(addCmd)
}
