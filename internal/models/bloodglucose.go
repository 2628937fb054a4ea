// ABOUTME: BloodGlucose record model with meal-context enum.
// ABOUTME: Glucose readings tagged normal/before-meal/after-meal.
package models

import "time"

// Meal is the meal context of a blood-glucose reading. The numeric values
// are the on-disk encoding and must not change.
type Meal int

const (
	MealNormal Meal = 0
	MealBefore Meal = 1
	MealAfter  Meal = 2
)

// ValidMeal reports whether v is a known meal encoding. Rows with unknown
// meal values are skipped on read rather than surfaced as errors.
func ValidMeal(v int) bool {
	return v >= int(MealNormal) && v <= int(MealAfter)
}

// String returns the display name of the meal context.
func (m Meal) String() string {
	switch m {
	case MealBefore:
		return "before"
	case MealAfter:
		return "after"
	default:
		return "normal"
	}
}

// BloodGlucose is one blood-glucose measurement. See BodyWeight for the
// ID and zero-value conventions shared by all record types.
type BloodGlucose struct {
	ID      int64
	Date    int64 // packed YYYYMMDDhhmmss
	Glucose float64
	Meal    Meal
	Comment string
}

// NewBloodGlucose creates a record with an ID stamped from the current time.
func NewBloodGlucose() *BloodGlucose {
	return &BloodGlucose{ID: time.Now().Unix()}
}

// CopyFrom copies every field except the record ID.
func (b *BloodGlucose) CopyFrom(rhs *BloodGlucose) {
	id := b.ID
	*b = *rhs
	b.ID = id
}
