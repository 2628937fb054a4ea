// ABOUTME: BloodPressure record model for the health database.
// ABOUTME: Systolic/diastolic/pulse readings with packed date and comment.
package models

import "time"

// BloodPressure is one blood-pressure measurement. See BodyWeight for the
// ID and zero-value conventions shared by all record types.
type BloodPressure struct {
	ID        int64
	Date      int64 // packed YYYYMMDDhhmmss
	Systolic  int
	Diastolic int
	Pulse     int
	Comment   string
}

// NewBloodPressure creates a record with an ID stamped from the current time.
func NewBloodPressure() *BloodPressure {
	return &BloodPressure{ID: time.Now().Unix()}
}

// CopyFrom copies every field except the record ID.
func (b *BloodPressure) CopyFrom(rhs *BloodPressure) {
	id := b.ID
	*b = *rhs
	b.ID = id
}
