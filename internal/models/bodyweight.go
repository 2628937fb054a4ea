// ABOUTME: BodyWeight record model for the health database.
// ABOUTME: IDs are creation epoch seconds; zero measurements mean "not recorded".
package models

import "time"

// BodyWeight is one body-composition measurement.
//
// ID is the creation time in epoch seconds. That makes IDs collide if two
// records are created within the same second on one device; the design
// accepts that risk rather than guaranteeing uniqueness, and Add rejects
// the duplicate when it happens.
//
// A zero value in any measurement field means the field was not recorded,
// not a true zero reading.
type BodyWeight struct {
	ID        int64
	Date      int64 // packed YYYYMMDDhhmmss
	Weight    float64
	Fat       float64
	IntFat    float64
	BMI       float64
	WC        float64 // waist circumference, added in schema v2
	Bone      float64
	Muscle    float64
	Water     float64
	Metabolic int
	Age       int
	Comment   string
}

// NewBodyWeight creates a record with an ID stamped from the current time.
func NewBodyWeight() *BodyWeight {
	return &BodyWeight{ID: time.Now().Unix()}
}

// CopyFrom copies every field except the record ID.
func (b *BodyWeight) CopyFrom(rhs *BodyWeight) {
	id := b.ID
	*b = *rhs
	b.ID = id
}
