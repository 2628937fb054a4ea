// ABOUTME: Table interface for health record storage backends.
// ABOUTME: Defines the sentinel-based contract shared by SQLite and memory.
package storage

import "github.com/woofdog/healthrec/internal/models"

// Table is the storage contract for one health database. It is implemented
// by the SQLite backend (persistent files) and the Memory backend (volatile
// scratch stores), and callers manage databases through it without knowing
// the implementation.
//
// No method returns an error and none panics. The contract is:
//   - scalar getters return (value, false) when no file is bound or the
//     underlying query failed; false never means "empty value"
//   - list getters return a nil slice on failure and a real, possibly
//     empty, slice otherwise
//   - singular getters return nil when the record is absent or on failure
//   - mutators return false when unbound, read-only, or rejected
//
// Internal faults are logged at the point they are swallowed.
//
// Read-only mode exists to support old database formats: it is set by the
// implementation's version/migration logic and is never overridden by
// callers. All and Range results are sorted by (date, id) ascending;
// Range bounds are inclusive.
type Table interface {
	// FileName returns the currently bound file path, or "" when unbound.
	FileName() string

	// ReadOnly reports whether every mutator is gated off.
	ReadOnly() bool

	Description() (string, bool)
	LastModified() (int64, bool)

	// SetFileName binds the table to a database file, creating it and its
	// schema when absent. An empty path unbinds and releases the handle.
	SetFileName(path string) bool

	// SetDescription updates the metadata description and bumps last_modify.
	SetDescription(description string) bool

	// SetLastModified stamps the metadata row with the given epoch seconds.
	SetLastModified(epoch int64) bool

	BodyWeightCount() (int, bool)
	BodyWeights() []models.BodyWeight
	BodyWeightRange(from, to int64) []models.BodyWeight
	BodyWeightByID(id int64) *models.BodyWeight
	AddBodyWeight(b *models.BodyWeight) bool
	DeleteBodyWeight(id int64) bool
	ModifyBodyWeight(id int64, b *models.BodyWeight) bool

	BloodPressureCount() (int, bool)
	BloodPressures() []models.BloodPressure
	BloodPressureRange(from, to int64) []models.BloodPressure
	BloodPressureByID(id int64) *models.BloodPressure
	AddBloodPressure(b *models.BloodPressure) bool
	DeleteBloodPressure(id int64) bool
	ModifyBloodPressure(id int64, b *models.BloodPressure) bool

	BloodGlucoseCount() (int, bool)
	BloodGlucoses() []models.BloodGlucose
	BloodGlucoseRange(from, to int64) []models.BloodGlucose
	BloodGlucoseByID(id int64) *models.BloodGlucose
	AddBloodGlucose(b *models.BloodGlucose) bool
	DeleteBloodGlucose(id int64) bool
	ModifyBloodGlucose(id int64, b *models.BloodGlucose) bool
}
