// ABOUTME: In-memory Table implementation for volatile databases.
// ABOUTME: Backs query-result sets and import staging; never touches a file.
package storage

import (
	"sort"
	"time"

	"github.com/woofdog/healthrec/internal/models"
)

// Memory is the volatile Table implementation. It is used for derived
// datasets such as range-query results and for staging imported data.
// It cannot be bound to a file; callers that need a fresh scratch store
// construct a new instance instead.
type Memory struct {
	readOnly     bool
	description  string
	lastModified int64

	bodyWeights    []models.BodyWeight
	bloodPressures []models.BloodPressure
	bloodGlucoses  []models.BloodGlucose
}

// NewMemory creates an empty volatile table.
func NewMemory() *Memory {
	return &Memory{}
}

// FileName always returns "" since a memory table is never file-backed.
func (m *Memory) FileName() string { return "" }

// ReadOnly reports whether mutators are gated off.
func (m *Memory) ReadOnly() bool { return m.readOnly }

// SetReadOnly marks the table read-only, e.g. for staged import data that
// must not be edited in place.
func (m *Memory) SetReadOnly(ro bool) { m.readOnly = ro }

func (m *Memory) Description() (string, bool) {
	return m.description, true
}

func (m *Memory) LastModified() (int64, bool) {
	return m.lastModified, true
}

// SetFileName is a permanent no-op: a memory table cannot be rebound.
func (m *Memory) SetFileName(string) bool { return false }

func (m *Memory) SetDescription(description string) bool {
	if m.readOnly {
		return false
	}
	m.description = description
	m.lastModified = time.Now().Unix()
	return true
}

func (m *Memory) SetLastModified(epoch int64) bool {
	if m.readOnly {
		return false
	}
	m.lastModified = epoch
	return true
}

func (m *Memory) touch() { m.lastModified = time.Now().Unix() }

// Body weight operations.

func (m *Memory) BodyWeightCount() (int, bool) {
	return len(m.bodyWeights), true
}

func (m *Memory) BodyWeights() []models.BodyWeight {
	return sortedBodyWeights(append([]models.BodyWeight(nil), m.bodyWeights...))
}

func (m *Memory) BodyWeightRange(from, to int64) []models.BodyWeight {
	list := make([]models.BodyWeight, 0, len(m.bodyWeights))
	for _, b := range m.bodyWeights {
		if b.Date >= from && b.Date <= to {
			list = append(list, b)
		}
	}
	return sortedBodyWeights(list)
}

func (m *Memory) BodyWeightByID(id int64) *models.BodyWeight {
	for _, b := range m.bodyWeights {
		if b.ID == id {
			c := b
			return &c
		}
	}
	return nil
}

func (m *Memory) AddBodyWeight(bw *models.BodyWeight) bool {
	if m.readOnly {
		return false
	}
	for _, b := range m.bodyWeights {
		if b.ID == bw.ID {
			return false
		}
	}
	m.bodyWeights = append(m.bodyWeights, *bw)
	m.touch()
	return true
}

func (m *Memory) DeleteBodyWeight(id int64) bool {
	if m.readOnly {
		return false
	}
	for i, b := range m.bodyWeights {
		if b.ID == id {
			m.bodyWeights = append(m.bodyWeights[:i], m.bodyWeights[i+1:]...)
			break
		}
	}
	// Deleting an absent record is not an error.
	m.touch()
	return true
}

func (m *Memory) ModifyBodyWeight(id int64, bw *models.BodyWeight) bool {
	if m.readOnly {
		return false
	}
	for i := range m.bodyWeights {
		if m.bodyWeights[i].ID == id {
			m.bodyWeights[i].CopyFrom(bw)
			m.touch()
			return true
		}
	}
	return false
}

// Blood pressure operations.

func (m *Memory) BloodPressureCount() (int, bool) {
	return len(m.bloodPressures), true
}

func (m *Memory) BloodPressures() []models.BloodPressure {
	return sortedBloodPressures(append([]models.BloodPressure(nil), m.bloodPressures...))
}

func (m *Memory) BloodPressureRange(from, to int64) []models.BloodPressure {
	list := make([]models.BloodPressure, 0, len(m.bloodPressures))
	for _, b := range m.bloodPressures {
		if b.Date >= from && b.Date <= to {
			list = append(list, b)
		}
	}
	return sortedBloodPressures(list)
}

func (m *Memory) BloodPressureByID(id int64) *models.BloodPressure {
	for _, b := range m.bloodPressures {
		if b.ID == id {
			c := b
			return &c
		}
	}
	return nil
}

func (m *Memory) AddBloodPressure(bp *models.BloodPressure) bool {
	if m.readOnly {
		return false
	}
	for _, b := range m.bloodPressures {
		if b.ID == bp.ID {
			return false
		}
	}
	m.bloodPressures = append(m.bloodPressures, *bp)
	m.touch()
	return true
}

func (m *Memory) DeleteBloodPressure(id int64) bool {
	if m.readOnly {
		return false
	}
	for i, b := range m.bloodPressures {
		if b.ID == id {
			m.bloodPressures = append(m.bloodPressures[:i], m.bloodPressures[i+1:]...)
			break
		}
	}
	m.touch()
	return true
}

func (m *Memory) ModifyBloodPressure(id int64, bp *models.BloodPressure) bool {
	if m.readOnly {
		return false
	}
	for i := range m.bloodPressures {
		if m.bloodPressures[i].ID == id {
			m.bloodPressures[i].CopyFrom(bp)
			m.touch()
			return true
		}
	}
	return false
}

// Blood glucose operations.

func (m *Memory) BloodGlucoseCount() (int, bool) {
	return len(m.bloodGlucoses), true
}

func (m *Memory) BloodGlucoses() []models.BloodGlucose {
	return sortedBloodGlucoses(append([]models.BloodGlucose(nil), m.bloodGlucoses...))
}

func (m *Memory) BloodGlucoseRange(from, to int64) []models.BloodGlucose {
	list := make([]models.BloodGlucose, 0, len(m.bloodGlucoses))
	for _, b := range m.bloodGlucoses {
		if b.Date >= from && b.Date <= to {
			list = append(list, b)
		}
	}
	return sortedBloodGlucoses(list)
}

func (m *Memory) BloodGlucoseByID(id int64) *models.BloodGlucose {
	for _, b := range m.bloodGlucoses {
		if b.ID == id {
			c := b
			return &c
		}
	}
	return nil
}

func (m *Memory) AddBloodGlucose(bg *models.BloodGlucose) bool {
	if m.readOnly {
		return false
	}
	for _, b := range m.bloodGlucoses {
		if b.ID == bg.ID {
			return false
		}
	}
	m.bloodGlucoses = append(m.bloodGlucoses, *bg)
	m.touch()
	return true
}

func (m *Memory) DeleteBloodGlucose(id int64) bool {
	if m.readOnly {
		return false
	}
	for i, b := range m.bloodGlucoses {
		if b.ID == id {
			m.bloodGlucoses = append(m.bloodGlucoses[:i], m.bloodGlucoses[i+1:]...)
			break
		}
	}
	m.touch()
	return true
}

func (m *Memory) ModifyBloodGlucose(id int64, bg *models.BloodGlucose) bool {
	if m.readOnly {
		return false
	}
	for i := range m.bloodGlucoses {
		if m.bloodGlucoses[i].ID == id {
			m.bloodGlucoses[i].CopyFrom(bg)
			m.touch()
			return true
		}
	}
	return false
}

func sortedBodyWeights(list []models.BodyWeight) []models.BodyWeight {
	sort.Slice(list, func(i, j int) bool {
		if list[i].Date != list[j].Date {
			return list[i].Date < list[j].Date
		}
		return list[i].ID < list[j].ID
	})
	return list
}

func sortedBloodPressures(list []models.BloodPressure) []models.BloodPressure {
	sort.Slice(list, func(i, j int) bool {
		if list[i].Date != list[j].Date {
			return list[i].Date < list[j].Date
		}
		return list[i].ID < list[j].ID
	})
	return list
}

func sortedBloodGlucoses(list []models.BloodGlucose) []models.BloodGlucose {
	sort.Slice(list, func(i, j int) bool {
		if list[i].Date != list[j].Date {
			return list[i].Date < list[j].Date
		}
		return list[i].ID < list[j].ID
	})
	return list
}
