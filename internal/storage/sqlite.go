// ABOUTME: SQLite Table implementation with schema lifecycle management.
// ABOUTME: Uses modernc.org/sqlite (pure Go); owns versioning and migration.
package storage

import (
	"database/sql"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	_ "modernc.org/sqlite"

	"github.com/woofdog/healthrec/internal/models"
)

const (
	dbName = "Easy Health Record"

	dbVersion1 = 1
	dbVersion2 = 2

	// dbTopVersion is the schema version this build reads and writes.
	// Version 1 lacked the wc column on db_body_weight.
	dbTopVersion = dbVersion2
)

// Availability classifies a candidate database file without opening it
// for editing.
type Availability int

const (
	// AvailInvalid means the file is not a recognized database.
	AvailInvalid Availability = iota

	// AvailReadOnly means an old format that can only be opened read-only.
	AvailReadOnly

	// AvailReadWrite means the current database format.
	AvailReadWrite
)

func (a Availability) String() string {
	switch a {
	case AvailReadOnly:
		return "read-only"
	case AvailReadWrite:
		return "read-write"
	default:
		return "invalid"
	}
}

// SQLite is the persistent Table implementation. The zero binding is
// unbound; SetFileName opens or creates the file, detects the stored
// schema version, and migrates old formats forward.
type SQLite struct {
	db       *sql.DB
	fileName string
	readOnly bool
	version  int
}

// NewSQLite creates an unbound SQLite table.
func NewSQLite() *SQLite {
	return &SQLite{}
}

// CheckFile probes whether path is an openable database without mutating
// it. version is the caller's top schema version; files newer than it are
// reported AvailInvalid, not merely read-only.
func CheckFile(path string, version int) Availability {
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		log.Error("open database read-only", "path", path, "err", err)
		return AvailInvalid
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("close database", "path", path, "err", err)
		}
	}()

	var name string
	var stored int
	var descript sql.NullString
	var lastModify int64
	err = db.QueryRow("SELECT name, version, descript, last_modify FROM db_info").
		Scan(&name, &stored, &descript, &lastModify)
	if err != nil {
		log.Debug("query db_info", "path", path, "err", err)
		return AvailInvalid
	}

	switch {
	case name != dbName || version < dbVersion1 || stored > version:
		return AvailInvalid
	case stored != version:
		return AvailReadOnly
	default:
		return AvailReadWrite
	}
}

// Check probes path against the schema version this build supports.
func Check(path string) Availability {
	return CheckFile(path, dbTopVersion)
}

// FileName returns the currently bound path, or "" when unbound.
func (t *SQLite) FileName() string { return t.fileName }

// ReadOnly reports whether mutators are gated off.
func (t *SQLite) ReadOnly() bool { return t.readOnly }

// Version returns the detected schema version of the bound file.
func (t *SQLite) Version() int { return t.version }

func (t *SQLite) Description() (string, bool) {
	if t.db == nil {
		return "", false
	}
	var descript sql.NullString
	if err := t.db.QueryRow("SELECT descript FROM db_info").Scan(&descript); err != nil {
		log.Error("query description", "err", err)
		return "", false
	}
	return descript.String, true
}

func (t *SQLite) LastModified() (int64, bool) {
	if t.db == nil {
		return 0, false
	}
	var lastModify int64
	if err := t.db.QueryRow("SELECT last_modify FROM db_info").Scan(&lastModify); err != nil {
		log.Error("query last_modify", "err", err)
		return 0, false
	}
	return lastModify, true
}

// SetFileName binds the table to path, closing any currently open file
// first. An empty path unbinds and releases the handle. Binding creates
// the file and schema when absent, then reads back the stored version; a
// failed version read fails the bind even though the file may now exist
// on disk. Old recognized versions that cannot be migrated are opened
// read-only.
func (t *SQLite) SetFileName(path string) bool {
	t.fileName = path

	if t.db != nil {
		if err := t.db.Close(); err != nil {
			log.Error("close database", "err", err)
		}
		t.db = nil
	}
	if path == "" {
		return true
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		log.Error("open database", "path", path, "err", err)
		return false
	}
	t.db = db

	if !t.createDatabase() {
		return false
	}

	t.readOnly = true
	if err := t.db.QueryRow("SELECT version FROM db_info").Scan(&t.version); err != nil {
		log.Error("query version", "path", path, "err", err)
		return false
	}
	t.readOnly = !t.updateDatabase(t.version)
	return true
}

func (t *SQLite) SetDescription(description string) bool {
	if t.db == nil || t.readOnly {
		return false
	}
	if _, err := t.db.Exec("UPDATE db_info SET descript=?", description); err != nil {
		log.Error("update description", "err", err)
		return false
	}
	t.SetLastModified(time.Now().Unix())
	return true
}

func (t *SQLite) SetLastModified(epoch int64) bool {
	if t.db == nil || t.readOnly {
		return false
	}
	if _, err := t.db.Exec("UPDATE db_info SET last_modify=?", epoch); err != nil {
		log.Error("update last_modify", "err", err)
		return false
	}
	return true
}

func (t *SQLite) touch() { t.SetLastModified(time.Now().Unix()) }

// Body weight operations.

func (t *SQLite) BodyWeightCount() (int, bool) {
	return t.count("SELECT COUNT(*) FROM db_body_weight")
}

func (t *SQLite) BodyWeights() []models.BodyWeight {
	return t.queryBodyWeights("SELECT * FROM db_body_weight ORDER BY date,id")
}

func (t *SQLite) BodyWeightRange(from, to int64) []models.BodyWeight {
	return t.queryBodyWeights(
		"SELECT * FROM db_body_weight WHERE date BETWEEN ? AND ? ORDER BY date,id", from, to)
}

func (t *SQLite) BodyWeightByID(id int64) *models.BodyWeight {
	list := t.queryBodyWeights(queryBodyWeight, id)
	if len(list) == 0 {
		return nil
	}
	return &list[0]
}

func (t *SQLite) AddBodyWeight(bw *models.BodyWeight) bool {
	if t.db == nil || t.readOnly {
		return false
	}
	exists, ok := t.rowExists("db_body_weight", bw.ID)
	if !ok || exists {
		return false
	}

	_, err := t.db.Exec(
		"INSERT INTO db_body_weight "+
			"(id, date, weight, fat, int_fat, bmi, wc, bone, muscle, water, metabolic, age, comment) "+
			"VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		bw.ID, bw.Date, bw.Weight, bw.Fat, bw.IntFat, bw.BMI, bw.WC,
		bw.Bone, bw.Muscle, bw.Water, bw.Metabolic, bw.Age, bw.Comment,
	)
	if err != nil {
		log.Error("insert body weight", "err", err)
		return false
	}
	t.touch()
	return true
}

func (t *SQLite) DeleteBodyWeight(id int64) bool {
	if t.db == nil || t.readOnly {
		return false
	}
	if _, err := t.db.Exec("DELETE FROM db_body_weight WHERE id=?", id); err != nil {
		log.Error("delete body weight", "err", err)
		return false
	}
	t.touch()
	return true
}

func (t *SQLite) ModifyBodyWeight(id int64, bw *models.BodyWeight) bool {
	if t.db == nil || t.readOnly {
		return false
	}
	exists, ok := t.rowExists("db_body_weight", id)
	if !ok || !exists {
		return false
	}

	_, err := t.db.Exec(
		"UPDATE db_body_weight "+
			"SET date=?, weight=?, fat=?, int_fat=?, bmi=?, wc=?, bone=?, "+
			"muscle=?, water=?, metabolic=?, age=?, comment=? WHERE id=?",
		bw.Date, bw.Weight, bw.Fat, bw.IntFat, bw.BMI, bw.WC,
		bw.Bone, bw.Muscle, bw.Water, bw.Metabolic, bw.Age, bw.Comment, id,
	)
	if err != nil {
		log.Error("update body weight", "err", err)
		return false
	}
	t.touch()
	return true
}

// Blood pressure operations.

func (t *SQLite) BloodPressureCount() (int, bool) {
	return t.count("SELECT COUNT(*) FROM db_blood_pressure")
}

func (t *SQLite) BloodPressures() []models.BloodPressure {
	return t.queryBloodPressures("SELECT * FROM db_blood_pressure ORDER BY date,id")
}

func (t *SQLite) BloodPressureRange(from, to int64) []models.BloodPressure {
	return t.queryBloodPressures(
		"SELECT * FROM db_blood_pressure WHERE date BETWEEN ? AND ? ORDER BY date,id", from, to)
}

func (t *SQLite) BloodPressureByID(id int64) *models.BloodPressure {
	list := t.queryBloodPressures(queryBloodPressure, id)
	if len(list) == 0 {
		return nil
	}
	return &list[0]
}

func (t *SQLite) AddBloodPressure(bp *models.BloodPressure) bool {
	if t.db == nil || t.readOnly {
		return false
	}
	exists, ok := t.rowExists("db_blood_pressure", bp.ID)
	if !ok || exists {
		return false
	}

	_, err := t.db.Exec(
		"INSERT INTO db_blood_pressure (id, date, systolic, diastolic, pulse, comment) "+
			"VALUES (?, ?, ?, ?, ?, ?)",
		bp.ID, bp.Date, bp.Systolic, bp.Diastolic, bp.Pulse, bp.Comment,
	)
	if err != nil {
		log.Error("insert blood pressure", "err", err)
		return false
	}
	t.touch()
	return true
}

func (t *SQLite) DeleteBloodPressure(id int64) bool {
	if t.db == nil || t.readOnly {
		return false
	}
	if _, err := t.db.Exec("DELETE FROM db_blood_pressure WHERE id=?", id); err != nil {
		log.Error("delete blood pressure", "err", err)
		return false
	}
	t.touch()
	return true
}

func (t *SQLite) ModifyBloodPressure(id int64, bp *models.BloodPressure) bool {
	if t.db == nil || t.readOnly {
		return false
	}
	exists, ok := t.rowExists("db_blood_pressure", id)
	if !ok || !exists {
		return false
	}

	_, err := t.db.Exec(
		"UPDATE db_blood_pressure SET date=?, systolic=?, diastolic=?, pulse=?, comment=? "+
			"WHERE id=?",
		bp.Date, bp.Systolic, bp.Diastolic, bp.Pulse, bp.Comment, id,
	)
	if err != nil {
		log.Error("update blood pressure", "err", err)
		return false
	}
	t.touch()
	return true
}

// Blood glucose operations.

func (t *SQLite) BloodGlucoseCount() (int, bool) {
	return t.count("SELECT COUNT(*) FROM db_blood_glucose")
}

func (t *SQLite) BloodGlucoses() []models.BloodGlucose {
	return t.queryBloodGlucoses("SELECT * FROM db_blood_glucose ORDER BY date,id")
}

func (t *SQLite) BloodGlucoseRange(from, to int64) []models.BloodGlucose {
	return t.queryBloodGlucoses(
		"SELECT * FROM db_blood_glucose WHERE date BETWEEN ? AND ? ORDER BY date,id", from, to)
}

func (t *SQLite) BloodGlucoseByID(id int64) *models.BloodGlucose {
	list := t.queryBloodGlucoses(queryBloodGlucose, id)
	if len(list) == 0 {
		return nil
	}
	return &list[0]
}

func (t *SQLite) AddBloodGlucose(bg *models.BloodGlucose) bool {
	if t.db == nil || t.readOnly {
		return false
	}
	exists, ok := t.rowExists("db_blood_glucose", bg.ID)
	if !ok || exists {
		return false
	}

	_, err := t.db.Exec(
		"INSERT INTO db_blood_glucose (id, date, glucose, meal, comment) VALUES (?, ?, ?, ?, ?)",
		bg.ID, bg.Date, bg.Glucose, int(bg.Meal), bg.Comment,
	)
	if err != nil {
		log.Error("insert blood glucose", "err", err)
		return false
	}
	t.touch()
	return true
}

func (t *SQLite) DeleteBloodGlucose(id int64) bool {
	if t.db == nil || t.readOnly {
		return false
	}
	if _, err := t.db.Exec("DELETE FROM db_blood_glucose WHERE id=?", id); err != nil {
		log.Error("delete blood glucose", "err", err)
		return false
	}
	t.touch()
	return true
}

func (t *SQLite) ModifyBloodGlucose(id int64, bg *models.BloodGlucose) bool {
	if t.db == nil || t.readOnly {
		return false
	}
	exists, ok := t.rowExists("db_blood_glucose", id)
	if !ok || !exists {
		return false
	}

	_, err := t.db.Exec(
		"UPDATE db_blood_glucose SET date=?, glucose=?, meal=?, comment=? WHERE id=?",
		bg.Date, bg.Glucose, int(bg.Meal), bg.Comment, id,
	)
	if err != nil {
		log.Error("update blood glucose", "err", err)
		return false
	}
	t.touch()
	return true
}

// Internals.

func (t *SQLite) count(query string) (int, bool) {
	if t.db == nil {
		return 0, false
	}
	var n int
	if err := t.db.QueryRow(query).Scan(&n); err != nil {
		log.Error("count query", "err", err)
		return 0, false
	}
	return n, true
}

// rowExists reports whether table has a row with the given id. ok is
// false when the query itself failed.
func (t *SQLite) rowExists(table string, id int64) (exists, ok bool) {
	var got int64
	err := t.db.QueryRow("SELECT id FROM "+table+" WHERE id=?", id).Scan(&got)
	switch {
	case err == nil:
		return true, true
	case errors.Is(err, sql.ErrNoRows):
		return false, true
	default:
		log.Error("existence query", "err", err)
		return false, false
	}
}

func (t *SQLite) queryBodyWeights(query string, args ...any) []models.BodyWeight {
	if t.db == nil {
		return nil
	}
	rows, err := t.db.Query(query, args...)
	if err != nil {
		log.Error("query body weights", "err", err)
		return nil
	}
	defer rows.Close()

	list := []models.BodyWeight{}
	for rows.Next() {
		var b models.BodyWeight
		var comment sql.NullString
		err := rows.Scan(&b.ID, &b.Date, &b.Weight, &b.Fat, &b.IntFat, &b.BMI, &b.WC,
			&b.Bone, &b.Muscle, &b.Water, &b.Metabolic, &b.Age, &comment)
		if err != nil {
			log.Error("scan body weight", "err", err)
			return nil
		}
		b.Comment = comment.String
		list = append(list, b)
	}
	if err := rows.Err(); err != nil {
		log.Error("iterate body weights", "err", err)
		return nil
	}
	return list
}

func (t *SQLite) queryBloodPressures(query string, args ...any) []models.BloodPressure {
	if t.db == nil {
		return nil
	}
	rows, err := t.db.Query(query, args...)
	if err != nil {
		log.Error("query blood pressures", "err", err)
		return nil
	}
	defer rows.Close()

	list := []models.BloodPressure{}
	for rows.Next() {
		var b models.BloodPressure
		var comment sql.NullString
		err := rows.Scan(&b.ID, &b.Date, &b.Systolic, &b.Diastolic, &b.Pulse, &comment)
		if err != nil {
			log.Error("scan blood pressure", "err", err)
			return nil
		}
		b.Comment = comment.String
		list = append(list, b)
	}
	if err := rows.Err(); err != nil {
		log.Error("iterate blood pressures", "err", err)
		return nil
	}
	return list
}

func (t *SQLite) queryBloodGlucoses(query string, args ...any) []models.BloodGlucose {
	if t.db == nil {
		return nil
	}
	rows, err := t.db.Query(query, args...)
	if err != nil {
		log.Error("query blood glucoses", "err", err)
		return nil
	}
	defer rows.Close()

	list := []models.BloodGlucose{}
	for rows.Next() {
		var b models.BloodGlucose
		var meal int
		var comment sql.NullString
		err := rows.Scan(&b.ID, &b.Date, &b.Glucose, &meal, &comment)
		if err != nil {
			log.Error("scan blood glucose", "err", err)
			return nil
		}
		// Unknown meal encodings mark a corrupt row; skip it.
		if !models.ValidMeal(meal) {
			continue
		}
		b.Meal = models.Meal(meal)
		b.Comment = comment.String
		list = append(list, b)
	}
	if err := rows.Err(); err != nil {
		log.Error("iterate blood glucoses", "err", err)
		return nil
	}
	return list
}

// createDatabase makes the metadata and record tables when absent. The
// metadata insert is expected to fail on an already-initialized file (the
// unique name index rejects it), so that failure is only a warning.
func (t *SQLite) createDatabase() bool {
	if t.db == nil {
		return false
	}

	for _, stmt := range []string{
		createDBInfo, createDBInfoIdx, createDBBodyWeight, createDBBloodPressure, createDBBloodGlucose,
	} {
		if _, err := t.db.Exec(stmt); err != nil {
			log.Error("create schema", "err", err)
			return false
		}
	}
	_, err := t.db.Exec(
		"INSERT INTO db_info (name, version, last_modify) VALUES (?, ?, ?)",
		dbName, dbTopVersion, 0,
	)
	if err != nil {
		log.Warn("insert db_info", "err", err)
	}
	return true
}

// updateDatabase migrates the stored schema forward to dbTopVersion.
// Returning false leaves the table read-only.
func (t *SQLite) updateDatabase(version int) bool {
	switch version {
	case dbTopVersion:
		return true
	case dbVersion1:
		// v1 -> v2 adds the wc column: rename, recreate, backfill, drop.
		steps := []string{
			"ALTER TABLE db_body_weight RENAME TO db_tmp_bw",
			createDBBodyWeight,
			"INSERT INTO db_body_weight (id, date, weight, fat, int_fat, bmi, wc, bone, " +
				"muscle, water, metabolic, age, comment) " +
				"SELECT id, date, weight, fat, int_fat, bmi, 0 AS wc, bone, muscle, " +
				"water, metabolic, age, comment FROM db_tmp_bw",
			"UPDATE db_info SET version=2",
			"DROP TABLE db_tmp_bw",
		}
		for _, stmt := range steps {
			if _, err := t.db.Exec(stmt); err != nil {
				log.Error("migrate v1 to v2", "err", err)
				return false
			}
		}
		t.version = dbTopVersion
		return true
	default:
		// Unrecognized version, including formats newer than this build.
		return false
	}
}

const (
	createDBInfo = `CREATE TABLE IF NOT EXISTS db_info (
		'name' TEXT NOT NULL,
		'version' INTEGER NOT NULL,
		'descript' TEXT,
		'last_modify' INTEGER NOT NULL)`
	createDBInfoIdx = "CREATE UNIQUE INDEX IF NOT EXISTS db_info_idx_name ON db_info (name)"

	createDBBodyWeight = `CREATE TABLE IF NOT EXISTS db_body_weight (
		'id' INTEGER NOT NULL UNIQUE,
		'date' INTEGER NOT NULL,
		'weight' REAL NOT NULL,
		'fat' REAL NOT NULL,
		'int_fat' REAL NOT NULL,
		'bmi' REAL NOT NULL,
		'wc' REAL NOT NULL,
		'bone' REAL NOT NULL,
		'muscle' REAL NOT NULL,
		'water' REAL NOT NULL,
		'metabolic' INTEGER NOT NULL,
		'age' INTEGER NOT NULL,
		'comment' TEXT,
		PRIMARY KEY('id'))`
	createDBBloodPressure = `CREATE TABLE IF NOT EXISTS db_blood_pressure (
		'id' INTEGER NOT NULL UNIQUE,
		'date' INTEGER NOT NULL,
		'systolic' INTEGER NOT NULL,
		'diastolic' INTEGER NOT NULL,
		'pulse' INTEGER NOT NULL,
		'comment' TEXT,
		PRIMARY KEY('id'))`
	createDBBloodGlucose = `CREATE TABLE IF NOT EXISTS db_blood_glucose (
		'id' INTEGER NOT NULL UNIQUE,
		'date' INTEGER NOT NULL,
		'glucose' REAL NOT NULL,
		'meal' INTEGER NOT NULL,
		'comment' TEXT,
		PRIMARY KEY('id'))`

	queryBodyWeight    = "SELECT * FROM db_body_weight WHERE id=?"
	queryBloodPressure = "SELECT * FROM db_blood_pressure WHERE id=?"
	queryBloodGlucose  = "SELECT * FROM db_blood_glucose WHERE id=?"
)
