// ABOUTME: Tests for healthrec configuration management.
// ABOUTME: Covers load, save, defaults, backend selection, and path expansion.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/woofdog/healthrec/internal/storage"
)

func setConfigHome(t *testing.T, dir string) {
	t.Helper()
	originalXDG := os.Getenv("XDG_CONFIG_HOME")
	os.Setenv("XDG_CONFIG_HOME", dir)
	t.Cleanup(func() { os.Setenv("XDG_CONFIG_HOME", originalXDG) })
}

func TestGetBackendDefault(t *testing.T) {
	cfg := &Config{}
	if got := cfg.GetBackend(); got != "sqlite" {
		t.Errorf("GetBackend() = %q, want %q", got, "sqlite")
	}
}

func TestGetBackendExplicit(t *testing.T) {
	cfg := &Config{Backend: "memory"}
	if got := cfg.GetBackend(); got != "memory" {
		t.Errorf("GetBackend() = %q, want %q", got, "memory")
	}
}

func TestGetDataDirDefault(t *testing.T) {
	cfg := &Config{}
	if got := cfg.GetDataDir(); got == "" {
		t.Error("GetDataDir() returned empty string")
	}
}

func TestGetDataDirExplicit(t *testing.T) {
	cfg := &Config{DataDir: "/tmp/healthrec-test"}
	if got := cfg.GetDataDir(); got != "/tmp/healthrec-test" {
		t.Errorf("GetDataDir() = %q, want %q", got, "/tmp/healthrec-test")
	}
}

func TestGetDBFileDefault(t *testing.T) {
	cfg := &Config{}
	if got := cfg.GetDBFile(); got != "health.db" {
		t.Errorf("GetDBFile() = %q, want %q", got, "health.db")
	}
}

func TestDBPath(t *testing.T) {
	cfg := &Config{DataDir: "/data", DBFile: "mine.db"}
	if got := cfg.DBPath(); got != filepath.Join("/data", "mine.db") {
		t.Errorf("DBPath() = %q", got)
	}
}

func TestExpandPathEmpty(t *testing.T) {
	if got := ExpandPath(""); got != "" {
		t.Errorf("ExpandPath(\"\") = %q, want %q", got, "")
	}
}

func TestExpandPathAbsolute(t *testing.T) {
	if got := ExpandPath("/tmp/foo"); got != "/tmp/foo" {
		t.Errorf("ExpandPath(\"/tmp/foo\") = %q, want %q", got, "/tmp/foo")
	}
}

func TestExpandPathTilde(t *testing.T) {
	home, _ := os.UserHomeDir()

	got := ExpandPath("~")
	if got != home {
		t.Errorf("ExpandPath(\"~\") = %q, want %q", got, home)
	}
}

func TestExpandPathTildeSlash(t *testing.T) {
	home, _ := os.UserHomeDir()

	got := ExpandPath("~/data/healthrec")
	want := filepath.Join(home, "data/healthrec")
	if got != want {
		t.Errorf("ExpandPath(\"~/data/healthrec\") = %q, want %q", got, want)
	}
}

func TestExpandPathRelative(t *testing.T) {
	if got := ExpandPath("data/healthrec"); got != "data/healthrec" {
		t.Errorf("ExpandPath(\"data/healthrec\") = %q, want %q", got, "data/healthrec")
	}
}

func TestGetDataDirExpandsTilde(t *testing.T) {
	home, _ := os.UserHomeDir()

	cfg := &Config{DataDir: "~/healthrec-data"}
	got := cfg.GetDataDir()
	want := filepath.Join(home, "healthrec-data")
	if got != want {
		t.Errorf("GetDataDir() = %q, want %q", got, want)
	}
}

func TestLoadNonExistentConfig(t *testing.T) {
	setConfigHome(t, t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() with no config file should not error: %v", err)
	}
	if cfg == nil {
		t.Fatal("Load() returned nil config")
	}

	if cfg.Backend != "" {
		t.Errorf("Expected empty Backend, got %q", cfg.Backend)
	}
	if cfg.DataDir != "" {
		t.Errorf("Expected empty DataDir, got %q", cfg.DataDir)
	}
}

func TestSaveAndLoad(t *testing.T) {
	setConfigHome(t, t.TempDir())

	cfg := &Config{
		Backend: "memory",
		DataDir: "/tmp/healthrec-data",
		DBFile:  "other.db",
	}
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if loaded.Backend != "memory" {
		t.Errorf("Backend mismatch: got %q, want %q", loaded.Backend, "memory")
	}
	if loaded.DataDir != "/tmp/healthrec-data" {
		t.Errorf("DataDir mismatch: got %q, want %q", loaded.DataDir, "/tmp/healthrec-data")
	}
	if loaded.DBFile != "other.db" {
		t.Errorf("DBFile mismatch: got %q, want %q", loaded.DBFile, "other.db")
	}
}

func TestSaveCreatesDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	setConfigHome(t, filepath.Join(tmpDir, "nonexistent"))

	cfg := &Config{Backend: "sqlite"}
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save() should create directory: %v", err)
	}

	configDir := filepath.Join(tmpDir, "nonexistent", "healthrec")
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		t.Error("Expected config directory to be created")
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	setConfigHome(t, tmpDir)

	configDir := filepath.Join(tmpDir, "healthrec")
	os.MkdirAll(configDir, 0755)
	os.WriteFile(filepath.Join(configDir, "config.json"), []byte("invalid json"), 0600)

	if _, err := Load(); err == nil {
		t.Error("Expected error for invalid JSON config")
	}
}

func TestGetConfigPath(t *testing.T) {
	tmpDir := t.TempDir()
	setConfigHome(t, tmpDir)

	got := GetConfigPath()
	want := filepath.Join(tmpDir, "healthrec", "config.json")
	if got != want {
		t.Errorf("GetConfigPath() = %q, want %q", got, want)
	}
}

func TestOpenStorageSQLite(t *testing.T) {
	tmpDir := t.TempDir()

	cfg := &Config{
		Backend: "sqlite",
		DataDir: tmpDir,
	}

	table, err := cfg.OpenStorage()
	if err != nil {
		t.Fatalf("OpenStorage() for sqlite failed: %v", err)
	}
	defer table.SetFileName("")

	if table.ReadOnly() {
		t.Error("Expected a fresh database to open read-write")
	}

	dbPath := filepath.Join(tmpDir, "health.db")
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Expected health.db to be created")
	}
}

func TestOpenStorageMemory(t *testing.T) {
	cfg := &Config{Backend: "memory"}

	table, err := cfg.OpenStorage()
	if err != nil {
		t.Fatalf("OpenStorage() for memory failed: %v", err)
	}

	if _, ok := table.(*storage.Memory); !ok {
		t.Errorf("Expected a memory table, got %T", table)
	}
}

func TestOpenStorageInvalidBackend(t *testing.T) {
	cfg := &Config{
		Backend: "invalid",
		DataDir: "/tmp",
	}

	if _, err := cfg.OpenStorage(); err == nil {
		t.Error("Expected error for invalid backend")
	}
}

func TestOpenStorageDefaultBackend(t *testing.T) {
	cfg := &Config{DataDir: t.TempDir()}

	table, err := cfg.OpenStorage()
	if err != nil {
		t.Fatalf("OpenStorage() with default backend failed: %v", err)
	}
	defer table.SetFileName("")

	if _, ok := table.(*storage.SQLite); !ok {
		t.Errorf("Expected a SQLite table, got %T", table)
	}
}

func TestConfigJSONOmitsEmpty(t *testing.T) {
	cfg := &Config{}

	data, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	if string(data) != "{}" {
		t.Errorf("Expected empty JSON object, got %s", string(data))
	}
}
