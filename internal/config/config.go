// ABOUTME: Application configuration with storage backend selection.
// ABOUTME: Handles settings, paths, and the storage backend factory function.

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/woofdog/healthrec/internal/storage"
)

// Config stores healthrec configuration.
type Config struct {
	// Backend selects the storage backend: "sqlite" (default) or "memory".
	// The memory backend keeps records for the process lifetime only.
	Backend string `json:"backend,omitempty"`

	// DataDir is the directory holding the database file. Supports ~
	// expansion for the home directory. Defaults to ~/.local/share/healthrec.
	DataDir string `json:"data_dir,omitempty"`

	// DBFile is the database file name inside DataDir. Defaults to health.db.
	DBFile string `json:"db_file,omitempty"`
}

// GetBackend returns the configured backend, defaulting to "sqlite".
func (c *Config) GetBackend() string {
	if c.Backend == "" {
		return "sqlite"
	}
	return c.Backend
}

// GetDataDir returns the configured data directory with ~ expanded,
// defaulting to the standard XDG data directory.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return DataDir()
	}
	return ExpandPath(c.DataDir)
}

// GetDBFile returns the configured database file name.
func (c *Config) GetDBFile() string {
	if c.DBFile == "" {
		return "health.db"
	}
	return c.DBFile
}

// DBPath returns the full path of the database file.
func (c *Config) DBPath() string {
	return filepath.Join(c.GetDataDir(), c.GetDBFile())
}

// DataDir returns the standard XDG data directory for healthrec.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "healthrec")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "healthrec")
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// OpenStorage creates a Table implementation based on the configured
// backend. For SQLite the database file is created on first use; an
// existing file with an older schema is migrated, and one this build does
// not understand comes back read-only.
func (c *Config) OpenStorage() (storage.Table, error) {
	switch c.GetBackend() {
	case "sqlite":
		if err := os.MkdirAll(c.GetDataDir(), 0750); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		table := storage.NewSQLite()
		if !table.SetFileName(c.DBPath()) {
			return nil, fmt.Errorf("cannot open database %s", c.DBPath())
		}
		return table, nil
	case "memory":
		return storage.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown backend: %q", c.Backend)
	}
}

// GetConfigPath returns the config file path.
func GetConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "healthrec", "config.json")
}

// Load reads config from disk.
func Load() (*Config, error) {
	path := GetConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes config to disk.
func (c *Config) Save() error {
	path := GetConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
