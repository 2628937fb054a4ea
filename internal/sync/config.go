// ABOUTME: Sync configuration: mode, FTP account, OneDrive tokens, remote directory.
// ABOUTME: Stored as JSON under the XDG config directory, credentials base64-obfuscated.
package sync

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Type selects the sync backend.
type Type string

const (
	SyncNone     Type = "none"
	SyncFTP      Type = "ftp"
	SyncFTPS     Type = "ftps"
	SyncOneDrive Type = "onedrive"
)

// Config stores sync settings. Password and RefreshToken hold obfuscated
// values; use the accessors. Obfuscation keeps credentials out of casual
// sight only, it is not encryption.
type Config struct {
	Mode             Type   `json:"mode"`
	Host             string `json:"host,omitempty"`
	Port             int    `json:"port,omitempty"`
	User             string `json:"user,omitempty"`
	Password         string `json:"password,omitempty"`
	RememberPassword bool   `json:"remember_password"`
	RemoteDir        string `json:"remote_dir,omitempty"`
	ClientID         string `json:"client_id,omitempty"`
	// AuthCode is a pending OneDrive authorization code saved by the login
	// command. It is single-use and cleared once exchanged.
	AuthCode      string `json:"auth_code,omitempty"`
	RefreshToken  string `json:"refresh_token,omitempty"`
	RememberToken bool   `json:"remember_token"`
	DeviceID      string `json:"device_id"`
}

// ConfigDir returns the XDG config directory for healthrec.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "healthrec")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "healthrec")
}

// ConfigPath returns the path to the sync config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "sync.json")
}

// LoadConfig loads sync config from disk. A missing file yields defaults
// with a freshly generated device ID.
func LoadConfig() (*Config, error) {
	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{Mode: SyncNone, Port: 21, DeviceID: uuid.NewString()}, nil
		}
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing sync config: %w", err)
	}
	if cfg.Mode == "" {
		cfg.Mode = SyncNone
	}
	if cfg.DeviceID == "" {
		cfg.DeviceID = uuid.NewString()
	}
	return &cfg, nil
}

// SaveConfig persists sync config to disk. Credentials whose remember flag
// is off are dropped from the written file.
func SaveConfig(cfg *Config) error {
	if err := os.MkdirAll(ConfigDir(), 0750); err != nil {
		return err
	}
	out := *cfg
	if !out.RememberPassword {
		out.Password = ""
	}
	if !out.RememberToken {
		out.RefreshToken = ""
	}
	data, err := json.MarshalIndent(&out, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(ConfigPath(), data, 0600)
}

// Validate checks that the configured mode has what it needs to connect.
func (c *Config) Validate() error {
	switch c.Mode {
	case SyncNone:
		return nil
	case SyncFTP, SyncFTPS:
		if c.Host == "" {
			return fmt.Errorf("sync host is not set")
		}
		if c.Port < 1 || c.Port > 65535 {
			return fmt.Errorf("sync port %d out of range", c.Port)
		}
		return nil
	case SyncOneDrive:
		if c.ClientID == "" {
			return fmt.Errorf("onedrive client ID is not set")
		}
		return nil
	default:
		return fmt.Errorf("unknown sync mode %q", c.Mode)
	}
}

// SetPassword stores the FTP password in obfuscated form.
func (c *Config) SetPassword(plain string) {
	c.Password = obfuscate(plain)
}

// PlainPassword returns the deobfuscated FTP password.
func (c *Config) PlainPassword() string {
	return deobfuscate(c.Password)
}

// SetRefreshToken stores the OneDrive refresh token in obfuscated form.
func (c *Config) SetRefreshToken(token string) {
	c.RefreshToken = obfuscate(token)
}

// PlainRefreshToken returns the deobfuscated OneDrive refresh token.
func (c *Config) PlainRefreshToken() string {
	return deobfuscate(c.RefreshToken)
}

func obfuscate(s string) string {
	if s == "" {
		return ""
	}
	return base64.StdEncoding.EncodeToString([]byte(s))
}

func deobfuscate(s string) string {
	if s == "" {
		return ""
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return ""
	}
	return string(b)
}
