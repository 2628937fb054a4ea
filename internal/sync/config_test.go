// ABOUTME: Tests for sync configuration load, save, and credential handling.
// ABOUTME: Verifies defaults, remember flags, obfuscation, and validation.
package sync

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupConfigDir(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	orig := os.Getenv("XDG_CONFIG_HOME")
	t.Cleanup(func() {
		if orig != "" {
			_ = os.Setenv("XDG_CONFIG_HOME", orig)
		} else {
			_ = os.Unsetenv("XDG_CONFIG_HOME")
		}
	})
	_ = os.Setenv("XDG_CONFIG_HOME", tmpDir)
	return tmpDir
}

func TestLoadConfigNoFile(t *testing.T) {
	setupConfigDir(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, SyncNone, cfg.Mode)
	assert.Equal(t, 21, cfg.Port)
	assert.NotEmpty(t, cfg.DeviceID)
}

func TestSaveAndLoadConfig(t *testing.T) {
	setupConfigDir(t)

	cfg := &Config{
		Mode:             SyncFTPS,
		Host:             "ftp.example.com",
		Port:             990,
		User:             "alice",
		RememberPassword: true,
		RemoteDir:        "backups/health",
		DeviceID:         "device-123",
	}
	cfg.SetPassword("s3cret")
	require.NoError(t, SaveConfig(cfg))

	loaded, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, SyncFTPS, loaded.Mode)
	assert.Equal(t, "ftp.example.com", loaded.Host)
	assert.Equal(t, 990, loaded.Port)
	assert.Equal(t, "alice", loaded.User)
	assert.Equal(t, "backups/health", loaded.RemoteDir)
	assert.Equal(t, "device-123", loaded.DeviceID)
	assert.Equal(t, "s3cret", loaded.PlainPassword())
}

func TestSaveConfigDropsForgottenCredentials(t *testing.T) {
	setupConfigDir(t)

	cfg := &Config{Mode: SyncFTP, Host: "h", Port: 21, DeviceID: "d"}
	cfg.SetPassword("ephemeral")
	cfg.SetRefreshToken("token")
	require.NoError(t, SaveConfig(cfg))

	loaded, err := LoadConfig()
	require.NoError(t, err)
	assert.Empty(t, loaded.Password)
	assert.Empty(t, loaded.RefreshToken)
}

func TestPasswordNotStoredInPlaintext(t *testing.T) {
	setupConfigDir(t)

	cfg := &Config{Mode: SyncFTP, Host: "h", Port: 21, RememberPassword: true, DeviceID: "d"}
	cfg.SetPassword("hunter2-plaintext")
	require.NoError(t, SaveConfig(cfg))

	raw, err := os.ReadFile(ConfigPath())
	require.NoError(t, err)
	assert.False(t, strings.Contains(string(raw), "hunter2-plaintext"))

	loaded, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "hunter2-plaintext", loaded.PlainPassword())
}

func TestCredentialAccessorsRoundTrip(t *testing.T) {
	cfg := &Config{}
	assert.Empty(t, cfg.PlainPassword())
	assert.Empty(t, cfg.PlainRefreshToken())

	cfg.SetPassword("pw")
	cfg.SetRefreshToken("rt")
	assert.Equal(t, "pw", cfg.PlainPassword())
	assert.Equal(t, "rt", cfg.PlainRefreshToken())
	assert.NotEqual(t, "pw", cfg.Password)
	assert.NotEqual(t, "rt", cfg.RefreshToken)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, (&Config{Mode: SyncNone}).Validate())
	assert.NoError(t, (&Config{Mode: SyncFTP, Host: "h", Port: 21}).Validate())
	assert.NoError(t, (&Config{Mode: SyncOneDrive, ClientID: "cid"}).Validate())

	assert.Error(t, (&Config{Mode: SyncFTP, Port: 21}).Validate())
	assert.Error(t, (&Config{Mode: SyncFTP, Host: "h", Port: 0}).Validate())
	assert.Error(t, (&Config{Mode: SyncFTP, Host: "h", Port: 70000}).Validate())
	assert.Error(t, (&Config{Mode: SyncOneDrive}).Validate())
	assert.Error(t, (&Config{Mode: "carrier-pigeon"}).Validate())
}
