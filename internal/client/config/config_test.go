package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "http://127.0.0.1:8080", c.BackendURL)
	assert.Equal(t, "shopsync.db", c.DatabasePath)
	assert.Equal(t, 15*time.Second, c.SyncTimeout)
	assert.Equal(t, 10, c.SyncReminderDays)
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	cfg := LoadConfig()

	require.NotNil(t, cfg, "LoadConfig must not return nil")
	assert.Equal(t, "http://127.0.0.1:8080", cfg.BackendURL)
	assert.Equal(t, 15*time.Second, cfg.SyncTimeout)
}

func TestParseJson_OverlaysProvidedFieldsOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"backend_url": "https://api.example.com",
		"sync_timeout": "30s"
	}`), 0o600))

	origArgs := os.Args
	os.Args = []string{"shopsync", "-c", path}
	t.Cleanup(func() { os.Args = origArgs })

	var cfg Config
	cfg.LoadDefaults()
	parseJson(&cfg)

	assert.Equal(t, "https://api.example.com", cfg.BackendURL)
	assert.Equal(t, 30*time.Second, cfg.SyncTimeout)
	// Untouched fields keep their defaults.
	assert.Equal(t, "shopsync.db", cfg.DatabasePath)
	assert.Equal(t, 10, cfg.SyncReminderDays)
}

func TestParseFlags_OverridesDefaults(t *testing.T) {
	origArgs := os.Args
	os.Args = []string{"shopsync", "-a", "https://api.example.com", "-d", "/tmp/s.db", "-t", "45"}
	t.Cleanup(func() { os.Args = origArgs })

	var cfg Config
	cfg.LoadDefaults()
	parseFlags(&cfg)

	assert.Equal(t, "https://api.example.com", cfg.BackendURL)
	assert.Equal(t, "/tmp/s.db", cfg.DatabasePath)
	assert.Equal(t, 45*time.Second, cfg.SyncTimeout)
}
