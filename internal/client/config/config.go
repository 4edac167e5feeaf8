package config

import "time"

// Config holds runtime settings for the ShopSync CLI.
//
// Fields:
//   - BackendURL: base URL of the backend REST API.
//   - DatabasePath: path to the local SQLite database file.
//   - SyncTimeout: wall-clock budget for one manual sync run.
//   - SyncReminderDays: days without a successful sync before the status
//     screen nags the shopkeeper.
type Config struct {
	BackendURL       string
	DatabasePath     string
	SyncTimeout      time.Duration
	SyncReminderDays int
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.BackendURL = "http://127.0.0.1:8080"
	c.DatabasePath = "shopsync.db"
	c.SyncTimeout = 15 * time.Second
	c.SyncReminderDays = 10
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
