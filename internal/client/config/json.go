package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/tishanyq/shopsync/internal/flagx"
	"github.com/tishanyq/shopsync/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify the sync timeout either as a string like
// "15s" or as integer nanoseconds.
type JsonConfig struct {
	BackendURL       string         `json:"backend_url"`
	DatabasePath     string         `json:"database_path"`
	SyncTimeout      timex.Duration `json:"sync_timeout"`
	SyncReminderDays int            `json:"sync_reminder_days"`
}

// parseJson overlays Config with values loaded from a JSON file. The file
// path comes from the -c/-config flags; when absent, nothing is loaded.
// Fields missing from the JSON keep their current values. Panics on read or
// unmarshal errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.BackendURL != "" {
		cfg.BackendURL = jc.BackendURL
	}
	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.SyncTimeout.Duration > 0 {
		cfg.SyncTimeout = time.Duration(jc.SyncTimeout.Duration)
	}
	if jc.SyncReminderDays > 0 {
		cfg.SyncReminderDays = jc.SyncReminderDays
	}
}
