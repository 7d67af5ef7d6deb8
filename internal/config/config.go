// Package config defines service configuration structures and loading hooks.
package config

import (
	"runtime"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// SheetID identifies the remote spreadsheet.
	SheetID string `koanf:"sheet_id"`

	// APIKey authenticates reads against the values API.
	APIKey string `koanf:"api_key"`

	// BaseURL overrides the values-API base URL. Empty uses the
	// public endpoint; the seedsheet tool prints a local one.
	BaseURL string `koanf:"base_url"`

	// CacheDir holds the persistent cache tier. Empty keeps it in
	// memory (no cross-session survival).
	CacheDir string `koanf:"cache_dir"`

	// CacheTTLHours bounds the age of persistent cache entries.
	CacheTTLHours int `koanf:"cache_ttl_hours"`

	// QueueSize bounds the in-memory refresh-job queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of refresh workers.
	WorkerCount int `koanf:"worker_count"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:      "info",
		Addr:          ":9080",
		CacheTTLHours: 24,
		QueueSize:     64,
		WorkerCount:   runtime.NumCPU(),
	}
}
