// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - Derived paths resolve against DataDir unless set explicitly.
// - External errors must be wrapped via this package's error helpers.
package config

import "path/filepath"

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DataDir holds the status, ratings, codes, and mapping documents.
	DataDir string `koanf:"data_dir"`

	// RegistrationsPath points at the registrations spreadsheet.
	RegistrationsPath string `koanf:"registrations_path"`

	// StatusPath, RatingsPath, CodesPath, and ColumnMapPath override the
	// DataDir-derived document locations when non-empty.
	StatusPath    string `koanf:"status_path"`
	RatingsPath   string `koanf:"ratings_path"`
	CodesPath     string `koanf:"codes_path"`
	ColumnMapPath string `koanf:"column_map_path"`

	// LockTimeoutMS bounds how long a writer waits for the cross-process
	// file lock before giving up with a busy error.
	LockTimeoutMS int `koanf:"lock_timeout_ms"`

	// SourceCacheTTLMS bounds how long a parsed spreadsheet snapshot is
	// served before it is re-read from disk.
	SourceCacheTTLMS int `koanf:"source_cache_ttl_ms"`

	// EventCodes seeds per-event access codes; stored codes take precedence.
	EventCodes map[string]string `koanf:"event_codes"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		Addr:              ":9080",
		DataDir:           "data",
		RegistrationsPath: filepath.Join("data", "registrations.xlsx"),
		LockTimeoutMS:     5_000,
		SourceCacheTTLMS:  30_000,
		EventCodes:        map[string]string{},
	}
}

// StatusFile returns the status document path.
func (c *Config) StatusFile() string {
	if c.StatusPath != "" {
		return c.StatusPath
	}
	return filepath.Join(c.DataDir, "event_status.json")
}

// RatingsFile returns the ratings document path.
func (c *Config) RatingsFile() string {
	if c.RatingsPath != "" {
		return c.RatingsPath
	}
	return filepath.Join(c.DataDir, "event_ratings.json")
}

// CodesFile returns the access code document path.
func (c *Config) CodesFile() string {
	if c.CodesPath != "" {
		return c.CodesPath
	}
	return filepath.Join(c.DataDir, "event_codes.json")
}

// ColumnMapFile returns the spreadsheet column mapping path.
func (c *Config) ColumnMapFile() string {
	if c.ColumnMapPath != "" {
		return c.ColumnMapPath
	}
	return filepath.Join(c.DataDir, "column_map.json")
}
