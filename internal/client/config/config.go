// Package config holds runtime settings for the BookBite client and their
// layered loading: defaults, then a JSON file, then command-line flags.
package config

import "time"

// Config holds runtime settings for the client subsystem.
//
// Every interval and limit the sync engine and live-update client use is a
// parameter here, not a constant buried in a component.
type Config struct {
	// Backend endpoints.
	ServerBaseURL string
	PushURL       string

	// Local data directory holding the client database.
	DataDir string

	LogLevel string

	// Sync engine.
	OnlineCheckInterval time.Duration
	SyncInterval        time.Duration
	RetentionHorizon    time.Duration
	MaxSyncAttempts     int

	// Live-update client.
	HeartbeatInterval    time.Duration
	ConnectTimeout       time.Duration
	MaxReconnectAttempts int
	ReconnectBaseDelay   time.Duration
	ReconnectMaxDelay    time.Duration
	HistoryLimit         int
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://127.0.0.1:8080/api/v1"
	c.PushURL = "ws://127.0.0.1:8080/ws"
	c.DataDir = "bookbite-data"
	c.LogLevel = "info"

	c.OnlineCheckInterval = 10 * time.Second
	c.SyncInterval = 30 * time.Second
	c.RetentionHorizon = 30 * 24 * time.Hour
	c.MaxSyncAttempts = 5

	c.HeartbeatInterval = 30 * time.Second
	c.ConnectTimeout = 10 * time.Second
	c.MaxReconnectAttempts = 5
	c.ReconnectBaseDelay = time.Second
	c.ReconnectMaxDelay = 30 * time.Second
	c.HistoryLimit = 50
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
