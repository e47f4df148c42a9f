package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/smforson1/book-bite-sub000/internal/flagx"
	"github.com/smforson1/book-bite-sub000/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify intervals either as strings like "30s"
// or as integer nanoseconds. After parsing, values are copied into the
// runtime Config (which uses time.Duration).
type JsonConfig struct {
	ServerBaseURL string `json:"server_base_url"`
	PushURL       string `json:"push_url"`
	DataDir       string `json:"data_dir"`
	LogLevel      string `json:"log_level"`

	OnlineCheckInterval *timex.Duration `json:"online_check_interval"`
	SyncInterval        *timex.Duration `json:"sync_interval"`
	RetentionHorizon    *timex.Duration `json:"retention_horizon"`
	MaxSyncAttempts     *int            `json:"max_sync_attempts"`

	HeartbeatInterval    *timex.Duration `json:"heartbeat_interval"`
	ConnectTimeout       *timex.Duration `json:"connect_timeout"`
	MaxReconnectAttempts *int            `json:"max_reconnect_attempts"`
	ReconnectBaseDelay   *timex.Duration `json:"reconnect_base_delay"`
	ReconnectMaxDelay    *timex.Duration `json:"reconnect_max_delay"`
	HistoryLimit         *int            `json:"history_limit"`
}

// parseJson overlays cfg with values from the JSON file named by the -c or
// -config flag. Absent file means nothing to do; fields absent from the file
// keep their current (default) values. Read or unmarshal errors panic, as
// a broken explicit config should not be silently ignored.
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

	if jc.ServerBaseURL != "" {
		cfg.ServerBaseURL = jc.ServerBaseURL
	}
	if jc.PushURL != "" {
		cfg.PushURL = jc.PushURL
	}
	if jc.DataDir != "" {
		cfg.DataDir = jc.DataDir
	}
	if jc.LogLevel != "" {
		cfg.LogLevel = jc.LogLevel
	}

	setDuration(&cfg.OnlineCheckInterval, jc.OnlineCheckInterval)
	setDuration(&cfg.SyncInterval, jc.SyncInterval)
	setDuration(&cfg.RetentionHorizon, jc.RetentionHorizon)
	setInt(&cfg.MaxSyncAttempts, jc.MaxSyncAttempts)

	setDuration(&cfg.HeartbeatInterval, jc.HeartbeatInterval)
	setDuration(&cfg.ConnectTimeout, jc.ConnectTimeout)
	setInt(&cfg.MaxReconnectAttempts, jc.MaxReconnectAttempts)
	setDuration(&cfg.ReconnectBaseDelay, jc.ReconnectBaseDelay)
	setDuration(&cfg.ReconnectMaxDelay, jc.ReconnectMaxDelay)
	setInt(&cfg.HistoryLimit, jc.HistoryLimit)
}

func setDuration(dst *time.Duration, src *timex.Duration) {
	if src != nil {
		*dst = src.Duration
	}
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}
