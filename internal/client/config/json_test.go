package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withArgs(t *testing.T, args []string) {
	t.Helper()
	orig := os.Args
	t.Cleanup(func() { os.Args = orig })
	os.Args = args
}

func TestParseJson_OverlaysPresentFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "conf.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"server_base_url": "https://api.bookbite.example/v1",
		"sync_interval": "45s",
		"retention_horizon": "720h",
		"max_reconnect_attempts": 3
	}`), 0o600))

	withArgs(t, []string{"app", "-c", path})

	var cfg Config
	cfg.LoadDefaults()
	parseJson(&cfg)

	assert.Equal(t, "https://api.bookbite.example/v1", cfg.ServerBaseURL)
	assert.Equal(t, 45*time.Second, cfg.SyncInterval)
	assert.Equal(t, 720*time.Hour, cfg.RetentionHorizon)
	assert.Equal(t, 3, cfg.MaxReconnectAttempts)

	// Fields absent from the file keep their defaults.
	assert.Equal(t, "ws://127.0.0.1:8080/ws", cfg.PushURL)
	assert.Equal(t, 30*time.Second, cfg.HeartbeatInterval)
}

func TestParseJson_NoFlag_IsNoop(t *testing.T) {
	withArgs(t, []string{"app"})

	var cfg Config
	cfg.LoadDefaults()
	parseJson(&cfg)

	assert.Equal(t, "http://127.0.0.1:8080/api/v1", cfg.ServerBaseURL)
}

func TestParseJson_MalformedFile_Panics(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "conf.json")
	require.NoError(t, os.WriteFile(path, []byte(`{broken`), 0o600))

	withArgs(t, []string{"app", "-c", path})

	var cfg Config
	cfg.LoadDefaults()
	assert.Panics(t, func() { parseJson(&cfg) })
}
