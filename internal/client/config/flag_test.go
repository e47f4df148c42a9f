package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseFlags_Overrides(t *testing.T) {
	orig := os.Args
	defer func() { os.Args = orig }()
	os.Args = []string{"app", "-a", "https://api.other.example", "-i", "60", "-d", "/tmp/bb"}

	var cfg Config
	cfg.LoadDefaults()
	parseFlags(&cfg)

	assert.Equal(t, "https://api.other.example", cfg.ServerBaseURL)
	assert.Equal(t, 60*time.Second, cfg.SyncInterval)
	assert.Equal(t, "/tmp/bb", cfg.DataDir)
}

func TestParseFlags_NoFlags_KeepsDefaults(t *testing.T) {
	orig := os.Args
	defer func() { os.Args = orig }()
	os.Args = []string{"app"}

	var cfg Config
	cfg.LoadDefaults()
	parseFlags(&cfg)

	assert.Equal(t, "http://127.0.0.1:8080/api/v1", cfg.ServerBaseURL)
	assert.Equal(t, 30*time.Second, cfg.SyncInterval)
}
