package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	content := `{
		"google_api_key": "test-key",
		"google_cx": "test-cx",
		"cooldown_days": 7,
		"max_urls": 10
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "test-key", cfg.GoogleAPIKey)
	assert.Equal(t, "test-cx", cfg.GoogleCX)
	assert.Equal(t, 7, cfg.CooldownDays)
	assert.Equal(t, 10, cfg.MaxURLs)
	// unspecified fields fall back to defaults
	assert.Equal(t, DefaultCountrySuffix, cfg.CountrySuffix)
	assert.Equal(t, DefaultUserAgent, cfg.UserAgent)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestLoad_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.ApplyDefaults()

	assert.Equal(t, DefaultCooldownDays, cfg.CooldownDays)
	assert.Equal(t, DefaultMaxURLs, cfg.MaxURLs)
	assert.Equal(t, DefaultFetchDelay, cfg.FetchDelay())
	assert.Equal(t, DefaultFetchTimeout, cfg.FetchTimeoutDuration())
	assert.Equal(t, DefaultCountrySuffix, cfg.CountrySuffix)
	assert.Equal(t, DefaultUserAgent, cfg.UserAgent)
}

func TestValidate(t *testing.T) {
	cfg := &Config{}
	cfg.ApplyDefaults()
	assert.NoError(t, cfg.Validate())

	cfg.CooldownDays = -1
	assert.Error(t, cfg.Validate())
}

func TestMergeWithDefaults(t *testing.T) {
	defaults := Config{
		GoogleAPIKey: "default-key",
		CooldownDays: 3,
		UserAgent:    DefaultUserAgent,
	}

	override := &Config{CooldownDays: 5}
	merged := override.MergeWithDefaults(defaults)

	assert.Equal(t, "default-key", merged.GoogleAPIKey)
	assert.Equal(t, 5, merged.CooldownDays)
	assert.Equal(t, DefaultUserAgent, merged.UserAgent)
}

func TestCooldown(t *testing.T) {
	cfg := &Config{CooldownDays: 3}
	assert.Equal(t, 72*time.Hour, cfg.Cooldown())
}
