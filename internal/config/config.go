// Package config provides configuration management for the event collector.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Defaults applied when neither environment nor config file set a value.
const (
	DefaultCooldownDays  = 3
	DefaultMaxURLs       = 5
	DefaultFetchDelay    = 2 * time.Second
	DefaultFetchTimeout  = 10 * time.Second
	DefaultCountrySuffix = ".de"
	DefaultUserAgent     = "TanzpartyBot/1.0 (+https://deineseite.de/bot-info)"
)

// Config holds all settings for the collector and the API server.
type Config struct {
	GoogleAPIKey  string `json:"google_api_key,omitempty"`
	GoogleCX      string `json:"google_cx,omitempty"`
	GeminiAPIKey  string `json:"gemini_api_key,omitempty"`
	DatabaseURL   string `json:"database_url,omitempty"`
	CooldownDays  int    `json:"cooldown_days,omitempty"`
	MaxURLs       int    `json:"max_urls,omitempty"`
	FetchDelaySec int    `json:"fetch_delay_sec,omitempty"`
	FetchTimeout  int    `json:"fetch_timeout_sec,omitempty"`
	CountrySuffix string `json:"country_suffix,omitempty"`
	UserAgent     string `json:"user_agent,omitempty"`
	FrontendURL   string `json:"frontend_url,omitempty"`
	UseBrowser    bool   `json:"use_browser,omitempty"`
	Verbose       bool   `json:"verbose,omitempty"`
}

// Load reads configuration from a JSON file.
func Load(path string) (*Config, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path: %w", err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ApplyDefaults()
	return &cfg, nil
}

// FromEnv builds a Config from environment variables.
func FromEnv() *Config {
	cfg := &Config{
		GoogleAPIKey:  os.Getenv("GOOGLE_API_KEY"),
		GoogleCX:      os.Getenv("GOOGLE_CX"),
		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		CooldownDays:  getEnvInt("URL_REVISIT_COOLDOWN_DAYS", 0),
		MaxURLs:       getEnvInt("MAX_URLS_PER_QUERY", 0),
		CountrySuffix: os.Getenv("COUNTRY_SUFFIX"),
		FrontendURL:   os.Getenv("FRONTEND_URL"),
	}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills unset fields with their default values.
func (c *Config) ApplyDefaults() {
	if c.CooldownDays == 0 {
		c.CooldownDays = DefaultCooldownDays
	}
	if c.MaxURLs == 0 {
		c.MaxURLs = DefaultMaxURLs
	}
	if c.FetchDelaySec == 0 {
		c.FetchDelaySec = int(DefaultFetchDelay / time.Second)
	}
	if c.FetchTimeout == 0 {
		c.FetchTimeout = int(DefaultFetchTimeout / time.Second)
	}
	if c.CountrySuffix == "" {
		c.CountrySuffix = DefaultCountrySuffix
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
}

// Validate checks the configuration for inconsistent values.
func (c *Config) Validate() error {
	if c.CooldownDays < 0 {
		return fmt.Errorf("cooldown_days must not be negative: %d", c.CooldownDays)
	}
	if c.MaxURLs < 0 {
		return fmt.Errorf("max_urls must not be negative: %d", c.MaxURLs)
	}
	if c.FetchDelaySec < 0 {
		return fmt.Errorf("fetch_delay_sec must not be negative: %d", c.FetchDelaySec)
	}
	if c.FetchTimeout < 0 {
		return fmt.Errorf("fetch_timeout_sec must not be negative: %d", c.FetchTimeout)
	}
	return nil
}

// MergeWithDefaults returns a copy of c with empty fields filled from defaults.
// Boolean flags are never merged, an explicit false stays false.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	merged := *c
	if merged.GoogleAPIKey == "" {
		merged.GoogleAPIKey = defaults.GoogleAPIKey
	}
	if merged.GoogleCX == "" {
		merged.GoogleCX = defaults.GoogleCX
	}
	if merged.GeminiAPIKey == "" {
		merged.GeminiAPIKey = defaults.GeminiAPIKey
	}
	if merged.DatabaseURL == "" {
		merged.DatabaseURL = defaults.DatabaseURL
	}
	if merged.CooldownDays == 0 {
		merged.CooldownDays = defaults.CooldownDays
	}
	if merged.MaxURLs == 0 {
		merged.MaxURLs = defaults.MaxURLs
	}
	if merged.FetchDelaySec == 0 {
		merged.FetchDelaySec = defaults.FetchDelaySec
	}
	if merged.FetchTimeout == 0 {
		merged.FetchTimeout = defaults.FetchTimeout
	}
	if merged.CountrySuffix == "" {
		merged.CountrySuffix = defaults.CountrySuffix
	}
	if merged.UserAgent == "" {
		merged.UserAgent = defaults.UserAgent
	}
	if merged.FrontendURL == "" {
		merged.FrontendURL = defaults.FrontendURL
	}
	return merged
}

// Cooldown returns the revisit cooldown as a duration.
func (c *Config) Cooldown() time.Duration {
	return time.Duration(c.CooldownDays) * 24 * time.Hour
}

// FetchDelay returns the politeness delay between fetches.
func (c *Config) FetchDelay() time.Duration {
	return time.Duration(c.FetchDelaySec) * time.Second
}

// FetchTimeoutDuration returns the per-request fetch timeout.
func (c *Config) FetchTimeoutDuration() time.Duration {
	return time.Duration(c.FetchTimeout) * time.Second
}

func getEnvInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
