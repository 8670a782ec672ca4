// Package config provides application configuration.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Port        string
	FrontendURL string
	DBPath      string

	// ProfileAPIURL is the base URL of the profile/preferences service.
	ProfileAPIURL string
	// ContentAPIURL is the base URL of the content (agent) service.
	ContentAPIURL string
	// AgentWSURL is the streaming endpoint base. Derived from ContentAPIURL when unset.
	AgentWSURL string

	UserID          string
	AudioDir        string
	StreamReadLimit int64
	SyncInterval    time.Duration
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:            getEnv("PORT", "8787"),
		FrontendURL:     getEnv("FRONTEND_URL", ""),
		DBPath:          getEnv("DB_PATH", "./data/clarity.db"),
		ProfileAPIURL:   strings.TrimSuffix(getEnv("PROFILE_API_URL", ""), "/"),
		ContentAPIURL:   strings.TrimSuffix(getEnv("CONTENT_API_URL", ""), "/"),
		AgentWSURL:      strings.TrimSuffix(getEnv("AGENT_WS_URL", ""), "/"),
		UserID:          strings.TrimSpace(getEnv("CLARITY_USER_ID", "")),
		AudioDir:        getEnv("AUDIO_DIR", ""),
		StreamReadLimit: int64(getEnvInt("STREAM_READ_LIMIT", 16<<20)),
		SyncInterval:    getEnvDuration("SYNC_INTERVAL", 5*time.Minute),
	}

	if cfg.AgentWSURL == "" {
		cfg.AgentWSURL = DeriveWebSocketURL(cfg.ContentAPIURL)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if c.StreamReadLimit <= 0 {
		return fmt.Errorf("STREAM_READ_LIMIT must be > 0")
	}
	if c.SyncInterval < 0 {
		return fmt.Errorf("SYNC_INTERVAL cannot be negative")
	}
	for name, raw := range map[string]string{
		"PROFILE_API_URL": c.ProfileAPIURL,
		"CONTENT_API_URL": c.ContentAPIURL,
		"AGENT_WS_URL":    c.AgentWSURL,
	} {
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%s must be an absolute URL, got %q", name, raw)
		}
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.FrontendURL == "" ||
		strings.Contains(c.FrontendURL, "localhost") ||
		strings.Contains(c.FrontendURL, "127.0.0.1")
}

// RemoteConfigured reports whether any request/response backend is set.
func (c *Config) RemoteConfigured() bool {
	return c.ProfileAPIURL != "" || c.ContentAPIURL != ""
}

// DeriveWebSocketURL maps an http(s) base URL onto its ws(s) counterpart.
// Anything that does not start with "http" is returned unchanged.
func DeriveWebSocketURL(httpURL string) string {
	if strings.HasPrefix(httpURL, "http") {
		return "ws" + strings.TrimPrefix(httpURL, "http")
	}
	return httpURL
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return d
}
