package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "FRONTEND_URL", "DB_PATH", "PROFILE_API_URL", "CONTENT_API_URL",
		"AGENT_WS_URL", "CLARITY_USER_ID", "AUDIO_DIR", "STREAM_READ_LIMIT", "SYNC_INTERVAL",
	} {
		t.Setenv(key, "")
	}
	// t.Setenv with "" still marks the key as present; restore defaults explicitly.
	t.Setenv("PORT", "8787")
	t.Setenv("DB_PATH", "./data/clarity.db")
	t.Setenv("STREAM_READ_LIMIT", "16777216")
	t.Setenv("SYNC_INTERVAL", "5m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Port != "8787" {
		t.Errorf("Port = %q, want 8787", cfg.Port)
	}
	if cfg.SyncInterval != 5*time.Minute {
		t.Errorf("SyncInterval = %v, want 5m", cfg.SyncInterval)
	}
	if cfg.AgentWSURL != "" {
		t.Errorf("AgentWSURL = %q, want empty when content URL is unset", cfg.AgentWSURL)
	}
	if cfg.RemoteConfigured() {
		t.Error("RemoteConfigured() = true, want false")
	}
	if !cfg.IsDevelopment() {
		t.Error("IsDevelopment() = false with empty FRONTEND_URL")
	}
}

func TestLoadDerivesWebSocketURL(t *testing.T) {
	t.Setenv("CONTENT_API_URL", "https://agent.example.com/")
	t.Setenv("AGENT_WS_URL", "")
	t.Setenv("PROFILE_API_URL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ContentAPIURL != "https://agent.example.com" {
		t.Errorf("ContentAPIURL = %q, want trailing slash trimmed", cfg.ContentAPIURL)
	}
	if cfg.AgentWSURL != "wss://agent.example.com" {
		t.Errorf("AgentWSURL = %q, want wss://agent.example.com", cfg.AgentWSURL)
	}
}

func TestDeriveWebSocketURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"http://localhost:8000", "ws://localhost:8000"},
		{"https://agent.example.com", "wss://agent.example.com"},
		{"", ""},
		{"ws://already", "ws://already"},
	}
	for _, tt := range tests {
		if got := DeriveWebSocketURL(tt.in); got != tt.want {
			t.Errorf("DeriveWebSocketURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	valid := Config{Port: "8787", DBPath: "x.db", StreamReadLimit: 1}
	if err := valid.Validate(); err != nil {
		t.Fatalf("Validate() on valid config: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"empty port", func(c *Config) { c.Port = "" }},
		{"empty db path", func(c *Config) { c.DBPath = "" }},
		{"zero read limit", func(c *Config) { c.StreamReadLimit = 0 }},
		{"negative interval", func(c *Config) { c.SyncInterval = -time.Second }},
		{"relative profile url", func(c *Config) { c.ProfileAPIURL = "/api" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			if err := c.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}
