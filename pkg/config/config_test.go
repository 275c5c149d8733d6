package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"GITHUB_TOKEN", "GITHUB_LOGIN", "AGGREGATOR_URL", "PORT", "ENV", "LOG_LEVEL",
		"RESEND_API_KEY", "CONTACT_EMAIL", "CACHE_BACKEND", "MEMCACHE_ADDR",
	} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultsAreValid(t *testing.T) {
	if err := Defaults().Validate(); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
}

func TestLoadWithoutFile(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error: %v", err)
	}
	if cfg.GitHub.Login != DefaultLogin || cfg.Projects.DefaultLimit != 6 || cfg.Projects.MaxLimit != 10 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.Timeouts.Aggregator != 8*time.Second || cfg.Timeouts.Profile != 5*time.Second {
		t.Errorf("unexpected timeouts: %+v", cfg.Timeouts)
	}
	if cfg.Cache.Freshness != 5*time.Minute || cfg.Cache.Backend != BackendFile {
		t.Errorf("unexpected cache config: %+v", cfg.Cache)
	}
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)

	path := writeConfig(t, `
env: prod
github:
  login: octocat
timeouts:
  profile: 3s
  languages: 750ms
projects:
  default_limit: 4
cache:
  backend: none
  warm_schedule: "@every 4m"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Env != EnvProd || cfg.GitHub.Login != "octocat" {
		t.Errorf("file values not applied: env=%q login=%q", cfg.Env, cfg.GitHub.Login)
	}
	if cfg.Timeouts.Profile != 3*time.Second || cfg.Timeouts.Languages != 750*time.Millisecond {
		t.Errorf("durations not decoded: %+v", cfg.Timeouts)
	}
	// Unset keys keep their defaults
	if cfg.Timeouts.Aggregator != 8*time.Second || cfg.Projects.MaxLimit != 10 {
		t.Errorf("defaults lost: %+v %+v", cfg.Timeouts, cfg.Projects)
	}
	if cfg.Projects.DefaultLimit != 4 || cfg.Cache.WarmSchedule != "@every 4m" {
		t.Errorf("unexpected values: %+v %+v", cfg.Projects, cfg.Cache)
	}
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadMalformedFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "github: [unclosed")
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "parsing config") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "github:\n  login: from-file\n")

	t.Setenv("GITHUB_TOKEN", "ghp_test")
	t.Setenv("GITHUB_LOGIN", "from-env")
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "PROD")
	t.Setenv("RESEND_API_KEY", "re_test")
	t.Setenv("CONTACT_EMAIL", "me@example.com")
	t.Setenv("CACHE_BACKEND", "memcache")
	t.Setenv("MEMCACHE_ADDR", "cache:11211")
	t.Setenv("AGGREGATOR_URL", "http://agg.local")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.GitHub.Token != "ghp_test" || cfg.GitHub.Login != "from-env" {
		t.Errorf("github overrides: %+v", cfg.GitHub)
	}
	if cfg.Server.Addr() != ":9090" || cfg.Env != EnvProd {
		t.Errorf("server/env overrides: addr=%q env=%q", cfg.Server.Addr(), cfg.Env)
	}
	if cfg.Mail.APIKey != "re_test" || cfg.Mail.To != "me@example.com" {
		t.Errorf("mail overrides: %+v", cfg.Mail)
	}
	if cfg.Cache.Backend != BackendMemcache || cfg.Cache.Memcache.Addr != "cache:11211" {
		t.Errorf("cache overrides: %+v", cfg.Cache)
	}
	if cfg.GitHub.AggregatorURL != "http://agg.local" {
		t.Errorf("aggregator override: %q", cfg.GitHub.AggregatorURL)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty login", func(c *Config) { c.GitHub.Login = "" }},
		{"unknown env", func(c *Config) { c.Env = "staging" }},
		{"zero profile timeout", func(c *Config) { c.Timeouts.Profile = 0 }},
		{"negative languages timeout", func(c *Config) { c.Timeouts.Languages = -time.Second }},
		{"default above max", func(c *Config) { c.Projects.DefaultLimit = 11 }},
		{"zero max limit", func(c *Config) { c.Projects.MaxLimit = 0 }},
		{"unknown backend", func(c *Config) { c.Cache.Backend = "redis" }},
		{"memcache without addr", func(c *Config) { c.Cache.Backend = BackendMemcache; c.Cache.Memcache.Addr = "" }},
		{"zero freshness", func(c *Config) { c.Cache.Freshness = 0 }},
		{"bad schedule", func(c *Config) { c.Cache.WarmSchedule = "whenever" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestSaveOmitsSecrets(t *testing.T) {
	cfg := Defaults()
	cfg.GitHub.Token = "ghp_secret"
	cfg.Mail.APIKey = "re_secret"

	path := filepath.Join(t.TempDir(), "out.yml")
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read saved config: %v", err)
	}
	if strings.Contains(string(data), "secret") {
		t.Errorf("saved config leaks secrets:\n%s", data)
	}

	clearEnv(t)
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load(saved) error: %v", err)
	}
	if loaded.Timeouts != cfg.Timeouts || loaded.Cache.Freshness != cfg.Cache.Freshness {
		t.Errorf("round trip lost durations: %+v", loaded.Timeouts)
	}
}

func TestServerAddr(t *testing.T) {
	tests := []struct {
		port, want string
	}{
		{"", ":8080"},
		{"3000", ":3000"},
		{":4000", ":4000"},
	}
	for _, tt := range tests {
		if got := (ServerConfig{Port: tt.port}).Addr(); got != tt.want {
			t.Errorf("Addr(%q) = %q, want %q", tt.port, got, tt.want)
		}
	}
}
