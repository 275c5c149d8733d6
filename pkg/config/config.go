package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/augustcaio/portfolio-gateway/pkg/warmer"
)

// Config is the full service configuration
type Config struct {
	Env        string           `yaml:"env"`
	LogLevel   string           `yaml:"log_level"`
	GitHub     GitHubConfig     `yaml:"github"`
	Server     ServerConfig     `yaml:"server"`
	Timeouts   TimeoutConfig    `yaml:"timeouts"`
	Projects   ProjectsConfig   `yaml:"projects"`
	Enrichment EnrichmentConfig `yaml:"enrichment"`
	Fallback   FallbackConfig   `yaml:"fallback"`
	Cache      CacheConfig      `yaml:"cache"`
	Mail       MailConfig       `yaml:"mail"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

type GitHubConfig struct {
	Login         string `yaml:"login"`
	Token         string `yaml:"-"`
	BaseURL       string `yaml:"base_url,omitempty"`
	AggregatorURL string `yaml:"aggregator_url,omitempty"`
}

type ServerConfig struct {
	Port         string        `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
}

// Addr returns the listen address for http.Server
func (s ServerConfig) Addr() string {
	if s.Port == "" {
		return ":" + DefaultPort
	}
	if s.Port[0] == ':' {
		return s.Port
	}
	return ":" + s.Port
}

type TimeoutConfig struct {
	Profile    time.Duration `yaml:"profile"`
	Aggregator time.Duration `yaml:"aggregator"`
	Listing    time.Duration `yaml:"listing"`
	Languages  time.Duration `yaml:"languages"`
	Stats      time.Duration `yaml:"stats"`
}

type ProjectsConfig struct {
	DefaultLimit int `yaml:"default_limit"`
	MaxLimit     int `yaml:"max_limit"`
}

type EnrichmentConfig struct {
	Synthetic bool `yaml:"synthetic"`
}

type FallbackConfig struct {
	// Path replaces the embedded dataset when set
	Path string `yaml:"path,omitempty"`
}

type CacheConfig struct {
	Backend      string         `yaml:"backend"`
	Freshness    time.Duration  `yaml:"freshness"`
	Dir          string         `yaml:"dir,omitempty"`
	WarmSchedule string         `yaml:"warm_schedule,omitempty"`
	Memcache     MemcacheConfig `yaml:"memcache"`
}

type MemcacheConfig struct {
	Addr    string        `yaml:"addr"`
	Timeout time.Duration `yaml:"timeout"`
}

type MailConfig struct {
	APIKey string `yaml:"-"`
	From   string `yaml:"from"`
	To     string `yaml:"to"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Load reads the YAML file at path over Defaults and applies environment
// overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// ApplyEnv overrides file values with the process environment
func (c *Config) ApplyEnv() {
	setFromEnv(&c.GitHub.Token, "GITHUB_TOKEN")
	setFromEnv(&c.GitHub.Login, "GITHUB_LOGIN")
	setFromEnv(&c.GitHub.AggregatorURL, "AGGREGATOR_URL")
	setFromEnv(&c.Server.Port, "PORT")
	setFromEnv(&c.Env, "ENV")
	setFromEnv(&c.LogLevel, "LOG_LEVEL")
	setFromEnv(&c.Mail.APIKey, "RESEND_API_KEY")
	setFromEnv(&c.Mail.To, "CONTACT_EMAIL")
	setFromEnv(&c.Cache.Backend, "CACHE_BACKEND")
	setFromEnv(&c.Cache.Memcache.Addr, "MEMCACHE_ADDR")

	c.Env = strings.ToLower(c.Env)
	c.Cache.Backend = strings.ToLower(c.Cache.Backend)
}

// Validate checks that all required fields are present and values are in range.
func (c *Config) Validate() error {
	if c.GitHub.Login == "" {
		return errors.New("github.login is required")
	}

	switch c.Env {
	case EnvDev, EnvProd:
		// ok
	default:
		return fmt.Errorf("env must be %q or %q", EnvDev, EnvProd)
	}

	timeouts := []struct {
		name string
		d    time.Duration
	}{
		{"timeouts.profile", c.Timeouts.Profile},
		{"timeouts.aggregator", c.Timeouts.Aggregator},
		{"timeouts.listing", c.Timeouts.Listing},
		{"timeouts.languages", c.Timeouts.Languages},
		{"timeouts.stats", c.Timeouts.Stats},
	}
	for _, t := range timeouts {
		if t.d <= 0 {
			return fmt.Errorf("%s must be positive", t.name)
		}
	}

	if c.Projects.MaxLimit < 1 {
		return errors.New("projects.max_limit must be >= 1")
	}
	if c.Projects.DefaultLimit < 1 || c.Projects.DefaultLimit > c.Projects.MaxLimit {
		return fmt.Errorf("projects.default_limit must be between 1 and %d", c.Projects.MaxLimit)
	}

	switch c.Cache.Backend {
	case BackendFile, BackendNone:
		// ok
	case BackendMemcache:
		if c.Cache.Memcache.Addr == "" {
			return errors.New("cache.memcache.addr is required for the memcache backend")
		}
	default:
		return fmt.Errorf("cache.backend must be %q, %q, or %q", BackendFile, BackendMemcache, BackendNone)
	}
	if c.Cache.Backend != BackendNone && c.Cache.Freshness <= 0 {
		return errors.New("cache.freshness must be positive")
	}
	if err := warmer.ValidateSchedule(c.Cache.WarmSchedule); err != nil {
		return fmt.Errorf("cache.warm_schedule: %w", err)
	}

	return nil
}

// Save writes the config to path. Secrets are never written.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

func setFromEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
