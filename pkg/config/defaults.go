package config

import "time"

const (
	DefaultLogin      = "augustcaio"
	DefaultPort       = "8080"
	DefaultEnv        = "dev"
	DefaultLogLevel   = "info"
	DefaultMailFrom   = "Portfolio <onboarding@resend.dev>"
	DefaultMemcache   = "127.0.0.1:11211"
	DefaultFreshness  = 5 * time.Minute
	DefaultCacheStore = BackendFile
)

// Cache backends
const (
	BackendFile     = "file"
	BackendMemcache = "memcache"
	BackendNone     = "none"
)

// Environments
const (
	EnvDev  = "dev"
	EnvProd = "prod"
)

// Defaults returns the configuration used when no file is given.
func Defaults() *Config {
	return &Config{
		Env:      DefaultEnv,
		LogLevel: DefaultLogLevel,
		GitHub: GitHubConfig{
			Login: DefaultLogin,
		},
		Server: ServerConfig{
			Port:         DefaultPort,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Timeouts: TimeoutConfig{
			Profile:    5 * time.Second,
			Aggregator: 8 * time.Second,
			Listing:    5 * time.Second,
			Languages:  2 * time.Second,
			Stats:      5 * time.Second,
		},
		Projects: ProjectsConfig{
			DefaultLimit: 6,
			MaxLimit:     10,
		},
		Enrichment: EnrichmentConfig{
			Synthetic: true,
		},
		Cache: CacheConfig{
			Backend:   DefaultCacheStore,
			Freshness: DefaultFreshness,
			Memcache: MemcacheConfig{
				Timeout: 200 * time.Millisecond,
			},
		},
		Mail: MailConfig{
			From: DefaultMailFrom,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}
