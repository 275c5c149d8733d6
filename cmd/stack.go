package cmd

import (
	"fmt"
	"log/slog"

	"github.com/augustcaio/portfolio-gateway/pkg/cache"
	"github.com/augustcaio/portfolio-gateway/pkg/config"
	"github.com/augustcaio/portfolio-gateway/pkg/enrich"
	"github.com/augustcaio/portfolio-gateway/pkg/fallback"
	"github.com/augustcaio/portfolio-gateway/pkg/gateway"
	ghclient "github.com/augustcaio/portfolio-gateway/pkg/github"
	"github.com/augustcaio/portfolio-gateway/pkg/metrics"
	"github.com/augustcaio/portfolio-gateway/pkg/providers"
	"github.com/augustcaio/portfolio-gateway/pkg/version"
)

// newClient creates the GitHub client from the config
func newClient(cfg *config.Config) (*ghclient.Client, error) {
	client, err := ghclient.NewClient(cfg.GitHub.Token,
		ghclient.WithBaseURL(cfg.GitHub.BaseURL),
		ghclient.WithUserAgent(version.UserAgent()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub client: %w", err)
	}
	return client, nil
}

// newGateway builds the upstream sources over client and the gateway over them
func newGateway(cfg *config.Config, client *ghclient.Client, logger *slog.Logger, m *metrics.Metrics) (*gateway.Gateway, error) {
	dataset, err := fallback.Load(cfg.Fallback.Path)
	if err != nil {
		return nil, err
	}

	listing := providers.NewGitHubProvider(client)
	sources := gateway.Sources{
		Users: client,
		Repositories: providers.NewMultiProvider(
			providers.NewAggregatorProvider(cfg.GitHub.AggregatorURL),
			listing,
		),
		Languages: client,
		Stats:     listing,
	}

	opts := gateway.Options{
		Login: cfg.GitHub.Login,
		Timeouts: gateway.Timeouts{
			Profile:    cfg.Timeouts.Profile,
			Aggregator: cfg.Timeouts.Aggregator,
			Listing:    cfg.Timeouts.Listing,
			Languages:  cfg.Timeouts.Languages,
			Stats:      cfg.Timeouts.Stats,
		},
		DefaultLimit: cfg.Projects.DefaultLimit,
		MaxLimit:     cfg.Projects.MaxLimit,
		Fallback:     dataset,
		Logger:       logger,
		Metrics:      m,
	}
	if cfg.Enrichment.Synthetic {
		opts.Enrich = enrich.Synthetic
	}

	logger.Debug("gateway sources", "repositories", sources.Repositories.Names(), "authenticated", client.Authenticated())
	return gateway.New(sources, opts), nil
}

// newCache opens the configured snapshot backend
func newCache(cfg *config.Config, logger *slog.Logger) (*cache.Cache, error) {
	switch cfg.Cache.Backend {
	case config.BackendNone:
		return cache.NewDisabled(), nil

	case config.BackendMemcache:
		addrs := cache.ParseAddrs(cfg.Cache.Memcache.Addr)
		backend := cache.NewMemcacheBackend(cfg.Cache.Memcache.Timeout, addrs...)
		if err := backend.Ping(); err != nil {
			// Unreachable memcached degrades to upstream reads
			logger.Warn("memcached unreachable", "addrs", addrs, "err", err)
		}
		return cache.New(backend, cfg.Cache.Freshness), nil

	default:
		backend, err := cache.NewFileBackend(cfg.Cache.Dir)
		if err != nil {
			return nil, fmt.Errorf("failed to open cache directory: %w", err)
		}
		c := cache.New(backend, cfg.Cache.Freshness)
		if err := c.CleanExpired(); err != nil {
			logger.Warn("failed to clean expired snapshots", "dir", backend.Dir(), "err", err)
		}
		return c, nil
	}
}

// newReader returns the cached gateway. useCache false bypasses snapshots.
func newReader(cfg *config.Config, client *ghclient.Client, logger *slog.Logger, m *metrics.Metrics, useCache bool) (*gateway.Cached, error) {
	g, err := newGateway(cfg, client, logger, m)
	if err != nil {
		return nil, err
	}

	c := cache.NewDisabled()
	if useCache {
		if c, err = newCache(cfg, logger); err != nil {
			return nil, err
		}
	}
	return gateway.NewCached(g, c, logger), nil
}
