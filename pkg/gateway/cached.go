package gateway

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/augustcaio/portfolio-gateway/pkg/cache"
	"github.com/augustcaio/portfolio-gateway/pkg/logging"
	"github.com/augustcaio/portfolio-gateway/pkg/types"
)

// Snapshot keys
const (
	KeyProfile = "profile"
	KeyStats   = "stats"
)

// KeyProjects returns the snapshot key of a repository listing
func KeyProjects(limit int) string {
	return fmt.Sprintf("projects:%d", limit)
}

// Cached serves fresh snapshots and stores new results. Degraded results
// are never stored, so the next read goes upstream again.
type Cached struct {
	next   Reader
	cache  *cache.Cache
	logger *slog.Logger
}

// NewCached wraps next with c. A nil cache disables snapshots.
func NewCached(next Reader, c *cache.Cache, logger *slog.Logger) *Cached {
	if c == nil {
		c = cache.NewDisabled()
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Cached{next: next, cache: c, logger: logger}
}

// Cache returns the snapshot cache
func (c *Cached) Cache() *cache.Cache {
	return c.cache
}

// Limit normalizes limit the way the wrapped reader does
func (c *Cached) Limit(limit int) int {
	if l, ok := c.next.(interface{ Limit(int) int }); ok {
		return l.Limit(limit)
	}
	return limit
}

func (c *Cached) GetProfile(ctx context.Context) Result[types.UserProfile] {
	return load(c, KeyProfile, func() Result[types.UserProfile] {
		return c.next.GetProfile(ctx)
	})
}

func (c *Cached) GetRepositories(ctx context.Context, limit int) Result[[]types.Repository] {
	limit = c.Limit(limit)
	return load(c, KeyProjects(limit), func() Result[[]types.Repository] {
		return c.next.GetRepositories(ctx, limit)
	})
}

func (c *Cached) GetAggregateStats(ctx context.Context) Result[types.AggregateStats] {
	return load(c, KeyStats, func() Result[types.AggregateStats] {
		return c.next.GetAggregateStats(ctx)
	})
}

// RefreshProfile drops the profile snapshot and reads it again
func (c *Cached) RefreshProfile(ctx context.Context) Result[types.UserProfile] {
	c.invalidate(KeyProfile)
	return c.GetProfile(ctx)
}

// RefreshRepositories drops the listing snapshot for limit and reads it again
func (c *Cached) RefreshRepositories(ctx context.Context, limit int) Result[[]types.Repository] {
	c.invalidate(KeyProjects(c.Limit(limit)))
	return c.GetRepositories(ctx, limit)
}

// RefreshStats drops the stats snapshot and reads it again
func (c *Cached) RefreshStats(ctx context.Context) Result[types.AggregateStats] {
	c.invalidate(KeyStats)
	return c.GetAggregateStats(ctx)
}

func (c *Cached) invalidate(key string) {
	if err := c.cache.Invalidate(key); err != nil {
		c.logger.Warn("failed to invalidate snapshot", "key", key, "err", err)
	}
}

func load[T any](c *Cached, key string, fetch func() Result[T]) Result[T] {
	var data T
	if entry, hit := c.cache.Load(key, &data); hit {
		fetchedAt := entry.FetchedAt
		return Result[T]{
			Data:     data,
			Outcome:  entry.Outcome,
			Source:   entry.Source,
			CachedAt: &fetchedAt,
		}
	}

	res := fetch()
	if res.Outcome.Degraded() {
		return res
	}
	if err := c.cache.Store(key, res.Data, res.Outcome, res.Source); err != nil {
		c.logger.Warn("failed to store snapshot", "key", key, "err", err)
	}
	return res
}
