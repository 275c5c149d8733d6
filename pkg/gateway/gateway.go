// Package gateway serves the portfolio's GitHub data with a guaranteed
// answer: every read walks its upstream sources in priority order and ends
// on the static fallback dataset, so callers never see an error.
package gateway

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/augustcaio/portfolio-gateway/pkg/enrich"
	"github.com/augustcaio/portfolio-gateway/pkg/fallback"
	"github.com/augustcaio/portfolio-gateway/pkg/github"
	"github.com/augustcaio/portfolio-gateway/pkg/logging"
	"github.com/augustcaio/portfolio-gateway/pkg/metrics"
	"github.com/augustcaio/portfolio-gateway/pkg/providers"
	"github.com/augustcaio/portfolio-gateway/pkg/types"
)

const (
	OpProfile      = "profile"
	OpRepositories = "repositories"
	OpStats        = "stats"

	// SourceFallback names the static dataset in results and metrics
	SourceFallback = "fallback"
	sourceUsers    = "github-user"
	sourceLangs    = "github-languages"
)

// Default limits and timeouts
const (
	DefaultLimit         = 6
	DefaultMaxLimit      = 10
	DefaultStatsPageSize = 100

	DefaultProfileTimeout    = 5 * time.Second
	DefaultAggregatorTimeout = 8 * time.Second
	DefaultListingTimeout    = 5 * time.Second
	DefaultLanguagesTimeout  = 2 * time.Second
	DefaultStatsTimeout      = 5 * time.Second
)

// Result is the answer to one gateway read
type Result[T any] struct {
	Data     T             `json:"data"`
	Outcome  types.Outcome `json:"outcome"`
	Source   string        `json:"source"`
	CachedAt *time.Time    `json:"cached_at,omitempty"`
}

// Reader is implemented by Gateway and Cached
type Reader interface {
	GetProfile(ctx context.Context) Result[types.UserProfile]
	GetRepositories(ctx context.Context, limit int) Result[[]types.Repository]
	GetAggregateStats(ctx context.Context) Result[types.AggregateStats]
}

// UserSource fetches a public profile
type UserSource interface {
	GetUser(ctx context.Context, login string) (*github.UserInfo, error)
}

// LanguageSource fetches a repository's language breakdown
type LanguageSource interface {
	GetLanguages(ctx context.Context, owner, repo string) (map[string]int, error)
}

// Sources are the upstreams the gateway reads from. Any of them may be nil;
// a nil source behaves like one that always fails.
type Sources struct {
	Users        UserSource
	Repositories *providers.MultiProvider
	Languages    LanguageSource
	// Stats lists repositories for the aggregate sums
	Stats providers.RepositorySource
}

// Timeouts bounds each upstream call individually
type Timeouts struct {
	Profile    time.Duration
	Aggregator time.Duration
	Listing    time.Duration
	Languages  time.Duration
	Stats      time.Duration
}

// forSource returns the listing timeout of the named repository source
func (t Timeouts) forSource(name string) time.Duration {
	if name == providers.SourceAggregator {
		return t.Aggregator
	}
	return t.Listing
}

// Options configures a Gateway
type Options struct {
	Login         string
	Timeouts      Timeouts
	DefaultLimit  int
	MaxLimit      int
	StatsPageSize int
	// Enrich fills missing language breakdowns; nil leaves them empty
	Enrich   enrich.Func
	Fallback *fallback.Dataset
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
	Now      func() time.Time
}

// DefaultOptions returns the production defaults for login
func DefaultOptions(login string) Options {
	return Options{
		Login: login,
		Timeouts: Timeouts{
			Profile:    DefaultProfileTimeout,
			Aggregator: DefaultAggregatorTimeout,
			Listing:    DefaultListingTimeout,
			Languages:  DefaultLanguagesTimeout,
			Stats:      DefaultStatsTimeout,
		},
		DefaultLimit:  DefaultLimit,
		MaxLimit:      DefaultMaxLimit,
		StatsPageSize: DefaultStatsPageSize,
		Enrich:        enrich.Synthetic,
		Fallback:      fallback.Default(),
	}
}

// Gateway answers profile, repository and stats reads
type Gateway struct {
	sources Sources
	opts    Options
	logger  *slog.Logger
}

// New creates a gateway. Zero-valued options take their defaults, except
// Enrich.
func New(sources Sources, opts Options) *Gateway {
	def := DefaultOptions(opts.Login)

	t := &opts.Timeouts
	if t.Profile <= 0 {
		t.Profile = def.Timeouts.Profile
	}
	if t.Aggregator <= 0 {
		t.Aggregator = def.Timeouts.Aggregator
	}
	if t.Listing <= 0 {
		t.Listing = def.Timeouts.Listing
	}
	if t.Languages <= 0 {
		t.Languages = def.Timeouts.Languages
	}
	if t.Stats <= 0 {
		t.Stats = def.Timeouts.Stats
	}
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = def.DefaultLimit
	}
	if opts.MaxLimit <= 0 {
		opts.MaxLimit = def.MaxLimit
	}
	if opts.DefaultLimit > opts.MaxLimit {
		opts.DefaultLimit = opts.MaxLimit
	}
	if opts.StatsPageSize <= 0 {
		opts.StatsPageSize = def.StatsPageSize
	}
	if opts.Fallback == nil {
		opts.Fallback = def.Fallback
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	return &Gateway{
		sources: sources,
		opts:    opts,
		logger:  logger.With("login", opts.Login),
	}
}

// Limit normalizes a requested repository count
func (g *Gateway) Limit(limit int) int {
	if limit <= 0 {
		return g.opts.DefaultLimit
	}
	if limit > g.opts.MaxLimit {
		return g.opts.MaxLimit
	}
	return limit
}

// GetProfile returns the owner's profile. Fields the API omits keep their
// fallback value.
func (g *Gateway) GetProfile(ctx context.Context) Result[types.UserProfile] {
	base := g.opts.Fallback.UserProfile()

	user, err := g.fetchUser(ctx, OpProfile, g.opts.Timeouts.Profile)
	if err != nil {
		return finish(g, OpProfile, Result[types.UserProfile]{
			Data:    base,
			Outcome: types.OutcomeFallback,
			Source:  SourceFallback,
		})
	}

	return finish(g, OpProfile, Result[types.UserProfile]{
		Data:    overlay(base, user),
		Outcome: types.OutcomePrimary,
		Source:  providers.SourceGitHub,
	})
}

// GetRepositories returns up to limit repositories from the first source
// with a non-empty listing, with language breakdowns filled in.
func (g *Gateway) GetRepositories(ctx context.Context, limit int) Result[[]types.Repository] {
	limit = g.Limit(limit)

	for _, src := range g.sources.Repositories.Sources() {
		name := src.Name()
		timeout := g.opts.Timeouts.forSource(name)

		start := time.Now()
		repos, err := call(ctx, timeout, func(ctx context.Context) ([]types.Repository, error) {
			return src.ListRepositories(ctx, g.opts.Login, limit)
		})
		if err == nil && len(repos) == 0 {
			err = errEmptyListing
		}
		g.observe(OpRepositories, name, start, err)
		if err != nil {
			continue
		}

		if len(repos) > limit {
			repos = repos[:limit]
		}
		repos = types.CloneRepositories(repos)
		for i := range repos {
			repos[i].Normalize()
		}
		g.enrichLanguages(ctx, repos)

		return finish(g, OpRepositories, Result[[]types.Repository]{
			Data:    repos,
			Outcome: src.Outcome(),
			Source:  name,
		})
	}

	repos := g.opts.Fallback.RepositoryList(limit)
	for i := range repos {
		enrich.Apply(&repos[i], g.opts.Enrich)
	}
	return finish(g, OpRepositories, Result[[]types.Repository]{
		Data:    repos,
		Outcome: types.OutcomeFallback,
		Source:  SourceFallback,
	})
}

// GetAggregateStats returns follower, repository, star and fork totals.
// The follower lookup and the repository listing run concurrently and fall
// back independently.
func (g *Gateway) GetAggregateStats(ctx context.Context) Result[types.AggregateStats] {
	stats := g.opts.Fallback.AggregateStats(g.opts.Now())

	var (
		followers     int
		followersOK   bool
		count, st, fk int
		listingOK     bool
		eg            errgroup.Group
		timeout       = g.opts.Timeouts.Stats
		listing       = g.sources.Stats
	)

	eg.Go(func() error {
		user, err := g.fetchUser(ctx, OpStats, timeout)
		if err == nil && user.Followers != nil {
			followers, followersOK = *user.Followers, true
		}
		return nil
	})

	eg.Go(func() error {
		if listing == nil {
			g.observe(OpStats, providers.SourceGitHub, time.Now(), errNoSource)
			return nil
		}
		start := time.Now()
		repos, err := call(ctx, timeout, func(ctx context.Context) ([]types.Repository, error) {
			return listing.ListRepositories(ctx, g.opts.Login, g.opts.StatsPageSize)
		})
		g.observe(OpStats, listing.Name(), start, err)
		if err == nil {
			count, st, fk = types.Sum(repos)
			listingOK = true
		}
		return nil
	})

	_ = eg.Wait()

	if followersOK {
		stats.Followers = followers
	}
	if listingOK {
		stats.PublicRepos, stats.TotalStars, stats.TotalForks = count, st, fk
	}

	res := Result[types.AggregateStats]{Data: stats}
	switch {
	case followersOK && listingOK:
		res.Outcome, res.Source = types.OutcomePrimary, providers.SourceGitHub
	case followersOK || listingOK:
		res.Outcome, res.Source = types.OutcomePartial, providers.SourceGitHub
	default:
		res.Outcome, res.Source = types.OutcomeFallback, SourceFallback
	}
	return finish(g, OpStats, res)
}

var (
	errEmptyListing = errors.New("source returned no repositories")
	errNoSource     = errors.New("source not configured")
)

func (g *Gateway) fetchUser(ctx context.Context, op string, timeout time.Duration) (*github.UserInfo, error) {
	start := time.Now()
	if g.sources.Users == nil {
		g.observe(op, sourceUsers, start, errNoSource)
		return nil, errNoSource
	}

	user, err := call(ctx, timeout, func(ctx context.Context) (*github.UserInfo, error) {
		return g.sources.Users.GetUser(ctx, g.opts.Login)
	})
	if err == nil && user == nil {
		err = errors.New("empty user response")
	}
	g.observe(op, sourceUsers, start, err)
	return user, err
}

// enrichLanguages fetches the breakdown of every repository concurrently.
// Each goroutine writes only its own element, so the order is preserved.
func (g *Gateway) enrichLanguages(ctx context.Context, repos []types.Repository) {
	if g.sources.Languages == nil {
		for i := range repos {
			enrich.Apply(&repos[i], g.opts.Enrich)
		}
		return
	}

	var eg errgroup.Group
	for i := range repos {
		eg.Go(func() error {
			r := &repos[i]
			start := time.Now()
			langs, err := call(ctx, g.opts.Timeouts.Languages, func(ctx context.Context) (map[string]int, error) {
				return g.sources.Languages.GetLanguages(ctx, g.opts.Login, r.Name)
			})
			g.metrics().ObserveUpstream(sourceLangs, time.Since(start), err)

			if err == nil && len(langs) > 0 {
				r.Languages = langs
				r.LanguagesSynthetic = false
				return nil
			}
			if err != nil {
				g.logger.Debug("language lookup failed", "op", OpRepositories, "repo", r.Name, "err", err)
			}
			r.Languages = map[string]int{}
			enrich.Apply(r, g.opts.Enrich)
			return nil
		})
	}
	_ = eg.Wait()
}

func (g *Gateway) observe(op, source string, start time.Time, err error) {
	d := time.Since(start)
	g.metrics().ObserveUpstream(source, d, err)
	if err != nil {
		g.logger.Warn("upstream source failed",
			"op", op,
			"source", source,
			"err", err,
			"duration_ms", d.Milliseconds(),
		)
	}
}

func (g *Gateway) metrics() *metrics.Metrics {
	return g.opts.Metrics
}

// finish records and logs the outcome of one read
func finish[T any](g *Gateway, op string, res Result[T]) Result[T] {
	g.metrics().ObserveOutcome(op, res.Outcome.String())

	level := slog.LevelDebug
	if res.Outcome.Degraded() {
		level = slog.LevelInfo
	}
	g.logger.Log(context.Background(), level, "request served",
		"op", op,
		"outcome", res.Outcome,
		"source", res.Source,
	)
	return res
}
