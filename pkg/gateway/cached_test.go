package gateway

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/augustcaio/portfolio-gateway/pkg/cache"
	"github.com/augustcaio/portfolio-gateway/pkg/types"
)

// countingReader returns canned results and counts upstream reads
type countingReader struct {
	mu       sync.Mutex
	calls    map[string]int
	outcome  types.Outcome
	lastSeen int
}

func newCountingReader(outcome types.Outcome) *countingReader {
	return &countingReader{calls: map[string]int{}, outcome: outcome}
}

func (r *countingReader) hit(op string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls[op]++
}

func (r *countingReader) count(op string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[op]
}

func (r *countingReader) Limit(limit int) int {
	if limit <= 0 {
		return 6
	}
	return limit
}

func (r *countingReader) GetProfile(ctx context.Context) Result[types.UserProfile] {
	r.hit(OpProfile)
	return Result[types.UserProfile]{
		Data:    types.UserProfile{Login: testLogin, Followers: 7},
		Outcome: r.outcome,
		Source:  "github",
	}
}

func (r *countingReader) GetRepositories(ctx context.Context, limit int) Result[[]types.Repository] {
	r.hit(OpRepositories)
	r.lastSeen = limit
	repos := make([]types.Repository, limit)
	for i := range repos {
		repos[i] = repo(int64(i+1), "r", "Go", i, 0)
	}
	return Result[[]types.Repository]{Data: repos, Outcome: r.outcome, Source: "aggregator"}
}

func (r *countingReader) GetAggregateStats(ctx context.Context) Result[types.AggregateStats] {
	r.hit(OpStats)
	return Result[types.AggregateStats]{
		Data:    types.AggregateStats{Followers: 1, ComputedAt: time.Now().UTC()},
		Outcome: r.outcome,
		Source:  "github",
	}
}

func newSnapshotCache(t *testing.T) *cache.Cache {
	t.Helper()
	backend, err := cache.NewFileBackend(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileBackend() error: %v", err)
	}
	return cache.New(backend, time.Hour)
}

func TestCached_ServesSnapshot(t *testing.T) {
	next := newCountingReader(types.OutcomePrimary)
	c := NewCached(next, newSnapshotCache(t), nil)
	ctx := context.Background()

	first := c.GetProfile(ctx)
	if first.CachedAt != nil {
		t.Error("first read should come from upstream")
	}

	second := c.GetProfile(ctx)
	if second.CachedAt == nil {
		t.Fatal("second read should be served from the snapshot")
	}
	if second.Data != first.Data || second.Outcome != first.Outcome || second.Source != first.Source {
		t.Errorf("snapshot = %+v, want %+v", second, first)
	}
	if next.count(OpProfile) != 1 {
		t.Errorf("upstream reads = %d, want 1", next.count(OpProfile))
	}
}

func TestCached_RepositoriesKeyedByNormalizedLimit(t *testing.T) {
	next := newCountingReader(types.OutcomeSecondary)
	c := NewCached(next, newSnapshotCache(t), nil)
	ctx := context.Background()

	c.GetRepositories(ctx, 0)
	res := c.GetRepositories(ctx, 6)
	if res.CachedAt == nil || len(res.Data) != 6 {
		t.Errorf("limit 0 and 6 should share a snapshot: cached=%v len=%d", res.CachedAt != nil, len(res.Data))
	}

	c.GetRepositories(ctx, 3)
	if next.count(OpRepositories) != 2 || next.lastSeen != 3 {
		t.Errorf("different limits need separate reads: calls=%d last=%d", next.count(OpRepositories), next.lastSeen)
	}
}

func TestCached_DegradedResultsNotStored(t *testing.T) {
	for _, outcome := range []types.Outcome{types.OutcomeFallback, types.OutcomePartial} {
		t.Run(outcome.String(), func(t *testing.T) {
			next := newCountingReader(outcome)
			c := NewCached(next, newSnapshotCache(t), nil)
			ctx := context.Background()

			c.GetAggregateStats(ctx)
			res := c.GetAggregateStats(ctx)
			if res.CachedAt != nil {
				t.Error("degraded result was served from the snapshot")
			}
			if next.count(OpStats) != 2 {
				t.Errorf("upstream reads = %d, want 2", next.count(OpStats))
			}
		})
	}
}

func TestCached_Refresh(t *testing.T) {
	next := newCountingReader(types.OutcomePrimary)
	c := NewCached(next, newSnapshotCache(t), nil)
	ctx := context.Background()

	c.GetRepositories(ctx, 0)
	c.GetProfile(ctx)
	c.GetAggregateStats(ctx)

	if res := c.RefreshRepositories(ctx, 0); res.CachedAt != nil {
		t.Error("refresh must bypass the snapshot")
	}
	if res := c.RefreshProfile(ctx); res.CachedAt != nil {
		t.Error("refresh must bypass the snapshot")
	}
	if res := c.RefreshStats(ctx); res.CachedAt != nil {
		t.Error("refresh must bypass the snapshot")
	}

	for _, op := range []string{OpProfile, OpRepositories, OpStats} {
		if next.count(op) != 2 {
			t.Errorf("%s upstream reads = %d, want 2", op, next.count(op))
		}
	}

	// Refreshed result is the new snapshot
	if res := c.GetProfile(ctx); res.CachedAt == nil {
		t.Error("refreshed result should be stored")
	}
}

func TestCached_DisabledCache(t *testing.T) {
	next := newCountingReader(types.OutcomePrimary)
	c := NewCached(next, nil, nil)

	c.GetProfile(context.Background())
	c.GetProfile(context.Background())
	if next.count(OpProfile) != 2 {
		t.Errorf("disabled cache should pass every read through, got %d", next.count(OpProfile))
	}
}

func TestCached_WrapsGateway(t *testing.T) {
	g := newGateway(t, Sources{}, nil)
	c := NewCached(g, newSnapshotCache(t), nil)

	if c.Limit(0) != DefaultLimit || c.Limit(99) != DefaultMaxLimit {
		t.Errorf("Limit() should delegate to the gateway")
	}

	// No sources: fallback, not stored
	res := c.GetRepositories(context.Background(), 0)
	if res.Outcome != types.OutcomeFallback || len(res.Data) != DefaultLimit {
		t.Errorf("result = %s with %d repos", res.Outcome, len(res.Data))
	}
	if n, _ := c.Cache().GetStats(); n != 0 {
		t.Errorf("fallback result stored: %d entries", n)
	}
}
