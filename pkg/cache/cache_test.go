package cache

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/augustcaio/portfolio-gateway/pkg/types"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func newFileCache(t *testing.T, freshness time.Duration) (*Cache, *FileBackend) {
	t.Helper()

	backend, err := NewFileBackend(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileBackend() error: %v", err)
	}
	return New(backend, freshness), backend
}

func TestNew_NilBackendIsDisabled(t *testing.T) {
	c := New(nil, time.Minute)
	if !c.Disabled() {
		t.Error("expected cache to be disabled")
	}
}

func TestNew_DefaultFreshness(t *testing.T) {
	c, _ := newFileCache(t, 0)
	if c.Freshness() != DefaultFreshness {
		t.Errorf("freshness = %v, want %v", c.Freshness(), DefaultFreshness)
	}
}

func TestNewFileBackend_DefaultDir(t *testing.T) {
	// Use XDG_CACHE_HOME to control the cache directory
	home := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", home)

	b, err := NewFileBackend("")
	if err != nil {
		t.Fatalf("NewFileBackend() error: %v", err)
	}
	if b.Dir() != filepath.Join(home, CacheDirName) {
		t.Errorf("Dir() = %q", b.Dir())
	}
	if _, err := os.Stat(b.Dir()); err != nil {
		t.Errorf("cache directory not created: %v", err)
	}
}

func TestCache_StoreAndLoad(t *testing.T) {
	c, _ := newFileCache(t, time.Hour)

	if err := c.Store("projects:6", payload{Name: "alpha", Count: 3}, types.OutcomeSecondary, "aggregator"); err != nil {
		t.Fatalf("Store() error: %v", err)
	}

	var got payload
	entry, hit := c.Load("projects:6", &got)
	if !hit {
		t.Fatal("expected cache hit")
	}
	if got.Name != "alpha" || got.Count != 3 {
		t.Errorf("payload = %+v", got)
	}
	if entry.Outcome != types.OutcomeSecondary || entry.Source != "aggregator" {
		t.Errorf("entry metadata = %+v", entry)
	}
	if entry.FetchedAt.IsZero() {
		t.Error("FetchedAt should be set")
	}
}

func TestCache_Miss(t *testing.T) {
	c, _ := newFileCache(t, time.Hour)

	var got payload
	if _, hit := c.Load("nonexistent", &got); hit {
		t.Error("expected cache miss for nonexistent entry")
	}
}

func TestCache_FreshnessWindow(t *testing.T) {
	c, backend := newFileCache(t, 5*time.Minute)

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	if err := c.Store("profile", payload{Name: "p"}, types.OutcomePrimary, "github"); err != nil {
		t.Fatalf("Store() error: %v", err)
	}

	var got payload

	now = now.Add(4 * time.Minute)
	if _, hit := c.Load("profile", &got); !hit {
		t.Fatal("entry inside the window should hit")
	}

	now = now.Add(2 * time.Minute)
	if _, hit := c.Load("profile", &got); hit {
		t.Fatal("entry older than the window should miss")
	}

	// Stale entry was removed from the backend
	if _, err := backend.Get("profile"); err != ErrMiss {
		t.Errorf("stale entry still stored: err = %v", err)
	}
}

func TestCache_CorruptEntryIsDropped(t *testing.T) {
	c, backend := newFileCache(t, time.Hour)

	if err := backend.Set("stats", []byte("{not json"), time.Hour); err != nil {
		t.Fatalf("Set() error: %v", err)
	}

	var got payload
	if _, hit := c.Load("stats", &got); hit {
		t.Error("corrupt entry should miss")
	}
	if _, err := backend.Get("stats"); err != ErrMiss {
		t.Errorf("corrupt entry not removed: err = %v", err)
	}
}

func TestCache_Invalidate(t *testing.T) {
	c, _ := newFileCache(t, time.Hour)

	_ = c.Store("a", payload{Name: "a"}, types.OutcomePrimary, "github")
	_ = c.Store("b", payload{Name: "b"}, types.OutcomePrimary, "github")

	if err := c.Invalidate("a", "missing"); err != nil {
		t.Fatalf("Invalidate() error: %v", err)
	}

	var got payload
	if _, hit := c.Load("a", &got); hit {
		t.Error("invalidated key should miss")
	}
	if _, hit := c.Load("b", &got); !hit {
		t.Error("other keys should survive invalidation")
	}
}

func TestCache_DisabledOperations(t *testing.T) {
	c := NewDisabled()

	// All operations should be no-ops on disabled cache
	var got payload
	if _, hit := c.Load("x", &got); hit {
		t.Error("disabled cache should always miss")
	}
	if err := c.Store("x", payload{}, types.OutcomePrimary, "github"); err != nil {
		t.Errorf("disabled Store should not error: %v", err)
	}
	if err := c.Invalidate("x"); err != nil {
		t.Errorf("disabled Invalidate should not error: %v", err)
	}
	if err := c.Clear(); err != nil {
		t.Errorf("disabled Clear should not error: %v", err)
	}
	if err := c.CleanExpired(); err != nil {
		t.Errorf("disabled CleanExpired should not error: %v", err)
	}
	count, err := c.GetStats()
	if err != nil || count != 0 {
		t.Errorf("disabled GetStats = %d, %v; want 0, nil", count, err)
	}
}

func TestCache_ClearAndStats(t *testing.T) {
	c, backend := newFileCache(t, time.Hour)

	_ = c.Store("a", payload{}, types.OutcomePrimary, "github")
	_ = c.Store("b", payload{}, types.OutcomePrimary, "github")

	count, err := c.GetStats()
	if err != nil || count != 2 {
		t.Fatalf("GetStats() = %d, %v; want 2", count, err)
	}

	if err := c.Clear(); err != nil {
		t.Fatalf("Clear() error: %v", err)
	}

	count, _ = c.GetStats()
	if count != 0 {
		t.Errorf("after Clear, count = %d, want 0", count)
	}

	// Directory survives Clear so the cache keeps working
	if err := c.Store("c", payload{}, types.OutcomePrimary, "github"); err != nil {
		t.Errorf("Store after Clear error: %v", err)
	}
	if _, err := os.Stat(backend.Dir()); err != nil {
		t.Errorf("cache dir removed by Clear: %v", err)
	}
}

func TestFileBackend_CleanExpired(t *testing.T) {
	c, backend := newFileCache(t, time.Minute)

	_ = c.Store("old", payload{}, types.OutcomePrimary, "github")
	_ = c.Store("new", payload{}, types.OutcomePrimary, "github")

	old := time.Now().Add(-time.Hour)
	if err := os.Chtimes(backend.path("old"), old, old); err != nil {
		t.Fatalf("Chtimes() error: %v", err)
	}

	if err := c.CleanExpired(); err != nil {
		t.Fatalf("CleanExpired() error: %v", err)
	}

	if _, err := backend.Get("old"); err != ErrMiss {
		t.Error("expired file should be removed")
	}
	if _, err := backend.Get("new"); err != nil {
		t.Errorf("fresh file removed: %v", err)
	}
}

func TestFileBackend_HashedFilenames(t *testing.T) {
	_, backend := newFileCache(t, time.Hour)

	p1 := backend.path("projects:6")
	p2 := backend.path("projects:10")
	if p1 == p2 {
		t.Error("different keys should map to different files")
	}
	if filepath.Ext(p1) != ".json" {
		t.Errorf("cache file extension = %q, want .json", filepath.Ext(p1))
	}
	if filepath.Dir(p1) != backend.Dir() {
		t.Error("cache file outside cache dir")
	}
}

func TestMemcacheBackend_UnreachableIsMiss(t *testing.T) {
	backend := NewMemcacheBackend(100*time.Millisecond, "127.0.0.1:1")
	c := New(backend, time.Minute)

	var got payload
	if _, hit := c.Load("profile", &got); hit {
		t.Error("unreachable memcached should behave as a miss")
	}
	if err := c.Store("profile", payload{}, types.OutcomePrimary, "github"); err == nil {
		t.Error("Store against unreachable memcached should error")
	}
}

func TestParseAddrs(t *testing.T) {
	got := ParseAddrs(" a:11211, ,b:11211 ")
	if len(got) != 2 || got[0] != "a:11211" || got[1] != "b:11211" {
		t.Errorf("ParseAddrs() = %v", got)
	}
	if len(ParseAddrs("")) != 0 {
		t.Error("empty input should yield no addresses")
	}
}

func TestFileBackend_ConcurrentSetAndLoad(t *testing.T) {
	c, backend := newFileCache(t, time.Hour)

	// Large payloads make a torn read likely if writes are not atomic
	big := payload{Name: strings.Repeat("x", 256<<10)}
	if err := c.Store("projects:6", big, types.OutcomePrimary, "github"); err != nil {
		t.Fatalf("Store() error: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				if err := c.Store("projects:6", big, types.OutcomePrimary, "github"); err != nil {
					t.Errorf("Store() error: %v", err)
					return
				}
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				var got payload
				if _, hit := c.Load("projects:6", &got); !hit {
					t.Error("concurrent Load missed a stored entry")
					return
				}
				if len(got.Name) != len(big.Name) {
					t.Errorf("torn read: %d bytes", len(got.Name))
					return
				}
			}
		}()
	}
	wg.Wait()

	entries, err := os.ReadDir(backend.Dir())
	if err != nil {
		t.Fatalf("ReadDir() error: %v", err)
	}
	for _, e := range entries {
		if filepath.Ext(e.Name()) != ".json" {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}
