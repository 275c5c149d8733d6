package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/augustcaio/portfolio-gateway/pkg/types"
)

const (
	// Default freshness window - 5 minutes
	DefaultFreshness = 5 * time.Minute
	// Cache directory name
	CacheDirName = "portfolio-gateway"
)

// ErrMiss is returned by a Backend when the key is absent
var ErrMiss = errors.New("cache miss")

// Backend stores opaque snapshot bytes by key
type Backend interface {
	Get(key string) ([]byte, error)
	Set(key string, data []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Entry represents one cached snapshot of a gateway result
type Entry struct {
	Payload   json.RawMessage `json:"payload"`
	Outcome   types.Outcome   `json:"outcome"`
	Source    string          `json:"source,omitempty"`
	FetchedAt time.Time       `json:"fetched_at"`
}

// Cache keeps one freshness-windowed snapshot per key
type Cache struct {
	backend   Backend
	freshness time.Duration
	disabled  bool
	now       func() time.Time
}

// New creates a cache over backend. A nil backend disables caching.
func New(backend Backend, freshness time.Duration) *Cache {
	if backend == nil {
		return NewDisabled()
	}
	if freshness <= 0 {
		freshness = DefaultFreshness
	}
	return &Cache{
		backend:   backend,
		freshness: freshness,
		now:       time.Now,
	}
}

// NewDisabled creates a cache on which every Load misses and every write is a no-op
func NewDisabled() *Cache {
	return &Cache{disabled: true, now: time.Now}
}

// Disabled reports whether the cache is a no-op
func (c *Cache) Disabled() bool {
	return c.disabled
}

// Freshness returns the freshness window
func (c *Cache) Freshness() time.Duration {
	return c.freshness
}

// Load decodes the snapshot stored under key into v.
// Stale or unreadable entries are removed and reported as a miss.
func (c *Cache) Load(key string, v any) (Entry, bool) {
	if c.disabled {
		return Entry{}, false
	}

	data, err := c.backend.Get(key)
	if err != nil {
		return Entry{}, false
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		// Invalid cache entry, drop it
		_ = c.backend.Delete(key)
		return Entry{}, false
	}

	// Check if cache entry is still fresh
	if c.now().Sub(entry.FetchedAt) > c.freshness {
		_ = c.backend.Delete(key)
		return Entry{}, false
	}

	if err := json.Unmarshal(entry.Payload, v); err != nil {
		_ = c.backend.Delete(key)
		return Entry{}, false
	}

	return entry, true
}

// Store saves v under key with the outcome that produced it
func (c *Cache) Store(key string, v any, outcome types.Outcome, source string) error {
	if c.disabled {
		return nil
	}

	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal cache payload: %w", err)
	}

	entry := Entry{
		Payload:   payload,
		Outcome:   outcome,
		Source:    source,
		FetchedAt: c.now(),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	if err := c.backend.Set(key, data, c.freshness); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}

	return nil
}

// Invalidate removes the given keys
func (c *Cache) Invalidate(keys ...string) error {
	if c.disabled {
		return nil
	}

	var errs []error
	for _, key := range keys {
		if err := c.backend.Delete(key); err != nil {
			errs = append(errs, fmt.Errorf("invalidate %s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}

// Clear removes all cached entries
func (c *Cache) Clear() error {
	if c.disabled {
		return nil
	}
	return c.backend.Clear()
}

// CleanExpired removes stale entries when the backend supports it
func (c *Cache) CleanExpired() error {
	if c.disabled {
		return nil
	}
	if cl, ok := c.backend.(interface{ CleanExpired(time.Duration) error }); ok {
		return cl.CleanExpired(c.freshness)
	}
	return nil
}

// GetStats returns the number of stored entries, or -1 when the backend cannot count
func (c *Cache) GetStats() (int, error) {
	if c.disabled {
		return 0, nil
	}
	if counter, ok := c.backend.(interface{ Count() (int, error) }); ok {
		return counter.Count()
	}
	return -1, nil
}
