package cache

import (
	"errors"
	"strings"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
)

const memcacheKeyPrefix = "portfolio-gateway:"

// MemcacheBackend stores entries in memcached with the freshness window as expiration
type MemcacheBackend struct {
	client *memcache.Client
}

// NewMemcacheBackend creates a backend for the given server addresses
func NewMemcacheBackend(timeout time.Duration, addrs ...string) *MemcacheBackend {
	client := memcache.New(addrs...)
	if timeout > 0 {
		client.Timeout = timeout
	}
	return &MemcacheBackend{client: client}
}

// ParseAddrs splits a comma-separated server list
func ParseAddrs(s string) []string {
	var out []string
	for _, a := range strings.Split(s, ",") {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, a)
		}
	}
	return out
}

// Ping checks that every server is reachable
func (b *MemcacheBackend) Ping() error {
	return b.client.Ping()
}

func (b *MemcacheBackend) Get(key string) ([]byte, error) {
	item, err := b.client.Get(memcacheKeyPrefix + key)
	if err != nil {
		if errors.Is(err, memcache.ErrCacheMiss) {
			return nil, ErrMiss
		}
		return nil, err
	}
	return item.Value, nil
}

func (b *MemcacheBackend) Set(key string, data []byte, ttl time.Duration) error {
	return b.client.Set(&memcache.Item{
		Key:        memcacheKeyPrefix + key,
		Value:      data,
		Expiration: int32(ttl.Seconds()),
	})
}

func (b *MemcacheBackend) Delete(key string) error {
	err := b.client.Delete(memcacheKeyPrefix + key)
	if err != nil && !errors.Is(err, memcache.ErrCacheMiss) {
		return err
	}
	return nil
}

// Clear flushes the whole memcached server, not only this service's keys
func (b *MemcacheBackend) Clear() error {
	return b.client.DeleteAll()
}
