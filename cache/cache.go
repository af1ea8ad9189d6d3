// Package cache memoizes slow fetches for a limited time.
package cache

import (
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Cache is an in-memory TTL cache safe for concurrent use. Failed fetches are
// never cached.
type Cache struct {
	items *gocache.Cache

	mu       sync.Mutex
	inflight map[string]*sync.Mutex
}

// New returns an empty cache that purges expired entries every cleanup.
func New(cleanup time.Duration) *Cache {
	return &Cache{
		items:    gocache.New(gocache.NoExpiration, cleanup),
		inflight: make(map[string]*sync.Mutex),
	}
}

// keyLock serializes the fetches of a key.
func (c *Cache) keyLock(key string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.inflight[key]
	if !ok {
		l = new(sync.Mutex)
		c.inflight[key] = l
	}
	return l
}

// GetOrFetch returns the cached value of key, or calls fetch and caches its
// result for ttl. Concurrent callers of the same key wait for a single fetch.
func (c *Cache) GetOrFetch(key string, ttl time.Duration, fetch func() (any, error)) (any, error) {
	if v, ok := c.items.Get(key); ok {
		return v, nil
	}
	l := c.keyLock(key)
	l.Lock()
	defer l.Unlock()
	if v, ok := c.items.Get(key); ok {
		return v, nil
	}
	v, err := fetch()
	if err != nil {
		return nil, err
	}
	if ttl > 0 {
		c.items.Set(key, v, ttl)
	}
	return v, nil
}

// Fetch is the typed form of GetOrFetch.
func Fetch[T any](c *Cache, key string, ttl time.Duration, fetch func() (T, error)) (T, error) {
	v, err := c.GetOrFetch(key, ttl, func() (any, error) { return fetch() })
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// Invalidate drops key.
func (c *Cache) Invalidate(key string) { c.items.Delete(key) }

// Flush drops every entry.
func (c *Cache) Flush() { c.items.Flush() }
