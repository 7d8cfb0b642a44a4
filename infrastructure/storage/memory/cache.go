package memory

import (
	"context"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/felixgeelhaar/steam-mcp/domain/cache"
)

// ttlEntry holds a cached value with its expiration.
type ttlEntry struct {
	value     []byte
	expiresAt time.Time
}

// isExpired checks if the entry has expired.
func (e ttlEntry) isExpired() bool {
	if e.expiresAt.IsZero() {
		return false
	}
	return time.Now().After(e.expiresAt)
}

// TTLCache is an in-memory implementation of cache.Cache backed by an LRU
// with per-entry TTLs. Expired entries read as misses and are removed when
// observed.
type TTLCache struct {
	entries *lru.Cache[string, ttlEntry]
	maxSize int
	hits    atomic.Int64
	misses  atomic.Int64
}

// NewTTLCache creates a TTL cache holding at most maxEntries values.
func NewTTLCache(maxEntries int) (*TTLCache, error) {
	if maxEntries <= 0 {
		return nil, cache.ErrInvalidCapacity
	}
	entries, err := lru.New[string, ttlEntry](maxEntries)
	if err != nil {
		return nil, err
	}
	return &TTLCache{
		entries: entries,
		maxSize: maxEntries,
	}, nil
}

// Get retrieves a value from the cache.
func (c *TTLCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	entry, ok := c.entries.Get(key)
	if !ok {
		c.misses.Add(1)
		return nil, false, nil
	}
	if entry.isExpired() {
		c.entries.Remove(key)
		c.misses.Add(1)
		return nil, false, nil
	}

	c.hits.Add(1)

	// Return a copy to prevent mutation
	value := make([]byte, len(entry.value))
	copy(value, entry.value)
	return value, true, nil
}

// Set stores a value in the cache.
func (c *TTLCache) Set(ctx context.Context, key string, value []byte, opts cache.SetOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if key == "" {
		return cache.ErrInvalidKey
	}

	entry := ttlEntry{value: make([]byte, len(value))}
	copy(entry.value, value)
	if opts.TTL > 0 {
		entry.expiresAt = time.Now().Add(opts.TTL)
	}

	c.entries.Add(key, entry)
	return nil
}

// Delete removes a cached entry by key.
func (c *TTLCache) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.entries.Remove(key)
	return nil
}

// Clear removes all entries from the cache.
func (c *TTLCache) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.entries.Purge()
	return nil
}

// Stats returns current cache statistics.
func (c *TTLCache) Stats() cache.Stats {
	return cache.Stats{
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Size:    int64(c.entries.Len()),
		MaxSize: int64(c.maxSize),
	}
}
