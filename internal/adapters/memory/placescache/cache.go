// Package placescache provides an in-process bounded TTL cache for place
// lookups. It replaces the unbounded module-level map the feature grew out
// of: entries expire after a TTL and the oldest entry is evicted once the
// cache reaches its size limit.
package placescache

import (
	"context"
	"sync"
	"time"

	"github.com/ghumakkad/trip-share-api/internal/ports/out/places"
)

type entry struct {
	results  []places.Place
	storedAt time.Time
}

type Cache struct {
	mu      sync.Mutex
	entries map[string]entry

	ttl        time.Duration
	maxEntries int

	now func() time.Time
}

func New(ttl time.Duration, maxEntries int) *Cache {
	if maxEntries < 1 {
		maxEntries = 1
	}
	return &Cache{
		entries:    make(map[string]entry),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// SetNowForTest overrides the time source for deterministic expiry tests.
func (c *Cache) SetNowForTest(fn func() time.Time) {
	if fn != nil {
		c.now = fn
	}
}

func (c *Cache) Get(ctx context.Context, city string) ([]places.Place, bool, error) {
	_ = ctx
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[city]
	if !ok {
		return nil, false, nil
	}
	if c.now().Sub(e.storedAt) > c.ttl {
		delete(c.entries, city)
		return nil, false, nil
	}
	return append([]places.Place(nil), e.results...), true, nil
}

func (c *Cache) Set(ctx context.Context, city string, results []places.Place) error {
	_ = ctx
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[city]; !ok && len(c.entries) >= c.maxEntries {
		c.evictOldestLocked()
	}
	c.entries[city] = entry{
		results:  append([]places.Place(nil), results...),
		storedAt: c.now(),
	}
	return nil
}

func (c *Cache) evictOldestLocked() {
	var (
		oldestKey string
		oldestAt  time.Time
		first     = true
	)
	for k, e := range c.entries {
		if first || e.storedAt.Before(oldestAt) {
			oldestKey, oldestAt, first = k, e.storedAt, false
		}
	}
	if oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}
