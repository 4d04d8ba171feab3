// Package placescache backs the places cache with Redis so lookups survive
// restarts and are shared across instances. Entries expire via Redis TTL.
package placescache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ghumakkad/trip-share-api/internal/ports/out/places"
)

const keyPrefix = "places:"

type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

func New(rdb *redis.Client, ttl time.Duration) *Cache {
	return &Cache{rdb: rdb, ttl: ttl}
}

func (c *Cache) Get(ctx context.Context, city string) ([]places.Place, bool, error) {
	raw, err := c.rdb.Get(ctx, keyPrefix+city).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var out []places.Place
	if err := json.Unmarshal(raw, &out); err != nil {
		// A corrupt entry is treated as a miss; the next Set overwrites it.
		return nil, false, nil
	}
	return out, true, nil
}

func (c *Cache) Set(ctx context.Context, city string, results []places.Place) error {
	raw, err := json.Marshal(results)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, keyPrefix+city, raw, c.ttl).Err()
}
