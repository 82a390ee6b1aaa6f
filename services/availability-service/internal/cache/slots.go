package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SlotCache caches serialized slot-list responses per calendar. Keys carry a
// per-calendar version stamp; invalidation bumps the version so stale entries
// age out by TTL instead of being enumerated and deleted.
type SlotCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// New returns a cache over rdb. A nil client yields a disabled cache whose
// lookups always miss, so callers need no nil checks.
func New(rdb *redis.Client, ttl time.Duration) *SlotCache {
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &SlotCache{rdb: rdb, ttl: ttl}
}

// Key builds the cache key for one enumeration query, bound to the calendar's
// current version.
func (c *SlotCache) Key(ctx context.Context, calendarID, mode string, from, to time.Time, slotMinutes int) (string, error) {
	if c.rdb == nil {
		return "", nil
	}
	ver, err := c.rdb.Get(ctx, versionKey(calendarID)).Result()
	if err == redis.Nil {
		ver = "0"
	} else if err != nil {
		return "", err
	}
	return fmt.Sprintf("slots:%s:v%s:%s:%d:%d:%d",
		calendarID, ver, mode, from.UTC().Unix(), to.UTC().Unix(), slotMinutes), nil
}

func (c *SlotCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if c.rdb == nil || key == "" {
		return nil, false
	}
	payload, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return payload, true
}

func (c *SlotCache) Set(ctx context.Context, key string, payload []byte) error {
	if c.rdb == nil || key == "" {
		return nil
	}
	return c.rdb.Set(ctx, key, payload, c.ttl).Err()
}

// Invalidate bumps the calendar's version so every cached query for it misses.
func (c *SlotCache) Invalidate(ctx context.Context, calendarID string) error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Incr(ctx, versionKey(calendarID)).Err()
}

func versionKey(calendarID string) string {
	return "slots:ver:" + calendarID
}
