package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryCache keeps entries in process. Entries older than retention are dropped on write.
type MemoryCache struct {
	mu        sync.RWMutex
	entries   map[string]envelope
	retention time.Duration
	now       func() time.Time
}

// NewMemoryCache creates an empty in-process cache.
func NewMemoryCache(retention time.Duration) *MemoryCache {
	return &MemoryCache{
		entries:   make(map[string]envelope),
		retention: retention,
		now:       time.Now,
	}
}

func (c *MemoryCache) Get(_ context.Context, key string, ttl time.Duration) (Entry, bool, error) {
	c.mu.RLock()
	env, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return Entry{}, false, nil
	}

	age := c.now().Sub(env.StoredAt)
	if age > ttl {
		return Entry{}, false, nil
	}

	return Entry{Value: env.Value, Age: age}, true, nil
}

func (c *MemoryCache) Put(_ context.Context, key string, value []byte) error {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = envelope{Value: append([]byte(nil), value...), StoredAt: now}
	if c.retention > 0 {
		for k, env := range c.entries {
			if now.Sub(env.StoredAt) > c.retention {
				delete(c.entries, k)
			}
		}
	}

	return nil
}
