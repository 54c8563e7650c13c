package cache

import (
	"context"
	"encoding/json"
	"time"

	"safeguard/internal/errors"

	"github.com/redis/go-redis/v9"
)

// RedisCache stores entries as JSON envelopes. Redis expiry is set to retention, not the read TTL.
type RedisCache struct {
	client    redis.Cmdable
	prefix    string
	retention time.Duration
	now       func() time.Time
}

// NewRedisCache creates a cache over an existing client.
func NewRedisCache(client redis.Cmdable, prefix string, retention time.Duration) *RedisCache {
	return &RedisCache{
		client:    client,
		prefix:    prefix,
		retention: retention,
		now:       time.Now,
	}
}

func (c *RedisCache) Get(ctx context.Context, key string, ttl time.Duration) (Entry, bool, error) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, errors.Wrap(err, "failed to get cache entry from Redis")
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Entry{}, false, errors.Wrap(err, "failed to unmarshal cache entry")
	}

	age := c.now().Sub(env.StoredAt)
	if age > ttl {
		return Entry{}, false, nil
	}

	return Entry{Value: env.Value, Age: age}, true, nil
}

func (c *RedisCache) Put(ctx context.Context, key string, value []byte) error {
	data, err := json.Marshal(envelope{Value: value, StoredAt: c.now()})
	if err != nil {
		return errors.Wrap(err, "failed to marshal cache entry")
	}

	if err := c.client.Set(ctx, c.prefix+key, data, c.retention).Err(); err != nil {
		return errors.Wrap(err, "failed to set cache entry in Redis")
	}

	return nil
}
