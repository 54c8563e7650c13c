// Package cache is a keyed response cache where freshness is decided by the reader.
// Writers store a value with its write time; readers pass the TTL they accept.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"safeguard/config"
	"safeguard/internal/domain/constants"
	"safeguard/internal/errors"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

// Entry is a cached value and how long ago it was stored.
type Entry struct {
	Value []byte
	Age   time.Duration
}

// Cache stores opaque values. Get reports a miss when the entry is absent or older than ttl.
type Cache interface {
	Get(ctx context.Context, key string, ttl time.Duration) (Entry, bool, error)
	Put(ctx context.Context, key string, value []byte) error
}

// envelope is the stored representation shared by every backend.
type envelope struct {
	Value    []byte    `json:"value"`
	StoredAt time.Time `json:"stored_at"`
}

// GetJSON reads and decodes a cached value.
func GetJSON[T any](ctx context.Context, c Cache, key string, ttl time.Duration) (T, time.Duration, bool, error) {
	var out T

	entry, ok, err := c.Get(ctx, key, ttl)
	if err != nil || !ok {
		return out, 0, false, err
	}
	if err := json.Unmarshal(entry.Value, &out); err != nil {
		return out, 0, false, errors.Wrapf(err, "decode cached %s", key)
	}

	return out, entry.Age, true, nil
}

// PutJSON encodes and stores value.
func PutJSON(ctx context.Context, c Cache, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return errors.Wrapf(err, "encode cached %s", key)
	}

	return c.Put(ctx, key, data)
}

// Params holds dependencies for the cache, injected by Fx
type Params struct {
	fx.In

	Lc     fx.Lifecycle
	Config *config.Config
	Logger *slog.Logger
}

// New creates the cache backend named in config.
func New(params Params) (Cache, error) {
	cfg := params.Config.Cache

	switch cfg.Provider {
	case constants.CacheProviderMemory:
		params.Logger.Info("Using in-memory response cache")

		return NewMemoryCache(cfg.Retention), nil

	case constants.CacheProviderRedis:
		if cfg.Redis.Addr == "" {
			return nil, errors.New("redis address is required for redis cache")
		}
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		params.Logger.Info("Using Redis response cache", slog.String("addr", cfg.Redis.Addr))

		params.Lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				return errors.Wrap(client.Ping(ctx).Err(), "failed to ping Redis")
			},
			OnStop: func(_ context.Context) error {
				return client.Close()
			},
		})

		return NewRedisCache(client, "safeguard:cache:", cfg.Retention), nil

	default:
		return nil, errors.Errorf("unknown cache provider: %s", cfg.Provider)
	}
}
