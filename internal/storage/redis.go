package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisConfig struct {
	Addr string
	DB   int
}

// NewRedisClient connects and pings the server.
func NewRedisClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: cfg.Addr,
		DB:   cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}
	return client, nil
}

// Redis is a Cache shared between dashboard replicas. Values are stored
// encoded with SET ... EX ttl.
type Redis[V any] struct {
	Client *redis.Client
	prefix string
	ttl    time.Duration
	codec  Codec[V]
}

func NewRedis[V any](client *redis.Client, prefix string, ttl time.Duration, codec Codec[V]) *Redis[V] {
	return &Redis[V]{Client: client, prefix: prefix, ttl: ttl, codec: codec}
}

func (r *Redis[V]) key(key string) string {
	return r.prefix + key
}

// GetOrCompute reads key from Redis, falling back to compute on a miss or on
// an undecodable entry. A failed write is logged and the value still returned.
func (r *Redis[V]) GetOrCompute(ctx context.Context, key string, compute Compute[V]) (V, error) {
	b, err := r.Client.Get(ctx, r.key(key)).Bytes()
	switch {
	case err == nil:
		v, derr := r.codec.Decode(b)
		if derr == nil {
			return v, nil
		}
		slog.Warn("dropping undecodable cache entry", "key", key, "error", derr)
	case !errors.Is(err, redis.Nil):
		var zero V
		return zero, fmt.Errorf("redis get %s: %w", key, err)
	}

	v, err := compute(ctx)
	if err != nil {
		return v, err
	}

	b, err = r.codec.Encode(v)
	if err != nil {
		return v, fmt.Errorf("encoding %s: %w", key, err)
	}
	if err := r.Client.Set(ctx, r.key(key), b, r.ttl).Err(); err != nil {
		slog.Warn("failed to store cache entry", "key", key, "error", err)
	}
	return v, nil
}

func (r *Redis[V]) Invalidate(ctx context.Context, key string) error {
	return r.Client.Del(ctx, r.key(key)).Err()
}

// Purge deletes every key under the prefix.
func (r *Redis[V]) Purge(ctx context.Context) error {
	iter := r.Client.Scan(ctx, 0, r.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := r.Client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
