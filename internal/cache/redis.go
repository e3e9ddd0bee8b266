package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis"
)

// RedisCache stores entries in redis under a key prefix with a fixed TTL.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedis(client *redis.Client, prefix string, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, prefix: prefix, ttl: ttl}
}

func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := r.client.WithContext(ctx).Get(r.prefix + key).Bytes()
	if err == redis.Nil {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return b, nil
}

func (r *RedisCache) Set(ctx context.Context, key string, value []byte) error {
	if err := r.client.WithContext(ctx).Set(r.prefix+key, value, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (r *RedisCache) Delete(ctx context.Context, key string) error {
	return r.client.WithContext(ctx).Del(r.prefix + key).Err()
}

// Len counts keys under the prefix. It scans, so keep it off hot paths.
func (r *RedisCache) Len(ctx context.Context) int {
	c := r.client.WithContext(ctx)
	var (
		cursor uint64
		n      int
	)
	for {
		keys, next, err := c.Scan(cursor, r.prefix+"*", 100).Result()
		if err != nil {
			return n
		}
		n += len(keys)
		if next == 0 {
			return n
		}
		cursor = next
	}
}
