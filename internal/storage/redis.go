package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore maps values to plain strings and lists to Redis lists. All
// keys are prefixed so several environments can share one instance.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// OpenRedis connects to redisURL, which may be a full redis:// URL or a
// bare host:port.
func OpenRedis(ctx context.Context, redisURL, prefix string) (*RedisStore, error) {
	if !strings.Contains(redisURL, "://") {
		redisURL = "redis://" + redisURL
	}
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return NewRedisStore(client, prefix), nil
}

func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (r *RedisStore) k(key string) string { return r.prefix + key }

func (r *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.client.Get(ctx, r.k(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return v, true, nil
}

func (r *RedisStore) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, r.k(key), value, 0).Err(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (r *RedisStore) Append(ctx context.Context, key, value string) error {
	if err := r.client.RPush(ctx, r.k(key), value).Err(); err != nil {
		return fmt.Errorf("append %s: %w", key, err)
	}
	return nil
}

func (r *RedisStore) List(ctx context.Context, key string) ([]string, error) {
	out, err := r.client.LRange(ctx, r.k(key), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", key, err)
	}
	return out, nil
}

func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
