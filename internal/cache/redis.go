package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore is a Store backed by redis
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects to redis at addr and verifies the connection
func NewRedisStore(ctx context.Context, addr string, password string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           0,
		MaxRetries:   3,
		PoolSize:     20,
		MinIdleConns: 2,
		PoolTimeout:  30 * time.Second,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &RedisStore{client: client, prefix: "matchboard:"}, nil
}

// Close releases the underlying connection pool
func (store *RedisStore) Close() error {
	return store.client.Close()
}

// Get returns the value of key, mapping redis.Nil to ErrCacheMiss
func (store *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := store.client.Get(ctx, store.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s from redis: %w", key, err)
	}
	return value, nil
}

// Set stores value under key with the given ttl
func (store *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := store.client.Set(ctx, store.prefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write %s to redis: %w", key, err)
	}
	return nil
}

// Delete removes key
func (store *RedisStore) Delete(ctx context.Context, key string) error {
	if err := store.client.Del(ctx, store.prefix+key).Err(); err != nil {
		return fmt.Errorf("failed to delete %s from redis: %w", key, err)
	}
	return nil
}
