package cache

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisStore is an implementation of Store using Redis. Redis expires keys itself.
type RedisStore struct {
	client redis.UniversalClient
}

// NewRedisStore initializes a RedisStore.
func NewRedisStore(c redis.UniversalClient) *RedisStore {
	return &RedisStore{
		client: c,
	}
}

// Get retrieves a value by key.
func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	result, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheNotFound
	} else if err != nil {
		return nil, errors.Join(ErrCacheFailedToGet, err)
	}
	return result, nil
}

// Set stores a value with a TTL.
func (r *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	err := r.client.Set(ctx, key, value, ttl).Err()
	if err != nil {
		return errors.Join(ErrCacheFailedToSet, err)
	}
	return nil
}

// SetIfAbsent stores a value with a TTL unless the key exists.
func (r *RedisStore) SetIfAbsent(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	stored, err := r.client.SetNX(ctx, key, value, ttl).Result()
	if err != nil {
		return false, errors.Join(ErrCacheFailedToSet, err)
	}
	return stored, nil
}

// Del removes values by key.
func (r *RedisStore) Del(ctx context.Context, keys ...string) error {
	result, err := r.client.Del(ctx, keys...).Result()
	if err != nil {
		return errors.Join(ErrCacheFailedToDel, err)
	}
	if result == 0 {
		return ErrCacheNotFound
	}
	return nil
}

func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
