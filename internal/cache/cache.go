package cache

import (
	"context"
	"errors"
	"time"
)

var (
	ErrCacheNotFound    = errors.New("key not found in cache")
	ErrCacheFailedToSet = errors.New("failed to set value in cache")
	ErrCacheFailedToDel = errors.New("failed to delete value from cache")
	ErrCacheFailedToGet = errors.New("failed to get value from cache")
)

// Store is a byte value store with per key expiry.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// SetIfAbsent stores the value only if the key holds no live value. It reports whether the value was stored.
	SetIfAbsent(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
}
