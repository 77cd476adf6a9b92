package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore keeps values in process memory. Expired values are never returned and
// are removed by a janitor every sweep interval.
type MemoryStore struct {
	data *gocache.Cache
}

func NewMemoryStore(defaultTTL, sweepInterval time.Duration) *MemoryStore {
	return &MemoryStore{
		data: gocache.New(defaultTTL, sweepInterval),
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	value, found := s.data.Get(key)
	if !found {
		return nil, ErrCacheNotFound
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil, ErrCacheFailedToGet
	}

	return bytes, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.data.Set(key, value, ttl)
	return nil
}

func (s *MemoryStore) SetIfAbsent(_ context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	err := s.data.Add(key, value, ttl)
	if err != nil {
		// key holds a value which did not expire yet
		return false, nil
	}

	return true, nil
}

func (s *MemoryStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		s.data.Delete(key)
	}
	return nil
}

// Sweep removes all expired values immediately.
func (s *MemoryStore) Sweep() {
	s.data.DeleteExpired()
}

// Len returns the number of stored values, including expired values not swept yet.
func (s *MemoryStore) Len() int {
	return s.data.ItemCount()
}
