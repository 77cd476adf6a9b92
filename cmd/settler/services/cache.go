package services

import (
	"errors"

	"github.com/go-redis/redis/v8"

	"github.com/rafflechain/settler/config"
	"github.com/rafflechain/settler/internal/cache"
)

var ErrCacheUnknownType = errors.New("unknown cache type")

// NewCacheStore creates the verification cache based on the provided configuration.
func NewCacheStore(cacheConfig *config.CacheConfig, verifierConfig *config.VerifierConfig) (cache.Store, error) {
	switch cacheConfig.Engine {
	case config.InMemory:
		return cache.NewMemoryStore(verifierConfig.CacheTTL, verifierConfig.SweepInterval), nil
	case config.Redis:
		c := redis.NewClient(&redis.Options{
			Addr:     cacheConfig.Redis.Addr,
			Password: cacheConfig.Redis.Password,
			DB:       cacheConfig.Redis.DB,
		})
		return cache.NewRedisStore(c), nil
	default:
		return nil, ErrCacheUnknownType
	}
}
