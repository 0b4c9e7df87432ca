package common

import (
	"time"

	cache "github.com/patrickmn/go-cache"
)

// CacheRepository defines a minimal interface for a key/value cache.
// The values are stored as raw []byte, which you can marshal/unmarshal
// from JSON or other formats as needed.
//
// The helper uses it to avoid re-fetching profile data that LinkedIn
// already returned for the same token, but you could back it with
// anything (Redis, Memcached, ...).
type CacheRepository interface {
	Get(key string) (value []byte, found bool)
	Set(key string, value []byte, expiration time.Duration)
	Delete(key string)
}

const (
	// DefaultExpiration is how long profile responses stay cached.
	DefaultExpiration = 30 * time.Minute
	cleanupInterval   = 32 * time.Minute
)

var _ CacheRepository = (*cacheStore)(nil)

type cacheStore struct {
	cache *cache.Cache
}

// NewCacheStore returns an in-memory, expiring CacheRepository.
func NewCacheStore() CacheRepository {
	return &cacheStore{
		cache: cache.New(DefaultExpiration, cleanupInterval),
	}
}

func (c *cacheStore) Get(key string) ([]byte, bool) {
	value, found := c.cache.Get(key)
	if found {
		return value.([]byte), true
	}
	return nil, false
}

func (c *cacheStore) Set(key string, value []byte, expiration time.Duration) {
	c.cache.Set(key, value, expiration)
}

func (c *cacheStore) Delete(key string) {
	c.cache.Delete(key)
}
