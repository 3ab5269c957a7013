package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const (
	ExpiryDefault = 30 * time.Minute
	ExpiryPlans   = 12 * time.Hour
)

// Cache is a process-local key value cache with TTL semantics.
type Cache interface {
	Get(ctx context.Context, key string) (interface{}, bool)
	Set(ctx context.Context, key string, value interface{}, expiry time.Duration)
	Delete(ctx context.Context, key string)
	DeleteByPrefix(ctx context.Context, prefix string)
}

// InMemoryCache implements Cache on top of go-cache.
type InMemoryCache struct {
	cache *gocache.Cache
}

var (
	inMemoryInstance *InMemoryCache
	inMemoryOnce     sync.Once
)

// GetInMemoryCache returns the process-wide in-memory cache.
func GetInMemoryCache() *InMemoryCache {
	inMemoryOnce.Do(func() {
		inMemoryInstance = &InMemoryCache{
			cache: gocache.New(ExpiryDefault, 10*time.Minute),
		}
	})
	return inMemoryInstance
}

func (c *InMemoryCache) Get(ctx context.Context, key string) (interface{}, bool) {
	return c.cache.Get(key)
}

func (c *InMemoryCache) Set(ctx context.Context, key string, value interface{}, expiry time.Duration) {
	c.cache.Set(key, value, expiry)
}

func (c *InMemoryCache) Delete(ctx context.Context, key string) {
	c.cache.Delete(key)
}

func (c *InMemoryCache) DeleteByPrefix(ctx context.Context, prefix string) {
	for key := range c.cache.Items() {
		if strings.HasPrefix(key, prefix) {
			c.cache.Delete(key)
		}
	}
}

// UnmarshalCacheValue converts a cached value to the requested type.
func UnmarshalCacheValue[T any](value interface{}) (*T, bool) {
	if value == nil {
		return nil, false
	}
	typed, ok := value.(*T)
	return typed, ok
}
