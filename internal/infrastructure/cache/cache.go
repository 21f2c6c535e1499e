package cache

import (
	"fmt"
	"strings"

	"github.com/buildtrack/buildtrack/internal/domain/services"
	"github.com/redis/go-redis/v9"
)

// MemoryURL selects the in-process cache instead of Redis.
const MemoryURL = "memory"

// CreateCacheService builds a Redis-backed cache from a redis:// URL, or the
// in-process cache when url is "memory".
func CreateCacheService(url string) (services.CacheService, error) {
	if strings.EqualFold(url, MemoryURL) {
		return NewMemoryCache(), nil
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	return NewRedisCache(redis.NewClient(opts)), nil
}
