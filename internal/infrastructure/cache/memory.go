package cache

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/buildtrack/buildtrack/internal/domain/services"
)

type memoryEntry struct {
	value     string
	hash      map[string]string
	expiresAt time.Time
}

func (e *memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// MemoryCache is a process-local CacheService used for tests and single-node development.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	now     func() time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]*memoryEntry),
		now:     time.Now,
	}
}

// lookup returns the live entry for key, evicting it when expired. Caller holds mu.
func (c *MemoryCache) lookup(key string) (*memoryEntry, bool) {
	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if entry.expired(c.now()) {
		delete(c.entries, key)
		return nil, false
	}
	return entry, true
}

func (c *MemoryCache) deadline(expiration time.Duration) time.Time {
	if expiration <= 0 {
		return time.Time{}
	}
	return c.now().Add(expiration)
}

func (c *MemoryCache) Set(_ context.Context, key string, value interface{}, expiration time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = &memoryEntry{value: fmt.Sprint(value), expiresAt: c.deadline(expiration)}
	return nil
}

func (c *MemoryCache) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.lookup(key)
	if !ok || entry.hash != nil {
		return "", services.ErrCacheMiss
	}
	return entry.value, nil
}

func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

func (c *MemoryCache) Exists(_ context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.lookup(key)
	return ok, nil
}

func (c *MemoryCache) Expire(_ context.Context, key string, expiration time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if entry, ok := c.lookup(key); ok {
		entry.expiresAt = c.deadline(expiration)
	}
	return nil
}

func (c *MemoryCache) SetNX(_ context.Context, key string, value interface{}, expiration time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.lookup(key); ok {
		return false, nil
	}
	c.entries[key] = &memoryEntry{value: fmt.Sprint(value), expiresAt: c.deadline(expiration)}
	return true, nil
}

func (c *MemoryCache) Increment(_ context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.lookup(key)
	if !ok {
		c.entries[key] = &memoryEntry{value: "1"}
		return 1, nil
	}
	n, err := strconv.ParseInt(entry.value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("cache incr %q: value is not an integer", key)
	}
	n++
	entry.value = strconv.FormatInt(n, 10)
	return n, nil
}

func (c *MemoryCache) HSet(_ context.Context, key string, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.lookup(key)
	if !ok || entry.hash == nil {
		entry = &memoryEntry{hash: make(map[string]string)}
		c.entries[key] = entry
	}
	for field, value := range values {
		entry.hash[field] = value
	}
	return nil
}

func (c *MemoryCache) HGetAll(_ context.Context, key string) (map[string]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.lookup(key)
	if !ok || entry.hash == nil {
		return nil, services.ErrCacheMiss
	}
	out := make(map[string]string, len(entry.hash))
	for field, value := range entry.hash {
		out[field] = value
	}
	return out, nil
}

func (c *MemoryCache) Ping(context.Context) error { return nil }

func (c *MemoryCache) Close() error { return nil }
