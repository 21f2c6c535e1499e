package services

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by Get and HGetAll when the key does not exist.
var ErrCacheMiss = errors.New("cache miss")

// CacheService interface for caching operations
type CacheService interface {
	// Basic operations
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Expire(ctx context.Context, key string, expiration time.Duration) error

	// Atomic operations
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error)
	Increment(ctx context.Context, key string) (int64, error)

	// Hash operations for structured data
	HSet(ctx context.Context, key string, values map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)

	// Health check
	Ping(ctx context.Context) error
	Close() error
}

// Cache key patterns for the application
const (
	// Session keys
	SessionKeyPattern = "session:%s"

	// Revoked access token ids
	RevokedTokenKeyPattern = "revoked:%s"

	// Rate limiting keys
	RateLimitKeyPattern = "rate_limit:%s:%d" // client:window
)

// Common cache durations
const (
	// Session duration
	SessionDuration = 7 * 24 * time.Hour

	// Rate limiting windows
	RateLimitWindow = time.Minute
)
