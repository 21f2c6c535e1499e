package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/buildtrack/buildtrack/internal/domain/services"
	"github.com/buildtrack/buildtrack/pkg/logger"
	"github.com/gin-gonic/gin"
)

// RateLimit counts requests per client IP in fixed windows kept in the cache.
// A cache failure lets the request through.
func RateLimit(cache services.CacheService, limit int, window time.Duration, log *logger.Logger) gin.HandlerFunc {
	return rateLimit(cache, limit, window, log, time.Now)
}

func rateLimit(cache services.CacheService, limit int, window time.Duration, log *logger.Logger, now func() time.Time) gin.HandlerFunc {
	if limit <= 0 || window <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		current := now()
		slot := current.UnixNano() / int64(window)
		key := fmt.Sprintf(services.RateLimitKeyPattern, c.ClientIP(), slot)

		ctx := c.Request.Context()
		count, err := cache.Increment(ctx, key)
		if err != nil {
			log.Warn("rate limit check failed", "key", key, "error", err)
			c.Next()
			return
		}
		if count == 1 {
			if err := cache.Expire(ctx, key, window); err != nil {
				log.Warn("failed to set rate limit expiry", "key", key, "error", err)
			}
		}

		remaining := int64(limit) - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if count > int64(limit) {
			reset := time.Unix(0, (slot+1)*int64(window))
			retryAfter := int(reset.Sub(current).Seconds() + 0.999)
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":   "rate_limited",
				"message": "Too many requests",
				"status":  http.StatusTooManyRequests,
			})
			return
		}
		c.Next()
	}
}
