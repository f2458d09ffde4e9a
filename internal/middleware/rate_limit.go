package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/inkwellhq/inkwell/backend/internal/cache"
	"github.com/inkwellhq/inkwell/backend/internal/logger"
)

// RateLimitMiddleware enforces a fixed-window per-IP request budget backed by
// Redis, so the budget holds across API instances.
//
// The limiter fails open: when Redis is unreachable the request is allowed and
// a warning is logged. An unavailable limiter must not take the API down.
func RateLimitMiddleware(client *cache.Client, maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if client == nil {
			c.Next()
			return
		}

		key := fmt.Sprintf("rate_limit:%s", c.ClientIP())
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		count, err := client.Incr(ctx, key)
		if err != nil {
			logger.Log.Warn("Rate limiter unavailable, allowing request",
				logger.WithIP(c.ClientIP()),
				zap.Error(err),
			)
			c.Next()
			return
		}

		// The first hit in a window owns setting its expiry
		if count == 1 {
			if err := client.Expire(ctx, key, window); err != nil {
				logger.Log.Warn("Failed to set rate limit window",
					logger.WithIP(c.ClientIP()),
					zap.Error(err),
				)
			}
		}

		if count > int64(maxRequests) {
			endpoint := c.FullPath()
			if endpoint == "" {
				endpoint = c.Request.URL.Path
			}
			RecordRateLimitExceeded(endpoint, c.Request.Method)

			logger.Log.Warn("Rate limit exceeded",
				logger.WithIP(c.ClientIP()),
				zap.Int64("count", count),
				zap.Int("max_requests", maxRequests),
				zap.Duration("window", window),
			)

			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": window.Seconds(),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
