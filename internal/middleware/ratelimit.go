package middleware

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"anoa.com/careerhub/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func rateLimitKey(action, subject string) string {
	return fmt.Sprintf("rate_limit:%s:%s", action, subject)
}

// CheckAndSetRateLimit claims the window for subject. It reports false while
// a previous claim is still live. A nil client always allows.
func CheckAndSetRateLimit(ctx context.Context, rdb *redis.Client, action, subject string, window time.Duration) (bool, error) {
	if rdb == nil {
		return true, nil
	}

	wasSet, err := rdb.SetNX(ctx, rateLimitKey(action, subject), "locked", window).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check rate limit in redis: %w", err)
	}
	return wasSet, nil
}

func GetRateLimitTTL(ctx context.Context, rdb *redis.Client, action, subject string) (time.Duration, error) {
	if rdb == nil {
		return 0, nil
	}
	return rdb.TTL(ctx, rateLimitKey(action, subject)).Result()
}

// Throttle allows one request per client IP and window for action. Redis
// errors let the request through.
func Throttle(rdb *redis.Client, action string, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		subject := c.ClientIP()

		ok, err := CheckAndSetRateLimit(ctx, rdb, action, subject, window)
		if err != nil {
			logger.Warn().Err(err).Str("action", action).Msg("rate limit check failed")
			c.Next()
			return
		}
		if ok {
			c.Next()
			return
		}

		ttl, _ := GetRateLimitTTL(ctx, rdb, action, subject)
		if ttl > 0 {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(ttl.Seconds()))))
		}
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests, try again later"})
	}
}
