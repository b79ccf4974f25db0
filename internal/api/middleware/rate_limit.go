package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/stratus-tools/bug-advisor/internal/services"
	"github.com/stratus-tools/bug-advisor/internal/utils"
)

const rateLimitWindow = time.Hour

// RateLimit throttles analyze requests per client IP using a Redis
// counter with a fixed window: the expiry is set on the first increment,
// so the counter resets an hour after the window opened. The limit comes
// from runtime config. Fail-open: a limiter error never blocks a
// request, and a nil Redis client disables limiting entirely.
func RateLimit(rdb *redis.Client, settings services.SettingsService, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil {
			c.Next()
			return
		}

		st, err := settings.Current(c.Request.Context())
		if err != nil {
			log.WithError(err).Warn("rate limit settings load failed")
			c.Next()
			return
		}

		key := "rate_limit:" + c.ClientIP()
		ctx := c.Request.Context()

		count, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			log.WithError(err).Warn("rate limit counter failed")
			c.Next()
			return
		}
		if count == 1 {
			_ = rdb.Expire(ctx, key, rateLimitWindow).Err()
		}

		if count > int64(st.RateLimitPerHour) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apiError{
				Code:    utils.CodeRateLimited,
				Message: "rate limit exceeded, try again later",
			})
			return
		}

		c.Next()
	}
}
