// File: internal/middleware/ratelimit.go
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	limit "github.com/yangxikun/gin-limit-by-key"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"travel_agent_backend/internal/common"
)

// limiterIdleExpiry is how long a client's limiter is kept after its last request.
const limiterIdleExpiry = time.Hour

// RateLimit allows perMinute requests per client IP with a burst of the same size.
// A non-positive perMinute disables limiting.
func RateLimit(perMinute int, logger *zap.Logger) gin.HandlerFunc {
	if perMinute <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	every := rate.Every(time.Minute / time.Duration(perMinute))
	return limit.NewRateLimiter(
		func(c *gin.Context) string {
			return c.ClientIP()
		},
		func(c *gin.Context) (*rate.Limiter, time.Duration) {
			return rate.NewLimiter(every, perMinute), limiterIdleExpiry
		},
		func(c *gin.Context) {
			logger.Info("Rate limit exceeded", zap.String("ip", c.ClientIP()), zap.String("path", c.Request.URL.Path))
			common.RespondWithError(c, common.ErrTooManyRequests)
		},
	)
}
