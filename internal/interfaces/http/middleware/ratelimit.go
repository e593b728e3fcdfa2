package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mangodeliveries/backend/internal/interfaces/http/dto"
)

// RateLimiter answers whether a caller may proceed within the current
// window. Satisfied by the redis fixed-window limiter.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (allowed bool, remaining int, err error)
	Limit() int
}

// RateLimit throttles requests per client IP. Limiter backend failures
// fail open: a broken redis must not take the site down with it.
func RateLimit(limiter RateLimiter, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, remaining, err := limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			logger.Warn("rate limiter unavailable", zap.Error(err))
			c.Next()
			return
		}

		c.Writer.Header().Set("X-RateLimit-Limit", strconv.Itoa(limiter.Limit()))
		c.Writer.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				dto.NewAlert("Too many requests. Please slow down."))
			return
		}
		c.Next()
	}
}
