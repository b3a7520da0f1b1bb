package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"catalog_service/internal/rate"
)

// RateLimit throttles by caller identity when authenticated, by client
// IP otherwise. Limiter failures fail open.
func RateLimit(limiter rate.Limiter, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := OwnerID(c)
		if key == "" {
			key = c.ClientIP()
		}

		result, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			log.Warnf("rate limiter unavailable, letting request through: %v", err)
			c.Next()
			return
		}

		if !result.Allowed {
			c.Header("Retry-After", fmt.Sprintf("%.0f", result.RetryAfter.Seconds()))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many requests, please try again later",
			})
			return
		}

		c.Next()
	}
}
