package middleware

import (
	"net/http"

	"microblog/internal/services"

	"github.com/gin-gonic/gin"
)

// ConfigureClientIP decides whose forwarding headers c.ClientIP() believes. With no trusted proxies
// the socket address is used. behindCloudflare trusts CF-Connecting-IP instead.
func ConfigureClientIP(r *gin.Engine, trustedProxies []string, behindCloudflare bool) error {
	if behindCloudflare {
		r.TrustedPlatform = gin.PlatformCloudflare
	}
	return r.SetTrustedProxies(trustedProxies)
}

// RateLimit rejects requests once the caller's bucket is empty. onLimited may be nil.
func RateLimit(limiter *services.KeyedRateLimiter, onLimited func(route string)) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			if onLimited != nil {
				onLimited(c.FullPath())
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded. Please try again later.",
			})
			return
		}
		c.Next()
	}
}
