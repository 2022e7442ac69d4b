package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"
)

// ActorHeader carries the id of the authenticated user, set by the gateway
const ActorHeader = "X-Actor-ID"

const actorKey = "actor"

// loggingMiddleware creates a logging middleware
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		s.logger.Info("HTTP request",
			"method", method,
			"path", path,
			"status", status,
			"latency", latency.String(),
			"client_ip", c.ClientIP(),
			"actor", actorFrom(c),
		)
	}
}

// actorMiddleware copies the actor header into the request context
func actorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if actor := strings.TrimSpace(c.GetHeader(ActorHeader)); actor != "" {
			c.Set(actorKey, actor)
		}
		c.Next()
	}
}

func actorFrom(c *gin.Context) string {
	return c.GetString(actorKey)
}

// rateLimiter keeps one token bucket per client, evicting idle clients
type rateLimiter struct {
	limiters *expirable.LRU[string, *rate.Limiter]
	rate     rate.Limit
	burst    int
}

func newRateLimiter(requestsPerMin int) *rateLimiter {
	burst := requestsPerMin / 10
	if burst < 1 {
		burst = 1
	}
	return &rateLimiter{
		limiters: expirable.NewLRU[string, *rate.Limiter](
			1000,
			nil,
			5*time.Minute,
		),
		rate:  rate.Limit(float64(requestsPerMin) / 60.0),
		burst: burst,
	}
}

func (rl *rateLimiter) Allow(key string) bool {
	limiter, ok := rl.limiters.Get(key)
	if !ok {
		limiter = rate.NewLimiter(rl.rate, rl.burst)
		rl.limiters.Add(key, limiter)
	}
	return limiter.Allow()
}

// rateLimitMiddleware rejects clients exceeding the per-minute budget.
// A non-positive budget disables limiting.
func (s *Server) rateLimitMiddleware() gin.HandlerFunc {
	if s.config.RateLimitPerMin <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	rl := newRateLimiter(s.config.RateLimitPerMin)
	return func(c *gin.Context) {
		if !rl.Allow(c.ClientIP()) {
			s.logger.Info("Rate limit exceeded", "client_ip", c.ClientIP(), "path", c.Request.URL.Path)
			respondError(c, http.StatusTooManyRequests, "too many requests")
			return
		}
		c.Next()
	}
}
