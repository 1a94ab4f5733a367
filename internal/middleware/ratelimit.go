package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimiter keeps one token bucket per client. Clients are keyed by
// workspace when the request names one, otherwise by IP.
type RateLimiter struct {
	retryAfter int
	limit      rate.Limit
	burst      int
	idle       time.Duration
	now        func() time.Time

	mu      sync.Mutex
	clients map[string]*client
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter allows perMinute requests per client with the given burst.
// A non-positive perMinute disables limiting.
func NewRateLimiter(perMinute, burst int) *RateLimiter {
	if burst <= 0 {
		burst = perMinute
	}
	limit, retryAfter := rate.Inf, 0
	if perMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(perMinute))
		retryAfter = (60 + perMinute - 1) / perMinute
	}
	return &RateLimiter{
		retryAfter: retryAfter,
		limit:      limit,
		burst:      burst,
		idle:       10 * time.Minute,
		now:        time.Now,
		clients:    make(map[string]*client),
	}
}

// Allow reports whether key may make a request now.
func (rl *RateLimiter) Allow(key string) bool {
	return rl.get(key).Allow()
}

func (rl *RateLimiter) get(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for k, cl := range rl.clients {
		if now.Sub(cl.lastSeen) > rl.idle {
			delete(rl.clients, k)
		}
	}

	cl, ok := rl.clients[key]
	if !ok {
		cl = &client{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[key] = cl
	}
	cl.lastSeen = now
	return cl.limiter
}

// RateLimit rejects requests over the limit with 429 RATE_LIMITED.
func RateLimit(rl *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.limit == rate.Inf {
			c.Next()
			return
		}
		key := "ip:" + c.ClientIP()
		if ws := c.GetHeader(HeaderWorkspaceID); ws != "" {
			key = "ws:" + ws
		}
		if !rl.Allow(key) {
			c.Header("Retry-After", strconv.Itoa(rl.retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error":   gin.H{"code": "RATE_LIMITED", "message": "rate limit exceeded, try again later"},
			})
			return
		}
		c.Next()
	}
}
