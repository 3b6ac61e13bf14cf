package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/tradedash/internal/domain/dto"
)

// client is one IP's counter in the current window.
type client struct {
	windowStart time.Time
	count       int
}

// RateLimiter allows up to limit requests per window for each client IP and
// answers 429 beyond that. A limit <= 0 disables it.
//
// State lives in memory, per returned handler; several replicas each keep
// their own counters.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	var (
		mu      sync.Mutex
		clients = make(map[string]*client)
	)

	return func(c *gin.Context) {
		if limit <= 0 {
			c.Next()
			return
		}

		ip := c.ClientIP()
		now := time.Now()

		mu.Lock()
		cl, ok := clients[ip]
		if !ok || now.Sub(cl.windowStart) > window {
			cl = &client{windowStart: now}
			clients[ip] = cl
		}
		cl.count++
		exceeded := cl.count > limit
		reset := cl.windowStart.Add(window)
		mu.Unlock()

		if exceeded {
			c.Header("Retry-After", retryAfter(reset.Sub(now)))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.NewErrorResponse("rate limit exceeded", nil))
			return
		}

		c.Next()
	}
}

func retryAfter(d time.Duration) string {
	secs := int(d.Round(time.Second) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}
