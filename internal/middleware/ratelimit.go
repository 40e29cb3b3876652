package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Ayash-Bera/campusqa/pkg/utils"
)

const (
	CodeRateLimited = "RATE_LIMITED"

	rateWindow  = time.Minute
	visitorIdle = 5 * time.Minute
)

// RateLimiter is a fixed-window, per-client-IP request limiter.
type RateLimiter struct {
	visitors map[string]*visitor
	mu       sync.Mutex
	rate     int // requests per minute
	now      func() time.Time
}

type visitor struct {
	windowStart time.Time
	lastSeen    time.Time
	count       int
}

func NewRateLimiter(rate int) *RateLimiter {
	if rate <= 0 {
		rate = 120
	}
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		rate:     rate,
		now:      time.Now,
	}
}

// Allow records a request from key and reports whether it fits the window.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	v, ok := rl.visitors[key]
	if !ok || now.Sub(v.windowStart) >= rateWindow {
		rl.visitors[key] = &visitor{windowStart: now, lastSeen: now, count: 1}
		return true
	}

	v.lastSeen = now
	if v.count >= rl.rate {
		return false
	}
	v.count++
	return true
}

func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Allow(c.ClientIP()) {
			c.Header("Retry-After", "60")
			utils.CodedErrorResponse(c, http.StatusTooManyRequests, CodeRateLimited, "Rate limit exceeded.")
			return
		}
		c.Next()
	}
}

// Run evicts idle visitors every minute until ctx is cancelled.
func (rl *RateLimiter) Run(ctx context.Context) {
	ticker := time.NewTicker(rateWindow)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.evictIdle()
		}
	}
}

func (rl *RateLimiter) evictIdle() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	evicted := 0
	for key, v := range rl.visitors {
		if now.Sub(v.lastSeen) > visitorIdle {
			delete(rl.visitors, key)
			evicted++
		}
	}
	return evicted
}
