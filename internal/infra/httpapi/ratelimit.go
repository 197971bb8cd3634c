package httpapi

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

// RateLimiter implements a simple token bucket rate limiter per client IP.
type RateLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	rate      int           // requests per window, <= 0 disables limiting
	window    time.Duration // time window
	now       func() time.Time
	lastPrune time.Time
}

type bucket struct {
	tokens    int
	lastReset time.Time
}

func NewRateLimiter(rate int, window time.Duration) *RateLimiter {
	return NewRateLimiterWithClock(rate, window, time.Now)
}

func NewRateLimiterWithClock(rate int, window time.Duration, now func() time.Time) *RateLimiter {
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimiter{
		buckets:   make(map[string]*bucket),
		rate:      rate,
		window:    window,
		now:       now,
		lastPrune: now(),
	}
}

// Allow checks if a request from the given IP should be allowed.
func (rl *RateLimiter) Allow(ip string) bool {
	if rl.rate <= 0 {
		return true
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.prune(now)

	b, exists := rl.buckets[ip]
	if !exists {
		rl.buckets[ip] = &bucket{
			tokens:    rl.rate - 1,
			lastReset: now,
		}
		return true
	}

	if now.Sub(b.lastReset) > rl.window {
		b.tokens = rl.rate
		b.lastReset = now
	}

	if b.tokens > 0 {
		b.tokens--
		return true
	}

	return false
}

// prune drops buckets idle for longer than a window. Caller holds mu.
func (rl *RateLimiter) prune(now time.Time) {
	if now.Sub(rl.lastPrune) <= rl.window {
		return
	}
	for ip, b := range rl.buckets {
		if now.Sub(b.lastReset) > rl.window {
			delete(rl.buckets, ip)
		}
	}
	rl.lastPrune = now
}

func (rl *RateLimiter) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !rl.Allow(clientIP(c)) {
			return fiber.NewError(fiber.StatusTooManyRequests, "rate limit exceeded")
		}
		return c.Next()
	}
}

// clientIP is the peer address, or the forwarded client address when the peer
// is a trusted proxy. The result is copied out of the request buffer since it
// outlives the request as a bucket key.
func clientIP(c *fiber.Ctx) string {
	return utils.CopyString(c.IP())
}
