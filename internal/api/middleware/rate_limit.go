package middleware

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiter is a simple in-memory sliding-window limiter keyed by an
// arbitrary identifier (here, always the caller's IP — there is no
// per-user identity in this service).
type RateLimiter struct {
	requests map[string][]time.Time
	mu       sync.RWMutex
	window   time.Duration
	maxReqs  int
	logger   *slog.Logger
}

func NewRateLimiter(maxReqs int, window time.Duration, logger *slog.Logger) *RateLimiter {
	rl := &RateLimiter{
		requests: make(map[string][]time.Time),
		window:   window,
		maxReqs:  maxReqs,
		logger:   logger,
	}

	go rl.cleanup()

	return rl
}

// Allow reports whether a request from identifier may proceed, recording
// it if so.
func (rl *RateLimiter) Allow(identifier string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-rl.window)

	requests := rl.requests[identifier]
	validRequests := requests[:0:0]
	for _, req := range requests {
		if req.After(cutoff) {
			validRequests = append(validRequests, req)
		}
	}

	if len(validRequests) >= rl.maxReqs {
		rl.requests[identifier] = validRequests
		return false
	}

	validRequests = append(validRequests, now)
	rl.requests[identifier] = validRequests

	return true
}

func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		cutoff := time.Now().Add(-rl.window)

		for identifier, requests := range rl.requests {
			validRequests := requests[:0:0]
			for _, req := range requests {
				if req.After(cutoff) {
					validRequests = append(validRequests, req)
				}
			}

			if len(validRequests) == 0 {
				delete(rl.requests, identifier)
			} else {
				rl.requests[identifier] = validRequests
			}
		}
		rl.mu.Unlock()
	}
}

// RateLimit gates requests by client IP. The run endpoint is the only
// costly operation this service exposes — one request spins up and tears
// down a container — so IP-based limiting is the front line against a
// caller hammering it.
func RateLimit(maxReqs int, window time.Duration, logger *slog.Logger) gin.HandlerFunc {
	limiter := NewRateLimiter(maxReqs, window, logger)

	return func(c *gin.Context) {
		identifier := c.ClientIP()

		if !limiter.Allow(identifier) {
			logger.Warn("rate limit exceeded",
				"ip", identifier,
				"max_requests", maxReqs,
				"window", window,
			)

			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": int(window.Seconds()),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// RunRateLimit bounds how often a single caller may submit a run: 30
// container lifecycles per minute, generous enough for interactive use,
// tight enough to cap the daemon's exposure to a single abusive client.
func RunRateLimit(logger *slog.Logger) gin.HandlerFunc {
	return RateLimit(30, time.Minute, logger)
}

// RunRateLimitForTest is a permissive variant for integration tests that
// exercise the run endpoint many times in quick succession.
func RunRateLimitForTest(logger *slog.Logger) gin.HandlerFunc {
	return RateLimit(10000, time.Minute, logger)
}
