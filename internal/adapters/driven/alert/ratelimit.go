package alert

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig holds rate limiting configuration for a webhook.
type RateLimitConfig struct {
	// Every is the sustained interval between alerts.
	Every time.Duration
	// BurstSize is the maximum burst size.
	BurstSize int
}

// DefaultRateLimit allows a short burst then one alert every 30 seconds.
var DefaultRateLimit = RateLimitConfig{Every: 30 * time.Second, BurstSize: 3}

// defaultRetryAfter is used when a 429 carries no Retry-After header.
const defaultRetryAfter = 60 * time.Second

// RateLimiter throttles webhook posts with a token bucket and honours
// Retry-After from the receiving service.
type RateLimiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	retryAt time.Time
	now     func() time.Time
}

// NewRateLimiter creates a rate limiter with the given configuration.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	if cfg.Every <= 0 {
		cfg.Every = DefaultRateLimit.Every
	}
	if cfg.BurstSize < 1 {
		cfg.BurstSize = 1
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Every(cfg.Every), cfg.BurstSize),
		now:     time.Now,
	}
}

// Allow reports whether an alert may be sent now. It never blocks.
func (r *RateLimiter) Allow() bool {
	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if r.now().Before(retryAt) {
		return false
	}
	return r.limiter.Allow()
}

// RecordRateLimitError backs off after a 429 response.
func (r *RateLimiter) RecordRateLimitError(retryAfter time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if retryAfter <= 0 {
		retryAfter = defaultRetryAfter
	}
	r.retryAt = r.now().Add(retryAfter)
}
