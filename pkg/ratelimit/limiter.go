package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"igloader/pkg/config"
)

// Limiter defines the interface for rate limiting
type Limiter interface {
	// Allow checks if a request is allowed under the current rate limit
	Allow() bool
	// Wait blocks until the rate limit allows another request or ctx is done
	Wait(ctx context.Context) error
	// Reset restores the full burst
	Reset()
}

// TokenBucket implements Limiter on top of rate.Limiter
type TokenBucket struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	limiter *rate.Limiter
}

// NewTokenBucket allows requests per period with the given burst.
// NewTokenBucket(120, time.Minute, 10) refills one token every 500ms.
func NewTokenBucket(requests int, per time.Duration, burst int) *TokenBucket {
	limit := rate.Inf
	if requests > 0 && per > 0 {
		limit = rate.Every(per / time.Duration(requests))
	}
	if burst < 1 {
		burst = 1
	}
	return &TokenBucket{
		limit:   limit,
		burst:   burst,
		limiter: rate.NewLimiter(limit, burst),
	}
}

// FromConfig builds the limiter described by the rate_limit config section
func FromConfig(cfg config.RateLimitConfig) *TokenBucket {
	return NewTokenBucket(cfg.RequestsPerMinute, time.Minute, cfg.BurstSize)
}

// Unlimited never blocks
func Unlimited() *TokenBucket {
	return NewTokenBucket(0, 0, 1)
}

func (tb *TokenBucket) current() *rate.Limiter {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return tb.limiter
}

// Allow checks if a request can proceed
func (tb *TokenBucket) Allow() bool {
	return tb.current().Allow()
}

// Wait blocks until a token is available
func (tb *TokenBucket) Wait(ctx context.Context) error {
	return tb.current().Wait(ctx)
}

// Reset refills the bucket to full capacity
func (tb *TokenBucket) Reset() {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.limiter = rate.NewLimiter(tb.limit, tb.burst)
}
