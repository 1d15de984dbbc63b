package provider

import (
	"context"
	"sync"
	"time"
)

// RateLimiter is a token bucket pacing outbound inference calls.
type RateLimiter struct {
	mu         sync.Mutex
	tokens     int
	burst      int
	perToken   time.Duration
	lastRefill time.Time
}

// NewRateLimiter allows up to perSecond calls per second, with a burst of
// the same size.
func NewRateLimiter(perSecond int) *RateLimiter {
	if perSecond <= 0 {
		perSecond = 1
	}
	return &RateLimiter{
		tokens:     perSecond,
		burst:      perSecond,
		perToken:   time.Second / time.Duration(perSecond),
		lastRefill: time.Now(),
	}
}

// Wait blocks until a token is available or ctx is cancelled.
func (r *RateLimiter) Wait(ctx context.Context) error {
	for {
		r.mu.Lock()
		r.refill()
		if r.tokens > 0 {
			r.tokens--
			r.mu.Unlock()
			return nil
		}
		r.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.perToken):
		}
	}
}

func (r *RateLimiter) refill() {
	now := time.Now()
	elapsed := now.Sub(r.lastRefill)
	newTokens := int(elapsed / r.perToken)
	if newTokens > 0 {
		r.tokens += newTokens
		if r.tokens > r.burst {
			r.tokens = r.burst
		}
		r.lastRefill = r.lastRefill.Add(time.Duration(newTokens) * r.perToken)
	}
}
