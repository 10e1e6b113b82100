package providers

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter spaces requests to stay under a provider's requests-per-minute
// quota and backs off after a 429.
type RateLimiter struct {
	limiter *rate.Limiter
	rpm     int

	mu          sync.Mutex
	pausedUntil time.Time
	consumed    int64
	last429     time.Time
}

// RateLimiterStatus reports current limiter state.
type RateLimiterStatus struct {
	TokensAvailable int       `json:"tokens_available"`
	TokensLimit     int       `json:"tokens_limit"`
	TotalConsumed   int64     `json:"total_consumed"`
	PausedUntil     time.Time `json:"paused_until,omitempty"`
	Last429Time     time.Time `json:"last_429_time,omitempty"`
}

// NewRateLimiter creates a limiter allowing requestsPerMinute requests with a
// burst of the full minute's quota.
func NewRateLimiter(requestsPerMinute int) *RateLimiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 30 // Groq free tier
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), requestsPerMinute),
		rpm:     requestsPerMinute,
	}
}

// Wait blocks until a request may be sent or ctx is done.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	pause := time.Until(r.pausedUntil)
	r.mu.Unlock()

	if pause > 0 {
		timer := time.NewTimer(pause)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	if err := r.limiter.Wait(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	r.consumed++
	r.mu.Unlock()
	return nil
}

// Record429 pauses all callers for retryAfter.
func (r *RateLimiter) Record429(retryAfter time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.last429 = time.Now()
	if retryAfter > 0 {
		r.pausedUntil = r.last429.Add(retryAfter)
	}
}

// Status returns current limiter status.
func (r *RateLimiter) Status() RateLimiterStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return RateLimiterStatus{
		TokensAvailable: int(r.limiter.Tokens()),
		TokensLimit:     r.rpm,
		TotalConsumed:   r.consumed,
		PausedUntil:     r.pausedUntil,
		Last429Time:     r.last429,
	}
}
