// internal/judge/retry.go
package judge

import (
	"context"
	"math"
	"time"
)

// RetryPolicy controls how failed judge calls are retried with exponential
// backoff.
type RetryPolicy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	Multiplier   float64
	MaxDelay     time.Duration
}

// DefaultRetryPolicy returns the judge retry schedule: 7 attempts, 1s
// initial delay, 2x multiplier, 16s max delay.
func DefaultRetryPolicy() *RetryPolicy {
	return &RetryPolicy{
		MaxAttempts:  7,
		InitialDelay: 1 * time.Second,
		Multiplier:   2.0,
		MaxDelay:     16 * time.Second,
	}
}

// NextDelay returns the backoff delay for the given attempt number
// (1-indexed). The delay is InitialDelay * Multiplier^(attempt-1), capped at
// MaxDelay.
func (p *RetryPolicy) NextDelay(attempt int) time.Duration {
	delay := float64(p.InitialDelay) * math.Pow(p.Multiplier, float64(attempt-1))
	if delay > float64(p.MaxDelay) {
		return p.MaxDelay
	}
	return time.Duration(delay)
}

// Execute runs fn up to MaxAttempts times, sleeping between retries with
// exponential backoff. Sleeps respect context cancellation. Returns nil on
// success or the last error once attempts are exhausted.
func (p *RetryPolicy) Execute(ctx context.Context, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if attempt < p.MaxAttempts {
			select {
			case <-time.After(p.NextDelay(attempt)):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return lastErr
}
