package resilience

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryPolicy implements the spec §7 transient-infrastructure policy:
// 3 attempts, exponential base 1s, capped at 10s.
type RetryPolicy struct {
	MaxAttempts uint64
	BaseDelay   backoff.BackOff
}

// DefaultRetryPolicy returns the spec-mandated defaults.
func DefaultRetryPolicy() RetryPolicy {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = 1 * time.Second
	eb.Multiplier = 2
	eb.MaxInterval = 10 * time.Second
	eb.MaxElapsedTime = 0 // bounded by attempt count instead of elapsed time
	return RetryPolicy{MaxAttempts: 3, BaseDelay: eb}
}

// Do runs fn at most MaxAttempts times in all, retrying transient failures. fn
// should return a *non-retryable* error wrapped in backoff.Permanent to
// stop early (validation/domain errors must never be retried per §7).
func (p RetryPolicy) Do(ctx context.Context, fn func() error) error {
	b := backoff.WithContext(backoff.WithMaxRetries(p.BaseDelay, p.MaxAttempts-1), ctx)
	return backoff.Retry(fn, b)
}
