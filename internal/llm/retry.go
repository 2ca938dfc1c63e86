package llm

import (
	"context"
	"errors"
	"time"

	"asogen/internal/core"
)

// Policy is the retry configuration for provider calls: an attempt budget
// and an explicit backoff schedule. When the schedule is shorter than the
// attempt count, the last delay repeats.
type Policy struct {
	MaxAttempts int
	Backoff     []time.Duration
}

// DefaultPolicy retries three times with exponential backoff.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		Backoff:     []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second},
	}
}

// PolicyFor derives a Policy from configuration.
func PolicyFor(maxAttempts int) Policy {
	p := DefaultPolicy()
	if maxAttempts > 0 {
		p.MaxAttempts = maxAttempts
	}
	return p
}

// delay returns the backoff before attempt n (1-based attempt that just
// failed).
func (p Policy) delay(n int) time.Duration {
	if len(p.Backoff) == 0 {
		return 0
	}
	if n > len(p.Backoff) {
		n = len(p.Backoff)
	}
	return p.Backoff[n-1]
}

// WithRetry runs op up to policy.MaxAttempts times. Only retryable provider
// errors are retried; validation-class failures and non-retryable provider
// errors return immediately. Context cancellation aborts the wait and
// returns ctx.Err().
func WithRetry[T any](ctx context.Context, policy Policy, op func(context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	attempts := policy.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		var provErr *core.ProviderError
		if !errors.As(err, &provErr) || !provErr.Retryable {
			return zero, err
		}
		if attempt == attempts {
			break
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(policy.delay(attempt)):
		}
	}
	return zero, lastErr
}
