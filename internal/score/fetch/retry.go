package fetch

import (
	"context"
	"time"
)

// Policy is an explicit retry policy: total attempt cap, fixed inter-attempt
// delay, and a predicate deciding which errors are worth another attempt.
// The last error wins; there is no aggregation.
type Policy struct {
	Attempts  int
	Delay     time.Duration
	Retryable func(error) bool
}

// DefaultPolicy mirrors the upstream contract: 5 attempts total, 1 second
// between attempts.
func DefaultPolicy() Policy {
	return Policy{
		Attempts:  5,
		Delay:     time.Second,
		Retryable: IsRetryable,
	}
}

// Do runs fn under the policy. A non-retryable error stops immediately;
// context cancellation stops the wait between attempts.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 1; attempt <= p.Attempts; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if p.Retryable != nil && !p.Retryable(lastErr) {
			return lastErr
		}
		if attempt == p.Attempts {
			break
		}
		select {
		case <-time.After(p.Delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return lastErr
}
