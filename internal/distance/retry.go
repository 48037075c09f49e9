package distance

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"
)

// RetryConfig defines retry behavior for a single pair lookup.
type RetryConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

// DefaultRetryConfig makes two attempts in total.
var DefaultRetryConfig = RetryConfig{
	MaxAttempts:  2,
	InitialDelay: 50 * time.Millisecond,
	MaxDelay:     time.Second,
}

func (c RetryConfig) backoff() retry.Backoff {
	attempts := c.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	initial := c.InitialDelay
	if initial <= 0 {
		initial = time.Millisecond
	}

	b := retry.NewExponential(initial)
	if c.MaxDelay > 0 {
		b = retry.WithCappedDuration(c.MaxDelay, b)
	}
	return retry.WithMaxRetries(uint64(attempts-1), b)
}

// attempt runs fn under the retry budget. Every error is retryable; the
// returned error is the last one seen once the budget is spent.
func (c RetryConfig) attempt(ctx context.Context, fn func(ctx context.Context) error) error {
	return retry.Do(ctx, c.backoff(), func(ctx context.Context) error {
		if err := fn(ctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
}
