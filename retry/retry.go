// Package retry executes fallible operations with exponential backoff.
package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/marcelsud/wallet-connector/failure"
)

// Attempt describes a failed attempt that is about to be retried
type Attempt struct {
	Number int
	Delay  time.Duration
	Err    error
}

type options struct {
	sleep  func(ctx context.Context, d time.Duration) error
	notify func(Attempt)
}

// Option customizes a single Do invocation
type Option func(*options)

// WithSleep replaces the timer-based suspension, mainly for tests
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(o *options) {
		o.sleep = sleep
	}
}

// WithNotify registers a hook called before each retry suspension
func WithNotify(fn func(Attempt)) Option {
	return func(o *options) {
		o.notify = fn
	}
}

/* Do invokes fn up to policy.MaxAttempts times
 * Non-retryable failures and the last attempt's failure are returned verbatim
 * A cancelled backoff returns the last failure wrapping ctx.Err()
 * Suspension between attempts only blocks the calling goroutine
 */
func Do(ctx context.Context, policy Policy, fn func(ctx context.Context) error, opts ...Option) error {
	o := options{sleep: sleepContext}
	for _, opt := range opts {
		opt(&o)
	}

	maxAttempts := policy.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if !failure.IsRetryable(err) || attempt == maxAttempts {
			return lastErr
		}

		delay := policy.Delay(attempt, err)
		if o.notify != nil {
			o.notify(Attempt{Number: attempt, Delay: delay, Err: err})
		}
		if err := o.sleep(ctx, delay); err != nil {
			return fmt.Errorf("%w (retry aborted: %w)", lastErr, err)
		}
	}
	return lastErr
}

// DoWithResult executes fn with retry and returns both result and error
func DoWithResult[T any](ctx context.Context, policy Policy, fn func(ctx context.Context) (T, error), opts ...Option) (T, error) {
	var result T
	err := Do(ctx, policy, func(ctx context.Context) error {
		var innerErr error
		result, innerErr = fn(ctx)
		return innerErr
	}, opts...)
	return result, err
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
