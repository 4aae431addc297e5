package common

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/kassa/internal/service"
)

var (
	// ErrRateLimit indicates that an upstream API rate limit has been exceeded.
	ErrRateLimit = errors.New("rate limit exceeded")
	// ErrMaxRetries indicates that all retry attempts have been exhausted.
	ErrMaxRetries = errors.New("max retries exceeded")
)

// RetryableError tags an error with whether another attempt may succeed.
// After, when set, is how long the remote side asked us to wait.
type RetryableError struct {
	Err       error
	Retryable bool
	After     time.Duration
}

func (e *RetryableError) Error() string {
	return e.Err.Error()
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether another attempt at err may succeed.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrRateLimit) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var retryableErr *RetryableError
	if errors.As(err, &retryableErr) {
		return retryableErr.Retryable
	}
	return false
}

func withRetryDefaults(opts service.RetryOptions) service.RetryOptions {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.InitialDelay <= 0 {
		opts.InitialDelay = 100 * time.Millisecond
	}
	if opts.MaxDelay <= 0 {
		opts.MaxDelay = 30 * time.Second
	}
	if opts.Multiplier < 1 {
		opts.Multiplier = 2.0
	}
	return opts
}

// nextDelay picks the wait before the next attempt. A server hint wins, a
// bare rate limit waits the longest allowed, anything else backs off.
func nextDelay(err error, backoff time.Duration, opts service.RetryOptions) time.Duration {
	var retryableErr *RetryableError
	switch {
	case errors.As(err, &retryableErr) && retryableErr.After > 0:
		return min(retryableErr.After, opts.MaxDelay)
	case errors.Is(err, ErrRateLimit):
		return opts.MaxDelay
	default:
		return min(backoff, opts.MaxDelay)
	}
}

// WithRetry runs operation until it succeeds, the attempts run out, ctx ends,
// or it returns a *RetryableError that is not retryable.
func WithRetry(ctx context.Context, operation func(context.Context) error, opts service.RetryOptions) error {
	opts = withRetryDefaults(opts)
	backoff := opts.InitialDelay

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := operation(ctx)
		if err == nil {
			return nil
		}

		var retryableErr *RetryableError
		if errors.As(err, &retryableErr) && !retryableErr.Retryable {
			return err
		}
		if attempt >= opts.MaxAttempts {
			return fmt.Errorf("%w after %d attempts: %w", ErrMaxRetries, attempt, err)
		}

		delay := nextDelay(err, backoff, opts)
		LogWarn("Operation failed, retrying", Fields{
			"attempt":      attempt,
			"max_attempts": opts.MaxAttempts,
			"delay":        delay,
			"error":        err.Error(),
		})

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		backoff = time.Duration(float64(backoff) * opts.Multiplier)
	}
}
