package store

import (
	"context"
	"errors"
	"time"
)

// RetryableError marks a transient failure, such as a backend that is not
// accepting connections yet. [Retry] only retries errors of this type.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retry executes fn up to attempts times with exponential backoff.
// Errors not wrapped in [RetryableError] are returned immediately. The delay
// doubles after each failed attempt. Returns the last error if all attempts
// fail, or ctx.Err() if cancelled.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	attempts = max(attempts, 1)
	var lastErr error

	for i := range attempts {
		if err := fn(); err == nil {
			return nil
		} else if lastErr = err; !isRetryable(err) {
			return err
		}

		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	return lastErr
}

func isRetryable(err error) bool {
	return errors.As(err, new(*RetryableError))
}

// OpenRetry is [Open] for servers that may start before their database:
// connection failures of the redis and mongodb backends are retried with
// backoff, anything else fails at once.
func OpenRetry(ctx context.Context, dsn string, attempts int, delay time.Duration) (Store, error) {
	var s Store
	err := Retry(ctx, attempts, delay, func() error {
		var err error
		s, err = Open(ctx, dsn)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}
