package httputil

import (
	"context"
	"errors"
	"time"
)

// MaxRetryAfter caps how long a server-requested wait may hold a retry.
// GitHub can ask for an hour when the primary rate limit runs out; past
// this cap the error is returned instead.
const MaxRetryAfter = 30 * time.Second

// RetryableError marks a transient failure: a dropped connection, a 5xx
// response or a secondary rate limit. After carries the wait the server
// asked for through Retry-After, if any.
type RetryableError struct {
	Err   error
	After time.Duration
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retry runs fn up to attempts times. Only a [RetryableError] is retried.
// The backoff starts at delay and doubles, and a longer Retry-After from
// the server takes precedence. A Retry-After beyond [MaxRetryAfter] ends
// the loop with that error.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	attempts = max(attempts, 1)
	var err error
	for i := range attempts {
		if err = fn(); err == nil {
			return nil
		}
		re, ok := asRetryable(err)
		if !ok || i == attempts-1 {
			return err
		}

		if re.After > MaxRetryAfter {
			return err
		}

		t := time.NewTimer(max(delay, re.After))
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		delay *= 2
	}
	return err
}

// RetryWithBackoff retries three times starting at one second.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return Retry(ctx, 3, time.Second, fn)
}

// asRetryable finds the RetryableError in err's chain.
func asRetryable(err error) (*RetryableError, bool) {
	var re *RetryableError
	ok := errors.As(err, &re)
	return re, ok
}
