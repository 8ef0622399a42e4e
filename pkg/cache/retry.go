package cache

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors shared by tag sources. Both survive caching and retries
// unchanged so callers can classify failures with errors.Is.
var (
	ErrNotFound = errors.New("not found")
	ErrNetwork  = errors.New("network error")
)

// RetryableError marks a fetch failure as transient.
type RetryableError struct{ Err error }

// Retryable wraps err so that [Backoff.Do] tries again. A nil err stays nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error  { return e.Err }

// IsRetryable reports whether err is marked transient anywhere in its chain.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// Backoff retries a fetch while it fails with a [RetryableError], doubling
// the wait after each attempt.
type Backoff struct {
	// Attempts is the total number of calls, including the first.
	Attempts int
	// Delay is the wait before the second call.
	Delay time.Duration
}

// DefaultBackoff is applied to tag listings: three calls, 1s and 2s apart.
var DefaultBackoff = Backoff{Attempts: 3, Delay: time.Second}

// Do calls fn until it succeeds, fails permanently, runs out of attempts or
// ctx is done. The last error from fn is returned.
func (b Backoff) Do(ctx context.Context, fn func() error) error {
	attempts := max(b.Attempts, 1)
	delay := b.Delay

	var err error
	for i := range attempts {
		if err = fn(); err == nil || !IsRetryable(err) {
			return err
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
			delay *= 2
		}
	}
	return err
}

// RetryWithBackoff runs fn under [DefaultBackoff].
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return DefaultBackoff.Do(ctx, fn)
}
