// Package retry provides a bounded linear-backoff retry policy for calls to external services.
package retry

import (
	"context"
	"errors"
	"time"
)

// Default policy values
const (
	DefaultRetries   = 2
	DefaultBaseDelay = 500 * time.Millisecond
)

// SleepFunc waits for d or until ctx is done
type SleepFunc func(ctx context.Context, d time.Duration) error

// Policy retries a failing call. Total attempts are Retries+1 and the wait
// after failed attempt n (0-based) is BaseDelay*(n+1).
type Policy struct {
	Retries   int
	BaseDelay time.Duration
	// Sleep defaults to SleepContext when nil
	Sleep SleepFunc
}

// ErrPermanent marks an error that must not be retried. Use Permanent to wrap errors.
var ErrPermanent = errors.New("permanent failure")

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() []error {
	return []error{e.err, ErrPermanent}
}

// Permanent wraps err so that Do stops retrying and returns it
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// DefaultPolicy returns a Policy with the default retries and base delay
func DefaultPolicy() Policy {
	return Policy{Retries: DefaultRetries, BaseDelay: DefaultBaseDelay}
}

// Attempts returns the total number of attempts Do makes
func (p Policy) Attempts() int {
	if p.Retries < 0 {
		return 1
	}
	return p.Retries + 1
}

// Delay returns the wait after failed attempt n (0-based)
func (p Policy) Delay(n int) time.Duration {
	if n < 0 {
		n = 0
	}
	return p.BaseDelay * time.Duration(n+1)
}

// MaxWait returns the total time spent sleeping when every attempt fails
func (p Policy) MaxWait() time.Duration {
	var total time.Duration
	for n := 0; n < p.Attempts()-1; n++ {
		total += p.Delay(n)
	}
	return total
}

// Do runs fn until it succeeds, returns a permanent error, or attempts are exhausted.
// It returns the number of attempts made and the last error.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context, attempt int) error) (int, error) {
	sleep := p.Sleep
	if sleep == nil {
		sleep = SleepContext
	}

	var lastErr error
	attempts := p.Attempts()
	for n := 0; n < attempts; n++ {
		if err := ctx.Err(); err != nil {
			return n, err
		}

		lastErr = fn(ctx, n)
		if lastErr == nil {
			return n + 1, nil
		}
		if errors.Is(lastErr, ErrPermanent) {
			return n + 1, lastErr
		}

		if n < attempts-1 {
			if err := sleep(ctx, p.Delay(n)); err != nil {
				return n + 1, err
			}
		}
	}
	return attempts, lastErr
}

// SleepContext waits for d, returning early with ctx.Err() when ctx is done
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Recorder is a SleepFunc that records requested delays without waiting
type Recorder struct {
	Delays []time.Duration
}

// Sleep records d and returns ctx.Err()
func (r *Recorder) Sleep(ctx context.Context, d time.Duration) error {
	r.Delays = append(r.Delays, d)
	return ctx.Err()
}
