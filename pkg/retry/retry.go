// Package retry implements the bounded exponential-backoff policy shared by
// knowledge-base API call sites.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

// StatusError carries an HTTP status code so the policy can decide whether
// the failure is transient.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// Policy retries an operation on designated transient HTTP statuses, waiting
// factor**attempt seconds between attempts. Backoff is deterministic; there
// is no jitter.
type Policy struct {
	MaxAttempts int
	Factor      float64

	// sleep is replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// retryableStatuses are the codes treated as transient.
var retryableStatuses = map[int]struct{}{
	429: {},
	500: {},
	502: {},
	503: {},
	504: {},
}

// DefaultPolicy matches the historical script behavior: five attempts,
// doubling backoff.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: 5, Factor: 2}
}

// Retryable reports whether err is a transient status error.
func Retryable(err error) bool {
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		return false
	}
	_, ok := retryableStatuses[statusErr.StatusCode]
	return ok
}

// Do runs op until it succeeds, fails permanently, or the attempt budget is
// exhausted. Non-retryable errors abort immediately.
func (p Policy) Do(ctx context.Context, op func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if err = op(); err == nil {
			return nil
		}
		if !Retryable(err) {
			return err
		}
		if attempt == attempts-1 {
			break
		}
		wait := time.Duration(math.Pow(p.Factor, float64(attempt)) * float64(time.Second))
		if sleepErr := p.wait(ctx, wait); sleepErr != nil {
			return sleepErr
		}
	}
	return fmt.Errorf("max attempts reached: %w", err)
}

func (p Policy) wait(ctx context.Context, d time.Duration) error {
	if p.sleep != nil {
		return p.sleep(ctx, d)
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
