// Package retry runs an operation under a bounded-attempt backoff policy.
package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/jdrag/internal/core/domain"
)

// BackoffFunc returns the delay to wait after the given failed attempt (0-based).
// Implementations must be monotonically non-decreasing in attempt.
type BackoffFunc func(attempt int) time.Duration

// Exponential returns base × 2^attempt.
func Exponential(base time.Duration) BackoffFunc {
	return func(attempt int) time.Duration {
		return base << attempt
	}
}

// Linear returns base × (attempt+1).
func Linear(base time.Duration) BackoffFunc {
	return func(attempt int) time.Duration {
		return base * time.Duration(attempt+1)
	}
}

// Constant returns base regardless of attempt.
func Constant(base time.Duration) BackoffFunc {
	return func(int) time.Duration {
		return base
	}
}

// Policy bounds how often and how patiently an operation is retried.
type Policy struct {
	// MaxAttempts is the total number of calls, including the first.
	MaxAttempts int

	// Backoff computes the wait after each failed attempt.
	// Nil means retry immediately.
	Backoff BackoffFunc

	// OnRetry, if set, is called before each wait with the failed attempt
	// number (0-based), its error and the upcoming delay.
	OnRetry func(attempt int, err error, delay time.Duration)
}

// New returns a policy with the given attempts and backoff.
func New(maxAttempts int, backoff BackoffFunc) (Policy, error) {
	p := Policy{MaxAttempts: maxAttempts, Backoff: backoff}
	if err := p.Validate(); err != nil {
		return Policy{}, err
	}
	return p, nil
}

// Validate checks the policy can make at least one attempt.
func (p Policy) Validate() error {
	if p.MaxAttempts < 1 {
		return fmt.Errorf("%w: retry attempts must be at least 1, got %d", domain.ErrConfiguration, p.MaxAttempts)
	}
	return nil
}

// Do calls op until it succeeds, the attempts are exhausted or ctx is done.
//
// It returns nil on success, the last operation error when attempts run out,
// or ctx.Err() if the context ends first. Waiting between attempts blocks
// only the calling goroutine.
func (p Policy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	attempts := max(p.MaxAttempts, 1)

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}
		if attempt == attempts-1 {
			break
		}

		delay := p.delay(attempt)
		if p.OnRetry != nil {
			p.OnRetry(attempt, lastErr, delay)
		}
		if err := sleep(ctx, delay); err != nil {
			return err
		}
	}

	return fmt.Errorf("after %d attempts: %w", attempts, lastErr)
}

// Wrap binds op to the policy so it can be passed around as a plain function.
func (p Policy) Wrap(op func(ctx context.Context) error) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		return p.Do(ctx, op)
	}
}

func (p Policy) delay(attempt int) time.Duration {
	if p.Backoff == nil {
		return 0
	}
	return max(p.Backoff(attempt), 0)
}

func sleep(ctx context.Context, d time.Duration) error {
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
