package retry

import (
	"context"
	"errors"
	"time"
)

const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = 1 * time.Second
	DefaultMaxDelay    = 30 * time.Second

	// Upper bound on server-directed waits (rate limits) per operation. These
	// waits do not consume the regular attempt budget, so they need their own
	// cap to keep an operation from stalling forever on a hostile server.
	maxHintedWaits = 5
)

// DelayHinter is implemented by errors that carry a server-specified retry
// interval, e.g. an HTTP 429 with a Retry-After header. Hinted waits are
// honored as-is and do not count against the exponential backoff schedule.
type DelayHinter interface {
	RetryDelay() time.Duration
}

// Policy describes how an operation is retried: a bounded number of attempts
// with exponential backoff, and an optional predicate deciding which errors
// are worth retrying at all.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Retryable   func(error) bool
}

// DefaultPolicy returns the policy used by the supplier API client.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: DefaultMaxAttempts,
		BaseDelay:   DefaultBaseDelay,
		MaxDelay:    DefaultMaxDelay,
	}
}

// Do runs op until it succeeds, the attempt budget is exhausted, a
// non-retryable error occurs, or ctx is canceled. The last error is returned
// as-is so callers can classify it.
func (p Policy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	maxAttempts := p.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	baseDelay := p.BaseDelay
	if baseDelay <= 0 {
		baseDelay = DefaultBaseDelay
	}
	maxDelay := p.MaxDelay
	if maxDelay <= 0 {
		maxDelay = DefaultMaxDelay
	}

	var lastErr error
	hintedWaits := 0

	for attempt := 0; attempt < maxAttempts; {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}

		var hinter DelayHinter
		if errors.As(lastErr, &hinter) && hintedWaits < maxHintedWaits {
			hintedWaits++
			if err := sleep(ctx, hinter.RetryDelay()); err != nil {
				return err
			}
			continue // does not consume an attempt
		}

		if p.Retryable != nil && !p.Retryable(lastErr) {
			return lastErr
		}

		attempt++
		if attempt >= maxAttempts {
			break
		}

		// Exponential backoff: base delay doubling per attempt.
		delay := baseDelay << (attempt - 1)
		if delay > maxDelay {
			delay = maxDelay
		}
		if err := sleep(ctx, delay); err != nil {
			return err
		}
	}

	return lastErr
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
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
