package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	perr "devquest/internal/platform/errors"
	"devquest/internal/services/progress/domain"

	"github.com/cenkalti/backoff/v4"
)

// Retry bounds the optimistic retry loop around one processing transaction
type Retry struct {
	Attempts int
	Base     time.Duration
	Max      time.Duration
}

func (r Retry) withDefaults() Retry {
	if r.Attempts <= 0 {
		r.Attempts = 5
	}
	if r.Base <= 0 {
		r.Base = 20 * time.Millisecond
	}
	if r.Max <= 0 {
		r.Max = 500 * time.Millisecond
	}
	if r.Max < r.Base {
		r.Max = r.Base
	}
	return r
}

// schedule is the capped exponential backoff between attempts, without jitter
func (r Retry) schedule() *backoff.ExponentialBackOff {
	eb := &backoff.ExponentialBackOff{
		InitialInterval:     r.Base,
		RandomizationFactor: 0,
		Multiplier:          2,
		MaxInterval:         r.Max,
		Stop:                backoff.Stop,
		Clock:               backoff.SystemClock,
	}
	eb.Reset()
	return eb
}

// delay is the wait before attempt n+1
func (r Retry) delay(n int) time.Duration {
	eb := r.schedule()
	var d time.Duration
	for range n {
		d = eb.NextBackOff()
	}
	return d
}

// conflict reports whether err is worth another optimistic attempt
func conflict(err error) bool {
	if errors.Is(err, domain.ErrStaleVersion) {
		return true
	}
	// a concurrent insert of the same event id loses on the unique key, the next attempt sees the duplicate
	if perr.IsDuplicateKey(err) {
		return true
	}
	return perr.IsRetryable(err)
}

// run calls fn until it succeeds, fails for a non conflict reason or attempts run out
func (r Retry) run(ctx context.Context, onRetry func(attempt int, err error), fn func(attempt int) error) error {
	attempt := 0
	op := func() error {
		attempt++
		err := fn(attempt)
		if err != nil && !conflict(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, _ time.Duration) {
		if onRetry != nil {
			onRetry(attempt, err)
		}
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(r.schedule(), uint64(r.Attempts-1)), ctx)

	err := backoff.RetryNotify(op, policy, notify)
	switch {
	case err == nil:
		return nil
	case !conflict(err):
		return err
	case ctx.Err() != nil:
		return ctx.Err()
	}
	return fmt.Errorf("%w: gave up after %d attempts: %v", domain.ErrTxConflict, attempt, err)
}
