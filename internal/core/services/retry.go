package services

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/mikenano1/STRYDA-v2-sub002/internal/core/domain"
	"github.com/mikenano1/STRYDA-v2-sub002/internal/logger"
)

// RetryPolicy bounds retries of transient store errors.
type RetryPolicy struct {
	// InitialInterval is the first wait between attempts.
	InitialInterval time.Duration

	// MaxInterval caps the wait between attempts.
	MaxInterval time.Duration

	// MaxElapsed stops retrying after this long. Zero retries until ctx is done.
	MaxElapsed time.Duration
}

// DefaultRetryPolicy retries for up to a minute.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		InitialInterval: 200 * time.Millisecond,
		MaxInterval:     5 * time.Second,
		MaxElapsed:      time.Minute,
	}
}

func (p RetryPolicy) backOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialInterval
	b.MaxInterval = p.MaxInterval
	b.MaxElapsedTime = p.MaxElapsed
	b.Reset()
	return backoff.WithContext(b, ctx)
}

// retry runs fn until it succeeds, returns a permanent error, or the
// policy gives up. Invalid input and not-found errors are never retried.
func retry(ctx context.Context, p RetryPolicy, op string, fn func() error) error {
	wrapped := func() error {
		err := fn()
		if err == nil {
			return nil
		}
		if errors.Is(err, domain.ErrInvalidInput) || errors.Is(err, domain.ErrNotFound) ||
			errors.Is(err, context.Canceled) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		logger.Warn("transient store error, retrying", "op", op, "error", err, "wait", wait)
	}
	return backoff.RetryNotify(wrapped, p.backOff(ctx), notify)
}
