// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across stages.
package httputil

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/rs/zerolog"
)

// RetryBaseDelay controls the base duration for exponential backoff
// between attempts. Tests override this to avoid real sleeps.
var RetryBaseDelay = 2 * time.Second

// maxBackoff caps a single backoff wait.
const maxBackoff = 60 * time.Second

type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent wraps err so that Retry stops immediately and returns it.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Retry calls fn until it succeeds, returns a Permanent error, or has been
// retried maxRetries times. The wait before retry n (1-based) is
// RetryBaseDelay * 2^(n-1), capped at one minute. A negative maxRetries is
// treated as zero.
//
// It returns the number of attempts made and the last error, unwrapped
// from Permanent. If the context is cancelled during a backoff wait the
// function returns ctx.Err().
func Retry(ctx context.Context, maxRetries int, fn func(attempt int) error) (int, error) {
	if maxRetries < 0 {
		maxRetries = 0
	}
	log := zerolog.Ctx(ctx)

	for attempt := 0; ; attempt++ {
		err := fn(attempt)
		if err == nil {
			return attempt + 1, nil
		}

		var perm *permanentError
		if errors.As(err, &perm) {
			return attempt + 1, perm.err
		}

		if attempt >= maxRetries {
			return attempt + 1, err
		}

		backoff := Backoff(attempt)
		log.Warn().Err(err).
			Int("attempt", attempt+1).
			Int("max_retries", maxRetries).
			Dur("backoff", backoff).
			Msg("request failed, retrying")

		select {
		case <-ctx.Done():
			return attempt + 1, ctx.Err()
		case <-time.After(backoff):
		}
	}
}

// Backoff returns the wait before the retry that follows attempt (0-based).
func Backoff(attempt int) time.Duration {
	d := time.Duration(math.Pow(2, float64(attempt))) * RetryBaseDelay
	if d > maxBackoff || d <= 0 {
		return maxBackoff
	}
	return d
}
