// Package bounded runs operations under a maximum wait.
//
// A bounded operation that exceeds its duration is reported as ErrTimeout even if the
// underlying call is still running; its eventual result is discarded.
package bounded

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

var ErrTimeout = errors.New("deadline has elapsed")

type result[T any] struct {
	val T
	err error
}

// Run calls fn with a context limited to timeout and waits at most that long.
func Run[T any](ctx context.Context, timeout time.Duration, fn func(ctx context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan result[T], 1)
	go func() {
		val, err := fn(ctx)
		done <- result[T]{val: val, err: err}
	}()

	var zero T
	select {
	case r := <-done:
		if r.err != nil && errors.Is(r.err, context.DeadlineExceeded) {
			return zero, fmt.Errorf("%w after %s: %w", ErrTimeout, timeout, r.err)
		}
		return r.val, r.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return zero, fmt.Errorf("%w after %s", ErrTimeout, timeout)
		}
		return zero, ctx.Err()
	}
}

// Exec is Run for operations without a result value.
func Exec(ctx context.Context, timeout time.Duration, fn func(ctx context.Context) error) error {
	_, err := Run(ctx, timeout, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// BestEffort runs fn bounded by timeout and logs a failure instead of returning it.
// It reports whether fn completed successfully.
func BestEffort(ctx context.Context, log *zerolog.Logger, timeout time.Duration, action string, fn func(ctx context.Context) error) bool {
	err := Exec(ctx, timeout, fn)
	switch {
	case err == nil:
		return true
	case errors.Is(err, ErrTimeout):
		log.Error().Err(err).Msgf("%s resulted in a timeout", action)
	default:
		log.Error().Err(err).Msgf("%s failed", action)
	}
	return false
}
