package external

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"
)

// RetryConfig configures retry behavior with exponential backoff.
type RetryConfig struct {
	MaxRetries     int
	InitialDelay   time.Duration
	MaxDelay       time.Duration
	BackoffFactor  float64
	JitterFraction float64
}

var DefaultRetryConfig = RetryConfig{
	MaxRetries:     2,
	InitialDelay:   500 * time.Millisecond,
	MaxDelay:       5 * time.Second,
	BackoffFactor:  2.0,
	JitterFraction: 0.2,
}

// Options bound a single external call. Timeout applies per attempt.
type Options struct {
	Timeout time.Duration
	Retry   RetryConfig
}

func DefaultOptions() Options {
	return Options{
		Timeout: 30 * time.Second,
		Retry:   DefaultRetryConfig,
	}
}

// Result is the outcome of Call. When the external call fails Value holds
// the caller's fallback, Err the classified cause and FromFallback is set.
type Result[T any] struct {
	Value        T
	Err          error
	FromFallback bool
}

func (r Result[T]) OK() bool {
	return r.Err == nil
}

// Call runs fn under the per-attempt timeout with bounded retries. It never
// fails: on error the supplied fallback becomes the value.
func Call[T any](ctx context.Context, service string, opts Options, fn func(context.Context) (T, error), fallback T) Result[T] {
	value, err := WithRetry(ctx, opts.Retry, func(ctx context.Context) (T, error) {
		return attempt(ctx, service, opts.Timeout, fn)
	})
	if err != nil {
		return Result[T]{Value: fallback, Err: Classify(service, err), FromFallback: true}
	}
	return Result[T]{Value: value}
}

func attempt[T any](ctx context.Context, service string, timeout time.Duration, fn func(context.Context) (T, error)) (value T, err error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	defer func() {
		if r := recover(); r != nil {
			err = NewServiceError(service, CodeBadResponse, "panicked", fmt.Errorf("%v", r))
		}
	}()
	value, err = fn(ctx)
	if err != nil {
		return value, Classify(service, err)
	}
	return value, nil
}

// Backoff is the wait before retry number n, counting from zero: the
// initial delay grown by BackoffFactor per retry, capped at MaxDelay, then
// spread by up to JitterFraction either way.
func (c RetryConfig) Backoff(n int) time.Duration {
	factor := c.BackoffFactor
	if factor < 1 {
		factor = 1
	}
	d := min(float64(c.InitialDelay)*math.Pow(factor, float64(n)), float64(c.MaxDelay))
	if c.JitterFraction > 0 {
		d *= 1 + c.JitterFraction*(2*rand.Float64()-1)
	}
	return time.Duration(max(d, 0))
}

// WithRetry runs fn until it succeeds, returns a ServiceError that is not
// retryable, or has failed MaxRetries+1 times. The last error is returned.
func WithRetry[T any](ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	for n := 0; ; n++ {
		value, err := fn(ctx)
		if err == nil {
			return value, nil
		}
		var svcErr *ServiceError
		if (errors.As(err, &svcErr) && !svcErr.Retryable) || n >= cfg.MaxRetries {
			return zero, err
		}

		wait := time.NewTimer(cfg.Backoff(n))
		select {
		case <-ctx.Done():
			wait.Stop()
			return zero, ctx.Err()
		case <-wait.C:
		}
	}
}
