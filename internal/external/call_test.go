package external

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastOptions(retries int) Options {
	return Options{
		Timeout: 50 * time.Millisecond,
		Retry: RetryConfig{
			MaxRetries:    retries,
			InitialDelay:  time.Millisecond,
			MaxDelay:      2 * time.Millisecond,
			BackoffFactor: 2,
		},
	}
}

func TestCallReturnsValue(t *testing.T) {
	res := Call(context.Background(), "policy", fastOptions(0), func(context.Context) (int, error) {
		return 42, nil
	}, -1)

	assert.True(t, res.OK())
	assert.False(t, res.FromFallback)
	assert.Equal(t, 42, res.Value)
}

func TestCallFallsBackAfterRetries(t *testing.T) {
	calls := 0
	res := Call(context.Background(), "policy", fastOptions(2), func(context.Context) (int, error) {
		calls++
		return 0, errors.New("connection refused")
	}, 7)

	require.Error(t, res.Err)
	assert.True(t, res.FromFallback)
	assert.Equal(t, 7, res.Value)
	assert.Equal(t, 3, calls)

	var svcErr *ServiceError
	require.ErrorAs(t, res.Err, &svcErr)
	assert.Equal(t, CodeUnavailable, svcErr.Code)
}

func TestCallDoesNotRetryBadResponse(t *testing.T) {
	calls := 0
	res := Call(context.Background(), "forecast", fastOptions(3), func(context.Context) (string, error) {
		calls++
		return "", NewServiceError("forecast", CodeBadResponse, "malformed", nil)
	}, "fallback")

	assert.Equal(t, 1, calls)
	assert.Equal(t, "fallback", res.Value)
}

func TestCallTimeout(t *testing.T) {
	res := Call(context.Background(), "llm", fastOptions(0), func(ctx context.Context) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}, "fallback")

	var svcErr *ServiceError
	require.ErrorAs(t, res.Err, &svcErr)
	assert.Equal(t, CodeTimeout, svcErr.Code)
	assert.Equal(t, "fallback", res.Value)
}

func TestCallRecoversPanic(t *testing.T) {
	res := Call(context.Background(), "policy", fastOptions(0), func(context.Context) ([]float64, error) {
		panic("boom")
	}, nil)

	require.Error(t, res.Err)
	assert.True(t, res.FromFallback)
	assert.Contains(t, res.Err.Error(), "boom")
}

func TestStatusCode(t *testing.T) {
	tests := []struct {
		status int
		want   Code
		nilErr bool
	}{
		{status: 200, nilErr: true},
		{status: 429, want: CodeRateLimited},
		{status: 504, want: CodeTimeout},
		{status: 503, want: CodeUnavailable},
		{status: 400, want: CodeBadResponse},
	}
	for _, tt := range tests {
		err := StatusCode("svc", tt.status, "body")
		if tt.nilErr {
			assert.Nil(t, err)
			continue
		}
		require.NotNil(t, err)
		assert.Equal(t, tt.want, err.Code)
		assert.Equal(t, tt.want != CodeBadResponse, err.Retryable)
	}
}

func TestRetryBackoff(t *testing.T) {
	cfg := RetryConfig{InitialDelay: 100 * time.Millisecond, MaxDelay: time.Second, BackoffFactor: 2}
	assert.Equal(t, 100*time.Millisecond, cfg.Backoff(0))
	assert.Equal(t, 400*time.Millisecond, cfg.Backoff(2))
	assert.Equal(t, time.Second, cfg.Backoff(5))

	cfg.JitterFraction = 0.2
	for i := 0; i < 50; i++ {
		d := cfg.Backoff(1)
		assert.GreaterOrEqual(t, d, 160*time.Millisecond)
		assert.LessOrEqual(t, d, 240*time.Millisecond)
	}
}

func TestWithRetryStopsOnWrappedPermanentError(t *testing.T) {
	calls := 0
	_, err := WithRetry(context.Background(), fastOptions(3).Retry, func(context.Context) (int, error) {
		calls++
		return 0, fmt.Errorf("decode: %w", NewServiceError("forecast", CodeBadResponse, "bad body", nil))
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)

	calls = 0
	_, err = WithRetry(context.Background(), fastOptions(2).Retry, func(context.Context) (int, error) {
		calls++
		return 0, errors.New("connection reset")
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
}
