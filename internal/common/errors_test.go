package common

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/Veraticus/clarify/internal/model"
	"github.com/Veraticus/clarify/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNetError struct {
	timeout bool
}

func (e *fakeNetError) Error() string   { return "dial tcp: connection refused" }
func (e *fakeNetError) Timeout() bool   { return e.timeout }
func (e *fakeNetError) Temporary() bool { return false }

func TestCategorize(t *testing.T) {
	t.Run("prefers structured signals over message text", func(t *testing.T) {
		// The message says "rate limit" but the status code says
		// auth; the status code wins.
		err := fmt.Errorf("request failed: %w", &HTTPStatusError{
			StatusCode: http.StatusUnauthorized,
			Body:       "rate limit exceeded",
		})
		assert.Equal(t, model.CategoryAuthFailed, Categorize(err))
	})

	t.Run("maps HTTP status codes", func(t *testing.T) {
		cases := map[int]model.ErrorCategory{
			http.StatusUnauthorized:        model.CategoryAuthFailed,
			http.StatusForbidden:           model.CategoryPermissionDenied,
			http.StatusTooManyRequests:     model.CategoryQuotaExceeded,
			http.StatusNotFound:            model.CategoryModelUnavailable,
			http.StatusInternalServerError: model.CategoryModelUnavailable,
			http.StatusBadGateway:          model.CategoryModelUnavailable,
			http.StatusBadRequest:          model.CategoryUnknown,
		}
		for status, want := range cases {
			got := Categorize(&HTTPStatusError{StatusCode: status})
			assert.Equal(t, want, got, "status %d", status)
		}
	})

	t.Run("distinguishes cancellation from timeout", func(t *testing.T) {
		assert.Equal(t, model.CategoryCancelled, Categorize(context.Canceled))
		assert.Equal(t, model.CategoryTimeout, Categorize(context.DeadlineExceeded))

		wrapped := fmt.Errorf("enhance: %w", context.Canceled)
		assert.Equal(t, model.CategoryCancelled, Categorize(wrapped))
	})

	t.Run("classifies net.Error by its timeout flag", func(t *testing.T) {
		var timeoutErr net.Error = &fakeNetError{timeout: true}
		assert.Equal(t, model.CategoryTimeout, Categorize(timeoutErr))

		var refusedErr net.Error = &fakeNetError{}
		assert.Equal(t, model.CategoryNetworkError, Categorize(refusedErr))
	})

	t.Run("falls back to message matching", func(t *testing.T) {
		cases := map[string]model.ErrorCategory{
			"rate limit exceeded":             model.CategoryQuotaExceeded,
			"monthly quota exhausted":         model.CategoryQuotaExceeded,
			"invalid api key":                 model.CategoryAuthFailed,
			"request timeout":                 model.CategoryTimeout,
			"permission denied for workspace": model.CategoryPermissionDenied,
			"network unreachable":             model.CategoryNetworkError,
			"model temporarily unavailable":   model.CategoryModelUnavailable,
			"something inexplicable":          model.CategoryUnknown,
		}
		for msg, want := range cases {
			assert.Equal(t, want, Categorize(errors.New(msg)), "message %q", msg)
		}
	})

	t.Run("nil is unknown", func(t *testing.T) {
		assert.Equal(t, model.CategoryUnknown, Categorize(nil))
	})
}

func TestErrorCategoryRecoverable(t *testing.T) {
	recoverable := []model.ErrorCategory{
		model.CategoryQuotaExceeded,
		model.CategoryAuthFailed,
		model.CategoryNetworkError,
		model.CategoryTimeout,
		model.CategoryModelUnavailable,
		model.CategoryPermissionDenied,
	}
	for _, category := range recoverable {
		assert.True(t, category.Recoverable(), "category %s", category)
	}

	assert.False(t, model.CategoryUnknown.Recoverable())
	assert.False(t, model.CategoryCancelled.Recoverable())
}

func TestNextStep(t *testing.T) {
	// Every category gets non-empty, actionable advice.
	for _, category := range []model.ErrorCategory{
		model.CategoryQuotaExceeded,
		model.CategoryAuthFailed,
		model.CategoryNetworkError,
		model.CategoryTimeout,
		model.CategoryModelUnavailable,
		model.CategoryPermissionDenied,
		model.CategoryCancelled,
		model.CategoryUnknown,
	} {
		assert.NotEmpty(t, NextStep(category))
	}
}

func TestUserError(t *testing.T) {
	inner := errors.New("status 401")
	err := NewUserError("Authentication failed.", "Configure a valid API key.", inner)

	assert.Contains(t, err.Error(), "Authentication failed.")
	assert.Contains(t, err.Error(), "Configure a valid API key.")
	assert.True(t, errors.Is(err, inner))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(ErrRateLimit))
	assert.True(t, IsRetryable(fmt.Errorf("wrapped: %w", context.DeadlineExceeded)))
	assert.True(t, IsRetryable(&RetryableError{Err: errors.New("transient"), Retryable: true}))
	assert.False(t, IsRetryable(&RetryableError{Err: errors.New("permanent"), Retryable: false}))
	assert.False(t, IsRetryable(errors.New("bare")))
}

func TestWithRetry(t *testing.T) {
	opts := service.RetryOptions{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2,
	}

	t.Run("retries transient errors until success", func(t *testing.T) {
		attempts := 0
		err := WithRetry(context.Background(), func() error {
			attempts++
			if attempts < 3 {
				return &RetryableError{Err: errors.New("transient"), Retryable: true}
			}
			return nil
		}, opts)
		require.NoError(t, err)
		assert.Equal(t, 3, attempts)
	})

	t.Run("does not retry errors marked permanent", func(t *testing.T) {
		attempts := 0
		err := WithRetry(context.Background(), func() error {
			attempts++
			return &RetryableError{Err: errors.New("permanent"), Retryable: false}
		}, opts)
		require.Error(t, err)
		assert.Equal(t, 1, attempts)
	})

	t.Run("surfaces ErrMaxRetries when attempts are exhausted", func(t *testing.T) {
		err := WithRetry(context.Background(), func() error {
			return errors.New("flaky")
		}, opts)
		require.ErrorIs(t, err, ErrMaxRetries)
	})
}
