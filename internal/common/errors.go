// Package common provides shared utilities and types used across the application.
package common

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/Veraticus/clarify/internal/model"
)

// Common application errors.
var (
	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")

	// Provider errors.
	ErrNoProviders      = errors.New("no providers configured")
	ErrProviderFailed   = errors.New("provider request failed")
	ErrModelUnavailable = errors.New("model unavailable")

	// Storage errors.
	ErrNotFound = errors.New("not found")
)

// UserError represents an error that should be shown to the user. It
// carries one human-readable sentence plus an actionable next step;
// provider-internal payloads stay wrapped underneath.
type UserError struct {
	Err         error
	UserMessage string
	NextStep    string
}

func (e *UserError) Error() string {
	msg := e.UserMessage
	if e.NextStep != "" {
		msg = msg + " " + e.NextStep
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage, nextStep string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		NextStep:    nextStep,
		Err:         err,
	}
}

// HTTPStatusError preserves the structured status code from a provider
// response so classification does not depend on message matching.
type HTTPStatusError struct {
	StatusCode int
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("provider API error (status %d): %s", e.StatusCode, e.Body)
}

// Categorize maps an error onto the workflow error taxonomy. Structured
// signals (HTTP status codes, context errors, net.Error) are preferred;
// string matching on the message is the last resort.
func Categorize(err error) model.ErrorCategory {
	if err == nil {
		return model.CategoryUnknown
	}

	// Cancellation is its own outcome, never conflated with timeout.
	if errors.Is(err, context.Canceled) {
		return model.CategoryCancelled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return model.CategoryTimeout
	}

	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		return categorizeStatus(statusErr.StatusCode)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return model.CategoryTimeout
		}
		return model.CategoryNetworkError
	}

	if errors.Is(err, ErrModelUnavailable) {
		return model.CategoryModelUnavailable
	}

	return categorizeMessage(err.Error())
}

func categorizeStatus(status int) model.ErrorCategory {
	switch {
	case status == http.StatusUnauthorized:
		return model.CategoryAuthFailed
	case status == http.StatusForbidden:
		return model.CategoryPermissionDenied
	case status == http.StatusTooManyRequests:
		return model.CategoryQuotaExceeded
	case status == http.StatusNotFound:
		return model.CategoryModelUnavailable
	case status >= 500:
		return model.CategoryModelUnavailable
	default:
		return model.CategoryUnknown
	}
}

// categorizeMessage is the fallback for non-standard error shapes.
func categorizeMessage(msg string) model.ErrorCategory {
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "rate limit") || strings.Contains(lower, "quota"):
		return model.CategoryQuotaExceeded
	case strings.Contains(lower, "unauthorized") || strings.Contains(lower, "api key") || strings.Contains(lower, "authentication"):
		return model.CategoryAuthFailed
	case strings.Contains(lower, "timeout") || strings.Contains(lower, "deadline"):
		return model.CategoryTimeout
	case strings.Contains(lower, "permission") || strings.Contains(lower, "consent") || strings.Contains(lower, "forbidden"):
		return model.CategoryPermissionDenied
	case strings.Contains(lower, "connection") || strings.Contains(lower, "network") || strings.Contains(lower, "dns"):
		return model.CategoryNetworkError
	case strings.Contains(lower, "model") && strings.Contains(lower, "unavailable"):
		return model.CategoryModelUnavailable
	default:
		return model.CategoryUnknown
	}
}

// NextStep returns the actionable advice shown alongside each error
// category.
func NextStep(category model.ErrorCategory) string {
	switch category {
	case model.CategoryQuotaExceeded:
		return "Wait for the rate limit window to reset before retrying."
	case model.CategoryAuthFailed:
		return "Configure a valid API key for the provider."
	case model.CategoryNetworkError:
		return "Check your network connection and retry."
	case model.CategoryTimeout:
		return "The provider took too long; retry the request."
	case model.CategoryModelUnavailable:
		return "Select a different model or provider in your configuration."
	case model.CategoryPermissionDenied:
		return "Grant the required permission and retry."
	case model.CategoryCancelled:
		return "The request was cancelled."
	default:
		return "Retry, and report the issue if it persists."
	}
}

// IsRetryable determines if an error should trigger a retry.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrRateLimit) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var retryableErr *RetryableError
	if errors.As(err, &retryableErr) {
		return retryableErr.Retryable
	}

	return false
}
