package external

import (
	"context"
	"errors"
	"fmt"
)

// Code classifies a failed external call.
type Code string

const (
	CodeUnavailable Code = "UNAVAILABLE"
	CodeTimeout     Code = "TIMEOUT"
	CodeBadResponse Code = "BAD_RESPONSE"
	CodeRateLimited Code = "RATE_LIMITED"
)

// ServiceError is returned by policy, forecaster and text-generation clients.
type ServiceError struct {
	Service   string
	Code      Code
	Message   string
	Retryable bool
	Cause     error
}

func (e *ServiceError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "call failed"
	}
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s %s: %v", e.Code, e.Service, msg, e.Cause)
	}
	return fmt.Sprintf("[%s] %s %s", e.Code, e.Service, msg)
}

func (e *ServiceError) Unwrap() error {
	return e.Cause
}

func (e *ServiceError) IsRetryable() bool {
	return e.Retryable
}

// NewServiceError builds a ServiceError; every code except BAD_RESPONSE is retryable.
func NewServiceError(service string, code Code, message string, cause error) *ServiceError {
	return &ServiceError{
		Service:   service,
		Code:      code,
		Message:   message,
		Retryable: code != CodeBadResponse,
		Cause:     cause,
	}
}

// Classify wraps an arbitrary error into a ServiceError.
func Classify(service string, err error) *ServiceError {
	if err == nil {
		return nil
	}
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return NewServiceError(service, CodeTimeout, "timed out", err)
	}
	return NewServiceError(service, CodeUnavailable, "unavailable", err)
}

// StatusCode maps an HTTP status to a ServiceError, or nil for 2xx.
func StatusCode(service string, status int, body string) *ServiceError {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == 429:
		return NewServiceError(service, CodeRateLimited, "rate limited", errors.New(body))
	case status == 408 || status == 504:
		return NewServiceError(service, CodeTimeout, fmt.Sprintf("status %d", status), errors.New(body))
	case status >= 500:
		return NewServiceError(service, CodeUnavailable, fmt.Sprintf("status %d", status), errors.New(body))
	default:
		return NewServiceError(service, CodeBadResponse, fmt.Sprintf("status %d", status), errors.New(body))
	}
}
