package errors

import (
	"fmt"
	"net/http"
)

// Error codes used in API response envelopes.
const (
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeForbidden           = "FORBIDDEN"
	CodeNotFound            = "NOT_FOUND"
	CodeInvalidInput        = "INVALID_INPUT"
	CodePaymentNotConfirmed = "PAYMENT_NOT_CONFIRMED"
	CodeTooManyRequests     = "TOO_MANY_REQUESTS"
	CodeInternal            = "INTERNAL"
)

// ErrNotFound is returned when a resource is not found
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrUnauthorized is returned when authentication fails
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "unauthorized"
}

// ErrForbidden is returned when the caller is authenticated but does not
// own the resource or lacks the required role
type ErrForbidden struct {
	Message string
}

func (e *ErrForbidden) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "forbidden"
}

// ErrValidation is returned when validation or a request precondition fails
type ErrValidation struct {
	Message string
	Fields  map[string]string
}

func (e *ErrValidation) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "validation failed"
}

// ErrPaymentNotConfirmed is returned when a checkout session has not been paid
type ErrPaymentNotConfirmed struct {
	SessionID string
	Status    string
}

func (e *ErrPaymentNotConfirmed) Error() string {
	return fmt.Sprintf("payment not confirmed for session %s: status %q", e.SessionID, e.Status)
}

// ErrTooManyRequests is returned when an upstream provider reports a rate limit
type ErrTooManyRequests struct {
	Message string
}

func (e *ErrTooManyRequests) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "too many requests"
}

// ErrInternal wraps unexpected failures, including malformed upstream responses
type ErrInternal struct {
	Message string
	Cause   error
}

func (e *ErrInternal) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ErrInternal) Unwrap() error {
	return e.Cause
}

// Internal wraps err as an ErrInternal with a message
func Internal(message string, err error) *ErrInternal {
	return &ErrInternal{Message: message, Cause: err}
}

// Code maps an error to its envelope code. Unknown errors are INTERNAL.
func Code(err error) string {
	switch err.(type) {
	case *ErrUnauthorized:
		return CodeUnauthorized
	case *ErrForbidden:
		return CodeForbidden
	case *ErrNotFound:
		return CodeNotFound
	case *ErrValidation:
		return CodeInvalidInput
	case *ErrPaymentNotConfirmed:
		return CodePaymentNotConfirmed
	case *ErrTooManyRequests:
		return CodeTooManyRequests
	default:
		return CodeInternal
	}
}

// HTTPStatus maps an error to the HTTP status for the envelope.
func HTTPStatus(err error) int {
	switch err.(type) {
	case *ErrUnauthorized:
		return http.StatusUnauthorized
	case *ErrForbidden:
		return http.StatusForbidden
	case *ErrNotFound:
		return http.StatusNotFound
	case *ErrValidation:
		return http.StatusUnprocessableEntity
	case *ErrPaymentNotConfirmed:
		return http.StatusPaymentRequired
	case *ErrTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Details extracts structured details for the envelope, if any.
func Details(err error) map[string]string {
	if v, ok := err.(*ErrValidation); ok && len(v.Fields) > 0 {
		return v.Fields
	}
	return nil
}
