package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents different types of errors that can occur
type ErrorType string

const (
	ErrorTypeValidation  ErrorType = "validation"
	ErrorTypeRequest     ErrorType = "request"
	ErrorTypeNetwork     ErrorType = "network"
	ErrorTypeRateLimit   ErrorType = "rate_limit"
	ErrorTypeAuth        ErrorType = "auth"
	ErrorTypeParsing     ErrorType = "parsing"
	ErrorTypeNotFound    ErrorType = "not_found"
	ErrorTypeServerError ErrorType = "server_error"
	ErrorTypeUnknown     ErrorType = "unknown"
)

// Error represents a backend or local failure with type information.
// Message is what the user gets to see.
type Error struct {
	Type    ErrorType
	Message string
	Code    int
	Err     error
}

func (e *Error) Error() string {
	if e.Code == 0 {
		return fmt.Sprintf("%s error: %s", e.Type, e.Message)
	}
	return fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a typed error
func New(t ErrorType, message string) *Error {
	return &Error{Type: t, Message: message}
}

// Validation reports a local input problem; no request was made
func Validation(message string) *Error {
	return &Error{Type: ErrorTypeValidation, Message: message}
}

// Network wraps a transport failure
func Network(err error) *Error {
	return &Error{
		Type:    ErrorTypeNetwork,
		Message: fmt.Sprintf("network error: %v", err),
		Err:     err,
	}
}

// FromStatus maps a non-2xx status to a typed error carrying message
func FromStatus(statusCode int, message string) *Error {
	t := ErrorTypeRequest
	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		t = ErrorTypeAuth
	case statusCode == http.StatusNotFound:
		t = ErrorTypeNotFound
	case statusCode == http.StatusTooManyRequests:
		t = ErrorTypeRateLimit
	case statusCode >= 500:
		t = ErrorTypeServerError
	}
	return &Error{Type: t, Message: message, Code: statusCode}
}

// Message returns the user facing text of err. Typed errors yield their
// Message, anything else its Error() string.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// TypeOf returns the ErrorType of err or ErrorTypeUnknown
func TypeOf(err error) ErrorType {
	var e *Error
	if errors.As(err, &e) {
		return e.Type
	}
	return ErrorTypeUnknown
}

// IsRetryable checks if an error type should be retried
func IsRetryable(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeNetwork, ErrorTypeRateLimit, ErrorTypeServerError:
		return true
	default:
		return false
	}
}

// IsRetryableStatusCode checks if an HTTP status code indicates a retryable error
func IsRetryableStatusCode(statusCode int) bool {
	switch statusCode {
	case 0: // Network error
		return true
	case 429:
		return true
	case 401, 403, 404:
		return false
	default:
		return statusCode >= 500
	}
}
