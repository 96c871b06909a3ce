package internal

import (
	"errors"
	"net/http"
)

// Registration-time router errors. Route declarations are code, so these
// surface as panics during startup rather than runtime error returns.
var (
	// ErrDuplicateRoute is wrapped by the panic raised when an identical
	// (method, normalized pattern) pair is registered twice.
	ErrDuplicateRoute = errors.New("router: duplicate route")

	// ErrAmbiguousRoute is wrapped by the panic raised when a pattern could
	// match the same concrete path as an existing pattern with a different
	// parameter count for the same method.
	ErrAmbiguousRoute = errors.New("router: ambiguous route")

	// ErrInvalidPattern is wrapped by the panic raised for malformed path
	// patterns (empty segments, unnamed parameters).
	ErrInvalidPattern = errors.New("router: invalid pattern")
)

// ErrNextCalledTwice is returned when a middleware invokes its next
// continuation more than once.
var ErrNextCalledTwice = errors.New("middleware: next called more than once")

// Application-level error codes carried on HTTPError.ErrorCode.
// Clients can branch on these without parsing messages.
const (
	CodeRouteNotFound     = "route_not_found"
	CodeValidationFailure = "validation_failure"
	CodeUnauthorized      = "unauthorized"
	CodeForbidden         = "forbidden"
	CodeRateLimited       = "rate_limited"
	CodeServerFault       = "server_fault"
)

// HTTPError represents an expected HTTP failure with all data needed for
// rendering the error envelope. It implements the error interface.
type HTTPError struct {
	// Err is the underlying error (for logging, never exposed to clients).
	Err error

	// Message is the client-facing error message.
	Message string

	// Detail is an optional extended description, exposed only in debug mode.
	Detail string

	// ErrorCode is an application-specific error code.
	ErrorCode string

	// Code is the HTTP status code.
	Code int
}

func (e *HTTPError) Error() string {
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

func (e *HTTPError) StatusCode() int {
	return e.Code
}

// HTTPErrorOption configures an HTTPError.
type HTTPErrorOption func(*HTTPError)

// NewHTTPError creates an HTTPError with the given status code and message.
func NewHTTPError(code int, message string) *HTTPError {
	return &HTTPError{
		Code:    code,
		Message: message,
	}
}

func WithDetail(detail string) HTTPErrorOption {
	return func(e *HTTPError) {
		e.Detail = detail
	}
}

func WithErrorCode(code string) HTTPErrorOption {
	return func(e *HTTPError) {
		e.ErrorCode = code
	}
}

func WithError(err error) HTTPErrorOption {
	return func(e *HTTPError) {
		e.Err = err
	}
}

// Convenience constructors for the error taxonomy.

func ErrBadRequest(message string, opts ...HTTPErrorOption) *HTTPError {
	return newTaxonomyError(http.StatusBadRequest, CodeValidationFailure, message, opts)
}

func ErrUnauthorized(message string, opts ...HTTPErrorOption) *HTTPError {
	return newTaxonomyError(http.StatusUnauthorized, CodeUnauthorized, message, opts)
}

func ErrForbidden(message string, opts ...HTTPErrorOption) *HTTPError {
	return newTaxonomyError(http.StatusForbidden, CodeForbidden, message, opts)
}

func ErrNotFound(message string, opts ...HTTPErrorOption) *HTTPError {
	return newTaxonomyError(http.StatusNotFound, CodeRouteNotFound, message, opts)
}

func ErrTooManyRequests(message string, opts ...HTTPErrorOption) *HTTPError {
	return newTaxonomyError(http.StatusTooManyRequests, CodeRateLimited, message, opts)
}

func ErrInternal(message string, opts ...HTTPErrorOption) *HTTPError {
	return newTaxonomyError(http.StatusInternalServerError, CodeServerFault, message, opts)
}

func newTaxonomyError(status int, code, message string, opts []HTTPErrorOption) *HTTPError {
	e := NewHTTPError(status, message)
	e.ErrorCode = code
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// AsHTTPError extracts an HTTPError from an error chain.
// Returns nil if the error does not carry one.
func AsHTTPError(err error) *HTTPError {
	if err == nil {
		return nil
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return nil
}
