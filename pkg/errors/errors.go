// Package errors provides structured error types for mandelzoom.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across CLI and HTTP server
//   - Machine-readable error codes for programmatic handling
//   - A clear split between client-side request errors and server-side
//     render/composite failures
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*, EMPTY_RANGE: request errors (bad parameters, never retried)
//   - RENDER_FAILED, COMPOSITE_FAILED: an external tool exited non-zero
//   - INTERNAL_*: unexpected internal errors (cache I/O, manifest writes)
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidInput, "width must be positive, got %g", w)
//	if errors.IsRequestError(err) {
//	    // 400 Bad Request
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeRenderFailed, procErr, "render frame %d", idx)
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Request errors
	ErrCodeInvalidInput      Code = "INVALID_INPUT"
	ErrCodeInvalidParameter  Code = "INVALID_PARAMETER"
	ErrCodeInvalidResolution Code = "INVALID_RESOLUTION"
	ErrCodeInvalidPath       Code = "INVALID_PATH"
	ErrCodeEmptyRange        Code = "EMPTY_RANGE"

	// External tool failures
	ErrCodeRenderFailed    Code = "RENDER_FAILED"
	ErrCodeCompositeFailed Code = "COMPOSITE_FAILED"

	// Resource not found errors
	ErrCodeNotFound Code = "NOT_FOUND"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// requestCodes are the codes surfaced to callers as client-side failures.
var requestCodes = map[Code]bool{
	ErrCodeInvalidInput:      true,
	ErrCodeInvalidParameter:  true,
	ErrCodeInvalidResolution: true,
	ErrCodeInvalidPath:       true,
	ErrCodeEmptyRange:        true,
	ErrCodeUnsupported:       true,
}

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// IsRequestError reports whether err is a client-side failure: malformed or
// out-of-range parameters. Request errors are never retried.
func IsRequestError(err error) bool {
	return requestCodes[GetCode(err)]
}

// IsRenderFailure reports whether the external renderer exited non-zero.
func IsRenderFailure(err error) bool {
	return GetCode(err) == ErrCodeRenderFailed
}

// IsCompositeFailure reports whether the external encoder exited non-zero.
func IsCompositeFailure(err error) bool {
	return GetCode(err) == ErrCodeCompositeFailed
}

// HTTPStatus maps an error to the HTTP status code the server responds with.
func HTTPStatus(err error) int {
	switch code := GetCode(err); {
	case err == nil:
		return http.StatusOK
	case requestCodes[code]:
		return http.StatusBadRequest
	case code == ErrCodeNotFound:
		return http.StatusNotFound
	case code == ErrCodeRenderFailed, code == ErrCodeCompositeFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
