// Package errors provides structured error types for trackview.
//
// Errors carry a machine-readable code so callers can tell a caller bug
// (a track used before it was attached) from a data problem (a fetch that
// failed, a malformed fixture) without string matching.
//
// # Error Codes
//
//   - NOT_INITIALIZED, NOT_ATTACHED: precondition violations. These indicate
//     a programming error in the embedding code and must not be swallowed.
//   - INVALID_*: input validation failures (ranges, config, formats).
//   - DATA_INCONSISTENCY: malformed render data. Rendering continues with a
//     fallback; the error is only logged.
//   - FETCH_FAILED: an injected data source call failed.
//   - NOT_FOUND, NETWORK_ERROR, INTERNAL_ERROR: backend failures.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidRange, "end %v before start %v", end, start)
//	if errors.Is(err, errors.ErrCodeInvalidRange) {
//	    // Handle validation error
//	}
//
//	err := errors.Wrap(errors.ErrCodeFetchFailed, origErr, "coverage for %s", chrom)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Precondition violations
	ErrCodeNotInitialized Code = "NOT_INITIALIZED"
	ErrCodeNotAttached    Code = "NOT_ATTACHED"

	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidRange  Code = "INVALID_RANGE"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"
	ErrCodeInvalidPath   Code = "INVALID_PATH"

	// Data errors
	ErrCodeDataInconsistency Code = "DATA_INCONSISTENCY"
	ErrCodeFetchFailed       Code = "FETCH_FAILED"

	// Resource not found errors
	ErrCodeNotFound      Code = "NOT_FOUND"
	ErrCodeTrackNotFound Code = "TRACK_NOT_FOUND"

	// Backend errors
	ErrCodeNetwork  Code = "NETWORK_ERROR"
	ErrCodeTimeout  Code = "TIMEOUT"
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

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
	for err != nil {
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Cause
	}
	return false
}

// GetCode extracts the outermost error code from an error, if available.
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

// IsPrecondition reports whether err signals that an API was used before the
// component was initialized or attached.
func IsPrecondition(err error) bool {
	return Is(err, ErrCodeNotInitialized) || Is(err, ErrCodeNotAttached)
}
