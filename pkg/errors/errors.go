// Package errors provides structured error types for fyles.
//
// Every failure the pipeline can observe carries a machine-readable [Code].
// Per-icon failures (SOURCE_UNAVAILABLE, SOURCE_SIZE_EXCEEDED,
// ENCODING_FAILURE) are recorded and skipped; only OUTPUT_WRITE_FAILURE and
// configuration errors reach the caller.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidConfig, "padding must be >= 0, got %d", p)
//	if errors.Is(err, errors.ErrCodeInvalidConfig) {
//	    // Handle configuration error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeOutputWrite, origErr, "write %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Per-icon errors. These never abort a run.
	ErrCodeSourceUnavailable  Code = "SOURCE_UNAVAILABLE"
	ErrCodeSourceSizeExceeded Code = "SOURCE_SIZE_EXCEEDED"
	ErrCodeEncodingFailure    Code = "ENCODING_FAILURE"

	// Run-level errors.
	ErrCodeOutputWrite   Code = "OUTPUT_WRITE_FAILURE"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"
	ErrCodeInvalidInput  Code = "INVALID_INPUT"

	// Internal errors
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

// Fatal reports whether an error with this code aborts a run.
func (c Code) Fatal() bool {
	switch c {
	case ErrCodeSourceUnavailable, ErrCodeSourceSizeExceeded, ErrCodeEncodingFailure:
		return false
	}
	return true
}
