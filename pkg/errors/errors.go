// Package errors provides structured error types for the orgchart module.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the chart model, CLI and HTTP API
//   - Machine-readable error codes for programmatic handling
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - *_NOT_FOUND: Unknown nodes, parents or stored charts
//   - SURFACE_*: Rendering surface binding violations
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeParentNotFound, "parent %q is not tracked", id)
//	if errors.Is(err, errors.ErrCodeParentNotFound) {
//	    // Handle unknown parent
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeLayout, origErr, "layout %d nodes", n)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput Code = "INVALID_INPUT"
	ErrCodeInvalidSpec  Code = "INVALID_SPEC"
	ErrCodeInvalidID    Code = "INVALID_ID"
	ErrCodeInvalidPath  Code = "INVALID_PATH"
	ErrCodeDuplicateID  Code = "DUPLICATE_ID"
	ErrCodeCycle        Code = "CYCLE"

	// Resource not found errors
	ErrCodeNotFound       Code = "NOT_FOUND"
	ErrCodeNodeNotFound   Code = "NODE_NOT_FOUND"
	ErrCodeParentNotFound Code = "PARENT_NOT_FOUND"
	ErrCodeChartNotFound  Code = "CHART_NOT_FOUND"

	// Rendering surface errors
	ErrCodeSurfaceNotBound     Code = "SURFACE_NOT_BOUND"
	ErrCodeSurfaceAlreadyBound Code = "SURFACE_ALREADY_BOUND"

	// Layout and storage errors
	ErrCodeLayout  Code = "LAYOUT_FAILED"
	ErrCodeStorage Code = "STORAGE_ERROR"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
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
// It walks the whole chain, so an inner code matches even when wrapped
// by an *Error carrying a different code.
func Is(err error, code Code) bool {
	for err != nil {
		var e *Error
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

// HTTPStatus maps an error code onto the closest HTTP status.
func HTTPStatus(err error) int {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidSpec, ErrCodeInvalidID, ErrCodeInvalidPath, ErrCodeCycle:
		return 400
	case ErrCodeNotFound, ErrCodeNodeNotFound, ErrCodeParentNotFound, ErrCodeChartNotFound:
		return 404
	case ErrCodeDuplicateID, ErrCodeSurfaceAlreadyBound:
		return 409
	case ErrCodeSurfaceNotBound:
		return 412
	case ErrCodeUnsupported:
		return 501
	default:
		return 500
	}
}
