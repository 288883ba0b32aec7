// Package errors provides structured error types for the Stackforge application.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the engine, CLI and HTTP API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures and caller-contract violations
//   - *_NOT_FOUND: Resource not found
//   - DEPENDENCY_CYCLE, CONFLICTING_OVERRIDE: defects in the static tables
//   - INTERNAL_*: Unexpected internal errors
//
// Rejected feature toggles are not errors. The resolver reports them as
// values so callers can render them without an error path.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidFeature, "unknown feature %q", key)
//	if errors.Is(err, errors.ErrCodeInvalidFeature) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidTables, origErr, "load %s", path)
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
	ErrCodeInvalidInput     Code = "INVALID_INPUT"
	ErrCodeInvalidLanguage  Code = "INVALID_LANGUAGE"
	ErrCodeInvalidFramework Code = "INVALID_FRAMEWORK"
	ErrCodeInvalidTarget    Code = "INVALID_TARGET"
	ErrCodeInvalidFeature   Code = "INVALID_FEATURE"
	ErrCodeInvalidMutation  Code = "INVALID_MUTATION"
	ErrCodeInvalidProject   Code = "INVALID_PROJECT"

	// Static table authoring defects
	ErrCodeInvalidTables       Code = "INVALID_TABLES"
	ErrCodeDependencyCycle     Code = "DEPENDENCY_CYCLE"
	ErrCodeConflictingOverride Code = "CONFLICTING_OVERRIDE"

	// Resource not found errors
	ErrCodeNotFound        Code = "NOT_FOUND"
	ErrCodeProjectNotFound Code = "PROJECT_NOT_FOUND"

	// Binder errors
	ErrCodeReentrantMutation Code = "REENTRANT_MUTATION"

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

// IsContractViolation reports whether err signals invalid input from the
// caller (unknown keys, mismatched targets) rather than an internal fault.
func IsContractViolation(err error) bool {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidLanguage, ErrCodeInvalidFramework,
		ErrCodeInvalidTarget, ErrCodeInvalidFeature, ErrCodeInvalidMutation,
		ErrCodeInvalidProject:
		return true
	}
	return false
}
