// Package errors defines the stable error taxonomy for the mend pipeline.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// ParseFailure indicates source text could not be parsed; retrieval
	// degrades to partial results, synthesis aborts the current intent
	ParseFailure ErrorCode = "PARSE_FAILURE"
	// LocationNotFound indicates a named element or insertion anchor could
	// not be resolved in the target file
	LocationNotFound ErrorCode = "LOCATION_NOT_FOUND"
	// InvalidIntent indicates a fix intent failed required-field or
	// fix-type validation; no patch is emitted
	InvalidIntent ErrorCode = "INVALID_INTENT"
	// HunkParseFailure indicates a malformed hunk header in a diff; the
	// hunk is skipped, other hunks are still processed
	HunkParseFailure ErrorCode = "HUNK_PARSE_FAILURE"
	// ContextMismatch indicates a hunk's declared context no longer
	// matches file content; advisory, paired with a relocation suggestion
	ContextMismatch ErrorCode = "CONTEXT_MISMATCH"
	// DryRunFailure indicates the apply-check oracle rejected a diff
	DryRunFailure ErrorCode = "DRY_RUN_FAILURE"
	// FileNotFound indicates a path/revision is absent from the repository
	FileNotFound ErrorCode = "FILE_NOT_FOUND"
	// InternalError indicates an unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// Error is a mend error with a stable code, message, and optional details
type Error struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	cause   error
}

// New creates a new Error
func New(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		cause:   cause,
	}
}

// Newf creates a new Error with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.cause
}

// WithDetail attaches a named detail to the error and returns it
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// CodeOf extracts the ErrorCode from err, or InternalError when err is not
// a mend error.
func CodeOf(err error) ErrorCode {
	var me *Error
	if errors.As(err, &me) {
		return me.Code
	}
	return InternalError
}

// AsError unpacks err into target when it carries a mend error.
func AsError(err error, target **Error) bool {
	return errors.As(err, target)
}

// Is reports whether err carries the given code.
func Is(err error, code ErrorCode) bool {
	var me *Error
	return errors.As(err, &me) && me.Code == code
}
