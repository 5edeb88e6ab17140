// Package memres provides pluggable memory resources.
package memres

import (
	"errors"
	"fmt"
)

// Error represents a memory-resource error with a structured error code.
// Codes group by area: ALLOC for allocation failures, ARG for invalid
// arguments, RES for resource lifecycle misuse.
type Error struct {
	Code    string // Error code (e.g., "MR-ALLOC-5001")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support, comparing by code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewError creates a new Error with the given code and message.
func NewError(code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *Error) WithDetails(details string) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *Error) WithCause(cause error) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// ErrorCode extracts the code from an error if it is an Error.
func ErrorCode(err error) string {
	var me *Error
	if errors.As(err, &me) {
		return me.Code
	}
	return ""
}

var (
	// ErrAllocFailure indicates an allocation request cannot be satisfied
	// (exhausted capacity, unsupported alignment, out of memory).
	ErrAllocFailure = NewError("MR-ALLOC-5001", "allocation request cannot be satisfied")

	// ErrInvalidSize indicates a negative allocation size.
	ErrInvalidSize = NewError("MR-ARG-1001", "invalid allocation size")

	// ErrInvalidAlign indicates an alignment that is not a power of two.
	ErrInvalidAlign = NewError("MR-ARG-1002", "alignment must be a power of two")

	// ErrNilResource indicates a factory produced a nil resource without
	// reporting an error.
	ErrNilResource = NewError("MR-ARG-1003", "resource must not be nil")

	// ErrResourceClosed indicates a resource was used after its memory was
	// released.
	ErrResourceClosed = NewError("MR-RES-4100", "resource used after release")
)
