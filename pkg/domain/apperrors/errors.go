// Package apperrors defines the error taxonomy shared by the planning engine.
// Every error that crosses the service boundary carries one of the codes below,
// so callers can map failures without parsing messages.
package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

// Code identifies a class of failure.
type Code string

const (
	// CodeValidation marks a rejected state transition or malformed input.
	CodeValidation Code = "VALIDATION"

	// CodeInsufficientStock marks a reservation or consumption that exceeds availability.
	CodeInsufficientStock Code = "INSUFFICIENT_STOCK"

	// CodeConflict marks an operation refused because committed state blocks it.
	CodeConflict Code = "CONFLICT"

	// CodeNotFound marks a missing stock position, document, node or requirement.
	CodeNotFound Code = "NOT_FOUND"

	// CodeInternal marks an unexpected storage or programming failure.
	CodeInternal Code = "INTERNAL"
)

// Error is the concrete error type returned by the engine.
type Error struct {
	Code    Code
	Message string
	// Details lists the blocking items (document lines, positions) when relevant.
	Details []string
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Code))
	b.WriteString(": ")
	b.WriteString(e.Message)
	if len(e.Details) > 0 {
		b.WriteString(" [")
		b.WriteString(strings.Join(e.Details, "; "))
		b.WriteString("]")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error with the same code, so errors.Is(err, &Error{Code: CodeConflict}) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Validation creates a CodeValidation error.
func Validation(format string, args ...interface{}) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// InsufficientStock creates a CodeInsufficientStock error.
func InsufficientStock(format string, args ...interface{}) *Error {
	return &Error{Code: CodeInsufficientStock, Message: fmt.Sprintf(format, args...)}
}

// Conflict creates a CodeConflict error listing the blocking items.
func Conflict(message string, blocking ...string) *Error {
	return &Error{Code: CodeConflict, Message: message, Details: blocking}
}

// NotFound creates a CodeNotFound error for the given kind of record.
func NotFound(kind, id string) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf("%s %s not found", kind, id)}
}

// Internal wraps an unexpected failure.
func Internal(err error, format string, args ...interface{}) *Error {
	return &Error{Code: CodeInternal, Message: fmt.Sprintf(format, args...), Err: err}
}

// CodeOf returns the code of the first *Error in err's chain, or CodeInternal.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool { return hasCode(err, CodeValidation) }

// IsInsufficientStock reports whether err is an insufficient stock error.
func IsInsufficientStock(err error) bool { return hasCode(err, CodeInsufficientStock) }

// IsConflict reports whether err is a conflict error.
func IsConflict(err error) bool { return hasCode(err, CodeConflict) }

// IsNotFound reports whether err is a not found error.
func IsNotFound(err error) bool { return hasCode(err, CodeNotFound) }

func hasCode(err error, code Code) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Code == code
}
