// Package domainerrors provides coded errors for the engine boundary.
//
// Every failure that crosses out of a service carries a Code so transport
// can translate it to a status and callers can branch without string
// matching. Stores return sentinel errors (pkg/platform/sentinel); services
// wrap them into coded errors here.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies an error for callers and the transport layer.
type Code string

const (
	// CodeBadRequest marks malformed or missing input. Checked locally,
	// before any store call.
	CodeBadRequest Code = "bad_request"
	// CodeNotFound marks a lookup that requires an existing record.
	CodeNotFound Code = "not_found"
	// CodeConflict marks a uniqueness violation (e.g. duplicate phone number).
	CodeConflict Code = "conflict"
	// CodeUnauthorized marks a missing or invalid credential.
	CodeUnauthorized Code = "unauthorized"
	// CodeUnavailable marks a transient store failure (timeout, connection
	// loss). Retryable by the caller; the engine never retries internally.
	CodeUnavailable Code = "unavailable"
	// CodePartial marks an operation that succeeded but left a consistency
	// window (e.g. backfill applied to some events only). Reported alongside
	// the successful result, never escalated to a hard failure.
	CodePartial Code = "partial"
	// CodeInternal marks everything else.
	CodeInternal Code = "internal"
)

// Error is a coded error with a human-readable message.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New creates a coded error.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates a coded error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Code == code
	}
	return false
}

// Is is an alias for HasCode kept for call-site readability.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// CodeOf extracts the code from err, defaulting to CodeInternal for
// uncoded errors.
func CodeOf(err error) Code {
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Code
	}
	return CodeInternal
}

// MessageOf extracts the human-readable message from err. Uncoded errors
// get a generic message so internal details never leak to callers.
func MessageOf(err error) string {
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Message
	}
	return "internal error"
}
