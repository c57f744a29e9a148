// Package apperr defines the closed set of error kinds that service and
// store code returns, and the mapping from kinds to HTTP status codes.
//
// Handlers should not invent new failure categories: classify an error as
// NotFound, Conflict, Invalid, or Unavailable at the place it occurs, and
// let the JSON boundary translate it.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error.
type Kind int

const (
	// Internal is the default for unclassified errors.
	Internal Kind = iota
	// NotFound means the requested document does not exist.
	NotFound
	// Conflict means a uniqueness or state constraint was violated.
	Conflict
	// Invalid means the caller supplied bad input.
	Invalid
	// Unavailable means a backend (database, storage) could not be reached.
	Unavailable
)

// Error is an application error carrying a kind and a human-readable message.
type Error struct {
	Kind    Kind
	Message string
	Err     error // wrapped cause, may be nil
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped cause.
func (e *Error) Unwrap() error { return e.Err }

// New creates an application error with the given kind and message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an application error wrapping a cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// NotFoundf creates a NotFound error with a formatted message.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Kind: NotFound, Message: fmt.Sprintf(format, args...)}
}

// Conflictf creates a Conflict error with a formatted message.
func Conflictf(format string, args ...any) *Error {
	return &Error{Kind: Conflict, Message: fmt.Sprintf(format, args...)}
}

// Invalidf creates an Invalid error with a formatted message.
func Invalidf(format string, args ...any) *Error {
	return &Error{Kind: Invalid, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of err, or Internal if err carries no kind.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// IsNotFound reports whether err is a NotFound application error.
func IsNotFound(err error) bool { return KindOf(err) == NotFound }

// IsConflict reports whether err is a Conflict application error.
func IsConflict(err error) bool { return KindOf(err) == Conflict }

// Status maps an error to the HTTP status code the JSON boundary should emit.
func Status(err error) int {
	switch KindOf(err) {
	case NotFound:
		return http.StatusNotFound
	case Conflict:
		return http.StatusConflict
	case Invalid:
		return http.StatusBadRequest
	case Unavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the client-safe message for err. Unclassified errors get a
// generic message so internal details are not exposed; the caller is
// expected to log the real error separately.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal server error"
}
