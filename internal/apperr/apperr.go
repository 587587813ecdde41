// Package apperr defines the error kinds shared by the services and the HTTP layer.
package apperr

import (
	"errors"
	"fmt"
)

// Kind is a stable error code for a class of failures.
type Kind string

const (
	// NotFound indicates no feature row matches the requested period/location.
	NotFound Kind = "NOT_FOUND"
	// DataUnavailable indicates the snapshot or model artifact cannot be loaded.
	DataUnavailable Kind = "DATA_UNAVAILABLE"
	// UpstreamFailure indicates the chat-completion endpoint failed.
	UpstreamFailure Kind = "UPSTREAM_FAILURE"
	// InvalidInput indicates a malformed request parameter.
	InvalidInput Kind = "INVALID_INPUT"
	// Unauthorized indicates a missing or invalid credential.
	Unauthorized Kind = "UNAUTHORIZED"
	// RateLimited indicates the client exceeded its request budget.
	RateLimited Kind = "RATE_LIMITED"
	// Internal indicates an unexpected error.
	Internal Kind = "INTERNAL_ERROR"
)

// Error carries a Kind alongside the wrapped cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an error of the given kind.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message to err. A nil err yields nil.
func Wrap(kind Kind, err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or Internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// MessageOf returns the user-facing message of err.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
