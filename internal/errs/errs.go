// Package errs holds the error taxonomy shared by services and handlers.
package errs

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindNotFound
	KindAuth
	KindForbidden
	KindTransaction
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindAuth:
		return "auth"
	case KindForbidden:
		return "forbidden"
	case KindTransaction:
		return "transaction"
	default:
		return "internal"
	}
}

// Error is a classified failure. Message is safe to show to callers; Err is
// the underlying cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	if e.Message == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches two *Error values by kind and message so sentinels declared with
// New work with errors.Is after wrapping.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == e.Message && t.Err == nil
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Validation(format string, args ...any) *Error {
	return New(KindValidation, fmt.Sprintf(format, args...))
}

func Conflict(format string, args ...any) *Error {
	return New(KindConflict, fmt.Sprintf(format, args...))
}

func NotFound(format string, args ...any) *Error {
	return New(KindNotFound, fmt.Sprintf(format, args...))
}

func Forbidden(format string, args ...any) *Error {
	return New(KindForbidden, fmt.Sprintf(format, args...))
}

// Transaction marks a failure that rolled back a unit of work. The cause is
// kept so callers can still tell an occupied seat from a database outage.
func Transaction(err error) *Error {
	return Wrap(KindTransaction, "transaction rolled back", err)
}

// KindOf returns the kind of the outermost *Error in the chain, or
// KindInternal when there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Cause returns the innermost classified error. Useful to report the domain
// reason behind a Transaction error.
func Cause(err error) error {
	var last *Error
	for err != nil {
		if e, ok := err.(*Error); ok {
			last = e
		}
		err = errors.Unwrap(err)
	}
	if last == nil {
		return nil
	}
	return last
}

func IsKind(err error, kind Kind) bool {
	for err != nil {
		if e, ok := err.(*Error); ok && e.Kind == kind {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}
