// Package errors defines the closed set of failures that cross component
// boundaries. Every error handed to the HTTP layer is either an *Error or is
// treated as KindUnexpected.
package errors

import (
	"errors"
)

type Kind int

const (
	KindUnexpected Kind = iota
	KindValidation
	KindAuth
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindNotFound:
		return "not_found"
	default:
		return "unexpected"
	}
}

// Error carries a kind, a caller-facing message and an optional cause.
// The cause is for logs only and is never written to a response.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func Validation(message string) error {
	return &Error{Kind: KindValidation, Message: message}
}

func Auth(message string, cause error) error {
	return &Error{Kind: KindAuth, Message: message, Cause: cause}
}

func NotFound(message string) error {
	return &Error{Kind: KindNotFound, Message: message}
}

func Unexpected(message string, cause error) error {
	return &Error{Kind: KindUnexpected, Message: message, Cause: cause}
}

// KindOf reports the kind of the outermost *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnexpected
}

func IsNotFound(err error) bool {
	return err != nil && KindOf(err) == KindNotFound
}

func IsAuth(err error) bool {
	return err != nil && KindOf(err) == KindAuth
}

func IsValidation(err error) bool {
	return err != nil && KindOf(err) == KindValidation
}

// As and Is forward to the standard library so callers importing this
// package under its usual name keep access to them.
func As(err error, target any) bool {
	return errors.As(err, target)
}

func Is(err, target error) bool {
	return errors.Is(err, target)
}
