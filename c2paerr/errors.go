// Package c2paerr defines the closed set of error kinds returned by the
// public API of the certificate, resource and content credential packages.
//
// Every library error (I/O, ASN.1/X.509, CBOR, manifest assembly) is converted
// into a Failure at the package boundary with its original message preserved.
// The wrapped error stays reachable through errors.Is and errors.As.
package c2paerr

import (
	"errors"
	"fmt"
)

// Kind discriminates the error taxonomy.
type Kind int

const (
	// KindFailure wraps any underlying I/O, cryptographic, encoding or manifest error.
	KindFailure Kind = iota
	// KindUnexpected is reserved for internal invariant violations.
	KindUnexpected
)

func (k Kind) String() string {
	switch k {
	case KindFailure:
		return "Failure"
	case KindUnexpected:
		return "Unexpected"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Common errors for callers to test.
var (
	ErrNoBytesOrPath        = errors.New("no bytes or path")
	ErrUnsupported          = errors.New("not implemented")
	ErrNoAlgorithmSucceeded = errors.New("no supported signing algorithm succeeded")
	ErrPoisoned             = errors.New("content credentials are unusable after a panic while the manifest was locked")
	ErrFinalized            = errors.New("manifest was already signed and can no longer be modified")
)

// Error is the single error type surfaced by the public API.
type Error struct {
	Kind    Kind
	Message string
	// ID is only set for KindUnexpected.
	ID int32

	err error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindUnexpected:
		return fmt.Sprintf("unexpected id: %d", e.ID)
	default:
		return "failed with message: " + e.Message
	}
}

func (e *Error) Unwrap() error {
	return e.err
}

// Is reports whether target is an *Error of the same kind, so that
// errors.Is(err, &Error{Kind: KindUnexpected}) matches any unexpected error.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || t == nil {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message) && (t.ID == 0 || t.ID == e.ID)
}

// Failure converts err into a KindFailure error. A nil err yields nil and an
// err that already is a *Error is returned unchanged.
func Failure(err error) error {
	if err == nil {
		return nil
	}
	var existing *Error
	if errors.As(err, &existing) {
		return err
	}
	return &Error{Kind: KindFailure, Message: err.Error(), err: err}
}

// Failuref creates a KindFailure error from a format string. %w verbs are
// honored so the cause stays reachable.
func Failuref(format string, args ...any) error {
	cause := fmt.Errorf(format, args...)
	return &Error{Kind: KindFailure, Message: cause.Error(), err: cause}
}

// FailureWithCause creates a KindFailure error whose message is exactly
// message while err stays reachable through errors.Is and errors.As.
func FailureWithCause(message string, err error) error {
	return &Error{Kind: KindFailure, Message: message, err: err}
}

// Unexpected creates a KindUnexpected error for the given invariant id.
func Unexpected(id int32) error {
	return &Error{Kind: KindUnexpected, ID: id}
}

// IsFailure reports whether err carries a KindFailure error.
func IsFailure(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindFailure
}
