// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package errors provides the structured error type shared by every
// component in this module. HM never constructs one (it returns plain
// sentinel errors), and the cache reports lookup and insert outcomes
// through return values, using one only when its backing map cannot be
// built or a listener build fails. It exists mainly for the builder
// and provider-facing layers, where callers need to tell a contract
// violation apart from a transient provider failure.
package errors

import (
	"errors"
	"fmt"
)

// Kind defines the category of error.
type Kind int

const (
	KindUnknown Kind = iota
	KindInternal
	KindValidation
	KindNotFound
	KindConflict
	KindUnavailable
	// KindCrypto marks a failure originated by the underlying TLS/crypto
	// provider: certificate load, key load, cipher-list rejection.
	KindCrypto
)

func (k Kind) String() string {
	switch k {
	case KindInternal:
		return "internal"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindUnavailable:
		return "unavailable"
	case KindCrypto:
		return "crypto"
	default:
		return "unknown"
	}
}

// Error represents a structured error produced by this module.
type Error struct {
	Kind       Kind
	Message    string
	Underlying error
	Attributes map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Underlying)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Underlying
}

func newError(kind Kind, msg string, underlying error) *Error {
	return &Error{Kind: kind, Message: msg, Underlying: underlying}
}

// New creates a new Error of the specified kind.
func New(kind Kind, msg string) error {
	return newError(kind, msg, nil)
}

// Errorf creates a new Error of the specified kind with a formatted message.
func Errorf(kind Kind, format string, args ...any) error {
	return newError(kind, fmt.Sprintf(format, args...), nil)
}

// Wrap wraps err as a new Error of the specified kind. Returns nil if
// err is nil, so call sites can wrap the result of a fallible call
// unconditionally without an extra nil check.
func Wrap(err error, kind Kind, msg string) error {
	if err == nil {
		return nil
	}
	return newError(kind, msg, err)
}

// Wrapf is Wrap with a formatted message.
func Wrapf(err error, kind Kind, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return newError(kind, fmt.Sprintf(format, args...), err)
}

// Attr attaches an attribute to an error. If the error is not an *Error, it wraps it as KindInternal.
func Attr(err error, key string, val any) error {
	if err == nil {
		return nil
	}

	var e *Error
	if !errors.As(err, &e) {
		e = newError(KindInternal, err.Error(), err)
	}

	if e.Attributes == nil {
		e.Attributes = make(map[string]any)
	}
	e.Attributes[key] = val
	return e
}

// GetKind returns the Kind of the error, or KindUnknown if err isn't one of ours.
func GetKind(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// GetAttributes returns all attributes associated with the error and its chain.
func GetAttributes(err error) map[string]any {
	attrs := make(map[string]any)
	var e *Error

	tempErr := err
	for tempErr != nil {
		if errors.As(tempErr, &e) {
			for k, v := range e.Attributes {
				if _, ok := attrs[k]; !ok {
					attrs[k] = v
				}
			}
			tempErr = e.Underlying
		} else {
			break
		}
	}

	return attrs
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Unwrap returns the result of calling Unwrap on err, if it has one.
func Unwrap(err error) error {
	return errors.Unwrap(err)
}
