// Package errors defines the domain error taxonomy shared by services and handlers.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind classifies a DomainError for transport mapping.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuthorization
	KindInsufficientFunds
	KindNotFound
	KindConflict
	KindInvalidStateTransition
	KindPartialFailureReversed
)

// DomainError is a user-facing error with a stable code.
type DomainError struct {
	Kind    Kind
	Code    string
	Message string
	cause   error
}

func (e *DomainError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Is matches on Code so copies made by WithMessage or Wrap still satisfy errors.Is.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && t.Code == e.Code
}

func (e *DomainError) Unwrap() error {
	return e.cause
}

// WithMessage returns a copy carrying a more specific message.
func (e *DomainError) WithMessage(msg string) *DomainError {
	cp := *e
	cp.Message = msg
	return &cp
}

// Wrap returns a copy that records the underlying cause.
func (e *DomainError) Wrap(cause error) *DomainError {
	cp := *e
	cp.cause = cause
	return &cp
}

// Validation builds a validation error with the given message.
func Validation(msg string) *DomainError {
	return ErrValidation.WithMessage(msg)
}

// KindOf returns the Kind of the first DomainError in err's chain.
func KindOf(err error) Kind {
	var de *DomainError
	if stderrors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// Message returns a message safe to show to API clients.
func Message(err error) string {
	var de *DomainError
	if stderrors.As(err, &de) {
		return de.Message
	}
	return "internal error"
}

var (
	ErrValidation = &DomainError{
		Kind:    KindValidation,
		Code:    "VALIDATION_ERROR",
		Message: "invalid request",
	}
	ErrUnauthorized = &DomainError{
		Kind:    KindAuthorization,
		Code:    "AUTHORIZATION_ERROR",
		Message: "authorization failed",
	}
)
