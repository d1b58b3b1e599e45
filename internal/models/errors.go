package models

import (
	"errors"
	"fmt"
)

// ErrorKind classifies user-visible failures so the route layer can map
// them to HTTP statuses without string matching.
type ErrorKind string

const (
	ErrKindValidation   ErrorKind = "validation"
	ErrKindNotFound     ErrorKind = "not_found"
	ErrKindPrecondition ErrorKind = "precondition"
	ErrKindCollaborator ErrorKind = "collaborator"
)

// Error is a structured error with a machine-readable kind and a
// human-readable message.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewValidationError reports malformed or out-of-domain input
func NewValidationError(format string, args ...interface{}) *Error {
	return &Error{Kind: ErrKindValidation, Message: fmt.Sprintf(format, args...)}
}

// NewNotFoundError reports a missing job or summary
func NewNotFoundError(format string, args ...interface{}) *Error {
	return &Error{Kind: ErrKindNotFound, Message: fmt.Sprintf(format, args...)}
}

// NewPreconditionError reports an entity that exists but is not in the
// state the operation requires.
func NewPreconditionError(format string, args ...interface{}) *Error {
	return &Error{Kind: ErrKindPrecondition, Message: fmt.Sprintf(format, args...)}
}

// NewCollaboratorError wraps a failure from an external collaborator
func NewCollaboratorError(message string, err error) *Error {
	return &Error{Kind: ErrKindCollaborator, Message: message, Err: err}
}

// KindOf extracts the error kind, or empty string for unclassified errors
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsNotFound reports whether err is a not-found error
func IsNotFound(err error) bool {
	return KindOf(err) == ErrKindNotFound
}

// IsValidation reports whether err is a validation error
func IsValidation(err error) bool {
	return KindOf(err) == ErrKindValidation
}

// IsPrecondition reports whether err is a precondition error
func IsPrecondition(err error) bool {
	return KindOf(err) == ErrKindPrecondition
}
