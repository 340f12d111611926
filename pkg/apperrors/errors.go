// Package apperrors defines the error taxonomy shared by the booking and admin flows.
package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so handlers can pick a user-facing response.
type Kind string

const (
	KindValidation   Kind = "VALIDATION"
	KindPersistence  Kind = "PERSISTENCE"
	KindLookup       Kind = "LOOKUP"
	KindNotFound     Kind = "NOT_FOUND"
	KindNotification Kind = "NOTIFICATION"
	KindUnauthorized Kind = "UNAUTHORIZED"
	KindConflict     Kind = "CONFLICT"
)

// Error is the tagged failure returned by every data action. Message is safe to
// show to users; Err keeps the original cause for logs.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error by kind, so errors.Is(err, apperrors.NotFound) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Message == "" && t.Kind == e.Kind
}

// Sentinels usable with errors.Is.
var (
	Validation   = &Error{Kind: KindValidation}
	Persistence  = &Error{Kind: KindPersistence}
	Lookup       = &Error{Kind: KindLookup}
	NotFound     = &Error{Kind: KindNotFound}
	Notification = &Error{Kind: KindNotification}
	Unauthorized = &Error{Kind: KindUnauthorized}
	Conflict     = &Error{Kind: KindConflict}
)

// New builds a tagged error.
func New(kind Kind, op, message string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Message: message, Err: cause}
}

// NewPersistence reports a failed write.
func NewPersistence(op, message string, cause error) *Error {
	return New(KindPersistence, op, message, cause)
}

// NewLookup reports a failed read.
func NewLookup(op, message string, cause error) *Error {
	return New(KindLookup, op, message, cause)
}

// NewNotFound reports an identifier or code that did not resolve.
func NewNotFound(op, message string) *Error {
	return New(KindNotFound, op, message, nil)
}

// NewNotification reports a mail transport rejection.
func NewNotification(op, message string, cause error) *Error {
	return New(KindNotification, op, message, cause)
}

// KindOf returns the kind of the first *Error in the chain, or "" when none.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

// MessageOf returns the user-facing message of the first *Error in the chain.
func MessageOf(err error, fallback string) string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return fallback
}
