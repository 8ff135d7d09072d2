// Package apperr defines the closed set of error kinds the API surfaces.
// Call sites switch on Kind instead of doing type assertions against an
// open hierarchy.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindValidation Kind = iota
	KindUnauthorized
	KindNotFound
	KindDatabase
	KindInternal
)

// FieldError is a single violated constraint on one input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type Error struct {
	Kind    Kind
	Message string
	Fields  []FieldError
	Err     error // wrapped cause, never surfaced to clients
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type(), e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type(), e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Type is the wire name of the error kind, e.g. "ValidationError".
func (e *Error) Type() string {
	switch e.Kind {
	case KindValidation:
		return "ValidationError"
	case KindUnauthorized:
		return "UnauthorizedError"
	case KindNotFound:
		return "NotFoundError"
	case KindDatabase:
		return "DatabaseError"
	default:
		return "InternalServerError"
	}
}

// HTTPStatus maps the kind to a response status code.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Operational reports whether the error is an expected client-facing
// condition rather than a server fault.
func (e *Error) Operational() bool {
	switch e.Kind {
	case KindValidation, KindUnauthorized, KindNotFound:
		return true
	}
	return false
}

func Validation(message string, fields ...FieldError) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Database wraps a persistence failure. The underlying error is kept for
// logging but the client only ever sees the generic message.
func Database(err error) *Error {
	return &Error{Kind: KindDatabase, Message: "Database error", Err: err}
}

func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "Internal server error", Err: err}
}

// From extracts an *Error from err, or classifies it as internal.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}
