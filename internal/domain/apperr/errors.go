// Package apperr defines the error taxonomy surfaced to API clients.
package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies an application error
type Kind string

const (
	KindBadRequest   Kind = "BAD_REQUEST"
	KindUnauthorized Kind = "UNAUTHORIZED"
	KindNotFound     Kind = "NOT_FOUND"
	KindValidation   Kind = "VALIDATION"
	KindProvider     Kind = "PROVIDER"
	KindInternal     Kind = "INTERNAL"
)

// Error is an error with an HTTP status and a client-safe message
type Error struct {
	Kind       Kind
	StatusCode int
	Message    string
	// Payload is the provider's rejection body for KindProvider errors
	Payload any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on kind so callers can use errors.Is(err, apperr.ErrNotFound)
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == ""
}

// Sentinels for errors.Is comparisons
var (
	ErrBadRequest   = &Error{Kind: KindBadRequest}
	ErrUnauthorized = &Error{Kind: KindUnauthorized}
	ErrNotFound     = &Error{Kind: KindNotFound}
	ErrValidation   = &Error{Kind: KindValidation}
	ErrProvider     = &Error{Kind: KindProvider}
	ErrInternal     = &Error{Kind: KindInternal}
)

func BadRequest(message string) *Error {
	return &Error{Kind: KindBadRequest, StatusCode: http.StatusBadRequest, Message: message}
}

func Unauthorized(message string) *Error {
	if message == "" {
		message = "Unauthorized access"
	}
	return &Error{Kind: KindUnauthorized, StatusCode: http.StatusUnauthorized, Message: message}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, StatusCode: http.StatusNotFound, Message: message}
}

func Validation(message string) *Error {
	return &Error{Kind: KindValidation, StatusCode: http.StatusUnprocessableEntity, Message: message}
}

// Provider wraps a rejection returned by SignIt together with its body
func Provider(message string, payload any, err error) *Error {
	return &Error{Kind: KindProvider, StatusCode: http.StatusInternalServerError, Message: message, Payload: payload, Err: err}
}

func Internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, StatusCode: http.StatusInternalServerError, Message: message, Err: err}
}

// Wrap attaches a cause to an application error
func (e *Error) Wrap(err error) *Error {
	cp := *e
	cp.Err = err
	return &cp
}

// From extracts the application error from err's chain
func From(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// StatusCode returns the HTTP status for err, 500 when it is not classified
func StatusCode(err error) int {
	if appErr, ok := From(err); ok && appErr.StatusCode != 0 {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}
