package utils

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies failures so each transport can decide how to surface them.
type ErrorKind string

const (
	KindUnauthenticated  ErrorKind = "unauthenticated"
	KindForbidden        ErrorKind = "forbidden"
	KindInvalidSignature ErrorKind = "invalid_signature"
	KindUpstream         ErrorKind = "upstream_ledger"
	KindNotFound         ErrorKind = "not_found"
	KindConflict         ErrorKind = "conflict"
	KindValidation       ErrorKind = "validation"
	KindInternal         ErrorKind = "internal"
)

// HTTPStatus is the status used on interactive routes.
func (k ErrorKind) HTTPStatus() int {
	switch k {
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindInvalidSignature, KindValidation:
		return http.StatusBadRequest
	case KindUpstream:
		return http.StatusBadGateway
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// AppError is an error with a user-safe message.
type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

func NewAppError(kind ErrorKind, message string, err error) *AppError {
	return &AppError{Kind: kind, Message: message, Err: err}
}

func Unauthenticated(message string) error { return NewAppError(KindUnauthenticated, message, nil) }
func Forbidden(message string) error       { return NewAppError(KindForbidden, message, nil) }
func NotFound(message string) error        { return NewAppError(KindNotFound, message, nil) }
func Conflict(message string) error        { return NewAppError(KindConflict, message, nil) }
func Validation(message string) error      { return NewAppError(KindValidation, message, nil) }

func Upstream(message string, err error) error {
	return NewAppError(KindUpstream, message, err)
}

func Internal(message string, err error) error {
	return NewAppError(KindInternal, message, err)
}

// KindOf returns the kind of err, or KindInternal when err carries none.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries kind.
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}
