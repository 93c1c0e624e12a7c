package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for translation into an HTTP response.
type Kind string

const (
	KindValidation         Kind = "validation"
	KindMissingToken       Kind = "missing_token"
	KindInvalidToken       Kind = "invalid_token"
	KindInvalidCredentials Kind = "invalid_credentials"
	KindInvalidSession     Kind = "invalid_session"
	KindAccountLocked      Kind = "account_locked"
	KindForbidden          Kind = "forbidden"
	KindNotFound           Kind = "not_found"
	KindDuplicateAccount   Kind = "duplicate_account"
	KindRateLimited        Kind = "rate_limited"
	KindInternal           Kind = "internal"
)

// Error carries a user-visible message. Cause is logged server-side and never returned to clients.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

var (
	ErrMissingToken       = New(KindMissingToken, "Missing access token.")
	ErrInvalidToken       = New(KindInvalidToken, "Invalid or expired token.")
	ErrInvalidCredentials = New(KindInvalidCredentials, "Invalid login or password.")
	ErrInvalidSession     = New(KindInvalidSession, "Invalid session.")
	ErrAccountLocked      = New(KindAccountLocked, "Account is locked. Please contact your administrator.")
	ErrForbidden          = New(KindForbidden, "Access denied for this account type.")
	ErrDuplicateAccount   = New(KindDuplicateAccount, "Username or email already exists.")
	ErrRateLimited        = New(KindRateLimited, "Too many attempts. Please try again later.")
)

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap attaches cause to a new error of the given kind.
func Wrap(err error, kind Kind, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Message: message, Cause: err}
}

// Internal wraps err as a server failure with a generic message.
func Internal(err error, message string) *Error {
	if message == "" {
		message = "Internal server error."
	}
	return &Error{Kind: KindInternal, Message: message, Cause: err}
}

func Validation(message string) *Error {
	return New(KindValidation, message)
}

func NotFound(message string) *Error {
	return New(KindNotFound, message)
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrInvalidSession) works
// regardless of the message or cause attached.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Kind == t.Kind
	}
	return false
}

// Status maps the kind onto an HTTP status code.
func (e *Error) Status() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindMissingToken, KindInvalidToken, KindInvalidCredentials, KindInvalidSession:
		return http.StatusUnauthorized
	case KindAccountLocked, KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindDuplicateAccount:
		return http.StatusConflict
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// KindOf returns the kind of err, or KindInternal for errors outside the taxonomy.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
