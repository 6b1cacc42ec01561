package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error. Status carries the upstream HTTP
// status for transport failures and an HTTP-equivalent class otherwise.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrTokenInvalid  = New("TOKEN_INVALID", http.StatusUnauthorized, "access token is missing, malformed, or expired")
	ErrAuth          = New("AUTH_FAILED", http.StatusUnauthorized, "authorization rejected by upstream API")
	ErrFetch         = New("FETCH_FAILED", http.StatusBadGateway, "upstream fetch failed")
	ErrRefresh       = New("REFRESH_FAILED", http.StatusUnauthorized, "token refresh failed")
	ErrRefreshDenied = New("REFRESH_DISABLED", http.StatusUnauthorized, "interactive token refresh is disabled in this environment")
	ErrValidation    = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrConfig        = New("CONFIG_ERROR", http.StatusInternalServerError, "configuration error")
	ErrExport        = New("EXPORT_FAILED", http.StatusInternalServerError, "export failed")
	ErrInternal      = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal error")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
