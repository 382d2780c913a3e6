package errors

import (
	stderrors "errors"
	"net/http"
)

// HTTPError represents an error with an associated HTTP status code.
type HTTPError struct {
	Code    int
	Kind    string
	Message string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTPError with the given code and message.
func NewHTTPError(code int, kind, message string) *HTTPError {
	return &HTTPError{
		Code:    code,
		Kind:    kind,
		Message: message,
	}
}

// Helpers for common errors
var (
	ErrUnauthorized = func(msg string) *HTTPError { return NewHTTPError(http.StatusUnauthorized, "unauthorized", msg) }
	ErrBadRequest   = func(msg string) *HTTPError { return NewHTTPError(http.StatusBadRequest, "invalid_request", msg) }
)

// FromDomain maps service errors onto the status codes exposed by the API.
// Unknown errors become a generic 500 so storage details never leak.
func FromDomain(err error) *HTTPError {
	var httpErr *HTTPError
	if stderrors.As(err, &httpErr) {
		return httpErr
	}
	var vErr *ValidationError
	if stderrors.As(err, &vErr) {
		return NewHTTPError(http.StatusBadRequest, "reservation_refused", vErr.Message)
	}
	switch {
	case stderrors.Is(err, ErrAlreadyBooked):
		return NewHTTPError(http.StatusBadRequest, "already_booked", ErrAlreadyBooked.Error())
	case stderrors.Is(err, ErrNotFound):
		return NewHTTPError(http.StatusNotFound, "not_found", err.Error())
	case stderrors.Is(err, ErrInvalidStatus):
		return NewHTTPError(http.StatusBadRequest, "invalid_status", err.Error())
	case stderrors.Is(err, ErrInvalidTransition):
		return NewHTTPError(http.StatusConflict, "invalid_transition", err.Error())
	case stderrors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, "invalid_credentials", err.Error())
	}
	return NewHTTPError(http.StatusInternalServerError, "internal_error", "internal error")
}
