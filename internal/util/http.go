package util

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError is an error that carries an HTTP status code. Handlers and
// hooks may return (or panic with) an HTTPError to control the status of
// the synthesized response; any other fault maps to 500.
type HTTPError struct {
	Status  int
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("http %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("http %d: %s", e.Status, http.StatusText(e.Status))
}

// Unwrap returns the underlying error.
func (e *HTTPError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target.
func (e *HTTPError) Is(target error) bool {
	var other *HTTPError
	if errors.As(target, &other) {
		return other.Status == 0 || other.Status == e.Status
	}
	return errors.Is(e.Cause, target)
}

// NewHTTPError creates a new HTTPError with the given status and message.
func NewHTTPError(status int, message string) *HTTPError {
	return &HTTPError{Status: status, Message: message}
}

// NewHTTPErrorWithCause creates a new HTTPError wrapping a cause.
func NewHTTPErrorWithCause(status int, message string, cause error) *HTTPError {
	return &HTTPError{Status: status, Message: message, Cause: cause}
}

// StatusFor maps an error to the HTTP status of the synthesized response.
// Errors that carry a status keep it; known client errors map to their
// 4xx family; everything else is a server error.
func StatusFor(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) && httpErr.Status != 0 {
		return httpErr.Status
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrPayloadTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrTimeout):
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}
