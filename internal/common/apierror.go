package common

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is a client-facing error carrying an HTTP-ish status code and a
// human-readable message. It wraps one of the package sentinels so callers
// can still match with errors.Is.
type APIError struct {
	Status  int
	Message string
	err     error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.err
}

// BadRequest returns a 400 APIError wrapping ErrorValidation.
func BadRequest(format string, args ...any) *APIError {
	return &APIError{Status: http.StatusBadRequest, Message: fmt.Sprintf(format, args...), err: ErrorValidation}
}

// NotFound returns a 404 APIError wrapping ErrorNotFound.
func NotFound(format string, args ...any) *APIError {
	return &APIError{Status: http.StatusNotFound, Message: fmt.Sprintf(format, args...), err: ErrorNotFound}
}

// StatusOf extracts the client-facing status code from err, defaulting to
// 500 for anything that is not an APIError.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return http.StatusInternalServerError
}
