package errs

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrNotSupported = errors.New("operation not supported")
	ErrUnauthorized = errors.New("unauthorized")
	ErrValidation   = errors.New("validation failed")
	ErrStale        = errors.New("page is no longer mounted")
)

// StatusError is a non-2xx answer of the remote API.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("remote api: %d %s", e.Code, http.StatusText(e.Code))
	}
	return fmt.Sprintf("remote api: %d %s", e.Code, e.Message)
}

func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Code == http.StatusNotFound
	case ErrUnauthorized:
		return e.Code == http.StatusUnauthorized
	}
	return false
}

// FieldErrors maps a form field to its message.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	return fmt.Sprintf("%s: %d field(s)", ErrValidation, len(fe))
}

func (fe FieldErrors) Unwrap() error {
	return ErrValidation
}
