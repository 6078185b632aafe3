package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Standard sentinel errors for common cases.
var (
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("identifier already in use")
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInternal     = errors.New("internal error")
)

// Violation is a single field-tagged validation failure.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// AppError represents a structured application error with HTTP status mapping.
type AppError struct {
	Code       string      `json:"code"`
	Message    string      `json:"message"`
	Status     int         `json:"-"`
	Violations []Violation `json:"-"`
	Err        error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil && !isSentinel(e.Err) {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func isSentinel(err error) bool {
	for _, s := range []error{ErrValidation, ErrConflict, ErrNotFound, ErrInvalidInput, ErrUnauthorized, ErrInternal} {
		if err == s {
			return true
		}
	}
	return false
}

// joinMessages flattens violations into the single aggregated message the
// API returns, in the order the violations were collected.
func joinMessages(violations []Violation) string {
	msgs := make([]string, 0, len(violations))
	for _, v := range violations {
		msgs = append(msgs, v.Message)
	}
	return strings.Join(msgs, ", ")
}

// Validation creates a 400 error aggregating every failing field.
func Validation(violations []Violation) *AppError {
	return &AppError{
		Code:       "VALIDATION_ERROR",
		Message:    joinMessages(violations),
		Status:     http.StatusBadRequest,
		Violations: violations,
		Err:        ErrValidation,
	}
}

// Conflict creates a 400 error for uniqueness violations. The register flow
// reports conflicts the same way as validation failures, so the status is
// 400 rather than 409.
func Conflict(violations []Violation) *AppError {
	return &AppError{
		Code:       "CONFLICT",
		Message:    joinMessages(violations),
		Status:     http.StatusBadRequest,
		Violations: violations,
		Err:        ErrConflict,
	}
}

// NotFound creates a 404 error.
func NotFound(resource, id string) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s with id %s not found", resource, id),
		Status:  http.StatusNotFound,
		Err:     ErrNotFound,
	}
}

// InvalidInput creates a 400 error.
func InvalidInput(message string) *AppError {
	return &AppError{
		Code:    "INVALID_INPUT",
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidInput,
	}
}

// Unauthorized creates a 401 error.
func Unauthorized(message string) *AppError {
	return &AppError{
		Code:    "UNAUTHORIZED",
		Message: message,
		Status:  http.StatusUnauthorized,
		Err:     ErrUnauthorized,
	}
}

// Internal creates a 500 error. The wrapped cause is kept for logging but the
// message never leaks internal detail to clients.
func Internal(err error) *AppError {
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: "Internal server error",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// HTTPStatus returns the HTTP status code for the given error.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}

	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrConflict), errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
