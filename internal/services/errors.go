package services

import (
	"errors"
	"fmt"
	"net/http"

	"gorm.io/gorm"
)

// Stable error codes returned to API clients.
const (
	CodeValidation      = "VALIDATION_ERROR"
	CodeForbidden       = "FORBIDDEN"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeNotFound        = "NOT_FOUND"
	CodeNoAnswerYet     = "NO_ANSWER_YET"
	CodeDuplicateAnswer = "DUPLICATE_ANSWER"
	CodeConflict        = "CONFLICT"
	CodeInternal        = "INTERNAL_ERROR"
)

// Error is a domain failure carrying the HTTP status and a human message.
type Error struct {
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s (%d)", e.Code, e.Status)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(status int, code, message string) *Error {
	return &Error{Status: status, Code: code, Message: message}
}

func Validation(message string) *Error {
	return newError(http.StatusBadRequest, CodeValidation, message)
}

func Forbidden(message string) *Error {
	return newError(http.StatusForbidden, CodeForbidden, message)
}

func Unauthorized() *Error {
	return newError(http.StatusUnauthorized, CodeUnauthorized, "Authentication required.")
}

func NotFound(message string) *Error {
	return newError(http.StatusNotFound, CodeNotFound, message)
}

func NoAnswerYet() *Error {
	return newError(http.StatusBadRequest, CodeNoAnswerYet, "At least one answer must exist before posting a follow-up.")
}

func DuplicateAnswer() *Error {
	return newError(http.StatusBadRequest, CodeDuplicateAnswer, "You have already answered this question.")
}

// AsError extracts a domain error from err's chain.
func AsError(err error) (*Error, bool) {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr, true
	}
	return nil, false
}

// notFoundOr maps a missing-row error to NOT_FOUND and wraps anything else.
func notFoundOr(err error, message, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFound(message)
	}
	return fmt.Errorf("%s: %w", op, err)
}
