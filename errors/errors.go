package errors

import (
	"fmt"
	"net/http"
	"strings"
)

// Error carries an HTTP status alongside the message so handlers can
// respond without re-classifying failures.
type Error struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

var (
	ErrNotFound            = New("resource not found", http.StatusNotFound)
	ErrInternalServerError = New("internal server error", http.StatusInternalServerError)
	ErrBadRequest          = New("bad request", http.StatusBadRequest)
	ErrUnauthorized        = New("unauthorized", http.StatusUnauthorized)
	ErrForbidden           = New("forbidden", http.StatusForbidden)
	ErrInvalidPassword     = New("invalid password", http.StatusUnauthorized)
	ErrConnectionTimeout   = New("database connection timed out", http.StatusServiceUnavailable)
	ErrInsufficientPoints  = New("insufficient reward points", http.StatusUnprocessableEntity)
	InActiveUserError      = New("user is inactive", http.StatusUnauthorized)
)

func New(message string, status int) *Error {
	return &Error{
		Message: message,
		Status:  status,
	}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

// Is makes sentinel comparison with errors.Is work across wrapping.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Message == t.Message && e.Status == t.Status
}

// GetUniqueContraintError maps a unique-constraint violation from the
// database into a client-facing conflict error.
func GetUniqueContraintError(err error) *Error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "email"):
		return New("email already in use", http.StatusConflict)
	case strings.Contains(msg, "telephone"), strings.Contains(msg, "phone"):
		return New("phone number already in use", http.StatusConflict)
	default:
		return New("duplicate entry", http.StatusConflict)
	}
}
