// internal/errors/mapper.go
package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"gorm.io/gorm"

	"github.com/oggyb/cinemood/internal/auth"
	"github.com/oggyb/cinemood/internal/db"
)

// AppError is the transport-facing form of a failure: an HTTP status, a
// stable machine-readable code and a human message.
type AppError struct {
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return e.Code + ": " + e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// Map converts repo/infra errors into HTTP-friendly AppErrors.
// Keeps service and handler layers clean by centralizing error mapping.
func Map(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return &AppError{Status: http.StatusNotFound, Code: "not_found", Message: "record not found", Err: err}

	case errors.Is(err, gorm.ErrDuplicatedKey):
		return &AppError{Status: http.StatusConflict, Code: "already_exists", Message: "record already exists", Err: err}

	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return &AppError{Status: http.StatusConflict, Code: "conflict", Message: "record is still referenced", Err: err}

	case errors.Is(err, db.ErrOutOfBounds), errors.Is(err, db.ErrInvalidMBTI), errors.Is(err, auth.ErrPasswordTooLong):
		return &AppError{Status: http.StatusUnprocessableEntity, Code: "invalid_argument", Message: err.Error(), Err: err}

	case errors.Is(err, auth.ErrUnauthenticated):
		return &AppError{Status: http.StatusUnauthorized, Code: "unauthenticated", Message: "could not validate credentials", Err: err}

	case errors.Is(err, context.DeadlineExceeded):
		return &AppError{Status: http.StatusGatewayTimeout, Code: "deadline_exceeded", Message: "request timed out", Err: err}

	case errors.Is(err, context.Canceled):
		return &AppError{Status: 499, Code: "canceled", Message: "request was canceled", Err: err}

	default:
		return &AppError{Status: http.StatusInternalServerError, Code: "internal", Message: "internal server error", Err: err}
	}
}

// InvalidArgument creates a 400 error.
// Use this in service layer for bad input validation.
func InvalidArgument(msg string) *AppError {
	return &AppError{Status: http.StatusBadRequest, Code: "invalid_argument", Message: msg}
}

// AlreadyExists creates a 409 error.
func AlreadyExists(msg string) *AppError {
	return &AppError{Status: http.StatusConflict, Code: "already_exists", Message: msg}
}

// NotFound creates a 404 error.
func NotFound(msg string) *AppError {
	return &AppError{Status: http.StatusNotFound, Code: "not_found", Message: msg}
}

// Unauthenticated creates a 401 error.
func Unauthenticated(msg string) *AppError {
	return &AppError{Status: http.StatusUnauthorized, Code: "unauthenticated", Message: msg}
}
