package apperror

import (
	"errors"
	"net/http"

	"github.com/gymstore/pos-api/internal/domain/entity"
)

// AppError represents an application error with HTTP status code
type AppError struct {
	Code    int          `json:"code"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// FieldError represents a validation error for a specific field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	return e.Message
}

// Common errors
var (
	ErrNotFound           = &AppError{Code: http.StatusNotFound, Message: "Resource not found"}
	ErrUnauthorized       = &AppError{Code: http.StatusUnauthorized, Message: "Unauthorized"}
	ErrForbidden          = &AppError{Code: http.StatusForbidden, Message: "Forbidden"}
	ErrBadRequest         = &AppError{Code: http.StatusBadRequest, Message: "Bad request"}
	ErrInternalServer     = &AppError{Code: http.StatusInternalServerError, Message: "Internal server error"}
	ErrConflict           = &AppError{Code: http.StatusConflict, Message: "Resource already exists"}
	ErrUnprocessable      = &AppError{Code: http.StatusUnprocessableEntity, Message: "Unprocessable entity"}
	ErrInvalidCredentials = &AppError{Code: http.StatusUnauthorized, Message: "Invalid email or password"}
	ErrTokenExpired       = &AppError{Code: http.StatusUnauthorized, Message: "Token has expired"}
	ErrInvalidToken       = &AppError{Code: http.StatusUnauthorized, Message: "Invalid token"}
)

// domainErrorCodes maps typed domain errors to HTTP status codes.
// Validation failures are 422 (caught before any backend write), conflicts
// detected at submission time are 409, stale references are 404.
var domainErrorCodes = []struct {
	err  error
	code int
}{
	{entity.ErrEmptyCart, http.StatusUnprocessableEntity},
	{entity.ErrInsufficientCash, http.StatusUnprocessableEntity},
	{entity.ErrMissingVoucher, http.StatusUnprocessableEntity},
	{entity.ErrInvalidDiscount, http.StatusUnprocessableEntity},
	{entity.ErrCancelReasonRequired, http.StatusUnprocessableEntity},
	{entity.ErrOutOfStock, http.StatusConflict},
	{entity.ErrStockExceeded, http.StatusConflict},
	{entity.ErrIllegalTransition, http.StatusConflict},
	{entity.ErrAlreadyConfirmed, http.StatusConflict},
	{entity.ErrNotAwaitingReview, http.StatusConflict},
	{entity.ErrCartNotFound, http.StatusNotFound},
	{entity.ErrLineNotFound, http.StatusNotFound},
	{entity.ErrProductNotFound, http.StatusNotFound},
	{entity.ErrSaleNotFound, http.StatusNotFound},
	{entity.ErrOrderNotFound, http.StatusNotFound},
}

// NewAppError creates a new application error
func NewAppError(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(fieldErrors []FieldError) *AppError {
	return &AppError{
		Code:    http.StatusUnprocessableEntity,
		Message: "Validation failed",
		Errors:  fieldErrors,
	}
}

// NewNotFoundError creates a not found error with a custom message
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Code:    http.StatusNotFound,
		Message: resource + " not found",
	}
}

// NewConflictError creates a conflict error with a custom message
func NewConflictError(message string) *AppError {
	return &AppError{
		Code:    http.StatusConflict,
		Message: message,
	}
}

// NewBadRequestError creates a bad request error with a custom message
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Message: message,
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError converts an error to AppError if possible. Typed domain
// errors (possibly wrapped) resolve to their mapped status code with the
// full wrapped message preserved.
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	for _, m := range domainErrorCodes {
		if errors.Is(err, m.err) {
			return &AppError{
				Code:    m.code,
				Message: err.Error(),
			}
		}
	}
	return &AppError{
		Code:    http.StatusInternalServerError,
		Message: err.Error(),
	}
}
