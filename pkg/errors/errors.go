package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Standard error types
var (
	ErrNotFound            = errors.New("resource not found")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrBadRequest          = errors.New("bad request")
	ErrDuplicate           = errors.New("duplicate resource")
	ErrInternal            = errors.New("internal server error")
	ErrValidation          = errors.New("validation error")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrInvalidDateRange    = errors.New("invalid date range")
	ErrInvalidRange        = errors.New("invalid query range")
	ErrTransactionConflict = errors.New("transaction conflict")
)

// AppError represents an application error with context
type AppError struct {
	Err        error             `json:"-"`
	Message    string            `json:"message"`
	Code       string            `json:"code"`
	StatusCode int               `json:"status_code"`
	Details    map[string]string `json:"details,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError
func New(code string, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, code string, message string, statusCode int) *AppError {
	return &AppError{
		Err:        err,
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

// WithDetails adds details to an AppError
func (e *AppError) WithDetails(details map[string]string) *AppError {
	e.Details = details
	return e
}

// Common error constructors

func NotFound(resource string) *AppError {
	return &AppError{
		Err:        ErrNotFound,
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		StatusCode: http.StatusNotFound,
	}
}

func Unauthorized(message string) *AppError {
	return &AppError{
		Err:        ErrUnauthorized,
		Code:       "UNAUTHORIZED",
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func Forbidden(message string) *AppError {
	return &AppError{
		Err:        ErrForbidden,
		Code:       "FORBIDDEN",
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func BadRequest(message string) *AppError {
	return &AppError{
		Err:        ErrBadRequest,
		Code:       "BAD_REQUEST",
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func Duplicate(message string) *AppError {
	return &AppError{
		Err:        ErrDuplicate,
		Code:       "DUPLICATE",
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

func Internal(message string) *AppError {
	return &AppError{
		Err:        ErrInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
	}
}

func Validation(details map[string]string) *AppError {
	return &AppError{
		Err:        ErrValidation,
		Code:       "VALIDATION_ERROR",
		Message:    "validation failed",
		StatusCode: http.StatusBadRequest,
		Details:    details,
	}
}

func InvalidCredentials() *AppError {
	return &AppError{
		Err:        ErrInvalidCredentials,
		Code:       "INVALID_CREDENTIALS",
		Message:    "invalid username or password",
		StatusCode: http.StatusUnauthorized,
	}
}

// Reconciliation error constructors

// InvalidAmount signals a non-positive or out-of-bounds quantity.
func InvalidAmount(message string) *AppError {
	return &AppError{
		Err:        ErrInvalidAmount,
		Code:       "INVALID_AMOUNT",
		Message:    message,
		StatusCode: http.StatusUnprocessableEntity,
	}
}

// InsufficientStock signals an outbound movement larger than the
// physical existence on hand.
func InsufficientStock(code int, available, requested int) *AppError {
	return &AppError{
		Err:        ErrInsufficientStock,
		Code:       "INSUFFICIENT_STOCK",
		Message:    fmt.Sprintf("item %d has %d on hand, cannot move out %d", code, available, requested),
		StatusCode: http.StatusUnprocessableEntity,
	}
}

// InvalidDateRange signals an expiry date not strictly after the ingest date.
func InvalidDateRange(message string) *AppError {
	return &AppError{
		Err:        ErrInvalidDateRange,
		Code:       "INVALID_DATE_RANGE",
		Message:    message,
		StatusCode: http.StatusUnprocessableEntity,
	}
}

// InvalidRange signals a ledger query whose start date is after its end date.
func InvalidRange(message string) *AppError {
	return &AppError{
		Err:        ErrInvalidRange,
		Code:       "INVALID_RANGE",
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

// TransactionConflict signals that concurrent movements on the same item
// could not be serialized after the engine's bounded retries.
func TransactionConflict() *AppError {
	return &AppError{
		Err:        ErrTransactionConflict,
		Code:       "TRANSACTION_CONFLICT",
		Message:    "concurrent modification detected, please retry",
		StatusCode: http.StatusConflict,
	}
}

// Is checks if the error matches a target error
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As attempts to convert an error to a specific type
func As(err error, target any) bool {
	return errors.As(err, target)
}
