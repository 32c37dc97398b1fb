package utils

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes with HTTP status mapping
const (
	// General errors
	ErrCodeInvalidRequest     = "INVALID_REQUEST"
	ErrCodeValidationFailed   = "VALIDATION_ERROR"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	ErrCodeRateLimitExceeded  = "RATE_LIMIT_EXCEEDED"

	// Layout discovery errors
	ErrCodeInvalidPath           = "INVALID_PATH"
	ErrCodeInconsistentPartition = "INCONSISTENT_PARTITION"

	// Storage and footer errors
	ErrCodeStorageError       = "STORAGE_ERROR"
	ErrCodeFooterError        = "FOOTER_ERROR"
	ErrCodeUnsupportedBackend = "UNSUPPORTED_BACKEND"
	ErrCodeDatasetNotFound    = "DATASET_NOT_FOUND"
)

// HTTPStatus maps error codes to HTTP status codes
var HTTPStatus = map[string]int{
	ErrCodeInvalidRequest:     http.StatusBadRequest,
	ErrCodeValidationFailed:   http.StatusUnprocessableEntity,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeInternalError:      http.StatusInternalServerError,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeRateLimitExceeded:  http.StatusTooManyRequests,

	ErrCodeInvalidPath:           http.StatusBadRequest,
	ErrCodeInconsistentPartition: http.StatusUnprocessableEntity,

	ErrCodeStorageError:       http.StatusBadGateway,
	ErrCodeFooterError:        http.StatusUnprocessableEntity,
	ErrCodeUnsupportedBackend: http.StatusBadRequest,
	ErrCodeDatasetNotFound:    http.StatusNotFound,
}

// AppError represents an application error with additional context
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
	Cause   error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s - %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// ErrorBuilder provides a fluent interface for creating errors
type ErrorBuilder struct {
	code    string
	message string
	details string
	cause   error
}

// NewErrorBuilder creates a new error builder
func NewErrorBuilder(code string) *ErrorBuilder {
	return &ErrorBuilder{code: code}
}

// WithMessage sets the error message
func (eb *ErrorBuilder) WithMessage(message string) *ErrorBuilder {
	eb.message = message
	return eb
}

// WithDetails sets the error details
func (eb *ErrorBuilder) WithDetails(details string) *ErrorBuilder {
	eb.details = details
	return eb
}

// WithCause sets the underlying error cause
func (eb *ErrorBuilder) WithCause(cause error) *ErrorBuilder {
	eb.cause = cause
	return eb
}

// Build constructs the final AppError
func (eb *ErrorBuilder) Build() *AppError {
	if eb.message == "" {
		eb.message = getDefaultMessage(eb.code)
	}

	return &AppError{
		Code:    eb.code,
		Message: eb.message,
		Details: eb.details,
		Cause:   eb.cause,
	}
}

func getDefaultMessage(code string) string {
	messages := map[string]string{
		ErrCodeInvalidRequest:     "The request is invalid",
		ErrCodeValidationFailed:   "Validation failed",
		ErrCodeNotFound:           "Resource not found",
		ErrCodeInternalError:      "Internal server error",
		ErrCodeServiceUnavailable: "Service temporarily unavailable",
		ErrCodeRateLimitExceeded:  "Rate limit exceeded",

		ErrCodeInvalidPath:           "Invalid dataset path",
		ErrCodeInconsistentPartition: "Partition column cannot be represented consistently",

		ErrCodeStorageError:       "Storage backend error",
		ErrCodeFooterError:        "Invalid parquet footer",
		ErrCodeUnsupportedBackend: "Unsupported storage backend",
		ErrCodeDatasetNotFound:    "Dataset not found",
	}

	if msg, exists := messages[code]; exists {
		return msg
	}
	return "Unknown error"
}

// Convenience functions for common error types

func NewInvalidPathError(message string, details string) *AppError {
	return NewErrorBuilder(ErrCodeInvalidPath).
		WithMessage(message).
		WithDetails(details).
		Build()
}

func NewInconsistentPartitionError(column string, details string) *AppError {
	return NewErrorBuilder(ErrCodeInconsistentPartition).
		WithMessage(fmt.Sprintf("partition column %q cannot be represented consistently", column)).
		WithDetails(details).
		Build()
}

func NewStorageError(cause error, details string) *AppError {
	return NewErrorBuilder(ErrCodeStorageError).
		WithCause(cause).
		WithDetails(details).
		Build()
}

func NewFooterError(cause error, details string) *AppError {
	return NewErrorBuilder(ErrCodeFooterError).
		WithCause(cause).
		WithDetails(details).
		Build()
}

func NewDatasetNotFoundError(cause error, root string) *AppError {
	return NewErrorBuilder(ErrCodeDatasetNotFound).
		WithCause(cause).
		WithDetails(root).
		Build()
}

// IsErrorType checks if an error chain contains an AppError with the given code
func IsErrorType(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// AsAppError extracts the first AppError in the chain, wrapping anything else
// as an internal error.
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewErrorBuilder(ErrCodeInternalError).WithCause(err).WithDetails(err.Error()).Build()
}

// GetErrorStatus returns the HTTP status code for an error
func GetErrorStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		if status, exists := HTTPStatus[appErr.Code]; exists {
			return status
		}
	}
	return http.StatusInternalServerError
}
