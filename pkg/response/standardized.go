// Package response defines the JSON envelope every API endpoint returns.
package response

import (
	"time"

	"parquet-dataset/internal/utils"
)

// StandardResponse represents a standardized API response
type StandardResponse struct {
	Success       bool       `json:"success"`
	Data          any        `json:"data,omitempty"`
	Error         *ErrorInfo `json:"error,omitempty"`
	Message       string     `json:"message,omitempty"`
	CorrelationID string     `json:"correlationId"`
	Timestamp     time.Time  `json:"timestamp"`
}

// ErrorInfo represents error information in API responses
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// SuccessResponse creates a successful response
func SuccessResponse(data any, correlationID string) *StandardResponse {
	return &StandardResponse{
		Success:       true,
		Data:          data,
		CorrelationID: correlationID,
		Timestamp:     time.Now(),
	}
}

// ErrorResponse creates an error response
func ErrorResponse(code, message, details, correlationID string) *StandardResponse {
	return &StandardResponse{
		Success: false,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
			Details: details,
		},
		CorrelationID: correlationID,
		Timestamp:     time.Now(),
	}
}

// ErrorResponseFromError renders err, unwrapping to its AppError when it
// carries one. Other errors become INTERNAL_ERROR without details.
func ErrorResponseFromError(err error, correlationID string) *StandardResponse {
	appErr := utils.AsAppError(err)
	details := appErr.Details
	if appErr.Code == utils.ErrCodeInternalError {
		details = ""
	}
	return ErrorResponse(appErr.Code, appErr.Message, details, correlationID)
}

// ValidationErrorResponse creates a validation error response
func ValidationErrorResponse(message, details, correlationID string) *StandardResponse {
	return ErrorResponse(utils.ErrCodeValidationFailed, message, details, correlationID)
}

// NotFoundResponse creates a not found error response
func NotFoundResponse(message string, correlationID string) *StandardResponse {
	return ErrorResponse(utils.ErrCodeNotFound, message, "", correlationID)
}
