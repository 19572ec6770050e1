package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// ErrorCode represents a unique error code for client handling
type ErrorCode string

const (
	// Client errors (4xx)
	ErrCodeInvalidRequestBody ErrorCode = "INVALID_REQUEST_BODY"
	ErrCodeValidationFailed   ErrorCode = "VALIDATION_FAILED"
	ErrCodeMatchNotFound      ErrorCode = "MATCH_NOT_FOUND"
	ErrCodeBlobNotFound       ErrorCode = "BLOB_NOT_FOUND"
	ErrCodeMissingAPIKey      ErrorCode = "MISSING_API_KEY"
	ErrCodeInvalidAPIKey      ErrorCode = "INVALID_API_KEY"
	ErrCodeRateLimitExceeded  ErrorCode = "RATE_LIMIT_EXCEEDED"
	ErrCodeUnauthorized       ErrorCode = "UNAUTHORIZED"
	ErrCodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"

	// Server errors (5xx)
	ErrCodeDataSourceError ErrorCode = "DATA_SOURCE_ERROR"
	ErrCodeInternalError   ErrorCode = "INTERNAL_ERROR"
)

// APIError represents a structured error response
type APIError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Status  int       `json:"-"`
}

// Error implements the error interface
func (apiError *APIError) Error() string {
	return apiError.Message
}

// ErrorResponse is the JSON structure returned to clients
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains the error information
type ErrorDetail struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// NewAPIError creates a new APIError
func NewAPIError(code ErrorCode, message string, status int) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
		Status:  status,
	}
}

// Common error constructors for consistent error creation
func InvalidRequestBody(message string) *APIError {
	return NewAPIError(ErrCodeInvalidRequestBody, message, http.StatusBadRequest)
}

func ValidationFailed(message string) *APIError {
	return NewAPIError(ErrCodeValidationFailed, message, http.StatusBadRequest)
}

func MatchNotFound(gameID int64) *APIError {
	return NewAPIError(ErrCodeMatchNotFound, fmt.Sprintf("Match not found: %d", gameID), http.StatusNotFound)
}

func BlobNotFound(handle string) *APIError {
	return NewAPIError(ErrCodeBlobNotFound, "Blob not found: "+handle, http.StatusNotFound)
}

func Unauthorized(message string) *APIError {
	return NewAPIError(ErrCodeUnauthorized, message, http.StatusUnauthorized)
}

func InvalidCredentials() *APIError {
	return NewAPIError(ErrCodeInvalidCredentials, "Invalid credentials", http.StatusUnauthorized)
}

func DataSourceError(message string) *APIError {
	return NewAPIError(ErrCodeDataSourceError, message, http.StatusBadGateway)
}

func InternalError(message string) *APIError {
	return NewAPIError(ErrCodeInternalError, message, http.StatusInternalServerError)
}

// WriteError writes a JSON error response to the http.ResponseWriter
func WriteError(writer http.ResponseWriter, apiError *APIError) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(apiError.Status)

	errorResponse := ErrorResponse{
		Error: ErrorDetail{
			Code:    apiError.Code,
			Message: apiError.Message,
		},
	}

	json.NewEncoder(writer).Encode(errorResponse)
}
