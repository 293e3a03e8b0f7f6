package domain

import (
	"fmt"
	"time"
)

// APIError is the standardized error envelope returned by the HTTP and MCP
// surfaces.
type APIError struct {
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error codes for the failure taxonomy. Input-shape and domain validation
// problems come back as CodeValidation; a race code missing from the model
// tables is a model gap, not bad input, and gets CodeRaceLookup.
const (
	CodeInvalidInput   = "INVALID_INPUT"
	CodeValidation     = "VALIDATION_ERROR"
	CodeRaceLookup     = "RACE_LOOKUP_ERROR"
	CodeIntegration    = "INTEGRATION_ERROR"
	CodeInternal       = "INTERNAL_ERROR"
	CodeDatabase       = "DATABASE_ERROR"
	CodeRateLimit      = "RATE_LIMIT_EXCEEDED"
)

// NewAPIError creates a new APIError with timestamp
func NewAPIError(code, message, details, requestID string) *APIError {
	return &APIError{
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
		RequestID: requestID,
	}
}

// NewCalculationError builds the structured failure detail carried inside a
// RiskResult.
func NewCalculationError(code, message string) *CalculationError {
	return &CalculationError{Code: code, Message: message}
}
