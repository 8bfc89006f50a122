package domain

import "errors"

// Common errors used throughout the application.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")

	// ErrStorage covers an unavailable data directory, unreadable documents
	// and (de)serialization failures of persisted documents.
	ErrStorage = errors.New("storage error")

	// ErrExecutionFailed means the privileged subprocess could not be started.
	ErrExecutionFailed = errors.New("failed to execute privileged command")

	// ErrScriptError means the subprocess ran but reported failure.
	ErrScriptError = errors.New("privileged command returned error")

	// ErrParse means the executor produced malformed structured output.
	ErrParse = errors.New("parse error")

	ErrNoAPIKeys         = errors.New("no API keys configured")
	ErrInvalidAPIKey     = errors.New("invalid API key")
	ErrBootstrapDisabled = errors.New("bootstrap key disabled - API keys exist")
)

// Error codes for standardized API error responses.
const (
	ErrCodeResourceNotFound = "RESOURCE_NOT_FOUND"
	ErrCodeInvalidInput     = "INVALID_INPUT"
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeValidationError  = "VALIDATION_ERROR"
	ErrCodeStorageError     = "STORAGE_ERROR"
	ErrCodeExecutionFailed  = "EXECUTION_FAILED"
	ErrCodeScriptError      = "SCRIPT_ERROR"
	ErrCodeParseError       = "PARSE_ERROR"
	ErrCodeInternalError    = "INTERNAL_ERROR"
)

// StandardError represents a standardized error response from the API.
type StandardError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Field   string         `json:"field,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// StandardErrorResponse wraps a StandardError for JSON responses.
type StandardErrorResponse struct {
	Error StandardError `json:"error"`
}
