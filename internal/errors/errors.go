package errors

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/render"

	"tabcast/internal/ingest"
)

// APIError represents a structured API error response
type APIError struct {
	StatusCode int         `json:"status_code"`
	ErrorCode  string      `json:"error_code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// Render implements the render.Renderer interface for chi/render
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// New creates a new APIError with the given parameters
func New(statusCode int, errorCode, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
	}
}

// NewWithDetails creates a new APIError with additional details
func NewWithDetails(statusCode int, errorCode, message string, details interface{}) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
		Details:    details,
	}
}

// Predefined error types for common scenarios
var (
	ErrInvalidRequest   = New(http.StatusBadRequest, "INVALID_REQUEST", "Invalid request format")
	ErrValidationFailed = New(http.StatusBadRequest, "VALIDATION_FAILED", "Request validation failed")
	ErrMissingFile      = New(http.StatusBadRequest, "MISSING_FILE", "No file was uploaded")
	ErrFileTooLarge     = New(http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "Uploaded file exceeds the size limit")

	ErrNotFound = New(http.StatusNotFound, "NOT_FOUND", "Resource not found")

	ErrRateLimitExceeded = New(http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", "Rate limit exceeded")

	ErrInternalServer = New(http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Internal server error")
)

// ingestErrorCodes maps structured ingestion failures to API error codes
// and status. Decode and parse failures are 422: the request itself was
// well-formed, the payload was not usable.
var ingestErrorCodes = map[ingest.ErrorKind]struct {
	status int
	code   string
}{
	ingest.ErrUnsupportedFormat: {http.StatusBadRequest, "UNSUPPORTED_FORMAT"},
	ingest.ErrUndecodable:       {http.StatusUnprocessableEntity, "DECODE_FAILED"},
	ingest.ErrEmptySheet:        {http.StatusUnprocessableEntity, "EMPTY_SPREADSHEET"},
	ingest.ErrSheetCorrupt:      {http.StatusUnprocessableEntity, "SPREADSHEET_CORRUPT"},
	ingest.ErrUnparseable:       {http.StatusUnprocessableEntity, "PARSE_FAILED"},
	ingest.ErrNoRows:            {http.StatusUnprocessableEntity, "NO_DATA_ROWS"},
	ingest.ErrEmptyAfterCleanup: {http.StatusUnprocessableEntity, "EMPTY_AFTER_CLEANUP"},
}

// FromIngest converts an ingestion error into an APIError, preserving the
// human-readable message the caller shows to the user.
func FromIngest(err error) *APIError {
	if kind := ingest.KindOf(err); kind != "" {
		if m, ok := ingestErrorCodes[kind]; ok {
			return New(m.status, m.code, err.Error())
		}
	}
	return NewWithDetails(http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Internal server error", err.Error())
}

// ValidationError represents a single field validation failure
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrValidation creates a validation error with field details
func ErrValidation(field, message string) *APIError {
	return NewWithDetails(http.StatusBadRequest, "VALIDATION_FAILED", "Request validation failed", ValidationError{
		Field:   field,
		Message: message,
	})
}

// NotFoundError creates a not found error with details
func NotFoundError(resource string) *APIError {
	return NewWithDetails(http.StatusNotFound, "NOT_FOUND", fmt.Sprintf("%s not found", resource), resource)
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Success bool      `json:"success"`
	Error   *APIError `json:"error"`
}

// NewErrorResponse creates a new error response
func NewErrorResponse(err *APIError) *ErrorResponse {
	return &ErrorResponse{
		Success: false,
		Error:   err,
	}
}

// Render implements the render.Renderer interface
func (e *ErrorResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return e.Error.Render(w, r)
}

// WriteError writes an error response to the HTTP response writer
func WriteError(w http.ResponseWriter, err *APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.StatusCode)
	json.NewEncoder(w).Encode(NewErrorResponse(err))
}
