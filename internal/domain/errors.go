package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel conditions recognized by the pipeline and HTTP layer.
var (
	// ErrClassificationUnavailable covers every way the external classifier
	// can fail: not configured, network error, non-2xx status, timeout, or a
	// malformed reply. The pipeline recovers by substituting the fallback
	// analyzer; callers never see this error in a response.
	ErrClassificationUnavailable = errors.New("external classification unavailable")

	// ErrInvalidImage is returned for any undecodable upload: empty input,
	// non-image payloads, unsupported color modes. Low-level decoder errors
	// are never surfaced directly.
	ErrInvalidImage = errors.New("invalid image content")

	// ErrSystemOverload rejects a request before any processing when system
	// resource thresholds are exceeded.
	ErrSystemOverload = errors.New("system overloaded")
)

// Error codes attached to API error payloads and log entries.
const (
	CodeValidation     = "VALIDATION_ERROR"
	CodeInvalidImage   = "INVALID_IMAGE"
	CodeOverload       = "SYSTEM_OVERLOAD"
	CodeInternal       = "INTERNAL_ERROR"
	CodeClassification = "CLASSIFICATION_ERROR"
)

// ValidationError is a user-facing request rejection: missing file,
// disallowed extension, oversized payload. Terminal for the request.
type ValidationError struct {
	Message    string
	StatusCode int
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a 400-level validation failure.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message, StatusCode: http.StatusBadRequest}
}

// NewPayloadTooLargeError rejects uploads beyond the configured maximum.
func NewPayloadTooLargeError(limit int64) *ValidationError {
	return &ValidationError{
		Message:    fmt.Sprintf("File exceeds maximum size of %d bytes", limit),
		StatusCode: http.StatusRequestEntityTooLarge,
	}
}

// StatusCode maps an error to the HTTP status it should produce.
func StatusCode(err error) int {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		return ve.StatusCode
	case errors.Is(err, ErrInvalidImage):
		return http.StatusBadRequest
	case errors.Is(err, ErrSystemOverload):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
