package errors

import (
	"fmt"
	"net/http"

	"github.com/go-chi/render"
)

// Error codes reported in the "error_code" member of a problem.
const (
	CodeInvalidRequest   = "INVALID_REQUEST"
	CodeValidation       = "VALIDATION_FAILED"
	CodeMissingFile      = "MISSING_FILE"
	CodePayloadTooLarge  = "PAYLOAD_TOO_LARGE"
	CodeUnsupportedMedia = "UNSUPPORTED_MEDIA_TYPE"
	CodeRateLimited      = "RATE_LIMIT_EXCEEDED"
	CodeInternal         = "INTERNAL_SERVER_ERROR"
)

var problemTypeByCode = map[string]string{
	CodeInvalidRequest:   TypeValidation,
	CodeValidation:       TypeValidation,
	CodeMissingFile:      TypeValidation,
	CodePayloadTooLarge:  TypePayloadTooLarge,
	CodeUnsupportedMedia: TypeUnsupportedMedia,
	CodeRateLimited:      TypeRateLimit,
}

// APIError is an error raised by the HTTP layer itself, before a request
// reaches the report service.
type APIError struct {
	StatusCode int         `json:"status_code"`
	ErrorCode  string      `json:"error_code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

// Render implements render.Renderer
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// ProblemType is the RFC 7807 type URI for the error code.
func (e *APIError) ProblemType() string {
	if t, ok := problemTypeByCode[e.ErrorCode]; ok {
		return t
	}
	return TypeInternal
}

// ValidationError describes one rejected request field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func New(statusCode int, errorCode, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
	}
}

func NewWithDetails(statusCode int, errorCode, message string, details interface{}) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
		Details:    details,
	}
}

var (
	ErrMissingFile       = New(http.StatusBadRequest, CodeMissingFile, "A workbook must be uploaded in the \"file\" form field")
	ErrRateLimitExceeded = New(http.StatusTooManyRequests, CodeRateLimited, "Rate limit exceeded")
)

// InvalidRequestWithError wraps a body decoding failure.
func InvalidRequestWithError(err error) *APIError {
	return NewWithDetails(http.StatusBadRequest, CodeInvalidRequest, "Invalid request format", err.Error())
}

// ErrValidation rejects a single field.
func ErrValidation(field, message string) *APIError {
	return NewValidationErrors([]ValidationError{{Field: field, Message: message}}, message)
}

// NewValidationErrors rejects several fields at once. The message defaults
// to a generic summary.
func NewValidationErrors(errs []ValidationError, message ...string) *APIError {
	msg := "Request validation failed"
	if len(message) > 0 && message[0] != "" {
		msg = message[0]
	}
	return NewWithDetails(http.StatusBadRequest, CodeValidation, msg, errs)
}

// PayloadTooLarge reports a body or upload over limit bytes.
func PayloadTooLarge(message string, limit int64) *APIError {
	return NewWithDetails(http.StatusRequestEntityTooLarge, CodePayloadTooLarge, message,
		map[string]interface{}{"max_bytes": limit})
}

// UnsupportedMediaType lists the content types the endpoint accepts.
func UnsupportedMediaType(got string, allowed []string) *APIError {
	return NewWithDetails(http.StatusUnsupportedMediaType, CodeUnsupportedMedia,
		fmt.Sprintf("Content-Type %q is not supported", got),
		map[string]interface{}{"allowed": allowed})
}

// PanicRecovery is attached to 500 problems when stack output is enabled.
type PanicRecovery struct {
	Message string `json:"message"`
}

func ErrPanic(rec interface{}) *APIError {
	return NewWithDetails(http.StatusInternalServerError, CodeInternal, "Internal server error",
		PanicRecovery{Message: fmt.Sprintf("%v", rec)})
}
