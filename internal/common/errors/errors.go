// Package errors provides the structured error taxonomy shared by storage, notification and the HTTP surface.
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeValidationFailed       ErrorCode = "VALIDATION_FAILED"
	ErrCodeNotFound               ErrorCode = "NOT_FOUND"
	ErrCodeStorageFailed          ErrorCode = "STORAGE_FAILED"
	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeTemplateRenderFailed   ErrorCode = "TEMPLATE_RENDER_FAILED"
	ErrCodeInternal               ErrorCode = "INTERNAL_ERROR"
)

// Public error codes returned to API clients.
const (
	PublicInvalidEmail          = "invalid_email"
	PublicMissingRequiredFields = "missing_required_fields"
	PublicMissingParameters     = "missing_parameters"
	PublicMissingStatus         = "missing_status"
	PublicInvalidTemplateType   = "invalid_template_type"
	PublicEmailNotConfigured    = "email_not_configured"
	PublicInvalidJSON           = "invalid_json"
	PublicNotFound              = "not_found"
	PublicServerError           = "server_error"
	PublicUnauthorized          = "unauthorized"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Public    string                 `json:"public,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// Is matches another *StandardError by code, so errors.Is(err, &StandardError{Code: ...}) works.
func (e *StandardError) Is(target error) bool {
	t, ok := target.(*StandardError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// ==========================
// 2. Constructors
// ==========================

// NewValidationError carries the public code the caller should see (e.g. invalid_email).
func NewValidationError(publicCode, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Request validation failed",
		Details:   details,
		Public:    publicCode,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewNotFoundError(resource, id string) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotFound,
		Message:   fmt.Sprintf("%s not found", resource),
		Details:   id,
		Public:    PublicNotFound,
		Retryable: false,
		Metadata:  map[string]interface{}{"resource": resource, "id": id},
		Timestamp: time.Now().UTC(),
	}
}

// NewStorageError wraps a backend failure for the given operation.
func NewStorageError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStorageFailed,
		Message:   fmt.Sprintf("storage operation %s failed", operation),
		Details:   errDetails(err),
		Retryable: true,
		Metadata:  map[string]interface{}{"operation": operation},
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewNotificationError(templateType string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   fmt.Sprintf("notification %s failed", templateType),
		Details:   errDetails(err),
		Retryable: true,
		Metadata:  map[string]interface{}{"template_type": templateType},
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewTemplateRenderError(kind string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTemplateRenderFailed,
		Message:   fmt.Sprintf("template %s could not be rendered", kind),
		Details:   errDetails(err),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func errDetails(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// ==========================
// 3. Classification
// ==========================

// As extracts a *StandardError from the chain.
func As(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

func hasCode(err error, code ErrorCode) bool {
	stdErr, ok := As(err)
	return ok && stdErr.Code == code
}

func IsValidation(err error) bool   { return hasCode(err, ErrCodeValidationFailed) }
func IsNotFound(err error) bool     { return hasCode(err, ErrCodeNotFound) }
func IsStorage(err error) bool      { return hasCode(err, ErrCodeStorageFailed) }
func IsNotification(err error) bool { return hasCode(err, ErrCodeNotificationSendFailed) }

// Normalize ensures we always have a StandardError.
func Normalize(err error) *StandardError {
	if stdErr, ok := As(err); ok {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   errDetails(err),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// GetErrorCategory groups codes for logging and metrics labels.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeValidationFailed:
		return "VALIDATION"
	case ErrCodeNotFound:
		return "NOT_FOUND"
	case ErrCodeStorageFailed:
		return "STORAGE"
	case ErrCodeNotificationSendFailed, ErrCodeTemplateRenderFailed:
		return "NOTIFICATION"
	default:
		return "OTHER"
	}
}
