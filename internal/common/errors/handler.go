// internal/common/errors/handler.go
package errors

import (
	"net/http"
)

// Logger is the subset of logger.Logger the handler needs.
type Logger interface {
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// ErrorHandler maps errors onto HTTP responses and logs them by category.
type ErrorHandler struct {
	logger Logger
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Resolve returns the HTTP status and public error code for err. Anything that is not a validation
// or not-found error becomes 500 server_error so internals never leak.
func (h *ErrorHandler) Resolve(err error, fields map[string]interface{}) (int, string) {
	stdErr := Normalize(err)
	status, code := HTTPStatus(stdErr)

	logFields := map[string]interface{}{
		"errorCode":     string(stdErr.Code),
		"errorCategory": GetErrorCategory(stdErr.Code),
		"details":       stdErr.Details,
		"status":        status,
	}
	for k, v := range fields {
		logFields[k] = v
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error(stdErr.Message, logFields)
	} else {
		h.logger.Warn(stdErr.Message, logFields)
	}
	return status, code
}

// HTTPStatus maps a StandardError onto a status and public code.
func HTTPStatus(stdErr *StandardError) (int, string) {
	switch stdErr.Code {
	case ErrCodeValidationFailed:
		code := stdErr.Public
		if code == "" {
			code = PublicMissingParameters
		}
		return http.StatusBadRequest, code
	case ErrCodeNotFound:
		return http.StatusNotFound, PublicNotFound
	default:
		return http.StatusInternalServerError, PublicServerError
	}
}
