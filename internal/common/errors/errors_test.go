package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingLogger struct {
	warns  []string
	errors []string
}

func (l *recordingLogger) Warn(msg string, _ map[string]interface{})  { l.warns = append(l.warns, msg) }
func (l *recordingLogger) Error(msg string, _ map[string]interface{}) { l.errors = append(l.errors, msg) }

func TestClassification(t *testing.T) {
	cause := stderrors.New("connection refused")
	storageErr := NewStorageError("create_application", cause)
	wrapped := fmt.Errorf("save: %w", storageErr)

	assert.True(t, IsStorage(wrapped))
	assert.False(t, IsValidation(wrapped))
	assert.True(t, stderrors.Is(wrapped, cause))
	assert.True(t, stderrors.Is(wrapped, &StandardError{Code: ErrCodeStorageFailed}))

	assert.True(t, IsValidation(NewValidationError(PublicInvalidEmail, "bad")))
	assert.True(t, IsNotFound(NewNotFoundError("application", "42")))
	assert.True(t, IsNotification(NewNotificationError("approved", cause)))
}

func TestNormalize(t *testing.T) {
	plain := stderrors.New("boom")
	n := Normalize(plain)
	assert.Equal(t, ErrCodeInternal, n.Code)
	assert.Equal(t, "boom", n.Details)

	v := NewValidationError(PublicInvalidEmail, "x")
	assert.Same(t, v, Normalize(fmt.Errorf("wrap: %w", v)))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation keeps public code", NewValidationError(PublicInvalidEmail, ""), http.StatusBadRequest, PublicInvalidEmail},
		{"validation without code", NewValidationError("", ""), http.StatusBadRequest, PublicMissingParameters},
		{"not found", NewNotFoundError("application", "1"), http.StatusNotFound, PublicNotFound},
		{"storage", NewStorageError("list", stderrors.New("x")), http.StatusInternalServerError, PublicServerError},
		{"unknown", stderrors.New("x"), http.StatusInternalServerError, PublicServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code := HTTPStatus(Normalize(tt.err))
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantCode, code)
		})
	}
}

func TestErrorHandler_Resolve_LogsBySeverity(t *testing.T) {
	log := &recordingLogger{}
	h := NewErrorHandler(log)

	status, code := h.Resolve(NewValidationError(PublicMissingRequiredFields, "firstName"), map[string]interface{}{"route": "/api/founders-application"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, PublicMissingRequiredFields, code)

	status, code = h.Resolve(stderrors.New("panic-ish"), nil)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, PublicServerError, code)

	require.Len(t, log.warns, 1)
	require.Len(t, log.errors, 1)
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "STORAGE", GetErrorCategory(ErrCodeStorageFailed))
	assert.Equal(t, "NOTIFICATION", GetErrorCategory(ErrCodeTemplateRenderFailed))
	assert.Equal(t, "OTHER", GetErrorCategory(ErrCodeInternal))
}
