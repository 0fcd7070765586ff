package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFormSubmissionFailedError_HidesCauseFromMessage(t *testing.T) {
	cause := stderrors.New(`pq: duplicate key value violates unique constraint "form_fields_pkey"`)
	err := NewFormSubmissionFailedError(cause)

	assert.Equal(t, ErrCodeFormSubmissionFailed, err.Code)
	assert.Equal(t, "Failed to save form configuration and data", err.Message)
	assert.NotContains(t, err.Message, "pq:")
	assert.Contains(t, err.Details, "duplicate key")
	assert.True(t, err.Retryable)
	assert.True(t, stderrors.Is(err, cause))
}

func TestNewInvalidPayloadError(t *testing.T) {
	err := NewInvalidPayloadError([]string{"fields.0: label is required"})

	assert.Equal(t, ErrCodeInvalidPayload, err.Code)
	assert.False(t, err.Retryable)
	assert.Equal(t, []string{"fields.0: label is required"}, err.Metadata["problems"])
}

func TestNormalize(t *testing.T) {
	assert.Nil(t, Normalize(nil))

	std := NewInvalidPayloadError(nil)
	wrapped := fmt.Errorf("handler: %w", std)
	assert.Same(t, std, Normalize(wrapped))

	plain := Normalize(stderrors.New("boom"))
	require.NotNil(t, plain)
	assert.Equal(t, ErrCodeInternal, plain.Code)
	assert.Equal(t, "boom", plain.Details)
}

func TestConvertToBPMNError(t *testing.T) {
	tests := []struct {
		name        string
		err         *StandardError
		wantCode    string
		wantRetries int
	}{
		{"invalid payload", NewInvalidPayloadError(nil), "INVALID_PAYLOAD", 0},
		{"store fault", NewFormSubmissionFailedError(stderrors.New("x")), "FORM_SUBMISSION_FAILED", 3},
		{"timeout maps to store fault", NewSubmissionTimeoutError(stderrors.New("deadline")), "FORM_SUBMISSION_FAILED", 3},
		{"unmapped code passes through", NewEventPublishFailedError("s", stderrors.New("x")), "EVENT_PUBLISH_FAILED", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := ConvertToBPMNError(tt.err)
			assert.Equal(t, tt.wantCode, b.Code)
			assert.Equal(t, tt.wantRetries, b.Retries)
			assert.Equal(t, tt.err.Message, b.Message)
		})
	}
}

func TestBPMNError_ToErrorVariables_OmitsDetails(t *testing.T) {
	b := ConvertToBPMNError(NewFormSubmissionFailedError(stderrors.New("connection reset by peer")))
	vars := b.ToErrorVariables()

	assert.Equal(t, "FORM_SUBMISSION_FAILED", vars["errorCode"])
	assert.Equal(t, true, vars["retryable"])
	_, hasDetails := vars["errorDetails"]
	assert.False(t, hasDetails)
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "validation", GetErrorCategory(ErrCodeInvalidPayload))
	assert.Equal(t, "database", GetErrorCategory(ErrCodeFormSubmissionFailed))
	assert.Equal(t, "integration", GetErrorCategory(ErrCodeSearchIndexFailed))
	assert.Equal(t, "internal", GetErrorCategory(ErrCodeInternal))
	assert.True(t, IsRetryableErrorCode(ErrCodeDatabaseConnectionFailed))
	assert.False(t, IsRetryableErrorCode(ErrCodeInvalidPayload))
}
