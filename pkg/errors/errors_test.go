package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromStatus(t *testing.T) {
	tests := []struct {
		code int
		want ErrorType
	}{
		{400, ErrorTypeRequest},
		{401, ErrorTypeAuth},
		{403, ErrorTypeAuth},
		{404, ErrorTypeNotFound},
		{429, ErrorTypeRateLimit},
		{500, ErrorTypeServerError},
		{503, ErrorTypeServerError},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.code), func(t *testing.T) {
			err := FromStatus(tt.code, "Profile not found")
			assert.Equal(t, tt.want, err.Type)
			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, "Profile not found", err.Message)
		})
	}
}

func TestMessageUnwrapsTypedErrors(t *testing.T) {
	wrapped := fmt.Errorf("load more: %w", FromStatus(500, "Failed to fetch more posts."))

	assert.Equal(t, "Failed to fetch more posts.", Message(wrapped))
	assert.Equal(t, ErrorTypeServerError, TypeOf(wrapped))
	assert.Equal(t, "plain", Message(errors.New("plain")))
	assert.Equal(t, "", Message(nil))
	assert.Equal(t, ErrorTypeUnknown, TypeOf(errors.New("plain")))
}

func TestNetworkKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Network(cause)

	assert.ErrorIs(t, err, cause)
	assert.True(t, IsRetryable(err.Type))
	assert.Contains(t, err.Error(), "connection refused")
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(ErrorTypeServerError))
	assert.True(t, IsRetryable(ErrorTypeRateLimit))
	assert.False(t, IsRetryable(ErrorTypeValidation))
	assert.False(t, IsRetryable(ErrorTypeNotFound))

	assert.True(t, IsRetryableStatusCode(0))
	assert.True(t, IsRetryableStatusCode(502))
	assert.False(t, IsRetryableStatusCode(404))
	assert.False(t, IsRetryableStatusCode(400))
}
