package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdapterErrorError(t *testing.T) {
	tests := []struct {
		name     string
		err      *AdapterError
		expected string
	}{
		{
			name:     "with status code",
			err:      NewAdapterError("litebit", ErrorTypeServerError, 502, "bad gateway"),
			expected: "[litebit] SERVER_ERROR (502): bad gateway",
		},
		{
			name:     "without status code",
			err:      NewAdapterError("litebit", ErrorTypeTransport, 0, "connection refused"),
			expected: "[litebit] TRANSPORT: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestNewMissingParameterError(t *testing.T) {
	err := NewMissingParameterError("litebit", "code")

	require.NotNil(t, err)
	assert.Equal(t, ErrorTypeMissingParameter, err.Type)
	assert.Equal(t, string(ErrCodeMissingParameter), err.Code)
	assert.Contains(t, err.Message, "code")
	assert.True(t, IsMissingParameter(err))
	assert.False(t, IsUnsupported(err))
}

func TestNewUnsupportedError(t *testing.T) {
	err := NewUnsupportedError("litebit", OpFetchOrders, "v2")

	require.NotNil(t, err)
	assert.Equal(t, ErrorTypeUnsupported, err.Type)
	assert.Contains(t, err.Message, "FETCH_ORDERS")
	assert.Contains(t, err.Message, "v2")
	assert.True(t, IsUnsupported(err))
}

func TestNewTransportError(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := NewTransportError("litebit", cause)

	assert.True(t, IsTransport(err))
	assert.Equal(t, string(ErrCodeTransport), err.Code)
	assert.Contains(t, err.Message, "connection refused")
}

func TestIsTransportIncludesTimeout(t *testing.T) {
	err := NewAdapterError("litebit", ErrorTypeTimeout, 0, "deadline exceeded")
	assert.True(t, IsTransport(err))
}

func TestIsMalformedResponse(t *testing.T) {
	err := NewMalformedResponseError("litebit", "order record missing uuid")

	assert.True(t, IsMalformedResponse(err))
	assert.False(t, IsAuthentication(err))
}

func TestErrorHelpersWrappedError(t *testing.T) {
	inner := NewMissingParameterError("litebit", "uuid")
	wrapped := fmt.Errorf("fetch order: %w", inner)

	assert.True(t, IsMissingParameter(wrapped))
	assert.True(t, IsErrorCode(wrapped, ErrCodeMissingParameter))
	assert.False(t, IsErrorCode(wrapped, ErrCodeTimeout))
}

func TestErrorHelpersNonAdapterError(t *testing.T) {
	err := errors.New("plain error")

	assert.False(t, IsMissingParameter(err))
	assert.False(t, IsUnsupported(err))
	assert.False(t, IsTransport(err))
	assert.False(t, IsErrorCode(err, ErrCodeTransport))
}

func TestWithCode(t *testing.T) {
	err := NewAdapterError("litebit", ErrorTypeRateLimit, 429, "slow down").
		WithCode(ErrCodeRateLimit)

	assert.Equal(t, "RATE_LIMIT", err.Code)
	assert.True(t, IsErrorCode(err, ErrCodeRateLimit))
}
