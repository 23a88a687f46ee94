package transport

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradekit/pkg/core"
)

func testConfig() *core.Config {
	config := core.DefaultConfig("litebit")
	config.MaxRetries = 0
	return config
}

func newTestClient(t *testing.T, config *core.Config) *Client {
	t.Helper()
	client := NewClient(config, zerolog.Nop())
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestDoGet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "NLG-EUR", r.URL.Query().Get("code"))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer server.Close()

	client := newTestClient(t, testConfig())

	req := core.NewRequest(http.MethodGet, server.URL).
		SetHeader("Accept", "application/json").
		SetQuery("code", "NLG-EUR")

	resp, err := client.Do(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, resp.IsSuccess())
	assert.Equal(t, []byte(`{"data":[]}`), resp.Body)
}

func TestDoPostSendsBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"market":"NLG-EUR"}`, string(body))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"data":{"uuid":"abc"}}`))
	}))
	defer server.Close()

	client := newTestClient(t, testConfig())

	req := core.NewRequest(http.MethodPost, server.URL).
		SetHeader("Content-Type", "application/json").
		SetBody([]byte(`{"market":"NLG-EUR"}`))

	resp, err := client.Do(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, resp.IsSuccess())
}

func TestDoDelete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"data":null}`))
	}))
	defer server.Close()

	client := newTestClient(t, testConfig())

	resp, err := client.Do(context.Background(), core.NewRequest(http.MethodDelete, server.URL))
	require.NoError(t, err)
	assert.True(t, resp.IsSuccess())
}

func TestDoNonSuccessStatusReturnsResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"message":"rate limit exceeded"}`))
	}))
	defer server.Close()

	client := newTestClient(t, testConfig())

	resp, err := client.Do(context.Background(), core.NewRequest(http.MethodGet, server.URL))
	require.NoError(t, err)
	assert.True(t, resp.IsError())
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}

func TestDoUnsupportedMethod(t *testing.T) {
	client := newTestClient(t, testConfig())

	_, err := client.Do(context.Background(), core.NewRequest("PATCH", "http://localhost"))
	assert.Error(t, err)
}

func TestDoConnectionRefused(t *testing.T) {
	config := testConfig()
	config.Timeout = time.Second

	client := newTestClient(t, config)

	_, err := client.Do(context.Background(), core.NewRequest(http.MethodGet, "http://127.0.0.1:1"))
	require.Error(t, err)
	assert.True(t, core.IsTransport(err))
}

func TestDoAfterClose(t *testing.T) {
	client := NewClient(testConfig(), zerolog.Nop())
	require.NoError(t, client.Close())

	_, err := client.Do(context.Background(), core.NewRequest(http.MethodGet, "http://localhost"))
	assert.ErrorIs(t, err, core.ErrClientClosed)
}

func TestCircuitBreakerOpensAfterFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	config := testConfig()
	config.CircuitBreakerEnabled = true
	config.CircuitBreakerFailThreshold = 2
	config.CircuitBreakerSuccessThreshold = 1
	config.CircuitBreakerTimeout = time.Hour

	client := newTestClient(t, config)
	req := core.NewRequest(http.MethodGet, server.URL)

	for i := 0; i < 2; i++ {
		resp, err := client.Do(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	}

	_, err := client.Do(context.Background(), req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circuit breaker is open")
}

func TestUnmarshal(t *testing.T) {
	resp := &Response{Body: []byte(`{"data":[{"code":"BTC"}]}`)}

	var payload struct {
		Data []struct {
			Code string `json:"code"`
		} `json:"data"`
	}
	require.NoError(t, resp.Unmarshal(&payload))
	require.Len(t, payload.Data, 1)
	assert.Equal(t, "BTC", payload.Data[0].Code)
}

func TestMapStatusCode(t *testing.T) {
	tests := []struct {
		status   int
		expected core.ErrorType
	}{
		{status: 500, expected: core.ErrorTypeServerError},
		{status: 503, expected: core.ErrorTypeServerError},
		{status: 429, expected: core.ErrorTypeRateLimit},
		{status: 401, expected: core.ErrorTypeAuthentication},
		{status: 403, expected: core.ErrorTypeAuthentication},
		{status: 404, expected: core.ErrorTypeNotFound},
		{status: 400, expected: core.ErrorTypeBadRequest},
		{status: 418, expected: core.ErrorTypeUnknown},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, MapStatusCode(tt.status), "status %d", tt.status)
	}
}
