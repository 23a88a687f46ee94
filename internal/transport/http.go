// Package transport executes request descriptors over HTTP. It owns the
// concerns the adapter core delegates: retries, timeouts, rate limiting,
// and circuit breaking.
package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog"
	"resty.dev/v3"

	"tradekit/internal/circuitbreaker"
	"tradekit/internal/ratelimit"
	"tradekit/pkg/core"
)

// Client executes core.Request descriptors against the venue API.
// Safe for concurrent use.
type Client struct {
	client  *resty.Client
	limiter *ratelimit.RateLimiter
	breaker *circuitbreaker.Breaker
	logger  zerolog.Logger
	name    string
	mu      sync.RWMutex
	closed  bool
}

// Response represents an HTTP response with its status code, body, and headers.
type Response struct {
	// StatusCode is the HTTP status code returned by the server.
	StatusCode int

	// Body contains the raw response body bytes.
	Body []byte

	// Headers contains the response headers as key-value pairs.
	Headers map[string]string
}

// NewClient creates an HTTP client from the adapter configuration.
// Rate limiting and circuit breaking are enabled according to the config.
func NewClient(config *core.Config, logger zerolog.Logger) *Client {
	client := resty.New()
	client.SetTimeout(config.Timeout)
	client.SetRetryCount(config.MaxRetries)
	client.SetRetryWaitTime(config.RetryWaitMin)
	client.SetRetryMaxWaitTime(config.RetryWaitMax)
	client.AddContentTypeEncoder("application/json", func(w io.Writer, v any) error {
		data, err := sonic.Marshal(v)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	})
	client.AddContentTypeDecoder("application/json", func(r io.Reader, v any) error {
		data, err := io.ReadAll(r)
		if err != nil {
			return err
		}
		return sonic.Unmarshal(data, v)
	})

	client.AddRequestMiddleware(func(_ *resty.Client, req *resty.Request) error {
		logger.Debug().
			Str("method", req.Method).
			Str("url", req.URL).
			Msg("http request")
		return nil
	})

	client.AddResponseMiddleware(func(_ *resty.Client, resp *resty.Response) error {
		logger.Debug().
			Str("method", resp.Request.Method).
			Str("url", resp.Request.URL).
			Int("status", resp.StatusCode()).
			Int("size", len(resp.Bytes())).
			Msg("http response")
		return nil
	})

	var limiter *ratelimit.RateLimiter
	if config.RateLimitRequests > 0 {
		limiter = ratelimit.New(config.RateLimitRequests, config.RateLimitPeriod)
	}

	var breaker *circuitbreaker.Breaker
	if config.CircuitBreakerEnabled {
		breaker = circuitbreaker.New(circuitbreaker.Config{
			FailThreshold:    config.CircuitBreakerFailThreshold,
			SuccessThreshold: config.CircuitBreakerSuccessThreshold,
			Timeout:          config.CircuitBreakerTimeout,
		})
	}

	return &Client{
		client:  client,
		limiter: limiter,
		breaker: breaker,
		logger:  logger,
		name:    config.Exchange,
	}
}

// Do executes a request descriptor and returns the raw response.
// HTTP-level failures (connection, timeout) come back as transport
// errors; non-2xx statuses are returned to the caller in the Response
// for the orchestrator to classify.
func (c *Client) Do(ctx context.Context, req *core.Request) (*Response, error) {
	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return nil, core.ErrClientClosed
	}
	c.mu.RUnlock()

	if c.breaker != nil && !c.breaker.Allow() {
		return nil, core.NewAdapterError(c.name, core.ErrorTypeServerError,
			http.StatusServiceUnavailable, "circuit breaker is open")
	}

	if c.limiter != nil {
		if err := c.limiter.WaitN(ctx, req.Weight); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	r := c.client.R().SetContext(ctx)

	for k, v := range req.Headers {
		r.SetHeader(k, v)
	}

	if req.Query != nil {
		r.SetQueryParams(paramsToStringMap(req.Query))
	}

	if req.Body != nil {
		r.SetBody(req.Body)
	}

	var resp *resty.Response
	var err error

	switch req.Method {
	case http.MethodGet:
		resp, err = r.Get(req.URL)
	case http.MethodPost:
		resp, err = r.Post(req.URL)
	case http.MethodPut:
		resp, err = r.Put(req.URL)
	case http.MethodDelete:
		resp, err = r.Delete(req.URL)
	default:
		return nil, fmt.Errorf("unsupported http method: %s", req.Method)
	}

	success := err == nil && resp != nil && resp.StatusCode() < http.StatusInternalServerError
	if c.breaker != nil {
		c.breaker.Record(success)
	}

	if err != nil {
		c.logger.Error().Err(err).
			Str("method", req.Method).
			Str("url", req.URL).
			Msg("http request failed")
		return nil, classifyNetworkError(c.name, err)
	}

	headers := make(map[string]string)
	for k, v := range resp.Header() {
		if len(v) > 0 {
			headers[k] = v[0]
		}
	}

	return &Response{
		StatusCode: resp.StatusCode(),
		Body:       resp.Bytes(),
		Headers:    headers,
	}, nil
}

// Close shuts down the client. Subsequent calls to Do return ErrClientClosed.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.client.Close()
}

// IsSuccess returns true if the response status code indicates success (2xx).
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// IsError returns true if the response status code indicates an error (4xx or 5xx).
func (r *Response) IsError() bool {
	return r.StatusCode >= http.StatusBadRequest
}

// Unmarshal parses the response body into the provided value.
func (r *Response) Unmarshal(v any) error {
	return sonic.Unmarshal(r.Body, v)
}

// MapStatusCode maps an HTTP status code to an adapter error type.
func MapStatusCode(statusCode int) core.ErrorType {
	switch {
	case statusCode >= 500:
		return core.ErrorTypeServerError
	case statusCode == http.StatusTooManyRequests:
		return core.ErrorTypeRateLimit
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return core.ErrorTypeAuthentication
	case statusCode == http.StatusNotFound:
		return core.ErrorTypeNotFound
	case statusCode == http.StatusBadRequest:
		return core.ErrorTypeBadRequest
	default:
		return core.ErrorTypeUnknown
	}
}

func classifyNetworkError(name string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return core.NewAdapterError(name, core.ErrorTypeTimeout, 0, err.Error()).
			WithCode(core.ErrCodeTimeout)
	}
	return core.NewTransportError(name, err)
}

func paramsToStringMap(params core.Params) map[string]string {
	result := make(map[string]string, len(params))
	for k, v := range params {
		switch val := v.(type) {
		case string:
			result[k] = val
		case int:
			result[k] = strconv.Itoa(val)
		case int64:
			result[k] = strconv.FormatInt(val, 10)
		case float64:
			result[k] = strconv.FormatFloat(val, 'f', -1, 64)
		case bool:
			result[k] = strconv.FormatBool(val)
		default:
			result[k] = fmt.Sprintf("%v", val)
		}
	}
	return result
}
