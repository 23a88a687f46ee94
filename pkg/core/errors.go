package core

import (
	"errors"
	"fmt"
	"time"
)

// ErrorType represents the category of an adapter error.
type ErrorType int

// Error type constants categorize errors for proper handling.
const (
	// ErrorTypeUnknown indicates an unclassified error.
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeMissingParameter indicates an unresolved required path placeholder.
	ErrorTypeMissingParameter
	// ErrorTypeUnsupported indicates an operation the active schema version does not declare.
	ErrorTypeUnsupported
	// ErrorTypeTransport indicates a network or connection failure.
	ErrorTypeTransport
	// ErrorTypeTimeout indicates the request exceeded its deadline.
	ErrorTypeTimeout
	// ErrorTypeMalformedResponse indicates a venue response missing expected fields.
	ErrorTypeMalformedResponse
	// ErrorTypeAuthentication indicates invalid or missing credentials.
	ErrorTypeAuthentication
	// ErrorTypeRateLimit indicates the venue rejected the request for rate limiting.
	ErrorTypeRateLimit
	// ErrorTypeBadRequest indicates invalid request parameters.
	ErrorTypeBadRequest
	// ErrorTypeNotFound indicates the requested resource does not exist.
	ErrorTypeNotFound
	// ErrorTypeServerError indicates a venue-side error.
	ErrorTypeServerError
)

// String returns the string representation of the error type.
func (t ErrorType) String() string {
	return [...]string{
		"UNKNOWN",
		"MISSING_PARAMETER",
		"UNSUPPORTED_OPERATION",
		"TRANSPORT",
		"TIMEOUT",
		"MALFORMED_RESPONSE",
		"AUTHENTICATION",
		"RATE_LIMIT",
		"BAD_REQUEST",
		"NOT_FOUND",
		"SERVER_ERROR",
	}[t]
}

// Sentinel errors for common error conditions.
var (
	// ErrClientClosed is returned when attempting to use a closed client.
	ErrClientClosed = errors.New("client is closed")
	// ErrNoCredentials is returned when a private endpoint is called without a bearer token.
	ErrNoCredentials = errors.New("no credentials configured")
	// ErrMarketsNotLoaded is returned when an operation needs the market
	// list before it has been loaded.
	ErrMarketsNotLoaded = errors.New("markets not loaded")
)

// AdapterError represents a structured error raised by the adapter or
// derived from a venue response. It carries enough context for callers
// to classify and log the failure.
type AdapterError struct {
	// Type categorizes the error for programmatic handling.
	Type ErrorType `json:"type"`
	// StatusCode is the HTTP status code, zero when no response was received.
	StatusCode int `json:"status_code"`
	// Code is the stable machine-readable error code.
	Code string `json:"code,omitempty"`
	// Message is the human-readable error description.
	Message string `json:"message"`
	// Exchange identifies the venue the error originated from.
	Exchange string `json:"exchange"`
	// Timestamp is when the error occurred.
	Timestamp time.Time `json:"timestamp"`
}

// Error implements the error interface for AdapterError.
func (e *AdapterError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("[%s] %s (%d): %s", e.Exchange, e.Type, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Exchange, e.Type, e.Message)
}

// WithCode returns the error with the specified code attached.
func (e *AdapterError) WithCode(code ErrorCode) *AdapterError {
	e.Code = string(code)
	return e
}

// NewAdapterError creates a new AdapterError with the specified details.
// The timestamp is automatically set to the current time.
func NewAdapterError(exchange string, errorType ErrorType, statusCode int, message string) *AdapterError {
	return &AdapterError{
		Type:       errorType,
		StatusCode: statusCode,
		Message:    message,
		Exchange:   exchange,
		Timestamp:  time.Now(),
	}
}

// NewMissingParameterError reports an unresolved path placeholder.
func NewMissingParameterError(exchange, param string) *AdapterError {
	return NewAdapterError(exchange, ErrorTypeMissingParameter, 0,
		fmt.Sprintf("missing required parameter: %s", param)).
		WithCode(ErrCodeMissingParameter)
}

// NewUnsupportedError reports an operation absent from the active schema version.
func NewUnsupportedError(exchange string, op Operation, version string) *AdapterError {
	return NewAdapterError(exchange, ErrorTypeUnsupported, 0,
		fmt.Sprintf("operation %s not supported by schema %s", op, version)).
		WithCode(ErrCodeUnsupported)
}

// NewMalformedResponseError reports a venue response missing an expected field.
func NewMalformedResponseError(exchange, detail string) *AdapterError {
	return NewAdapterError(exchange, ErrorTypeMalformedResponse, 0,
		fmt.Sprintf("malformed response: %s", detail)).
		WithCode(ErrCodeMalformedResponse)
}

// NewTransportError wraps a network-level failure from the transport.
func NewTransportError(exchange string, err error) *AdapterError {
	return NewAdapterError(exchange, ErrorTypeTransport, 0, err.Error()).
		WithCode(ErrCodeTransport)
}

// IsMissingParameter returns true if the error is an unresolved placeholder failure.
func IsMissingParameter(err error) bool {
	return isType(err, ErrorTypeMissingParameter)
}

// IsUnsupported returns true if the error reports an undeclared operation.
func IsUnsupported(err error) bool {
	return isType(err, ErrorTypeUnsupported)
}

// IsTransport returns true if the error is a network-level failure.
func IsTransport(err error) bool {
	return isType(err, ErrorTypeTransport) || isType(err, ErrorTypeTimeout)
}

// IsMalformedResponse returns true if the error reports a response shape violation.
func IsMalformedResponse(err error) bool {
	return isType(err, ErrorTypeMalformedResponse)
}

// IsAuthentication returns true if the error is an authentication failure.
func IsAuthentication(err error) bool {
	return isType(err, ErrorTypeAuthentication)
}

func isType(err error, t ErrorType) bool {
	var aerr *AdapterError
	if errors.As(err, &aerr) {
		return aerr.Type == t
	}
	return false
}
