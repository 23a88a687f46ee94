package core

import "maps"

// Params is a mapping of parameter names to scalar values.
type Params map[string]any

// Clone returns a shallow copy of the parameter map.
func (p Params) Clone() Params {
	if p == nil {
		return nil
	}
	out := make(Params, len(p))
	maps.Copy(out, p)
	return out
}

// Request is a fully-formed request descriptor produced by the signer.
// It is constructed per call, handed to the transport, and never persisted.
type Request struct {
	Method string `json:"method"`
	// URL is the complete request URL including base, version, and path.
	URL string `json:"url"`
	// Query holds residual parameters the transport encodes as a query string.
	Query   Params            `json:"query,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
	// Body is the serialized request body, nil when absent.
	Body []byte `json:"body,omitempty"`
	// Weight is the rate-limit cost of the request.
	Weight int `json:"weight"`
	// RequireAuth marks requests to private endpoints.
	RequireAuth bool `json:"require_auth"`
}

// NewRequest creates a request descriptor with the given method and URL.
func NewRequest(method, url string) *Request {
	return &Request{
		Method:  method,
		URL:     url,
		Query:   make(Params),
		Headers: make(map[string]string),
		Weight:  1,
	}
}

// SetQuery sets a single residual query parameter.
func (r *Request) SetQuery(key string, value any) *Request {
	if r.Query == nil {
		r.Query = make(Params)
	}
	r.Query[key] = value
	return r
}

// SetQueryParams merges the given parameters into the residual query set.
func (r *Request) SetQueryParams(params Params) *Request {
	if r.Query == nil {
		r.Query = make(Params)
	}
	maps.Copy(r.Query, params)
	return r
}

// SetHeader sets a request header.
func (r *Request) SetHeader(key, value string) *Request {
	if r.Headers == nil {
		r.Headers = make(map[string]string)
	}
	r.Headers[key] = value
	return r
}

// SetBody sets the serialized request body.
func (r *Request) SetBody(body []byte) *Request {
	r.Body = body
	return r
}

// SetWeight sets the rate-limit cost of the request.
func (r *Request) SetWeight(weight int) *Request {
	r.Weight = weight
	return r
}

// SetRequireAuth marks the request as requiring authentication.
func (r *Request) SetRequireAuth(require bool) *Request {
	r.RequireAuth = require
	return r
}
