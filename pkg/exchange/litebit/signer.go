package litebit

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/bytedance/sonic"

	"tradekit/pkg/core"
)

var placeholderPattern = regexp.MustCompile(`\{([^{}]+)\}`)

// Signer builds fully-formed request descriptors from a logical path
// template, visibility class, HTTP method, and parameter set. It is
// pure and synchronous; no network I/O happens here.
type Signer struct {
	schema *Schema
	name   string
}

// NewSigner creates a Signer bound to one schema version.
func NewSigner(name string, schema *Schema) *Signer {
	return &Signer{schema: schema, name: name}
}

// Sign produces a request descriptor:
//
//  1. every {name} placeholder in the template is substituted from
//     params, and the consumed keys are removed,
//  2. the URL is composed as baseURL/version/path,
//  3. Accept: application/json is set on all requests,
//  4. private requests get an Authorization bearer header from the
//     caller-supplied credentials,
//  5. for POST the residual parameters become the JSON body; otherwise
//     they are left as query parameters for the transport to encode.
//
// Sign fails when the endpoint is not declared by the schema, when a
// placeholder has no matching parameter, or when a private endpoint is
// requested without credentials.
func (s *Signer) Sign(visibility core.Visibility, method, template string, params core.Params, headers map[string]string, creds *core.Credentials) (*core.Request, error) {
	if !s.schema.HasEndpoint(visibility, method, template) {
		return nil, core.NewAdapterError(s.name, core.ErrorTypeUnsupported, 0,
			fmt.Sprintf("endpoint %s %s not declared by schema %s", method, template, s.schema.Version)).
			WithCode(core.ErrCodeUnsupported)
	}

	path, residual, err := s.expandPath(template, params)
	if err != nil {
		return nil, err
	}

	url := strings.TrimSuffix(s.schema.BaseURL, "/") + "/" + s.schema.Version + "/" + path

	req := core.NewRequest(method, url)
	for k, v := range headers {
		req.SetHeader(k, v)
	}
	req.SetHeader("Accept", "application/json")

	if visibility == core.Private {
		if creds == nil || creds.Token == "" {
			return nil, core.NewAdapterError(s.name, core.ErrorTypeAuthentication, 0,
				core.ErrNoCredentials.Error()).
				WithCode(core.ErrCodeNoCredentials)
		}
		req.SetHeader("Authorization", "Bearer "+creds.Token)
		req.SetRequireAuth(true)
	}

	if method == http.MethodPost {
		body, err := sonic.Marshal(residual)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		req.SetBody(body)
		req.SetHeader("Content-Type", "application/json")
	} else if len(residual) > 0 {
		req.SetQueryParams(residual)
	}

	return req, nil
}

// expandPath substitutes every {name} placeholder in the template and
// returns the expanded path together with the residual parameters.
func (s *Signer) expandPath(template string, params core.Params) (string, core.Params, error) {
	residual := params.Clone()
	if residual == nil {
		residual = make(core.Params)
	}

	var missing string
	path := placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		key := match[1 : len(match)-1]
		value, ok := residual[key]
		if !ok {
			if missing == "" {
				missing = key
			}
			return match
		}
		delete(residual, key)
		return fmt.Sprintf("%v", value)
	})

	if missing != "" {
		return "", nil, core.NewMissingParameterError(s.name, missing)
	}
	return path, residual, nil
}
