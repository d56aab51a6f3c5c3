package httpclient

import (
	"encoding/base64"
	"net/url"
	"time"

	"github.com/actorhttp/actorhttp/pkg/body"
	"github.com/actorhttp/actorhttp/pkg/errors"
	"github.com/actorhttp/actorhttp/pkg/headers"
)

// Request is a fully built request ready for dispatch: everything the
// driver needs, with no further fallible steps between here and the
// wire (§4.I's input).
type Request struct {
	Method  string
	URL     *url.URL
	Headers *headers.Headers
	Body    *body.Body
	Timeout time.Duration
	Version string
}

// RequestBuilder is a fluent, fallible accumulator over a partial
// Request (§4.K). Errors accumulate on the builder and surface at
// Build()/Send() rather than on the individual calls, so a chain of
// method calls can be written without intermediate error checks.
type RequestBuilder struct {
	client *Client
	req    *Request
	err    error
}

func newRequestBuilder(c *Client, method, rawURL string) *RequestBuilder {
	rb := &RequestBuilder{
		client: c,
		req: &Request{
			Method:  method,
			Headers: headers.New(),
			Version: "1.1",
		},
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		rb.err = errors.NewBuilderError("parse_url", "invalid request URL", err)
		return rb
	}
	rb.req.URL = u
	rb.extractUserinfo()
	return rb
}

// extractUserinfo implements §4.K's construction-time rule: a
// user:pass@host URL is converted into a basic_auth() call and the
// userinfo is cleared from the URL before anything else runs.
func (rb *RequestBuilder) extractUserinfo() {
	if rb.req.URL.User == nil {
		return
	}
	user := rb.req.URL.User.Username()
	pass, _ := rb.req.URL.User.Password()
	rb.req.URL.User = nil
	rb.BasicAuth(user, pass)
}

// Header appends a header value.
func (rb *RequestBuilder) Header(name, value string) *RequestBuilder {
	if rb.err != nil {
		return rb
	}
	rb.req.Headers.Add(name, value)
	return rb
}

// HeaderSensitive appends a header value flagged sensitive, so it is
// stripped by the redirect driver on a cross-origin hop.
func (rb *RequestBuilder) HeaderSensitive(name, value string) *RequestBuilder {
	if rb.err != nil {
		return rb
	}
	rb.req.Headers.AddSensitive(name, value)
	return rb
}

// Headers merges a map into the request, replacing any existing
// values per name.
func (rb *RequestBuilder) Headers(h map[string]string) *RequestBuilder {
	if rb.err != nil {
		return rb
	}
	for k, v := range h {
		rb.req.Headers.Set(k, v)
	}
	return rb
}

// BasicAuth sets Authorization: Basic <base64(u:p)>, sensitive.
func (rb *RequestBuilder) BasicAuth(user, pass string) *RequestBuilder {
	if rb.err != nil {
		return rb
	}
	token := base64.StdEncoding.EncodeToString([]byte(user + ":" + pass))
	rb.req.Headers.Del("Authorization")
	rb.req.Headers.AddSensitive("Authorization", "Basic "+token)
	return rb
}

// BearerAuth sets Authorization: Bearer <token>, sensitive.
func (rb *RequestBuilder) BearerAuth(token string) *RequestBuilder {
	if rb.err != nil {
		return rb
	}
	rb.req.Headers.Del("Authorization")
	rb.req.Headers.AddSensitive("Authorization", "Bearer "+token)
	return rb
}

// Body attaches a raw body.
func (rb *RequestBuilder) Body(data []byte) *RequestBuilder {
	if rb.err != nil {
		return rb
	}
	rb.req.Body = body.FromBytes(data)
	return rb
}

// JSON attaches a JSON-serialized body and sets Content-Type.
func (rb *RequestBuilder) JSON(v interface{}) *RequestBuilder {
	if rb.err != nil {
		return rb
	}
	b, err := body.FromJSON(v)
	if err != nil {
		rb.err = err
		return rb
	}
	rb.req.Body = b
	rb.req.Headers.Set("Content-Type", "application/json")
	return rb
}

// Form attaches a URL-encoded body and sets Content-Type.
func (rb *RequestBuilder) Form(v url.Values) *RequestBuilder {
	if rb.err != nil {
		return rb
	}
	rb.req.Body = body.FromText(v.Encode())
	rb.req.Headers.Set("Content-Type", "application/x-www-form-urlencoded")
	return rb
}

// Query merges v into the request URL's query string, preserving
// duplicate keys. An empty v leaves the query untouched.
func (rb *RequestBuilder) Query(v url.Values) *RequestBuilder {
	if rb.err != nil || len(v) == 0 {
		return rb
	}
	existing := rb.req.URL.Query()
	for k, vals := range v {
		for _, val := range vals {
			existing.Add(k, val)
		}
	}
	rb.req.URL.RawQuery = existing.Encode()
	return rb
}

// Version overrides the HTTP version string sent on the request line.
func (rb *RequestBuilder) Version(v string) *RequestBuilder {
	if rb.err != nil {
		return rb
	}
	rb.req.Version = v
	return rb
}

// Timeout overrides the client's default timeout for this request.
func (rb *RequestBuilder) Timeout(d time.Duration) *RequestBuilder {
	if rb.err != nil {
		return rb
	}
	rb.req.Timeout = d
	return rb
}

// Build returns the accumulated Request, or the first error recorded
// during the chain.
func (rb *RequestBuilder) Build() (*Request, error) {
	if rb.err != nil {
		return nil, rb.err
	}
	return rb.req, nil
}

// Send builds the request and dispatches it through the owning
// Client's actor.
func (rb *RequestBuilder) Send() (*Response, error) {
	req, err := rb.Build()
	if err != nil {
		return nil, err
	}
	return rb.client.execute(req)
}
