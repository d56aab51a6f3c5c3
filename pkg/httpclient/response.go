package httpclient

import (
	"encoding/json"
	"net/url"

	"github.com/actorhttp/actorhttp/pkg/body"
	"github.com/actorhttp/actorhttp/pkg/cookiejar"
	"github.com/actorhttp/actorhttp/pkg/errors"
	"github.com/actorhttp/actorhttp/pkg/headers"
	"github.com/actorhttp/actorhttp/pkg/timing"
	"github.com/actorhttp/actorhttp/pkg/transport"
)

// Response is a fully buffered, decoded response (§3's Response).
type Response struct {
	StatusCode int
	Proto      string
	Hdr        *headers.Headers
	FinalURL   *url.URL
	BodyBytes  []byte

	metrics  timing.Metrics
	connMeta *transport.ConnectionMetadata
}

// Status returns the response status code.
func (r *Response) Status() int { return r.StatusCode }

// Version returns the response's HTTP version, e.g. "1.1".
func (r *Response) Version() string { return r.Proto }

// Headers returns the response's header multimap.
func (r *Response) Headers() *headers.Headers { return r.Hdr }

// URL returns the final, post-redirect URL the response came from.
func (r *Response) URL() *url.URL { return r.FinalURL }

// Bytes returns the decoded response body.
func (r *Response) Bytes() []byte { return r.BodyBytes }

// ContentLength returns the length of the decoded body in bytes.
func (r *Response) ContentLength() int { return len(r.BodyBytes) }

// Text returns the decoded body as a UTF-8 string.
func (r *Response) Text() (string, error) {
	out, err := body.ValidateUTF8(r.BodyBytes)
	if err != nil {
		return "", errors.NewDecodeError("response.text", "body is not valid UTF-8", err).WithURL(r.urlString())
	}
	return string(out), nil
}

// JSON unmarshals the decoded body into v.
func (r *Response) JSON(v interface{}) error {
	if err := json.Unmarshal(r.BodyBytes, v); err != nil {
		return errors.NewSerializationError("json.unmarshal", err).WithURL(r.urlString())
	}
	return nil
}

// Cookies returns every Set-Cookie value on this response, parsed and
// scoped against its URL.
func (r *Response) Cookies() []cookiejar.Cookie {
	values := r.Hdr.Values("Set-Cookie")
	if len(values) == 0 {
		return nil
	}
	raw := make([]string, len(values))
	for i, v := range values {
		raw[i] = v.Raw
	}
	return cookiejar.ParseCookies(raw, r.FinalURL)
}

// Metrics returns the per-phase timing breakdown for the request that
// produced this response (§3's ambient addition).
func (r *Response) Metrics() timing.Metrics { return r.metrics }

// ConnectionMetadata returns the connection-level record (TLS version,
// remote address, reuse/proxy status) for the request that produced
// this response (§3's domain addition).
func (r *Response) ConnectionMetadata() *transport.ConnectionMetadata { return r.connMeta }

func (r *Response) urlString() string {
	if r.FinalURL == nil {
		return ""
	}
	return r.FinalURL.String()
}
