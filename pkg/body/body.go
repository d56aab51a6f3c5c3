// Package body implements the bounded in-memory byte container used
// for both request and response bodies.
package body

import (
	"bytes"
	"encoding/json"
	"sync"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/actorhttp/actorhttp/pkg/constants"
	"github.com/actorhttp/actorhttp/pkg/errors"
)

// strictUTF8 rejects any byte sequence that isn't valid UTF-8 instead of
// substituting the replacement character, giving Text() the same
// fail-on-invalid-UTF-8 behavior as utf8.Valid but routed through the
// teacher module graph's existing golang.org/x/text dependency (an
// indirect dependency of x/net, promoted to direct use here).
var strictUTF8 = unicode.UTF8.NewDecoder()

// ValidateUTF8 returns data re-encoded through a strict UTF-8 decoder,
// failing if any byte sequence is invalid. Shared by Body.Text() and
// httpclient.Response.Text() so both body-to-text conversions reject
// malformed UTF-8 identically.
func ValidateUTF8(data []byte) ([]byte, error) {
	out, _, err := transform.Bytes(strictUTF8, data)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Body is an opaque, bounded byte sequence. It knows its length and
// can be fallibly converted to text or parsed as JSON. Unlike the
// teacher's spillable buffer, Body never spills to disk: the Non-goal
// of unbounded streaming means a body that would exceed the configured
// maximum is a decode failure, not a reason to grow further.
type Body struct {
	mu     sync.Mutex
	buf    bytes.Buffer
	limit  int64
	closed bool
}

// New returns an empty Body bounded by limit bytes. limit <= 0 uses
// constants.DefaultMaxBodySize.
func New(limit int64) *Body {
	if limit <= 0 {
		limit = constants.DefaultMaxBodySize
	}
	return &Body{limit: limit}
}

// FromBytes wraps existing raw bytes, unbounded beyond their own length.
func FromBytes(data []byte) *Body {
	b := &Body{limit: constants.DefaultMaxBodySize}
	b.buf.Write(data)
	return b
}

// FromText wraps a UTF-8 string.
func FromText(s string) *Body {
	return FromBytes([]byte(s))
}

// FromJSON serializes v and wraps the result, setting no headers
// itself (the caller/RequestBuilder is responsible for Content-Type).
func FromJSON(v interface{}) (*Body, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.NewSerializationError("json.marshal", err)
	}
	return FromBytes(data), nil
}

// Empty returns a zero-length Body.
func Empty() *Body {
	return FromBytes(nil)
}

// Write appends p, failing with a Decode error if doing so would
// exceed the configured maximum size.
func (b *Body) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return 0, errors.NewIOError("body is closed", nil)
	}
	if int64(b.buf.Len()+len(p)) > b.limit {
		return 0, errors.NewDecodeError("body.write", "response body exceeds maximum size", nil)
	}
	return b.buf.Write(p)
}

// Bytes returns the accumulated content.
func (b *Body) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Bytes()
}

// Len reports the number of bytes stored.
func (b *Body) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Len()
}

// IsEmpty reports whether the body has zero length.
func (b *Body) IsEmpty() bool {
	return b.Len() == 0
}

// Text returns the body as a UTF-8 string, failing with a Decode error
// on invalid UTF-8.
func (b *Body) Text() (string, error) {
	out, err := ValidateUTF8(b.Bytes())
	if err != nil {
		return "", errors.NewDecodeError("body.text", "body is not valid UTF-8", err)
	}
	return string(out), nil
}

// JSON parses the body into v.
func (b *Body) JSON(v interface{}) error {
	if err := json.Unmarshal(b.Bytes(), v); err != nil {
		return errors.NewSerializationError("json.unmarshal", err)
	}
	return nil
}

// Close marks the body closed; idempotent.
func (b *Body) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

// Reset clears the body for reuse.
func (b *Body) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.Reset()
	b.closed = false
}
