// Package wire serializes a request's method, URL, headers and body
// into an HTTP/1.1 request head plus body bytes, grounded on
// original_source's request_to_vec() and the teacher's request-writing
// path.
package wire

import (
	"bytes"
	"fmt"
	"strconv"
	"unicode/utf8"

	"golang.org/x/net/http/httpguts"

	"github.com/actorhttp/actorhttp/pkg/headers"
)

// Message is the minimal shape the encoder needs; the httpclient driver
// builds one from each Request.
type Message struct {
	Method  string
	Path    string // path plus optional "?query", already joined
	Version string // e.g. "1.1"
	Headers *headers.Headers
	Body    []byte
}

// Encode serializes m into a well-formed HTTP/1.1 request head
// followed by exactly len(Body) bytes, or no body at all.
//
// Steps, in order (§4.B):
//  1. If a body is present and Content-Length isn't already set, add it.
//  2. Emit the request line.
//  3. Emit each header, skipping values that aren't valid UTF-8 or that
//     carry a stray control character (golang.org/x/net/http/httpguts).
//  4. Emit the terminating blank line.
//  5. Append the body verbatim.
func Encode(m Message) []byte {
	var buf bytes.Buffer

	h := m.Headers
	if h == nil {
		h = headers.New()
	} else {
		h = h.Clone()
	}

	if len(m.Body) > 0 && !h.Has("Content-Length") {
		h.Set("Content-Length", strconv.Itoa(len(m.Body)))
	}

	version := m.Version
	if version == "" {
		version = "1.1"
	}

	fmt.Fprintf(&buf, "%s %s HTTP/%s\r\n", m.Method, m.Path, version)

	for _, pair := range h.All() {
		if !utf8.ValidString(pair.Value.Raw) || !httpguts.ValidHeaderFieldValue(pair.Value.Raw) {
			continue
		}
		fmt.Fprintf(&buf, "%s: %s\r\n", pair.Name, pair.Value.Raw)
	}

	buf.WriteString("\r\n")
	buf.Write(m.Body)

	return buf.Bytes()
}
