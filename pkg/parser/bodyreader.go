package parser

import (
	"bufio"
	"fmt"
	"io"
	"net/textproto"
	"strconv"
	"strings"

	"github.com/actorhttp/actorhttp/pkg/errors"
)

// ReadBody drains the fully buffered body for the response described
// by head, following §4.E's state machine. method is the request
// method that produced this response; connWillClose reports whether
// the connection is expected to close after this response (an explicit
// Connection: close, or an HTTP/1.0 response without keep-alive).
// maxSize bounds the body per component A's Non-goal (no unbounded
// streaming).
func ReadBody(r *bufio.Reader, head *Head, method string, connWillClose bool, maxSize int64) ([]byte, error) {
	// A HEAD response and a 1xx/204/304 status never carry a body,
	// whatever framing headers they announce.
	status := head.StatusCode
	if strings.EqualFold(method, "HEAD") || status == 204 || status == 304 || (status >= 100 && status < 200) {
		return nil, nil
	}

	if strings.Contains(strings.ToLower(head.Headers.Get("Transfer-Encoding")), "chunked") {
		return readChunked(r, head, maxSize)
	}

	if cl := head.Headers.Get("Content-Length"); cl != "" {
		n, err := strconv.ParseInt(strings.TrimSpace(cl), 10, 64)
		if err != nil || n < 0 {
			return nil, errors.NewDecodeError("parser.body", fmt.Sprintf("invalid Content-Length %q", cl), err)
		}
		return readFixed(r, n, maxSize)
	}

	if noContentLengthRequired(head, method, connWillClose) {
		return nil, nil
	}

	if connWillClose {
		return readUntilClose(r, maxSize)
	}

	return nil, errors.NewDecodeError("parser.body", "response has neither Content-Length nor chunked framing", nil)
}

// noContentLengthRequired implements §4.E's NoContent predicate.
func noContentLengthRequired(head *Head, method string, connWillClose bool) bool {
	status := head.StatusCode
	if strings.EqualFold(method, "HEAD") {
		return true
	}
	if status == 204 || status == 304 {
		return true
	}
	if status >= 100 && status < 200 {
		return true
	}
	if strings.EqualFold(method, "GET") && connWillClose {
		return true
	}
	return false
}

func readFixed(r *bufio.Reader, n int64, maxSize int64) ([]byte, error) {
	if n > maxSize {
		return nil, errors.NewDecodeError("parser.body", "response body exceeds maximum size", nil)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, errors.NewIOError("reading fixed-length body", err)
	}
	return buf, nil
}

func readUntilClose(r *bufio.Reader, maxSize int64) ([]byte, error) {
	limited := io.LimitReader(r, maxSize+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, errors.NewIOError("reading body until close", err)
	}
	if int64(len(data)) > maxSize {
		return nil, errors.NewDecodeError("parser.body", "response body exceeds maximum size", nil)
	}
	return data, nil
}

// readChunked implements the chunked transfer-encoding state machine
// (§4.E, §9): chunk-size line (hex, optional ";ext" discarded), exactly
// size bytes of data, a trailing CRLF, repeated until a zero-size
// chunk, followed by optional trailer headers and a final blank line.
func readChunked(r *bufio.Reader, head *Head, maxSize int64) ([]byte, error) {
	tp := textproto.NewReader(r)
	var out []byte

	for {
		line, err := tp.ReadLine()
		if err != nil {
			return nil, errors.NewIOError("reading chunk size", err)
		}
		sizeStr := line
		if idx := strings.IndexByte(line, ';'); idx >= 0 {
			sizeStr = line[:idx]
		}
		sizeStr = strings.TrimSpace(sizeStr)
		size, err := strconv.ParseInt(sizeStr, 16, 64)
		if err != nil || size < 0 {
			return nil, errors.NewDecodeError("parser.chunked", fmt.Sprintf("invalid chunk size %q", line), err)
		}

		if size == 0 {
			// Trailer headers, if any, then the terminating blank line;
			// readHeaders already stops at the blank line so it doubles
			// as the trailer parser.
			trailers, err := readHeaders(r)
			if err != nil {
				return nil, err
			}
			for _, pair := range trailers.All() {
				head.Headers.Add(pair.Name, pair.Value.Raw)
			}
			break
		}

		if int64(len(out))+size > maxSize {
			return nil, errors.NewDecodeError("parser.chunked", "response body exceeds maximum size", nil)
		}

		chunk := make([]byte, size)
		if _, err := io.ReadFull(r, chunk); err != nil {
			return nil, errors.NewIOError("reading chunk data", err)
		}
		out = append(out, chunk...)

		if _, err := tp.ReadLine(); err != nil {
			return nil, errors.NewIOError("reading chunk trailing CRLF", err)
		}
	}

	return out, nil
}
