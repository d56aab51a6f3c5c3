// Package parser implements the streaming HTTP/1.1 response parser
// (status line + headers) and the body reader that follows it,
// grounded on the teacher's pkg/client read* helpers and
// original_source's parse_response loop.
package parser

import (
	"bufio"
	"fmt"
	"io"
	"net/textproto"
	"strconv"
	"strings"

	"github.com/actorhttp/actorhttp/pkg/constants"
	"github.com/actorhttp/actorhttp/pkg/errors"
	"github.com/actorhttp/actorhttp/pkg/headers"
)

// Head is the result of parsing a response head: status line plus
// headers, with the original case of header names preserved.
type Head struct {
	StatusCode int
	Reason     string
	Version    string
	Headers    *headers.Headers
}

// ParseHead reads from r until a full response head (status line +
// headers + terminating blank line) has been consumed. It never reads
// past the blank line; the caller's bufio.Reader is left positioned at
// the start of the body.
//
// Mirrors §4.D: incremental parse-or-read-more is naturally expressed
// here as bufio.Reader buffering rather than the manual
// accumulate-then-reparse loop the original source used, since Go's
// buffered reader already amortizes partial reads. The head is bounded
// by the MaxHeaderBytes (64 KiB) and MaxHeaderCount (128) guards below;
// there is no separate cap on the size of the whole response. The
// 4096-byte read chunk size is the caller's bufio.Reader size.
func ParseHead(r *bufio.Reader) (*Head, error) {
	statusLine, err := readLine(r)
	if err != nil {
		return nil, err
	}
	statusCode, reason, version, err := parseStatusLine(statusLine)
	if err != nil {
		return nil, err
	}

	h, err := readHeaders(r)
	if err != nil {
		return nil, err
	}

	return &Head{StatusCode: statusCode, Reason: reason, Version: version, Headers: h}, nil
}

func readLine(r *bufio.Reader) (string, error) {
	tp := textproto.NewReader(r)
	line, err := tp.ReadLine()
	if err != nil {
		if err == io.EOF {
			return "", errors.NewDecodeError("parser.readline", "connection closed before any data", err)
		}
		return "", errors.NewIOError("reading status line", err)
	}
	return line, nil
}

func parseStatusLine(line string) (code int, reason string, version string, err error) {
	// "HTTP/1.1 200 OK"
	parts := strings.SplitN(line, " ", 3)
	if len(parts) < 2 {
		return 0, "", "", errors.NewDecodeError("parser.statusline", fmt.Sprintf("malformed status line %q", line), nil)
	}
	httpVer := parts[0]
	if !strings.HasPrefix(httpVer, "HTTP/") {
		return 0, "", "", errors.NewDecodeError("parser.statusline", fmt.Sprintf("malformed protocol %q", httpVer), nil)
	}
	version = strings.TrimPrefix(httpVer, "HTTP/")

	code, convErr := strconv.Atoi(parts[1])
	if convErr != nil || code < 100 || code > 599 {
		return 0, "", "", errors.NewDecodeError("parser.statusline", fmt.Sprintf("unknown status code in %q", line), convErr)
	}
	if len(parts) == 3 {
		reason = parts[2]
	}
	return code, reason, version, nil
}

// readHeaders reads header lines (with RFC 7230 §3.2.4 continuation
// folding) until a blank line, enforcing MaxHeaderCount and
// MaxHeaderBytes.
func readHeaders(r *bufio.Reader) (*headers.Headers, error) {
	h := headers.New()
	var totalBytes int
	count := 0

	tp := textproto.NewReader(r)
	var lastName string

	for {
		line, err := tp.ReadLineBytes()
		if err != nil {
			return nil, errors.NewIOError("reading headers", err)
		}
		totalBytes += len(line) + 2
		if totalBytes > constants.MaxHeaderBytes {
			return nil, errors.NewDecodeError("parser.headers", "response headers exceed maximum size", nil)
		}
		if len(line) == 0 {
			break // blank line terminates the header block
		}

		if line[0] == ' ' || line[0] == '\t' {
			// continuation of the previous header's value
			if lastName == "" {
				return nil, errors.NewDecodeError("parser.headers", "header continuation without a preceding header", nil)
			}
			cont := strings.TrimSpace(string(line))
			vals := h.Values(lastName)
			if len(vals) > 0 {
				merged := vals[len(vals)-1].Raw + " " + cont
				h.Del(lastName)
				for i, v := range vals {
					if i == len(vals)-1 {
						h.Add(lastName, merged)
					} else {
						h.Add(lastName, v.Raw)
					}
				}
			}
			continue
		}

		idx := strings.IndexByte(string(line), ':')
		if idx < 0 {
			return nil, errors.NewDecodeError("parser.headers", fmt.Sprintf("malformed header line %q", string(line)), nil)
		}
		name := string(line[:idx])
		value := strings.TrimSpace(string(line[idx+1:]))
		h.Add(name, value)
		lastName = name
		count++
		if count > constants.MaxHeaderCount {
			return nil, errors.NewDecodeError("parser.headers", "too many headers", nil)
		}
	}

	return h, nil
}
