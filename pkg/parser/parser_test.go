package parser

import (
	"bufio"
	"strings"
	"testing"

	"github.com/actorhttp/actorhttp/pkg/headers"
)

func newHeadersWith(name, value string) *headers.Headers {
	h := headers.New()
	h.Add(name, value)
	return h
}

func TestParseHeadStatusLineAndHeaders(t *testing.T) {
	raw := "HTTP/1.1 200 OK\r\nContent-Type: text/plain\r\nX-Multi: a\r\nX-Multi: b\r\n\r\nbody"
	r := bufio.NewReader(strings.NewReader(raw))

	head, err := ParseHead(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if head.StatusCode != 200 {
		t.Fatalf("expected status 200, got %d", head.StatusCode)
	}
	if head.Headers.Get("Content-Type") != "text/plain" {
		t.Fatalf("expected Content-Type text/plain, got %q", head.Headers.Get("Content-Type"))
	}
	vals := head.Headers.Values("X-Multi")
	if len(vals) != 2 || vals[0].Raw != "a" || vals[1].Raw != "b" {
		t.Fatalf("expected duplicate X-Multi values preserved, got %+v", vals)
	}

	rest, _ := r.Peek(4)
	if string(rest) != "body" {
		t.Fatalf("expected reader positioned at body, got %q", rest)
	}
}

func TestParseHeadFoldsContinuationLines(t *testing.T) {
	raw := "HTTP/1.1 200 OK\r\nX-Long: first\r\n second-part\r\n\r\n"
	r := bufio.NewReader(strings.NewReader(raw))

	head, err := ParseHead(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := head.Headers.Get("X-Long"); got != "first second-part" {
		t.Fatalf("expected folded continuation, got %q", got)
	}
}

func TestParseHeadUnknownStatusCode(t *testing.T) {
	raw := "HTTP/1.1 999999 Nope\r\n\r\n"
	r := bufio.NewReader(strings.NewReader(raw))
	if _, err := ParseHead(r); err == nil {
		t.Fatal("expected error for out-of-range status code")
	}
}

func TestReadBodyContentLengthExact(t *testing.T) {
	raw := "hello world"
	r := bufio.NewReader(strings.NewReader(raw))
	head := &Head{StatusCode: 200}
	head.Headers = newHeadersWith("Content-Length", "5")

	body, err := ReadBody(r, head, "GET", false, 1<<20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(body) != "hello" {
		t.Fatalf("expected exactly N bytes 'hello', got %q", body)
	}
}

func TestReadBodyChunked(t *testing.T) {
	raw := "4\r\nWiki\r\n6\r\npedia \r\nE\r\nin \r\n\r\nchunks.\r\n0\r\n\r\n"
	r := bufio.NewReader(strings.NewReader(raw))
	head := &Head{StatusCode: 200}
	head.Headers = newHeadersWith("Transfer-Encoding", "chunked")

	body, err := ReadBody(r, head, "GET", false, 1<<20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(body) != "Wikipedia in \r\n\r\nchunks." {
		t.Fatalf("unexpected decoded chunked body: %q", body)
	}
}

func TestReadBodyNoContentForHead(t *testing.T) {
	r := bufio.NewReader(strings.NewReader(""))
	head := &Head{StatusCode: 200}
	head.Headers = newHeadersWith("Content-Encoding", "gzip")

	body, err := ReadBody(r, head, "HEAD", false, 1<<20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(body) != 0 {
		t.Fatalf("expected empty body for HEAD, got %q", body)
	}
}
