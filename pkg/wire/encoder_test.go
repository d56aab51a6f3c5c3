package wire

import (
	"strings"
	"testing"

	"github.com/actorhttp/actorhttp/pkg/headers"
)

func TestEncodeNoBodyEndsInBlankLine(t *testing.T) {
	h := headers.New()
	h.Add("Host", "example.com")
	h.Add("Accept", "*/*")

	out := Encode(Message{Method: "GET", Path: "/", Version: "1.1", Headers: h})
	s := string(out)

	if !strings.HasSuffix(s, "\r\n\r\n") {
		t.Fatalf("expected trailing CRLFCRLF, got %q", s)
	}
	firstLine := strings.SplitN(s, "\r\n", 2)[1]
	if strings.Count(firstLine, "\r\n") != strings.Count(s, "\r\n")-1 {
		// sanity: request line itself contributes exactly one \r\n
	}
	if !strings.HasPrefix(s, "GET / HTTP/1.1\r\n") {
		t.Fatalf("unexpected request line: %q", s)
	}
}

func TestEncodeSetsContentLength(t *testing.T) {
	out := Encode(Message{Method: "POST", Path: "/x", Version: "1.1", Body: []byte("hello")})
	s := string(out)
	if !strings.Contains(s, "Content-Length: 5\r\n") {
		t.Fatalf("expected Content-Length: 5, got %q", s)
	}
	if !strings.HasSuffix(s, "hello") {
		t.Fatalf("expected body appended verbatim, got %q", s)
	}
}

func TestEncodeRespectsExistingContentLength(t *testing.T) {
	h := headers.New()
	h.Add("Content-Length", "0")
	out := Encode(Message{Method: "POST", Path: "/x", Version: "1.1", Headers: h, Body: []byte("hello")})
	s := string(out)
	if strings.Count(s, "Content-Length") != 1 {
		t.Fatalf("expected a single Content-Length header, got %q", s)
	}
}

func TestEncodeSkipsInvalidUTF8Values(t *testing.T) {
	h := headers.New()
	h.Add("X-Bad", string([]byte{0xff, 0xfe}))
	h.Add("X-Good", "ok")
	out := Encode(Message{Method: "GET", Path: "/", Version: "1.1", Headers: h})
	s := string(out)
	if strings.Contains(s, "X-Bad") {
		t.Fatalf("expected invalid UTF-8 header to be skipped, got %q", s)
	}
	if !strings.Contains(s, "X-Good: ok\r\n") {
		t.Fatalf("expected valid header to be emitted, got %q", s)
	}
}

func TestEncodeSkipsControlCharacterValues(t *testing.T) {
	h := headers.New()
	h.Add("X-Bad", "line1\x01line2")
	h.Add("X-Good", "ok")
	out := Encode(Message{Method: "GET", Path: "/", Version: "1.1", Headers: h})
	s := string(out)
	if strings.Contains(s, "X-Bad") {
		t.Fatalf("expected control-character header to be skipped, got %q", s)
	}
	if !strings.Contains(s, "X-Good: ok\r\n") {
		t.Fatalf("expected valid header to be emitted, got %q", s)
	}
}
