package httpclient_test

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"fmt"
	"net"
	"strings"
	"testing"

	"github.com/actorhttp/actorhttp/internal/testserver"
	"github.com/actorhttp/actorhttp/pkg/httpclient"
)

// S1: chunked response decodes to the exact Wikipedia example text.
func TestScenarioChunkedDecode(t *testing.T) {
	srv := testserver.Once(t, func(conn net.Conn) {
		defer conn.Close()
		r := bufio.NewReader(conn)
		if _, _, err := testserver.ReadRequest(r); err != nil {
			return
		}
		conn.Write([]byte("HTTP/1.1 200 OK\r\n" +
			"Content-Type: text/plain\r\n" +
			"Transfer-Encoding: chunked\r\n" +
			"Connection: close\r\n\r\n" +
			"4\r\nWiki\r\n6\r\npedia \r\nE\r\nin \r\n\r\nchunks.\r\n0\r\n\r\n"))
	})

	c := newTestClient(t)
	resp, err := c.Get(fmt.Sprintf("http://example.com:%d/chunked", srv.Addr.Port)).Send()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	text, err := resp.Text()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := "Wikipedia in \r\n\r\nchunks."; text != want {
		t.Fatalf("expected %q, got %q", want, text)
	}
}

// S2: gzip-over-chunked response decodes to the same text.
func TestScenarioGzipDecode(t *testing.T) {
	want := "Wikipedia in \r\n\r\nchunks."
	var gz bytes.Buffer
	w := gzip.NewWriter(&gz)
	w.Write([]byte(want))
	w.Close()
	compressed := gz.Bytes()

	srv := testserver.Once(t, func(conn net.Conn) {
		defer conn.Close()
		r := bufio.NewReader(conn)
		if _, _, err := testserver.ReadRequest(r); err != nil {
			return
		}
		var body bytes.Buffer
		fmt.Fprintf(&body, "%x\r\n", len(compressed))
		body.Write(compressed)
		body.WriteString("\r\n0\r\n\r\n")

		conn.Write([]byte("HTTP/1.1 200 OK\r\n" +
			"Content-Encoding: gzip\r\n" +
			"Transfer-Encoding: chunked\r\n" +
			"Connection: close\r\n\r\n"))
		conn.Write(body.Bytes())
	})

	c := newTestClient(t)
	resp, err := c.Get(fmt.Sprintf("http://example.com:%d/gzip", srv.Addr.Port)).Send()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	text, err := resp.Text()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != want {
		t.Fatalf("expected %q, got %q", want, text)
	}
	if resp.Headers().Has("Content-Encoding") {
		t.Fatalf("expected Content-Encoding stripped after decode")
	}
}

// S3: 301 from POST rewrites to GET and drops the body.
func TestScenario301RewritesToGET(t *testing.T) {
	srv := testserver.Start(t, func(conn net.Conn) {
		defer conn.Close()
		r := bufio.NewReader(conn)
		line, _, err := testserver.ReadRequest(r)
		if err != nil {
			return
		}
		switch {
		case strings.HasPrefix(line, "POST /301"):
			conn.Write([]byte("HTTP/1.1 301 Moved Permanently\r\n" +
				"Location: /dst\r\n" +
				"Content-Length: 0\r\n" +
				"Connection: close\r\n\r\n"))
		case strings.HasPrefix(line, "GET /dst"):
			conn.Write([]byte("HTTP/1.1 200 OK\r\n" +
				"Content-Length: 3\r\n" +
				"Connection: close\r\n\r\nGET"))
		default:
			t.Errorf("unexpected request line: %s", line)
		}
	})

	c := newTestClient(t)
	resp, err := c.Post(fmt.Sprintf("http://example.com:%d/301", srv.Addr.Port)).Body([]byte("payload")).Send()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Status() != 200 {
		t.Fatalf("expected 200, got %d", resp.Status())
	}
	if string(resp.Bytes()) != "GET" {
		t.Fatalf("expected body %q, got %q", "GET", resp.Bytes())
	}
}

// S4: 307 preserves method and body.
func TestScenario307PreservesMethodAndBody(t *testing.T) {
	srv := testserver.Start(t, func(conn net.Conn) {
		defer conn.Close()
		r := bufio.NewReader(conn)
		line, headerLines, err := testserver.ReadRequest(r)
		if err != nil {
			return
		}
		switch {
		case strings.HasPrefix(line, "POST /307"):
			n := contentLength(headerLines)
			body := make([]byte, n)
			r.Read(body)
			if string(body) != "Hello" {
				t.Errorf("expected body Hello on first hop, got %q", body)
			}
			conn.Write([]byte("HTTP/1.1 307 Temporary Redirect\r\n" +
				"Location: /dst\r\n" +
				"Content-Length: 0\r\n" +
				"Connection: close\r\n\r\n"))
		case strings.HasPrefix(line, "POST /dst"):
			n := contentLength(headerLines)
			body := make([]byte, n)
			r.Read(body)
			if string(body) != "Hello" {
				t.Errorf("expected body Hello preserved on redirect, got %q", body)
			}
			conn.Write([]byte("HTTP/1.1 200 OK\r\n" +
				"Content-Length: 4\r\n" +
				"Connection: close\r\n\r\nPOST"))
		default:
			t.Errorf("unexpected request line: %s", line)
		}
	})

	c := newTestClient(t)
	resp, err := c.Post(fmt.Sprintf("http://example.com:%d/307", srv.Addr.Port)).Body([]byte("Hello")).Send()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Bytes()) != "POST" {
		t.Fatalf("expected body %q, got %q", "POST", resp.Bytes())
	}
}

// S5: cross-origin redirect strips Cookie and carries a derived Referer.
func TestScenarioCrossOriginRedirectStripsCookie(t *testing.T) {
	var sawCookie, sawReferer bool
	var refererValue string

	originB := testserver.Once(t, func(conn net.Conn) {
		defer conn.Close()
		_, headerLines, err := testserver.ReadRequest(bufio.NewReader(conn))
		if err != nil {
			return
		}
		for _, h := range headerLines {
			lower := strings.ToLower(h)
			if strings.HasPrefix(lower, "cookie:") {
				sawCookie = true
			}
			if strings.HasPrefix(lower, "referer:") {
				sawReferer = true
				refererValue = strings.TrimSpace(h[len("Referer:"):])
			}
		}
		conn.Write([]byte("HTTP/1.1 200 OK\r\nContent-Length: 0\r\nConnection: close\r\n\r\n"))
	})

	originA := testserver.Once(t, func(conn net.Conn) {
		defer conn.Close()
		if _, _, err := testserver.ReadRequest(bufio.NewReader(conn)); err != nil {
			return
		}
		conn.Write([]byte(fmt.Sprintf("HTTP/1.1 302 Found\r\nLocation: http://origin-b.test:%d/end\r\nContent-Length: 0\r\nConnection: close\r\n\r\n", originB.Addr.Port)))
	})

	c := newTestClient(t)
	_, err := c.Get(fmt.Sprintf("http://origin-a.test:%d/sensitive", originA.Addr.Port)).
		Header("Cookie", "foo=bar").
		Send()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sawCookie {
		t.Fatalf("expected Cookie header stripped across origins")
	}
	if !sawReferer {
		t.Fatalf("expected Referer header on the second hop")
	}
	if want := fmt.Sprintf("http://origin-a.test:%d/sensitive", originA.Addr.Port); refererValue != want {
		t.Fatalf("expected Referer %q, got %q", want, refererValue)
	}
}

// S6: HEAD with Content-Encoding/Content-Length but no body produces an
// empty response and never invokes the decoder.
func TestScenarioHeadWithGzipHeadersNoBody(t *testing.T) {
	srv := testserver.Once(t, func(conn net.Conn) {
		defer conn.Close()
		if _, _, err := testserver.ReadRequest(bufio.NewReader(conn)); err != nil {
			return
		}
		conn.Write([]byte("HTTP/1.1 200 OK\r\n" +
			"Content-Encoding: gzip\r\n" +
			"Content-Length: 100\r\n" +
			"Connection: close\r\n\r\n"))
	})

	c := newTestClient(t)
	resp, err := c.Head(fmt.Sprintf("http://example.com:%d/gzip", srv.Addr.Port)).Send()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Bytes()) != 0 {
		t.Fatalf("expected empty body, got %d bytes", len(resp.Bytes()))
	}
}

func newTestClient(t *testing.T) *httpclient.Client {
	t.Helper()
	c, err := httpclient.NewClientBuilder().
		Resolve("example.com", "127.0.0.1").
		Resolve("origin-a.test", "127.0.0.1").
		Resolve("origin-b.test", "127.0.0.1").
		Build()
	if err != nil {
		t.Fatalf("unexpected builder error: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func contentLength(headerLines []string) int {
	for _, h := range headerLines {
		if strings.HasPrefix(strings.ToLower(h), "content-length:") {
			var n int
			fmt.Sscanf(strings.TrimSpace(h[len("Content-Length:"):]), "%d", &n)
			return n
		}
	}
	return 0
}
