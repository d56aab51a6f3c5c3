// Package testserver provides a raw-socket HTTP test fixture, grounded
// on the teacher's tests/integration/client_test.go helpers
// (listenTCP/startTLSServer) and the two-server topology used by
// original_source's tests/redirect.rs. Unlike net/http/httptest, it
// hands the test the raw bytes written on each accepted connection,
// which the scenario tests need to exercise exact wire framing
// (chunked, Connection: close, trailers).
package testserver

import (
	"bufio"
	"net"
	"strings"
	"testing"
)

// Handler processes one accepted connection. It owns the connection's
// entire lifetime, including closing it.
type Handler func(conn net.Conn)

// Server is a listening raw TCP fixture bound to loopback.
type Server struct {
	Listener net.Listener
	Addr     *net.TCPAddr
}

// Start listens on an ephemeral loopback port and dispatches every
// accepted connection to handler in its own goroutine, until the test
// ends (t.Cleanup closes the listener).
func Start(t *testing.T, handler Handler) *Server {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("testserver: listen: %v", err)
	}

	srv := &Server{Listener: ln, Addr: ln.Addr().(*net.TCPAddr)}

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go handler(conn)
		}
	}()

	t.Cleanup(func() { ln.Close() })
	return srv
}

// ReadRequest drains a request line and its header block (up to the
// blank line) from r, handing back the raw header lines for the
// handler to inspect. The caller keeps reading from the same r for
// any request body, since a fresh bufio.Reader over conn would
// silently drop whatever this call already buffered.
func ReadRequest(r *bufio.Reader) (requestLine string, headerLines []string, err error) {
	requestLine, err = r.ReadString('\n')
	if err != nil {
		return "", nil, err
	}
	requestLine = strings.TrimRight(requestLine, "\r\n")

	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return requestLine, headerLines, err
		}
		if line == "\r\n" || line == "\n" {
			break
		}
		headerLines = append(headerLines, strings.TrimRight(line, "\r\n"))
	}
	return requestLine, headerLines, nil
}

// Once is like Start but only accepts and handles a single connection,
// for scenarios that need to assert exactly one request was made.
func Once(t *testing.T, handler Handler) *Server {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("testserver: listen: %v", err)
	}

	srv := &Server{Listener: ln, Addr: ln.Addr().(*net.TCPAddr)}

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		handler(conn)
	}()

	t.Cleanup(func() { ln.Close() })
	return srv
}
