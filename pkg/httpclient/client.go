// Package httpclient composes the wire encoder, transport, response
// parser, decoder, cookie jar and redirect policy into the client
// actor and request driver (§4.I, §4.J, §4.K), grounded on
// original_source's InnerClient/execute_request/RequestBuilder trio.
package httpclient

import (
	"bufio"
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/actorhttp/actorhttp/internal/logging"
	"github.com/actorhttp/actorhttp/pkg/body"
	"github.com/actorhttp/actorhttp/pkg/constants"
	"github.com/actorhttp/actorhttp/pkg/cookiejar"
	"github.com/actorhttp/actorhttp/pkg/decode"
	"github.com/actorhttp/actorhttp/pkg/errors"
	"github.com/actorhttp/actorhttp/pkg/headers"
	"github.com/actorhttp/actorhttp/pkg/parser"
	"github.com/actorhttp/actorhttp/pkg/redirect"
	"github.com/actorhttp/actorhttp/pkg/timing"
	"github.com/actorhttp/actorhttp/pkg/transport"
	"github.com/actorhttp/actorhttp/pkg/wire"
)

// Client is the long-lived actor of §4.J: a single worker goroutine
// owns every mutable field below (cookie jar, connection cache via
// transport.Transport) and serializes access by draining requestCh one
// message at a time, in arrival order. No field here is touched from
// any goroutine but run().
type Client struct {
	userAgent        string
	defaultHeaders   *headers.Headers
	timeout          time.Duration
	connectTimeout   time.Duration
	redirectPolicy   redirect.Policy
	referer          bool
	accepts          decode.Accepts
	httpsOnly        bool
	jar              *cookiejar.Jar
	resolveOverrides map[string]string
	logger           logging.Logger

	proxy         *transport.ProxyConfig
	clientCertPEM []byte
	clientKeyPEM  []byte
	minTLS        uint16
	maxTLS        uint16
	maxBodySize   int64

	transport *transport.Transport

	requestCh chan actorMessage
	stopCh    chan struct{}
	closeOnce sync.Once
}

type actorMessage struct {
	req   *Request
	reply chan actorReply
}

type actorReply struct {
	resp *Response
	err  error
}

// start launches the actor goroutine. Called once, from Build().
func (c *Client) start() {
	c.requestCh = make(chan actorMessage, 64)
	c.stopCh = make(chan struct{})
	go c.run()
}

// run is the actor loop: exactly one ExecuteRequest is in flight at a
// time, and replies are sent in the same order requests were accepted
// (§5's ordering guarantee).
func (c *Client) run() {
	for {
		select {
		case msg := <-c.requestCh:
			resp, err := c.driver(msg.req, nil)
			msg.reply <- actorReply{resp: resp, err: err}
		case <-c.stopCh:
			return
		}
	}
}

// execute sends an ExecuteRequest message to the actor and blocks for
// its reply (§4.J).
func (c *Client) execute(req *Request) (*Response, error) {
	reply := make(chan actorReply, 1)
	select {
	case c.requestCh <- actorMessage{req: req, reply: reply}:
	case <-c.stopCh:
		return nil, errors.NewRequestError("client is closed", nil).WithURL(req.URL.String())
	}
	r := <-reply
	return r.resp, r.err
}

// Close stops the actor goroutine and releases pooled connections.
// Requests already queued are still answered; requests sent afterward
// fail immediately.
func (c *Client) Close() error {
	c.closeOnce.Do(func() { close(c.stopCh) })
	return c.transport.Close()
}

// Request starts a RequestBuilder for an arbitrary method.
func (c *Client) Request(method, rawURL string) *RequestBuilder {
	return newRequestBuilder(c, method, rawURL)
}

func (c *Client) Get(rawURL string) *RequestBuilder    { return c.Request("GET", rawURL) }
func (c *Client) Post(rawURL string) *RequestBuilder   { return c.Request("POST", rawURL) }
func (c *Client) Put(rawURL string) *RequestBuilder    { return c.Request("PUT", rawURL) }
func (c *Client) Patch(rawURL string) *RequestBuilder  { return c.Request("PATCH", rawURL) }
func (c *Client) Delete(rawURL string) *RequestBuilder { return c.Request("DELETE", rawURL) }
func (c *Client) Head(rawURL string) *RequestBuilder   { return c.Request("HEAD", rawURL) }

// PoolStats exposes the underlying transport's connection pool
// statistics, carried over from the teacher unchanged.
func (c *Client) PoolStats() transport.PoolStats {
	return c.transport.PoolStats()
}

// driver implements execute_request (§4.I), recursing on Follow.
// visited accumulates every URL dispatched so far, including the one
// that produced the most recent redirect, for the policy's benefit.
func (c *Client) driver(req *Request, visited []*url.URL) (*Response, error) {
	if req.URL.Scheme != "http" && req.URL.Scheme != "https" {
		return nil, errors.NewRequestError(fmt.Sprintf("unsupported scheme %q", req.URL.Scheme), nil).WithURL(req.URL.String())
	}
	if c.httpsOnly && req.URL.Scheme != "https" {
		return nil, errors.NewRequestError("https-only client cannot dispatch a plain http request", nil).WithURL(req.URL.String())
	}

	h := req.Headers.Clone()

	host := req.URL.Hostname()
	port := portFor(req.URL)
	hostHeader := host
	if !isDefaultPort(req.URL.Scheme, port) {
		hostHeader = fmt.Sprintf("%s:%d", host, port)
	}
	h.Set("Host", hostHeader)

	h.Merge(c.defaultHeaders)
	if c.userAgent != "" && !h.Has("User-Agent") {
		h.Set("User-Agent", c.userAgent)
	}

	if c.jar != nil && !h.Has("Cookie") {
		if ck := c.jar.CookieHeader(req.URL); ck != "" {
			h.Set("Cookie", ck)
		}
	}

	if !c.accepts.Empty() && !h.Has("Accept-Encoding") && !h.Has("Range") {
		h.Set("Accept-Encoding", strings.Join(c.accepts.Tokens(), ", "))
	}

	path := req.URL.EscapedPath()
	if path == "" {
		path = "/"
	}
	if req.URL.RawQuery != "" {
		path += "?" + req.URL.RawQuery
	}

	var reqBody []byte
	if req.Body != nil {
		reqBody = req.Body.Bytes()
	}

	encoded := wire.Encode(wire.Message{
		Method:  req.Method,
		Path:    path,
		Version: req.Version,
		Headers: h,
		Body:    reqBody,
	})

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = c.timeout
	}

	ctx := context.Background()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	timer := timing.NewTimer()

	connectIP := ""
	if override, ok := c.resolveOverrides[host]; ok {
		connectIP = override
	}

	tcfg := transport.Config{
		Scheme:          req.URL.Scheme,
		Host:            host,
		Port:            port,
		ConnectIP:       connectIP,
		ConnTimeout:     c.connectTimeout,
		ReadTimeout:     timeout,
		WriteTimeout:    timeout,
		ReuseConnection: true,
		Proxy:           c.proxy,
		ClientCertPEM:   c.clientCertPEM,
		ClientKeyPEM:    c.clientKeyPEM,
		MinTLSVersion:   c.minTLS,
		MaxTLSVersion:   c.maxTLS,
	}

	conn, meta, err := c.transport.Connect(ctx, tcfg, timer)
	if err != nil {
		c.logger.Error("connect failed", "url", req.URL.String(), "error", err)
		return nil, errors.NewConnectError(req.URL.String(), err)
	}

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	if _, err := conn.Write(encoded); err != nil {
		c.transport.CloseConnectionWithMetadata(host, port, conn, meta)
		return nil, errors.NewIOError("writing request", err).WithURL(req.URL.String())
	}

	br := bufio.NewReaderSize(conn, constants.ReadChunkSize)

	timer.StartTTFB()
	head, err := parser.ParseHead(br)
	if err != nil {
		c.transport.CloseConnectionWithMetadata(host, port, conn, meta)
		return nil, wrapURL(err, req.URL.String())
	}
	timer.EndTTFB()

	willClose := connectionWillClose(head, req.Version)

	rawBody, err := parser.ReadBody(br, head, req.Method, willClose, c.maxBodySize)
	if err != nil {
		c.transport.CloseConnectionWithMetadata(host, port, conn, meta)
		return nil, wrapURL(err, req.URL.String())
	}

	// An empty body (HEAD, 204, 304, ...) is never run through a decoder.
	decoded := rawBody
	if len(rawBody) > 0 {
		decoded, err = decode.Decode(head.Headers, rawBody, c.accepts)
		if err != nil {
			c.transport.CloseConnectionWithMetadata(host, port, conn, meta)
			return nil, wrapURL(err, req.URL.String())
		}
	}

	if willClose {
		c.transport.CloseConnectionWithMetadata(host, port, conn, meta)
	} else {
		c.transport.ReleaseConnectionWithMetadata(host, port, conn, meta)
	}

	resp := &Response{
		StatusCode: head.StatusCode,
		Proto:      head.Version,
		Hdr:        head.Headers,
		FinalURL:   req.URL,
		BodyBytes:  decoded,
		metrics:    timer.GetMetrics(),
		connMeta:   meta,
	}

	if c.jar != nil {
		if setCookies := resp.Hdr.Values("Set-Cookie"); len(setCookies) > 0 {
			raw := make([]string, len(setCookies))
			for i, v := range setCookies {
				raw[i] = v.Raw
			}
			c.jar.Store(req.URL, raw)
		}
	}

	return c.maybeRedirect(req, resp, visited)
}

// maybeRedirect applies §4.H between hops and recurses into driver on
// ActionFollow.
func (c *Client) maybeRedirect(req *Request, resp *Response, visited []*url.URL) (*Response, error) {
	class := redirect.Classify(resp.StatusCode, req.Method)
	if !class.IsRedirect {
		return resp, nil
	}

	location := resp.Hdr.Get("Location")
	if location == "" {
		return resp, nil
	}
	nextURL, ok := redirect.ResolveLocation(req.URL, location)
	if !ok {
		return resp, nil
	}

	if err := redirect.CheckHTTPSOnly(c.httpsOnly, req.URL, nextURL, nextURL.String()); err != nil {
		return nil, err
	}

	visited = append(visited, req.URL)
	switch c.redirectPolicy.Check(nextURL, visited) {
	case redirect.ActionStop:
		return resp, nil
	case redirect.ActionError:
		return nil, errors.NewRedirectError("redirect.limit", "too many redirects", nextURL.String(), nil)
	}

	c.logger.Debug("following redirect", "from", req.URL.String(), "to", nextURL.String(), "status", resp.StatusCode)

	nextMethod := req.Method
	var nextBody *body.Body
	nextHeaders := req.Headers.Clone()
	if class.RewriteToGET {
		nextMethod = "GET"
		for _, pair := range nextHeaders.All() {
			if strings.HasPrefix(strings.ToLower(pair.Name), "content-") {
				nextHeaders.Del(pair.Name)
			}
		}
		nextHeaders.Del("Transfer-Encoding")
	} else {
		nextBody = req.Body
	}

	if redirect.CrossOrigin(req.URL, nextURL) {
		nextHeaders.StripSensitive(redirect.SensitiveHeaderNames...)
	}
	if c.referer {
		if ref, ok := redirect.Referer(req.URL, nextURL); ok {
			nextHeaders.Set("Referer", ref)
		}
	}

	nextReq := &Request{
		Method:  nextMethod,
		URL:     nextURL,
		Headers: nextHeaders,
		Body:    nextBody,
		Timeout: req.Timeout,
		Version: req.Version,
	}

	return c.driver(nextReq, visited)
}

func portFor(u *url.URL) int {
	if p := u.Port(); p != "" {
		if n, err := strconv.Atoi(p); err == nil {
			return n
		}
	}
	if u.Scheme == "https" {
		return 443
	}
	return 80
}

func isDefaultPort(scheme string, port int) bool {
	return (scheme == "http" && port == 80) || (scheme == "https" && port == 443)
}

// connectionWillClose reports whether the server intends to close the
// connection after this response: an explicit Connection: close, or
// (absent an explicit keep-alive) an HTTP/1.0 response.
func connectionWillClose(head *parser.Head, _ string) bool {
	switch strings.ToLower(strings.TrimSpace(head.Headers.Get("Connection"))) {
	case "close":
		return true
	case "keep-alive":
		return false
	}
	return head.Version == "1.0"
}

func wrapURL(err error, url string) error {
	if e, ok := err.(*errors.Error); ok {
		return e.WithURL(url)
	}
	return err
}
