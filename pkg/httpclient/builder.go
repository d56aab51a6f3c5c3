package httpclient

import (
	"time"

	"github.com/actorhttp/actorhttp/internal/logging"
	"github.com/actorhttp/actorhttp/pkg/constants"
	"github.com/actorhttp/actorhttp/pkg/cookiejar"
	"github.com/actorhttp/actorhttp/pkg/decode"
	"github.com/actorhttp/actorhttp/pkg/errors"
	"github.com/actorhttp/actorhttp/pkg/headers"
	"github.com/actorhttp/actorhttp/pkg/redirect"
	"github.com/actorhttp/actorhttp/pkg/transport"
)

// ClientBuilder configures and builds a Client (§6's client_builder()).
// There is no file- or environment-based configuration loading: every
// option is set programmatically, mirroring the teacher's
// Options/Config/PoolConfig construction pattern.
type ClientBuilder struct {
	userAgent        string
	defaultHeaders   *headers.Headers
	timeout          time.Duration
	connectTimeout   time.Duration
	redirectPolicy   redirect.Policy
	referer          bool
	accepts          decode.Accepts
	httpsOnly        bool
	cookieStore      bool
	resolveOverrides map[string]string
	logger           logging.Logger

	proxy         *transport.ProxyConfig
	clientCertPEM []byte
	clientKeyPEM  []byte
	minTLS        uint16
	maxTLS        uint16
	poolConfig    transport.PoolConfig
	maxBodySize   int64
}

// NewClientBuilder returns a builder preloaded with the library's
// defaults: a 30s request timeout, a 10s connect timeout, redirects
// limited to 10 hops, referer propagation on, all three content
// encodings accepted, and an in-memory cookie jar enabled.
func NewClientBuilder() *ClientBuilder {
	return &ClientBuilder{
		defaultHeaders:   headers.New(),
		timeout:          30 * time.Second,
		connectTimeout:   10 * time.Second,
		redirectPolicy:   redirect.DefaultPolicy(),
		referer:          true,
		accepts:          decode.Accepts{Gzip: true, Brotli: true, Deflate: true},
		cookieStore:      true,
		resolveOverrides: make(map[string]string),
		logger:           logging.NoOp(),
		poolConfig:       transport.DefaultPoolConfig(),
		maxBodySize:      constants.DefaultMaxBodySize,
	}
}

func (b *ClientBuilder) UserAgent(v string) *ClientBuilder {
	b.userAgent = v
	return b
}

func (b *ClientBuilder) DefaultHeaders(h map[string]string) *ClientBuilder {
	for k, v := range h {
		b.defaultHeaders.Set(k, v)
	}
	return b
}

func (b *ClientBuilder) Timeout(d time.Duration) *ClientBuilder {
	b.timeout = d
	return b
}

func (b *ClientBuilder) ConnectTimeout(d time.Duration) *ClientBuilder {
	b.connectTimeout = d
	return b
}

func (b *ClientBuilder) Redirect(policy redirect.Policy) *ClientBuilder {
	b.redirectPolicy = policy
	return b
}

func (b *ClientBuilder) Referer(v bool) *ClientBuilder {
	b.referer = v
	return b
}

func (b *ClientBuilder) Gzip(v bool) *ClientBuilder {
	b.accepts.Gzip = v
	return b
}

func (b *ClientBuilder) Brotli(v bool) *ClientBuilder {
	b.accepts.Brotli = v
	return b
}

func (b *ClientBuilder) Deflate(v bool) *ClientBuilder {
	b.accepts.Deflate = v
	return b
}

func (b *ClientBuilder) HTTPSOnly(v bool) *ClientBuilder {
	b.httpsOnly = v
	return b
}

func (b *ClientBuilder) CookieStore(v bool) *ClientBuilder {
	b.cookieStore = v
	return b
}

// Resolve overrides DNS for domain, dialing addr instead.
func (b *ClientBuilder) Resolve(domain, addr string) *ClientBuilder {
	b.resolveOverrides[domain] = addr
	return b
}

// Logger injects a structured logger; defaults to a no-op.
func (b *ClientBuilder) Logger(l logging.Logger) *ClientBuilder {
	b.logger = l
	return b
}

// Proxy configures upstream HTTP/SOCKS4/SOCKS5 proxying (§4.C, §11).
func (b *ClientBuilder) Proxy(cfg transport.ProxyConfig) *ClientBuilder {
	b.proxy = &cfg
	return b
}

// ClientCert configures a client certificate for mutual TLS.
func (b *ClientBuilder) ClientCert(certPEM, keyPEM []byte) *ClientBuilder {
	b.clientCertPEM = certPEM
	b.clientKeyPEM = keyPEM
	return b
}

// TLSVersions bounds the negotiated TLS version range.
func (b *ClientBuilder) TLSVersions(min, max uint16) *ClientBuilder {
	b.minTLS = min
	b.maxTLS = max
	return b
}

// PoolConfig overrides the connection pool's sizing/keepalive defaults.
func (b *ClientBuilder) PoolConfig(cfg transport.PoolConfig) *ClientBuilder {
	b.poolConfig = cfg
	return b
}

// MaxBodySize bounds the size of a response body as read from the
// connection, before decoding; decompressed output is not bounded by it.
func (b *ClientBuilder) MaxBodySize(n int64) *ClientBuilder {
	b.maxBodySize = n
	return b
}

// Build validates the accumulated configuration and starts the
// client's actor goroutine.
func (b *ClientBuilder) Build() (*Client, error) {
	if b.minTLS != 0 && b.maxTLS != 0 && b.minTLS > b.maxTLS {
		return nil, errors.NewBuilderError("tls_versions", "minimum TLS version is greater than maximum", nil)
	}

	var jar *cookiejar.Jar
	if b.cookieStore {
		jar = cookiejar.New()
	}

	c := &Client{
		userAgent:        b.userAgent,
		defaultHeaders:   b.defaultHeaders,
		timeout:          b.timeout,
		connectTimeout:   b.connectTimeout,
		redirectPolicy:   b.redirectPolicy,
		referer:          b.referer,
		accepts:          b.accepts,
		httpsOnly:        b.httpsOnly,
		jar:              jar,
		resolveOverrides: b.resolveOverrides,
		logger:           b.logger,
		proxy:            b.proxy,
		clientCertPEM:    b.clientCertPEM,
		clientKeyPEM:     b.clientKeyPEM,
		minTLS:           b.minTLS,
		maxTLS:           b.maxTLS,
		maxBodySize:      b.maxBodySize,
		transport:        transport.NewWithConfig(b.poolConfig),
	}
	c.start()
	return c, nil
}
