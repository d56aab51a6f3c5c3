// Package actorhttp is a user-space HTTP/1.1 client: a single-actor
// client owns a connection cache, cookie jar and redirect policy, and
// serializes request execution through one worker goroutine per
// Client instance.
package actorhttp

import (
	"github.com/actorhttp/actorhttp/pkg/cookiejar"
	"github.com/actorhttp/actorhttp/pkg/decode"
	"github.com/actorhttp/actorhttp/pkg/errors"
	"github.com/actorhttp/actorhttp/pkg/httpclient"
	"github.com/actorhttp/actorhttp/pkg/redirect"
	"github.com/actorhttp/actorhttp/pkg/timing"
	"github.com/actorhttp/actorhttp/pkg/transport"
)

// Version is the current version of this library.
const Version = "1.0.0"

// Re-export key types so callers only need to import this package for
// the common surface.
type (
	// ClientBuilder configures and builds a Client.
	ClientBuilder = httpclient.ClientBuilder

	// Client is the long-lived request-executing actor.
	Client = httpclient.Client

	// Request is a fully built outgoing request.
	Request = httpclient.Request

	// RequestBuilder fluently accumulates a Request.
	RequestBuilder = httpclient.RequestBuilder

	// Response is a fully buffered, decoded response.
	Response = httpclient.Response

	// Error is the library's structured error type.
	Error = errors.Error

	// ProxyError represents a proxy-specific error.
	ProxyError = errors.ProxyError

	// Metrics captures per-phase request timing.
	Metrics = timing.Metrics

	// ConnectionMetadata describes the connection a response traveled over.
	ConnectionMetadata = transport.ConnectionMetadata

	// Cookie is a single stored cookie.
	Cookie = cookiejar.Cookie

	// ProxyConfig configures upstream HTTP/SOCKS4/SOCKS5 proxying.
	ProxyConfig = transport.ProxyConfig

	// PoolConfig configures connection pool sizing and keepalive.
	PoolConfig = transport.PoolConfig

	// Accepts is the content-encoding acceptance set.
	Accepts = decode.Accepts
)

// Re-export error type constants for convenience.
const (
	ErrorTypeBuilder       = errors.ErrorTypeBuilder
	ErrorTypeRequest       = errors.ErrorTypeRequest
	ErrorTypeConnect       = errors.ErrorTypeConnect
	ErrorTypeIO            = errors.ErrorTypeIO
	ErrorTypeDecode        = errors.ErrorTypeDecode
	ErrorTypeTimeout       = errors.ErrorTypeTimeout
	ErrorTypeRedirect      = errors.ErrorTypeRedirect
	ErrorTypeStatus        = errors.ErrorTypeStatus
	ErrorTypeSerialization = errors.ErrorTypeSerialization
)

// NewClientBuilder returns a ClientBuilder preloaded with the
// library's defaults (§6's client_builder()).
func NewClientBuilder() *ClientBuilder {
	return httpclient.NewClientBuilder()
}

// LimitedRedirects returns a redirect policy that follows up to n
// hops before erroring.
func LimitedRedirects(n int) redirect.Policy {
	return redirect.Limited(n)
}

// NoRedirects returns a redirect policy that stops at the first
// redirect without error.
func NoRedirects() redirect.Policy {
	return redirect.None{}
}

// GetVersion returns the current library version.
func GetVersion() string {
	return Version
}

// IsTimeoutError reports whether err is a Timeout-classified error.
func IsTimeoutError(err error) bool {
	return errors.IsTimeoutError(err)
}

// GetErrorType returns the structured error type if err is one of
// ours, or "" otherwise.
func GetErrorType(err error) errors.ErrorType {
	return errors.GetErrorType(err)
}
