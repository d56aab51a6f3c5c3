// Package redirect implements the redirect policy and the
// classification/URL-resolution rules a redirect driver applies
// between hops, grounded on original_source's
// PendingRequest::resolve() and tests/redirect.rs.
package redirect

import (
	"net/url"

	"github.com/actorhttp/actorhttp/pkg/errors"
)

// Action is the policy's verdict for a candidate redirect.
type Action int

const (
	ActionFollow Action = iota
	ActionStop
	ActionError
)

// Policy decides whether to keep following redirects given the
// visited-URL history so far. Built-in variants are Limited, None and
// CustomFunc; Policy itself is the one-method interface they share.
type Policy interface {
	// Check is called once a redirect target has been resolved and
	// classified. visited includes every URL dispatched so far,
	// including the one that just replied with a redirect.
	Check(next *url.URL, visited []*url.URL) Action
}

// Limited follows up to N redirects, then fails with ActionError —
// matching original_source's default Limited(10) policy and invariant
// 9 (exceeding the redirect limit is a Redirect error, not a silent
// stop).
type Limited int

func (l Limited) Check(_ *url.URL, visited []*url.URL) Action {
	if len(visited) > int(l) {
		return ActionError
	}
	return ActionFollow
}

// None stops at the first redirect without error, matching
// redirect::Policy::none() from tests/redirect.rs
// (test_redirect_policy_can_stop_redirects_without_an_error).
type None struct{}

func (None) Check(*url.URL, []*url.URL) Action {
	return ActionStop
}

// CustomFunc adapts a plain predicate into a Policy.
type CustomFunc func(next *url.URL, visited []*url.URL) Action

func (f CustomFunc) Check(next *url.URL, visited []*url.URL) Action {
	return f(next, visited)
}

// DefaultPolicy is Limited(10), per §4.H.
func DefaultPolicy() Policy {
	return Limited(10)
}

// Classification describes how a status code affects the next
// request: whether it redirects at all, and how the method/body
// should be rewritten.
type Classification struct {
	IsRedirect   bool
	RewriteToGET bool // true for 301/302/303 on a non-GET/HEAD method
	DropBody     bool // true alongside RewriteToGET
}

// Classify implements the §4.H status table. method is the method of
// the request that produced this status code.
func Classify(statusCode int, method string) Classification {
	switch statusCode {
	case 301, 302, 303:
		rewrite := method != "GET" && method != "HEAD"
		return Classification{IsRedirect: true, RewriteToGET: rewrite, DropBody: rewrite}
	case 307, 308:
		return Classification{IsRedirect: true}
	default:
		return Classification{}
	}
}

// ResolveLocation resolves a Location header value against the
// current URL. A Location that doesn't parse as a valid URL is not an
// error: the caller should stop following redirects and return the
// response as-is (tests/redirect.rs's gh484 case).
func ResolveLocation(current *url.URL, location string) (*url.URL, bool) {
	ref, err := url.Parse(location)
	if err != nil {
		return nil, false
	}
	resolved := current.ResolveReference(ref)
	if resolved.Scheme == "" || resolved.Host == "" {
		return nil, false
	}
	return resolved, true
}

// CheckHTTPSOnly returns a Redirect(BadScheme) error when httpsOnly is
// set and the hop downgrades from https to http.
func CheckHTTPSOnly(httpsOnly bool, from, to *url.URL, urlForErr string) error {
	if httpsOnly && from.Scheme == "https" && to.Scheme != "https" {
		return errors.NewRedirectError("redirect.scheme", "https-only client received a redirect to a non-https URL", urlForErr, nil)
	}
	return nil
}

// Referer computes the Referer value to send on the next hop.
// Scheme-downgrade https->http suppresses it entirely; otherwise
// username, password and fragment are stripped.
func Referer(previous *url.URL, next *url.URL) (string, bool) {
	if previous.Scheme == "https" && next.Scheme == "http" {
		return "", false
	}
	clean := *previous
	clean.User = nil
	clean.Fragment = ""
	return clean.String(), true
}

// SensitiveHeaderNames is the fixed list stripped cross-origin (§4.H).
var SensitiveHeaderNames = []string{"Authorization", "Cookie", "Proxy-Authorization", "WWW-Authenticate"}

// CrossOrigin reports whether a and b differ in scheme, host, or port
// (the condition under which sensitive headers are stripped and
// cookies are not blindly carried forward).
func CrossOrigin(a, b *url.URL) bool {
	return a.Scheme != b.Scheme || a.Hostname() != b.Hostname() || a.Port() != b.Port()
}
