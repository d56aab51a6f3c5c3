// Package cookiejar implements a per-origin, in-memory cookie store:
// it parses Set-Cookie response headers and emits a Cookie request
// header scoped by URL, grounded on the sibling project's
// cookies.Cookie/ParseCookies/BuildCookieHeader shape and RFC 6265's
// domain/path matching rules. Persistent on-disk storage is a
// Non-goal; the jar lives only for the lifetime of the owning client.
package cookiejar

import (
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

// SameSite mirrors the three values a cookie's SameSite attribute may
// take.
type SameSite int

const (
	SameSiteNone SameSite = iota
	SameSiteLax
	SameSiteStrict
)

// Cookie is a single stored cookie.
type Cookie struct {
	Name     string
	Value    string
	Domain   string // empty means host-only: matches only the exact setting host
	Path     string
	Expires  time.Time // zero means session cookie (no expiration)
	Secure   bool
	HttpOnly bool
	SameSite SameSite
}

func (c Cookie) expired(now time.Time) bool {
	return !c.Expires.IsZero() && c.Expires.Before(now)
}

// Jar groups cookies under one map key each (either an explicit
// Domain attribute, or the exact host that set a host-only cookie).
type Jar struct {
	mu     sync.Mutex
	byHost map[string][]Cookie
}

// New returns an empty jar.
func New() *Jar {
	return &Jar{byHost: make(map[string][]Cookie)}
}

// Store parses every Set-Cookie value from headerValues as seen in a
// response to u, discarding anything that doesn't parse, and inserts
// the results into the per-origin store.
func (j *Jar) Store(u *url.URL, headerValues []string) {
	if len(headerValues) == 0 {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()

	for _, raw := range headerValues {
		c, key, ok := parseSetCookie(raw, u)
		if !ok {
			continue
		}
		list := j.byHost[key]
		replaced := false
		for i, existing := range list {
			if existing.Name == c.Name && existing.Path == c.Path {
				list[i] = c
				replaced = true
				break
			}
		}
		if !replaced {
			list = append(list, c)
		}
		j.byHost[key] = list
	}
}

// CookieHeader builds the "k1=v1; k2=v2" value to send for u, or ""
// if no cookie matches. Expired cookies are purged lazily here.
func (j *Jar) CookieHeader(u *url.URL) string {
	j.mu.Lock()
	defer j.mu.Unlock()

	now := time.Now()
	var matches []Cookie

	for key, list := range j.byHost {
		if !domainMatches(u.Hostname(), key) {
			continue
		}
		var kept []Cookie
		for _, c := range list {
			if c.expired(now) {
				continue
			}
			kept = append(kept, c)
			hostOK := c.Domain != "" || u.Hostname() == key
			if hostOK && pathMatches(u.Path, c.Path) && (!c.Secure || u.Scheme == "https") {
				matches = append(matches, c)
			}
		}
		if len(kept) == 0 {
			delete(j.byHost, key)
		} else {
			j.byHost[key] = kept
		}
	}

	if len(matches) == 0 {
		return ""
	}
	parts := make([]string, len(matches))
	for i, c := range matches {
		parts[i] = c.Name + "=" + c.Value
	}
	return strings.Join(parts, "; ")
}

// ParseCookies parses every Set-Cookie value as seen in a response to
// reqURL without storing them, for callers that just want the list
// attached to that one response (Response.Cookies()).
func ParseCookies(headerValues []string, reqURL *url.URL) []Cookie {
	var out []Cookie
	for _, raw := range headerValues {
		c, _, ok := parseSetCookie(raw, reqURL)
		if ok {
			out = append(out, c)
		}
	}
	return out
}

func domainMatches(host, key string) bool {
	if host == key {
		return true
	}
	return strings.HasSuffix(host, "."+key)
}

func pathMatches(requestPath, cookiePath string) bool {
	if cookiePath == "" || cookiePath == "/" {
		return true
	}
	if !strings.HasPrefix(requestPath, cookiePath) {
		return false
	}
	if len(requestPath) == len(cookiePath) {
		return true
	}
	return strings.HasSuffix(cookiePath, "/") || requestPath[len(cookiePath)] == '/'
}

// parseSetCookie parses one Set-Cookie header value as seen in a
// response to reqURL, returning the cookie and the jar bucket key it
// belongs under (its Domain attribute if present, else reqURL's exact
// host for a host-only cookie).
func parseSetCookie(raw string, reqURL *url.URL) (Cookie, string, bool) {
	if !utf8.ValidString(raw) {
		return Cookie{}, "", false
	}
	parts := strings.Split(raw, ";")
	nameValue := strings.SplitN(strings.TrimSpace(parts[0]), "=", 2)
	if len(nameValue) != 2 || strings.TrimSpace(nameValue[0]) == "" {
		return Cookie{}, "", false
	}

	c := Cookie{
		Name:  strings.TrimSpace(nameValue[0]),
		Value: strings.TrimSpace(nameValue[1]),
		Path:  defaultPath(reqURL.Path),
	}

	for _, attr := range parts[1:] {
		attr = strings.TrimSpace(attr)
		if attr == "" {
			continue
		}
		kv := strings.SplitN(attr, "=", 2)
		key := strings.ToLower(strings.TrimSpace(kv[0]))
		var val string
		if len(kv) == 2 {
			val = strings.TrimSpace(kv[1])
		}
		switch key {
		case "domain":
			c.Domain = strings.TrimPrefix(strings.ToLower(val), ".")
		case "path":
			if val != "" {
				c.Path = val
			}
		case "expires":
			if t, err := time.Parse(time.RFC1123, val); err == nil {
				c.Expires = t
			}
		case "max-age":
			if n, err := strconv.Atoi(val); err == nil {
				if n <= 0 {
					c.Expires = time.Unix(0, 0)
				} else {
					c.Expires = time.Now().Add(time.Duration(n) * time.Second)
				}
			}
		case "secure":
			c.Secure = true
		case "httponly":
			c.HttpOnly = true
		case "samesite":
			switch strings.ToLower(val) {
			case "lax":
				c.SameSite = SameSiteLax
			case "strict":
				c.SameSite = SameSiteStrict
			default:
				c.SameSite = SameSiteNone
			}
		}
	}

	key := c.Domain
	if key == "" {
		key = reqURL.Hostname()
	}
	return c, key, true
}

func defaultPath(requestPath string) string {
	idx := strings.LastIndexByte(requestPath, '/')
	if idx <= 0 {
		return "/"
	}
	return requestPath[:idx]
}
