package cookiejar

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestJarStoreAndCookieHeader(t *testing.T) {
	j := New()
	u := mustURL(t, "http://example.com/a")
	j.Store(u, []string{"foo=bar; Path=/"})

	require.Equal(t, "foo=bar", j.CookieHeader(u))
}

func TestJarScopedByOrigin(t *testing.T) {
	j := New()
	j.Store(mustURL(t, "http://origin-a.com/sensitive"), []string{"foo=bar"})

	other := mustURL(t, "http://origin-b.com/end")
	require.Empty(t, j.CookieHeader(other), "expected no cookie to cross origins")
}

func TestJarSecureCookieOnlyOverHTTPS(t *testing.T) {
	j := New()
	j.Store(mustURL(t, "https://example.com/"), []string{"s=1; Secure"})

	require.Empty(t, j.CookieHeader(mustURL(t, "http://example.com/")), "expected Secure cookie withheld over plain http")
	require.Equal(t, "s=1", j.CookieHeader(mustURL(t, "https://example.com/")))
}

func TestJarExpiredCookiePurged(t *testing.T) {
	j := New()
	j.Store(mustURL(t, "http://example.com/"), []string{"x=1; Max-Age=0"})

	require.Empty(t, j.CookieHeader(mustURL(t, "http://example.com/")), "expected expired cookie purged")
}

func TestJarDomainCookieMatchesSubdomain(t *testing.T) {
	j := New()
	j.Store(mustURL(t, "http://example.com/"), []string{"d=1; Domain=example.com"})

	require.Equal(t, "d=1", j.CookieHeader(mustURL(t, "http://sub.example.com/")))
}

func TestJarRejectsNonUTF8SetCookie(t *testing.T) {
	j := New()
	u := mustURL(t, "http://example.com/")
	j.Store(u, []string{"bad=\xff\xfe; Path=/", "good=1"})

	require.Equal(t, "good=1", j.CookieHeader(u), "expected non-UTF-8 Set-Cookie value discarded")
}
