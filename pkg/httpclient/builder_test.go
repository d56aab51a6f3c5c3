package httpclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientBuilderRejectsInvertedTLSVersions(t *testing.T) {
	b := NewClientBuilder().TLSVersions(0x0304, 0x0303) // TLS1.3 min, TLS1.2 max
	_, err := b.Build()
	assert.Error(t, err, "expected inverted TLS version range to fail at Build")
}

func TestClientBuilderDefaultsEnableAllEncodingsAndCookies(t *testing.T) {
	b := NewClientBuilder()
	assert.True(t, b.accepts.Gzip)
	assert.True(t, b.accepts.Brotli)
	assert.True(t, b.accepts.Deflate)
	assert.True(t, b.cookieStore)
}

func TestClientBuilderBuildsUsableClient(t *testing.T) {
	c, err := NewClientBuilder().Build()
	require.NoError(t, err)
	defer c.Close()
	assert.NotNil(t, c.jar, "expected a cookie jar by default")
}

func TestClientBuilderCookieStoreDisabled(t *testing.T) {
	c, err := NewClientBuilder().CookieStore(false).Build()
	require.NoError(t, err)
	defer c.Close()
	assert.Nil(t, c.jar, "expected no cookie jar when disabled")
}
