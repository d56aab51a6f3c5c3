package decode

import (
	"bytes"
	"compress/gzip"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/actorhttp/actorhttp/pkg/headers"
)

func gzipBytes(t *testing.T, s string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	_, err := w.Write([]byte(s))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestDecodeGzipStripsHeaders(t *testing.T) {
	want := "Wikipedia in \r\n\r\nchunks."
	compressed := gzipBytes(t, want)

	h := headers.New()
	h.Add("Content-Encoding", "gzip")
	h.Add("Content-Length", strconv.Itoa(len(compressed)))

	out, err := Decode(h, compressed, Accepts{Gzip: true})
	require.NoError(t, err)
	assert.Equal(t, want, string(out))
	assert.False(t, h.Has("Content-Encoding"), "expected Content-Encoding stripped after decode")
	assert.False(t, h.Has("Content-Length"), "expected Content-Length stripped after decode")
}

func TestDecodeNullifiedByZeroContentLength(t *testing.T) {
	h := headers.New()
	h.Add("Content-Encoding", "gzip")
	h.Add("Content-Length", "0")

	out, err := Decode(h, nil, Accepts{Gzip: true})
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.True(t, h.Has("Content-Encoding"), "expected Content-Encoding preserved when nullified by Content-Length: 0")
}

func TestDecodeIdentityPassthrough(t *testing.T) {
	h := headers.New()
	out, err := Decode(h, []byte("plain"), Accepts{Gzip: true, Brotli: true, Deflate: true})
	require.NoError(t, err)
	assert.Equal(t, "plain", string(out))
}

func TestAcceptsTokensOrder(t *testing.T) {
	a := Accepts{Gzip: true, Brotli: true, Deflate: true}
	assert.Equal(t, []string{"gzip", "br", "deflate"}, a.Tokens())
}
