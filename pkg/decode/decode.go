// Package decode selects and applies gzip/deflate/brotli body
// decompression, grounded on original_source's decoder.rs selection
// order and header-stripping rule.
package decode

import (
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"io"
	"strings"

	"github.com/andybalholm/brotli"

	"github.com/actorhttp/actorhttp/pkg/errors"
	"github.com/actorhttp/actorhttp/pkg/headers"
)

// Accepts is the three-boolean set controlling both the Accept-Encoding
// header sent and which decoders are attempted (§3 Accepts set).
type Accepts struct {
	Gzip    bool
	Brotli  bool
	Deflate bool
}

// Tokens returns the Accept-Encoding tokens for the accepted
// encodings, in gzip, br, deflate order (the caller joins them).
func (a Accepts) Tokens() []string {
	var toks []string
	if a.Gzip {
		toks = append(toks, "gzip")
	}
	if a.Brotli {
		toks = append(toks, "br")
	}
	if a.Deflate {
		toks = append(toks, "deflate")
	}
	return toks
}

// Empty reports whether no encoding is accepted.
func (a Accepts) Empty() bool {
	return !a.Gzip && !a.Brotli && !a.Deflate
}

type encoding int

const (
	identity encoding = iota
	gzipEnc
	brotliEnc
	deflateEnc
)

// Decode inspects h for Content-Encoding/Transfer-Encoding, selects a
// decoder per Accepts (gzip > brotli > deflate > identity), and
// returns the decoded body. On a non-identity match it also strips
// Content-Encoding and Content-Length from h so the caller sees a
// consistent view (§4.F, resolving the Open Question in §9).
func Decode(h *headers.Headers, body []byte, accepts Accepts) ([]byte, error) {
	enc := identity
	switch {
	case accepts.Gzip && detectAndStrip(h, "gzip"):
		enc = gzipEnc
	case accepts.Brotli && detectAndStrip(h, "br"):
		enc = brotliEnc
	case accepts.Deflate && detectAndStrip(h, "deflate"):
		enc = deflateEnc
	}

	switch enc {
	case identity:
		return body, nil
	case gzipEnc:
		zr, err := gzip.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, errors.NewDecodeError("decode.gzip", "invalid gzip body", err)
		}
		defer zr.Close()
		out, err := io.ReadAll(zr)
		if err != nil {
			return nil, errors.NewDecodeError("decode.gzip", "failed to decompress gzip body", err)
		}
		return out, nil
	case brotliEnc:
		br := brotli.NewReader(bytes.NewReader(body))
		out, err := io.ReadAll(br)
		if err != nil {
			return nil, errors.NewDecodeError("decode.brotli", "failed to decompress brotli body", err)
		}
		return out, nil
	case deflateEnc:
		zr, err := zlib.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, errors.NewDecodeError("decode.deflate", "invalid deflate (zlib) body", err)
		}
		defer zr.Close()
		out, err := io.ReadAll(zr)
		if err != nil {
			return nil, errors.NewDecodeError("decode.deflate", "failed to decompress deflate body", err)
		}
		return out, nil
	}

	return body, nil
}

// detectAndStrip reports whether either Content-Encoding or
// Transfer-Encoding carries token, nullified by a literal
// "Content-Length: 0" (decoder.rs's detect_encoding). On a match it
// strips both Content-Encoding and Content-Length.
func detectAndStrip(h *headers.Headers, token string) bool {
	matched := headerContainsToken(h.Get("Content-Encoding"), token) ||
		headerContainsToken(h.Get("Transfer-Encoding"), token)
	if !matched {
		return false
	}
	if h.Get("Content-Length") == "0" {
		return false
	}
	h.Del("Content-Encoding")
	h.Del("Content-Length")
	return true
}

func headerContainsToken(value, token string) bool {
	for _, part := range strings.Split(value, ",") {
		if strings.EqualFold(strings.TrimSpace(part), token) {
			return true
		}
	}
	return false
}
