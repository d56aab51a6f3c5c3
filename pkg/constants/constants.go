// Package constants defines magic numbers and default values used throughout actorhttp
package constants

// Response parsing limits, grounded on original_source's decoder.rs
// constants (REQUEST_BUFFER_SIZE, MAX_HEADERS).
const (
	// ReadChunkSize is how much is read from the stream per partial
	// parse attempt while the head is incomplete.
	ReadChunkSize = 4096
	// MaxHeaderCount caps the number of headers a response may carry.
	MaxHeaderCount = 128
	// MaxHeaderBytes caps the cumulative byte size of the header block.
	MaxHeaderBytes = 64 * 1024
	// DefaultMaxBodySize bounds the body as read from the connection,
	// before decoding (§4.A); decompressed output is not bounded by it.
	DefaultMaxBodySize = 32 * 1024 * 1024
	// DefaultRedirectLimit is the default Limited(n) redirect policy.
	DefaultRedirectLimit = 10
)
