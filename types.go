package aescrypt

// Wire-format constants fixed by the AES Crypt stream specification.
const (
	blockSize   = 16 // AES block size, octets
	keySize     = 32 // AES-256 key size, octets
	hmacSize    = 32 // HMAC-SHA256 digest size, octets
	ivSize      = 16 // public/session IV size, octets
	envelopeLen = 48 // encrypted sessionIV||sessionKey, octets

	latestVersion = StreamVersion3

	minIterations     uint32 = 1
	maxIterations     uint32 = 5_000_000
	defaultIterations uint32 = 300_000

	// maxPasswordOctets bounds password length so UTF-8->UTF-16 expansion
	// can never overflow; spec.md fixes this at usize::MAX/2, which for a
	// streaming Go implementation is far beyond any realistic password, so
	// a generous fixed ceiling is used instead of int-overflow arithmetic.
	maxPasswordOctets = 1 << 20
)

// magicBytes identifies an AES Crypt stream: ASCII "AES".
var magicBytes = [3]byte{'A', 'E', 'S'}

// StreamVersion is the single-octet AES Crypt format version.
type StreamVersion uint8

const (
	StreamVersion0 StreamVersion = 0
	StreamVersion1 StreamVersion = 1
	StreamVersion2 StreamVersion = 2
	StreamVersion3 StreamVersion = 3
)

// String returns a human-readable label for the stream version.
func (v StreamVersion) String() string {
	switch v {
	case StreamVersion0:
		return "v0"
	case StreamVersion1:
		return "v1"
	case StreamVersion2:
		return "v2"
	case StreamVersion3:
		return "v3"
	default:
		return "unknown"
	}
}

// hasEnvelope reports whether this version carries an encrypted session
// envelope (all versions except the legacy v0, where the "session" key/IV
// equals the password-derived key/IV).
func (v StreamVersion) hasEnvelope() bool {
	return v >= StreamVersion1
}

// trailerSize returns the number of trailing octets (modulo octet, if any,
// plus the payload HMAC) that follow the last ciphertext block.
func (v StreamVersion) trailerSize() int {
	if v == StreamVersion1 || v == StreamVersion2 {
		return hmacSize + 1
	}
	return hmacSize
}

// Extension is a header extension: an opaque (identifier, value) pair
// carried in the AES Crypt header's extension list. The codec never
// interprets extension contents; it only transports them.
type Extension struct {
	Identifier []byte
	Value      []byte
}

// NewExtension builds an Extension from string identifier/value pairs, the
// common case for informational extensions such as CREATED_BY.
func NewExtension(identifier, value string) Extension {
	return Extension{Identifier: []byte(identifier), Value: []byte(value)}
}

// Well-known extension identifiers emitted by AES Crypt tooling. Entirely
// conventional: the codec treats any identifier the same way.
const (
	CreatedByExtension   = "CREATED_BY"
	CreatedDateExtension = "CREATED_DATE"
)

// ProgressFunc is the progress-callback contract from spec.md §6: it
// receives the instance label supplied in the options and the cumulative
// number of octets consumed/produced so far. It must not re-enter the
// engine; if it panics, the operation aborts with ErrInternal.
type ProgressFunc func(instanceLabel string, totalOctets uint64)
