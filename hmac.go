package aescrypt

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding"
	"hash"
)

// hmacAlgo selects the underlying hash function for HMAC.
type hmacAlgo int

const (
	hmacSHA256 hmacAlgo = iota
	hmacSHA512
)

// HMAC wraps crypto/hmac behind the Input/InputByte/Finalize/Result/Len
// contract from spec §4.2. SHA-256 backs every HMAC inside the AES Crypt
// format itself; SHA-512 is only ever used as the PBKDF2 PRF (see kdf.go),
// never through this type, but is supported here for completeness of the
// C2 contract.
type HMAC struct {
	algo      hmacAlgo
	h         hash.Hash
	finalized bool
	digest    []byte
}

// NewHMAC constructs an HMAC keyed with key, using the given algorithm.
func NewHMAC(algo hmacAlgo, key []byte) *HMAC {
	var newHash func() hash.Hash
	switch algo {
	case hmacSHA512:
		newHash = sha512.New
	default:
		newHash = sha256.New
	}
	return &HMAC{algo: algo, h: hmac.New(newHash, key)}
}

// Input feeds data into the running MAC. Panics if called after Finalize,
// matching the "usage error" contract in spec §4.2 (an internal
// programming error, not a data-dependent failure).
func (m *HMAC) Input(data []byte) {
	if m.finalized {
		panic("aescrypt: HMAC.Input after Finalize")
	}
	m.h.Write(data)
}

// InputByte feeds a single octet.
func (m *HMAC) InputByte(b byte) {
	m.Input([]byte{b})
}

// Finalize computes the digest. Idempotent: calling it again returns the
// same digest without re-hashing.
func (m *HMAC) Finalize() {
	if m.finalized {
		return
	}
	m.digest = m.h.Sum(nil)
	m.finalized = true
}

// Result returns the finalized digest. Finalize must have been called.
func (m *HMAC) Result() []byte {
	return m.digest
}

// Len returns the digest length in octets for the configured algorithm.
func (m *HMAC) Len() int {
	return m.h.Size()
}

// Clone copies the in-progress hash state, per spec §4.2's "copy/clone
// preserves in-progress state". crypto/hmac's Hash implements
// encoding.BinaryMarshaler/Unmarshaler, which is the stdlib's idiom for a
// portable deep copy of hash state.
func (m *HMAC) Clone() *HMAC {
	clone := &HMAC{algo: m.algo, finalized: m.finalized}
	if m.finalized {
		clone.digest = append([]byte(nil), m.digest...)
	}

	marshaler, ok := m.h.(encoding.BinaryMarshaler)
	if !ok {
		clone.h = m.h
		return clone
	}
	state, err := marshaler.MarshalBinary()
	if err != nil {
		clone.h = m.h
		return clone
	}

	var fresh hash.Hash
	if m.algo == hmacSHA512 {
		fresh = hmac.New(sha512.New, nil)
	} else {
		fresh = hmac.New(sha256.New, nil)
	}
	if unmarshaler, ok := fresh.(encoding.BinaryUnmarshaler); ok {
		if err := unmarshaler.UnmarshalBinary(state); err == nil {
			clone.h = fresh
			return clone
		}
	}
	clone.h = m.h
	return clone
}

// equalDigests performs a constant-time comparison of two digests,
// satisfying spec §7's requirement that AlteredMessage detection carries
// no timing side channel.
func equalDigests(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}
