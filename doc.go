// Package aescrypt implements the AES Crypt container format: a
// password-encrypted, HMAC-authenticated stream format, bit-exact
// compatible with stream versions 0 through 3 produced and consumed by the
// reference AES Crypt tooling.
//
// # Overview
//
// The package exposes two stream processors, Encryptor and Decryptor, built
// on shared cryptographic primitives: an AES-256 block cipher with two
// interchangeable engines (a portable, table-driven implementation and a
// hardware-accelerated one selected at runtime), HMAC-SHA256/SHA512, and
// two key-derivation functions (a legacy iterated-hash KDF for stream
// versions 0-2, and PBKDF2-HMAC-SHA512 for version 3 and later).
//
// # Supported Stream Versions
//
//   - Version 3 (current): extension list, 4-byte iterations field,
//     encrypted session envelope, PBKDF2-HMAC-SHA512 key derivation.
//   - Versions 0-2 (decrypt only): legacy iterated-SHA-256 key derivation,
//     and a padding modulo instead of PKCS#7, carried in the header's
//     reserved octet (v0) or in the trailer (v1-2).
//
// Encryptor always emits version 3; Decryptor accepts any of 0-3.
//
// # Basic Usage
//
//	enc := aescrypt.NewEncryptor()
//	err := enc.Encrypt([]byte("correct horse"), source, destination,
//	    aescrypt.EncryptOptions{Iterations: 300_000})
//
//	dec := aescrypt.NewDecryptor()
//	err = dec.Decrypt([]byte("correct horse"), source, destination,
//	    aescrypt.DecryptOptions{})
//
// # Security Considerations
//
// Protected against: tampering with the ciphertext (surfaces as
// AlteredMessage, with a constant-time HMAC comparison so wrong password
// and tampered payload are indistinguishable), truncation of the
// ciphertext (AlteredMessage, or an invalid-stream error when the cut
// leaves a trailer of the wrong size), and offline brute-force attacks
// when a high iteration count is chosen for the KDF.
//
// Not protected against: key management beyond a password (there is no key
// storage or rotation built in), memory dumps while key material is live in
// the process, and side channels outside the HMAC comparison itself.
//
// # Wire Format
//
// 'A' 'E' 'S', version octet, reserved octet, extension TLV list (v1+), 4-byte
// iterations field (v3+), 16-octet public IV, 48-octet encrypted session
// envelope + 32-octet envelope HMAC (v1+), payload ciphertext, 32- or
// 33-octet trailer.
//
// # Concurrency
//
// A single Encryptor or Decryptor instance allows only one active operation
// at a time; a concurrent call returns ErrAlreadyActive. Any goroutine may
// call Cancel, which blocks until the active operation (if any) observes
// the cancellation and exits.
package aescrypt
