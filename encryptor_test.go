package aescrypt

import (
	"bytes"
	"crypto/rand"
	"io"
	"testing"
)

func encryptToBuffer(t *testing.T, password []byte, plaintext []byte, opts EncryptOptions) []byte {
	t.Helper()
	var out bytes.Buffer
	if err := NewEncryptor().Encrypt(password, bytes.NewReader(plaintext), &out, opts); err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	return out.Bytes()
}

// S1: empty plaintext round-trips through a version-3 stream.
func TestEncryptDecrypt_EmptyPlaintext(t *testing.T) {
	password := []byte("correct horse battery staple")
	ciphertext := encryptToBuffer(t, password, nil, EncryptOptions{})

	var out bytes.Buffer
	if err := NewDecryptor().Decrypt(password, bytes.NewReader(ciphertext), &out, DecryptOptions{}); err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("got %d octets of plaintext, want 0", out.Len())
	}
}

// S2: a single octet of plaintext round-trips.
func TestEncryptDecrypt_SingleOctet(t *testing.T) {
	password := []byte("hunter2")
	plaintext := []byte{0x7f}
	ciphertext := encryptToBuffer(t, password, plaintext, EncryptOptions{})

	var out bytes.Buffer
	if err := NewDecryptor().Decrypt(password, bytes.NewReader(ciphertext), &out, DecryptOptions{}); err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if !bytes.Equal(out.Bytes(), plaintext) {
		t.Errorf("got %x, want %x", out.Bytes(), plaintext)
	}
}

// S3: plaintext that is exactly one block long forces a whole extra
// padding block (testable property #5).
func TestEncryptDecrypt_ExactBlockForcesPaddingBlock(t *testing.T) {
	password := []byte("block-aligned")
	plaintext := bytes.Repeat([]byte{0xaa}, blockSize)
	ciphertext := encryptToBuffer(t, password, plaintext, EncryptOptions{})

	// Header (magic, version, reserved: 5; extension terminator: 2;
	// iterations: 4), public IV, envelope and envelope HMAC precede the
	// payload; the payload HMAC follows it.
	payloadLen := len(ciphertext) - (5 + 2 + 4 + ivSize + envelopeLen + hmacSize) - hmacSize
	if payloadLen != 2*blockSize {
		t.Errorf("payload ciphertext = %d octets, want %d (data block + full padding block)", payloadLen, 2*blockSize)
	}

	var out bytes.Buffer
	if err := NewDecryptor().Decrypt(password, bytes.NewReader(ciphertext), &out, DecryptOptions{}); err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if !bytes.Equal(out.Bytes(), plaintext) {
		t.Errorf("got %x, want %x", out.Bytes(), plaintext)
	}
}

// S4: a larger payload with header extensions round-trips.
func TestEncryptDecrypt_WithExtensionsAndLargePayload(t *testing.T) {
	password := []byte("a reasonably long passphrase")
	plaintext := make([]byte, 4096)
	if _, err := rand.Read(plaintext); err != nil {
		t.Fatalf("rand.Read: %v", err)
	}

	opts := EncryptOptions{
		Extensions: []Extension{
			NewExtension(CreatedByExtension, "aescrypt test suite"),
			NewExtension(CreatedDateExtension, "2026-07-31"),
		},
	}
	ciphertext := encryptToBuffer(t, password, plaintext, opts)

	var out bytes.Buffer
	if err := NewDecryptor().Decrypt(password, bytes.NewReader(ciphertext), &out, DecryptOptions{}); err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if !bytes.Equal(out.Bytes(), plaintext) {
		t.Error("round-tripped plaintext does not match original")
	}
}

// S5: flipping a bit in the payload HMAC trailer must be detected as an
// altered message, with nothing trustworthy written to the destination.
func TestDecrypt_TamperedTrailerDetected(t *testing.T) {
	password := []byte("hunter2")
	plaintext := []byte{0x7f}
	ciphertext := encryptToBuffer(t, password, plaintext, EncryptOptions{})

	tampered := append([]byte(nil), ciphertext...)
	tampered[len(tampered)-1] ^= 0x01

	var out bytes.Buffer
	err := NewDecryptor().Decrypt(password, bytes.NewReader(tampered), &out, DecryptOptions{})
	if !IsAlteredMessage(err) {
		t.Fatalf("expected AlteredMessage, got %v", err)
	}
}

// S6: decrypting with the wrong password must also surface as an altered
// message, not a distinguishable "bad password" signal.
func TestDecrypt_WrongPasswordDetected(t *testing.T) {
	plaintext := bytes.Repeat([]byte{0xaa}, blockSize)
	ciphertext := encryptToBuffer(t, []byte("right password"), plaintext, EncryptOptions{})

	var out bytes.Buffer
	err := NewDecryptor().Decrypt([]byte("wrong password"), bytes.NewReader(ciphertext), &out, DecryptOptions{})
	if !IsAlteredMessage(err) {
		t.Fatalf("expected AlteredMessage, got %v", err)
	}
}

// S7: cancelling mid-stream stops the operation and Cancel blocks until the
// operation has actually exited.
func TestEncrypt_Cancellation(t *testing.T) {
	password := []byte("cancel me")
	plaintext := make([]byte, 4<<20) // 4 MiB, several progress intervals
	if _, err := rand.Read(plaintext); err != nil {
		t.Fatalf("rand.Read: %v", err)
	}

	enc := NewEncryptor()
	progressed := make(chan struct{}, 1)
	opts := EncryptOptions{
		ProgressInterval: 64 * 1024,
		Progress: func(label string, written uint64) {
			if written > 0 {
				select {
				case progressed <- struct{}{}:
				default:
				}
			}
		},
	}

	errCh := make(chan error, 1)
	go func() {
		var out bytes.Buffer
		errCh <- enc.Encrypt(password, bytes.NewReader(plaintext), &out, opts)
	}()

	<-progressed
	enc.Cancel()

	if err := <-errCh; err != ErrEncryptionCancelled {
		t.Fatalf("Encrypt() = %v, want ErrEncryptionCancelled", err)
	}
}

// A cancellation stays latched after the cancelled operation exits: a
// subsequent Encrypt call must fail immediately with EncryptionCancelled
// and do no work, until Activate() is called (spec §4.6, testable
// property #7).
func TestEncrypt_LatchedCancellationRejectsUntilActivate(t *testing.T) {
	password := []byte("cancel me")
	plaintext := make([]byte, 4<<20)
	if _, err := rand.Read(plaintext); err != nil {
		t.Fatalf("rand.Read: %v", err)
	}

	enc := NewEncryptor()
	progressed := make(chan struct{}, 1)
	opts := EncryptOptions{
		ProgressInterval: 64 * 1024,
		Progress: func(label string, written uint64) {
			if written > 0 {
				select {
				case progressed <- struct{}{}:
				default:
				}
			}
		},
	}

	errCh := make(chan error, 1)
	go func() {
		var out bytes.Buffer
		errCh <- enc.Encrypt(password, bytes.NewReader(plaintext), &out, opts)
	}()
	<-progressed
	enc.Cancel()
	if err := <-errCh; err != ErrEncryptionCancelled {
		t.Fatalf("Encrypt() = %v, want ErrEncryptionCancelled", err)
	}

	var out bytes.Buffer
	if err := enc.Encrypt(password, bytes.NewReader(plaintext), &out, EncryptOptions{}); err != ErrEncryptionCancelled {
		t.Fatalf("Encrypt() after cancellation, before Activate(), = %v, want ErrEncryptionCancelled", err)
	}
	if out.Len() != 0 {
		t.Errorf("Encrypt() should do no work while cancellation is latched, wrote %d octets", out.Len())
	}

	if !enc.Activate() {
		t.Fatal("Activate() should succeed on an idle, cancelled Encryptor")
	}

	out.Reset()
	if err := enc.Encrypt(password, bytes.NewReader([]byte("hello")), &out, EncryptOptions{}); err != nil {
		t.Fatalf("Encrypt() after Activate() = %v, want success", err)
	}
}

// A panicking Progress callback must abort the operation as ErrInternal
// rather than crash through Encrypt (spec §6, §7).
func TestEncrypt_PanickingProgressSurfacesAsErrInternal(t *testing.T) {
	password := []byte("hunter2")
	plaintext := []byte("some plaintext")
	opts := EncryptOptions{
		ProgressInterval: blockSize,
		Progress: func(label string, written uint64) {
			panic("boom")
		},
	}

	var out bytes.Buffer
	err := NewEncryptor().Encrypt(password, bytes.NewReader(plaintext), &out, opts)
	if err != ErrInternal {
		t.Fatalf("Encrypt() = %v, want ErrInternal", err)
	}
}

// S8: a hand-crafted version-0 stream, built directly from the low-level
// primitives (Encryptor only ever writes version 3), decrypts correctly,
// exercising the header-sourced modulo path in cbcDecrypt.
func TestDecrypt_LegacyVersion0Stream(t *testing.T) {
	password := []byte("legacy password")
	plaintext := []byte("legacy plaintext, thirty chars")
	if len(plaintext)%blockSize == 0 {
		t.Fatal("test plaintext must not be block-aligned")
	}
	modulo := byte(blockSize - len(plaintext)%blockSize)

	publicIV := bytes.Repeat([]byte{0x11}, ivSize)
	derivedKey, err := LegacyKDF(password, publicIV)
	if err != nil {
		t.Fatalf("LegacyKDF: %v", err)
	}

	var stream bytes.Buffer
	stream.Write(magicBytes[:])
	stream.WriteByte(byte(StreamVersion0))
	stream.WriteByte(modulo) // reserved octet carries the modulo for v0; no extension list follows
	stream.Write(publicIV)

	cipher, err := NewAES(derivedKey)
	if err != nil {
		t.Fatalf("NewAES: %v", err)
	}
	mac := NewHMAC(hmacSHA256, derivedKey)

	prior := append([]byte(nil), publicIV...)
	padded := append([]byte(nil), plaintext...)
	for i := byte(0); i < modulo; i++ {
		padded = append(padded, modulo)
	}
	for off := 0; off < len(padded); off += blockSize {
		block := make([]byte, blockSize)
		xorBytes(block, padded[off:off+blockSize], prior)
		cipher.EncryptBlock(block, block)
		stream.Write(block)
		mac.Input(block)
		prior = block
	}
	mac.Finalize()
	stream.Write(mac.Result())

	var out bytes.Buffer
	if err := NewDecryptor().Decrypt(password, bytes.NewReader(stream.Bytes()), &out, DecryptOptions{}); err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if !bytes.Equal(out.Bytes(), plaintext) {
		t.Errorf("got %q, want %q", out.Bytes(), plaintext)
	}
}

func TestEncrypt_SingleOperationInvariant(t *testing.T) {
	enc := NewEncryptor()
	plaintext := make([]byte, 1<<20)
	if _, err := rand.Read(plaintext); err != nil {
		t.Fatalf("rand.Read: %v", err)
	}

	started := make(chan struct{})
	release := make(chan struct{})
	go func() {
		var out bytes.Buffer
		close(started)
		_ = enc.Encrypt([]byte("p"), &blockingReader{data: plaintext, release: release}, &out, EncryptOptions{})
	}()
	<-started

	if err := enc.Encrypt([]byte("p"), bytes.NewReader(plaintext), &bytes.Buffer{}, EncryptOptions{}); err != ErrAlreadyActive {
		t.Fatalf("second concurrent Encrypt = %v, want ErrAlreadyActive", err)
	}
	close(release)
}

// blockingReader yields data one byte at a time and stalls before the final
// byte until release is closed, giving a concurrent caller a reliable
// window in which the first Encrypt call is still active.
type blockingReader struct {
	data    []byte
	off     int
	release chan struct{}
}

func (b *blockingReader) Read(p []byte) (int, error) {
	if b.off >= len(b.data) {
		return 0, io.EOF
	}
	if b.off == len(b.data)-1 {
		<-b.release
	}
	n := copy(p, b.data[b.off:b.off+1])
	b.off += n
	return n, nil
}
