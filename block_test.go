package aescrypt

import (
	"bytes"
	"encoding/hex"
	"testing"
)

// FIPS-197 Appendix C.1: AES-256 test vector.
func TestAES256_FIPS197Vector(t *testing.T) {
	key, _ := hex.DecodeString("000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f")
	plaintext, _ := hex.DecodeString("00112233445566778899aabbccddeeff")
	wantCiphertext, _ := hex.DecodeString("8ea2b7ca516745bfeafc49904b496089")

	t.Run("portable engine", func(t *testing.T) {
		e := &portableEngine{}
		if err := e.setKey(key); err != nil {
			t.Fatalf("setKey: %v", err)
		}
		got := make([]byte, blockSize)
		e.encryptBlock(got, plaintext)
		if !bytes.Equal(got, wantCiphertext) {
			t.Errorf("encryptBlock = %x, want %x", got, wantCiphertext)
		}
		back := make([]byte, blockSize)
		e.decryptBlock(back, got)
		if !bytes.Equal(back, plaintext) {
			t.Errorf("decryptBlock = %x, want %x", back, plaintext)
		}
	})

	t.Run("hardware engine", func(t *testing.T) {
		e := newHWEngine()
		if err := e.setKey(key); err != nil {
			t.Fatalf("setKey: %v", err)
		}
		got := make([]byte, blockSize)
		e.encryptBlock(got, plaintext)
		if !bytes.Equal(got, wantCiphertext) {
			t.Errorf("encryptBlock = %x, want %x", got, wantCiphertext)
		}
	})
}

func TestAES_EnginesAgree(t *testing.T) {
	key := bytes.Repeat([]byte{0x42}, keySize)
	plaintext := bytes.Repeat([]byte{0x01}, blockSize)

	portable := &portableEngine{}
	if err := portable.setKey(key); err != nil {
		t.Fatalf("portable setKey: %v", err)
	}
	hw := newHWEngine()
	if err := hw.setKey(key); err != nil {
		t.Fatalf("hw setKey: %v", err)
	}

	wantCipher := make([]byte, blockSize)
	portable.encryptBlock(wantCipher, plaintext)

	gotCipher := make([]byte, blockSize)
	hw.encryptBlock(gotCipher, plaintext)

	if !bytes.Equal(wantCipher, gotCipher) {
		t.Fatalf("engines disagree: portable=%x hw=%x", wantCipher, gotCipher)
	}
}

func TestAES_InPlace(t *testing.T) {
	a, err := NewAES(bytes.Repeat([]byte{0x07}, keySize))
	if err != nil {
		t.Fatalf("NewAES: %v", err)
	}
	block := bytes.Repeat([]byte{0xAB}, blockSize)
	orig := append([]byte(nil), block...)

	a.EncryptBlock(block, block)
	a.DecryptBlock(block, block)

	if !bytes.Equal(block, orig) {
		t.Errorf("in-place encrypt/decrypt roundtrip = %x, want %x", block, orig)
	}
}

func TestAES_InvalidKeySize(t *testing.T) {
	if _, err := NewAES(make([]byte, 20)); !IsValidationError(err) {
		t.Fatalf("expected validation error for bad key size, got %v", err)
	}
}
