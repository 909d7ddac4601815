package aescrypt

import (
	"bytes"
	"testing"
)

func TestEnvelope_RoundTrip(t *testing.T) {
	derivedKey := bytes.Repeat([]byte{0x01}, keySize)
	publicIV := bytes.Repeat([]byte{0x02}, ivSize)
	sessionIV := bytes.Repeat([]byte{0x03}, ivSize)
	sessionKey := bytes.Repeat([]byte{0x04}, keySize)

	var buf bytes.Buffer
	if err := writeEnvelope(&buf, derivedKey, publicIV, sessionIV, sessionKey, latestVersion); err != nil {
		t.Fatalf("writeEnvelope: %v", err)
	}

	gotIV, gotKey, err := readEnvelope(&buf, derivedKey, publicIV, latestVersion)
	if err != nil {
		t.Fatalf("readEnvelope: %v", err)
	}
	if !bytes.Equal(gotIV, sessionIV) {
		t.Errorf("sessionIV = %x, want %x", gotIV, sessionIV)
	}
	if !bytes.Equal(gotKey, sessionKey) {
		t.Errorf("sessionKey = %x, want %x", gotKey, sessionKey)
	}
}

func TestEnvelope_TamperDetected(t *testing.T) {
	derivedKey := bytes.Repeat([]byte{0x01}, keySize)
	publicIV := bytes.Repeat([]byte{0x02}, ivSize)
	sessionIV := bytes.Repeat([]byte{0x03}, ivSize)
	sessionKey := bytes.Repeat([]byte{0x04}, keySize)

	var buf bytes.Buffer
	if err := writeEnvelope(&buf, derivedKey, publicIV, sessionIV, sessionKey, latestVersion); err != nil {
		t.Fatalf("writeEnvelope: %v", err)
	}
	raw := buf.Bytes()
	raw[0] ^= 0x01 // flip a bit in the envelope ciphertext

	_, _, err := readEnvelope(bytes.NewReader(raw), derivedKey, publicIV, latestVersion)
	if !IsAlteredMessage(err) {
		t.Fatalf("expected AlteredMessage on tamper, got %v", err)
	}
}

func TestEnvelope_WrongDerivedKeyDetected(t *testing.T) {
	derivedKey := bytes.Repeat([]byte{0x01}, keySize)
	publicIV := bytes.Repeat([]byte{0x02}, ivSize)
	sessionIV := bytes.Repeat([]byte{0x03}, ivSize)
	sessionKey := bytes.Repeat([]byte{0x04}, keySize)

	var buf bytes.Buffer
	if err := writeEnvelope(&buf, derivedKey, publicIV, sessionIV, sessionKey, latestVersion); err != nil {
		t.Fatalf("writeEnvelope: %v", err)
	}

	wrongKey := bytes.Repeat([]byte{0x09}, keySize)
	_, _, err := readEnvelope(bytes.NewReader(buf.Bytes()), wrongKey, publicIV, latestVersion)
	if !IsAlteredMessage(err) {
		t.Fatalf("expected AlteredMessage for wrong key, got %v", err)
	}
}
