package aescrypt

import "io"

// writeEnvelope constructs and writes the 48-octet encrypted session
// envelope plus its 32-octet HMAC, per spec §4.5:
//
//	block0 = sessionIV  XOR publicIV,        C0 = AES_derivedKey(block0)
//	block1 = sessionKey[0:16]  XOR C0,       C1 = AES_derivedKey(block1)
//	block2 = sessionKey[16:32] XOR C1,       C2 = AES_derivedKey(block2)
//	envelopeHMAC = HMAC_derivedKey(C0 || C1 || C2 [|| versionOctet if v>=3])
func writeEnvelope(w Sink, derivedKey, publicIV, sessionIV, sessionKey []byte, version StreamVersion) error {
	cipher, err := NewAES(derivedKey)
	if err != nil {
		return err
	}
	defer cipher.Clear()

	mac := NewHMAC(hmacSHA256, derivedKey)

	var block, prior [blockSize]byte
	copy(prior[:], publicIV)

	var envelope [envelopeLen]byte

	xorBytes(block[:], sessionIV, prior[:])
	cipher.EncryptBlock(envelope[0:blockSize], block[:])
	copy(prior[:], envelope[0:blockSize])

	xorBytes(block[:], sessionKey[0:16], prior[:])
	cipher.EncryptBlock(envelope[blockSize:2*blockSize], block[:])
	copy(prior[:], envelope[blockSize:2*blockSize])

	xorBytes(block[:], sessionKey[16:32], prior[:])
	cipher.EncryptBlock(envelope[2*blockSize:3*blockSize], block[:])

	mac.Input(envelope[:])
	if version >= StreamVersion3 {
		mac.InputByte(byte(version))
	}
	mac.Finalize()

	if _, err := w.Write(envelope[:]); err != nil {
		return NewIOError("write", err)
	}
	if _, err := w.Write(mac.Result()); err != nil {
		return NewIOError("write", err)
	}

	zero(block[:])
	zero(prior[:])
	zero(envelope[:])
	return nil
}

// readEnvelope reads and verifies the 48-octet envelope and its HMAC,
// recovering sessionIV and sessionKey. Any HMAC mismatch is
// AlteredMessageError{Stage: "envelope"}.
func readEnvelope(r Source, derivedKey, publicIV []byte, version StreamVersion) (sessionIV, sessionKey []byte, err error) {
	var envelope [envelopeLen]byte
	if _, err := io.ReadFull(r, envelope[:]); err != nil {
		return nil, nil, NewStreamError("envelope", "short read")
	}
	var expectedMAC [hmacSize]byte
	if _, err := io.ReadFull(r, expectedMAC[:]); err != nil {
		return nil, nil, NewStreamError("envelope", "short HMAC read")
	}

	mac := NewHMAC(hmacSHA256, derivedKey)
	mac.Input(envelope[:])
	if version >= StreamVersion3 {
		mac.InputByte(byte(version))
	}
	mac.Finalize()
	if !equalDigests(mac.Result(), expectedMAC[:]) {
		return nil, nil, &AlteredMessageError{Stage: "envelope"}
	}

	cipher, cerr := NewAES(derivedKey)
	if cerr != nil {
		return nil, nil, cerr
	}
	defer cipher.Clear()

	var plain [blockSize]byte
	var prior [blockSize]byte
	copy(prior[:], publicIV)

	sessionIV = make([]byte, ivSize)
	sessionKey = make([]byte, keySize)

	cipher.DecryptBlock(plain[:], envelope[0:blockSize])
	xorBytes(sessionIV, plain[:], prior[:])
	copy(prior[:], envelope[0:blockSize])

	cipher.DecryptBlock(plain[:], envelope[blockSize:2*blockSize])
	xorBytes(sessionKey[0:16], plain[:], prior[:])
	copy(prior[:], envelope[blockSize:2*blockSize])

	cipher.DecryptBlock(plain[:], envelope[2*blockSize:3*blockSize])
	xorBytes(sessionKey[16:32], plain[:], prior[:])

	zero(plain[:])
	zero(prior[:])
	return sessionIV, sessionKey, nil
}

// xorBytes sets dst[i] = a[i] ^ b[i] for i in [0, len(dst)). a and b must
// be at least len(dst) long.
func xorBytes(dst, a, b []byte) {
	for i := range dst {
		dst[i] = a[i] ^ b[i]
	}
}
