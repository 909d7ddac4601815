package aescrypt

import "crypto/aes"

// hwEngine is the hardware-accelerated blockEngine: a thin wrapper over
// crypto/aes, which dispatches to AES-NI (amd64) or the ARMv8 crypto
// extensions (arm64) at runtime when the CPU supports them.
type hwEngine struct {
	enc, dec cipherBlock
	key      []byte
}

// cipherBlock is the subset of cipher.Block this engine needs, named
// locally so block.go never has to import crypto/cipher directly.
type cipherBlock interface {
	Encrypt(dst, src []byte)
	Decrypt(dst, src []byte)
}

func newHWEngine() blockEngine {
	return &hwEngine{}
}

func (e *hwEngine) setKey(key []byte) error {
	block, err := aes.NewCipher(key)
	if err != nil {
		return ErrInternal
	}
	e.enc = block
	e.dec = block
	e.key = append([]byte(nil), key...)
	return nil
}

func (e *hwEngine) encryptBlock(dst, src []byte) {
	e.enc.Encrypt(dst, src)
}

func (e *hwEngine) decryptBlock(dst, src []byte) {
	e.dec.Decrypt(dst, src)
}

func (e *hwEngine) clear() {
	zero(e.key)
	e.enc = nil
	e.dec = nil
}
