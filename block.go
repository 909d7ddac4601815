package aescrypt

import (
	"sync"

	"golang.org/x/sys/cpu"
)

// blockEngine is the capability set both AES engines implement: set a key,
// encrypt/decrypt a single 16-octet block (in-place supported), and clear
// the schedule. Closed two-member tagged variant, per spec's "avoid
// open-ended subclassing" note: AES holds exactly one of {*hwEngine,
// *portableEngine} behind this interface and delegates to it.
type blockEngine interface {
	setKey(key []byte) error
	encryptBlock(dst, src []byte)
	decryptBlock(dst, src []byte)
	clear()
}

var (
	hwOnce       sync.Once
	hwSupported  bool
)

// probeHardwareAES performs the one-shot, side-effect-free CPU feature
// query spec §9 calls for, caching the result in a process-wide
// lazily-initialized value.
func probeHardwareAES() bool {
	hwOnce.Do(func() {
		hwSupported = cpu.X86.HasAES || cpu.ARM64.HasAES
	})
	return hwSupported
}

// AES is the C1 block cipher: AES-256 with two interchangeable engines,
// selected once at construction based on runtime hardware support.
type AES struct {
	engine blockEngine
}

// NewAES constructs an AES instance and sets its key. key must be 16, 24,
// or 32 octets (only 32 is used elsewhere in this module, but set_key
// itself accepts all three FIPS-197 key sizes).
func NewAES(key []byte) (*AES, error) {
	a := &AES{}
	if err := a.SetKey(key); err != nil {
		return nil, err
	}
	return a, nil
}

// SetKey (re-)initializes the key schedule. Re-keying clears the prior
// schedule first.
func (a *AES) SetKey(key []byte) error {
	if len(key) != 16 && len(key) != 24 && len(key) != 32 {
		return &ValidationError{
			Param:  "key",
			Got:    len(key),
			Reason: "AES key must be 16, 24, or 32 octets",
		}
	}
	if a.engine != nil {
		a.engine.clear()
	}
	if probeHardwareAES() {
		a.engine = newHWEngine()
	} else {
		a.engine = newPortableEngine()
	}
	return a.engine.setKey(key)
}

// EncryptBlock encrypts exactly one 16-octet block. src and dst may alias.
func (a *AES) EncryptBlock(dst, src []byte) {
	a.engine.encryptBlock(dst, src)
}

// DecryptBlock decrypts exactly one 16-octet block. src and dst may alias.
func (a *AES) DecryptBlock(dst, src []byte) {
	a.engine.decryptBlock(dst, src)
}

// Clear zeroizes the key schedule.
func (a *AES) Clear() {
	if a.engine != nil {
		a.engine.clear()
	}
}
