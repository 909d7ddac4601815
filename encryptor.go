package aescrypt

import "crypto/rand"

// Encryptor turns a plaintext octet stream into a version-3 AES Crypt
// stream. A single Encryptor may run one Encrypt call at a time; see C8
// for the cancellation/lifecycle contract shared with Decryptor.
type Encryptor struct {
	guard *opGuard
}

// NewEncryptor constructs an idle Encryptor.
func NewEncryptor() *Encryptor {
	return &Encryptor{guard: newOpGuard()}
}

// Cancel requests cancellation of any operation currently running on this
// Encryptor and blocks until it has exited. It is a no-op (beyond latching
// the flag) if no operation is active.
func (e *Encryptor) Cancel() {
	e.guard.cancel()
}

// Activate clears a cancellation latched by a prior Cancel() call, re-arming
// the Encryptor for a subsequent Encrypt call. Per spec §4.8/§4.6, a
// cancellation stays latched after the cancelled operation exits: every
// Encrypt call fails immediately with EncryptionCancelled until Activate
// has been called. Activate fails (returns false) while an operation is
// currently active; it is otherwise idempotent.
func (e *Encryptor) Activate() bool {
	return e.guard.activate()
}

// Encrypt reads plaintext from source and writes a version-3 AES Crypt
// stream to destination, orchestrating C3 (PBKDF2), C5 (header/envelope),
// and C4 (CBC stream codec) per spec §4.6.
func (e *Encryptor) Encrypt(password []byte, source Source, destination Sink, opts EncryptOptions) error {
	opts, err := opts.Validate()
	if err != nil {
		return err
	}
	if err := ValidatePassword(password); err != nil {
		return err
	}
	if err := checkGood(source); err != nil {
		return err
	}

	started, blocked := e.guard.begin()
	if blocked {
		return ErrEncryptionCancelled
	}
	if !started {
		return ErrAlreadyActive
	}
	defer e.guard.finish()

	log := opts.Logger
	log.Infof("encrypt: starting, instance=%s iterations=%d", opts.InstanceLabel, opts.Iterations)

	publicIV := make([]byte, ivSize)
	if _, err := rand.Read(publicIV); err != nil {
		return NewIOError("read", err)
	}
	defer zero(publicIV)

	sessionIV := make([]byte, ivSize)
	sessionKey := make([]byte, keySize)
	if _, err := rand.Read(sessionIV); err != nil {
		return NewIOError("read", err)
	}
	if _, err := rand.Read(sessionKey); err != nil {
		return NewIOError("read", err)
	}
	defer zeroAll(sessionIV, sessionKey)

	log.Debugf("encrypt: deriving key via PBKDF2 (iterations=%d)", opts.Iterations)
	derivedKey, err := PBKDF2KDF(password, publicIV, opts.Iterations)
	if err != nil {
		return err
	}
	defer zero(derivedKey)

	if err := writeHeader(destination, opts.Extensions, opts.Iterations); err != nil {
		log.Errorf("encrypt: failed writing header: %v", err)
		return err
	}
	if _, err := destination.Write(publicIV); err != nil {
		return NewIOError("write", err)
	}

	log.Debugf("encrypt: writing session envelope")
	if err := writeEnvelope(destination, derivedKey, publicIV, sessionIV, sessionKey, latestVersion); err != nil {
		log.Errorf("encrypt: failed writing envelope: %v", err)
		return err
	}

	payloadCipher, err := NewAES(sessionKey)
	if err != nil {
		return err
	}
	defer payloadCipher.Clear()

	mac := NewHMAC(hmacSHA256, sessionKey)

	log.Debugf("encrypt: streaming payload")
	_, err = cbcEncrypt(source, destination, payloadCipher, sessionIV, mac, e.guard, opts.Progress, opts.InstanceLabel, opts.ProgressInterval)
	if err != nil {
		if err == ErrCancelled {
			log.Warnf("encrypt: cancelled")
			return ErrEncryptionCancelled
		}
		log.Errorf("encrypt: failed streaming payload: %v", err)
		return err
	}

	log.Infof("encrypt: completed")
	return nil
}
