package aescrypt

import "io"

// Decryptor turns any-version (0-3) AES Crypt stream back into plaintext.
// A single Decryptor may run one Decrypt call at a time; see C8 for the
// cancellation/lifecycle contract shared with Encryptor.
type Decryptor struct {
	guard *opGuard
}

// NewDecryptor constructs an idle Decryptor.
func NewDecryptor() *Decryptor {
	return &Decryptor{guard: newOpGuard()}
}

// Cancel requests cancellation of any operation currently running on this
// Decryptor and blocks until it has exited.
func (d *Decryptor) Cancel() {
	d.guard.cancel()
}

// Activate clears a cancellation latched by a prior Cancel() call, re-arming
// the Decryptor for a subsequent Decrypt/Verify call. Per spec §4.8/§4.7, a
// cancellation stays latched after the cancelled operation exits: every
// Decrypt call fails immediately with DecryptionCancelled until Activate
// has been called. Activate fails (returns false) while an operation is
// currently active; it is otherwise idempotent.
func (d *Decryptor) Activate() bool {
	return d.guard.activate()
}

// Decrypt reads an AES Crypt stream (any of versions 0-3) from source and
// writes the recovered plaintext to destination, per spec §4.7's ten
// phases.
func (d *Decryptor) Decrypt(password []byte, source Source, destination Sink, opts DecryptOptions) error {
	return d.run(password, source, destination, opts)
}

// Verify decrypts source exactly as Decrypt would, but discards the
// recovered plaintext. A supplemental convenience for validating a
// stream's integrity without persisting output (SPEC_FULL.md §6).
func (d *Decryptor) Verify(password []byte, source Source, opts DecryptOptions) error {
	return d.run(password, source, io.Discard, opts)
}

func (d *Decryptor) run(password []byte, source Source, destination Sink, opts DecryptOptions) error {
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

	started, blocked := d.guard.begin()
	if blocked {
		return ErrDecryptionCancelled
	}
	if !started {
		return ErrAlreadyActive
	}
	defer d.guard.finish()

	log := opts.Logger
	log.Infof("decrypt: starting, instance=%s", opts.InstanceLabel)

	header, err := readHeader(source)
	if err != nil {
		log.Errorf("decrypt: failed reading header: %v", err)
		return err
	}
	log.Debugf("decrypt: stream version %s, iterations=%d", header.version, header.iterations)

	publicIV := make([]byte, ivSize)
	if _, err := io.ReadFull(source, publicIV); err != nil {
		return NewStreamError("header", "short public IV")
	}
	defer zero(publicIV)

	var derivedKey []byte
	if header.version >= StreamVersion3 {
		log.Debugf("decrypt: deriving key via PBKDF2")
		derivedKey, err = PBKDF2KDF(password, publicIV, header.iterations)
	} else {
		log.Debugf("decrypt: deriving key via legacy KDF")
		derivedKey, err = LegacyKDF(password, publicIV)
	}
	if err != nil {
		return err
	}
	defer zero(derivedKey)

	var sessionIV, sessionKey []byte
	if header.version.hasEnvelope() {
		log.Debugf("decrypt: verifying session envelope")
		sessionIV, sessionKey, err = readEnvelope(source, derivedKey, publicIV, header.version)
		if err != nil {
			log.Errorf("decrypt: envelope check failed: %v", err)
			return err
		}
	} else {
		sessionIV = append([]byte(nil), publicIV...)
		sessionKey = append([]byte(nil), derivedKey...)
	}
	defer zeroAll(sessionIV, sessionKey)

	payloadCipher, err := NewAES(sessionKey)
	if err != nil {
		return err
	}
	defer payloadCipher.Clear()

	log.Debugf("decrypt: streaming payload")
	_, err = cbcDecrypt(source, destination, payloadCipher, sessionIV, sessionKey, header.version, header.reserved, d.guard, opts.Progress, opts.InstanceLabel, opts.ProgressInterval)
	if err != nil {
		if err == ErrCancelled {
			log.Warnf("decrypt: cancelled")
			return ErrDecryptionCancelled
		}
		log.Errorf("decrypt: payload check failed: %v", err)
		return err
	}

	log.Infof("decrypt: completed")
	return nil
}
