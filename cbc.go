package aescrypt

import "io"

// ringSize is the trailer-lookahead buffer: four 16-octet slots, enough to
// hold the prior ciphertext block, the block under decryption, and two
// blocks of lookahead (spec §4.4, §9).
const ringSize = 4 * blockSize

// reportProgress invokes progress, converting a panic from the callback
// into ErrInternal (spec §6, §7: a panicking Progress callback must abort
// the operation as InternalError rather than crash through the caller).
func reportProgress(progress ProgressFunc, label string, n uint64) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = ErrInternal
		}
	}()
	progress(label, n)
	return nil
}

// cbcEncrypt streams plaintext from r through AES-CBC encryption under
// sessionKey/sessionIV, writing ciphertext blocks to w and feeding mac,
// applying PKCS#7 padding to the final block. Returns the number of
// plaintext octets consumed.
func cbcEncrypt(r Source, w Sink, cipher *AES, sessionIV []byte, mac *HMAC, guard *opGuard, progress ProgressFunc, label string, progressInterval uint64) (uint64, error) {
	var prior [blockSize]byte
	copy(prior[:], sessionIV)
	defer zero(prior[:])

	var plain, cipherBlk [blockSize]byte
	defer zero(plain[:])

	var consumed, sinceProgress uint64
	if progress != nil && progressInterval > 0 {
		if err := reportProgress(progress, label, 0); err != nil {
			return consumed, err
		}
	}

	for {
		n, err := io.ReadFull(r, plain[:])
		if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
			return consumed, NewIOError("read", err)
		}
		consumed += uint64(n)

		last := !(n == blockSize && err == nil)
		if last {
			pad := byte(blockSize - n)
			for i := n; i < blockSize; i++ {
				plain[i] = pad
			}
		}

		xorBytes(cipherBlk[:], plain[:], prior[:])
		cipher.EncryptBlock(cipherBlk[:], cipherBlk[:])
		if _, err := w.Write(cipherBlk[:]); err != nil {
			return consumed, NewIOError("write", err)
		}
		mac.Input(cipherBlk[:])
		copy(prior[:], cipherBlk[:])

		if guard.checkpoint() {
			return consumed, ErrCancelled
		}

		sinceProgress += uint64(n)
		if progress != nil && progressInterval > 0 && sinceProgress >= progressInterval {
			if err := reportProgress(progress, label, consumed); err != nil {
				return consumed, err
			}
			sinceProgress = 0
		}

		if last {
			break
		}
	}

	mac.Finalize()
	if _, err := w.Write(mac.Result()); err != nil {
		return consumed, NewIOError("write", err)
	}
	if progress != nil && progressInterval > 0 {
		if err := reportProgress(progress, label, consumed); err != nil {
			return consumed, err
		}
	}
	return consumed, nil
}

// cbcDecrypt implements C4's decrypt side: the 64-octet ring buffer with
// tail/currentBlock/head cursors and one-block emission lookahead, ported
// from the reference decryptor's main loop. It decrypts payload blocks,
// verifies the payload HMAC, classifies the trailer residue by stream
// version, and emits the final (possibly short) plaintext block only
// after the HMAC check succeeds.
func cbcDecrypt(r Source, w Sink, cipher *AES, sessionIV, sessionKey []byte, version StreamVersion, headerReserved byte, guard *opGuard, progress ProgressFunc, label string, progressInterval uint64) (uint64, error) {
	var ring [ringSize]byte
	defer zero(ring[:])
	copy(ring[0:blockSize], sessionIV)

	tail := 0
	currentBlock := blockSize
	head := blockSize

	mac := NewHMAC(hmacSHA256, sessionKey)

	var consumed, sinceProgress uint64
	if progress != nil && progressInterval > 0 {
		if err := reportProgress(progress, label, 0); err != nil {
			return consumed, err
		}
	}

	n, err := io.ReadFull(r, ring[head:head+3*blockSize])
	eof := false
	switch err {
	case nil:
	case io.ErrUnexpectedEOF, io.EOF:
		eof = true
	default:
		return consumed, NewIOError("read", err)
	}
	consumed += uint64(n)
	head = (head + n) % ringSize

	var plaintext [blockSize]byte
	defer zero(plaintext[:])
	plaintextPending := false

	for !eof {
		if plaintextPending {
			if _, err := w.Write(plaintext[:]); err != nil {
				return consumed, NewIOError("write", err)
			}
		}

		mac.Input(ring[currentBlock : currentBlock+blockSize])
		cipher.DecryptBlock(plaintext[:], ring[currentBlock:currentBlock+blockSize])
		xorBytes(plaintext[:], plaintext[:], ring[tail:tail+blockSize])
		plaintextPending = true

		if guard.checkpoint() {
			return consumed, ErrCancelled
		}

		sinceProgress += uint64(n)
		if progress != nil && progressInterval > 0 && sinceProgress >= progressInterval {
			if err := reportProgress(progress, label, consumed); err != nil {
				return consumed, err
			}
			sinceProgress = 0
		}

		tail = (tail + blockSize) % ringSize
		currentBlock = (currentBlock + blockSize) % ringSize

		n, err = io.ReadFull(r, ring[head:head+blockSize])
		switch err {
		case nil:
		case io.ErrUnexpectedEOF, io.EOF:
			eof = true
		default:
			return consumed, NewIOError("read", err)
		}
		consumed += uint64(n)
		head = (head + n) % ringSize
	}

	tail = (tail + blockSize) % ringSize

	var bufferOctets int
	if head >= tail {
		bufferOctets = head - tail
	} else {
		bufferOctets = (ringSize - tail) + head
	}

	wantTrailerSize := version.trailerSize()
	if bufferOctets != wantTrailerSize {
		return consumed, NewStreamError("trailer", "unexpected trailer size")
	}

	// reservedModulo starts from the header's reserved octet, which for
	// version 0 carries the PKCS#7-like modulo (spec §3); every other
	// version either overwrites it below (v1/v2, from the trailer) or
	// (v3+) derives it from the final plaintext block.
	reservedModulo := headerReserved
	var expectedHMAC [hmacSize]byte
	if version == StreamVersion0 || version >= StreamVersion3 {
		copy(expectedHMAC[0:blockSize], ring[tail:tail+blockSize])
		tail = (tail + blockSize) % ringSize
		copy(expectedHMAC[blockSize:2*blockSize], ring[tail:tail+blockSize])
	} else {
		reservedModulo = ring[tail]
		copy(expectedHMAC[0:blockSize-1], ring[tail+1:tail+blockSize])
		tail = (tail + blockSize) % ringSize
		copy(expectedHMAC[blockSize-1:2*blockSize-1], ring[tail:tail+blockSize])
		tail = (tail + blockSize) % ringSize
		expectedHMAC[2*blockSize-1] = ring[tail]
	}

	mac.Finalize()
	if !equalDigests(mac.Result(), expectedHMAC[:]) {
		return consumed, &AlteredMessageError{Stage: "payload"}
	}

	if version >= StreamVersion3 {
		if !plaintextPending {
			return consumed, NewStreamError("payload", "premature end of ciphertext stream")
		}
		last := plaintext[blockSize-1]
		if last == 0 || last > blockSize {
			return consumed, NewStreamError("payload", "final block has invalid padding")
		}
		reservedModulo = byte(blockSize) - last
	}

	// Clamp every version's modulo to the version-3 interpretation (spec
	// §9 redesign flag): 0 means the buffered block is pure padding and
	// must not be emitted; 16 or above is not a valid modulo.
	switch {
	case reservedModulo == 0:
		plaintextPending = false
	case reservedModulo >= blockSize:
		return consumed, NewStreamError("trailer", "modulo octet out of range")
	}

	if plaintextPending {
		finalSize := blockSize
		if reservedModulo != 0 {
			finalSize = int(reservedModulo)
		}
		if _, err := w.Write(plaintext[:finalSize]); err != nil {
			return consumed, NewIOError("write", err)
		}
	}

	if progress != nil && progressInterval > 0 {
		if err := reportProgress(progress, label, consumed); err != nil {
			return consumed, err
		}
	}
	return consumed, nil
}
