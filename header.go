package aescrypt

import (
	"encoding/binary"
	"io"
)

// writeHeader writes magic, version, reserved octet, the extension list,
// and (version >= 3) the iterations field, per spec §4.5's encrypt
// layout. Only version 3 is ever written (spec §1 Non-goal: no writing of
// versions 0-2).
func writeHeader(w Sink, extensions []Extension, iterations uint32) error {
	buf := make([]byte, 0, 5)
	buf = append(buf, magicBytes[:]...)
	buf = append(buf, byte(latestVersion))
	buf = append(buf, 0x00) // reserved octet, zero on write
	if _, err := w.Write(buf); err != nil {
		return NewIOError("write", err)
	}

	for _, ext := range extensions {
		if err := writeExtension(w, ext); err != nil {
			return err
		}
	}
	if err := writeExtension(w, Extension{}); err != nil { // length-0 terminator
		return err
	}

	var itersBuf [4]byte
	binary.BigEndian.PutUint32(itersBuf[:], iterations)
	if _, err := w.Write(itersBuf[:]); err != nil {
		return NewIOError("write", err)
	}
	return nil
}

// writeExtension writes a single (length, identifier, 0x00, value) TLV. An
// Extension with a nil Identifier and nil Value writes the length-0
// terminator.
func writeExtension(w Sink, ext Extension) error {
	if ext.Identifier == nil && ext.Value == nil {
		var zeroLen [2]byte
		_, err := w.Write(zeroLen[:])
		if err != nil {
			return NewIOError("write", err)
		}
		return nil
	}
	if err := ValidateExtension(ext.Identifier, ext.Value); err != nil {
		return err
	}

	length := len(ext.Identifier) + 1 + len(ext.Value)
	var lenBuf [2]byte
	binary.BigEndian.PutUint16(lenBuf[:], uint16(length))

	body := make([]byte, 0, length)
	body = append(body, ext.Identifier...)
	body = append(body, 0x00)
	body = append(body, ext.Value...)

	if _, err := w.Write(lenBuf[:]); err != nil {
		return NewIOError("write", err)
	}
	if _, err := w.Write(body); err != nil {
		return NewIOError("write", err)
	}
	return nil
}

// parsedHeader holds everything read out of the fixed-layout and
// variable-length parts of the header, before the public IV.
type parsedHeader struct {
	version    StreamVersion
	reserved   byte
	iterations uint32
}

// readHeader reads magic, version, reserved octet, the extension list
// (version >= 1; a version 0 header has none), and (version >= 3) the
// iterations field.
func readHeader(r Source) (parsedHeader, error) {
	var ph parsedHeader

	var fixed [5]byte
	if _, err := io.ReadFull(r, fixed[:]); err != nil {
		return ph, NewStreamError("header", "short or missing header")
	}
	if fixed[0] != magicBytes[0] || fixed[1] != magicBytes[1] || fixed[2] != magicBytes[2] {
		return ph, NewStreamError("header", "bad magic")
	}
	ph.version = StreamVersion(fixed[3])
	ph.reserved = fixed[4]
	if ph.version > latestVersion {
		return ph, &StreamError{Phase: "header", Message: "unsupported stream version", Err: ErrUnsupportedVersion}
	}

	if ph.version >= StreamVersion1 {
		if err := readExtensions(r); err != nil {
			return ph, err
		}
	}

	if ph.version >= StreamVersion3 {
		var itersBuf [4]byte
		if _, err := io.ReadFull(r, itersBuf[:]); err != nil {
			return ph, NewStreamError("iterations", "short read")
		}
		ph.iterations = binary.BigEndian.Uint32(itersBuf[:])
		if err := ValidateIterations(ph.iterations); err != nil {
			return ph, err
		}
	}

	return ph, nil
}

// readExtensions consumes the extension list, discarding each blob's body
// (the codec never interprets extension contents), stopping at the
// length-0 terminator.
func readExtensions(r Source) error {
	for {
		var lenBuf [2]byte
		if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
			return NewStreamError("extensions", "short read")
		}
		length := binary.BigEndian.Uint16(lenBuf[:])
		if length == 0 {
			return nil
		}
		if _, err := io.CopyN(io.Discard, r, int64(length)); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return NewStreamError("extensions", "truncated extension body")
			}
			return NewIOError("read", err)
		}
	}
}
