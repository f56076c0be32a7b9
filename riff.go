package sf2

import (
	"encoding/binary"
	"fmt"
	"io"
)

// riffChunk is an 8-byte RIFF chunk header: a 4-character ASCII id followed
// by a little-endian uint32 size. SF2 nests chunks inside LIST chunks whose
// data begins with a further 4-character form type (sfbk, INFO, sdta, pdta).
type riffChunk struct {
	id   [4]byte
	size uint32
}

// readChunk reads a chunk header from r. It never reads the chunk body;
// callers either consume exactly `size` bytes or skip them.
func readChunk(r io.Reader) (riffChunk, error) {
	var ck riffChunk
	if _, err := io.ReadFull(r, ck.id[:]); err != nil {
		return ck, fmt.Errorf("read chunk id: %w", errIO(err))
	}
	if err := binary.Read(r, binary.LittleEndian, &ck.size); err != nil {
		return ck, fmt.Errorf("read chunk size: %w", errIO(err))
	}
	return ck, nil
}

// expectChunk reads a chunk header and fails unless its id matches want.
// Per spec.md §4.2, a structural-boundary id mismatch is always fatal.
func expectChunk(r io.Reader, want string) (riffChunk, error) {
	ck, err := readChunk(r)
	if err != nil {
		return ck, err
	}
	if string(ck.id[:]) != want {
		return ck, fmt.Errorf("%w: expected chunk %q, got %q", ErrFormat, want, ck.id[:])
	}
	return ck, nil
}

// expectTag reads len(tag) bytes and checks they match tag exactly, used for
// the 4-byte form types nested inside LIST chunks ("sfbk", "INFO", ...).
func expectTag(r io.Reader, tag string) error {
	buf := make([]byte, len(tag))
	if _, err := io.ReadFull(r, buf); err != nil {
		return fmt.Errorf("read tag %q: %w", tag, errIO(err))
	}
	if string(buf) != tag {
		return fmt.Errorf("%w: expected %q, got %q", ErrFormat, tag, buf)
	}
	return nil
}

// readU16LE, readU32LE read fixed-width little-endian integers.
func readU16LE(r io.Reader) (uint16, error) {
	var v uint16
	err := binary.Read(r, binary.LittleEndian, &v)
	if err != nil {
		err = errIO(err)
	}
	return v, err
}

func readU32LE(r io.Reader) (uint32, error) {
	var v uint32
	err := binary.Read(r, binary.LittleEndian, &v)
	if err != nil {
		err = errIO(err)
	}
	return v, err
}

func readI16LE(r io.Reader) (int16, error) {
	var v int16
	err := binary.Read(r, binary.LittleEndian, &v)
	if err != nil {
		err = errIO(err)
	}
	return v, err
}

// readRangeBytes reads the two independent bytes (lo, hi) that make up a
// KeyRange/VelRange generator amount - not a little-endian 16-bit integer.
func readRangeBytes(r io.Reader) (uint8, uint8, error) {
	var buf [2]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, 0, fmt.Errorf("read range: %w", errIO(err))
	}
	return buf[0], buf[1], nil
}

// readName20 reads a fixed 20-byte zero-padded ASCII name field (PHDR, IHDR,
// SHDR all use this layout) and trims trailing NULs.
func readName20(r io.Reader) (string, error) {
	var buf [20]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return "", fmt.Errorf("read name: %w", errIO(err))
	}
	n := len(buf)
	for n > 0 && buf[n-1] == 0 {
		n--
	}
	return string(buf[:n]), nil
}

// skipBytes advances r by n bytes via a seeker when possible, falling back to
// a bounded discard copy. On the discard path a RIFF chunk size that overruns
// the data is an ErrIO error, never a panic; on the seek path an overrun is
// not detected here, and the next read fails instead.
func skipBytes(r io.Reader, n int64) error {
	if n == 0 {
		return nil
	}
	if s, ok := r.(io.Seeker); ok {
		if _, err := s.Seek(n, io.SeekCurrent); err != nil {
			return fmt.Errorf("skip: %w", errIO(err))
		}
		return nil
	}
	if _, err := io.CopyN(io.Discard, r, n); err != nil {
		return fmt.Errorf("skip: %w", errIO(err))
	}
	return nil
}
