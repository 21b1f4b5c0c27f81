package grib2

import (
	"encoding/binary"
	"fmt"
)

// maxFieldBits is the widest packed field the unpacker accepts; values are
// returned in 16-bit slots.
const maxFieldBits = 15

// bitReader reads unsigned integers of arbitrary bit width from a byte slice.
// Bits are consumed MSB-first within each byte (big-endian bit order).
type bitReader struct {
	buf []byte
	pos int // current bit position
}

func newBitReader(b []byte) *bitReader { return &bitReader{buf: b} }

// read reads n bits (0 ≤ n ≤ 15). A 4-byte window is loaded at the byte holding
// the current bit, zero-padded past the end of the buffer, then masked and shifted
// down to the n bits starting at the sub-byte offset.
func (r *bitReader) read(n int) (uint16, error) {
	if n == 0 {
		return 0, nil
	}
	if n < 0 || n > maxFieldBits {
		return 0, fmt.Errorf("%w: %d-bit field (max %d)", ErrPrecondition, n, maxFieldBits)
	}
	if r.pos+n > len(r.buf)*8 {
		return 0, fmt.Errorf("%w: read %d bits at bit %d overflows %d-byte buffer",
			ErrDecodeMismatch, n, r.pos, len(r.buf))
	}
	w := r.window(r.pos / 8)
	shift := 32 - r.pos%8 - n
	r.pos += n
	return uint16((w >> uint(shift)) & (1<<uint(n) - 1)), nil
}

// window returns the 4 bytes at off as a big-endian uint32, zero-padded.
func (r *bitReader) window(off int) uint32 {
	if off+4 <= len(r.buf) {
		return binary.BigEndian.Uint32(r.buf[off:])
	}
	var w uint32
	for i := 0; i < 4; i++ {
		w <<= 8
		if off+i < len(r.buf) {
			w |= uint32(r.buf[off+i])
		}
	}
	return w
}

// align advances pos to the next byte boundary.
func (r *bitReader) align() {
	if r.pos%8 != 0 {
		r.pos += 8 - (r.pos % 8)
	}
}

// remaining returns the number of unread bits.
func (r *bitReader) remaining() int { return len(r.buf)*8 - r.pos }

// unpack returns every bits-wide value packed from bit 0 of buf, continuing while
// at least bits bits remain; a trailing partial group is discarded.
func unpack(buf []byte, bits int) ([]uint16, error) {
	if bits <= 0 || bits > maxFieldBits {
		return nil, fmt.Errorf("%w: unpack width %d outside [1, %d]", ErrPrecondition, bits, maxFieldBits)
	}
	return unpackN(buf, bits, len(buf)*8/bits)
}

// unpackN returns exactly n bits-wide values from the front of buf.
func unpackN(buf []byte, bits, n int) ([]uint16, error) {
	if bits <= 0 || bits > maxFieldBits {
		return nil, fmt.Errorf("%w: unpack width %d outside [1, %d]", ErrPrecondition, bits, maxFieldBits)
	}
	if n < 0 || int64(n)*int64(bits) > int64(len(buf))*8 {
		return nil, fmt.Errorf("%w: %d values of %d bits need more than %d bytes",
			ErrDecodeMismatch, n, bits, len(buf))
	}
	br := newBitReader(buf)
	out := make([]uint16, n)
	for i := range out {
		v, err := br.read(bits)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
