package grib2

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBitReaderReadZeroBits verifies that reading 0 bits returns 0 without advancing position.
func TestBitReaderReadZeroBits(t *testing.T) {
	r := newBitReader([]byte{0xFF})
	v, err := r.read(0)
	require.NoError(t, err)
	assert.Zero(t, v)
	assert.Zero(t, r.pos)
}

// TestBitReaderReadMSBFirst verifies that bits are consumed MSB-first within each byte.
func TestBitReaderReadMSBFirst(t *testing.T) {
	r := newBitReader([]byte{0xAB}) // 1010 1011
	want := []uint16{1, 0, 1, 0, 1, 0, 1, 1}
	for i, w := range want {
		v, err := r.read(1)
		require.NoError(t, err, "step %d", i)
		assert.Equal(t, w, v, "step %d", i)
	}
}

// TestBitReaderReadCrossesBytes verifies reading spans two bytes correctly.
func TestBitReaderReadCrossesBytes(t *testing.T) {
	// 0000 0001 | 1000 0000: the first 10 bits are 0000000110 = 6
	r := newBitReader([]byte{0x01, 0x80})
	v, err := r.read(10)
	require.NoError(t, err)
	assert.Equal(t, uint16(6), v)

	// 15 bits at an odd offset near the end use the zero-padded window.
	r = newBitReader([]byte{0xFF, 0xFF, 0xFF})
	_, err = r.read(3)
	require.NoError(t, err)
	v, err = r.read(15)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x7FFF), v)
}

func TestBitReaderOverflowReturnsError(t *testing.T) {
	r := newBitReader([]byte{0xFF})
	_, err := r.read(9)
	assert.ErrorIs(t, err, ErrDecodeMismatch)

	_, err = newBitReader(nil).read(1)
	assert.ErrorIs(t, err, ErrDecodeMismatch)
}

func TestBitReaderRejectsWideFields(t *testing.T) {
	_, err := newBitReader(make([]byte, 8)).read(16)
	assert.ErrorIs(t, err, ErrPrecondition)
	_, err = newBitReader(make([]byte, 8)).read(-1)
	assert.ErrorIs(t, err, ErrPrecondition)
}

func TestBitReaderAlign(t *testing.T) {
	r := newBitReader([]byte{0xF0, 0x0F})
	r.align()
	assert.Equal(t, 0, r.pos, "align on a boundary is a no-op")

	_, err := r.read(3)
	require.NoError(t, err)
	r.align()
	assert.Equal(t, 8, r.pos)
	assert.Equal(t, 8, r.remaining())

	v, err := r.read(8)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0F), v)
}

// For every width and buffer length, unpack yields ⌊8L/w⌋ values below 2^w.
func TestUnpackCountAndRange(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for w := 1; w <= maxFieldBits; w++ {
		for _, l := range []int{0, 1, 2, 3, 7, 16, 33, 100} {
			buf := make([]byte, l)
			for i := range buf {
				buf[i] = byte(rng.UintN(256))
			}
			vals, err := unpack(buf, w)
			require.NoError(t, err, "w=%d L=%d", w, l)
			require.Len(t, vals, 8*l/w, "w=%d L=%d", w, l)
			for _, v := range vals {
				require.Less(t, uint32(v), uint32(1)<<w, "w=%d L=%d", w, l)
			}
		}
	}
}

func TestUnpackRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	for w := 1; w <= maxFieldBits; w++ {
		want := make([]uint16, 37)
		for i := range want {
			want[i] = uint16(rng.UintN(1 << w))
		}
		got, err := unpackN(packBits(want, w), w, len(want))
		require.NoError(t, err)
		assert.Equal(t, want, got, "width %d", w)
	}
}

func TestUnpackRejectsWidths(t *testing.T) {
	for _, w := range []int{0, -3, 16, 32} {
		_, err := unpack([]byte{1, 2, 3}, w)
		assert.ErrorIs(t, err, ErrPrecondition, "width %d", w)
	}
}

func TestUnpackNShortBuffer(t *testing.T) {
	_, err := unpackN([]byte{0xFF}, 3, 3) // 9 bits from 8
	assert.ErrorIs(t, err, ErrDecodeMismatch)
	_, err = unpackN([]byte{0xFF}, 3, -1)
	assert.ErrorIs(t, err, ErrDecodeMismatch)
}
