package grib2

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func complexTemplate(t *testing.T, n uint32, p complexParams) ComplexPacking {
	t.Helper()
	dt, err := Section5{buf: complexSection5(n, 0, 0, 0, p)}.Template()
	require.NoError(t, err)
	cp, ok := dt.(ComplexPacking)
	require.True(t, ok, "template %T", dt)
	return cp
}

// descriptors encodes the seeds and the overall minimum of the extra descriptors.
func descriptors(h1, h2 uint16, hmin int) []byte {
	s := sm16(hmin)
	return []byte{byte(h1 >> 8), byte(h1), byte(h2 >> 8), byte(h2), byte(s >> 8), byte(s)}
}

// linearParams packs n points in one zero-width group: every second difference
// is zero.
func linearParams(n uint32) complexParams {
	return complexParams{
		bits: 4, groups: 1,
		widthBits: 4, lengthBits: 4, lengthIncr: 1,
		lastLength:       n,
		order:            2,
		descriptorOctets: 2,
	}
}

func TestIntegrate2LinearExtrapolation(t *testing.T) {
	for _, seeds := range [][2]int64{{10, 12}, {500, 480}, {7, 7}, {0, 1000}} {
		h := make([]int64, 50)
		h[0], h[1] = seeds[0], seeds[1]
		g := integrate2(h)
		for n := range g {
			want := seeds[1] + int64(n-1)*(seeds[1]-seeds[0])
			require.Equal(t, want, g[n], "seeds %v n=%d", seeds, n)
		}
	}
}

func TestIntegrate2Saturates(t *testing.T) {
	h := []int64{0, 1 << 20, 1 << 30, 1 << 30, 1 << 30}
	for _, v := range integrate2(h) {
		assert.LessOrEqual(t, v, int64(1<<31-1))
	}
}

func TestUnpackComplexLinear(t *testing.T) {
	cp := complexTemplate(t, 5, linearParams(5))
	// refs, widths and lengths each take one byte; the single group has width 0.
	payload := append(descriptors(10, 12, 0), 0x00, 0x00, 0x00)
	got, err := unpackComplex(payload, cp, 5)
	require.NoError(t, err)
	assert.Equal(t, []uint16{10, 12, 14, 16, 18}, got)
}

func TestUnpackComplexTwoGroups(t *testing.T) {
	// Target 100 103 105 110 108 107: second differences -1 3 -7 1 after the
	// seeds, stored relative to hmin = -7 as 6 10 0 8.
	cp := complexTemplate(t, 6, complexParams{
		bits: 4, groups: 2,
		widthBits: 3,
		lengthRef: 3, lengthIncr: 1, lastLength: 3, lengthBits: 1,
		order: 2, descriptorOctets: 2,
	})
	payload := append(descriptors(100, 103, -7),
		0x00,             // refs 0, 0
		0x70,             // widths 3, 4
		0x00,             // lengths 3+0, last group from section 5
		0x03, 0x50, 0x40, // 000 000 110 | 1010 0000 1000
	)
	got, err := unpackComplex(payload, cp, 6)
	require.NoError(t, err)
	assert.Equal(t, []uint16{100, 103, 105, 110, 108, 107}, got)
}

func TestUnpackComplexPreconditions(t *testing.T) {
	payload := append(descriptors(10, 12, 0), 0, 0, 0)

	p := linearParams(5)
	p.order = 1
	_, err := unpackComplex(payload, complexTemplate(t, 5, p), 5)
	assert.ErrorIs(t, err, ErrPrecondition, "order 1")

	p = linearParams(5)
	p.descriptorOctets = 1
	_, err = unpackComplex(payload, complexTemplate(t, 5, p), 5)
	assert.ErrorIs(t, err, ErrPrecondition, "1-octet descriptors")

	p = linearParams(5)
	p.widthBits = 16
	_, err = unpackComplex(payload, complexTemplate(t, 5, p), 5)
	assert.ErrorIs(t, err, ErrPrecondition, "16-bit widths")
}

// The group count bounds allocations and indexing.
func TestUnpackComplexGroupCount(t *testing.T) {
	payload := append(descriptors(10, 12, 0), 0, 0, 0)
	for _, ng := range []uint32{0, maxNG + 1, 0xFFFFFFFF} {
		p := linearParams(5)
		p.groups = ng
		_, err := unpackComplex(payload, complexTemplate(t, 5, p), 5)
		assert.ErrorIs(t, err, ErrMalformed, "ng=%d", ng)
	}
}

// The seeds need two points.
func TestUnpackComplexTooFewPoints(t *testing.T) {
	payload := append(descriptors(10, 12, 0), 0, 0, 0)
	for _, n := range []int{0, 1} {
		_, err := unpackComplex(payload, complexTemplate(t, uint32(n), linearParams(uint32(n))), n)
		assert.ErrorIs(t, err, ErrDecodeMismatch, "n=%d", n)
	}
}

func TestUnpackComplexMismatch(t *testing.T) {
	// Groups hold 5 points, 6 declared.
	_, err := unpackComplex(append(descriptors(10, 12, 0), 0, 0, 0), complexTemplate(t, 6, linearParams(5)), 6)
	assert.ErrorIs(t, err, ErrDecodeMismatch)

	// A group longer than the declared count.
	_, err = unpackComplex(append(descriptors(10, 12, 0), 0, 0, 0), complexTemplate(t, 5, linearParams(20_000_000)), 5)
	assert.ErrorIs(t, err, ErrDecodeMismatch)

	// Payload shorter than the extra descriptors.
	_, err = unpackComplex([]byte{0, 10, 0}, complexTemplate(t, 5, linearParams(5)), 5)
	assert.ErrorIs(t, err, ErrDecodeMismatch)

	// Group values missing from the payload.
	p := linearParams(5)
	p.widthRef = 8
	_, err = unpackComplex(append(descriptors(10, 12, 0), 0, 0, 0), complexTemplate(t, 5, p), 5)
	assert.ErrorIs(t, err, ErrDecodeMismatch)
}

// Reconstructed values must fit a 16-bit pixel below the missing sentinel.
func TestUnpackComplexOutOfRange(t *testing.T) {
	// Seeds 0 then 0xFFFE: the third point extrapolates past 0xFFFF.
	_, err := unpackComplex(append(descriptors(0, 0xFFFE, 0), 0, 0, 0), complexTemplate(t, 3, linearParams(3)), 3)
	assert.ErrorIs(t, err, ErrDecodeMismatch)

	// Seeds 10 then 0: the third point is negative.
	_, err = unpackComplex(append(descriptors(10, 0, 0), 0, 0, 0), complexTemplate(t, 3, linearParams(3)), 3)
	assert.ErrorIs(t, err, ErrDecodeMismatch)
}
