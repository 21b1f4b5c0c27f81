package grib2

import (
	"math"
	"math/bits"
)

// Missing-value sentinels written where the bitmap marks a point absent: the
// maximum of each pixel type, NaN for physical values.
const (
	Missing16 uint16 = math.MaxUint16
	Missing8  uint8  = math.MaxUint8
)

type pixel interface {
	~uint8 | ~uint16 | ~float64
}

// applyBitmap expands packed values (one per set bitmap bit) to a full
// total-point grid. Positions where the bitmap bit is 0 get missing.
//
// GRIB2 bitmaps are MSB-first: bit 7 of byte 0 is grid point 0,
// bit 6 of byte 0 is grid point 1, and so on.
func applyBitmap[T pixel](vals []T, bitmap []byte, total int, missing T) ([]T, error) {
	if int64(len(bitmap))*8 < int64(total) {
		return nil, sectionErr(6, ErrDecodeMismatch, "bitmap holds %d bits, grid has %d points", len(bitmap)*8, total)
	}
	if set := countSetBits(bitmap, total); set != len(vals) {
		return nil, sectionErr(6, ErrDecodeMismatch, "bitmap: %d set bits but %d packed values", set, len(vals))
	}

	result := make([]T, total)
	vi := 0
	for i := range result {
		if bitmapBit(bitmap, i) {
			result[i] = vals[vi]
			vi++
		} else {
			result[i] = missing
		}
	}
	return result, nil
}

// bitmapBit reports whether grid point i has data (bit set) in the MSB-first bitmap.
func bitmapBit(bitmap []byte, i int) bool {
	byteIdx := i / 8
	if byteIdx >= len(bitmap) {
		return false
	}
	return (bitmap[byteIdx]>>uint(7-(i%8)))&1 == 1
}

// countSetBits counts the set bits among the first total positions.
func countSetBits(bitmap []byte, total int) int {
	full := total / 8
	if full > len(bitmap) {
		full = len(bitmap)
	}
	n := 0
	for _, b := range bitmap[:full] {
		n += bits.OnesCount8(b)
	}
	for i := full * 8; i < total; i++ {
		if bitmapBit(bitmap, i) {
			n++
		}
	}
	return n
}
