package grib2

import (
	"fmt"
	"math"
)

// unpackComplex decodes a template 7.3 payload (complex packing with second-order
// spatial differencing, 2-octet extra descriptors) into n raw integers.
func unpackComplex(data []byte, t ComplexPacking, n int) ([]uint16, error) {
	if order := t.SpatialDifferencingOrder(); order != 2 {
		return nil, sectionErr(5, ErrPrecondition, "complex packing: spatial differencing order %d", order)
	}
	const m = 2
	if octets := t.DescriptorOctets(); octets != m {
		return nil, sectionErr(5, ErrPrecondition, "complex packing: %d-octet extra descriptors", octets)
	}
	nBits, wBits, lBits := t.BitsPerValue(), t.GroupWidthBits(), t.GroupLengthBits()
	for _, b := range []int{nBits, wBits, lBits} {
		if b > maxFieldBits {
			return nil, sectionErr(5, ErrPrecondition, "complex packing: %d-bit field", b)
		}
	}
	ng := t.Groups()
	if ng < 1 || ng > maxNG {
		return nil, sectionErr(5, ErrMalformed, "complex packing: ng=%d out of valid range [1, %d]", ng, maxNG)
	}
	// The seeds overwrite h[0] and h[1].
	if n < 2 {
		return nil, fmt.Errorf("%w: complex packing needs at least 2 points, have %d", ErrDecodeMismatch, n)
	}

	// --- Step 1: extra descriptors (seeds + minimum) ---
	if len(data) < 3*m {
		return nil, fmt.Errorf("%w: complex packing payload too short for extra descriptors (%d < %d)",
			ErrDecodeMismatch, len(data), 3*m)
	}
	h1 := u16(data[0:2])
	h2 := u16(data[2:4])
	hmin := int64(i16(data[4:6]))

	br := newBitReader(data[3*m:])
	if need := int64(ng) * int64(nBits+wBits+lBits); need > int64(br.remaining()) {
		return nil, fmt.Errorf("%w: %d groups need %d bits of descriptors, payload has %d",
			ErrDecodeMismatch, ng, need, br.remaining())
	}

	// --- Step 2: group references, widths, lengths; each array ends on a byte boundary ---
	refs := make([]int64, ng)
	for i := range refs {
		v, err := br.read(nBits)
		if err != nil {
			return nil, fmt.Errorf("complex packing: reading ref[%d]: %w", i, err)
		}
		refs[i] = int64(v)
	}
	br.align()

	widths := make([]int, ng)
	for i := range widths {
		v, err := br.read(wBits)
		if err != nil {
			return nil, fmt.Errorf("complex packing: reading width[%d]: %w", i, err)
		}
		widths[i] = t.GroupWidthReference() + int(v)
	}
	br.align()

	lengths := make([]int, ng)
	total := 0
	for i := range lengths {
		v, err := br.read(lBits) // the last group's bits are consumed but unused
		if err != nil {
			return nil, fmt.Errorf("complex packing: reading length[%d]: %w", i, err)
		}
		if i == ng-1 {
			lengths[i] = t.LastGroupLength()
		} else {
			lengths[i] = t.GroupLengthReference() + t.GroupLengthIncrement()*int(v)
		}
		// Stop before the sum can exceed the declared count.
		if lengths[i] > n-total {
			return nil, fmt.Errorf("%w: complex packing groups exceed %d points", ErrDecodeMismatch, n)
		}
		total += lengths[i]
	}
	br.align()
	if total != n {
		return nil, fmt.Errorf("%w: complex packing groups hold %d points, want %d", ErrDecodeMismatch, total, n)
	}

	// --- Step 3: group values, contiguous; width 0 groups contribute zeros ---
	h := make([]int64, 0, n)
	for g := range ng {
		w, l := widths[g], lengths[g]
		base := refs[g] + hmin
		for k := 0; k < l; k++ {
			v, err := br.read(w)
			if err != nil {
				return nil, fmt.Errorf("complex packing: reading group %d value %d: %w", g, k, err)
			}
			h = append(h, int64(v)+base)
		}
	}
	h[0], h[1] = int64(h1), int64(h2)

	// --- Step 4: undo spatial differencing, range check to the 16-bit pixel ---
	g := integrate2(h)
	out := make([]uint16, n)
	for i, x := range g {
		if x < 0 || x >= int64(Missing16) {
			return nil, fmt.Errorf("%w: complex packing value %d at %d outside 16-bit range", ErrDecodeMismatch, x, i)
		}
		out[i] = uint16(x)
	}
	return out, nil
}

// integrate2 reverses second-order spatial differencing:
// g[0]=h[0], g[1]=h[1], g[n] = h[n] + 2·g[n-1] - g[n-2].
func integrate2(h []int64) []int64 {
	g := make([]int64, len(h))
	copy(g, h)
	for i := 2; i < len(g); i++ {
		g[i] = h[i] + 2*g[i-1] - g[i-2]
		// Saturate so a hostile stream cannot wrap back into range.
		if g[i] > math.MaxInt32 {
			g[i] = math.MaxInt32
		} else if g[i] < math.MinInt32 {
			g[i] = math.MinInt32
		}
	}
	return g
}
