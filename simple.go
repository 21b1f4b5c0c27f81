package grib2

import "fmt"

// unpackSimple returns the n raw integers of a template 7.0 payload.
// Values are n consecutive bits-wide unsigned integers packed MSB-first.
func unpackSimple(data []byte, t SimplePacking, n int) ([]uint16, error) {
	bits := t.BitsPerValue()
	if bits == 0 {
		// Constant field: every value is R / 10^D.
		return make([]uint16, n), nil
	}
	if bits > maxFieldBits {
		return nil, sectionErr(5, ErrPrecondition, "simple packing: %d bits per value", bits)
	}
	raw, err := unpackN(data, bits, n)
	if err != nil {
		return nil, fmt.Errorf("simple packing: %w", err)
	}
	return raw, nil
}
