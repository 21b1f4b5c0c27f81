package grib2

import (
	"fmt"
	"math"
)

// expandRunLength decodes a template 7.200 payload into n level indices.
func expandRunLength(data []byte, t RunLengthPacking, n int) ([]uint8, error) {
	bits := t.BitsPerValue()
	if bits == 0 || bits > maxFieldBits {
		return nil, sectionErr(5, ErrPrecondition, "run length packing: %d bits per token", bits)
	}
	mv := t.MaxLevel()
	if mv >= int(Missing8) {
		return nil, sectionErr(5, ErrPrecondition, "run length packing: max level %d does not fit 8-bit pixels", mv)
	}
	tokens, err := unpack(data, bits)
	if err != nil {
		return nil, err
	}
	return decodeRuns(tokens, bits, mv, n)
}

// decodeRuns expands a token stream. A token ≤ mv starts a new run of that level
// with length 1; a token > mv is the next base-(2^bits-1-mv) digit, least
// significant first, added to the current run's length.
func decodeRuns(tokens []uint16, bits, mv, n int) ([]uint8, error) {
	base := (1 << uint(bits)) - 1 - mv
	out := make([]uint8, 0, n)

	var (
		level  uint8
		length int64
		weight int64
		open   bool
	)
	flush := func() error {
		if int64(len(out))+length > int64(n) {
			return fmt.Errorf("%w: run length expands past %d points", ErrDecodeMismatch, n)
		}
		for k := int64(0); k < length; k++ {
			out = append(out, level)
		}
		open = false
		return nil
	}

	for i, tok := range tokens {
		if int(tok) > mv {
			if !open {
				return nil, fmt.Errorf("%w: run length token %d at %d continues no run", ErrDecodeMismatch, tok, i)
			}
			length += weight * int64(int(tok)-mv-1)
			if length > int64(n) {
				return nil, fmt.Errorf("%w: run length expands past %d points", ErrDecodeMismatch, n)
			}
			// weight saturates once a single digit would overflow n.
			if weight <= int64(n) {
				weight *= int64(base)
			}
			continue
		}
		if open {
			if err := flush(); err != nil {
				return nil, err
			}
		}
		if len(out) == n {
			// Bit padding at the end of the payload unpacks as zero tokens.
			if !allZero(tokens[i:]) {
				return nil, fmt.Errorf("%w: run length tokens after %d points", ErrDecodeMismatch, n)
			}
			break
		}
		level, length, weight, open = uint8(tok), 1, 1, true
	}
	if open {
		if err := flush(); err != nil {
			return nil, err
		}
	}
	if len(out) == 0 && n > 0 {
		return nil, fmt.Errorf("%w: empty run length stream", ErrDecodeMismatch)
	}
	if len(out) != n {
		return nil, fmt.Errorf("%w: run length expanded to %d points, want %d", ErrDecodeMismatch, len(out), n)
	}
	return out, nil
}

func allZero(tokens []uint16) bool {
	for _, t := range tokens {
		if t != 0 {
			return false
		}
	}
	return true
}

// levelValues maps level indices to physical values: levels[lv-1] / 10^factor.
// Level 0 and the missing sentinel are NaN, as is a level past the table.
func levelValues(pixels []uint8, levels []uint16, factor int) []float64 {
	scale := math.Pow(10, float64(factor))
	out := make([]float64, len(pixels))
	for i, lv := range pixels {
		if lv == 0 || lv == Missing8 || int(lv) > len(levels) {
			out[i] = math.NaN()
			continue
		}
		out[i] = float64(levels[lv-1]) / scale
	}
	return out
}
