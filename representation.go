package grib2

import (
	"encoding/json"
	"fmt"
	"math"
)

// Packing identifies the packing algorithm of a data representation template.
type Packing uint8

const (
	PackingSimple    Packing = iota + 1 // 5.0
	PackingComplex                      // 5.3, complex packing and spatial differencing
	PackingRunLength                    // 5.200, run length packing with level values
)

func (p Packing) String() string {
	switch p {
	case PackingSimple:
		return "simple"
	case PackingComplex:
		return "complex"
	case PackingRunLength:
		return "run-length"
	}
	return fmt.Sprintf("Packing(%d)", uint8(p))
}

func (p Packing) MarshalJSON() ([]byte, error) { return json.Marshal(p.String()) }

func (p *Packing) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	for _, k := range []Packing{PackingSimple, PackingComplex, PackingRunLength} {
		if k.String() == s {
			*p = k
			return nil
		}
	}
	return fmt.Errorf("grib2: unknown packing %q", s)
}

// DataTemplate is a resolved data representation template (section 5). The set
// of implementations is closed: SimplePacking, ComplexPacking, RunLengthPacking.
type DataTemplate interface {
	// Number is the template number (code table 5.0).
	Number() uint16
	Packing() Packing
	// BitsPerValue is the packed width of each value (simple packing), each group
	// reference (complex packing) or each token (run length).
	BitsPerValue() int

	isDataTemplate()
}

// SimplePacking is template 5.0. Value = (R + X·2^E) / 10^D.
type SimplePacking struct{ buf []byte }

func (t SimplePacking) Number() uint16 { return 0 }
func (t SimplePacking) Packing() Packing { return PackingSimple }
func (t SimplePacking) BitsPerValue() int { return int(u8(t.buf[19:20])) }
func (t SimplePacking) isDataTemplate() {}
func (t SimplePacking) scale() scaleParams { return scaleOf(t.buf) }

// ReferenceValue is R.
func (t SimplePacking) ReferenceValue() float32 { return f32(t.buf[11:15]) }

// BinaryScale is E.
func (t SimplePacking) BinaryScale() int { return int(i16(t.buf[15:17])) }

// DecimalScale is D.
func (t SimplePacking) DecimalScale() int { return int(i16(t.buf[17:19])) }

// TypeOfValues is code table 5.1 (0 floating point, 1 integer).
func (t SimplePacking) TypeOfValues() uint8 { return u8(t.buf[20:21]) }

// ComplexPacking is template 5.3: complex packing with spatial differencing.
// Octets 12-21 are the simple packing prefix.
type ComplexPacking struct{ SimplePacking }

func (t ComplexPacking) Number() uint16 { return 3 }
func (t ComplexPacking) Packing() Packing { return PackingComplex }

// SplittingMethod is code table 5.4.
func (t ComplexPacking) SplittingMethod() uint8 { return u8(t.buf[21:22]) }

// MissingManagement is code table 5.5.
func (t ComplexPacking) MissingManagement() uint8 { return u8(t.buf[22:23]) }

// PrimaryMissing is the primary missing value substitute.
func (t ComplexPacking) PrimaryMissing() float32 { return f32(t.buf[23:27]) }

// SecondaryMissing is the secondary missing value substitute.
func (t ComplexPacking) SecondaryMissing() float32 { return f32(t.buf[27:31]) }

// Groups is NG, the number of groups the field is split into.
func (t ComplexPacking) Groups() int { return int(u32(t.buf[31:35])) }

// GroupWidthReference is the reference for group widths.
func (t ComplexPacking) GroupWidthReference() int { return int(u8(t.buf[35:36])) }

// GroupWidthBits is the bit width of each packed group width.
func (t ComplexPacking) GroupWidthBits() int { return int(u8(t.buf[36:37])) }

// GroupLengthReference is the reference for group lengths.
func (t ComplexPacking) GroupLengthReference() int { return int(u32(t.buf[37:41])) }

// GroupLengthIncrement is the length increment for group lengths.
func (t ComplexPacking) GroupLengthIncrement() int { return int(u8(t.buf[41:42])) }

// LastGroupLength is the true length of the last group.
func (t ComplexPacking) LastGroupLength() int { return int(u32(t.buf[42:46])) }

// GroupLengthBits is the bit width of each packed scaled group length.
func (t ComplexPacking) GroupLengthBits() int { return int(u8(t.buf[46:47])) }

// SpatialDifferencingOrder is code table 5.6.
func (t ComplexPacking) SpatialDifferencingOrder() int { return int(u8(t.buf[47:48])) }

// DescriptorOctets is the width of each extra descriptor in section 7.
func (t ComplexPacking) DescriptorOctets() int { return int(u8(t.buf[48:49])) }

// RunLengthPacking is template 5.200: run length packing with level values.
type RunLengthPacking struct{ buf []byte }

func (t RunLengthPacking) Number() uint16 { return 200 }
func (t RunLengthPacking) Packing() Packing { return PackingRunLength }
func (t RunLengthPacking) BitsPerValue() int { return int(u8(t.buf[11:12])) }
func (t RunLengthPacking) isDataTemplate() {}

// MaxLevel is MV, the maximum level value used in the packing.
func (t RunLengthPacking) MaxLevel() int { return int(u16(t.buf[12:14])) }

// LevelCount is MVL, the maximum level value defined in the level table.
func (t RunLengthPacking) LevelCount() int { return int(u16(t.buf[14:16])) }

// DecimalScale is the decimal scale factor of the representative level values.
func (t RunLengthPacking) DecimalScale() int { return int(i8(t.buf[16:17])) }

// Levels returns the scaled representative values of levels 1..MVL; entry k is
// the value of level k+1.
func (t RunLengthPacking) Levels() []uint16 {
	levels := make([]uint16, t.LevelCount())
	for i := range levels {
		off := 17 + 2*i
		levels[i] = u16(t.buf[off : off+2])
	}
	return levels
}

// Minimum section 5 lengths per template.
const (
	simplePackingLength  = 21
	complexPackingLength = 49
	runLengthHeader      = 17
)

// Template resolves the data representation template.
func (s Section5) Template() (DataTemplate, error) {
	n := s.TemplateNumber()
	need := 0
	var t DataTemplate
	switch n {
	case 0:
		need, t = simplePackingLength, SimplePacking{buf: s.buf}
	case 3:
		need, t = complexPackingLength, ComplexPacking{SimplePacking{buf: s.buf}}
	case 200:
		need = runLengthHeader
		if len(s.buf) >= need {
			need += 2 * int(u16(s.buf[14:16]))
		}
		t = RunLengthPacking{buf: s.buf}
	default:
		return nil, sectionErr(5, ErrUnsupportedTemplate, "data representation template 5.%d", n)
	}
	if len(s.buf) < need {
		return nil, sectionErr(5, ErrMalformed, "template 5.%d: %d bytes, need %d", n, len(s.buf), need)
	}
	return t, nil
}

// Template resolves the data template of this payload through the section 5 it
// was framed with.
func (s Section7) Template() (DataTemplate, error) {
	if !s.drs.Present() {
		return nil, missing(5)
	}
	return s.drs.Template()
}

// scaleParams is the affine transform shared by simple and complex packing.
type scaleParams struct {
	R    float64
	E, D int
}

func scaleOf(buf []byte) scaleParams {
	return scaleParams{
		R: float64(f32(buf[11:15])),
		E: int(i16(buf[15:17])),
		D: int(i16(buf[17:19])),
	}
}

// value maps a raw packed integer to its physical value.
func (p scaleParams) value(x uint16) float64 {
	return (p.R + math.Ldexp(float64(x), p.E)) / math.Pow(10, float64(p.D))
}

// decode maps raw packed integers to physical values; the 16-bit missing
// sentinel becomes NaN.
func (p scaleParams) decode(raw []uint16) []float64 {
	scaleE := math.Ldexp(1, p.E)
	scaleD := math.Pow(10, float64(p.D))
	out := make([]float64, len(raw))
	for i, x := range raw {
		if x == Missing16 {
			out[i] = math.NaN()
			continue
		}
		out[i] = (p.R + scaleE*float64(x)) / scaleD
	}
	return out
}
