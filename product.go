package grib2

import (
	"math"
	"time"
)

// ProductTemplate is a resolved product definition template (section 4).
// The set of implementations is closed: InstantProduct and StatisticalProduct.
type ProductTemplate interface {
	// Number is the template number (code table 4.0).
	Number() uint16
	ParameterCategory() uint8
	ParameterNumber() uint8
	GeneratingProcess() uint8
	FirstSurface() Surface
	SecondSurface() Surface
	// ValidTime is the time the field represents, given the reference time.
	ValidTime(reference time.Time) (time.Time, error)

	isProductTemplate()
}

// Surface is a fixed surface: type (code table 4.5) with a scaled value.
type Surface struct {
	Type        uint8 `json:"type"`
	ScaleFactor int8  `json:"scale_factor"`
	ScaledValue int32 `json:"scaled_value"`

	// MissingValue is set when the scale factor or the scaled value octets are
	// all ones.
	MissingValue bool `json:"missing_value,omitempty"`
}

// Value returns ScaledValue / 10^ScaleFactor, or NaN when the value is missing.
func (s Surface) Value() float64 {
	if s.MissingValue {
		return math.NaN()
	}
	return float64(s.ScaledValue) / math.Pow(10, float64(s.ScaleFactor))
}

// productLayout holds the octets shared by every implemented template
// (4.0 octets 10-34).
type productLayout struct {
	buf    []byte
	number uint16
}

func (p productLayout) Number() uint16 { return p.number }
func (p productLayout) ParameterCategory() uint8 { return u8(p.buf[9:10]) }
func (p productLayout) ParameterNumber() uint8 { return u8(p.buf[10:11]) }
func (p productLayout) GeneratingProcess() uint8 { return u8(p.buf[11:12]) }
func (p productLayout) BackgroundProcess() uint8 { return u8(p.buf[12:13]) }
func (p productLayout) ForecastProcess() uint8 { return u8(p.buf[13:14]) }
func (p productLayout) CutOffHours() uint16 { return u16(p.buf[14:16]) }
func (p productLayout) CutOffMinutes() uint8 { return u8(p.buf[16:17]) }
func (p productLayout) isProductTemplate() {}

func (p productLayout) surface(off int) Surface {
	return Surface{
		Type:         u8(p.buf[off : off+1]),
		ScaleFactor:  i8(p.buf[off+1 : off+2]),
		ScaledValue:  i32(p.buf[off+2 : off+6]),
		MissingValue: u8(p.buf[off+1:off+2]) == math.MaxUint8 || u32(p.buf[off+2:off+6]) == math.MaxUint32,
	}
}

func (p productLayout) FirstSurface() Surface { return p.surface(22) }
func (p productLayout) SecondSurface() Surface { return p.surface(28) }

// ForecastOffset is the forecast time in units of the indicated time range.
func (p productLayout) ForecastOffset() (time.Duration, error) {
	d, err := timeSpan(p.buf[17:22])
	if err != nil {
		return 0, &SectionError{Section: 4, Err: err}
	}
	return d, nil
}

// InstantProduct covers templates 4.0, 4.1 and 4.50000: a field at a point in time.
type InstantProduct struct{ productLayout }

// ValidTime is the reference time plus the forecast offset.
func (p InstantProduct) ValidTime(reference time.Time) (time.Time, error) {
	d, err := p.ForecastOffset()
	if err != nil {
		return time.Time{}, err
	}
	return reference.Add(d), nil
}

// StatisticalProduct covers the templates that carry a statistically processed
// interval (4.8, 4.9, 4.11, 4.50008, 4.50009, 4.50011, 4.50012). Only the offset
// of the end-of-interval block differs between them.
type StatisticalProduct struct {
	productLayout
	end int
}

// EndTime is the end of the overall time interval.
func (p StatisticalProduct) EndTime() (time.Time, error) {
	t, err := dateTime(p.buf[p.end : p.end+7])
	if err != nil {
		return time.Time{}, &SectionError{Section: 4, Err: err}
	}
	return t, nil
}

// TimeRangeCount is the number of time range specifications.
func (p StatisticalProduct) TimeRangeCount() uint8 { return u8(p.buf[p.end+7 : p.end+8]) }

// StatisticalProcess is code table 4.10.
func (p StatisticalProduct) StatisticalProcess() uint8 { return u8(p.buf[p.end+12 : p.end+13]) }

// StatisticalSpan is the length of the processed time range.
func (p StatisticalProduct) StatisticalSpan() (time.Duration, error) {
	d, err := timeSpan(p.buf[p.end+14 : p.end+19])
	if err != nil {
		return 0, &SectionError{Section: 4, Err: err}
	}
	return d, nil
}

// ValidTime is the explicit end of the overall interval; the reference time is
// not used.
func (p StatisticalProduct) ValidTime(time.Time) (time.Time, error) {
	return p.EndTime()
}

const instantProductLength = 34

// statisticalEnd maps each statistical template to its end-of-interval offset.
var statisticalEnd = map[uint16]int{
	8:     34,
	9:     47,
	11:    37,
	50008: 34,
	50009: 34,
	50011: 34,
	50012: 34,
}

// Template resolves the product definition template.
func (s Section4) Template() (ProductTemplate, error) {
	n := s.TemplateNumber()
	layout := productLayout{buf: s.buf, number: n}
	switch n {
	case 0, 1, 50000:
		if len(s.buf) < instantProductLength {
			return nil, sectionErr(4, ErrMalformed, "template 4.%d: %d bytes, need %d", n, len(s.buf), instantProductLength)
		}
		return InstantProduct{layout}, nil
	}
	end, ok := statisticalEnd[n]
	if !ok {
		return nil, sectionErr(4, ErrUnsupportedTemplate, "product definition template 4.%d", n)
	}
	if need := end + 19; len(s.buf) < need {
		return nil, sectionErr(4, ErrMalformed, "template 4.%d: %d bytes, need %d", n, len(s.buf), need)
	}
	return StatisticalProduct{productLayout: layout, end: end}, nil
}
