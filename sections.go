package grib2

import (
	"time"
)

// Fixed framing lengths.
const (
	indicatorLength = 16 // section 0
	endMarkerLength = 4  // section 8, "7777"
	headerLength    = 5  // length (4) + section number (1)
)

// Input sanity limits, applied before any allocation sized by a header field.
const (
	// maxNG: operational fields use a few thousand groups; cap at 4M to prevent OOM allocs.
	maxNG = 1 << 22
	// maxGridDim caps each grid dimension.
	maxGridDim = 100000
	// maxPoints caps Ni×Nj and every declared point count.
	maxPoints = 64 << 20
)

// Minimum lengths of the fixed part of each section, up to the last field read.
var minSectionLength = [8]int{
	0: indicatorLength,
	1: 21,
	2: headerLength,
	3: 72,
	4: 9,
	5: 11,
	6: 6,
	7: headerLength,
}

// checkSection validates the generic header of a section 1..7 view.
func checkSection(b []byte, num int) error {
	if len(b) < minSectionLength[num] {
		return sectionErr(num, ErrMalformed, "%d bytes, need at least %d", len(b), minSectionLength[num])
	}
	if num > 0 && int(b[4]) != num {
		return sectionErr(num, ErrMalformed, "header names section %d", b[4])
	}
	return nil
}

// Section0 is the Indicator Section: "GRIB", discipline, edition, total length.
type Section0 struct{ buf []byte }

func newSection0(b []byte) (Section0, error) {
	if err := checkSection(b, 0); err != nil {
		return Section0{}, err
	}
	if string(b[0:4]) != "GRIB" {
		return Section0{}, sectionErr(0, ErrMalformed, "missing GRIB magic: %q", b[0:4])
	}
	return Section0{buf: b[:indicatorLength]}, nil
}

// Present reports whether the section was seen.
func (s Section0) Present() bool { return s.buf != nil }

// Bytes returns the underlying span.
func (s Section0) Bytes() []byte { return s.buf }

// Discipline is the GRIB master table number (code table 0.0).
func (s Section0) Discipline() uint8 { return u8(s.buf[6:7]) }

// Edition is the GRIB edition number.
func (s Section0) Edition() uint8 { return u8(s.buf[7:8]) }

// TotalLength is the length of the whole message in octets.
func (s Section0) TotalLength() uint64 { return u64(s.buf[8:16]) }

// Section1 is the Identification Section.
type Section1 struct{ buf []byte }

func newSection1(b []byte) (Section1, error) {
	if err := checkSection(b, 1); err != nil {
		return Section1{}, err
	}
	return Section1{buf: b}, nil
}

func (s Section1) Present() bool { return s.buf != nil }
func (s Section1) Bytes() []byte { return s.buf }

// Centre is the originating centre (common code table C-11).
func (s Section1) Centre() uint16 { return u16(s.buf[5:7]) }

// SubCentre is the originating sub-centre.
func (s Section1) SubCentre() uint16 { return u16(s.buf[7:9]) }

// MasterTablesVersion is the GRIB master tables version number.
func (s Section1) MasterTablesVersion() uint8 { return u8(s.buf[9:10]) }

// LocalTablesVersion is the GRIB local tables version number.
func (s Section1) LocalTablesVersion() uint8 { return u8(s.buf[10:11]) }

// ReferenceTimeSignificance is code table 1.2.
func (s Section1) ReferenceTimeSignificance() uint8 { return u8(s.buf[11:12]) }

// ReferenceTime is the reference time of the data, UTC.
func (s Section1) ReferenceTime() (time.Time, error) {
	t, err := dateTime(s.buf[12:19])
	if err != nil {
		return time.Time{}, &SectionError{Section: 1, Err: err}
	}
	return t, nil
}

// ProductionStatus is code table 1.3.
func (s Section1) ProductionStatus() uint8 { return u8(s.buf[19:20]) }

// DataType is code table 1.4.
func (s Section1) DataType() uint8 { return u8(s.buf[20:21]) }

// Section2 is the Local Use Section.
type Section2 struct{ buf []byte }

func newSection2(b []byte) (Section2, error) {
	if err := checkSection(b, 2); err != nil {
		return Section2{}, err
	}
	return Section2{buf: b}, nil
}

func (s Section2) Present() bool { return s.buf != nil }
func (s Section2) Bytes() []byte { return s.buf }

// Data returns the local-use octets following the header.
func (s Section2) Data() []byte { return s.buf[headerLength:] }

// Section3 is the Grid Definition Section. Accessors follow the grid definition
// template 3.0 (regular latitude/longitude) layout; coordinates are micro-degrees.
type Section3 struct{ buf []byte }

func newSection3(b []byte) (Section3, error) {
	if err := checkSection(b, 3); err != nil {
		return Section3{}, err
	}
	return Section3{buf: b}, nil
}

func (s Section3) Present() bool { return s.buf != nil }
func (s Section3) Bytes() []byte { return s.buf }

// PointCount is the number of data points declared by the grid.
func (s Section3) PointCount() uint32 { return u32(s.buf[6:10]) }

// TemplateNumber is the grid definition template number (code table 3.1).
func (s Section3) TemplateNumber() uint16 { return u16(s.buf[12:14]) }

// Ni is the number of points along a parallel.
func (s Section3) Ni() uint32 { return u32(s.buf[30:34]) }

// Nj is the number of points along a meridian.
func (s Section3) Nj() uint32 { return u32(s.buf[34:38]) }

// La1 is the latitude of the first grid point.
func (s Section3) La1() int32 { return i32(s.buf[46:50]) }

// Lo1 is the longitude of the first grid point.
func (s Section3) Lo1() int32 { return i32(s.buf[50:54]) }

// ResolutionFlags is flag table 3.3.
func (s Section3) ResolutionFlags() uint8 { return u8(s.buf[54:55]) }

// La2 is the latitude of the last grid point.
func (s Section3) La2() int32 { return i32(s.buf[55:59]) }

// Lo2 is the longitude of the last grid point.
func (s Section3) Lo2() int32 { return i32(s.buf[59:63]) }

// Di is the i direction increment.
func (s Section3) Di() uint32 { return u32(s.buf[63:67]) }

// Dj is the j direction increment.
func (s Section3) Dj() uint32 { return u32(s.buf[67:71]) }

// ScanningMode is flag table 3.4.
func (s Section3) ScanningMode() uint8 { return u8(s.buf[71:72]) }

// Section4 is the Product Definition Section.
type Section4 struct{ buf []byte }

func newSection4(b []byte) (Section4, error) {
	if err := checkSection(b, 4); err != nil {
		return Section4{}, err
	}
	return Section4{buf: b}, nil
}

func (s Section4) Present() bool { return s.buf != nil }
func (s Section4) Bytes() []byte { return s.buf }

// TemplateNumber is the product definition template number (code table 4.0).
func (s Section4) TemplateNumber() uint16 { return u16(s.buf[7:9]) }

// Section5 is the Data Representation Section.
type Section5 struct{ buf []byte }

func newSection5(b []byte) (Section5, error) {
	if err := checkSection(b, 5); err != nil {
		return Section5{}, err
	}
	return Section5{buf: b}, nil
}

func (s Section5) Present() bool { return s.buf != nil }
func (s Section5) Bytes() []byte { return s.buf }

// PointCount is the number of values packed in section 7: the number of present
// points when a bitmap applies, otherwise the total number of points.
func (s Section5) PointCount() uint32 { return u32(s.buf[5:9]) }

// TemplateNumber is the data representation template number (code table 5.0).
func (s Section5) TemplateNumber() uint16 { return u16(s.buf[9:11]) }

// Bitmap indicator values (code table 6.0).
const (
	BitmapEmbedded uint8 = 0
	BitmapReuse    uint8 = 254
	BitmapNone     uint8 = 255
)

// Section6 is the Bit-Map Section.
type Section6 struct{ buf []byte }

func newSection6(b []byte) (Section6, error) {
	if err := checkSection(b, 6); err != nil {
		return Section6{}, err
	}
	return Section6{buf: b}, nil
}

func (s Section6) Present() bool { return s.buf != nil }
func (s Section6) Bytes() []byte { return s.buf }

// Indicator is the bit-map indicator (code table 6.0).
func (s Section6) Indicator() uint8 { return u8(s.buf[5:6]) }

// Bitmap returns the embedded bitmap, MSB-first, one bit per grid point.
func (s Section6) Bitmap() []byte { return s.buf[6:] }

// Section7 is the Data Section. It keeps the section 5 in force when it was
// framed, because the payload layout is only defined by that template.
type Section7 struct {
	buf []byte
	drs Section5
}

func newSection7(b []byte, drs Section5) (Section7, error) {
	if err := checkSection(b, 7); err != nil {
		return Section7{}, err
	}
	return Section7{buf: b, drs: drs}, nil
}

func (s Section7) Present() bool { return s.buf != nil }
func (s Section7) Bytes() []byte { return s.buf }

// Payload returns the packed data following the header.
func (s Section7) Payload() []byte { return s.buf[headerLength:] }

// Representation returns the section 5 this payload was framed with.
func (s Section7) Representation() Section5 { return s.drs }
