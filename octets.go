package grib2

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"
)

// Fixed-width big-endian readers. The span must match the width exactly; callers
// always pass sub-slices of a section whose length was checked at construction,
// so a mismatch is a bug in this package, not bad input.

func u8(b []byte) uint8 {
	mustWidth(b, 1)
	return b[0]
}

func u16(b []byte) uint16 {
	mustWidth(b, 2)
	return binary.BigEndian.Uint16(b)
}

func u32(b []byte) uint32 {
	mustWidth(b, 4)
	return binary.BigEndian.Uint32(b)
}

func u64(b []byte) uint64 {
	mustWidth(b, 8)
	return binary.BigEndian.Uint64(b)
}

func mustWidth(b []byte, n int) {
	if len(b) != n {
		panic(fmt.Sprintf("grib2: %d-byte read on %d-byte span", n, len(b)))
	}
}

// GRIB2 signed integers are sign-magnitude, not two's complement: the MSB is the
// sign and the remaining bits the magnitude. An all-ones pattern means "missing"
// and is returned as is (reinterpreted, never negated).

func i8(b []byte) int8 {
	u := u8(b)
	switch {
	case u == math.MaxUint8:
		return int8(u)
	case u&0x80 != 0:
		return -int8(u &^ 0x80)
	}
	return int8(u)
}

func i16(b []byte) int16 {
	u := u16(b)
	switch {
	case u == math.MaxUint16:
		return int16(u)
	case u&0x8000 != 0:
		return -int16(u &^ 0x8000)
	}
	return int16(u)
}

func i32(b []byte) int32 {
	u := u32(b)
	switch {
	case u == math.MaxUint32:
		return int32(u)
	case u&0x80000000 != 0:
		return -int32(u &^ 0x80000000)
	}
	return int32(u)
}

func i64(b []byte) int64 {
	u := u64(b)
	switch {
	case u == math.MaxUint64:
		return int64(u)
	case u&(1<<63) != 0:
		return -int64(u &^ (1 << 63))
	}
	return int64(u)
}

// f32 reads an IEEE 754 single-precision value.
func f32(b []byte) float32 {
	return math.Float32frombits(u32(b))
}

// dateTime reads the 7-octet year/month/day/hour/minute/second layout as UTC.
func dateTime(b []byte) (time.Time, error) {
	mustWidth(b, 7)
	year := int(u16(b[0:2]))
	month, day := int(b[2]), int(b[3])
	hour, minute, second := int(b[4]), int(b[5]), int(b[6])

	t := time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC)
	// time.Date normalises overflow (month 13, day 32); reject instead.
	if t.Year() != year || int(t.Month()) != month || t.Day() != day ||
		t.Hour() != hour || t.Minute() != minute || t.Second() != second {
		return time.Time{}, fmt.Errorf("%w: invalid date-time %04d-%02d-%02d %02d:%02d:%02d",
			ErrMalformed, year, month, day, hour, minute, second)
	}
	return t, nil
}

// timeUnits maps code table 4.4 indicators to their length in seconds.
var timeUnits = map[uint8]int64{
	0:  60,
	1:  3600,
	2:  86400,
	10: 3 * 3600,
	11: 6 * 3600,
	12: 12 * 3600,
	13: 1,
}

// maxSpanSeconds is the longest span a time.Duration can hold.
const maxSpanSeconds = math.MaxInt64 / int64(time.Second)

// timeSpan reads a 1-octet unit indicator followed by a 4-octet magnitude. The
// all-ones magnitude means missing; spans past the range of time.Duration are
// rejected rather than wrapped.
func timeSpan(b []byte) (time.Duration, error) {
	mustWidth(b, 5)
	unit, ok := timeUnits[b[0]]
	if !ok {
		return 0, fmt.Errorf("%w: unknown time unit code %d", ErrPrecondition, b[0])
	}
	n := u32(b[1:5])
	if n == math.MaxUint32 {
		return 0, fmt.Errorf("%w: time span is missing", ErrMalformed)
	}
	secs := int64(n) * unit
	if secs > maxSpanSeconds {
		return 0, fmt.Errorf("%w: time span of %d units (code %d) overflows", ErrMalformed, n, b[0])
	}
	return time.Duration(secs) * time.Second, nil
}
