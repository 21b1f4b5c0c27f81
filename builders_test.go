package grib2

import (
	"encoding/binary"
	"math"
	"time"
)

// Builders for synthetic GRIB2 messages. Offsets are from the start of each
// section, as in the WMO manual minus one.

// section prefixes body with the 5-octet length and number header.
func section(num int, body []byte) []byte {
	sec := make([]byte, headerLength+len(body))
	binary.BigEndian.PutUint32(sec[0:4], uint32(len(sec)))
	sec[4] = byte(num)
	copy(sec[headerLength:], body)
	return sec
}

// message frames sections between an edition 2 indicator and "7777".
func message(discipline uint8, sections ...[]byte) []byte {
	total := indicatorLength + endMarkerLength
	for _, s := range sections {
		total += len(s)
	}
	msg := make([]byte, indicatorLength, total)
	copy(msg, "GRIB")
	msg[6] = discipline
	msg[7] = 2
	binary.BigEndian.PutUint64(msg[8:16], uint64(total))
	for _, s := range sections {
		msg = append(msg, s...)
	}
	return append(msg, "7777"...)
}

// sm16 and sm32 encode sign-magnitude integers.
func sm16(v int) uint16 {
	if v < 0 {
		return 0x8000 | uint16(-v)
	}
	return uint16(v)
}

func sm32(v int64) uint32 {
	if v < 0 {
		return 0x80000000 | uint32(-v)
	}
	return uint32(v)
}

func identification(centre uint16, ref time.Time) []byte {
	sec := make([]byte, 21)
	binary.BigEndian.PutUint32(sec[0:4], 21)
	sec[4] = 1
	binary.BigEndian.PutUint16(sec[5:7], centre)
	sec[9] = 2  // master tables version
	sec[11] = 1 // start of forecast
	binary.BigEndian.PutUint16(sec[12:14], uint16(ref.Year()))
	sec[14] = byte(ref.Month())
	sec[15] = byte(ref.Day())
	sec[16] = byte(ref.Hour())
	sec[17] = byte(ref.Minute())
	sec[18] = byte(ref.Second())
	return sec
}

// latLonGrid describes a template 3.0 grid in micro-degrees.
type latLonGrid struct {
	ni, nj     uint32
	la1, lo1   int64
	la2, lo2   int64
	di, dj     uint32
	resolution uint8
	scan       uint8
}

func (g latLonGrid) section() []byte {
	sec := make([]byte, 72)
	binary.BigEndian.PutUint32(sec[0:4], 72)
	sec[4] = 3
	binary.BigEndian.PutUint32(sec[6:10], g.ni*g.nj)
	binary.BigEndian.PutUint16(sec[12:14], 0)
	sec[14] = 6 // spherical earth, 6371229 m
	binary.BigEndian.PutUint32(sec[30:34], g.ni)
	binary.BigEndian.PutUint32(sec[34:38], g.nj)
	binary.BigEndian.PutUint32(sec[46:50], sm32(g.la1))
	binary.BigEndian.PutUint32(sec[50:54], sm32(g.lo1))
	sec[54] = g.resolution
	binary.BigEndian.PutUint32(sec[55:59], sm32(g.la2))
	binary.BigEndian.PutUint32(sec[59:63], sm32(g.lo2))
	binary.BigEndian.PutUint32(sec[63:67], g.di)
	binary.BigEndian.PutUint32(sec[67:71], g.dj)
	sec[71] = g.scan
	return sec
}

// smallGrid is a 4×3 one-degree grid scanning west to east, north to south.
var smallGrid = latLonGrid{
	ni: 4, nj: 3,
	la1: 50_000_000, lo1: 0,
	la2: 48_000_000, lo2: 3_000_000,
	di: 1_000_000, dj: 1_000_000,
	resolution: resIncrementI | resIncrementJ,
}

// lambertSection builds a template 3.30 section 3 (Lambert conformal).
func lambertSection(ni, nj uint32, la1, lo1, lov, latin int64, dx, dy uint32, scan byte) []byte {
	sec := make([]byte, lambertLength)
	binary.BigEndian.PutUint32(sec[0:4], lambertLength)
	sec[4] = 3
	binary.BigEndian.PutUint32(sec[6:10], ni*nj)
	binary.BigEndian.PutUint16(sec[12:14], 30)
	sec[14] = 6
	binary.BigEndian.PutUint32(sec[30:34], ni)
	binary.BigEndian.PutUint32(sec[34:38], nj)
	binary.BigEndian.PutUint32(sec[38:42], sm32(la1))
	binary.BigEndian.PutUint32(sec[42:46], uint32(lo1))
	binary.BigEndian.PutUint32(sec[51:55], uint32(lov))
	binary.BigEndian.PutUint32(sec[55:59], dx)
	binary.BigEndian.PutUint32(sec[59:63], dy)
	sec[64] = scan
	binary.BigEndian.PutUint32(sec[65:69], sm32(latin))
	binary.BigEndian.PutUint32(sec[69:73], sm32(latin))
	return sec
}

// product describes a template 4.0 section 4.
type product struct {
	category, number uint8
	unit             uint8
	forecast         uint32
	surface          Surface
}

func (p product) section() []byte {
	sec := make([]byte, instantProductLength)
	binary.BigEndian.PutUint32(sec[0:4], instantProductLength)
	sec[4] = 4
	binary.BigEndian.PutUint16(sec[7:9], 0)
	sec[9] = p.category
	sec[10] = p.number
	sec[11] = 2 // forecast
	sec[17] = p.unit
	binary.BigEndian.PutUint32(sec[18:22], p.forecast)
	sec[22] = p.surface.Type
	sec[23] = byte(p.surface.ScaleFactor)
	if p.surface.ScaleFactor < 0 {
		sec[23] = 0x80 | byte(-p.surface.ScaleFactor)
	}
	binary.BigEndian.PutUint32(sec[24:28], sm32(int64(p.surface.ScaledValue)))
	sec[28] = 255
	return sec
}

func simpleSection5(n uint32, r float32, e, d, bits int) []byte {
	sec := make([]byte, simplePackingLength)
	binary.BigEndian.PutUint32(sec[0:4], simplePackingLength)
	sec[4] = 5
	binary.BigEndian.PutUint32(sec[5:9], n)
	binary.BigEndian.PutUint16(sec[9:11], 0)
	binary.BigEndian.PutUint32(sec[11:15], math.Float32bits(r))
	binary.BigEndian.PutUint16(sec[15:17], sm16(e))
	binary.BigEndian.PutUint16(sec[17:19], sm16(d))
	sec[19] = byte(bits)
	return sec
}

// complexParams is the template 5.3 part after the simple packing prefix.
type complexParams struct {
	bits                    int
	groups                  uint32
	widthRef, widthBits     uint8
	lengthRef               uint32
	lengthIncr              uint8
	lastLength              uint32
	lengthBits              uint8
	order, descriptorOctets uint8
}

func complexSection5(n uint32, r float32, e, d int, p complexParams) []byte {
	sec := make([]byte, complexPackingLength)
	copy(sec, simpleSection5(n, r, e, d, p.bits))
	binary.BigEndian.PutUint32(sec[0:4], complexPackingLength)
	binary.BigEndian.PutUint16(sec[9:11], 3)
	sec[21] = 1 // general group splitting
	binary.BigEndian.PutUint32(sec[31:35], p.groups)
	sec[35] = p.widthRef
	sec[36] = p.widthBits
	binary.BigEndian.PutUint32(sec[37:41], p.lengthRef)
	sec[41] = p.lengthIncr
	binary.BigEndian.PutUint32(sec[42:46], p.lastLength)
	sec[46] = p.lengthBits
	sec[47] = p.order
	sec[48] = p.descriptorOctets
	return sec
}

func runLengthSection5(n uint32, bits, mv int, factor int8, levels []uint16) []byte {
	length := runLengthHeader + 2*len(levels)
	sec := make([]byte, length)
	binary.BigEndian.PutUint32(sec[0:4], uint32(length))
	sec[4] = 5
	binary.BigEndian.PutUint32(sec[5:9], n)
	binary.BigEndian.PutUint16(sec[9:11], 200)
	sec[11] = byte(bits)
	binary.BigEndian.PutUint16(sec[12:14], uint16(mv))
	binary.BigEndian.PutUint16(sec[14:16], uint16(len(levels)))
	sec[16] = byte(factor)
	if factor < 0 {
		sec[16] = 0x80 | byte(-factor)
	}
	for i, l := range levels {
		binary.BigEndian.PutUint16(sec[17+2*i:], l)
	}
	return sec
}

func bitmapSection(indicator uint8, bitmap []byte) []byte {
	return section(6, append([]byte{indicator}, bitmap...))
}

func dataSection(payload []byte) []byte { return section(7, payload) }

// packBits packs vals MSB-first at the given width, zero-padding the last byte.
func packBits(vals []uint16, bits int) []byte {
	out := make([]byte, (len(vals)*bits+7)/8)
	pos := 0
	for _, v := range vals {
		for b := bits - 1; b >= 0; b-- {
			if (v>>uint(b))&1 == 1 {
				out[pos/8] |= 1 << uint(7-pos%8)
			}
			pos++
		}
	}
	return out
}

var refTime = time.Date(2026, 2, 19, 12, 0, 0, 0, time.UTC)

// simpleMessage is one complete field on smallGrid: 2 m temperature, simple
// packing, no bitmap, values (R + x·2^E) / 10^D with R=250, E=0, D=0.
func simpleMessage(raw []uint16) []byte {
	return message(0,
		identification(7, refTime),
		smallGrid.section(),
		product{category: 0, number: 0, unit: 1, forecast: 6,
			surface: Surface{Type: 103, ScaledValue: 2}}.section(),
		simpleSection5(uint32(len(raw)), 250, 0, 0, 8),
		bitmapSection(BitmapNone, nil),
		dataSection(packBits(raw, 8)),
	)
}
