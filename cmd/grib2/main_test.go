package main

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/geal-ai/grib2"
)

// testMessage is a 2 m temperature forecast on a 4×3 one-degree grid from
// 50°N 0°E to 48°N 3°E, valid 2026-02-19 18Z, with values 250..261 K.
func testMessage() []byte {
	be := binary.BigEndian

	sec1 := make([]byte, 21)
	be.PutUint32(sec1, 21)
	sec1[4] = 1
	be.PutUint16(sec1[5:], 7)
	sec1[9], sec1[11] = 2, 1
	be.PutUint16(sec1[12:], 2026)
	sec1[14], sec1[15], sec1[16] = 2, 19, 12

	sec3 := make([]byte, 72)
	be.PutUint32(sec3, 72)
	sec3[4] = 3
	be.PutUint32(sec3[6:], 12)
	sec3[14] = 6
	be.PutUint32(sec3[30:], 4)
	be.PutUint32(sec3[34:], 3)
	be.PutUint32(sec3[46:], 50_000_000)
	sec3[54] = 0x30
	be.PutUint32(sec3[55:], 48_000_000)
	be.PutUint32(sec3[59:], 3_000_000)
	be.PutUint32(sec3[63:], 1_000_000)
	be.PutUint32(sec3[67:], 1_000_000)

	sec4 := make([]byte, 34)
	be.PutUint32(sec4, 34)
	sec4[4] = 4
	sec4[11] = 2
	sec4[17] = 1
	be.PutUint32(sec4[18:], 6)
	sec4[22] = 103
	be.PutUint32(sec4[24:], 2)
	sec4[28] = 255

	sec5 := make([]byte, 21)
	be.PutUint32(sec5, 21)
	sec5[4] = 5
	be.PutUint32(sec5[5:], 12)
	be.PutUint32(sec5[11:], math.Float32bits(250))
	sec5[19] = 8

	sec6 := []byte{0, 0, 0, 6, 6, 255}

	sec7 := make([]byte, 5+12)
	be.PutUint32(sec7, uint32(len(sec7)))
	sec7[4] = 7
	for i := range 12 {
		sec7[5+i] = byte(i)
	}

	body := bytes.Join([][]byte{sec1, sec3, sec4, sec5, sec6, sec7}, nil)
	msg := make([]byte, 16, 16+len(body)+4)
	copy(msg, "GRIB")
	msg[7] = 2
	be.PutUint64(msg[8:], uint64(16+len(body)+4))
	msg = append(msg, body...)
	return append(msg, "7777"...)
}

func writeInput(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "t2m.grib2")
	require.NoError(t, os.WriteFile(path, testMessage(), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestList(t *testing.T) {
	out, err := run(t, "list", writeInput(t))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, strings.Join(listHeaders, "\t"), lines[0])
	assert.Equal(t,
		"0\t2026-02-19 12:00Z\t2026-02-19 18:00Z\tTemperature [K]\tSpecified height level above ground: 2 [m]\tsimple\t12",
		lines[1])
}

func TestListJSON(t *testing.T) {
	out, err := run(t, "list", "--json", writeInput(t))
	require.NoError(t, err)
	var meta []grib2.Metadata
	require.NoError(t, json.Unmarshal([]byte(out), &meta))
	require.Len(t, meta, 1)
	require.NotNil(t, meta[0].PointCount)
	assert.Equal(t, uint32(12), *meta[0].PointCount)
	assert.Contains(t, out, `"packing": "simple"`)
}

func TestShowJSON(t *testing.T) {
	out, err := run(t, "show", "--json", writeInput(t), "0")
	require.NoError(t, err)

	var st struct {
		Width, Height, Present, Missing int
		Min, Max, Mean                  *float64
	}
	require.NoError(t, json.Unmarshal([]byte(out), &st))
	assert.Equal(t, 4, st.Width)
	assert.Equal(t, 3, st.Height)
	assert.Equal(t, 12, st.Present)
	assert.Equal(t, 0, st.Missing)
	require.NotNil(t, st.Min)
	assert.Equal(t, 250.0, *st.Min)
	assert.Equal(t, 261.0, *st.Max)
	assert.Equal(t, 255.5, *st.Mean)
}

func TestShowRange(t *testing.T) {
	_, err := run(t, "show", writeInput(t), "3")
	assert.ErrorContains(t, err, "out of range")

	_, err = run(t, "show", writeInput(t), "x")
	assert.ErrorContains(t, err, "index")
}

func TestLookup(t *testing.T) {
	path := writeInput(t)

	out, err := run(t, "lookup", path, "49", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Temperature [K]\tSpecified height level above ground: 2 [m]\t2026-02-19 18:00Z\t256")

	out, err = run(t, "lookup", "--json", path, "10", "2")
	require.NoError(t, err)
	var res lookupOutput
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Len(t, res.Results, 1)
	assert.Nil(t, res.Results[0].Value)
	assert.Equal(t, "outside grid or missing", res.Results[0].Error)

	_, err = run(t, "lookup", path, "91", "0")
	assert.ErrorContains(t, err, "invalid latitude")
	_, err = run(t, "lookup", path, "45", "east")
	assert.ErrorContains(t, err, "invalid longitude")
}

func TestDump(t *testing.T) {
	out, err := run(t, "dump", "--json", writeInput(t))
	require.NoError(t, err)
	var rows []dumpRow
	require.NoError(t, json.Unmarshal([]byte(out), &rows))

	var nums []int
	for _, r := range rows {
		nums = append(nums, r.Number)
	}
	assert.Equal(t, []int{0, 1, 3, 4, 5, 6, 7, 8}, nums)
	assert.Equal(t, 16, rows[1].Offset)
	assert.Equal(t, "data", rows[6].Name)
	require.NotNil(t, rows[6].Set)
	assert.Equal(t, 0, *rows[6].Set)
	assert.Nil(t, rows[5].Set)
}

func TestMatchNeedsIndex(t *testing.T) {
	_, err := run(t, "list", "--match", ":TMP:", "-")
	assert.ErrorContains(t, err, "--match")

	_, err = run(t, "list", "--match", ":TMP:", writeInput(t))
	assert.ErrorContains(t, err, "index")
}

func TestMaxBytesFromEnv(t *testing.T) {
	t.Setenv("GRIB2_MAX_BYTES", "16")
	_, err := run(t, "list", writeInput(t))
	assert.ErrorContains(t, err, "exceeds size limit")
}

func TestMissingFile(t *testing.T) {
	_, err := run(t, "list", filepath.Join(t.TempDir(), "absent.grib2"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "grib2 dev ("), out)
}

func TestSectionName(t *testing.T) {
	assert.Equal(t, "indicator", sectionName(0))
	assert.Equal(t, "end", sectionName(8))
	assert.Equal(t, "unknown", sectionName(9))
	assert.Equal(t, "unknown", sectionName(-1))
}

func TestSetError(t *testing.T) {
	err := multierr.Combine(
		&grib2.SetError{Index: 1, Err: errors.New("boom")},
		&grib2.SetError{Index: 3, Err: grib2.ErrDecodeMismatch},
	)
	assert.Equal(t, "boom", setError(err, 1))
	assert.Equal(t, grib2.ErrDecodeMismatch.Error(), setError(err, 3))
	assert.Equal(t, "not decoded", setError(err, 2))
	assert.Equal(t, "not decoded", setError(nil, 0))
}

func TestLabels(t *testing.T) {
	assert.Equal(t, "-", valueLabel[int](nil))
	n := 8
	assert.Equal(t, "8", valueLabel(&n))
	assert.Equal(t, "-", timeLabel(nil))
	assert.Equal(t, "-", levelLabel(nil))
	assert.Equal(t, "type 150: 3", levelLabel(&grib2.Surface{Type: 150, ScaledValue: 3}))
	assert.Equal(t, "type 150", levelLabel(&grib2.Surface{Type: 150, ScaleFactor: -1, ScaledValue: -1, MissingValue: true}))
	assert.Equal(t, "Isobaric surface", levelLabel(&grib2.Surface{Type: 100, MissingValue: true}))
	assert.Equal(t, "-", floatLabel(nil))

	d, c, num := uint8(0), uint8(0), uint8(250)
	assert.Equal(t, "0.0.250", parameterLabel(grib2.Metadata{Discipline: &d, ParameterCategory: &c, ParameterNumber: &num}))
	assert.Equal(t, "-", parameterLabel(grib2.Metadata{}))
}
