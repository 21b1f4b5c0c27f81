// Package tables maps GRIB2 code table entries to human-readable labels.
package tables

import (
	"fmt"
	"math"
	"strconv"
)

type level struct {
	name string
	unit string // empty: the surface value is not shown
}

// Code table 4.5, fixed surface types.
var levels = map[uint8]level{
	1:   {name: "Ground or water surface"},
	2:   {name: "Cloud base level"},
	3:   {name: "Level of cloud tops"},
	4:   {name: "Level of 0°C isotherm"},
	5:   {name: "Level of adiabatic condensation lifted from the surface"},
	6:   {name: "Maximum wind level"},
	7:   {name: "Tropopause"},
	8:   {name: "Nominal top of the atmosphere"},
	9:   {name: "Sea bottom"},
	10:  {name: "Entire atmosphere"},
	11:  {name: "Cumulonimbus base", unit: "m"},
	12:  {name: "Cumulonimbus top", unit: "m"},
	13:  {name: "Lowest level where vertically integrated cloud cover exceeds the specified percentage", unit: "%"},
	14:  {name: "Level of free convection"},
	15:  {name: "Convection condensation level"},
	16:  {name: "Level of neutral buoyancy or equilibrium"},
	20:  {name: "Isothermal level", unit: "K"},
	21:  {name: "Lowest level where mass density exceeds the specified value", unit: "kg m-3"},
	22:  {name: "Highest level where mass density exceeds the specified value", unit: "kg m-3"},
	23:  {name: "Lowest level where air concentration exceeds the specified value", unit: "Bq m-3"},
	24:  {name: "Highest level where air concentration exceeds the specified value", unit: "Bq m-3"},
	25:  {name: "Highest level where radar reflectivity exceeds the specified value", unit: "dBZ"},
	26:  {name: "Convective cloud layer base", unit: "m"},
	27:  {name: "Convective cloud layer top", unit: "m"},
	30:  {name: "Specified radius from the centre of the Sun", unit: "m"},
	31:  {name: "Ionospheric D-region level"},
	32:  {name: "Ionospheric E-region level"},
	33:  {name: "Ionospheric F1-region level"},
	34:  {name: "Ionospheric F2-region level"},
	100: {name: "Isobaric surface", unit: "Pa"},
	101: {name: "Mean sea level", unit: "m"},
	102: {name: "Specific altitude above mean sea level", unit: "m"},
	103: {name: "Specified height level above ground", unit: "m"},
	104: {name: "Sigma level", unit: "1"},
	105: {name: "Hybrid level", unit: "1"},
	106: {name: "Depth below land surface", unit: "m"},
	107: {name: "Isentropic level", unit: "K"},
	108: {name: "Level at specified pressure difference from ground to level", unit: "Pa"},
	160: {name: "Depth below sea level", unit: "m"},
	161: {name: "Depth below water surface", unit: "m"},
	200: {name: "Entire tank model (soil water index)"},
	201: {name: "Tank model tank number", unit: "1"},
}

// LevelName labels a fixed surface with its value; a NaN value labels the
// surface type alone. ok is false for reserved and unknown surface types.
func LevelName(surfaceType uint8, v float64) (string, bool) {
	l, found := levels[surfaceType]
	if !found {
		return "", false
	}
	if l.unit == "" || math.IsNaN(v) {
		return l.name, true
	}
	return fmt.Sprintf("%s: %s [%s]", l.name, strconv.FormatFloat(v, 'g', -1, 64), l.unit), true
}
