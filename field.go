package grib2

import "math"

// Field is a decoded GRIB2 field: a grid plus physical float64 values.
// Values are stored row-major: Vals[j*Ni + i]; missing points are NaN.
type Field struct {
	Grid Grid
	Vals []float64
}

// Lookup returns the nearest-neighbour value at (lat°N, lon°E), or NaN if the
// point falls outside the grid.
func (f *Field) Lookup(lat, lon float64) float64 {
	i, j, ok := f.Grid.Index(lat, lon)
	if !ok {
		return math.NaN()
	}
	ni, _ := f.Grid.Size()
	return f.Vals[j*ni+i]
}

// Field decodes the SectionSet into physical values on its grid.
func (s SectionSet) Field() (*Field, error) {
	grid, err := s.GridDefinition()
	if err != nil {
		return nil, err
	}
	im, err := s.Decode()
	if err != nil {
		return nil, err
	}
	return &Field{Grid: grid, Vals: im.Values()}, nil
}
