package grib2

import (
	"time"
)

// Metadata is the plain-data description of a SectionSet. A nil field means the
// value is unavailable: its section is absent or its template unsupported.
type Metadata struct {
	Discipline        *uint8     `json:"discipline,omitempty"`
	Centre            *uint16    `json:"centre,omitempty"`
	ReferenceTime     *time.Time `json:"reference_time,omitempty"`
	ValidTime         *time.Time `json:"valid_time,omitempty"`
	ProductTemplate   *uint16    `json:"product_template,omitempty"`
	ParameterCategory *uint8     `json:"parameter_category,omitempty"`
	ParameterNumber   *uint8     `json:"parameter_number,omitempty"`
	FirstSurface      *Surface   `json:"first_surface,omitempty"`
	SecondSurface     *Surface   `json:"second_surface,omitempty"`
	GridTemplate      *uint16    `json:"grid_template,omitempty"`
	Bounds            *Bounds    `json:"bounds,omitempty"`
	Di                *uint32    `json:"di,omitempty"`
	Dj                *uint32    `json:"dj,omitempty"`
	PointCount        *uint32    `json:"point_count,omitempty"`
	GridID            *uint64    `json:"grid_id,omitempty"`
	DataTemplate      *uint16    `json:"data_template,omitempty"`
	Packing           *Packing   `json:"packing,omitempty"`
	BitsPerValue      *int       `json:"bits_per_value,omitempty"`
	BitmapIndicator   *uint8     `json:"bitmap_indicator,omitempty"`
}

func ptr[T any](v T, err error) *T {
	if err != nil {
		return nil
	}
	return &v
}

// Describe collects every metadata accessor of the SectionSet.
func (s SectionSet) Describe() Metadata {
	m := Metadata{
		Discipline:        ptr[uint8](s.Discipline()),
		ReferenceTime:     ptr[time.Time](s.ReferenceTime()),
		ValidTime:         ptr[time.Time](s.ValidTime()),
		ParameterCategory: ptr[uint8](s.ParameterCategory()),
		ParameterNumber:   ptr[uint8](s.ParameterNumber()),
		FirstSurface:      ptr[Surface](s.FirstSurface()),
		SecondSurface:     ptr[Surface](s.SecondSurface()),
		Bounds:            ptr[Bounds](s.Bounds()),
		PointCount:        ptr[uint32](s.PointCount()),
		GridID:            ptr[uint64](s.GridID()),
		Packing:           ptr[Packing](s.Packing()),
		BitsPerValue:      ptr[int](s.BitsPerValue()),
	}
	if s.Identification.Present() {
		c := s.Identification.Centre()
		m.Centre = &c
	}
	if s.Product.Present() {
		n := s.Product.TemplateNumber()
		m.ProductTemplate = &n
	}
	if s.Grid.Present() {
		n := s.Grid.TemplateNumber()
		m.GridTemplate = &n
	}
	if di, dj, err := s.Increments(); err == nil {
		m.Di, m.Dj = &di, &dj
	}
	if s.Representation.Present() {
		n := s.Representation.TemplateNumber()
		m.DataTemplate = &n
	}
	if s.Bitmap.Present() {
		ind := s.Bitmap.Indicator()
		m.BitmapIndicator = &ind
	}
	return m
}
