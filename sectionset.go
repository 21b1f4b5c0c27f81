package grib2

import (
	"time"

	"github.com/cespare/xxhash/v2"
)

// SectionSet is the bundle of sections 0-7 in force when a section 7 was read.
// Sections 0-3 may be shared, unchanged, by several SectionSets of one message.
// All views alias the scanned buffer.
type SectionSet struct {
	Indicator      Section0
	Identification Section1
	LocalUse       Section2
	Grid           Section3
	Product        Section4
	Representation Section5
	Bitmap         Section6
	Data           Section7

	// faults records sections that were framed but too short for their layout.
	faults [8]error
}

func (s SectionSet) present(n int) bool {
	switch n {
	case 0:
		return s.Indicator.Present()
	case 1:
		return s.Identification.Present()
	case 2:
		return s.LocalUse.Present()
	case 3:
		return s.Grid.Present()
	case 4:
		return s.Product.Present()
	case 5:
		return s.Representation.Present()
	case 6:
		return s.Bitmap.Present()
	case 7:
		return s.Data.Present()
	}
	return false
}

// need returns an error for the first absent section among nums: the framing
// fault if the section was damaged, ErrMissingSection otherwise.
func (s SectionSet) need(nums ...int) error {
	for _, n := range nums {
		if s.present(n) {
			continue
		}
		if err := s.faults[n]; err != nil {
			return err
		}
		return missing(n)
	}
	return nil
}

// Discipline is the section 0 discipline (code table 0.0).
func (s SectionSet) Discipline() (uint8, error) {
	if err := s.need(0); err != nil {
		return 0, err
	}
	return s.Indicator.Discipline(), nil
}

// ReferenceTime is the section 1 reference time.
func (s SectionSet) ReferenceTime() (time.Time, error) {
	if err := s.need(1); err != nil {
		return time.Time{}, err
	}
	return s.Identification.ReferenceTime()
}

func (s SectionSet) product() (ProductTemplate, error) {
	if err := s.need(4); err != nil {
		return nil, err
	}
	return s.Product.Template()
}

// ValidTime is the time the field represents: reference time plus forecast
// offset, or the end of the statistical interval.
func (s SectionSet) ValidTime() (time.Time, error) {
	ref, err := s.ReferenceTime()
	if err != nil {
		return time.Time{}, err
	}
	p, err := s.product()
	if err != nil {
		return time.Time{}, err
	}
	return p.ValidTime(ref)
}

// ParameterCategory is code table 4.1.
func (s SectionSet) ParameterCategory() (uint8, error) {
	p, err := s.product()
	if err != nil {
		return 0, err
	}
	return p.ParameterCategory(), nil
}

// ParameterNumber is code table 4.2.
func (s SectionSet) ParameterNumber() (uint8, error) {
	p, err := s.product()
	if err != nil {
		return 0, err
	}
	return p.ParameterNumber(), nil
}

func (s SectionSet) FirstSurface() (Surface, error) {
	p, err := s.product()
	if err != nil {
		return Surface{}, err
	}
	return p.FirstSurface(), nil
}

func (s SectionSet) SecondSurface() (Surface, error) {
	p, err := s.product()
	if err != nil {
		return Surface{}, err
	}
	return p.SecondSurface(), nil
}

// Bounds is the extent of a regular latitude/longitude grid in micro-degrees.
type Bounds struct {
	Left   int32 `json:"left"`   // Lo1
	Right  int32 `json:"right"`  // Lo2
	Top    int32 `json:"top"`    // La1
	Bottom int32 `json:"bottom"` // La2
}

func (s SectionSet) latLonGrid() error {
	if err := s.need(3); err != nil {
		return err
	}
	if n := s.Grid.TemplateNumber(); n != 0 {
		return sectionErr(3, ErrUnsupportedTemplate, "grid definition template 3.%d has no lat/lon bounds", n)
	}
	return nil
}

// Bounds returns the first and last grid points of a template 3.0 grid.
func (s SectionSet) Bounds() (Bounds, error) {
	if err := s.latLonGrid(); err != nil {
		return Bounds{}, err
	}
	return Bounds{
		Left:   s.Grid.Lo1(),
		Right:  s.Grid.Lo2(),
		Top:    s.Grid.La1(),
		Bottom: s.Grid.La2(),
	}, nil
}

// Increments returns the i and j direction increments of a template 3.0 grid.
func (s SectionSet) Increments() (di, dj uint32, err error) {
	if err := s.latLonGrid(); err != nil {
		return 0, 0, err
	}
	return s.Grid.Di(), s.Grid.Dj(), nil
}

// PointCount is the number of grid points declared by section 3.
func (s SectionSet) PointCount() (uint32, error) {
	if err := s.need(3); err != nil {
		return 0, err
	}
	return s.Grid.PointCount(), nil
}

func (s SectionSet) representation() (DataTemplate, error) {
	if err := s.need(5); err != nil {
		return nil, err
	}
	return s.Representation.Template()
}

// Packing is the packing algorithm of section 5.
func (s SectionSet) Packing() (Packing, error) {
	t, err := s.representation()
	if err != nil {
		return 0, err
	}
	return t.Packing(), nil
}

// BitsPerValue is the packed width declared by section 5.
func (s SectionSet) BitsPerValue() (int, error) {
	t, err := s.representation()
	if err != nil {
		return 0, err
	}
	return t.BitsPerValue(), nil
}

// GridID fingerprints the grid definition: SectionSets on byte-identical
// section 3s share an ID.
func (s SectionSet) GridID() (uint64, error) {
	if err := s.need(3); err != nil {
		return 0, err
	}
	return xxhash.Sum64(s.Grid.Bytes()), nil
}
