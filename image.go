package grib2

import "fmt"

// PackedImage is a decoded section 7 before the physical transform: either a
// *SimpleImage or a *RunLengthImage. Pixels are row-major in scanning order.
type PackedImage interface {
	Size() (width, height int)
	Packing() Packing
	// Values applies the physical transform; missing points are NaN.
	Values() []float64

	isPackedImage()
}

// SimpleImage is a 16-bit image from simple or complex packing. Value =
// (R + pixel·2^E) / 10^D; Missing16 marks points absent from the bitmap.
type SimpleImage struct {
	Width, Height int
	Kind          Packing
	R             float32
	E, D          int
	Bits          int
	Pixels        []uint16
	// Min and Max exclude Missing16; both are 0 when no point is present.
	Min, Max uint16
}

func (im *SimpleImage) Size() (int, int) { return im.Width, im.Height }
func (im *SimpleImage) Packing() Packing { return im.Kind }
func (im *SimpleImage) isPackedImage() {}

func (im *SimpleImage) Values() []float64 {
	return scaleParams{R: float64(im.R), E: im.E, D: im.D}.decode(im.Pixels)
}

// RunLengthImage is an 8-bit image of level indices from run length packing.
// Value = Levels[pixel-1] / 10^Factor; level 0 means no data, Missing8 marks
// points absent from the bitmap.
type RunLengthImage struct {
	Width, Height int
	Bits          int
	Factor        int
	Levels        []uint16
	Pixels        []uint8
	// Min and Max exclude Missing8; both are 0 when no point is present.
	Min, Max uint8
}

func (im *RunLengthImage) Size() (int, int) { return im.Width, im.Height }
func (im *RunLengthImage) Packing() Packing { return PackingRunLength }
func (im *RunLengthImage) isPackedImage() {}

func (im *RunLengthImage) Values() []float64 {
	return levelValues(im.Pixels, im.Levels, im.Factor)
}

func pixelRange[T uint8 | uint16](pixels []T, missing T) (lo, hi T) {
	seen := false
	for _, p := range pixels {
		if p == missing {
			continue
		}
		if !seen {
			lo, hi, seen = p, p, true
			continue
		}
		lo, hi = min(lo, p), max(hi, p)
	}
	return lo, hi
}

// dimensions returns Ni and Nj after the sanity limits.
func (s Section3) dimensions() (width, height int, err error) {
	ni, nj := s.Ni(), s.Nj()
	if ni == 0 || ni > maxGridDim || nj == 0 || nj > maxGridDim {
		return 0, 0, sectionErr(3, ErrMalformed, "grid %d×%d outside (0, %d] per dimension", ni, nj, maxGridDim)
	}
	// int64 product so it cannot overflow on 32-bit platforms.
	if total := int64(ni) * int64(nj); total > maxPoints {
		return 0, 0, sectionErr(3, ErrMalformed, "grid %d×%d exceeds %d points", ni, nj, maxPoints)
	}
	return int(ni), int(nj), nil
}

// mask returns the bitmap in force, or nil when every point is present. The
// scanner never stores an indicator 254 section, so a set only ever carries the
// bitmap it captured.
func (s SectionSet) mask() ([]byte, error) {
	switch ind := s.Bitmap.Indicator(); ind {
	case BitmapNone:
		return nil, nil
	case BitmapEmbedded:
		return s.Bitmap.Bitmap(), nil
	default:
		return nil, sectionErr(6, ErrUnsupportedTemplate, "predefined bitmap %d", ind)
	}
}

// Decode unpacks section 7 with the section 5 it was framed with, and expands
// it to the full grid through the bitmap in force.
func (s SectionSet) Decode() (PackedImage, error) {
	if err := s.need(3, 5, 6, 7); err != nil {
		return nil, err
	}
	width, height, err := s.Grid.dimensions()
	if err != nil {
		return nil, err
	}
	total := width * height
	if declared := s.Grid.PointCount(); int64(declared) != int64(total) {
		return nil, sectionErr(3, ErrDecodeMismatch, "%d points declared for a %d×%d grid", declared, width, height)
	}
	t, err := s.Data.Template()
	if err != nil {
		return nil, err
	}
	bitmap, err := s.mask()
	if err != nil {
		return nil, err
	}
	n64 := int64(s.Data.Representation().PointCount())
	if n64 > int64(total) || (bitmap == nil && n64 != int64(total)) {
		return nil, sectionErr(5, ErrDecodeMismatch, "%d packed values for a %d×%d grid", n64, width, height)
	}
	n := int(n64)
	payload := s.Data.Payload()

	switch t := t.(type) {
	case SimplePacking, ComplexPacking:
		var raw []uint16
		var simple SimplePacking
		if c, ok := t.(ComplexPacking); ok {
			simple = c.SimplePacking
			raw, err = unpackComplex(payload, c, n)
		} else {
			simple = t.(SimplePacking)
			raw, err = unpackSimple(payload, simple, n)
		}
		if err != nil {
			return nil, fmt.Errorf("unpack template 7.%d: %w", t.Number(), err)
		}
		if bitmap != nil {
			if raw, err = applyBitmap(raw, bitmap, total, Missing16); err != nil {
				return nil, err
			}
		}
		im := &SimpleImage{
			Width:  width,
			Height: height,
			Kind:   t.Packing(),
			R:      simple.ReferenceValue(),
			E:      simple.BinaryScale(),
			D:      simple.DecimalScale(),
			Bits:   simple.BitsPerValue(),
			Pixels: raw,
		}
		im.Min, im.Max = pixelRange(raw, Missing16)
		return im, nil

	case RunLengthPacking:
		pixels, err := expandRunLength(payload, t, n)
		if err != nil {
			return nil, fmt.Errorf("unpack template 7.200: %w", err)
		}
		if bitmap != nil {
			if pixels, err = applyBitmap(pixels, bitmap, total, Missing8); err != nil {
				return nil, err
			}
		}
		im := &RunLengthImage{
			Width:  width,
			Height: height,
			Bits:   t.BitsPerValue(),
			Factor: t.DecimalScale(),
			Levels: t.Levels(),
			Pixels: pixels,
		}
		im.Min, im.Max = pixelRange(pixels, Missing8)
		return im, nil
	}
	return nil, fmt.Errorf("%w: data template %T", ErrUnsupportedTemplate, t)
}
