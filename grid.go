package grib2

import (
	"math"
)

// Grid maps between grid indices and geographic coordinates. Values of a field
// on the grid are row-major in scanning order: index = j*Ni + i.
type Grid interface {
	Size() (ni, nj int)
	// Index returns the nearest grid point to (lat°N, lon°E); ok is false
	// outside the grid.
	Index(lat, lon float64) (i, j int, ok bool)
	// LatLon returns the coordinates of grid point (i, j), lon in -180..180.
	LatLon(i, j int) (lat, lon float64)
}

// Scanning mode flags (flag table 3.4).
const (
	scanNegativeI   = 0x80
	scanPositiveJ   = 0x40
	scanConsecutive = 0x20
)

// Resolution flags (flag table 3.3).
const (
	resIncrementI = 0x20
	resIncrementJ = 0x10
)

// LatLonGrid is a regular latitude/longitude grid (template 3.0), in degrees.
type LatLonGrid struct {
	Ni, Nj     int
	Lat1, Lon1 float64 // first grid point
	Lat2, Lon2 float64 // last grid point
	Di, Dj     float64 // increments, always positive
	ScanMode   uint8
}

func (g *LatLonGrid) Size() (int, int) { return g.Ni, g.Nj }

func (g *LatLonGrid) signs() (si, sj float64) {
	si, sj = 1, -1
	if g.ScanMode&scanNegativeI != 0 {
		si = -1
	}
	if g.ScanMode&scanPositiveJ != 0 {
		sj = 1
	}
	return si, sj
}

func (g *LatLonGrid) LatLon(i, j int) (lat, lon float64) {
	si, sj := g.signs()
	lat = g.Lat1 + sj*float64(j)*g.Dj
	lon = NormLon(math.Mod(g.Lon1+si*float64(i)*g.Di+720, 360))
	return lat, lon
}

func (g *LatLonGrid) Index(lat, lon float64) (i, j int, ok bool) {
	si, sj := g.signs()
	dlon := math.Mod(si*(lon-g.Lon1)+720, 360)
	// A point just before the first column rounds onto it.
	if dlon > 360-g.Di/2 {
		dlon -= 360
	}
	i = int(math.Round(dlon / g.Di))
	j = int(math.Round(sj * (lat - g.Lat1) / g.Dj))
	ok = i >= 0 && i < g.Ni && j >= 0 && j < g.Nj
	return i, j, ok
}

// BasicAngle is the basic angle of the initial production domain (template 3.0).
func (s Section3) BasicAngle() uint32 { return u32(s.buf[38:42]) }

// Subdivisions is the subdivisions of the basic angle (template 3.0).
func (s Section3) Subdivisions() uint32 { return u32(s.buf[42:46]) }

// degrees converts a template 3.0 angle to degrees. Without a basic angle the
// unit is 10^-6 degree.
func (s Section3) degrees(v int64) float64 {
	basic, sub := s.BasicAngle(), s.Subdivisions()
	if basic == 0 || basic == math.MaxUint32 || sub == 0 || sub == math.MaxUint32 {
		return float64(v) / 1e6
	}
	return float64(v) * float64(basic) / float64(sub)
}

func newLatLonGrid(s Section3, ni, nj int) (*LatLonGrid, error) {
	if s.ScanningMode()&scanConsecutive != 0 {
		return nil, sectionErr(3, ErrUnsupportedTemplate, "scanning mode 0x%02x (j-consecutive)", s.ScanningMode())
	}
	g := &LatLonGrid{
		Ni:       ni,
		Nj:       nj,
		Lat1:     s.degrees(int64(s.La1())),
		Lon1:     s.degrees(int64(s.Lo1())),
		Lat2:     s.degrees(int64(s.La2())),
		Lon2:     s.degrees(int64(s.Lo2())),
		ScanMode: s.ScanningMode(),
	}
	flags := s.ResolutionFlags()
	if di := s.Di(); flags&resIncrementI != 0 && di != math.MaxUint32 {
		g.Di = s.degrees(int64(di))
	} else if ni > 1 {
		span := math.Mod(g.Lon2-g.Lon1+720, 360)
		if g.ScanMode&scanNegativeI != 0 {
			span = 360 - span
		}
		g.Di = span / float64(ni-1)
	}
	if dj := s.Dj(); flags&resIncrementJ != 0 && dj != math.MaxUint32 {
		g.Dj = s.degrees(int64(dj))
	} else if nj > 1 {
		g.Dj = math.Abs(g.Lat2-g.Lat1) / float64(nj-1)
	}
	if g.Di <= 0 || g.Dj <= 0 {
		return nil, sectionErr(3, ErrMalformed, "grid increments %g×%g", g.Di, g.Dj)
	}
	return g, nil
}

// helpers
func toRad(d float64) float64 { return d * math.Pi / 180 }
func toDeg(r float64) float64 { return r * 180 / math.Pi }

// NormLon converts a 0-360 longitude to -180..+180.
// Exported so callers can normalize GRIB2 longitudes (which use 0-360 convention).
func NormLon(lon float64) float64 {
	if lon > 180 {
		return lon - 360
	}
	return lon
}

// GridDefinition resolves the grid definition template: 3.0 (regular
// latitude/longitude) or 3.30 (Lambert conformal).
func (s SectionSet) GridDefinition() (Grid, error) {
	if err := s.need(3); err != nil {
		return nil, err
	}
	ni, nj, err := s.Grid.dimensions()
	if err != nil {
		return nil, err
	}
	var g Grid
	switch n := s.Grid.TemplateNumber(); n {
	case 0:
		g, err = newLatLonGrid(s.Grid, ni, nj)
	case 30:
		g, err = newLambertGrid(s.Grid, ni, nj)
	default:
		err = sectionErr(3, ErrUnsupportedTemplate, "grid definition template 3.%d", n)
	}
	if err != nil {
		return nil, err
	}
	return g, nil
}
