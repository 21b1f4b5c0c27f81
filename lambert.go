package grib2

import "math"

const earthRadiusM = 6371229.0 // shape-of-earth=6 (sphere)

// LambertGrid holds the parameters of a Lambert conformal grid (template 3.30).
type LambertGrid struct {
	Ni, Nj         int
	La1, Lo1       float64 // first grid point, signed degrees (SW corner)
	LoV            float64 // central meridian, signed degrees
	Latin1, Latin2 float64 // standard parallels, degrees
	Dx, Dy         float64 // grid spacing, metres
	ScanMode       byte
}

// Template 3.30 layout (offsets from the start of section 3):
//
//	30..33  Nx            34..37  Ny
//	38..41  La1 (µdeg)    42..45  Lo1 (µdeg)
//	51..54  LoV (µdeg)    55..58  Dx (mm)    59..62  Dy (mm)
//	64      scanning mode
//	65..68  Latin1 (µdeg) 69..72  Latin2 (µdeg)
const lambertLength = 81

func newLambertGrid(s Section3, ni, nj int) (*LambertGrid, error) {
	b := s.buf
	if len(b) < lambertLength {
		return nil, sectionErr(3, ErrMalformed, "template 3.30: %d bytes, need %d", len(b), lambertLength)
	}
	scanMode := b[64]
	// The grid operations assume 0x40; reject other modes rather than
	// silently returning wrong values.
	if scanMode != scanPositiveJ {
		return nil, sectionErr(3, ErrUnsupportedTemplate, "template 3.30: scan mode 0x%02X (only 0x40 supported)", scanMode)
	}
	return &LambertGrid{
		Ni:       ni,
		Nj:       nj,
		La1:      float64(i32(b[38:42])) / 1e6,
		Lo1:      float64(u32(b[42:46])) / 1e6,
		LoV:      float64(u32(b[51:55])) / 1e6,
		Dx:       float64(u32(b[55:59])) / 1e3, // mm → m
		Dy:       float64(u32(b[59:63])) / 1e3,
		ScanMode: scanMode,
		Latin1:   float64(i32(b[65:69])) / 1e6,
		Latin2:   float64(i32(b[69:73])) / 1e6,
	}, nil
}

func (g *LambertGrid) Size() (int, int) { return g.Ni, g.Nj }

func (g *LambertGrid) n() float64 {
	if g.Latin1 == g.Latin2 {
		return math.Sin(toRad(g.Latin1))
	}
	φ1 := toRad(g.Latin1)
	φ2 := toRad(g.Latin2)
	return math.Log(math.Cos(φ1)/math.Cos(φ2)) /
		math.Log(math.Tan(math.Pi/4+φ2/2)/math.Tan(math.Pi/4+φ1/2))
}

func (g *LambertGrid) bigF() float64 {
	n := g.n()
	φ1 := toRad(g.Latin1)
	return math.Cos(φ1) * math.Pow(math.Tan(math.Pi/4+φ1/2), n) / n
}

// rho returns the cone distance (metres) from the pole for a latitude.
func (g *LambertGrid) rho(latDeg float64) float64 {
	φ := toRad(latDeg)
	return earthRadiusM * g.bigF() / math.Pow(math.Tan(math.Pi/4+φ/2), g.n())
}

// project maps (lat, lon) to cone coordinates; y is north-positive.
func (g *LambertGrid) project(lat, lon float64) (x, y float64) {
	ρ := g.rho(lat)
	θ := g.n() * toRad(NormLon(lon)-NormLon(g.LoV))
	return ρ * math.Sin(θ), -ρ * math.Cos(θ)
}

// Index maps (lat°N, lon°E signed) to the nearest grid point.
// i increases eastward, j increases northward (scanning mode 0x40).
func (g *LambertGrid) Index(lat, lon float64) (i, j int, ok bool) {
	x, y := g.project(lat, lon)
	x0, y0 := g.project(g.La1, g.Lo1)
	i = int(math.Round((x - x0) / g.Dx))
	j = int(math.Round((y - y0) / g.Dy))
	return i, j, i >= 0 && i < g.Ni && j >= 0 && j < g.Nj
}

// LatLon maps grid indices to (lat°N, lon°E signed).
func (g *LambertGrid) LatLon(i, j int) (lat, lon float64) {
	n := g.n()
	x0, y0 := g.project(g.La1, g.Lo1)
	x := x0 + float64(i)*g.Dx
	y := y0 + float64(j)*g.Dy

	ρ := math.Sqrt(x*x + y*y)
	if ρ == 0 {
		return 90, NormLon(g.LoV)
	}
	// x = ρ*sin(θ), -y = ρ*cos(θ) → θ = atan2(x, -y)
	θ := math.Atan2(x, -y)
	φ := 2*math.Atan(math.Pow(earthRadiusM*g.bigF()/ρ, 1/n)) - math.Pi/2
	return toDeg(φ), NormLon(NormLon(g.LoV) + toDeg(θ)/n)
}
