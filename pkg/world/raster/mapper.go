package raster

import "math"

// Point is a position in pixel space: the base pixel (X is the column, Z the
// row) plus the fractional offset inside it.
type Point struct {
	X, Z   int
	FX, FZ float64
}

// Mapper converts world block coordinates into pixel space for a map of a
// given size. Maps are centred on the world origin, so world (0,0) lands on
// pixel (width/2, height/2).
type Mapper struct {
	width, height int
	scale         float64
}

// NewMapper returns a Mapper for a width×height map. A non-positive scale is
// treated as 1.
func NewMapper(width, height int, scale float64) Mapper {
	if scale <= 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		scale = 1
	}
	return Mapper{width: width, height: height, scale: scale}
}

// MapperFor returns a Mapper sized to m.
func MapperFor(m *Map, scale float64) Mapper {
	return NewMapper(m.Width(), m.Height(), scale)
}

// Scale returns the horizontal scale in use.
func (mp Mapper) Scale() float64 { return mp.scale }

// Covers reports whether world (wx, wz) falls inside the map.
func (mp Mapper) Covers(wx, wz int) bool {
	px := wx + mp.width/2
	pz := wz + mp.height/2
	return px >= 0 && pz >= 0 && px < mp.width && pz < mp.height
}

// Locate maps the centre of world block (wx, wz) to pixel space. It returns
// false when the position lies outside the area the map covers; the Point is
// then zero and must not be sampled. At scale 1 every block lands on a pixel
// centre (FX = FZ = 0.5).
func (mp Mapper) Locate(wx, wz int) (Point, bool) {
	if !mp.Covers(wx, wz) {
		return Point{}, false
	}
	xr := (float64(wx+mp.width/2) + 0.5) / mp.scale
	zr := (float64(wz+mp.height/2) + 0.5) / mp.scale
	p := Point{}
	p.X, p.FX = pixel(xr, mp.width)
	p.Z, p.FZ = pixel(zr, mp.height)
	return p, true
}

// pixel splits r into a pixel index and the offset inside it. Positions past
// the last pixel, which scales below 1 produce, sit on its centre.
func pixel(r float64, n int) (int, float64) {
	t := math.Floor(r)
	i := clamp(int(t), 0, n-1)
	if i != int(t) {
		return i, 0.5
	}
	return i, r - t
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
