package gen

import (
	"math"

	"github.com/OCharnyshevich/atlas/pkg/world/raster"
)

// OutOfRange is returned by Elevation and WaterTable for columns the map
// does not cover.
const OutOfRange = -1

// Elevation returns the world Y of the terrain surface at (x, z), or
// OutOfRange when the elevation map does not cover the column or is not
// loaded.
func (g *Generator) Elevation(x, z int) int {
	y, ok := g.elevationAt(x, z)
	if !ok {
		return OutOfRange
	}
	return y
}

// elevationAt is Elevation without the sentinel, so a genuine surface at
// y = -1 is not mistaken for an uncovered column.
func (g *Generator) elevationAt(x, z int) (int, bool) {
	m := g.maps.Load()
	if m == nil {
		return 0, false
	}
	p, ok := m.elevMapper.Locate(x, z)
	if !ok {
		return 0, false
	}
	v := bilinear(m.elev, p)
	return int(math.Round(g.cfg.VerticalScale*v)) + g.cfg.StartingY, true
}

// WaterTable returns the fluid surface at (x, z). Without a water-table map
// it is the sea level; outside the map it is OutOfRange.
func (g *Generator) WaterTable(x, z int) int {
	m := g.maps.Load()
	if m == nil || m.water == nil {
		return g.cfg.Settings.SeaLevel
	}
	p, ok := m.waterMap.Locate(x, z)
	if !ok {
		return OutOfRange
	}
	raw := float64(m.water.Sample(p.Z, p.X))
	return int(math.Round(raw)) + g.cfg.StartingY
}

// EffectiveWaterLevel is the level fluid is filled up to: never below the
// sea level.
func (g *Generator) EffectiveWaterLevel(x, z int) int {
	return max(g.WaterTable(x, z), g.cfg.Settings.SeaLevel)
}

// bilinear interpolates between the four pixel centres around p. Pixel i
// has its centre at i+0.5, so a point in the left half of a pixel pairs it
// with the pixel to its left. Indices past an edge replicate the edge pixel.
func bilinear(m *raster.Map, p raster.Point) float64 {
	u0, fx := cell(p.X, p.FX)
	v0, fz := cell(p.Z, p.FZ)
	u1, v1 := u0+1, v0+1

	u0, u1 = clampIndex(u0, m.Width()), clampIndex(u1, m.Width())
	v0, v1 = clampIndex(v0, m.Height()), clampIndex(v1, m.Height())

	i00 := float64(m.Sample(v0, u0))
	i10 := float64(m.Sample(v0, u1))
	i01 := float64(m.Sample(v1, u0))
	i11 := float64(m.Sample(v1, u1))

	return lerp(fz, lerp(fx, i00, i10), lerp(fx, i01, i11))
}

// cell returns the lower pixel of the interpolation cell holding a point
// at offset f inside pixel base, and the weight of the upper pixel.
func cell(base int, f float64) (int, float64) {
	if f < 0.5 {
		return base - 1, f + 0.5
	}
	return base, f - 0.5
}

func clampIndex(i, n int) int {
	return min(max(i, 0), n-1)
}

func lerp(t, a, b float64) float64 { return a + t*(b-a) }
