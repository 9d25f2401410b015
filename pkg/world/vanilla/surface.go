package vanilla

import (
	"github.com/OCharnyshevich/atlas/pkg/world/chunk"
	"github.com/OCharnyshevich/atlas/pkg/world/gen"
)

// Surface places biome-specific layers on top of the terrain. It runs
// before the column fill, which keeps whatever it wrote.
type Surface struct {
	// PeakLine is the height above sea level where mountains turn to bare stone.
	PeakLine int
}

// NewSurface returns a Surface with default settings.
func NewSurface() *Surface { return &Surface{PeakLine: 38} }

// BuildSurface implements gen.SurfaceBuilder.
func (s *Surface) BuildSurface(c *chunk.Chunk, t gen.Terrain) {
	pos := c.Pos()
	for z := 0; z < chunk.Width; z++ {
		for x := 0; x < chunk.Width; x++ {
			wx, wz := pos.StartX()+x, pos.StartZ()+z
			elev := t.Elevation(wx, wz)
			if elev == gen.OutOfRange || elev <= t.MinimumY() {
				continue
			}
			s.column(c, x, z, elev-1, elev < t.EffectiveWaterLevel(wx, wz), t.SeaLevel())
		}
	}
}

// column decorates the column whose top solid block is at top.
func (s *Surface) column(c *chunk.Chunk, x, z, top int, submerged bool, sea int) {
	floor := c.MinY() + 4
	layer := func(from, depth int, state chunk.State) {
		for y := from; y > from-depth && y > floor; y-- {
			if c.Carved(x, y, z) {
				continue
			}
			c.SetBlock(x, y, z, state)
		}
	}

	switch biome := c.Biome(x, z); biome {
	case Desert:
		layer(top, 4, chunk.Sand)
		layer(top-4, 2, chunk.Sandstone)

	case Ocean:
		layer(top, 3, chunk.Gravel)
		layer(top-3, 2, chunk.Dirt)

	case Beach:
		layer(top, 4, chunk.Sand)
		layer(top-4, 1, chunk.Sandstone)

	case Mountains:
		if top > sea+s.PeakLine {
			// Bare stone peaks: the fill supplies the stone.
			return
		}
		s.grassy(c, x, z, top, submerged, layer)

	default:
		s.grassy(c, x, z, top, submerged, layer)
		if snowy(biome) && !submerged && !c.Carved(x, top+1, z) {
			c.SetBlock(x, top+1, z, chunk.SnowLayer)
		}
	}
}

// grassy places grass on top with dirt below; underwater it is all dirt.
func (s *Surface) grassy(c *chunk.Chunk, x, z, top int, submerged bool, layer func(int, int, chunk.State)) {
	if submerged {
		layer(top, 4, chunk.Dirt)
		return
	}
	layer(top, 1, chunk.Grass)
	layer(top-1, 3, chunk.Dirt)
}
