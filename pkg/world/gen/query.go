package gen

import "github.com/OCharnyshevich/atlas/pkg/world/chunk"

// Height answers a heightmap query without generating the chunk.
// Ocean-floor kinds see the terrain; the others see water as well, so they
// never report less than the sea level.
func (g *Generator) Height(x, z int, kind chunk.HeightmapKind) int {
	elev := g.Elevation(x, z)
	if kind.IsOceanFloor() {
		return elev
	}
	return max(g.cfg.Settings.SeaLevel, elev)
}

// ColumnSample returns the blocks PopulateColumn would write at (x, z),
// from the world floor upwards. Uncovered columns yield an empty sample.
func (g *Generator) ColumnSample(x, z int) chunk.ColumnSample {
	floor := g.cfg.Settings.MinY
	s := chunk.ColumnSample{MinY: floor}

	elev, ok := g.elevationAt(x, z)
	if !ok || elev < floor {
		return s
	}
	water := g.EffectiveWaterLevel(x, z)
	top := min(max(elev, water), floor+g.cfg.Settings.Height)

	s.States = make([]chunk.State, 0, top-floor)
	for y := floor; y < top; y++ {
		if y < elev {
			s.States = append(s.States, g.blocks.block)
		} else {
			s.States = append(s.States, g.blocks.fluid)
		}
	}
	return s
}
