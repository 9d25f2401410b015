package gen

import "github.com/OCharnyshevich/atlas/pkg/world/chunk"

// PopulateColumn fills every column of c: the default block from the world
// floor up to the elevation, then the default fluid up to the effective
// water level. Columns outside the elevation map are left untouched.
//
// Cells a carver removed and cells already holding a block are skipped, so
// earlier stages survive; on an empty chunk the result depends only on the
// maps and the config, and filling twice changes nothing.
func (g *Generator) PopulateColumn(c *chunk.Chunk) {
	pos := c.Pos()
	for z := 0; z < chunk.Width; z++ {
		for x := 0; x < chunk.Width; x++ {
			g.fillColumn(c, x, z, pos.StartX()+x, pos.StartZ()+z)
		}
	}
}

func (g *Generator) fillColumn(c *chunk.Chunk, x, z, wx, wz int) {
	floor := g.cfg.Settings.MinY
	elev, ok := g.elevationAt(wx, wz)
	if !ok || elev < floor {
		return
	}
	water := g.EffectiveWaterLevel(wx, wz)

	put := func(y int, s chunk.State) {
		if c.Carved(x, y, z) || !c.Block(x, y, z).IsAir() {
			return
		}
		c.SetBlock(x, y, z, s)
	}

	top := min(elev, c.TopY())
	for y := floor; y < top; y++ {
		put(y, g.blocks.block)
	}

	// Heights never pass the last block of the chunk.
	surface := min(elev, c.TopY()-1)
	if elev < water && elev < c.TopY() {
		for y := elev; y < min(water, c.TopY()); y++ {
			put(y, g.blocks.fluid)
		}
		c.TrackHeight(chunk.WorldSurfaceWG, x, surface, z, g.blocks.fluid)
	} else {
		c.TrackHeight(chunk.WorldSurfaceWG, x, surface, z, g.blocks.block)
	}
	c.TrackHeight(chunk.OceanFloorWG, x, surface, z, g.blocks.block)
}
