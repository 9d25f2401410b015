package vanilla

import (
	"github.com/OCharnyshevich/atlas/pkg/world/area"
	"github.com/OCharnyshevich/atlas/pkg/world/chunk"
	"github.com/OCharnyshevich/atlas/pkg/world/gen"
)

// Trees places trees and vegetation per biome. Everything is clipped to
// the chunk being populated.
type Trees struct{}

// NewTrees creates a Trees placer.
func NewTrees() *Trees { return &Trees{} }

// PlaceStructures implements gen.StructurePlacer.
func (tg *Trees) PlaceStructures(r *chunk.Random, _ *area.View, c *chunk.Chunk, t gen.Terrain) {
	// Tree density follows the biome at the chunk centre.
	count := treesForBiome(c.Biome(8, 8))
	for range count {
		x := r.IntN(chunk.Width)
		z := r.IntN(chunk.Width)
		top, ok := grassTop(c, x, z, t)
		if !ok {
			continue
		}
		tg.placeTree(c, x, top+1, z, c.Biome(x, z), r)
	}

	tg.placeVegetation(c, r, t)
}

// surfaceTop returns the Y of the column's top solid block when it is dry
// land.
func surfaceTop(c *chunk.Chunk, x, z int, t gen.Terrain) (int, bool) {
	pos := c.Pos()
	wx, wz := pos.StartX()+x, pos.StartZ()+z
	elev := t.Elevation(wx, wz)
	if elev == gen.OutOfRange || elev <= t.EffectiveWaterLevel(wx, wz) || elev >= c.TopY()-1 {
		return 0, false
	}
	return elev - 1, true
}

func grassTop(c *chunk.Chunk, x, z int, t gen.Terrain) (int, bool) {
	y, ok := surfaceTop(c, x, z, t)
	if !ok || c.Block(x, y, z) != chunk.Grass {
		return 0, false
	}
	return y, true
}

func treesForBiome(b chunk.Biome) int {
	switch b {
	case Desert, Ocean, Beach:
		return 0
	case Plains, Savanna:
		return 1
	case Tundra, SnowyTaiga:
		return 4
	case Taiga:
		return 6
	case Forest:
		return 8
	case DarkForest:
		return 10
	case Jungle:
		return 12
	default:
		return 2
	}
}

func (tg *Trees) placeTree(c *chunk.Chunk, x, baseY, z int, b chunk.Biome, r *chunk.Random) {
	switch b {
	case Taiga, SnowyTaiga:
		tg.placeSpruce(c, x, baseY, z, r)
	case Forest, DarkForest:
		if r.IntN(3) == 0 {
			tg.placeRound(c, x, baseY, z, 5+r.IntN(2), chunk.BirchLog, chunk.BirchLeaves, r)
		} else {
			tg.placeRound(c, x, baseY, z, 4+r.IntN(3), chunk.OakLog, chunk.OakLeaves, r)
		}
	default:
		tg.placeRound(c, x, baseY, z, 4+r.IntN(3), chunk.OakLog, chunk.OakLeaves, r)
	}
}

// placeRound places an oak-shaped tree: a trunk under a two-wide canopy
// that narrows at the top.
func (tg *Trees) placeRound(c *chunk.Chunk, x, baseY, z, trunkHeight int, log, leaves chunk.State, r *chunk.Random) {
	if baseY+trunkHeight+2 > c.TopY() {
		return
	}
	for y := baseY; y < baseY+trunkHeight; y++ {
		setIfInBounds(c, x, y, z, log)
	}

	leafBase := baseY + trunkHeight - 2
	for dy := 0; dy < 4; dy++ {
		y := leafBase + dy
		radius := 2
		if dy >= 2 {
			radius = 1
		}
		for dx := -radius; dx <= radius; dx++ {
			for dz := -radius; dz <= radius; dz++ {
				lx, lz := x+dx, z+dz
				if !inChunk(lx, lz) {
					continue
				}
				// Skip corners for a rounder canopy.
				if radius == 2 && abs(dx) == 2 && abs(dz) == 2 && r.IntN(2) == 0 {
					continue
				}
				if c.Block(lx, y, lz).IsAir() {
					c.SetBlock(lx, y, lz, leaves)
				}
			}
		}
	}
}

// placeSpruce places a conical spruce.
func (tg *Trees) placeSpruce(c *chunk.Chunk, x, baseY, z int, r *chunk.Random) {
	trunkHeight := 6 + r.IntN(4)
	if baseY+trunkHeight+1 > c.TopY() {
		return
	}
	for y := baseY; y < baseY+trunkHeight; y++ {
		setIfInBounds(c, x, y, z, chunk.SpruceLog)
	}

	for dy := 1; dy <= trunkHeight; dy++ {
		y := baseY + dy
		radius := min((trunkHeight-dy)/2, 3)
		if radius <= 0 && dy < trunkHeight {
			continue
		}
		// Every other row on the wide part.
		if radius >= 2 && dy%2 == 0 {
			continue
		}
		for dx := -radius; dx <= radius; dx++ {
			for dz := -radius; dz <= radius; dz++ {
				lx, lz := x+dx, z+dz
				if !inChunk(lx, lz) || (dx == 0 && dz == 0) {
					continue
				}
				if c.Block(lx, y, lz).IsAir() {
					c.SetBlock(lx, y, lz, chunk.SpruceLeaves)
				}
			}
		}
	}
	c.SetBlock(x, baseY+trunkHeight, z, chunk.SpruceLeaves)
}

// placeVegetation scatters grass, flowers, cacti and dead bushes.
func (tg *Trees) placeVegetation(c *chunk.Chunk, r *chunk.Random, t gen.Terrain) {
	for range 20 {
		x := r.IntN(chunk.Width)
		z := r.IntN(chunk.Width)
		y, ok := surfaceTop(c, x, z, t)
		if !ok || !c.Block(x, y+1, z).IsAir() {
			continue
		}
		top := c.Block(x, y, z)

		switch c.Biome(x, z) {
		case Desert:
			if top != chunk.Sand {
				continue
			}
			if r.IntN(8) == 0 {
				h := 1 + r.IntN(3)
				for dy := 1; dy <= h; dy++ {
					c.SetBlock(x, y+dy, z, chunk.Cactus)
				}
			} else if r.IntN(4) == 0 {
				c.SetBlock(x, y+1, z, chunk.DeadBush)
			}

		case Plains, Forest, DarkForest, Savanna, Jungle:
			if top != chunk.Grass {
				continue
			}
			if r.IntN(3) == 0 {
				c.SetBlock(x, y+1, z, chunk.TallGrass)
			} else if r.IntN(8) == 0 {
				c.SetBlock(x, y+1, z, chunk.Flower)
			}

		case Taiga:
			if top == chunk.Grass && r.IntN(6) == 0 {
				c.SetBlock(x, y+1, z, chunk.TallGrass)
			}
		}
	}
}

func setIfInBounds(c *chunk.Chunk, x, y, z int, s chunk.State) {
	if inChunk(x, z) && c.InRange(y) {
		c.SetBlock(x, y, z, s)
	}
}

func inChunk(x, z int) bool {
	return x >= 0 && x < chunk.Width && z >= 0 && z < chunk.Width
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
