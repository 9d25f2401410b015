package gen

import (
	"context"
	"fmt"

	"github.com/OCharnyshevich/atlas/pkg/world/area"
	"github.com/OCharnyshevich/atlas/pkg/world/chunk"
)

const (
	// CarveRadius is how many chunks away a carver may start and still
	// reach the chunk being carved.
	CarveRadius = 8
	// PopulateRadius is the neighbourhood handed to structure placement.
	PopulateRadius = 1

	// generationLimit bounds the chunk coordinates that get a surface.
	generationLimit = 1_875_000
)

// PopulateBiomes assigns a biome to every column of c.
func (g *Generator) PopulateBiomes(ctx context.Context, c *chunk.Chunk) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	pos := c.Pos()
	for z := 0; z < chunk.Width; z++ {
		for x := 0; x < chunk.Width; x++ {
			c.SetBiome(x, z, g.svc.Biomes.SampleBiome(pos.StartX()+x, pos.StartZ()+z, g))
		}
	}
	return nil
}

// Carve runs, against c, the carvers of every chunk within CarveRadius.
// Each neighbour contributes the carvers of the biome at its first column.
// view must cover c's neighbourhood at BiomesPopulated or later.
func (g *Generator) Carve(ctx context.Context, seed int64, view *area.View, c *chunk.Chunk) error {
	if view.Radius() < CarveRadius {
		return fmt.Errorf("carve %s: view radius %d, need %d", c.Pos(), view.Radius(), CarveRadius)
	}
	center := c.Pos()
	for dz := -CarveRadius; dz <= CarveRadius; dz++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		for dx := -CarveRadius; dx <= CarveRadius; dx++ {
			n := view.Chunk(center.Offset(dx, dz))
			if n == nil {
				continue
			}
			origin := n.Pos()
			for l, cv := range g.svc.Carvers.CarversFor(n.Biome(0, 0)) {
				r := chunk.CarverRandom(seed, l, origin)
				if cv.ShouldCarve(r, origin) {
					cv.Carve(r, c, origin, g)
				}
			}
		}
	}
	return nil
}

// BuildSurface applies the surface builder to c. Chunks beyond the
// generation limit are left bare.
func (g *Generator) BuildSurface(ctx context.Context, c *chunk.Chunk) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if outsideGenerationArea(c.Pos()) {
		return nil
	}
	g.svc.Surface.BuildSurface(c, g)
	return nil
}

// PopulateEntities places structures and spawns the initial mobs of the
// view's centre chunk.
func (g *Generator) PopulateEntities(ctx context.Context, seed int64, view *area.View) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c := view.Chunk(view.Center())
	if c == nil {
		return fmt.Errorf("populate %s: centre chunk missing from view", view.Center())
	}
	pos := c.Pos()
	r := chunk.PopulationRandom(seed, pos.StartX(), pos.StartZ())
	g.svc.Structures.PlaceStructures(r, view, c, g)
	g.svc.Entities.PopulateEntities(r, c, g)
	return nil
}

func outsideGenerationArea(p chunk.Pos) bool {
	return p.X < -generationLimit || p.X >= generationLimit ||
		p.Z < -generationLimit || p.Z >= generationLimit
}
