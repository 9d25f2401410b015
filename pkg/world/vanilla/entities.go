package vanilla

import (
	"github.com/OCharnyshevich/atlas/pkg/world/chunk"
	"github.com/OCharnyshevich/atlas/pkg/world/gen"
)

type spawnEntry struct {
	mob      string
	weight   int
	min, max int
}

var (
	pastureSpawns = []spawnEntry{
		{"minecraft:sheep", 12, 4, 4},
		{"minecraft:pig", 10, 4, 4},
		{"minecraft:chicken", 10, 4, 4},
		{"minecraft:cow", 8, 4, 4},
	}
	coldSpawns = []spawnEntry{
		{"minecraft:rabbit", 10, 2, 3},
		{"minecraft:wolf", 8, 4, 4},
		{"minecraft:fox", 8, 2, 4},
	}
	desertSpawns = []spawnEntry{
		{"minecraft:rabbit", 4, 2, 3},
	}
)

func spawnsFor(b chunk.Biome) []spawnEntry {
	switch b {
	case Ocean, Beach:
		return nil
	case Desert:
		return desertSpawns
	case Tundra, SnowyTaiga, Taiga:
		return coldSpawns
	default:
		return pastureSpawns
	}
}

// Entities spawns the first passive mobs of a chunk on dry land.
type Entities struct {
	// Chance is the probability that a chunk gets any spawn attempt at all.
	Chance float64
}

// NewEntities returns an Entities populator with the default spawn chance.
func NewEntities() *Entities { return &Entities{Chance: 0.1} }

// PopulateEntities implements gen.EntityPopulator.
func (e *Entities) PopulateEntities(r *chunk.Random, c *chunk.Chunk, t gen.Terrain) {
	spawns := spawnsFor(c.Biome(8, 8))
	if len(spawns) == 0 {
		return
	}
	for r.Float64() < e.Chance {
		entry := pick(spawns, r)
		n := entry.min + r.IntN(entry.max-entry.min+1)
		x, z := r.IntN(chunk.Width), r.IntN(chunk.Width)
		for range n {
			y, ok := surfaceTop(c, x, z, t)
			if ok && c.Block(x, y, z).BlocksMotion() && !c.Block(x, y+1, z).BlocksMotion() {
				c.AddEntity(chunk.Entity{
					Type: entry.mob,
					X:    float64(c.Pos().StartX()+x) + 0.5,
					Y:    float64(y + 1),
					Z:    float64(c.Pos().StartZ()+z) + 0.5,
				})
			}
			// Wander a little for the next member of the group.
			x = min(max(x+r.IntN(5)-2, 0), chunk.Width-1)
			z = min(max(z+r.IntN(5)-2, 0), chunk.Width-1)
		}
	}
}

func pick(entries []spawnEntry, r *chunk.Random) spawnEntry {
	total := 0
	for _, e := range entries {
		total += e.weight
	}
	n := r.IntN(total)
	for _, e := range entries {
		if n < e.weight {
			return e
		}
		n -= e.weight
	}
	return entries[len(entries)-1]
}
