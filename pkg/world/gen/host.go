package gen

import (
	"github.com/OCharnyshevich/atlas/pkg/world/area"
	"github.com/OCharnyshevich/atlas/pkg/world/chunk"
)

// Terrain is the read-only view of the generator handed to host services.
type Terrain interface {
	Elevation(x, z int) int
	EffectiveWaterLevel(x, z int) int
	SeaLevel() int
	MinimumY() int
}

// BiomeSampler assigns a biome to a world column.
type BiomeSampler interface {
	SampleBiome(x, z int, t Terrain) chunk.Biome
}

// Carver removes terrain around a chunk. origin is the chunk the carver was
// configured for; target is the chunk being written, somewhere within eight
// chunks of origin.
type Carver interface {
	ShouldCarve(r *chunk.Random, origin chunk.Pos) bool
	Carve(r *chunk.Random, target *chunk.Chunk, origin chunk.Pos, t Terrain)
}

// CarverSet resolves the carvers configured for a biome.
type CarverSet interface {
	CarversFor(b chunk.Biome) []Carver
}

// SurfaceBuilder replaces the top layers of a chunk with biome blocks.
type SurfaceBuilder interface {
	BuildSurface(c *chunk.Chunk, t Terrain)
}

// StructurePlacer places features such as trees into the centre chunk of
// view.
type StructurePlacer interface {
	PlaceStructures(r *chunk.Random, view *area.View, c *chunk.Chunk, t Terrain)
}

// EntityPopulator spawns the initial mobs of a chunk.
type EntityPopulator interface {
	PopulateEntities(r *chunk.Random, c *chunk.Chunk, t Terrain)
}

// Services are the host capabilities the generator delegates to. Nil
// members fall back to defaults that leave the chunk untouched, except
// Biomes, which falls back to FixedBiome built from the config's
// biome_source.
type Services struct {
	Biomes     BiomeSampler
	Carvers    CarverSet
	Surface    SurfaceBuilder
	Structures StructurePlacer
	Entities   EntityPopulator
}

// FixedBiome assigns the same biome everywhere.
type FixedBiome chunk.Biome

func (f FixedBiome) SampleBiome(int, int, Terrain) chunk.Biome { return chunk.Biome(f) }

// DefaultBiome is used when biome_source names no biome.
const DefaultBiome chunk.Biome = "minecraft:plains"

type noCarvers struct{}

func (noCarvers) CarversFor(chunk.Biome) []Carver { return nil }

type noSurface struct{}

func (noSurface) BuildSurface(*chunk.Chunk, Terrain) {}

type noStructures struct{}

func (noStructures) PlaceStructures(*chunk.Random, *area.View, *chunk.Chunk, Terrain) {}

type noEntities struct{}

func (noEntities) PopulateEntities(*chunk.Random, *chunk.Chunk, Terrain) {}

func (s Services) withDefaults(cfg Config) Services {
	if s.Biomes == nil {
		b, _ := cfg.BiomeSource["biome"].(string)
		if b == "" {
			b = string(DefaultBiome)
		}
		s.Biomes = FixedBiome(b)
	}
	if s.Carvers == nil {
		s.Carvers = noCarvers{}
	}
	if s.Surface == nil {
		s.Surface = noSurface{}
	}
	if s.Structures == nil {
		s.Structures = noStructures{}
	}
	if s.Entities == nil {
		s.Entities = noEntities{}
	}
	return s
}
