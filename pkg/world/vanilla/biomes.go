// Package vanilla provides reference host services for the terrain
// generator: biome selection, cave carvers, surface layers, trees and
// initial mobs.
package vanilla

import (
	"github.com/aquilax/go-perlin"

	"github.com/OCharnyshevich/atlas/pkg/world/chunk"
	"github.com/OCharnyshevich/atlas/pkg/world/gen"
)

const (
	Ocean      chunk.Biome = "minecraft:ocean"
	Beach      chunk.Biome = "minecraft:beach"
	Plains     chunk.Biome = "minecraft:plains"
	Forest     chunk.Biome = "minecraft:forest"
	DarkForest chunk.Biome = "minecraft:dark_forest"
	Taiga      chunk.Biome = "minecraft:taiga"
	SnowyTaiga chunk.Biome = "minecraft:snowy_taiga"
	Tundra     chunk.Biome = "minecraft:snowy_plains"
	Desert     chunk.Biome = "minecraft:desert"
	Savanna    chunk.Biome = "minecraft:savanna"
	Jungle     chunk.Biome = "minecraft:jungle"
	Mountains  chunk.Biome = "minecraft:windswept_hills"
)

// Biomes selects biomes from temperature and rainfall noise fields, with
// oceans, beaches and mountains decided by the terrain elevation.
type Biomes struct {
	temp *perlin.Perlin
	rain *perlin.Perlin
}

// NewBiomes creates a Biomes sampler from a seed.
func NewBiomes(seed int64) *Biomes {
	return &Biomes{
		temp: perlin.NewPerlin(2, 2, 4, seed+100),
		rain: perlin.NewPerlin(2, 2, 4, seed+200),
	}
}

// SampleBiome implements gen.BiomeSampler.
func (b *Biomes) SampleBiome(x, z int, t gen.Terrain) chunk.Biome {
	if elev := t.Elevation(x, z); elev != gen.OutOfRange {
		sea := t.SeaLevel()
		switch {
		case elev < sea-4:
			return Ocean
		case elev < sea+2:
			return Beach
		case elev > sea+64:
			return Mountains
		}
	}

	// Large-scale climate, centred so most of the world is temperate.
	tx := float64(x) / 512.0
	tz := float64(z) / 512.0
	temp := b.temp.Noise2D(tx, tz)*0.8 + 0.75
	rain := b.rain.Noise2D(tx+100, tz+100)*0.5 + 0.5
	return selectBiome(temp, rain)
}

// selectBiome maps temperature and rainfall to a biome.
//
//	Temp\Rain     | Dry (<0.3)  | Medium (0.3-0.6) | Wet (>0.6)
//	Cold <0.3     | Tundra      | Snowy Taiga      | Taiga
//	Mild 0.3-0.7  | Plains      | Forest           | Dark Forest
//	Warm 0.7-1.2  | Savanna     | Plains           | Jungle
//	Hot >1.2      | Desert      | Desert           | Jungle
func selectBiome(temp, rain float64) chunk.Biome {
	switch {
	case temp < 0.3:
		switch {
		case rain < 0.3:
			return Tundra
		case rain < 0.6:
			return SnowyTaiga
		default:
			return Taiga
		}
	case temp < 0.7:
		switch {
		case rain < 0.3:
			return Plains
		case rain < 0.6:
			return Forest
		default:
			return DarkForest
		}
	case temp < 1.2:
		switch {
		case rain < 0.3:
			return Savanna
		case rain < 0.6:
			return Plains
		default:
			return Jungle
		}
	default:
		if rain > 0.6 {
			return Jungle
		}
		return Desert
	}
}

func snowy(b chunk.Biome) bool {
	return b == Tundra || b == SnowyTaiga
}
