package vanilla

import "github.com/OCharnyshevich/atlas/pkg/world/gen"

// BiomeSourceType is the biome_source type that selects these services.
const BiomeSourceType = "atlas:vanilla"

// Services returns the full set of reference host services for seed.
func Services(seed int64) gen.Services {
	return gen.Services{
		Biomes:     NewBiomes(seed),
		Carvers:    NewCarvers(seed),
		Surface:    NewSurface(),
		Structures: NewTrees(),
		Entities:   NewEntities(),
	}
}
