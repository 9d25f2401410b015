package storage

import "time"

// Manifest describes a pregenerated world: where its terrain came from and
// what was exported.
type Manifest struct {
	LevelName   string      `json:"level_name"`
	Seed        int64       `json:"seed"`
	Generator   string      `json:"generator"`
	HeightMap   string      `json:"height_map"`
	Aquifer     string      `json:"aquifer,omitempty"`
	BiomeSource string      `json:"biome_source"`
	Terrain     TerrainData `json:"terrain"`
	Spawn       SpawnData   `json:"spawn"`
	Radius      int         `json:"radius"`
	Chunks      int         `json:"chunks"`
	Regions     int         `json:"regions"`
	GeneratedAt time.Time   `json:"generated_at"`
}

// TerrainData holds the vertical layout the chunks were generated with.
type TerrainData struct {
	SeaLevel  int `json:"sea_level"`
	MinY      int `json:"min_y"`
	Height    int `json:"height"`
	StartingY int `json:"starting_y"`
}

// SpawnData is the world spawn point.
type SpawnData struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}
