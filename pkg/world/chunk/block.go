package chunk

import (
	"fmt"
	"strings"
)

// State is a block state: blockID<<4 | metadata.
type State uint16

const (
	Air          State = 0
	Stone        State = 1 << 4
	Grass        State = 2 << 4
	Dirt         State = 3 << 4
	Cobblestone  State = 4 << 4
	Bedrock      State = 7 << 4
	Water        State = 9 << 4 // stationary water
	Lava         State = 11 << 4
	Sand         State = 12 << 4
	Gravel       State = 13 << 4
	OakLog       State = 17 << 4
	SpruceLog    State = 17<<4 | 1
	BirchLog     State = 17<<4 | 2
	OakLeaves    State = 18 << 4
	SpruceLeaves State = 18<<4 | 1
	BirchLeaves  State = 18<<4 | 2
	Sandstone    State = 24 << 4
	TallGrass    State = 31<<4 | 1
	DeadBush     State = 32 << 4
	Flower       State = 38 << 4
	SnowLayer    State = 78 << 4
	Ice          State = 79 << 4
	Cactus       State = 81 << 4
	Clay         State = 82 << 4
)

var stateNames = map[State]string{
	Air:          "minecraft:air",
	Stone:        "minecraft:stone",
	Grass:        "minecraft:grass_block",
	Dirt:         "minecraft:dirt",
	Cobblestone:  "minecraft:cobblestone",
	Bedrock:      "minecraft:bedrock",
	Water:        "minecraft:water",
	Lava:         "minecraft:lava",
	Sand:         "minecraft:sand",
	Gravel:       "minecraft:gravel",
	OakLog:       "minecraft:oak_log",
	SpruceLog:    "minecraft:spruce_log",
	BirchLog:     "minecraft:birch_log",
	OakLeaves:    "minecraft:oak_leaves",
	SpruceLeaves: "minecraft:spruce_leaves",
	BirchLeaves:  "minecraft:birch_leaves",
	Sandstone:    "minecraft:sandstone",
	TallGrass:    "minecraft:short_grass",
	DeadBush:     "minecraft:dead_bush",
	Flower:       "minecraft:dandelion",
	SnowLayer:    "minecraft:snow",
	Ice:          "minecraft:ice",
	Cactus:       "minecraft:cactus",
	Clay:         "minecraft:clay",
}

var statesByName = func() map[string]State {
	m := make(map[string]State, len(stateNames))
	for s, n := range stateNames {
		m[n] = s
	}
	return m
}()

// ParseState resolves a block name such as "minecraft:stone" or "stone".
func ParseState(name string) (State, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if !strings.Contains(n, ":") {
		n = "minecraft:" + n
	}
	s, ok := statesByName[n]
	if !ok {
		return 0, fmt.Errorf("unknown block %q", name)
	}
	return s, nil
}

// Name returns the namespaced block name.
func (s State) Name() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return fmt.Sprintf("minecraft:unknown_%d_%d", s>>4, s&0xF)
}

func (s State) String() string { return s.Name() }

func (s State) IsAir() bool { return s == Air }

func (s State) IsFluid() bool { return s == Water || s == Lava }

// BlocksMotion reports whether entities collide with the block. Fluids,
// air and plants do not.
func (s State) BlocksMotion() bool {
	switch s {
	case Air, Water, Lava, TallGrass, DeadBush, Flower, SnowLayer:
		return false
	}
	return true
}
