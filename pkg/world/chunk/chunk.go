package chunk

import (
	"fmt"
	"sync/atomic"
)

const (
	// Width is the number of blocks along each horizontal edge of a chunk.
	Width = 16
	// SectionHeight is the vertical size of one section.
	SectionHeight = 16
	columns       = Width * Width
	sectionBlocks = columns * SectionHeight
)

// Pos identifies a chunk by its X and Z coordinates.
type Pos struct{ X, Z int }

// PosOf returns the chunk containing world block (x, z).
func PosOf(x, z int) Pos { return Pos{X: x >> 4, Z: z >> 4} }

// StartX returns the world X of the chunk's first column.
func (p Pos) StartX() int { return p.X << 4 }

// StartZ returns the world Z of the chunk's first column.
func (p Pos) StartZ() int { return p.Z << 4 }

// Offset returns the chunk dx, dz chunks away.
func (p Pos) Offset(dx, dz int) Pos { return Pos{X: p.X + dx, Z: p.Z + dz} }

func (p Pos) String() string { return fmt.Sprintf("[%d, %d]", p.X, p.Z) }

// Biome is a namespaced biome name, e.g. "minecraft:plains".
type Biome string

// Section holds block data for a 16×16×16 vertical slice of a chunk.
// Index = y*256 + z*16 + x.
type Section struct {
	Blocks [sectionBlocks]State
}

// Entity is a mob or object spawned into a chunk during population.
type Entity struct {
	Type    string
	X, Y, Z float64
}

// Chunk is one 16-block-wide column of the world from MinY up to
// MinY+Height. A chunk is owned by the goroutine generating it; other
// goroutines may read its biomes once Status reports BiomesPopulated.
type Chunk struct {
	pos      Pos
	minY     int
	height   int
	sections []*Section // nil = all-air
	biomes   [columns]Biome

	heightmaps [heightmapKinds]*Heightmap
	carved     []uint64
	entities   []Entity

	status atomic.Uint32
}

// New allocates an empty chunk covering [minY, minY+height). height is
// rounded up to a whole number of sections.
func New(pos Pos, minY, height int) *Chunk {
	if height <= 0 {
		height = SectionHeight
	}
	n := (height + SectionHeight - 1) / SectionHeight
	c := &Chunk{
		pos:      pos,
		minY:     minY,
		height:   n * SectionHeight,
		sections: make([]*Section, n),
		carved:   make([]uint64, (columns*n*SectionHeight+63)/64),
	}
	for k := range c.heightmaps {
		c.heightmaps[k] = newHeightmap(HeightmapKind(k), minY)
	}
	return c
}

func (c *Chunk) Pos() Pos       { return c.pos }
func (c *Chunk) MinY() int      { return c.minY }
func (c *Chunk) Height() int    { return c.height }
func (c *Chunk) TopY() int      { return c.minY + c.height }
func (c *Chunk) Status() Status { return Status(c.status.Load()) }

// SetStatus publishes the chunk's generation progress.
func (c *Chunk) SetStatus(s Status) { c.status.Store(uint32(s)) }

// Sections returns the section slice, bottom first. Entries may be nil.
func (c *Chunk) Sections() []*Section { return c.sections }

// InRange reports whether world y lies inside the chunk.
func (c *Chunk) InRange(y int) bool {
	return y >= c.minY && y < c.minY+c.height
}

// SetBlock sets a block state at local x, z (0..15) and world y. Writes
// outside the vertical range are dropped.
func (c *Chunk) SetBlock(x, y, z int, state State) {
	if !c.InRange(y) {
		return
	}
	ly := y - c.minY
	sec := ly >> 4
	if c.sections[sec] == nil {
		if state == Air {
			return
		}
		c.sections[sec] = &Section{}
	}
	c.sections[sec].Blocks[(ly&0xF)*256+z*16+x] = state
}

// Block returns the block state at local x, z and world y.
func (c *Chunk) Block(x, y, z int) State {
	if !c.InRange(y) {
		return Air
	}
	ly := y - c.minY
	sec := c.sections[ly>>4]
	if sec == nil {
		return Air
	}
	return sec.Blocks[(ly&0xF)*256+z*16+x]
}

// SetBiome sets the biome at local x, z.
func (c *Chunk) SetBiome(x, z int, b Biome) { c.biomes[z*16+x] = b }

// Biome returns the biome at local x, z.
func (c *Chunk) Biome(x, z int) Biome { return c.biomes[z*16+x] }

// Heightmap returns the chunk's heightmap of the given kind.
func (c *Chunk) Heightmap(kind HeightmapKind) *Heightmap {
	return c.heightmaps[kind]
}

// TrackHeight records that state was written at (x, y, z) in the heightmap
// of the given kind. When the previous top block stops matching, the column
// is rescanned downwards.
func (c *Chunk) TrackHeight(kind HeightmapKind, x, y, z int, state State) bool {
	hm := c.heightmaps[kind]
	if hm.trackUpdate(x, y, z, state) {
		return true
	}
	if kind.Matches(state) || hm.Get(x, z)-1 != y {
		return false
	}
	for yy := y - 1; yy >= c.minY; yy-- {
		if kind.Matches(c.Block(x, yy, z)) {
			hm.Set(x, z, yy+1)
			return true
		}
	}
	hm.Set(x, z, c.minY)
	return true
}

// PrimeHeightmaps recomputes the given heightmaps from the blocks.
func (c *Chunk) PrimeHeightmaps(kinds ...HeightmapKind) {
	for _, k := range kinds {
		hm := c.heightmaps[k]
		for z := 0; z < Width; z++ {
			for x := 0; x < Width; x++ {
				top := c.minY
				for y := c.TopY() - 1; y >= c.minY; y-- {
					if k.Matches(c.Block(x, y, z)) {
						top = y + 1
						break
					}
				}
				hm.Set(x, z, top)
			}
		}
	}
}

// MarkCarved flags the cell as removed by a carver.
func (c *Chunk) MarkCarved(x, y, z int) {
	if !c.InRange(y) {
		return
	}
	i := c.cellIndex(x, y, z)
	c.carved[i>>6] |= 1 << (i & 63)
}

// Carved reports whether a carver removed the cell.
func (c *Chunk) Carved(x, y, z int) bool {
	if !c.InRange(y) {
		return false
	}
	i := c.cellIndex(x, y, z)
	return c.carved[i>>6]&(1<<(i&63)) != 0
}

func (c *Chunk) cellIndex(x, y, z int) int {
	return (y-c.minY)*columns + z*16 + x
}

// AddEntity records an entity spawned in the chunk.
func (c *Chunk) AddEntity(e Entity) { c.entities = append(c.entities, e) }

// Entities returns the entities spawned so far.
func (c *Chunk) Entities() []Entity { return c.entities }
