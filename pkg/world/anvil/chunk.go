// Package anvil writes generated chunks as Anvil region files.
package anvil

import (
	"bytes"
	"fmt"
	"math/bits"

	"github.com/OCharnyshevich/atlas/pkg/world/chunk"
	"github.com/OCharnyshevich/atlas/pkg/world/nbt"
)

// DataVersion stamped into every chunk (1.20.1).
const DataVersion = 3465

const (
	minBlockBits  = 4
	quartsPerAxis = 4
)

// EncodeChunkNBT serializes c into uncompressed NBT in the paletted section
// layout used since 1.18.
func EncodeChunkNBT(c *chunk.Chunk) ([]byte, error) {
	var buf bytes.Buffer
	w := nbt.NewWriter(&buf)
	pos := c.Pos()

	w.BeginCompound("")
	w.WriteInt("DataVersion", DataVersion)
	w.WriteInt("xPos", int32(pos.X))
	w.WriteInt("zPos", int32(pos.Z))
	w.WriteInt("yPos", int32(c.MinY()>>4))
	w.WriteString("Status", "minecraft:"+c.Status().String())
	w.WriteLong("LastUpdate", 0)
	w.WriteLong("InhabitedTime", 0)

	sections := c.Sections()
	w.BeginList("sections", nbt.TagCompound, int32(len(sections)))
	for i, sec := range sections {
		w.WriteTagByte("Y", byte(int8(c.MinY()>>4+i)))
		writeBlockStates(w, sec)
		writeBiomes(w, c)
		w.EndCompound()
	}

	w.BeginCompound("Heightmaps")
	for _, kind := range chunk.HeightmapKinds() {
		w.WriteLongArray(kind.String(), packHeightmap(c, kind))
	}
	w.EndCompound()

	ents := c.Entities()
	w.BeginList("entities", nbt.TagCompound, int32(len(ents)))
	for _, e := range ents {
		w.WriteString("id", e.Type)
		w.BeginList("Pos", nbt.TagDouble, 3)
		w.ListDouble(e.X)
		w.ListDouble(e.Y)
		w.ListDouble(e.Z)
		w.EndCompound()
	}

	w.EndCompound()

	if err := w.Err(); err != nil {
		return nil, fmt.Errorf("encode chunk %s: %w", pos, err)
	}
	return buf.Bytes(), nil
}

func writeBlockStates(w *nbt.Writer, sec *chunk.Section) {
	var (
		palette []chunk.State
		indices []int
	)
	if sec == nil {
		palette = []chunk.State{chunk.Air}
	} else {
		seen := make(map[chunk.State]int)
		indices = make([]int, len(sec.Blocks))
		for i, s := range sec.Blocks {
			idx, ok := seen[s]
			if !ok {
				idx = len(palette)
				seen[s] = idx
				palette = append(palette, s)
			}
			indices[i] = idx
		}
	}

	w.BeginCompound("block_states")
	w.BeginList("palette", nbt.TagCompound, int32(len(palette)))
	for _, s := range palette {
		w.WriteString("Name", s.Name())
		w.EndCompound()
	}
	if len(palette) > 1 {
		w.WriteLongArray("data", packIndices(indices, max(minBlockBits, bitsFor(len(palette)))))
	}
	w.EndCompound()
}

// writeBiomes emits the 4x4x4 biome grid of one section. Biomes are stored
// per column, so every vertical quart of a column repeats the same entry.
func writeBiomes(w *nbt.Writer, c *chunk.Chunk) {
	var palette []chunk.Biome
	seen := make(map[chunk.Biome]int)
	indices := make([]int, quartsPerAxis*quartsPerAxis*quartsPerAxis)
	for qy := 0; qy < quartsPerAxis; qy++ {
		for qz := 0; qz < quartsPerAxis; qz++ {
			for qx := 0; qx < quartsPerAxis; qx++ {
				b := c.Biome(qx*4, qz*4)
				if b == "" {
					b = "minecraft:plains"
				}
				idx, ok := seen[b]
				if !ok {
					idx = len(palette)
					seen[b] = idx
					palette = append(palette, b)
				}
				indices[(qy*quartsPerAxis+qz)*quartsPerAxis+qx] = idx
			}
		}
	}

	w.BeginCompound("biomes")
	w.BeginList("palette", nbt.TagString, int32(len(palette)))
	for _, b := range palette {
		w.ListString(string(b))
	}
	if len(palette) > 1 {
		w.WriteLongArray("data", packIndices(indices, bitsFor(len(palette))))
	}
	w.EndCompound()
}

// packHeightmap stores column heights relative to the chunk floor, limited
// to [0, Height] so no value overflows its field.
func packHeightmap(c *chunk.Chunk, kind chunk.HeightmapKind) []int64 {
	hm := c.Heightmap(kind)
	values := make([]int, chunk.Width*chunk.Width)
	for z := 0; z < chunk.Width; z++ {
		for x := 0; x < chunk.Width; x++ {
			values[z*chunk.Width+x] = min(max(hm.Get(x, z)-c.MinY(), 0), c.Height())
		}
	}
	return packIndices(values, bitsFor(c.Height()+1))
}

// packIndices packs values into longs, lowest bits first. A value never
// spans two longs.
func packIndices(values []int, width int) []int64 {
	perLong := 64 / width
	out := make([]int64, (len(values)+perLong-1)/perLong)
	mask := uint64(1)<<width - 1
	for i, v := range values {
		shift := (i % perLong) * width
		out[i/perLong] |= int64((uint64(v) & mask) << shift)
	}
	return out
}

// bitsFor returns the bits needed to index n distinct entries.
func bitsFor(n int) int {
	if n <= 1 {
		return 0
	}
	return bits.Len(uint(n - 1))
}
