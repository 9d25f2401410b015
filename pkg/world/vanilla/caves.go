package vanilla

import (
	"math"

	"github.com/aquilax/go-perlin"

	"github.com/OCharnyshevich/atlas/pkg/world/chunk"
	"github.com/OCharnyshevich/atlas/pkg/world/gen"
)

// lavaDepth is how far above the world floor carved cells fill with lava.
const lavaDepth = 10

// carveCell removes one cell of target. Cells near the floor become lava.
func carveCell(target *chunk.Chunk, x, y, z int) {
	if y < target.MinY()+lavaDepth {
		target.SetBlock(x, y, z, chunk.Lava)
		return
	}
	target.MarkCarved(x, y, z)
	target.SetBlock(x, y, z, chunk.Air)
}

// CheeseCaves carves wide caverns where two 3-D noise fields agree. The
// noise depends only on world coordinates, so it runs once, for the chunk
// it was configured for.
type CheeseCaves struct {
	noise1 *perlin.Perlin
	noise2 *perlin.Perlin
	// Threshold is the density above which a cell is removed.
	Threshold float64
}

// NewCheeseCaves creates a CheeseCaves carver from a seed.
func NewCheeseCaves(seed int64) *CheeseCaves {
	return &CheeseCaves{
		noise1:    perlin.NewPerlin(2, 2, 3, seed+300),
		noise2:    perlin.NewPerlin(2, 2, 3, seed+400),
		Threshold: 0.35,
	}
}

func (cg *CheeseCaves) ShouldCarve(*chunk.Random, chunk.Pos) bool { return true }

func (cg *CheeseCaves) Carve(_ *chunk.Random, target *chunk.Chunk, origin chunk.Pos, t gen.Terrain) {
	if target.Pos() != origin {
		return
	}
	for x := 0; x < chunk.Width; x++ {
		for z := 0; z < chunk.Width; z++ {
			wx := origin.StartX() + x
			wz := origin.StartZ() + z
			top := t.Elevation(wx, wz)
			if top == gen.OutOfRange {
				continue
			}
			// Keep a crust under the surface and over the floor.
			for y := target.MinY() + 4; y < top-4; y++ {
				bx, by, bz := float64(wx), float64(y), float64(wz)
				n1 := cg.noise1.Noise3D(bx/32.0, by/24.0, bz/32.0)
				n2 := cg.noise2.Noise3D(bx/48.0, by/32.0, bz/48.0)
				if (n1+n2)/2.0 > cg.Threshold {
					carveCell(target, x, y, z)
				}
			}
		}
	}
}

// WormCaves carves tunnels that wander from a random start in the origin
// chunk, up to eight chunks away.
type WormCaves struct {
	// Chance is the probability that a chunk starts a tunnel.
	Chance float64
}

// NewWormCaves returns a WormCaves carver with the default start chance.
func NewWormCaves() *WormCaves { return &WormCaves{Chance: 0.14} }

func (w *WormCaves) ShouldCarve(r *chunk.Random, _ chunk.Pos) bool {
	return r.Float64() < w.Chance
}

const (
	wormSteps     = 112
	wormMaxRadius = 3.0
)

func (w *WormCaves) Carve(r *chunk.Random, target *chunk.Chunk, origin chunk.Pos, t gen.Terrain) {
	x := float64(origin.StartX() + r.IntN(chunk.Width))
	z := float64(origin.StartZ() + r.IntN(chunk.Width))
	surface := t.Elevation(int(x), int(z))
	if surface == gen.OutOfRange || surface-8 <= target.MinY()+8 {
		return
	}
	y := float64(target.MinY() + 8 + r.IntN(surface-8-(target.MinY()+8)))

	yaw := r.Float64() * 2 * math.Pi
	pitch := (r.Float64() - 0.5) / 4
	radius := 1.5 + r.Float64()*(wormMaxRadius-1.5)

	for range wormSteps {
		carveSphere(target, x, y, z, radius)

		x += math.Cos(yaw) * math.Cos(pitch)
		z += math.Sin(yaw) * math.Cos(pitch)
		y += math.Sin(pitch)

		yaw += (r.Float64() - 0.5) * 0.5
		pitch = pitch*0.7 + (r.Float64()-0.5)*0.2
	}
}

// carveSphere removes every cell of target within radius of the world
// point (cx, cy, cz).
func carveSphere(target *chunk.Chunk, cx, cy, cz, radius float64) {
	sx, sz := float64(target.Pos().StartX()), float64(target.Pos().StartZ())
	if cx+radius < sx || cx-radius >= sx+chunk.Width || cz+radius < sz || cz-radius >= sz+chunk.Width {
		return
	}
	r2 := radius * radius
	for wx := int(math.Floor(cx - radius)); wx <= int(math.Ceil(cx+radius)); wx++ {
		lx := wx - int(sx)
		if lx < 0 || lx >= chunk.Width {
			continue
		}
		for wz := int(math.Floor(cz - radius)); wz <= int(math.Ceil(cz+radius)); wz++ {
			lz := wz - int(sz)
			if lz < 0 || lz >= chunk.Width {
				continue
			}
			for y := int(math.Floor(cy - radius)); y <= int(math.Ceil(cy+radius)); y++ {
				if y <= target.MinY()+4 {
					continue
				}
				dx := float64(wx) + 0.5 - cx
				dy := float64(y) + 0.5 - cy
				dz := float64(wz) + 0.5 - cz
				if dx*dx+dy*dy+dz*dz < r2 {
					carveCell(target, lx, y, lz)
				}
			}
		}
	}
}

// Carvers assigns carvers by biome. Oceans get tunnels only.
type Carvers struct {
	land  []gen.Carver
	ocean []gen.Carver
}

// NewCarvers returns the default carver table for seed.
func NewCarvers(seed int64) *Carvers {
	worms := NewWormCaves()
	return &Carvers{
		land:  []gen.Carver{NewCheeseCaves(seed), worms},
		ocean: []gen.Carver{worms},
	}
}

// CarversFor implements gen.CarverSet.
func (c *Carvers) CarversFor(b chunk.Biome) []gen.Carver {
	if b == Ocean {
		return c.ocean
	}
	return c.land
}
