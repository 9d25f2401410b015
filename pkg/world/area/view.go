// Package area provides bounded, read-only windows of neighbouring chunks.
package area

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/OCharnyshevich/atlas/pkg/world/chunk"
)

// loadLimit caps concurrent neighbour requests per view.
const loadLimit = 16

// Provider hands out chunks that have reached at least a given status,
// generating them if needed. Implementations block until the chunk is ready.
type Provider interface {
	Chunk(ctx context.Context, pos chunk.Pos, status chunk.Status) (*chunk.Chunk, error)
}

// View is a square of chunks centred on one chunk. Chunks other than the
// centre may still be advancing through later stages; callers only rely on
// the status the view was loaded with.
type View struct {
	center chunk.Pos
	radius int
	status chunk.Status
	chunks []*chunk.Chunk
}

// Load requests every chunk within radius of center at status or later.
func Load(ctx context.Context, p Provider, center chunk.Pos, radius int, status chunk.Status) (*View, error) {
	if radius < 0 {
		return nil, fmt.Errorf("area: negative radius %d", radius)
	}
	side := 2*radius + 1
	v := &View{
		center: center,
		radius: radius,
		status: status,
		chunks: make([]*chunk.Chunk, side*side),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(loadLimit)
	for dz := -radius; dz <= radius; dz++ {
		for dx := -radius; dx <= radius; dx++ {
			i := v.index(dx, dz)
			pos := center.Offset(dx, dz)
			g.Go(func() error {
				c, err := p.Chunk(gctx, pos, status)
				if err != nil {
					return fmt.Errorf("load neighbour %s: %w", pos, err)
				}
				v.chunks[i] = c
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return v, nil
}

// FromChunks builds a view over chunks already in hand. Positions outside
// the window are ignored; missing ones read as nil.
func FromChunks(center chunk.Pos, radius int, status chunk.Status, chunks ...*chunk.Chunk) *View {
	side := 2*radius + 1
	v := &View{center: center, radius: radius, status: status, chunks: make([]*chunk.Chunk, side*side)}
	for _, c := range chunks {
		dx, dz := c.Pos().X-center.X, c.Pos().Z-center.Z
		if v.contains(dx, dz) {
			v.chunks[v.index(dx, dz)] = c
		}
	}
	return v
}

func (v *View) Center() chunk.Pos    { return v.center }
func (v *View) Radius() int          { return v.radius }
func (v *View) Status() chunk.Status { return v.status }

// Chunk returns the chunk at pos, or nil when pos lies outside the view.
func (v *View) Chunk(pos chunk.Pos) *chunk.Chunk {
	dx, dz := pos.X-v.center.X, pos.Z-v.center.Z
	if !v.contains(dx, dz) {
		return nil
	}
	return v.chunks[v.index(dx, dz)]
}

// Each calls fn for every chunk in the view, row by row.
func (v *View) Each(fn func(*chunk.Chunk)) {
	for _, c := range v.chunks {
		if c != nil {
			fn(c)
		}
	}
}

func (v *View) contains(dx, dz int) bool {
	return dx >= -v.radius && dx <= v.radius && dz >= -v.radius && dz <= v.radius
}

func (v *View) index(dx, dz int) int {
	side := 2*v.radius + 1
	return (dz+v.radius)*side + dx + v.radius
}
