// Package world keeps generated chunks in memory and hands them out at the
// generation status callers ask for.
package world

import (
	"cmp"
	"context"
	"io"
	"log/slog"
	"slices"
	"sync"

	"github.com/OCharnyshevich/atlas/pkg/world/chunk"
	"github.com/OCharnyshevich/atlas/pkg/world/gen"
	"github.com/OCharnyshevich/atlas/pkg/world/pipeline"
)

// Store owns every chunk of one dimension and drives each through the
// generation pipeline on demand. It implements area.Provider.
type Store struct {
	gen  *gen.Generator
	orch *pipeline.Orchestrator
	log  *slog.Logger

	mu      sync.RWMutex
	entries map[chunk.Pos]*entry
}

// entry serialises stage work on one chunk. The lock is held for a single
// stage at a time, so a chunk waiting on its neighbours never keeps them
// from advancing.
type entry struct {
	mu sync.Mutex
	c  *chunk.Chunk
}

// NewStore creates an empty store. Stage bodies run on exec.
func NewStore(g *gen.Generator, exec pipeline.Executor, seed int64, log *slog.Logger) *Store {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Store{
		gen:     g,
		log:     log,
		entries: make(map[chunk.Pos]*entry),
	}
	s.orch = pipeline.New(g, exec, s, seed, log)
	return s
}

// Chunk returns the chunk at pos once it has reached status, generating it
// as far as needed.
func (s *Store) Chunk(ctx context.Context, pos chunk.Pos, status chunk.Status) (*chunk.Chunk, error) {
	e := s.entry(pos)
	for e.c.Status() < status {
		if err := s.step(ctx, e, status); err != nil {
			return nil, err
		}
	}
	return e.c, nil
}

func (s *Store) step(ctx context.Context, e *entry, target chunk.Status) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	cur := e.c.Status()
	if cur >= target {
		return nil
	}
	return s.orch.Step(ctx, e.c, cur.Next())
}

// entry returns the entry for pos, creating it if needed.
func (s *Store) entry(pos chunk.Pos) *entry {
	s.mu.RLock()
	e, ok := s.entries[pos]
	s.mu.RUnlock()
	if ok {
		return e
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Double-check after acquiring write lock.
	if e, ok := s.entries[pos]; ok {
		return e
	}
	e = &entry{c: s.gen.NewChunk(pos)}
	s.entries[pos] = e
	return e
}

// Block returns the block at world (x, y, z) from a finished chunk. ok is
// false for chunks still in the pipeline, whose blocks may be changing.
func (s *Store) Block(x, y, z int) (state chunk.State, ok bool) {
	s.mu.RLock()
	e, found := s.entries[chunk.PosOf(x, z)]
	s.mu.RUnlock()
	if !found || e.c.Status() < chunk.Done {
		return chunk.Air, false
	}
	return e.c.Block(x&0xF, y, z&0xF), true
}

// Chunks returns every chunk at or past status, ordered by Z then X.
func (s *Store) Chunks(status chunk.Status) []*chunk.Chunk {
	s.mu.RLock()
	out := make([]*chunk.Chunk, 0, len(s.entries))
	for _, e := range s.entries {
		if e.c.Status() >= status {
			out = append(out, e.c)
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b *chunk.Chunk) int {
		return cmp.Or(cmp.Compare(a.Pos().Z, b.Pos().Z), cmp.Compare(a.Pos().X, b.Pos().X))
	})
	return out
}

// Len returns how many chunks the store holds at any status.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// SpawnHeight returns the Y a player would stand on at the world origin.
func (s *Store) SpawnHeight() int {
	return s.gen.Height(0, 0, chunk.MotionBlocking)
}
