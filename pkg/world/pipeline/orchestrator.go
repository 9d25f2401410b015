// Package pipeline drives chunks through the generation stages.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/OCharnyshevich/atlas/pkg/world/area"
	"github.com/OCharnyshevich/atlas/pkg/world/chunk"
	"github.com/OCharnyshevich/atlas/pkg/world/gen"
)

// ErrStageOrder is returned when a stage is requested for a chunk that has
// not completed the stage before it.
var ErrStageOrder = errors.New("pipeline: stage out of order")

// Orchestrator runs the stages of one chunk at a time on an Executor.
// Neighbour chunks are fetched from the Provider on the calling goroutine,
// never on a worker, so workers only ever run stage bodies.
type Orchestrator struct {
	gen      *gen.Generator
	exec     Executor
	provider area.Provider
	seed     int64
	log      *slog.Logger
}

// New returns an Orchestrator. provider is consulted for the neighbourhoods
// of the carving and population stages.
func New(g *gen.Generator, exec Executor, provider area.Provider, seed int64, log *slog.Logger) *Orchestrator {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Orchestrator{gen: g, exec: exec, provider: provider, seed: seed, log: log}
}

// Advance runs stages until c reaches target. A chunk already at or past
// target is left alone.
func (o *Orchestrator) Advance(ctx context.Context, c *chunk.Chunk, target chunk.Status) error {
	for c.Status() < target {
		if err := o.Step(ctx, c, c.Status().Next()); err != nil {
			return err
		}
	}
	return nil
}

// Step runs a single stage. stage must directly follow c's status.
func (o *Orchestrator) Step(ctx context.Context, c *chunk.Chunk, stage chunk.Status) error {
	if cur := c.Status(); stage != cur.Next() || cur == chunk.Done {
		return fmt.Errorf("%w: chunk %s is %s, asked for %s", ErrStageOrder, c.Pos(), cur, stage)
	}

	task, err := o.prepare(ctx, c, stage)
	if err != nil {
		o.log.Error("prepare stage", "chunk", c.Pos(), "stage", stage, "error", err)
		return fmt.Errorf("chunk %s stage %s: %w", c.Pos(), stage, err)
	}
	// The task owns c until it returns, even when ctx is cancelled first.
	fut := o.exec.Submit(task)
	waitErr := fut.Wait(ctx)
	if err := fut.Wait(context.WithoutCancel(ctx)); err != nil {
		o.log.Error("run stage", "chunk", c.Pos(), "stage", stage, "error", err)
		return fmt.Errorf("chunk %s stage %s: %w", c.Pos(), stage, err)
	}
	c.SetStatus(stage)
	if waitErr != nil {
		return fmt.Errorf("chunk %s stage %s: %w", c.Pos(), stage, waitErr)
	}
	return nil
}

// prepare gathers what stage needs and returns the task to run on a worker.
func (o *Orchestrator) prepare(ctx context.Context, c *chunk.Chunk, stage chunk.Status) (func() error, error) {
	switch stage {
	case chunk.BiomesPopulated:
		return func() error { return o.gen.PopulateBiomes(ctx, c) }, nil

	case chunk.Carved:
		view, err := area.Load(ctx, o.around(c), c.Pos(), gen.CarveRadius, chunk.BiomesPopulated)
		if err != nil {
			return nil, err
		}
		return func() error { return o.gen.Carve(ctx, o.seed, view, c) }, nil

	case chunk.SurfaceBuilt:
		return func() error { return o.gen.BuildSurface(ctx, c) }, nil

	case chunk.Filled:
		return func() error {
			o.gen.PopulateColumn(c)
			return nil
		}, nil

	case chunk.EntitiesPopulated:
		view, err := area.Load(ctx, o.around(c), c.Pos(), gen.PopulateRadius, chunk.Filled)
		if err != nil {
			return nil, err
		}
		return func() error { return o.gen.PopulateEntities(ctx, o.seed, view) }, nil

	case chunk.Done:
		return func() error {
			c.PrimeHeightmaps(chunk.WorldSurface, chunk.OceanFloor, chunk.MotionBlocking)
			return nil
		}, nil
	}
	return nil, fmt.Errorf("%w: unknown stage %d", ErrStageOrder, stage)
}

// around serves c itself and defers every other position to the provider.
func (o *Orchestrator) around(c *chunk.Chunk) area.Provider {
	return selfProvider{Provider: o.provider, self: c}
}

type selfProvider struct {
	area.Provider
	self *chunk.Chunk
}

func (p selfProvider) Chunk(ctx context.Context, pos chunk.Pos, status chunk.Status) (*chunk.Chunk, error) {
	if pos == p.self.Pos() {
		return p.self, nil
	}
	return p.Provider.Chunk(ctx, pos, status)
}
