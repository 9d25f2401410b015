// Package gen generates terrain from raster elevation and water-table maps.
package gen

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/OCharnyshevich/atlas/pkg/world/chunk"
	"github.com/OCharnyshevich/atlas/pkg/world/raster"
)

// ErrElevationUnavailable is returned by Init when the elevation map cannot
// be loaded. The generator is unusable afterwards.
var ErrElevationUnavailable = errors.New("gen: elevation map unavailable")

// Generator fills chunks from an elevation map and an optional water-table
// map. It is safe for concurrent use once Init has returned.
type Generator struct {
	cfg    Config
	blocks resolvedBlocks
	svc    Services
	log    *slog.Logger

	elevation *raster.Ref
	aquifer   *raster.Ref // nil when no aquifer is configured

	maps atomic.Pointer[loadedMaps]
}

type loadedMaps struct {
	elev       *raster.Map
	elevMapper raster.Mapper
	water      *raster.Map // nil: fall back to sea level
	waterMap   raster.Mapper
}

// New validates cfg and acquires its maps from reg without loading them.
// A nil reg means raster.Default().
func New(cfg Config, reg *raster.Registry, svc Services, log *slog.Logger) (*Generator, error) {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if reg == nil {
		reg = raster.Default()
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	blocks, err := cfg.Settings.blocks()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	g := &Generator{
		cfg:    cfg,
		blocks: blocks,
		svc:    svc.withDefaults(cfg),
		log:    log,
	}

	id, err := raster.ParseID(cfg.HeightMap)
	if err != nil {
		return nil, fmt.Errorf("%w: height_map: %v", ErrInvalidConfig, err)
	}
	if g.elevation, err = reg.Acquire(id, raster.Elevation); err != nil {
		return nil, err
	}
	if cfg.Aquifer != "" {
		id, err := raster.ParseID(cfg.Aquifer)
		if err != nil {
			return nil, fmt.Errorf("%w: aquifer: %v", ErrInvalidConfig, err)
		}
		if g.aquifer, err = reg.Acquire(id, raster.WaterTable); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// Init loads the maps. A missing or malformed elevation map is fatal; a
// failed water-table map is logged and the generator falls back to the sea
// level. levelName only labels log lines.
func (g *Generator) Init(ctx context.Context, levelName string) error {
	elev, err := g.elevation.Init(ctx)
	if err != nil {
		return fmt.Errorf("%w: dimension %s: %w", ErrElevationUnavailable, levelName, err)
	}
	lm := &loadedMaps{
		elev:       elev,
		elevMapper: raster.MapperFor(elev, g.cfg.HorizontalScale),
	}
	g.log.Info("found elevation data",
		"dimension", levelName,
		"map", elev.ID(),
		"width", elev.Width(),
		"height", elev.Height())

	if g.aquifer != nil {
		water, err := g.aquifer.Init(ctx)
		if err != nil {
			g.log.Warn("water table unavailable, using sea level",
				"dimension", levelName,
				"map", g.aquifer.ID(),
				"sea_level", g.cfg.Settings.SeaLevel,
				"error", err)
		} else {
			lm.water = water
			lm.waterMap = raster.MapperFor(water, g.cfg.HorizontalScale)
			g.log.Info("found water table data",
				"dimension", levelName,
				"map", water.ID(),
				"width", water.Width(),
				"height", water.Height())
		}
	}
	g.maps.Store(lm)
	return nil
}

// Config returns the normalised configuration.
func (g *Generator) Config() Config { return g.cfg }

func (g *Generator) SeaLevel() int    { return g.cfg.Settings.SeaLevel }
func (g *Generator) MinimumY() int    { return g.cfg.Settings.MinY }
func (g *Generator) WorldHeight() int { return g.cfg.Settings.Height }
func (g *Generator) StartingY() int   { return g.cfg.StartingY }

// NewChunk allocates an empty chunk spanning the configured world height.
func (g *Generator) NewChunk(pos chunk.Pos) *chunk.Chunk {
	return chunk.New(pos, g.cfg.Settings.MinY, g.cfg.Settings.Height)
}
