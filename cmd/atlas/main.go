package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/OCharnyshevich/atlas/internal/config"
	"github.com/OCharnyshevich/atlas/internal/storage"
	"github.com/OCharnyshevich/atlas/internal/world"
	"github.com/OCharnyshevich/atlas/pkg/world/anvil"
	"github.com/OCharnyshevich/atlas/pkg/world/chunk"
	"github.com/OCharnyshevich/atlas/pkg/world/gen"
	"github.com/OCharnyshevich/atlas/pkg/world/pipeline"
	"github.com/OCharnyshevich/atlas/pkg/world/raster"
	"github.com/OCharnyshevich/atlas/pkg/world/vanilla"
)

func main() {
	cfg := config.DefaultConfig()

	flag.StringVar(&cfg.ResourceDir, "resources", cfg.ResourceDir, "root of the atlas resource tree")
	flag.StringVar(&cfg.ResourceSource, "fetch", cfg.ResourceSource, "go-getter address to download resources from")
	flag.StringVar(&cfg.CacheDir, "cache", cfg.CacheDir, "decoded raster cache directory (empty disables)")
	flag.StringVar(&cfg.Generator, "generator", cfg.Generator, "generator document (YAML or JSON)")
	flag.StringVar(&cfg.LevelName, "level", cfg.LevelName, "dimension name")
	flag.Int64Var(&cfg.Seed, "seed", cfg.Seed, "world seed")
	flag.IntVar(&cfg.Radius, "radius", cfg.Radius, "pregenerate chunks within this many chunks of the origin")
	flag.IntVar(&cfg.Workers, "workers", cfg.Workers, "generation workers")
	flag.StringVar(&cfg.OutputDir, "out", cfg.OutputDir, "output directory")
	flag.Parse()

	explicit := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { explicit[f.Name] = true })

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, explicit, log); err != nil {
		log.Error("pregeneration failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, explicit map[string]bool, log *slog.Logger) error {
	store, err := storage.New(cfg.OutputDir, log)
	if err != nil {
		return err
	}
	fromFile := *cfg
	loaded, err := store.LoadConfig(&fromFile)
	if err != nil {
		return err
	}
	if loaded {
		config.Merge(cfg, &fromFile, explicit)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := store.SaveConfig(cfg); err != nil {
		return err
	}

	if cfg.ResourceSource != "" {
		log.Info("fetching resources", "source", cfg.ResourceSource, "dir", cfg.ResourceDir)
		if err := raster.Fetch(ctx, cfg.ResourceSource, cfg.ResourceDir); err != nil {
			return err
		}
	}

	images := raster.NewImageLoader(cfg.ResourceDir)
	var loader raster.Loader = images
	if cfg.CacheDir != "" {
		loader = raster.NewCachedLoader(images, cfg.CacheDir, log)
	}
	raster.SetDefault(raster.NewRegistry(loader))

	genCfg, err := gen.LoadConfig(cfg.Generator)
	if err != nil {
		return err
	}
	var svc gen.Services
	if genCfg.BiomeSourceType() == vanilla.BiomeSourceType {
		svc = vanilla.Services(cfg.Seed)
	}
	g, err := gen.New(genCfg, nil, svc, log)
	if err != nil {
		return err
	}
	if err := g.Init(ctx, cfg.LevelName); err != nil {
		return err
	}

	pool := pipeline.NewPool(cfg.Workers)
	defer pool.Close()
	chunks := world.NewStore(g, pool, cfg.Seed, log)

	start := time.Now()
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(cfg.Workers)
	for z := -cfg.Radius; z <= cfg.Radius; z++ {
		for x := -cfg.Radius; x <= cfg.Radius; x++ {
			pos := chunk.Pos{X: x, Z: z}
			eg.Go(func() error {
				_, err := chunks.Chunk(egCtx, pos, chunk.Done)
				return err
			})
		}
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	done := chunks.Chunks(chunk.Done)
	log.Info("pregenerated chunks",
		"dimension", cfg.LevelName,
		"chunks", len(done),
		"loaded", chunks.Len(),
		"elapsed", time.Since(start).Round(time.Millisecond))

	regions, err := anvil.ExportChunks(store.RegionDir(), done)
	if err != nil {
		return err
	}

	return store.SaveManifest(&storage.Manifest{
		LevelName:   cfg.LevelName,
		Seed:        cfg.Seed,
		Generator:   cfg.Generator,
		HeightMap:   genCfg.HeightMap,
		Aquifer:     genCfg.Aquifer,
		BiomeSource: genCfg.BiomeSourceType(),
		Terrain: storage.TerrainData{
			SeaLevel:  g.SeaLevel(),
			MinY:      g.MinimumY(),
			Height:    g.WorldHeight(),
			StartingY: g.StartingY(),
		},
		Spawn:       storage.SpawnData{Y: chunks.SpawnHeight()},
		Radius:      cfg.Radius,
		Chunks:      len(done),
		Regions:     regions,
		GeneratedAt: time.Now().UTC(),
	})
}
