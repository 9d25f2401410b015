package config

import (
	"errors"
	"fmt"
	"runtime"
)

// Config holds the pregeneration settings.
type Config struct {
	ResourceDir    string `json:"resource_dir"`    // root of the atlas resource tree
	ResourceSource string `json:"resource_source"` // optional go-getter address fetched into ResourceDir
	CacheDir       string `json:"cache_dir"`       // decoded raster cache ("" = disabled)
	Generator      string `json:"generator"`       // generator document (YAML or JSON)
	LevelName      string `json:"level_name"`
	Seed           int64  `json:"seed"`
	Radius         int    `json:"radius"` // pregenerated square half-width in chunks
	Workers        int    `json:"workers"`
	OutputDir      string `json:"output_dir"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		ResourceDir: "resources",
		Generator:   "configs/overworld.yaml",
		LevelName:   "overworld",
		Radius:      4,
		Workers:     runtime.NumCPU(),
		OutputDir:   "world",
	}
}

// Validate reports settings the CLI cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Generator == "" {
		errs = append(errs, errors.New("generator document is required"))
	}
	if c.OutputDir == "" {
		errs = append(errs, errors.New("output directory is required"))
	}
	if c.Radius < 0 {
		errs = append(errs, fmt.Errorf("radius %d is negative", c.Radius))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers %d, need at least 1", c.Workers))
	}
	return errors.Join(errs...)
}

// Merge applies file-loaded config values into cfg, but only for fields
// that were NOT explicitly set via CLI flags. explicitFlags contains the
// flag names that were explicitly provided on the command line.
func Merge(cfg *Config, fromFile *Config, explicitFlags map[string]bool) {
	if !explicitFlags["resources"] {
		cfg.ResourceDir = fromFile.ResourceDir
	}
	if !explicitFlags["fetch"] {
		cfg.ResourceSource = fromFile.ResourceSource
	}
	if !explicitFlags["cache"] {
		cfg.CacheDir = fromFile.CacheDir
	}
	if !explicitFlags["generator"] {
		cfg.Generator = fromFile.Generator
	}
	if !explicitFlags["level"] {
		cfg.LevelName = fromFile.LevelName
	}
	if !explicitFlags["seed"] {
		cfg.Seed = fromFile.Seed
	}
	if !explicitFlags["radius"] {
		cfg.Radius = fromFile.Radius
	}
	if !explicitFlags["workers"] {
		cfg.Workers = fromFile.Workers
	}
}
