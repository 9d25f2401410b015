package gen

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/OCharnyshevich/atlas/pkg/world/chunk"
)

// ErrInvalidConfig is returned for generator documents that fail schema or
// semantic validation.
var ErrInvalidConfig = errors.New("gen: invalid generator config")

// Config is the per-dimension generator document.
type Config struct {
	HeightMap       string         `yaml:"height_map"`
	Aquifer         string         `yaml:"aquifer,omitempty"`
	BiomeSource     map[string]any `yaml:"biome_source"`
	Settings        Settings       `yaml:"settings"`
	StartingY       int            `yaml:"starting_y"`
	VerticalScale   float64        `yaml:"vertical_scale,omitempty"`
	HorizontalScale float64        `yaml:"horizontal_scale,omitempty"`
}

// Settings are the host generation settings the generator reads.
type Settings struct {
	SeaLevel     int    `yaml:"sea_level"`
	MinY         int    `yaml:"min_y"`
	Height       int    `yaml:"height"`
	DefaultBlock string `yaml:"default_block"`
	DefaultFluid string `yaml:"default_fluid"`
	SurfaceRule  string `yaml:"surface_rule,omitempty"`
}

const configSchemaURL = "atlas://generator.schema.json"

const configSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["height_map", "biome_source", "settings", "starting_y"],
  "additionalProperties": false,
  "properties": {
    "height_map": {"type": "string", "minLength": 1},
    "aquifer": {"type": "string", "minLength": 1},
    "biome_source": {
      "type": "object",
      "required": ["type"],
      "properties": {"type": {"type": "string", "minLength": 1}}
    },
    "settings": {
      "type": "object",
      "required": ["sea_level", "min_y", "height", "default_block", "default_fluid"],
      "additionalProperties": false,
      "properties": {
        "sea_level": {"type": "integer"},
        "min_y": {"type": "integer", "multipleOf": 16},
        "height": {"type": "integer", "minimum": 16, "multipleOf": 16},
        "default_block": {"type": "string", "minLength": 1},
        "default_fluid": {"type": "string", "minLength": 1},
        "surface_rule": {"type": "string"}
      }
    },
    "starting_y": {"type": "integer"},
    "vertical_scale": {"type": "number", "minimum": 0},
    "horizontal_scale": {"type": "number", "minimum": 0}
  }
}`

var compiledSchema = func() *jsonschema.Schema {
	c := jsonschema.NewCompiler()
	if err := c.AddResource(configSchemaURL, strings.NewReader(configSchema)); err != nil {
		panic(err)
	}
	return c.MustCompile(configSchemaURL)
}()

// LoadConfig reads and parses a generator document from path.
func LoadConfig(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read generator config: %w", err)
	}
	cfg, err := ParseConfig(raw)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig validates a YAML (or JSON) generator document against the
// schema, decodes it, and normalises it.
func ParseConfig(data []byte) (Config, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	// The validator wants JSON values; round-trip the YAML tree.
	js, err := json.Marshal(doc)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	dec := json.NewDecoder(bytes.NewReader(js))
	dec.UseNumber()
	var jv any
	if err := dec.Decode(&jv); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := compiledSchema.Validate(jv); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Normalize replaces zero scales with 1.
func (c *Config) Normalize() {
	if c.VerticalScale == 0 {
		c.VerticalScale = 1
	}
	if c.HorizontalScale == 0 {
		c.HorizontalScale = 1
	}
}

// Validate checks the semantic constraints the schema cannot express.
func (c Config) Validate() error {
	if c.HeightMap == "" {
		return fmt.Errorf("%w: height_map is required", ErrInvalidConfig)
	}
	if c.VerticalScale < 0 || c.HorizontalScale < 0 {
		return fmt.Errorf("%w: scales must be positive (vertical %v, horizontal %v)",
			ErrInvalidConfig, c.VerticalScale, c.HorizontalScale)
	}
	if c.Settings.Height <= 0 {
		return fmt.Errorf("%w: settings.height must be positive", ErrInvalidConfig)
	}
	if _, err := c.Settings.blocks(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// BiomeSourceType returns the biome_source "type" entry.
func (c Config) BiomeSourceType() string {
	t, _ := c.BiomeSource["type"].(string)
	return t
}

type resolvedBlocks struct {
	block, fluid chunk.State
}

func (s Settings) blocks() (resolvedBlocks, error) {
	b, err := chunk.ParseState(s.DefaultBlock)
	if err != nil {
		return resolvedBlocks{}, fmt.Errorf("settings.default_block: %w", err)
	}
	f, err := chunk.ParseState(s.DefaultFluid)
	if err != nil {
		return resolvedBlocks{}, fmt.Errorf("settings.default_fluid: %w", err)
	}
	return resolvedBlocks{block: b, fluid: f}, nil
}
