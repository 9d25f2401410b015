package raster

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownKind is returned when a map is requested with a kind tag
	// other than Elevation or WaterTable.
	ErrUnknownKind = errors.New("raster: unknown map kind")
	// ErrNotFound is returned when the backing resource of a map does not exist.
	ErrNotFound = errors.New("raster: resource not found")
	// ErrMalformed is returned when a resource exists but cannot be decoded
	// into a non-empty sample grid.
	ErrMalformed = errors.New("raster: malformed resource")
)

// Kind tags what a raster map represents.
type Kind uint8

const (
	Elevation Kind = iota + 1
	WaterTable
)

func (k Kind) String() string {
	switch k {
	case Elevation:
		return "elevation"
	case WaterTable:
		return "water_table"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	return k == Elevation || k == WaterTable
}

// ParseKind maps a kind name to a Kind. "heightmap" and "aquifer" are
// accepted as aliases.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "elevation", "heightmap", "height_map":
		return Elevation, nil
	case "water_table", "watertable", "aquifer":
		return WaterTable, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// DefaultNamespace is used for identifiers written without a namespace.
const DefaultNamespace = "minecraft"

// ID is a namespaced resource identifier such as "atlas:earth".
type ID struct {
	Namespace string
	Path      string
}

// ParseID parses "namespace:path" or a bare "path".
func ParseID(s string) (ID, error) {
	s = strings.TrimSpace(s)
	ns, path, found := strings.Cut(s, ":")
	if !found {
		ns, path = DefaultNamespace, s
	}
	if ns == "" || path == "" {
		return ID{}, fmt.Errorf("raster: invalid identifier %q", s)
	}
	if strings.Contains(path, "..") || strings.HasPrefix(path, "/") {
		return ID{}, fmt.Errorf("raster: invalid identifier path %q", s)
	}
	return ID{Namespace: strings.ToLower(ns), Path: path}, nil
}

func (id ID) String() string {
	return id.Namespace + ":" + id.Path
}

// Map is an immutable grid of scalar samples. Row indexes the z axis and
// column indexes the x axis. A Map is safe for concurrent reads.
type Map struct {
	id      ID
	kind    Kind
	width   int
	height  int
	samples []float32 // row-major, len == width*height
	max     float32
}

// NewMap wraps samples (row-major, width*height values) in a Map. The slice
// is owned by the Map afterwards.
func NewMap(id ID, kind Kind, width, height int, samples []float32) (*Map, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, uint8(kind))
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %s has dimensions %dx%d", ErrMalformed, id, width, height)
	}
	if len(samples) != width*height {
		return nil, fmt.Errorf("%w: %s has %d samples, want %d", ErrMalformed, id, len(samples), width*height)
	}
	m := &Map{id: id, kind: kind, width: width, height: height, samples: samples}
	for i, v := range samples {
		if i == 0 || v > m.max {
			m.max = v
		}
	}
	return m, nil
}

func (m *Map) ID() ID      { return m.id }
func (m *Map) Kind() Kind  { return m.kind }
func (m *Map) Width() int  { return m.width }
func (m *Map) Height() int { return m.height }

// Max returns the largest sample in the map.
func (m *Map) Max() float32 { return m.max }

// Sample returns the value at (row, col). Callers bounds-check through a
// Mapper; out-of-range access panics like any slice index.
func (m *Map) Sample(row, col int) float32 {
	return m.samples[row*m.width+col]
}
