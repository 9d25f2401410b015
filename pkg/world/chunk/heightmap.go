package chunk

// HeightmapKind selects the predicate a heightmap tracks.
type HeightmapKind uint8

const (
	// WorldSurfaceWG tracks the highest non-air block during generation.
	WorldSurfaceWG HeightmapKind = iota
	// OceanFloorWG tracks the highest motion-blocking block during generation.
	OceanFloorWG
	// WorldSurface is the post-generation counterpart of WorldSurfaceWG.
	WorldSurface
	// OceanFloor is the post-generation counterpart of OceanFloorWG.
	OceanFloor
	// MotionBlocking tracks the highest block that blocks motion or holds fluid.
	MotionBlocking

	heightmapKinds = iota
)

var heightmapNames = [heightmapKinds]string{
	WorldSurfaceWG: "WORLD_SURFACE_WG",
	OceanFloorWG:   "OCEAN_FLOOR_WG",
	WorldSurface:   "WORLD_SURFACE",
	OceanFloor:     "OCEAN_FLOOR",
	MotionBlocking: "MOTION_BLOCKING",
}

// HeightmapKinds lists every kind in declaration order.
func HeightmapKinds() []HeightmapKind {
	out := make([]HeightmapKind, heightmapKinds)
	for i := range out {
		out[i] = HeightmapKind(i)
	}
	return out
}

func (k HeightmapKind) String() string {
	if int(k) < len(heightmapNames) {
		return heightmapNames[k]
	}
	return "UNKNOWN"
}

// IsOceanFloor reports whether the kind ignores fluids.
func (k HeightmapKind) IsOceanFloor() bool {
	return k == OceanFloorWG || k == OceanFloor
}

// Matches reports whether state counts as the top of a column for k.
func (k HeightmapKind) Matches(s State) bool {
	switch k {
	case WorldSurfaceWG, WorldSurface:
		return !s.IsAir()
	case OceanFloorWG, OceanFloor:
		return s.BlocksMotion()
	case MotionBlocking:
		return s.BlocksMotion() || s.IsFluid()
	}
	return false
}

// Heightmap caches, per column, the Y just above the highest block matching
// the kind's predicate. An empty column holds the chunk's minimum Y.
type Heightmap struct {
	kind   HeightmapKind
	minY   int
	values [columns]int32
}

func newHeightmap(kind HeightmapKind, minY int) *Heightmap {
	hm := &Heightmap{kind: kind, minY: minY}
	for i := range hm.values {
		hm.values[i] = int32(minY)
	}
	return hm
}

func (hm *Heightmap) Kind() HeightmapKind { return hm.kind }

// Get returns the first free Y above the tracked block in column (x, z).
func (hm *Heightmap) Get(x, z int) int { return int(hm.values[z*16+x]) }

// Set overwrites the value for column (x, z).
func (hm *Heightmap) Set(x, z, y int) { hm.values[z*16+x] = int32(y) }

// Values returns a copy of the column values, index = z*16 + x.
func (hm *Heightmap) Values() [columns]int32 { return hm.values }

// trackUpdate raises the column when a matching block is written at or
// above the current top. It reports whether the column changed.
func (hm *Heightmap) trackUpdate(x, y, z int, s State) bool {
	if !hm.kind.Matches(s) {
		return false
	}
	if y+1 <= hm.Get(x, z) {
		return false
	}
	hm.Set(x, z, y+1)
	return true
}
