package vanilla

import (
	"slices"
	"testing"

	"github.com/OCharnyshevich/atlas/pkg/world/chunk"
	"github.com/OCharnyshevich/atlas/pkg/world/gen"
)

// flatTerrain reports the same elevation and water level everywhere.
type flatTerrain struct {
	elev, water, sea, minY int
}

func (t flatTerrain) Elevation(int, int) int           { return t.elev }
func (t flatTerrain) EffectiveWaterLevel(int, int) int { return max(t.water, t.sea) }
func (t flatTerrain) SeaLevel() int                    { return t.sea }
func (t flatTerrain) MinimumY() int                    { return t.minY }

func land(elev int) flatTerrain {
	return flatTerrain{elev: elev, water: 62, sea: 62, minY: -64}
}

// grassChunk builds a chunk of stone topped with grass at elev-1.
func grassChunk(pos chunk.Pos, b chunk.Biome, elev int) *chunk.Chunk {
	c := chunk.New(pos, -64, 384)
	for z := 0; z < chunk.Width; z++ {
		for x := 0; x < chunk.Width; x++ {
			c.SetBiome(x, z, b)
			for y := c.MinY(); y < elev-1; y++ {
				c.SetBlock(x, y, z, chunk.Stone)
			}
			c.SetBlock(x, elev-1, z, chunk.Grass)
		}
	}
	return c
}

func biomeChunk(b chunk.Biome) *chunk.Chunk {
	c := chunk.New(chunk.Pos{}, -64, 384)
	for z := 0; z < chunk.Width; z++ {
		for x := 0; x < chunk.Width; x++ {
			c.SetBiome(x, z, b)
		}
	}
	return c
}

func TestSelectBiome(t *testing.T) {
	tests := []struct {
		temp, rain float64
		want       chunk.Biome
	}{
		{0.1, 0.1, Tundra},
		{0.1, 0.5, SnowyTaiga},
		{0.1, 0.9, Taiga},
		{0.5, 0.1, Plains},
		{0.5, 0.5, Forest},
		{0.5, 0.9, DarkForest},
		{1.0, 0.1, Savanna},
		{1.0, 0.5, Plains},
		{1.0, 0.9, Jungle},
		{1.5, 0.1, Desert},
		{1.5, 0.9, Jungle},
	}
	for _, tt := range tests {
		if got := selectBiome(tt.temp, tt.rain); got != tt.want {
			t.Errorf("selectBiome(%v, %v) = %s, want %s", tt.temp, tt.rain, got, tt.want)
		}
	}
}

func TestSampleBiomeElevationBands(t *testing.T) {
	b := NewBiomes(42)
	tests := []struct {
		elev int
		want chunk.Biome
	}{
		{20, Ocean},
		{57, Ocean},
		{58, Beach},
		{63, Beach},
		{127, Mountains},
	}
	for _, tt := range tests {
		if got := b.SampleBiome(100, -100, land(tt.elev)); got != tt.want {
			t.Errorf("elevation %d: biome %s, want %s", tt.elev, got, tt.want)
		}
	}

	// Uncovered columns fall back to the climate table.
	uncovered := land(gen.OutOfRange)
	for x := -2048; x <= 2048; x += 512 {
		got := b.SampleBiome(x, x/2, uncovered)
		if got == Ocean || got == Beach || got == Mountains {
			t.Errorf("uncovered column %d got elevation biome %s", x, got)
		}
		if again := NewBiomes(42).SampleBiome(x, x/2, uncovered); again != got {
			t.Errorf("column %d: %s then %s for the same seed", x, got, again)
		}
	}
}

func TestSurfaceLayers(t *testing.T) {
	s := NewSurface()

	tests := []struct {
		name  string
		biome chunk.Biome
		elev  int
		want  map[int]chunk.State
	}{
		{"desert", Desert, 70, map[int]chunk.State{
			69: chunk.Sand, 66: chunk.Sand, 65: chunk.Sandstone, 64: chunk.Sandstone, 63: chunk.Air, 70: chunk.Air,
		}},
		{"plains", Plains, 70, map[int]chunk.State{
			69: chunk.Grass, 68: chunk.Dirt, 66: chunk.Dirt, 65: chunk.Air,
		}},
		{"submerged plains", Plains, 50, map[int]chunk.State{
			49: chunk.Dirt, 46: chunk.Dirt, 45: chunk.Air,
		}},
		{"ocean", Ocean, 40, map[int]chunk.State{
			39: chunk.Gravel, 37: chunk.Gravel, 36: chunk.Dirt, 35: chunk.Dirt, 34: chunk.Air,
		}},
		{"snowy", Tundra, 70, map[int]chunk.State{
			70: chunk.SnowLayer, 69: chunk.Grass,
		}},
		{"bare peak", Mountains, 130, map[int]chunk.State{
			129: chunk.Air, 128: chunk.Air,
		}},
		{"low mountain", Mountains, 90, map[int]chunk.State{
			89: chunk.Grass, 88: chunk.Dirt,
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := biomeChunk(tt.biome)
			s.BuildSurface(c, land(tt.elev))
			for y, want := range tt.want {
				if got := c.Block(3, y, 5); got != want {
					t.Errorf("y=%d: %s, want %s", y, got, want)
				}
			}
		})
	}
}

func TestSurfaceKeepsCarvedCells(t *testing.T) {
	c := biomeChunk(Plains)
	c.MarkCarved(0, 69, 0)
	NewSurface().BuildSurface(c, land(70))
	if got := c.Block(0, 69, 0); got != chunk.Air {
		t.Fatalf("carved cell holds %s", got)
	}
	if got := c.Block(0, 68, 0); got != chunk.Dirt {
		t.Fatalf("cell below carve holds %s, want dirt", got)
	}
}

func TestSurfaceSkipsUncovered(t *testing.T) {
	c := biomeChunk(Plains)
	NewSurface().BuildSurface(c, land(gen.OutOfRange))
	for _, sec := range c.Sections() {
		if sec != nil {
			t.Fatal("uncovered chunk should stay empty")
		}
	}
}

func TestCarveCell(t *testing.T) {
	c := chunk.New(chunk.Pos{}, -64, 384)
	c.SetBlock(1, -60, 1, chunk.Stone)
	c.SetBlock(1, 0, 1, chunk.Stone)

	carveCell(c, 1, -60, 1)
	carveCell(c, 1, 0, 1)

	if got := c.Block(1, -60, 1); got != chunk.Lava {
		t.Errorf("deep cell = %s, want lava", got)
	}
	if c.Carved(1, -60, 1) {
		t.Error("lava cell should not be masked")
	}
	if got := c.Block(1, 0, 1); got != chunk.Air || !c.Carved(1, 0, 1) {
		t.Errorf("cell = %s carved=%v, want carved air", got, c.Carved(1, 0, 1))
	}
}

func carvedCells(c *chunk.Chunk) []int {
	var out []int
	for y := c.MinY(); y < c.TopY(); y++ {
		for z := 0; z < chunk.Width; z++ {
			for x := 0; x < chunk.Width; x++ {
				if c.Carved(x, y, z) || c.Block(x, y, z) == chunk.Lava {
					out = append(out, (y-c.MinY())*256+z*16+x)
				}
			}
		}
	}
	return out
}

func TestCheeseCaves(t *testing.T) {
	cc := NewCheeseCaves(5)
	terrain := land(100)
	origin := chunk.Pos{X: 2, Z: -1}

	other := chunk.New(origin.Offset(1, 0), -64, 384)
	cc.Carve(nil, other, origin, terrain)
	if cells := carvedCells(other); len(cells) != 0 {
		t.Fatalf("carved %d cells outside the origin chunk", len(cells))
	}

	a := chunk.New(origin, -64, 384)
	b := chunk.New(origin, -64, 384)
	cc.Carve(nil, a, origin, terrain)
	NewCheeseCaves(5).Carve(nil, b, origin, terrain)
	ca, cb := carvedCells(a), carvedCells(b)
	if !slices.Equal(ca, cb) {
		t.Fatal("same seed carved different cells")
	}
	for _, i := range ca {
		y := i/256 + a.MinY()
		if y < a.MinY()+4 || y >= 96 {
			t.Fatalf("carved into the crust at y=%d", y)
		}
	}
}

func TestWormCaves(t *testing.T) {
	w := NewWormCaves()
	origin := chunk.Pos{X: 0, Z: 0}
	terrain := land(90)

	if (&WormCaves{Chance: 0}).ShouldCarve(chunk.NewRandom(1), origin) {
		t.Error("zero chance carved")
	}
	if !(&WormCaves{Chance: 1}).ShouldCarve(chunk.NewRandom(1), origin) {
		t.Error("certain chance declined")
	}

	a := chunk.New(origin, -64, 384)
	b := chunk.New(origin, -64, 384)
	w.Carve(chunk.CarverRandom(3, 1, origin), a, origin, terrain)
	w.Carve(chunk.CarverRandom(3, 1, origin), b, origin, terrain)
	ca := carvedCells(a)
	if len(ca) == 0 {
		t.Fatal("tunnel starting in the target chunk carved nothing")
	}
	if !slices.Equal(ca, carvedCells(b)) {
		t.Fatal("same random carved different cells")
	}

	// Tunnels run at most wormSteps blocks from their start.
	far := chunk.New(chunk.Pos{X: 20, Z: 20}, -64, 384)
	w.Carve(chunk.CarverRandom(3, 1, origin), far, origin, terrain)
	if len(carvedCells(far)) != 0 {
		t.Fatal("tunnel reached a chunk out of range")
	}

	shallow := chunk.New(origin, -64, 384)
	w.Carve(chunk.CarverRandom(3, 1, origin), shallow, origin, land(-50))
	if len(carvedCells(shallow)) != 0 {
		t.Fatal("tunnel carved under terrain too thin to hold it")
	}
}

func TestCarversFor(t *testing.T) {
	cs := NewCarvers(1)
	if n := len(cs.CarversFor(Ocean)); n != 1 {
		t.Errorf("ocean carvers = %d, want 1", n)
	}
	if n := len(cs.CarversFor(Plains)); n != 2 {
		t.Errorf("plains carvers = %d, want 2", n)
	}
}

func TestTrees(t *testing.T) {
	terrain := land(70)
	a := grassChunk(chunk.Pos{X: 1, Z: 1}, Forest, 70)
	b := grassChunk(chunk.Pos{X: 1, Z: 1}, Forest, 70)

	NewTrees().PlaceStructures(chunk.PopulationRandom(9, 16, 16), nil, a, terrain)
	NewTrees().PlaceStructures(chunk.PopulationRandom(9, 16, 16), nil, b, terrain)

	logs := 0
	for z := 0; z < chunk.Width; z++ {
		for x := 0; x < chunk.Width; x++ {
			for y := 69; y < 85; y++ {
				if a.Block(x, y, z) != b.Block(x, y, z) {
					t.Fatalf("(%d,%d,%d) differs between runs", x, y, z)
				}
			}
			if s := a.Block(x, 70, z); s == chunk.OakLog || s == chunk.BirchLog {
				logs++
			}
		}
	}
	if logs == 0 {
		t.Fatal("forest grew no trees")
	}
}

func TestTreesSkipWater(t *testing.T) {
	terrain := flatTerrain{elev: 50, water: 62, sea: 62, minY: -64}
	c := grassChunk(chunk.Pos{}, Jungle, 50)
	NewTrees().PlaceStructures(chunk.PopulationRandom(1, 0, 0), nil, c, terrain)
	for z := 0; z < chunk.Width; z++ {
		for x := 0; x < chunk.Width; x++ {
			if s := c.Block(x, 50, z); !s.IsAir() {
				t.Fatalf("(%d,50,%d) = %s above submerged grass", x, z, s)
			}
		}
	}
}

func TestEntities(t *testing.T) {
	terrain := land(70)
	pos := chunk.Pos{X: -2, Z: 3}

	none := grassChunk(pos, Plains, 70)
	(&Entities{Chance: 0}).PopulateEntities(chunk.PopulationRandom(1, -32, 48), none, terrain)
	if len(none.Entities()) != 0 {
		t.Fatal("zero chance spawned mobs")
	}

	ocean := grassChunk(pos, Ocean, 70)
	(&Entities{Chance: 0.9}).PopulateEntities(chunk.PopulationRandom(1, -32, 48), ocean, terrain)
	if len(ocean.Entities()) != 0 {
		t.Fatal("ocean spawned mobs")
	}

	a := grassChunk(pos, Plains, 70)
	b := grassChunk(pos, Plains, 70)
	e := &Entities{Chance: 0.9}
	e.PopulateEntities(chunk.PopulationRandom(4, -32, 48), a, terrain)
	e.PopulateEntities(chunk.PopulationRandom(4, -32, 48), b, terrain)
	if !slices.Equal(a.Entities(), b.Entities()) {
		t.Fatal("same random spawned different mobs")
	}
	for _, m := range a.Entities() {
		if m.Y != 70 {
			t.Errorf("%s spawned at y=%v, want 70", m.Type, m.Y)
		}
		if m.X < -32 || m.X >= -16 || m.Z < 48 || m.Z >= 64 {
			t.Errorf("%s spawned outside the chunk at %v,%v", m.Type, m.X, m.Z)
		}
	}
}

func TestPick(t *testing.T) {
	r := chunk.NewRandom(11)
	seen := map[string]int{}
	for range 1000 {
		seen[pick(pastureSpawns, r).mob]++
	}
	for _, e := range pastureSpawns {
		if seen[e.mob] == 0 {
			t.Errorf("%s never picked", e.mob)
		}
	}
}

func TestServices(t *testing.T) {
	svc := Services(7)
	if svc.Biomes == nil || svc.Carvers == nil || svc.Surface == nil || svc.Structures == nil || svc.Entities == nil {
		t.Fatalf("services incomplete: %+v", svc)
	}
}
