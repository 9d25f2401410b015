package raster

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
	}{
		{"elevation", Elevation},
		{"heightmap", Elevation},
		{"AQUIFER", WaterTable},
		{"water_table", WaterTable},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		if err != nil {
			t.Fatalf("ParseKind(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseKind(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if _, err := ParseKind("color"); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("ParseKind(color) error = %v, want ErrUnknownKind", err)
	}
}

func TestParseID(t *testing.T) {
	id, err := ParseID("atlas:earth/europe")
	if err != nil {
		t.Fatalf("ParseID: %v", err)
	}
	if id.Namespace != "atlas" || id.Path != "earth/europe" {
		t.Errorf("ParseID = %+v", id)
	}

	id, err = ParseID("earth")
	if err != nil {
		t.Fatalf("ParseID bare: %v", err)
	}
	if id.String() != "minecraft:earth" {
		t.Errorf("bare id = %s, want minecraft:earth", id)
	}

	for _, bad := range []string{"", "atlas:", ":x", "atlas:../etc/passwd"} {
		if _, err := ParseID(bad); err == nil {
			t.Errorf("ParseID(%q) should fail", bad)
		}
	}
}

func TestNewMapValidates(t *testing.T) {
	id := ID{Namespace: "t", Path: "m"}
	if _, err := NewMap(id, Elevation, 0, 4, nil); !errors.Is(err, ErrMalformed) {
		t.Errorf("zero width error = %v, want ErrMalformed", err)
	}
	if _, err := NewMap(id, Elevation, 2, 2, make([]float32, 3)); !errors.Is(err, ErrMalformed) {
		t.Errorf("short samples error = %v, want ErrMalformed", err)
	}
	if _, err := NewMap(id, Kind(9), 1, 1, make([]float32, 1)); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("bad kind error = %v, want ErrUnknownKind", err)
	}

	m, err := NewMap(id, Elevation, 3, 2, []float32{0, 1, 2, 3, 9, 5})
	if err != nil {
		t.Fatalf("NewMap: %v", err)
	}
	if got := m.Sample(1, 1); got != 9 {
		t.Errorf("Sample(1,1) = %v, want 9", got)
	}
	if m.Max() != 9 {
		t.Errorf("Max = %v, want 9", m.Max())
	}
}

func TestMapperBounds(t *testing.T) {
	mp := NewMapper(4, 6, 1)

	tests := []struct {
		wx, wz int
		ok     bool
		x, z   int
	}{
		{0, 0, true, 2, 3},
		{-2, -3, true, 0, 0},
		{1, 2, true, 3, 5},
		{2, 0, false, 0, 0},
		{0, 3, false, 0, 0},
		{-3, 0, false, 0, 0},
	}
	for _, tt := range tests {
		p, ok := mp.Locate(tt.wx, tt.wz)
		if ok != tt.ok {
			t.Errorf("Locate(%d,%d) ok = %v, want %v", tt.wx, tt.wz, ok, tt.ok)
			continue
		}
		if ok && (p.X != tt.x || p.Z != tt.z) {
			t.Errorf("Locate(%d,%d) = (%d,%d), want (%d,%d)", tt.wx, tt.wz, p.X, p.Z, tt.x, tt.z)
		}
	}
}

func TestMapperScale(t *testing.T) {
	mp := NewMapper(8, 8, 2)
	p, ok := mp.Locate(-1, 1) // block centre (3.5, 5.5) / 2 = (1.75, 2.75)
	if !ok {
		t.Fatal("expected in range")
	}
	if p.X != 1 || p.Z != 2 || p.FX != 0.75 || p.FZ != 0.75 {
		t.Errorf("Locate = %+v", p)
	}

	// Unit scale lands on pixel centres.
	p, _ = NewMapper(8, 8, 1).Locate(0, 0)
	if p.X != 4 || p.Z != 4 || p.FX != 0.5 || p.FZ != 0.5 {
		t.Errorf("unit scale Locate = %+v", p)
	}

	// Zero scale falls back to 1.
	if NewMapper(8, 8, 0).Scale() != 1 {
		t.Error("zero scale should normalise to 1")
	}

	// Scales below one push past the last pixel; the base index is clamped.
	p, ok = NewMapper(4, 4, 0.5).Locate(1, 1)
	if !ok || p.X != 3 || p.Z != 3 {
		t.Errorf("clamped Locate = %+v, %v", p, ok)
	}

	// A clamped index sits on the centre of the edge pixel, whatever the
	// fraction of the unclamped position was.
	small := NewMapper(4, 4, 0.4)
	for _, wx := range []int{0, 1} { // 2.5/0.4 = 6.25, 3.5/0.4 = 8.75
		p, ok := small.Locate(wx, -2)
		if !ok || p.X != 3 || p.FX != 0.5 {
			t.Errorf("Locate(%d,-2) = %+v, %v; want X 3 FX 0.5", wx, p, ok)
		}
		if p.Z != 1 || p.FZ == 0.5 {
			t.Errorf("Locate(%d,-2) Z = %d FZ %v; want an unclamped row", wx, p.Z, p.FZ)
		}
	}
}

func TestRegistryLoadsOnce(t *testing.T) {
	var calls atomic.Int32
	loader := LoaderFunc(func(_ context.Context, id ID, kind Kind) (*Map, error) {
		calls.Add(1)
		return NewMap(id, kind, 1, 1, []float32{42})
	})
	reg := NewRegistry(loader)
	id := ID{Namespace: "t", Path: "once"}

	var wg sync.WaitGroup
	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ref, err := reg.Acquire(id, Elevation)
			if err != nil {
				t.Error(err)
				return
			}
			if _, err := ref.Init(context.Background()); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	if n := calls.Load(); n != 1 {
		t.Fatalf("loader called %d times, want 1", n)
	}
	if reg.Len() != 1 {
		t.Fatalf("registry has %d entries, want 1", reg.Len())
	}

	// Same identifier under another kind is a separate entry.
	if _, err := reg.Acquire(id, WaterTable); err != nil {
		t.Fatal(err)
	}
	if reg.Len() != 2 {
		t.Fatalf("registry has %d entries, want 2", reg.Len())
	}

	if _, err := reg.Acquire(id, Kind(0)); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("Acquire bad kind error = %v", err)
	}
}

func TestRegistryFailureIsSticky(t *testing.T) {
	var calls atomic.Int32
	reg := NewRegistry(LoaderFunc(func(context.Context, ID, Kind) (*Map, error) {
		calls.Add(1)
		return nil, ErrNotFound
	}))
	ref, _ := reg.Acquire(ID{Namespace: "t", Path: "missing"}, WaterTable)

	for range 3 {
		if _, err := ref.Init(context.Background()); !errors.Is(err, ErrNotFound) {
			t.Fatalf("Init error = %v, want ErrNotFound", err)
		}
	}
	if calls.Load() != 1 {
		t.Fatalf("failed load retried: %d calls", calls.Load())
	}
	if _, ok := ref.Map(); ok {
		t.Fatal("Map should report not loaded")
	}
}

func TestRegistryIgnoresCallerCancel(t *testing.T) {
	var calls atomic.Int32
	reg := NewRegistry(LoaderFunc(func(ctx context.Context, id ID, kind Kind) (*Map, error) {
		calls.Add(1)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return NewMap(id, kind, 1, 1, []float32{7})
	}))
	ref, _ := reg.Acquire(ID{Namespace: "t", Path: "cancelled"}, Elevation)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m, err := ref.Init(ctx)
	if err != nil {
		t.Fatalf("Init with a cancelled caller: %v", err)
	}
	again, err := ref.Init(context.Background())
	if err != nil || again != m {
		t.Fatalf("second Init = %v, %v; want the first map", again, err)
	}
	if calls.Load() != 1 {
		t.Fatalf("loader called %d times, want 1", calls.Load())
	}
}

func writeGrayPNG(t *testing.T, path string, w, h int, px func(x, y int) uint8) {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray(x, y, color.Gray{Y: px(x, y)})
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestImageLoader(t *testing.T) {
	root := t.TempDir()
	writeGrayPNG(t, filepath.Join(root, "atlas", "maps", "isle.png"), 3, 2, func(x, y int) uint8 {
		return uint8(y*3 + x)
	})

	l := NewImageLoader(root)
	m, err := l.Load(context.Background(), ID{Namespace: "atlas", Path: "isle"}, Elevation)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.Width() != 3 || m.Height() != 2 {
		t.Fatalf("dimensions %dx%d, want 3x2", m.Width(), m.Height())
	}
	if got := m.Sample(1, 2); got != 5 {
		t.Errorf("Sample(1,2) = %v, want 5", got)
	}

	_, err = l.Load(context.Background(), ID{Namespace: "atlas", Path: "nowhere"}, Elevation)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("missing map error = %v, want ErrNotFound", err)
	}

	bad := filepath.Join(root, "atlas", "maps", "junk.png")
	if err := os.WriteFile(bad, []byte("not a png"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err = l.Load(context.Background(), ID{Namespace: "atlas", Path: "junk"}, Elevation)
	if !errors.Is(err, ErrMalformed) {
		t.Errorf("junk map error = %v, want ErrMalformed", err)
	}
}

func TestCachedLoader(t *testing.T) {
	root := t.TempDir()
	cacheDir := t.TempDir()
	src := filepath.Join(root, "atlas", "maps", "isle.png")
	writeGrayPNG(t, src, 2, 2, func(x, y int) uint8 { return 10 })

	id := ID{Namespace: "atlas", Path: "isle"}
	cl := NewCachedLoader(NewImageLoader(root), cacheDir, nil)

	m, err := cl.Load(context.Background(), id, Elevation)
	if err != nil {
		t.Fatalf("first Load: %v", err)
	}
	if m.Sample(0, 0) != 10 {
		t.Fatalf("Sample = %v, want 10", m.Sample(0, 0))
	}
	cachePath := cl.path(id, Elevation)
	if _, err := os.Stat(cachePath); err != nil {
		t.Fatalf("cache file not written: %v", err)
	}

	// Rewrite the cache entry with different samples but a matching header:
	// the next load must come from the cache, not the image.
	info, err := os.Stat(src)
	if err != nil {
		t.Fatal(err)
	}
	hdr := cacheHeader{
		Version: cacheVersion,
		Kind:    uint8(Elevation),
		SrcSize: info.Size(),
		SrcMod:  info.ModTime().UnixNano(),
		Width:   2,
		Height:  2,
	}
	if err := writeCache(cachePath, hdr, []float32{7, 7, 7, 7}); err != nil {
		t.Fatal(err)
	}
	m, err = cl.Load(context.Background(), id, Elevation)
	if err != nil {
		t.Fatalf("cached Load: %v", err)
	}
	if m.Sample(1, 1) != 7 {
		t.Fatalf("Sample = %v, want cached 7", m.Sample(1, 1))
	}

	// A cache entry for another kind is not reused.
	m, err = cl.Load(context.Background(), id, WaterTable)
	if err != nil {
		t.Fatalf("water table Load: %v", err)
	}
	if m.Sample(0, 0) != 10 {
		t.Fatalf("water table Sample = %v, want 10", m.Sample(0, 0))
	}
}

func TestFetchLocalDirectory(t *testing.T) {
	src := t.TempDir()
	writeGrayPNG(t, filepath.Join(src, "atlas", "maps", "isle.png"), 1, 1, func(int, int) uint8 { return 1 })
	dst := filepath.Join(t.TempDir(), "pack")

	if err := Fetch(context.Background(), src, dst); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if _, err := NewImageLoader(dst).Resolve(ID{Namespace: "atlas", Path: "isle"}); err != nil {
		t.Fatalf("fetched pack missing map: %v", err)
	}

	if err := Fetch(context.Background(), "", dst); err == nil {
		t.Fatal("empty source should fail")
	}
}
