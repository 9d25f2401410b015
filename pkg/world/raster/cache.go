package raster

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
)

const (
	cacheMagic   = "ATLR"
	cacheVersion = 1
	maxSamples   = 1 << 28
)

type cacheHeader struct {
	Version uint16
	Kind    uint8
	SrcSize int64
	SrcMod  int64
	Width   uint32
	Height  uint32
}

// CachedLoader keeps decoded sample grids on disk as zstd-compressed float32
// arrays so large images are decoded once per source revision rather than
// once per process. An entry is valid while the source file keeps its size
// and modification time.
type CachedLoader struct {
	base *ImageLoader
	dir  string
	log  *slog.Logger
}

// NewCachedLoader wraps base with a cache stored in dir.
func NewCachedLoader(base *ImageLoader, dir string, log *slog.Logger) *CachedLoader {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &CachedLoader{base: base, dir: dir, log: log}
}

// Load returns the cached grid for id when it is current and decodes the
// source image otherwise. Cache write failures are logged, not returned.
func (c *CachedLoader) Load(ctx context.Context, id ID, kind Kind) (*Map, error) {
	src, err := c.base.Resolve(id)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(src)
	if err != nil {
		return nil, notFound(id, err)
	}
	want := cacheHeader{
		Version: cacheVersion,
		Kind:    uint8(kind),
		SrcSize: info.Size(),
		SrcMod:  info.ModTime().UnixNano(),
	}

	path := c.path(id, kind)
	if m, err := readCache(path, id, kind, want); err == nil {
		c.log.Debug("raster cache hit", "map", id.String(), "kind", kind.String())
		return m, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		c.log.Info("raster cache stale", "map", id.String(), "reason", err)
	}

	m, err := c.base.Load(ctx, id, kind)
	if err != nil {
		return nil, err
	}
	want.Width = uint32(m.Width())
	want.Height = uint32(m.Height())
	if err := writeCache(path, want, m.samples); err != nil {
		c.log.Warn("write raster cache", "map", id.String(), "path", path, "error", err)
	}
	return m, nil
}

func (c *CachedLoader) path(id ID, kind Kind) string {
	name := strings.ReplaceAll(id.Path, "/", "_")
	return filepath.Join(c.dir, id.Namespace, name+"."+kind.String()+".zst")
}

func readCache(path string, id ID, kind Kind, want cacheHeader) (*Map, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	br := bufio.NewReaderSize(dec, 256*1024)

	magic := make([]byte, len(cacheMagic))
	if _, err := io.ReadFull(br, magic); err != nil {
		return nil, fmt.Errorf("read magic: %w", err)
	}
	if string(magic) != cacheMagic {
		return nil, fmt.Errorf("bad magic %q", magic)
	}
	var hdr cacheHeader
	if err := binary.Read(br, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if hdr.Version != want.Version || hdr.Kind != want.Kind ||
		hdr.SrcSize != want.SrcSize || hdr.SrcMod != want.SrcMod {
		return nil, fmt.Errorf("source changed")
	}
	n := int(hdr.Width) * int(hdr.Height)
	if n <= 0 || n > maxSamples {
		return nil, fmt.Errorf("bad dimensions %dx%d", hdr.Width, hdr.Height)
	}
	samples := make([]float32, n)
	if err := binary.Read(br, binary.LittleEndian, samples); err != nil {
		return nil, fmt.Errorf("read samples: %w", err)
	}
	return NewMap(id, kind, int(hdr.Width), int(hdr.Height), samples)
}

func writeCache(path string, hdr cacheHeader, samples []float32) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp)

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		f.Close()
		return err
	}
	bw := bufio.NewWriterSize(enc, 256*1024)
	bw.WriteString(cacheMagic)
	binary.Write(bw, binary.LittleEndian, hdr)
	if err := binary.Write(bw, binary.LittleEndian, samples); err != nil {
		enc.Close()
		f.Close()
		return fmt.Errorf("write samples: %w", err)
	}
	if err := bw.Flush(); err != nil {
		enc.Close()
		f.Close()
		return fmt.Errorf("flush: %w", err)
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return fmt.Errorf("close encoder: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
