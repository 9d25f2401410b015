package anvil

import (
	"bytes"
	"cmp"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/klauspost/compress/zlib"

	"github.com/OCharnyshevich/atlas/pkg/world/chunk"
)

const (
	sectorSize      = 4096
	headerSectors   = 2 // location table + timestamp table
	compressionZlib = 2
	regionShift     = 5
)

// SaveRegion writes all provided chunks to a .mca region file.
// chunks maps chunk positions to their uncompressed NBT data.
func SaveRegion(dir string, rx, rz int, chunks map[chunk.Pos][]byte) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create region dir: %w", err)
	}

	// Compress all chunks with zlib.
	type chunkEntry struct {
		index      int
		compressed []byte
	}
	entries := make([]chunkEntry, 0, len(chunks))

	for pos, nbtData := range chunks {
		var cbuf bytes.Buffer
		zw, err := zlib.NewWriterLevel(&cbuf, zlib.DefaultCompression)
		if err != nil {
			return fmt.Errorf("create zlib writer: %w", err)
		}
		if _, err := zw.Write(nbtData); err != nil {
			return fmt.Errorf("compress chunk (%d,%d): %w", pos.X, pos.Z, err)
		}
		if err := zw.Close(); err != nil {
			return fmt.Errorf("close zlib writer: %w", err)
		}

		idx := (pos.X & 31) + (pos.Z&31)*32
		entries = append(entries, chunkEntry{index: idx, compressed: cbuf.Bytes()})
	}
	slices.SortFunc(entries, func(a, b chunkEntry) int { return cmp.Compare(a.index, b.index) })

	// Build the file content.
	locations := make([]byte, sectorSize)
	timestamps := make([]byte, sectorSize)
	now := uint32(time.Now().Unix())

	// Each chunk's data: 4 bytes length + 1 byte compression type + compressed data,
	// padded to sector boundary.
	var dataBuf bytes.Buffer
	currentSector := uint32(headerSectors)

	for i := range entries {
		e := &entries[i]

		// Chunk payload: length (4 bytes) + compression (1 byte) + compressed NBT.
		payloadLen := uint32(len(e.compressed)) + 1 // +1 for compression byte
		totalLen := 4 + payloadLen                  // 4 for the length field itself
		sectorCount := (totalLen + sectorSize - 1) / sectorSize

		// Write location entry: (offset << 8) | sectorCount
		off := e.index * 4
		binary.BigEndian.PutUint32(locations[off:off+4],
			(currentSector<<8)|uint32(sectorCount&0xFF))

		// Write timestamp.
		binary.BigEndian.PutUint32(timestamps[off:off+4], now)

		// Write chunk data to buffer.
		var header [5]byte
		binary.BigEndian.PutUint32(header[0:4], payloadLen)
		header[4] = compressionZlib
		dataBuf.Write(header[:])
		dataBuf.Write(e.compressed)

		// Pad to sector boundary.
		paddedSize := int(sectorCount) * sectorSize
		if pad := paddedSize - int(totalLen); pad > 0 {
			dataBuf.Write(make([]byte, pad))
		}

		currentSector += uint32(sectorCount)
	}

	// Write the file atomically.
	path := filepath.Join(dir, fmt.Sprintf("r.%d.%d.mca", rx, rz))
	tmp := path + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create temp region file: %w", err)
	}
	defer func() {
		f.Close()
		os.Remove(tmp)
	}()

	if _, err := f.Write(locations); err != nil {
		return fmt.Errorf("write locations: %w", err)
	}
	if _, err := f.Write(timestamps); err != nil {
		return fmt.Errorf("write timestamps: %w", err)
	}
	if _, err := f.Write(dataBuf.Bytes()); err != nil {
		return fmt.Errorf("write chunk data: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close region file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename region file: %w", err)
	}

	return nil
}

// RegionOf returns the region coordinates containing chunk p.
func RegionOf(p chunk.Pos) (rx, rz int) {
	return p.X >> regionShift, p.Z >> regionShift
}

// ExportChunks encodes chunks and writes them into the region files under
// dir that contain them. It returns the number of region files written.
func ExportChunks(dir string, chunks []*chunk.Chunk) (int, error) {
	type region struct{ x, z int }
	regions := make(map[region]map[chunk.Pos][]byte)
	for _, c := range chunks {
		data, err := EncodeChunkNBT(c)
		if err != nil {
			return 0, err
		}
		rx, rz := RegionOf(c.Pos())
		key := region{rx, rz}
		if regions[key] == nil {
			regions[key] = make(map[chunk.Pos][]byte)
		}
		regions[key][c.Pos()] = data
	}

	keys := make([]region, 0, len(regions))
	for k := range regions {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b region) int {
		return cmp.Or(cmp.Compare(a.z, b.z), cmp.Compare(a.x, b.x))
	})
	for _, k := range keys {
		if err := SaveRegion(dir, k.x, k.z, regions[k]); err != nil {
			return 0, fmt.Errorf("save region (%d,%d): %w", k.x, k.z, err)
		}
	}
	return len(keys), nil
}
