package raster

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/png"
	"io/fs"
	"os"
	"path/filepath"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// extensions tried, in order, for identifiers without a file extension.
var extensions = []string{".png", ".tif", ".tiff", ".bmp"}

// ImageLoader decodes grayscale images stored under
// <root>/<namespace>/maps/<path>. Pixel intensity becomes the sample value on
// a 0..255 scale; 16-bit images keep their fractional precision. Elevation and
// water-table maps use the same mapping.
type ImageLoader struct {
	root string
}

// NewImageLoader returns a loader reading below root.
func NewImageLoader(root string) *ImageLoader {
	return &ImageLoader{root: root}
}

// Root returns the resource directory.
func (l *ImageLoader) Root() string { return l.root }

// Resolve returns the file backing id.
func (l *ImageLoader) Resolve(id ID) (string, error) {
	base := filepath.Join(l.root, id.Namespace, "maps", filepath.FromSlash(id.Path))
	if filepath.Ext(base) != "" {
		if _, err := os.Stat(base); err != nil {
			return "", notFound(id, err)
		}
		return base, nil
	}
	for _, ext := range extensions {
		p := base + ext
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %s (looked for %s.{png,tif,tiff,bmp})", ErrNotFound, id, base)
}

// Load decodes the image backing id.
func (l *ImageLoader) Load(ctx context.Context, id ID, kind Kind) (*Map, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := l.Resolve(id)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, notFound(id, err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrMalformed, path, err)
	}
	w, h, samples := grayscale(img)
	m, err := NewMap(id, kind, w, h, samples)
	if err != nil {
		return nil, fmt.Errorf("%s image %s: %w", format, path, err)
	}
	return m, nil
}

// grayscale flattens img into row-major intensities on a 0..255 scale.
func grayscale(img image.Image) (int, int, []float32) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := make([]float32, w*h)

	switch src := img.(type) {
	case *image.Gray:
		for y := 0; y < h; y++ {
			row := src.Pix[y*src.Stride : y*src.Stride+w]
			for x, v := range row {
				out[y*w+x] = float32(v)
			}
		}
	case *image.Gray16:
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				out[y*w+x] = float32(src.Gray16At(b.Min.X+x, b.Min.Y+y).Y) / 257
			}
		}
	default:
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				g := color.Gray16Model.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray16)
				out[y*w+x] = float32(g.Y) / 257
			}
		}
	}
	return w, h, out
}

func notFound(id ID, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return fmt.Errorf("open %s: %w", id, err)
}
