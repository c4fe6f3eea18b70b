package imaging

import (
	"fmt"
	"image"
	"image/draw"
	"io"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
)

// ThumbnailSize computes the dimensions of a thumbnail whose larger side is
// exactly maxDim.
//
// The smaller side is scaled by the same ratio and truncated, never rounded:
//
//	smaller' = floor(smaller * maxDim / larger)
//
// The product is computed in integers so the result does not depend on
// floating point error. A side that would truncate to zero is kept at one
// pixel so the thumbnail is never empty.
func ThumbnailSize(width, height, maxDim int) (int, int) {
	if width <= 0 || height <= 0 || maxDim <= 0 {
		return 0, 0
	}
	if width >= height {
		return maxDim, atLeastOne(height * maxDim / width)
	}
	return atLeastOne(width * maxDim / height), maxDim
}

func atLeastOne(v int) int {
	if v < 1 {
		return 1
	}
	return v
}

// Thumbnail returns a copy of img resized so that its larger side is maxDim,
// preserving the aspect ratio (see ThumbnailSize).
//
// A nil resampler selects DefaultResampler. The result is always an
// *image.NRGBA anchored at (0,0), whatever the resampler produced.
func Thumbnail(img image.Image, maxDim int, r Resampler) (*image.NRGBA, error) {
	if maxDim <= 0 {
		return nil, fmt.Errorf("thumbnail size must be positive, got %d", maxDim)
	}
	bounds := img.Bounds()
	if bounds.Empty() {
		return nil, fmt.Errorf("cannot build thumbnail of empty image")
	}
	if r == nil {
		r = DefaultResampler
	}

	w, h := ThumbnailSize(bounds.Dx(), bounds.Dy(), maxDim)
	return toNRGBA(r.Resample(img, w, h)), nil
}

func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Bounds().Min == (image.Point{}) {
		return n
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// ColorFileName returns the thumbnail file name for a tile of color c,
// "{r}_{g}_{b}.png".
func ColorFileName(c Color) string {
	return c.Key() + ".png"
}

// SaveNamed writes img as "<dir>/<name>.png", creating dir if needed, and
// returns the written path.
func SaveNamed(img image.Image, name, dir string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("empty image name")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(dir, name+".png")
	if err := imaging.Save(img, path); err != nil {
		return "", fmt.Errorf("failed to save image: %w", err)
	}
	return path, nil
}

// SaveColorNamed writes img under ColorFileName(c) in dir.
func SaveColorNamed(img image.Image, c Color, dir string) (string, error) {
	return SaveNamed(img, c.Key(), dir)
}

// WritePNG encodes img as PNG to w.
func WritePNG(w io.Writer, img image.Image) error {
	return imaging.Encode(w, img, imaging.PNG)
}
