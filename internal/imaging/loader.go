package imaging

import (
	"fmt"
	"image"
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"path/filepath"
	"strings"

	"github.com/anthonynsimon/bild/clone"
	"github.com/anthonynsimon/bild/imgio"
	"github.com/disintegration/imaging"
)

// Open decodes the image file at path.
//
// Supported formats are PNG and JPEG (plus whatever other decoders are
// registered in the binary). EXIF orientation is ignored: pixels are used as
// stored.
//
// # Errors
//
//   - Returns error if the file does not exist or cannot be read
//   - Returns error if the file is not a decodable image
func Open(path string) (image.Image, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	return img, nil
}

// LoadRGBA decodes the image file at path into a fully addressable
// *image.RGBA whose bounds start at (0,0).
//
// This is the form tile bitmaps take in the composition cache: a concrete
// premultiplied buffer that can be drawn onto the canvas with a mask without
// any further conversion.
func LoadRGBA(path string) (*image.RGBA, error) {
	img, err := imgio.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return clone.AsRGBA(img), nil
}

// Format returns the image format implied by the extension of path:
// "png", "jpeg", or "unknown". The check is case-insensitive.
func Format(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "png"
	case ".jpg", ".jpeg":
		return "jpeg"
	default:
		return "unknown"
	}
}

// IsTileFile reports whether path names a tile candidate. Only PNG files are
// tiles.
func IsTileFile(path string) bool {
	return Format(path) == "png"
}

// IsSourceFile reports whether path names an acceptable source image: PNG or
// JPEG.
func IsSourceFile(path string) bool {
	return Format(path) != "unknown"
}
