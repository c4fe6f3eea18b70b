package imaging

import (
	"fmt"
	"image"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// Color represents an RGB color with 8-bit components.
//
// Each component ranges from 0 to 255. A Color carries no alpha: it is the
// result of averaging the visible pixels of an image, or the opaque part of a
// single pixel.
type Color struct {
	R uint8 `json:"r"` // Red component (0-255)
	G uint8 `json:"g"` // Green component (0-255)
	B uint8 `json:"b"` // Blue component (0-255)
}

// FromColor converts any color.Color to a Color, discarding alpha.
//
// The conversion goes through the non-premultiplied NRGBA model so that a
// half-transparent red pixel still reads as (255,0,0) and not as a darkened
// premultiplied value.
func FromColor(c color.Color) Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return Color{R: n.R, G: n.G, B: n.B}
}

// RGBA implements color.Color. The returned color is always fully opaque.
func (c Color) RGBA() (r, g, b, a uint32) {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}.RGBA()
}

// Key returns the "{r}_{g}_{b}" form used to name thumbnail files.
func (c Color) Key() string {
	return fmt.Sprintf("%d_%d_%d", c.R, c.G, c.B)
}

// Hex returns the color in "#rrggbb" form.
func (c Color) Hex() string {
	return c.colorful().Hex()
}

// String implements fmt.Stringer.
func (c Color) String() string {
	return fmt.Sprintf("(%d,%d,%d)", c.R, c.G, c.B)
}

func (c Color) colorful() colorful.Color {
	return colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}
}

// ParseHex parses "#rrggbb" (or "rrggbb") into a Color.
func ParseHex(s string) (Color, error) {
	if len(s) > 0 && s[0] != '#' {
		s = "#" + s
	}
	cf, err := colorful.Hex(s)
	if err != nil {
		return Color{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	r, g, b := cf.RGB255()
	return Color{R: r, G: g, B: b}, nil
}

// AverageStats describes the result of averaging an image.
type AverageStats struct {
	Color Color `json:"color"`

	// Counted is the number of pixels that took part in the average, i.e.
	// every pixel whose alpha is not zero.
	Counted int `json:"counted"`

	// Total is the number of pixels in the image.
	Total int `json:"total"`
}

// AverageColor computes the mean color of the non-transparent pixels of img.
//
// A pixel is skipped only when its alpha is exactly zero. Partially
// transparent pixels count with full weight and their alpha is otherwise
// ignored. Each channel is the floor of the arithmetic mean. An image with no
// visible pixel (or no pixels at all) yields (0,0,0).
func AverageColor(img image.Image) Color {
	return AverageColorStats(img).Color
}

// AverageColorStats is AverageColor plus the pixel counts behind the result.
func AverageColorStats(img image.Image) AverageStats {
	bounds := img.Bounds()
	stats := AverageStats{Total: bounds.Dx() * bounds.Dy()}
	if bounds.Empty() {
		return stats
	}

	var r, g, b, count uint64
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			n := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			if n.A == 0 {
				continue
			}
			r += uint64(n.R)
			g += uint64(n.G)
			b += uint64(n.B)
			count++
		}
	}

	stats.Counted = int(count)
	if count == 0 {
		return stats
	}
	stats.Color = Color{R: uint8(r / count), G: uint8(g / count), B: uint8(b / count)}
	return stats
}
