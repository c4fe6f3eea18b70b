package imaging

import (
	"fmt"
	"image"
	"sort"

	"github.com/anthonynsimon/bild/transform"
	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"
	xdraw "golang.org/x/image/draw"
)

// Resampler scales an image to exactly width x height pixels.
type Resampler interface {
	Resample(img image.Image, width, height int) image.Image
}

// ResamplerFunc adapts a plain function to the Resampler interface.
type ResamplerFunc func(img image.Image, width, height int) image.Image

// Resample calls f(img, width, height).
func (f ResamplerFunc) Resample(img image.Image, width, height int) image.Image {
	return f(img, width, height)
}

// Names accepted by ResamplerByName.
const (
	ResamplerLanczos      = "lanczos"
	ResamplerBildLanczos  = "bild-lanczos"
	ResamplerNfntLanczos3 = "nfnt-lanczos3"
	ResamplerCatmullRom   = "catmullrom"
)

// DefaultResampler is the Lanczos filter of disintegration/imaging.
var DefaultResampler Resampler = ResamplerFunc(lanczos)

var resamplers = map[string]Resampler{
	ResamplerLanczos:      DefaultResampler,
	ResamplerBildLanczos:  ResamplerFunc(bildLanczos),
	ResamplerNfntLanczos3: ResamplerFunc(nfntLanczos3),
	ResamplerCatmullRom:   ResamplerFunc(catmullRom),
}

// ResamplerByName returns the resampler registered under name. An empty name
// selects DefaultResampler.
func ResamplerByName(name string) (Resampler, error) {
	if name == "" {
		return DefaultResampler, nil
	}
	r, ok := resamplers[name]
	if !ok {
		return nil, fmt.Errorf("unknown resampler: %s (available: %v)", name, ResamplerNames())
	}
	return r, nil
}

// ResamplerNames lists the registered resampler names in sorted order.
func ResamplerNames() []string {
	names := make([]string, 0, len(resamplers))
	for name := range resamplers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func lanczos(img image.Image, width, height int) image.Image {
	return imaging.Resize(img, width, height, imaging.Lanczos)
}

func bildLanczos(img image.Image, width, height int) image.Image {
	return transform.Resize(img, width, height, transform.Lanczos)
}

func nfntLanczos3(img image.Image, width, height int) image.Image {
	return resize.Resize(uint(width), uint(height), img, resize.Lanczos3)
}

func catmullRom(img image.Image, width, height int) image.Image {
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	return dst
}
