package mosaic

import (
	"context"
	"fmt"
	"image"

	log "github.com/sirupsen/logrus"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/image-mosaic/internal/imaging"
	"github.com/ironsheep/image-mosaic/internal/library"
)

// Composer turns a source image into a mosaic of library tiles.
//
// The zero value composes sequentially and logs to the standard logger.
type Composer struct {
	// Workers is the number of goroutines used to match source rows against
	// the library. Values below 2 match sequentially. Pasting is always done
	// by a single goroutine in row-major order, so the output does not depend
	// on Workers.
	Workers int

	// Logger receives debug output; nil selects the standard logger.
	Logger log.FieldLogger

	// Progress, if set, is called after each pasted source row.
	Progress ProgressFunc
}

// Compose builds a canvas of src.Dx()*ratio x src.Dy()*ratio pixels.
//
// Every source pixel (x, y) is reduced to its RGB color, alpha ignored, and
// matched to the nearest library tile. The tile bitmap is pasted with its
// top-left corner at (x*ratio, y*ratio), using its own alpha as the mask:
// transparent tile pixels leave the canvas as it was, initially opaque white.
// A tile larger than ratio spills over into the following cells and is in
// turn covered by the tiles pasted after it; everything past the canvas edge
// is clipped.
//
// Each tile bitmap is decoded from disk at most once per library. A missing
// or corrupt thumbnail yields a *library.TileDecodeError and no canvas.
func (c *Composer) Compose(ctx context.Context, src image.Image, lib *library.Library, ratio int) (*image.RGBA, error) {
	if ratio <= 0 {
		return nil, fmt.Errorf("ratio must be positive, got %d", ratio)
	}
	if lib.Len() == 0 {
		return nil, library.ErrEmptyLibrary
	}

	logger := c.Logger
	if logger == nil {
		logger = log.StandardLogger()
	}
	progress := c.Progress
	if progress == nil {
		progress = ProgressIgnore
	}

	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	indices, err := c.matchRows(ctx, src, lib)
	if err != nil {
		return nil, err
	}

	canvas := image.NewRGBA(image.Rect(0, 0, width*ratio, height*ratio))
	xdraw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, xdraw.Src)

	for y := 0; y < height; y++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for x := 0; x < width; x++ {
			tile, err := lib.Tile(indices[y][x])
			if err != nil {
				return nil, err
			}
			paste(canvas, tile, image.Pt(x*ratio, y*ratio))
		}
		progress(y+1, height)
	}

	logger.WithFields(log.Fields{
		"width":       canvas.Bounds().Dx(),
		"height":      canvas.Bounds().Dy(),
		"tiles_used":  lib.DecodedCount(),
		"tiles_total": lib.Len(),
	}).Debug("Mosaic composed")
	return canvas, nil
}

// matchRows returns the library index for every source pixel, indexed
// [y][x] relative to the source bounds.
func (c *Composer) matchRows(ctx context.Context, src image.Image, lib *library.Library) ([][]int, error) {
	bounds := src.Bounds()
	indices := make([][]int, bounds.Dy())

	matchRow := func(y int) error {
		row := make([]int, bounds.Dx())
		for x := range row {
			i, err := lib.Match(imaging.FromColor(src.At(bounds.Min.X+x, bounds.Min.Y+y)))
			if err != nil {
				return err
			}
			row[x] = i
		}
		indices[y] = row
		return nil
	}

	if c.Workers < 2 {
		for y := range indices {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if err := matchRow(y); err != nil {
				return nil, err
			}
		}
		return indices, nil
	}

	// Rows write disjoint slots of indices. Warming the tile cache here lets
	// decoding overlap with matching; the library guarantees a single decode
	// per tile however many rows hit it.
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(c.Workers)
	for y := range indices {
		y := y
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := matchRow(y); err != nil {
				return err
			}
			for _, i := range indices[y] {
				if _, err := lib.Tile(i); err != nil {
					return err
				}
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return indices, nil
}

// paste draws tile onto canvas with its top-left corner at at, masked by the
// tile's alpha channel. The canvas is opaque, so Over keeps it at alpha 255
// and partial tile alpha only blends the color channels.
func paste(canvas *image.RGBA, tile *image.RGBA, at image.Point) {
	tb := tile.Bounds()
	dst := image.Rectangle{Min: at, Max: at.Add(tb.Size())}
	xdraw.Draw(canvas, dst, tile, tb.Min, xdraw.Over)
}
