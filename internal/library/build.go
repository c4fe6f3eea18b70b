package library

import (
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/ironsheep/image-mosaic/internal/imaging"
)

const (
	// DefaultThumbDir is where thumbnails are written when BuildOptions
	// leaves ThumbDir empty.
	DefaultThumbDir = "output"

	// DefaultThumbSize is the default larger side of a tile thumbnail.
	DefaultThumbSize = 30
)

// BuildOptions controls Build.
type BuildOptions struct {
	// ThumbDir receives one "{r}_{g}_{b}.png" thumbnail per tile. It is
	// created if missing.
	ThumbDir string

	// ThumbSize is the larger side of every thumbnail in pixels.
	ThumbSize int

	// Resampler used for thumbnails; nil selects imaging.DefaultResampler.
	Resampler imaging.Resampler

	// Logger receives per-tile debug output; nil selects the standard logger.
	Logger log.FieldLogger

	// Progress, if set, is called after each tile with the number of tiles
	// processed so far and the number of candidates.
	Progress func(done, total int)

	// Options are passed on to New.
	Options []Option
}

func (o *BuildOptions) withDefaults() BuildOptions {
	out := *o
	if out.ThumbDir == "" {
		out.ThumbDir = DefaultThumbDir
	}
	if out.ThumbSize == 0 {
		out.ThumbSize = DefaultThumbSize
	}
	if out.Resampler == nil {
		out.Resampler = imaging.DefaultResampler
	}
	if out.Logger == nil {
		out.Logger = log.StandardLogger()
	}
	return out
}

// Build scans dir for tile images and returns the resulting library.
//
// Only the top level of dir is scanned and only files with a ".png" extension
// (any case) are used; everything else is skipped silently. Tiles appear in
// the library in the order the directory listing returns them, which is
// sorted by file name.
//
// For every tile the average color of the full-size image is computed, then a
// thumbnail of ThumbSize is written to ThumbDir under the name derived from
// that color. Tiles with identical average colors share one thumbnail file.
//
// Any failure (missing directory, undecodable image, unwritable thumbnail)
// aborts the build with a *TileLoadError; no partial library is returned.
func Build(dir string, opts BuildOptions) (*Library, error) {
	o := opts.withDefaults()
	logger := o.Logger.WithField("tile_dir", dir)

	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, &TileLoadError{Path: dir, Err: err}
	}

	candidates := make([]string, 0, len(files))
	for _, f := range files {
		if f.IsDir() || !imaging.IsTileFile(f.Name()) {
			continue
		}
		candidates = append(candidates, filepath.Join(dir, f.Name()))
	}

	entries := make([]Entry, 0, len(candidates))
	for i, path := range candidates {
		entry, err := buildEntry(path, o)
		if err != nil {
			return nil, err
		}
		logger.WithFields(log.Fields{
			"tile":      path,
			"color":     entry.Color.Hex(),
			"thumbnail": entry.Path,
		}).Debug("Tile indexed")
		entries = append(entries, entry)
		if o.Progress != nil {
			o.Progress(i+1, len(candidates))
		}
	}

	if len(entries) == 0 {
		logger.Warn("No PNG tiles found")
	} else {
		logger.WithField("tiles", len(entries)).Info("Tile library built")
	}
	return New(entries, o.Options...), nil
}

func buildEntry(path string, o BuildOptions) (Entry, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return Entry{}, &TileLoadError{Path: path, Err: err}
	}
	c := imaging.AverageColor(img)

	thumb, err := imaging.Thumbnail(img, o.ThumbSize, o.Resampler)
	if err != nil {
		return Entry{}, &TileLoadError{Path: path, Err: err}
	}
	thumbPath, err := imaging.SaveColorNamed(thumb, c, o.ThumbDir)
	if err != nil {
		return Entry{}, &TileLoadError{Path: path, Err: err}
	}
	return Entry{Color: c, Path: thumbPath}, nil
}
