package mosaic

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/ironsheep/image-mosaic/internal/imaging"
	"github.com/ironsheep/image-mosaic/internal/library"
)

// Result summarises a finished run.
type Result struct {
	OutputPath   string `json:"output"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	SourceWidth  int    `json:"source_width"`
	SourceHeight int    `json:"source_height"`
	Tiles        int    `json:"tiles"`

	// TilesUsed counts the tiles the library has decoded so far, which
	// includes earlier runs when Pipeline.Library is shared.
	TilesUsed int `json:"tiles_used"`
}

// Pipeline runs the whole mosaic process for one Config.
type Pipeline struct {
	Config Config

	// Logger receives progress and debug output; nil selects the standard
	// logger.
	Logger log.FieldLogger

	// LibraryOptions are passed to library.Build.
	LibraryOptions []library.Option

	// Library, if set, is used as is and TileDir is not scanned. Its tile
	// cache carries over between runs.
	Library *library.Library
}

// Run executes cfg with default options.
func Run(ctx context.Context, cfg Config) (*Result, error) {
	p := &Pipeline{Config: cfg}
	return p.Run(ctx)
}

// Run builds the tile library, resizes the source image, composes the
// mosaic and writes it to OutputPath.
//
// The steps and their failure modes:
//
//  1. The configuration and the source extension are checked first. A wrong
//     extension returns an *InvalidExtensionError before any file is written.
//  2. The tile library is built; thumbnails land in ThumbDir. Failures are
//     *library.TileLoadError.
//  3. The source is resized to SourceSize and saved as SourceName in
//     ThumbDir, then read back. A missing file at either point returns a
//     *SourceImageMissingError and nothing is deleted.
//  4. The mosaic is composed. A missing thumbnail returns a
//     *library.TileDecodeError.
//  5. The canvas is written to a temporary file next to OutputPath and
//     renamed into place, so OutputPath only ever holds a complete mosaic.
//     The resized source is then removed.
//
// Thumbnails written before a failure are kept.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	cfg := p.Config
	logger := p.Logger
	if logger == nil {
		logger = log.StandardLogger()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if !imaging.IsSourceFile(cfg.SourcePath) {
		return nil, &InvalidExtensionError{Path: cfg.SourcePath}
	}
	resampler, err := imaging.ResamplerByName(cfg.Resampler)
	if err != nil {
		return nil, err
	}

	lib := p.Library
	if lib == nil {
		lib, err = library.Build(cfg.TileDir, library.BuildOptions{
			ThumbDir:  cfg.ThumbDir,
			ThumbSize: cfg.ThumbSize,
			Resampler: resampler,
			Logger:    logger,
			Progress:  LoggerProgressFunc(logger, "Tiles", 100),
			Options:   p.LibraryOptions,
		})
		if err != nil {
			return nil, err
		}
	}

	resizedPath, err := prepareSource(cfg, resampler)
	if err != nil {
		return nil, err
	}
	logger.WithField("path", resizedPath).Debug("Source image resized")

	src, err := openSource(resizedPath)
	if err != nil {
		return nil, err
	}

	composer := &Composer{
		Workers:  cfg.Workers,
		Logger:   logger,
		Progress: LoggerProgressFunc(logger, "Rows", 50),
	}
	canvas, err := composer.Compose(ctx, src, lib, cfg.Ratio)
	if err != nil {
		return nil, err
	}

	if err := writeAtomic(canvas, cfg.OutputPath); err != nil {
		return nil, err
	}
	if err := os.Remove(resizedPath); err != nil {
		logger.WithError(err).Warn("Failed to remove resized source image")
	}

	result := &Result{
		OutputPath:   cfg.OutputPath,
		Width:        canvas.Bounds().Dx(),
		Height:       canvas.Bounds().Dy(),
		SourceWidth:  src.Bounds().Dx(),
		SourceHeight: src.Bounds().Dy(),
		Tiles:        lib.Len(),
		TilesUsed:    lib.DecodedCount(),
	}
	logger.WithFields(log.Fields{
		"output":     result.OutputPath,
		"width":      result.Width,
		"height":     result.Height,
		"tiles_used": result.TilesUsed,
	}).Info("Mosaic written")
	return result, nil
}

// prepareSource resizes the source image and saves it in the thumbnail
// directory, returning the path of the resized copy.
func prepareSource(cfg Config, resampler imaging.Resampler) (string, error) {
	img, err := openSource(cfg.SourcePath)
	if err != nil {
		return "", err
	}
	resized, err := imaging.Thumbnail(img, cfg.SourceSize, resampler)
	if err != nil {
		return "", fmt.Errorf("failed to resize source image: %w", err)
	}
	return imaging.SaveNamed(resized, cfg.SourceName, cfg.ThumbDir)
}

func openSource(path string) (image.Image, error) {
	img, err := imaging.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &SourceImageMissingError{Path: path, Err: err}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read source image %s: %w", path, err)
	}
	return img, nil
}

// writeAtomic encodes img as PNG into a temporary file in the directory of
// path and renames it to path.
func writeAtomic(img image.Image, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".mosaic-*.png")
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := imaging.WritePNG(tmp, img); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to encode mosaic: %w", err)
	}
	// CreateTemp opens the file 0600; the rename would keep that.
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set mosaic permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write mosaic: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to write mosaic: %w", err)
	}
	return nil
}
