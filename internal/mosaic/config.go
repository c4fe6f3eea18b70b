package mosaic

import (
	"errors"
	"fmt"

	"github.com/ironsheep/image-mosaic/internal/imaging"
	"github.com/ironsheep/image-mosaic/internal/library"
)

// Defaults used by DefaultConfig.
const (
	DefaultTileDir    = "source"
	DefaultSourceSize = 100
	DefaultRatio      = 10
	DefaultSourceName = "source"
	DefaultOutputPath = "output.png"
)

// Config holds every parameter of a mosaic run.
type Config struct {
	// TileDir is scanned (non-recursively) for PNG tiles.
	TileDir string `json:"tile_dir"`

	// ThumbDir receives the tile thumbnails and the resized source image.
	ThumbDir string `json:"thumb_dir"`

	// ThumbSize is the larger side of each tile thumbnail in pixels.
	ThumbSize int `json:"tile_size"`

	// SourcePath is the image to turn into a mosaic (.png, .jpg or .jpeg).
	SourcePath string `json:"source"`

	// SourceSize is the larger side of the source after resizing. Each of its
	// pixels becomes one mosaic cell.
	SourceSize int `json:"source_size"`

	// SourceName is the file name stem of the resized source in ThumbDir. The
	// file is removed once the mosaic is written.
	SourceName string `json:"source_name"`

	// Ratio is the magnification from source pixels to output pixels.
	Ratio int `json:"ratio"`

	// OutputPath is where the mosaic PNG is written.
	OutputPath string `json:"output"`

	// Workers is the number of goroutines used for matching; see Composer.
	Workers int `json:"workers"`

	// Resampler names the filter used for thumbnails and the source resize;
	// see imaging.ResamplerByName.
	Resampler string `json:"resampler"`
}

// DefaultConfig returns a Config with every optional field set. SourcePath
// must still be filled in.
func DefaultConfig() Config {
	return Config{
		TileDir:    DefaultTileDir,
		ThumbDir:   library.DefaultThumbDir,
		ThumbSize:  library.DefaultThumbSize,
		SourceSize: DefaultSourceSize,
		SourceName: DefaultSourceName,
		Ratio:      DefaultRatio,
		OutputPath: DefaultOutputPath,
		Workers:    1,
		Resampler:  imaging.ResamplerLanczos,
	}
}

// Validate checks that the configuration can be run.
func (c Config) Validate() error {
	var errs []error
	if c.TileDir == "" {
		errs = append(errs, errors.New("tile directory is required"))
	}
	if c.ThumbDir == "" {
		errs = append(errs, errors.New("thumbnail directory is required"))
	}
	if c.SourcePath == "" {
		errs = append(errs, errors.New("source image is required"))
	}
	if c.SourceName == "" {
		errs = append(errs, errors.New("source name is required"))
	}
	if c.OutputPath == "" {
		errs = append(errs, errors.New("output path is required"))
	}
	if c.ThumbSize <= 0 {
		errs = append(errs, fmt.Errorf("tile size must be positive, got %d", c.ThumbSize))
	}
	if c.SourceSize <= 0 {
		errs = append(errs, fmt.Errorf("source size must be positive, got %d", c.SourceSize))
	}
	if c.Ratio <= 0 {
		errs = append(errs, fmt.Errorf("ratio must be positive, got %d", c.Ratio))
	}
	if _, err := imaging.ResamplerByName(c.Resampler); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
