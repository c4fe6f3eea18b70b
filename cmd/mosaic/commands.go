package main

import (
	"fmt"

	homedir "github.com/mitchellh/go-homedir"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/ironsheep/image-mosaic/internal/imaging"
	"github.com/ironsheep/image-mosaic/internal/library"
	"github.com/ironsheep/image-mosaic/internal/match"
	"github.com/ironsheep/image-mosaic/internal/mosaic"
)

// expandPaths replaces every path with its home-directory expansion, so that
// ~/Pictures works from flags and environment variables alike.
func expandPaths(paths ...*string) error {
	for _, p := range paths {
		res, err := homedir.Expand(*p)
		if err != nil {
			return err
		}
		*p = res
	}
	return nil
}

func configFromContext(c *cli.Context) (mosaic.Config, error) {
	cfg := mosaic.DefaultConfig()
	cfg.TileDir = c.String("tiles")
	cfg.ThumbDir = c.String("thumbs")
	cfg.ThumbSize = c.Int("tile-size")
	cfg.Resampler = c.String("resampler")
	cfg.SourcePath = c.String("source")
	cfg.SourceSize = c.Int("source-size")
	cfg.Ratio = c.Int("ratio")
	cfg.OutputPath = c.String("out")
	cfg.Workers = c.Int("workers")
	err := expandPaths(&cfg.TileDir, &cfg.ThumbDir, &cfg.SourcePath, &cfg.OutputPath)
	return cfg, err
}

func runMosaic(c *cli.Context) error {
	cfg, err := configFromContext(c)
	if err != nil {
		return err
	}
	p := &mosaic.Pipeline{Config: cfg, Logger: log.StandardLogger()}
	result, err := p.Run(c.Context)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "%s: %dx%d from %dx%d source, %d of %d tiles used\n",
		result.OutputPath, result.Width, result.Height,
		result.SourceWidth, result.SourceHeight, result.TilesUsed, result.Tiles)
	return nil
}

// buildLibrary builds the library named by the library flags of c.
func buildLibrary(c *cli.Context) (*library.Library, error) {
	tileDir, thumbDir := c.String("tiles"), c.String("thumbs")
	if err := expandPaths(&tileDir, &thumbDir); err != nil {
		return nil, err
	}
	resampler, err := imaging.ResamplerByName(c.String("resampler"))
	if err != nil {
		return nil, err
	}
	if c.Int("tile-size") <= 0 {
		return nil, fmt.Errorf("tile size must be positive, got %d", c.Int("tile-size"))
	}
	return library.Build(tileDir, library.BuildOptions{
		ThumbDir:  thumbDir,
		ThumbSize: c.Int("tile-size"),
		Resampler: resampler,
		Logger:    log.StandardLogger(),
	})
}

func listLibrary(c *cli.Context) error {
	lib, err := buildLibrary(c)
	if err != nil {
		return err
	}
	for i, e := range lib.Entries() {
		fmt.Fprintf(c.App.Writer, "%d\t%s\t%s\n", i, e.Color.Hex(), e.Path)
	}
	return nil
}

func matchColor(c *cli.Context) error {
	q, err := imaging.ParseHex(c.String("color"))
	if err != nil {
		return err
	}
	lib, err := buildLibrary(c)
	if err != nil {
		return err
	}
	i, err := lib.Match(q)
	if err != nil {
		return err
	}
	e := lib.Entry(i)
	fmt.Fprintf(c.App.Writer, "%d\t%s\t%s\tdistance %.2f\n", i, e.Color.Hex(), e.Path, match.Distance(q, e.Color))
	return nil
}
