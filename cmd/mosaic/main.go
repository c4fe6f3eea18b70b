package main

import (
	"errors"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/ironsheep/image-mosaic/internal/library"
	"github.com/ironsheep/image-mosaic/internal/mosaic"
	"github.com/ironsheep/image-mosaic/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func libraryFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "tiles",
			Aliases: []string{"t"},
			Usage:   "directory of PNG tile images",
			Value:   mosaic.DefaultTileDir,
			EnvVars: []string{"MOSAIC_TILE_DIR"},
		},
		&cli.StringFlag{
			Name:    "thumbs",
			Usage:   "directory receiving tile thumbnails and the resized source",
			Value:   library.DefaultThumbDir,
			EnvVars: []string{"MOSAIC_THUMB_DIR"},
		},
		&cli.IntFlag{
			Name:    "tile-size",
			Usage:   "larger side of each tile thumbnail in pixels",
			Value:   library.DefaultThumbSize,
			EnvVars: []string{"MOSAIC_TILE_SIZE"},
		},
		&cli.StringFlag{
			Name:    "resampler",
			Usage:   "resampling filter (lanczos, bild-lanczos, nfnt-lanczos3, catmullrom)",
			Value:   "lanczos",
			EnvVars: []string{"MOSAIC_RESAMPLER"},
		},
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "mosaic",
		Usage:   "build photomosaics from a directory of tile images",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "debug, info, warn or error",
				Value:   "info",
				EnvVars: []string{"MOSAIC_LOG_LEVEL"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "compose a mosaic of a source image",
				Flags: append(libraryFlags(),
					&cli.StringFlag{
						Name:     "source",
						Aliases:  []string{"s"},
						Usage:    "source image (.png, .jpg or .jpeg)",
						Required: true,
						EnvVars:  []string{"MOSAIC_SOURCE"},
					},
					&cli.IntFlag{
						Name:    "source-size",
						Usage:   "larger side of the resized source; one tile per pixel",
						Value:   mosaic.DefaultSourceSize,
						EnvVars: []string{"MOSAIC_SOURCE_SIZE"},
					},
					&cli.IntFlag{
						Name:    "ratio",
						Aliases: []string{"r"},
						Usage:   "output pixels per source pixel",
						Value:   mosaic.DefaultRatio,
						EnvVars: []string{"MOSAIC_RATIO"},
					},
					&cli.StringFlag{
						Name:    "out",
						Aliases: []string{"o"},
						Usage:   "output PNG path",
						Value:   mosaic.DefaultOutputPath,
						EnvVars: []string{"MOSAIC_OUTPUT"},
					},
					&cli.IntFlag{
						Name:    "workers",
						Aliases: []string{"j"},
						Usage:   "goroutines used for matching",
						Value:   1,
						EnvVars: []string{"MOSAIC_WORKERS"},
					},
				),
				Action: runMosaic,
			},
			{
				Name:   "library",
				Usage:  "build the tile library and list its tiles",
				Flags:  libraryFlags(),
				Action: listLibrary,
			},
			{
				Name:  "match",
				Usage: "print the tile nearest to a color",
				Flags: append(libraryFlags(),
					&cli.StringFlag{
						Name:     "color",
						Aliases:  []string{"c"},
						Usage:    "query color as hex, e.g. #ff8800",
						Required: true,
					},
				),
				Action: matchColor,
			},
			{
				Name:  "serve",
				Usage: "run the MCP server on stdin/stdout",
				Action: func(c *cli.Context) error {
					server.Version = Version
					return server.NewWithLogger(log.StandardLogger()).Run()
				},
			},
		},
		Before: configureLogging,
		Action: func(c *cli.Context) error {
			return errors.New("no command specified")
		},
	}
}

// configureLogging sends logs to stderr, stdout being reserved for results
// and MCP traffic.
func configureLogging(c *cli.Context) error {
	log.SetOutput(os.Stderr)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	level, err := log.ParseLevel(c.String("log-level"))
	if err != nil {
		return err
	}
	log.SetLevel(level)
	log.WithFields(log.Fields{
		"version": Version,
		"built":   BuildTime,
		"commit":  GitCommit,
	}).Debug("Image mosaic")
	return nil
}

func main() {
	// Handle --version and -v flags
	if len(os.Args) == 2 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("mosaic %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		}
	}

	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
