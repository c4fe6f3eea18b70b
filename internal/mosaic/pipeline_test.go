package mosaic

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/ironsheep/image-mosaic/internal/library"
)

// pipelineFixture lays out a tile directory with a red and a blue tile and a
// 4x2 source whose left half is red and right half blue.
func pipelineFixture(t *testing.T) Config {
	t.Helper()
	root := t.TempDir()

	tileDir := filepath.Join(root, "tiles")
	if err := os.MkdirAll(tileDir, 0o755); err != nil {
		t.Fatalf("failed to create tile dir: %v", err)
	}
	writePNG(t, tileDir, "a_red.png", uniformImage(20, 20, red))
	writePNG(t, tileDir, "b_blue.png", uniformImage(20, 20, blue))
	if err := os.WriteFile(filepath.Join(tileDir, "notes.txt"), []byte("ignored"), 0o644); err != nil {
		t.Fatalf("failed to write notes: %v", err)
	}

	src := image.NewNRGBA(image.Rect(0, 0, 4, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 4; x++ {
			if x < 2 {
				src.SetNRGBA(x, y, red)
			} else {
				src.SetNRGBA(x, y, blue)
			}
		}
	}
	srcPath := writePNG(t, root, "photo.png", src)

	cfg := DefaultConfig()
	cfg.TileDir = tileDir
	cfg.ThumbDir = filepath.Join(root, "thumbs")
	cfg.ThumbSize = 5
	cfg.SourcePath = srcPath
	cfg.SourceSize = 4
	cfg.Ratio = 5
	cfg.OutputPath = filepath.Join(root, "out", "mosaic.png")
	return cfg
}

func readPNG(t *testing.T, path string) image.Image {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open %s: %v", path, err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("failed to decode %s: %v", path, err)
	}
	return img
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func TestRun_Success(t *testing.T) {
	cfg := pipelineFixture(t)

	result, err := Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.Width != 20 || result.Height != 10 {
		t.Errorf("result size: got %dx%d, want 20x10", result.Width, result.Height)
	}
	if result.SourceWidth != 4 || result.SourceHeight != 2 {
		t.Errorf("source size: got %dx%d, want 4x2", result.SourceWidth, result.SourceHeight)
	}
	if result.Tiles != 2 || result.TilesUsed != 2 {
		t.Errorf("tiles: got %d used of %d, want 2 of 2", result.TilesUsed, result.Tiles)
	}

	out := readPNG(t, cfg.OutputPath)
	if out.Bounds() != image.Rect(0, 0, 20, 10) {
		t.Fatalf("output bounds: got %v, want 20x10", out.Bounds())
	}
	checks := []struct {
		x, y int
		want color.NRGBA
	}{
		{0, 0, red},
		{4, 9, red},
		{15, 0, blue},
		{19, 9, blue},
	}
	for _, c := range checks {
		got := color.NRGBAModel.Convert(out.At(c.x, c.y)).(color.NRGBA)
		if got != c.want {
			t.Errorf("pixel (%d,%d): got %v, want %v", c.x, c.y, got, c.want)
		}
	}

	for _, name := range []string{"255_0_0.png", "0_0_255.png"} {
		if !fileExists(filepath.Join(cfg.ThumbDir, name)) {
			t.Errorf("thumbnail %s missing", name)
		}
	}
	if fileExists(filepath.Join(cfg.ThumbDir, cfg.SourceName+".png")) {
		t.Error("resized source should be removed after a successful run")
	}

	info, err := os.Stat(cfg.OutputPath)
	if err != nil {
		t.Fatalf("failed to stat output: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o644 {
		t.Errorf("output permissions: got %o, want 644", perm)
	}

	matches, _ := filepath.Glob(filepath.Join(filepath.Dir(cfg.OutputPath), ".mosaic-*"))
	if len(matches) != 0 {
		t.Errorf("temporary files left behind: %v", matches)
	}
}

func TestRun_Idempotent(t *testing.T) {
	cfg := pipelineFixture(t)

	if _, err := Run(context.Background(), cfg); err != nil {
		t.Fatalf("first Run failed: %v", err)
	}
	first, err := os.ReadFile(cfg.OutputPath)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}

	cfg.Workers = 4
	if _, err := Run(context.Background(), cfg); err != nil {
		t.Fatalf("second Run failed: %v", err)
	}
	second, err := os.ReadFile(cfg.OutputPath)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}

	if !bytes.Equal(first, second) {
		t.Error("repeated runs produced different output")
	}
}

func TestRun_InvalidExtension(t *testing.T) {
	cfg := pipelineFixture(t)
	cfg.SourcePath = filepath.Join(filepath.Dir(cfg.SourcePath), "photo.gif")

	_, err := Run(context.Background(), cfg)
	var extErr *InvalidExtensionError
	if !errors.As(err, &extErr) {
		t.Fatalf("expected *InvalidExtensionError, got %T: %v", err, err)
	}
	if extErr.Path != cfg.SourcePath {
		t.Errorf("Path: got %s, want %s", extErr.Path, cfg.SourcePath)
	}
	if fileExists(cfg.ThumbDir) {
		t.Error("no thumbnails should be written for an invalid extension")
	}
	if fileExists(cfg.OutputPath) {
		t.Error("no output should be written for an invalid extension")
	}
}

func TestRun_SourceMissing(t *testing.T) {
	cfg := pipelineFixture(t)
	cfg.SourcePath = filepath.Join(filepath.Dir(cfg.SourcePath), "absent.jpg")

	_, err := Run(context.Background(), cfg)
	var missErr *SourceImageMissingError
	if !errors.As(err, &missErr) {
		t.Fatalf("expected *SourceImageMissingError, got %T: %v", err, err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Error("error should wrap os.ErrNotExist")
	}
	if fileExists(cfg.OutputPath) {
		t.Error("no output should be written when the source is missing")
	}
	// The library was already built.
	if !fileExists(filepath.Join(cfg.ThumbDir, "255_0_0.png")) {
		t.Error("thumbnails written before the failure should be kept")
	}
}

func TestRun_TileLoadError(t *testing.T) {
	cfg := pipelineFixture(t)
	corrupt := filepath.Join(cfg.TileDir, "c_corrupt.png")
	if err := os.WriteFile(corrupt, []byte("not a png"), 0o644); err != nil {
		t.Fatalf("failed to write corrupt tile: %v", err)
	}

	_, err := Run(context.Background(), cfg)
	var loadErr *library.TileLoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("expected *library.TileLoadError, got %T: %v", err, err)
	}
	if loadErr.Path != corrupt {
		t.Errorf("Path: got %s, want %s", loadErr.Path, corrupt)
	}
	if fileExists(cfg.OutputPath) {
		t.Error("no output should be written after a tile load failure")
	}
}

func TestRun_TileDecodeError(t *testing.T) {
	cfg := pipelineFixture(t)
	failing := library.DecoderFunc(func(path string) (*image.RGBA, error) {
		return nil, os.ErrNotExist
	})

	p := &Pipeline{Config: cfg, LibraryOptions: []library.Option{library.WithDecoder(failing)}}
	_, err := p.Run(context.Background())

	var decErr *library.TileDecodeError
	if !errors.As(err, &decErr) {
		t.Fatalf("expected *library.TileDecodeError, got %T: %v", err, err)
	}
	if fileExists(cfg.OutputPath) {
		t.Error("no output should be written after a decode failure")
	}
	if !fileExists(filepath.Join(cfg.ThumbDir, cfg.SourceName+".png")) {
		t.Error("resized source should be kept after a failed run")
	}
}

func TestRun_EmptyTileDir(t *testing.T) {
	cfg := pipelineFixture(t)
	cfg.TileDir = t.TempDir()

	_, err := Run(context.Background(), cfg)
	if !errors.Is(err, library.ErrEmptyLibrary) {
		t.Errorf("got %v, want ErrEmptyLibrary", err)
	}
}

func TestRun_InvalidConfig(t *testing.T) {
	cfg := pipelineFixture(t)
	cfg.Ratio = 0

	if _, err := Run(context.Background(), cfg); err == nil {
		t.Fatal("Run should fail for a zero ratio")
	}
	if fileExists(cfg.ThumbDir) {
		t.Error("nothing should be written for an invalid configuration")
	}
}

func TestPipeline_PrebuiltLibrary(t *testing.T) {
	cfg := pipelineFixture(t)
	lib, err := library.Build(cfg.TileDir, library.BuildOptions{ThumbDir: cfg.ThumbDir, ThumbSize: cfg.ThumbSize})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	// A tile directory that no longer exists proves it is not rescanned.
	cfg.TileDir = filepath.Join(t.TempDir(), "gone")
	p := &Pipeline{Config: cfg, Library: lib}
	result, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.Tiles != 2 {
		t.Errorf("Tiles: got %d, want 2", result.Tiles)
	}
	if !lib.Cached(0) || !lib.Cached(1) {
		t.Error("shared library should keep its decoded tiles")
	}
}
