package main

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	homedir "github.com/mitchellh/go-homedir"
)

func writeTile(t *testing.T, dir, name string, c color.Color) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 6, 6))
	for y := 0; y < 6; y++ {
		for x := 0; x < 6; x++ {
			img.Set(x, y, c)
		}
	}
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("failed to create tile: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode tile: %v", err)
	}
}

// runApp runs the CLI with args and returns what it printed.
func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	err := app.Run(append([]string{"mosaic", "--log-level", "error"}, args...))
	return out.String(), err
}

func fixtureDirs(t *testing.T) (string, string) {
	t.Helper()
	root := t.TempDir()
	tiles := filepath.Join(root, "tiles")
	if err := os.MkdirAll(tiles, 0o755); err != nil {
		t.Fatalf("failed to create tiles dir: %v", err)
	}
	writeTile(t, tiles, "a.png", color.NRGBA{255, 0, 0, 255})
	writeTile(t, tiles, "b.png", color.NRGBA{0, 0, 255, 255})
	return tiles, filepath.Join(root, "thumbs")
}

func TestLibraryCommand(t *testing.T) {
	tiles, thumbs := fixtureDirs(t)

	out, err := runApp(t, "library", "--tiles", tiles, "--thumbs", thumbs, "--tile-size", "3")
	if err != nil {
		t.Fatalf("library failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 tiles, got %q", out)
	}
	if !strings.HasPrefix(lines[0], "0\t#ff0000\t") || !strings.HasPrefix(lines[1], "1\t#0000ff\t") {
		t.Errorf("unexpected listing: %q", out)
	}
}

func TestMatchCommand(t *testing.T) {
	tiles, thumbs := fixtureDirs(t)

	out, err := runApp(t, "match", "--tiles", tiles, "--thumbs", thumbs, "--color", "#2010c0")
	if err != nil {
		t.Fatalf("match failed: %v", err)
	}
	if !strings.HasPrefix(out, "1\t#0000ff\t") {
		t.Errorf("expected the blue tile, got %q", out)
	}

	if _, err := runApp(t, "match", "--tiles", tiles, "--thumbs", thumbs, "--color", "nope"); err == nil {
		t.Error("expected error for an invalid color")
	}
}

func TestRunCommand(t *testing.T) {
	tiles, thumbs := fixtureDirs(t)
	dir := t.TempDir()
	writeTile(t, dir, "photo.png", color.NRGBA{250, 10, 10, 255})
	output := filepath.Join(dir, "mosaic.png")

	out, err := runApp(t, "run",
		"--tiles", tiles, "--thumbs", thumbs, "--tile-size", "2",
		"--source", filepath.Join(dir, "photo.png"), "--source-size", "3",
		"--ratio", "2", "--out", output)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !strings.Contains(out, "6x6") {
		t.Errorf("expected 6x6 mosaic, got %q", out)
	}
	if _, err := os.Stat(output); err != nil {
		t.Errorf("mosaic not written: %v", err)
	}
}

func TestRunCommand_RequiresSource(t *testing.T) {
	if _, err := runApp(t, "run"); err == nil {
		t.Error("expected error without --source")
	}
}

func TestInvalidLogLevel(t *testing.T) {
	app := newApp()
	app.Writer = &bytes.Buffer{}
	if err := app.Run([]string{"mosaic", "--log-level", "loud", "library"}); err == nil {
		t.Error("expected error for an unknown log level")
	}
}

func TestExpandPaths(t *testing.T) {
	home, err := homedir.Dir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}
	a, b := "~/tiles", "/abs/out.png"
	if err := expandPaths(&a, &b); err != nil {
		t.Fatalf("expandPaths failed: %v", err)
	}
	if a != filepath.Join(home, "tiles") {
		t.Errorf("got %s, want %s", a, filepath.Join(home, "tiles"))
	}
	if b != "/abs/out.png" {
		t.Errorf("absolute path changed: %s", b)
	}
}
