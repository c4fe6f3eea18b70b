package imaging

import (
	"bytes"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"
)

func TestThumbnailSize(t *testing.T) {
	tests := []struct {
		name         string
		w, h, max    int
		wantW, wantH int
	}{
		{"landscape", 100, 50, 30, 30, 15},
		{"portrait", 50, 100, 30, 15, 30},
		{"square", 100, 100, 30, 30, 30},
		{"truncates not rounds", 7, 3, 30, 30, 12},
		{"truncates portrait", 3, 7, 10, 4, 10},
		{"exact product not float ratio", 22, 11, 30, 30, 15},
		{"upscale", 4, 2, 30, 30, 15},
		{"thin strip keeps one pixel", 1000, 1, 30, 30, 1},
		{"zero max", 100, 50, 0, 0, 0},
		{"zero width", 0, 50, 30, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := ThumbnailSize(tt.w, tt.h, tt.max)
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("ThumbnailSize(%d,%d,%d): got %dx%d, want %dx%d",
					tt.w, tt.h, tt.max, w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestThumbnail_LargerSideIsMax(t *testing.T) {
	sizes := []struct{ w, h int }{{100, 50}, {50, 100}, {64, 64}, {33, 17}, {5, 9}}

	for _, name := range ResamplerNames() {
		r, err := ResamplerByName(name)
		if err != nil {
			t.Fatalf("ResamplerByName(%s) failed: %v", name, err)
		}
		t.Run(name, func(t *testing.T) {
			for _, s := range sizes {
				img := createPatternImage(s.w, s.h)
				thumb, err := Thumbnail(img, 30, r)
				if err != nil {
					t.Fatalf("Thumbnail failed: %v", err)
				}
				b := thumb.Bounds()
				if b.Min != (image.Point{}) {
					t.Errorf("%dx%d: bounds do not start at origin: %v", s.w, s.h, b)
				}
				wantW, wantH := ThumbnailSize(s.w, s.h, 30)
				if b.Dx() != wantW || b.Dy() != wantH {
					t.Errorf("%dx%d: got %dx%d, want %dx%d", s.w, s.h, b.Dx(), b.Dy(), wantW, wantH)
				}
				if max(b.Dx(), b.Dy()) != 30 {
					t.Errorf("%dx%d: larger side is %d, want 30", s.w, s.h, max(b.Dx(), b.Dy()))
				}
			}
		})
	}
}

func TestThumbnail_UniformColorPreserved(t *testing.T) {
	img := createInMemoryImage(90, 60, color.NRGBA{40, 160, 220, 255})

	thumb, err := Thumbnail(img, 30, nil)
	if err != nil {
		t.Fatalf("Thumbnail failed: %v", err)
	}
	if got := AverageColor(thumb); got != (Color{40, 160, 220}) {
		t.Errorf("AverageColor of thumbnail: got %v, want (40,160,220)", got)
	}
}

func TestThumbnail_InvalidInput(t *testing.T) {
	if _, err := Thumbnail(createInMemoryImage(10, 10, color.White), 0, nil); err == nil {
		t.Error("Thumbnail should fail for zero size")
	}
	if _, err := Thumbnail(createInMemoryImage(10, 10, color.White), -5, nil); err == nil {
		t.Error("Thumbnail should fail for negative size")
	}
	if _, err := Thumbnail(image.NewNRGBA(image.Rectangle{}), 30, nil); err == nil {
		t.Error("Thumbnail should fail for empty image")
	}
}

func TestResamplerByName(t *testing.T) {
	if r, err := ResamplerByName(""); err != nil || r == nil {
		t.Errorf("empty name should select the default resampler, got %v, %v", r, err)
	}
	if _, err := ResamplerByName("bogus"); err == nil {
		t.Error("ResamplerByName should fail for unknown name")
	}
	if len(ResamplerNames()) != 4 {
		t.Errorf("expected 4 resamplers, got %v", ResamplerNames())
	}
}

func TestSaveNamed(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "thumbs")
	img := createPatternImage(12, 8)

	path, err := SaveNamed(img, "source", dir)
	if err != nil {
		t.Fatalf("SaveNamed failed: %v", err)
	}
	if path != filepath.Join(dir, "source.png") {
		t.Errorf("path: got %s, want %s", path, filepath.Join(dir, "source.png"))
	}

	loaded, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if loaded.Bounds().Dx() != 12 || loaded.Bounds().Dy() != 8 {
		t.Errorf("dimensions: got %v, want 12x8", loaded.Bounds())
	}
}

func TestSaveColorNamed(t *testing.T) {
	dir := t.TempDir()
	c := Color{R: 1, G: 22, B: 133}

	path, err := SaveColorNamed(createInMemoryImage(4, 4, c), c, dir)
	if err != nil {
		t.Fatalf("SaveColorNamed failed: %v", err)
	}
	if filepath.Base(path) != "1_22_133.png" {
		t.Errorf("file name: got %s, want 1_22_133.png", filepath.Base(path))
	}
}

func TestSaveNamed_EmptyName(t *testing.T) {
	if _, err := SaveNamed(createPatternImage(4, 4), "", t.TempDir()); err == nil {
		t.Error("SaveNamed should fail for empty name")
	}
}

func TestSaveNamed_Deterministic(t *testing.T) {
	img := createPatternImage(50, 30)
	thumb, err := Thumbnail(img, 20, nil)
	if err != nil {
		t.Fatalf("Thumbnail failed: %v", err)
	}

	p1, err := SaveNamed(thumb, "a", t.TempDir())
	if err != nil {
		t.Fatalf("SaveNamed failed: %v", err)
	}
	thumb2, _ := Thumbnail(img, 20, nil)
	p2, err := SaveNamed(thumb2, "a", t.TempDir())
	if err != nil {
		t.Fatalf("SaveNamed failed: %v", err)
	}

	b1, _ := os.ReadFile(p1)
	b2, _ := os.ReadFile(p2)
	if !bytes.Equal(b1, b2) {
		t.Error("identical thumbnails should produce byte-identical files")
	}
}
