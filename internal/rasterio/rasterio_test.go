package rasterio

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/gogpu/pixalg"
)

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path string
		want Format
		ok   bool
	}{
		{"a.png", PNG, true},
		{"a.PNG", PNG, true},
		{"b.jpg", JPEG, true},
		{"b.jpeg", JPEG, true},
		{"dir/c.tif", TIFF, true},
		{"c.tiff", TIFF, true},
		{"d.bmp", BMP, true},
		{"e.gif", "", false},
		{"noext", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := FormatFromPath(tt.path)
			if got != tt.want || ok != tt.ok {
				t.Errorf("FormatFromPath(%q) = %q, %v; want %q, %v", tt.path, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func grayGrid() *pixalg.Grid {
	g := pixalg.NewGridSize(4, 3, 1)
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			g.SetSample(x, y, 0, float64(x*50+y*10))
		}
	}
	return g
}

func rgbGrid() *pixalg.Grid {
	g := pixalg.NewGridSize(2, 2, 3)
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			g.SetSample(x, y, 0, float64(x*100))
			g.SetSample(x, y, 1, float64(y*100))
			g.SetSample(x, y, 2, 42)
		}
	}
	return g
}

// TestSaveLoadLossless round-trips the lossless formats through files.
func TestSaveLoadLossless(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		file      string
		grid      *pixalg.Grid
		opts      *Options
		wantBands int
	}{
		{"gray.png", grayGrid(), nil, 1},
		{"gray.tif", grayGrid(), nil, 1},
		{"rgb.png", rgbGrid(), nil, 4},
		{"rgb.tiff", rgbGrid(), nil, 4},
		{"rgb.bmp", rgbGrid(), nil, 4},
		{"deep.png", grayGrid(), &Options{Gray16: true}, 1},
		{"deep.tif", grayGrid(), &Options{Gray16: true}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			path := filepath.Join(dir, tt.file)
			if err := Save(path, tt.grid, tt.opts); err != nil {
				t.Fatalf("Save() error = %v", err)
			}
			got, err := Load(path)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if got.Bounds() != tt.grid.Bounds() {
				t.Fatalf("Bounds() = %v, want %v", got.Bounds(), tt.grid.Bounds())
			}
			if got.NumBands() != tt.wantBands {
				t.Fatalf("NumBands() = %d, want %d", got.NumBands(), tt.wantBands)
			}
			b := tt.grid.Bounds()
			for y := b.Min.Y; y < b.Max.Y; y++ {
				for x := b.Min.X; x < b.Max.X; x++ {
					for band := range tt.grid.NumBands() {
						want := tt.grid.Sample(x, y, band)
						if g := got.Sample(x, y, band); g != want {
							t.Errorf("(%d, %d) band %d = %v, want %v", x, y, band, g, want)
						}
					}
				}
			}
		})
	}
}

func TestSaveLoadJPEG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "img.jpg")
	g := pixalg.NewGridSize(16, 8, 1)
	g.Fill(0, 128)
	if err := Save(path, g, &Options{Quality: 100}); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Bounds() != g.Bounds() {
		t.Fatalf("Bounds() = %v, want %v", got.Bounds(), g.Bounds())
	}
	if v := got.Sample(3, 3, 0); v < 126 || v > 130 {
		t.Errorf("Sample(3, 3, 0) = %v, want about 128", v)
	}
}

func TestSaveErrors(t *testing.T) {
	dir := t.TempDir()
	if err := Save(filepath.Join(dir, "x.gif"), grayGrid(), nil); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Save(.gif) error = %v, want ErrUnsupportedFormat", err)
	}
	if err := Save(filepath.Join(dir, "x.bmp"), grayGrid(), &Options{Gray16: true}); !errors.Is(err, ErrNoGray16) {
		t.Errorf("Save(.bmp, Gray16) error = %v, want ErrNoGray16", err)
	}
	if err := Save(filepath.Join(dir, "missing", "x.png"), grayGrid(), nil); err == nil {
		t.Error("Save() into a missing directory should fail")
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Error("Load() of a missing file should fail")
	}
	if _, err := LoadBytes(nil); !errors.Is(err, ErrEmptyData) {
		t.Errorf("LoadBytes(nil) error = %v, want ErrEmptyData", err)
	}
	if _, err := LoadBytes([]byte("not an image")); err == nil {
		t.Error("LoadBytes() of garbage should fail")
	}

	path := filepath.Join(t.TempDir(), "bad.tif")
	if err := os.WriteFile(path, []byte("garbage"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load() of a corrupt TIFF should fail")
	}
}

func TestLoadDetectsByContent(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, BMP, rgbGrid(), nil); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "raster.dat")
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		t.Fatal(err)
	}
	g, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if g.Sample(1, 1, 0) != 100 || g.Sample(1, 1, 2) != 42 {
		t.Errorf("samples = %v, %v; want 100, 42", g.Sample(1, 1, 0), g.Sample(1, 1, 2))
	}

	_, format, err := Decode(bytes.NewReader(buf.Bytes()))
	if err != nil || format != "bmp" {
		t.Errorf("Decode() format = %q, %v; want bmp", format, err)
	}
}
