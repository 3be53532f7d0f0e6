// Package rasterio loads and saves pixalg grids as image files.
//
// Supported formats are PNG, JPEG, TIFF and BMP. The format is chosen
// from the file extension; unknown extensions are decoded by content.
package rasterio

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/gogpu/pixalg"
)

// I/O errors.
var (
	// ErrUnsupportedFormat is returned when the image format is not supported.
	ErrUnsupportedFormat = errors.New("rasterio: unsupported format")

	// ErrEmptyData is returned when image data is empty.
	ErrEmptyData = errors.New("rasterio: empty data")

	// ErrNoGray16 is returned when 16-bit output is requested for a
	// format that cannot store it.
	ErrNoGray16 = errors.New("rasterio: format has no 16-bit gray mode")
)

// Format identifies an image file format.
type Format string

// Supported formats.
const (
	PNG  Format = "png"
	JPEG Format = "jpeg"
	TIFF Format = "tiff"
	BMP  Format = "bmp"
)

// FormatFromPath returns the format implied by the extension of path.
func FormatFromPath(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return PNG, true
	case ".jpg", ".jpeg":
		return JPEG, true
	case ".tif", ".tiff":
		return TIFF, true
	case ".bmp":
		return BMP, true
	}
	return "", false
}

// Options controls encoding.
type Options struct {
	// Quality is the JPEG quality (1-100). Zero means 95.
	Quality int

	// Gray16 writes band 0 as a 16-bit gray image. PNG and TIFF only.
	Gray16 bool
}

// Load reads the image at path into a grid.
func Load(path string) (*pixalg.Grid, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("rasterio: open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	format, ok := FormatFromPath(path)
	if !ok {
		g, _, err := Decode(f)
		return g, err
	}
	return DecodeFormat(f, format)
}

// LoadBytes decodes an in-memory image, detecting the format by content.
func LoadBytes(data []byte) (*pixalg.Grid, error) {
	if len(data) == 0 {
		return nil, ErrEmptyData
	}
	g, _, err := Decode(bytes.NewReader(data))
	return g, err
}

// Decode decodes an image from r, detecting the format by content.
// The detected format name is returned alongside the grid.
func Decode(r io.Reader) (*pixalg.Grid, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("rasterio: decode: %w", err)
	}
	return pixalg.FromImage(img), format, nil
}

// DecodeFormat decodes an image of a known format from r.
func DecodeFormat(r io.Reader, format Format) (*pixalg.Grid, error) {
	var (
		img image.Image
		err error
	)
	switch format {
	case PNG:
		img, err = png.Decode(r)
	case JPEG:
		img, err = jpeg.Decode(r)
	case TIFF:
		img, err = tiff.Decode(r)
	case BMP:
		img, err = bmp.Decode(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("rasterio: decode %s: %w", format, err)
	}
	return pixalg.FromImage(img), nil
}

// Save writes g to path in the format implied by its extension.
// A nil opts uses the defaults.
func Save(path string, g *pixalg.Grid, opts *Options) error {
	format, ok := FormatFromPath(path)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}

	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("rasterio: create file: %w", err)
	}
	if err := Encode(f, format, g, opts); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Encode writes g to w in the given format.
func Encode(w io.Writer, format Format, g *pixalg.Grid, opts *Options) error {
	var o Options
	if opts != nil {
		o = *opts
	}

	var img image.Image
	if o.Gray16 {
		if format != PNG && format != TIFF {
			return fmt.Errorf("%w: %s", ErrNoGray16, format)
		}
		img = g.ToGray16(0)
	} else {
		img = g.ToImage()
	}

	var err error
	switch format {
	case PNG:
		err = png.Encode(w, img)
	case JPEG:
		err = jpeg.Encode(w, img, &jpeg.Options{Quality: quality(o.Quality)})
	case TIFF:
		err = tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	case BMP:
		err = bmp.Encode(w, img)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return fmt.Errorf("rasterio: encode %s: %w", format, err)
	}
	return nil
}

func quality(q int) int {
	switch {
	case q == 0:
		return 95
	case q < 1:
		return 1
	case q > 100:
		return 100
	}
	return q
}
