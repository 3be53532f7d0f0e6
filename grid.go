package pixalg

import (
	"image"
	"image/color"
	"math"
	"sync/atomic"
)

// Raster is a read accessor for a multi-band raster owned by the host.
// Sample coordinates are absolute pixel coordinates inside Bounds.
type Raster interface {
	Bounds() image.Rectangle
	NumBands() int
	Sample(x, y, band int) float64
}

// WritableRaster is a raster that destination images can be written to.
type WritableRaster interface {
	Raster
	SetSample(x, y, band int, v float64)
}

// Acquirer is implemented by rasters that track accessor handles.
// The runtime calls Acquire when a raster is bound and calls the returned
// release function exactly once when the binding is replaced or the
// runtime is closed.
type Acquirer interface {
	Acquire() (release func())
}

// Grid is an in-memory float64 raster with one or more bands.
// Samples are stored pixel-interleaved in row-major order.
type Grid struct {
	rect    image.Rectangle
	bands   int
	data    []float64
	handles atomic.Int32
}

// NewGrid creates a zero-filled grid covering r with the given band count.
// A band count below one is treated as one.
func NewGrid(r image.Rectangle, bands int) *Grid {
	r = r.Canon()
	if bands < 1 {
		bands = 1
	}
	return &Grid{
		rect:  r,
		bands: bands,
		data:  make([]float64, r.Dx()*r.Dy()*bands),
	}
}

// NewGridSize creates a grid with origin (0, 0).
func NewGridSize(width, height, bands int) *Grid {
	return NewGrid(image.Rect(0, 0, width, height), bands)
}

// Bounds returns the pixel rectangle of the grid.
func (g *Grid) Bounds() image.Rectangle { return g.rect }

// NumBands returns the number of bands.
func (g *Grid) NumBands() int { return g.bands }

// Data returns the raw samples.
func (g *Grid) Data() []float64 { return g.data }

func (g *Grid) offset(x, y, band int) int {
	if band < 0 || band >= g.bands || !(image.Point{X: x, Y: y}).In(g.rect) {
		return -1
	}
	return ((y-g.rect.Min.Y)*g.rect.Dx()+(x-g.rect.Min.X))*g.bands + band
}

// Sample returns the value at (x, y) in band. Positions outside the grid
// and unknown bands return NaN.
func (g *Grid) Sample(x, y, band int) float64 {
	i := g.offset(x, y, band)
	if i < 0 {
		return math.NaN()
	}
	return g.data[i]
}

// SetSample sets the value at (x, y) in band. Writes outside the grid
// are ignored.
func (g *Grid) SetSample(x, y, band int, v float64) {
	i := g.offset(x, y, band)
	if i < 0 {
		return
	}
	g.data[i] = v
}

// Fill sets every sample of band to v.
func (g *Grid) Fill(band int, v float64) {
	if band < 0 || band >= g.bands {
		return
	}
	for i := band; i < len(g.data); i += g.bands {
		g.data[i] = v
	}
}

// Acquire registers an accessor handle. See Acquirer.
func (g *Grid) Acquire() func() {
	g.handles.Add(1)
	var once atomic.Bool
	return func() {
		if once.CompareAndSwap(false, true) {
			g.handles.Add(-1)
		}
	}
}

// Handles returns the number of accessor handles currently held.
func (g *Grid) Handles() int { return int(g.handles.Load()) }

// FromImage creates a grid from an image. Gray and Gray16 images give a
// single band holding the raw gray level; everything else gives four
// bands (R, G, B, A) in the 0-255 range, not premultiplied.
func FromImage(img image.Image) *Grid {
	b := img.Bounds()
	switch src := img.(type) {
	case *image.Gray:
		g := NewGrid(b, 1)
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				g.SetSample(x, y, 0, float64(src.GrayAt(x, y).Y))
			}
		}
		return g
	case *image.Gray16:
		g := NewGrid(b, 1)
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				g.SetSample(x, y, 0, float64(src.Gray16At(x, y).Y))
			}
		}
		return g
	}

	g := NewGrid(b, 4)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			g.SetSample(x, y, 0, float64(c.R))
			g.SetSample(x, y, 1, float64(c.G))
			g.SetSample(x, y, 2, float64(c.B))
			g.SetSample(x, y, 3, float64(c.A))
		}
	}
	return g
}

// ToImage converts the grid to an 8-bit image, clamping samples to 0-255.
// One or two bands give a Gray image from band 0, three bands an opaque
// NRGBA image, four or more bands an NRGBA image with alpha from band 3.
func (g *Grid) ToImage() image.Image {
	r := g.rect
	if g.bands < 3 {
		img := image.NewGray(r)
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				img.SetGray(x, y, color.Gray{Y: clamp8(g.Sample(x, y, 0))})
			}
		}
		return img
	}

	img := image.NewNRGBA(r)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			a := uint8(255)
			if g.bands > 3 {
				a = clamp8(g.Sample(x, y, 3))
			}
			img.SetNRGBA(x, y, color.NRGBA{
				R: clamp8(g.Sample(x, y, 0)),
				G: clamp8(g.Sample(x, y, 1)),
				B: clamp8(g.Sample(x, y, 2)),
				A: a,
			})
		}
	}
	return img
}

// ToGray16 converts one band to a 16-bit gray image, clamping samples
// to 0-65535.
func (g *Grid) ToGray16(band int) *image.Gray16 {
	r := g.rect
	img := image.NewGray16(r)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetGray16(x, y, color.Gray16{Y: uint16(clampRound(g.Sample(x, y, band), 65535))})
		}
	}
	return img
}

func clamp8(v float64) uint8 { return uint8(clampRound(v, 255)) }

// clampRound rounds v to the nearest integer in [0, hi]. NaN maps to 0.
func clampRound(v, hi float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > hi {
		return hi
	}
	return math.Round(v)
}
