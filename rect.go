package pixalg

import "image"

// Rect is an axis-aligned rectangle in world units.
// The minimum edges are inclusive and the maximum edges exclusive.
type Rect struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// NewRect returns the rectangle with origin (x, y) and the given size.
func NewRect(x, y, width, height float64) Rect {
	return Rect{MinX: x, MinY: y, MaxX: x + width, MaxY: y + height}
}

// RectFromImage converts a pixel rectangle to world units one to one.
func RectFromImage(r image.Rectangle) Rect {
	return Rect{
		MinX: float64(r.Min.X), MinY: float64(r.Min.Y),
		MaxX: float64(r.Max.X), MaxY: float64(r.Max.Y),
	}
}

// Width returns the extent along x.
func (r Rect) Width() float64 { return r.MaxX - r.MinX }

// Height returns the extent along y.
func (r Rect) Height() float64 { return r.MaxY - r.MinY }

// Empty reports whether the rectangle has no area. NaN edges count as empty.
func (r Rect) Empty() bool {
	return !(r.MaxX > r.MinX) || !(r.MaxY > r.MinY)
}
