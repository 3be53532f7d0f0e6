package pixalg

import (
	"image"
	"math"
)

// Transform maps world coordinates to pixel coordinates:
//
//	px = XScale*x + XOffset
//	py = YScale*y + YOffset
//
// Transform is a value type; all constructors return a new value.
// The zero value is degenerate; use Identity for a no-op transform.
type Transform struct {
	XScale, YScale   float64
	XOffset, YOffset float64
}

// Identity returns the transform that maps every coordinate to itself.
func Identity() Transform {
	return Transform{XScale: 1, YScale: 1}
}

// Scale creates a scaling transform.
func Scale(xs, ys float64) Transform {
	return Transform{XScale: xs, YScale: ys}
}

// Translate creates a translation transform.
func Translate(dx, dy float64) Transform {
	return Transform{XScale: 1, YScale: 1, XOffset: dx, YOffset: dy}
}

// UnitToRect returns the transform mapping the unit square [0,1]x[0,1]
// onto the pixel rectangle r.
func UnitToRect(r image.Rectangle) (Transform, error) {
	if r.Empty() {
		return Transform{}, &ArgumentError{Op: "UnitToRect", Arg: "pixel", Err: ErrEmptyRect}
	}
	return DeriveTransform(Rect{MaxX: 1, MaxY: 1}, r)
}

// DeriveTransform returns the transform that maps the world rectangle
// onto the pixel rectangle, corner to corner.
func DeriveTransform(world Rect, pixel image.Rectangle) (Transform, error) {
	if world.Empty() {
		return Transform{}, &ArgumentError{Op: "DeriveTransform", Arg: "world", Err: ErrEmptyRect}
	}
	if pixel.Empty() {
		return Transform{}, &ArgumentError{Op: "DeriveTransform", Arg: "pixel", Err: ErrEmptyRect}
	}

	xs := float64(pixel.Dx()) / world.Width()
	ys := float64(pixel.Dy()) / world.Height()
	return Transform{
		XScale:  xs,
		YScale:  ys,
		XOffset: float64(pixel.Min.X) - xs*world.MinX,
		YOffset: float64(pixel.Min.Y) - ys*world.MinY,
	}, nil
}

// Apply maps a world position to continuous pixel space.
func (t Transform) Apply(x, y float64) (px, py float64) {
	return t.XScale*x + t.XOffset, t.YScale*y + t.YOffset
}

// Inverse maps a continuous pixel position back to world space.
// A transform with a zero scale has no inverse and yields NaN.
func (t Transform) Inverse(px, py float64) (x, y float64) {
	if t.XScale == 0 || t.YScale == 0 {
		return math.NaN(), math.NaN()
	}
	return (px - t.XOffset) / t.XScale, (py - t.YOffset) / t.YScale
}

// WorldToPixel maps a world position to the index of the pixel containing it.
//
// Pixel i covers the half-open interval [i, i+1) in continuous pixel space,
// so the continuous position is floored. This rule is used everywhere a
// pixel index is derived from a world position.
func (t Transform) WorldToPixel(x, y float64) image.Point {
	px, py := t.Apply(x, y)
	return image.Point{X: int(math.Floor(px)), Y: int(math.Floor(py))}
}

// PixelToWorld returns the world position of the minimum corner of pixel
// (ix, iy).
func (t Transform) PixelToWorld(ix, iy int) (x, y float64) {
	return t.Inverse(float64(ix), float64(iy))
}

// Then returns the transform that applies t first and then next.
func (t Transform) Then(next Transform) Transform {
	return Transform{
		XScale:  next.XScale * t.XScale,
		YScale:  next.YScale * t.YScale,
		XOffset: next.XScale*t.XOffset + next.XOffset,
		YOffset: next.YScale*t.YOffset + next.YOffset,
	}
}

// IsIdentity returns true if the transform leaves coordinates unchanged.
func (t Transform) IsIdentity() bool {
	return t.XScale == 1 && t.YScale == 1 && t.XOffset == 0 && t.YOffset == 0
}
