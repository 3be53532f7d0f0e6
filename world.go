package pixalg

import "math"

const (
	// minResolution is the smallest accepted pixel dimension in world units.
	minResolution = 1e-8

	// sweepEpsilon guards the upper bound of the coordinate sweep.
	sweepEpsilon = 1e-10
)

// World is the processing area of a run: its bounds in world units and
// the size of one pixel.
type World struct {
	MinX, MinY float64
	MaxX, MaxY float64
	XRes, YRes float64
	Set        bool
}

// Bounds returns the processing area.
func (w World) Bounds() Rect {
	return Rect{MinX: w.MinX, MinY: w.MinY, MaxX: w.MaxX, MaxY: w.MaxY}
}

// Width returns the extent of the processing area along x.
func (w World) Width() float64 { return w.MaxX - w.MinX }

// Height returns the extent of the processing area along y.
func (w World) Height() float64 { return w.MaxY - w.MinY }

// Columns returns the number of x positions the sweep visits: the count of
// i >= 0 with MinX + i*XRes < MaxX - sweepEpsilon.
func (w World) Columns() int {
	if !w.Set {
		return 0
	}
	return axisSteps(w.MinX, w.MaxX, w.XRes)
}

// Rows returns the number of y positions the sweep visits.
func (w World) Rows() int {
	if !w.Set {
		return 0
	}
	return axisSteps(w.MinY, w.MaxY, w.YRes)
}

// NumPixels returns the number of positions the sweep visits.
func (w World) NumPixels() int64 {
	return int64(w.Columns()) * int64(w.Rows())
}

// axisSteps counts the positions min + i*res strictly below max - sweepEpsilon.
// The estimate from division is corrected with the same expression the
// sweep uses, so the count always matches the positions visited.
func axisSteps(lo, hi, res float64) int {
	limit := hi - sweepEpsilon
	if !(res > 0) || !(lo < limit) {
		return 0
	}
	n := int(math.Ceil((limit - lo) / res))
	for n > 0 && lo+float64(n-1)*res >= limit {
		n--
	}
	for lo+float64(n)*res < limit {
		n++
	}
	return n
}

// SetWorldByResolution sets the processing area and the pixel dimensions
// in world units.
func (rt *Runtime) SetWorldByResolution(bounds Rect, xRes, yRes float64) error {
	const op = "SetWorldByResolution"
	if bounds.Empty() {
		return &ArgumentError{Op: op, Arg: "bounds", Err: ErrEmptyRect}
	}
	if err := checkResolution(op, "xres", xRes, bounds.Width()); err != nil {
		return err
	}
	if err := checkResolution(op, "yres", yRes, bounds.Height()); err != nil {
		return err
	}

	rt.world = World{
		MinX: bounds.MinX, MinY: bounds.MinY,
		MaxX: bounds.MaxX, MaxY: bounds.MaxY,
		XRes: xRes, YRes: yRes,
		Set: true,
	}
	Logger().Debug("pixalg: world set",
		"min_x", bounds.MinX, "min_y", bounds.MinY,
		"max_x", bounds.MaxX, "max_y", bounds.MaxY,
		"xres", xRes, "yres", yRes,
		"pixels", rt.world.NumPixels())
	return nil
}

// SetWorldByNumPixels sets the processing area and divides it into
// nx by ny pixels.
func (rt *Runtime) SetWorldByNumPixels(bounds Rect, nx, ny int) error {
	const op = "SetWorldByNumPixels"
	if bounds.Empty() {
		return &ArgumentError{Op: op, Arg: "bounds", Err: ErrEmptyRect}
	}
	if nx <= 0 {
		return &ArgumentError{Op: op, Arg: "nx", Err: ErrBadPixelCount}
	}
	if ny <= 0 {
		return &ArgumentError{Op: op, Arg: "ny", Err: ErrBadPixelCount}
	}
	return rt.SetWorldByResolution(bounds, bounds.Width()/float64(nx), bounds.Height()/float64(ny))
}

func checkResolution(op, name string, res, extent float64) error {
	if math.IsNaN(res) || math.IsInf(res, 0) || res <= minResolution || res > extent {
		return &ArgumentError{Op: op, Arg: name, Err: ErrBadResolution}
	}
	return nil
}

// IsWorldSet reports whether the processing area has been set.
func (rt *Runtime) IsWorldSet() bool { return rt.world.Set }

// World returns the processing area. The zero World is returned if it
// has not been set.
func (rt *Runtime) World() World { return rt.world }

// SetDefaultBounds sets the world to the pixel rectangle of a bound
// image at one world unit per pixel. The first destination image is
// preferred, then the first source image, in bind order.
func (rt *Runtime) SetDefaultBounds() error {
	ref := rt.firstBinding(Destination)
	if ref == nil {
		ref = rt.firstBinding(Source)
	}
	if ref == nil {
		return &StateError{Op: "SetDefaultBounds", Err: ErrNoImages}
	}
	Logger().Debug("pixalg: deriving world from image", "image", ref.Name, "role", ref.Role)
	return rt.SetWorldByResolution(RectFromImage(ref.Raster.Bounds()), 1, 1)
}
