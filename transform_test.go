package pixalg

import (
	"errors"
	"image"
	"math"
	"testing"
)

const tol = 1e-9

func TestIdentityMapsToItself(t *testing.T) {
	id := Identity()
	for _, p := range [][2]float64{{0, 0}, {1.5, -2.25}, {1e6, -1e6}, {-0.001, 42}} {
		px, py := id.Apply(p[0], p[1])
		if px != p[0] || py != p[1] {
			t.Errorf("Identity().Apply(%v, %v) = (%v, %v)", p[0], p[1], px, py)
		}
		x, y := id.Inverse(p[0], p[1])
		if x != p[0] || y != p[1] {
			t.Errorf("Identity().Inverse(%v, %v) = (%v, %v)", p[0], p[1], x, y)
		}
	}
	if !id.IsIdentity() {
		t.Error("Identity().IsIdentity() = false")
	}
}

func TestScaleAndTranslate(t *testing.T) {
	tests := []struct {
		name   string
		tr     Transform
		x, y   float64
		px, py float64
	}{
		{"scale", Scale(2, 3), 1, 1, 2, 3},
		{"translate", Translate(10, -5), 1, 1, 11, -4},
		{"scale then translate", Scale(2, 2).Then(Translate(1, 1)), 3, 4, 7, 9},
		{"translate then scale", Translate(1, 1).Then(Scale(2, 2)), 3, 4, 8, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			px, py := tt.tr.Apply(tt.x, tt.y)
			if math.Abs(px-tt.px) > tol || math.Abs(py-tt.py) > tol {
				t.Errorf("Apply(%v, %v) = (%v, %v), want (%v, %v)", tt.x, tt.y, px, py, tt.px, tt.py)
			}
		})
	}
}

func TestDeriveTransformCornerRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		world Rect
		pixel image.Rectangle
	}{
		{"unit to 10x10", Rect{MaxX: 1, MaxY: 1}, image.Rect(0, 0, 10, 10)},
		{"offset world", NewRect(-100, 250, 40, 20), image.Rect(0, 0, 400, 200)},
		{"offset pixels", NewRect(0, 0, 10, 10), image.Rect(5, -3, 25, 17)},
		{"shrinking", NewRect(1000, 1000, 5000, 3000), image.Rect(0, 0, 50, 30)},
		{"tiny world", NewRect(0.001, 0.002, 0.0005, 0.0007), image.Rect(0, 0, 7, 3)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, err := DeriveTransform(tt.world, tt.pixel)
			if err != nil {
				t.Fatalf("DeriveTransform() error = %v", err)
			}
			corners := [][4]float64{
				{tt.world.MinX, tt.world.MinY, float64(tt.pixel.Min.X), float64(tt.pixel.Min.Y)},
				{tt.world.MaxX, tt.world.MaxY, float64(tt.pixel.Max.X), float64(tt.pixel.Max.Y)},
				{tt.world.MinX, tt.world.MaxY, float64(tt.pixel.Min.X), float64(tt.pixel.Max.Y)},
			}
			for _, c := range corners {
				px, py := tr.Apply(c[0], c[1])
				if !near(px, c[2]) || !near(py, c[3]) {
					t.Errorf("Apply(%v, %v) = (%v, %v), want (%v, %v)", c[0], c[1], px, py, c[2], c[3])
				}
				x, y := tr.Inverse(px, py)
				if !near(x, c[0]) || !near(y, c[1]) {
					t.Errorf("round trip of (%v, %v) gave (%v, %v)", c[0], c[1], x, y)
				}
			}
		})
	}
}

func near(a, b float64) bool {
	return math.Abs(a-b) <= tol*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}

func TestDeriveTransformRejectsEmpty(t *testing.T) {
	tests := []struct {
		name  string
		world Rect
		pixel image.Rectangle
		arg   string
	}{
		{"zero world width", NewRect(0, 0, 0, 10), image.Rect(0, 0, 10, 10), "world"},
		{"zero world height", NewRect(0, 0, 10, 0), image.Rect(0, 0, 10, 10), "world"},
		{"NaN world", Rect{MinX: math.NaN(), MaxX: 1, MaxY: 1}, image.Rect(0, 0, 10, 10), "world"},
		{"empty pixel", NewRect(0, 0, 10, 10), image.Rectangle{}, "pixel"},
		{"zero pixel height", NewRect(0, 0, 10, 10), image.Rect(0, 0, 10, 0), "pixel"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DeriveTransform(tt.world, tt.pixel)
			var argErr *ArgumentError
			if !errors.As(err, &argErr) {
				t.Fatalf("error = %v, want *ArgumentError", err)
			}
			if argErr.Arg != tt.arg || !errors.Is(err, ErrEmptyRect) {
				t.Errorf("error = %v, want ErrEmptyRect for %q", err, tt.arg)
			}
		})
	}
}

func TestUnitToRect(t *testing.T) {
	tr, err := UnitToRect(image.Rect(10, 20, 110, 70))
	if err != nil {
		t.Fatal(err)
	}
	px, py := tr.Apply(0.5, 0.5)
	if !near(px, 60) || !near(py, 45) {
		t.Errorf("Apply(0.5, 0.5) = (%v, %v), want (60, 45)", px, py)
	}
	if _, err := UnitToRect(image.Rectangle{}); !errors.Is(err, ErrEmptyRect) {
		t.Errorf("UnitToRect(empty) error = %v, want ErrEmptyRect", err)
	}
}

func TestWorldToPixelFloorsAtHalfPixel(t *testing.T) {
	tr := Identity()
	tests := []struct {
		x, y float64
		want image.Point
	}{
		{0, 0, image.Pt(0, 0)},
		{0.5, 0.5, image.Pt(0, 0)},
		{0.9999, 1.5, image.Pt(0, 1)},
		{1, 1, image.Pt(1, 1)},
		{-0.5, -0.5, image.Pt(-1, -1)},
		{2.5, 3.4999, image.Pt(2, 3)},
	}
	for _, tt := range tests {
		if got := tr.WorldToPixel(tt.x, tt.y); got != tt.want {
			t.Errorf("WorldToPixel(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}

	half := Scale(0.5, 0.5)
	if got := half.WorldToPixel(3, 3); got != image.Pt(1, 1) {
		t.Errorf("Scale(0.5).WorldToPixel(3, 3) = %v, want (1,1)", got)
	}
}

func TestPixelToWorld(t *testing.T) {
	tr, err := DeriveTransform(NewRect(100, 200, 10, 10), image.Rect(0, 0, 20, 20))
	if err != nil {
		t.Fatal(err)
	}
	x, y := tr.PixelToWorld(4, 6)
	if !near(x, 102) || !near(y, 203) {
		t.Errorf("PixelToWorld(4, 6) = (%v, %v), want (102, 203)", x, y)
	}
	if got := tr.WorldToPixel(x, y); got != image.Pt(4, 6) {
		t.Errorf("WorldToPixel(PixelToWorld(4, 6)) = %v", got)
	}

	x, y = Scale(0, 1).PixelToWorld(1, 1)
	if !math.IsNaN(x) || !math.IsNaN(y) {
		t.Errorf("degenerate transform inverse = (%v, %v), want NaN", x, y)
	}
}
