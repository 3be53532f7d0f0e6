package pixalg

import (
	"context"
	"errors"
	"image"
	"math/rand/v2"
	"strings"
	"testing"
)

// recordingProgress records every progress callback.
type recordingProgress struct {
	interval int64
	started  int64
	updates  []int64
	finished int64
	calls    []string
}

func (p *recordingProgress) Start(n int64) {
	p.started = n
	p.calls = append(p.calls, "start")
}

func (p *recordingProgress) Update(n int64) {
	p.updates = append(p.updates, n)
	p.calls = append(p.calls, "update")
}

func (p *recordingProgress) Finish(n int64) {
	p.finished = n
	p.calls = append(p.calls, "finish")
}

func (p *recordingProgress) UpdateInterval() int64 { return p.interval }

func TestEvaluateAllDefaultBounds(t *testing.T) {
	calls := 0
	rt, err := New(Script{Pixel: func(*Runtime, float64, float64) error {
		calls++
		return nil
	}})
	if err != nil {
		t.Fatal(err)
	}
	if err := rt.BindDestination("dst", NewGridSize(10, 10, 1), nil); err != nil {
		t.Fatal(err)
	}

	p := &recordingProgress{interval: 30}
	if err := rt.EvaluateAll(t.Context(), p); err != nil {
		t.Fatal(err)
	}
	if calls != 100 {
		t.Errorf("pixel procedure called %d times, want 100", calls)
	}
	if p.started != 100 || p.finished != 100 {
		t.Errorf("Start(%d), Finish(%d); want 100, 100", p.started, p.finished)
	}
	if want := []int64{30, 60, 90}; !equalInts(p.updates, want) {
		t.Errorf("updates = %v, want %v", p.updates, want)
	}
	if p.calls[0] != "start" || p.calls[len(p.calls)-1] != "finish" {
		t.Errorf("callback order = %v", p.calls)
	}
}

func equalInts(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestEvaluateAllNoImages(t *testing.T) {
	rt, err := New(Script{
		Vars:    []VarDecl{{Name: "answer", HasDefault: true}},
		Default: func(*Runtime, int) (float64, bool, error) { return 42, true, nil },
		Pixel:   func(*Runtime, float64, float64) error { return nil },
	})
	if err != nil {
		t.Fatal(err)
	}
	err = rt.EvaluateAll(t.Context(), nil)
	var stateErr *StateError
	if !errors.As(err, &stateErr) || !errors.Is(err, ErrNoImages) {
		t.Fatalf("EvaluateAll() error = %v, want *StateError wrapping ErrNoImages", err)
	}

	// an explicit world does not make up for missing images
	if err := rt.SetWorldByResolution(NewRect(0, 0, 4, 4), 1, 1); err != nil {
		t.Fatal(err)
	}
	if err := rt.EvaluateAll(t.Context(), nil); !errors.Is(err, ErrNoImages) {
		t.Errorf("EvaluateAll() with world only: %v, want ErrNoImages", err)
	}
}

func TestEvaluateAllSweepOrder(t *testing.T) {
	var got [][2]float64
	rt, err := New(Script{Pixel: func(_ *Runtime, x, y float64) error {
		got = append(got, [2]float64{x, y})
		return nil
	}})
	if err != nil {
		t.Fatal(err)
	}
	if err := rt.BindSource("src", NewGridSize(1, 1, 1), nil); err != nil {
		t.Fatal(err)
	}
	if err := rt.SetWorldByResolution(NewRect(10, 20, 1, 1), 0.5, 0.5); err != nil {
		t.Fatal(err)
	}
	if err := rt.EvaluateAll(t.Context(), nil); err != nil {
		t.Fatal(err)
	}
	want := [][2]float64{{10, 20}, {10.5, 20}, {10, 20.5}, {10.5, 20.5}}
	if len(got) != len(want) {
		t.Fatalf("visited %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d = %v, want %v", i, got[i], want[i])
		}
	}
}

// TestCountAboveThreshold runs the equivalent of
//
//	count += src > threshold
//
// over a random source and compares with a direct scan.
func TestCountAboveThreshold(t *testing.T) {
	const (
		width     = 10
		threshold = 10
	)
	rng := rand.New(rand.NewPCG(3, 4))
	src := NewGridSize(width, width, 1)
	expected := 0
	for y := 0; y < width; y++ {
		for x := 0; x < width; x++ {
			v := float64(rng.IntN(2 * threshold))
			src.SetSample(x, y, 0, v)
			if v > threshold {
				expected++
			}
		}
	}

	rt, err := New(Script{
		Images:  map[string]Role{"src": Source},
		Vars:    []VarDecl{{Name: "count", HasDefault: true}},
		Default: func(*Runtime, int) (float64, bool, error) { return 0, true, nil },
		Pixel: func(rt *Runtime, x, y float64) error {
			v, err := rt.ReadFromImage("src", x, y, 0)
			if err != nil {
				return err
			}
			if v > threshold {
				rt.SetVarAt(0, rt.VarAt(0)+1)
			}
			return nil
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := rt.BindSource("src", src, nil); err != nil {
		t.Fatal(err)
	}
	if err := rt.EvaluateAll(t.Context(), nil); err != nil {
		t.Fatal(err)
	}
	count, ok, err := rt.Var("count")
	if err != nil || !ok {
		t.Fatalf("Var(count) = %v, %v, %v", count, ok, err)
	}
	if int(count) != expected {
		t.Errorf("count = %v, want %d", count, expected)
	}
}

func TestReadOutsideImage(t *testing.T) {
	src := NewGridSize(4, 4, 1)
	src.Fill(0, 5)

	newRT := func(opts ...Option) *Runtime {
		rt, err := New(Script{Pixel: func(*Runtime, float64, float64) error { return nil }}, opts...)
		if err != nil {
			t.Fatal(err)
		}
		if err := rt.BindSource("src", src, nil); err != nil {
			t.Fatal(err)
		}
		return rt
	}

	rt := newRT()
	if v, err := rt.ReadFromImage("src", 3.9, 0, 0); err != nil || v != 5 {
		t.Errorf("inside read = %v, %v; want 5", v, err)
	}
	_, err := rt.ReadFromImage("src", 4, 1.5, 0)
	var evalErr *EvalError
	if !errors.As(err, &evalErr) || !errors.Is(err, ErrOutside) {
		t.Fatalf("outside read error = %v, want *EvalError wrapping ErrOutside", err)
	}
	if evalErr.Name != "src" || !evalErr.HasPos || evalErr.X != 4 || evalErr.Y != 1.5 {
		t.Errorf("error context = %+v", evalErr)
	}
	if msg := err.Error(); !strings.Contains(msg, "src") || !strings.Contains(msg, "4.0000") {
		t.Errorf("message %q lacks image name or position", msg)
	}

	rt = newRT(WithOutsideValue(-1))
	if v, err := rt.ReadFromImage("src", -0.5, 0, 0); err != nil || v != -1 {
		t.Errorf("outside read with outside value = %v, %v; want -1", v, err)
	}
	rt.ClearOutsideValue()
	if _, err := rt.ReadFromImage("src", -0.5, 0, 0); !errors.Is(err, ErrOutside) {
		t.Errorf("after ClearOutsideValue: %v, want ErrOutside", err)
	}
}

func TestReadErrors(t *testing.T) {
	rt := newTestRuntime(t)
	if err := rt.BindSource("src", NewGridSize(2, 2, 1), nil); err != nil {
		t.Fatal(err)
	}
	if _, err := rt.ReadFromImage("nosuch", 0, 0, 0); !errors.Is(err, ErrUnknownImage) {
		t.Errorf("unknown image: %v", err)
	}
	if _, err := rt.ReadFromImage("src", 0, 0, 1); !errors.Is(err, ErrBadBand) {
		t.Errorf("bad band: %v", err)
	}
	if err := rt.WriteToImage("src", 0, 0, 0, 1); !errors.Is(err, ErrNotWritable) {
		t.Errorf("write to source: %v", err)
	}
	if err := rt.WriteToImage("nosuch", 0, 0, 0, 1); !errors.Is(err, ErrUnknownImage) {
		t.Errorf("write to unknown image: %v", err)
	}
}

func TestOptionsHookSetsOutsideValue(t *testing.T) {
	rt, err := New(Script{
		Pixel: func(*Runtime, float64, float64) error { return nil },
		Options: func(rt *Runtime) error {
			rt.SetOutsideValue(0)
			return nil
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if v, ok := rt.OutsideValue(); !ok || v != 0 {
		t.Errorf("OutsideValue() = %v, %v; want 0, true", v, ok)
	}

	_, err = New(Script{
		Pixel:   func(*Runtime, float64, float64) error { return nil },
		Options: func(*Runtime) error { return errors.New("bad option") },
	})
	if err == nil || !strings.Contains(err.Error(), "bad option") {
		t.Errorf("New() with failing options = %v", err)
	}
}

// TestResampleThroughTransforms binds a coarse source and a fine
// destination to the same world and copies values across.
func TestResampleThroughTransforms(t *testing.T) {
	world := NewRect(0, 0, 100, 100)
	coarse := NewGridSize(2, 2, 1)
	coarse.SetSample(0, 0, 0, 1)
	coarse.SetSample(1, 0, 0, 2)
	coarse.SetSample(0, 1, 0, 3)
	coarse.SetSample(1, 1, 0, 4)
	fine := NewGridSize(4, 4, 1)

	rt, err := New(Script{Pixel: func(rt *Runtime, x, y float64) error {
		v, err := rt.ReadFromImage("coarse", x, y, 0)
		if err != nil {
			return err
		}
		return rt.WriteToImage("fine", x, y, 0, v)
	}})
	if err != nil {
		t.Fatal(err)
	}
	if err := rt.SetWorldByNumPixels(world, 4, 4); err != nil {
		t.Fatal(err)
	}
	ct, err := DeriveTransform(world, coarse.Bounds())
	if err != nil {
		t.Fatal(err)
	}
	ft, err := DeriveTransform(world, fine.Bounds())
	if err != nil {
		t.Fatal(err)
	}
	if err := rt.BindSource("coarse", coarse, &ct); err != nil {
		t.Fatal(err)
	}
	if err := rt.BindDestination("fine", fine, &ft); err != nil {
		t.Fatal(err)
	}
	if err := rt.EvaluateAll(t.Context(), nil); err != nil {
		t.Fatal(err)
	}

	want := [4][4]float64{
		{1, 1, 2, 2},
		{1, 1, 2, 2},
		{3, 3, 4, 4},
		{3, 3, 4, 4},
	}
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			if got := fine.Sample(x, y, 0); got != want[y][x] {
				t.Errorf("fine(%d, %d) = %v, want %v", x, y, got, want[y][x])
			}
		}
	}
}

func TestPixelErrorAbortsSweep(t *testing.T) {
	calls := 0
	rt, err := New(Script{Pixel: func(rt *Runtime, x, y float64) error {
		calls++
		if calls == 5 {
			_, err := rt.Call("nosuch", x)
			return err
		}
		return nil
	}})
	if err != nil {
		t.Fatal(err)
	}
	if err := rt.BindSource("src", NewGridSize(3, 3, 1), nil); err != nil {
		t.Fatal(err)
	}
	p := &recordingProgress{interval: 1}
	err = rt.EvaluateAll(t.Context(), p)
	if !errors.Is(err, ErrUnknownFunction) {
		t.Fatalf("EvaluateAll() error = %v, want ErrUnknownFunction", err)
	}
	if calls != 5 {
		t.Errorf("pixel procedure called %d times, want 5", calls)
	}
	if p.finished != 0 {
		t.Error("Finish called on an aborted run")
	}
}

func TestEvaluateAllCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	calls := 0
	rt, err := New(Script{Pixel: func(*Runtime, float64, float64) error {
		calls++
		if calls == 10 {
			cancel()
		}
		return nil
	}})
	if err != nil {
		t.Fatal(err)
	}
	if err := rt.BindSource("src", NewGrid(image.Rect(0, 0, 100, 100), 1), nil); err != nil {
		t.Fatal(err)
	}
	err = rt.EvaluateAll(ctx, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("EvaluateAll() error = %v, want context.Canceled", err)
	}
	// cancellation is noticed at the end of the first row at the latest
	if calls != 100 {
		t.Errorf("pixel procedure called %d times, want 100", calls)
	}
}

func TestEvaluateAllNullProgress(t *testing.T) {
	rt := newTestRuntime(t)
	if err := rt.BindSource("src", NewGridSize(5, 5, 1), nil); err != nil {
		t.Fatal(err)
	}
	if err := rt.EvaluateAll(t.Context(), NullProgress{}); err != nil {
		t.Fatal(err)
	}

	var started, finished int64
	var updates int
	p := ProgressFuncs{
		OnStart:  func(n int64) { started = n },
		OnUpdate: func(int64) { updates++ },
		OnFinish: func(n int64) { finished = n },
		Interval: 5,
	}
	if err := rt.EvaluateAll(t.Context(), p); err != nil {
		t.Fatal(err)
	}
	if started != 25 || finished != 25 || updates != 5 {
		t.Errorf("start=%d finish=%d updates=%d; want 25, 25, 5", started, finished, updates)
	}
}

func TestNewRequiresPixel(t *testing.T) {
	if _, err := New(Script{}); !errors.Is(err, ErrNoPixel) {
		t.Errorf("New(Script{}) error = %v, want ErrNoPixel", err)
	}
}
