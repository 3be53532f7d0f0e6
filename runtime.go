package pixalg

import (
	"fmt"
	"time"
)

// Runtime executes a compiled script against bound rasters.
//
// A run goes through binding images, setting the world (explicitly or
// derived from a bound image), resolving variable defaults and the
// sweep. EvaluateAll performs whichever of the later steps are still
// needed.
//
// Thread safety: a Runtime is not safe for concurrent use. Independent
// runtimes share no mutable state and may run on separate goroutines.
type Runtime struct {
	script Script
	fn     *Functions

	world World

	vars      []varSlot
	varIndex  map[string]int
	varsReady bool

	bindings         []*Binding
	bindIndex        map[string]int
	defaultTransform Transform

	outside    float64
	outsideSet bool

	last RunStats
}

// RunStats describes the most recent completed sweep.
type RunStats struct {
	Pixels  int64
	Elapsed time.Duration
}

// New creates a runtime for script. Variables are registered in
// declaration order and the script's option initializer is called once.
func New(script Script, opts ...Option) (*Runtime, error) {
	if script.Pixel == nil {
		return nil, &ArgumentError{Op: "New", Arg: "script", Err: ErrNoPixel}
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	rt := &Runtime{
		script:           script,
		fn:               NewFunctions(o.rng),
		varIndex:         make(map[string]int, len(script.Vars)),
		vars:             make([]varSlot, 0, len(script.Vars)),
		bindIndex:        make(map[string]int),
		defaultTransform: Identity(),
		outside:          o.outside,
		outsideSet:       o.outsideSet,
	}
	for _, v := range script.Vars {
		if err := rt.registerVar(v.Name, v.HasDefault); err != nil {
			return nil, err
		}
	}
	if script.Options != nil {
		if err := script.Options(rt); err != nil {
			return nil, fmt.Errorf("pixalg: script options: %w", err)
		}
	}
	return rt, nil
}

// SetOutsideValue sets the value returned for reads outside a source image.
func (rt *Runtime) SetOutsideValue(v float64) {
	rt.outside = v
	rt.outsideSet = true
}

// ClearOutsideValue makes reads outside a source image fail again.
func (rt *Runtime) ClearOutsideValue() {
	rt.outsideSet = false
}

// OutsideValue returns the configured outside value, if any.
func (rt *Runtime) OutsideValue() (float64, bool) {
	return rt.outside, rt.outsideSet
}

// Functions returns the runtime's function invoker.
func (rt *Runtime) Functions() *Functions { return rt.fn }

// Call invokes a built-in function. Compiled code calls it from Pixel.
func (rt *Runtime) Call(name string, args ...float64) (float64, error) {
	return rt.fn.Invoke(name, args)
}

// LastRun returns statistics of the most recent completed sweep.
func (rt *Runtime) LastRun() RunStats { return rt.last }

// Close releases the accessor handles of every bound image and removes
// the bindings. The runtime can be reused after new images are bound.
func (rt *Runtime) Close() error {
	for _, b := range rt.bindings {
		b.releaseHandle()
	}
	rt.bindings = nil
	clear(rt.bindIndex)
	return nil
}
