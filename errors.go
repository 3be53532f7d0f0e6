package pixalg

import (
	"errors"
	"fmt"
)

// Sentinel errors. Every error returned by the engine wraps one of these,
// so callers can test the cause with errors.Is.
var (
	// ErrEmptyRect is returned when a rectangle is empty (zero width or height).
	ErrEmptyRect = errors.New("pixalg: empty rectangle")

	// ErrBadResolution is returned for non-finite, too small or too large
	// pixel dimensions.
	ErrBadResolution = errors.New("pixalg: invalid resolution")

	// ErrBadPixelCount is returned when a pixel count is not positive.
	ErrBadPixelCount = errors.New("pixalg: invalid pixel count")

	// ErrNoPixel is returned when a script has no per-pixel procedure.
	ErrNoPixel = errors.New("pixalg: script has no pixel procedure")

	// ErrNilRaster is returned when binding a nil raster.
	ErrNilRaster = errors.New("pixalg: nil raster")

	// ErrWorldNotSet is returned when an operation needs the processing
	// area but it has not been set.
	ErrWorldNotSet = errors.New("pixalg: world bounds and resolution not set")

	// ErrUndefinedVar is returned for an image-scope variable that was
	// never registered.
	ErrUndefinedVar = errors.New("pixalg: undefined variable")

	// ErrDuplicateVar is returned when a variable is registered twice.
	ErrDuplicateVar = errors.New("pixalg: variable already defined")

	// ErrNoDefault is returned when a variable has neither a value nor a
	// default.
	ErrNoDefault = errors.New("pixalg: no default value")

	// ErrNoImages is returned when a run is attempted with nothing bound.
	ErrNoImages = errors.New("pixalg: no images bound")

	// ErrUnknownImage is returned for an image name with no binding.
	ErrUnknownImage = errors.New("pixalg: unknown image")

	// ErrRoleMismatch is returned when an image is bound in a role the
	// script did not declare for it.
	ErrRoleMismatch = errors.New("pixalg: image role mismatch")

	// ErrNotWritable is returned when writing to an image that is not
	// bound as a destination.
	ErrNotWritable = errors.New("pixalg: image is not a destination")

	// ErrUnknownFunction is returned when no function matches a name and
	// argument count.
	ErrUnknownFunction = errors.New("pixalg: unknown function")

	// ErrArity is returned when a function is called with an unsupported
	// number of arguments.
	ErrArity = errors.New("pixalg: unsupported arity")

	// ErrBadBand is returned when a band index is outside a raster's bands.
	ErrBadBand = errors.New("pixalg: band out of range")

	// ErrOutside is returned for a read outside a source raster when no
	// outside value is configured.
	ErrOutside = errors.New("pixalg: position outside image bounds")
)

// ArgumentError reports an invalid argument to a configuration call.
type ArgumentError struct {
	Op  string // operation, e.g. "SetWorldByResolution"
	Arg string // argument name
	Err error
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Arg, e.Err)
}

func (e *ArgumentError) Unwrap() error { return e.Err }

// StateError reports a call made in the wrong lifecycle state, or one
// that references a name the runtime does not know.
type StateError struct {
	Op   string
	Name string // variable or image name, may be empty
	Err  error
}

func (e *StateError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %q: %v", e.Op, e.Name, e.Err)
}

func (e *StateError) Unwrap() error { return e.Err }

// EvalError reports a failure while evaluating script code.
// X and Y hold the world position being evaluated when HasPos is set.
type EvalError struct {
	Op     string
	Name   string // function, variable or image name
	X, Y   float64
	HasPos bool
	Err    error
}

func (e *EvalError) Error() string {
	if e.HasPos {
		return fmt.Sprintf("%s %q at (%.4f, %.4f): %v", e.Op, e.Name, e.X, e.Y, e.Err)
	}
	return fmt.Sprintf("%s %q: %v", e.Op, e.Name, e.Err)
}

func (e *EvalError) Unwrap() error { return e.Err }
