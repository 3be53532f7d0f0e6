package pixalg

// Role is the part an image plays in a run.
type Role int

const (
	// Source images are read by the script.
	Source Role = iota
	// Destination images are written by the script.
	Destination
)

func (r Role) String() string {
	switch r {
	case Source:
		return "source"
	case Destination:
		return "destination"
	default:
		return "unknown"
	}
}

// VarDecl declares an image-scope variable of a compiled script.
type VarDecl struct {
	Name       string
	HasDefault bool
}

// Script is the capability record a compiler hands to the runtime.
//
// Pixel is called once per world position of the processing area. Default
// returns the default value of the variable at index (its position in
// Vars), or false if it has none; it is called lazily, after the world is
// set, so defaults may depend on the processing area. A non-nil error
// means the default exists but could not be computed. Options is called
// once from New, after variables are registered; it typically sets the
// outside value.
//
// Images, when non-nil, declares every image the script uses and its
// role; binding an undeclared image is then an error.
type Script struct {
	Images  map[string]Role
	Vars    []VarDecl
	Pixel   func(rt *Runtime, x, y float64) error
	Default func(rt *Runtime, index int) (float64, bool, error)
	Options func(rt *Runtime) error
}
