package pixalg

// Binding associates an image name used by the script with a raster.
type Binding struct {
	Name      string
	Role      Role
	Raster    Raster
	Transform Transform

	// DefaultTransform is set when the binding tracks the runtime's
	// default transform instead of an explicit one.
	DefaultTransform bool

	release func()
}

// BindSource binds a raster the script reads from. A nil transform makes
// the binding track the default transform; an explicit transform
// requires the world to be set.
func (rt *Runtime) BindSource(name string, r Raster, tr *Transform) error {
	return rt.bind("BindSource", name, Source, r, tr)
}

// BindDestination binds a raster the script writes to. Transforms follow
// the same rules as BindSource.
func (rt *Runtime) BindDestination(name string, r WritableRaster, tr *Transform) error {
	return rt.bind("BindDestination", name, Destination, r, tr)
}

func (rt *Runtime) bind(op, name string, role Role, r Raster, tr *Transform) error {
	if r == nil {
		return &ArgumentError{Op: op, Arg: "raster", Err: ErrNilRaster}
	}
	if rt.script.Images != nil {
		declared, ok := rt.script.Images[name]
		if !ok {
			return &StateError{Op: op, Name: name, Err: ErrUnknownImage}
		}
		if declared != role {
			return &StateError{Op: op, Name: name, Err: ErrRoleMismatch}
		}
	}

	b := &Binding{Name: name, Role: role, Raster: r}
	if tr == nil {
		b.Transform = rt.defaultTransform
		b.DefaultTransform = true
	} else {
		if !rt.world.Set {
			return &StateError{Op: op, Name: name, Err: ErrWorldNotSet}
		}
		b.Transform = *tr
	}
	if a, ok := r.(Acquirer); ok {
		b.release = a.Acquire()
	}

	if i, ok := rt.bindIndex[name]; ok {
		rt.bindings[i].releaseHandle()
		rt.bindings[i] = b
	} else {
		rt.bindIndex[name] = len(rt.bindings)
		rt.bindings = append(rt.bindings, b)
	}

	Logger().Debug("pixalg: image bound",
		"image", name, "role", role,
		"bounds", r.Bounds(), "bands", r.NumBands(),
		"default_transform", b.DefaultTransform)
	return nil
}

func (b *Binding) releaseHandle() {
	if b.release != nil {
		b.release()
		b.release = nil
	}
}

// SetDefaultTransform replaces the default transform and applies it to
// every binding that tracks it. A nil transform restores the identity;
// a concrete transform requires the world to be set.
func (rt *Runtime) SetDefaultTransform(tr *Transform) error {
	next := Identity()
	if tr != nil {
		if !rt.world.Set {
			return &StateError{Op: "SetDefaultTransform", Err: ErrWorldNotSet}
		}
		next = *tr
	}
	rt.defaultTransform = next
	for _, b := range rt.bindings {
		if b.DefaultTransform {
			b.Transform = next
		}
	}
	return nil
}

// DefaultTransform returns the current default transform.
func (rt *Runtime) DefaultTransform() Transform { return rt.defaultTransform }

// Binding returns a copy of the binding for name.
func (rt *Runtime) Binding(name string) (Binding, bool) {
	i, ok := rt.bindIndex[name]
	if !ok {
		return Binding{}, false
	}
	b := *rt.bindings[i]
	b.release = nil
	return b, true
}

// SourceNames returns the names of bound source images in bind order.
func (rt *Runtime) SourceNames() []string { return rt.namesFor(Source) }

// DestinationNames returns the names of bound destination images in bind order.
func (rt *Runtime) DestinationNames() []string { return rt.namesFor(Destination) }

func (rt *Runtime) namesFor(role Role) []string {
	var names []string
	for _, b := range rt.bindings {
		if b.Role == role {
			names = append(names, b.Name)
		}
	}
	return names
}

func (rt *Runtime) firstBinding(role Role) *Binding {
	for _, b := range rt.bindings {
		if b.Role == role {
			return b
		}
	}
	return nil
}

func (rt *Runtime) lookupBinding(name string) (*Binding, bool) {
	i, ok := rt.bindIndex[name]
	if !ok {
		return nil, false
	}
	return rt.bindings[i], true
}
