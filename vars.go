package pixalg

// varSlot holds one image-scope variable.
type varSlot struct {
	name       string
	hasDefault bool
	isSet      bool
	value      float64
}

// registerVar appends a slot for name. Slots are registered once, in
// declaration order, before any evaluation.
func (rt *Runtime) registerVar(name string, hasDefault bool) error {
	if _, ok := rt.varIndex[name]; ok {
		return &StateError{Op: "register", Name: name, Err: ErrDuplicateVar}
	}
	rt.varIndex[name] = len(rt.vars)
	rt.vars = append(rt.vars, varSlot{name: name, hasDefault: hasDefault})
	return nil
}

func (rt *Runtime) slot(op, name string) (*varSlot, error) {
	i, ok := rt.varIndex[name]
	if !ok {
		return nil, &StateError{Op: op, Name: name, Err: ErrUndefinedVar}
	}
	return &rt.vars[i], nil
}

// Var returns the current value of an image-scope variable. ok is false
// when the variable has no value yet (its default has not been resolved).
func (rt *Runtime) Var(name string) (value float64, ok bool, err error) {
	s, err := rt.slot("Var", name)
	if err != nil {
		return 0, false, err
	}
	if !s.isSet {
		return 0, false, nil
	}
	return s.value, true, nil
}

// SetVar sets an image-scope variable.
func (rt *Runtime) SetVar(name string, value float64) error {
	s, err := rt.slot("SetVar", name)
	if err != nil {
		return err
	}
	s.value = value
	s.isSet = true
	return nil
}

// ResetVar clears an explicit value so the variable's default is used
// again on the next run. Variables without a default cannot be reset.
func (rt *Runtime) ResetVar(name string) error {
	s, err := rt.slot("ResetVar", name)
	if err != nil {
		return err
	}
	if !s.hasDefault {
		return &StateError{Op: "ResetVar", Name: name, Err: ErrNoDefault}
	}
	s.isSet = false
	rt.varsReady = false
	return nil
}

// VarNames returns the image-scope variable names in declaration order.
func (rt *Runtime) VarNames() []string {
	names := make([]string, len(rt.vars))
	for i, s := range rt.vars {
		names[i] = s.name
	}
	return names
}

// VarIndex returns the slot index of a variable for use with VarAt and
// SetVarAt.
func (rt *Runtime) VarIndex(name string) (int, bool) {
	i, ok := rt.varIndex[name]
	return i, ok
}

// VarAt returns the value of the variable at index. Compiled code uses
// it inside Pixel, after defaults have been resolved.
func (rt *Runtime) VarAt(index int) float64 { return rt.vars[index].value }

// SetVarAt sets the variable at index.
func (rt *Runtime) SetVarAt(index int, value float64) {
	rt.vars[index].value = value
	rt.vars[index].isSet = true
}

// InitDefaults gives every unset variable its default value. It fails if
// a variable has neither an explicit value nor a default, or if computing
// a default fails.
// EvaluateAll calls it when needed.
func (rt *Runtime) InitDefaults() error {
	for i := range rt.vars {
		s := &rt.vars[i]
		if s.isSet {
			continue
		}
		var (
			v  float64
			ok bool
		)
		if s.hasDefault && rt.script.Default != nil {
			var err error
			v, ok, err = rt.script.Default(rt, i)
			if err != nil {
				return &EvalError{Op: "default", Name: s.name, Err: err}
			}
		}
		if !ok {
			return &StateError{Op: "InitDefaults", Name: s.name, Err: ErrNoDefault}
		}
		s.value = v
		s.isSet = true
	}
	rt.varsReady = true
	Logger().Debug("pixalg: image-scope variables initialized", "count", len(rt.vars))
	return nil
}
