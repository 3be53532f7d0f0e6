package hclscript

import (
	"errors"
	"fmt"
	"math"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/gogpu/pixalg"
)

// Script compiles the program into a pixalg script. The returned script
// keeps per-runtime state and must be used with a single runtime.
func (p *Program) Script() pixalg.Script {
	c := &compiled{prog: p}

	images := make(map[string]pixalg.Role, len(p.Images))
	for _, img := range p.Images {
		images[img.Name] = img.Role
	}
	vars := make([]pixalg.VarDecl, len(p.Vars))
	for i, v := range p.Vars {
		vars[i] = pixalg.VarDecl{Name: v.Name, HasDefault: v.Default != nil}
	}

	// Only sources some assignment reads are sampled per pixel.
	used := make(map[string]bool)
	for _, a := range p.Assigns {
		for _, tr := range a.Value.Variables() {
			used[tr.RootName()] = true
		}
	}
	for _, img := range p.Images {
		if img.Role == pixalg.Source && used[img.Name] {
			c.sources = append(c.sources, img)
		}
	}

	return pixalg.Script{
		Images:  images,
		Vars:    vars,
		Pixel:   c.pixel,
		Default: c.defaultValue,
		Options: c.options,
	}
}

// compiled is the evaluation state of a program bound to one runtime.
type compiled struct {
	prog    *Program
	sources []ImageSpec

	rt *pixalg.Runtime
	ev evaluator
}

func (c *compiled) bind(rt *pixalg.Runtime) {
	if c.rt == rt {
		return
	}
	c.rt = rt
	c.ev = evaluator{
		values: make(map[string]float64, len(c.prog.Vars)+len(c.sources)+2),
		call:   rt.Call,
	}
}

func (c *compiled) options(rt *pixalg.Runtime) error {
	c.bind(rt)
	if c.prog.Outside != nil {
		rt.SetOutsideValue(*c.prog.Outside)
	}
	return nil
}

func (c *compiled) pixel(rt *pixalg.Runtime, x, y float64) error {
	c.bind(rt)
	values := c.ev.values
	values["x"] = x
	values["y"] = y
	for _, img := range c.sources {
		v, err := rt.ReadFromImage(img.Name, x, y, img.Band)
		if err != nil {
			return err
		}
		values[img.Name] = v
	}
	for i, v := range c.prog.Vars {
		values[v.Name] = rt.VarAt(i)
	}

	for _, a := range c.prog.Assigns {
		v, err := c.ev.eval(a.Value)
		if err != nil {
			return &pixalg.EvalError{Op: "assign", Name: a.Target, X: x, Y: y, HasPos: true, Err: err}
		}
		if i, ok := rt.VarIndex(a.Target); ok {
			rt.SetVarAt(i, v)
			values[a.Target] = v
			continue
		}
		img, _ := c.prog.Image(a.Target)
		if err := rt.WriteToImage(a.Target, x, y, img.Band, v); err != nil {
			return err
		}
	}
	return nil
}

// defaultValue evaluates the default of the variable at index with the
// world object and the variables resolved so far in scope.
func (c *compiled) defaultValue(rt *pixalg.Runtime, index int) (float64, bool, error) {
	c.bind(rt)
	spec := c.prog.Vars[index]
	if spec.Default == nil {
		return 0, false, nil
	}

	world, err := worldValue(rt.World())
	if err != nil {
		return 0, false, fmt.Errorf("hclscript: world object: %w", err)
	}
	clear(c.ev.values)
	for _, v := range c.prog.Vars {
		if val, ok, _ := rt.Var(v.Name); ok {
			c.ev.values[v.Name] = val
		}
	}

	c.ev.world = &hcl.EvalContext{Variables: map[string]cty.Value{"world": world}}
	v, err := c.ev.eval(spec.Default)
	c.ev.world = nil
	if err != nil {
		return 0, false, err
	}
	return v, true, nil
}

// worldObject is the world as seen by default expressions.
type worldObject struct {
	MinX   float64 `cty:"min_x"`
	MinY   float64 `cty:"min_y"`
	MaxX   float64 `cty:"max_x"`
	MaxY   float64 `cty:"max_y"`
	Width  float64 `cty:"width"`
	Height float64 `cty:"height"`
	XRes   float64 `cty:"xres"`
	YRes   float64 `cty:"yres"`
}

var worldType = cty.Object(map[string]cty.Type{
	"min_x": cty.Number, "min_y": cty.Number,
	"max_x": cty.Number, "max_y": cty.Number,
	"width": cty.Number, "height": cty.Number,
	"xres": cty.Number, "yres": cty.Number,
})

func worldValue(w pixalg.World) (cty.Value, error) {
	return gocty.ToCtyValue(worldObject{
		MinX: w.MinX, MinY: w.MinY, MaxX: w.MaxX, MaxY: w.MaxY,
		Width: w.Width(), Height: w.Height(),
		XRes: w.XRes, YRes: w.YRes,
	}, worldType)
}

// errNotNumber is returned when an expression yields something other
// than a number or bool.
var errNotNumber = errors.New("hclscript: expression is not a number")

// fromValue converts a literal or world attribute to a sample value.
// Null maps to NaN and booleans to 1 or 0.
func fromValue(v cty.Value) (float64, error) {
	if v.IsNull() {
		return math.NaN(), nil
	}
	if !v.IsKnown() {
		return 0, errNotNumber
	}
	if v.Type() == cty.Bool {
		if v.True() {
			return 1, nil
		}
		return 0, nil
	}
	n, err := convert.Convert(v, cty.Number)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", errNotNumber, v.Type().FriendlyName())
	}
	f, _ := n.AsBigFloat().Float64()
	return f, nil
}
