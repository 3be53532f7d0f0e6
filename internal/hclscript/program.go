// Package hclscript turns HCL run files into pixalg scripts.
//
// A run file declares images, image-scope variables and assignments that
// are evaluated once per pixel:
//
//	world {
//	  bounds     = [0, 0, 10, 10]
//	  resolution = [1, 1]
//	}
//	image "src" {
//	  role = "source"
//	  path = "in.png"
//	}
//	image "dst" {
//	  role = "destination"
//	  path = "out.tif"
//	}
//	var "count" {
//	  default = 0
//	}
//	assign "count" { value = count + (src > 10 ? 1 : 0) }
//	assign "dst"   { value = max(src, 3) }
//
// Assignments see x, y, every source image, every variable and the
// pixalg built-in functions. Defaults see the variables, the functions
// and a world object. Arithmetic is plain float64, so NaN samples flow
// through expressions instead of failing them.
package hclscript

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/gogpu/pixalg"
)

// fileRoot decodes the top-level blocks of a run file.
type fileRoot struct {
	World   *worldBlock    `hcl:"world,block"`
	Options *optionsBlock  `hcl:"options,block"`
	Images  []*imageBlock  `hcl:"image,block"`
	Vars    []*varBlock    `hcl:"var,block"`
	Assigns []*assignBlock `hcl:"assign,block"`
}

type worldBlock struct {
	Bounds     []float64 `hcl:"bounds,optional"`
	Resolution []float64 `hcl:"resolution,optional"`
	Pixels     []int     `hcl:"pixels,optional"`
	DeclRange  hcl.Range `hcl:",def_range"`
}

type optionsBlock struct {
	Outside *float64 `hcl:"outside,optional"`
}

type imageBlock struct {
	Name      string    `hcl:"name,label"`
	Role      string    `hcl:"role"`
	Path      string    `hcl:"path"`
	Band      int       `hcl:"band,optional"`
	WorldRect []float64 `hcl:"world_rect,optional"`
	Width     int       `hcl:"width,optional"`
	Height    int       `hcl:"height,optional"`
	Depth     int       `hcl:"depth,optional"`
	DeclRange hcl.Range `hcl:",def_range"`
}

type varBlock struct {
	Name      string    `hcl:"name,label"`
	Body      hcl.Body  `hcl:",remain"`
	DeclRange hcl.Range `hcl:",def_range"`
}

type assignBlock struct {
	Target    string         `hcl:"target,label"`
	Value     hcl.Expression `hcl:"value"`
	DeclRange hcl.Range      `hcl:",def_range"`
}

// WorldSpec is the processing area requested by a run file. Exactly one
// of Resolution and Pixels is set.
type WorldSpec struct {
	Bounds     pixalg.Rect
	Resolution [2]float64
	Pixels     [2]int
	ByPixels   bool
}

// ImageSpec describes one image of a run file.
type ImageSpec struct {
	Name string
	Role pixalg.Role
	// Path is resolved against the directory of the run file.
	Path string
	Band int
	// WorldRect, when set, is the world rectangle the raster covers and
	// gives the binding an explicit transform.
	WorldRect *pixalg.Rect
	// Width and Height size a new destination raster. Zero means the
	// size of the first source.
	Width, Height int
	// Depth is the sample depth of a saved destination, 8 or 16.
	Depth int
}

// VarSpec is an image-scope variable.
type VarSpec struct {
	Name    string
	Default hcl.Expression // nil when the variable has no default
}

// Assign stores the value of an expression in a variable or destination
// image.
type Assign struct {
	Target string
	Value  hcl.Expression
	Range  hcl.Range
}

// Program is a parsed and validated run file.
type Program struct {
	Filename string
	World    *WorldSpec
	Outside  *float64
	Images   []ImageSpec
	Vars     []VarSpec
	Assigns  []Assign
}

// Load parses the run file at path.
func Load(path string) (*Program, error) {
	src, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("hclscript: read run file: %w", err)
	}
	return Parse(src, path)
}

// Parse parses and validates a run file. Relative image paths are
// resolved against the directory of filename.
func Parse(src []byte, filename string) (*Program, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("hclscript: parse %s: %w", filename, diags)
	}

	var root fileRoot
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("hclscript: decode %s: %w", filename, diags)
	}

	p := &Program{Filename: filename}
	diags = p.build(&root, filepath.Dir(filename))
	if diags.HasErrors() {
		return nil, fmt.Errorf("hclscript: %s: %w", filename, diags)
	}

	pixalg.Logger().Debug("hclscript: run file loaded",
		"file", filename, "images", len(p.Images), "vars", len(p.Vars), "assigns", len(p.Assigns))
	return p, nil
}

func errorDiag(summary, detail string, rng hcl.Range) *hcl.Diagnostic {
	return &hcl.Diagnostic{Severity: hcl.DiagError, Summary: summary, Detail: detail, Subject: rng.Ptr()}
}

func (p *Program) build(root *fileRoot, dir string) hcl.Diagnostics {
	var diags hcl.Diagnostics
	names := make(map[string]hcl.Range)
	declare := func(name string, rng hcl.Range) bool {
		if prev, ok := names[name]; ok {
			diags = diags.Append(errorDiag("Duplicate name",
				fmt.Sprintf("%q is already declared at %s.", name, prev), rng))
			return false
		}
		if reserved(name) {
			diags = diags.Append(errorDiag("Reserved name",
				fmt.Sprintf("%q cannot be used as an image or variable name.", name), rng))
			return false
		}
		names[name] = rng
		return true
	}

	if root.World != nil {
		w, d := buildWorld(root.World)
		diags = append(diags, d...)
		p.World = w
	}
	if root.Options != nil {
		p.Outside = root.Options.Outside
	}

	for _, ib := range root.Images {
		if !declare(ib.Name, ib.DeclRange) {
			continue
		}
		spec, d := buildImage(ib, dir, p.World != nil)
		diags = append(diags, d...)
		p.Images = append(p.Images, spec)
	}

	for _, vb := range root.Vars {
		if !declare(vb.Name, vb.DeclRange) {
			continue
		}
		attrs, d := vb.Body.JustAttributes()
		diags = append(diags, d...)
		spec := VarSpec{Name: vb.Name}
		for name, attr := range attrs {
			if name != "default" {
				diags = diags.Append(errorDiag("Unsupported argument",
					fmt.Sprintf("An argument named %q is not expected in a var block.", name), attr.NameRange))
				continue
			}
			spec.Default = attr.Expr
		}
		p.Vars = append(p.Vars, spec)
	}

	for _, ab := range root.Assigns {
		if !p.isTarget(ab.Target) {
			diags = diags.Append(errorDiag("Invalid assignment target",
				fmt.Sprintf("%q is not a variable or destination image.", ab.Target), ab.DeclRange))
			continue
		}
		p.Assigns = append(p.Assigns, Assign{Target: ab.Target, Value: ab.Value, Range: ab.DeclRange})
	}

	diags = append(diags, p.checkReferences()...)
	return diags
}

func buildWorld(wb *worldBlock) (*WorldSpec, hcl.Diagnostics) {
	var diags hcl.Diagnostics
	w := &WorldSpec{}
	if len(wb.Bounds) != 4 {
		diags = diags.Append(errorDiag("Invalid world bounds",
			"bounds must be [x, y, width, height].", wb.DeclRange))
	} else {
		w.Bounds = pixalg.NewRect(wb.Bounds[0], wb.Bounds[1], wb.Bounds[2], wb.Bounds[3])
	}

	switch {
	case wb.Resolution != nil && wb.Pixels != nil:
		diags = diags.Append(errorDiag("Conflicting world size",
			"Set either resolution or pixels, not both.", wb.DeclRange))
	case wb.Resolution != nil:
		if len(wb.Resolution) != 2 {
			diags = diags.Append(errorDiag("Invalid resolution",
				"resolution must be [xres, yres].", wb.DeclRange))
			break
		}
		w.Resolution = [2]float64{wb.Resolution[0], wb.Resolution[1]}
	case wb.Pixels != nil:
		if len(wb.Pixels) != 2 {
			diags = diags.Append(errorDiag("Invalid pixel count",
				"pixels must be [columns, rows].", wb.DeclRange))
			break
		}
		w.Pixels = [2]int{wb.Pixels[0], wb.Pixels[1]}
		w.ByPixels = true
	default:
		diags = diags.Append(errorDiag("Missing world size",
			"A world block needs resolution or pixels.", wb.DeclRange))
	}
	return w, diags
}

func buildImage(ib *imageBlock, dir string, haveWorld bool) (ImageSpec, hcl.Diagnostics) {
	var diags hcl.Diagnostics
	spec := ImageSpec{
		Name:   ib.Name,
		Path:   ib.Path,
		Band:   ib.Band,
		Width:  ib.Width,
		Height: ib.Height,
		Depth:  ib.Depth,
	}
	if !filepath.IsAbs(spec.Path) {
		spec.Path = filepath.Join(dir, spec.Path)
	}

	switch ib.Role {
	case "source":
		spec.Role = pixalg.Source
	case "destination":
		spec.Role = pixalg.Destination
	default:
		diags = diags.Append(errorDiag("Invalid image role",
			fmt.Sprintf("role must be \"source\" or \"destination\", got %q.", ib.Role), ib.DeclRange))
	}
	if ib.Band < 0 {
		diags = diags.Append(errorDiag("Invalid band", "band must not be negative.", ib.DeclRange))
	}
	if ib.Width < 0 || ib.Height < 0 {
		diags = diags.Append(errorDiag("Invalid image size", "width and height must not be negative.", ib.DeclRange))
	}
	switch spec.Depth {
	case 0:
		spec.Depth = 8
	case 8, 16:
	default:
		diags = diags.Append(errorDiag("Invalid depth", "depth must be 8 or 16.", ib.DeclRange))
	}

	if ib.WorldRect != nil {
		if len(ib.WorldRect) != 4 {
			diags = diags.Append(errorDiag("Invalid world_rect",
				"world_rect must be [x, y, width, height].", ib.DeclRange))
		} else {
			r := pixalg.NewRect(ib.WorldRect[0], ib.WorldRect[1], ib.WorldRect[2], ib.WorldRect[3])
			spec.WorldRect = &r
		}
		if !haveWorld {
			diags = diags.Append(errorDiag("world_rect without world",
				"An explicit world_rect requires a world block.", ib.DeclRange))
		}
	}
	return spec, diags
}

// reserved reports names that are always in scope.
func reserved(name string) bool {
	return name == "x" || name == "y" || name == "world"
}

func (p *Program) isTarget(name string) bool {
	if p.isVar(name) {
		return true
	}
	img, ok := p.Image(name)
	return ok && img.Role == pixalg.Destination
}

// checkReferences verifies that every expression uses supported forms
// and only names in scope. Assignments see coordinates, sources and
// variables; defaults see variables and the world object.
func (p *Program) checkReferences() hcl.Diagnostics {
	var diags hcl.Diagnostics
	check := func(expr hcl.Expression, isDefault bool) {
		diags = append(diags, checkExpr(expr, isDefault)...)
		for _, tr := range expr.Variables() {
			name := tr.RootName()
			switch {
			case isDefault && name == "world":
			case isDefault && p.isVar(name):
			case isDefault:
				diags = diags.Append(errorDiag("Name not available in default",
					fmt.Sprintf("A default can only use world and variables; %q is not one of them.", name),
					tr.SourceRange()))
			case p.inScope(name):
			default:
				diags = diags.Append(errorDiag("Unknown name",
					fmt.Sprintf("%q is not a source image, variable or coordinate.", name), tr.SourceRange()))
			}
		}
	}
	for _, v := range p.Vars {
		if v.Default != nil {
			check(v.Default, true)
		}
	}
	for _, a := range p.Assigns {
		check(a.Value, false)
	}
	return diags
}

func (p *Program) isVar(name string) bool {
	return slices.ContainsFunc(p.Vars, func(v VarSpec) bool { return v.Name == name })
}

func (p *Program) inScope(name string) bool {
	if name == "x" || name == "y" || p.isVar(name) {
		return true
	}
	img, ok := p.Image(name)
	return ok && img.Role == pixalg.Source
}

// Image returns the image named name.
func (p *Program) Image(name string) (ImageSpec, bool) {
	for _, img := range p.Images {
		if img.Name == name {
			return img, true
		}
	}
	return ImageSpec{}, false
}
