package hclscript

import (
	"fmt"

	"github.com/gogpu/pixalg"
)

// Configure sets the world of rt from the program's world block, if any,
// and binds every image to the raster of the same name in rasters.
// Destination rasters must be writable.
func (p *Program) Configure(rt *pixalg.Runtime, rasters map[string]pixalg.Raster) error {
	if w := p.World; w != nil {
		var err error
		if w.ByPixels {
			err = rt.SetWorldByNumPixels(w.Bounds, w.Pixels[0], w.Pixels[1])
		} else {
			err = rt.SetWorldByResolution(w.Bounds, w.Resolution[0], w.Resolution[1])
		}
		if err != nil {
			return fmt.Errorf("hclscript: world: %w", err)
		}
	}

	for _, img := range p.Images {
		r, ok := rasters[img.Name]
		if !ok || r == nil {
			return fmt.Errorf("hclscript: image %q: %w", img.Name, pixalg.ErrNilRaster)
		}

		var tr *pixalg.Transform
		if img.WorldRect != nil {
			t, err := pixalg.DeriveTransform(*img.WorldRect, r.Bounds())
			if err != nil {
				return fmt.Errorf("hclscript: image %q: %w", img.Name, err)
			}
			tr = &t
		}

		var err error
		switch img.Role {
		case pixalg.Source:
			err = rt.BindSource(img.Name, r, tr)
		case pixalg.Destination:
			w, ok := r.(pixalg.WritableRaster)
			if !ok {
				return fmt.Errorf("hclscript: image %q: %w", img.Name, pixalg.ErrNotWritable)
			}
			err = rt.BindDestination(img.Name, w, tr)
		}
		if err != nil {
			return fmt.Errorf("hclscript: image %q: %w", img.Name, err)
		}
	}
	return nil
}
