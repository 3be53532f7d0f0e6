package pixalg

import (
	"context"
	"fmt"
	"time"
)

// EvaluateAll runs the script's pixel procedure over the whole processing
// area, rows first. If the world is not set it is derived from a bound
// image; unresolved variable defaults are initialized first.
//
// The first error returned by the pixel procedure aborts the sweep; there
// is no partial-result mode. ctx is checked once per row and at every
// progress update. A nil listener discards progress.
func (rt *Runtime) EvaluateAll(ctx context.Context, listener ProgressListener) error {
	if listener == nil {
		listener = NullProgress{}
	}
	if len(rt.bindings) == 0 {
		return &StateError{Op: "EvaluateAll", Err: ErrNoImages}
	}
	if !rt.world.Set {
		if err := rt.SetDefaultBounds(); err != nil {
			return err
		}
	}
	if !rt.varsReady {
		if err := rt.InitDefaults(); err != nil {
			return err
		}
	}

	w := rt.world
	cols, rows := w.Columns(), w.Rows()
	total := int64(cols) * int64(rows)
	interval := listener.UpdateInterval()
	if interval <= 0 {
		interval = 1
	}

	log := Logger()
	log.Info("pixalg: run started", "pixels", total, "columns", cols, "rows", rows)
	started := time.Now()

	var count, sinceUpdate int64
	listener.Start(total)
	for j := 0; j < rows; j++ {
		if err := ctx.Err(); err != nil {
			log.Warn("pixalg: run cancelled", "pixels_done", count)
			return fmt.Errorf("pixalg: evaluation cancelled: %w", err)
		}
		y := w.MinY + float64(j)*w.YRes
		for i := 0; i < cols; i++ {
			x := w.MinX + float64(i)*w.XRes
			if err := rt.script.Pixel(rt, x, y); err != nil {
				log.Warn("pixalg: run aborted", "x", x, "y", y, "error", err)
				return err
			}
			count++
			sinceUpdate++
			if sinceUpdate >= interval {
				listener.Update(count)
				sinceUpdate = 0
				if err := ctx.Err(); err != nil {
					log.Warn("pixalg: run cancelled", "pixels_done", count)
					return fmt.Errorf("pixalg: evaluation cancelled: %w", err)
				}
			}
		}
	}
	listener.Finish(count)

	rt.last = RunStats{Pixels: count, Elapsed: time.Since(started)}
	log.Info("pixalg: run finished", "pixels", count, "elapsed", rt.last.Elapsed)
	return nil
}

// ReadFromImage returns the value of band at world position (x, y) in the
// named image. Positions outside the image return the outside value when
// one is configured and fail with ErrOutside otherwise.
func (rt *Runtime) ReadFromImage(name string, x, y float64, band int) (float64, error) {
	b, ok := rt.lookupBinding(name)
	if !ok {
		return 0, &EvalError{Op: "read", Name: name, X: x, Y: y, HasPos: true, Err: ErrUnknownImage}
	}
	if band < 0 || band >= b.Raster.NumBands() {
		return 0, &EvalError{Op: "read", Name: name, X: x, Y: y, HasPos: true, Err: ErrBadBand}
	}

	p := b.Transform.WorldToPixel(x, y)
	if !p.In(b.Raster.Bounds()) {
		if rt.outsideSet {
			return rt.outside, nil
		}
		return 0, &EvalError{Op: "read", Name: name, X: x, Y: y, HasPos: true, Err: ErrOutside}
	}
	return b.Raster.Sample(p.X, p.Y, band), nil
}

// WriteToImage stores value in band at world position (x, y) of the named
// destination image. The write is handed to the raster unchecked; the
// sweep only produces positions inside the processing area.
func (rt *Runtime) WriteToImage(name string, x, y float64, band int, value float64) error {
	b, ok := rt.lookupBinding(name)
	if !ok {
		return &EvalError{Op: "write", Name: name, X: x, Y: y, HasPos: true, Err: ErrUnknownImage}
	}
	w, ok := b.Raster.(WritableRaster)
	if !ok || b.Role != Destination {
		return &EvalError{Op: "write", Name: name, X: x, Y: y, HasPos: true, Err: ErrNotWritable}
	}
	p := b.Transform.WorldToPixel(x, y)
	w.SetSample(p.X, p.Y, band, value)
	return nil
}
