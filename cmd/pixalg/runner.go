package main

import (
	"context"
	"fmt"
	"image"
	"path/filepath"
	"time"

	"github.com/gogpu/pixalg"
	"github.com/gogpu/pixalg/internal/cache"
	"github.com/gogpu/pixalg/internal/hclscript"
	"github.com/gogpu/pixalg/internal/rasterio"
)

// varValue is the final value of an image-scope variable.
type varValue struct {
	Name  string
	Value float64
}

// result describes one completed run.
type result struct {
	File    string
	Pixels  int64
	Elapsed time.Duration
	Vars    []varValue
	Outputs []string
}

// runFile loads, evaluates and saves one run file.
// Sources are read through the shared cache.
func runFile(ctx context.Context, path string, cfg *config, sources *sourceCache, listener pixalg.ProgressListener) (*result, error) {
	prog, err := hclscript.Load(path)
	if err != nil {
		return nil, err
	}

	rasters, err := openRasters(prog, sources)
	if err != nil {
		return nil, err
	}

	var opts []pixalg.Option
	if cfg.SeedSet {
		opts = append(opts, pixalg.WithSeed(cfg.Seed))
	}
	rt, err := pixalg.New(prog.Script(), opts...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rt.Close() }()

	if err := prog.Configure(rt, rasters); err != nil {
		return nil, err
	}
	if err := rt.EvaluateAll(ctx, listener); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	res := &result{File: path, Pixels: rt.LastRun().Pixels, Elapsed: rt.LastRun().Elapsed}
	for _, img := range prog.Images {
		if img.Role != pixalg.Destination {
			continue
		}
		grid := rasters[img.Name].(*pixalg.Grid)
		if err := rasterio.Save(img.Path, grid, &rasterio.Options{Gray16: img.Depth == 16}); err != nil {
			return nil, fmt.Errorf("%s: image %q: %w", path, img.Name, err)
		}
		res.Outputs = append(res.Outputs, img.Path)
	}
	for _, name := range rt.VarNames() {
		v, _, _ := rt.Var(name)
		res.Vars = append(res.Vars, varValue{Name: name, Value: v})
	}
	return res, nil
}

// sourceCache holds decoded source rasters by absolute path. Source
// grids are only read, so concurrent runs may share them.
type sourceCache = cache.Cache[string, *pixalg.Grid]

// sourceCacheSize bounds the number of decoded sources kept in memory.
const sourceCacheSize = 16

// openRasters loads every source and allocates every destination.
// Destinations without an explicit size take the size of the first
// source.
func openRasters(prog *hclscript.Program, sources *sourceCache) (map[string]pixalg.Raster, error) {
	rasters := make(map[string]pixalg.Raster, len(prog.Images))
	var first image.Rectangle
	for _, img := range prog.Images {
		if img.Role != pixalg.Source {
			continue
		}
		key, err := filepath.Abs(img.Path)
		if err != nil {
			return nil, fmt.Errorf("%s: image %q: %w", prog.Filename, img.Name, err)
		}
		g, err := sources.GetOrLoad(key, func() (*pixalg.Grid, error) {
			return rasterio.Load(key)
		})
		if err != nil {
			return nil, fmt.Errorf("%s: image %q: %w", prog.Filename, img.Name, err)
		}
		if first.Empty() {
			first = g.Bounds()
		}
		rasters[img.Name] = g
	}

	for _, img := range prog.Images {
		if img.Role != pixalg.Destination {
			continue
		}
		r := image.Rect(0, 0, img.Width, img.Height)
		if img.Width == 0 || img.Height == 0 {
			if first.Empty() {
				return nil, fmt.Errorf("%s: image %q: width and height are required without a source image",
					prog.Filename, img.Name)
			}
			r = first
		}
		rasters[img.Name] = pixalg.NewGrid(r, img.Band+1)
	}
	return rasters, nil
}
