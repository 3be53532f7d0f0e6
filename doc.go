// Package pixalg is the runtime of a per-pixel raster algebra language.
//
// # Overview
//
// A compiler (not part of this package) turns a script into a [Script]
// capability record: a per-pixel procedure, a provider of default values
// for image-scope variables, and an option initializer. A [Runtime]
// binds the script to rasters and sweeps the processing area, calling the
// per-pixel procedure once for every world position.
//
// # Quick Start
//
//	src := pixalg.NewGridSize(10, 10, 1)
//	dst := pixalg.NewGridSize(10, 10, 1)
//
//	rt, err := pixalg.New(pixalg.Script{
//	    Pixel: func(rt *pixalg.Runtime, x, y float64) error {
//	        v, err := rt.ReadFromImage("src", x, y, 0)
//	        if err != nil {
//	            return err
//	        }
//	        return rt.WriteToImage("dst", x, y, 0, v*2)
//	    },
//	})
//	if err != nil {
//	    return err
//	}
//	defer rt.Close()
//
//	_ = rt.BindSource("src", src, nil)
//	_ = rt.BindDestination("dst", dst, nil)
//	err = rt.EvaluateAll(ctx, nil)
//
// # Coordinate System
//
// Scripts work in world coordinates. The world is a rectangle in world
// units together with a pixel size (resolution). Each bound image has a
// [Transform] from world to pixel coordinates; images bound without one
// track the runtime's default transform, which is the identity unless
// changed. Pixel i covers [i, i+1) in continuous pixel space, so world
// positions are floored when mapped to pixel indices.
//
// When no world is set, EvaluateAll uses the pixel rectangle of the first
// destination image (or the first source image) at one world unit per
// pixel.
//
// # Functions
//
// Compiled code calls built-in functions by name through [Runtime.Call].
// The names and arities form a fixed contract with the compiler; see
// [Builtins] and [IsDefined].
//
// # Errors
//
// Configuration mistakes return [*ArgumentError] or [*StateError];
// failures during evaluation return [*EvalError]. All of them wrap one of
// the package's sentinel errors.
package pixalg
