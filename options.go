package pixalg

import "math/rand/v2"

// Option configures a Runtime during creation.
//
// Example:
//
//	// Deterministic rand() and randInt()
//	rt, err := pixalg.New(script, pixalg.WithSeed(42))
//
//	// Reads outside a source image return 0 instead of failing
//	rt, err := pixalg.New(script, pixalg.WithOutsideValue(0))
type Option func(*options)

// options holds optional configuration for Runtime creation.
type options struct {
	rng        *rand.Rand
	outside    float64
	outsideSet bool
}

// WithSeed seeds the runtime's pseudo-random generator, making rand and
// randInt deterministic.
func WithSeed(seed uint64) Option {
	return func(o *options) {
		o.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
}

// WithRand sets the pseudo-random generator used by rand and randInt.
// The runtime takes ownership of rng; do not share it between runtimes.
func WithRand(rng *rand.Rand) Option {
	return func(o *options) {
		o.rng = rng
	}
}

// WithOutsideValue sets the value returned for reads outside a source
// image. Without it such reads fail with ErrOutside.
// The script's option initializer may override it.
func WithOutsideValue(v float64) Option {
	return func(o *options) {
		o.outside = v
		o.outsideSet = true
	}
}
