package pixalg

import (
	"math"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/gogpu/pixalg/internal/stats"
)

// Arity is the number of arguments a function accepts.
type Arity int

// Variadic marks a function that accepts one or more arguments.
const Variadic Arity = -1

// zeroEpsilon is the tolerance of the zero test used by the if functions.
const zeroEpsilon = 1e-10

// FunctionEntry describes one built-in function.
type FunctionEntry struct {
	Name  string
	Arity Arity
	op    func(f *Functions, args []float64) float64
}

type funcKey struct {
	name  string
	arity Arity
}

// builtins is populated once at package initialization and never modified.
var builtins = map[funcKey]FunctionEntry{}

func def(name string, arity Arity, op func(f *Functions, args []float64) float64) {
	builtins[funcKey{name, arity}] = FunctionEntry{Name: name, Arity: arity, op: op}
}

func def1(name string, op func(float64) float64) {
	def(name, 1, func(_ *Functions, a []float64) float64 { return op(a[0]) })
}

func init() {
	def1("abs", math.Abs)
	def1("acos", math.Acos)
	def1("asin", math.Asin)
	def1("atan", math.Atan)
	def1("cos", math.Cos)
	def1("sin", math.Sin)
	def1("tan", math.Tan)
	def1("sqrt", math.Sqrt)
	def1("log", math.Log)
	def("log", 2, func(_ *Functions, a []float64) float64 {
		return math.Log(a[0]) / math.Log(a[1])
	})
	def1("degToRad", func(x float64) float64 { return math.Pi * x / 180 })
	def1("radToDeg", func(x float64) float64 { return x / math.Pi * 180 })

	def1("if", func(x float64) float64 { return boolValue(isZero(x)) })
	def("if", 2, func(_ *Functions, a []float64) float64 {
		if isZero(a[0]) {
			return a[1]
		}
		return 0
	})
	def("if", 3, func(_ *Functions, a []float64) float64 {
		if isZero(a[0]) {
			return a[1]
		}
		return a[2]
	})
	def("if", 4, func(_ *Functions, a []float64) float64 {
		switch {
		case isZero(a[0]):
			return a[2]
		case a[0] > 0:
			return a[1]
		default:
			return a[3]
		}
	})

	def1("isinf", func(x float64) float64 { return boolValue(math.IsInf(x, 0)) })
	def1("isnan", func(x float64) float64 { return boolValue(math.IsNaN(x)) })
	def1("isnull", func(x float64) float64 { return boolValue(math.IsNaN(x)) })

	def1("round", roundHalfUp)
	def("round", 2, func(_ *Functions, a []float64) float64 {
		factor := math.Floor(a[1] + 0.5)
		if factor == 0 {
			return math.NaN()
		}
		return roundHalfUp(a[0]/factor) * factor
	})

	def("rand", 1, func(f *Functions, a []float64) float64 {
		return f.rng.Float64() * a[0]
	})
	def("randInt", 1, func(f *Functions, a []float64) float64 {
		n := int(a[0])
		if n <= 0 {
			return math.NaN()
		}
		return float64(f.rng.IntN(n))
	})

	def("null", 0, func(*Functions, []float64) float64 { return math.NaN() })

	def("max", Variadic, func(_ *Functions, a []float64) float64 { return stats.Max(a) })
	def("min", Variadic, func(_ *Functions, a []float64) float64 { return stats.Min(a) })
	def("mode", Variadic, func(_ *Functions, a []float64) float64 { return stats.Mode(a) })
	def("median", Variadic, func(_ *Functions, a []float64) float64 { return stats.Median(a) })
	def("range", Variadic, func(_ *Functions, a []float64) float64 { return stats.Range(a) })
}

func isZero(x float64) bool { return math.Abs(x) < zeroEpsilon }

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func roundHalfUp(x float64) float64 { return math.Floor(x + 0.5) }

// lookup resolves a call. A variadic entry for the name always wins over a
// fixed-arity entry of the same name.
func lookup(name string, nargs int) (FunctionEntry, bool) {
	if e, ok := builtins[funcKey{name, Variadic}]; ok {
		return e, true
	}
	e, ok := builtins[funcKey{name, Arity(nargs)}]
	return e, ok
}

// IsDefined reports whether a call to name with nargs arguments resolves
// to a built-in function. Compilers use it for static checking.
func IsDefined(name string, nargs int) bool {
	e, ok := lookup(name, nargs)
	return ok && (e.Arity != Variadic || nargs > 0)
}

// Builtins returns every built-in function entry sorted by name and arity.
func Builtins() []FunctionEntry {
	entries := make([]FunctionEntry, 0, len(builtins))
	for _, e := range builtins {
		entries = append(entries, e)
	}
	slices.SortFunc(entries, func(a, b FunctionEntry) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return int(a.Arity - b.Arity)
	})
	return entries
}

// Functions invokes built-in functions. It owns the pseudo-random
// generator used by rand and randInt, so instances never share state.
//
// Functions is not safe for concurrent use.
type Functions struct {
	rng *rand.Rand
}

// NewFunctions returns a function invoker drawing random values from rng.
// A nil rng is replaced by a randomly seeded generator.
func NewFunctions(rng *rand.Rand) *Functions {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Functions{rng: rng}
}

// Invoke calls the named function with args.
func (f *Functions) Invoke(name string, args []float64) (float64, error) {
	e, ok := lookup(name, len(args))
	if !ok {
		return 0, &EvalError{Op: "call", Name: name, Err: ErrUnknownFunction}
	}
	if e.Arity == Variadic {
		if len(args) == 0 {
			return 0, &EvalError{Op: "call", Name: name, Err: ErrArity}
		}
	} else if int(e.Arity) != len(args) || e.Arity > 4 {
		return 0, &EvalError{Op: "call", Name: name, Err: ErrArity}
	}
	return e.op(f, args), nil
}
