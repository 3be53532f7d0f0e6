package hclscript

import (
	"fmt"
	"math"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
)

// evaluator computes run-file expressions with float64 semantics. HCL
// only parses; arithmetic, comparisons and conditionals run here so NaN
// flows through them like any other sample value.
type evaluator struct {
	values map[string]float64
	// world is the scope for world.* traversals; nil outside defaults.
	world *hcl.EvalContext
	call  func(name string, args ...float64) (float64, error)
}

func (ev *evaluator) eval(expr hcl.Expression) (float64, error) {
	switch e := expr.(type) {
	case *hclsyntax.LiteralValueExpr:
		return fromValue(e.Val)

	case *hclsyntax.ParenthesesExpr:
		return ev.eval(e.Expression)

	case *hclsyntax.ScopeTraversalExpr:
		return ev.traverse(e.Traversal)

	case *hclsyntax.FunctionCallExpr:
		args := make([]float64, len(e.Args))
		for i, a := range e.Args {
			v, err := ev.eval(a)
			if err != nil {
				return 0, err
			}
			args[i] = v
		}
		return ev.call(e.Name, args...)

	case *hclsyntax.ConditionalExpr:
		cond, err := ev.eval(e.Condition)
		if err != nil {
			return 0, err
		}
		switch {
		case math.IsNaN(cond):
			return math.NaN(), nil
		case cond != 0:
			return ev.eval(e.TrueResult)
		default:
			return ev.eval(e.FalseResult)
		}

	case *hclsyntax.UnaryOpExpr:
		v, err := ev.eval(e.Val)
		if err != nil {
			return 0, err
		}
		return unaryOp(e.Op, v), nil

	case *hclsyntax.BinaryOpExpr:
		l, err := ev.eval(e.LHS)
		if err != nil {
			return 0, err
		}
		r, err := ev.eval(e.RHS)
		if err != nil {
			return 0, err
		}
		return binaryOp(e.Op, l, r), nil
	}
	return 0, hcl.Diagnostics{unsupportedExpr(expr)}
}

func (ev *evaluator) traverse(tr hcl.Traversal) (float64, error) {
	name := tr.RootName()
	if name == "world" && ev.world != nil {
		val, diags := tr.TraverseAbs(ev.world)
		if diags.HasErrors() {
			return 0, diags
		}
		return fromValue(val)
	}
	v, ok := ev.values[name]
	if !ok {
		return 0, hcl.Diagnostics{errorDiag("Unknown name",
			fmt.Sprintf("%q has no value here.", name), tr.SourceRange())}
	}
	if len(tr) > 1 {
		return 0, hcl.Diagnostics{errorDiag("Unsupported attribute",
			fmt.Sprintf("%q is a number and has no attributes.", name), tr.SourceRange())}
	}
	return v, nil
}

func unaryOp(op *hclsyntax.Operation, v float64) float64 {
	switch op {
	case hclsyntax.OpNegate:
		return -v
	case hclsyntax.OpLogicalNot:
		if math.IsNaN(v) {
			return v
		}
		return boolFloat(v == 0)
	}
	return math.NaN()
}

// binaryOp applies op to l and r. Comparisons with NaN are false; logical
// operators return NaN when either side is NaN.
func binaryOp(op *hclsyntax.Operation, l, r float64) float64 {
	switch op {
	case hclsyntax.OpAdd:
		return l + r
	case hclsyntax.OpSubtract:
		return l - r
	case hclsyntax.OpMultiply:
		return l * r
	case hclsyntax.OpDivide:
		return l / r
	case hclsyntax.OpModulo:
		return math.Mod(l, r)
	case hclsyntax.OpEqual:
		return boolFloat(l == r)
	case hclsyntax.OpNotEqual:
		return boolFloat(l != r)
	case hclsyntax.OpGreaterThan:
		return boolFloat(l > r)
	case hclsyntax.OpGreaterThanOrEqual:
		return boolFloat(l >= r)
	case hclsyntax.OpLessThan:
		return boolFloat(l < r)
	case hclsyntax.OpLessThanOrEqual:
		return boolFloat(l <= r)
	case hclsyntax.OpLogicalAnd:
		if math.IsNaN(l) || math.IsNaN(r) {
			return math.NaN()
		}
		return boolFloat(l != 0 && r != 0)
	case hclsyntax.OpLogicalOr:
		if math.IsNaN(l) || math.IsNaN(r) {
			return math.NaN()
		}
		return boolFloat(l != 0 || r != 0)
	}
	return math.NaN()
}

func boolFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// checkExpr reports expression forms the evaluator does not support.
func checkExpr(expr hcl.Expression, allowWorld bool) hcl.Diagnostics {
	var diags hcl.Diagnostics
	switch e := expr.(type) {
	case *hclsyntax.LiteralValueExpr:
		if _, err := fromValue(e.Val); err != nil {
			diags = diags.Append(errorDiag("Invalid literal", err.Error(), e.SrcRange))
		}
	case *hclsyntax.ParenthesesExpr:
		diags = append(diags, checkExpr(e.Expression, allowWorld)...)
	case *hclsyntax.ScopeTraversalExpr:
		name := e.Traversal.RootName()
		switch {
		case allowWorld && name == "world":
			if len(e.Traversal) != 2 {
				diags = diags.Append(errorDiag("Invalid world reference",
					"Use one attribute of world, such as world.width.", e.SrcRange))
			}
		case len(e.Traversal) > 1:
			diags = diags.Append(errorDiag("Unsupported attribute",
				fmt.Sprintf("%q is a number and has no attributes.", name), e.SrcRange))
		}
	case *hclsyntax.FunctionCallExpr:
		if e.ExpandFinal {
			diags = diags.Append(errorDiag("Invalid function call",
				"Argument expansion is not supported.", e.Range()))
		}
		for _, a := range e.Args {
			diags = append(diags, checkExpr(a, allowWorld)...)
		}
	case *hclsyntax.ConditionalExpr:
		diags = append(diags, checkExpr(e.Condition, allowWorld)...)
		diags = append(diags, checkExpr(e.TrueResult, allowWorld)...)
		diags = append(diags, checkExpr(e.FalseResult, allowWorld)...)
	case *hclsyntax.UnaryOpExpr:
		diags = append(diags, checkExpr(e.Val, allowWorld)...)
	case *hclsyntax.BinaryOpExpr:
		diags = append(diags, checkExpr(e.LHS, allowWorld)...)
		diags = append(diags, checkExpr(e.RHS, allowWorld)...)
	default:
		diags = diags.Append(unsupportedExpr(expr))
	}
	return diags
}

func unsupportedExpr(expr hcl.Expression) *hcl.Diagnostic {
	return errorDiag("Unsupported expression",
		"Only numbers, names, function calls, operators and conditionals are allowed.", expr.Range())
}
