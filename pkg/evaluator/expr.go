package evaluator

import (
	"fmt"
	"strings"

	"github.com/dmitrycvs/C-DSL/pkg/ast"
	"github.com/dmitrycvs/C-DSL/pkg/diagnostics"
)

func (ev *interp) evalExpr(expr ast.Expr) (Value, error) {
	switch e := expr.(type) {
	case *ast.NumberLiteral:
		return NewNumber(e.Value), nil

	case *ast.StringLiteral:
		return NewText(e.Value), nil

	case *ast.BoolLiteral:
		return NewBool(e.Value), nil

	case *ast.Ident:
		return ev.env.Lookup(e.Name), nil

	case *ast.CallExpr:
		return ev.evalCall(e)

	case *ast.ParenExpr:
		return ev.evalExpr(e.Inner)

	case *ast.NegExpr:
		val, err := ev.evalExpr(e.Operand)
		if err != nil {
			return nil, err
		}
		n, ok := ToNumber(val)
		if !ok {
			return nil, arithError(e.Span, "cannot negate text %q", FormatValue(val))
		}
		return NewNumber(-n), nil

	case *ast.FlatExpr:
		return ev.evalFlat(e)

	default:
		span := expr.NodeSpan()
		return nil, &RuntimeError{
			Code:    diagnostics.EAst,
			Message: fmt.Sprintf("unsupported expression type: %T", expr),
			Span:    &span,
		}
	}
}

// evalFlat folds the terms strictly left to right; there is no operator
// precedence, so 2 + 3 * 4 is 20.
func (ev *interp) evalFlat(e *ast.FlatExpr) (Value, error) {
	acc, err := ev.evalExpr(e.Terms[0])
	if err != nil {
		return nil, err
	}
	for i, op := range e.Ops {
		right, err := ev.evalExpr(e.Terms[i+1])
		if err != nil {
			return nil, err
		}
		acc, err = applyOp(op, acc, right, e.Span)
		if err != nil {
			return nil, err
		}
	}
	return acc, nil
}

func applyOp(op ast.BinaryOp, left, right Value, span ast.Span) (Value, error) {
	ln, lok := ToNumber(left)
	rn, rok := ToNumber(right)

	if op == ast.OpAdd && (!lok || !rok) {
		return NewText(FormatValue(left) + FormatValue(right)), nil
	}
	if !lok {
		return nil, arithError(span, "cannot apply '%s' to text %q", op, FormatValue(left))
	}
	if !rok {
		return nil, arithError(span, "cannot apply '%s' to text %q", op, FormatValue(right))
	}

	switch op {
	case ast.OpAdd:
		return NewNumber(ln + rn), nil
	case ast.OpSub:
		return NewNumber(ln - rn), nil
	case ast.OpMul:
		return NewNumber(ln * rn), nil
	case ast.OpDiv:
		if rn == 0 {
			return nil, arithError(span, "division by zero")
		}
		return NewNumber(ln / rn), nil
	}
	return nil, &RuntimeError{Code: diagnostics.EAst, Message: fmt.Sprintf("unknown operator '%s'", op), Span: &span}
}

func arithError(span ast.Span, format string, args ...any) *RuntimeError {
	return &RuntimeError{Code: diagnostics.EArith, Message: fmt.Sprintf(format, args...), Span: &span}
}

// evalNumber evaluates an expression that must produce a number, such as a
// loop bound or a coordinate.
func (ev *interp) evalNumber(expr ast.Expr, what string) (float64, error) {
	val, err := ev.evalExpr(expr)
	if err != nil {
		return 0, err
	}
	n, ok := ToNumber(val)
	if !ok {
		span := expr.NodeSpan()
		return 0, &RuntimeError{
			Code:    diagnostics.EType,
			Message: fmt.Sprintf("%s must be a number, got %s %q", what, TypeName(val), FormatValue(val)),
			Span:    &span,
		}
	}
	return n, nil
}

// evalOperand evaluates one side of a condition and reports whether it was
// a bare identifier with no binding.
func (ev *interp) evalOperand(expr ast.Expr) (val Value, unbound bool, err error) {
	if id, ok := expr.(*ast.Ident); ok {
		if _, bound := ev.env.Get(id.Name); !bound {
			return NewNumber(0), true, nil
		}
	}
	val, err = ev.evalExpr(expr)
	return val, false, err
}

func isPlainText(v Value) bool {
	if _, ok := v.(Text); !ok {
		return false
	}
	_, numeric := ToNumber(v)
	return !numeric
}

func (ev *interp) evalCondition(c *ast.Condition) (bool, error) {
	left, leftUnbound, err := ev.evalOperand(c.Left)
	if err != nil {
		return false, err
	}
	right, rightUnbound, err := ev.evalOperand(c.Right)
	if err != nil {
		return false, err
	}

	// An unbound name compared with text reads as the empty string.
	if leftUnbound && isPlainText(right) {
		left = NewText("")
	}
	if rightUnbound && isPlainText(left) {
		right = NewText("")
	}
	return compare(c.Op, left, right, c.Span)
}

func compare(op ast.CompareOp, left, right Value, span ast.Span) (bool, error) {
	ln, lok := ToNumber(left)
	rn, rok := ToNumber(right)
	if lok && rok {
		return ordered(op, cmpFloat(ln, rn)), nil
	}

	lt, ltext := left.(Text)
	rt, rtext := right.(Text)
	if ltext && rtext {
		return ordered(op, strings.Compare(lt.Value, rt.Value)), nil
	}

	switch op {
	case ast.OpEq:
		return false, nil
	case ast.OpNeq:
		return true, nil
	}
	return false, &RuntimeError{
		Code: diagnostics.EType,
		Message: fmt.Sprintf("cannot order %s %q against %s %q with '%s'",
			TypeName(left), FormatValue(left), TypeName(right), FormatValue(right), op),
		Span: &span,
	}
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func ordered(op ast.CompareOp, c int) bool {
	switch op {
	case ast.OpEq:
		return c == 0
	case ast.OpNeq:
		return c != 0
	case ast.OpLt:
		return c < 0
	case ast.OpGt:
		return c > 0
	case ast.OpLtEq:
		return c <= 0
	case ast.OpGtEq:
		return c >= 0
	}
	return false
}
