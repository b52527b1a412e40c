package stdlib

import (
	"fmt"
	"math"

	"github.com/dmitrycvs/C-DSL/pkg/diagnostics"
	"github.com/dmitrycvs/C-DSL/pkg/evaluator"
)

func numberArg(name string, args []evaluator.Value) (float64, error) {
	n, ok := evaluator.ToNumber(args[0])
	if !ok {
		return 0, &evaluator.RuntimeError{
			Code:    diagnostics.EArith,
			Message: fmt.Sprintf("%s: argument must be a number, got %s %q", name, evaluator.TypeName(args[0]), evaluator.FormatValue(args[0])),
		}
	}
	return n, nil
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// snap rounds results within a few ulps of an integer, so sin(180) is 0
// rather than 1.2e-16.
func snap(v float64) float64 {
	if r := math.Round(v); math.Abs(v-r) < 1e-12 {
		return r
	}
	return v
}

// sin(deg) → number
func stdlibSin(args []evaluator.Value) (evaluator.Value, error) {
	deg, err := numberArg("sin", args)
	if err != nil {
		return nil, err
	}
	return evaluator.NewNumber(snap(math.Sin(radians(deg)))), nil
}

// cos(deg) → number
func stdlibCos(args []evaluator.Value) (evaluator.Value, error) {
	deg, err := numberArg("cos", args)
	if err != nil {
		return nil, err
	}
	return evaluator.NewNumber(snap(math.Cos(radians(deg)))), nil
}

// tan(deg) → number
func stdlibTan(args []evaluator.Value) (evaluator.Value, error) {
	deg, err := numberArg("tan", args)
	if err != nil {
		return nil, err
	}
	return evaluator.NewNumber(snap(math.Tan(radians(deg)))), nil
}

// sqrt(n) → number
func stdlibSqrt(args []evaluator.Value) (evaluator.Value, error) {
	n, err := numberArg("sqrt", args)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, &evaluator.RuntimeError{
			Code:    diagnostics.EArith,
			Message: fmt.Sprintf("sqrt: negative argument %s", evaluator.FormatValue(args[0])),
		}
	}
	return evaluator.NewNumber(math.Sqrt(n)), nil
}
