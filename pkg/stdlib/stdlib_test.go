package stdlib_test

import (
	"errors"
	"math"
	"testing"

	"github.com/dmitrycvs/C-DSL/pkg/diagnostics"
	"github.com/dmitrycvs/C-DSL/pkg/evaluator"
	"github.com/dmitrycvs/C-DSL/pkg/stdlib"
)

func call(t *testing.T, name string, arg evaluator.Value) (evaluator.Value, error) {
	t.Helper()
	fn := stdlib.Defaults()[name]
	if fn == nil {
		t.Fatalf("built-in %q not registered", name)
	}
	return fn.Execute([]evaluator.Value{arg})
}

func TestDefaultsRegistered(t *testing.T) {
	r := stdlib.NewRegistry()
	stdlib.RegisterDefaults(r)
	got := r.Names()
	want := []string{"cos", "sin", "sqrt", "tan"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got %v, want %v", got, want)
		}
		if r.Get(want[i]).Arity != 1 {
			t.Errorf("%s arity = %d, want 1", want[i], r.Get(want[i]).Arity)
		}
	}
}

func TestTrigUsesDegrees(t *testing.T) {
	tests := []struct {
		fn   string
		deg  float64
		want float64
	}{
		{"sin", 0, 0},
		{"sin", 90, 1},
		{"sin", 180, 0},
		{"sin", 30, 0.5},
		{"cos", 0, 1},
		{"cos", 60, 0.5},
		{"cos", 90, 0},
		{"tan", 45, 1},
		{"tan", 0, 0},
	}
	for _, tt := range tests {
		got, err := call(t, tt.fn, evaluator.NewNumber(tt.deg))
		if err != nil {
			t.Fatalf("%s(%v): %v", tt.fn, tt.deg, err)
		}
		n := got.(evaluator.Number).Value
		if math.Abs(n-tt.want) > 1e-9 {
			t.Errorf("%s(%v) = %v, want %v", tt.fn, tt.deg, n, tt.want)
		}
	}
}

func TestSqrt(t *testing.T) {
	got, err := call(t, "sqrt", evaluator.NewNumber(16))
	if err != nil {
		t.Fatal(err)
	}
	if got.(evaluator.Number).Value != 4 {
		t.Errorf("sqrt(16) = %v", got)
	}

	got, err = call(t, "sqrt", evaluator.NewText(" 9 "))
	if err != nil {
		t.Fatal(err)
	}
	if got.(evaluator.Number).Value != 3 {
		t.Errorf("sqrt(\" 9 \") = %v", got)
	}
}

func TestArgumentErrors(t *testing.T) {
	tests := []struct {
		fn  string
		arg evaluator.Value
	}{
		{"sqrt", evaluator.NewNumber(-1)},
		{"sin", evaluator.NewText("abc")},
		{"cos", evaluator.NewText("")},
	}
	for _, tt := range tests {
		_, err := call(t, tt.fn, tt.arg)
		var rerr *evaluator.RuntimeError
		if !errors.As(err, &rerr) {
			t.Fatalf("%s(%v): expected *RuntimeError, got %v", tt.fn, tt.arg, err)
		}
		if rerr.Code != diagnostics.EArith {
			t.Errorf("%s(%v): code %s, want %s", tt.fn, tt.arg, rerr.Code, diagnostics.EArith)
		}
	}
}
