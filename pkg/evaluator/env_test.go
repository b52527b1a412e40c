package evaluator_test

import (
	"context"
	"testing"

	"github.com/dmitrycvs/C-DSL/pkg/evaluator"
)

func TestEnvLookupDefaultsToZero(t *testing.T) {
	env := evaluator.NewEnv()
	expectNumber(t, env.Lookup("missing"), 0)

	env.Set("x", evaluator.NewText("v"))
	expectText(t, env.Lookup("x"), "v")
	if _, ok := env.Get("missing"); ok {
		t.Error("Get should not report unbound names")
	}
}

func TestEnvSaveRestore(t *testing.T) {
	env := evaluator.NewEnv()

	saved := env.Save("i")
	env.Set("i", evaluator.NewNumber(3))
	env.Restore(saved)
	if _, ok := env.Get("i"); ok {
		t.Error("restoring an unbound name should remove it")
	}

	env.Set("i", evaluator.NewNumber(7))
	saved = env.Save("i")
	env.Set("i", evaluator.NewNumber(0))
	env.Restore(saved)
	v, ok := env.Get("i")
	if !ok {
		t.Fatal("restoring a bound name should keep it")
	}
	expectNumber(t, v, 7)
}

func TestEnvNamesSorted(t *testing.T) {
	env := evaluator.NewEnv()
	for _, n := range []string{"b", "c", "a"} {
		env.Set(n, evaluator.NewNull())
	}
	env.Delete("c")
	got := env.Names()
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("Names() = %v", got)
	}
}

func TestVarsToJSON(t *testing.T) {
	s := evaluator.NewSession(evaluator.ExecOptions{})
	if _, err := s.Exec(context.Background(), parse(t, "b = \"two\"\na = 1.5\nfor i in 2 { }")); err != nil {
		t.Fatal(err)
	}
	got, err := s.VarsToJSON()
	if err != nil {
		t.Fatal(err)
	}
	if want := `{"a":1.5,"b":"two"}`; string(got) != want {
		t.Errorf("VarsToJSON() = %s, want %s", got, want)
	}
}
