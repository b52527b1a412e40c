package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/dmitrycvs/C-DSL/internal/testutil"
	"github.com/dmitrycvs/C-DSL/pkg/diagnostics"
	"github.com/dmitrycvs/C-DSL/pkg/evaluator"
	"github.com/dmitrycvs/C-DSL/pkg/render"
	"github.com/dmitrycvs/C-DSL/pkg/runtime"
)

func TestConformance(t *testing.T) {
	dirs, err := testutil.ListScenarios(testutil.ScenariosDir)
	if err != nil {
		t.Fatalf("listing scenarios: %v", err)
	}
	if len(dirs) == 0 {
		t.Fatal("no scenarios found")
	}

	for _, dir := range dirs {
		t.Run(filepath.Base(dir), func(t *testing.T) {
			scenario, err := testutil.LoadScenario(dir)
			if err != nil {
				t.Fatalf("loading scenario: %v", err)
			}
			source, filename, err := testutil.ReadProgramFile(dir, scenario.Cmd)
			if err != nil {
				t.Fatalf("reading program: %v", err)
			}

			switch scenario.Cmd[0] {
			case "run":
				runRunScenario(t, scenario, source, filename)
			case "check":
				runCheckScenario(t, scenario, source, filename)
			default:
				t.Fatalf("unsupported command %q", scenario.Cmd[0])
			}
		})
	}
}

func runCheckScenario(t *testing.T, scenario *testutil.Scenario, source, filename string) {
	t.Helper()
	diags := runtime.New().Check(source, filename)

	exitCode := 0
	if len(diagnostics.Errors(diags)) > 0 {
		exitCode = 2
	}
	if scenario.Expect.ExitCode != exitCode {
		t.Errorf("exit code: got %d, want %d (%s)", exitCode, scenario.Expect.ExitCode,
			diagnostics.FormatDiagnostics(diags, false))
	}
	if want := scenario.Expect.Error; want != "" && !hasCode(diags, want) {
		t.Errorf("expected diagnostic %s, got:\n%s", want, diagnostics.FormatDiagnostics(diags, false))
	}
}

func runRunScenario(t *testing.T, scenario *testutil.Scenario, source, filename string) {
	t.Helper()
	var stdout bytes.Buffer
	rec := render.NewRecorder()
	rt := runtime.New(
		runtime.WithStdout(&stdout),
		runtime.WithRenderer(rec),
		runtime.WithBudget(buildBudget(scenario)),
	)

	res, err := rt.Run(context.Background(), source, filename)

	exitCode, code := classifyError(t, err)
	if scenario.Expect.ExitCode != exitCode {
		t.Errorf("exit code: got %d, want %d (error: %v)", exitCode, scenario.Expect.ExitCode, err)
	}
	if want := scenario.Expect.Error; want != "" && want != code {
		t.Errorf("error code: got %q, want %q", code, want)
	}

	checkStdoutExpectations(t, stdout.String(), scenario)

	if exitCode != 2 {
		checkDraws(t, rec.Commands, scenario.Expect.Draws)
	}
	if res == nil {
		return
	}
	if scenario.Expect.Warnings != nil {
		var got []string
		for _, w := range res.Warnings {
			got = append(got, w.Code)
		}
		if !reflect.DeepEqual(got, scenario.Expect.Warnings) {
			t.Errorf("warnings: got %v, want %v", got, scenario.Expect.Warnings)
		}
	}
	if scenario.Expect.Value != nil {
		want, err := json.Marshal(scenario.Expect.Value)
		if err != nil {
			t.Fatalf("encoding expected value: %v", err)
		}
		if got := evaluator.ValueToJSONString(res.Value); got != string(want) {
			t.Errorf("value: got %s, want %s", got, want)
		}
	}
}

// classifyError maps a Run error to the CLI exit code and diagnostic code.
func classifyError(t *testing.T, err error) (int, string) {
	t.Helper()
	if err == nil {
		return 0, ""
	}
	var derr *runtime.DiagnosticError
	if errors.As(err, &derr) {
		return 2, derr.Diagnostics[0].Code
	}
	var rerr *evaluator.RuntimeError
	if errors.As(err, &rerr) {
		return exitCodeForError(rerr.Code), rerr.Code
	}
	t.Fatalf("unexpected error type %T: %v", err, err)
	return 0, ""
}

func exitCodeForError(code string) int {
	switch code {
	case diagnostics.ELex, diagnostics.EParse, diagnostics.EDupParam, diagnostics.EPolygonVertices:
		return 2
	case diagnostics.EIO, diagnostics.EConfig:
		return 4
	default:
		return 3
	}
}

func checkStdoutExpectations(t *testing.T, stdout string, scenario *testutil.Scenario) {
	t.Helper()
	if want := scenario.Expect.Stdout; want != nil && stdout != *want {
		t.Errorf("stdout: got %q, want %q", stdout, *want)
	}
	if want := scenario.Expect.StdoutContains; want != "" && !strings.Contains(stdout, want) {
		t.Errorf("stdout %q does not contain %q", stdout, want)
	}
}

func checkDraws(t *testing.T, got, want []render.Command) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("draw calls: got %d, want %d\ngot:  %+v\nwant: %+v", len(got), len(want), got, want)
	}
	for i := range want {
		if !reflect.DeepEqual(got[i], want[i]) {
			t.Errorf("draw %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func buildBudget(scenario *testutil.Scenario) evaluator.Budget {
	if scenario.Budget == nil {
		return evaluator.Budget{}
	}
	return evaluator.Budget{
		TimeMs:        int64(scenario.Budget.TimeMs),
		MaxIterations: int64(scenario.Budget.MaxIterations),
		MaxCallDepth:  scenario.Budget.MaxCallDepth,
	}
}

func hasCode(diags []diagnostics.Diagnostic, code string) bool {
	for _, d := range diags {
		if d.Code == code {
			return true
		}
	}
	return false
}

func TestScenariosExist(t *testing.T) {
	root := testutil.ScenariosDir
	info, err := os.Stat(root)
	if err != nil {
		t.Fatalf("scenarios directory not found: %v", err)
	}
	if !info.IsDir() {
		t.Fatalf("scenarios path is not a directory: %s", root)
	}
}
