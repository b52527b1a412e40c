package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dmitrycvs/C-DSL/pkg/diagnostics"
	"github.com/dmitrycvs/C-DSL/pkg/evaluator"
	"github.com/dmitrycvs/C-DSL/pkg/geometry"
	"github.com/dmitrycvs/C-DSL/pkg/render"
	"github.com/dmitrycvs/C-DSL/pkg/runtime"
)

func TestParseFlags(t *testing.T) {
	f, err := parseFlags([]string{"prog.shapes", "--format", "svg", "--out=pic.svg", "--no-pretty", "--log-level", "debug"})
	if err != nil {
		t.Fatal(err)
	}
	if f.file != "prog.shapes" || f.format != "svg" || f.out != "pic.svg" || f.logLevel != "debug" {
		t.Errorf("flags = %+v", f)
	}
	if f.pretty == nil || *f.pretty {
		t.Errorf("pretty = %v, want false", f.pretty)
	}

	f, err = parseFlags([]string{"-", "--write"})
	if err != nil || f.file != "-" || !f.write {
		t.Errorf("flags = %+v, err = %v", f, err)
	}
}

func TestParseFlagsErrors(t *testing.T) {
	tests := [][]string{
		{"--bogus"},
		{"--format"},
		{"a.shapes", "b.shapes"},
		{"--pretty=yes"},
	}
	for _, args := range tests {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			if _, err := parseFlags(args); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestExitCodeForDiag(t *testing.T) {
	tests := map[string]int{
		diagnostics.EParse:     exitInvalid,
		diagnostics.EDupParam:  exitInvalid,
		diagnostics.EArith:     exitRuntime,
		diagnostics.EBudget:    exitRuntime,
		diagnostics.ECallDepth: exitRuntime,
		diagnostics.ECancelled: exitRuntime,
		diagnostics.EIO:        exitIO,
		diagnostics.EConfig:    exitIO,
	}
	for code, want := range tests {
		if got := exitCodeForDiag(code); got != want {
			t.Errorf("exitCodeForDiag(%s) = %d, want %d", code, got, want)
		}
	}
}

func TestComputeTraceSummary(t *testing.T) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	rt := runtime.New(runtime.WithRunID("r1"), runtime.WithTrace(func(ev evaluator.TraceEvent) {
		if err := enc.Encode(ev); err != nil {
			t.Fatal(err)
		}
	}))
	src := "function f(r) { circle C center (0, 0) radius r draw }\nf(1)\nf(2)\nmedian C from (0, 0)"
	if _, err := rt.Run(context.Background(), src, "t.shapes"); err != nil {
		t.Fatal(err)
	}
	buf.WriteString("not json\n\n")

	s, err := computeTraceSummary(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if s.RunID != "r1" {
		t.Errorf("runId = %q", s.RunID)
	}
	if s.FnCalls != 2 || s.FnsByName["f"] != 2 {
		t.Errorf("calls = %d %v", s.FnCalls, s.FnsByName)
	}
	if s.Draws != 2 || s.DrawsByKind["circle"] != 2 {
		t.Errorf("draws = %d %v", s.Draws, s.DrawsByKind)
	}
	if s.Warnings != 1 {
		t.Errorf("warnings = %d, want 1", s.Warnings)
	}
	if s.StartTime == "" || s.EndTime == "" {
		t.Errorf("missing start or end: %+v", s)
	}

	var out bytes.Buffer
	printTraceSummaryText(&out, s)
	for _, want := range []string{"Run: r1\n", "Calls: 2\n", "  f: 2\n", "  circle: 2\n", "Warnings: 1\n"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("text summary missing %q:\n%s", want, out.String())
		}
	}
}

func TestOrderedWriterKeepsProgramOrder(t *testing.T) {
	var out bytes.Buffer
	text := render.NewText(&out)
	rt := runtime.New(runtime.WithRenderer(text), runtime.WithStdout(orderedWriter{w: &out, r: text}))
	src := "circle A center (0, 0) radius 1 draw\nprint \"between\"\ncircle B center (1, 1) radius 2 draw"
	if _, err := rt.Run(context.Background(), src, "t.shapes"); err != nil {
		t.Fatal(err)
	}
	if err := text.Flush(); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 || lines[1] != "between" || !strings.Contains(lines[0], " A ") || !strings.Contains(lines[2], " B ") {
		t.Errorf("output out of order:\n%s", out.String())
	}
}

func TestDescribeShape(t *testing.T) {
	got := describeShape("C", geometry.Circle{Center: geometry.Point{X: 70, Y: 40}, Radius: 15})
	if !strings.HasPrefix(got, "circle C") || strings.HasPrefix(got, "draw") {
		t.Errorf("got %q", got)
	}
}

func TestReplSaveReplaysDraws(t *testing.T) {
	text := render.NewText(io.Discard)
	st := &replState{drawn: render.NewRecorder(), canvas: render.DefaultCanvas}
	rt := runtime.New(runtime.WithRenderer(render.Multi(text, st.drawn)))
	st.session = rt.NewSession()
	for _, src := range []string{"circle C center (0, 0) radius 5 draw", "rectangle R at (0, 0) width 4 height 2\nrotate R by 90 draw"} {
		if _, err := st.session.Eval(context.Background(), src); err != nil {
			t.Fatal(err)
		}
	}

	var svg bytes.Buffer
	if err := writeSVG(&svg, st.drawn, st.canvas); err != nil {
		t.Fatal(err)
	}
	if got := strings.Count(svg.String(), "<circle"); got != 1 {
		t.Errorf("circles = %d:\n%s", got, svg.String())
	}
	if got := strings.Count(svg.String(), "<polygon"); got != 1 {
		t.Errorf("polygons = %d:\n%s", got, svg.String())
	}

	path := filepath.Join(t.TempDir(), "out.svg")
	var out bytes.Buffer
	if quit := replCommand(&out, st, ":save "+path); quit {
		t.Fatal(":save should not exit")
	}
	if !strings.Contains(out.String(), "saved 2 draws") {
		t.Errorf("got %q", out.String())
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(b, svg.Bytes()) {
		t.Errorf("saved file differs from rendered SVG")
	}

	out.Reset()
	replCommand(&out, st, ":save")
	if !strings.Contains(out.String(), "usage") {
		t.Errorf("got %q", out.String())
	}
}

func TestWriteJSONOutput(t *testing.T) {
	var stdout, out bytes.Buffer
	rec := render.NewRecorder()
	rt := runtime.New(runtime.WithRenderer(rec), runtime.WithStdout(&stdout))
	res, err := rt.Run(context.Background(), "print \"hi\"\ntriangle T (0, 0), (4, 0), (0, 3) draw\nreturn 5", "t.shapes")
	if err != nil {
		t.Fatal(err)
	}
	if code := writeJSONOutput(&out, res, rec, stdout.String(), nil, false); code != exitOK {
		t.Fatalf("exit code %d", code)
	}

	var doc struct {
		Value    float64          `json:"value"`
		Returned bool             `json:"returned"`
		Stdout   string           `json:"stdout"`
		Draws    []render.Command `json:"draws"`
	}
	if err := json.Unmarshal(out.Bytes(), &doc); err != nil {
		t.Fatalf("invalid JSON %s: %v", out.String(), err)
	}
	if doc.Value != 5 || !doc.Returned || doc.Stdout != "hi\n" {
		t.Errorf("doc = %+v", doc)
	}
	if len(doc.Draws) != 1 || doc.Draws[0].Kind != render.CmdTriangle || doc.Draws[0].Name != "T" {
		t.Errorf("draws = %+v", doc.Draws)
	}
}
