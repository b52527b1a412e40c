package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/dmitrycvs/C-DSL/pkg/diagnostics"
	"github.com/dmitrycvs/C-DSL/pkg/evaluator"
	"github.com/dmitrycvs/C-DSL/pkg/render"
	"github.com/dmitrycvs/C-DSL/pkg/runtime"
)

// runOutput is the document written by `run --format json`.
type runOutput struct {
	Value    json.RawMessage          `json:"value"`
	Returned bool                     `json:"returned"`
	Stdout   string                   `json:"stdout"`
	Draws    []render.Command         `json:"draws"`
	Warnings []diagnostics.Diagnostic `json:"warnings,omitempty"`
	Error    *diagnostics.Diagnostic  `json:"error,omitempty"`
}

// orderedWriter flushes the renderer before each print so that text draw
// lines and print output sharing a stream stay in program order.
type orderedWriter struct {
	w io.Writer
	r render.Renderer
}

func (o orderedWriter) Write(p []byte) (int, error) {
	if err := render.Flush(o.r); err != nil {
		return 0, err
	}
	return o.w.Write(p)
}

func cmdRun(args []string) int {
	f, err := parseFlags(args)
	if err != nil || f.file == "" {
		usage(err, "usage: shapes run <file> [--format text|json|svg] [--out <path>] [--trace <file.jsonl>] [--pretty]")
		return exitUsage
	}
	e, code := setup(f)
	if code != exitOK {
		return code
	}

	source, filename, code := readSource(f.file, e.pretty)
	if code != exitOK {
		return code
	}

	outPath := e.cfg.Output.Path
	if f.out != "" {
		outPath = f.out
	}
	toStdout := outPath == "" || outPath == "-"
	var drawW io.Writer = os.Stdout
	if !toStdout {
		file, err := os.Create(outPath)
		if err != nil {
			return ioFailure(fmt.Sprintf("cannot create output file: %s", err), e.pretty)
		}
		defer file.Close()
		drawW = file
	}

	var (
		renderer render.Renderer
		rec      *render.Recorder
		stdout   io.Writer = os.Stdout
		captured bytes.Buffer
	)
	switch e.format {
	case "text":
		renderer = render.NewText(drawW)
		if toStdout {
			stdout = orderedWriter{w: os.Stdout, r: renderer}
		}
	case "json":
		rec = render.NewRecorder()
		renderer = rec
		if toStdout {
			stdout = &captured
		}
	case "svg":
		renderer = render.NewSVG(drawW, e.cfg.RenderCanvas())
		if toStdout {
			stdout = os.Stderr
		}
	}

	opts := []runtime.Option{
		runtime.WithRenderer(renderer),
		runtime.WithStdout(stdout),
		runtime.WithLogger(e.logger),
		runtime.WithBudget(e.cfg.ExecBudget()),
		runtime.WithRunID(fmt.Sprintf("run-%d", time.Now().UnixNano())),
	}
	if f.tracePath != "" {
		traceFile, err := os.Create(f.tracePath)
		if err != nil {
			return ioFailure(fmt.Sprintf("cannot create trace file: %s", err), e.pretty)
		}
		defer traceFile.Close()
		enc := json.NewEncoder(traceFile)
		opts = append(opts, runtime.WithTrace(func(ev evaluator.TraceEvent) {
			if err := enc.Encode(ev); err != nil {
				e.logger.Debug("trace write failed", "err", err)
			}
		}))
	}
	rt := runtime.New(opts...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	result, execErr := rt.Run(ctx, source, filename)

	if e.format == "json" {
		return writeJSONOutput(drawW, result, rec, captured.String(), execErr, e.pretty)
	}

	if flushErr := render.Flush(renderer); flushErr != nil {
		return ioFailure(fmt.Sprintf("cannot write output: %s", flushErr), e.pretty)
	}
	if result != nil && len(result.Warnings) > 0 {
		printDiags(os.Stderr, result.Warnings, e.pretty)
	}
	if execErr != nil {
		return reportError(execErr, e.pretty)
	}

	if result.Returned && e.format == "text" {
		fmt.Fprintln(stdout, evaluator.ValueToJSONString(result.Value))
	}
	return exitOK
}

func writeJSONOutput(w io.Writer, result *runtime.Result, rec *render.Recorder, captured string, execErr error, pretty bool) int {
	doc := runOutput{Value: json.RawMessage("null"), Stdout: captured, Draws: rec.Commands}
	if doc.Draws == nil {
		doc.Draws = []render.Command{}
	}
	if result != nil {
		raw, err := evaluator.ValueToJSON(result.Value)
		if err != nil {
			return ioFailure(fmt.Sprintf("cannot encode result: %s", err), pretty)
		}
		doc.Value = raw
		doc.Returned = result.Returned
		doc.Warnings = result.Warnings
	}

	code := exitOK
	if execErr != nil {
		code = reportError(execErr, pretty)
		if d, ok := firstDiagnostic(execErr); ok {
			doc.Error = &d
		}
	}

	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(doc); err != nil {
		return ioFailure(fmt.Sprintf("cannot write output: %s", err), pretty)
	}
	return code
}

func firstDiagnostic(err error) (diagnostics.Diagnostic, bool) {
	switch e := err.(type) {
	case *runtime.DiagnosticError:
		if errs := diagnostics.Errors(e.Diagnostics); len(errs) > 0 {
			return errs[0], true
		}
	case *evaluator.RuntimeError:
		return e.Diagnostic(), true
	}
	return diagnostics.Diagnostic{}, false
}

func ioFailure(msg string, pretty bool) int {
	diag := diagnostics.MakeDiag(diagnostics.EIO, msg, nil, "")
	printDiags(os.Stderr, []diagnostics.Diagnostic{diag}, pretty)
	return exitIO
}
