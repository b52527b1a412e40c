// Package runtime wires the parser, validator and evaluator together.
package runtime

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/dmitrycvs/C-DSL/pkg/ast"
	"github.com/dmitrycvs/C-DSL/pkg/diagnostics"
	"github.com/dmitrycvs/C-DSL/pkg/evaluator"
	"github.com/dmitrycvs/C-DSL/pkg/formatter"
	"github.com/dmitrycvs/C-DSL/pkg/geometry"
	"github.com/dmitrycvs/C-DSL/pkg/parser"
	"github.com/dmitrycvs/C-DSL/pkg/render"
	"github.com/dmitrycvs/C-DSL/pkg/stdlib"
	"github.com/dmitrycvs/C-DSL/pkg/validator"
)

// Result holds the outcome of a program execution.
type Result struct {
	Value    evaluator.Value
	Returned bool
	Shapes   map[string]geometry.Shape
	// Warnings holds validation and runtime warnings in the order found.
	Warnings []diagnostics.Diagnostic
}

// Runtime wires together all components for program execution.
type Runtime struct {
	stdlib   *stdlib.Registry
	renderer render.Renderer
	stdout   io.Writer
	logger   *slog.Logger
	budget   evaluator.Budget
	runID    string
	trace    func(event evaluator.TraceEvent)
}

// Option is a functional option for configuring the Runtime.
type Option func(*Runtime)

// WithRenderer sets the draw-command sink.
func WithRenderer(r render.Renderer) Option {
	return func(rt *Runtime) {
		rt.renderer = r
	}
}

// WithStdout sets the writer print statements go to.
func WithStdout(w io.Writer) Option {
	return func(rt *Runtime) {
		rt.stdout = w
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(rt *Runtime) {
		rt.logger = l
	}
}

// WithBudget sets the execution limits.
func WithBudget(b evaluator.Budget) Option {
	return func(rt *Runtime) {
		rt.budget = b
	}
}

// WithRunID sets the run ID for trace events.
func WithRunID(id string) Option {
	return func(rt *Runtime) {
		rt.runID = id
	}
}

// WithTrace sets the trace callback.
func WithTrace(fn func(event evaluator.TraceEvent)) Option {
	return func(rt *Runtime) {
		rt.trace = fn
	}
}

// New creates a new Runtime with the given options. By default the
// built-ins are registered, print output and drawing are discarded, and
// logging is off.
func New(opts ...Option) *Runtime {
	reg := stdlib.NewRegistry()
	stdlib.RegisterDefaults(reg)

	rt := &Runtime{
		stdlib: reg,
		stdout: io.Discard,
		logger: slog.New(slog.DiscardHandler),
		runID:  "cli",
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

// Run parses, validates, and executes a program. Parse and validation
// errors are returned as a *DiagnosticError before anything executes. On a
// runtime error the partial result is returned along with the error.
func (rt *Runtime) Run(ctx context.Context, source, filename string) (*Result, error) {
	program, warnings, err := rt.prepare(source, filename)
	if err != nil {
		return nil, err
	}

	res, err := evaluator.Execute(ctx, program, rt.buildExecOptions())
	return rt.result(res, warnings), err
}

// Check parses and validates a program without executing it.
func (rt *Runtime) Check(source, filename string) []diagnostics.Diagnostic {
	program, diags := parser.Parse(source, filename)
	if len(diags) > 0 {
		return diags
	}
	return validator.Validate(program)
}

// Format parses and formats a program.
func (rt *Runtime) Format(source, filename string) (string, error) {
	program, diags := parser.Parse(source, filename)
	if len(diags) > 0 {
		return "", &DiagnosticError{Diagnostics: diags}
	}
	return formatter.Format(program), nil
}

func (rt *Runtime) prepare(source, filename string) (*ast.Program, []diagnostics.Diagnostic, error) {
	program, diags := parser.Parse(source, filename)
	if len(diags) > 0 {
		return nil, nil, &DiagnosticError{Diagnostics: diags}
	}

	vDiags := validator.Validate(program)
	if len(diagnostics.Errors(vDiags)) > 0 {
		return nil, nil, &DiagnosticError{Diagnostics: vDiags}
	}
	for _, w := range vDiags {
		rt.logger.Debug(w.Message, "code", w.Code, "line", w.Span.StartLine)
	}
	return program, vDiags, nil
}

func (rt *Runtime) result(res *evaluator.ExecResult, warnings []diagnostics.Diagnostic) *Result {
	if res == nil {
		return nil
	}
	return &Result{
		Value:    res.Value,
		Returned: res.Returned,
		Shapes:   res.Shapes,
		Warnings: append(withoutReported(warnings, res.Warnings), res.Warnings...),
	}
}

// withoutReported drops static warnings that execution raised again at the
// same place, so a reached bad call is reported once.
func withoutReported(static, raised []diagnostics.Diagnostic) []diagnostics.Diagnostic {
	type key struct {
		code string
		span ast.Span
	}
	seen := make(map[key]bool, len(raised))
	for _, w := range raised {
		if w.Span != nil {
			seen[key{w.Code, *w.Span}] = true
		}
	}
	out := make([]diagnostics.Diagnostic, 0, len(static))
	for _, w := range static {
		if w.Span != nil && seen[key{w.Code, *w.Span}] {
			continue
		}
		out = append(out, w)
	}
	return out
}

// buildExecOptions constructs evaluator options from the runtime's configuration.
func (rt *Runtime) buildExecOptions() evaluator.ExecOptions {
	return evaluator.ExecOptions{
		Renderer: rt.renderer,
		Stdout:   rt.stdout,
		Logger:   rt.logger,
		Builtins: rt.stdlib.Builtins(),
		Budget:   rt.budget,
		Trace:    rt.trace,
		RunID:    rt.runID,
	}
}

// Session executes successive inputs against shared state, for the REPL.
type Session struct {
	rt   *Runtime
	eval *evaluator.Session
}

// NewSession starts an empty session using the runtime's options.
func (rt *Runtime) NewSession() *Session {
	return &Session{rt: rt, eval: evaluator.NewSession(rt.buildExecOptions())}
}

// Incomplete reports whether source stops in the middle of a construct and
// more input should be read before executing it.
func (s *Session) Incomplete(source string) bool {
	_, _, incomplete := parser.ParseInteractive(source, "<repl>")
	return incomplete
}

// Eval runs one input. Only validation errors block it: names defined by
// earlier inputs are unknown to the validator, so its warnings are dropped.
func (s *Session) Eval(ctx context.Context, source string) (*Result, error) {
	program, diags := parser.Parse(source, "<repl>")
	if len(diags) > 0 {
		return nil, &DiagnosticError{Diagnostics: diags}
	}
	if errs := diagnostics.Errors(validator.Validate(program)); len(errs) > 0 {
		return nil, &DiagnosticError{Diagnostics: errs}
	}
	res, err := s.eval.Exec(ctx, program)
	return s.rt.result(res, nil), err
}

// Vars returns the session variables as an ordered JSON object.
func (s *Session) Vars() ([]byte, error) {
	return s.eval.VarsToJSON()
}

// ShapeNames returns the defined shapes in sorted order.
func (s *Session) ShapeNames() []string {
	return s.eval.ShapeNames()
}

// Shape returns the current geometry of a named shape.
func (s *Session) Shape(name string) (geometry.Shape, bool) {
	return s.eval.Shape(name)
}

// FunctionNames returns the user-defined functions in sorted order.
func (s *Session) FunctionNames() []string {
	return s.eval.FunctionNames()
}

// DiagnosticError wraps diagnostics as an error.
type DiagnosticError struct {
	Diagnostics []diagnostics.Diagnostic
}

func (e *DiagnosticError) Error() string {
	msgs := make([]string, len(e.Diagnostics))
	for i, d := range e.Diagnostics {
		msgs[i] = fmt.Sprintf("%s: %s", d.Code, d.Message)
	}
	return strings.Join(msgs, "; ")
}
