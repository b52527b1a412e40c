package evaluator

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/dmitrycvs/C-DSL/pkg/ast"
	"github.com/dmitrycvs/C-DSL/pkg/diagnostics"
	"github.com/dmitrycvs/C-DSL/pkg/geometry"
	"github.com/dmitrycvs/C-DSL/pkg/render"
)

// BuiltinFn is a function resolved before user-defined functions.
type BuiltinFn struct {
	Name    string
	Arity   int
	Execute func(args []Value) (Value, error)
}

// ExecOptions configures program execution.
type ExecOptions struct {
	Renderer render.Renderer // nil discards draw commands
	Stdout   io.Writer       // print output; nil discards
	Logger   *slog.Logger    // nil discards
	Builtins map[string]*BuiltinFn
	Budget   Budget
	Trace    func(event TraceEvent)
	RunID    string
}

// ExecResult holds the result of a program execution.
type ExecResult struct {
	// Value is the value of a top-level return, or Null.
	Value    Value
	Returned bool
	// Shapes is the shape table after the run.
	Shapes   map[string]geometry.Shape
	Warnings []diagnostics.Diagnostic
}

// RuntimeError represents a fatal error during execution.
type RuntimeError struct {
	Code    string
	Message string
	Span    *ast.Span
}

func (e *RuntimeError) Error() string {
	return e.Message
}

// Diagnostic converts the error for display.
func (e *RuntimeError) Diagnostic() diagnostics.Diagnostic {
	return diagnostics.MakeDiag(e.Code, e.Message, e.Span, "")
}

// Session keeps variables, functions and shapes across several programs,
// as a REPL needs. It is not safe for concurrent use.
type Session struct {
	opts   ExecOptions
	env    *Env
	fns    map[string]*ast.FnDecl
	shapes map[string]geometry.Shape
}

// NewSession creates an empty session.
func NewSession(opts ExecOptions) *Session {
	if opts.Stdout == nil {
		opts.Stdout = io.Discard
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return &Session{
		opts:   opts,
		env:    NewEnv(),
		fns:    make(map[string]*ast.FnDecl),
		shapes: make(map[string]geometry.Shape),
	}
}

// Execute runs a program in a fresh session and returns the result.
func Execute(ctx context.Context, program *ast.Program, opts ExecOptions) (*ExecResult, error) {
	return NewSession(opts).Exec(ctx, program)
}

// Var returns the top-level binding of name.
func (s *Session) Var(name string) (Value, bool) {
	return s.env.Get(name)
}

// VarNames returns the top-level variable names in sorted order.
func (s *Session) VarNames() []string {
	return s.env.Names()
}

// Shape returns the current shape stored under name.
func (s *Session) Shape(name string) (geometry.Shape, bool) {
	sh, ok := s.shapes[name]
	if !ok {
		return nil, false
	}
	return geometry.Clone(sh), true
}

// ShapeNames returns the defined shape names in sorted order.
func (s *Session) ShapeNames() []string {
	names := make([]string, 0, len(s.shapes))
	for name := range s.shapes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FunctionNames returns the user-defined function names in sorted order.
func (s *Session) FunctionNames() []string {
	names := make([]string, 0, len(s.fns))
	for name := range s.fns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// control is the outcome of executing a statement: either normal
// completion or a return carrying a value up to the nearest call boundary.
type control struct {
	returned bool
	value    Value
}

var normal = control{}

// interp is the state of one Exec call.
type interp struct {
	ctx      context.Context
	opts     ExecOptions
	s        *Session
	env      *Env
	tracker  BudgetTracker
	log      *slog.Logger
	warnings []diagnostics.Diagnostic
}

// Exec runs program against the session state. Fatal errors stop the
// program; state changes made before the error are kept.
func (s *Session) Exec(ctx context.Context, program *ast.Program) (*ExecResult, error) {
	ev := &interp{
		ctx:  ctx,
		opts: s.opts,
		s:    s,
		env:  s.env,
		log:  s.opts.Logger,
	}

	if ms := s.opts.Budget.TimeMs; ms > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(ms)*time.Millisecond)
		defer cancel()
		ev.ctx = ctx
	}

	start := time.Now()
	span := program.Span
	ev.emit(TraceRunStart, &span)

	ctl, err := ev.execBlock(program.Statements)

	ev.emitWithData(TraceRunEnd, &span, map[string]any{
		"elapsedMs":  time.Since(start).Milliseconds(),
		"iterations": ev.tracker.Iterations,
	})

	result := &ExecResult{
		Value:    NewNull(),
		Returned: ctl.returned,
		Shapes:   cloneShapes(s.shapes),
		Warnings: ev.warnings,
	}
	if err != nil {
		return result, err
	}
	if ctl.returned {
		result.Value = ctl.value
	}
	return result, nil
}

func cloneShapes(shapes map[string]geometry.Shape) map[string]geometry.Shape {
	out := make(map[string]geometry.Shape, len(shapes))
	for name, sh := range shapes {
		out[name] = geometry.Clone(sh)
	}
	return out
}

func (ev *interp) warn(code, msg string, span ast.Span, attrs ...any) {
	ev.warnings = append(ev.warnings, diagnostics.MakeWarning(code, msg, &span))
	ev.log.Debug(msg, append([]any{"code", code, "line", span.StartLine}, attrs...)...)
	ev.emitWithData(TraceWarning, &span, map[string]any{"code": code, "message": msg})
}

// execBlock runs statements in order and stops at the first return.
func (ev *interp) execBlock(stmts []ast.Stmt) (control, error) {
	for _, stmt := range stmts {
		if err := ev.checkContext(); err != nil {
			return normal, err
		}

		span := stmt.NodeSpan()
		ev.emit(TraceStmtStart, &span)
		ctl, err := ev.execStmt(stmt)
		ev.emit(TraceStmtEnd, &span)
		if err != nil {
			return normal, err
		}
		if ctl.returned {
			return ctl, nil
		}
	}
	return normal, nil
}

func (ev *interp) execStmt(stmt ast.Stmt) (control, error) {
	switch s := stmt.(type) {
	case *ast.Assignment:
		val, err := ev.evalExpr(s.Value)
		if err != nil {
			return normal, err
		}
		ev.env.Set(s.Name, val)
		return normal, nil

	case *ast.Conditional:
		return ev.execConditional(s)

	case *ast.ForLoop:
		return ev.execFor(s)

	case *ast.WhileLoop:
		return ev.execWhile(s)

	case *ast.FnDecl:
		ev.s.fns[s.Name] = s
		ev.log.Debug("function defined", "fn", s.Name, "params", len(s.Params))
		return normal, nil

	case *ast.CallStmt:
		_, err := ev.evalCall(s.Call)
		return normal, err

	case *ast.ReturnStmt:
		if s.Value == nil {
			return control{returned: true, value: NewNull()}, nil
		}
		val, err := ev.evalExpr(s.Value)
		if err != nil {
			return normal, err
		}
		return control{returned: true, value: val}, nil

	case *ast.PrintStmt:
		text := ""
		if s.Text != nil {
			text = *s.Text
		} else {
			val, err := ev.evalExpr(s.Value)
			if err != nil {
				return normal, err
			}
			text = FormatValue(val)
		}
		if _, err := fmt.Fprintln(ev.opts.Stdout, text); err != nil {
			span := s.Span
			return normal, &RuntimeError{Code: diagnostics.EIO, Message: fmt.Sprintf("print: %v", err), Span: &span}
		}
		return normal, nil

	case *ast.ShapeStmt:
		return normal, ev.execShape(s)

	case *ast.TransformStmt:
		return normal, ev.execTransform(s)

	case *ast.FeatureStmt:
		return normal, ev.execFeature(s)

	default:
		span := stmt.NodeSpan()
		return normal, &RuntimeError{
			Code:    diagnostics.EAst,
			Message: fmt.Sprintf("unsupported statement type: %T", stmt),
			Span:    &span,
		}
	}
}

func (ev *interp) execConditional(s *ast.Conditional) (control, error) {
	ok, err := ev.evalCondition(s.Cond)
	if err != nil {
		return normal, err
	}
	if ok {
		return ev.execBlock(s.Then)
	}
	for _, branch := range s.ElseIfs {
		ok, err := ev.evalCondition(branch.Cond)
		if err != nil {
			return normal, err
		}
		if ok {
			return ev.execBlock(branch.Body)
		}
	}
	if s.HasElse {
		return ev.execBlock(s.Else)
	}
	return normal, nil
}

func (ev *interp) execFor(s *ast.ForLoop) (control, error) {
	var from, to float64
	if s.IsRange() {
		if s.RangeStart != nil {
			v, err := ev.evalNumber(s.RangeStart, "range start")
			if err != nil {
				return normal, err
			}
			from = v
		}
		v, err := ev.evalNumber(s.RangeEnd, "range end")
		if err != nil {
			return normal, err
		}
		to = v
	} else {
		v, err := ev.evalNumber(s.Count, "loop count")
		if err != nil {
			return normal, err
		}
		to = v
	}

	span := s.Span
	ev.emitWithData(TraceForStart, &span, map[string]any{"var": s.Var, "from": from, "to": to})
	defer ev.emit(TraceForEnd, &span)

	// The body may call functions, which swap ev.env and put it back.
	env := ev.env
	saved := env.Save(s.Var)
	defer env.Restore(saved)

	n := iterationCount(from, to)
	for k := int64(0); k < n; k++ {
		if err := ev.countIteration(); err != nil {
			return normal, err
		}
		env.Set(s.Var, NewNumber(from+float64(k)))
		ctl, err := ev.execBlock(s.Body)
		if err != nil || ctl.returned {
			return ctl, err
		}
	}
	return normal, nil
}

// iterationCount is the number of steps from from (inclusive) to to
// (exclusive). Counting in float64 stalls once from+1 == from.
func iterationCount(from, to float64) int64 {
	n := math.Ceil(to - from)
	switch {
	case !(n > 0):
		return 0
	case n >= math.MaxInt64:
		return math.MaxInt64
	}
	return int64(n)
}

func (ev *interp) execWhile(s *ast.WhileLoop) (control, error) {
	span := s.Span
	ev.emit(TraceWhileStart, &span)
	defer ev.emit(TraceWhileEnd, &span)

	for {
		ok, err := ev.evalCondition(s.Cond)
		if err != nil {
			return normal, err
		}
		if !ok {
			return normal, nil
		}
		if err := ev.countIteration(); err != nil {
			return normal, err
		}
		ctl, err := ev.execBlock(s.Body)
		if err != nil || ctl.returned {
			return ctl, err
		}
	}
}
