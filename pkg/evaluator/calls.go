package evaluator

import (
	"errors"
	"fmt"

	"github.com/dmitrycvs/C-DSL/pkg/ast"
	"github.com/dmitrycvs/C-DSL/pkg/diagnostics"
)

// evalCall dispatches a call. Built-ins win over user functions of the same
// name; an unknown name is reported and yields Null.
func (ev *interp) evalCall(call *ast.CallExpr) (Value, error) {
	if fn, ok := ev.opts.Builtins[call.Name]; ok {
		return ev.callBuiltin(fn, call)
	}

	decl, ok := ev.s.fns[call.Name]
	if !ok {
		ev.warn(diagnostics.WUnknownFn, fmt.Sprintf("undefined function '%s'", call.Name), call.Span, "fn", call.Name)
		return NewNull(), nil
	}
	return ev.callUser(decl, call)
}

func (ev *interp) evalArgs(call *ast.CallExpr) ([]Value, error) {
	args := make([]Value, len(call.Args))
	for i, arg := range call.Args {
		val, err := ev.evalExpr(arg)
		if err != nil {
			return nil, err
		}
		args[i] = val
	}
	return args, nil
}

func (ev *interp) callBuiltin(fn *BuiltinFn, call *ast.CallExpr) (Value, error) {
	if len(call.Args) != fn.Arity {
		return nil, &RuntimeError{
			Code:    diagnostics.EArgs,
			Message: fmt.Sprintf("%s expects %d argument(s), got %d", fn.Name, fn.Arity, len(call.Args)),
			Span:    &call.Span,
		}
	}
	args, err := ev.evalArgs(call)
	if err != nil {
		return nil, err
	}
	result, err := fn.Execute(args)
	if err != nil {
		var rerr *RuntimeError
		if errors.As(err, &rerr) {
			if rerr.Span == nil {
				rerr.Span = &call.Span
			}
			return nil, rerr
		}
		return nil, &RuntimeError{
			Code:    diagnostics.EArith,
			Message: fmt.Sprintf("%s: %v", fn.Name, err),
			Span:    &call.Span,
		}
	}
	return result, nil
}

// callUser runs a user function with a scope holding only its parameters.
// Arguments are evaluated in the caller's scope; missing ones take the
// parameter default, if any, and stay unbound otherwise.
func (ev *interp) callUser(decl *ast.FnDecl, call *ast.CallExpr) (Value, error) {
	if ev.tracker.CallDepth >= ev.maxCallDepth() {
		return nil, &RuntimeError{
			Code:    diagnostics.ECallDepth,
			Message: fmt.Sprintf("call depth limit exceeded (max %d) calling '%s'", ev.maxCallDepth(), decl.Name),
			Span:    &call.Span,
		}
	}

	args, err := ev.evalArgs(call)
	if err != nil {
		return nil, err
	}
	if extra := len(args) - len(decl.Params); extra > 0 {
		ev.log.Debug("extra arguments ignored", "fn", decl.Name, "extra", extra, "line", call.Span.StartLine)
	}

	scope := NewEnv()
	for i, p := range decl.Params {
		switch {
		case i < len(args):
			scope.Set(p.Name, args[i])
		case p.Default != nil:
			val, err := ev.evalExpr(p.Default)
			if err != nil {
				return nil, err
			}
			scope.Set(p.Name, val)
		}
	}

	caller := ev.env
	ev.env = scope
	ev.tracker.CallDepth++
	defer func() {
		ev.env = caller
		ev.tracker.CallDepth--
	}()

	ev.emitWithData(TraceFnCallStart, &call.Span, map[string]any{"fn": decl.Name, "depth": ev.tracker.CallDepth})
	ctl, err := ev.execBlock(decl.Body)
	ev.emitWithData(TraceFnCallEnd, &call.Span, map[string]any{"fn": decl.Name, "ok": err == nil})
	if err != nil {
		return nil, err
	}
	if ctl.returned {
		return ctl.value, nil
	}
	return NewNull(), nil
}
