package evaluator

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrycvs/C-DSL/pkg/diagnostics"
)

// DefaultMaxCallDepth bounds recursion when Budget.MaxCallDepth is zero.
const DefaultMaxCallDepth = 1000

// Budget holds the resource limits for a program execution. Zero means
// unlimited, except for MaxCallDepth which falls back to DefaultMaxCallDepth.
type Budget struct {
	TimeMs        int64
	MaxIterations int64
	MaxCallDepth  int
}

// BudgetTracker tracks resource consumption during execution.
type BudgetTracker struct {
	Iterations int64
	CallDepth  int
}

func (ev *interp) checkContext() error {
	err := ev.ctx.Err()
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) && ev.opts.Budget.TimeMs > 0 {
		ev.emitWithData(TraceBudgetExceeded, nil, map[string]any{"budget": "timeMs"})
		return &RuntimeError{
			Code:    diagnostics.EBudget,
			Message: fmt.Sprintf("time budget exceeded (%dms)", ev.opts.Budget.TimeMs),
		}
	}
	return &RuntimeError{
		Code:    diagnostics.ECancelled,
		Message: fmt.Sprintf("execution cancelled: %v", err),
	}
}

func (ev *interp) countIteration() error {
	ev.tracker.Iterations++
	if limit := ev.opts.Budget.MaxIterations; limit > 0 && ev.tracker.Iterations > limit {
		ev.emitWithData(TraceBudgetExceeded, nil, map[string]any{"budget": "maxIterations"})
		return &RuntimeError{
			Code:    diagnostics.EBudget,
			Message: fmt.Sprintf("iteration budget exceeded (max %d)", limit),
		}
	}
	return ev.checkContext()
}

func (ev *interp) maxCallDepth() int {
	if ev.opts.Budget.MaxCallDepth > 0 {
		return ev.opts.Budget.MaxCallDepth
	}
	return DefaultMaxCallDepth
}
