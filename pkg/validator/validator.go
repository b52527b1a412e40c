// Package validator implements static checks of shape DSL programs.
package validator

import (
	"fmt"

	"github.com/dmitrycvs/C-DSL/pkg/ast"
	"github.com/dmitrycvs/C-DSL/pkg/diagnostics"
)

var knownBuiltins = map[string]bool{
	"sin": true, "cos": true, "tan": true, "sqrt": true,
}

type validator struct {
	diags      []diagnostics.Diagnostic
	fnNames    map[string]bool
	shapeNames map[string]bool
}

// Validate checks a parsed program and returns its diagnostics in source
// order. Errors block execution; warnings do not.
func Validate(program *ast.Program) []diagnostics.Diagnostic {
	v := &validator{
		fnNames:    make(map[string]bool),
		shapeNames: make(map[string]bool),
	}

	// Functions and shapes are global, so a use may precede the definition.
	v.collect(program.Statements)
	v.validateStatements(program.Statements)

	return v.diags
}

func (v *validator) addDiag(code, msg string, span ast.Span) {
	v.diags = append(v.diags, diagnostics.MakeDiag(code, msg, &span, ""))
}

func (v *validator) addWarning(code, msg string, span ast.Span) {
	v.diags = append(v.diags, diagnostics.MakeWarning(code, msg, &span))
}

func (v *validator) collect(stmts []ast.Stmt) {
	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *ast.FnDecl:
			v.fnNames[s.Name] = true
			v.collect(s.Body)
		case *ast.ShapeStmt:
			v.shapeNames[s.Name] = true
		case *ast.Conditional:
			v.collect(s.Then)
			for _, branch := range s.ElseIfs {
				v.collect(branch.Body)
			}
			v.collect(s.Else)
		case *ast.ForLoop:
			v.collect(s.Body)
		case *ast.WhileLoop:
			v.collect(s.Body)
		}
	}
}

func (v *validator) validateStatements(stmts []ast.Stmt) {
	for _, stmt := range stmts {
		v.validateStmt(stmt)
	}
}

func (v *validator) validateStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.Assignment:
		v.validateExpr(s.Value)

	case *ast.Conditional:
		v.validateCondition(s.Cond)
		v.validateStatements(s.Then)
		for _, branch := range s.ElseIfs {
			v.validateCondition(branch.Cond)
			v.validateStatements(branch.Body)
		}
		v.validateStatements(s.Else)

	case *ast.ForLoop:
		v.validateExpr(s.Count)
		v.validateExpr(s.RangeStart)
		v.validateExpr(s.RangeEnd)
		v.validateStatements(s.Body)

	case *ast.WhileLoop:
		v.validateCondition(s.Cond)
		v.validateStatements(s.Body)

	case *ast.FnDecl:
		v.validateFnDecl(s)

	case *ast.CallStmt:
		v.validateExpr(s.Call)

	case *ast.ReturnStmt:
		v.validateExpr(s.Value)

	case *ast.PrintStmt:
		v.validateExpr(s.Value)

	case *ast.ShapeStmt:
		v.validateShape(s)

	case *ast.TransformStmt:
		v.checkShapeName(string(s.Op), s.Name, s.Span)
		v.validateExpr(s.Amount)
		v.validatePoint(s.Offset)
		if s.Axis != nil {
			v.validatePoint(s.Axis.Point)
		}

	case *ast.FeatureStmt:
		v.checkShapeName(string(s.Feature), s.Name, s.Span)
		v.validatePoint(s.From)

	default:
		v.addDiag(diagnostics.EAst, fmt.Sprintf("unsupported statement type: %T", stmt), stmt.NodeSpan())
	}
}

func (v *validator) validateFnDecl(fn *ast.FnDecl) {
	seen := make(map[string]bool, len(fn.Params))
	for _, p := range fn.Params {
		if seen[p.Name] {
			v.addDiag(diagnostics.EDupParam,
				fmt.Sprintf("duplicate parameter '%s' in function '%s'", p.Name, fn.Name), p.Span)
		}
		seen[p.Name] = true
		v.validateExpr(p.Default)
	}
	v.validateStatements(fn.Body)
}

func (v *validator) validateShape(s *ast.ShapeStmt) {
	if s.Shape == ast.ShapePolygon && len(s.Points) < 3 {
		v.addDiag(diagnostics.EPolygonVertices,
			fmt.Sprintf("polygon '%s' needs at least 3 vertices, got %d", s.Name, len(s.Points)), s.Span)
	}
	for _, p := range s.Points {
		v.validatePoint(p)
	}
	v.validatePoint(s.Center)
	v.validatePoint(s.TopLeft)
	v.validateExpr(s.Radius)
	v.validateExpr(s.Width)
	v.validateExpr(s.Height)
}

func (v *validator) checkShapeName(op, name string, span ast.Span) {
	if !v.shapeNames[name] {
		v.addWarning(diagnostics.WUnknownShape,
			fmt.Sprintf("%s refers to '%s', which no shape statement defines", op, name), span)
	}
}

func (v *validator) validateCondition(c *ast.Condition) {
	if c == nil {
		return
	}
	v.validateExpr(c.Left)
	v.validateExpr(c.Right)
}

func (v *validator) validatePoint(p *ast.PointExpr) {
	if p == nil {
		return
	}
	v.validateExpr(p.X)
	v.validateExpr(p.Y)
}

func (v *validator) validateExpr(expr ast.Expr) {
	switch e := expr.(type) {
	case nil:
	case *ast.CallExpr:
		if !knownBuiltins[e.Name] && !v.fnNames[e.Name] {
			v.addWarning(diagnostics.WUnknownFn, fmt.Sprintf("call to undefined function '%s'", e.Name), e.Span)
		}
		for _, arg := range e.Args {
			v.validateExpr(arg)
		}
	case *ast.FlatExpr:
		for _, term := range e.Terms {
			v.validateExpr(term)
		}
	case *ast.ParenExpr:
		v.validateExpr(e.Inner)
	case *ast.NegExpr:
		v.validateExpr(e.Operand)
	}
}
