// Package formatter implements the shape DSL source formatter.
package formatter

import (
	"strconv"
	"strings"

	"github.com/dmitrycvs/C-DSL/pkg/ast"
)

const indent = "  "

// Format pretty-prints a syntax tree back to source code. Comments are not
// part of the tree and are dropped.
func Format(program *ast.Program) string {
	if len(program.Statements) == 0 {
		return ""
	}
	lines := make([]string, len(program.Statements))
	for i, s := range program.Statements {
		lines[i] = formatStmt(s, 0)
	}
	return strings.Join(lines, "\n") + "\n"
}

// HasComments checks if a source string contains comments (# prefix).
func HasComments(source string) bool {
	for _, line := range strings.Split(source, "\n") {
		inString := false
		for i := 0; i < len(line); i++ {
			switch {
			case line[i] == '\\' && inString:
				i++
			case line[i] == '"':
				inString = !inString
			case line[i] == '#' && !inString:
				return true
			}
		}
	}
	return false
}

func formatStmt(s ast.Stmt, depth int) string {
	prefix := strings.Repeat(indent, depth)
	switch stmt := s.(type) {
	case *ast.Assignment:
		return prefix + stmt.Name + " = " + formatExpr(stmt.Value)

	case *ast.Conditional:
		out := prefix + "if (" + formatCondition(stmt.Cond) + ") " + formatBlock(stmt.Then, depth)
		for _, branch := range stmt.ElseIfs {
			out += " else if (" + formatCondition(branch.Cond) + ") " + formatBlock(branch.Body, depth)
		}
		if stmt.HasElse {
			out += " else " + formatBlock(stmt.Else, depth)
		}
		return out

	case *ast.ForLoop:
		var header string
		switch {
		case stmt.IsRange() && stmt.RangeStart != nil:
			header = "range(" + formatExpr(stmt.RangeStart) + ", " + formatExpr(stmt.RangeEnd) + ")"
		case stmt.IsRange():
			header = "range(" + formatExpr(stmt.RangeEnd) + ")"
		default:
			header = formatExpr(stmt.Count)
		}
		return prefix + "for " + stmt.Var + " in " + header + " " + formatBlock(stmt.Body, depth)

	case *ast.WhileLoop:
		return prefix + "while (" + formatCondition(stmt.Cond) + ") " + formatBlock(stmt.Body, depth)

	case *ast.FnDecl:
		params := make([]string, len(stmt.Params))
		for i, p := range stmt.Params {
			params[i] = p.Name
			if p.Default != nil {
				params[i] += " = " + formatExpr(p.Default)
			}
		}
		return prefix + "function " + stmt.Name + "(" + strings.Join(params, ", ") + ") " + formatBlock(stmt.Body, depth)

	case *ast.CallStmt:
		return prefix + formatExpr(stmt.Call)

	case *ast.ReturnStmt:
		if stmt.Value == nil {
			return prefix + "return"
		}
		return prefix + "return " + formatExpr(stmt.Value)

	case *ast.PrintStmt:
		if stmt.Text != nil {
			return prefix + "print " + quote(*stmt.Text)
		}
		return prefix + "print " + formatExpr(stmt.Value)

	case *ast.ShapeStmt:
		return prefix + formatShape(stmt) + drawSuffix(stmt.Draw)

	case *ast.TransformStmt:
		out := prefix + string(stmt.Op) + " " + stmt.Name + " by "
		switch stmt.Op {
		case ast.TransformTranslate:
			out += formatPoint(stmt.Offset)
		case ast.TransformReflect:
			out += formatAxis(stmt.Axis)
		default:
			out += formatExpr(stmt.Amount)
		}
		return out + drawSuffix(stmt.Draw)

	case *ast.FeatureStmt:
		return prefix + string(stmt.Feature) + " " + stmt.Name + " from " + formatPoint(stmt.From) + drawSuffix(stmt.Draw)
	}
	return ""
}

func formatBlock(stmts []ast.Stmt, depth int) string {
	if len(stmts) == 0 {
		return "{}"
	}
	lines := make([]string, len(stmts))
	for i, s := range stmts {
		lines[i] = formatStmt(s, depth+1)
	}
	return "{\n" + strings.Join(lines, "\n") + "\n" + strings.Repeat(indent, depth) + "}"
}

func formatShape(s *ast.ShapeStmt) string {
	head := string(s.Shape) + " " + s.Name + " "
	switch s.Shape {
	case ast.ShapeCircle:
		return head + "center " + formatPoint(s.Center) + " radius " + formatExpr(s.Radius)
	case ast.ShapeRectangle:
		return head + "at " + formatPoint(s.TopLeft) + " width " + formatExpr(s.Width) + " height " + formatExpr(s.Height)
	}
	pts := make([]string, len(s.Points))
	for i, p := range s.Points {
		pts[i] = formatPoint(p)
	}
	return head + strings.Join(pts, ", ")
}

func drawSuffix(draw bool) string {
	if draw {
		return " draw"
	}
	return ""
}

func formatAxis(a *ast.Axis) string {
	if a.Mirror == ast.AxisPoint {
		return formatPoint(a.Point)
	}
	return string(a.Mirror)
}

func formatPoint(p *ast.PointExpr) string {
	return "(" + formatExpr(p.X) + ", " + formatExpr(p.Y) + ")"
}

func formatCondition(c *ast.Condition) string {
	return formatExpr(c.Left) + " " + string(c.Op) + " " + formatExpr(c.Right)
}

func formatExpr(e ast.Expr) string {
	switch expr := e.(type) {
	case *ast.NumberLiteral:
		return strconv.FormatFloat(expr.Value, 'f', -1, 64)
	case *ast.StringLiteral:
		return quote(expr.Value)
	case *ast.BoolLiteral:
		if expr.Value {
			return "true"
		}
		return "false"
	case *ast.Ident:
		return expr.Name
	case *ast.CallExpr:
		args := make([]string, len(expr.Args))
		for i, a := range expr.Args {
			args[i] = formatExpr(a)
		}
		return expr.Name + "(" + strings.Join(args, ", ") + ")"
	case *ast.FlatExpr:
		var b strings.Builder
		b.WriteString(formatExpr(expr.Terms[0]))
		for i, op := range expr.Ops {
			b.WriteString(" " + string(op) + " ")
			b.WriteString(formatExpr(expr.Terms[i+1]))
		}
		return b.String()
	case *ast.ParenExpr:
		return "(" + formatExpr(expr.Inner) + ")"
	case *ast.NegExpr:
		return "-" + formatExpr(expr.Operand)
	}
	return ""
}

// quote writes a string literal using only the escapes the lexer accepts.
func quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
