package parser_test

import (
	"strings"
	"testing"

	"github.com/dmitrycvs/C-DSL/pkg/ast"
	"github.com/dmitrycvs/C-DSL/pkg/parser"
)

// helper: parse source and assert no diagnostics
func mustParse(t *testing.T, source string) *ast.Program {
	t.Helper()
	prog, diags := parser.Parse(source, "test.shp")
	if len(diags) > 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if prog == nil {
		t.Fatal("expected non-nil program")
	}
	return prog
}

// helper: parse source and assert a parse diagnostic mentioning want
func mustFail(t *testing.T, source, want string) {
	t.Helper()
	prog, diags := parser.Parse(source, "test.shp")
	if len(diags) == 0 || prog != nil {
		t.Fatalf("expected parse of %q to fail, but it succeeded", source)
	}
	if want != "" && !strings.Contains(diags[0].Message, want) {
		t.Errorf("diagnostic %q does not mention %q", diags[0].Message, want)
	}
}

func single[T ast.Stmt](t *testing.T, source string) T {
	t.Helper()
	prog := mustParse(t, source)
	if len(prog.Statements) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(prog.Statements))
	}
	stmt, ok := prog.Statements[0].(T)
	if !ok {
		t.Fatalf("unexpected statement type %T", prog.Statements[0])
	}
	return stmt
}

func number(t *testing.T, e ast.Expr) float64 {
	t.Helper()
	lit, ok := e.(*ast.NumberLiteral)
	if !ok {
		t.Fatalf("expected NumberLiteral, got %T", e)
	}
	return lit.Value
}

// ---- Assignments and expressions ----

func TestAssignmentLiterals(t *testing.T) {
	tests := []struct {
		source string
		kind   string
	}{
		{"x = 42", "NumberLiteral"},
		{"x = 3.5", "NumberLiteral"},
		{`x = "hi"`, "StringLiteral"},
		{"x = true", "BoolLiteral"},
		{"x = y", "Ident"},
		{"x = f(1, 2)", "CallExpr"},
		{"x = (1)", "ParenExpr"},
		{"x = -y", "NegExpr"},
		{"x = 1 + 2", "FlatExpr"},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			a := single[*ast.Assignment](t, tt.source)
			if a.Name != "x" {
				t.Errorf("name = %q", a.Name)
			}
			if got := a.Value.Kind(); got != tt.kind {
				t.Errorf("value kind = %s, want %s", got, tt.kind)
			}
		})
	}
}

func TestFlatExpressionKeepsSourceOrder(t *testing.T) {
	a := single[*ast.Assignment](t, "r = 2 + 3 * 4 - 1 / 5")
	flat, ok := a.Value.(*ast.FlatExpr)
	if !ok {
		t.Fatalf("expected FlatExpr, got %T", a.Value)
	}
	wantOps := []ast.BinaryOp{ast.OpAdd, ast.OpMul, ast.OpSub, ast.OpDiv}
	if len(flat.Ops) != len(wantOps) || len(flat.Terms) != len(wantOps)+1 {
		t.Fatalf("got %d terms / %d ops", len(flat.Terms), len(flat.Ops))
	}
	for i, op := range wantOps {
		if flat.Ops[i] != op {
			t.Errorf("op %d = %s, want %s", i, flat.Ops[i], op)
		}
	}
	for i, want := range []float64{2, 3, 4, 1, 5} {
		if got := number(t, flat.Terms[i]); got != want {
			t.Errorf("term %d = %v, want %v", i, got, want)
		}
	}
}

func TestParenthesesNest(t *testing.T) {
	a := single[*ast.Assignment](t, "r = 2 + (3 * 4)")
	flat := a.Value.(*ast.FlatExpr)
	paren, ok := flat.Terms[1].(*ast.ParenExpr)
	if !ok {
		t.Fatalf("expected ParenExpr, got %T", flat.Terms[1])
	}
	if _, ok := paren.Inner.(*ast.FlatExpr); !ok {
		t.Errorf("expected FlatExpr inside parentheses, got %T", paren.Inner)
	}
}

func TestNegationAppliesToTerm(t *testing.T) {
	a := single[*ast.Assignment](t, "r = -2 * 3")
	flat := a.Value.(*ast.FlatExpr)
	neg, ok := flat.Terms[0].(*ast.NegExpr)
	if !ok {
		t.Fatalf("expected NegExpr, got %T", flat.Terms[0])
	}
	if number(t, neg.Operand) != 2 {
		t.Errorf("operand = %v", neg.Operand)
	}
}

func TestCallStatement(t *testing.T) {
	s := single[*ast.CallStmt](t, "square(1, x + 2, \"s\")")
	if s.Call.Name != "square" || len(s.Call.Args) != 3 {
		t.Fatalf("got %s with %d args", s.Call.Name, len(s.Call.Args))
	}
	if _, ok := s.Call.Args[1].(*ast.FlatExpr); !ok {
		t.Errorf("arg 1 = %T, want FlatExpr", s.Call.Args[1])
	}
}

func TestCallNoArgs(t *testing.T) {
	s := single[*ast.CallStmt](t, "go()")
	if len(s.Call.Args) != 0 {
		t.Errorf("expected no args, got %d", len(s.Call.Args))
	}
}

// ---- Print ----

func TestPrintVerbatimString(t *testing.T) {
	s := single[*ast.PrintStmt](t, `print "hello world"`)
	if s.Text == nil || *s.Text != "hello world" {
		t.Fatalf("Text = %v", s.Text)
	}
	if s.Value != nil {
		t.Errorf("Value should be nil, got %T", s.Value)
	}
}

func TestPrintStringExpression(t *testing.T) {
	s := single[*ast.PrintStmt](t, `print "n = " + n`)
	if s.Text != nil {
		t.Fatalf("expected an expression print, got text %q", *s.Text)
	}
	if _, ok := s.Value.(*ast.FlatExpr); !ok {
		t.Errorf("Value = %T, want FlatExpr", s.Value)
	}
}

func TestPrintExpression(t *testing.T) {
	s := single[*ast.PrintStmt](t, "print x")
	if id, ok := s.Value.(*ast.Ident); !ok || id.Name != "x" {
		t.Errorf("Value = %#v", s.Value)
	}
}

// ---- Control flow ----

func TestConditionalChain(t *testing.T) {
	src := `if (x > 5) { print "big" } else if (x == 5) { print "five" } else if (x < 0) { print "neg" } else { print "small" }`
	c := single[*ast.Conditional](t, src)
	if c.Cond.Op != ast.OpGt {
		t.Errorf("op = %s", c.Cond.Op)
	}
	if len(c.ElseIfs) != 2 {
		t.Fatalf("expected 2 else-if branches, got %d", len(c.ElseIfs))
	}
	if c.ElseIfs[0].Cond.Op != ast.OpEq || c.ElseIfs[1].Cond.Op != ast.OpLt {
		t.Errorf("else-if ops = %s, %s", c.ElseIfs[0].Cond.Op, c.ElseIfs[1].Cond.Op)
	}
	if !c.HasElse || len(c.Else) != 1 {
		t.Errorf("expected else block with 1 statement")
	}
}

func TestConditionOperators(t *testing.T) {
	ops := map[string]ast.CompareOp{
		"==": ast.OpEq, "!=": ast.OpNeq, "<": ast.OpLt,
		">": ast.OpGt, "<=": ast.OpLtEq, ">=": ast.OpGtEq,
	}
	for src, want := range ops {
		t.Run(src, func(t *testing.T) {
			c := single[*ast.Conditional](t, "if (a "+src+" b + 1) { }")
			if c.Cond.Op != want {
				t.Errorf("op = %s, want %s", c.Cond.Op, want)
			}
			if c.HasElse || len(c.Then) != 0 {
				t.Errorf("unexpected branches")
			}
		})
	}
}

func TestForCount(t *testing.T) {
	f := single[*ast.ForLoop](t, "for i in 3 { print i }")
	if f.Var != "i" || f.IsRange() {
		t.Fatalf("var=%q range=%v", f.Var, f.IsRange())
	}
	if number(t, f.Count) != 3 {
		t.Errorf("count = %#v", f.Count)
	}
	if len(f.Body) != 1 {
		t.Errorf("body len = %d", len(f.Body))
	}
}

func TestForRange(t *testing.T) {
	f := single[*ast.ForLoop](t, "for k in range(2, n) { }")
	if !f.IsRange() {
		t.Fatal("expected range loop")
	}
	if number(t, f.RangeStart) != 2 {
		t.Errorf("start = %#v", f.RangeStart)
	}
	if id, ok := f.RangeEnd.(*ast.Ident); !ok || id.Name != "n" {
		t.Errorf("end = %#v", f.RangeEnd)
	}

	f = single[*ast.ForLoop](t, "for k in range(4) { }")
	if f.RangeStart != nil || number(t, f.RangeEnd) != 4 {
		t.Errorf("single-argument range parsed as start=%v end=%v", f.RangeStart, f.RangeEnd)
	}
}

func TestWhile(t *testing.T) {
	w := single[*ast.WhileLoop](t, "while (i < 10) { i = i + 1 }")
	if w.Cond.Op != ast.OpLt || len(w.Body) != 1 {
		t.Errorf("got op %s, %d statements", w.Cond.Op, len(w.Body))
	}
}

// ---- Functions ----

func TestFunctionDeclaration(t *testing.T) {
	src := `function area(w, h = 2, label = "box", neg = -1.5, on = true) {
  return w * h
}`
	fn := single[*ast.FnDecl](t, src)
	if fn.Name != "area" || len(fn.Params) != 5 {
		t.Fatalf("got %s with %d params", fn.Name, len(fn.Params))
	}
	if fn.Params[0].Default != nil {
		t.Errorf("w should have no default")
	}
	if number(t, fn.Params[1].Default) != 2 {
		t.Errorf("h default = %#v", fn.Params[1].Default)
	}
	if s, ok := fn.Params[2].Default.(*ast.StringLiteral); !ok || s.Value != "box" {
		t.Errorf("label default = %#v", fn.Params[2].Default)
	}
	if number(t, fn.Params[3].Default) != -1.5 {
		t.Errorf("neg default = %#v", fn.Params[3].Default)
	}
	if b, ok := fn.Params[4].Default.(*ast.BoolLiteral); !ok || !b.Value {
		t.Errorf("on default = %#v", fn.Params[4].Default)
	}
	ret, ok := fn.Body[0].(*ast.ReturnStmt)
	if !ok || ret.Value == nil {
		t.Fatalf("expected return with value, got %#v", fn.Body[0])
	}
}

func TestBareReturn(t *testing.T) {
	fn := single[*ast.FnDecl](t, "function f() {\n  return\n  x = 1\n}")
	if len(fn.Body) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(fn.Body))
	}
	if ret := fn.Body[0].(*ast.ReturnStmt); ret.Value != nil {
		t.Errorf("expected bare return, got value %T", ret.Value)
	}
}

func TestDefaultMustBeLiteral(t *testing.T) {
	mustFail(t, "function f(a = b) { }", "default value must be a literal")
}

// ---- Shapes ----

func TestTriangle(t *testing.T) {
	s := single[*ast.ShapeStmt](t, "triangle A (0,0), (5,0), (3,4)")
	if s.Shape != ast.ShapeTriangle || s.Name != "A" || len(s.Points) != 3 || s.Draw {
		t.Fatalf("got %+v", s)
	}
	if number(t, s.Points[2].X) != 3 || number(t, s.Points[2].Y) != 4 {
		t.Errorf("third point = %#v", s.Points[2])
	}
}

func TestCircle(t *testing.T) {
	s := single[*ast.ShapeStmt](t, "circle C center (x, y) radius r * 2 draw")
	if s.Shape != ast.ShapeCircle || s.Center == nil || !s.Draw {
		t.Fatalf("got %+v", s)
	}
	if _, ok := s.Radius.(*ast.FlatExpr); !ok {
		t.Errorf("radius = %T", s.Radius)
	}
}

func TestRectangle(t *testing.T) {
	for _, src := range []string{
		"rectangle R (1, 2) width 20 height 10",
		"rectangle R at (1, 2) width 20 height 10",
	} {
		s := single[*ast.ShapeStmt](t, src)
		if s.Shape != ast.ShapeRectangle || s.TopLeft == nil {
			t.Fatalf("%s: got %+v", src, s)
		}
		if number(t, s.Width) != 20 || number(t, s.Height) != 10 {
			t.Errorf("%s: width/height = %v/%v", src, s.Width, s.Height)
		}
	}
}

func TestPolygon(t *testing.T) {
	s := single[*ast.ShapeStmt](t, "polygon P (0,0), (4,0), (4,4), (0,4) draw")
	if s.Shape != ast.ShapePolygon || len(s.Points) != 4 || !s.Draw {
		t.Fatalf("got %+v", s)
	}
}

func TestDrawStartingNextStatement(t *testing.T) {
	prog := mustParse(t, "triangle A (0,0), (1,0), (0,1)\ndraw = 1")
	if len(prog.Statements) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(prog.Statements))
	}
	if prog.Statements[0].(*ast.ShapeStmt).Draw {
		t.Error("draw should belong to the assignment")
	}
	if a, ok := prog.Statements[1].(*ast.Assignment); !ok || a.Name != "draw" {
		t.Errorf("second statement = %#v", prog.Statements[1])
	}
}

func TestShapeWordsAsVariables(t *testing.T) {
	prog := mustParse(t, "circle = 3\nrotate = circle + 1\nprint rotate")
	if len(prog.Statements) != 3 {
		t.Fatalf("expected 3 statements, got %d", len(prog.Statements))
	}
}

// ---- Transformations and features ----

func TestTransforms(t *testing.T) {
	rot := single[*ast.TransformStmt](t, "rotate A by 90 draw")
	if rot.Op != ast.TransformRotate || number(t, rot.Amount) != 90 || !rot.Draw {
		t.Errorf("rotate = %+v", rot)
	}
	sc := single[*ast.TransformStmt](t, "scale A by 1.5")
	if sc.Op != ast.TransformScale || number(t, sc.Amount) != 1.5 {
		t.Errorf("scale = %+v", sc)
	}
	tr := single[*ast.TransformStmt](t, "translate A by (3, -4)")
	if tr.Op != ast.TransformTranslate || tr.Offset == nil {
		t.Fatalf("translate = %+v", tr)
	}
	if _, ok := tr.Offset.Y.(*ast.NegExpr); !ok {
		t.Errorf("offset y = %T", tr.Offset.Y)
	}
}

func TestReflectAxes(t *testing.T) {
	tests := []struct {
		source string
		want   ast.AxisKind
	}{
		{"reflect A over x-axis", ast.AxisX},
		{"reflect A by y-axis", ast.AxisY},
		{"reflect A across xaxis", ast.AxisX},
		{"reflect A over yaxis", ast.AxisY},
		{"reflect A over origin", ast.AxisOrigin},
		{"reflect A over (2, 3)", ast.AxisPoint},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			s := single[*ast.TransformStmt](t, tt.source)
			if s.Axis == nil || s.Axis.Mirror != tt.want {
				t.Fatalf("axis = %+v, want %s", s.Axis, tt.want)
			}
			if (tt.want == ast.AxisPoint) != (s.Axis.Point != nil) {
				t.Errorf("point presence mismatch: %+v", s.Axis)
			}
		})
	}
	mustFail(t, "reflect A over z-axis", "unknown axis")
}

func TestFeatures(t *testing.T) {
	tests := []struct {
		source string
		want   ast.FeatureKind
		draw   bool
	}{
		{"median T from (0, 0)", ast.FeatureMedian, false},
		{"bisector T from (1, 1) draw", ast.FeatureBisector, true},
		{"altitude T at (2, 2)", ast.FeatureAltitude, false},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			s := single[*ast.FeatureStmt](t, tt.source)
			if s.Feature != tt.want || s.Name != "T" || s.Draw != tt.draw || s.From == nil {
				t.Errorf("got %+v", s)
			}
		})
	}
}

// ---- Program structure ----

func TestSemicolonsAndComments(t *testing.T) {
	prog := mustParse(t, "# setup\nx = 1; y = 2;\n;print x # done\n")
	if len(prog.Statements) != 3 {
		t.Fatalf("expected 3 statements, got %d", len(prog.Statements))
	}
}

func TestEmptyProgram(t *testing.T) {
	prog := mustParse(t, "")
	if len(prog.Statements) != 0 {
		t.Errorf("expected no statements, got %d", len(prog.Statements))
	}
}

func TestStatementSpans(t *testing.T) {
	prog := mustParse(t, "x = 1\nrotate A by 45")
	span := prog.Statements[1].NodeSpan()
	if span.StartLine != 2 || span.StartCol != 1 || span.EndLine != 2 || span.EndCol != 15 {
		t.Errorf("span = %+v", span)
	}
}

// ---- Errors ----

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"missing comparison", "if (x) { }", "expected comparison operator"},
		{"missing paren", "if x > 1 { }", "expected '('"},
		{"triangle short", "triangle T (0,0), (1,1)", "expected '('"},
		{"circle missing center", "circle C (0,0) radius 2", "expected 'center'"},
		{"rectangle missing height", "rectangle R (0,0) width 2", "expected 'height'"},
		{"rotate missing by", "rotate A 90", "expected 'by'"},
		{"bare identifier", "x", "unexpected identifier 'x'"},
		{"stray brace", "}", "unexpected '}'"},
		{"dangling operator", "x = 1 +", "unexpected end of file"},
		{"lex error", "x = @", "unexpected character"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mustFail(t, tt.source, tt.want)
		})
	}
}

func TestParseErrorHasCodeAndSpan(t *testing.T) {
	_, diags := parser.Parse("x = 1\ny = )", "test.shp")
	if len(diags) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(diags))
	}
	d := diags[0]
	if d.Code != "E_PARSE" {
		t.Errorf("code = %q", d.Code)
	}
	if d.Span == nil || d.Span.StartLine != 2 || d.Span.StartCol != 5 {
		t.Errorf("span = %+v", d.Span)
	}
}

func TestParseInteractiveIncomplete(t *testing.T) {
	tests := []struct {
		source     string
		incomplete bool
	}{
		{"function f(a) {", true},
		{"if (x > 1) {\n print x", true},
		{"for i in 3 {", true},
		{"x = ", true},
		{"x = )", false},
		{`print "open`, false},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			prog, diags, incomplete := parser.ParseInteractive(tt.source, "<repl>")
			if prog != nil || len(diags) == 0 {
				t.Fatalf("expected failure")
			}
			if incomplete != tt.incomplete {
				t.Errorf("incomplete = %v, want %v", incomplete, tt.incomplete)
			}
		})
	}

	prog, diags, incomplete := parser.ParseInteractive("function f(a) {\n return a\n}", "<repl>")
	if prog == nil || len(diags) != 0 || incomplete {
		t.Errorf("complete input: prog=%v diags=%v incomplete=%v", prog, diags, incomplete)
	}
}
