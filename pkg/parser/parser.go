// Package parser implements the shape DSL parser.
package parser

import (
	"fmt"
	"strconv"

	"github.com/dmitrycvs/C-DSL/pkg/ast"
	"github.com/dmitrycvs/C-DSL/pkg/diagnostics"
	"github.com/dmitrycvs/C-DSL/pkg/lexer"
)

var shapeWords = map[string]ast.ShapeKind{
	"triangle":  ast.ShapeTriangle,
	"circle":    ast.ShapeCircle,
	"rectangle": ast.ShapeRectangle,
	"polygon":   ast.ShapePolygon,
}

var transformWords = map[string]ast.TransformOp{
	"rotate":    ast.TransformRotate,
	"scale":     ast.TransformScale,
	"translate": ast.TransformTranslate,
	"reflect":   ast.TransformReflect,
}

var featureWords = map[string]ast.FeatureKind{
	"median":   ast.FeatureMedian,
	"bisector": ast.FeatureBisector,
	"altitude": ast.FeatureAltitude,
}

type parser struct {
	tokens     []lexer.Token
	pos        int
	last       ast.Span
	diags      []diagnostics.Diagnostic
	incomplete bool
}

// Parse tokenizes source and parses it into an AST.
func Parse(source, filename string) (*ast.Program, []diagnostics.Diagnostic) {
	prog, diags, _ := ParseInteractive(source, filename)
	return prog, diags
}

// ParseInteractive is Parse for line-oriented front ends: incomplete reports
// whether parsing failed only because the input ended inside a construct, so
// more input may complete it.
func ParseInteractive(source, filename string) (prog *ast.Program, diags []diagnostics.Diagnostic, incomplete bool) {
	tokens, err := lexer.Tokenize(source, filename)
	if err != nil {
		if le, ok := err.(*lexer.LexError); ok {
			return nil, []diagnostics.Diagnostic{le.Diag}, false
		}
		return nil, []diagnostics.Diagnostic{diagnostics.MakeDiag(diagnostics.ELex, err.Error(), nil, "")}, false
	}

	p := &parser{tokens: tokens, pos: 0, last: tokens[0].Span}
	prog = p.parseProgram()
	if len(p.diags) > 0 {
		return nil, p.diags, p.incomplete
	}
	return prog, nil, false
}

func (p *parser) current() lexer.Token {
	if p.pos >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1] // EOF
	}
	return p.tokens[p.pos]
}

func (p *parser) peek() lexer.TokenType {
	return p.current().Type
}

func (p *parser) peekAt(offset int) lexer.Token {
	idx := p.pos + offset
	if idx >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[idx]
}

func (p *parser) advance() lexer.Token {
	tok := p.current()
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	p.last = tok.Span
	return tok
}

func (p *parser) expect(typ lexer.TokenType) (lexer.Token, bool) {
	tok := p.current()
	if tok.Type != typ {
		p.addError(fmt.Sprintf("expected %s, got %s", tokenName(typ), describe(tok)), &tok.Span)
		return tok, false
	}
	return p.advance(), true
}

// expectWord consumes a contextual keyword spelled as an identifier.
func (p *parser) expectWord(word string) bool {
	tok := p.current()
	if tok.Type != lexer.TokIdent || tok.Value != word {
		p.addError(fmt.Sprintf("expected '%s', got %s", word, describe(tok)), &tok.Span)
		return false
	}
	p.advance()
	return true
}

func (p *parser) atWord(word string) bool {
	tok := p.current()
	return tok.Type == lexer.TokIdent && tok.Value == word
}

func (p *parser) addError(msg string, span *ast.Span) {
	if p.peek() == lexer.TokEOF {
		p.incomplete = true
	}
	p.diags = append(p.diags, diagnostics.MakeDiag(diagnostics.EParse, msg, span, ""))
}

// spanFrom covers start through the most recently consumed token.
func (p *parser) spanFrom(start ast.Span) ast.Span {
	return ast.Span{
		File:      start.File,
		StartLine: start.StartLine,
		StartCol:  start.StartCol,
		EndLine:   p.last.EndLine,
		EndCol:    p.last.EndCol,
	}
}

func tokenName(t lexer.TokenType) string {
	switch t {
	case lexer.TokLBrace:
		return "'{'"
	case lexer.TokRBrace:
		return "'}'"
	case lexer.TokLParen:
		return "'('"
	case lexer.TokRParen:
		return "')'"
	case lexer.TokComma:
		return "','"
	case lexer.TokEquals:
		return "'='"
	case lexer.TokIdent:
		return "identifier"
	case lexer.TokString:
		return "string"
	case lexer.TokNumber:
		return "number"
	case lexer.TokEOF:
		return "end of file"
	default:
		return fmt.Sprintf("token(%d)", t)
	}
}

func describe(tok lexer.Token) string {
	if tok.Type == lexer.TokEOF {
		return "end of file"
	}
	return fmt.Sprintf("'%s'", tok.Value)
}

// --- Program ---

func (p *parser) parseProgram() *ast.Program {
	startSpan := p.current().Span

	var stmts []ast.Stmt
	for {
		for p.peek() == lexer.TokSemicolon {
			p.advance()
		}
		if p.peek() == lexer.TokEOF {
			break
		}
		stmt := p.parseStmt()
		if len(p.diags) > 0 {
			return nil
		}
		stmts = append(stmts, stmt)
	}

	return &ast.Program{
		Span:       p.spanFrom(startSpan),
		Statements: stmts,
	}
}

// --- Statements ---

// parseStmt may return a typed nil on failure; callers check p.diags.
func (p *parser) parseStmt() ast.Stmt {
	switch p.peek() {
	case lexer.TokIf:
		return p.parseConditional()
	case lexer.TokFor:
		return p.parseFor()
	case lexer.TokWhile:
		return p.parseWhile()
	case lexer.TokFunction:
		return p.parseFnDecl()
	case lexer.TokReturn:
		return p.parseReturn()
	case lexer.TokPrint:
		return p.parsePrint()
	case lexer.TokIdent:
		return p.parseIdentStmt()
	default:
		tok := p.current()
		p.addError(fmt.Sprintf("unexpected %s at start of statement", describe(tok)), &tok.Span)
		return nil
	}
}

func (p *parser) parseIdentStmt() ast.Stmt {
	tok := p.current()
	next := p.peekAt(1)

	switch next.Type {
	case lexer.TokEquals:
		return p.parseAssignment()
	case lexer.TokLParen:
		call := p.parseCall()
		if call == nil {
			return nil
		}
		return &ast.CallStmt{Span: call.Span, Call: call}
	case lexer.TokIdent:
		if kind, ok := shapeWords[tok.Value]; ok {
			return p.parseShape(kind)
		}
		if op, ok := transformWords[tok.Value]; ok {
			return p.parseTransform(op)
		}
		if feature, ok := featureWords[tok.Value]; ok {
			return p.parseFeature(feature)
		}
	}

	p.addError(fmt.Sprintf("unexpected identifier '%s' at start of statement", tok.Value), &tok.Span)
	return nil
}

func (p *parser) parseAssignment() *ast.Assignment {
	nameTok := p.advance()
	p.advance() // consume '='
	value := p.parseExpr()
	if value == nil {
		return nil
	}
	return &ast.Assignment{
		Span:  p.spanFrom(nameTok.Span),
		Name:  nameTok.Value,
		Value: value,
	}
}

func (p *parser) parseConditional() *ast.Conditional {
	start := p.advance() // consume 'if'
	cond := p.parseCondition()
	if cond == nil {
		return nil
	}
	then := p.parseBlock()
	if then == nil {
		return nil
	}

	stmt := &ast.Conditional{Cond: cond, Then: then}
	for p.peek() == lexer.TokElse {
		elseTok := p.advance()
		if p.peek() == lexer.TokIf {
			p.advance()
			c := p.parseCondition()
			if c == nil {
				return nil
			}
			body := p.parseBlock()
			if body == nil {
				return nil
			}
			stmt.ElseIfs = append(stmt.ElseIfs, &ast.ElseIf{
				Span: p.spanFrom(elseTok.Span),
				Cond: c,
				Body: body,
			})
			continue
		}
		body := p.parseBlock()
		if body == nil {
			return nil
		}
		stmt.Else = body
		stmt.HasElse = true
		break
	}
	stmt.Span = p.spanFrom(start.Span)
	return stmt
}

func (p *parser) parseCondition() *ast.Condition {
	start, ok := p.expect(lexer.TokLParen)
	if !ok {
		return nil
	}
	left := p.parseExpr()
	if left == nil {
		return nil
	}

	var op ast.CompareOp
	switch p.peek() {
	case lexer.TokEqEq:
		op = ast.OpEq
	case lexer.TokBangEq:
		op = ast.OpNeq
	case lexer.TokLt:
		op = ast.OpLt
	case lexer.TokGt:
		op = ast.OpGt
	case lexer.TokLtEq:
		op = ast.OpLtEq
	case lexer.TokGtEq:
		op = ast.OpGtEq
	default:
		tok := p.current()
		p.addError(fmt.Sprintf("expected comparison operator, got %s", describe(tok)), &tok.Span)
		return nil
	}
	p.advance()

	right := p.parseExpr()
	if right == nil {
		return nil
	}
	if _, ok := p.expect(lexer.TokRParen); !ok {
		return nil
	}
	return &ast.Condition{
		Span:  p.spanFrom(start.Span),
		Left:  left,
		Op:    op,
		Right: right,
	}
}

func (p *parser) parseFor() *ast.ForLoop {
	start := p.advance() // consume 'for'
	varTok, ok := p.expect(lexer.TokIdent)
	if !ok {
		return nil
	}
	if !p.expectWord("in") {
		return nil
	}

	loop := &ast.ForLoop{Var: varTok.Value}
	if p.atWord("range") && p.peekAt(1).Type == lexer.TokLParen {
		p.advance() // consume 'range'
		p.advance() // consume '('
		first := p.parseExpr()
		if first == nil {
			return nil
		}
		if p.peek() == lexer.TokComma {
			p.advance()
			second := p.parseExpr()
			if second == nil {
				return nil
			}
			loop.RangeStart = first
			loop.RangeEnd = second
		} else {
			loop.RangeEnd = first
		}
		if _, ok := p.expect(lexer.TokRParen); !ok {
			return nil
		}
	} else {
		count := p.parseExpr()
		if count == nil {
			return nil
		}
		loop.Count = count
	}

	body := p.parseBlock()
	if body == nil {
		return nil
	}
	loop.Body = body
	loop.Span = p.spanFrom(start.Span)
	return loop
}

func (p *parser) parseWhile() *ast.WhileLoop {
	start := p.advance() // consume 'while'
	cond := p.parseCondition()
	if cond == nil {
		return nil
	}
	body := p.parseBlock()
	if body == nil {
		return nil
	}
	return &ast.WhileLoop{
		Span: p.spanFrom(start.Span),
		Cond: cond,
		Body: body,
	}
}

func (p *parser) parseFnDecl() *ast.FnDecl {
	start := p.advance() // consume 'function'
	nameTok, ok := p.expect(lexer.TokIdent)
	if !ok {
		return nil
	}

	if _, ok := p.expect(lexer.TokLParen); !ok {
		return nil
	}
	var params []*ast.Param
	for p.peek() != lexer.TokRParen && p.peek() != lexer.TokEOF {
		paramTok, ok := p.expect(lexer.TokIdent)
		if !ok {
			return nil
		}
		param := &ast.Param{Name: paramTok.Value}
		if p.peek() == lexer.TokEquals {
			p.advance()
			def := p.parseLiteral()
			if def == nil {
				return nil
			}
			param.Default = def
		}
		param.Span = p.spanFrom(paramTok.Span)
		params = append(params, param)
		if p.peek() != lexer.TokComma {
			break
		}
		p.advance()
	}
	if _, ok := p.expect(lexer.TokRParen); !ok {
		return nil
	}

	body := p.parseBlock()
	if body == nil {
		return nil
	}

	return &ast.FnDecl{
		Span:   p.spanFrom(start.Span),
		Name:   nameTok.Value,
		Params: params,
		Body:   body,
	}
}

// parseLiteral parses a parameter default: an optionally negated number, a
// string, or a boolean.
func (p *parser) parseLiteral() ast.Expr {
	tok := p.current()
	switch tok.Type {
	case lexer.TokMinus:
		p.advance()
		numTok, ok := p.expect(lexer.TokNumber)
		if !ok {
			return nil
		}
		val, _ := strconv.ParseFloat(numTok.Value, 64)
		return &ast.NumberLiteral{Span: p.spanFrom(tok.Span), Value: -val, Text: "-" + numTok.Value}
	case lexer.TokNumber:
		p.advance()
		val, _ := strconv.ParseFloat(tok.Value, 64)
		return &ast.NumberLiteral{Span: tok.Span, Value: val, Text: tok.Value}
	case lexer.TokString:
		p.advance()
		return &ast.StringLiteral{Span: tok.Span, Value: tok.Value}
	case lexer.TokTrue, lexer.TokFalse:
		p.advance()
		return &ast.BoolLiteral{Span: tok.Span, Value: tok.Type == lexer.TokTrue}
	default:
		p.addError(fmt.Sprintf("default value must be a literal, got %s", describe(tok)), &tok.Span)
		return nil
	}
}

func (p *parser) parseReturn() *ast.ReturnStmt {
	start := p.advance() // consume 'return'
	stmt := &ast.ReturnStmt{}
	// A value must start on the same line; otherwise this is a bare return.
	if p.current().Span.StartLine == start.Span.StartLine && startsTerm(p.peek()) {
		value := p.parseExpr()
		if value == nil {
			return nil
		}
		stmt.Value = value
	}
	stmt.Span = p.spanFrom(start.Span)
	return stmt
}

func (p *parser) parsePrint() *ast.PrintStmt {
	start := p.advance() // consume 'print'
	stmt := &ast.PrintStmt{}
	if p.peek() == lexer.TokString && !isArithOp(p.peekAt(1).Type) {
		text := p.advance().Value
		stmt.Text = &text
	} else {
		value := p.parseExpr()
		if value == nil {
			return nil
		}
		stmt.Value = value
	}
	stmt.Span = p.spanFrom(start.Span)
	return stmt
}

// --- Shapes and transformations ---

func (p *parser) parseShape(kind ast.ShapeKind) *ast.ShapeStmt {
	start := p.advance() // consume shape word
	nameTok := p.advance()
	stmt := &ast.ShapeStmt{Shape: kind, Name: nameTok.Value}

	switch kind {
	case ast.ShapeTriangle:
		for i := 0; i < 3; i++ {
			if i > 0 && p.peek() == lexer.TokComma {
				p.advance()
			}
			pt := p.parsePoint()
			if pt == nil {
				return nil
			}
			stmt.Points = append(stmt.Points, pt)
		}

	case ast.ShapePolygon:
		pt := p.parsePoint()
		if pt == nil {
			return nil
		}
		stmt.Points = append(stmt.Points, pt)
		for p.peek() == lexer.TokComma || p.peek() == lexer.TokLParen {
			if p.peek() == lexer.TokComma {
				p.advance()
			}
			pt := p.parsePoint()
			if pt == nil {
				return nil
			}
			stmt.Points = append(stmt.Points, pt)
		}

	case ast.ShapeCircle:
		if !p.expectWord("center") {
			return nil
		}
		if stmt.Center = p.parsePoint(); stmt.Center == nil {
			return nil
		}
		if !p.expectWord("radius") {
			return nil
		}
		if stmt.Radius = p.parseExpr(); stmt.Radius == nil {
			return nil
		}

	case ast.ShapeRectangle:
		if p.atWord("at") {
			p.advance()
		}
		if stmt.TopLeft = p.parsePoint(); stmt.TopLeft == nil {
			return nil
		}
		if !p.expectWord("width") {
			return nil
		}
		if stmt.Width = p.parseExpr(); stmt.Width == nil {
			return nil
		}
		if !p.expectWord("height") {
			return nil
		}
		if stmt.Height = p.parseExpr(); stmt.Height == nil {
			return nil
		}
	}

	stmt.Draw = p.acceptDraw()
	stmt.Span = p.spanFrom(start.Span)
	return stmt
}

func (p *parser) parseTransform(op ast.TransformOp) *ast.TransformStmt {
	start := p.advance() // consume transform word
	nameTok := p.advance()
	stmt := &ast.TransformStmt{Op: op, Name: nameTok.Value}

	if op == ast.TransformReflect && (p.atWord("over") || p.atWord("across")) {
		p.advance()
	} else if !p.expectWord("by") {
		return nil
	}

	switch op {
	case ast.TransformRotate, ast.TransformScale:
		if stmt.Amount = p.parseExpr(); stmt.Amount == nil {
			return nil
		}
	case ast.TransformTranslate:
		if stmt.Offset = p.parsePoint(); stmt.Offset == nil {
			return nil
		}
	case ast.TransformReflect:
		if stmt.Axis = p.parseAxis(); stmt.Axis == nil {
			return nil
		}
	}

	stmt.Draw = p.acceptDraw()
	stmt.Span = p.spanFrom(start.Span)
	return stmt
}

func (p *parser) parseAxis() *ast.Axis {
	tok := p.current()
	if tok.Type == lexer.TokLParen {
		pt := p.parsePoint()
		if pt == nil {
			return nil
		}
		return &ast.Axis{Span: pt.Span, Mirror: ast.AxisPoint, Point: pt}
	}
	if tok.Type != lexer.TokIdent {
		p.addError(fmt.Sprintf("expected axis (x-axis, y-axis, origin or a point), got %s", describe(tok)), &tok.Span)
		return nil
	}

	// "x-axis" arrives as three tokens: x, '-', axis.
	if (tok.Value == "x" || tok.Value == "y") && p.peekAt(1).Type == lexer.TokMinus &&
		p.peekAt(2).Type == lexer.TokIdent && p.peekAt(2).Value == "axis" {
		p.advance()
		p.advance()
		p.advance()
		mirror := ast.AxisX
		if tok.Value == "y" {
			mirror = ast.AxisY
		}
		return &ast.Axis{Span: p.spanFrom(tok.Span), Mirror: mirror}
	}

	switch tok.Value {
	case "xaxis", "x_axis":
		p.advance()
		return &ast.Axis{Span: tok.Span, Mirror: ast.AxisX}
	case "yaxis", "y_axis":
		p.advance()
		return &ast.Axis{Span: tok.Span, Mirror: ast.AxisY}
	case "origin":
		p.advance()
		return &ast.Axis{Span: tok.Span, Mirror: ast.AxisOrigin}
	}
	p.addError(fmt.Sprintf("unknown axis '%s'", tok.Value), &tok.Span)
	return nil
}

func (p *parser) parseFeature(feature ast.FeatureKind) *ast.FeatureStmt {
	start := p.advance() // consume feature word
	nameTok := p.advance()
	if p.atWord("at") {
		p.advance()
	} else if !p.expectWord("from") {
		return nil
	}
	from := p.parsePoint()
	if from == nil {
		return nil
	}
	stmt := &ast.FeatureStmt{Feature: feature, Name: nameTok.Value, From: from}
	stmt.Draw = p.acceptDraw()
	stmt.Span = p.spanFrom(start.Span)
	return stmt
}

// acceptDraw consumes a trailing 'draw' unless it begins the next statement.
func (p *parser) acceptDraw() bool {
	if !p.atWord("draw") {
		return false
	}
	switch p.peekAt(1).Type {
	case lexer.TokEquals, lexer.TokLParen:
		return false
	}
	p.advance()
	return true
}

func (p *parser) parsePoint() *ast.PointExpr {
	start, ok := p.expect(lexer.TokLParen)
	if !ok {
		return nil
	}
	x := p.parseExpr()
	if x == nil {
		return nil
	}
	if _, ok := p.expect(lexer.TokComma); !ok {
		return nil
	}
	y := p.parseExpr()
	if y == nil {
		return nil
	}
	if _, ok := p.expect(lexer.TokRParen); !ok {
		return nil
	}
	return &ast.PointExpr{Span: p.spanFrom(start.Span), X: x, Y: y}
}

// --- Block ---

func (p *parser) parseBlock() []ast.Stmt {
	if _, ok := p.expect(lexer.TokLBrace); !ok {
		return nil
	}
	stmts := []ast.Stmt{}
	for {
		for p.peek() == lexer.TokSemicolon {
			p.advance()
		}
		if p.peek() == lexer.TokRBrace || p.peek() == lexer.TokEOF {
			break
		}
		stmt := p.parseStmt()
		if len(p.diags) > 0 {
			return nil
		}
		stmts = append(stmts, stmt)
	}
	if _, ok := p.expect(lexer.TokRBrace); !ok {
		return nil
	}
	return stmts
}

// --- Expressions ---

func isArithOp(t lexer.TokenType) bool {
	switch t {
	case lexer.TokPlus, lexer.TokMinus, lexer.TokStar, lexer.TokSlash:
		return true
	}
	return false
}

func startsTerm(t lexer.TokenType) bool {
	switch t {
	case lexer.TokNumber, lexer.TokString, lexer.TokIdent, lexer.TokTrue, lexer.TokFalse,
		lexer.TokLParen, lexer.TokMinus:
		return true
	}
	return false
}

// parseExpr parses a flat chain of terms. There is no precedence between the
// four operators: the evaluator folds them in source order.
func (p *parser) parseExpr() ast.Expr {
	first := p.parseTerm()
	if first == nil {
		return nil
	}
	if !isArithOp(p.peek()) {
		return first
	}

	flat := &ast.FlatExpr{Terms: []ast.Expr{first}}
	for isArithOp(p.peek()) {
		opTok := p.advance()
		term := p.parseTerm()
		if term == nil {
			return nil
		}
		flat.Ops = append(flat.Ops, ast.BinaryOp(opTok.Value))
		flat.Terms = append(flat.Terms, term)
	}
	flat.Span = p.spanFrom(first.NodeSpan())
	return flat
}

func (p *parser) parseTerm() ast.Expr {
	tok := p.current()
	switch tok.Type {
	case lexer.TokNumber:
		p.advance()
		val, _ := strconv.ParseFloat(tok.Value, 64)
		return &ast.NumberLiteral{Span: tok.Span, Value: val, Text: tok.Value}

	case lexer.TokString:
		p.advance()
		return &ast.StringLiteral{Span: tok.Span, Value: tok.Value}

	case lexer.TokTrue, lexer.TokFalse:
		p.advance()
		return &ast.BoolLiteral{Span: tok.Span, Value: tok.Type == lexer.TokTrue}

	case lexer.TokIdent:
		if p.peekAt(1).Type == lexer.TokLParen {
			call := p.parseCall()
			if call == nil {
				return nil
			}
			return call
		}
		p.advance()
		return &ast.Ident{Span: tok.Span, Name: tok.Value}

	case lexer.TokLParen:
		p.advance()
		inner := p.parseExpr()
		if inner == nil {
			return nil
		}
		if _, ok := p.expect(lexer.TokRParen); !ok {
			return nil
		}
		return &ast.ParenExpr{Span: p.spanFrom(tok.Span), Inner: inner}

	case lexer.TokMinus:
		p.advance()
		operand := p.parseTerm()
		if operand == nil {
			return nil
		}
		return &ast.NegExpr{Span: p.spanFrom(tok.Span), Operand: operand}

	default:
		p.addError(fmt.Sprintf("unexpected %s in expression", describe(tok)), &tok.Span)
		return nil
	}
}

func (p *parser) parseCall() *ast.CallExpr {
	nameTok := p.advance()
	p.advance() // consume '('
	var args []ast.Expr
	for p.peek() != lexer.TokRParen && p.peek() != lexer.TokEOF {
		arg := p.parseExpr()
		if arg == nil {
			return nil
		}
		args = append(args, arg)
		if p.peek() != lexer.TokComma {
			break
		}
		p.advance()
	}
	if _, ok := p.expect(lexer.TokRParen); !ok {
		return nil
	}
	return &ast.CallExpr{
		Span: p.spanFrom(nameTok.Span),
		Name: nameTok.Value,
		Args: args,
	}
}
