// Package ast defines the shape DSL syntax tree.
package ast

// Span represents a source location range.
type Span struct {
	File      string `json:"file"`
	StartLine int    `json:"startLine"`
	StartCol  int    `json:"startCol"`
	EndLine   int    `json:"endLine"`
	EndCol    int    `json:"endCol"`
}

// Node is the interface implemented by all AST nodes.
type Node interface {
	Kind() string
	NodeSpan() Span
}

// BinaryOp is an arithmetic operator inside a flat expression.
type BinaryOp string

const (
	OpAdd BinaryOp = "+"
	OpSub BinaryOp = "-"
	OpMul BinaryOp = "*"
	OpDiv BinaryOp = "/"
)

// CompareOp is the comparator of a condition.
type CompareOp string

const (
	OpEq   CompareOp = "=="
	OpNeq  CompareOp = "!="
	OpLt   CompareOp = "<"
	OpGt   CompareOp = ">"
	OpLtEq CompareOp = "<="
	OpGtEq CompareOp = ">="
)

// ShapeKind names one of the four shape variants.
type ShapeKind string

const (
	ShapeTriangle  ShapeKind = "triangle"
	ShapeCircle    ShapeKind = "circle"
	ShapeRectangle ShapeKind = "rectangle"
	ShapePolygon   ShapeKind = "polygon"
)

// TransformOp names a shape transformation.
type TransformOp string

const (
	TransformRotate    TransformOp = "rotate"
	TransformScale     TransformOp = "scale"
	TransformTranslate TransformOp = "translate"
	TransformReflect   TransformOp = "reflect"
)

// FeatureKind names a triangle construction.
type FeatureKind string

const (
	FeatureMedian   FeatureKind = "median"
	FeatureBisector FeatureKind = "bisector"
	FeatureAltitude FeatureKind = "altitude"
)

// AxisKind selects the mirror of a reflection.
type AxisKind string

const (
	AxisX      AxisKind = "x-axis"
	AxisY      AxisKind = "y-axis"
	AxisOrigin AxisKind = "origin"
	AxisPoint  AxisKind = "point"
)

// --- Expr is the interface for all expression nodes ---

type Expr interface {
	Node
	exprNode() // sealed marker
}

// --- Stmt is the interface for all statement nodes ---

type Stmt interface {
	Node
	stmtNode() // sealed marker
}

// --- Literal Expressions ---

type NumberLiteral struct {
	Span  Span
	Value float64
	Text  string // source spelling, kept for the formatter
}

func (n *NumberLiteral) Kind() string   { return "NumberLiteral" }
func (n *NumberLiteral) NodeSpan() Span { return n.Span }
func (n *NumberLiteral) exprNode()      {}

type StringLiteral struct {
	Span  Span
	Value string
}

func (n *StringLiteral) Kind() string   { return "StringLiteral" }
func (n *StringLiteral) NodeSpan() Span { return n.Span }
func (n *StringLiteral) exprNode()      {}

type BoolLiteral struct {
	Span  Span
	Value bool
}

func (n *BoolLiteral) Kind() string   { return "BoolLiteral" }
func (n *BoolLiteral) NodeSpan() Span { return n.Span }
func (n *BoolLiteral) exprNode()      {}

// --- Identifiers and calls ---

type Ident struct {
	Span Span
	Name string
}

func (n *Ident) Kind() string   { return "Ident" }
func (n *Ident) NodeSpan() Span { return n.Span }
func (n *Ident) exprNode()      {}

type CallExpr struct {
	Span Span
	Name string
	Args []Expr
}

func (n *CallExpr) Kind() string   { return "CallExpr" }
func (n *CallExpr) NodeSpan() Span { return n.Span }
func (n *CallExpr) exprNode()      {}

// --- Arithmetic ---

// FlatExpr is a sequence of terms joined by operators. It is folded strictly
// left to right: len(Ops) == len(Terms)-1.
type FlatExpr struct {
	Span  Span
	Terms []Expr
	Ops   []BinaryOp
}

func (n *FlatExpr) Kind() string   { return "FlatExpr" }
func (n *FlatExpr) NodeSpan() Span { return n.Span }
func (n *FlatExpr) exprNode()      {}

type ParenExpr struct {
	Span  Span
	Inner Expr
}

func (n *ParenExpr) Kind() string   { return "ParenExpr" }
func (n *ParenExpr) NodeSpan() Span { return n.Span }
func (n *ParenExpr) exprNode()      {}

type NegExpr struct {
	Span    Span
	Operand Expr
}

func (n *NegExpr) Kind() string   { return "NegExpr" }
func (n *NegExpr) NodeSpan() Span { return n.Span }
func (n *NegExpr) exprNode()      {}

// --- Geometry helpers (not expressions) ---

type PointExpr struct {
	Span Span
	X    Expr
	Y    Expr
}

func (n *PointExpr) Kind() string   { return "PointExpr" }
func (n *PointExpr) NodeSpan() Span { return n.Span }

type Condition struct {
	Span  Span
	Left  Expr
	Op    CompareOp
	Right Expr
}

func (n *Condition) Kind() string   { return "Condition" }
func (n *Condition) NodeSpan() Span { return n.Span }

type Axis struct {
	Span   Span
	Mirror AxisKind
	Point  *PointExpr // set when Mirror == AxisPoint
}

func (n *Axis) Kind() string   { return "Axis" }
func (n *Axis) NodeSpan() Span { return n.Span }

// --- Statements ---

type Assignment struct {
	Span  Span
	Name  string
	Value Expr
}

func (n *Assignment) Kind() string   { return "Assignment" }
func (n *Assignment) NodeSpan() Span { return n.Span }
func (n *Assignment) stmtNode()      {}

type ElseIf struct {
	Span Span
	Cond *Condition
	Body []Stmt
}

func (n *ElseIf) Kind() string   { return "ElseIf" }
func (n *ElseIf) NodeSpan() Span { return n.Span }

type Conditional struct {
	Span    Span
	Cond    *Condition
	Then    []Stmt
	ElseIfs []*ElseIf
	Else    []Stmt // nil when there is no else block
	HasElse bool
}

func (n *Conditional) Kind() string   { return "Conditional" }
func (n *Conditional) NodeSpan() Span { return n.Span }
func (n *Conditional) stmtNode()      {}

// ForLoop covers both `for v in N` (Count set) and `for v in range(a, b)`
// (RangeEnd set, RangeStart optional).
type ForLoop struct {
	Span       Span
	Var        string
	Count      Expr
	RangeStart Expr
	RangeEnd   Expr
	Body       []Stmt
}

func (n *ForLoop) Kind() string   { return "ForLoop" }
func (n *ForLoop) NodeSpan() Span { return n.Span }
func (n *ForLoop) stmtNode()      {}

// IsRange reports whether the loop uses the range(...) form.
func (n *ForLoop) IsRange() bool { return n.RangeEnd != nil }

type WhileLoop struct {
	Span Span
	Cond *Condition
	Body []Stmt
}

func (n *WhileLoop) Kind() string   { return "WhileLoop" }
func (n *WhileLoop) NodeSpan() Span { return n.Span }
func (n *WhileLoop) stmtNode()      {}

type Param struct {
	Span    Span
	Name    string
	Default Expr // literal, or nil
}

func (n *Param) Kind() string   { return "Param" }
func (n *Param) NodeSpan() Span { return n.Span }

type FnDecl struct {
	Span   Span
	Name   string
	Params []*Param
	Body   []Stmt
}

func (n *FnDecl) Kind() string   { return "FnDecl" }
func (n *FnDecl) NodeSpan() Span { return n.Span }
func (n *FnDecl) stmtNode()      {}

type CallStmt struct {
	Span Span
	Call *CallExpr
}

func (n *CallStmt) Kind() string   { return "CallStmt" }
func (n *CallStmt) NodeSpan() Span { return n.Span }
func (n *CallStmt) stmtNode()      {}

type ReturnStmt struct {
	Span  Span
	Value Expr // nil for a bare return
}

func (n *ReturnStmt) Kind() string   { return "ReturnStmt" }
func (n *ReturnStmt) NodeSpan() Span { return n.Span }
func (n *ReturnStmt) stmtNode()      {}

// PrintStmt prints either a verbatim string literal (Text) or the value of Value.
type PrintStmt struct {
	Span  Span
	Text  *string
	Value Expr
}

func (n *PrintStmt) Kind() string   { return "PrintStmt" }
func (n *PrintStmt) NodeSpan() Span { return n.Span }
func (n *PrintStmt) stmtNode()      {}

// ShapeStmt defines (or redefines) a named shape. Which geometry fields are
// set depends on Shape.
type ShapeStmt struct {
	Span    Span
	Shape   ShapeKind
	Name    string
	Points  []*PointExpr // triangle, polygon
	Center  *PointExpr   // circle
	Radius  Expr         // circle
	TopLeft *PointExpr   // rectangle
	Width   Expr         // rectangle
	Height  Expr         // rectangle
	Draw    bool
}

func (n *ShapeStmt) Kind() string   { return "ShapeStmt" }
func (n *ShapeStmt) NodeSpan() Span { return n.Span }
func (n *ShapeStmt) stmtNode()      {}

type TransformStmt struct {
	Span   Span
	Op     TransformOp
	Name   string
	Amount Expr       // rotate angle in degrees, scale factor
	Offset *PointExpr // translate
	Axis   *Axis      // reflect
	Draw   bool
}

func (n *TransformStmt) Kind() string   { return "TransformStmt" }
func (n *TransformStmt) NodeSpan() Span { return n.Span }
func (n *TransformStmt) stmtNode()      {}

type FeatureStmt struct {
	Span    Span
	Feature FeatureKind
	Name    string
	From    *PointExpr
	Draw    bool
}

func (n *FeatureStmt) Kind() string   { return "FeatureStmt" }
func (n *FeatureStmt) NodeSpan() Span { return n.Span }
func (n *FeatureStmt) stmtNode()      {}

// --- Program ---

type Program struct {
	Span       Span
	Statements []Stmt
}

func (n *Program) Kind() string   { return "Program" }
func (n *Program) NodeSpan() Span { return n.Span }
