// Package help holds the CLI reference text.
package help

import (
	"fmt"
	"strings"

	"github.com/dmitrycvs/C-DSL/pkg/stdlib"
)

// QUICKREF is printed by `shapes help` with no topic.
const QUICKREF = `shapes - a small language for drawing geometric shapes

Usage:
  shapes run <file> [--format text|json|svg] [--out <path>] [--trace <file.jsonl>]
  shapes check <file>
  shapes fmt <file> [--write]
  shapes trace <file.jsonl> [--json|--text]
  shapes repl
  shapes help [topic] [--index]

Global flags: --config <path>  --log-level debug|info|warn|error  --pretty  --no-pretty

Topics: syntax, shapes, transforms, features, builtins, budget, diagnostics, config, examples
`

// Topics maps a topic name to its text.
var Topics = map[string]string{
	"syntax": `Statements end at a newline or ';'. Comments start with '#'.

  x = 1 + 2              assignment
  print "text"           print a string or an expression
  if (a == b) { } else if (a < b) { } else { }
  for i in 3 { }         i = 0, 1, 2
  for i in range(1, 4) { }
  while (k < 3) { }
  function f(a, b = 2) { return a + b }
  f(1)

Operators + - * / are applied left to right with no precedence:
2 + 3 * 4 is 20. Use parentheses to group. '+' joins text when either side
is not a number. Comparisons: == != < > <= >=.
`,
	"shapes": `  triangle T (0, 0), (30, 0), (15, 20)
  circle C center (50, 50) radius 15
  rectangle R at (0, 0) width 4 height 2
  polygon P (0, 0), (4, 0), (4, 4), (0, 4)

A trailing 'draw' sends the shape to the renderer. Defining a name again
replaces the earlier shape.
`,
	"transforms": `  rotate T by 45              degrees, about the centroid
  scale T by 2                about the centroid; circles scale the radius
  translate T by (10, -5)
  reflect T by x-axis         also y-axis, origin or a point (x, y)

Rotating a rectangle turns it into a polygon. A trailing 'draw' draws the
result.
`,
	"features": `Triangle constructions start from the vertex nearest the given point:

  median T from (0, 0)        to the midpoint of the opposite side
  bisector T from (0, 0)      along the angle bisector
  altitude T from (0, 0)      to the foot of the perpendicular

The segment is always drawn. 'draw' also draws the triangle first. On other
shapes the statement is skipped with W_UNSUPPORTED_SHAPE_OP.
`,
	"builtins": `Built-in functions take precedence over user functions of the same name.
Angles are in degrees. See 'shapes help builtins --index'.
`,
	"budget": `Limits come from the config file:

  budget:
    timeMs: 1000           wall clock for the whole run
    maxIterations: 10000   loop iterations, for and while combined
    maxCallDepth: 1000     nested user function calls

Exceeding one stops the run with E_BUDGET or E_CALL_DEPTH.
`,
	"diagnostics": `Errors stop the program. Warnings are reported and execution continues.

  E_LEX E_PARSE            the source does not parse           exit 2
  E_DUP_PARAM              repeated parameter name             exit 2
  E_POLYGON_VERTICES       polygon with fewer than 3 points    exit 2
  E_ARITH E_TYPE E_ARGS    bad operands or arguments           exit 3
  E_BUDGET E_CALL_DEPTH    a limit was exceeded                exit 3
  E_CANCELLED              the run was interrupted             exit 3
  E_IO E_CONFIG            file or configuration problems      exit 4
  W_UNKNOWN_FN             call to an undefined function, returns null
  W_UNKNOWN_SHAPE          transform of a name never defined
  W_UNSUPPORTED_SHAPE_OP   operation not valid for the shape
`,
	"config": `Configuration is read from --config, else ./.shapes.yaml, else
~/.shapes/config.yaml. Unknown keys are rejected.

  output:
    format: svg            text, json or svg
    path: out.svg
    pretty: true
  canvas: {width: 640, height: 480, padding: 20}
  log: {level: warn}
`,
	"examples": `  for i in range(1, 5) {
    circle Ci center (i * 10, 20) radius i * 2 draw
  }

  function createTriangle(x, y, size) {
    triangle T (x, y), (x + size, y), (x + size / 2, y + size) draw
    return T
  }
  createTriangle(0, 0, 30)
  median T from (0, 0) draw
`,
}

// TopicList is the display order of Topics.
var TopicList = []string{"syntax", "shapes", "transforms", "features", "builtins", "budget", "diagnostics", "config", "examples"}

// MatchTopic finds a topic by exact name or unique prefix.
func MatchTopic(input string) (string, string, error) {
	input = strings.ToLower(strings.TrimSpace(input))
	if content, ok := Topics[input]; ok {
		return input, content, nil
	}
	var matches []string
	for _, name := range TopicList {
		if input != "" && strings.HasPrefix(name, input) {
			matches = append(matches, name)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], Topics[matches[0]], nil
	case 0:
		return "", "", fmt.Errorf("unknown help topic: %s", input)
	default:
		return "", "", fmt.Errorf("ambiguous help topic %q: %s", input, strings.Join(matches, ", "))
	}
}

// BuiltinsIndex lists the registered built-in functions with their arity.
func BuiltinsIndex(reg *stdlib.Registry) string {
	names := reg.Names()
	var b strings.Builder
	for _, name := range names {
		fn := reg.Get(name)
		params := make([]string, fn.Arity)
		for i := range params {
			params[i] = string(rune('a' + i))
		}
		fmt.Fprintf(&b, "  %s(%s)\n", name, strings.Join(params, ", "))
	}
	fmt.Fprintf(&b, "Total: %d functions\n", len(names))
	return b.String()
}
