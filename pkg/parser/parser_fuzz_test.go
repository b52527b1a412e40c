package parser_test

import (
	"testing"

	"github.com/dmitrycvs/C-DSL/pkg/parser"
)

// FuzzParse feeds random inputs to the parser to catch panics.
// The parser should never panic; it returns diagnostics for invalid input.
func FuzzParse(f *testing.F) {
	seeds := []string{
		// Minimal programs
		`x = 42`,
		`print "hello"`,
		`print "n = " + n`,
		// Arithmetic
		`r = 2 + 3 * 4 - (1 / 2)`,
		`r = -x * -2`,
		// Control flow
		`if (x > 5) { print "big" } else if (x == 5) { print "five" } else { print "small" }`,
		`for i in 3 { print i }`,
		`for i in range(1, 4) { print i }`,
		`while (i < 10) { i = i + 1 }`,
		// Functions
		`function area(w, h = 2) { return w * h }
print area(3)`,
		`function f() { return }`,
		// Shapes
		`triangle A (0,0), (5,0), (3,4) draw`,
		`circle C center (1, 2) radius 3`,
		`rectangle R at (0, 0) width 20 height 10 draw`,
		`polygon P (0,0), (4,0), (4,4), (0,4)`,
		// Transformations
		`rotate A by 90 draw`,
		`scale A by 2`,
		`translate A by (3, -4)`,
		`reflect A over x-axis`,
		`reflect A over (1, 1)`,
		// Features
		`median A from (0, 0) draw`,
		`bisector A from (5, 0)`,
		`altitude A at (3, 4)`,
		// Comments and separators
		`# comment
x = 1; y = 2`,
		// Empty and whitespace
		``,
		`   `,
		// Broken input
		`if (x > 1) {`,
		`triangle A (0,0)`,
		`reflect A over`,
		`print "unterminated`,
		`x = (1 + `,
		`function (a) {}`,
	}

	for _, s := range seeds {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, input string) {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Fatalf("parser.Parse panicked on input %q: %v", input, r)
				}
			}()
			parser.Parse(input, "fuzz.shp")
		}()
	})
}
