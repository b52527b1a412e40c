package formatter_test

import (
	"testing"

	"github.com/dmitrycvs/C-DSL/pkg/diagnostics"
	"github.com/dmitrycvs/C-DSL/pkg/formatter"
	"github.com/dmitrycvs/C-DSL/pkg/parser"
)

func format(t *testing.T, src string) string {
	t.Helper()
	prog, diags := parser.Parse(src, "test.shapes")
	if len(diags) > 0 {
		t.Fatalf("parse errors in:\n%s\n%s", src, diagnostics.FormatDiagnostics(diags, true))
	}
	return formatter.Format(prog)
}

func TestFormatCanonical(t *testing.T) {
	src := `# draws a row of circles
function row(n,   r = 2) { for i in range(1,n) { circle C center (i*10,20) radius r draw } }
row(5)
if (x=="a") { print "A" } else if (x == "b") { print "B" }
else { print "n=" + x }
while (k<3) { k = k+1 }
rectangle R (0,0) width 4 height 2
reflect R over x-axis draw
translate R by (1, -2)
polygon P (0,0) (4,0) (4,4)
median T at (0, 0) draw
return
`
	want := `function row(n, r = 2) {
  for i in range(1, n) {
    circle C center (i * 10, 20) radius r draw
  }
}
row(5)
if (x == "a") {
  print "A"
} else if (x == "b") {
  print "B"
} else {
  print "n=" + x
}
while (k < 3) {
  k = k + 1
}
rectangle R at (0, 0) width 4 height 2
reflect R by x-axis draw
translate R by (1, -2)
polygon P (0, 0), (4, 0), (4, 4)
median T from (0, 0) draw
return
`
	if got := format(t, src); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestFormatLiterals(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"x = 1.50", "x = 1.5\n"},
		{"x = 007", "x = 7\n"},
		{`s = "say \"hi\"\n"`, `s = "say \"hi\"\n"` + "\n"},
		{"b = true", "b = true\n"},
		{"y = -(a + 1) * 2", "y = -(a + 1) * 2\n"},
		{"z = --a", "z = --a\n"},
		{"function f(a = -3, b = \"t\", c = false) {}", "function f(a = -3, b = \"t\", c = false) {}\n"},
		{"for i in 3 {}", "for i in 3 {}\n"},
		{"for i in range(4) {}", "for i in range(4) {}\n"},
		{"reflect T by (1, 2)", "reflect T by (1, 2)\n"},
		{"reflect T by yaxis", "reflect T by y-axis\n"},
		{"rotate T by 45 + a", "rotate T by 45 + a\n"},
		{"return sqrt(2) + f()", "return sqrt(2) + f()\n"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			if got := format(t, tt.src); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatIdempotent(t *testing.T) {
	sources := []string{
		"shape = \"circle\"\nif (shape==\"triangle\") { print \"t\" } else if (shape==\"circle\") { print \"Shape is circle\" } else { print \"?\" }",
		"for i in range(1,5) { circle Ci center (i*10,20) radius i*2 draw }",
		"circle C center (50,50) radius 15; translate C by (20,-10)",
		"triangle T (0,0),(30,0),(15,20); reflect T by origin",
		"function createTriangle(x,y,size){ triangle T (x,y),(x+size,y),(x+size/2,y+size) draw; return T } createTriangle(0,0,30)",
		"function f() { if (a < 1) { return } else { while (b != 2) { b = b + 1 } } }",
		"bisector T from (1,1)\naltitude T from (2, 2) draw\nscale T by 0.5 draw",
	}
	for _, src := range sources {
		once := format(t, src)
		twice := format(t, once)
		if once != twice {
			t.Errorf("format is not stable for %q:\nfirst:\n%s\nsecond:\n%s", src, once, twice)
		}
	}
}

func TestHasComments(t *testing.T) {
	tests := map[string]bool{
		"x = 1 # note":          true,
		"# header\nx = 1":       true,
		`print "no # comment"`:  false,
		`print "esc \" # in"`:   false,
		`print "a" # after`:     true,
		"x = 1":                 false,
	}
	for src, want := range tests {
		if got := formatter.HasComments(src); got != want {
			t.Errorf("HasComments(%q) = %v, want %v", src, got, want)
		}
	}
}
