package render

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/dmitrycvs/C-DSL/pkg/geometry"
)

// Text writes one line per draw command:
//
//	draw triangle T (0, 0) (30, 0) (15, 30)
//	draw circle C center (70, 40) radius 15
//	draw segment (0, 0) -> (15, 15)
type Text struct {
	w   *bufio.Writer
	err error
}

// NewText creates a text renderer writing to w. Call Flush when done.
func NewText(w io.Writer) *Text {
	return &Text{w: bufio.NewWriter(w)}
}

// FormatNumber prints integral values without a fraction and everything
// else in the shortest form that round-trips.
func FormatNumber(v float64) string {
	if v == 0 {
		v = 0 // drop the sign of -0
	}
	if math.Abs(v) >= 1e21 {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatPoint renders p as "(x, y)".
func FormatPoint(p geometry.Point) string {
	return "(" + FormatNumber(p.X) + ", " + FormatNumber(p.Y) + ")"
}

func formatPoints(pts []geometry.Point) string {
	parts := make([]string, len(pts))
	for i, p := range pts {
		parts[i] = FormatPoint(p)
	}
	return strings.Join(parts, " ")
}

func (t *Text) line(format string, args ...any) {
	if t.err != nil {
		return
	}
	_, t.err = fmt.Fprintf(t.w, format+"\n", args...)
}

func (t *Text) DrawTriangle(name string, points [3]geometry.Point) {
	t.line("draw triangle %s %s", name, formatPoints(points[:]))
}

func (t *Text) DrawCircle(name string, center geometry.Point, radius float64) {
	t.line("draw circle %s center %s radius %s", name, FormatPoint(center), FormatNumber(radius))
}

func (t *Text) DrawRectangle(name string, topLeft geometry.Point, width, height float64) {
	t.line("draw rectangle %s at %s width %s height %s",
		name, FormatPoint(topLeft), FormatNumber(width), FormatNumber(height))
}

func (t *Text) DrawPolygon(name string, vertices []geometry.Point) {
	t.line("draw polygon %s %s", name, formatPoints(vertices))
}

func (t *Text) DrawSegment(from, to geometry.Point) {
	t.line("draw segment %s -> %s", FormatPoint(from), FormatPoint(to))
}

// Flush writes buffered lines and reports the first write error.
func (t *Text) Flush() error {
	if t.err != nil {
		return t.err
	}
	return t.w.Flush()
}
