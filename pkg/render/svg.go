package render

import (
	"bufio"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/dmitrycvs/C-DSL/pkg/geometry"
)

// Canvas sizes the SVG output.
type Canvas struct {
	Width   float64
	Height  float64
	Padding float64
}

// DefaultCanvas is used when a Canvas field is zero.
var DefaultCanvas = Canvas{Width: 640, Height: 480, Padding: 20}

// SVG buffers draw commands and writes a single SVG document on Flush. The
// view is fitted to the drawn shapes, with the y axis pointing up.
type SVG struct {
	rec    Recorder
	w      io.Writer
	canvas Canvas
}

// NewSVG creates an SVG renderer writing to w.
func NewSVG(w io.Writer, canvas Canvas) *SVG {
	if canvas.Width <= 0 {
		canvas.Width = DefaultCanvas.Width
	}
	if canvas.Height <= 0 {
		canvas.Height = DefaultCanvas.Height
	}
	if canvas.Padding < 0 {
		canvas.Padding = 0
	}
	return &SVG{w: w, canvas: canvas}
}

func (s *SVG) DrawTriangle(name string, points [3]geometry.Point) { s.rec.DrawTriangle(name, points) }
func (s *SVG) DrawCircle(name string, center geometry.Point, radius float64) {
	s.rec.DrawCircle(name, center, radius)
}
func (s *SVG) DrawRectangle(name string, topLeft geometry.Point, width, height float64) {
	s.rec.DrawRectangle(name, topLeft, width, height)
}
func (s *SVG) DrawPolygon(name string, vertices []geometry.Point) { s.rec.DrawPolygon(name, vertices) }
func (s *SVG) DrawSegment(from, to geometry.Point)                { s.rec.DrawSegment(from, to) }

// viewport maps drawing coordinates onto the canvas.
type viewport struct {
	lo     geometry.Point
	scale  float64
	canvas Canvas
}

func (v viewport) point(p geometry.Point) (x, y float64) {
	x = v.canvas.Padding + (p.X-v.lo.X)*v.scale
	y = v.canvas.Height - v.canvas.Padding - (p.Y-v.lo.Y)*v.scale
	return x, y
}

func (s *SVG) fit() viewport {
	var lo, hi geometry.Point
	first := true
	grow := func(a, b geometry.Point) {
		if first {
			lo, hi, first = a, b, false
			return
		}
		lo.X, lo.Y = min(lo.X, a.X), min(lo.Y, a.Y)
		hi.X, hi.Y = max(hi.X, b.X), max(hi.Y, b.Y)
	}
	for _, c := range s.rec.Commands {
		if c.Kind == CmdSegment {
			grow(c.Points[0], c.Points[0])
			grow(c.Points[1], c.Points[1])
			continue
		}
		if sh, ok := c.Shape(); ok {
			grow(geometry.Bounds(sh))
		}
	}

	innerW := s.canvas.Width - 2*s.canvas.Padding
	innerH := s.canvas.Height - 2*s.canvas.Padding
	dx, dy := hi.X-lo.X, hi.Y-lo.Y
	scale := 1.0
	switch {
	case dx > 0 && dy > 0:
		scale = min(innerW/dx, innerH/dy)
	case dx > 0:
		scale = innerW / dx
	case dy > 0:
		scale = innerH / dy
	}
	return viewport{lo: lo, scale: scale, canvas: s.canvas}
}

func svgNum(v float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.3f", v), "0"), ".")
}

func (v viewport) pointList(pts []geometry.Point) string {
	parts := make([]string, len(pts))
	for i, p := range pts {
		x, y := v.point(p)
		parts[i] = svgNum(x) + "," + svgNum(y)
	}
	return strings.Join(parts, " ")
}

// Flush writes the document.
func (s *SVG) Flush() error {
	bw := bufio.NewWriter(s.w)
	v := s.fit()

	fmt.Fprintf(bw, `<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s">`+"\n",
		svgNum(s.canvas.Width), svgNum(s.canvas.Height), svgNum(s.canvas.Width), svgNum(s.canvas.Height))
	fmt.Fprintf(bw, `  <rect width="100%%" height="100%%" fill="white"/>`+"\n")

	const style = `fill="steelblue" fill-opacity="0.3" stroke="steelblue" stroke-width="1.5"`
	for _, c := range s.rec.Commands {
		switch c.Kind {
		case CmdTriangle, CmdPolygon:
			fmt.Fprintf(bw, `  <polygon points="%s" %s/>`+"\n", v.pointList(c.Points), style)
		case CmdRectangle:
			sh, _ := c.Shape()
			fmt.Fprintf(bw, `  <polygon points="%s" %s/>`+"\n", v.pointList(sh.Vertices()), style)
		case CmdCircle:
			x, y := v.point(*c.Center)
			r := c.Radius * v.scale
			if r < 0 {
				r = -r
			}
			fmt.Fprintf(bw, `  <circle cx="%s" cy="%s" r="%s" %s/>`+"\n", svgNum(x), svgNum(y), svgNum(r), style)
		case CmdSegment:
			x1, y1 := v.point(c.Points[0])
			x2, y2 := v.point(c.Points[1])
			fmt.Fprintf(bw, `  <line x1="%s" y1="%s" x2="%s" y2="%s" stroke="crimson" stroke-width="1.5" stroke-dasharray="4 2"/>`+"\n",
				svgNum(x1), svgNum(y1), svgNum(x2), svgNum(y2))
		}
		if c.Name != "" {
			anchor := c.Points
			if c.Kind == CmdCircle {
				anchor = []geometry.Point{*c.Center}
			}
			x, y := v.point(anchor[0])
			fmt.Fprintf(bw, `  <text x="%s" y="%s" font-size="12" fill="crimson" font-weight="bold">%s</text>`+"\n",
				svgNum(x), svgNum(y), html.EscapeString(c.Name))
		}
	}
	fmt.Fprintln(bw, "</svg>")
	return bw.Flush()
}
