// Package render defines the draw-command sink used by the interpreter and
// the renderers shipped with the CLI.
package render

import (
	"github.com/dmitrycvs/C-DSL/pkg/geometry"
)

// Renderer consumes draw commands. Calls are synchronous and cannot fail;
// renderers that write to a stream report I/O errors from Flush.
type Renderer interface {
	DrawTriangle(name string, points [3]geometry.Point)
	DrawCircle(name string, center geometry.Point, radius float64)
	DrawRectangle(name string, topLeft geometry.Point, width, height float64)
	DrawPolygon(name string, vertices []geometry.Point)
	DrawSegment(from, to geometry.Point)
}

// Flusher is implemented by renderers that buffer output.
type Flusher interface {
	Flush() error
}

// Shape sends the draw command matching the shape's kind.
func Shape(r Renderer, name string, s geometry.Shape) {
	switch v := s.(type) {
	case geometry.Triangle:
		r.DrawTriangle(name, v.Points)
	case geometry.Circle:
		r.DrawCircle(name, v.Center, v.Radius)
	case geometry.Rectangle:
		r.DrawRectangle(name, v.TopLeft, v.Width, v.Height)
	case geometry.Polygon:
		r.DrawPolygon(name, v.Points)
	}
}

// Flush flushes r if it buffers output.
func Flush(r Renderer) error {
	if f, ok := r.(Flusher); ok {
		return f.Flush()
	}
	return nil
}

// multi fans every command out to several renderers.
type multi []Renderer

// Multi returns a renderer that forwards to each of rs in order.
func Multi(rs ...Renderer) Renderer {
	return multi(rs)
}

func (m multi) DrawTriangle(name string, points [3]geometry.Point) {
	for _, r := range m {
		r.DrawTriangle(name, points)
	}
}

func (m multi) DrawCircle(name string, center geometry.Point, radius float64) {
	for _, r := range m {
		r.DrawCircle(name, center, radius)
	}
}

func (m multi) DrawRectangle(name string, topLeft geometry.Point, width, height float64) {
	for _, r := range m {
		r.DrawRectangle(name, topLeft, width, height)
	}
}

func (m multi) DrawPolygon(name string, vertices []geometry.Point) {
	for _, r := range m {
		r.DrawPolygon(name, vertices)
	}
}

func (m multi) DrawSegment(from, to geometry.Point) {
	for _, r := range m {
		r.DrawSegment(from, to)
	}
}

// Flush flushes every member and returns the first error.
func (m multi) Flush() error {
	var first error
	for _, r := range m {
		if err := Flush(r); err != nil && first == nil {
			first = err
		}
	}
	return first
}
