// Package geometry holds the shape model and the pure functions that
// transform shapes and construct triangle features.
package geometry

import "math"

// Point is a position in the drawing plane.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p + q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns p - q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Mul scales p by k.
func (p Point) Mul(k float64) Point { return Point{p.X * k, p.Y * k} }

// Dot returns the dot product of p and q.
func (p Point) Dot(q Point) float64 { return p.X*q.X + p.Y*q.Y }

// Len returns the Euclidean length of p.
func (p Point) Len() float64 { return math.Hypot(p.X, p.Y) }

// Midpoint returns the point halfway between p and q.
func Midpoint(p, q Point) Point { return Point{(p.X + q.X) / 2, (p.Y + q.Y) / 2} }

// Kind names a shape variant.
type Kind string

const (
	KindTriangle  Kind = "triangle"
	KindCircle    Kind = "circle"
	KindRectangle Kind = "rectangle"
	KindPolygon   Kind = "polygon"
)

// Shape is one of Triangle, Circle, Rectangle or Polygon.
type Shape interface {
	Kind() Kind
	// Vertices returns the defining points: the corners of a polygonal
	// shape, or the center of a circle.
	Vertices() []Point
	shape()
}

// Triangle is defined by three vertices in drawing order.
type Triangle struct {
	Points [3]Point `json:"points"`
}

func (t Triangle) Kind() Kind        { return KindTriangle }
func (t Triangle) Vertices() []Point { return t.Points[:] }
func (Triangle) shape()              {}

// Circle is a center and a radius.
type Circle struct {
	Center Point   `json:"center"`
	Radius float64 `json:"radius"`
}

func (c Circle) Kind() Kind        { return KindCircle }
func (c Circle) Vertices() []Point { return []Point{c.Center} }
func (Circle) shape()              {}

// Rectangle is axis-aligned and anchored at its top-left corner.
type Rectangle struct {
	TopLeft Point   `json:"topLeft"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
}

func (r Rectangle) Kind() Kind { return KindRectangle }

// Vertices lists the corners clockwise from the top-left one.
func (r Rectangle) Vertices() []Point {
	x, y := r.TopLeft.X, r.TopLeft.Y
	return []Point{
		{x, y},
		{x + r.Width, y},
		{x + r.Width, y + r.Height},
		{x, y + r.Height},
	}
}

// Center returns the middle of the rectangle.
func (r Rectangle) Center() Point {
	return Point{r.TopLeft.X + r.Width/2, r.TopLeft.Y + r.Height/2}
}

func (Rectangle) shape() {}

// Polygon is a closed outline through Points. Rotated rectangles become
// four-point polygons.
type Polygon struct {
	Points []Point `json:"points"`
}

func (p Polygon) Kind() Kind        { return KindPolygon }
func (p Polygon) Vertices() []Point { return p.Points }
func (Polygon) shape()              {}

// Clone returns s with its own copy of any point slice.
func Clone(s Shape) Shape {
	if p, ok := s.(Polygon); ok {
		return Polygon{Points: append([]Point(nil), p.Points...)}
	}
	return s
}

// Centroid is the mean of the shape's defining points.
func Centroid(s Shape) Point {
	return mean(s.Vertices())
}

func mean(pts []Point) Point {
	if len(pts) == 0 {
		return Point{}
	}
	var sum Point
	for _, p := range pts {
		sum = sum.Add(p)
	}
	n := float64(len(pts))
	return Point{sum.X / n, sum.Y / n}
}

// Bounds returns the axis-aligned box enclosing the shape.
func Bounds(s Shape) (lo, hi Point) {
	if c, ok := s.(Circle); ok {
		r := math.Abs(c.Radius)
		return Point{c.Center.X - r, c.Center.Y - r}, Point{c.Center.X + r, c.Center.Y + r}
	}
	return boundsOf(s.Vertices())
}

func boundsOf(pts []Point) (lo, hi Point) {
	if len(pts) == 0 {
		return Point{}, Point{}
	}
	lo, hi = pts[0], pts[0]
	for _, p := range pts[1:] {
		lo.X = min(lo.X, p.X)
		lo.Y = min(lo.Y, p.Y)
		hi.X = max(hi.X, p.X)
		hi.Y = max(hi.Y, p.Y)
	}
	return lo, hi
}
