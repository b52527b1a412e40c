package geometry

import "math"

// Axis selects the mirror used by Reflect.
type Axis int

const (
	AxisX      Axis = iota // (x, y) -> (x, -y)
	AxisY                  // (x, y) -> (-x, y)
	AxisOrigin             // (x, y) -> (-x, -y)
	AxisPoint              // (x, y) -> (2px - x, 2py - y)
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x-axis"
	case AxisY:
		return "y-axis"
	case AxisOrigin:
		return "origin"
	case AxisPoint:
		return "point"
	}
	return "unknown"
}

func mapPoints(pts []Point, f func(Point) Point) []Point {
	out := make([]Point, len(pts))
	for i, p := range pts {
		out[i] = f(p)
	}
	return out
}

// Rotate turns the shape about its centroid by deg degrees using the
// standard rotation matrix. A rectangle always becomes a four-point polygon,
// whatever the angle. Circles are unchanged.
func Rotate(s Shape, deg float64) Shape {
	rad := deg * math.Pi / 180
	sin, cos := math.Sincos(rad)
	pivot := Centroid(s)
	turn := func(p Point) Point {
		d := p.Sub(pivot)
		return Point{
			X: pivot.X + d.X*cos - d.Y*sin,
			Y: pivot.Y + d.X*sin + d.Y*cos,
		}
	}

	switch v := s.(type) {
	case Triangle:
		var out Triangle
		for i, p := range v.Points {
			out.Points[i] = turn(p)
		}
		return out
	case Polygon:
		return Polygon{Points: mapPoints(v.Points, turn)}
	case Rectangle:
		return Polygon{Points: mapPoints(v.Vertices(), turn)}
	}
	return s
}

// Scale resizes the shape by factor about its centroid. Rectangles keep
// their center; circles keep their center and scale the radius.
func Scale(s Shape, factor float64) Shape {
	if factor == 1 {
		return s
	}
	pivot := Centroid(s)
	stretch := func(p Point) Point {
		return pivot.Add(p.Sub(pivot).Mul(factor))
	}

	switch v := s.(type) {
	case Triangle:
		var out Triangle
		for i, p := range v.Points {
			out.Points[i] = stretch(p)
		}
		return out
	case Polygon:
		return Polygon{Points: mapPoints(v.Points, stretch)}
	case Rectangle:
		c := v.Center()
		w := math.Abs(v.Width * factor)
		h := math.Abs(v.Height * factor)
		return Rectangle{TopLeft: Point{c.X - w/2, c.Y - h/2}, Width: w, Height: h}
	case Circle:
		return Circle{Center: v.Center, Radius: math.Abs(v.Radius * factor)}
	}
	return s
}

// Translate moves every defining point by d.
func Translate(s Shape, d Point) Shape {
	move := func(p Point) Point { return p.Add(d) }

	switch v := s.(type) {
	case Triangle:
		var out Triangle
		for i, p := range v.Points {
			out.Points[i] = move(p)
		}
		return out
	case Polygon:
		return Polygon{Points: mapPoints(v.Points, move)}
	case Rectangle:
		return Rectangle{TopLeft: move(v.TopLeft), Width: v.Width, Height: v.Height}
	case Circle:
		return Circle{Center: move(v.Center), Radius: v.Radius}
	}
	return s
}

// Reflect mirrors the shape. pivot is only used with AxisPoint. A rectangle
// is mirrored through its far corner so that width and height stay as they
// were.
func Reflect(s Shape, axis Axis, pivot Point) Shape {
	mirror := func(p Point) Point {
		switch axis {
		case AxisX:
			return Point{p.X, -p.Y}
		case AxisY:
			return Point{-p.X, p.Y}
		case AxisOrigin:
			return Point{-p.X, -p.Y}
		default:
			return Point{2*pivot.X - p.X, 2*pivot.Y - p.Y}
		}
	}

	switch v := s.(type) {
	case Triangle:
		var out Triangle
		for i, p := range v.Points {
			out.Points[i] = mirror(p)
		}
		return out
	case Polygon:
		return Polygon{Points: mapPoints(v.Points, mirror)}
	case Circle:
		return Circle{Center: mirror(v.Center), Radius: v.Radius}
	case Rectangle:
		x, y := v.TopLeft.X, v.TopLeft.Y
		switch axis {
		case AxisX:
			y = -y - v.Height
		case AxisY:
			x = -x - v.Width
		case AxisOrigin:
			x, y = -x-v.Width, -y-v.Height
		default:
			x, y = 2*pivot.X-x-v.Width, 2*pivot.Y-y-v.Height
		}
		return Rectangle{TopLeft: Point{x, y}, Width: v.Width, Height: v.Height}
	}
	return s
}
