package render

import "github.com/dmitrycvs/C-DSL/pkg/geometry"

// CommandKind identifies a recorded draw call.
type CommandKind string

const (
	CmdTriangle  CommandKind = "triangle"
	CmdCircle    CommandKind = "circle"
	CmdRectangle CommandKind = "rectangle"
	CmdPolygon   CommandKind = "polygon"
	CmdSegment   CommandKind = "segment"
)

// Command is one draw call. Only the fields relevant to Kind are set.
type Command struct {
	Kind   CommandKind      `json:"kind" yaml:"kind"`
	Name   string           `json:"name,omitempty" yaml:"name,omitempty"`
	Points []geometry.Point `json:"points,omitempty" yaml:"points,omitempty"`
	Center *geometry.Point  `json:"center,omitempty" yaml:"center,omitempty"`
	Radius float64          `json:"radius,omitempty" yaml:"radius,omitempty"`
	Width  float64          `json:"width,omitempty" yaml:"width,omitempty"`
	Height float64          `json:"height,omitempty" yaml:"height,omitempty"`
}

// Shape rebuilds the geometry carried by a shape command. ok is false for
// segments.
func (c Command) Shape() (s geometry.Shape, ok bool) {
	switch c.Kind {
	case CmdTriangle:
		var t geometry.Triangle
		copy(t.Points[:], c.Points)
		return t, true
	case CmdCircle:
		return geometry.Circle{Center: *c.Center, Radius: c.Radius}, true
	case CmdRectangle:
		return geometry.Rectangle{TopLeft: c.Points[0], Width: c.Width, Height: c.Height}, true
	case CmdPolygon:
		return geometry.Polygon{Points: c.Points}, true
	}
	return nil, false
}

// Recorder keeps every draw call in order.
type Recorder struct {
	Commands []Command
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) DrawTriangle(name string, points [3]geometry.Point) {
	r.Commands = append(r.Commands, Command{
		Kind:   CmdTriangle,
		Name:   name,
		Points: append([]geometry.Point(nil), points[:]...),
	})
}

func (r *Recorder) DrawCircle(name string, center geometry.Point, radius float64) {
	c := center
	r.Commands = append(r.Commands, Command{Kind: CmdCircle, Name: name, Center: &c, Radius: radius})
}

func (r *Recorder) DrawRectangle(name string, topLeft geometry.Point, width, height float64) {
	r.Commands = append(r.Commands, Command{
		Kind:   CmdRectangle,
		Name:   name,
		Points: []geometry.Point{topLeft},
		Width:  width,
		Height: height,
	})
}

func (r *Recorder) DrawPolygon(name string, vertices []geometry.Point) {
	r.Commands = append(r.Commands, Command{
		Kind:   CmdPolygon,
		Name:   name,
		Points: append([]geometry.Point(nil), vertices...),
	})
}

func (r *Recorder) DrawSegment(from, to geometry.Point) {
	r.Commands = append(r.Commands, Command{Kind: CmdSegment, Points: []geometry.Point{from, to}})
}

// Replay sends the recorded commands to another renderer.
func (r *Recorder) Replay(dst Renderer) {
	for _, c := range r.Commands {
		if c.Kind == CmdSegment {
			dst.DrawSegment(c.Points[0], c.Points[1])
			continue
		}
		if s, ok := c.Shape(); ok {
			Shape(dst, c.Name, s)
		}
	}
}
