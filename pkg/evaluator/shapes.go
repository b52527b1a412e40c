package evaluator

import (
	"fmt"

	"github.com/dmitrycvs/C-DSL/pkg/ast"
	"github.com/dmitrycvs/C-DSL/pkg/diagnostics"
	"github.com/dmitrycvs/C-DSL/pkg/geometry"
	"github.com/dmitrycvs/C-DSL/pkg/render"
)

func (ev *interp) evalPoint(p *ast.PointExpr) (geometry.Point, error) {
	x, err := ev.evalNumber(p.X, "x coordinate")
	if err != nil {
		return geometry.Point{}, err
	}
	y, err := ev.evalNumber(p.Y, "y coordinate")
	if err != nil {
		return geometry.Point{}, err
	}
	return geometry.Point{X: x, Y: y}, nil
}

func (ev *interp) evalPoints(ps []*ast.PointExpr) ([]geometry.Point, error) {
	out := make([]geometry.Point, len(ps))
	for i, p := range ps {
		pt, err := ev.evalPoint(p)
		if err != nil {
			return nil, err
		}
		out[i] = pt
	}
	return out, nil
}

func (ev *interp) buildShape(s *ast.ShapeStmt) (geometry.Shape, error) {
	switch s.Shape {
	case ast.ShapeTriangle:
		pts, err := ev.evalPoints(s.Points)
		if err != nil {
			return nil, err
		}
		if len(pts) != 3 {
			return nil, &RuntimeError{
				Code:    diagnostics.EAst,
				Message: fmt.Sprintf("triangle '%s' needs 3 points, got %d", s.Name, len(pts)),
				Span:    &s.Span,
			}
		}
		return geometry.Triangle{Points: [3]geometry.Point{pts[0], pts[1], pts[2]}}, nil

	case ast.ShapeCircle:
		center, err := ev.evalPoint(s.Center)
		if err != nil {
			return nil, err
		}
		r, err := ev.evalNumber(s.Radius, "radius")
		if err != nil {
			return nil, err
		}
		return geometry.Circle{Center: center, Radius: r}, nil

	case ast.ShapeRectangle:
		tl, err := ev.evalPoint(s.TopLeft)
		if err != nil {
			return nil, err
		}
		w, err := ev.evalNumber(s.Width, "width")
		if err != nil {
			return nil, err
		}
		h, err := ev.evalNumber(s.Height, "height")
		if err != nil {
			return nil, err
		}
		return geometry.Rectangle{TopLeft: tl, Width: w, Height: h}, nil

	case ast.ShapePolygon:
		pts, err := ev.evalPoints(s.Points)
		if err != nil {
			return nil, err
		}
		return geometry.Polygon{Points: pts}, nil
	}
	return nil, &RuntimeError{Code: diagnostics.EAst, Message: fmt.Sprintf("unknown shape '%s'", s.Shape), Span: &s.Span}
}

func (ev *interp) execShape(s *ast.ShapeStmt) error {
	sh, err := ev.buildShape(s)
	if err != nil {
		return err
	}
	ev.s.shapes[s.Name] = sh
	ev.log.Debug("shape defined", "shape", s.Name, "kind", string(sh.Kind()), "line", s.Span.StartLine)
	if s.Draw {
		ev.drawShape(s.Name, sh, s.Span)
	}
	return nil
}

func (ev *interp) drawShape(name string, sh geometry.Shape, span ast.Span) {
	if ev.opts.Renderer != nil {
		render.Shape(ev.opts.Renderer, name, sh)
	}
	ev.emitWithData(TraceDraw, &span, map[string]any{"shape": name, "kind": string(sh.Kind())})
}

func (ev *interp) drawSegment(seg geometry.Segment, span ast.Span) {
	if ev.opts.Renderer != nil {
		ev.opts.Renderer.DrawSegment(seg.From, seg.To)
	}
	ev.emitWithData(TraceDraw, &span, map[string]any{"kind": "segment"})
}

func (ev *interp) skipShapeOp(op, name, reason string, span ast.Span) {
	ev.warn(diagnostics.WUnsupportedShape, fmt.Sprintf("%s '%s' skipped: %s", op, name, reason), span,
		"op", op, "shape", name)
}

func (ev *interp) execTransform(s *ast.TransformStmt) error {
	sh, ok := ev.s.shapes[s.Name]
	if !ok {
		ev.skipShapeOp(string(s.Op), s.Name, "no such shape", s.Span)
		return nil
	}

	var next geometry.Shape
	switch s.Op {
	case ast.TransformRotate:
		deg, err := ev.evalNumber(s.Amount, "rotation angle")
		if err != nil {
			return err
		}
		next = geometry.Rotate(sh, deg)

	case ast.TransformScale:
		factor, err := ev.evalNumber(s.Amount, "scale factor")
		if err != nil {
			return err
		}
		next = geometry.Scale(sh, factor)

	case ast.TransformTranslate:
		d, err := ev.evalPoint(s.Offset)
		if err != nil {
			return err
		}
		next = geometry.Translate(sh, d)

	case ast.TransformReflect:
		axis, pivot, err := ev.evalAxis(s.Axis)
		if err != nil {
			return err
		}
		next = geometry.Reflect(sh, axis, pivot)

	default:
		return &RuntimeError{Code: diagnostics.EAst, Message: fmt.Sprintf("unknown transform '%s'", s.Op), Span: &s.Span}
	}

	ev.s.shapes[s.Name] = next
	ev.log.Debug("shape transformed", "shape", s.Name, "op", string(s.Op), "line", s.Span.StartLine)
	if s.Draw {
		ev.drawShape(s.Name, next, s.Span)
	}
	return nil
}

func (ev *interp) evalAxis(a *ast.Axis) (geometry.Axis, geometry.Point, error) {
	switch a.Mirror {
	case ast.AxisX:
		return geometry.AxisX, geometry.Point{}, nil
	case ast.AxisY:
		return geometry.AxisY, geometry.Point{}, nil
	case ast.AxisOrigin:
		return geometry.AxisOrigin, geometry.Point{}, nil
	case ast.AxisPoint:
		p, err := ev.evalPoint(a.Point)
		return geometry.AxisPoint, p, err
	}
	return 0, geometry.Point{}, &RuntimeError{
		Code:    diagnostics.EAst,
		Message: fmt.Sprintf("unknown axis '%s'", a.Mirror),
		Span:    &a.Span,
	}
}

func (ev *interp) execFeature(s *ast.FeatureStmt) error {
	sh, ok := ev.s.shapes[s.Name]
	if !ok {
		ev.skipShapeOp(string(s.Feature), s.Name, "no such shape", s.Span)
		return nil
	}
	tri, ok := sh.(geometry.Triangle)
	if !ok {
		ev.skipShapeOp(string(s.Feature), s.Name, fmt.Sprintf("%s is not a triangle", sh.Kind()), s.Span)
		return nil
	}

	ref, err := ev.evalPoint(s.From)
	if err != nil {
		return err
	}

	var seg geometry.Segment
	switch s.Feature {
	case ast.FeatureMedian:
		seg = geometry.Median(tri, ref)
	case ast.FeatureBisector:
		seg, ok = geometry.Bisector(tri, ref)
	case ast.FeatureAltitude:
		seg, ok = geometry.AltitudeFoot(tri, ref)
	default:
		return &RuntimeError{Code: diagnostics.EAst, Message: fmt.Sprintf("unknown feature '%s'", s.Feature), Span: &s.Span}
	}
	if !ok {
		ev.skipShapeOp(string(s.Feature), s.Name, "degenerate triangle", s.Span)
		return nil
	}

	if s.Draw {
		ev.drawShape(s.Name, tri, s.Span)
	}
	ev.drawSegment(seg, s.Span)
	return nil
}
