package geometry

// Segment is a line drawn over a shape.
type Segment struct {
	From Point `json:"from"`
	To   Point `json:"to"`
}

// nearest returns the triangle's vertices reordered so that the vertex
// closest to ref comes first; ties go to the earliest vertex.
func (t Triangle) nearest(ref Point) (a, b, c Point) {
	best := 0
	bestDist := t.Points[0].Sub(ref).Len()
	for i := 1; i < 3; i++ {
		if d := t.Points[i].Sub(ref).Len(); d < bestDist {
			best, bestDist = i, d
		}
	}
	return t.Points[best], t.Points[(best+1)%3], t.Points[(best+2)%3]
}

// Median runs from the vertex nearest ref to the midpoint of the opposite side.
func Median(t Triangle, ref Point) Segment {
	a, b, c := t.nearest(ref)
	return Segment{From: a, To: Midpoint(b, c)}
}

// Bisector halves the angle at the vertex nearest ref. The segment is as
// long as the longer of the two adjacent edges. ok is false when the angle
// is undefined (a zero-length edge or a straight angle).
func Bisector(t Triangle, ref Point) (seg Segment, ok bool) {
	a, b, c := t.nearest(ref)
	ab, ac := b.Sub(a), c.Sub(a)
	lab, lac := ab.Len(), ac.Len()
	if lab == 0 || lac == 0 {
		return Segment{}, false
	}
	dir := ab.Mul(1 / lab).Add(ac.Mul(1 / lac))
	n := dir.Len()
	if n == 0 {
		return Segment{}, false
	}
	return Segment{From: a, To: a.Add(dir.Mul(max(lab, lac) / n))}, true
}

// AltitudeFoot drops a perpendicular from the vertex nearest ref onto the
// line through the opposite side. ok is false when that side has zero length.
func AltitudeFoot(t Triangle, ref Point) (seg Segment, ok bool) {
	a, b, c := t.nearest(ref)
	side := c.Sub(b)
	l := side.Len()
	if l == 0 {
		return Segment{}, false
	}
	dir := side.Mul(1 / l)
	return Segment{From: a, To: b.Add(dir.Mul(a.Sub(b).Dot(dir)))}, true
}
