package physics

import "math"

// Lightweight 2D vector math shared by the host simulation and AI leaves.

// Vec2 is a position or direction on the arena plane.
type Vec2 struct{ X, Y float64 }

// V is shorthand for Vec2{x, y}.
func V(x, y float64) Vec2 { return Vec2{X: x, Y: y} }

func (v Vec2) Add(o Vec2) Vec2      { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2      { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scale(k float64) Vec2 { return Vec2{v.X * k, v.Y * k} }
func (v Vec2) Len() float64         { return math.Hypot(v.X, v.Y) }
func (v Vec2) Dist(o Vec2) float64  { return Distance2(v.X, v.Y, o.X, o.Y) }
func (v Vec2) IsZero() bool         { return v.X == 0 && v.Y == 0 }
func (v Vec2) Dot(o Vec2) float64   { return v.X*o.X + v.Y*o.Y }
func (v Vec2) Perp() Vec2           { return Vec2{-v.Y, v.X} }
func (v Vec2) Equal(o Vec2) bool    { return v.X == o.X && v.Y == o.Y }

// Near reports whether o lies within eps of v.
func (v Vec2) Near(o Vec2, eps float64) bool {
	return v.Dist(o) <= eps
}

// Normalize returns the unit vector of v, or the zero vector when v is zero.
func (v Vec2) Normalize() Vec2 {
	l := v.Len()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{v.X / l, v.Y / l}
}

// StepToward moves v toward target by at most maxStep and never overshoots.
func (v Vec2) StepToward(target Vec2, maxStep float64) Vec2 {
	d := target.Sub(v)
	l := d.Len()
	if l <= maxStep || l == 0 {
		return target
	}
	return v.Add(d.Scale(maxStep / l))
}

// Clamp keeps v inside the [0,w]x[0,h] rectangle.
func (v Vec2) Clamp(w, h float64) Vec2 {
	return Vec2{math.Max(0, math.Min(w, v.X)), math.Max(0, math.Min(h, v.Y))}
}

// Distance2 computes Euclidean distance between two 2D points.
func Distance2(x1, y1, x2, y2 float64) float64 { return math.Hypot(x2-x1, y2-y1) }

// ClosestApproach returns the smallest distance between point p and the
// segment a-b.
func ClosestApproach(a, b, p Vec2) float64 {
	ab := b.Sub(a)
	den := ab.Dot(ab)
	if den == 0 {
		return a.Dist(p)
	}
	t := p.Sub(a).Dot(ab) / den
	t = math.Max(0, math.Min(1, t))
	return a.Add(ab.Scale(t)).Dist(p)
}
