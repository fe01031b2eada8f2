// Package geom holds the screen-space primitives shared by layouts and
// particles. Coordinates are canvas sub-pixels with y growing downward.
package geom

import "math"

type Point struct {
	X, Y float64
}

type Rect struct {
	X, Y, W, H float64
}

func (r Rect) Center() Point   { return Point{r.X + r.W/2, r.Y + r.H/2} }
func (r Rect) Right() float64  { return r.X + r.W }
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Curvature is the fraction of the horizontal span used to offset the
// Bézier control points of an S-curve.
const Curvature = 0.5

// Cubic evaluates a cubic Bézier at t.
func Cubic(p0, p1, p2, p3 Point, t float64) Point {
	u := 1 - t
	a, b, c, d := u*u*u, 3*u*u*t, 3*u*t*t, t*t*t
	return Point{
		X: a*p0.X + b*p1.X + c*p2.X + d*p3.X,
		Y: a*p0.Y + b*p1.Y + c*p2.Y + d*p3.Y,
	}
}

// SControls returns the two control points of the horizontal S-curve from a
// to b.
func SControls(a, b Point) (Point, Point) {
	dx := (b.X - a.X) * Curvature
	return Point{a.X + dx, a.Y}, Point{b.X - dx, b.Y}
}

// SCurve evaluates the S-curve from a to b at t.
func SCurve(a, b Point, t float64) Point {
	c1, c2 := SControls(a, b)
	return Cubic(a, c1, c2, b, t)
}

func Clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}

func Clamp01(x float64) float64 {
	if math.IsNaN(x) {
		return 0
	}
	return Clamp(x, 0, 1)
}

func Lerp(a, b, t float64) float64 { return a + (b-a)*t }
