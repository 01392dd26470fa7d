package state

import "math"

// Point is a position in surface space: the origin is the top-left corner
// of the drawing bitmap, not of the page or window.
type Point struct{ X, Y float64 }

// Sub returns p-q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Dist returns the euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Finite reports whether both coordinates are finite numbers.
func (p Point) Finite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) &&
		!math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// StrokeSegment is the unit of rendering: the stretch of a gesture between
// two consecutive samples, together with the tool that was active.
// Segments are painted immediately and never kept.
type StrokeSegment struct {
	From Point
	To   Point
	Tool ToolState
}
