// Package render paints stroke segments onto a surface.
//
// Pen segments become round-capped capsules, eraser segments become discs of
// the background color. Both are flattened to polygons and scan-converted
// with golang.org/x/image/vector, restricted to the segment's bounding box.
package render

import (
	"image"
	"image/color"
	"image/draw"
	"log/slog"
	"math"

	"golang.org/x/image/vector"
	"seehuhn.de/go/geom/vec"

	"SketchBoard/internal/logging"
	"SketchBoard/internal/state"
	"SketchBoard/internal/surface"
)

// DefaultEraserFactor is the ratio between eraser disc radius and tool
// width. A width-5 eraser wipes a disc of radius 30.
const DefaultEraserFactor = 6.0

// DefaultFlatness is the maximum distance, in pixels, between a flattened
// arc and the true circle.
const DefaultFlatness = 0.05

// Renderer paints StrokeSegments. It keeps scratch buffers between calls
// and must not be used from more than one goroutine at a time.
type Renderer struct {
	eraserFactor float64
	interpolate  bool
	flatness     float64
	logger       *slog.Logger

	rast    *vector.Rasterizer
	outline []vec.Vec2
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithEraserFactor sets k in radius = width*k for eraser discs.
// Non-positive values are ignored.
func WithEraserFactor(k float64) Option {
	return func(r *Renderer) {
		if k > 0 {
			r.eraserFactor = k
		}
	}
}

// WithInterpolatedEraser makes the eraser stamp discs along the whole
// segment instead of only at its end point, closing the gaps that fast
// motion leaves between samples.
func WithInterpolatedEraser(on bool) Option {
	return func(r *Renderer) {
		r.interpolate = on
	}
}

// WithFlatness sets the arc flattening tolerance in pixels.
func WithFlatness(f float64) Option {
	return func(r *Renderer) {
		if f > 0 {
			r.flatness = f
		}
	}
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(r *Renderer) {
		r.logger = l
	}
}

// New returns a Renderer with the given options applied.
func New(opts ...Option) *Renderer {
	r := &Renderer{
		eraserFactor: DefaultEraserFactor,
		flatness:     DefaultFlatness,
		rast:         vector.NewRasterizer(0, 0),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = logging.OrNop(r.logger)
	return r
}

// EraserRadius returns the disc radius used for an eraser of the given
// width.
func (r *Renderer) EraserRadius(width int) float64 {
	return float64(max(width, state.MinWidth)) * r.eraserFactor
}

// Paint draws the visual delta of seg onto s. Painting onto an unavailable
// surface does nothing; so do segments with non-finite coordinates.
func (r *Renderer) Paint(seg state.StrokeSegment, s *surface.Surface) {
	dst := s.Image()
	if dst == nil {
		return
	}
	if !seg.From.Finite() || !seg.To.Finite() {
		r.logger.Debug("skipping non-finite segment", "from", seg.From, "to", seg.To)
		return
	}

	width := max(seg.Tool.Width, state.MinWidth)
	r.outline = r.outline[:0]

	var c color.RGBA
	switch seg.Tool.Tool {
	case state.Eraser:
		c = s.Background()
		radius := r.EraserRadius(width)
		if r.interpolate {
			r.addStamps(seg.From, seg.To, radius)
		} else {
			r.addDisc(toVec(seg.To), radius)
		}
	default:
		c = seg.Tool.Color
		c.A = 0xff
		r.addCapsule(toVec(seg.From), toVec(seg.To), float64(width)/2)
	}

	r.fill(dst, c)
}

// addCapsule appends the outline of a line from a to b with round caps of
// radius d. A zero-length line degenerates to a disc.
func (r *Renderer) addCapsule(a, b vec.Vec2, d float64) {
	dir := b.Sub(a)
	length := dir.Length()
	if length < 1e-9 {
		r.addDisc(a, d)
		return
	}
	t := dir.Mul(1 / length)
	n := vec.Vec2{X: -t.Y, Y: t.X}

	// Going from +n around b through t to -n, then from -n around a
	// through -t back to +n traces the whole capsule.
	start := len(r.outline)
	r.addArc(b, d, n, -math.Pi)
	r.addArc(a, d, n.Mul(-1), -math.Pi)
	r.closeContour(start)
}

// addDisc appends a full circle of radius rad around c.
func (r *Renderer) addDisc(c vec.Vec2, rad float64) {
	start := len(r.outline)
	r.addArc(c, rad, vec.Vec2{X: 1}, 2*math.Pi)
	r.closeContour(start)
}

// addStamps appends eraser discs spaced half a radius apart along the
// segment, ending exactly at to.
func (r *Renderer) addStamps(from, to state.Point, rad float64) {
	a, b := toVec(from), toVec(to)
	step := rad / 2
	n := int(math.Ceil(b.Sub(a).Length() / step))
	for i := 1; i <= n; i++ {
		f := float64(i) / float64(n)
		r.addDisc(a.Add(b.Sub(a).Mul(f)), rad)
	}
	if n == 0 {
		r.addDisc(b, rad)
	}
}

// addArc appends points on the arc around center with the given radius,
// starting at startDir (a unit vector) and sweeping by sweep radians.
// The number of chords keeps the sagitta below the renderer's flatness.
func (r *Renderer) addArc(center vec.Vec2, radius float64, startDir vec.Vec2, sweep float64) {
	n := 1
	if radius > r.flatness {
		// For a chord spanning angle θ the sagitta is radius*(1-cos(θ/2)).
		step := 2 * math.Acos(1-r.flatness/radius)
		n = int(math.Ceil(math.Abs(sweep) / step))
	}
	n = max(n, 4)

	dt := sweep / float64(n)
	for i := 0; i <= n; i++ {
		sin, cos := math.Sincos(float64(i) * dt)
		dir := vec.Vec2{
			X: startDir.X*cos - startDir.Y*sin,
			Y: startDir.X*sin + startDir.Y*cos,
		}
		r.outline = append(r.outline, center.Add(dir.Mul(radius)))
	}
}

// closeContour marks the points from start onward as one closed polygon by
// storing a NaN separator after them.
func (r *Renderer) closeContour(start int) {
	if len(r.outline) == start {
		return
	}
	r.outline = append(r.outline, contourEnd)
}

var contourEnd = vec.Vec2{X: math.NaN(), Y: math.NaN()}

// fill scan-converts the accumulated outline into dst with color c,
// compositing over the existing pixels.
func (r *Renderer) fill(dst *image.RGBA, c color.RGBA) {
	box := outlineBounds(r.outline).Intersect(dst.Bounds())
	if box.Empty() {
		return
	}

	r.rast.Reset(box.Dx(), box.Dy())
	r.rast.DrawOp = draw.Over
	ox, oy := float32(box.Min.X), float32(box.Min.Y)
	first := true
	for _, p := range r.outline {
		if math.IsNaN(p.X) {
			r.rast.ClosePath()
			first = true
			continue
		}
		x, y := float32(p.X)-ox, float32(p.Y)-oy
		if first {
			r.rast.MoveTo(x, y)
			first = false
		} else {
			r.rast.LineTo(x, y)
		}
	}
	r.rast.Draw(dst, box, image.NewUniform(c), image.Point{})
}

// outlineBounds returns the integer pixel rectangle covering all points.
func outlineBounds(pts []vec.Vec2) image.Rectangle {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range pts {
		if math.IsNaN(p.X) {
			continue
		}
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}
	if minX > maxX {
		return image.Rectangle{}
	}
	return image.Rect(
		clampCoord(math.Floor(minX)), clampCoord(math.Floor(minY)),
		clampCoord(math.Ceil(maxX)), clampCoord(math.Ceil(maxY)),
	)
}

// clampCoord converts v to int, saturating far outside any real surface.
func clampCoord(v float64) int {
	const limit = 1 << 24
	return int(max(-limit, min(limit, v)))
}

func toVec(p state.Point) vec.Vec2 {
	return vec.Vec2{X: p.X, Y: p.Y}
}
