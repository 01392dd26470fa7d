// Package surface owns the drawing bitmap: its allocation, resizing,
// clearing, export and summarisation.
package surface

import (
	"errors"
	"image"
	"image/color"
	"log/slog"

	xdraw "golang.org/x/image/draw"

	"SketchBoard/internal/logging"
)

// ErrUnavailable is returned when an operation needs pixels but the surface
// is nil, released or has zero area.
var ErrUnavailable = errors.New("surface unavailable")

// DefaultBackground is the fill color of new and cleared surfaces.
var DefaultBackground = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

// Surface is the persistent pixel buffer of a drawing.
//
// A Surface with zero width or height, or one that has been released, is
// unavailable: painting onto it and clearing it do nothing.
type Surface struct {
	width, height int
	img           *image.RGBA
	background    color.RGBA
}

// Width returns the width in pixels.
func (s *Surface) Width() int {
	if s == nil {
		return 0
	}
	return s.width
}

// Height returns the height in pixels.
func (s *Surface) Height() int {
	if s == nil {
		return 0
	}
	return s.height
}

// Available reports whether the surface has pixels that can be drawn on.
func (s *Surface) Available() bool {
	return s != nil && s.img != nil && s.width > 0 && s.height > 0
}

// Image returns the live bitmap, or nil if the surface is unavailable.
// Writes to the returned image change the drawing.
func (s *Surface) Image() *image.RGBA {
	if !s.Available() {
		return nil
	}
	return s.img
}

// Background returns the color the surface is cleared to.
func (s *Surface) Background() color.RGBA {
	if s == nil {
		return DefaultBackground
	}
	return s.background
}

// Bounds returns the pixel rectangle of the surface.
func (s *Surface) Bounds() image.Rectangle {
	return image.Rect(0, 0, s.Width(), s.Height())
}

// Manager creates and maintains surfaces. All surfaces it creates share the
// same background color.
type Manager struct {
	background color.RGBA
	logger     *slog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithBackground sets the background color. A non-opaque color is made
// opaque so that cleared surfaces never contain transparency.
func WithBackground(c color.RGBA) Option {
	return func(m *Manager) {
		c.A = 0xff
		m.background = c
	}
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = l
	}
}

// NewManager returns a Manager with a white background unless configured
// otherwise.
func NewManager(opts ...Option) *Manager {
	m := &Manager{background: DefaultBackground}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = logging.OrNop(m.logger)
	return m
}

// Background returns the manager's background color.
func (m *Manager) Background() color.RGBA {
	return m.background
}

// Create allocates a surface of w by h pixels filled with the background.
// Non-positive dimensions produce an unavailable, zero-area surface.
func (m *Manager) Create(w, h int) *Surface {
	s := &Surface{background: m.background}
	if w <= 0 || h <= 0 {
		m.logger.Debug("zero-area surface", "width", w, "height", h)
		return s
	}
	s.width, s.height = w, h
	s.img = image.NewRGBA(image.Rect(0, 0, w, h))
	m.fill(s)
	return s
}

// Resize returns a fresh background-filled surface of exactly w by h
// pixels. The old content is not carried over and the old surface is
// released.
func (m *Manager) Resize(s *Surface, w, h int) *Surface {
	m.Release(s)
	ns := m.Create(w, h)
	m.logger.Debug("surface resized", "width", ns.width, "height", ns.height)
	return ns
}

// Clear resets every pixel to the background color. Dimensions are kept.
func (m *Manager) Clear(s *Surface) {
	if !s.Available() {
		return
	}
	m.fill(s)
}

// Release drops the pixels of s. Later operations on s are no-ops.
func (m *Manager) Release(s *Surface) {
	if s == nil {
		return
	}
	s.img = nil
	s.width, s.height = 0, 0
}

func (m *Manager) fill(s *Surface) {
	s.background = m.background
	xdraw.Draw(s.img, s.img.Bounds(), image.NewUniform(m.background), image.Point{}, xdraw.Src)
}
