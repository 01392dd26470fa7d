// Package session coordinates pointer input, tool state and rendering for a
// single drawing surface.
package session

import (
	"fmt"
	"log/slog"

	"SketchBoard/internal/input"
	"SketchBoard/internal/logging"
	"SketchBoard/internal/render"
	"SketchBoard/internal/state"
	"SketchBoard/internal/surface"
)

// Phase is the state of the gesture state machine.
type Phase int

const (
	Idle Phase = iota
	Drawing
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Drawing:
		return "drawing"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// Session is the Idle/Drawing state machine between pointer events and the
// renderer. It is driven from the UI thread only.
//
// The first sample after pointer-down never paints; it only becomes the
// anchor of the next segment. Separate down/up cycles never connect.
type Session struct {
	surfaces *surface.Manager
	renderer *render.Renderer
	tools    *state.ToolState
	logger   *slog.Logger

	describeW, describeH int

	surface *surface.Surface
	phase   Phase
	anchor  state.Point // valid only while phase == Drawing
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger used for diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		s.logger = l
	}
}

// WithDescribeLimits sets the downsampling bounds used by Snapshot.
func WithDescribeLimits(maxW, maxH int) Option {
	return func(s *Session) {
		s.describeW, s.describeH = maxW, maxH
	}
}

// New returns an idle session without a surface. The tool state is read on
// every segment, so changes made by the UI apply to the next segment drawn.
func New(m *surface.Manager, r *render.Renderer, tools *state.ToolState, opts ...Option) *Session {
	s := &Session{
		surfaces:  m,
		renderer:  r,
		tools:     tools,
		describeW: surface.DescribeMaxWidth,
		describeH: surface.DescribeMaxHeight,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.OrNop(s.logger)
	return s
}

// Mount creates the surface. Calling Mount again replaces the surface.
func (s *Session) Mount(w, h int) {
	s.end()
	s.surfaces.Release(s.surface)
	s.surface = s.surfaces.Create(w, h)
	s.logger.Debug("surface mounted", "width", w, "height", h)
}

// Unmount releases the surface. Later events are ignored until Mount.
func (s *Session) Unmount() {
	s.end()
	s.surfaces.Release(s.surface)
	s.surface = nil
}

// Resize follows the hosting view's size. The drawing is reset to the
// background whenever the dimensions change; an unchanged size keeps it.
// A gesture in progress is ended.
func (s *Session) Resize(w, h int) {
	if s.surface.Available() && s.surface.Width() == w && s.surface.Height() == h {
		return
	}
	s.end()
	s.surface = s.surfaces.Resize(s.surface, w, h)
}

// Surface returns the current surface, or nil before Mount.
func (s *Session) Surface() *surface.Surface {
	return s.surface
}

// Phase returns the current state.
func (s *Session) Phase() Phase {
	return s.phase
}

// Anchor returns the last sampled point of the gesture in progress.
func (s *Session) Anchor() (state.Point, bool) {
	if s.phase != Drawing {
		return state.Point{}, false
	}
	return s.anchor, true
}

// Handle applies one normalized pointer event. Every event is accepted in
// every phase; events that do not apply are ignored.
func (s *Session) Handle(ev input.NormalizedPointerEvent) {
	if ev.Kind.Ends() {
		s.end()
		return
	}
	if !ev.HasPoint {
		return
	}
	switch ev.Kind {
	case input.Down:
		s.PointerDown(ev.Point)
	case input.Move:
		s.PointerMove(ev.Point)
	}
}

// PointerDown starts a new gesture anchored at p. Nothing is painted.
func (s *Session) PointerDown(p state.Point) {
	s.phase = Drawing
	s.anchor = p
}

// PointerMove paints the segment from the anchor to p and moves the anchor.
// Moves while idle are ignored.
func (s *Session) PointerMove(p state.Point) {
	if s.phase != Drawing {
		return
	}
	seg := state.StrokeSegment{From: s.anchor, To: p, Tool: s.currentTools()}
	s.renderer.Paint(seg, s.surface)
	s.anchor = p
}

// PointerUp ends the gesture.
func (s *Session) PointerUp() { s.end() }

// PointerLeave ends the gesture when the pointer leaves the surface.
func (s *Session) PointerLeave() { s.end() }

// Cancel ends the gesture, e.g. on touchcancel.
func (s *Session) Cancel() { s.end() }

func (s *Session) end() {
	s.phase = Idle
	s.anchor = state.Point{}
}

func (s *Session) currentTools() state.ToolState {
	if s.tools == nil {
		return state.NewToolState()
	}
	return *s.tools
}

// Clear resets the drawing to the background.
func (s *Session) Clear() {
	s.surfaces.Clear(s.surface)
}

// Export encodes the flattened drawing.
func (s *Session) Export(f surface.Format) ([]byte, error) {
	return s.surfaces.Export(s.surface, f)
}

// Snapshot summarises the drawing as it is now. The summary is a value and
// is unaffected by later drawing.
func (s *Session) Snapshot() surface.ImageSummary {
	return s.surfaces.Describe(s.surface, s.describeW, s.describeH)
}
