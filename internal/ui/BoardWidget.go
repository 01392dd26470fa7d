package ui

import (
	"errors"
	"fmt"
	"image/color"
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/driver/mobile"
	"fyne.io/fyne/v2/widget"

	"SketchBoard/internal/input"
	"SketchBoard/internal/logging"
	"SketchBoard/internal/render"
	"SketchBoard/internal/session"
	"SketchBoard/internal/state"
	"SketchBoard/internal/surface"
)

// BoardWidget shows the drawing surface and feeds pointer events into a
// drawing session. All methods run on the fyne main goroutine.
type BoardWidget struct {
	widget.BaseWidget

	session  *session.Session
	tools    *state.ToolState
	renderer *render.Renderer
	logger   *slog.Logger

	image     *canvas.Image
	cursor    *canvas.Circle
	hover     fyne.Position
	hovering  bool
	statusBar *widget.Label
	minSize   fyne.Size
}

var (
	_ fyne.Widget       = (*BoardWidget)(nil)
	_ fyne.Draggable    = (*BoardWidget)(nil)
	_ desktop.Mouseable = (*BoardWidget)(nil)
	_ desktop.Hoverable = (*BoardWidget)(nil)
	_ mobile.Touchable  = (*BoardWidget)(nil)
)

type boardConfig struct {
	width, height int
	manager       *surface.Manager
	renderer      *render.Renderer
	describeW     int
	describeH     int
	logger        *slog.Logger
}

// BoardOption configures a BoardWidget.
type BoardOption func(*boardConfig)

// WithCanvasSize sets the surface size used until the widget is laid out.
func WithCanvasSize(w, h int) BoardOption {
	return func(c *boardConfig) { c.width, c.height = w, h }
}

// WithSurfaceManager sets the manager that owns the bitmap.
func WithSurfaceManager(m *surface.Manager) BoardOption {
	return func(c *boardConfig) { c.manager = m }
}

// WithRenderer sets the stroke renderer.
func WithRenderer(r *render.Renderer) BoardOption {
	return func(c *boardConfig) { c.renderer = r }
}

// WithDescribeLimits bounds the downsampled snapshot sent for suggestions.
func WithDescribeLimits(w, h int) BoardOption {
	return func(c *boardConfig) { c.describeW, c.describeH = w, h }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) BoardOption {
	return func(c *boardConfig) { c.logger = l }
}

// NewBoardWidget returns a board drawing with tools. The caller keeps
// ownership of tools and may change it at any time; changes apply to the
// next segment.
func NewBoardWidget(tools *state.ToolState, opts ...BoardOption) *BoardWidget {
	cfg := boardConfig{
		width:     300,
		height:    300,
		describeW: surface.DescribeMaxWidth,
		describeH: surface.DescribeMaxHeight,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	logger := logging.OrNop(cfg.logger)
	if cfg.manager == nil {
		cfg.manager = surface.NewManager(surface.WithLogger(logger))
	}
	if cfg.renderer == nil {
		cfg.renderer = render.New(render.WithLogger(logger))
	}

	b := &BoardWidget{
		session: session.New(cfg.manager, cfg.renderer, tools,
			session.WithLogger(logger),
			session.WithDescribeLimits(cfg.describeW, cfg.describeH)),
		tools:     tools,
		renderer:  cfg.renderer,
		logger:    logger,
		statusBar: widget.NewLabel("Ready"),
		minSize:   fyne.NewSize(300, 300),
	}
	b.session.Mount(cfg.width, cfg.height)

	b.image = canvas.NewImageFromImage(b.session.Surface().Image())
	b.image.FillMode = canvas.ImageFillStretch
	b.image.ScaleMode = canvas.ImageScalePixels

	b.cursor = canvas.NewCircle(color.Transparent)
	b.cursor.StrokeColor = color.Gray{Y: 120}
	b.cursor.StrokeWidth = 1
	b.cursor.Hide()

	b.ExtendBaseWidget(b)
	return b
}

// Session exposes the drawing session behind the widget.
func (b *BoardWidget) Session() *session.Session { return b.session }

// StatusBar returns the label used for notices.
func (b *BoardWidget) StatusBar() *widget.Label { return b.statusBar }

// SetStatus shows a notice in the status bar.
func (b *BoardWidget) SetStatus(text string) {
	b.statusBar.SetText(text)
}

// Resize follows the widget's size with the surface. The drawing is reset
// when the size changes.
func (b *BoardWidget) Resize(size fyne.Size) {
	b.BaseWidget.Resize(size)
	w, h := int(size.Width), int(size.Height)
	if w <= 0 || h <= 0 {
		return
	}
	before := b.session.Surface()
	b.session.Resize(w, h)
	if b.session.Surface() != before {
		b.logger.Debug("board resized, drawing reset", "width", w, "height", h)
		b.image.Image = b.session.Surface().Image()
	}
	b.redraw()
}

// Clear wipes the drawing.
func (b *BoardWidget) Clear() {
	b.session.Clear()
	b.redraw()
	b.SetStatus("Cleared")
}

// Snapshot returns the current drawing summary.
func (b *BoardWidget) Snapshot() surface.ImageSummary {
	return b.session.Snapshot()
}

// SaveToFile exports the drawing in format f to writer and closes it.
func (b *BoardWidget) SaveToFile(writer fyne.URIWriteCloser, f surface.Format) {
	defer func() {
		if err := writer.Close(); err != nil {
			b.logger.Warn("error closing writer", "err", err)
		}
	}()

	data, err := b.session.Export(f)
	switch {
	case errors.Is(err, surface.ErrUnavailable):
		b.logger.Debug("export skipped, no surface")
		return
	case err != nil:
		b.logger.Error("export failed", "format", f, "err", err)
		b.SetStatus("Error exporting drawing")
		return
	}
	if _, err := writer.Write(data); err != nil {
		b.logger.Error("write failed", "uri", writer.URI().String(), "err", err)
		b.SetStatus("Error writing file")
		return
	}
	b.SetStatus(fmt.Sprintf("Saved %s", writer.URI().Name()))
	b.logger.Info("drawing saved", "uri", writer.URI().String(), "bytes", len(data))
}

// ToolChanged updates tool-dependent decorations such as the eraser cursor.
func (b *BoardWidget) ToolChanged() {
	b.updateCursor()
}

func (b *BoardWidget) handle(ev input.Event, abs, rel fyne.Position) {
	bounds := input.Rect{
		Left:   float64(abs.X - rel.X),
		Top:    float64(abs.Y - rel.Y),
		Width:  float64(b.Size().Width),
		Height: float64(b.Size().Height),
	}
	n := input.Normalize(ev, bounds)
	wasDrawing := b.session.Phase() == session.Drawing
	b.session.Handle(n)
	if wasDrawing && n.Kind == input.Move && n.HasPoint {
		b.redraw()
	}
}

func mouseEvent(kind input.Kind, abs fyne.Position) input.MouseEvent {
	return input.MouseEvent{Type: kind, ClientX: float64(abs.X), ClientY: float64(abs.Y)}
}

func touchEvent(kind input.Kind, ev *mobile.TouchEvent) input.TouchEvent {
	if kind.Ends() {
		return input.TouchEvent{Type: kind}
	}
	return input.TouchEvent{Type: kind, Touches: []input.TouchPoint{{
		ClientX: float64(ev.AbsolutePosition.X),
		ClientY: float64(ev.AbsolutePosition.Y),
	}}}
}

func (b *BoardWidget) MouseDown(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	b.handle(mouseEvent(input.Down, e.AbsolutePosition), e.AbsolutePosition, e.Position)
}

func (b *BoardWidget) MouseUp(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	b.handle(mouseEvent(input.Up, e.AbsolutePosition), e.AbsolutePosition, e.Position)
}

func (b *BoardWidget) Dragged(e *fyne.DragEvent) {
	b.handle(mouseEvent(input.Move, e.AbsolutePosition), e.AbsolutePosition, e.Position)
	b.moveCursor(e.Position)
}

func (b *BoardWidget) DragEnd() {
	b.session.PointerUp()
}

func (b *BoardWidget) MouseIn(e *desktop.MouseEvent) {
	b.hovering = true
	b.moveCursor(e.Position)
}

func (b *BoardWidget) MouseMoved(e *desktop.MouseEvent) {
	b.moveCursor(e.Position)
}

func (b *BoardWidget) MouseOut() {
	b.hovering = false
	b.session.PointerLeave()
	b.updateCursor()
}

func (b *BoardWidget) TouchDown(e *mobile.TouchEvent) {
	b.handle(touchEvent(input.Down, e), e.AbsolutePosition, e.Position)
}

func (b *BoardWidget) TouchUp(e *mobile.TouchEvent) {
	b.handle(touchEvent(input.Up, e), e.AbsolutePosition, e.Position)
}

func (b *BoardWidget) TouchCancel(e *mobile.TouchEvent) {
	b.handle(touchEvent(input.Cancel, e), e.AbsolutePosition, e.Position)
}

func (b *BoardWidget) moveCursor(pos fyne.Position) {
	b.hover = pos
	b.updateCursor()
}

// updateCursor shows the eraser outline, sized to the disc it wipes, while
// hovering in eraser mode.
func (b *BoardWidget) updateCursor() {
	if !b.hovering || b.tools == nil || b.tools.Tool != state.Eraser {
		b.cursor.Hide()
		return
	}
	r := float32(b.renderer.EraserRadius(b.tools.Width))
	b.cursor.Resize(fyne.NewSize(2*r, 2*r))
	b.cursor.Move(fyne.NewPos(b.hover.X-r, b.hover.Y-r))
	b.cursor.Show()
}

func (b *BoardWidget) redraw() {
	canvas.Refresh(b.image)
}

func (b *BoardWidget) MinSize() fyne.Size {
	return b.minSize
}

func (b *BoardWidget) CreateRenderer() fyne.WidgetRenderer {
	return &boardWidgetRenderer{board: b}
}

type boardWidgetRenderer struct {
	board *BoardWidget
}

func (r *boardWidgetRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.board.image, r.board.cursor}
}

func (r *boardWidgetRenderer) Layout(size fyne.Size) {
	r.board.image.Resize(size)
	r.board.image.Move(fyne.NewPos(0, 0))
}

func (r *boardWidgetRenderer) MinSize() fyne.Size {
	return r.board.minSize
}

func (r *boardWidgetRenderer) Refresh() {
	r.board.image.Refresh()
	r.board.cursor.Refresh()
}

// Destroy keeps the session: fyne may drop and recreate renderers of a
// widget that is still in use.
func (r *boardWidgetRenderer) Destroy() {}
