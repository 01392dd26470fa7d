package ui

import (
	"bytes"
	"context"
	"image/color"
	"image/png"
	"path/filepath"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/driver/mobile"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SketchBoard/internal/config"
	"SketchBoard/internal/session"
	"SketchBoard/internal/state"
	"SketchBoard/internal/suggest"
	"SketchBoard/internal/surface"
)

var (
	white = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	black = color.RGBA{A: 0xff}
)

// origin is where the board sits inside the window in these tests.
var origin = fyne.NewPos(40, 60)

func point(x, y float32) fyne.PointEvent {
	rel := fyne.NewPos(x, y)
	return fyne.PointEvent{Position: rel, AbsolutePosition: origin.Add(rel)}
}

func press(x, y float32) *desktop.MouseEvent {
	return &desktop.MouseEvent{PointEvent: point(x, y), Button: desktop.MouseButtonPrimary}
}

func newTestBoard(t *testing.T, w, h int) (*BoardWidget, *state.ToolState) {
	t.Helper()
	test.NewTempApp(t)
	tools := state.NewToolState()
	tools.SetWidth(3)
	b := NewBoardWidget(&tools, WithCanvasSize(w, h))
	b.Resize(fyne.NewSize(float32(w), float32(h)))
	return b, &tools
}

func pixel(b *BoardWidget, x, y int) color.RGBA {
	return b.Session().Surface().Image().RGBAAt(x, y)
}

func TestBoardMouseStroke(t *testing.T) {
	b, _ := newTestBoard(t, 100, 100)

	b.MouseDown(press(20, 10))
	assert.Equal(t, white, pixel(b, 20, 10), "down alone never paints")

	b.Dragged(&fyne.DragEvent{PointEvent: point(20, 40), Dragged: fyne.NewDelta(0, 30)})
	b.DragEnd()
	b.MouseUp(press(20, 40))

	for y := 10; y <= 40; y++ {
		require.Equal(t, black, pixel(b, 20, y), "pixel (20,%d) in board coordinates", y)
	}
	assert.Equal(t, white, pixel(b, 60, 70), "window offset is not added")
	assert.Equal(t, session.Idle, b.Session().Phase())
}

func TestBoardSecondaryButtonIgnored(t *testing.T) {
	b, _ := newTestBoard(t, 50, 50)
	b.MouseDown(&desktop.MouseEvent{PointEvent: point(10, 10), Button: desktop.MouseButtonSecondary})
	assert.Equal(t, session.Idle, b.Session().Phase())
}

func TestBoardMouseOutEndsStroke(t *testing.T) {
	b, _ := newTestBoard(t, 100, 100)
	b.MouseDown(press(10, 50))
	b.MouseOut()
	b.Dragged(&fyne.DragEvent{PointEvent: point(90, 50)})

	assert.Equal(t, white, pixel(b, 50, 50))
}

func TestBoardTouchStroke(t *testing.T) {
	b, _ := newTestBoard(t, 100, 100)

	b.TouchDown(&mobile.TouchEvent{PointEvent: point(30, 30)})
	b.Dragged(&fyne.DragEvent{PointEvent: point(60, 30)})
	b.TouchUp(&mobile.TouchEvent{PointEvent: point(60, 30)})

	assert.Equal(t, black, pixel(b, 45, 30))
	assert.Equal(t, session.Idle, b.Session().Phase())

	b.TouchDown(&mobile.TouchEvent{PointEvent: point(10, 80)})
	b.TouchCancel(&mobile.TouchEvent{})
	assert.Equal(t, session.Idle, b.Session().Phase())
}

func TestBoardResizeResets(t *testing.T) {
	b, _ := newTestBoard(t, 100, 100)
	b.MouseDown(press(10, 10))
	b.Dragged(&fyne.DragEvent{PointEvent: point(90, 90)})
	b.MouseUp(press(90, 90))
	require.Equal(t, black, pixel(b, 50, 50))

	b.Resize(fyne.NewSize(120, 80))
	assert.Equal(t, 120, b.Session().Surface().Width())
	assert.Equal(t, 80, b.Session().Surface().Height())
	assert.Equal(t, white, pixel(b, 50, 50))
	assert.Same(t, b.Session().Surface().Image(), b.image.Image)
}

func TestEraserCursor(t *testing.T) {
	b, tools := newTestBoard(t, 200, 200)

	b.MouseIn(&desktop.MouseEvent{PointEvent: point(100, 100)})
	assert.False(t, b.cursor.Visible(), "no outline for the pen")

	tools.SetTool(state.Eraser)
	tools.SetWidth(5)
	b.ToolChanged()
	require.True(t, b.cursor.Visible())
	assert.Equal(t, fyne.NewSize(60, 60), b.cursor.Size())
	assert.Equal(t, fyne.NewPos(70, 70), b.cursor.Position())

	b.MouseOut()
	assert.False(t, b.cursor.Visible())
}

func TestToolbarEditsTools(t *testing.T) {
	b, tools := newTestBoard(t, 50, 50)
	var saved []state.ToolState
	tb := NewToolbar(b, tools, surface.PDF, ToolbarActions{
		OnChanged: func(ts state.ToolState) { saved = append(saved, ts) },
	})

	tb.SelectColor("#1273DE")
	tb.SelectTool(state.Eraser)
	tb.SetWidth(10)
	tb.SetWidth(99)

	assert.Equal(t, state.Eraser, tools.Tool)
	assert.Equal(t, "#1273de", tools.Hex(), "eraser keeps the pen color")
	assert.Equal(t, state.MaxWidth, tools.Width)
	assert.Equal(t, surface.PDF, tb.Format())
	require.NotEmpty(t, saved)
	assert.Equal(t, *tools, saved[len(saved)-1])

	tb.SelectColor("nope")
	assert.Equal(t, "#1273de", tools.Hex())
	assert.Contains(t, b.StatusBar().Text, "invalid hex color")

	tb.SetBusy(true)
	assert.True(t, tb.suggest.Disabled())
	tb.SetBusy(false)
	assert.False(t, tb.suggest.Disabled())
}

func TestToolPreferencesRoundTrip(t *testing.T) {
	a := test.NewTempApp(t)
	ts := state.NewToolState()
	ts.SetTool(state.Eraser)
	require.NoError(t, ts.SetColor("#5300EB"))
	ts.SetWidth(12)
	saveTools(a.Preferences(), ts)

	got := state.NewToolState()
	loadTools(a.Preferences(), &got)
	assert.Equal(t, ts, got)
}

type bufferWriter struct {
	bytes.Buffer
	uri    fyne.URI
	closed bool
}

func (w *bufferWriter) URI() fyne.URI { return w.uri }
func (w *bufferWriter) Close() error  { w.closed = true; return nil }

func TestSaveToFile(t *testing.T) {
	b, _ := newTestBoard(t, 64, 32)
	w := &bufferWriter{uri: storage.NewFileURI(filepath.Join(t.TempDir(), surface.PNG.Filename()))}

	b.SaveToFile(w, surface.PNG)

	assert.True(t, w.closed)
	img, err := png.Decode(&w.Buffer)
	require.NoError(t, err)
	assert.Equal(t, 64, img.Bounds().Dx())
	assert.Equal(t, "Saved drawing.png", b.StatusBar().Text)
}

func TestSuggestionPanel(t *testing.T) {
	a := test.NewTempApp(t)
	tools := state.NewToolState()
	v := newMainView(config.Default(), &tools, suggest.Rules{}, a.Preferences(), nil, nil)
	v.do = func(f func()) { f() }

	v.requestSuggestions()
	v.ideas.Wait()

	assert.Contains(t, v.panel.Text, "a horizon line")
	assert.Contains(t, v.board.StatusBar().Text, "suggestions")
	assert.False(t, v.toolbar.suggest.Disabled())
}

func TestSuggestionPanelReportsFailure(t *testing.T) {
	a := test.NewTempApp(t)
	tools := state.NewToolState()
	empty := suggest.CollaboratorFunc(func(context.Context, string) ([]suggest.Suggestion, error) {
		return nil, nil
	})
	v := newMainView(config.Default(), &tools, empty, a.Preferences(), nil, nil)
	v.do = func(f func()) { f() }

	v.requestSuggestions()
	v.ideas.Wait()
	assert.Equal(t, "No suggestions", v.panel.Text)

	v = newMainView(config.Default(), &tools, nil, a.Preferences(), nil, nil)
	v.do = func(f func()) { f() }
	v.requestSuggestions()
	v.ideas.Wait()
	assert.Contains(t, v.board.StatusBar().Text, "Suggestions unavailable")
}
