package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"SketchBoard/internal/config"
	"SketchBoard/internal/logging"
	"SketchBoard/internal/render"
	"SketchBoard/internal/state"
	"SketchBoard/internal/suggest"
	"SketchBoard/internal/surface"
)

// AppID identifies the application's preferences store.
const AppID = "io.sketchboard.app"

// RunApp opens the drawing window and blocks until it is closed.
func RunApp(cfg config.Config, collab suggest.Collaborator, logger *slog.Logger) {
	logger = logging.OrNop(logger)
	a := app.NewWithID(AppID)
	w := a.NewWindow("SketchBoard")

	tools := cfg.ToolState()
	loadTools(a.Preferences(), &tools)

	v := newMainView(cfg, &tools, collab, a.Preferences(), w, logger)
	w.SetContent(v.content)
	w.Resize(fyne.NewSize(float32(cfg.Canvas.Width)+panelWidth, float32(cfg.Canvas.Height)+80))
	w.ShowAndRun()
}

const panelWidth = 260

// mainView wires the board, toolbar and suggestion panel of one window.
type mainView struct {
	window  fyne.Window
	prefs   fyne.Preferences
	do      func(func()) // runs UI updates on the main goroutine
	logger  *slog.Logger
	board   *BoardWidget
	toolbar *Toolbar
	ideas   *suggest.Board
	panel   *widget.Label
	content fyne.CanvasObject
}

func newMainView(cfg config.Config, tools *state.ToolState, collab suggest.Collaborator, prefs fyne.Preferences, w fyne.Window, logger *slog.Logger) *mainView {
	v := &mainView{window: w, prefs: prefs, logger: logging.OrNop(logger), do: fyne.Do}

	v.board = NewBoardWidget(tools,
		WithCanvasSize(cfg.Canvas.Width, cfg.Canvas.Height),
		WithSurfaceManager(surface.NewManager(
			surface.WithBackground(cfg.Background()),
			surface.WithLogger(logger),
		)),
		WithRenderer(render.New(
			render.WithEraserFactor(cfg.Tools.EraserFactor),
			render.WithInterpolatedEraser(cfg.Tools.InterpolateEraser),
			render.WithLogger(logger),
		)),
		WithDescribeLimits(cfg.Describe.MaxWidth, cfg.Describe.MaxHeight),
		WithLogger(logger),
	)
	v.ideas = suggest.NewBoard(collab,
		suggest.WithTimeout(cfg.Suggest.Timeout.Duration),
		suggest.WithLogger(logger),
	)
	v.toolbar = NewToolbar(v.board, tools, cfg.ExportFormat(), ToolbarActions{
		OnExport:  v.export,
		OnSuggest: v.requestSuggestions,
		OnChanged: v.saveTools,
	})

	v.panel = widget.NewLabel("Press Suggest for ideas.")
	v.panel.Wrapping = fyne.TextWrapWord
	side := container.NewGridWrap(fyne.NewSize(panelWidth, float32(cfg.Canvas.Height)),
		container.NewBorder(widget.NewLabel("Suggestions"), nil, nil, nil, container.NewVScroll(v.panel)))

	v.content = container.NewBorder(v.toolbar.Content(), v.board.StatusBar(), nil, side, v.board)
	return v
}

func (v *mainView) saveTools(ts state.ToolState) {
	if v.prefs != nil {
		saveTools(v.prefs, ts)
	}
}

func (v *mainView) export(f surface.Format) {
	if v.window == nil {
		return
	}
	d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			v.logger.Error("save dialog failed", "err", err)
			v.board.SetStatus("Error opening file")
			return
		}
		if writer == nil {
			return
		}
		v.board.SaveToFile(writer, f)
	}, v.window)
	d.SetFileName(f.Filename())
	d.Show()
}

// requestSuggestions snapshots the drawing and asks for ideas in the
// background. The answer is applied on the main goroutine.
func (v *mainView) requestSuggestions() {
	v.toolbar.SetBusy(true)
	v.board.SetStatus("Asking for suggestions...")
	v.ideas.Request(context.Background(), v.board.Snapshot(), func(res suggest.Result) {
		v.do(func() { v.showResult(res) })
	})
}

func (v *mainView) showResult(res suggest.Result) {
	v.toolbar.SetBusy(v.ideas.Pending() > 0)

	switch {
	case res.Err == nil:
		v.board.SetStatus(fmt.Sprintf("%d suggestions", len(res.Suggestions)))
	case errors.Is(res.Err, suggest.ErrNoSuggestions):
		v.board.SetStatus("No suggestions")
	default:
		v.logger.Warn("suggestion request failed", "id", res.ID, "err", res.Err)
		v.board.SetStatus("Suggestions unavailable: " + res.Err.Error())
	}

	list := v.ideas.Suggestions()
	if len(list) == 0 {
		v.panel.SetText("No suggestions")
		return
	}
	lines := make([]string, len(list))
	for i, s := range list {
		lines[i] = "• " + s.String()
	}
	v.panel.SetText(strings.Join(lines, "\n\n"))
}
