package ui

import (
	"fmt"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"SketchBoard/internal/state"
	"SketchBoard/internal/surface"
)

// Palette is the set of swatches offered in the toolbar.
var Palette = []string{
	"#000000", "#B80000", "#DB3E00", "#FCCB00",
	"#008B02", "#1273DE", "#004DCF", "#5300EB",
}

// PresetWidths are the quick width buttons next to the slider.
var PresetWidths = []int{2, 5, 10}

type colorSwatch struct {
	widget.BaseWidget
	Color    color.RGBA
	OnTapped func(color.RGBA)
}

func newColorSwatch(c color.RGBA, tapped func(color.RGBA)) *colorSwatch {
	s := &colorSwatch{Color: c, OnTapped: tapped}
	s.ExtendBaseWidget(s)
	return s
}

func (s *colorSwatch) CreateRenderer() fyne.WidgetRenderer {
	rect := canvas.NewRectangle(s.Color)
	rect.SetMinSize(fyne.NewSize(28, 28))

	border := canvas.NewRectangle(color.Transparent)
	border.StrokeColor = color.Gray{Y: 150}
	border.StrokeWidth = 1

	return widget.NewSimpleRenderer(container.NewStack(rect, border))
}

func (s *colorSwatch) Tapped(_ *fyne.PointEvent) {
	if s.OnTapped != nil {
		s.OnTapped(s.Color)
	}
}

// ToolbarActions are the commands the toolbar triggers outside the tool
// state.
type ToolbarActions struct {
	OnExport  func(surface.Format)
	OnSuggest func()
	OnChanged func(state.ToolState)
}

// Toolbar edits a ToolState and triggers clear, export and suggest.
type Toolbar struct {
	board   *BoardWidget
	tools   *state.ToolState
	actions ToolbarActions

	content    fyne.CanvasObject
	toolLabel  *widget.Label
	widthLabel *widget.Label
	slider     *widget.Slider
	format     *widget.Select
	suggest    *widget.Button
}

// NewToolbar builds the toolbar for board. tools must be the same state
// the board draws with.
func NewToolbar(board *BoardWidget, tools *state.ToolState, defaultFormat surface.Format, actions ToolbarActions) *Toolbar {
	t := &Toolbar{board: board, tools: tools, actions: actions}

	tb := widget.NewToolbar(
		widget.NewToolbarAction(theme.DocumentCreateIcon(), func() { t.SelectTool(state.Pen) }),
		widget.NewToolbarAction(theme.ContentClearIcon(), func() { t.SelectTool(state.Eraser) }),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.DeleteIcon(), board.Clear),
	)
	t.toolLabel = widget.NewLabel("")

	swatches := container.NewHBox()
	for _, hex := range Palette {
		c, err := state.ParseHex(hex)
		if err != nil {
			continue
		}
		swatches.Add(newColorSwatch(c, func(c color.RGBA) { t.SelectColor(state.FormatHex(c)) }))
	}

	t.slider = widget.NewSlider(state.MinWidth, state.MaxWidth)
	t.slider.Step = 1
	t.slider.SetValue(float64(tools.Width))
	t.slider.OnChanged = func(v float64) { t.setWidth(int(v)) }
	t.widthLabel = widget.NewLabel("")
	presets := container.NewHBox()
	for _, w := range PresetWidths {
		presets.Add(widget.NewButton(fmt.Sprint(w), func() { t.SetWidth(w) }))
	}
	sliderBox := container.New(layout.NewGridWrapLayout(fyne.NewSize(150, 35)), t.slider)

	t.format = widget.NewSelect([]string{string(surface.PNG), string(surface.JPEG), string(surface.PDF)}, nil)
	t.format.SetSelected(string(defaultFormat))
	export := widget.NewButtonWithIcon("Export", theme.DocumentSaveIcon(), func() {
		if t.actions.OnExport != nil {
			t.actions.OnExport(t.Format())
		}
	})

	t.suggest = widget.NewButtonWithIcon("Suggest", theme.HelpIcon(), func() {
		if t.actions.OnSuggest != nil {
			t.actions.OnSuggest()
		}
	})

	t.content = container.NewHBox(
		widget.NewLabel("Tool:"), tb, t.toolLabel,
		widget.NewSeparator(),
		swatches,
		widget.NewSeparator(),
		widget.NewLabel("Size:"), sliderBox, t.widthLabel, presets,
		layout.NewSpacer(),
		t.format, export, t.suggest,
	)
	t.refreshLabels()
	return t
}

// Content returns the toolbar's canvas object.
func (t *Toolbar) Content() fyne.CanvasObject { return t.content }

// SelectTool switches between pen and eraser. The pen color is kept.
func (t *Toolbar) SelectTool(tool state.Tool) {
	t.tools.SetTool(tool)
	t.changed()
}

// SelectColor sets the pen color and switches back to the pen.
func (t *Toolbar) SelectColor(hex string) {
	if err := t.tools.SetColor(hex); err != nil {
		t.board.SetStatus(err.Error())
		return
	}
	t.tools.SetTool(state.Pen)
	t.changed()
}

// SetWidth moves the slider and updates the tool state.
func (t *Toolbar) SetWidth(n int) {
	n = state.ClampWidth(n)
	t.slider.SetValue(float64(n))
	t.setWidth(n)
}

func (t *Toolbar) setWidth(n int) {
	if n == t.tools.Width {
		return
	}
	t.tools.SetWidth(n)
	t.changed()
}

// Format returns the selected export format.
func (t *Toolbar) Format() surface.Format {
	f, err := surface.ParseFormat(t.format.Selected)
	if err != nil {
		return surface.PNG
	}
	return f
}

// SetBusy disables the suggest button while a request is in flight.
func (t *Toolbar) SetBusy(busy bool) {
	if busy {
		t.suggest.SetText("Thinking...")
		t.suggest.Disable()
		return
	}
	t.suggest.SetText("Suggest")
	t.suggest.Enable()
}

func (t *Toolbar) changed() {
	t.refreshLabels()
	t.board.ToolChanged()
	if t.actions.OnChanged != nil {
		t.actions.OnChanged(*t.tools)
	}
}

func (t *Toolbar) refreshLabels() {
	t.toolLabel.SetText(t.tools.Tool.String())
	t.widthLabel.SetText(fmt.Sprintf("%dpx", t.tools.Width))
}
