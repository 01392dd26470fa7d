package ui

import (
	"fyne.io/fyne/v2"

	"SketchBoard/internal/state"
)

const (
	prefTool  = "tool"
	prefColor = "color"
	prefWidth = "width"
)

// loadTools overlays the tool, color and width remembered from the last
// run onto ts. Missing or invalid entries keep ts's values.
func loadTools(p fyne.Preferences, ts *state.ToolState) {
	if tool, err := state.ParseTool(p.StringWithFallback(prefTool, ts.Tool.String())); err == nil {
		ts.SetTool(tool)
	}
	_ = ts.SetColor(p.StringWithFallback(prefColor, ts.Hex()))
	ts.SetWidth(p.IntWithFallback(prefWidth, ts.Width))
}

func saveTools(p fyne.Preferences, ts state.ToolState) {
	p.SetString(prefTool, ts.Tool.String())
	p.SetString(prefColor, ts.Hex())
	p.SetInt(prefWidth, ts.Width)
}
