package state

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Tool is the active drawing mode.
type Tool int

const (
	Pen Tool = iota
	Eraser
)

func (t Tool) String() string {
	switch t {
	case Pen:
		return "pen"
	case Eraser:
		return "eraser"
	}
	return fmt.Sprintf("Tool(%d)", int(t))
}

// ParseTool maps "pen" or "eraser" (any case) to a Tool.
func ParseTool(s string) (Tool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pen":
		return Pen, nil
	case "eraser":
		return Eraser, nil
	}
	return Pen, fmt.Errorf("unknown tool %q", s)
}

// Width limits exposed to the UI.
const (
	MinWidth     = 1
	MaxWidth     = 20
	DefaultWidth = 5
)

// ErrInvalidColor is returned for color strings that are not #rgb or #rrggbb.
var ErrInvalidColor = errors.New("invalid hex color")

// ToolState holds the current tool, pen color and stroke width.
//
// Color keeps the last pen color while the eraser is active, so switching
// back to the pen restores it. Width is always within [MinWidth, MaxWidth]
// when changed through SetWidth.
type ToolState struct {
	Tool  Tool
	Color color.RGBA
	Width int
}

// NewToolState returns a black pen of DefaultWidth.
func NewToolState() ToolState {
	return ToolState{
		Tool:  Pen,
		Color: color.RGBA{A: 0xff},
		Width: DefaultWidth,
	}
}

// SetTool switches between pen and eraser. The pen color is kept.
func (ts *ToolState) SetTool(t Tool) {
	ts.Tool = t
}

// SetColor sets the pen color from a hex string. On error the previous
// color is kept.
func (ts *ToolState) SetColor(hex string) error {
	c, err := ParseHex(hex)
	if err != nil {
		return err
	}
	ts.Color = c
	return nil
}

// SetWidth sets the stroke width, clamped to [MinWidth, MaxWidth].
func (ts *ToolState) SetWidth(n int) {
	ts.Width = ClampWidth(n)
}

// Hex returns the pen color as #rrggbb.
func (ts ToolState) Hex() string {
	return FormatHex(ts.Color)
}

// ClampWidth limits n to [MinWidth, MaxWidth].
func ClampWidth(n int) int {
	return max(MinWidth, min(MaxWidth, n))
}

// ParseHex parses "#rgb" or "#rrggbb" (the leading '#' is optional) into an
// opaque color.
func ParseHex(s string) (color.RGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return color.RGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

// FormatHex formats the color channels of c as #rrggbb. Alpha is dropped.
func FormatHex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
