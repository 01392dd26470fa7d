// Package input turns mouse and touch events into device-independent pointer
// events in surface coordinates.
package input

import (
	"fmt"

	"SketchBoard/internal/state"
)

// Kind is the phase of a pointer gesture an event belongs to.
type Kind int

const (
	Down Kind = iota
	Move
	Up
	Leave
	Cancel
)

func (k Kind) String() string {
	switch k {
	case Down:
		return "down"
	case Move:
		return "move"
	case Up:
		return "up"
	case Leave:
		return "leave"
	case Cancel:
		return "cancel"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Ends reports whether events of this kind terminate a gesture.
func (k Kind) Ends() bool {
	return k == Up || k == Leave || k == Cancel
}

// Device identifies where an event came from.
type Device int

const (
	Mouse Device = iota
	Touch
)

func (d Device) String() string {
	if d == Touch {
		return "touch"
	}
	return "mouse"
}

// Rect is the on-screen bounding box of the drawing surface, in the same
// coordinate space as the device events.
type Rect struct {
	Left, Top     float64
	Width, Height float64
}

// Event is a raw device event.
type Event interface {
	Kind() Kind
	Device() Device
	// position returns the device coordinate, or ok=false if the event
	// carries none.
	position() (x, y float64, ok bool)
}

// MouseEvent is a mouse event with its client (screen) coordinate.
type MouseEvent struct {
	Type             Kind
	ClientX, ClientY float64
}

func (e MouseEvent) Kind() Kind     { return e.Type }
func (e MouseEvent) Device() Device { return Mouse }

func (e MouseEvent) position() (float64, float64, bool) {
	return e.ClientX, e.ClientY, true
}

// TouchPoint is one active finger.
type TouchPoint struct {
	ID               int
	ClientX, ClientY float64
}

// TouchEvent lists the touches active during the event. Only the first one
// is used; multi-finger gestures are not supported.
type TouchEvent struct {
	Type    Kind
	Touches []TouchPoint
}

func (e TouchEvent) Kind() Kind     { return e.Type }
func (e TouchEvent) Device() Device { return Touch }

func (e TouchEvent) position() (float64, float64, bool) {
	if len(e.Touches) == 0 {
		return 0, 0, false
	}
	t := e.Touches[0]
	return t.ClientX, t.ClientY, true
}

// NormalizedPointerEvent is what the drawing session consumes. HasPoint is
// false when the device event had no usable position; Point is then zero.
type NormalizedPointerEvent struct {
	Kind     Kind
	Device   Device
	Point    state.Point
	HasPoint bool
}

// Sample maps the event's device coordinate into surface space by removing
// the surface's on-screen offset. It returns ok=false for a nil event, a
// touch event without touches, or a non-finite coordinate.
func Sample(ev Event, bounds Rect) (state.Point, bool) {
	if ev == nil {
		return state.Point{}, false
	}
	x, y, ok := ev.position()
	if !ok {
		return state.Point{}, false
	}
	p := state.Point{X: x - bounds.Left, Y: y - bounds.Top}
	if !p.Finite() {
		return state.Point{}, false
	}
	return p, true
}

// Normalize samples ev and packages the result with its kind and device.
func Normalize(ev Event, bounds Rect) NormalizedPointerEvent {
	if ev == nil {
		return NormalizedPointerEvent{Kind: Cancel}
	}
	p, ok := Sample(ev, bounds)
	return NormalizedPointerEvent{
		Kind:     ev.Kind(),
		Device:   ev.Device(),
		Point:    p,
		HasPoint: ok,
	}
}
