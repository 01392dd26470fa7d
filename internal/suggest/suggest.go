// Package suggest turns a drawing summary into a short text description and
// asks a collaborator for drawings that would complement it.
package suggest

import (
	"context"
	"errors"
	"fmt"

	"SketchBoard/internal/surface"
)

var (
	// ErrNoSuggestions is reported when a collaborator answers with an
	// empty list.
	ErrNoSuggestions = errors.New("no suggestions")
	// ErrNoCollaborator is reported when no collaborator is configured or
	// none could be found on the network.
	ErrNoCollaborator = errors.New("no suggestion collaborator")
)

// Suggestion is one proposed addition to the drawing.
type Suggestion struct {
	Suggestion string `json:"suggestion"`
	Reason     string `json:"reason"`
}

func (s Suggestion) String() string {
	if s.Reason == "" {
		return s.Suggestion
	}
	return fmt.Sprintf("%s: %s", s.Suggestion, s.Reason)
}

// Collaborator produces suggestions for a text description of a sketch.
type Collaborator interface {
	Suggest(ctx context.Context, description string) ([]Suggestion, error)
}

// CollaboratorFunc adapts a function to the Collaborator interface.
type CollaboratorFunc func(ctx context.Context, description string) ([]Suggestion, error)

func (f CollaboratorFunc) Suggest(ctx context.Context, description string) ([]Suggestion, error) {
	return f(ctx, description)
}

const (
	darkLuminance = 128
	manyTones     = 50
)

// Describe composes the text sent to a collaborator.
func Describe(sum surface.ImageSummary) string {
	d := "a sketch"
	if sum.Luminance < darkLuminance {
		d += " with dark tones"
	}
	if sum.Tones > manyTones {
		d += " with many details"
	}
	return d
}
