package suggest

import (
	"context"
	"strings"
)

// Rules is an offline Collaborator that answers from a fixed table keyed on
// the features named in the description. It backs the development host and
// the tests.
type Rules struct{}

var (
	baseRules = []Suggestion{
		{Suggestion: "a horizon line", Reason: "it anchors the sketch in a scene"},
		{Suggestion: "a sun in a corner", Reason: "it balances empty space"},
		{Suggestion: "a small bird", Reason: "it adds life without crowding the drawing"},
	}
	darkRules = []Suggestion{
		{Suggestion: "a crescent moon", Reason: "dark tones read as a night scene"},
		{Suggestion: "a few stars", Reason: "light points contrast with the dark areas"},
	}
	detailRules = []Suggestion{
		{Suggestion: "a simple frame", Reason: "a detailed sketch benefits from a clear border"},
		{Suggestion: "a signature", Reason: "the drawing looks finished"},
	}
)

func (Rules) Suggest(ctx context.Context, description string) ([]Suggestion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []Suggestion
	if strings.Contains(description, "dark tones") {
		out = append(out, darkRules...)
	}
	if strings.Contains(description, "many details") {
		out = append(out, detailRules...)
	}
	return append(out, baseRules...), nil
}
