package suggest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SketchBoard/internal/surface"
)

func TestDescribeThresholds(t *testing.T) {
	cases := []struct {
		sum  surface.ImageSummary
		want string
	}{
		{surface.ImageSummary{Luminance: 255, Tones: 1}, "a sketch"},
		{surface.ImageSummary{Luminance: 128, Tones: 50}, "a sketch"},
		{surface.ImageSummary{Luminance: 127.9, Tones: 50}, "a sketch with dark tones"},
		{surface.ImageSummary{Luminance: 200, Tones: 51}, "a sketch with many details"},
		{surface.ImageSummary{Luminance: 10, Tones: 200}, "a sketch with dark tones with many details"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Describe(c.sum), "%+v", c.sum)
	}
}

func TestRulesFollowDescription(t *testing.T) {
	ctx := context.Background()
	plain, err := Rules{}.Suggest(ctx, "a sketch")
	require.NoError(t, err)
	assert.Len(t, plain, len(baseRules))

	dark, err := Rules{}.Suggest(ctx, "a sketch with dark tones")
	require.NoError(t, err)
	assert.Equal(t, "a crescent moon", dark[0].Suggestion)
	assert.Len(t, dark, len(baseRules)+len(darkRules))

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	_, err = Rules{}.Suggest(cctx, "a sketch")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSuggestionString(t *testing.T) {
	assert.Equal(t, "a tree: shade", Suggestion{Suggestion: "a tree", Reason: "shade"}.String())
	assert.Equal(t, "a tree", Suggestion{Suggestion: "a tree"}.String())
}

func TestBoardStoresSuggestions(t *testing.T) {
	b := NewBoard(Rules{})
	var got Result
	id := b.Request(context.Background(), surface.ImageSummary{Luminance: 20}, func(r Result) { got = r })
	b.Wait()

	assert.Equal(t, id, got.ID)
	assert.Equal(t, "a sketch with dark tones", got.Description)
	require.NoError(t, got.Err)
	assert.Equal(t, got.Suggestions, b.Suggestions())
	assert.Equal(t, 0, b.Pending())
}

func TestBoardLastWriteWins(t *testing.T) {
	slowRelease := make(chan struct{})
	collab := CollaboratorFunc(func(ctx context.Context, desc string) ([]Suggestion, error) {
		if desc == "a sketch" {
			<-slowRelease
			return []Suggestion{{Suggestion: "slow"}}, nil
		}
		return []Suggestion{{Suggestion: "fast"}}, nil
	})
	b := NewBoard(collab)

	fastDone := make(chan struct{})
	b.Request(context.Background(), surface.ImageSummary{Luminance: 255}, nil)
	b.Request(context.Background(), surface.ImageSummary{Luminance: 0}, func(Result) { close(fastDone) })

	<-fastDone
	assert.Equal(t, "fast", b.Suggestions()[0].Suggestion)
	assert.Equal(t, 1, b.Pending())

	close(slowRelease)
	b.Wait()
	assert.Equal(t, "slow", b.Suggestions()[0].Suggestion, "the late response replaces earlier suggestions")
}

func TestBoardEmptyListIsNoSuggestions(t *testing.T) {
	calls := 0
	b := NewBoard(CollaboratorFunc(func(context.Context, string) ([]Suggestion, error) {
		calls++
		if calls == 1 {
			return []Suggestion{{Suggestion: "x"}}, nil
		}
		return nil, nil
	}))

	b.Request(context.Background(), surface.ImageSummary{}, nil)
	b.Wait()
	require.Len(t, b.Suggestions(), 1)

	b.Request(context.Background(), surface.ImageSummary{}, nil)
	b.Wait()
	assert.ErrorIs(t, b.Last().Err, ErrNoSuggestions)
	assert.Empty(t, b.Suggestions())
}

func TestBoardFailureKeepsSuggestions(t *testing.T) {
	boom := errors.New("boom")
	fail := false
	b := NewBoard(CollaboratorFunc(func(context.Context, string) ([]Suggestion, error) {
		if fail {
			return nil, boom
		}
		return []Suggestion{{Suggestion: "keep"}}, nil
	}))

	b.Request(context.Background(), surface.ImageSummary{}, nil)
	b.Wait()
	fail = true
	b.Request(context.Background(), surface.ImageSummary{}, nil)
	b.Wait()

	assert.ErrorIs(t, b.Last().Err, boom)
	assert.Equal(t, []Suggestion{{Suggestion: "keep"}}, b.Suggestions())

	// A retry after the failure is allowed.
	fail = false
	b.Request(context.Background(), surface.ImageSummary{}, nil)
	b.Wait()
	assert.NoError(t, b.Last().Err)
}

func TestBoardTimeout(t *testing.T) {
	b := NewBoard(CollaboratorFunc(func(ctx context.Context, _ string) ([]Suggestion, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}), WithTimeout(10*time.Millisecond))

	b.Request(context.Background(), surface.ImageSummary{}, nil)
	b.Wait()
	assert.ErrorIs(t, b.Last().Err, context.DeadlineExceeded)
}

func TestBoardWithoutCollaborator(t *testing.T) {
	b := NewBoard(nil)
	b.Request(context.Background(), surface.ImageSummary{}, nil)
	b.Wait()
	assert.ErrorIs(t, b.Last().Err, ErrNoCollaborator)
}
