package suggest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"SketchBoard/internal/logging"
	"SketchBoard/internal/surface"
)

// DefaultTimeout bounds a single collaborator request.
const DefaultTimeout = 15 * time.Second

// Result is the outcome of one request.
type Result struct {
	ID          uuid.UUID
	Description string
	Suggestions []Suggestion
	Err         error
}

// Board keeps the most recently received suggestions. Requests run in
// their own goroutine; whichever finishes last wins, regardless of the
// order in which they were issued.
type Board struct {
	collab  Collaborator
	timeout time.Duration
	logger  *slog.Logger

	mu          sync.Mutex
	suggestions []Suggestion
	last        Result
	pending     int
	wg          sync.WaitGroup
}

// BoardOption configures a Board.
type BoardOption func(*Board)

// WithTimeout bounds each request. Non-positive values keep the default.
func WithTimeout(d time.Duration) BoardOption {
	return func(b *Board) {
		if d > 0 {
			b.timeout = d
		}
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l *slog.Logger) BoardOption {
	return func(b *Board) {
		b.logger = l
	}
}

// NewBoard returns a Board asking c. A nil collaborator is allowed; every
// request then fails with ErrNoCollaborator.
func NewBoard(c Collaborator, opts ...BoardOption) *Board {
	b := &Board{collab: c, timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = logging.OrNop(b.logger).With("component", "SUGGEST")
	return b
}

// Request describes sum and asks the collaborator in the background. done,
// if non-nil, is called from that goroutine with the result after the board
// has been updated. The summary is taken by value, so drawing may continue
// while the request is in flight.
func (b *Board) Request(ctx context.Context, sum surface.ImageSummary, done func(Result)) uuid.UUID {
	id := uuid.New()
	desc := Describe(sum)

	b.mu.Lock()
	b.pending++
	b.mu.Unlock()

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		res := b.run(ctx, id, desc)
		b.store(res)
		if done != nil {
			done(res)
		}
	}()
	return id
}

func (b *Board) run(ctx context.Context, id uuid.UUID, desc string) Result {
	res := Result{ID: id, Description: desc}
	if b.collab == nil {
		res.Err = ErrNoCollaborator
		return res
	}

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	start := time.Now()
	b.logger.Debug("requesting suggestions", "id", id, "description", desc)
	list, err := b.collab.Suggest(ctx, desc)
	switch {
	case err != nil:
		res.Err = fmt.Errorf("suggest %s: %w", id, err)
	case len(list) == 0:
		res.Err = ErrNoSuggestions
	default:
		res.Suggestions = list
	}
	b.logger.Info("suggestions received", "id", id, "count", len(list), "elapsed", time.Since(start), "err", err)
	return res
}

func (b *Board) store(res Result) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending--
	b.last = res
	switch {
	case res.Err == nil:
		b.suggestions = res.Suggestions
	case errors.Is(res.Err, ErrNoSuggestions):
		b.suggestions = nil
	}
}

// Suggestions returns a copy of the current list.
func (b *Board) Suggestions() []Suggestion {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Suggestion(nil), b.suggestions...)
}

// Last returns the most recently completed result.
func (b *Board) Last() Result {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.last
}

// Pending reports the number of requests still in flight.
func (b *Board) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pending
}

// Wait blocks until every issued request has completed.
func (b *Board) Wait() {
	b.wg.Wait()
}
