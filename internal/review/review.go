// Package review drives one review pass over a collection: it builds
// the session queue, hands out cards, and records grades.
//
// A grade is applied in two steps. The in-memory card and the session
// queue change first; the store write follows. A failed write is
// reported but never undone, and never retried here.
package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/conorfennell/flipdeck/internal/domain"
	"github.com/conorfennell/flipdeck/internal/scheduler"
)

var (
	// ErrPersist wraps a store failure after a grade was recorded in memory.
	ErrPersist = errors.New("failed to persist review")
	// ErrFinished is returned when answering with no card left.
	ErrFinished = errors.New("session finished")
	// ErrSampleSize is returned by Start for a random mode without a
	// positive size.
	ErrSampleSize = errors.New("random sample size must be positive")
)

// CardStore loads a collection's cards and saves schedule updates.
type CardStore interface {
	CardsByCollection(ctx context.Context, collectionID string) ([]domain.Card, error)
	ApplyUpdate(ctx context.Context, u domain.ScheduleUpdate) error
}

// ModeKind selects how a session picks its cards.
type ModeKind int

const (
	// ModeDue reviews only the cards the scheduler considers due.
	ModeDue ModeKind = iota
	// ModeAll reviews every card regardless of schedule.
	ModeAll
	// ModeRandom reviews a random sample regardless of schedule.
	ModeRandom
)

func (k ModeKind) String() string {
	switch k {
	case ModeDue:
		return "due"
	case ModeAll:
		return "all"
	case ModeRandom:
		return "random"
	}
	return fmt.Sprintf("ModeKind(%d)", int(k))
}

// Mode is a session selection. Size is only used by ModeRandom.
type Mode struct {
	Kind ModeKind
	Size int
}

func Due() Mode            { return Mode{Kind: ModeDue} }
func All() Mode            { return Mode{Kind: ModeAll} }
func Random(size int) Mode { return Mode{Kind: ModeRandom, Size: size} }

// Runner starts review sessions against a store.
type Runner struct {
	store     CardStore
	scheduler *scheduler.Scheduler
	rng       *rand.Rand
	logger    *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithRand fixes the source used for random sampling.
func WithRand(rng *rand.Rand) Option {
	return func(r *Runner) { r.rng = rng }
}

// WithLogger sets the logger used for persist failures.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// NewRunner returns a Runner.
func NewRunner(store CardStore, s *scheduler.Scheduler, opts ...Option) *Runner {
	r := &Runner{store: store, scheduler: s, logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start loads the collection and builds its session.
func (r *Runner) Start(ctx context.Context, collectionID string, mode Mode) (*Run, error) {
	if mode.Kind == ModeRandom && mode.Size <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrSampleSize, mode.Size)
	}
	cards, err := r.store.CardsByCollection(ctx, collectionID)
	if err != nil {
		return nil, fmt.Errorf("loading collection %s: %w", collectionID, err)
	}

	var override []domain.Card
	switch mode.Kind {
	case ModeAll:
		override = scheduler.SampleAll(cards)
	case ModeRandom:
		override = scheduler.SampleRandom(cards, mode.Size, r.rng)
	}

	byID := make(map[string]*domain.Card, len(cards))
	for i := range cards {
		byID[cards[i].ID] = &cards[i]
	}

	run := &Run{
		runner:  r,
		session: r.scheduler.BuildSession(cards, override),
		cards:   byID,
		tally:   make(map[domain.Grade]int),
	}
	r.logger.Debug("review session started",
		"collection", collectionID,
		"mode", mode.Kind,
		"cards", run.session.Len(),
	)
	return run, nil
}

// Run is one live review session. It is not safe for concurrent use.
type Run struct {
	runner  *Runner
	session *scheduler.Session
	cards   map[string]*domain.Card
	tally   map[domain.Grade]int
	swap    bool
}

// SetSwap shows backs as prompts and fronts as answers.
func (r *Run) SetSwap(swap bool) { r.swap = swap }

// Current returns the card under the session pointer.
func (r *Run) Current() (domain.Card, bool) {
	id, ok := r.session.Current()
	if !ok {
		return domain.Card{}, false
	}
	return *r.cards[id], true
}

// Face returns the prompt and answer of c, honoring the swap setting.
func (r *Run) Face(c domain.Card) (prompt, answer string) {
	if r.swap {
		return c.Back, c.Front
	}
	return c.Front, c.Back
}

// Remaining is the number of cards still queued.
func (r *Run) Remaining() int { return r.session.Len() }

// Finished reports whether every card has been graded.
func (r *Run) Finished() bool { return r.session.Finished() }

// Skip moves on without grading the current card.
func (r *Run) Skip() { r.session.Advance() }

// Answer grades the current card. The returned card reflects the new
// schedule even when the error wraps ErrPersist.
func (r *Run) Answer(ctx context.Context, decision domain.Grade) (domain.Card, error) {
	id, ok := r.session.Current()
	if !ok {
		return domain.Card{}, ErrFinished
	}
	card := r.cards[id]

	update, err := r.runner.scheduler.Grade(*card, decision)
	if err != nil {
		return *card, err
	}

	update.Apply(card)
	r.session.Remove(id)
	r.tally[decision]++

	if err := r.runner.store.ApplyUpdate(ctx, update); err != nil {
		r.runner.logger.Error("Failed to persist review", "card", id, "grade", decision, "error", err)
		return *card, fmt.Errorf("%w: card %s: %w", ErrPersist, id, err)
	}
	return *card, nil
}

// Summary describes a session so far.
type Summary struct {
	Seen      int
	Remaining int
	Grades    map[domain.Grade]int
}

// Summary returns the cards seen, cards left, and grade counts.
func (r *Run) Summary() Summary {
	grades := make(map[domain.Grade]int, len(r.tally))
	for g, n := range r.tally {
		grades[g] = n
	}
	return Summary{
		Seen:      r.session.CardsSeen(),
		Remaining: r.session.Len(),
		Grades:    grades,
	}
}
