// Package scheduler decides which cards are due, in what order they are
// reviewed, and when a graded card becomes due again.
//
// The rules are fixed offsets rather than interval growth:
//
//	Again  due immediately, until regraded
//	Hard   due 30 minutes after grading
//	Good   due from 00:01 the next calendar day
//	Easy   due from the start of the fourth calendar day ahead
package scheduler

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/conorfennell/flipdeck/internal/domain"
)

const (
	hardDelay  = 30 * time.Minute
	goodOffset = time.Minute
	easyDays   = 4
)

// ErrInvalidDecision is returned when a card is graded with New or an
// unknown grade.
var ErrInvalidDecision = errors.New("invalid grading decision")

// priority orders a session: New first, Easy last.
var priority = [...]int{
	domain.New:   0,
	domain.Again: 1,
	domain.Hard:  2,
	domain.Good:  3,
	domain.Easy:  4,
}

// Priority returns the session sort key of g. Unknown grades sort after Easy.
func Priority(g domain.Grade) int {
	if !g.Valid() {
		return len(priority)
	}
	return priority[g]
}

// Scheduler applies the review rules against a Clock.
type Scheduler struct {
	clock Clock
}

// New returns a Scheduler. A nil clock means the system clock in time.Local.
func New(clock Clock) *Scheduler {
	if clock == nil {
		clock = NewSystemClock(nil)
	}
	return &Scheduler{clock: clock}
}

// Clock returns the clock the scheduler reads.
func (s *Scheduler) Clock() Clock {
	return s.clock
}

// IsDue reports whether card belongs in a session built now.
// Cards with missing dates or unknown grades are never due.
func (s *Scheduler) IsDue(card domain.Card) bool {
	now := s.clock.Now()
	switch card.LastGrade {
	case domain.New:
		return card.IsNew
	case domain.Again:
		return true
	case domain.Hard:
		return card.NextScheduleDate != nil && !card.NextScheduleDate.After(now)
	case domain.Good, domain.Easy:
		if card.NextScheduleDate == nil {
			return false
		}
		return !s.clock.StartOfDay(*card.NextScheduleDate).After(s.clock.StartOfDay(now))
	default:
		return false
	}
}

// Due returns the due cards of all in their input order.
func (s *Scheduler) Due(all []domain.Card) []domain.Card {
	var due []domain.Card
	for _, c := range all {
		if s.IsDue(c) {
			due = append(due, c)
		}
	}
	return due
}

// BuildSession returns a session over override if it is non-empty, or
// over the due cards of all otherwise. Either way the queue is stably
// sorted by grade priority.
func (s *Scheduler) BuildSession(all, override []domain.Card) *Session {
	cards := override
	if len(cards) == 0 {
		cards = s.Due(all)
	} else {
		cards = slices.Clone(cards)
	}
	Sort(cards)

	ids := make([]string, len(cards))
	for i, c := range cards {
		ids[i] = c.ID
	}
	return newSession(ids)
}

// Sort stably orders cards by grade priority in place.
func Sort(cards []domain.Card) {
	slices.SortStableFunc(cards, func(a, b domain.Card) int {
		return Priority(a.LastGrade) - Priority(b.LastGrade)
	})
}

// Grade returns the schedule state card takes on when graded with
// decision now. The card itself is left untouched.
func (s *Scheduler) Grade(card domain.Card, decision domain.Grade) (domain.ScheduleUpdate, error) {
	now := s.clock.Now()
	u := domain.ScheduleUpdate{
		CardID: card.ID,
		Grade:  decision,
		IsNew:  false,
	}

	var next time.Time
	switch decision {
	case domain.Again:
		u.NextScheduleDate = copyTime(card.NextScheduleDate)
		return u, nil
	case domain.Hard:
		next = now.Add(hardDelay)
	case domain.Good:
		next = s.clock.StartOfDay(now).AddDate(0, 0, 1).Add(goodOffset)
	case domain.Easy:
		next = s.clock.StartOfDay(now).AddDate(0, 0, easyDays)
	default:
		return domain.ScheduleUpdate{}, fmt.Errorf("%w: %v", ErrInvalidDecision, decision)
	}
	u.NextScheduleDate = &next
	return u, nil
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
