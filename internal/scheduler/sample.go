package scheduler

import (
	"math/rand/v2"
	"slices"

	"github.com/conorfennell/flipdeck/internal/domain"
)

// SampleAll returns every card, for a "study everything" session.
func SampleAll(cards []domain.Card) []domain.Card {
	return slices.Clone(cards)
}

// SampleRandom picks up to n distinct cards uniformly at random. The
// picked cards keep their relative input order. A nil rng uses the
// global source.
func SampleRandom(cards []domain.Card, n int, rng *rand.Rand) []domain.Card {
	if n <= 0 {
		return nil
	}
	if n >= len(cards) {
		return slices.Clone(cards)
	}

	perm := rand.Perm
	if rng != nil {
		perm = rng.Perm
	}
	picked := perm(len(cards))[:n]
	slices.Sort(picked)

	out := make([]domain.Card, 0, n)
	for _, i := range picked {
		out = append(out, cards[i])
	}
	return out
}
