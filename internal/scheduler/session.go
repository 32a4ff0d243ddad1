package scheduler

import "slices"

// Session is the working queue of one review pass. It holds card IDs;
// the cards themselves belong to the caller's store.
//
// A Session is owned by a single review loop and is not safe for
// concurrent use.
type Session struct {
	queue     []string
	current   int
	cardsSeen int
}

func newSession(ids []string) *Session {
	return &Session{queue: ids}
}

// NewSession returns a session over ids in the given order.
func NewSession(ids []string) *Session {
	return newSession(slices.Clone(ids))
}

// Len is the number of cards still queued.
func (s *Session) Len() int { return len(s.queue) }

// Finished reports whether the queue is empty.
func (s *Session) Finished() bool { return len(s.queue) == 0 }

// CardsSeen counts the cards removed from the queue so far.
func (s *Session) CardsSeen() int { return s.cardsSeen }

// Index is the position of the current card. It is meaningless once
// the session is finished.
func (s *Session) Index() int { return s.current }

// IDs returns a copy of the queue.
func (s *Session) IDs() []string { return slices.Clone(s.queue) }

// Current returns the ID under the pointer.
func (s *Session) Current() (string, bool) {
	if s.Finished() {
		return "", false
	}
	return s.queue[s.current], true
}

// Advance moves the pointer to the next card, wrapping to the front.
func (s *Session) Advance() {
	if s.Finished() {
		return
	}
	s.current = (s.current + 1) % len(s.queue)
}

// Remove takes id out of the queue and counts it as seen. It reports
// false if id is not queued.
func (s *Session) Remove(id string) bool {
	i := slices.Index(s.queue, id)
	if i < 0 {
		return false
	}
	s.queue = slices.Delete(s.queue, i, i+1)
	s.cardsSeen++
	if i < s.current {
		s.current--
	}
	s.wrap()
	return true
}

// Requeue moves id to the back of the queue without counting it as seen.
func (s *Session) Requeue(id string) bool {
	i := slices.Index(s.queue, id)
	if i < 0 {
		return false
	}
	s.queue = append(slices.Delete(s.queue, i, i+1), id)
	if i < s.current {
		s.current--
	}
	s.wrap()
	return true
}

// wrap keeps the pointer inside the queue: past the end means index 0.
func (s *Session) wrap() {
	if s.current >= len(s.queue) {
		s.current = 0
	}
}
