package domain

import "time"

// Card is a single front/back flashcard and its schedule state.
type Card struct {
	ID           string
	CollectionID string
	Front        string
	Back         string

	// IsNew stays true until the card is graded for the first time.
	IsNew     bool
	LastGrade Grade
	// NextScheduleDate is nil for cards that have never been scheduled.
	NextScheduleDate *time.Time
}

// NewCard returns an ungraded card.
func NewCard(id, collectionID, front, back string) Card {
	return Card{
		ID:           id,
		CollectionID: collectionID,
		Front:        front,
		Back:         back,
		IsNew:        true,
		LastGrade:    New,
	}
}

// ScheduleUpdate describes the new schedule state of a card after a grade.
// The scheduler produces it; the owner of the card applies and persists it.
type ScheduleUpdate struct {
	CardID           string
	Grade            Grade
	NextScheduleDate *time.Time
	IsNew            bool
}

// Apply copies the update onto c. It is a no-op if the IDs differ.
func (u ScheduleUpdate) Apply(c *Card) {
	if c == nil || c.ID != u.CardID {
		return
	}
	c.LastGrade = u.Grade
	c.IsNew = u.IsNew
	if u.NextScheduleDate == nil {
		c.NextScheduleDate = nil
		return
	}
	next := *u.NextScheduleDate
	c.NextScheduleDate = &next
}
