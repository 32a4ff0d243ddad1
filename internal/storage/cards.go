package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/conorfennell/flipdeck/internal/domain"
)

const cardColumns = `id, collection_id, front, back, is_new, last_grade, next_schedule_date`

func scanCard(row rowScanner) (domain.Card, error) {
	var (
		c     domain.Card
		grade int
		next  sql.NullTime
	)
	if err := row.Scan(&c.ID, &c.CollectionID, &c.Front, &c.Back, &c.IsNew, &grade, &next); err != nil {
		return domain.Card{}, err
	}
	// Unknown grade values are kept as-is; the scheduler never treats
	// them as due.
	c.LastGrade = domain.Grade(grade)
	c.NextScheduleDate = fromNullTime(next)
	return c, nil
}

// InsertCard inserts a card with whatever schedule state it carries.
func (db *DB) InsertCard(ctx context.Context, card domain.Card) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO cards (`+cardColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		card.ID,
		card.CollectionID,
		card.Front,
		card.Back,
		card.IsNew,
		int(card.LastGrade),
		toNullTime(card.NextScheduleDate),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("card %s: %w", card.ID, ErrDuplicate)
		}
		return fmt.Errorf("failed to insert card %s: %w", card.ID, err)
	}
	return nil
}

// FindCard retrieves a card by ID.
func (db *DB) FindCard(ctx context.Context, id string) (domain.Card, error) {
	row := db.conn.QueryRowContext(ctx, `SELECT `+cardColumns+` FROM cards WHERE id = ?`, id)
	c, err := scanCard(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Card{}, fmt.Errorf("card %s: %w", id, ErrNotFound)
		}
		return domain.Card{}, fmt.Errorf("failed to find card %s: %w", id, err)
	}
	return c, nil
}

// CardsByCollection returns the cards of a collection in insertion order.
func (db *DB) CardsByCollection(ctx context.Context, collectionID string) ([]domain.Card, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT `+cardColumns+` FROM cards WHERE collection_id = ? ORDER BY seq
	`, collectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cards for collection %s: %w", collectionID, err)
	}
	defer rows.Close()

	var cards []domain.Card
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan card row for collection %s: %w", collectionID, err)
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

// CountCards returns the number of cards in a collection.
func (db *DB) CountCards(ctx context.Context, collectionID string) (int, error) {
	var n int
	err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM cards WHERE collection_id = ?`, collectionID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count cards for collection %s: %w", collectionID, err)
	}
	return n, nil
}

// ApplyUpdate writes the schedule fields of a graded card.
func (db *DB) ApplyUpdate(ctx context.Context, u domain.ScheduleUpdate) error {
	res, err := db.conn.ExecContext(ctx, `
		UPDATE cards
		SET last_grade = ?, next_schedule_date = ?, is_new = ?
		WHERE id = ?
	`,
		int(u.Grade),
		toNullTime(u.NextScheduleDate),
		u.IsNew,
		u.CardID,
	)
	if err != nil {
		return fmt.Errorf("failed to update schedule for card %s: %w", u.CardID, err)
	}
	return expectOne(res, "card", u.CardID)
}

// DeleteCard removes a card from the database by its ID.
func (db *DB) DeleteCard(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM cards WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete card %s: %w", id, err)
	}
	return expectOne(res, "card", id)
}
