package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conorfennell/flipdeck/internal/domain"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestCollections(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	spanish, err := db.CreateCollection(ctx, "spanish", "/decks/spanish", domain.SourceLocal)
	require.NoError(t, err)
	assert.NotEmpty(t, spanish.ID)
	assert.Equal(t, domain.SourceLocal, spanish.SourceType)

	_, err = db.CreateCollection(ctx, "spanish", "", "")
	require.ErrorIs(t, err, ErrDuplicate)

	bare, err := db.CreateCollection(ctx, "anatomy", "", "")
	require.NoError(t, err)
	assert.Equal(t, domain.SourceNone, bare.SourceType)

	found, err := db.FindCollectionByName(ctx, "spanish")
	require.NoError(t, err)
	assert.Equal(t, spanish.ID, found.ID)
	assert.Equal(t, "/decks/spanish", found.SourcePath)
	assert.Nil(t, found.LastScanned)

	list, err := db.ListCollections(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "anatomy", list[0].Name)

	scanned := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	require.NoError(t, db.TouchCollectionScanned(ctx, spanish.ID, scanned))
	require.NoError(t, db.UpdateCollectionSource(ctx, spanish.ID, "https://example.com/decks.git", domain.SourceGit))

	found, err = db.FindCollection(ctx, spanish.ID)
	require.NoError(t, err)
	require.NotNil(t, found.LastScanned)
	assert.True(t, found.LastScanned.Equal(scanned))
	assert.Equal(t, domain.SourceGit, found.SourceType)

	_, err = db.FindCollection(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, db.DeleteCollection(ctx, "missing"), ErrNotFound)
}

func TestCardsRoundTrip(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	col, err := db.CreateCollection(ctx, "go", "", "")
	require.NoError(t, err)

	first := domain.NewCard("c1", col.ID, "What is a goroutine?", "A lightweight thread")
	second := domain.NewCard("c2", col.ID, "What is a channel?", "A typed conduit")
	require.NoError(t, db.InsertCard(ctx, second))
	require.NoError(t, db.InsertCard(ctx, first))
	require.ErrorIs(t, db.InsertCard(ctx, first), ErrDuplicate)

	cards, err := db.CardsByCollection(ctx, col.ID)
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, "c2", cards[0].ID, "cards come back in insertion order")
	assert.True(t, cards[1].IsNew)
	assert.Equal(t, domain.New, cards[1].LastGrade)
	assert.Nil(t, cards[1].NextScheduleDate)

	next := time.Date(2024, 1, 2, 0, 1, 0, 0, time.UTC)
	require.NoError(t, db.ApplyUpdate(ctx, domain.ScheduleUpdate{
		CardID:           "c1",
		Grade:            domain.Good,
		NextScheduleDate: &next,
	}))

	got, err := db.FindCard(ctx, "c1")
	require.NoError(t, err)
	assert.False(t, got.IsNew)
	assert.Equal(t, domain.Good, got.LastGrade)
	require.NotNil(t, got.NextScheduleDate)
	assert.True(t, got.NextScheduleDate.Equal(next))

	require.NoError(t, db.ApplyUpdate(ctx, domain.ScheduleUpdate{CardID: "c1", Grade: domain.Again}))
	got, err = db.FindCard(ctx, "c1")
	require.NoError(t, err)
	assert.Nil(t, got.NextScheduleDate)

	err = db.ApplyUpdate(ctx, domain.ScheduleUpdate{CardID: "nope", Grade: domain.Hard})
	assert.ErrorIs(t, err, ErrNotFound)

	n, err := db.CountCards(ctx, col.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, db.DeleteCard(ctx, "c2"))
	_, err = db.FindCard(ctx, "c2")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteCollectionCascades(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	col, err := db.CreateCollection(ctx, "doomed", "", "")
	require.NoError(t, err)
	require.NoError(t, db.InsertCard(ctx, domain.NewCard("x", col.ID, "f", "b")))

	require.NoError(t, db.DeleteCollection(ctx, col.ID))

	_, err = db.FindCard(ctx, "x")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInsertCardRequiresCollection(t *testing.T) {
	db := openTestDB(t)
	err := db.InsertCard(context.Background(), domain.NewCard("orphan", "no-such-collection", "f", "b"))
	assert.Error(t, err)
}
