package sync

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conorfennell/flipdeck/internal/domain"
	"github.com/conorfennell/flipdeck/internal/fingerprint"
	"github.com/conorfennell/flipdeck/internal/storage"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func setup(t *testing.T) (*storage.DB, domain.Collection, string) {
	t.Helper()
	db, err := storage.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	dir := t.TempDir()
	col, err := db.CreateCollection(context.Background(), "deck", dir, domain.SourceLocal)
	require.NoError(t, err)
	return db, col, dir
}

func TestReconcile(t *testing.T) {
	ctx := context.Background()
	db, col, dir := setup(t)

	writeFile(t, filepath.Join(dir, "a.md"), "Q: one\nA: 1\n\nQ: two\nA: 2\n")
	writeFile(t, filepath.Join(dir, "nested", "b.csv"), "front,back\nthree,3\n")
	writeFile(t, filepath.Join(dir, "notes.txt"), "Q: ignored\nA: not a card file\n")
	writeFile(t, filepath.Join(dir, ".git", "c.md"), "Q: hidden\nA: skipped\n")

	report, err := Reconcile(ctx, db, col, dir, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 3, report.Parsed)
	assert.Equal(t, 3, report.Inserted)
	assert.Empty(t, report.Errors)

	cards, err := db.CardsByCollection(ctx, col.ID)
	require.NoError(t, err)
	require.Len(t, cards, 3)
	for _, c := range cards {
		assert.True(t, c.IsNew)
		assert.Equal(t, fingerprint.Of(col.ID, c.Front, c.Back), c.ID)
	}

	found, err := db.FindCollection(ctx, col.ID)
	require.NoError(t, err)
	assert.NotNil(t, found.LastScanned)
}

func TestReconcileKeepsScheduleAndDeletesOrphans(t *testing.T) {
	ctx := context.Background()
	db, col, dir := setup(t)
	path := filepath.Join(dir, "deck.md")

	writeFile(t, path, "Q: keep\nA: me\n---\nQ: drop\nA: me\n")
	_, err := Reconcile(ctx, db, col, dir, DefaultOptions())
	require.NoError(t, err)

	keepID := fingerprint.Of(col.ID, "keep", "me")
	next := time.Date(2024, 1, 2, 0, 1, 0, 0, time.UTC)
	require.NoError(t, db.ApplyUpdate(ctx, domain.ScheduleUpdate{CardID: keepID, Grade: domain.Good, NextScheduleDate: &next}))

	writeFile(t, path, "Q: keep\nA: me\n---\nQ: fresh\nA: card\n")
	report, err := Reconcile(ctx, db, col, dir, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Kept)
	assert.Equal(t, 1, report.Inserted)
	assert.Equal(t, 1, report.Deleted)

	kept, err := db.FindCard(ctx, keepID)
	require.NoError(t, err)
	assert.Equal(t, domain.Good, kept.LastGrade)
	assert.False(t, kept.IsNew)

	_, err = db.FindCard(ctx, fingerprint.Of(col.ID, "drop", "me"))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestReconcileDeduplicates(t *testing.T) {
	ctx := context.Background()
	db, col, dir := setup(t)
	writeFile(t, filepath.Join(dir, "a.md"), "Q: same\nA: card\n")
	writeFile(t, filepath.Join(dir, "b.md"), "Q: SAME \nA: card\n")

	report, err := Reconcile(ctx, db, col, dir, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Inserted)
	assert.Empty(t, report.Errors)
}

func TestReconcileSingleFile(t *testing.T) {
	ctx := context.Background()
	db, col, dir := setup(t)
	path := filepath.Join(dir, "words.csv")
	writeFile(t, path, "front,back\nuno,one\ndos,two\n")

	report, err := Reconcile(ctx, db, col, path, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Inserted)
}

func TestReconcileMissingPath(t *testing.T) {
	db, col, dir := setup(t)
	_, err := Reconcile(context.Background(), db, col, filepath.Join(dir, "nope"), DefaultOptions())
	assert.Error(t, err)
}

func TestRunAll(t *testing.T) {
	ctx := context.Background()
	db, col, dir := setup(t)
	writeFile(t, filepath.Join(dir, "deck.md"), "Q: a\nA: b\n")

	_, err := db.CreateCollection(ctx, "manual", "", domain.SourceNone)
	require.NoError(t, err)

	reports, err := RunAll(ctx, db, t.TempDir(), DefaultOptions())
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, col.Name, reports[0].Collection)
	assert.Equal(t, 1, reports[0].Inserted)
}

func TestRunAllWithoutSources(t *testing.T) {
	db, err := storage.Open(":memory:")
	require.NoError(t, err)
	defer db.Close()

	_, err = RunAll(context.Background(), db, t.TempDir(), DefaultOptions())
	assert.ErrorIs(t, err, ErrNoSources)
}

func TestReconcileKeepsCardsThatDifferOnlyByLineBreak(t *testing.T) {
	ctx := context.Background()
	db, col, dir := setup(t)

	writeFile(t, filepath.Join(dir, "capitals.md"),
		"Q: capital\nof France\nA: Paris\n---\nQ: capital\nA: of France\nParis\n")

	report, err := Reconcile(ctx, db, col, dir, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Parsed)
	assert.Equal(t, 2, report.Inserted)

	cards, err := db.CardsByCollection(ctx, col.ID)
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, "capital\nof France", cards[0].Front)
	assert.Equal(t, "Paris", cards[0].Back)
	assert.Equal(t, "capital", cards[1].Front)
	assert.Equal(t, "of France\nParis", cards[1].Back)
}
