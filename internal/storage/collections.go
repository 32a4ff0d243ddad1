package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/conorfennell/flipdeck/internal/domain"
)

const collectionColumns = `id, name, source_path, source_type, last_scanned, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCollection(row rowScanner) (domain.Collection, error) {
	var (
		c           domain.Collection
		sourceType  string
		lastScanned sql.NullTime
	)
	if err := row.Scan(&c.ID, &c.Name, &c.SourcePath, &sourceType, &lastScanned, &c.CreatedAt); err != nil {
		return domain.Collection{}, err
	}
	c.SourceType = domain.SourceType(sourceType)
	c.LastScanned = fromNullTime(lastScanned)
	return c, nil
}

// CreateCollection inserts a new collection with a fresh ID.
func (db *DB) CreateCollection(ctx context.Context, name, sourcePath string, sourceType domain.SourceType) (domain.Collection, error) {
	if sourceType == "" {
		sourceType = domain.SourceNone
	}
	c := domain.Collection{
		ID:         uuid.NewString(),
		Name:       name,
		SourcePath: sourcePath,
		SourceType: sourceType,
		CreatedAt:  time.Now().UTC(),
	}
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO collections (id, name, source_path, source_type, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, c.ID, c.Name, c.SourcePath, string(c.SourceType), c.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Collection{}, fmt.Errorf("collection %q: %w", name, ErrDuplicate)
		}
		return domain.Collection{}, fmt.Errorf("failed to insert collection %q: %w", name, err)
	}
	return c, nil
}

// FindCollection retrieves a collection by ID.
func (db *DB) FindCollection(ctx context.Context, id string) (domain.Collection, error) {
	row := db.conn.QueryRowContext(ctx, `SELECT `+collectionColumns+` FROM collections WHERE id = ?`, id)
	c, err := scanCollection(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Collection{}, fmt.Errorf("collection %s: %w", id, ErrNotFound)
		}
		return domain.Collection{}, fmt.Errorf("failed to find collection %s: %w", id, err)
	}
	return c, nil
}

// FindCollectionByName retrieves a collection by its unique name.
func (db *DB) FindCollectionByName(ctx context.Context, name string) (domain.Collection, error) {
	row := db.conn.QueryRowContext(ctx, `SELECT `+collectionColumns+` FROM collections WHERE name = ?`, name)
	c, err := scanCollection(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Collection{}, fmt.Errorf("collection %q: %w", name, ErrNotFound)
		}
		return domain.Collection{}, fmt.Errorf("failed to find collection %q: %w", name, err)
	}
	return c, nil
}

// ListCollections returns every collection ordered by name.
func (db *DB) ListCollections(ctx context.Context) ([]domain.Collection, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT `+collectionColumns+` FROM collections ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	defer rows.Close()

	var collections []domain.Collection
	for rows.Next() {
		c, err := scanCollection(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan collection row: %w", err)
		}
		collections = append(collections, c)
	}
	return collections, rows.Err()
}

// UpdateCollectionSource points a collection at a new import source.
func (db *DB) UpdateCollectionSource(ctx context.Context, id, sourcePath string, sourceType domain.SourceType) error {
	res, err := db.conn.ExecContext(ctx, `
		UPDATE collections SET source_path = ?, source_type = ? WHERE id = ?
	`, sourcePath, string(sourceType), id)
	if err != nil {
		return fmt.Errorf("failed to update source for collection %s: %w", id, err)
	}
	return expectOne(res, "collection", id)
}

// TouchCollectionScanned sets last_scanned to at.
func (db *DB) TouchCollectionScanned(ctx context.Context, id string, at time.Time) error {
	res, err := db.conn.ExecContext(ctx, `UPDATE collections SET last_scanned = ? WHERE id = ?`, at, id)
	if err != nil {
		return fmt.Errorf("failed to update last scanned for collection %s: %w", id, err)
	}
	return expectOne(res, "collection", id)
}

// DeleteCollection removes a collection and, by cascade, its cards.
func (db *DB) DeleteCollection(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM collections WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete collection %s: %w", id, err)
	}
	return expectOne(res, "collection", id)
}

func expectOne(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected for %s %s: %w", kind, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return nil
}
