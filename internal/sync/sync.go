package sync

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/conorfennell/flipdeck/internal/domain"
	"github.com/conorfennell/flipdeck/internal/fingerprint"
	"github.com/conorfennell/flipdeck/internal/gitsource"
	"github.com/conorfennell/flipdeck/internal/parser"
)

// Store is the persistence the importer needs.
type Store interface {
	ListCollections(ctx context.Context) ([]domain.Collection, error)
	CardsByCollection(ctx context.Context, collectionID string) ([]domain.Card, error)
	InsertCard(ctx context.Context, card domain.Card) error
	DeleteCard(ctx context.Context, id string) error
	TouchCollectionScanned(ctx context.Context, id string, at time.Time) error
}

// Options controls how source files are read.
type Options struct {
	Sheet parser.SheetOptions
	// GitProgress receives clone and pull progress when non-nil.
	GitProgress io.Writer
}

// DefaultOptions reads spreadsheets with parser.DefaultSheetOptions.
func DefaultOptions() Options {
	return Options{Sheet: parser.DefaultSheetOptions()}
}

// Report summarises one reconciliation.
type Report struct {
	Collection string
	Parsed     int
	Inserted   int
	Kept       int
	Deleted    int
	Errors     []error
}

// Reconcile makes the cards of col match the card files under path.
// New cards are inserted as New, cards that disappeared are deleted, and
// cards still present keep their schedule state. path may be a single
// file. Per-file problems are collected in the report.
func Reconcile(ctx context.Context, store Store, col domain.Collection, path string, opts Options) (Report, error) {
	report := Report{Collection: col.Name}

	existing, err := store.CardsByCollection(ctx, col.ID)
	if err != nil {
		return report, fmt.Errorf("loading cards for %s: %w", col.Name, err)
	}
	known := make(map[string]bool, len(existing))
	for _, c := range existing {
		known[c.ID] = true
	}
	found := make(map[string]bool)

	walkErr := filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return fs.SkipDir
			}
			return nil
		}

		cards, parseErr := parseSource(p, opts)
		if parseErr != nil {
			report.Errors = append(report.Errors, fmt.Errorf("parsing %s: %w", p, parseErr))
		}
		for _, parsed := range cards {
			card := domain.NewCard(fingerprint.Of(col.ID, parsed.Front, parsed.Back), col.ID, parsed.Front, parsed.Back)
			if found[card.ID] {
				continue
			}
			found[card.ID] = true
			report.Parsed++

			if known[card.ID] {
				report.Kept++
				continue
			}
			slog.Debug("New card found, inserting", "collection", col.Name, "card", card.ID)
			if err := store.InsertCard(ctx, card); err != nil {
				report.Errors = append(report.Errors, fmt.Errorf("inserting %s: %w", card.ID, err))
				continue
			}
			report.Inserted++
		}
		return nil
	})
	if walkErr != nil {
		return report, fmt.Errorf("walking %s: %w", path, walkErr)
	}

	for _, c := range existing {
		if found[c.ID] {
			continue
		}
		slog.Debug("Orphaned card, deleting", "collection", col.Name, "card", c.ID)
		if err := store.DeleteCard(ctx, c.ID); err != nil {
			slog.Warn("Failed to delete orphaned card", "card", c.ID, "error", err)
			report.Errors = append(report.Errors, fmt.Errorf("deleting %s: %w", c.ID, err))
			continue
		}
		report.Deleted++
	}

	if err := store.TouchCollectionScanned(ctx, col.ID, time.Now().UTC()); err != nil {
		slog.Warn("Failed to update last scanned", "collection", col.Name, "error", err)
	}

	slog.Info("reconciliation complete",
		"collection", col.Name,
		"path", path,
		"parsed_cards", report.Parsed,
		"inserted", report.Inserted,
		"orphaned_deleted", report.Deleted,
		"errors", len(report.Errors),
	)
	return report, nil
}

func parseSource(path string, opts Options) ([]domain.Card, error) {
	switch {
	case strings.HasSuffix(strings.ToLower(path), ".md"):
		return parser.ParseFile(path)
	case parser.IsSpreadsheet(path):
		return parser.ParseSpreadsheet(path, opts.Sheet)
	}
	return nil, nil
}

// SourceDir returns the directory a collection's source is read from,
// syncing git sources into reposDir first.
func SourceDir(ctx context.Context, col domain.Collection, reposDir string, opts Options) (string, error) {
	switch col.SourceType {
	case domain.SourceLocal:
		return col.SourcePath, nil
	case domain.SourceGit:
		localRepoPath, err := gitsource.LocalPath(reposDir, col.SourcePath)
		if err != nil {
			return "", err
		}
		if err := os.MkdirAll(filepath.Dir(localRepoPath), os.ModePerm); err != nil {
			return "", fmt.Errorf("creating repos directory: %w", err)
		}
		if err := gitsource.Sync(ctx, col.SourcePath, localRepoPath, opts.GitProgress); err != nil {
			return "", err
		}
		return localRepoPath, nil
	}
	return "", fmt.Errorf("collection %s has no source", col.Name)
}

// ErrNoSources is returned by RunAll when no collection has a source.
var ErrNoSources = errors.New("no collections with a source")

// RunAll reconciles every collection that has a source. A failing
// collection is logged and skipped.
func RunAll(ctx context.Context, store Store, reposDir string, opts Options) ([]Report, error) {
	slog.Info("Starting sync process for all sources...")
	collections, err := store.ListCollections(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing collections: %w", err)
	}

	var reports []Report
	for _, col := range collections {
		if col.SourceType != domain.SourceLocal && col.SourceType != domain.SourceGit {
			continue
		}
		slog.Info("Syncing source", "collection", col.Name, "type", col.SourceType, "path", col.SourcePath)

		dir, err := SourceDir(ctx, col, reposDir, opts)
		if err != nil {
			slog.Error("Error preparing source", "collection", col.Name, "error", err)
			reports = append(reports, Report{Collection: col.Name, Errors: []error{err}})
			continue
		}
		report, err := Reconcile(ctx, store, col, dir, opts)
		if err != nil {
			slog.Error("Error reconciling source", "collection", col.Name, "error", err)
			report.Errors = append(report.Errors, err)
		}
		reports = append(reports, report)
	}

	if len(reports) == 0 {
		return nil, ErrNoSources
	}
	slog.Info("Sync process complete.")
	return reports, nil
}
