package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/conorfennell/flipdeck/internal/domain"
	"github.com/conorfennell/flipdeck/internal/gitsource"
	"github.com/conorfennell/flipdeck/internal/parser"
	"github.com/conorfennell/flipdeck/internal/storage"
	"github.com/conorfennell/flipdeck/internal/sync"
)

func importFlags(fs *pflag.FlagSet) {
	fs.String("name", "", "Collection name (defaults to the source's base name)")
	fs.String("sheet", "", "Spreadsheet sheet to read (defaults to the first)")
	fs.String("front-column", "A", "Spreadsheet column holding card fronts")
	fs.String("back-column", "B", "Spreadsheet column holding card backs")
	fs.Bool("no-header", false, "Spreadsheet has no header row")
}

func syncOptions(fs *pflag.FlagSet) sync.Options {
	opts := sync.DefaultOptions()
	if fs.Lookup("sheet") == nil {
		return opts
	}
	opts.Sheet.Sheet, _ = fs.GetString("sheet")
	opts.Sheet.FrontColumn, _ = fs.GetString("front-column")
	opts.Sheet.BackColumn, _ = fs.GetString("back-column")
	noHeader, _ := fs.GetBool("no-header")
	opts.Sheet.SkipHeader = !noHeader
	return opts
}

// sourceName derives a collection name from a path or URL.
func sourceName(source string) string {
	base := filepath.Base(strings.TrimSuffix(source, "/"))
	base = strings.TrimSuffix(base, ".git")
	if ext := filepath.Ext(base); ext == ".md" || parser.IsSpreadsheet(base) {
		base = strings.TrimSuffix(base, ext)
	}
	if i := strings.LastIndex(base, ":"); i >= 0 {
		base = base[i+1:]
	}
	return base
}

func runImport(ctx context.Context, a *app, fs *pflag.FlagSet) error {
	if fs.NArg() != 1 {
		return errors.New("import needs exactly one path or git URL")
	}
	source := fs.Arg(0)

	sourceType := domain.SourceLocal
	if gitsource.IsURL(source) {
		sourceType = domain.SourceGit
	} else {
		abs, err := filepath.Abs(source)
		if err != nil {
			return err
		}
		if _, err := os.Stat(abs); err != nil {
			return err
		}
		source = abs
	}

	name, _ := fs.GetString("name")
	if name == "" {
		name = sourceName(source)
	}

	col, err := a.db.FindCollectionByName(ctx, name)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		col, err = a.db.CreateCollection(ctx, name, source, sourceType)
		if err != nil {
			return err
		}
	case err != nil:
		return err
	default:
		if err := a.db.UpdateCollectionSource(ctx, col.ID, source, sourceType); err != nil {
			return err
		}
		col.SourcePath, col.SourceType = source, sourceType
	}

	opts := syncOptions(fs)
	dir, err := sync.SourceDir(ctx, col, a.cfg.ReposDir, opts)
	if err != nil {
		return err
	}
	report, err := sync.Reconcile(ctx, a.db, col, dir, opts)
	if err != nil {
		return err
	}
	printReport(a, report)
	return nil
}

func runSync(ctx context.Context, a *app, fs *pflag.FlagSet) error {
	reports, err := sync.RunAll(ctx, a.db, a.cfg.ReposDir, syncOptions(fs))
	if errors.Is(err, sync.ErrNoSources) {
		fmt.Fprintln(a.out, "No collections with a source. Add one with: flipdeck import <path/or/url.git>")
		return nil
	}
	if err != nil {
		return err
	}
	for _, r := range reports {
		printReport(a, r)
	}
	return nil
}

func printReport(a *app, r sync.Report) {
	fmt.Fprintf(a.out, "%s: %d cards (%d new, %d unchanged, %d removed), %d errors.\n",
		r.Collection, r.Parsed, r.Inserted, r.Kept, r.Deleted, len(r.Errors))
	for _, e := range r.Errors {
		fmt.Fprintf(a.out, "- %s\n", e)
	}
}

func runCollections(ctx context.Context, a *app, _ *pflag.FlagSet) error {
	collections, err := a.db.ListCollections(ctx)
	if err != nil {
		return err
	}
	if len(collections) == 0 {
		fmt.Fprintln(a.out, "No collections yet.")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tCARDS\tDUE\tSOURCE")
	for _, col := range collections {
		cards, err := a.db.CardsByCollection(ctx, col.ID)
		if err != nil {
			return err
		}
		source := "-"
		if col.SourceType != domain.SourceNone && col.SourcePath != "" {
			source = fmt.Sprintf("%s (%s)", col.SourcePath, col.SourceType)
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", col.Name, len(cards), len(a.scheduler.Due(cards)), source)
	}
	return w.Flush()
}

func runDue(ctx context.Context, a *app, fs *pflag.FlagSet) error {
	id, name, err := a.collectionArg(ctx, fs)
	if err != nil {
		return err
	}
	cards, err := a.db.CardsByCollection(ctx, id)
	if err != nil {
		return err
	}

	due := a.scheduler.Due(cards)
	if len(due) == 0 {
		fmt.Fprintf(a.out, "%s: nothing to review.\n", name)
		return nil
	}

	counts := make(map[domain.Grade]int)
	for _, c := range due {
		counts[c.LastGrade]++
	}
	fmt.Fprintf(a.out, "%s: %d due", name, len(due))
	var parts []string
	for _, g := range []domain.Grade{domain.New, domain.Again, domain.Hard, domain.Good, domain.Easy} {
		if counts[g] > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", counts[g], strings.ToLower(g.String())))
		}
	}
	fmt.Fprintf(a.out, " (%s).\n", strings.Join(parts, ", "))
	return nil
}

func runDelete(ctx context.Context, a *app, fs *pflag.FlagSet) error {
	id, name, err := a.collectionArg(ctx, fs)
	if err != nil {
		return err
	}
	n, err := a.db.CountCards(ctx, id)
	if err != nil {
		return err
	}
	if err := a.db.DeleteCollection(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Deleted %s (%d cards).\n", name, n)
	return nil
}
