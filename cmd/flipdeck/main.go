package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/pflag"

	"github.com/conorfennell/flipdeck/internal/config"
	"github.com/conorfennell/flipdeck/internal/scheduler"
	"github.com/conorfennell/flipdeck/internal/storage"
)

const usage = `usage: flipdeck <command> [flags]

commands:
  import <path|git-url>   import or re-import a collection
  sync                    re-import every collection that has a source
  collections             list collections with card and due counts
  due <collection>        show what is due today
  cards <collection>      list cards with their schedule
  show <card-id>          show one card
  review <collection>     review cards interactively
  delete <collection>     delete a collection and its cards

Run "flipdeck <command> --help" for command flags.
`

// newClock is replaced in tests to pin the time.
var newClock = func(loc *time.Location) scheduler.Clock {
	return scheduler.NewSystemClock(loc)
}

// errUsage is returned for a missing or unknown command.
var errUsage = errors.New("usage")

// app carries what every command needs once config is loaded.
type app struct {
	cfg       *config.Config
	db        *storage.DB
	scheduler *scheduler.Scheduler
	loc       *time.Location
	in        io.Reader
	out       io.Writer
}

type command struct {
	flags func(fs *pflag.FlagSet)
	run   func(ctx context.Context, a *app, fs *pflag.FlagSet) error
}

var commands = map[string]command{
	"import":      {flags: importFlags, run: runImport},
	"sync":        {run: runSync},
	"collections": {run: runCollections},
	"due":         {run: runDue},
	"cards":       {flags: cardsFlags, run: runCards},
	"show":        {run: runShow},
	"review":      {flags: reviewFlags, run: runReview},
	"delete":      {run: runDelete},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "flipdeck: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, in io.Reader, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	name := args[0]
	cmd, ok := commands[name]
	if !ok {
		return fmt.Errorf("unknown command %q: %w", name, errUsage)
	}

	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(out)
	config.RegisterFlags(fs)
	if cmd.flags != nil {
		cmd.flags(fs)
	}
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	cfg, err := config.Load(fs)
	if err != nil {
		return err
	}
	slog.SetDefault(cfg.Logger())

	loc, err := cfg.Location()
	if err != nil {
		return fmt.Errorf("resolving time zone: %w", err)
	}

	db, err := storage.Open(cfg.DB)
	if err != nil {
		return err
	}
	defer db.Close()
	slog.Debug("Database opened successfully", "path", cfg.DB)

	a := &app{
		cfg:       cfg,
		db:        db,
		scheduler: scheduler.New(newClock(loc)),
		loc:       loc,
		in:        in,
		out:       out,
	}
	return cmd.run(ctx, a, fs)
}

// collectionArg resolves the single positional collection name.
func (a *app) collectionArg(ctx context.Context, fs *pflag.FlagSet) (string, string, error) {
	if fs.NArg() != 1 {
		return "", "", fmt.Errorf("%s needs exactly one collection name", fs.Name())
	}
	col, err := a.db.FindCollectionByName(ctx, fs.Arg(0))
	if err != nil {
		return "", "", err
	}
	return col.ID, col.Name, nil
}
