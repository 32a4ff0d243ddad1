package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/conorfennell/flipdeck/internal/domain"
	"github.com/conorfennell/flipdeck/internal/review"
)

func reviewFlags(fs *pflag.FlagSet) {
	fs.Bool("all", false, "Review every card, ignoring the schedule")
	fs.Bool("random", false, "Review a random sample, ignoring the schedule")
	fs.Int("count", 0, "Sample size for --random (defaults to review.sample_size)")
	fs.Bool("swap", false, "Show backs as prompts (same as --review.swap)")
}

func reviewMode(a *app, fs *pflag.FlagSet) (review.Mode, error) {
	all, _ := fs.GetBool("all")
	random, _ := fs.GetBool("random")
	switch {
	case all && random:
		return review.Mode{}, errors.New("--all and --random are mutually exclusive")
	case all:
		return review.All(), nil
	case random:
		n, _ := fs.GetInt("count")
		if n <= 0 {
			n = a.cfg.Review.SampleSize
		}
		return review.Random(n), nil
	}
	return review.Due(), nil
}

func runReview(ctx context.Context, a *app, fs *pflag.FlagSet) error {
	id, name, err := a.collectionArg(ctx, fs)
	if err != nil {
		return err
	}
	mode, err := reviewMode(a, fs)
	if err != nil {
		return err
	}

	run, err := review.NewRunner(a.db, a.scheduler).Start(ctx, id, mode)
	if err != nil {
		return err
	}
	swap, _ := fs.GetBool("swap")
	run.SetSwap(swap || a.cfg.Review.Swap)

	if run.Finished() {
		fmt.Fprintf(a.out, "%s: nothing to review.\n", name)
		return nil
	}

	total := run.Remaining()
	prompts := bufio.NewScanner(a.in)
	readLine := func() (string, bool) {
		if !prompts.Scan() {
			return "", false
		}
		return strings.TrimSpace(prompts.Text()), true
	}

loop:
	for !run.Finished() {
		if err := ctx.Err(); err != nil {
			break
		}
		card, _ := run.Current()
		prompt, answer := run.Face(card)

		seen := run.Summary().Seen
		fmt.Fprintf(a.out, "\n[%d/%d] %s\n", seen+1, total, prompt)
		fmt.Fprint(a.out, "(enter to reveal, s to skip, q to quit) > ")
		line, ok := readLine()
		if !ok {
			break
		}
		switch strings.ToLower(line) {
		case "q":
			break loop
		case "s":
			run.Skip()
			continue
		}

		fmt.Fprintf(a.out, "%s\n", answer)
		for {
			fmt.Fprint(a.out, "[h]ard  [g]ood  ([a]gain, [e]asy)  s skip  q quit > ")
			line, ok := readLine()
			if !ok {
				break loop
			}
			switch strings.ToLower(line) {
			case "q":
				break loop
			case "s":
				run.Skip()
				continue loop
			}

			decision, err := domain.ParseGrade(line)
			if err != nil || decision == domain.New {
				fmt.Fprintln(a.out, "Please answer h, g, a or e.")
				continue
			}
			if _, err := run.Answer(ctx, decision); err != nil {
				if !errors.Is(err, review.ErrPersist) {
					return err
				}
				fmt.Fprintln(a.out, "Warning: the grade was recorded for this session but could not be saved.")
			}
			break
		}
	}

	printSummary(a, name, run.Summary())
	return nil
}

func printSummary(a *app, name string, s review.Summary) {
	if s.Remaining == 0 {
		fmt.Fprintf(a.out, "\n%s: session complete, %d cards reviewed.\n", name, s.Seen)
	} else {
		fmt.Fprintf(a.out, "\n%s: %d cards reviewed, %d left.\n", name, s.Seen, s.Remaining)
	}
	var parts []string
	for _, g := range []domain.Grade{domain.Again, domain.Hard, domain.Good, domain.Easy} {
		if n := s.Grades[g]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s %d", g, n))
		}
	}
	if len(parts) > 0 {
		fmt.Fprintln(a.out, strings.Join(parts, ", "))
	}
}
