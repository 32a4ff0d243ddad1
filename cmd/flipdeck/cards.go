package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"

	"github.com/conorfennell/flipdeck/internal/domain"
)

const dateLayout = "2006-01-02 15:04"

// cardView is the listing shape of a card. Grade encodes by name.
type cardView struct {
	ID    string       `json:"id"`
	Front string       `json:"front"`
	Back  string       `json:"back"`
	Grade domain.Grade `json:"grade"`
	New   bool         `json:"new"`
	Next  *time.Time   `json:"next,omitempty"`
	Due   bool         `json:"due"`
}

func (a *app) view(c domain.Card) cardView {
	v := cardView{
		ID:    c.ID,
		Front: c.Front,
		Back:  c.Back,
		Grade: c.LastGrade,
		New:   c.IsNew,
		Due:   a.scheduler.IsDue(c),
	}
	if c.NextScheduleDate != nil {
		next := c.NextScheduleDate.In(a.loc)
		v.Next = &next
	}
	return v
}

func (v cardView) nextString() string {
	if v.Next == nil {
		return "-"
	}
	return v.Next.Format(dateLayout)
}

func cardsFlags(fs *pflag.FlagSet) {
	fs.Bool("json", false, "Print cards as JSON")
}

func runCards(ctx context.Context, a *app, fs *pflag.FlagSet) error {
	id, _, err := a.collectionArg(ctx, fs)
	if err != nil {
		return err
	}
	cards, err := a.db.CardsByCollection(ctx, id)
	if err != nil {
		return err
	}
	views := make([]cardView, 0, len(cards))
	for _, c := range cards {
		views = append(views, a.view(c))
	}

	if asJSON, _ := fs.GetBool("json"); asJSON {
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(views)
	}

	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tGRADE\tNEXT\tDUE\tFRONT")
	for _, v := range views {
		front, _, _ := strings.Cut(v.Front, "\n")
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", v.ID, v.Grade, v.nextString(), yesNo(v.Due), front)
	}
	return w.Flush()
}

func runShow(ctx context.Context, a *app, fs *pflag.FlagSet) error {
	if fs.NArg() != 1 {
		return errors.New("show needs exactly one card id")
	}
	card, err := a.db.FindCard(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	col, err := a.db.FindCollection(ctx, card.CollectionID)
	if err != nil {
		return err
	}

	v := a.view(card)
	fmt.Fprintf(a.out, "Collection: %s\n", col.Name)
	fmt.Fprintf(a.out, "Front:\n%s\n", v.Front)
	fmt.Fprintf(a.out, "Back:\n%s\n", v.Back)
	fmt.Fprintf(a.out, "Grade: %s\n", v.Grade)
	fmt.Fprintf(a.out, "Next: %s\n", v.nextString())
	fmt.Fprintf(a.out, "Due: %s\n", yesNo(v.Due))
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
