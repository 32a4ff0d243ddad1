package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Grade is the outcome of the most recent review of a card.
type Grade int

const (
	New Grade = iota
	Again
	Hard
	Good
	Easy
)

// ErrUnknownGrade is returned when text does not name a grade.
var ErrUnknownGrade = errors.New("unknown grade")

var gradeNames = [...]string{New: "New", Again: "Again", Hard: "Hard", Good: "Good", Easy: "Easy"}

// Valid reports whether g is one of New, Again, Hard, Good or Easy.
func (g Grade) Valid() bool {
	return g >= New && g <= Easy
}

func (g Grade) String() string {
	if g.Valid() {
		return gradeNames[g]
	}
	return fmt.Sprintf("Grade(%d)", int(g))
}

// MarshalText implements encoding.TextMarshaler. Unknown grades keep
// their String form so a stray stored value still encodes.
func (g Grade) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}

// ParseGrade accepts a grade name in any case, or the single-letter
// shortcuts a, h, g and e used at the review prompt.
func ParseGrade(s string) (Grade, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "new":
		return New, nil
	case "again", "a":
		return Again, nil
	case "hard", "h":
		return Hard, nil
	case "good", "g":
		return Good, nil
	case "easy", "e":
		return Easy, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownGrade, s)
}
