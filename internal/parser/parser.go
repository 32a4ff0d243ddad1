package parser

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/conorfennell/flipdeck/internal/domain"
)

type field int

const (
	none field = iota
	front
	back
)

// Each field has a long and a short prefix: "Q:"/"F:" start the front,
// "A:"/"B:" start the back.
var prefixes = []struct {
	prefix string
	field  field
}{
	{"Q:", front},
	{"F:", front},
	{"A:", back},
	{"B:", back},
}

const separator = "---"

// ParseFile reads a markdown file from the given path and extracts all cards.
func ParseFile(path string) ([]domain.Card, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return Parse(file)
}

// Parse extracts cards from markdown. A card starts at a front prefix
// and runs until the next front prefix, a "---" line, or end of input.
// Lines without a prefix continue the current field. Cards with an
// empty front are dropped.
func Parse(r io.Reader) ([]domain.Card, error) {
	scanner := bufio.NewScanner(r)
	var (
		cards   []domain.Card
		current domain.Card
		block   []string
		reading = none
	)

	flushField := func() {
		if len(block) == 0 {
			return
		}
		content := strings.TrimRight(strings.Join(block, "\n"), "\n")
		switch reading {
		case front:
			current.Front = content
		case back:
			current.Back = content
		}
		block = nil
	}
	finishCard := func() {
		flushField()
		if current.Front != "" {
			cards = append(cards, current)
		}
		current = domain.Card{}
		reading = none
	}

	for scanner.Scan() {
		line := scanner.Text()

		if strings.TrimSpace(line) == separator {
			finishCard()
			continue
		}

		f, rest, ok := cutPrefix(line)
		if !ok {
			if reading != none {
				block = append(block, line)
			}
			continue
		}

		if f == front && reading != none {
			finishCard()
		} else {
			flushField()
		}
		reading = f
		block = append(block, rest)
	}

	finishCard()

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return cards, nil
}

func cutPrefix(line string) (field, string, bool) {
	for _, p := range prefixes {
		if rest, ok := strings.CutPrefix(line, p.prefix); ok {
			return p.field, strings.TrimPrefix(rest, " "), true
		}
	}
	return none, "", false
}
