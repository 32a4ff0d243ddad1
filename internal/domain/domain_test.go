package domain

import (
	"errors"
	"testing"
	"time"
)

func TestParseGrade(t *testing.T) {
	testCases := []struct {
		input    string
		expected Grade
	}{
		{"new", New},
		{"Again", Again},
		{"a", Again},
		{" HARD ", Hard},
		{"h", Hard},
		{"good", Good},
		{"g", Good},
		{"Easy", Easy},
		{"e", Easy},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			g, err := ParseGrade(tc.input)
			if err != nil {
				t.Fatalf("ParseGrade(%q) returned an unexpected error: %v", tc.input, err)
			}
			if g != tc.expected {
				t.Errorf("Expected %v, but got %v", tc.expected, g)
			}
		})
	}

	if _, err := ParseGrade("perfect"); !errors.Is(err, ErrUnknownGrade) {
		t.Errorf("Expected ErrUnknownGrade, but got %v", err)
	}
}

func TestGradeText(t *testing.T) {
	text, err := Good.MarshalText()
	if err != nil || string(text) != "Good" {
		t.Fatalf("Expected Good, got %q (%v)", text, err)
	}

	text, err = Grade(9).MarshalText()
	if err != nil || string(text) != "Grade(9)" {
		t.Errorf("Expected Grade(9), got %q (%v)", text, err)
	}
}

func TestScheduleUpdateApply(t *testing.T) {
	card := NewCard("c1", "col", "front", "back")
	next := time.Date(2024, 1, 2, 0, 1, 0, 0, time.UTC)

	ScheduleUpdate{CardID: "other", Grade: Good, NextScheduleDate: &next}.Apply(&card)
	if !card.IsNew || card.LastGrade != New {
		t.Fatal("Expected update for a different card to be ignored")
	}

	ScheduleUpdate{CardID: "c1", Grade: Good, NextScheduleDate: &next}.Apply(&card)
	if card.IsNew {
		t.Error("Expected IsNew to be false after applying an update")
	}
	if card.LastGrade != Good {
		t.Errorf("Expected LastGrade Good, got %v", card.LastGrade)
	}
	if card.NextScheduleDate == nil || !card.NextScheduleDate.Equal(next) {
		t.Errorf("Expected next schedule date %v, got %v", next, card.NextScheduleDate)
	}

	next = next.Add(time.Hour)
	if card.NextScheduleDate.Equal(next) {
		t.Error("Expected Apply to copy the timestamp, not alias it")
	}
}
