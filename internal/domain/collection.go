package domain

import "time"

// SourceType says where a collection's cards are imported from.
type SourceType string

const (
	SourceNone  SourceType = "none"
	SourceLocal SourceType = "local"
	SourceGit   SourceType = "git"
)

// Collection owns a set of cards. Deleting it deletes its cards.
type Collection struct {
	ID          string
	Name        string
	SourcePath  string
	SourceType  SourceType
	LastScanned *time.Time
	CreatedAt   time.Time
}
