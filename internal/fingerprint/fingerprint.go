// Package fingerprint derives stable card IDs from card content, so that
// re-importing an unchanged card finds its existing schedule state.
package fingerprint

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"strings"
)

// Normalize lowercases and trims a card field and unifies line endings.
func Normalize(field string) string {
	field = strings.ReplaceAll(field, "\r\n", "\n")
	return strings.TrimSpace(strings.ToLower(field))
}

// Of returns the hex SHA-256 of a card's normalized content within a
// collection. The same text in two collections yields two IDs.
//
// Each field is length-prefixed, so a newline moved between front and
// back produces a different ID.
func Of(collectionID, front, back string) string {
	h := sha256.New()
	for _, field := range []string{collectionID, Normalize(front), Normalize(back)} {
		var n [8]byte
		binary.BigEndian.PutUint64(n[:], uint64(len(field)))
		h.Write(n[:])
		h.Write([]byte(field))
	}
	return hex.EncodeToString(h.Sum(nil))
}
