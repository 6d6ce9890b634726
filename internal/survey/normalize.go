package survey

import (
	"regexp"
	"strings"
)

var (
	nonWord    = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)
	whitespace = regexp.MustCompile(`\s+`)
)

// NormalizeLabel lower-cases s, strips punctuation and collapses whitespace.
// Demographic answers and target keys must both pass through it before matching.
func NormalizeLabel(s string) string {
	s = strings.ToLower(s)
	s = nonWord.ReplaceAllString(s, "")
	s = whitespace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// TrashSet is a read-only set of literal answer values excluded from counts.
type TrashSet map[string]struct{}

// NewTrashSet builds a TrashSet from configured values.
func NewTrashSet(values []string) TrashSet {
	t := make(TrashSet, len(values))
	for _, v := range values {
		t[strings.TrimSpace(v)] = struct{}{}
	}
	return t
}

// Contains reports whether v is a trash value.
func (t TrashSet) Contains(v string) bool {
	_, ok := t[strings.TrimSpace(v)]
	return ok
}
