package match

import (
	"strings"

	"github.com/hyperjump/ruslat/internal/letters"
)

// Candidate is a selectable record together with its search index.
type Candidate struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Index Index  `json:"-"`
}

// NewCandidate indexes title once so queries never re-index it.
func NewCandidate(title, value string) Candidate {
	return Candidate{
		Title: title,
		Value: value,
		Index: BuildIndex(title),
	}
}

// Query is a parsed search phrase: the readings of every query word.
type Query [][]string

// ParseQuery lowercases and trims q, splits it into words and expands each
// word into its readings (as typed, keyboard-corrected, transliterated).
func ParseQuery(q string) Query {
	words := splitWords(strings.TrimSpace(lower(q)))
	query := make(Query, 0, len(words))
	for _, w := range words {
		query = append(query, letters.Readings(w))
	}
	return query
}

// Empty reports whether the query has no words.
func (q Query) Empty() bool {
	return len(q) == 0
}

// Matches reports whether every query word has a reading contained in some
// word of ix. An empty query matches nothing.
func (q Query) Matches(ix Index) bool {
	if q.Empty() {
		return false
	}
	for _, readings := range q {
		if !anyContained(readings, ix) {
			return false
		}
	}
	return true
}

func anyContained(readings []string, ix Index) bool {
	for _, r := range readings {
		if ix.Contains(r) {
			return true
		}
	}
	return false
}

// Filter returns the items whose index matches q, in their original order.
func Filter[T any](q Query, items []T, index func(T) Index) []T {
	if q.Empty() {
		return nil
	}
	var out []T
	for _, it := range items {
		if q.Matches(index(it)) {
			out = append(out, it)
		}
	}
	return out
}

// Match returns the candidates matching query, preserving their order.
// An empty query returns nil; whether that means "show everything" is up to
// the caller.
func Match(query string, candidates []Candidate) []Candidate {
	return Filter(ParseQuery(query), candidates, func(c Candidate) Index {
		return c.Index
	})
}
