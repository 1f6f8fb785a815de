// Package match filters candidate records by a free-text query, tolerating a
// wrong keyboard layout and Latin transliteration of Cyrillic text.
package match

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/hyperjump/ruslat/internal/letters"
)

// Index holds the searchable words of one candidate.
type Index struct {
	// Original are the lowercased words of the title.
	Original []string `json:"original"`
	// Translit holds the transliteration of each word of Original.
	Translit []string `json:"translit"`
}

// BuildIndex lowercases title, splits it on spaces and transliterates each
// word. Only transliteration is indexed: stored titles are assumed to be typed
// in the right layout.
func BuildIndex(title string) Index {
	words := splitWords(lower(title))
	ix := Index{
		Original: words,
		Translit: make([]string, len(words)),
	}
	for i, w := range words {
		ix.Translit[i] = letters.ToTranslit(w)
	}
	return ix
}

// Contains reports whether any indexed word contains part.
func (ix Index) Contains(part string) bool {
	for _, w := range ix.Original {
		if strings.Contains(w, part) {
			return true
		}
	}
	for _, w := range ix.Translit {
		if strings.Contains(w, part) {
			return true
		}
	}
	return false
}

// lower uses a fresh Caser per call: a Caser keeps state between calls and
// must not be shared across goroutines.
func lower(s string) string {
	return cases.Lower(language.Und).String(s)
}

// splitWords splits on single spaces and drops the empty words produced by
// repeated spaces.
func splitWords(s string) []string {
	parts := strings.Split(s, " ")
	words := parts[:0]
	for _, p := range parts {
		if p != "" {
			words = append(words, p)
		}
	}
	return words
}
