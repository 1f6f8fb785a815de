// Package letters builds the Latin/Cyrillic substitution tables and rewrites
// strings through them: keyboard-layout correction and one-letter
// transliteration.
package letters

import (
	"slices"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// Map is an immutable single-rune substitution table.
type Map struct {
	letters map[rune]rune
	scanner transform.Transformer
}

// NewMap copies letters into a new Map and prepares its scanner.
func NewMap(letters map[rune]rune) *Map {
	m := &Map{letters: make(map[rune]rune, len(letters))}
	for k, v := range letters {
		m.letters[k] = v
	}
	m.scanner = runes.Map(m.lookup)
	return m
}

func (m *Map) lookup(r rune) rune {
	if v, ok := m.letters[r]; ok {
		return v
	}
	return r
}

// Replace rewrites every key rune of s in a single pass.
func (m *Map) Replace(s string) string {
	out, _, err := transform.String(m.scanner, s)
	if err != nil {
		return s
	}
	return out
}

// Flip swaps keys and values. Keys are visited in ascending order, so when two
// keys share a value the larger key wins.
func Flip(letters map[rune]rune) map[rune]rune {
	keys := make([]rune, 0, len(letters))
	for k := range letters {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	flipped := make(map[rune]rune, len(letters))
	for _, k := range keys {
		flipped[letters[k]] = k
	}
	return flipped
}

// TableSet pairs a Latin-to-Cyrillic table with its inverse.
type TableSet struct {
	Forward  *Map
	Backward *Map
}

// NewTableSet builds a TableSet from a Latin-to-Cyrillic base table.
func NewTableSet(base map[rune]rune) *TableSet {
	return &TableSet{
		Forward:  NewMap(base),
		Backward: NewMap(Flip(base)),
	}
}

var (
	// Keyboard reads keys pressed on one layout as the other layout's letters.
	Keyboard = NewTableSet(keyboardMiss)

	// Translit renders letters phonetically in the other alphabet.
	Translit = NewTableSet(translit)
)
