package letters

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlip(t *testing.T) {
	got := Flip(map[rune]rune{'q': 'й', 'w': 'ц'})
	assert.Equal(t, map[rune]rune{'й': 'q', 'ц': 'w'}, got)
}

func TestFlip_duplicateValuesKeepLastKey(t *testing.T) {
	got := Flip(map[rune]rune{'a': 'x', 'b': 'x', 'c': 'y'})
	assert.Equal(t, map[rune]rune{'x': 'b', 'y': 'c'}, got)
}

func TestBaseTablesAreInvertible(t *testing.T) {
	for name, base := range map[string]map[rune]rune{
		"keyboard": keyboardMiss,
		"translit": translit,
	} {
		t.Run(name, func(t *testing.T) {
			assert.Len(t, Flip(base), len(base), "duplicate values in base table")
		})
	}
}

func TestNewMap_copiesInput(t *testing.T) {
	src := map[rune]rune{'a': 'б'}
	m := NewMap(src)
	src['a'] = 'в'
	src['b'] = 'г'

	assert.Equal(t, "бb", m.Replace("ab"))
}

func TestIsLatin(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"hello", true},
		{"HELLO", true},
		{"привет", false},
		{"123", false},
		{"", false},
		{"!?,.", false},
		{"мир z", true},
		{"ПРИВЕТ", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, IsLatin(tt.in))
		})
	}
}

func TestTransform_keyboard(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"qwer", "йцук"},
		{"йцук", "qwer"},
		{"ghbdtn", "привет"},
		{"руддщ", "hello"},
		{"hello мир", "руддщ мир"},
		{"b,f", "иба"},
		{"123", "123"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Transform(tt.in, Keyboard))
		})
	}
}

func TestTransform_translit(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"петров", "petrov"},
		{"иван", "ivan"},
		{"petrov", "петров"},
		{"жук", "жuk"},
		{"wow", "w\u043ew"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ToTranslit(tt.in))
		})
	}
}

func TestTransform_keepsRuneCount(t *testing.T) {
	for _, s := range []string{"ghbdtn", "привет мир", "a1-b2", "ёжик", "x"} {
		assert.Equal(t, utf8.RuneCountInString(s), utf8.RuneCountInString(FixKeyboard(s)), s)
		assert.Equal(t, utf8.RuneCountInString(s), utf8.RuneCountInString(ToTranslit(s)), s)
	}
}

func TestTransform_roundTrip(t *testing.T) {
	// Both sets are bijective over their keys, so a string made only of
	// forward keys (with at least one letter) comes back unchanged.
	assert.Equal(t, "ghbdtn,", FixKeyboard(FixKeyboard("ghbdtn,")))
	assert.Equal(t, "petrov", ToTranslit(ToTranslit("petrov")))
}

func TestVariations(t *testing.T) {
	got := Variations("ghbdtn")
	assert.Equal(t, [3]string{"ghbdtn", "привет", "гхбдтн"}, got)
}

func TestVariations_identityFirst(t *testing.T) {
	for _, s := range []string{"", "abc", "иван", "q,w.e", "123", "Мир"} {
		assert.Equal(t, s, Variations(s)[0])
	}
}

func TestVariations_noLetters(t *testing.T) {
	for _, s := range []string{"123", "", "  ", "!?-", "2024-01-01"} {
		v := Variations(s)
		assert.Equal(t, [3]string{s, s, s}, v, "input %q", s)
	}
}

func TestVariations_deterministic(t *testing.T) {
	first := Variations("петр")
	for i := 0; i < 50; i++ {
		require.Equal(t, first, Variations("петр"))
	}
}

func TestReadings(t *testing.T) {
	assert.Equal(t, []string{"123"}, Readings("123"))
	assert.Equal(t, []string{"ghbdtn", "привет", "гхбдтн"}, Readings("ghbdtn"))
}
