package letters

import "slices"

// Variations returns the readings of s in a fixed order: s itself, the
// keyboard-corrected form and the transliterated form. Entries may repeat.
func Variations(s string) [3]string {
	return [3]string{
		s,
		FixKeyboard(s),
		ToTranslit(s),
	}
}

// Readings is Variations without repeated entries, first occurrence kept.
func Readings(s string) []string {
	all := Variations(s)
	out := make([]string, 0, len(all))
	for _, v := range all {
		if !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}
