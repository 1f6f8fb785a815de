package letters

// Transform rewrites s through ts.Forward when s looks Latin and through
// ts.Backward otherwise. Runes without a mapping are kept, so the output has
// as many runes as the input.
func Transform(s string, ts *TableSet) string {
	if IsLatin(s) {
		return ts.Forward.Replace(s)
	}
	return ts.Backward.Replace(s)
}

// FixKeyboard reads s as if it was typed on the other keyboard layout.
func FixKeyboard(s string) string {
	return Transform(s, Keyboard)
}

// ToTranslit transliterates s into the other alphabet.
func ToTranslit(s string) string {
	return Transform(s, Translit)
}
