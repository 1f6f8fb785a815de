package letters

// IsLatin reports whether s contains at least one ASCII letter. Everything
// else, including empty and digit-only strings, counts as Cyrillic input.
// This is a heuristic, not language detection.
func IsLatin(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i] | 0x20
		if c >= 'a' && c <= 'z' {
			return true
		}
	}
	return false
}
