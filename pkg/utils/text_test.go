package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		s      string
		maxLen int
		want   string
	}{
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"hello world", 5, "hello..."},
		{"Иван Петров", 4, "Иван..."},
		{"Иван", 4, "Иван"},
		{"abc", 0, "abc"},
		{"abc", -1, "abc"},
		{"", 3, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Truncate(tt.s, tt.maxLen), "Truncate(%q, %d)", tt.s, tt.maxLen)
	}
}
