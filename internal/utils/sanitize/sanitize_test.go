package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain text untouched", "hello world", "hello world"},
		{"markdown preserved", "**bold** and _italic_", "**bold** and _italic_"},
		{"script stripped", "<script>alert('x')</script>hello", "hello"},
		{"tags stripped with spacing", "<p>Hello <b>world</b></p>", "Hello world"},
		{"adjacent tags keep word boundary", "<b>a</b><b>b</b>", "a b"},
		{"whitespace trimmed", "  padded  ", "padded"},
		{"inner spaces collapsed", "one   two\tthree", "one two three"},
		{"newlines preserved", "line one\nline two", "line one\nline two"},
		{"nbsp normalized", "a\u00a0b", "a b"},
		{"empty input", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clean(tt.input))
		})
	}
}
