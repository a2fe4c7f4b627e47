package pipeline

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		s    string
		n    int
		want string
	}{
		{"shorter than limit", "hello", 10, "hello"},
		{"exact limit", "hello", 5, "hello"},
		{"over limit", "hello world", 5, "hello"},
		{"zero limit", "hello", 0, ""},
		{"negative limit", "hello", -1, ""},
		{"empty input", "", 5, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.s, tt.n); got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.s, tt.n, got, tt.want)
			}
		})
	}
}

func TestTruncateRuneBoundary(t *testing.T) {
	s := "日本語テキスト"
	for n := 0; n <= len(s); n++ {
		got := Truncate(s, n)
		if !utf8.ValidString(got) {
			t.Errorf("Truncate(%q, %d) = %q: split a rune", s, n, got)
		}
		if len(got) > n {
			t.Errorf("Truncate(%q, %d) returned %d bytes", s, n, len(got))
		}
	}
}

func TestTruncateIdempotent(t *testing.T) {
	s := strings.Repeat("ab日", 100)
	once := Truncate(s, 47)
	twice := Truncate(once, 47)
	if once != twice {
		t.Errorf("Truncate not idempotent: %q != %q", once, twice)
	}
}
