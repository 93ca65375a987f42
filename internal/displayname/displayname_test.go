package displayname

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "trims", in: "  Alice  ", want: "Alice"},
		{name: "collapses inner whitespace", in: "Alice \t  P", want: "Alice P"},
		{name: "empty stays empty", in: "   ", want: ""},
		{name: "plain name untouched", in: "Bob", want: "Bob"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Sanitize(tc.in); got != tc.want {
				t.Fatalf("Sanitize(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestSanitizeCapsLength(t *testing.T) {
	long := strings.Repeat("ab ", 30)
	got := Sanitize(long)
	if utf8.RuneCountInString(got) > maxRunes {
		t.Fatalf("Sanitize left %d runes, cap is %d", utf8.RuneCountInString(got), maxRunes)
	}
}

func TestGenerate(t *testing.T) {
	token := "4f9a2c31-9b1e-4a2f-8c11-aa0b44c2d9ee"

	got := Generate(token)
	if !strings.HasPrefix(got, "Guest") {
		t.Fatalf("Generate = %q, want Guest prefix", got)
	}
	if again := Generate(token); again != got {
		t.Fatalf("Generate is not stable: %q vs %q", got, again)
	}
	if other := Generate("ffffffff-0000-0000-0000-000000000000"); other == got {
		t.Fatalf("distinct tokens produced the same name %q", got)
	}
	if empty := Generate(""); empty == "" {
		t.Fatalf("empty token produced an empty name")
	}
}
