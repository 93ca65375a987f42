// Package displayname shapes participant display names.
package displayname

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const maxRunes = 32

// Sanitize trims and collapses whitespace and caps the name at 32 runes.
// An unusable input comes back empty; callers fall back to Generate.
func Sanitize(name string) string {
	cleaned := strings.Join(strings.Fields(name), " ")
	if utf8.RuneCountInString(cleaned) > maxRunes {
		runes := []rune(cleaned)
		cleaned = strings.TrimSpace(string(runes[:maxRunes]))
	}
	return cleaned
}

// Generate derives a stable guest name from the tail of the participant
// token, so the same client gets the same name on every rejoin.
func Generate(token string) string {
	tail := strings.ReplaceAll(token, "-", "")
	if len(tail) > 4 {
		tail = tail[len(tail)-4:]
	}
	if tail == "" {
		tail = "0000"
	}
	// cases.Caser is stateful, so build one per call.
	return cases.Title(language.English).String("guest " + tail)
}
