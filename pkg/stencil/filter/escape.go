package filter

import (
	"strings"
	"unicode/utf8"
)

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#039;",
)

// EscapeString escapes the five HTML special characters, quotes included,
// and replaces each byte of an invalid UTF-8 sequence with U+FFFD.
func EscapeString(s string) string {
	return htmlEscaper.Replace(substituteInvalid(s))
}

// substituteInvalid replaces every byte that does not start a valid
// UTF-8 encoding with U+FFFD. strings.ToValidUTF8 would collapse a run
// of such bytes into a single replacement.
func substituteInvalid(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 2*utf8.UTFMax)
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			b.WriteRune(utf8.RuneError)
		} else {
			b.WriteString(s[i : i+size])
		}
		i += size
	}
	return b.String()
}

// NewEscape returns the variable filter that HTML-escapes every string leaf.
func NewEscape() *VariableFilter {
	return NewVariableFilter("escape", StringLeaves(EscapeString))
}
