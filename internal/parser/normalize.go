package parser

import (
	"strings"
	"unicode/utf8"
)

var suitReplacer = strings.NewReplacer(
	"10♥", "Th",
	"10♠", "Ts",
	"10♦", "Td",
	"10♣", "Tc",
	"♥", "h",
	"♠", "s",
	"♦", "d",
	"♣", "c",
)

// Normalize rewrites suit glyphs into rank+suit letters and drops every
// non-ASCII rune. It is idempotent.
func Normalize(s string) string {
	s = suitReplacer.Replace(s)
	ascii := true
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			ascii = false
			break
		}
	}
	if ascii {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < utf8.RuneSelf {
			b.WriteRune(r)
		}
	}
	return b.String()
}
