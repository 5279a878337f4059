package service

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// cleanText drops invalid UTF-8 and control characters, trims the ends and
// collapses each whitespace run to one space, or one newline if the run had
// a line break. Voice transcripts and model output both arrive with stray bytes.
func cleanText(s string) string {
	var result strings.Builder
	result.Grow(len(s))

	var pending rune
	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		s = s[size:]
		if r == utf8.RuneError && size == 1 {
			continue
		}
		if unicode.IsSpace(r) {
			if result.Len() > 0 && pending != '\n' {
				pending = ' '
				if r == '\n' {
					pending = '\n'
				}
			}
			continue
		}
		if unicode.IsControl(r) {
			continue
		}
		if pending != 0 {
			result.WriteRune(pending)
			pending = 0
		}
		result.WriteRune(r)
	}

	return result.String()
}
