package lexical

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Tokenize lowercases text and returns every run of two or more word
// characters (letters, digits, underscore) in order of appearance.
func Tokenize(text string) []string {
	lower := strings.ToLower(text)
	var tokens []string
	start := -1
	for i, r := range lower {
		if isWordRune(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			tokens = appendToken(tokens, lower[start:i])
			start = -1
		}
	}
	if start >= 0 {
		tokens = appendToken(tokens, lower[start:])
	}
	return tokens
}

func appendToken(tokens []string, tok string) []string {
	if utf8.RuneCountInString(tok) < 2 {
		return tokens
	}
	return append(tokens, tok)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
