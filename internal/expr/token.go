package expr

import (
	"unicode"
	"unicode/utf8"
)

// token is one lexeme and the byte offset it starts at.
type token struct {
	text string
	pos  int
}

func isDelimiter(r rune) bool {
	switch r {
	case '(', ')', ',', '+':
		return true
	}
	return false
}

// tokenize splits s on whitespace and the single-character delimiters
// ( ) , and +. Each delimiter is a token of its own; every maximal run of
// other non-space characters is one token.
func tokenize(s string) []token {
	var toks []token
	start := -1
	flush := func(end int) {
		if start >= 0 {
			toks = append(toks, token{text: s[start:end], pos: start})
			start = -1
		}
	}
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		switch {
		case unicode.IsSpace(r):
			flush(i)
		case isDelimiter(r):
			flush(i)
			toks = append(toks, token{text: s[i : i+size], pos: i})
		default:
			if start < 0 {
				start = i
			}
		}
		i += size
	}
	flush(len(s))
	return toks
}
