package utils

import (
	"unicode"

	"github.com/aryann/difflib"
)

// TokenizeWords splits text into word, space and punctuation runs.
func TokenizeWords(s string) []string {
	var out []string
	var cur []rune
	kind := -1 // 0=space,1=word,2=punct
	flush := func() {
		if len(cur) == 0 {
			return
		}
		out = append(out, string(cur))
		cur = cur[:0]
	}
	for _, r := range s {
		k := 2
		switch {
		case unicode.IsSpace(r):
			k = 0
		case unicode.IsLetter(r) || unicode.IsNumber(r) || r == '_' || r == '-' || r == '\'':
			k = 1
		}
		if kind == -1 {
			kind = k
		}
		if k != kind {
			flush()
			kind = k
		}
		cur = append(cur, r)
	}
	flush()
	return out
}

// ChangedWords reports how many word tokens differ between two texts.
// The quality loop logs this to show how much a repair attempt actually
// rewrote.
func ChangedWords(a, b string) int {
	recs := difflib.Diff(TokenizeWords(a), TokenizeWords(b))
	var changed int
	for _, r := range recs {
		if r.Delta != difflib.Common {
			changed++
		}
	}
	return changed
}
