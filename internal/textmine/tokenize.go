package textmine

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// pathRunes survive normalization so that paths and identifiers stay intact.
const pathRunes = "_-./"

const cjkChunk = 4

// Normalize applies NFKC, case-folds, and replaces every rune that is not a
// letter, digit or path character with a single space.
func Normalize(s string) string {
	s = norm.NFKC.String(s)
	s = cases.Fold().String(s)

	var b strings.Builder
	b.Grow(len(s))
	space := true
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || strings.ContainsRune(pathRunes, r) {
			b.WriteRune(r)
			space = false
			continue
		}
		if !space {
			b.WriteByte(' ')
			space = true
		}
	}
	return strings.TrimSpace(b.String())
}

// Tokenize splits normalized text into tokens: CJK runs cut into chunks of
// up to four characters, and alphanumeric or path-like runs of at least two
// characters. Stopwords are dropped.
func Tokenize(s string) []string {
	var tokens []string
	var cjk, word []rune

	flushCJK := func() {
		for i := 0; i < len(cjk); i += cjkChunk {
			end := min(i+cjkChunk, len(cjk))
			tok := string(cjk[i:end])
			if !IsStopword(tok) {
				tokens = append(tokens, tok)
			}
		}
		cjk = cjk[:0]
	}
	flushWord := func() {
		w := strings.Trim(string(word), pathRunes)
		word = word[:0]
		if utf8.RuneCountInString(w) < 2 || IsStopword(w) {
			return
		}
		tokens = append(tokens, w)
	}

	for _, r := range s {
		switch {
		case isCJK(r):
			flushWord()
			cjk = append(cjk, r)
		case unicode.IsLetter(r) || unicode.IsNumber(r) || strings.ContainsRune(pathRunes, r):
			flushCJK()
			word = append(word, r)
		default:
			flushCJK()
			flushWord()
		}
	}
	flushCJK()
	flushWord()
	return tokens
}

// Tokens normalizes and tokenizes s.
func Tokens(s string) []string {
	return Tokenize(Normalize(s))
}

func isCJK(r rune) bool {
	return unicode.Is(unicode.Han, r) ||
		unicode.Is(unicode.Hiragana, r) ||
		unicode.Is(unicode.Katakana, r) ||
		unicode.Is(unicode.Hangul, r)
}

// Overlap counts the distinct tokens of a that also occur in b.
func Overlap(a, b []string) int {
	set := make(map[string]bool, len(b))
	for _, t := range b {
		set[t] = true
	}
	count := 0
	seen := make(map[string]bool, len(a))
	for _, t := range a {
		if set[t] && !seen[t] {
			seen[t] = true
			count++
		}
	}
	return count
}
