package classify

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/suykerbuyk/proofline/internal/timeline"
)

// eventText is the lowercased label, detail and tags of e.
func eventText(e timeline.Event) string {
	parts := make([]string, 0, 2+len(e.Tags))
	parts = append(parts, e.Label, e.Detail)
	parts = append(parts, e.Tags...)
	return strings.ToLower(strings.Join(parts, " "))
}

// containsToken reports whether tok occurs in text. Tokens that begin or end
// with a letter or digit outside the CJK ranges must sit on word boundaries,
// so "done" does not match "abandoned".
func containsToken(text, tok string) bool {
	tok = strings.ToLower(strings.TrimSpace(tok))
	if tok == "" {
		return false
	}
	first, _ := utf8.DecodeRuneInString(tok)
	last, _ := utf8.DecodeLastRuneInString(tok)
	checkStart, checkEnd := isWordRune(first), isWordRune(last)

	for from := 0; from <= len(text)-len(tok); {
		i := strings.Index(text[from:], tok)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(tok)
		ok := true
		if checkStart && start > 0 {
			prev, _ := utf8.DecodeLastRuneInString(text[:start])
			ok = !isWordRune(prev)
		}
		if ok && checkEnd && end < len(text) {
			next, _ := utf8.DecodeRuneInString(text[end:])
			ok = !isWordRune(next)
		}
		if ok {
			return true
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		from = start + size
	}
	return false
}

func isWordRune(r rune) bool {
	if r >= 0x2E80 {
		return false
	}
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

func hits(text string, tokens []string) []string {
	var matched []string
	for _, tok := range tokens {
		if containsToken(text, tok) {
			matched = append(matched, tok)
		}
	}
	return matched
}

// score returns the rule's score for text and the tokens that matched. The
// score is zero when a Not token is present, an AllOf token is absent, or no
// seed token matched.
func score(r Rule, text string) (float64, []string) {
	for _, tok := range r.Not {
		if containsToken(text, tok) {
			return 0, nil
		}
	}
	for _, tok := range r.AllOf {
		if !containsToken(text, tok) {
			return 0, nil
		}
	}
	seed := hits(text, r.AnyOf)
	if len(seed) == 0 {
		return 0, nil
	}
	boot := hits(text, r.Bootstrapped)
	return float64(len(seed)+len(boot)) * r.weight(), append(seed, boot...)
}
