package classify

import (
	"sort"
	"strings"
	"unicode"

	"github.com/suykerbuyk/proofline/internal/textmine"
	"github.com/suykerbuyk/proofline/internal/timeline"
)

// DefaultTopKeywords bounds how many keywords bootstrapping adds per rule.
const DefaultTopKeywords = 8

// BootstrapFromTimeline bootstraps the default rule set from events.
func BootstrapFromTimeline(events []timeline.Event, topKeywords int) []Rule {
	return Bootstrap(events, defaultRules, topKeywords)
}

// Bootstrap returns a copy of rules where each rule's Bootstrapped list holds
// up to topKeywords words that occur at least twice among the events already
// hitting one of its seed tokens. Seed, Not and stop words are never added.
// The input slice is not modified.
func Bootstrap(events []timeline.Event, rules []Rule, topKeywords int) []Rule {
	if topKeywords <= 0 {
		topKeywords = DefaultTopKeywords
	}

	texts := make([]string, len(events))
	for i, e := range events {
		texts[i] = eventText(e)
	}

	out := cloneRules(rules)
	for i := range out {
		r := &out[i]
		excluded := make(map[string]bool)
		for _, tok := range append(append(append([]string(nil), r.AnyOf...), r.Not...), r.AllOf...) {
			for _, t := range textmine.Tokens(tok) {
				excluded[t] = true
			}
		}

		counts := make(map[string]int)
		for _, text := range texts {
			if len(hits(text, r.AnyOf)) == 0 {
				continue
			}
			for _, tok := range textmine.Tokens(text) {
				if excluded[tok] || numeric(tok) {
					continue
				}
				counts[tok]++
			}
		}

		var words []string
		for w, n := range counts {
			if n >= 2 {
				words = append(words, w)
			}
		}
		sort.Slice(words, func(a, b int) bool {
			if counts[words[a]] != counts[words[b]] {
				return counts[words[a]] > counts[words[b]]
			}
			return words[a] < words[b]
		})
		if len(words) > topKeywords {
			words = words[:topKeywords]
		}
		r.Bootstrapped = appendUnique(r.Bootstrapped, words)
	}
	return out
}

func numeric(tok string) bool {
	return strings.IndexFunc(tok, func(r rune) bool { return !unicode.IsDigit(r) && r != '.' }) < 0
}

func appendUnique(dst, src []string) []string {
	seen := make(map[string]bool, len(dst))
	for _, s := range dst {
		seen[s] = true
	}
	for _, s := range src {
		if !seen[s] {
			seen[s] = true
			dst = append(dst, s)
		}
	}
	return dst
}
