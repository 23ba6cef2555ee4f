package textmine

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Miner pulls human-readable fragments out of possibly JSON-wrapped text.
type Miner struct {
	// MaxDepth bounds nesting, counting each array, object and
	// string-encoded JSON layer.
	MaxDepth int
	// MaxFragments bounds how many text fragments are collected.
	MaxFragments int
	// MaxNodes bounds how many values are visited in total.
	MaxNodes int
}

// DefaultMiner is the miner used by ExtractText.
var DefaultMiner = Miner{MaxDepth: 6, MaxFragments: 32, MaxNodes: 512}

// TextKeys are the object keys that carry human text, in preference order.
var TextKeys = []string{"text", "content", "message", "input", "prompt", "detail"}

// ExtractText mines raw with DefaultMiner.
func ExtractText(raw string) string {
	return DefaultMiner.Extract(raw)
}

// Extract returns the human text in raw. JSON payloads are walked through
// TextKeys only; when a payload yields nothing the raw text is returned
// with JSON punctuation stripped.
func (m Miner) Extract(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	v, ok := ParseValue(raw)
	if !ok {
		return raw
	}

	w := &walker{miner: m, seen: make(map[string]bool)}
	w.visit(v, 0)
	if len(w.out) > 0 {
		return strings.Join(w.out, "\n")
	}
	return stripJSON(raw)
}

type walker struct {
	miner Miner
	out   []string
	seen  map[string]bool
	nodes int
}

func (w *walker) full() bool {
	return len(w.out) >= w.miner.MaxFragments || w.nodes >= w.miner.MaxNodes
}

func (w *walker) visit(v Value, depth int) {
	if depth > w.miner.MaxDepth || w.full() {
		return
	}
	w.nodes++

	switch v.Kind {
	case KindString:
		s := strings.TrimSpace(v.Str)
		if s == "" {
			return
		}
		if inner, ok := ParseValue(s); ok && inner.Kind != KindString {
			w.visit(inner, depth+1)
			return
		}
		if !w.seen[s] {
			w.seen[s] = true
			w.out = append(w.out, s)
		}
	case KindArray:
		for _, item := range v.Items {
			if w.full() {
				return
			}
			w.visit(item, depth+1)
		}
	case KindObject:
		for _, key := range TextKeys {
			if w.full() {
				return
			}
			if f, ok := v.Get(key); ok {
				w.visit(f, depth+1)
			}
		}
	}
}

var (
	jsonEscapes  = strings.NewReplacer(`\n`, " ", `\t`, " ", `\"`, `"`, `\\`, `\`)
	jsonPunct    = regexp.MustCompile(`[{}\[\]"]+`)
	jsonKeyLabel = regexp.MustCompile(`\b[a-zA-Z_]+\s*:`)
	spaceRun     = regexp.MustCompile(`\s+`)
)

func stripJSON(raw string) string {
	s := jsonEscapes.Replace(raw)
	s = jsonPunct.ReplaceAllString(s, " ")
	s = jsonKeyLabel.ReplaceAllString(s, " ")
	s = strings.ReplaceAll(s, ",", " ")
	return strings.TrimSpace(spaceRun.ReplaceAllString(s, " "))
}

// Truncate shortens s to at most n runes, marking the cut with "...".
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	if n <= 3 {
		return string([]rune(s)[:n])
	}
	return string([]rune(s)[:n-3]) + "..."
}

// FirstLine returns the first non-empty line of s.
func FirstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if t := strings.TrimSpace(line); t != "" {
			return t
		}
	}
	return ""
}
