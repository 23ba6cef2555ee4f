package insights

import (
	"math"
	"path"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/suykerbuyk/proofline/internal/evidence"
	"github.com/suykerbuyk/proofline/internal/hashid"
	"github.com/suykerbuyk/proofline/internal/pathguard"
	"github.com/suykerbuyk/proofline/internal/scope"
	"github.com/suykerbuyk/proofline/internal/textmine"
)

const (
	maxDeltas     = 10
	deltaWindow   = 45 * time.Minute
	maxPhraseRune = 80
)

var changeCues = []string{
	"change", "changed", "switch", "replace", "instead", "update", "convert",
	"migrate", "rename", "refactor", "from", "now", "should",
	"改成", "改为", "换成", "变成", "调整", "修改", "替换", "优化", "改",
}

// Tool and process chatter: exit codes, call ids, long hex digests.
var noisePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bexit (?:code|status)\b`),
	regexp.MustCompile(`(?i)\bprocess exited\b`),
	regexp.MustCompile(`(?i)\bwall time\b`),
	regexp.MustCompile(`\b(?:call|toolu|chatcmpl|msg)_[A-Za-z0-9]{6,}`),
	regexp.MustCompile(`\b[0-9a-f]{12,}\b`),
}

// Before/after phrase patterns, tried in order.
var phrasePatterns = []*regexp.Regexp{
	regexp.MustCompile(`从\s*(.+?)\s*(?:改成|改为|换成|变成|改到|切换到|迁移到)\s*(.+?)(?:[，。；！？,.;!?\n]|$)`),
	regexp.MustCompile(`(?i)\bfrom\s+(.+?)\s+to\s+(.+?)(?:[,.;!?\n]|$)`),
	regexp.MustCompile(`([^\s,;:]+(?:[ \t]+[^\s,;:]+){0,3})\s*(?:->|→|=>)\s*([^\s,;:]+(?:[ \t]+[^\s,;:]+){0,3})`),
}

type fileGroup struct {
	projectID string
	area      string
	files     map[string]bool
	ids       []string
	first     time.Time
	last      time.Time
}

type candidate struct {
	item   evidence.Item
	text   string
	before float64
	after  float64
}

// ExtractFeatureDeltas groups file_change evidence by project and area and
// infers what each area looked like before and after, from the evidence
// surrounding the changes.
func ExtractFeatureDeltas(items []evidence.Item, sc scope.Scope) []FeatureDelta {
	groups := groupFileChanges(items, sc)

	sort.SliceStable(groups, func(i, j int) bool {
		if len(groups[i].ids) != len(groups[j].ids) {
			return len(groups[i].ids) > len(groups[j].ids)
		}
		if !groups[i].last.Equal(groups[j].last) {
			return groups[i].last.After(groups[j].last)
		}
		return groups[i].area < groups[j].area
	})
	if len(groups) > maxDeltas {
		groups = groups[:maxDeltas]
	}

	deltas := make([]FeatureDelta, 0, len(groups))
	for _, g := range groups {
		deltas = append(deltas, buildDelta(g, items))
	}
	return deltas
}

func deltaID(g *fileGroup) string {
	return hashid.Sum("fd", hashid.Str(g.projectID), hashid.Str(g.area))
}

func groupFileChanges(items []evidence.Item, sc scope.Scope) []*fileGroup {
	index := make(map[string]*fileGroup)
	var groups []*fileGroup
	for _, it := range items {
		if it.Type != evidence.TypeFileChange {
			continue
		}
		rel := relativePath(it, sc)
		if rel == "" {
			continue
		}
		area := areaOf(rel)
		key := it.ProjectID + "\x00" + area
		g, ok := index[key]
		if !ok {
			g = &fileGroup{projectID: it.ProjectID, area: area, files: make(map[string]bool), first: it.TS, last: it.TS}
			index[key] = g
			groups = append(groups, g)
		}
		g.files[rel] = true
		g.ids = append(g.ids, it.ID)
		if it.TS.Before(g.first) {
			g.first = it.TS
		}
		if it.TS.After(g.last) {
			g.last = it.TS
		}
	}
	return groups
}

// relativePath returns the changed file relative to its project root when
// the path lies under it, else the recorded path with separators unified.
func relativePath(it evidence.Item, sc scope.Scope) string {
	p, _ := it.Metadata["path"].(string)
	if p == "" {
		p = strings.TrimPrefix(it.Summary, "file changed: ")
		if p == it.Summary {
			return ""
		}
	}
	p = strings.ReplaceAll(p, `\`, "/")
	if proj, ok := sc.ProjectByID(it.ProjectID); ok {
		root := pathguard.Normalize(proj.Root)
		if norm := pathguard.Normalize(p); path.IsAbs(p) && pathguard.Within(norm, root) {
			if rel := pathguard.Rel(norm, root); rel != "" && rel != "." {
				return rel
			}
		}
	}
	return strings.TrimPrefix(path.Clean(p), "/")
}

// areaOf is the first one or two directory segments of rel, or the file
// name for files at the root.
func areaOf(rel string) string {
	segs := strings.Split(strings.Trim(rel, "/"), "/")
	dirs := segs[:len(segs)-1]
	switch len(dirs) {
	case 0:
		return segs[len(segs)-1]
	case 1:
		return dirs[0]
	default:
		return dirs[0] + "/" + dirs[1]
	}
}

func buildDelta(g *fileGroup, items []evidence.Item) FeatureDelta {
	files := make([]string, 0, len(g.files))
	for f := range g.files {
		files = append(files, f)
	}
	sort.Strings(files)

	areaTokens := textmine.Tokens(strings.ReplaceAll(g.area, "/", " "))
	for _, f := range files {
		areaTokens = append(areaTokens, textmine.Tokens(strings.TrimSuffix(path.Base(f), path.Ext(f)))...)
	}

	var cands []candidate
	lo, hi := g.first.Add(-deltaWindow), g.last.Add(deltaWindow)
	for _, it := range items {
		if it.Type == evidence.TypeFileChange || it.Type == evidence.TypeSystem {
			continue
		}
		if it.TS.Before(lo) || it.TS.After(hi) {
			continue
		}
		if it.ProjectID != "" && g.projectID != "" && it.ProjectID != g.projectID {
			continue
		}
		c := candidate{item: it, text: textmine.ExtractText(it.Detail)}
		if c.text == "" {
			c.text = it.Summary
		}
		scoreCandidate(&c, g, areaTokens)
		cands = append(cands, c)
	}

	d := FeatureDelta{
		ID:        deltaID(g),
		ProjectID: g.projectID,
		Area:      g.area,
		Files:     files,
		Basis:     append([]string(nil), g.ids...),
	}
	conf := 0.5

	bestBefore := pick(cands, func(c candidate) float64 { return c.before }, "")
	bestAfter := pick(cands, func(c candidate) float64 { return c.after }, idOf(bestBefore))
	if bestBefore != nil {
		d.Before = bestBefore.item.Summary
		d.Basis = append(d.Basis, bestBefore.item.ID)
		conf += 0.1
	}
	if bestAfter != nil {
		d.After = bestAfter.item.Summary
		d.Basis = append(d.Basis, bestAfter.item.ID)
		conf += 0.1
	}

	if before, after, src, ok := minePhrase(cands); ok {
		d.Before, d.After = before, after
		if !containsString(d.Basis, src) {
			d.Basis = append(d.Basis, src)
		}
		conf += 0.15
	}
	if d.After == "" {
		d.After = "updated " + strings.Join(files, ", ")
		d.After = textmine.Truncate(d.After, maxPhraseRune*2)
	}

	conf += math.Min(0.15, 0.03*float64(len(g.ids)))
	d.Confidence = math.Round(math.Min(conf, 0.95)*100) / 100
	return d
}

func scoreCandidate(c *candidate, g *fileGroup, areaTokens []string) {
	switch c.item.Type {
	case evidence.TypeUserText:
		c.before, c.after = 3, 0.5
	case evidence.TypeAssistantText:
		c.before, c.after = 2, 2
	case evidence.TypeToolResult:
		c.before, c.after = 0, 2.5
	case evidence.TypeToolCall:
		c.before, c.after = 0.5, 1
	}

	lower := strings.ToLower(c.text)
	for _, cue := range changeCues {
		if strings.Contains(lower, cue) {
			c.before += 1.5
			c.after += 1.5
			break
		}
	}

	overlap := float64(textmine.Overlap(textmine.Tokens(c.text), areaTokens))
	c.before += overlap
	c.after += overlap

	c.before += proximity(c.item.TS, g.first)
	c.after += proximity(c.item.TS, g.last)
	if c.item.TS.After(g.last) {
		c.before -= 1
	}
	if c.item.TS.Before(g.first) {
		c.after -= 1
	}

	for _, p := range noisePatterns {
		if p.MatchString(c.text) {
			c.before -= 4
			c.after -= 4
		}
	}
}

// proximity is 2 at the anchor and falls linearly to 0 at the window edge.
func proximity(ts, anchor time.Time) float64 {
	d := ts.Sub(anchor)
	if d < 0 {
		d = -d
	}
	if d >= deltaWindow {
		return 0
	}
	return 2 * (1 - float64(d)/float64(deltaWindow))
}

// pick returns the highest non-negative scoring candidate other than skip.
// Earlier candidates win ties.
func pick(cands []candidate, score func(candidate) float64, skip string) *candidate {
	var best *candidate
	bestScore := 0.0
	for i := range cands {
		c := &cands[i]
		if c.item.ID == skip {
			continue
		}
		s := score(*c)
		if s < 0 {
			continue
		}
		if best == nil || s > bestScore {
			best, bestScore = c, s
		}
	}
	return best
}

func idOf(c *candidate) string {
	if c == nil {
		return ""
	}
	return c.item.ID
}

// minePhrase looks for an explicit "from X to Y" style statement, trying
// user text before assistant and tool text, and earlier candidates first.
func minePhrase(cands []candidate) (before, after, source string, ok bool) {
	ordered := make([]candidate, len(cands))
	copy(ordered, cands)
	sort.SliceStable(ordered, func(i, j int) bool {
		return typeRank(ordered[i].item.Type) < typeRank(ordered[j].item.Type)
	})
	for _, c := range ordered {
		if c.before < 0 && c.after < 0 {
			continue
		}
		for _, line := range strings.Split(c.text, "\n") {
			for _, p := range phrasePatterns {
				m := p.FindStringSubmatch(line)
				if m == nil {
					continue
				}
				b, a := cleanPhrase(m[1]), cleanPhrase(m[2])
				if b == "" || a == "" || strings.EqualFold(b, a) {
					continue
				}
				return b, a, c.item.ID, true
			}
		}
	}
	return "", "", "", false
}

func typeRank(t evidence.Type) int {
	switch t {
	case evidence.TypeUserText:
		return 0
	case evidence.TypeAssistantText:
		return 1
	default:
		return 2
	}
}

func cleanPhrase(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "\"'`“”‘’「」")
	return textmine.Truncate(strings.TrimSpace(s), maxPhraseRune)
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
