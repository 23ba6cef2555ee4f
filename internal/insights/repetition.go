package insights

import (
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/suykerbuyk/proofline/internal/evidence"
	"github.com/suykerbuyk/proofline/internal/hashid"
	"github.com/suykerbuyk/proofline/internal/textmine"
)

const (
	maxClusters    = 12
	topicTokens    = 3
	progressWindow = 20 * time.Minute
	maxTopicChars  = 80
)

// stuckMarkers signal that the user is asking again because nothing worked.
var stuckMarkers = []string{
	"still", "again", "not working", "doesn't work", "does not work",
	"didn't work", "same error", "same issue", "keeps failing", "broken",
	"还是", "仍然", "依然", "又", "报错", "不行", "没用", "还不", "一直", "失败",
}

// ClusterRepetition groups instructions that were given more than once,
// first by identical normalized text, then by shared topic tokens, and
// interprets each group against nearby file-change evidence.
func ClusterRepetition(instructions []Instruction, items []evidence.Item) []RepetitionCluster {
	changes := fileChangeTimes(items)
	clusters := make([]RepetitionCluster, 0)

	exact := make(map[string][]Instruction)
	var exactKeys []string
	for _, ins := range instructions {
		if len(ins.Tokens) == 0 {
			continue
		}
		if _, ok := exact[ins.Normalized]; !ok {
			exactKeys = append(exactKeys, ins.Normalized)
		}
		exact[ins.Normalized] = append(exact[ins.Normalized], ins)
	}
	for _, k := range exactKeys {
		if members := exact[k]; len(members) >= 2 {
			clusters = append(clusters, newCluster(ExactRepeat, textmine.Truncate(members[0].Text, maxTopicChars), members, changes))
		}
	}

	df := documentFrequency(instructions)
	topics := make(map[string][]Instruction)
	var topicKeys []string
	for _, ins := range instructions {
		key := topicKey(ins.Tokens, df)
		if key == "" {
			continue
		}
		if _, ok := topics[key]; !ok {
			topicKeys = append(topicKeys, key)
		}
		topics[key] = append(topics[key], ins)
	}
	for _, k := range topicKeys {
		members := topics[k]
		if len(members) < 2 || allIdentical(members) {
			continue
		}
		clusters = append(clusters, newCluster(TopicRepeat, k, members, changes))
	}

	sort.SliceStable(clusters, func(i, j int) bool {
		if clusters[i].Count != clusters[j].Count {
			return clusters[i].Count > clusters[j].Count
		}
		return clusters[i].Kind < clusters[j].Kind
	})
	if len(clusters) > maxClusters {
		clusters = clusters[:maxClusters]
	}
	return clusters
}

func newCluster(kind RepetitionKind, topic string, members []Instruction, changes []time.Time) RepetitionCluster {
	ids := make([]string, len(members))
	stuck := false
	progress := 0
	for i, m := range members {
		ids[i] = m.ID
		if hasStuckMarker(m.Normalized) {
			stuck = true
		}
		if hasNearby(changes, m.TS, progressWindow) {
			progress++
		}
	}

	return RepetitionCluster{
		ID:             hashid.Sum("rep", append([]hashid.Part{hashid.Str(string(kind))}, hashid.Strs(ids)...)...),
		Topic:          topic,
		Count:          len(members),
		InstructionIDs: ids,
		Kind:           kind,
		Interpretation: interpret(kind, len(members), stuck, progress),
	}
}

// interpret applies the repetition policy. progress is the number of
// members with at least one file change within the progress window.
func interpret(kind RepetitionKind, count int, stuck bool, progress int) Interpretation {
	switch {
	case kind == ExactRepeat && count >= 3 && (stuck || progress <= 1):
		return StuckIssue
	case count >= 3 && progress >= count-1:
		return FeaturePolish
	default:
		return NormalIteration
	}
}

func hasStuckMarker(normalized string) bool {
	for _, m := range stuckMarkers {
		if strings.Contains(normalized, m) {
			return true
		}
	}
	return false
}

// fileChangeTimes returns the sorted timestamps of file_change evidence.
func fileChangeTimes(items []evidence.Item) []time.Time {
	var ts []time.Time
	for _, it := range items {
		if it.Type == evidence.TypeFileChange {
			ts = append(ts, it.TS)
		}
	}
	sort.Slice(ts, func(i, j int) bool { return ts[i].Before(ts[j]) })
	return ts
}

// hasNearby reports whether sorted holds a time within window of t.
func hasNearby(sorted []time.Time, t time.Time, window time.Duration) bool {
	lo := t.Add(-window)
	i := sort.Search(len(sorted), func(i int) bool { return !sorted[i].Before(lo) })
	return i < len(sorted) && !sorted[i].After(t.Add(window))
}

func documentFrequency(instructions []Instruction) map[string]int {
	df := make(map[string]int)
	for _, ins := range instructions {
		seen := make(map[string]bool, len(ins.Tokens))
		for _, t := range ins.Tokens {
			if !seen[t] {
				seen[t] = true
				df[t]++
			}
		}
	}
	return df
}

// topicKey picks the instruction's three most widely shared tokens (ties
// to longer, then lexically smaller tokens) and joins them in sorted order.
// Instructions with fewer than two distinct tokens have no topic.
func topicKey(tokens []string, df map[string]int) string {
	seen := make(map[string]bool, len(tokens))
	var uniq []string
	for _, t := range tokens {
		if !seen[t] {
			seen[t] = true
			uniq = append(uniq, t)
		}
	}
	if len(uniq) < 2 {
		return ""
	}
	sort.Slice(uniq, func(i, j int) bool {
		a, b := uniq[i], uniq[j]
		if df[a] != df[b] {
			return df[a] > df[b]
		}
		la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
		if la != lb {
			return la > lb
		}
		return a < b
	})
	if len(uniq) > topicTokens {
		uniq = uniq[:topicTokens]
	}
	sort.Strings(uniq)
	return strings.Join(uniq, " ")
}

// allIdentical reports whether every member shares one normalized text.
// Only such topic groups are dropped; a group that merely overlaps an exact
// cluster is kept.
func allIdentical(members []Instruction) bool {
	for _, m := range members[1:] {
		if m.Normalized != members[0].Normalized {
			return false
		}
	}
	return true
}
