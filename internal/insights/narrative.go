package insights

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/suykerbuyk/proofline/internal/classify"
	"github.com/suykerbuyk/proofline/internal/evidence"
	"github.com/suykerbuyk/proofline/internal/hashid"
	"github.com/suykerbuyk/proofline/internal/timeline"
)

const (
	segmentGap      = 2 * time.Hour
	maxSegmentSize  = 1200
	maxSegments     = 8
	maxIntentTokens = 3
)

const (
	TitleDelivery       = "Delivery progress"
	TitleIssues         = "Issue handling"
	TitleImplementation = "Implementation iteration"
	TitleRequirements   = "Requirement shaping"
)

// SegmentNarrative splits events into phases at gaps longer than two hours
// or every 1200 events, keeps the eight most recent phases, and titles and
// summarizes each from the evidence, major events and instructions inside it.
func SegmentNarrative(events []timeline.Event, items []evidence.Item, majors []classify.MajorEvent, instructions []Instruction) []NarrativeSegment {
	out := make([]NarrativeSegment, 0)
	if len(events) == 0 {
		return out
	}

	var bounds [][2]int
	start := 0
	for i := 1; i < len(events); i++ {
		if events[i].TS.Sub(events[i-1].TS) > segmentGap || i-start >= maxSegmentSize {
			bounds = append(bounds, [2]int{start, i})
			start = i
		}
	}
	bounds = append(bounds, [2]int{start, len(events)})
	if len(bounds) > maxSegments {
		bounds = bounds[len(bounds)-maxSegments:]
	}

	for _, b := range bounds {
		out = append(out, buildSegment(events[b[0]:b[1]], items, majors, instructions))
	}
	return out
}

func buildSegment(events []timeline.Event, items []evidence.Item, majors []classify.MajorEvent, instructions []Instruction) NarrativeSegment {
	start, end := events[0].TS, events[len(events)-1].TS
	within := func(t time.Time) bool { return !t.Before(start) && !t.After(end) }

	actors := make(map[timeline.Actor]int)
	for _, e := range events {
		actors[e.Actor]++
	}

	ids := make([]string, 0)
	var tools, files int
	for _, it := range items {
		if !within(it.TS) {
			continue
		}
		ids = append(ids, it.ID)
		switch it.Type {
		case evidence.TypeToolCall, evidence.TypeToolResult:
			tools++
		case evidence.TypeFileChange:
			files++
		}
	}

	majorCounts := make(map[classify.EventType]int)
	for _, m := range majors {
		if within(m.TS) {
			majorCounts[m.Type]++
		}
	}

	tokenCounts := make(map[string]int)
	for _, ins := range instructions {
		if !within(ins.TS) {
			continue
		}
		for _, t := range ins.Tokens {
			tokenCounts[t]++
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d events (%d user, %d assistant, %d system); %d tool steps, %d file changes",
		len(events), actors[timeline.ActorUser], actors[timeline.ActorAssistant],
		len(events)-actors[timeline.ActorUser]-actors[timeline.ActorAssistant], tools, files)
	if intent := topTokens(tokenCounts, maxIntentTokens); len(intent) > 0 {
		fmt.Fprintf(&b, "; focus: %s", strings.Join(intent, ", "))
	}
	if len(majorCounts) > 0 {
		fmt.Fprintf(&b, "; major events: %s", formatMajorCounts(majorCounts))
	}

	return NarrativeSegment{
		ID:          hashid.Sum("seg", hashid.Time(start), hashid.Time(end), hashid.Str(events[0].ID)),
		Start:       start,
		End:         end,
		Title:       segmentTitle(majorCounts, files),
		Summary:     b.String(),
		EvidenceIDs: ids,
	}
}

func segmentTitle(majors map[classify.EventType]int, fileChanges int) string {
	switch {
	case majors[classify.Goal] > 0:
		return TitleDelivery
	case majors[classify.Penalty] > 0 || majors[classify.YellowCard] > 0 || majors[classify.RedCard] > 0:
		return TitleIssues
	case fileChanges > 0:
		return TitleImplementation
	default:
		return TitleRequirements
	}
}

func topTokens(counts map[string]int, n int) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > n {
		keys = keys[:n]
	}
	return keys
}

func formatMajorCounts(counts map[classify.EventType]int) string {
	types := make([]string, 0, len(counts))
	for t := range counts {
		types = append(types, string(t))
	}
	sort.Strings(types)
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = fmt.Sprintf("%s x%d", t, counts[classify.EventType(t)])
	}
	return strings.Join(parts, ", ")
}
