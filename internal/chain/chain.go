// Package chain links each major event to its follow-ups and evidence.
package chain

import (
	"sort"
	"time"

	"github.com/suykerbuyk/proofline/internal/classify"
	"github.com/suykerbuyk/proofline/internal/evidence"
	"github.com/suykerbuyk/proofline/internal/hashid"
	"github.com/suykerbuyk/proofline/internal/textmine"
	"github.com/suykerbuyk/proofline/internal/timeline"
)

// FallbackConfidence is used for chains with no attached evidence.
const FallbackConfidence = 0.72

const maxLabelChars = 80

// Step is one event of a chain with the evidence observed for it.
type Step struct {
	EventID     string         `json:"eventId"`
	TS          time.Time      `json:"ts"`
	Actor       timeline.Actor `json:"actor"`
	Label       string         `json:"label"`
	EvidenceIDs []string       `json:"evidenceIds"`
}

// ActionChain is a major event plus its follow-ups.
type ActionChain struct {
	ID           string  `json:"id"`
	MajorEventID string  `json:"majorEventId"`
	ProjectID    string  `json:"projectId,omitempty"`
	Summary      string  `json:"summary"`
	Confidence   float64 `json:"confidence"`
	Steps        []Step  `json:"steps"`
}

// BuildActionChains returns one chain per major event, in the order given.
// Follow-up ids missing from events are dropped.
func BuildActionChains(events []timeline.Event, majors []classify.MajorEvent, items []evidence.Item) []ActionChain {
	byID := make(map[string]timeline.Event, len(events))
	for _, e := range events {
		byID[e.ID] = e
	}
	byEvent := make(map[string][]evidence.Item)
	for _, it := range items {
		if it.EventID != "" {
			byEvent[it.EventID] = append(byEvent[it.EventID], it)
		}
	}

	chains := make([]ActionChain, 0, len(majors))
	for _, m := range majors {
		ids := append([]string{m.TriggerEventID}, m.FollowUpEventIDs...)

		var steps []Step
		var sum float64
		var n int
		projects := make(map[string]int)
		for _, id := range ids {
			e, ok := byID[id]
			if !ok {
				continue
			}
			step := Step{
				EventID:     e.ID,
				TS:          e.TS,
				Actor:       e.Actor,
				Label:       stepLabel(e),
				EvidenceIDs: []string{},
			}
			for _, it := range byEvent[id] {
				step.EvidenceIDs = append(step.EvidenceIDs, it.ID)
				sum += it.Confidence
				n++
				if it.ProjectID != "" {
					projects[it.ProjectID]++
				}
			}
			steps = append(steps, step)
		}
		if len(steps) == 0 {
			continue
		}

		conf := FallbackConfidence
		if n > 0 {
			conf = sum / float64(n)
		}

		summary := string(m.Type) + ": " + steps[0].Label
		if len(steps) > 1 {
			summary += " -> " + steps[len(steps)-1].Label
		}

		chains = append(chains, ActionChain{
			ID:           hashid.Sum("chain", hashid.Str(m.ID)),
			MajorEventID: m.ID,
			ProjectID:    dominant(projects),
			Summary:      summary,
			Confidence:   conf,
			Steps:        steps,
		})
	}
	return chains
}

func stepLabel(e timeline.Event) string {
	label := e.Label
	if label == "" {
		label = textmine.FirstLine(textmine.ExtractText(e.Detail))
	}
	return textmine.Truncate(label, maxLabelChars)
}

// dominant returns the most frequent key, ties broken lexically.
func dominant(counts map[string]int) string {
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
	if len(keys) == 0 {
		return ""
	}
	return keys[0]
}
