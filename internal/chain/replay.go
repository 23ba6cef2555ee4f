package chain

import (
	"time"

	"github.com/suykerbuyk/proofline/internal/classify"
	"github.com/suykerbuyk/proofline/internal/hashid"
	"github.com/suykerbuyk/proofline/internal/textmine"
	"github.com/suykerbuyk/proofline/internal/timeline"
)

const maxSnippetChars = 240

// ReplayEvent is one event shown around a major event.
type ReplayEvent struct {
	EventID   string         `json:"eventId"`
	TS        time.Time      `json:"ts"`
	Actor     timeline.Actor `json:"actor"`
	Label     string         `json:"label"`
	Snippet   string         `json:"snippet"`
	IsTrigger bool           `json:"isTrigger"`
}

// ReplaySegment is the slice of timeline surrounding one major event.
type ReplaySegment struct {
	ID           string             `json:"id"`
	MajorEventID string             `json:"majorEventId"`
	Type         classify.EventType `json:"type"`
	Title        string             `json:"title"`
	Start        time.Time          `json:"start"`
	End          time.Time          `json:"end"`
	Events       []ReplayEvent      `json:"events"`
}

// BuildReplaySegments returns, for each major event whose trigger is in
// events, the before events preceding it, the trigger, and the after events
// following it. Negative counts are treated as zero.
func BuildReplaySegments(events []timeline.Event, majors []classify.MajorEvent, before, after int) []ReplaySegment {
	before, after = max(before, 0), max(after, 0)

	index := make(map[string]int, len(events))
	for i, e := range events {
		index[e.ID] = i
	}

	segments := make([]ReplaySegment, 0, len(majors))
	for _, m := range majors {
		at, ok := index[m.TriggerEventID]
		if !ok {
			continue
		}
		lo := max(at-before, 0)
		hi := min(at+after, len(events)-1)

		seg := ReplaySegment{
			ID:           hashid.Sum("replay", hashid.Str(m.ID), hashid.Int(int64(before)), hashid.Int(int64(after))),
			MajorEventID: m.ID,
			Type:         m.Type,
			Title:        m.Title,
			Start:        events[lo].TS,
			End:          events[hi].TS,
			Events:       make([]ReplayEvent, 0, hi-lo+1),
		}
		for i := lo; i <= hi; i++ {
			e := events[i]
			seg.Events = append(seg.Events, ReplayEvent{
				EventID:   e.ID,
				TS:        e.TS,
				Actor:     e.Actor,
				Label:     e.Label,
				Snippet:   textmine.Truncate(textmine.ExtractText(e.Detail), maxSnippetChars),
				IsTrigger: i == at,
			})
		}
		segments = append(segments, seg)
	}
	return segments
}
