package chain

import (
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/suykerbuyk/proofline/internal/classify"
	"github.com/suykerbuyk/proofline/internal/evidence"
	"github.com/suykerbuyk/proofline/internal/timeline"
)

var base = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

func events(n int) []timeline.Event {
	out := make([]timeline.Event, n)
	for i := range out {
		out[i] = timeline.Event{
			ID:     string(rune('a' + i)),
			TS:     base.Add(time.Duration(i) * time.Minute),
			Label:  "step " + string(rune('a'+i)),
			Detail: "detail " + string(rune('a'+i)),
			Actor:  timeline.ActorAssistant,
		}
	}
	return out
}

func TestBuildActionChains(t *testing.T) {
	evs := events(5)
	majors := []classify.MajorEvent{
		{ID: "me_1", Type: classify.Penalty, TriggerEventID: "b", FollowUpEventIDs: []string{"c", "missing", "d"}},
		{ID: "me_2", Type: classify.Goal, TriggerEventID: "e", FollowUpEventIDs: []string{}},
	}
	items := []evidence.Item{
		{ID: "ev_1", EventID: "b", Confidence: 0.85, ProjectID: "app"},
		{ID: "ev_2", EventID: "d", Confidence: 0.92, ProjectID: "app"},
		{ID: "ev_3", EventID: "d", Confidence: 0.70},
		{ID: "ev_4", Confidence: 0.97},
	}

	chains := BuildActionChains(evs, majors, items)
	if len(chains) != 2 {
		t.Fatalf("got %d chains, want 2", len(chains))
	}

	c := chains[0]
	if c.Summary != "PENALTY: step b -> step d" {
		t.Errorf("summary = %q", c.Summary)
	}
	var ids []string
	for _, s := range c.Steps {
		ids = append(ids, s.EventID)
	}
	if diff := cmp.Diff([]string{"b", "c", "d"}, ids); diff != "" {
		t.Errorf("steps mismatch:\n%s", diff)
	}
	if diff := cmp.Diff([]string{"ev_2", "ev_3"}, c.Steps[2].EvidenceIDs); diff != "" {
		t.Errorf("evidence mismatch:\n%s", diff)
	}
	if want := (0.85 + 0.92 + 0.70) / 3; math.Abs(c.Confidence-want) > 1e-9 {
		t.Errorf("confidence = %v, want %v", c.Confidence, want)
	}
	if c.ProjectID != "app" {
		t.Errorf("projectId = %q", c.ProjectID)
	}

	single := chains[1]
	if single.Summary != "GOAL: step e" {
		t.Errorf("single-step summary = %q", single.Summary)
	}
	if single.Confidence != FallbackConfidence {
		t.Errorf("confidence = %v, want fallback", single.Confidence)
	}
	if single.Steps[0].EvidenceIDs == nil {
		t.Error("evidence ids should be empty, not nil")
	}
}

func TestBuildActionChains_Deterministic(t *testing.T) {
	evs := events(3)
	majors := []classify.MajorEvent{{ID: "me_1", Type: classify.Corner, TriggerEventID: "a", FollowUpEventIDs: []string{"b"}}}
	first := BuildActionChains(evs, majors, nil)
	second := BuildActionChains(evs, majors, nil)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("non-deterministic:\n%s", diff)
	}
}

func TestBuildActionChains_Empty(t *testing.T) {
	chains := BuildActionChains(nil, nil, nil)
	if chains == nil || len(chains) != 0 {
		t.Errorf("chains = %#v, want empty", chains)
	}
}

func TestBuildReplaySegments(t *testing.T) {
	evs := events(6)
	majors := []classify.MajorEvent{
		{ID: "me_1", Type: classify.Penalty, TriggerEventID: "b"},
		{ID: "me_2", Type: classify.Goal, TriggerEventID: "f"},
		{ID: "me_3", Type: classify.Goal, TriggerEventID: "gone"},
	}

	segs := BuildReplaySegments(evs, majors, 2, 2)
	if len(segs) != 2 {
		t.Fatalf("got %d segments, want 2", len(segs))
	}

	var ids []string
	for _, e := range segs[0].Events {
		ids = append(ids, e.EventID)
	}
	if diff := cmp.Diff([]string{"a", "b", "c", "d"}, ids); diff != "" {
		t.Errorf("first window mismatch:\n%s", diff)
	}
	if !segs[0].Events[1].IsTrigger || segs[0].Events[0].IsTrigger {
		t.Error("trigger flag misplaced")
	}
	if !segs[0].Start.Equal(evs[0].TS) || !segs[0].End.Equal(evs[3].TS) {
		t.Errorf("bounds = %v..%v", segs[0].Start, segs[0].End)
	}

	if n := len(segs[1].Events); n != 3 {
		t.Errorf("tail window has %d events, want 3", n)
	}

	if segs := BuildReplaySegments(evs, majors[:1], -1, -1); len(segs[0].Events) != 1 {
		t.Errorf("negative counts should yield only the trigger")
	}
}
