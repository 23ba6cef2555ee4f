package classify

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/suykerbuyk/proofline/internal/enrichment"
	"github.com/suykerbuyk/proofline/internal/timeline"
)

var base = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

func ev(id string, i int, actor timeline.Actor, label, detail string) timeline.Event {
	return timeline.Event{
		ID:     id,
		Client: "claude",
		TS:     base.Add(time.Duration(i) * time.Minute),
		Label:  label,
		Detail: detail,
		Actor:  actor,
	}
}

func sampleTimeline() []timeline.Event {
	return []timeline.Event{
		ev("e0", 0, timeline.ActorUser, "prompt", "add a login page"),
		ev("e1", 1, timeline.ActorAssistant, "Bash", "go test ./... failed: exit code 1"),
		ev("e2", 2, timeline.ActorAssistant, "reply", "fixing the handler"),
		ev("e3", 3, timeline.ActorAssistant, "Edit", "edited auth/login.go"),
		ev("e4", 4, timeline.ActorAssistant, "Bash", "all tests passed"),
		ev("e5", 5, timeline.ActorUser, "prompt", "thanks, looks good"),
		ev("e6", 6, timeline.ActorAssistant, "reply", "please refactor the session store"),
	}
}

func TestClassify_Deterministic(t *testing.T) {
	events := sampleTimeline()
	opts := Options{Rules: DefaultRules(), FollowUpWindow: 6, FollowUpCount: 3}

	first := Classify(context.Background(), events, opts)
	second := Classify(context.Background(), events, opts)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("Classify not deterministic:\n%s", diff)
	}
	if len(first) == 0 {
		t.Fatal("expected major events")
	}
}

func TestClassify_Types(t *testing.T) {
	majors := Classify(context.Background(), sampleTimeline(), Options{})

	got := make(map[string]EventType)
	for _, m := range majors {
		got[m.TriggerEventID] = m.Type
	}
	want := map[string]EventType{
		"e1": Penalty,
		"e4": Goal,
		"e6": Corner,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("major event types mismatch (-want +got):\n%s", diff)
	}
}

func TestClassify_FollowUps(t *testing.T) {
	majors := Classify(context.Background(), sampleTimeline(), Options{FollowUpWindow: 6, FollowUpCount: 3})
	if majors[0].TriggerEventID != "e1" {
		t.Fatalf("first major = %s", majors[0].TriggerEventID)
	}
	if diff := cmp.Diff([]string{"e2", "e3", "e4"}, majors[0].FollowUpEventIDs); diff != "" {
		t.Errorf("follow-ups mismatch:\n%s", diff)
	}

	majors = Classify(context.Background(), sampleTimeline(), Options{FollowUpWindow: 2, FollowUpCount: 5})
	if diff := cmp.Diff([]string{"e2", "e3"}, majors[0].FollowUpEventIDs); diff != "" {
		t.Errorf("window should bound follow-ups:\n%s", diff)
	}

	last := majors[len(majors)-1]
	if last.FollowUpEventIDs == nil || len(last.FollowUpEventIDs) != 0 {
		t.Errorf("last event follow-ups = %#v, want empty", last.FollowUpEventIDs)
	}
}

func TestClassify_FollowUpsKeepBlankEvents(t *testing.T) {
	events := []timeline.Event{
		ev("t", 0, timeline.ActorAssistant, "Bash", "all tests passed"),
		ev("b", 1, timeline.ActorAssistant, "", ""),
		ev("n", 2, timeline.ActorAssistant, "reply", "next step"),
	}
	majors := Classify(context.Background(), events, Options{FollowUpWindow: 6, FollowUpCount: 3})
	if len(majors) != 1 {
		t.Fatalf("majors = %+v", majors)
	}
	if diff := cmp.Diff([]string{"b", "n"}, majors[0].FollowUpEventIDs); diff != "" {
		t.Errorf("follow-ups mismatch:\n%s", diff)
	}
}

func TestFollowUpSetting(t *testing.T) {
	if got := FollowUpSetting(0); got >= 0 {
		t.Errorf("FollowUpSetting(0) = %d, want negative", got)
	}
	if got := FollowUpSetting(4); got != 4 {
		t.Errorf("FollowUpSetting(4) = %d", got)
	}
	majors := Classify(context.Background(), sampleTimeline(), Options{FollowUpWindow: 6, FollowUpCount: FollowUpSetting(0)})
	for _, m := range majors {
		if len(m.FollowUpEventIDs) != 0 {
			t.Errorf("%s follow-ups = %v, want none", m.TriggerEventID, m.FollowUpEventIDs)
		}
	}
}

func TestClassify_NotAndAllOf(t *testing.T) {
	rules := []Rule{
		{ID: "deploy", EventType: Goal, AnyOf: []string{"deploy"}, AllOf: []string{"prod"}, Not: []string{"failed"}},
	}
	events := []timeline.Event{
		ev("a", 0, timeline.ActorAssistant, "", "deploy to staging"),
		ev("b", 1, timeline.ActorAssistant, "", "deploy to prod failed"),
		ev("c", 2, timeline.ActorAssistant, "", "deploy to prod"),
	}
	majors := Classify(context.Background(), events, Options{Rules: rules})
	if len(majors) != 1 || majors[0].TriggerEventID != "c" {
		t.Errorf("majors = %+v", majors)
	}
}

func TestClassify_TiesFollowListOrder(t *testing.T) {
	rules := []Rule{
		{ID: "first", EventType: Corner, AnyOf: []string{"rename"}},
		{ID: "second", EventType: Substitution, AnyOf: []string{"rename"}},
	}
	majors := Classify(context.Background(), []timeline.Event{ev("a", 0, timeline.ActorUser, "", "rename the package")}, Options{Rules: rules})
	if len(majors) != 1 || majors[0].RuleID != "first" {
		t.Errorf("tie should go to the first rule: %+v", majors)
	}
}

func TestClassify_MinScore(t *testing.T) {
	rules := []Rule{{ID: "strict", EventType: Penalty, AnyOf: []string{"error", "panic"}, MinScore: 2}}
	events := []timeline.Event{
		ev("a", 0, timeline.ActorAssistant, "", "an error"),
		ev("b", 1, timeline.ActorAssistant, "", "panic: runtime error"),
	}
	majors := Classify(context.Background(), events, Options{Rules: rules})
	if len(majors) != 1 || majors[0].TriggerEventID != "b" {
		t.Errorf("majors = %+v", majors)
	}
	if majors[0].Score != 2 {
		t.Errorf("score = %v, want 2", majors[0].Score)
	}
}

func TestContainsToken_WordBoundaries(t *testing.T) {
	tests := []struct {
		text, tok string
		want      bool
	}{
		{"task abandoned", "done", false},
		{"all done.", "done", true},
		{"rm -rf /tmp/x", "rm -rf", true},
		{"登录还是报错", "报错", true},
		{"errors everywhere", "error", false},
	}
	for _, tt := range tests {
		if got := containsToken(tt.text, tt.tok); got != tt.want {
			t.Errorf("containsToken(%q, %q) = %v, want %v", tt.text, tt.tok, got, tt.want)
		}
	}
}

func TestBootstrap_RequiresSeed(t *testing.T) {
	events := []timeline.Event{
		ev("a", 0, timeline.ActorAssistant, "", "login error in oauth callback"),
		ev("b", 1, timeline.ActorAssistant, "", "oauth callback error again"),
		ev("c", 2, timeline.ActorUser, "", "check the oauth callback docs"),
	}
	defaults := DefaultRules()
	rules := Bootstrap(events, defaults, 8)

	var penalty Rule
	for _, r := range rules {
		if r.ID == "penalty-failure" {
			penalty = r
		}
	}
	if !contains(penalty.Bootstrapped, "oauth") || !contains(penalty.Bootstrapped, "callback") {
		t.Errorf("bootstrapped = %v, want oauth and callback", penalty.Bootstrapped)
	}
	if contains(penalty.Bootstrapped, "error") {
		t.Error("seed tokens must not be bootstrapped")
	}

	for _, r := range defaults {
		if len(r.Bootstrapped) != 0 {
			t.Errorf("input rule %s was mutated", r.ID)
		}
	}

	majors := Classify(context.Background(), events, Options{Rules: rules})
	for _, m := range majors {
		if m.TriggerEventID == "c" {
			t.Errorf("event without seed tokens fired %s", m.Type)
		}
	}
}

func TestBootstrap_TopKeywords(t *testing.T) {
	var events []timeline.Event
	for i := 0; i < 3; i++ {
		events = append(events, ev(string(rune('a'+i)), i, timeline.ActorAssistant, "", "error alpha beta gamma delta"))
	}
	rules := Bootstrap(events, []Rule{{ID: "p", EventType: Penalty, AnyOf: []string{"error"}}}, 2)
	if diff := cmp.Diff([]string{"alpha", "beta"}, rules[0].Bootstrapped); diff != "" {
		t.Errorf("bootstrapped mismatch:\n%s", diff)
	}
}

type fakeSummarizer struct {
	calls atomic.Int32
	fail  string
}

func (f *fakeSummarizer) Summarize(ctx context.Context, p enrichment.Prompt) (string, error) {
	f.calls.Add(1)
	if strings.Contains(p.Trigger, f.fail) {
		return "", errors.New("upstream unavailable")
	}
	return "enriched " + p.EventType, nil
}

func TestClassify_EnrichmentKeepsOrderAndFallsBack(t *testing.T) {
	events := sampleTimeline()
	plain := Classify(context.Background(), events, Options{})

	s := &fakeSummarizer{fail: "all tests passed"}
	enriched := Classify(context.Background(), events, Options{Summarizer: s, Concurrency: 2})

	if int(s.calls.Load()) != len(plain) {
		t.Errorf("summarizer calls = %d, want %d", s.calls.Load(), len(plain))
	}
	if len(enriched) != len(plain) {
		t.Fatalf("enrichment changed event count: %d vs %d", len(enriched), len(plain))
	}
	for i := range plain {
		if enriched[i].ID != plain[i].ID {
			t.Errorf("order changed at %d", i)
		}
		switch enriched[i].TriggerEventID {
		case "e4":
			if enriched[i].Summary != plain[i].Summary {
				t.Errorf("failed enrichment should keep rule summary, got %q", enriched[i].Summary)
			}
		default:
			if enriched[i].Summary != "enriched "+string(plain[i].Type) {
				t.Errorf("summary = %q", enriched[i].Summary)
			}
		}
	}
}

func TestParseRules(t *testing.T) {
	data := []byte(`rules:
  - id: deploy
    eventType: GOAL
    anyOf: [deployed, 上线]
    not: [failed]
    weight: 2
`)
	rules, err := ParseRules(data)
	if err != nil {
		t.Fatalf("ParseRules: %v", err)
	}
	want := []Rule{{ID: "deploy", EventType: Goal, AnyOf: []string{"deployed", "上线"}, Not: []string{"failed"}, Weight: 2}}
	if diff := cmp.Diff(want, rules); diff != "" {
		t.Errorf("rules mismatch:\n%s", diff)
	}

	bad := []string{
		"rules: []",
		"rules:\n  - id: x\n    eventType: TOUCHDOWN\n    anyOf: [a]\n",
		"rules:\n  - id: x\n    eventType: GOAL\n",
		"rules:\n  - id: x\n    eventType: GOAL\n    anyOf: [a]\n  - id: x\n    eventType: GOAL\n    anyOf: [b]\n",
	}
	for _, b := range bad {
		if _, err := ParseRules([]byte(b)); err == nil {
			t.Errorf("expected error for %q", b)
		}
	}
}

func TestLoadRules(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	os.WriteFile(path, []byte("rules:\n  - id: a\n    eventType: ASSIST\n    anyOf: [hint]\n"), 0o644)
	rules, err := LoadRules(path)
	if err != nil {
		t.Fatalf("LoadRules: %v", err)
	}
	if len(rules) != 1 || rules[0].EventType != Assist {
		t.Errorf("rules = %+v", rules)
	}

	if _, err := LoadRules(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
