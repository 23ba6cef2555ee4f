package classify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/suykerbuyk/proofline/internal/enrichment"
	"github.com/suykerbuyk/proofline/internal/hashid"
	"github.com/suykerbuyk/proofline/internal/textmine"
	"github.com/suykerbuyk/proofline/internal/timeline"
)

const (
	DefaultFollowUpWindow = 6
	DefaultFollowUpCount  = 3

	defaultConcurrency = 4
	maxTitleChars      = 80
	maxSummaryChars    = 200
)

// Summarizer rewrites a major event's summary. Implementations must honor
// ctx cancellation.
type Summarizer interface {
	Summarize(ctx context.Context, p enrichment.Prompt) (string, error)
}

// Options configures Classify. A zero FollowUpWindow or FollowUpCount
// selects the default; a negative one disables follow-ups. Callers holding
// a configured value should pass it through FollowUpSetting so that a
// configured 0 also disables them.
type Options struct {
	Rules          []Rule
	FollowUpWindow int
	FollowUpCount  int

	// Summarizer is optional; nil keeps every rule-derived summary.
	Summarizer  Summarizer
	Concurrency int
	Timeout     time.Duration
}

// FollowUpSetting maps a configured follow-up window or count onto Options,
// where 0 means none rather than the default.
func FollowUpSetting(n int) int {
	if n == 0 {
		return -1
	}
	return n
}

func (o Options) withDefaults() Options {
	if o.Rules == nil {
		o.Rules = defaultRules
	}
	if o.FollowUpWindow == 0 {
		o.FollowUpWindow = DefaultFollowUpWindow
	}
	if o.FollowUpCount == 0 {
		o.FollowUpCount = DefaultFollowUpCount
	}
	if o.Concurrency <= 0 {
		o.Concurrency = defaultConcurrency
	}
	return o
}

// Classify scores every event against the rules and returns one major event
// per event whose best rule reaches its minimum score, in timeline order.
// Without a summarizer the result depends only on events and the rule and
// follow-up options.
func Classify(ctx context.Context, events []timeline.Event, opts Options) []MajorEvent {
	opts = opts.withDefaults()

	majors := make([]MajorEvent, 0)
	triggers := make([]int, 0)
	for i, e := range events {
		m, ok := classifyOne(e, opts.Rules)
		if !ok {
			continue
		}
		m.FollowUpEventIDs = followUps(events, i, opts.FollowUpWindow, opts.FollowUpCount)
		majors = append(majors, m)
		triggers = append(triggers, i)
	}

	if opts.Summarizer != nil && len(majors) > 0 {
		enrich(ctx, events, majors, triggers, opts)
	}
	return majors
}

func classifyOne(e timeline.Event, rules []Rule) (MajorEvent, bool) {
	text := eventText(e)

	best := -1
	var bestScore float64
	var bestHits []string
	for i, r := range rules {
		s, matched := score(r, text)
		if s > bestScore {
			best, bestScore, bestHits = i, s, matched
		}
	}
	if best < 0 || bestScore < rules[best].minScore() {
		return MajorEvent{}, false
	}
	r := rules[best]

	snippet := textmine.FirstLine(textmine.ExtractText(e.Detail))
	if snippet == "" {
		snippet = e.Label
	}
	label := e.Label
	if label == "" {
		label = snippet
	}

	return MajorEvent{
		ID:               hashid.Sum("me", hashid.Str(e.Client), hashid.Str(e.ID), hashid.Str(r.ID)),
		Client:           e.Client,
		TS:               e.TS,
		Type:             r.EventType,
		Title:            textmine.Truncate(eventTitles[r.EventType]+": "+label, maxTitleChars),
		Summary:          textmine.Truncate(fmt.Sprintf("%s [%s]", snippet, strings.Join(bestHits, ", ")), maxSummaryChars),
		Score:            bestScore,
		TriggerEventID:   e.ID,
		FollowUpEventIDs: []string{},
		RuleID:           r.ID,
	}, true
}

// followUps returns the ids of the first count events among the window
// events that follow index i.
func followUps(events []timeline.Event, i, window, count int) []string {
	ids := make([]string, 0)
	if window <= 0 || count <= 0 {
		return ids
	}
	end := min(i+window, len(events)-1, i+count)
	for j := i + 1; j <= end; j++ {
		ids = append(ids, events[j].ID)
	}
	return ids
}

// enrich replaces summaries in place. Calls run concurrently but each result
// lands in its own slot, so order is preserved; a failed call keeps the rule
// summary.
func enrich(ctx context.Context, events []timeline.Event, majors []MajorEvent, triggers []int, opts Options) {
	byID := make(map[string]timeline.Event, len(events))
	for _, e := range events {
		byID[e.ID] = e
	}

	summaries := make([]string, len(majors))
	var g errgroup.Group
	g.SetLimit(opts.Concurrency)
	for i := range majors {
		m := majors[i]
		p := enrichment.Prompt{
			EventType:   string(m.Type),
			Title:       m.Title,
			RuleSummary: m.Summary,
			Trigger:     textmine.ExtractText(events[triggers[i]].Detail),
		}
		for _, id := range m.FollowUpEventIDs {
			f := byID[id]
			p.FollowUps = append(p.FollowUps, string(f.Actor)+": "+textmine.FirstLine(textmine.ExtractText(f.Detail)))
		}

		g.Go(func() error {
			callCtx := ctx
			if opts.Timeout > 0 {
				var cancel context.CancelFunc
				callCtx, cancel = context.WithTimeout(ctx, opts.Timeout)
				defer cancel()
			}
			s, err := opts.Summarizer.Summarize(callCtx, p)
			if err != nil {
				slog.WarnContext(ctx, "enrichment failed, keeping rule summary", "major_event", m.ID, "error", err)
				return nil
			}
			summaries[i] = s
			return nil
		})
	}
	_ = g.Wait()

	for i, s := range summaries {
		if s != "" {
			majors[i].Summary = s
		}
	}
}
