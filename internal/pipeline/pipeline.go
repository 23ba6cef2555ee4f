// Package pipeline runs every analysis stage over one batch of trace events
// and assembles the report.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/afero"

	"github.com/suykerbuyk/proofline/internal/chain"
	"github.com/suykerbuyk/proofline/internal/classify"
	"github.com/suykerbuyk/proofline/internal/config"
	"github.com/suykerbuyk/proofline/internal/enrichment"
	"github.com/suykerbuyk/proofline/internal/evidence"
	"github.com/suykerbuyk/proofline/internal/insights"
	"github.com/suykerbuyk/proofline/internal/pathguard"
	"github.com/suykerbuyk/proofline/internal/report"
	"github.com/suykerbuyk/proofline/internal/scope"
	"github.com/suykerbuyk/proofline/internal/timeline"
)

// Options selects the batch and scope of one run.
type Options struct {
	Config config.Config

	// Timeline and Raw take precedence over the paths when non-nil.
	TimelinePath string
	RawPath      string
	Timeline     []timeline.Event
	Raw          []timeline.RawEvent

	Project     string
	AllProjects bool
	Range       timeline.TimeRange
	Query       string

	// Fs defaults to the OS filesystem.
	Fs afero.Fs
	// Summarizer overrides the one built from Config.Enrichment.
	Summarizer classify.Summarizer
	// Now defaults to time.Now.
	Now func() time.Time
}

// Run executes the pipeline. Errors come only from loading inputs,
// resolving the scope, loading rules or building the enrichment client;
// every stage after that degrades to empty output instead of failing.
func Run(ctx context.Context, opts Options) (*report.Report, error) {
	cfg := opts.Config
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	events, raws, err := loadInputs(opts)
	if err != nil {
		return nil, err
	}

	sc, err := ResolveScope(cfg, opts.Project, opts.AllProjects)
	if err != nil {
		return nil, err
	}

	rng := opts.Range
	if rng.Start.IsZero() && rng.End.IsZero() && len(events) > 0 {
		rng = timeline.TimeRange{Start: events[0].TS, End: events[len(events)-1].TS}
	}
	events = inRange(events, rng)

	summarizer := opts.Summarizer
	if summarizer == nil {
		client, err := enrichment.New(cfg.Enrichment)
		if err != nil {
			return nil, fmt.Errorf("create enrichment client: %w", err)
		}
		if client != nil {
			summarizer = client
		}
	}

	rules, err := buildRules(cfg.Classify, events)
	if err != nil {
		return nil, err
	}

	audit := pathguard.NewAudit(cfg.Client)
	collector := evidence.NewCollector(opts.Fs, audit, evidence.WalkOptions{
		MaxFiles: cfg.Scan.MaxFilesPerRoot,
		Deny:     cfg.Scan.Deny,
	})
	items := collector.Collect(evidence.Input{
		Client:       cfg.Client,
		Range:        rng,
		Scope:        sc,
		Timeline:     events,
		Raw:          raws,
		AllowedRoots: cfg.EffectiveAllowedRoots(),
	})
	resolved := evidence.ResolveConflicts(items)
	slog.DebugContext(ctx, "evidence collected",
		"items", len(items), "kept", len(resolved.Evidence), "conflicts", len(resolved.Conflicts))

	majors := classify.Classify(ctx, events, classify.Options{
		Rules:          rules,
		FollowUpWindow: classify.FollowUpSetting(cfg.Classify.FollowUpWindow),
		FollowUpCount:  classify.FollowUpSetting(cfg.Classify.FollowUpCount),
		Summarizer:     summarizer,
		Concurrency:    cfg.Enrichment.Concurrency,
		Timeout:        time.Duration(cfg.Enrichment.TimeoutSeconds) * time.Second,
	})

	chains := chain.BuildActionChains(events, majors, resolved.Evidence)
	replay := chain.BuildReplaySegments(events, majors, cfg.Replay.Before, cfg.Replay.After)
	ins := insights.Analyze(insights.Input{
		Query:       opts.Query,
		Scope:       sc,
		Timeline:    events,
		Evidence:    resolved.Evidence,
		MajorEvents: majors,
	})

	rep := &report.Report{
		SchemaVersion:  report.SchemaVersion,
		GeneratedAt:    opts.Now().UTC(),
		Client:         cfg.Client,
		Query:          opts.Query,
		Range:          rng,
		Scope:          sc,
		Rules:          rules,
		Evidence:       resolved.Evidence,
		Conflicts:      resolved.Conflicts,
		MajorEvents:    majors,
		ActionChains:   chains,
		ReplaySegments: replay,
		Insights:       ins,
		PathAudit:      report.AuditOf(audit),
	}
	slog.InfoContext(ctx, "analysis complete",
		"scope", sc.Label(),
		"query", opts.Query,
		"events", len(events),
		"evidence", len(rep.Evidence),
		"major_events", len(rep.MajorEvents),
		"feature_deltas", len(rep.Insights.FeatureDeltas))
	return rep, nil
}

// ResolveScope picks the projects a run covers. all selects every configured
// project; otherwise project is looked up by id or fuzzy name, and may be
// omitted only when exactly one project is configured.
func ResolveScope(cfg config.Config, project string, all bool) (scope.Scope, error) {
	projects := make([]scope.Project, len(cfg.Projects))
	for i, p := range cfg.Projects {
		projects[i] = scope.Project{ID: p.ID, Root: p.Root}
	}
	if len(projects) == 0 {
		return scope.Scope{}, fmt.Errorf("no projects configured")
	}

	switch {
	case all:
		return scope.All(projects), nil
	case project != "":
		p, err := scope.Lookup(project, projects)
		if err != nil {
			return scope.Scope{}, fmt.Errorf("resolve project: %w", err)
		}
		return scope.Single(p), nil
	case len(projects) == 1:
		return scope.Single(projects[0]), nil
	default:
		return scope.Scope{}, fmt.Errorf("%d projects configured; pick one or use all", len(projects))
	}
}

func loadInputs(opts Options) ([]timeline.Event, []timeline.RawEvent, error) {
	events, raws := opts.Timeline, opts.Raw
	if events == nil {
		if opts.TimelinePath == "" {
			return nil, nil, fmt.Errorf("no timeline given")
		}
		var err error
		events, err = timeline.LoadEvents(opts.TimelinePath)
		if err != nil {
			return nil, nil, fmt.Errorf("load timeline: %w", err)
		}
	}
	if raws == nil && opts.RawPath != "" {
		var err error
		raws, err = timeline.LoadRawEvents(opts.RawPath)
		if err != nil {
			return nil, nil, fmt.Errorf("load raw events: %w", err)
		}
	}
	return events, raws, nil
}

func buildRules(cfg config.ClassifyConfig, events []timeline.Event) ([]classify.Rule, error) {
	rules := classify.DefaultRules()
	if cfg.RulesFile != "" {
		var err error
		rules, err = classify.LoadRules(cfg.RulesFile)
		if err != nil {
			return nil, err
		}
	}
	if cfg.Bootstrap {
		rules = classify.Bootstrap(events, rules, cfg.TopKeywords)
	}
	return rules, nil
}

func inRange(events []timeline.Event, rng timeline.TimeRange) []timeline.Event {
	out := make([]timeline.Event, 0, len(events))
	for _, e := range events {
		if rng.Contains(e.TS) {
			out = append(out, e)
		}
	}
	return out
}
