// Package render turns a report into a human-readable markdown document.
package render

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/suykerbuyk/proofline/internal/classify"
	"github.com/suykerbuyk/proofline/internal/help"
	"github.com/suykerbuyk/proofline/internal/report"
)

const tsLayout = "2006-01-02 15:04"

// Markdown renders r as a markdown document with YAML frontmatter.
func Markdown(r *report.Report) string {
	var b strings.Builder
	st := r.Stats()

	// Frontmatter
	b.WriteString("---\n")
	b.WriteString("type: proofline-report\n")
	b.WriteString(fmt.Sprintf("schema_version: %d\n", r.SchemaVersion))
	b.WriteString(fmt.Sprintf("generated: %s\n", r.GeneratedAt.UTC().Format(time.RFC3339)))
	b.WriteString(fmt.Sprintf("client: %s\n", r.Client))
	b.WriteString(fmt.Sprintf("scope: %s\n", r.Scope.Label()))
	if !r.Range.Start.IsZero() {
		b.WriteString(fmt.Sprintf("since: %s\n", r.Range.Start.UTC().Format(time.RFC3339)))
	}
	if !r.Range.End.IsZero() {
		b.WriteString(fmt.Sprintf("until: %s\n", r.Range.End.UTC().Format(time.RFC3339)))
	}
	if r.Query != "" {
		b.WriteString(fmt.Sprintf("query: \"%s\"\n", escapeYAML(r.Query)))
	}
	b.WriteString(fmt.Sprintf("evidence: %d\n", st.Evidence))
	b.WriteString(fmt.Sprintf("major_events: %d\n", st.MajorEvents))
	b.WriteString(fmt.Sprintf("denied_paths: %d\n", st.Denied))
	if types := eventTypes(r.MajorEvents); len(types) > 0 {
		b.WriteString(fmt.Sprintf("tags: [proofline, %s]\n", strings.Join(types, ", ")))
	} else {
		b.WriteString("tags: [proofline]\n")
	}
	b.WriteString("---\n\n")

	b.WriteString(fmt.Sprintf("# %s\n\n", title(r)))

	// Major Events
	b.WriteString("## Major Events\n\n")
	if len(r.MajorEvents) == 0 {
		b.WriteString("No major events in range.\n\n")
	} else {
		b.WriteString("| Time | Type | Title | Score |\n")
		b.WriteString("|------|------|-------|-------|\n")
		for _, m := range r.MajorEvents {
			b.WriteString(fmt.Sprintf("| %s | %s | %s | %.2f |\n",
				m.TS.UTC().Format(tsLayout), m.Type, escapeCell(m.Title), m.Score))
		}
		b.WriteString("\n")
	}

	// Timeline
	if n := r.Insights.TimelineNarrative; len(n) > 0 {
		b.WriteString("## Timeline\n\n")
		for _, seg := range n {
			b.WriteString(fmt.Sprintf("### %s (%s to %s)\n\n", seg.Title,
				seg.Start.UTC().Format(tsLayout), seg.End.UTC().Format("15:04")))
			b.WriteString(seg.Summary + "\n\n")
		}
	}

	// What Changed
	if deltas := r.Insights.FeatureDeltas; len(deltas) > 0 {
		b.WriteString("## What Changed\n\n")
		for _, d := range deltas {
			b.WriteString(fmt.Sprintf("- **%s** (confidence %.2f)\n", d.Area, d.Confidence))
			if d.Before != "" || d.After != "" {
				b.WriteString(fmt.Sprintf("  - before: %s\n", d.Before))
				b.WriteString(fmt.Sprintf("  - after: %s\n", d.After))
			}
			for _, f := range d.Files {
				b.WriteString(fmt.Sprintf("  - `%s`\n", f))
			}
		}
		b.WriteString("\n")
	}

	// Action Chains
	if len(r.ActionChains) > 0 {
		b.WriteString("## Action Chains\n\n")
		for _, c := range r.ActionChains {
			b.WriteString(fmt.Sprintf("- %s (%d steps, confidence %.2f)\n", c.Summary, len(c.Steps), c.Confidence))
		}
		b.WriteString("\n")
	}

	// Repetition
	if reps := r.Insights.Repetition; len(reps) > 0 {
		b.WriteString("## Repeated Instructions\n\n")
		for _, c := range reps {
			b.WriteString(fmt.Sprintf("- %s x%d: %s\n", c.Topic, c.Count, c.Interpretation))
		}
		b.WriteString("\n")
	}

	// Conflicts
	if len(r.Conflicts) > 0 {
		b.WriteString("## Conflicts\n\n")
		for _, c := range r.Conflicts {
			b.WriteString(fmt.Sprintf("- kept `%s`, dropped %d: %s\n", c.WinnerEvidenceID, len(c.DiscardedEvidenceIDs), c.Reason))
		}
		b.WriteString("\n")
	}

	// Denied paths
	var denied []string
	for _, rec := range r.PathAudit.Records {
		if !rec.Allowed {
			denied = append(denied, fmt.Sprintf("- `%s` %s", rec.Path, rec.Reason))
		}
	}
	if len(denied) > 0 {
		b.WriteString("## Denied Paths\n\n")
		b.WriteString(strings.Join(denied, "\n"))
		b.WriteString("\n\n")
	}

	// Footer
	b.WriteString("---\n")
	b.WriteString(fmt.Sprintf("*proofline %s*\n", help.Version))

	return b.String()
}

func title(r *report.Report) string {
	if r.Query != "" {
		return r.Query
	}
	label := r.Scope.Label()
	if r.Range.Start.IsZero() {
		return "Report for " + label
	}
	return fmt.Sprintf("Report for %s, %s", label, r.Range.Start.UTC().Format("2006-01-02"))
}

// eventTypes lists the distinct major event types in lower case, sorted.
func eventTypes(events []classify.MajorEvent) []string {
	seen := map[string]bool{}
	for _, m := range events {
		seen[strings.ToLower(string(m.Type))] = true
	}
	types := make([]string, 0, len(seen))
	for t := range seen {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

func escapeYAML(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	return s
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
