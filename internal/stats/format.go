package stats

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// Format renders a Summary as aligned terminal output.
func Format(s Summary, client string) string {
	header := "proofline runs stats\n"
	if client != "" {
		header = fmt.Sprintf("proofline runs stats --client %s\n", client)
	}
	if s.TotalRuns == 0 {
		return header + "\n  No runs stored. Run `proofline analyze --save` first.\n"
	}

	var b strings.Builder
	b.WriteString(header)

	// Overview
	b.WriteString("\nOverview\n")
	fmt.Fprintf(&b, "  %-20s %s\n", "runs", humanize.Comma(int64(s.TotalRuns)))
	if client == "" {
		fmt.Fprintf(&b, "  %-20s %d\n", "clients", len(s.Clients))
	}
	fmt.Fprintf(&b, "  %-20s %d\n", "scopes", len(s.Scopes))
	fmt.Fprintf(&b, "  %-20s %s\n", "evidence", humanize.Comma(int64(s.Totals.Evidence)))
	fmt.Fprintf(&b, "  %-20s %s\n", "major events", humanize.Comma(int64(s.Totals.MajorEvents)))
	fmt.Fprintf(&b, "  %-20s %s\n", "feature deltas", humanize.Comma(int64(s.Totals.Deltas)))
	fmt.Fprintf(&b, "  %-20s %s in %d runs\n", "denied paths", humanize.Comma(int64(s.Totals.Denied)), s.DeniedRuns)

	// Averages
	b.WriteString("\nAverages\n")
	fmt.Fprintf(&b, "  %-20s %.1f\n", "evidence/run", s.AvgEvidence)
	fmt.Fprintf(&b, "  %-20s %.1f\n", "major events/run", s.AvgMajorEvents)

	if client == "" && len(s.Clients) > 0 {
		b.WriteString("\nClients\n")
		writeGroups(&b, s.Clients, 5)
	}

	if len(s.Scopes) > 0 {
		b.WriteString("\nScopes\n")
		writeGroups(&b, s.Scopes, 5)
	}

	if len(s.Monthly) > 0 {
		b.WriteString("\nMonthly Trend\n")
		for _, m := range s.Monthly {
			fmt.Fprintf(&b, "  %-12s %3d runs   %s major events\n", m.Month, m.Runs, humanize.Comma(int64(m.MajorEvents)))
		}
	}

	return b.String()
}

func writeGroups(b *strings.Builder, groups []GroupStats, limit int) {
	if len(groups) < limit {
		limit = len(groups)
	}
	for _, g := range groups[:limit] {
		fmt.Fprintf(b, "  %-24s %3d runs   %4d major   %3d deltas\n", g.Name, g.Runs, g.MajorEvents, g.Deltas)
	}
	if len(groups) > limit {
		fmt.Fprintf(b, "  ... and %d more\n", len(groups)-limit)
	}
}
