package stats

import (
	"strings"
	"testing"
	"time"

	"github.com/suykerbuyk/proofline/internal/report"
	"github.com/suykerbuyk/proofline/internal/store"
)

func makeRun(id, client, scope string, created time.Time, evidence, major, deltas, denied int) store.Run {
	return store.Run{
		ID:        id,
		CreatedAt: created,
		Client:    client,
		Scope:     scope,
		Stats: report.Stats{
			Evidence:    evidence,
			MajorEvents: major,
			Deltas:      deltas,
			Denied:      denied,
		},
	}
}

var (
	feb = time.Date(2026, 2, 20, 9, 0, 0, 0, time.UTC)
	mar = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
)

func sampleRuns() []store.Run {
	return []store.Run{
		makeRun("r1", "claude", "project:app", feb, 10, 2, 1, 0),
		makeRun("r2", "claude", "project:app", mar, 20, 4, 0, 3),
		makeRun("r3", "codex", "all:app,web", mar, 6, 0, 2, 0),
	}
}

func TestCompute_Empty(t *testing.T) {
	s := Compute(nil, "")
	if s.TotalRuns != 0 {
		t.Errorf("TotalRuns = %d, want 0", s.TotalRuns)
	}
	if s.AvgEvidence != 0 || s.AvgMajorEvents != 0 {
		t.Errorf("averages = %f %f, want 0", s.AvgEvidence, s.AvgMajorEvents)
	}
}

func TestCompute_Totals(t *testing.T) {
	s := Compute(sampleRuns(), "")

	if s.TotalRuns != 3 {
		t.Errorf("TotalRuns = %d, want 3", s.TotalRuns)
	}
	if s.Totals.Evidence != 36 || s.Totals.MajorEvents != 6 || s.Totals.Deltas != 3 || s.Totals.Denied != 3 {
		t.Errorf("Totals = %+v", s.Totals)
	}
	if s.DeniedRuns != 1 {
		t.Errorf("DeniedRuns = %d, want 1", s.DeniedRuns)
	}
	if s.AvgEvidence != 12 || s.AvgMajorEvents != 2 {
		t.Errorf("averages = %f %f", s.AvgEvidence, s.AvgMajorEvents)
	}

	if len(s.Clients) != 2 || s.Clients[0].Name != "claude" || s.Clients[0].Runs != 2 {
		t.Errorf("Clients = %+v", s.Clients)
	}
	if len(s.Scopes) != 2 || s.Scopes[0].Name != "project:app" || s.Scopes[0].MajorEvents != 6 {
		t.Errorf("Scopes = %+v", s.Scopes)
	}
	if len(s.Monthly) != 2 || s.Monthly[0].Month != "2026-02" || s.Monthly[1].Runs != 2 {
		t.Errorf("Monthly = %+v", s.Monthly)
	}
}

func TestCompute_ClientFilter(t *testing.T) {
	s := Compute(sampleRuns(), "codex")
	if s.TotalRuns != 1 || s.Totals.Deltas != 2 {
		t.Errorf("codex summary = %+v", s)
	}
}

func TestCompute_GroupTieBreak(t *testing.T) {
	runs := []store.Run{
		makeRun("r1", "Zed", "project:z", mar, 1, 0, 0, 0),
		makeRun("r2", "alpha", "project:a", mar, 1, 0, 0, 0),
	}
	s := Compute(runs, "")
	if s.Clients[0].Name != "alpha" {
		t.Errorf("expected case-insensitive name order, got %+v", s.Clients)
	}
}

func TestFormat_Empty(t *testing.T) {
	out := Format(Summary{}, "")
	if !strings.Contains(out, "No runs stored") {
		t.Errorf("unexpected output:\n%s", out)
	}
	out = Format(Summary{}, "codex")
	if !strings.HasPrefix(out, "proofline runs stats --client codex\n") {
		t.Errorf("unexpected header:\n%s", out)
	}
}

func TestFormat_Sections(t *testing.T) {
	out := Format(Compute(sampleRuns(), ""), "")
	for _, want := range []string{
		"Overview",
		"runs                 3",
		"clients              2",
		"denied paths         3 in 1 runs",
		"evidence/run         12.0",
		"\nClients\n",
		"\nScopes\n",
		"project:app",
		"2026-03",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}

	filtered := Format(Compute(sampleRuns(), "claude"), "claude")
	if strings.Contains(filtered, "\nClients\n") {
		t.Error("client breakdown should be omitted when filtering by client")
	}
}

func TestFormat_LargeNumbersUseSeparators(t *testing.T) {
	s := Compute([]store.Run{makeRun("r1", "claude", "project:app", mar, 12345, 1, 0, 0)}, "")
	if out := Format(s, ""); !strings.Contains(out, "12,345") {
		t.Errorf("expected comma separated evidence count in:\n%s", out)
	}
}

func TestFormat_GroupOverflow(t *testing.T) {
	var runs []store.Run
	for _, c := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		runs = append(runs, makeRun(c, c, "project:"+c, mar, 1, 0, 0, 0))
	}
	out := Format(Compute(runs, ""), "")
	if !strings.Contains(out, "... and 2 more") {
		t.Errorf("expected overflow line in:\n%s", out)
	}
}
