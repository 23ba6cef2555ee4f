// Package stats aggregates the stored run history.
package stats

import (
	"sort"
	"strings"

	"github.com/suykerbuyk/proofline/internal/report"
	"github.com/suykerbuyk/proofline/internal/store"
)

// Summary holds aggregate metrics over a set of runs.
type Summary struct {
	TotalRuns int
	Totals    report.Stats

	AvgEvidence    float64
	AvgMajorEvents float64
	// DeniedRuns counts runs whose path audit recorded a denial.
	DeniedRuns int

	Clients []GroupStats
	Scopes  []GroupStats
	Monthly []MonthStats
}

// GroupStats holds per-client or per-scope metrics.
type GroupStats struct {
	Name        string
	Runs        int
	MajorEvents int
	Deltas      int
}

// MonthStats holds per-month metrics.
type MonthStats struct {
	Month       string // YYYY-MM
	Runs        int
	MajorEvents int
}

// Compute builds a Summary from runs, optionally filtered by client.
func Compute(runs []store.Run, client string) Summary {
	var s Summary

	clientMap := make(map[string]*GroupStats)
	scopeMap := make(map[string]*GroupStats)
	monthMap := make(map[string]*MonthStats)

	for _, r := range runs {
		if client != "" && r.Client != client {
			continue
		}

		s.TotalRuns++
		s.Totals.Evidence += r.Stats.Evidence
		s.Totals.Conflicts += r.Stats.Conflicts
		s.Totals.MajorEvents += r.Stats.MajorEvents
		s.Totals.Chains += r.Stats.Chains
		s.Totals.Deltas += r.Stats.Deltas
		s.Totals.Denied += r.Stats.Denied
		if r.Stats.Denied > 0 {
			s.DeniedRuns++
		}

		add(clientMap, r.Client, r.Stats)
		add(scopeMap, r.Scope, r.Stats)

		if !r.CreatedAt.IsZero() {
			month := r.CreatedAt.UTC().Format("2006-01")
			mm, ok := monthMap[month]
			if !ok {
				mm = &MonthStats{Month: month}
				monthMap[month] = mm
			}
			mm.Runs++
			mm.MajorEvents += r.Stats.MajorEvents
		}
	}

	if s.TotalRuns > 0 {
		s.AvgEvidence = float64(s.Totals.Evidence) / float64(s.TotalRuns)
		s.AvgMajorEvents = float64(s.Totals.MajorEvents) / float64(s.TotalRuns)
	}

	s.Clients = sortGroups(clientMap)
	s.Scopes = sortGroups(scopeMap)

	for _, mm := range monthMap {
		s.Monthly = append(s.Monthly, *mm)
	}
	sort.Slice(s.Monthly, func(i, j int) bool {
		return s.Monthly[i].Month < s.Monthly[j].Month
	})

	return s
}

func add(m map[string]*GroupStats, name string, st report.Stats) {
	if name == "" {
		name = "unknown"
	}
	g, ok := m[name]
	if !ok {
		g = &GroupStats{Name: name}
		m[name] = g
	}
	g.Runs++
	g.MajorEvents += st.MajorEvents
	g.Deltas += st.Deltas
}

// sortGroups orders by runs desc, then name.
func sortGroups(m map[string]*GroupStats) []GroupStats {
	out := make([]GroupStats, 0, len(m))
	for _, g := range m {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Runs != out[j].Runs {
			return out[i].Runs > out[j].Runs
		}
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}
