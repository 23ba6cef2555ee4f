// Package report bundles one pipeline run into a single JSON document.
package report

import (
	"time"

	"github.com/suykerbuyk/proofline/internal/chain"
	"github.com/suykerbuyk/proofline/internal/classify"
	"github.com/suykerbuyk/proofline/internal/evidence"
	"github.com/suykerbuyk/proofline/internal/insights"
	"github.com/suykerbuyk/proofline/internal/pathguard"
	"github.com/suykerbuyk/proofline/internal/scope"
	"github.com/suykerbuyk/proofline/internal/timeline"
)

// SchemaVersion is bumped whenever a field changes meaning.
const SchemaVersion = 1

// Report is the full output of one run.
type Report struct {
	SchemaVersion  int                   `json:"schemaVersion"`
	GeneratedAt    time.Time             `json:"generatedAt"`
	Client         string                `json:"client"`
	Query          string                `json:"query,omitempty"`
	Range          timeline.TimeRange    `json:"range"`
	Scope          scope.Scope           `json:"scope"`
	Rules          []classify.Rule       `json:"rules"`
	Evidence       []evidence.Item       `json:"evidence"`
	Conflicts      []evidence.Conflict   `json:"conflicts"`
	MajorEvents    []classify.MajorEvent `json:"majorEvents"`
	ActionChains   []chain.ActionChain   `json:"actionChains"`
	ReplaySegments []chain.ReplaySegment `json:"replaySegments"`
	Insights       insights.Insights     `json:"insights"`
	PathAudit      PathAudit             `json:"pathAudit"`
}

// PathAudit is the serialized access trail of a run.
type PathAudit struct {
	Client  string             `json:"client"`
	Records []pathguard.Record `json:"records"`
}

// AuditOf snapshots a.
func AuditOf(a *pathguard.Audit) PathAudit {
	if a == nil {
		return PathAudit{Records: []pathguard.Record{}}
	}
	return PathAudit{Client: a.Client(), Records: a.Records()}
}

// Stats is the headline count of a report, used by run listings.
type Stats struct {
	Evidence    int `json:"evidence"`
	Conflicts   int `json:"conflicts"`
	MajorEvents int `json:"majorEvents"`
	Chains      int `json:"chains"`
	Deltas      int `json:"featureDeltas"`
	Denied      int `json:"deniedPaths"`
}

// Stats counts the report's main collections.
func (r *Report) Stats() Stats {
	s := Stats{
		Evidence:    len(r.Evidence),
		Conflicts:   len(r.Conflicts),
		MajorEvents: len(r.MajorEvents),
		Chains:      len(r.ActionChains),
		Deltas:      len(r.Insights.FeatureDeltas),
	}
	for _, rec := range r.PathAudit.Records {
		if !rec.Allowed {
			s.Denied++
		}
	}
	return s
}
