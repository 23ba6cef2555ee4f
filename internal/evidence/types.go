// Package evidence turns timeline events and recent filesystem changes into
// typed, deduplicated evidence.
package evidence

import (
	"time"

	"github.com/suykerbuyk/proofline/internal/hashid"
)

// Type classifies how directly an item evidences what happened.
type Type string

const (
	TypeFileChange    Type = "file_change"
	TypeToolCall      Type = "tool_call"
	TypeToolResult    Type = "tool_result"
	TypeAssistantText Type = "assistant_text"
	TypeUserText      Type = "user_text"
	TypeSystem        Type = "system"
)

// Item is one typed observation backing a claim about what happened.
type Item struct {
	ID         string         `json:"id"`
	Client     string         `json:"client"`
	ProjectID  string         `json:"projectId,omitempty"`
	TS         time.Time      `json:"ts"`
	Type       Type           `json:"type"`
	SourcePath string         `json:"sourcePath"`
	Summary    string         `json:"summary"`
	Detail     string         `json:"detail"`
	Confidence float64        `json:"confidence"`
	Priority   int            `json:"priority"`
	EventID    string         `json:"eventId,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// Conflict records one group of items that observed the same action.
type Conflict struct {
	ID                   string   `json:"id"`
	WinnerEvidenceID     string   `json:"winnerEvidenceId"`
	DiscardedEvidenceIDs []string `json:"discardedEvidenceIds"`
	Reason               string   `json:"reason"`
	Confidence           float64  `json:"confidence"`
}

type weight struct {
	confidence float64
	priority   int
}

// Fixed per-type weights, most direct evidence first.
var typeWeights = map[Type]weight{
	TypeFileChange:    {0.92, 5},
	TypeToolCall:      {0.85, 4},
	TypeToolResult:    {0.85, 4},
	TypeAssistantText: {0.70, 3},
	TypeUserText:      {0.60, 2},
	TypeSystem:        {0.40, 1},
}

// Files found by the filesystem scan outrank every trace-derived item.
const (
	scannedConfidence = 0.97
	scannedPriority   = 6
)

// Weight returns the fixed confidence and priority for t.
func Weight(t Type) (float64, int) {
	w, ok := typeWeights[t]
	if !ok {
		w = typeWeights[TypeSystem]
	}
	return w.confidence, w.priority
}

// itemID hashes client, type, ts, sourcePath, summary and eventId, in that
// order.
func itemID(it Item) string {
	return hashid.Sum("ev",
		hashid.Str(it.Client),
		hashid.Str(string(it.Type)),
		hashid.Time(it.TS),
		hashid.Str(it.SourcePath),
		hashid.Str(it.Summary),
		hashid.Str(it.EventID),
	)
}
