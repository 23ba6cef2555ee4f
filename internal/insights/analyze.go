package insights

import (
	"log/slog"

	"github.com/suykerbuyk/proofline/internal/classify"
	"github.com/suykerbuyk/proofline/internal/evidence"
	"github.com/suykerbuyk/proofline/internal/scope"
	"github.com/suykerbuyk/proofline/internal/timeline"
)

// Input is everything the analyzers read. Evidence is the resolved set.
type Input struct {
	Query       string
	Scope       scope.Scope
	Timeline    []timeline.Event
	Evidence    []evidence.Item
	MajorEvents []classify.MajorEvent
}

// Analyze runs the four analyzers. Empty input yields four empty slices.
// Query is recorded for the caller's prompt and does not filter anything.
func Analyze(in Input) Insights {
	instructions := ExtractInstructions(in.Timeline)
	out := Insights{
		Instructions:      instructions,
		Repetition:        ClusterRepetition(instructions, in.Evidence),
		FeatureDeltas:     ExtractFeatureDeltas(in.Evidence, in.Scope),
		TimelineNarrative: SegmentNarrative(in.Timeline, in.Evidence, in.MajorEvents, instructions),
	}
	slog.Debug("insights analyzed",
		"query", in.Query,
		"instructions", len(out.Instructions),
		"repetition", len(out.Repetition),
		"feature_deltas", len(out.FeatureDeltas),
		"segments", len(out.TimelineNarrative))
	return out
}
