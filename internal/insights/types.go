// Package insights derives instruction flow, repetition, feature deltas and
// a phase narrative from one run's timeline, evidence and major events.
package insights

import "time"

// Instruction is the human text of one user event.
type Instruction struct {
	ID            string    `json:"id"`
	TS            time.Time `json:"ts"`
	Text          string    `json:"text"`
	Normalized    string    `json:"normalized"`
	Tokens        []string  `json:"tokens"`
	SourceEventID string    `json:"sourceEventId,omitempty"`
}

// RepetitionKind says how the members of a cluster resemble each other.
type RepetitionKind string

const (
	ExactRepeat RepetitionKind = "exact_repeat"
	TopicRepeat RepetitionKind = "topic_repeat"
)

// Interpretation is what a repetition most likely means.
type Interpretation string

const (
	FeaturePolish   Interpretation = "feature_polish"
	StuckIssue      Interpretation = "stuck_issue"
	NormalIteration Interpretation = "normal_iteration"
)

type RepetitionCluster struct {
	ID             string         `json:"id"`
	Topic          string         `json:"topic"`
	Count          int            `json:"count"`
	InstructionIDs []string       `json:"instructionIds"`
	Kind           RepetitionKind `json:"kind"`
	Interpretation Interpretation `json:"interpretation"`
}

// FeatureDelta is an inferred before/after change for one code area.
type FeatureDelta struct {
	ID         string   `json:"id"`
	ProjectID  string   `json:"projectId,omitempty"`
	Area       string   `json:"area"`
	Files      []string `json:"files"`
	Before     string   `json:"before"`
	After      string   `json:"after"`
	Basis      []string `json:"basis"`
	Confidence float64  `json:"confidence"`
}

// NarrativeSegment is one contiguous phase of activity.
type NarrativeSegment struct {
	ID          string    `json:"id"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Title       string    `json:"title"`
	Summary     string    `json:"summary"`
	EvidenceIDs []string  `json:"evidenceIds"`
}

// Insights is the engine's output. Every slice is non-nil.
type Insights struct {
	Instructions      []Instruction       `json:"instructions"`
	Repetition        []RepetitionCluster `json:"repetition"`
	FeatureDeltas     []FeatureDelta      `json:"featureDeltas"`
	TimelineNarrative []NarrativeSegment  `json:"timelineNarrative"`
}
