package timeline

import (
	"encoding/json"
	"strings"
	"time"
)

// Actor is who produced a timeline event.
type Actor string

const (
	ActorUser      Actor = "user"
	ActorAssistant Actor = "assistant"
	ActorSystem    Actor = "system"
)

// Event is one normalized, time-ordered entry of a session trace.
// Input slices are sorted ascending by TS with unique IDs.
type Event struct {
	ID         string         `json:"id"`
	Client     string         `json:"client"`
	TS         time.Time      `json:"ts"`
	Label      string         `json:"label"`
	Detail     string         `json:"detail"`
	Actor      Actor          `json:"actor"`
	Tags       []string       `json:"tags"`
	SourcePath string         `json:"sourcePath"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// HasTag reports whether the event carries tag (case-insensitive).
func (e Event) HasTag(tag string) bool {
	for _, t := range e.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// MetaString returns the first non-empty string value among keys.
func (e Event) MetaString(keys ...string) string {
	return metaString(e.Metadata, keys...)
}

// RawEvent is an original, unnormalized record as produced by a connector.
type RawEvent struct {
	ID         string          `json:"id"`
	Client     string          `json:"client"`
	TS         time.Time       `json:"ts"`
	Kind       string          `json:"kind"`
	SourcePath string          `json:"sourcePath"`
	Metadata   map[string]any  `json:"metadata,omitempty"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

// MetaString returns the first non-empty string value among keys.
func (r RawEvent) MetaString(keys ...string) string {
	return metaString(r.Metadata, keys...)
}

// WorkdirKeys are the metadata keys that may declare an event's working directory.
var WorkdirKeys = []string{"cwd", "workdir", "workingDirectory", "projectRoot", "root"}

func metaString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

// TimeRange bounds a run. A zero Start or End leaves that side open.
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether ts lies within the range, inclusive.
func (r TimeRange) Contains(ts time.Time) bool {
	if !r.Start.IsZero() && ts.Before(r.Start) {
		return false
	}
	if !r.End.IsZero() && ts.After(r.End) {
		return false
	}
	return true
}
