// Package classify scores timeline events against keyword rules and emits
// at most one major event per qualifying event.
package classify

import (
	"fmt"
	"time"
)

// EventType is the significance label of a major event.
type EventType string

const (
	Goal         EventType = "GOAL"
	Assist       EventType = "ASSIST"
	Penalty      EventType = "PENALTY"
	YellowCard   EventType = "YELLOW_CARD"
	RedCard      EventType = "RED_CARD"
	Corner       EventType = "CORNER"
	Offside      EventType = "OFFSIDE"
	Substitution EventType = "SUBSTITUTION"
)

var eventTitles = map[EventType]string{
	Goal:         "Goal",
	Assist:       "Assist",
	Penalty:      "Penalty",
	YellowCard:   "Yellow card",
	RedCard:      "Red card",
	Corner:       "Corner",
	Offside:      "Offside",
	Substitution: "Substitution",
}

// Valid reports whether t is a known event type.
func (t EventType) Valid() bool {
	_, ok := eventTitles[t]
	return ok
}

// IsIssue reports whether t marks a failure or a risk.
func (t EventType) IsIssue() bool {
	return t == Penalty || t == YellowCard || t == RedCard
}

// Rule is an immutable keyword rule. A rule with no seed hit never fires,
// whatever its bootstrapped keywords match.
type Rule struct {
	ID           string    `yaml:"id" json:"id"`
	EventType    EventType `yaml:"eventType" json:"eventType"`
	AnyOf        []string  `yaml:"anyOf" json:"anyOf"`
	AllOf        []string  `yaml:"allOf,omitempty" json:"allOf,omitempty"`
	Not          []string  `yaml:"not,omitempty" json:"not,omitempty"`
	MinScore     float64   `yaml:"minScore,omitempty" json:"minScore,omitempty"`
	Weight       float64   `yaml:"weight,omitempty" json:"weight,omitempty"`
	Bootstrapped []string  `yaml:"bootstrapped,omitempty" json:"bootstrapped,omitempty"`
}

func (r Rule) weight() float64 {
	if r.Weight <= 0 {
		return 1
	}
	return r.Weight
}

func (r Rule) minScore() float64 {
	if r.MinScore <= 0 {
		return 1
	}
	return r.MinScore
}

func (r Rule) validate() error {
	if r.ID == "" {
		return fmt.Errorf("rule missing id")
	}
	if !r.EventType.Valid() {
		return fmt.Errorf("rule %s: unknown event type %q", r.ID, r.EventType)
	}
	if len(r.AnyOf) == 0 {
		return fmt.Errorf("rule %s: anyOf is empty", r.ID)
	}
	return nil
}

// clone deep-copies r so callers never share backing arrays.
func (r Rule) clone() Rule {
	r.AnyOf = append([]string(nil), r.AnyOf...)
	r.AllOf = append([]string(nil), r.AllOf...)
	r.Not = append([]string(nil), r.Not...)
	r.Bootstrapped = append([]string(nil), r.Bootstrapped...)
	return r
}

// MajorEvent is a timeline event that crossed a rule's threshold.
type MajorEvent struct {
	ID               string    `json:"id"`
	Client           string    `json:"client"`
	TS               time.Time `json:"ts"`
	Type             EventType `json:"type"`
	Title            string    `json:"title"`
	Summary          string    `json:"summary"`
	Score            float64   `json:"score"`
	TriggerEventID   string    `json:"triggerEventId"`
	FollowUpEventIDs []string  `json:"followUpEventIds"`
	RuleID           string    `json:"ruleId"`
}
