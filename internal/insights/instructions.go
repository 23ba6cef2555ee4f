package insights

import (
	"github.com/suykerbuyk/proofline/internal/hashid"
	"github.com/suykerbuyk/proofline/internal/sanitize"
	"github.com/suykerbuyk/proofline/internal/textmine"
	"github.com/suykerbuyk/proofline/internal/timeline"
)

const maxInstructionChars = 2000

// ExtractInstructions returns the human text of every user event, skipping
// injected boilerplate and bare acknowledgements.
func ExtractInstructions(events []timeline.Event) []Instruction {
	out := make([]Instruction, 0)
	for _, e := range events {
		if e.Actor != timeline.ActorUser {
			continue
		}
		raw := textmine.ExtractText(e.Detail)
		if sanitize.IsBoilerplate(raw) {
			continue
		}
		text := sanitize.StripTags(raw)
		if sanitize.IsBoilerplate(text) || sanitize.IsTrivial(text) {
			continue
		}
		normalized := textmine.Normalize(text)
		if normalized == "" {
			continue
		}
		text = textmine.Truncate(text, maxInstructionChars)
		tokens := textmine.Tokenize(normalized)
		if tokens == nil {
			tokens = []string{}
		}

		out = append(out, Instruction{
			ID:            hashid.Sum("ins", hashid.Str(e.ID), hashid.Time(e.TS), hashid.Str(text)),
			TS:            e.TS,
			Text:          text,
			Normalized:    normalized,
			Tokens:        tokens,
			SourceEventID: e.ID,
		})
	}
	return out
}
