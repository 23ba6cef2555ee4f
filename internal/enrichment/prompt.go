package enrichment

import (
	"fmt"
	"strings"

	"github.com/openai/openai-go"
)

const (
	maxTriggerChars  = 4000
	maxFollowUpChars = 1200
	maxFollowUps     = 6
)

const systemPrompt = `You summarize one significant moment in an AI-assisted coding session.

Respond with valid JSON only. No markdown, no explanation. Schema:
{
  "summary": "One sentence. Past tense. What happened and what it led to."
}

Rules:
- Stay factual. Use only the trigger and follow-up text given.
- Keep file names, commands and error messages verbatim when they matter.
- Refine the rule summary rather than contradict it.`

func buildMessages(p Prompt) []openai.ChatCompletionMessageParamUnion {
	return []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(systemPrompt),
		openai.UserMessage(buildUserPrompt(p)),
	}
}

func buildUserPrompt(p Prompt) string {
	var b strings.Builder

	b.WriteString("## Event\n")
	fmt.Fprintf(&b, "- Type: %s\n", p.EventType)
	fmt.Fprintf(&b, "- Title: %s\n", p.Title)
	fmt.Fprintf(&b, "- Rule summary: %s\n", p.RuleSummary)

	b.WriteString("\n## Trigger\n")
	b.WriteString(truncate(p.Trigger, maxTriggerChars))
	b.WriteString("\n")

	if len(p.FollowUps) > 0 {
		b.WriteString("\n## Follow-ups\n")
		n := min(len(p.FollowUps), maxFollowUps)
		for _, f := range p.FollowUps[:n] {
			fmt.Fprintf(&b, "- %s\n", truncate(f, maxFollowUpChars))
		}
		if len(p.FollowUps) > maxFollowUps {
			fmt.Fprintf(&b, "- ... and %d more\n", len(p.FollowUps)-maxFollowUps)
		}
	}

	return b.String()
}

func truncate(text string, maxChars int) string {
	if len(text) <= maxChars {
		return text
	}

	truncated := text[:maxChars]
	if idx := strings.LastIndex(truncated, "\n"); idx > maxChars/2 {
		truncated = truncated[:idx]
	}

	return strings.ToValidUTF8(truncated, "") + "\n[...truncated]"
}
