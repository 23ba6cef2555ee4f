package enrichment

// Prompt holds what the summarizer sees about one major event.
type Prompt struct {
	EventType   string
	Title       string
	RuleSummary string
	Trigger     string
	FollowUps   []string
}

// summaryJSON is the expected JSON structure from the LLM response.
type summaryJSON struct {
	Summary string `json:"summary"`
}
