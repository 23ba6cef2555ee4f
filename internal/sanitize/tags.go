// Package sanitize strips assistant-client wrapper markup and recognizes
// text that carries no user intent.
package sanitize

import (
	"regexp"
	"strings"
)

var xmlTagPattern = regexp.MustCompile(
	`</?(?:local-command-(?:stdout|stderr|caveat)|command-(?:output|name|args|message)|` +
		`system-reminder|task-(?:id|notification)|persisted-output|thinking|tool-use-id|` +
		`tool|skill-name|plugin-id|user_instructions|user-prompt-submit-hook|image)[^>]*>`,
)

// StripTags removes assistant-client XML wrapper tags from text.
func StripTags(text string) string {
	return strings.TrimSpace(xmlTagPattern.ReplaceAllString(text, ""))
}
