package sanitize

import "strings"

// boilerplatePrefixes open messages injected by the client rather than
// typed by the user.
var boilerplatePrefixes = []string{
	"<environment_context>",
	"<user_instructions>",
	"<turn_aborted>",
	"<system-reminder>",
	"# agents.md instructions",
	"# claude.md",
	"caveat:",
	"[request interrupted",
	"request interrupted by user",
	"implement the following plan:",
	"this session is being continued from a previous conversation",
	"the user opened the file",
	"the user selected the lines",
}

// boilerplateMarkers may appear anywhere in an injected message.
var boilerplateMarkers = []string{
	"<environment_context>",
	"</environment_context>",
	"<turn_aborted>",
	"[request interrupted by user",
}

var acknowledgements = map[string]bool{
	"yes": true, "yeah": true, "yep": true, "yup": true, "y": true,
	"no": true, "n": true, "ok": true, "okay": true, "k": true, "sure": true,
	"go": true, "proceed": true, "continue": true, "correct": true,
	"right": true, "hi": true, "hello": true, "hey": true, "thanks": true,
	"thx": true, "ty": true, "done": true, "great": true, "good": true,
	"nice": true, "cool": true, "perfect": true, "fine": true, "alright": true,
	"lgtm": true, "好": true, "好的": true, "可以": true, "行": true,
	"嗯": true, "继续": true, "谢谢": true, "对": true, "是": true, "好吧": true,
	"收到": true, "没问题": true,
}

// IsBoilerplate reports whether text is an environment preamble, abort
// marker or other client-injected message.
func IsBoilerplate(text string) bool {
	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == "" {
		return true
	}
	for _, p := range boilerplatePrefixes {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	for _, m := range boilerplateMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	// Slash commands
	if strings.HasPrefix(lower, "/") && !strings.ContainsAny(lower, " \n") {
		return true
	}
	return false
}

// IsTrivial reports whether text is a one-word acknowledgement.
func IsTrivial(text string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	t = strings.TrimRight(t, "!.。！~ ")
	if t == "" {
		return true
	}
	if strings.ContainsAny(t, " \t\n") {
		return acknowledgements[strings.Join(strings.Fields(t), " ")]
	}
	return acknowledgements[t]
}
