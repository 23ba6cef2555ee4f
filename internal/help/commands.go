package help

import "strings"

// Version is the proofline release version, set at build time via -ldflags.
// Defaults to "dev" when built without version injection (e.g. `go run`).
var Version = "dev"

// Flag describes a command-line flag.
type Flag struct {
	Name string // e.g. "--all" or "--project <name>"
	Desc string
}

// Arg describes a positional argument.
type Arg struct {
	Name     string
	Desc     string
	Optional bool
}

// Command describes a proofline subcommand (or the binary itself when Name is "").
type Command struct {
	Name        string   // "analyze", "runs list", etc; "" for top-level
	Synopsis    string   // one-line description (lowercase, for --help header)
	Brief       string   // short description for usage table (capitalized)
	Usage       string   // full usage line
	TableUsage  string   // shortened usage for the top-level table (if different from Usage)
	Args        []Arg
	Flags       []Flag
	Description string   // multi-line prose (stored verbatim)
	Examples    []string // one per line, without leading 2-space indent
	SeeAlso     []string // man page cross-refs, e.g. "proofline(1)"
}

func (c Command) tableUsage() string {
	if c.TableUsage != "" {
		return c.TableUsage
	}
	return c.Usage
}

// ManName returns the man page name: "proofline" for top-level,
// "proofline-<name>" for subcommands, with spaces turned into hyphens.
func (c Command) ManName() string {
	if c.Name == "" {
		return "proofline"
	}
	return "proofline-" + strings.ReplaceAll(c.Name, " ", "-")
}

// Leaf returns the last word of Name, which is what cobra registers.
func (c Command) Leaf() string {
	if i := strings.LastIndex(c.Name, " "); i >= 0 {
		return c.Name[i+1:]
	}
	return c.Name
}

// Example returns the examples indented for cobra's Example field.
func (c Command) Example() string {
	lines := make([]string, len(c.Examples))
	for i, e := range c.Examples {
		lines[i] = "  " + e
	}
	return strings.Join(lines, "\n")
}

// TopLevel is the proofline binary itself.
var TopLevel = Command{
	Name:     "",
	Synopsis: "evidence-backed work trail from AI assistant sessions",
}

var CmdAnalyze = Command{
	Name:       "analyze",
	Synopsis:   "analyze a session trace",
	Brief:      "Analyze a timeline into evidence, events and insights",
	Usage:      "proofline analyze --timeline <file> [--raw <file>] [--project <name> | --all] [--since <t>] [--until <t>] [--query <text>] [--out <file>] [--format json|md] [--save]",
	TableUsage: "proofline analyze --timeline <file>",
	Flags: []Flag{
		{Name: "--timeline <file>", Desc: "Normalized timeline JSONL (.zst accepted)"},
		{Name: "--raw <file>", Desc: "Raw connector events JSONL, used for attribution"},
		{Name: "--project <name>", Desc: "Project id or fuzzy name to scope to"},
		{Name: "--all", Desc: "Scope to every configured project"},
		{Name: "--since <t>", Desc: "Range start: RFC 3339, YYYY-MM-DD or a duration like 48h or 3d"},
		{Name: "--until <t>", Desc: "Range end, same forms as --since"},
		{Name: "--query <text>", Desc: "Question recorded with the report"},
		{Name: "--out <file>", Desc: "Write the report here (.zst compresses); default stdout"},
		{Name: "--format <f>", Desc: "Output format: json (default) or md"},
		{Name: "--save", Desc: "Store the report in the run history"},
	},
	Description: `Loads one batch of timeline events, collects evidence from the timeline
and from a bounded scan of the in-scope project roots, resolves
duplicate observations, classifies major events, builds action chains
and replay segments, and derives instruction, repetition, feature delta
and narrative insights.

Every filesystem access is checked against the allowed roots and
recorded in the report's path audit. Without --since and --until the
range spans the loaded timeline.`,
	Examples: []string{
		"proofline analyze --timeline trace.jsonl --project app",
		"proofline analyze --timeline trace.jsonl.zst --all --since 3d --save",
		"proofline analyze --timeline trace.jsonl --out report.json.zst",
		"proofline analyze --timeline trace.jsonl --format md --out report.md",
	},
	SeeAlso: []string{"proofline(1)", "proofline-runs(1)", "proofline-schema(1)"},
}

var CmdRuns = Command{
	Name:       "runs",
	Synopsis:   "manage stored analysis runs",
	Brief:      "List, show, summarize or remove stored runs",
	Usage:      "proofline runs [list | show <id> | stats | rm <id>]",
	TableUsage: "proofline runs [list | ...]",
	Description: `Runs saved with analyze --save live in a local SQLite database
(store.path in the config). Run ids are ULIDs and sort by creation time.

Subcommands:
  proofline runs list        List recent runs (default)
  proofline runs show <id>   Print a stored report
  proofline runs stats       Summarize the run history
  proofline runs rm <id>     Delete a stored run`,
	SeeAlso: []string{"proofline(1)", "proofline-runs-list(1)", "proofline-runs-show(1)", "proofline-runs-stats(1)", "proofline-runs-rm(1)"},
}

var CmdSchema = Command{
	Name:     "schema",
	Synopsis: "print the report JSON Schema",
	Brief:    "Print the JSON Schema of the report",
	Usage:    "proofline schema",
	Description: `Prints a JSON Schema describing the report written by analyze, for
consumers that validate or generate bindings from it.`,
	SeeAlso: []string{"proofline(1)", "proofline-analyze(1)"},
}

var CmdInit = Command{
	Name:       "init",
	Synopsis:   "write a default config file",
	Brief:      "Write a default config file",
	Usage:      "proofline init [--project <id> --root <path>]",
	TableUsage: "proofline init",
	Flags: []Flag{
		{Name: "--project <id>", Desc: "Seed the config with this project id"},
		{Name: "--root <path>", Desc: "Root directory of the seeded project"},
	},
	Description: `Writes a commented config to ~/.config/proofline/config.toml. An
existing config is never overwritten.`,
	Examples: []string{
		"proofline init --project app --root ~/work/app",
	},
	SeeAlso: []string{"proofline(1)", "proofline-check(1)"},
}

var CmdCheck = Command{
	Name:     "check",
	Synopsis: "validate config, projects, rules and run store",
	Brief:    "Validate config, projects, rules and run store",
	Usage:    "proofline check",
	Description: `Runs diagnostic checks and prints a pass/warn/FAIL report:
  - Config file location
  - Each project root exists and lies within the allowed roots
  - Rule file parses (when configured)
  - Enrichment API key present (when enabled)
  - Run store location

Exits with status 1 if any check fails.`,
	SeeAlso: []string{"proofline(1)", "proofline-init(1)"},
}

var CmdVersion = Command{
	Name:     "version",
	Synopsis: "print version",
	Brief:    "Print version",
	Usage:    "proofline version",
	SeeAlso:  []string{"proofline(1)"},
}

var CmdRunsList = Command{
	Name:       "runs list",
	Synopsis:   "list stored runs",
	Brief:      "List stored runs, newest first",
	Usage:      "proofline runs list [--client <name>] [--limit <n>] [--format json|text]",
	TableUsage: "proofline runs list",
	Flags: []Flag{
		{Name: "--client <name>", Desc: "Only runs of this client"},
		{Name: "--limit <n>", Desc: "Maximum runs to list (default: 20)"},
		{Name: "--format <f>", Desc: "Output format: json or text"},
	},
	SeeAlso: []string{"proofline-runs(1)"},
}

var CmdRunsShow = Command{
	Name:     "runs show",
	Synopsis: "print a stored report",
	Brief:    "Print a stored report",
	Usage:    "proofline runs show <id> [--out <file>] [--format json|md]",
	Args: []Arg{
		{Name: "id", Desc: "Run id as printed by runs list"},
	},
	Flags: []Flag{
		{Name: "--out <file>", Desc: "Write the report here instead of stdout"},
		{Name: "--format <f>", Desc: "Output format: json or md"},
	},
	SeeAlso: []string{"proofline-runs(1)"},
}

var CmdRunsStats = Command{
	Name:     "runs stats",
	Synopsis: "summarize the run history",
	Brief:    "Summarize stored runs by client, scope and month",
	Usage:    "proofline runs stats [--client <name>]",
	Flags: []Flag{
		{Name: "--client <name>", Desc: "Only runs of this client"},
	},
	Description: `Aggregates the headline counts of every stored run: evidence, major
events, feature deltas and denied paths, with per-client, per-scope and
monthly breakdowns.`,
	SeeAlso: []string{"proofline-runs(1)", "proofline-runs-list(1)"},
}

var CmdRunsRm = Command{
	Name:     "runs rm",
	Synopsis: "delete a stored run",
	Brief:    "Delete a stored run",
	Usage:    "proofline runs rm <id>",
	Args: []Arg{
		{Name: "id", Desc: "Run id to delete"},
	},
	SeeAlso: []string{"proofline-runs(1)"},
}

// RunsSubcommands is the ordered list of runs sub-subcommands.
var RunsSubcommands = []Command{
	CmdRunsList,
	CmdRunsShow,
	CmdRunsStats,
	CmdRunsRm,
}

// Subcommands is the ordered list of all subcommands.
var Subcommands = []Command{
	CmdAnalyze,
	CmdRuns,
	CmdSchema,
	CmdInit,
	CmdCheck,
	CmdVersion,
}
