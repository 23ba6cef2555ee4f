package help

import (
	"fmt"
	"strings"
	"testing"
)

// expectedTerminal maps command name to its exact terminal help output.
var expectedTerminal = map[string]string{
	"schema": "proofline schema \u2014 print the report JSON Schema\n" +
		"\n" +
		"Usage: proofline schema\n" +
		"\n" +
		"Prints a JSON Schema describing the report written by analyze, for\n" +
		"consumers that validate or generate bindings from it.\n",

	"runs show": "proofline runs show \u2014 print a stored report\n" +
		"\n" +
		"Usage: proofline runs show <id> [--out <file>] [--format json|md]\n" +
		"\n" +
		"Arguments:\n" +
		"  id             Run id as printed by runs list\n" +
		"\n" +
		"Flags:\n" +
		"  --out <file>   Write the report here instead of stdout\n" +
		"  --format <f>   Output format: json or md\n",

	"init": "proofline init \u2014 write a default config file\n" +
		"\n" +
		"Usage: proofline init [--project <id> --root <path>]\n" +
		"\n" +
		"Flags:\n" +
		"  --project <id>   Seed the config with this project id\n" +
		"  --root <path>    Root directory of the seeded project\n" +
		"\n" +
		"Writes a commented config to ~/.config/proofline/config.toml. An\n" +
		"existing config is never overwritten.\n" +
		"\n" +
		"Examples:\n" +
		"  proofline init --project app --root ~/work/app\n",
}

func allCommands() []Command {
	return append(append([]Command(nil), Subcommands...), RunsSubcommands...)
}

func TestFormatTerminal(t *testing.T) {
	for _, cmd := range allCommands() {
		want, ok := expectedTerminal[cmd.Name]
		if !ok {
			continue
		}
		t.Run(cmd.Name, func(t *testing.T) {
			got := FormatTerminal(cmd)
			if got != want {
				t.Errorf("FormatTerminal(%q) mismatch:\n%s", cmd.Name, diff(want, got))
			}
		})
	}
}

func TestFormatTerminalFlagsOnePerLine(t *testing.T) {
	out := FormatTerminal(CmdAnalyze)
	for _, f := range CmdAnalyze.Flags {
		found := false
		for _, line := range strings.Split(out, "\n") {
			if strings.HasPrefix(line, "  "+f.Name+" ") && strings.HasSuffix(line, f.Desc) {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("flag %q not on its own line in:\n%s", f.Name, out)
		}
	}
}

func TestFormatUsage(t *testing.T) {
	out := FormatUsage(TopLevel, Subcommands)

	if !strings.HasPrefix(out, fmt.Sprintf("proofline %s \u2014 %s\n", Version, TopLevel.Synopsis)) {
		t.Errorf("unexpected header: %q", strings.SplitN(out, "\n", 2)[0])
	}
	for _, cmd := range Subcommands {
		if !strings.Contains(out, cmd.tableUsage()) {
			t.Errorf("usage missing %q", cmd.tableUsage())
		}
		if !strings.Contains(out, cmd.Brief) {
			t.Errorf("usage missing brief %q", cmd.Brief)
		}
	}
	if !strings.Contains(out, "proofline help [command]") {
		t.Error("usage missing help entry")
	}
	if !strings.Contains(out, "~/.config/proofline/config.toml") {
		t.Error("usage missing config path")
	}
}

func TestRegistryCompleteness(t *testing.T) {
	seen := make(map[string]bool)
	for _, cmd := range allCommands() {
		if cmd.Name == "" {
			t.Error("registry contains a command without a name")
		}
		if seen[cmd.Name] {
			t.Errorf("duplicate command %q", cmd.Name)
		}
		seen[cmd.Name] = true
		if cmd.Synopsis == "" || cmd.Brief == "" || cmd.Usage == "" {
			t.Errorf("command %q missing synopsis, brief or usage", cmd.Name)
		}
		if !strings.HasPrefix(cmd.Usage, "proofline "+cmd.Name) {
			t.Errorf("usage of %q should start with its name: %q", cmd.Name, cmd.Usage)
		}
	}
	for _, name := range []string{"analyze", "runs", "schema", "init", "check", "version", "runs list", "runs show", "runs stats", "runs rm"} {
		if !seen[name] {
			t.Errorf("registry missing %q", name)
		}
	}
}

func TestManNameAndLeaf(t *testing.T) {
	tests := []struct {
		cmd  Command
		man  string
		leaf string
	}{
		{TopLevel, "proofline", ""},
		{CmdAnalyze, "proofline-analyze", "analyze"},
		{CmdRunsShow, "proofline-runs-show", "show"},
	}
	for _, tt := range tests {
		if got := tt.cmd.ManName(); got != tt.man {
			t.Errorf("ManName(%q) = %q, want %q", tt.cmd.Name, got, tt.man)
		}
		if got := tt.cmd.Leaf(); got != tt.leaf {
			t.Errorf("Leaf(%q) = %q, want %q", tt.cmd.Name, got, tt.leaf)
		}
	}
}

func TestExample(t *testing.T) {
	got := CmdAnalyze.Example()
	lines := strings.Split(got, "\n")
	if len(lines) != len(CmdAnalyze.Examples) {
		t.Fatalf("expected %d lines, got %d", len(CmdAnalyze.Examples), len(lines))
	}
	for _, l := range lines {
		if !strings.HasPrefix(l, "  proofline ") {
			t.Errorf("example not indented: %q", l)
		}
	}
	if CmdSchema.Example() != "" {
		t.Error("command without examples should yield an empty string")
	}
}

func TestEscapeRoff(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"--all", `\-\-all`},
		{`back\slash`, `back\\slash`},
		{".zst files", `\&.zst files`},
		{"line\n.dot", "line\n\\&.dot"},
	}
	for _, tt := range tests {
		if got := escapeRoff(tt.in); got != tt.want {
			t.Errorf("escapeRoff(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatRoffStructure(t *testing.T) {
	fixedDate := "2026-02-27"

	for _, cmd := range allCommands() {
		t.Run(cmd.Name, func(t *testing.T) {
			out := FormatRoff(cmd, fixedDate)

			for _, section := range []string{".TH", ".SH NAME", ".SH SYNOPSIS"} {
				if !strings.Contains(out, section) {
					t.Errorf("FormatRoff(%q) missing required section %q", cmd.Name, section)
				}
			}
			if !strings.Contains(out, ".TH "+strings.ToUpper(cmd.ManName())) {
				t.Errorf("FormatRoff(%q) .TH should name %q", cmd.Name, strings.ToUpper(cmd.ManName()))
			}
			if !strings.Contains(out, `"Proofline Manual"`) {
				t.Errorf("FormatRoff(%q) missing manual title", cmd.Name)
			}
			if cmd.Description != "" && !strings.Contains(out, ".SH DESCRIPTION") {
				t.Errorf("FormatRoff(%q) has Description but missing .SH DESCRIPTION", cmd.Name)
			}
			if (len(cmd.Args) > 0 || len(cmd.Flags) > 0) && !strings.Contains(out, ".SH OPTIONS") {
				t.Errorf("FormatRoff(%q) has Args/Flags but missing .SH OPTIONS", cmd.Name)
			}
			if len(cmd.Examples) > 0 && !strings.Contains(out, ".SH EXAMPLES") {
				t.Errorf("FormatRoff(%q) has Examples but missing .SH EXAMPLES", cmd.Name)
			}
			if len(cmd.SeeAlso) > 0 && !strings.Contains(out, ".SH SEE ALSO") {
				t.Errorf("FormatRoff(%q) has SeeAlso but missing .SH SEE ALSO", cmd.Name)
			}
		})
	}
}

func TestFormatRoffTopLevelStructure(t *testing.T) {
	out := FormatRoffTopLevel(TopLevel, Subcommands, "2026-02-27")

	for _, section := range []string{
		".TH PROOFLINE 1",
		".SH NAME",
		".SH SYNOPSIS",
		".SH DESCRIPTION",
		".SH COMMANDS",
		".SH FILES",
		".SH CONFIGURATION",
		".SH SEE ALSO",
	} {
		if !strings.Contains(out, section) {
			t.Errorf("FormatRoffTopLevel missing section %q", section)
		}
	}
	for _, cmd := range Subcommands {
		if escaped := escapeRoff(cmd.Brief); !strings.Contains(out, escaped) {
			t.Errorf("FormatRoffTopLevel missing subcommand brief %q", escaped)
		}
	}
}

func TestFormatRoffEscapesDescription(t *testing.T) {
	out := FormatRoff(CmdAnalyze, "2026-02-27")
	if strings.Contains(out, "--timeline") {
		t.Error("FormatRoff(analyze) left bare hyphens in flag names")
	}
	if !strings.Contains(out, `\-\-timeline`) {
		t.Error("FormatRoff(analyze) missing escaped --timeline")
	}
}

// diff shows a line-by-line comparison of the differing lines.
func diff(expected, got string) string {
	el := strings.Split(expected, "\n")
	gl := strings.Split(got, "\n")
	n := max(len(el), len(gl))
	var b strings.Builder
	for i := 0; i < n; i++ {
		var e, g string
		if i < len(el) {
			e = el[i]
		}
		if i < len(gl) {
			g = gl[i]
		}
		if e != g {
			fmt.Fprintf(&b, "! line %d:\n  exp: %q\n  got: %q\n", i+1, e, g)
		}
	}
	return b.String()
}
