package help

import (
	"fmt"
	"strings"
)

type row struct{ name, desc string }

// align renders rows as "  name<pad>desc" with every desc starting at width+2.
func align(rows []row, width int) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = "  " + r.name + strings.Repeat(" ", width-len(r.name)) + r.desc
	}
	return out
}

// FormatTerminal renders the --help text of one command.
func FormatTerminal(c Command) string {
	parts := []string{
		fmt.Sprintf("proofline %s \u2014 %s", c.Name, c.Synopsis),
		"Usage: " + c.Usage,
	}

	args := make([]row, len(c.Args))
	for i, a := range c.Args {
		args[i] = row{a.Name, a.Desc}
	}
	flags := make([]row, len(c.Flags))
	for i, f := range c.Flags {
		flags[i] = row{f.Name, f.Desc}
	}

	// Args and flags share one description column, at least 11 wide when
	// both are present.
	width := 0
	for _, r := range append(append([]row{}, args...), flags...) {
		width = max(width, len(r.name))
	}
	width += 3
	if len(args) > 0 && len(flags) > 0 {
		width = max(width, 11)
	}

	if len(args) > 0 {
		parts = append(parts, "Arguments:\n"+strings.Join(align(args, width), "\n"))
	}
	if len(flags) > 0 {
		parts = append(parts, "Flags:\n"+strings.Join(align(flags, width), "\n"))
	}
	if c.Description != "" {
		parts = append(parts, c.Description)
	}
	if len(c.Examples) > 0 {
		parts = append(parts, "Examples:\n  "+strings.Join(c.Examples, "\n  "))
	}
	return strings.Join(parts, "\n\n") + "\n"
}

// FormatUsage renders the top-level --help text.
func FormatUsage(top Command, subs []Command) string {
	rows := make([]row, 0, len(subs)+1)
	for _, s := range subs {
		rows = append(rows, row{s.tableUsage(), s.Brief})
	}
	rows = append(rows, row{"proofline help [command]", "Show help"})

	width := 0
	for _, r := range rows {
		width = max(width, len(r.name))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "proofline %s \u2014 %s\n\nUsage:\n", Version, top.Synopsis)
	for _, l := range align(rows, width+3) {
		b.WriteString(l + "\n")
	}
	b.WriteString(`
Global flags:
  --config <file>   Config file (default: ~/.config/proofline/config.toml)
  --verbose         Debug logging on stderr

Configuration: ~/.config/proofline/config.toml
`)
	return b.String()
}
