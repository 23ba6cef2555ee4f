package help

import (
	"fmt"
	"strings"
	"time"
)

const manual = "Proofline Manual"

// manPage accumulates roff source for one section-1 page.
type manPage struct {
	b strings.Builder
}

func newManPage(title, date string) *manPage {
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	p := &manPage{}
	fmt.Fprintf(&p.b, ".TH %s 1 %q %q %q\n", title, date, "proofline "+Version, manual)
	return p
}

func (p *manPage) section(name string) {
	p.b.WriteString(".SH " + name + "\n")
}

func (p *manPage) line(s string) {
	p.b.WriteString(s + "\n")
}

// text writes escaped prose; blank lines become paragraph breaks.
func (p *manPage) text(s string) {
	blank := false
	for _, l := range strings.Split(s, "\n") {
		if strings.TrimSpace(l) == "" {
			if !blank {
				p.line(".PP")
			}
			blank = true
			continue
		}
		blank = false
		p.line(escapeRoff(l))
	}
}

// item writes a tagged paragraph with a bold term.
func (p *manPage) item(term, desc string) {
	fmt.Fprintf(&p.b, ".TP\n.B %s\n%s\n", term, escapeRoff(desc))
}

func (p *manPage) verbatim(lines []string) {
	p.line(".nf")
	for _, l := range lines {
		p.line(escapeRoff(l))
	}
	p.line(".fi")
}

func (p *manPage) seeAlso(refs []string) {
	if len(refs) == 0 {
		return
	}
	p.section("SEE ALSO")
	out := make([]string, len(refs))
	for i, r := range refs {
		out[i] = manRef(r)
	}
	p.line(strings.Join(out, ",\n"))
}

func (p *manPage) String() string { return p.b.String() }

// FormatRoff renders c as a man page. An empty date means today; pass a
// fixed one for reproducible output.
func FormatRoff(c Command, date string) string {
	p := newManPage(strings.ToUpper(c.ManName()), date)

	p.section("NAME")
	p.line(c.ManName() + ` \- ` + escapeRoff(c.Synopsis))
	p.section("SYNOPSIS")
	p.line(".B " + escapeRoff(c.Usage))

	if c.Description != "" {
		p.section("DESCRIPTION")
		p.text(c.Description)
	}
	if len(c.Args) > 0 || len(c.Flags) > 0 {
		p.section("OPTIONS")
		for _, a := range c.Args {
			p.item(escapeRoff(a.Name), a.Desc)
		}
		for _, f := range c.Flags {
			p.item(escapeRoff(f.Name), f.Desc)
		}
	}
	if len(c.Examples) > 0 {
		p.section("EXAMPLES")
		p.verbatim(c.Examples)
	}
	p.seeAlso(c.SeeAlso)
	return p.String()
}

// FormatRoffTopLevel renders proofline.1, listing subs under COMMANDS.
func FormatRoffTopLevel(top Command, subs []Command, date string) string {
	p := newManPage("PROOFLINE", date)

	p.section("NAME")
	p.line(`proofline \- ` + escapeRoff(top.Synopsis))
	p.section("SYNOPSIS")
	p.line(".B proofline\n.I command\n.RI [ options ]")

	p.section("DESCRIPTION")
	p.line(".B proofline")
	p.text(`reconstructs a work trail from AI coding assistant session traces:
conflict-resolved evidence, classified major events, action chains,
and repetition, feature delta and phase narrative insights.`)

	p.section("COMMANDS")
	for _, s := range subs {
		p.item(`"`+escapeRoff(s.tableUsage())+`"`, s.Brief)
	}

	p.section("ENVIRONMENT")
	p.item("XDG_CONFIG_HOME", "Overrides the config directory (default ~/.config)")
	p.item("OPENAI_API_KEY", "API key for enrichment unless enrichment.api_key_env names another variable")

	p.section("FILES")
	p.item("~/.local/share/proofline/runs.db", "Run history written by analyze --save")

	p.section("CONFIGURATION")
	p.line("Configuration file: ~/.config/proofline/config.toml")

	refs := make([]string, len(subs))
	for i, s := range subs {
		refs[i] = s.ManName() + "(1)"
	}
	p.seeAlso(refs)
	return p.String()
}

var roffReplacer = strings.NewReplacer(`\`, `\\`, "-", `\-`, "\n.", "\n\\&.")

// escapeRoff protects backslashes, hyphens and line-leading dots.
func escapeRoff(s string) string {
	s = roffReplacer.Replace(s)
	if strings.HasPrefix(s, ".") {
		s = `\&` + s
	}
	return s
}

// manRef turns "proofline-init(1)" into ".BR proofline\-init (1)".
func manRef(ref string) string {
	name, section, ok := strings.Cut(ref, "(")
	if !ok {
		return ".B " + escapeRoff(ref)
	}
	return fmt.Sprintf(".BR %s (%s", escapeRoff(name), section)
}
