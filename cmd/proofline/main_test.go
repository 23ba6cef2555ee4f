package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// binary is the compiled proofline, set by TestMain.
var binary string

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		os.Exit(0)
	}

	tmpDir, err := os.MkdirTemp("", "proofline-integration-build-*")
	if err != nil {
		fmt.Fprintf(os.Stderr, "create temp dir: %v\n", err)
		os.Exit(1)
	}

	binary = filepath.Join(tmpDir, "proofline")
	cmd := exec.Command("go", "build", "-o", binary, ".")
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "build proofline binary: %v\n", err)
		os.RemoveAll(tmpDir)
		os.Exit(1)
	}

	code := m.Run()
	os.RemoveAll(tmpDir)
	os.Exit(code)
}

// fixtureTimeline: one session in project "app". The user asks for a format
// change, the assistant edits the encoder, then reports success.
const fixtureTimeline = `{"id":"e1","client":"claude","ts":"2026-03-01T10:00:00Z","label":"user","detail":"switch the report format from plain text to structured json","actor":"user","tags":[],"sourcePath":"s1.jsonl","metadata":{"cwd":"%[1]s"}}
{"id":"e2","client":"claude","ts":"2026-03-01T10:05:00Z","label":"edit","detail":"rewrote the report encoder","actor":"assistant","tags":["file_change"],"sourcePath":"s1.jsonl","metadata":{"cwd":"%[1]s","path":"%[1]s/internal/report/encode.go"}}
not json
{"id":"e3","client":"claude","ts":"2026-03-01T10:10:00Z","label":"result","detail":"all tests passed, done","actor":"assistant","tags":[],"sourcePath":"s1.jsonl","metadata":{"cwd":"%[1]s"}}
`

// --- Helpers ---

type env struct {
	home    string
	project string
	vars    []string
}

func newEnv(t *testing.T) env {
	t.Helper()
	home := t.TempDir()
	project := filepath.Join(home, "work", "app")
	if err := os.MkdirAll(filepath.Join(project, "internal", "report"), 0o755); err != nil {
		t.Fatal(err)
	}
	return env{
		home:    home,
		project: project,
		vars: []string{
			"PATH=" + os.Getenv("PATH"),
			"HOME=" + home,
			"XDG_CONFIG_HOME=" + filepath.Join(home, ".config"),
		},
	}
}

func run(t *testing.T, e env, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	cmd := exec.Command(binary, args...)
	cmd.Env = e.vars
	var outBuf, errBuf strings.Builder
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf
	err = cmd.Run()
	return outBuf.String(), errBuf.String(), err
}

func mustRun(t *testing.T, e env, args ...string) (stdout, stderr string) {
	t.Helper()
	stdout, stderr, err := run(t, e, args...)
	if err != nil {
		t.Fatalf("proofline %s failed: %v\nstdout: %s\nstderr: %s", strings.Join(args, " "), err, stdout, stderr)
	}
	return stdout, stderr
}

func writeTimeline(t *testing.T, e env) string {
	t.Helper()
	path := filepath.Join(e.home, "timeline.jsonl")
	if err := os.WriteFile(path, []byte(fmt.Sprintf(fixtureTimeline, e.project)), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func assertContains(t *testing.T, s, substr, msg string) {
	t.Helper()
	if !strings.Contains(s, substr) {
		t.Errorf("%s: expected %q to contain %q", msg, s, substr)
	}
}

// --- Tests ---

func TestVersion(t *testing.T) {
	out, _ := mustRun(t, newEnv(t), "version")
	assertContains(t, out, "proofline ", "version")
	assertContains(t, out, "report schema v1", "version")
}

func TestInitIsIdempotent(t *testing.T) {
	e := newEnv(t)
	out, _ := mustRun(t, e, "init", "--project", "app", "--root", e.project)
	assertContains(t, out, "created:", "first init")
	if _, err := os.Stat(filepath.Join(e.home, ".config", "proofline", "config.toml")); err != nil {
		t.Fatalf("config not written: %v", err)
	}
	out, _ = mustRun(t, e, "init", "--project", "other")
	assertContains(t, out, "config exists:", "second init")
}

func TestCheckAfterInit(t *testing.T) {
	e := newEnv(t)
	mustRun(t, e, "init", "--project", "app", "--root", e.project)
	out, _ := mustRun(t, e, "check")
	assertContains(t, out, "proofline check", "check header")
	assertContains(t, out, "app", "check lists the project")
}

func TestSchema(t *testing.T) {
	out, _ := mustRun(t, newEnv(t), "schema")
	var doc map[string]any
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("schema is not JSON: %v", err)
	}
	assertContains(t, out, "majorEvents", "schema")
}

func TestAnalyzeSaveAndRuns(t *testing.T) {
	e := newEnv(t)
	mustRun(t, e, "init", "--project", "app", "--root", e.project)
	tl := writeTimeline(t, e)

	out, stderr := mustRun(t, e, "analyze", "--timeline", tl, "--project", "app", "--query", "what changed", "--save")
	var rep map[string]any
	if err := json.Unmarshal([]byte(out), &rep); err != nil {
		t.Fatalf("report is not JSON: %v\n%s", err, out)
	}
	if rep["query"] != "what changed" || rep["client"] != "claude" {
		t.Errorf("query=%v client=%v", rep["query"], rep["client"])
	}
	if events, _ := rep["majorEvents"].([]any); len(events) == 0 {
		t.Errorf("expected major events, got %v", rep["majorEvents"])
	}

	var id string
	for _, line := range strings.Split(stderr, "\n") {
		if rest, ok := strings.CutPrefix(line, "saved run "); ok {
			id = strings.TrimSpace(rest)
		}
	}
	if id == "" {
		t.Fatalf("no run id in stderr: %s", stderr)
	}

	list, _ := mustRun(t, e, "runs", "list", "--format", "text")
	assertContains(t, list, id, "runs list")
	assertContains(t, list, "project:app", "runs list scope")

	shown, _ := mustRun(t, e, "runs", "show", id)
	assertContains(t, shown, `"what changed"`, "runs show")

	md, _ := mustRun(t, e, "runs", "show", id, "--format", "md")
	assertContains(t, md, "type: proofline-report", "runs show md")
	assertContains(t, md, "# what changed", "runs show md title")

	st, _ := mustRun(t, e, "runs", "stats")
	assertContains(t, st, "runs                 1", "runs stats")

	mustRun(t, e, "runs", "rm", id)
	if _, _, err := run(t, e, "runs", "show", id); err == nil {
		t.Error("runs show after rm should fail")
	}
}

func TestAnalyzeWritesCompressedFile(t *testing.T) {
	e := newEnv(t)
	mustRun(t, e, "init", "--project", "app", "--root", e.project)
	tl := writeTimeline(t, e)
	out := filepath.Join(e.home, "reports", "r.json.zst")

	_, stderr := mustRun(t, e, "analyze", "-t", tl, "-o", out)
	assertContains(t, stderr, "wrote "+out, "analyze -o")

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) < 4 || data[0] != 0x28 || data[1] != 0xb5 || data[2] != 0x2f || data[3] != 0xfd {
		t.Errorf("expected zstd frame, got % x", data[:min(4, len(data))])
	}
}

func TestAnalyzeErrors(t *testing.T) {
	e := newEnv(t)
	mustRun(t, e, "init", "--project", "app", "--root", e.project)

	if _, _, err := run(t, e, "analyze"); err == nil {
		t.Error("analyze without --timeline should fail")
	}
	_, stderr, err := run(t, e, "analyze", "-t", filepath.Join(e.home, "missing.jsonl"))
	if err == nil {
		t.Error("analyze with a missing timeline should fail")
	}
	assertContains(t, stderr, "error:", "missing timeline")

	tl := writeTimeline(t, e)
	if _, _, err := run(t, e, "analyze", "-t", tl, "--since", "2026-03-05", "--until", "2026-03-01"); err == nil {
		t.Error("inverted range should fail")
	}
}

func TestHelpUsesRegistry(t *testing.T) {
	out, _ := mustRun(t, newEnv(t), "runs", "show", "--help")
	assertContains(t, out, "proofline runs show", "runs show help")
	assertContains(t, out, "--out", "runs show help")
}
