package check

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/suykerbuyk/proofline/internal/config"
)

func TestCheckConfig(t *testing.T) {
	if r := CheckConfig(""); r.Status != Warn {
		t.Errorf("expected Warn without a file, got %s", r.Status)
	}
	if r := CheckConfig("/tmp/proofline/config.toml"); r.Status != Pass {
		t.Errorf("expected Pass, got %s: %s", r.Status, r.Detail)
	}
}

func TestCheckProjects_None(t *testing.T) {
	results := CheckProjects(nil)
	if len(results) != 1 || results[0].Status != Fail {
		t.Errorf("expected a single failure, got %+v", results)
	}
}

func TestCheckProjects_SomeMissing(t *testing.T) {
	dir := t.TempDir()
	results := CheckProjects([]config.Project{
		{ID: "here", Root: dir},
		{ID: "gone", Root: filepath.Join(dir, "missing")},
	})
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Name != "project:here" || results[0].Status != Pass {
		t.Errorf("first = %+v", results[0])
	}
	if results[1].Name != "project:gone" || results[1].Status != Warn {
		t.Errorf("second = %+v", results[1])
	}
}

func TestCheckAllowedRoots(t *testing.T) {
	cfg := config.Config{
		Projects: []config.Project{{ID: "app", Root: "/work/app"}, {ID: "app2", Root: "/work/app2"}},
	}
	if r := CheckAllowedRoots(cfg); r.Status != Pass {
		t.Errorf("default roots: expected Pass, got %s: %s", r.Status, r.Detail)
	}

	cfg.AllowedRoots = []string{"/work/app"}
	r := CheckAllowedRoots(cfg)
	if r.Status != Warn {
		t.Fatalf("expected Warn, got %s: %s", r.Status, r.Detail)
	}
	if !strings.Contains(r.Detail, "app2") || strings.Contains(r.Detail, "app,") {
		t.Errorf("sibling root should be the only one flagged: %s", r.Detail)
	}

	cfg.AllowedRoots = []string{"/work"}
	if r := CheckAllowedRoots(cfg); r.Status != Pass {
		t.Errorf("parent root: expected Pass, got %s: %s", r.Status, r.Detail)
	}
}

func TestCheckRules(t *testing.T) {
	if r := CheckRules(config.ClassifyConfig{}); r.Status != Pass || !strings.Contains(r.Detail, "built-in") {
		t.Errorf("built-in: %+v", r)
	}

	dir := t.TempDir()
	good := filepath.Join(dir, "good.yaml")
	os.WriteFile(good, []byte("rules:\n  - id: ship\n    eventType: GOAL\n    anyOf: [shipped]\n"), 0o644)
	if r := CheckRules(config.ClassifyConfig{RulesFile: good}); r.Status != Pass || !strings.Contains(r.Detail, "(1 rules)") {
		t.Errorf("good file: %+v", r)
	}

	bad := filepath.Join(dir, "bad.yaml")
	os.WriteFile(bad, []byte("rules:\n  - id: x\n    eventType: NOPE\n    anyOf: [a]\n"), 0o644)
	if r := CheckRules(config.ClassifyConfig{RulesFile: bad}); r.Status != Fail {
		t.Errorf("bad file: expected Fail, got %+v", r)
	}
}

func TestCheckEnrichment_Disabled(t *testing.T) {
	r := CheckEnrichment(config.EnrichmentConfig{Enabled: false})
	if r.Status != Pass || r.Detail != "disabled" {
		t.Errorf("got %s: %s", r.Status, r.Detail)
	}
}

func TestCheckEnrichment_EnabledWithKey(t *testing.T) {
	t.Setenv("PROOFLINE_TEST_KEY", "sk-test")
	r := CheckEnrichment(config.EnrichmentConfig{Enabled: true, APIKeyEnv: "PROOFLINE_TEST_KEY", Model: "m"})
	if r.Status != Pass {
		t.Errorf("expected Pass, got %s: %s", r.Status, r.Detail)
	}
}

func TestCheckEnrichment_EnabledNoKey(t *testing.T) {
	t.Setenv("PROOFLINE_TEST_KEY", "")
	r := CheckEnrichment(config.EnrichmentConfig{Enabled: true, APIKeyEnv: "PROOFLINE_TEST_KEY"})
	if r.Status != Warn {
		t.Errorf("expected Warn, got %s: %s", r.Status, r.Detail)
	}
}

func TestCheckStore(t *testing.T) {
	if r := CheckStore(config.StoreConfig{Enabled: false}); r.Status != Pass {
		t.Errorf("disabled: %+v", r)
	}
	dir := t.TempDir()
	db := filepath.Join(dir, "runs.db")
	if r := CheckStore(config.StoreConfig{Enabled: true, Path: db}); r.Status != Warn {
		t.Errorf("missing db: %+v", r)
	}
	os.WriteFile(db, nil, 0o644)
	if r := CheckStore(config.StoreConfig{Enabled: true, Path: db}); r.Status != Pass {
		t.Errorf("existing db: %+v", r)
	}
}

func TestReport_HasFailures(t *testing.T) {
	r := Report{Results: []Result{{Name: "a", Status: Pass}, {Name: "b", Status: Warn}}}
	if r.HasFailures() {
		t.Error("expected no failures")
	}
	r.Results = append(r.Results, Result{Name: "c", Status: Fail})
	if !r.HasFailures() {
		t.Error("expected failures")
	}
}

func TestReport_Format(t *testing.T) {
	r := Report{Results: []Result{
		{Name: "config", Status: Pass, Detail: "~/.config/proofline/config.toml"},
		{Name: "rules", Status: Fail, Detail: "parse rules: boom"},
	}}
	out := r.Format()
	if !strings.HasPrefix(out, "proofline check\n\n") {
		t.Errorf("unexpected header: %q", out)
	}
	if !strings.Contains(out, "  FAIL  rules   parse rules: boom\n") {
		t.Errorf("unexpected row layout:\n%s", out)
	}
	if !strings.HasSuffix(out, "1 passed, 0 warning, 1 failure\n") {
		t.Errorf("unexpected footer:\n%s", out)
	}
}

func TestRun_Integration(t *testing.T) {
	root := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Projects = []config.Project{{ID: "app", Root: root}}
	cfg.Store.Path = filepath.Join(t.TempDir(), "runs.db")

	report := Run(cfg, "")
	if report.HasFailures() {
		t.Errorf("unexpected failures:\n%s", report.Format())
	}
	names := make(map[string]bool)
	for _, res := range report.Results {
		names[res.Name] = true
	}
	for _, want := range []string{"config", "project:app", "allowed_roots", "rules", "enrichment", "store"} {
		if !names[want] {
			t.Errorf("missing check %q", want)
		}
	}
}

func TestStatus_String(t *testing.T) {
	tests := []struct {
		s    Status
		want string
	}{
		{Pass, "pass"},
		{Warn, "warn"},
		{Fail, "FAIL"},
		{Status(9), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("Status(%d).String() = %q, want %q", tt.s, got, tt.want)
		}
	}
}
