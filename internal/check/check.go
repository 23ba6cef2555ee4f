package check

import (
	"fmt"
	"os"
	"strings"

	"github.com/suykerbuyk/proofline/internal/classify"
	"github.com/suykerbuyk/proofline/internal/config"
	"github.com/suykerbuyk/proofline/internal/pathguard"
)

// Status represents the outcome of a single check.
type Status int

const (
	Pass Status = iota
	Warn
	Fail
)

func (s Status) String() string {
	switch s {
	case Pass:
		return "pass"
	case Warn:
		return "warn"
	case Fail:
		return "FAIL"
	default:
		return "unknown"
	}
}

// Result holds the outcome of a single check.
type Result struct {
	Name   string
	Status Status
	Detail string
}

// Report aggregates all check results.
type Report struct {
	Results []Result
}

// HasFailures returns true if any result has Fail status.
func (r Report) HasFailures() bool {
	for _, res := range r.Results {
		if res.Status == Fail {
			return true
		}
	}
	return false
}

// Format returns the human-readable report string.
func (r Report) Format() string {
	if len(r.Results) == 0 {
		return "proofline check\n\n  no checks ran\n"
	}

	maxName := 0
	for _, res := range r.Results {
		if len(res.Name) > maxName {
			maxName = len(res.Name)
		}
	}

	var b strings.Builder
	b.WriteString("proofline check\n\n")

	var passed, warnings, failures int
	for _, res := range r.Results {
		switch res.Status {
		case Pass:
			passed++
		case Warn:
			warnings++
		case Fail:
			failures++
		}
		fmt.Fprintf(&b, "  %-4s  %-*s  %s\n", res.Status, maxName, res.Name, res.Detail)
	}

	fmt.Fprintf(&b, "\n%d passed, %d warning, %d failure\n", passed, warnings, failures)
	return b.String()
}

// CheckConfig reports the config file in use. A missing file is a warning
// since defaults still apply.
func CheckConfig(path string) Result {
	if path == "" {
		return Result{Name: "config", Status: Warn, Detail: "no config file, using defaults (run proofline init)"}
	}
	return Result{Name: "config", Status: Pass, Detail: config.CompressHome(path)}
}

// CheckProjects reports each configured project root. No projects is a
// failure because analyze needs at least one scope.
func CheckProjects(projects []config.Project) []Result {
	if len(projects) == 0 {
		return []Result{{Name: "projects", Status: Fail, Detail: "no [[projects]] configured"}}
	}
	results := make([]Result, 0, len(projects))
	for _, p := range projects {
		name := "project:" + p.ID
		if info, err := os.Stat(p.Root); err == nil && info.IsDir() {
			results = append(results, Result{Name: name, Status: Pass, Detail: config.CompressHome(p.Root)})
		} else {
			results = append(results, Result{Name: name, Status: Warn, Detail: p.Root + " not found (filesystem scan will find nothing)"})
		}
	}
	return results
}

// CheckAllowedRoots warns about project roots that the path guard would
// deny, which silently drops their filesystem evidence.
func CheckAllowedRoots(cfg config.Config) Result {
	roots := cfg.EffectiveAllowedRoots()
	if len(cfg.AllowedRoots) == 0 {
		return Result{Name: "allowed_roots", Status: Pass, Detail: "defaulting to project roots"}
	}

	var outside []string
	for _, p := range cfg.Projects {
		root := pathguard.Normalize(p.Root)
		allowed := false
		for _, r := range roots {
			if pathguard.Within(root, pathguard.Normalize(r)) {
				allowed = true
				break
			}
		}
		if !allowed {
			outside = append(outside, p.ID)
		}
	}
	if len(outside) > 0 {
		return Result{Name: "allowed_roots", Status: Warn, Detail: "outside allowed roots: " + strings.Join(outside, ", ")}
	}
	return Result{Name: "allowed_roots", Status: Pass, Detail: fmt.Sprintf("%d roots", len(roots))}
}

// CheckRules validates the configured rule file.
func CheckRules(ccfg config.ClassifyConfig) Result {
	if ccfg.RulesFile == "" {
		return Result{Name: "rules", Status: Pass, Detail: fmt.Sprintf("built-in (%d rules)", len(classify.DefaultRules()))}
	}
	rules, err := classify.LoadRules(ccfg.RulesFile)
	if err != nil {
		return Result{Name: "rules", Status: Fail, Detail: err.Error()}
	}
	return Result{Name: "rules", Status: Pass, Detail: fmt.Sprintf("%s (%d rules)", config.CompressHome(ccfg.RulesFile), len(rules))}
}

// CheckEnrichment checks enrichment configuration.
func CheckEnrichment(ecfg config.EnrichmentConfig) Result {
	if !ecfg.Enabled {
		return Result{Name: "enrichment", Status: Pass, Detail: "disabled"}
	}
	keyEnv := ecfg.APIKeyEnv
	if keyEnv == "" {
		keyEnv = "OPENAI_API_KEY"
	}
	if os.Getenv(keyEnv) != "" {
		return Result{Name: "enrichment", Status: Pass, Detail: keyEnv + " set, model " + ecfg.Model}
	}
	return Result{Name: "enrichment", Status: Warn, Detail: keyEnv + " not set (rule summaries only)"}
}

// CheckStore reports where run history is kept.
func CheckStore(scfg config.StoreConfig) Result {
	if !scfg.Enabled {
		return Result{Name: "store", Status: Pass, Detail: "disabled"}
	}
	if _, err := os.Stat(scfg.Path); err == nil {
		return Result{Name: "store", Status: Pass, Detail: config.CompressHome(scfg.Path)}
	}
	return Result{Name: "store", Status: Warn, Detail: config.CompressHome(scfg.Path) + " not created yet"}
}

// Run executes all checks against cfg, loaded from cfgPath ("" for defaults).
func Run(cfg config.Config, cfgPath string) Report {
	var results []Result

	results = append(results, CheckConfig(cfgPath))
	results = append(results, CheckProjects(cfg.Projects)...)
	results = append(results, CheckAllowedRoots(cfg))
	results = append(results, CheckRules(cfg.Classify))
	results = append(results, CheckEnrichment(cfg.Enrichment))
	results = append(results, CheckStore(cfg.Store))

	return Report{Results: results}
}
