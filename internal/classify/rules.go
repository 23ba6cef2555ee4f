package classify

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

var defaultRules = []Rule{
	{
		ID:        "red-card-destructive",
		EventType: RedCard,
		AnyOf:     []string{"rm -rf", "force push", "push --force", "reset --hard", "drop table", "data loss", "rollback", "回滚", "误删", "删库"},
		Weight:    2,
	},
	{
		ID:        "penalty-failure",
		EventType: Penalty,
		AnyOf:     []string{"error", "failed", "failure", "exception", "panic", "traceback", "exit code 1", "报错", "失败", "异常", "错误"},
		Weight:    1.5,
	},
	{
		ID:        "goal-delivered",
		EventType: Goal,
		AnyOf:     []string{"done", "completed", "shipped", "merged", "tests pass", "all tests passed", "deployed", "released", "完成", "搞定", "上线", "通过"},
		Not:       []string{"fail", "failed", "failing", "error", "errors", "失败", "报错"},
		Weight:    1.5,
	},
	{
		ID:        "yellow-card-warning",
		EventType: YellowCard,
		AnyOf:     []string{"warning", "deprecated", "flaky", "timeout", "timed out", "retry", "警告", "超时", "重试"},
	},
	{
		ID:        "offside-scope-drift",
		EventType: Offside,
		AnyOf:     []string{"not what i", "wrong file", "out of scope", "undo", "revert", "不对", "不是这个", "跑偏", "搞错"},
	},
	{
		ID:        "substitution-switch",
		EventType: Substitution,
		AnyOf:     []string{"switch to", "replace", "instead", "migrate", "swap", "换成", "改用", "替换", "迁移"},
	},
	{
		ID:        "corner-refactor",
		EventType: Corner,
		AnyOf:     []string{"refactor", "cleanup", "clean up", "rename", "restructure", "reorganize", "重构", "整理", "重命名"},
	},
	{
		ID:        "assist-support",
		EventType: Assist,
		AnyOf:     []string{"suggest", "recommend", "explain", "how do i", "help me", "建议", "帮我", "解释"},
	},
}

// DefaultRules returns a fresh copy of the built-in rule set. Ties between
// equally scored rules go to the earlier rule, so the order runs from most
// to least severe.
func DefaultRules() []Rule {
	return cloneRules(defaultRules)
}

func cloneRules(rules []Rule) []Rule {
	out := make([]Rule, len(rules))
	for i, r := range rules {
		out[i] = r.clone()
	}
	return out
}

type ruleFile struct {
	Rules []Rule `yaml:"rules"`
}

// LoadRules reads a YAML rule file of the form `rules: [...]`.
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}
	return ParseRules(data)
}

// ParseRules decodes and validates YAML rules.
func ParseRules(data []byte) ([]Rule, error) {
	var f ruleFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}
	if len(f.Rules) == 0 {
		return nil, fmt.Errorf("parse rules: no rules defined")
	}
	seen := make(map[string]bool, len(f.Rules))
	for _, r := range f.Rules {
		if err := r.validate(); err != nil {
			return nil, err
		}
		if seen[r.ID] {
			return nil, fmt.Errorf("rule %s: duplicate id", r.ID)
		}
		seen[r.ID] = true
	}
	return f.Rules, nil
}
