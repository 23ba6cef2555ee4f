package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ConfigDir returns the proofline config directory path.
// Uses $XDG_CONFIG_HOME/proofline if set, otherwise ~/.config/proofline.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "proofline")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "proofline")
}

// WriteDefault writes a starter config.toml with one project rooted at
// projectRoot. It returns the file path and whether it was created; an
// existing file is left untouched.
func WriteDefault(projectID, projectRoot string) (string, bool, error) {
	dir := ConfigDir()
	path := filepath.Join(dir, "config.toml")

	if _, err := os.Stat(path); err == nil {
		return path, false, nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", false, fmt.Errorf("create config dir: %w", err)
	}

	root := CompressHome(projectRoot)
	content := fmt.Sprintf(`client = "claude"
allowed_roots = [%q]

[[projects]]
id = %q
root = %q

[scan]
max_files_per_root = 600

[classify]
follow_up_window = 6
follow_up_count = 3
bootstrap = true
top_keywords = 8

[enrichment]
enabled = false
timeout_seconds = 10
model = "gpt-4o-mini"
api_key_env = "OPENAI_API_KEY"
base_url = "https://api.openai.com/v1"
concurrency = 4
max_retries = 2

[replay]
before = 2
after = 4

[store]
path = "~/.local/share/proofline/runs.db"
enabled = true

[log]
level = "info"
# file = "~/.local/state/proofline/proofline.log"
max_size_mb = 20
max_backups = 3
max_age_days = 14
`, root, projectID, root)

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", false, fmt.Errorf("write config: %w", err)
	}

	return path, true, nil
}

// CompressHome replaces $HOME prefix with ~/ for portable config values.
func CompressHome(path string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	if strings.HasPrefix(path, home+"/") {
		return "~/" + path[len(home)+1:]
	}
	if path == home {
		return "~"
	}
	return path
}
