package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config holds all proofline configuration.
type Config struct {
	Client       string    `toml:"client"`
	AllowedRoots []string  `toml:"allowed_roots"`
	Projects     []Project `toml:"projects"`

	Scan       ScanConfig       `toml:"scan"`
	Classify   ClassifyConfig   `toml:"classify"`
	Enrichment EnrichmentConfig `toml:"enrichment"`
	Replay     ReplayConfig     `toml:"replay"`
	Store      StoreConfig      `toml:"store"`
	Log        LogConfig        `toml:"log"`
}

type Project struct {
	ID   string `toml:"id"`
	Root string `toml:"root"`
}

type ScanConfig struct {
	MaxFilesPerRoot int      `toml:"max_files_per_root"`
	Deny            []string `toml:"deny"`
}

type ClassifyConfig struct {
	FollowUpWindow int    `toml:"follow_up_window"`
	FollowUpCount  int    `toml:"follow_up_count"`
	Bootstrap      bool   `toml:"bootstrap"`
	TopKeywords    int    `toml:"top_keywords"`
	RulesFile      string `toml:"rules_file"`
}

type EnrichmentConfig struct {
	Enabled        bool   `toml:"enabled"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	Model          string `toml:"model"`
	APIKeyEnv      string `toml:"api_key_env"`
	BaseURL        string `toml:"base_url"`
	Concurrency    int    `toml:"concurrency"`
	MaxRetries     int    `toml:"max_retries"`
}

type ReplayConfig struct {
	Before int `toml:"before"`
	After  int `toml:"after"`
}

type StoreConfig struct {
	Path    string `toml:"path"`
	Enabled bool   `toml:"enabled"`
}

// LogConfig controls logging. An empty File logs to stderr only.
type LogConfig struct {
	Level      string `toml:"level"`
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
}

// DefaultConfig returns config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Client: "claude",
		Scan: ScanConfig{
			MaxFilesPerRoot: 600,
		},
		Classify: ClassifyConfig{
			FollowUpWindow: 6,
			FollowUpCount:  3,
			Bootstrap:      true,
			TopKeywords:    8,
		},
		Enrichment: EnrichmentConfig{
			Enabled:        false,
			TimeoutSeconds: 10,
			Model:          "gpt-4o-mini",
			APIKeyEnv:      "OPENAI_API_KEY",
			BaseURL:        "https://api.openai.com/v1",
			Concurrency:    4,
			MaxRetries:     2,
		},
		Replay: ReplayConfig{
			Before: 2,
			After:  4,
		},
		Store: StoreConfig{
			Path:    "~/.local/share/proofline/runs.db",
			Enabled: true,
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  20,
			MaxBackups: 3,
			MaxAgeDays: 14,
		},
	}
}

// Load reads config from the standard path, falling back to defaults.
func Load() (Config, error) {
	if p := Path(); p != "" {
		return LoadFile(p)
	}
	cfg := DefaultConfig()
	cfg.expand()
	return cfg, nil
}

// Path returns the config file Load reads, or "" when none exists.
func Path() string {
	for _, p := range configPaths() {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// LoadFile decodes the TOML file at path over the defaults.
func LoadFile(path string) (Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	cfg.expand()
	return cfg, nil
}

func (c Config) validate() error {
	seen := make(map[string]bool, len(c.Projects))
	for i, p := range c.Projects {
		if strings.TrimSpace(p.ID) == "" {
			return fmt.Errorf("projects[%d]: missing id", i)
		}
		if strings.TrimSpace(p.Root) == "" {
			return fmt.Errorf("project %q: missing root", p.ID)
		}
		if seen[p.ID] {
			return fmt.Errorf("project %q: duplicate id", p.ID)
		}
		seen[p.ID] = true
	}
	if c.Classify.FollowUpWindow < 0 || c.Classify.FollowUpCount < 0 {
		return fmt.Errorf("classify: follow-up window and count must not be negative")
	}
	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log: unknown level %q", c.Log.Level)
	}
	return nil
}

// expand replaces ~/ prefixes in every path field.
func (c *Config) expand() {
	for i, r := range c.AllowedRoots {
		c.AllowedRoots[i] = expandHome(r)
	}
	for i := range c.Projects {
		c.Projects[i].Root = expandHome(c.Projects[i].Root)
	}
	c.Classify.RulesFile = expandHome(c.Classify.RulesFile)
	c.Store.Path = expandHome(c.Store.Path)
	c.Log.File = expandHome(c.Log.File)
}

// EffectiveAllowedRoots returns the configured allowed roots, or the project
// roots when none are configured.
func (c Config) EffectiveAllowedRoots() []string {
	if len(c.AllowedRoots) > 0 {
		return c.AllowedRoots
	}
	roots := make([]string, 0, len(c.Projects))
	for _, p := range c.Projects {
		roots = append(roots, p.Root)
	}
	return roots
}

func configPaths() []string {
	var paths []string

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, "proofline", "config.toml"))
	}

	home, _ := os.UserHomeDir()
	if home != "" {
		paths = append(paths, filepath.Join(home, ".config", "proofline", "config.toml"))
	}

	return paths
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
