package evidence

import (
	"log/slog"
	"path"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"

	"github.com/suykerbuyk/proofline/internal/pathguard"
	"github.com/suykerbuyk/proofline/internal/scope"
	"github.com/suykerbuyk/proofline/internal/timeline"
)

// DefaultMaxFiles caps how many files are visited per project root.
const DefaultMaxFiles = 600

// DefaultDeny skips VCS metadata, dependencies, build output and caches.
var DefaultDeny = []string{
	"**/.git",
	"**/.hg",
	"**/.svn",
	"**/node_modules",
	"**/vendor",
	"**/dist",
	"**/build",
	"**/out",
	"**/target",
	"**/.next",
	"**/.nuxt",
	"**/.cache",
	"**/__pycache__",
	"**/.pytest_cache",
	"**/.venv",
	"**/venv",
	"**/coverage",
	"**/.idea",
	"**/.vscode",
}

// WalkOptions bounds the filesystem scan.
type WalkOptions struct {
	MaxFiles int
	Deny     []string
}

func (o WalkOptions) withDefaults() WalkOptions {
	if o.MaxFiles <= 0 {
		o.MaxFiles = DefaultMaxFiles
	}
	if o.Deny == nil {
		o.Deny = DefaultDeny
	}
	return o
}

func (c *Collector) denied(rel string) bool {
	for _, pattern := range c.walk.Deny {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
	}
	return false
}

// scanProject walks one project root depth-first and returns a file_change
// item for every regular file modified within rng. Each directory listing
// and file stat is checked against allowed first; denied or unreadable
// paths are skipped.
func (c *Collector) scanProject(client string, p scope.Project, rng timeline.TimeRange, allowed []string) []Item {
	root := pathguard.Normalize(p.Root)
	if root == "" {
		return nil
	}
	if err := pathguard.AssertPathAllowed(root, allowed, c.audit, "scan_root"); err != nil {
		slog.Warn("skip project scan", "project", p.ID, "error", err)
		return nil
	}

	var items []Item
	files := 0
	stack := []string{root}
	for len(stack) > 0 && files < c.walk.MaxFiles {
		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if err := pathguard.AssertPathAllowed(dir, allowed, c.audit, "list_dir"); err != nil {
			slog.Debug("skip directory", "error", err)
			continue
		}
		entries, err := afero.ReadDir(c.fs, filepath.FromSlash(dir))
		if err != nil {
			slog.Debug("skip unreadable directory", "dir", dir, "error", err)
			continue
		}

		var subdirs []string
		for _, info := range entries {
			full := path.Join(dir, info.Name())
			rel := pathguard.Rel(full, root)
			if info.IsDir() {
				if !c.denied(rel) {
					subdirs = append(subdirs, full)
				}
				continue
			}
			if !info.Mode().IsRegular() {
				continue
			}
			if files >= c.walk.MaxFiles {
				break
			}
			files++

			if err := pathguard.AssertPathAllowed(full, allowed, c.audit, "stat_file"); err != nil {
				continue
			}
			if !rng.Contains(info.ModTime()) {
				continue
			}

			it := Item{
				Client:     client,
				ProjectID:  p.ID,
				TS:         info.ModTime(),
				Type:       TypeFileChange,
				SourcePath: full,
				Summary:    fileSummary(rel),
				Detail:     rel,
				Confidence: scannedConfidence,
				Priority:   scannedPriority,
				Metadata: map[string]any{
					"origin": "filesystem",
					"path":   rel,
					"root":   root,
					"size":   info.Size(),
				},
			}
			it.ID = itemID(it)
			items = append(items, it)
		}

		// Reverse push so that siblings pop in lexical order.
		for i := len(subdirs) - 1; i >= 0; i-- {
			stack = append(stack, subdirs[i])
		}
	}

	if files >= c.walk.MaxFiles {
		slog.Debug("project scan hit file cap", "project", p.ID, "cap", c.walk.MaxFiles)
	}
	return items
}
