// Package scope models which projects a run covers.
package scope

import (
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/suykerbuyk/proofline/internal/pathguard"
)

// Mode discriminates a Scope.
type Mode string

const (
	ModeSingle Mode = "single"
	ModeAll    Mode = "all"
)

// Project is a named project root.
type Project struct {
	ID   string `json:"id"`
	Root string `json:"root"`
}

// Scope is either a single project or all listed projects. Construct it
// with Single or All; consumers switch on Mode.
type Scope struct {
	Mode     Mode      `json:"mode"`
	Project  *Project  `json:"project,omitempty"`
	Projects []Project `json:"projects,omitempty"`
}

// Single scopes a run to one project.
func Single(p Project) Scope {
	return Scope{Mode: ModeSingle, Project: &p}
}

// All scopes a run to every listed project.
func All(projects []Project) Scope {
	cp := make([]Project, len(projects))
	copy(cp, projects)
	return Scope{Mode: ModeAll, Projects: cp}
}

// InScope returns the projects covered by s.
func (s Scope) InScope() []Project {
	switch s.Mode {
	case ModeSingle:
		if s.Project == nil {
			return nil
		}
		return []Project{*s.Project}
	case ModeAll:
		return s.Projects
	default:
		return nil
	}
}

// Label renders s for listings: "project:<id>" or "all:<a,b>".
func (s Scope) Label() string {
	projects := s.InScope()
	ids := make([]string, len(projects))
	for i, p := range projects {
		ids[i] = p.ID
	}
	if s.Mode == ModeSingle {
		return "project:" + strings.Join(ids, ",")
	}
	return "all:" + strings.Join(ids, ",")
}

// Roots returns the normalized roots of the in-scope projects.
func (s Scope) Roots() []string {
	var roots []string
	for _, p := range s.InScope() {
		if r := pathguard.Normalize(p.Root); r != "" {
			roots = append(roots, r)
		}
	}
	return roots
}

// ProjectByID returns the in-scope project with id.
func (s Scope) ProjectByID(id string) (Project, bool) {
	for _, p := range s.InScope() {
		if p.ID == id {
			return p, true
		}
	}
	return Project{}, false
}

// Attribute resolves dir to the in-scope project whose root contains it,
// comparing whole path segments. When nested roots both contain dir the
// deepest wins; two distinct projects sharing the same root are ambiguous
// and resolve to nothing.
func (s Scope) Attribute(dir string) (Project, bool) {
	norm := pathguard.Normalize(dir)
	if norm == "" {
		return Project{}, false
	}

	var best Project
	bestLen := -1
	ambiguous := false
	for _, p := range s.InScope() {
		root := pathguard.Normalize(p.Root)
		if !pathguard.Within(norm, root) {
			continue
		}
		switch {
		case len(root) > bestLen:
			best, bestLen, ambiguous = p, len(root), false
		case len(root) == bestLen && p.ID != best.ID:
			ambiguous = true
		}
	}
	if bestLen < 0 || ambiguous {
		return Project{}, false
	}
	return best, true
}

// Lookup finds a project by exact id, falling back to the best fuzzy match.
func Lookup(name string, projects []Project) (Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Project{}, fmt.Errorf("empty project name")
	}
	ids := make([]string, len(projects))
	for i, p := range projects {
		if strings.EqualFold(p.ID, name) {
			return p, nil
		}
		ids[i] = p.ID
	}

	matches := fuzzy.Find(name, ids)
	if len(matches) == 0 {
		return Project{}, fmt.Errorf("no project matches %q", name)
	}
	return projects[matches[0].Index], nil
}
