// Package pathguard restricts filesystem access to whitelisted roots and
// keeps an append-only audit of every check.
package pathguard

import (
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// ErrPathDenied is matched by every DeniedError.
var ErrPathDenied = errors.New("path denied")

// DeniedError reports an access outside the allowed roots.
type DeniedError struct {
	Path   string
	Action string
	Reason string
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Action, e.Path, e.Reason)
}

func (e *DeniedError) Is(target error) bool { return target == ErrPathDenied }

// Record is one audit entry.
type Record struct {
	Path    string    `json:"path"`
	Action  string    `json:"action"`
	Allowed bool      `json:"allowed"`
	Reason  string    `json:"reason"`
	TS      time.Time `json:"ts"`
}

// Audit is the append-only access trail of one run.
type Audit struct {
	mu      sync.Mutex
	client  string
	records []Record
	now     func() time.Time
}

// NewAudit starts an empty audit trail for client.
func NewAudit(client string) *Audit {
	return &Audit{client: client, now: time.Now}
}

// Client returns the client the audit belongs to.
func (a *Audit) Client() string { return a.client }

// Records returns a copy of the records appended so far.
func (a *Audit) Records() []Record {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Record, len(a.records))
	copy(out, a.records)
	return out
}

func (a *Audit) append(r Record) {
	a.mu.Lock()
	defer a.mu.Unlock()
	r.TS = a.now()
	a.records = append(a.records, r)
}

// MarshalJSON encodes the audit as {client, records}.
func (a *Audit) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Client  string   `json:"client"`
		Records []Record `json:"records"`
	}{Client: a.client, Records: a.Records()})
}

// AssertPathAllowed succeeds iff p equals or descends from one of roots.
// Every call appends one record to audit (which may be nil).
func AssertPathAllowed(p string, roots []string, audit *Audit, action string) error {
	norm := Normalize(p)

	allowed := false
	reason := "outside allowed roots"
	if len(roots) == 0 {
		reason = "no allowed roots configured"
	}
	for _, root := range roots {
		if root == "" {
			continue
		}
		if Within(norm, Normalize(root)) {
			allowed = true
			reason = "within " + Normalize(root)
			break
		}
	}

	if audit != nil {
		audit.append(Record{Path: norm, Action: action, Allowed: allowed, Reason: reason})
	}
	if !allowed {
		return &DeniedError{Path: norm, Action: action, Reason: reason}
	}
	return nil
}

// Normalize converts p to an absolute, cleaned, slash-separated path.
// Backslashes are treated as separators and Windows drive letters are
// lower-cased so that comparisons work across platforms.
func Normalize(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	p = strings.ReplaceAll(p, `\`, "/")

	if !isAbs(p) {
		if abs, err := filepath.Abs(filepath.FromSlash(p)); err == nil {
			p = filepath.ToSlash(abs)
		}
	}

	drive := ""
	if hasDrive(p) {
		drive = strings.ToLower(p[:2])
		p = p[2:]
		if p == "" {
			p = "/"
		}
	}
	return drive + path.Clean(p)
}

// Within reports whether p equals root or lies below it, comparing whole
// path segments. Both arguments must already be normalized.
func Within(p, root string) bool {
	if p == "" || root == "" {
		return false
	}
	if p == root {
		return true
	}
	if strings.HasSuffix(root, "/") {
		return strings.HasPrefix(p, root)
	}
	return strings.HasPrefix(p, root+"/")
}

// Rel returns p relative to root using slash separators, or "" when p is
// not within root.
func Rel(p, root string) string {
	if !Within(p, root) || p == root {
		return ""
	}
	return strings.TrimPrefix(strings.TrimPrefix(p, root), "/")
}

func isAbs(p string) bool {
	return strings.HasPrefix(p, "/") || hasDrive(p)
}

func hasDrive(p string) bool {
	if len(p) < 2 || p[1] != ':' {
		return false
	}
	c := p[0]
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
