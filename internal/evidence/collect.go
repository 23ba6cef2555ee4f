package evidence

import (
	"path"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/suykerbuyk/proofline/internal/pathguard"
	"github.com/suykerbuyk/proofline/internal/scope"
	"github.com/suykerbuyk/proofline/internal/textmine"
	"github.com/suykerbuyk/proofline/internal/timeline"
)

const (
	maxSummaryChars = 160
	maxDetailChars  = 2000
)

// pathKeys are the metadata keys that may name the file an event touched.
var pathKeys = []string{"path", "file_path", "filePath", "file"}

// Input is everything one collection pass needs.
type Input struct {
	Client       string
	Range        timeline.TimeRange
	Scope        scope.Scope
	Timeline     []timeline.Event
	Raw          []timeline.RawEvent
	AllowedRoots []string
}

// Collector builds evidence from a timeline and a bounded filesystem scan.
type Collector struct {
	fs    afero.Fs
	audit *pathguard.Audit
	walk  WalkOptions
}

// NewCollector returns a Collector reading fs and recording every path
// check in audit.
func NewCollector(fs afero.Fs, audit *pathguard.Audit, walk WalkOptions) *Collector {
	return &Collector{fs: fs, audit: audit, walk: walk.withDefaults()}
}

// Collect returns timeline-derived and filesystem-derived evidence within
// in.Range, sorted ascending by timestamp. The filesystem is scanned only
// when the range has at least one bound.
func (c *Collector) Collect(in Input) []Item {
	items := FromTimeline(in)
	if in.Range.Start.IsZero() && in.Range.End.IsZero() {
		return items
	}

	allowed := make([]string, 0, len(in.AllowedRoots))
	for _, r := range in.AllowedRoots {
		allowed = append(allowed, pathguard.Normalize(r))
	}
	for _, p := range in.Scope.InScope() {
		items = append(items, c.scanProject(in.Client, p, in.Range, allowed)...)
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].TS.Before(items[j].TS)
	})
	return items
}

// FromTimeline maps in-range timeline events to evidence.
func FromTimeline(in Input) []Item {
	rawByID := make(map[string]timeline.RawEvent, len(in.Raw))
	for _, r := range in.Raw {
		if r.ID != "" {
			rawByID[r.ID] = r
		}
	}

	items := make([]Item, 0, len(in.Timeline))
	for _, e := range in.Timeline {
		if !in.Range.Contains(e.TS) {
			continue
		}
		items = append(items, fromEvent(in, e, rawByID))
	}
	return items
}

func fromEvent(in Input, e timeline.Event, rawByID map[string]timeline.RawEvent) Item {
	typ := ClassifyEvent(e)
	conf, prio := Weight(typ)

	client := e.Client
	if client == "" {
		client = in.Client
	}

	filePath := e.MetaString(pathKeys...)
	project, attributed := attribute(in.Scope, e, rawByID, filePath)

	summary := eventSummary(e)
	meta := map[string]any{
		"origin": "timeline",
		"actor":  string(e.Actor),
	}
	if e.Label != "" {
		meta["label"] = e.Label
	}
	if len(e.Tags) > 0 {
		meta["tags"] = append([]string(nil), e.Tags...)
	}
	if typ == TypeFileChange && filePath != "" {
		rel := filePath
		if attributed {
			if r := pathguard.Rel(pathguard.Normalize(filePath), pathguard.Normalize(project.Root)); r != "" {
				rel = r
			}
		}
		meta["path"] = rel
		summary = fileSummary(rel)
	}

	it := Item{
		Client:     client,
		TS:         e.TS,
		Type:       typ,
		SourcePath: e.SourcePath,
		Summary:    summary,
		Detail:     textmine.Truncate(e.Detail, maxDetailChars),
		Confidence: conf,
		Priority:   prio,
		EventID:    e.ID,
		Metadata:   meta,
	}
	if attributed {
		it.ProjectID = project.ID
	}
	it.ID = itemID(it)
	return it
}

// ClassifyEvent picks an evidence type from explicit tags, then metadata
// and label hints, then the actor.
func ClassifyEvent(e timeline.Event) Type {
	switch {
	case e.HasTag("file_change"):
		return TypeFileChange
	case e.HasTag("tool_result"):
		return TypeToolResult
	case e.HasTag("tool_use"), e.HasTag("tool_call"):
		return TypeToolCall
	}

	hint := strings.ToLower(e.MetaString("kind", "type"))
	if hint == "" {
		hint = strings.ToLower(e.Label)
	}
	switch {
	case strings.HasPrefix(hint, "file_change"), strings.HasPrefix(hint, "patch"):
		return TypeFileChange
	case strings.HasPrefix(hint, "tool_result"), strings.HasPrefix(hint, "function_call_output"):
		return TypeToolResult
	case strings.HasPrefix(hint, "tool_use"), strings.HasPrefix(hint, "tool_call"), strings.HasPrefix(hint, "function_call"):
		return TypeToolCall
	}

	switch e.Actor {
	case timeline.ActorAssistant:
		return TypeAssistantText
	case timeline.ActorUser:
		return TypeUserText
	default:
		return TypeSystem
	}
}

// attribute resolves the event's declared working directory, falling back
// to the raw event with the same id, then to an absolute file path.
func attribute(s scope.Scope, e timeline.Event, rawByID map[string]timeline.RawEvent, filePath string) (scope.Project, bool) {
	dir := e.MetaString(timeline.WorkdirKeys...)
	if dir == "" {
		if raw, ok := rawByID[e.ID]; ok {
			dir = raw.MetaString(timeline.WorkdirKeys...)
		}
	}
	if dir == "" && (strings.HasPrefix(filePath, "/") || strings.Contains(filePath, `:\`)) {
		dir = filePath
	}
	if dir == "" {
		return scope.Project{}, false
	}
	return s.Attribute(dir)
}

func eventSummary(e timeline.Event) string {
	text := textmine.FirstLine(textmine.ExtractText(e.Detail))
	if text == "" {
		text = e.Label
	}
	return textmine.Truncate(text, maxSummaryChars)
}

func fileSummary(rel string) string {
	return "file changed: " + path.Clean(strings.ReplaceAll(rel, `\`, "/"))
}
